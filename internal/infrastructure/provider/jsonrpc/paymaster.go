package jsonrpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tdex-network/aawalletd/pkg/userop"
)

const methodSponsorUserOp = "pm_sponsorUserOperation"

type sponsorResult struct {
	PaymasterAndData hexutil.Bytes `json:"paymasterAndData"`
}

// Paymaster is a PaymasterClient for paymasters exposing
// pm_sponsorUserOperation.
type Paymaster struct {
	*client
	entryPoint common.Address
}

// NewPaymaster ...
func NewPaymaster(
	id, endpoint string, entryPoint common.Address, opts Options,
) (*Paymaster, error) {
	c, err := newClient(id, endpoint, opts)
	if err != nil {
		return nil, err
	}
	return &Paymaster{c, entryPoint}, nil
}

func (p *Paymaster) SponsorUserOperation(
	ctx context.Context, op userop.UserOperation,
) ([]byte, error) {
	var res sponsorResult
	if err := p.call(
		ctx, &res, methodSponsorUserOp, op.ToRPC(), p.entryPoint,
	); err != nil {
		return nil, err
	}
	return res.PaymasterAndData, nil
}

// Close ...
func (p *Paymaster) Close() {
	p.close()
}
