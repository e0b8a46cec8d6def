package simulated

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tdex-network/aawalletd/pkg/userop"
	"go.uber.org/atomic"
)

// Paymaster is a simulated paymaster sponsoring every operation.
type Paymaster struct {
	faults

	id      string
	address common.Address

	sponsored *atomic.Int64
}

// NewPaymaster returns a simulated paymaster whose contract lives at address.
func NewPaymaster(id string, address common.Address) *Paymaster {
	return &Paymaster{
		faults:    newFaults(),
		id:        id,
		address:   address,
		sponsored: atomic.NewInt64(0),
	}
}

// SponsorUserOperation returns the paymaster address followed by a
// commitment to the operation.
func (p *Paymaster) SponsorUserOperation(
	ctx context.Context, op userop.UserOperation,
) ([]byte, error) {
	if err := p.check(ctx, p.id, "sponsor"); err != nil {
		return nil, err
	}
	p.sponsored.Inc()

	commitment := crypto.Keccak256(op.Pack())
	return append(p.address.Bytes(), commitment...), nil
}

// Sponsored returns the number of sponsored operations.
func (p *Paymaster) Sponsored() int64 {
	return p.sponsored.Load()
}
