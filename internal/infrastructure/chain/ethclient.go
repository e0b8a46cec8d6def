// Package chain reads smart account state from an EVM node.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	pkgerrors "github.com/pkg/errors"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

type reader struct {
	client *ethclient.Client
}

// NewReader dials the node at the given RPC url.
func NewReader(ctx context.Context, rpcURL string) (ports.ChainReader, func(), error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "dialing chain rpc")
	}
	return &reader{client}, client.Close, nil
}

func (r *reader) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, domain.ErrAccountInvalidAddress
	}
	balance, err := r.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "reading balance of %s", address)
	}
	return balance, nil
}

// IsDeployed tells whether some code lives at the account address.
func (r *reader) IsDeployed(ctx context.Context, address string) (bool, error) {
	if !common.IsHexAddress(address) {
		return false, domain.ErrAccountInvalidAddress
	}
	code, err := r.client.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return false, pkgerrors.Wrapf(err, "reading code of %s", address)
	}
	return len(code) > 0, nil
}
