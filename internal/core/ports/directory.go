package ports

import (
	"context"
	"math/big"
)

// AccountDirectory maps users to their smart account address. The core only
// reads from it.
type AccountDirectory interface {
	Resolve(ctx context.Context, userID string) (string, error)
}

// ChainReader reads account state from the chain.
type ChainReader interface {
	BalanceAt(ctx context.Context, address string) (*big.Int, error)
	IsDeployed(ctx context.Context, address string) (bool, error)
}
