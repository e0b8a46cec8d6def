package ports

import (
	"context"
	"errors"

	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/pkg/userop"
)

var (
	// ErrProviderUnavailable must be wrapped by provider clients for transient
	// failures (timeouts, connection errors, 5xx). Only these are retried.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrProviderRejected must be wrapped by provider clients when the
	// provider refused the request.
	ErrProviderRejected = errors.New("provider rejected the request")
)

// SubmitResult is returned by a bundler that accepted a user operation.
type SubmitResult struct {
	Hash       string
	UserOpHash string
}

// Receipt is the on-chain outcome of a submitted user operation. Status is
// pending until the operation is included.
type Receipt struct {
	Status  domain.OperationStatus
	GasUsed uint64
	Reason  string
}

// BundlerClient is the abstract contract of an ERC-4337 bundler.
type BundlerClient interface {
	EstimateGas(
		ctx context.Context, op userop.UserOperation,
	) (*domain.GasEstimate, error)
	SendUserOperation(
		ctx context.Context, op userop.UserOperation,
	) (*SubmitResult, error)
	GetReceipt(ctx context.Context, hash string) (*Receipt, error)
}

// PaymasterClient is the abstract contract of a gas sponsoring paymaster.
type PaymasterClient interface {
	// SponsorUserOperation returns the paymasterAndData to attach to op.
	SponsorUserOperation(ctx context.Context, op userop.UserOperation) ([]byte, error)
}

// ProviderClients returns the clients for the configured providers.
type ProviderClients interface {
	Bundler(provider domain.ProviderConfig) (BundlerClient, error)
	Paymaster(provider domain.ProviderConfig) (PaymasterClient, error)
}

// ProviderSource returns the table of known providers.
type ProviderSource interface {
	Providers(ctx context.Context) ([]domain.ProviderConfig, error)
}
