package jsonrpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	"github.com/tdex-network/aawalletd/pkg/userop"
)

const (
	methodEstimateUserOpGas = "eth_estimateUserOperationGas"
	methodSendUserOp        = "eth_sendUserOperation"
	methodGetUserOpReceipt  = "eth_getUserOperationReceipt"
	methodGasPrice          = "eth_gasPrice"
	methodMaxPriorityFee    = "eth_maxPriorityFeePerGas"
)

type gasEstimate struct {
	PreVerificationGas   *hexutil.Big `json:"preVerificationGas"`
	VerificationGasLimit *hexutil.Big `json:"verificationGasLimit"`
	CallGasLimit         *hexutil.Big `json:"callGasLimit"`
}

type userOpReceipt struct {
	UserOpHash    string       `json:"userOpHash"`
	Success       bool         `json:"success"`
	ActualGasUsed *hexutil.Big `json:"actualGasUsed"`
	Reason        string       `json:"reason"`
}

// Bundler is a BundlerClient for any bundler exposing the standard
// eth_*UserOperation* methods.
type Bundler struct {
	*client
	entryPoint common.Address
}

// NewBundler ...
func NewBundler(
	id, endpoint string, entryPoint common.Address, opts Options,
) (*Bundler, error) {
	c, err := newClient(id, endpoint, opts)
	if err != nil {
		return nil, err
	}
	return &Bundler{c, entryPoint}, nil
}

func (b *Bundler) EstimateGas(
	ctx context.Context, op userop.UserOperation,
) (*domain.GasEstimate, error) {
	var est gasEstimate
	if err := b.call(
		ctx, &est, methodEstimateUserOpGas, op.ToRPC(), b.entryPoint,
	); err != nil {
		return nil, err
	}

	var gasPrice, priorityFee hexutil.Big
	if err := b.call(ctx, &gasPrice, methodGasPrice); err != nil {
		return nil, err
	}
	if err := b.call(ctx, &priorityFee, methodMaxPriorityFee); err != nil {
		return nil, err
	}

	estimate := &domain.GasEstimate{
		PreVerificationGas:   toUint64(est.PreVerificationGas),
		VerificationGasLimit: toUint64(est.VerificationGasLimit),
		CallGasLimit:         toUint64(est.CallGasLimit),
		MaxPriorityFeePerGas: priorityFee.ToInt(),
		MaxFeePerGas: new(big.Int).Add(
			gasPrice.ToInt(), priorityFee.ToInt(),
		),
	}
	estimate.GasLimit = estimate.Total()
	return estimate, nil
}

func (b *Bundler) SendUserOperation(
	ctx context.Context, op userop.UserOperation,
) (*ports.SubmitResult, error) {
	var userOpHash common.Hash
	if err := b.call(
		ctx, &userOpHash, methodSendUserOp, op.ToRPC(), b.entryPoint,
	); err != nil {
		return nil, err
	}
	return &ports.SubmitResult{
		Hash:       userOpHash.Hex(),
		UserOpHash: userOpHash.Hex(),
	}, nil
}

func (b *Bundler) GetReceipt(
	ctx context.Context, hash string,
) (*ports.Receipt, error) {
	var receipt *userOpReceipt
	if err := b.call(
		ctx, &receipt, methodGetUserOpReceipt, common.HexToHash(hash),
	); err != nil {
		return nil, err
	}
	if receipt == nil {
		return &ports.Receipt{Status: domain.OperationStatusPending}, nil
	}

	status := domain.OperationStatusSuccess
	if !receipt.Success {
		status = domain.OperationStatusFailed
	}
	return &ports.Receipt{
		Status:  status,
		GasUsed: toUint64(receipt.ActualGasUsed),
		Reason:  receipt.Reason,
	}, nil
}

// Close ...
func (b *Bundler) Close() {
	b.close()
}

func toUint64(n *hexutil.Big) uint64 {
	if n == nil {
		return 0
	}
	return n.ToInt().Uint64()
}
