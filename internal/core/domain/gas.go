package domain

import "math/big"

// GasEstimate is the gas a bundler expects a user operation to consume.
type GasEstimate struct {
	GasLimit             uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	PreVerificationGas   uint64
	VerificationGasLimit uint64
	CallGasLimit         uint64
}

// Total returns the sum of the three gas components.
func (e GasEstimate) Total() uint64 {
	return e.PreVerificationGas + e.VerificationGasLimit + e.CallGasLimit
}

// MaxCost returns the highest fee the operation can be charged, in wei.
func (e GasEstimate) MaxCost() *big.Int {
	if e.MaxFeePerGas == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(e.GasLimit), e.MaxFeePerGas)
}
