// Package simulated implements deterministic in-process bundlers and
// paymasters, with knobs to inject latency and failures.
package simulated

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	"github.com/tdex-network/aawalletd/pkg/userop"
	"go.uber.org/atomic"
)

var (
	preVerificationGas   = uint64(45000)
	verificationGasLimit = uint64(100000)
	baseCallGas          = uint64(21000)
	maxFeePerGas         = big.NewInt(2000000000)
	maxPriorityFeePerGas = big.NewInt(1000000000)
)

// faults holds the failure knobs shared by bundlers and paymasters.
type faults struct {
	lock     *sync.Mutex
	failNext int
	down     bool
	reject   bool
	latency  time.Duration
}

func newFaults() faults {
	return faults{lock: &sync.Mutex{}}
}

// FailNext makes the next n calls fail with ErrProviderUnavailable.
func (f *faults) FailNext(n int) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.failNext = n
}

// SetDown makes every call fail with ErrProviderUnavailable until reset.
func (f *faults) SetDown(down bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.down = down
}

// SetReject makes every call fail with ErrProviderRejected until reset.
func (f *faults) SetReject(reject bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.reject = reject
}

// SetLatency delays every call by d, or until the call context is done.
func (f *faults) SetLatency(d time.Duration) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.latency = d
}

func (f *faults) check(ctx context.Context, name, method string) error {
	f.lock.Lock()
	latency, down, reject := f.latency, f.down, f.reject
	failNow := f.failNext > 0
	if failNow {
		f.failNext--
	}
	f.lock.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if down || failNow {
		return fmt.Errorf("%w: %s %s", ports.ErrProviderUnavailable, name, method)
	}
	if reject {
		return fmt.Errorf("%w: %s %s", ports.ErrProviderRejected, name, method)
	}
	return nil
}

// Bundler is a simulated ERC-4337 bundler. Submitted operations are pending
// until settled, unless auto settlement is enabled.
type Bundler struct {
	faults

	id         string
	entryPoint common.Address
	chainID    *big.Int
	autoSettle bool

	receiptsLock *sync.RWMutex
	receipts     map[string]ports.Receipt

	estimates *atomic.Int64
	submitted *atomic.Int64
}

// NewBundler returns a simulated bundler. With autoSettle, receipts of
// submitted operations are immediately successful.
func NewBundler(
	id string, entryPoint common.Address, chainID int64, autoSettle bool,
) *Bundler {
	return &Bundler{
		faults:       newFaults(),
		id:           id,
		entryPoint:   entryPoint,
		chainID:      big.NewInt(chainID),
		autoSettle:   autoSettle,
		receiptsLock: &sync.RWMutex{},
		receipts:     make(map[string]ports.Receipt),
		estimates:    atomic.NewInt64(0),
		submitted:    atomic.NewInt64(0),
	}
}

func (b *Bundler) EstimateGas(
	ctx context.Context, op userop.UserOperation,
) (*domain.GasEstimate, error) {
	if err := b.check(ctx, b.id, "estimate"); err != nil {
		return nil, err
	}
	b.estimates.Inc()

	estimate := &domain.GasEstimate{
		PreVerificationGas:   preVerificationGas,
		VerificationGasLimit: verificationGasLimit,
		CallGasLimit:         baseCallGas + 16*uint64(len(op.CallData)),
		MaxFeePerGas:         new(big.Int).Set(maxFeePerGas),
		MaxPriorityFeePerGas: new(big.Int).Set(maxPriorityFeePerGas),
	}
	estimate.GasLimit = estimate.Total()
	return estimate, nil
}

func (b *Bundler) SendUserOperation(
	ctx context.Context, op userop.UserOperation,
) (*ports.SubmitResult, error) {
	if err := b.check(ctx, b.id, "send"); err != nil {
		return nil, err
	}
	b.submitted.Inc()

	userOpHash := op.Hash(b.entryPoint, b.chainID)
	hash := crypto.Keccak256Hash([]byte(b.id), userOpHash.Bytes()).Hex()

	receipt := ports.Receipt{Status: domain.OperationStatusPending}
	if b.autoSettle {
		receipt = ports.Receipt{
			Status:  domain.OperationStatusSuccess,
			GasUsed: gasUsed(op),
		}
	}

	b.receiptsLock.Lock()
	b.receipts[hash] = receipt
	b.receiptsLock.Unlock()

	return &ports.SubmitResult{Hash: hash, UserOpHash: userOpHash.Hex()}, nil
}

func (b *Bundler) GetReceipt(
	ctx context.Context, hash string,
) (*ports.Receipt, error) {
	if err := b.check(ctx, b.id, "receipt"); err != nil {
		return nil, err
	}

	b.receiptsLock.RLock()
	defer b.receiptsLock.RUnlock()

	receipt, ok := b.receipts[hash]
	if !ok {
		return nil, fmt.Errorf("%w: unknown operation %s", ports.ErrProviderRejected, hash)
	}
	return &receipt, nil
}

// Settle sets the receipt of a submitted operation.
func (b *Bundler) Settle(hash string, receipt ports.Receipt) {
	b.receiptsLock.Lock()
	defer b.receiptsLock.Unlock()
	b.receipts[hash] = receipt
}

// Estimates returns the number of successful estimations.
func (b *Bundler) Estimates() int64 {
	return b.estimates.Load()
}

// Submitted returns the number of accepted operations.
func (b *Bundler) Submitted() int64 {
	return b.submitted.Load()
}

func gasUsed(op userop.UserOperation) uint64 {
	var total uint64
	for _, g := range []*big.Int{
		op.PreVerificationGas, op.VerificationGasLimit, op.CallGasLimit,
	} {
		if g != nil {
			total += g.Uint64()
		}
	}
	return total * 8 / 10
}
