package relay

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/core/application/account"
	"github.com/tdex-network/aawalletd/internal/core/application/pubsub"
	"github.com/tdex-network/aawalletd/internal/core/application/registry"
	"github.com/tdex-network/aawalletd/internal/core/application/session"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	"github.com/tdex-network/aawalletd/pkg/keymutex"
	"github.com/tdex-network/aawalletd/pkg/stats"
	"github.com/tdex-network/aawalletd/pkg/userop"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

const (
	methodEstimate = "estimate_gas"
	methodSponsor  = "sponsor"
	methodSend     = "send"
	methodReceipt  = "receipt"

	reasonSessionDenied   = "session key denied the operation"
	reasonProviderFailure = "provider failure"

	// maxConcurrentPolls bounds the receipt requests SyncPending has in flight.
	maxConcurrentPolls = 8
)

var (
	hundred = decimal.NewFromInt(100)
)

// Options tunes the relay.
type Options struct {
	// EntryPoint is the address of the entry point contract user operations
	// are hashed for.
	EntryPoint string
	// ProviderTimeout bounds every single provider call.
	ProviderTimeout time.Duration
	// MaxRetries is the number of retries of a provider call that failed with
	// ErrProviderUnavailable.
	MaxRetries uint
	// RetryBackoff is the base of the exponential backoff between retries.
	RetryBackoff time.Duration
	// GasBufferPercent is added on top of every estimated gas component.
	GasBufferPercent decimal.Decimal
	// ConfirmOnChain makes Send store accepted operations as pending until
	// the bundler reports their receipt.
	ConfirmOnChain bool
}

func (o Options) validate() error {
	if !common.IsHexAddress(o.EntryPoint) {
		return fmt.Errorf("invalid entry point address %q", o.EntryPoint)
	}
	if o.ProviderTimeout <= 0 {
		return fmt.Errorf("provider timeout must be positive")
	}
	if o.GasBufferPercent.IsNegative() {
		return fmt.Errorf("gas buffer percentage must not be negative")
	}
	return nil
}

// EstimateArgs ...
type EstimateArgs struct {
	AccountAddress string
	To             string
	Value          string
	Data           string
	BundlerID      string
	PaymasterID    string
}

// SendArgs holds the arguments of Send. With a SessionID the operation is
// authorized against that session key with the selector of Data. Function is
// an optional label, either that selector or a signature hashing to it, and
// defaults to the selector.
type SendArgs struct {
	AccountAddress string
	To             string
	Value          string
	Data           string
	SessionID      string
	Function       string
	BundlerID      string
	PaymasterID    string
}

// RetryArgs holds the arguments of Retry. Empty provider ids mean the ones of
// the failed operation.
type RetryArgs struct {
	Hash        string
	BundlerID   string
	PaymasterID string
}

// Service relays operations of smart accounts through the configured
// bundlers and paymasters.
type Service struct {
	accounts    *account.Service
	sessions    *session.Service
	registry    *registry.Service
	pubsub      *pubsub.Service
	repoManager ports.RepoManager
	clients     ports.ProviderClients
	clock       ports.Clock

	entryPoint common.Address
	opts       Options
	gasFactor  decimal.Decimal
	retryLock  *keymutex.KeyMutex
}

func NewService(
	accountSvc *account.Service,
	sessionSvc *session.Service,
	registrySvc *registry.Service,
	pubsubSvc *pubsub.Service,
	repoManager ports.RepoManager,
	clients ports.ProviderClients,
	clock ports.Clock,
	opts Options,
) (*Service, error) {
	if accountSvc == nil {
		return nil, fmt.Errorf("missing account service")
	}
	if sessionSvc == nil {
		return nil, fmt.Errorf("missing session service")
	}
	if registrySvc == nil {
		return nil, fmt.Errorf("missing registry service")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if clients == nil {
		return nil, fmt.Errorf("missing provider clients")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	return &Service{
		accounts:    accountSvc,
		sessions:    sessionSvc,
		registry:    registrySvc,
		pubsub:      pubsubSvc,
		repoManager: repoManager,
		clients:     clients,
		clock:       clock,
		entryPoint:  common.HexToAddress(opts.EntryPoint),
		opts:        opts,
		gasFactor:   decimal.NewFromInt(1).Add(opts.GasBufferPercent.Div(hundred)),
		retryLock:   keymutex.New(),
	}, nil
}

// EstimateGas returns the buffered gas estimate of the call. It has no side
// effect: the account nonce is read, not reserved.
func (s *Service) EstimateGas(
	ctx context.Context, args EstimateArgs,
) (*domain.GasEstimate, error) {
	call, err := domain.NewCall(args.AccountAddress, args.To, args.Value, args.Data)
	if err != nil {
		return nil, err
	}

	chainID := s.accounts.ChainID()
	var nonce uint64
	acc, err := s.accounts.Get(ctx, call.AccountAddress)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if acc != nil {
		chainID = acc.ChainID
		nonce = acc.Nonce
	}

	bundlerCfg, err := s.registry.Resolve(
		args.BundlerID, domain.ProviderKindBundler, chainID,
	)
	if err != nil {
		return nil, err
	}
	if args.PaymasterID != "" {
		if _, err := s.registry.Resolve(
			args.PaymasterID, domain.ProviderKindPaymaster, chainID,
		); err != nil {
			return nil, err
		}
	}

	estimatorCfg, err := s.estimator(bundlerCfg, chainID)
	if err != nil {
		return nil, err
	}
	estimator, err := s.clients.Bundler(*estimatorCfg)
	if err != nil {
		return nil, err
	}
	op, err := newUserOperation(*call, nonce)
	if err != nil {
		return nil, err
	}
	return s.estimate(ctx, estimatorCfg.ID, estimator, op)
}

// Send relays the call and returns the stored operation. When the providers
// keep failing, a failed operation is stored and returned together with a
// *TransactionFailedError, so that it can be retried.
func (s *Service) Send(
	ctx context.Context, args SendArgs,
) (*domain.Operation, error) {
	call, err := domain.NewCall(args.AccountAddress, args.To, args.Value, args.Data)
	if err != nil {
		return nil, err
	}

	return s.relay(ctx, relayRequest{
		call:        *call,
		sessionID:   args.SessionID,
		function:    args.Function,
		bundlerID:   args.BundlerID,
		paymasterID: args.PaymasterID,
	})
}

// GetStatus returns the operation with the given hash. Pending operations
// are refreshed with the receipt of their bundler, if available.
func (s *Service) GetStatus(
	ctx context.Context, hash string,
) (*domain.Operation, error) {
	op, err := s.repoManager.OperationRepository().GetOperationByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if op.IsFinal() {
		return op, nil
	}

	updated, err := s.poll(ctx, *op)
	if err != nil {
		log.WithError(err).WithField("hash", hash).Debug(
			"failed to refresh operation status",
		)
		return op, nil
	}
	return updated, nil
}

// Retry resubmits a failed operation with a new nonce, possibly through other
// providers. Every failed operation can be retried at most once.
func (s *Service) Retry(
	ctx context.Context, args RetryArgs,
) (*domain.Operation, error) {
	s.retryLock.Lock(args.Hash)
	defer s.retryLock.Unlock(args.Hash)

	repo := s.repoManager.OperationRepository()
	prev, err := repo.GetOperationByHash(ctx, args.Hash)
	if err != nil {
		return nil, err
	}
	if prev.Status != domain.OperationStatusFailed {
		return nil, domain.ErrOperationNotFailed
	}
	retries, err := repo.GetRetriesOf(ctx, prev.Hash)
	if err != nil {
		return nil, err
	}
	if len(retries) > 0 {
		return nil, fmt.Errorf(
			"%w by %s", domain.ErrOperationAlreadyRetried, retries[0].Hash,
		)
	}

	bundlerID := args.BundlerID
	if bundlerID == "" {
		bundlerID = prev.BundlerID
	}
	paymasterID := args.PaymasterID
	if paymasterID == "" {
		paymasterID = prev.PaymasterID
	}

	return s.relay(ctx, relayRequest{
		call:        prev.Call(),
		sessionID:   prev.SessionID,
		function:    prev.Function,
		bundlerID:   bundlerID,
		paymasterID: paymasterID,
		retryOf:     prev,
	})
}

// ListOperations returns the operations of the account ordered by creation
// time.
func (s *Service) ListOperations(
	ctx context.Context, accountAddress string,
) ([]domain.Operation, error) {
	addr, err := domain.NormalizeAddress(accountAddress)
	if err != nil {
		return nil, err
	}
	return s.repoManager.OperationRepository().GetOperationsForAccount(ctx, addr)
}

// SyncPending polls the bundlers for the receipts of all pending operations
// and returns how many reached a final status.
func (s *Service) SyncPending(ctx context.Context) (int, error) {
	ops, err := s.repoManager.OperationRepository().GetOperationsByStatus(
		ctx, domain.OperationStatusPending,
	)
	if err != nil {
		return 0, err
	}
	if len(ops) <= 0 {
		return 0, nil
	}

	settled := atomic.NewInt64(0)
	eg := &errgroup.Group{}
	eg.SetLimit(maxConcurrentPolls)
	for i := range ops {
		op := ops[i]
		eg.Go(func() error {
			updated, err := s.poll(ctx, op)
			if err != nil {
				return fmt.Errorf("operation %s: %w", op.Hash, err)
			}
			if updated.IsFinal() {
				settled.Inc()
			}
			return nil
		})
	}
	err = eg.Wait()

	if count := settled.Load(); count > 0 {
		log.Infof("settled %d pending operations", count)
	}
	return int(settled.Load()), err
}

type relayRequest struct {
	call        domain.Call
	sessionID   string
	function    string
	bundlerID   string
	paymasterID string
	retryOf     *domain.Operation
}

func (s *Service) relay(
	ctx context.Context, req relayRequest,
) (*domain.Operation, error) {
	if err := req.call.CheckFunction(req.function); err != nil {
		return nil, err
	}

	acc, err := s.accounts.Ensure(ctx, req.call.AccountAddress)
	if err != nil {
		return nil, err
	}
	chainID := acc.ChainID

	bundlerCfg, err := s.registry.Resolve(
		req.bundlerID, domain.ProviderKindBundler, chainID,
	)
	if err != nil {
		return nil, err
	}
	paymasterCfg, err := s.resolvePaymaster(req.paymasterID, chainID)
	if err != nil {
		return nil, err
	}
	estimatorCfg, err := s.estimator(bundlerCfg, chainID)
	if err != nil {
		return nil, err
	}

	selector := req.call.Selector()
	if req.function == "" {
		req.function = selector
	}
	if req.sessionID != "" {
		if err := s.sessions.Authorize(
			ctx, acc.Address, req.sessionID, req.call.To, selector,
			req.call.Value,
		); err != nil {
			if errors.Is(err, domain.ErrSessionKeyDenied) {
				return nil, &TransactionFailedError{reasonSessionDenied, err}
			}
			return nil, err
		}
	}

	nonce, err := s.accounts.ReserveNonce(ctx, acc.Address)
	if err != nil {
		s.release(ctx, req)
		return nil, err
	}

	result, userOpHash, err := s.submit(
		ctx, req.call, nonce, chainID, bundlerCfg, estimatorCfg, paymasterCfg,
	)

	paymasterID := ""
	if paymasterCfg != nil {
		paymasterID = paymasterCfg.ID
	}
	now := s.clock.Now()

	if err != nil {
		s.release(ctx, req)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		op := domain.NewOperation(
			req.call, chainID, nonce, bundlerCfg.ID, paymasterID,
			failedHash(userOpHash), userOpHash, domain.OperationStatusFailed, now,
		)
		op.FailureReason = err.Error()
		s.decorate(op, req, bundlerCfg)

		if addErr := s.repoManager.OperationRepository().AddOperation(
			context.WithoutCancel(ctx), op,
		); addErr != nil {
			log.WithError(addErr).Warn("failed to store failed operation")
			return nil, &TransactionFailedError{reasonProviderFailure, err}
		}

		log.WithError(err).WithFields(log.Fields{
			"account": op.AccountAddress,
			"hash":    op.Hash,
			"bundler": op.BundlerID,
		}).Warn("operation failed")
		s.notify(pubsub.EventOperationFailed, *op)
		return op, &TransactionFailedError{reasonProviderFailure, err}
	}

	status := domain.OperationStatusSuccess
	if s.opts.ConfirmOnChain {
		status = domain.OperationStatusPending
	}
	hash := result.Hash
	if hash == "" {
		hash = result.UserOpHash
	}
	if result.UserOpHash != "" {
		userOpHash = result.UserOpHash
	}

	op := domain.NewOperation(
		req.call, chainID, nonce, bundlerCfg.ID, paymasterID,
		hash, userOpHash, status, now,
	)
	s.decorate(op, req, bundlerCfg)

	if err := s.repoManager.OperationRepository().AddOperation(
		context.WithoutCancel(ctx), op,
	); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"account": op.AccountAddress,
		"hash":    op.Hash,
		"nonce":   op.Nonce,
		"bundler": op.BundlerID,
		"status":  op.Status,
	}).Info("operation relayed")
	s.notify(pubsub.EventOperationSent, *op)
	return op, nil
}

// submit estimates, sponsors and sends the user operation. No lock is held
// while talking with the providers.
func (s *Service) submit(
	ctx context.Context, call domain.Call, nonce uint64, chainID int64,
	bundlerCfg, estimatorCfg, paymasterCfg *domain.ProviderConfig,
) (*ports.SubmitResult, string, error) {
	op, err := newUserOperation(call, nonce)
	if err != nil {
		return nil, "", err
	}
	chain := big.NewInt(chainID)
	userOpHash := op.Hash(s.entryPoint, chain).Hex()

	bundler, err := s.clients.Bundler(*bundlerCfg)
	if err != nil {
		return nil, userOpHash, err
	}

	estimator := bundler
	if estimatorCfg.ID != bundlerCfg.ID {
		if estimator, err = s.clients.Bundler(*estimatorCfg); err != nil {
			return nil, userOpHash, err
		}
	}
	estimate, err := s.estimate(ctx, estimatorCfg.ID, estimator, op)
	if err != nil {
		return nil, userOpHash, err
	}
	applyEstimate(op, estimate)

	if paymasterCfg != nil && paymasterCfg.SponsorsGas() {
		paymaster, err := s.clients.Paymaster(*paymasterCfg)
		if err != nil {
			return nil, userOpHash, err
		}
		var data []byte
		if err := s.call(ctx, paymasterCfg.ID, methodSponsor, func(ctx context.Context) error {
			var err error
			data, err = paymaster.SponsorUserOperation(ctx, *op.Copy())
			return err
		}); err != nil {
			return nil, userOpHash, err
		}
		op.PaymasterAndData = data
	}
	userOpHash = op.Hash(s.entryPoint, chain).Hex()

	var result *ports.SubmitResult
	if err := s.call(ctx, bundlerCfg.ID, methodSend, func(ctx context.Context) error {
		var err error
		result, err = bundler.SendUserOperation(ctx, *op.Copy())
		return err
	}); err != nil {
		return nil, userOpHash, err
	}
	return result, userOpHash, nil
}

// estimator returns the bundler estimating gas for operations sent through
// bundlerCfg: the bundler itself, or the preferred bundler of the chain that
// supports gas estimation.
func (s *Service) estimator(
	bundlerCfg *domain.ProviderConfig, chainID int64,
) (*domain.ProviderConfig, error) {
	if bundlerCfg.Bundler != nil && bundlerCfg.Bundler.SupportsGasEstimation {
		return bundlerCfg, nil
	}

	candidates := s.registry.Select(registry.Filter{
		Kind: domain.ProviderKindBundler, ChainID: chainID,
	})
	for i := range candidates {
		if c := candidates[i]; c.Bundler != nil && c.Bundler.SupportsGasEstimation {
			log.WithFields(log.Fields{
				"bundler":   bundlerCfg.ID,
				"estimator": c.ID,
			}).Debug("bundler does not estimate gas, using another one")
			return &candidates[i], nil
		}
	}
	return nil, fmt.Errorf(
		"%w: %s on chain %d", domain.ErrProviderNoGasEstimation,
		bundlerCfg.ID, chainID,
	)
}

func (s *Service) estimate(
	ctx context.Context, providerID string,
	bundler ports.BundlerClient, op *userop.UserOperation,
) (*domain.GasEstimate, error) {
	var estimate *domain.GasEstimate
	if err := s.call(ctx, providerID, methodEstimate, func(ctx context.Context) error {
		var err error
		estimate, err = bundler.EstimateGas(ctx, *op.Copy())
		return err
	}); err != nil {
		return nil, err
	}
	return s.buffer(*estimate), nil
}

// call runs fn with the provider timeout, retrying it with exponential
// backoff as long as it fails with ErrProviderUnavailable. A timeout is
// reported as ErrProviderUnavailable unless ctx itself is done.
func (s *Service) call(
	ctx context.Context, providerID, method string,
	fn func(ctx context.Context) error,
) error {
	var lastErr error
	//nolint
	retry.Retry(
		func(attempt uint) error {
			if err := ctx.Err(); err != nil {
				lastErr = err
				return nil
			}

			callCtx, cancel := context.WithTimeout(ctx, s.opts.ProviderTimeout)
			defer cancel()

			start := time.Now()
			err := fn(callCtx)
			if err != nil && ctx.Err() == nil &&
				errors.Is(callCtx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf(
					"%w: %s timed out after %s",
					ports.ErrProviderUnavailable, method, s.opts.ProviderTimeout,
				)
			}
			stats.ObserveProviderCall(providerID, method, start, err)

			lastErr = err
			if err != nil && ctx.Err() != nil {
				lastErr = ctx.Err()
				return nil
			}
			if errors.Is(err, ports.ErrProviderUnavailable) {
				log.WithError(err).WithFields(log.Fields{
					"provider": providerID,
					"method":   method,
					"attempt":  attempt,
				}).Warn("provider call failed")
				return err
			}
			return nil
		},
		strategy.Limit(s.opts.MaxRetries+1),
		strategy.Backoff(backoff.BinaryExponential(s.opts.RetryBackoff)),
	)
	return lastErr
}

func (s *Service) poll(
	ctx context.Context, op domain.Operation,
) (*domain.Operation, error) {
	cfg, err := s.registry.Get(op.BundlerID)
	if err != nil {
		return nil, err
	}
	bundler, err := s.clients.Bundler(*cfg)
	if err != nil {
		return nil, err
	}

	var receipt *ports.Receipt
	if err := s.call(ctx, cfg.ID, methodReceipt, func(ctx context.Context) error {
		var err error
		receipt, err = bundler.GetReceipt(ctx, op.Hash)
		return err
	}); err != nil {
		return nil, err
	}
	if receipt == nil || receipt.Status == domain.OperationStatusPending {
		return &op, nil
	}

	var updated *domain.Operation
	var changed bool
	if err := s.repoManager.OperationRepository().UpdateOperation(
		ctx, op.Hash, func(o *domain.Operation) (*domain.Operation, error) {
			updated, changed = o, false
			if o.IsFinal() {
				return o, nil
			}
			now := s.clock.Now()
			if receipt.Status == domain.OperationStatusSuccess {
				if err := o.Confirm(receipt.GasUsed, now); err != nil {
					return nil, err
				}
			} else {
				if err := o.Fail(receipt.Reason, receipt.GasUsed, now); err != nil {
					return nil, err
				}
			}
			changed = true
			return o, nil
		},
	); err != nil {
		return nil, err
	}

	if changed {
		log.WithFields(log.Fields{
			"hash":     updated.Hash,
			"status":   updated.Status,
			"gas_used": updated.GasUsed,
		}).Info("operation settled")
		if updated.Status == domain.OperationStatusFailed {
			s.notify(pubsub.EventOperationFailed, *updated)
		} else {
			stats.ObserveOperation(string(updated.Status))
		}
	}
	return updated, nil
}

func (s *Service) resolvePaymaster(
	id string, chainID int64,
) (*domain.ProviderConfig, error) {
	if id != "" {
		return s.registry.Resolve(id, domain.ProviderKindPaymaster, chainID)
	}
	cfg, err := s.registry.Default(domain.ProviderKindPaymaster, chainID)
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return cfg, nil
}

// release gives back the spend reserved on the session key, if any.
func (s *Service) release(ctx context.Context, req relayRequest) {
	if req.sessionID == "" {
		return
	}
	if err := s.sessions.Release(
		context.WithoutCancel(ctx), req.call.AccountAddress, req.sessionID,
		req.call.To, req.call.Value,
	); err != nil {
		log.WithError(err).WithField("session_id", req.sessionID).Warn(
			"failed to release session key spend",
		)
	}
}

func (s *Service) decorate(
	op *domain.Operation, req relayRequest, bundlerCfg *domain.ProviderConfig,
) {
	op.SessionID = req.sessionID
	op.Function = req.function
	if req.retryOf == nil {
		return
	}
	op.RetryOf = req.retryOf.Hash
	if bundlerCfg.Bundler != nil && bundlerCfg.Bundler.SupportsUserOpHash &&
		req.retryOf.UserOpHash != "" {
		op.UserOpHash = req.retryOf.UserOpHash
	}
}

func (s *Service) buffer(estimate domain.GasEstimate) *domain.GasEstimate {
	buffered := estimate
	buffered.PreVerificationGas = s.applyBuffer(estimate.PreVerificationGas)
	buffered.VerificationGasLimit = s.applyBuffer(estimate.VerificationGasLimit)
	buffered.CallGasLimit = s.applyBuffer(estimate.CallGasLimit)
	buffered.GasLimit = buffered.Total()
	if estimate.MaxFeePerGas != nil {
		buffered.MaxFeePerGas = new(big.Int).Set(estimate.MaxFeePerGas)
	}
	if estimate.MaxPriorityFeePerGas != nil {
		buffered.MaxPriorityFeePerGas = new(big.Int).Set(estimate.MaxPriorityFeePerGas)
	}
	return &buffered
}

func (s *Service) applyBuffer(gas uint64) uint64 {
	value := decimal.NewFromBigInt(new(big.Int).SetUint64(gas), 0)
	return value.Mul(s.gasFactor).Ceil().BigInt().Uint64()
}

func (s *Service) notify(event string, op domain.Operation) {
	stats.ObserveOperation(string(op.Status))
	s.pubsub.Go(event, func() error {
		return s.pubsub.PublishOperationEvent(event, op)
	})
}

func newUserOperation(call domain.Call, nonce uint64) (*userop.UserOperation, error) {
	data, err := hexutil.Decode(call.Data)
	if err != nil {
		return nil, domain.ErrOperationInvalidData
	}
	return userop.New(
		common.HexToAddress(call.AccountAddress), nonce,
		common.HexToAddress(call.To), call.ValueBig(), data,
	)
}

func applyEstimate(op *userop.UserOperation, estimate *domain.GasEstimate) {
	op.PreVerificationGas = new(big.Int).SetUint64(estimate.PreVerificationGas)
	op.VerificationGasLimit = new(big.Int).SetUint64(estimate.VerificationGasLimit)
	op.CallGasLimit = new(big.Int).SetUint64(estimate.CallGasLimit)
	if estimate.MaxFeePerGas != nil {
		op.MaxFeePerGas = new(big.Int).Set(estimate.MaxFeePerGas)
	}
	if estimate.MaxPriorityFeePerGas != nil {
		op.MaxPriorityFeePerGas = new(big.Int).Set(estimate.MaxPriorityFeePerGas)
	}
}

// failedHash derives the key failed operations are stored with, since they
// never got a hash from a bundler.
func failedHash(userOpHash string) string {
	return crypto.Keccak256Hash([]byte("failed"), common.FromHex(userOpHash)).Hex()
}
