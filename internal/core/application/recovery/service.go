package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/core/application/pubsub"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	"github.com/tdex-network/aawalletd/pkg/keymutex"
	"github.com/tdex-network/aawalletd/pkg/stats"
)

const (
	maxCancelRetries = 3
	cancelRetryWait  = 10 * time.Millisecond
)

// InitiateArgs holds the arguments of Initiate. Threshold is a pointer to
// tell a missing value from an invalid one.
type InitiateArgs struct {
	AccountAddress string
	Guardians      []string
	Threshold      *int
}

// Service coordinates the guardian approved, time-locked recovery of smart
// accounts.
type Service struct {
	pubsub      *pubsub.Service
	repoManager ports.RepoManager
	clock       ports.Clock
	ids         ports.IDGenerator
	// executions of the same account are serialized.
	accountLock *keymutex.KeyMutex

	delay      time.Duration
	maxPending time.Duration
}

// NewService returns a recovery coordinator. A zero maxPending disables the
// expiration of pending requests.
func NewService(
	pubsubSvc *pubsub.Service,
	repoManager ports.RepoManager,
	clock ports.Clock,
	ids ports.IDGenerator,
	delay, maxPending time.Duration,
) (*Service, error) {
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	if ids == nil {
		return nil, fmt.Errorf("missing id generator")
	}
	if delay < 0 || maxPending < 0 {
		return nil, fmt.Errorf("recovery delay and max pending time must not be negative")
	}

	return &Service{
		pubsubSvc, repoManager, clock, ids, keymutex.New(), delay, maxPending,
	}, nil
}

// Initiate opens a new pending recovery request for the account.
func (s *Service) Initiate(
	ctx context.Context, args InitiateArgs,
) (*domain.RecoveryRequest, error) {
	if args.AccountAddress == "" || len(args.Guardians) <= 0 ||
		args.Threshold == nil {
		return nil, domain.ErrRecoveryMissingRequiredFields
	}

	req, err := domain.NewRecoveryRequest(
		s.ids.NewID(), args.AccountAddress, args.Guardians, *args.Threshold,
		s.clock.Now(), s.delay, s.maxPending,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repoManager.RecoveryRepository().AddRecoveryRequest(
		ctx, req,
	); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"account":       req.AccountAddress,
		"request_id":    req.ID,
		"threshold":     req.Threshold,
		"guardians":     len(req.Guardians),
		"execute_after": req.ExecuteAfter.UTC().Format(time.RFC3339),
	}).Info("recovery initiated")

	s.notify(pubsub.EventRecoveryInitiated, *req)
	return req, nil
}

// Approve records the approval of guardian. ErrRecoveryAlreadyApproved is
// returned along with the unchanged request.
func (s *Service) Approve(
	ctx context.Context, id, guardian string,
) (*domain.RecoveryRequest, error) {
	var reached bool
	req, err := s.update(ctx, id, func(req *domain.RecoveryRequest, _ time.Time) error {
		var err error
		reached, err = req.Approve(guardian)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrRecoveryAlreadyApproved) {
			current, getErr := s.Status(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			return current, err
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"request_id": id,
		"approvals":  len(req.Approvals),
		"threshold":  req.Threshold,
	}).Info("recovery approved by guardian")

	if reached {
		s.notify(pubsub.EventRecoveryApproved, *req)
	}
	return req, nil
}

// Execute completes an approved request whose delay elapsed and cancels any
// other open request of the same account. A request of an account that was
// already recovered by another one is cancelled and ErrRecoveryInvalidState
// is returned.
// If the other requests cannot be cancelled, the executed request is returned
// together with the error.
func (s *Service) Execute(
	ctx context.Context, id string,
) (*domain.RecoveryRequest, error) {
	current, err := s.repoManager.RecoveryRepository().GetRecoveryRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	s.accountLock.Lock(current.AccountAddress)
	defer s.accountLock.Unlock(current.AccountAddress)

	executed, err := s.executedSibling(ctx, *current)
	if err != nil {
		return nil, err
	}
	if executed != nil {
		if err := s.supersede(ctx, id, executed.ID); err != nil {
			log.WithError(err).WithField("request_id", id).Warn(
				"failed to cancel superseded recovery request",
			)
		}
		return nil, fmt.Errorf(
			"%w: account %s already recovered by request %s",
			domain.ErrRecoveryInvalidState, current.AccountAddress, executed.ID,
		)
	}

	req, err := s.update(ctx, id, func(req *domain.RecoveryRequest, now time.Time) error {
		return req.Execute(now)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"account":    req.AccountAddress,
		"request_id": id,
	}).Info("recovery executed")
	s.notify(pubsub.EventRecoveryExecuted, *req)

	if err := s.cancelSiblings(ctx, *req); err != nil {
		log.WithError(err).WithField("request_id", id).Warn(
			"failed to cancel superseded recovery requests",
		)
		return req, fmt.Errorf(
			"recovery %s executed, failed to cancel superseded requests: %w", id, err,
		)
	}
	return req, nil
}

// Cancel aborts a pending or approved request.
func (s *Service) Cancel(
	ctx context.Context, id, reason string,
) (*domain.RecoveryRequest, error) {
	req, err := s.update(ctx, id, func(req *domain.RecoveryRequest, now time.Time) error {
		return req.Cancel(now, reason)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"request_id": id,
		"reason":     reason,
	}).Info("recovery cancelled")
	s.notify(pubsub.EventRecoveryCancelled, *req)
	return req, nil
}

// Status returns the request with the given id.
func (s *Service) Status(
	ctx context.Context, id string,
) (*domain.RecoveryRequest, error) {
	req, err := s.repoManager.RecoveryRepository().GetRecoveryRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.expireIfStale(ctx, req), nil
}

// ListForAccount returns every request of the account ordered by creation
// time.
func (s *Service) ListForAccount(
	ctx context.Context, accountAddress string,
) ([]domain.RecoveryRequest, error) {
	addr, err := domain.NormalizeAddress(accountAddress)
	if err != nil {
		return nil, err
	}
	reqs, err := s.repoManager.RecoveryRepository().GetRecoveryRequestsForAccount(
		ctx, addr,
	)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		reqs[i] = *s.expireIfStale(ctx, &reqs[i])
	}
	return reqs, nil
}

// ExpireStale moves every pending request that outlived the max pending time
// to the expired status and returns how many were expired.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	if s.maxPending <= 0 {
		return 0, nil
	}

	reqs, err := s.repoManager.RecoveryRepository().GetRecoveryRequestsByStatus(
		ctx, domain.RecoveryStatusPending,
	)
	if err != nil {
		return 0, err
	}

	count := 0
	now := s.clock.Now()
	for i := range reqs {
		if !reqs[i].ShouldExpire(now) {
			continue
		}
		if req := s.expireIfStale(ctx, &reqs[i]); req.Status == domain.RecoveryStatusExpired {
			count++
		}
	}
	if count > 0 {
		log.Infof("expired %d stale recovery requests", count)
	}
	return count, nil
}

// update applies fn to the stored request unless the request has to be
// expired first, in which case the expiration is persisted and
// ErrRecoveryInvalidState is returned.
func (s *Service) update(
	ctx context.Context, id string,
	fn func(req *domain.RecoveryRequest, now time.Time) error,
) (*domain.RecoveryRequest, error) {
	var updated *domain.RecoveryRequest
	var expired bool

	if err := s.repoManager.RecoveryRepository().UpdateRecoveryRequest(
		ctx, id, func(req *domain.RecoveryRequest) (*domain.RecoveryRequest, error) {
			now := s.clock.Now()
			expired = req.ShouldExpire(now)
			if expired {
				if err := req.Expire(); err != nil {
					return nil, err
				}
			} else if err := fn(req, now); err != nil {
				return nil, err
			}
			updated = req
			return req, nil
		},
	); err != nil {
		return nil, err
	}

	if expired {
		s.notify(pubsub.EventRecoveryExpired, *updated)
		return nil, fmt.Errorf(
			"%w: request %s expired", domain.ErrRecoveryInvalidState, id,
		)
	}
	return updated, nil
}

func (s *Service) expireIfStale(
	ctx context.Context, req *domain.RecoveryRequest,
) *domain.RecoveryRequest {
	if !req.ShouldExpire(s.clock.Now()) {
		return req
	}

	_, err := s.update(ctx, req.ID, func(*domain.RecoveryRequest, time.Time) error {
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrRecoveryInvalidState) {
		log.WithError(err).WithField("request_id", req.ID).Warn(
			"failed to expire recovery request",
		)
		return req
	}

	current, err := s.repoManager.RecoveryRepository().GetRecoveryRequest(ctx, req.ID)
	if err != nil {
		return req
	}
	return current
}

func (s *Service) executedSibling(
	ctx context.Context, req domain.RecoveryRequest,
) (*domain.RecoveryRequest, error) {
	reqs, err := s.repoManager.RecoveryRepository().GetRecoveryRequestsForAccount(
		ctx, req.AccountAddress,
	)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if reqs[i].ID != req.ID && reqs[i].Status == domain.RecoveryStatusExecuted {
			return &reqs[i], nil
		}
	}
	return nil, nil
}

func (s *Service) cancelSiblings(
	ctx context.Context, executed domain.RecoveryRequest,
) error {
	reqs, err := s.repoManager.RecoveryRepository().GetRecoveryRequestsForAccount(
		ctx, executed.AccountAddress,
	)
	if err != nil {
		return err
	}

	var failed []string
	var lastErr error
	for _, r := range reqs {
		if r.ID == executed.ID || !r.IsOpen() {
			continue
		}
		if err := s.supersede(ctx, r.ID, executed.ID); err != nil {
			failed = append(failed, r.ID)
			lastErr = err
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("requests %v still open: %w", failed, lastErr)
	}
	return nil
}

// supersede cancels the open request with the given id in favour of the
// executed one. Storage failures are retried.
func (s *Service) supersede(ctx context.Context, id, executedID string) error {
	reason := fmt.Sprintf("superseded by %s", executedID)

	var cancelled *domain.RecoveryRequest
	var err error
	//nolint
	retry.Retry(
		func(_ uint) error {
			cancelled = nil
			err = s.repoManager.RecoveryRepository().UpdateRecoveryRequest(
				ctx, id,
				func(req *domain.RecoveryRequest) (*domain.RecoveryRequest, error) {
					if !req.IsOpen() {
						return req, nil
					}
					if err := req.Cancel(s.clock.Now(), reason); err != nil {
						return nil, err
					}
					cancelled = req
					return req, nil
				},
			)
			return err
		},
		strategy.Limit(maxCancelRetries),
		strategy.Wait(cancelRetryWait),
	)
	if err != nil {
		return err
	}

	if cancelled != nil {
		log.WithFields(log.Fields{
			"request_id": cancelled.ID,
			"reason":     reason,
		}).Info("recovery cancelled")
		s.notify(pubsub.EventRecoveryCancelled, *cancelled)
	}
	return nil
}

func (s *Service) notify(event string, req domain.RecoveryRequest) {
	stats.ObserveRecovery(string(req.Status))
	s.pubsub.Go(event, func() error {
		return s.pubsub.PublishRecoveryEvent(event, req)
	})
}
