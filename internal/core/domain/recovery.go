package domain

import (
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/samber/lo"
)

// RecoveryStatus is the lifecycle status of a recovery request.
type RecoveryStatus string

const (
	RecoveryStatusPending   RecoveryStatus = "pending"
	RecoveryStatusApproved  RecoveryStatus = "approved"
	RecoveryStatusExecuted  RecoveryStatus = "executed"
	RecoveryStatusCancelled RecoveryStatus = "cancelled"
	RecoveryStatusExpired   RecoveryStatus = "expired"
)

const (
	recoveryEventApprove = "approve"
	recoveryEventExecute = "execute"
	recoveryEventCancel  = "cancel"
	recoveryEventExpire  = "expire"
)

// RecoveryRequest is a guardian-approved, time-locked request to recover a
// smart account.
type RecoveryRequest struct {
	ID             string
	AccountAddress string
	Guardians      []string
	Threshold      int
	// Approvals is ordered by approval time.
	Approvals    []string
	Status       RecoveryStatus
	CreatedAt    time.Time
	ExecuteAfter time.Time
	// ExpiresAt is zero when pending requests never expire.
	ExpiresAt    time.Time
	ExecutedAt   time.Time
	CancelledAt  time.Time
	CancelReason string
}

// NewRecoveryRequest returns a pending request that can be executed not
// before createdAt+delay. A non-zero maxPending sets the time after which a
// still pending request expires.
func NewRecoveryRequest(
	id, accountAddress string, guardians []string, threshold int,
	createdAt time.Time, delay, maxPending time.Duration,
) (*RecoveryRequest, error) {
	if accountAddress == "" || len(guardians) <= 0 {
		return nil, ErrRecoveryMissingRequiredFields
	}
	account, err := NormalizeAddress(accountAddress)
	if err != nil {
		return nil, err
	}

	normalized := make([]string, 0, len(guardians))
	for _, g := range guardians {
		addr, err := NormalizeAddress(g)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrRecoveryInvalidGuardian, g)
		}
		normalized = append(normalized, addr)
	}
	normalized = lo.Uniq(normalized)

	if threshold < 1 || threshold > len(normalized) {
		return nil, fmt.Errorf(
			"%w: got %d for %d guardians",
			ErrRecoveryInvalidThreshold, threshold, len(normalized),
		)
	}

	req := &RecoveryRequest{
		ID:             id,
		AccountAddress: account,
		Guardians:      normalized,
		Threshold:      threshold,
		Approvals:      make([]string, 0, threshold),
		Status:         RecoveryStatusPending,
		CreatedAt:      createdAt,
		ExecuteAfter:   createdAt.Add(delay),
	}
	if maxPending > 0 {
		req.ExpiresAt = createdAt.Add(maxPending)
	}
	return req, nil
}

// IsOpen returns whether the request can still be approved, executed or
// cancelled.
func (r *RecoveryRequest) IsOpen() bool {
	return r.Status == RecoveryStatusPending || r.Status == RecoveryStatusApproved
}

// IsGuardian ...
func (r *RecoveryRequest) IsGuardian(address string) bool {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return false
	}
	return lo.Contains(r.Guardians, addr)
}

// ShouldExpire returns whether a pending request outlived its max lifetime.
func (r *RecoveryRequest) ShouldExpire(now time.Time) bool {
	return r.Status == RecoveryStatusPending &&
		!r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Approve records the approval of a guardian. The returned bool is true when
// this approval made the request reach its threshold.
func (r *RecoveryRequest) Approve(guardian string) (bool, error) {
	if !r.IsGuardian(guardian) {
		return false, ErrRecoveryNotAGuardian
	}
	if r.Status != RecoveryStatusPending {
		return false, r.invalidState(recoveryEventApprove)
	}
	addr, _ := NormalizeAddress(guardian)
	if lo.Contains(r.Approvals, addr) {
		return false, ErrRecoveryAlreadyApproved
	}

	r.Approvals = append(r.Approvals, addr)
	if len(r.Approvals) < r.Threshold {
		return false, nil
	}
	if err := r.transition(recoveryEventApprove); err != nil {
		return false, err
	}
	return true, nil
}

// Execute completes an approved request whose delay has elapsed.
func (r *RecoveryRequest) Execute(now time.Time) error {
	if r.Status != RecoveryStatusApproved {
		return r.invalidState(recoveryEventExecute)
	}
	if now.Before(r.ExecuteAfter) {
		return fmt.Errorf(
			"%w: executable after %s", ErrRecoveryTooEarly,
			r.ExecuteAfter.UTC().Format(time.RFC3339),
		)
	}
	if err := r.transition(recoveryEventExecute); err != nil {
		return err
	}
	r.ExecutedAt = now
	return nil
}

// Cancel aborts a pending or approved request.
func (r *RecoveryRequest) Cancel(now time.Time, reason string) error {
	if err := r.transition(recoveryEventCancel); err != nil {
		return err
	}
	r.CancelledAt = now
	r.CancelReason = reason
	return nil
}

// Expire moves a pending request to the expired status.
func (r *RecoveryRequest) Expire() error {
	return r.transition(recoveryEventExpire)
}

func (r *RecoveryRequest) transition(event string) error {
	sm := fsm.NewFSM(
		string(r.Status),
		fsm.Events{
			{
				Name: recoveryEventApprove,
				Src:  []string{string(RecoveryStatusPending)},
				Dst:  string(RecoveryStatusApproved),
			},
			{
				Name: recoveryEventExecute,
				Src:  []string{string(RecoveryStatusApproved)},
				Dst:  string(RecoveryStatusExecuted),
			},
			{
				Name: recoveryEventCancel,
				Src: []string{
					string(RecoveryStatusPending), string(RecoveryStatusApproved),
				},
				Dst: string(RecoveryStatusCancelled),
			},
			{
				Name: recoveryEventExpire,
				Src:  []string{string(RecoveryStatusPending)},
				Dst:  string(RecoveryStatusExpired),
			},
		},
		fsm.Callbacks{},
	)

	if err := sm.Event(event); err != nil {
		return r.invalidState(event)
	}
	r.Status = RecoveryStatus(sm.Current())
	return nil
}

func (r *RecoveryRequest) invalidState(event string) error {
	return fmt.Errorf(
		"%w: cannot %s a request in status %s",
		ErrRecoveryInvalidState, event, r.Status,
	)
}
