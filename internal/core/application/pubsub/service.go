package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

const (
	EventSessionKeyCreated = "SESSION_KEY_CREATED"
	EventSessionKeyRevoked = "SESSION_KEY_REVOKED"
	EventRecoveryInitiated = "RECOVERY_INITIATED"
	EventRecoveryApproved  = "RECOVERY_APPROVED"
	EventRecoveryExecuted  = "RECOVERY_EXECUTED"
	EventRecoveryCancelled = "RECOVERY_CANCELLED"
	EventRecoveryExpired   = "RECOVERY_EXPIRED"
	EventOperationSent     = "OPERATION_SUBMITTED"
	EventOperationFailed   = "OPERATION_FAILED"
)

var (
	// ErrWebhookManagerNotInitialized is returned when attempting to manage
	// webhooks without a configured pubsub.
	ErrWebhookManagerNotInitialized = errors.New("webhook manager is not initialized")
	// ErrInvalidEvent ...
	ErrInvalidEvent = errors.New("invalid webhook event type")

	events = map[string]struct{}{
		EventSessionKeyCreated: {},
		EventSessionKeyRevoked: {},
		EventRecoveryInitiated: {},
		EventRecoveryApproved:  {},
		EventRecoveryExecuted:  {},
		EventRecoveryCancelled: {},
		EventRecoveryExpired:   {},
		EventOperationSent:     {},
		EventOperationFailed:   {},
		ports.AnyTopic:         {},
	}
)

// Service publishes the core events to the webhooks registered to the
// underlying SecurePubSub. With a nil pubsub every publish is a no-op.
type Service struct {
	pubsub  ports.SecurePubSub
	pending *sync.WaitGroup
}

func NewService(pubsub ports.SecurePubSub) *Service {
	return &Service{pubsub, &sync.WaitGroup{}}
}

func (s *Service) SecurePubSub() ports.SecurePubSub {
	return s.pubsub
}

func (s *Service) AddWebhook(
	_ context.Context, event, endpoint, secret string,
) (string, error) {
	if s.pubsub == nil {
		return "", ErrWebhookManagerNotInitialized
	}
	if _, ok := events[event]; !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidEvent, event)
	}
	return s.pubsub.Subscribe(event, endpoint, secret)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	if s.pubsub == nil {
		return ErrWebhookManagerNotInitialized
	}
	return s.pubsub.Unsubscribe(ports.UnspecifiedTopic, id)
}

func (s *Service) ListWebhooks(
	_ context.Context, event string,
) ([]ports.Subscription, error) {
	if s.pubsub == nil {
		return nil, ErrWebhookManagerNotInitialized
	}
	return s.pubsub.ListSubscriptionsForTopic(event), nil
}

func (s *Service) PublishSessionKeyEvent(
	event string, key domain.SessionKey,
) error {
	payload := map[string]interface{}{
		"event":           event,
		"session_id":      key.ID,
		"account_address": key.AccountAddress,
		"targets":         targets(key.Permissions),
		"expires_at":      key.ExpiresAt.UTC().Format(time.RFC3339),
		"is_active":       key.IsActive,
	}
	return s.publish(event, payload)
}

func (s *Service) PublishRecoveryEvent(
	event string, req domain.RecoveryRequest,
) error {
	payload := map[string]interface{}{
		"event":           event,
		"request_id":      req.ID,
		"account_address": req.AccountAddress,
		"status":          req.Status,
		"threshold":       req.Threshold,
		"approvals":       len(req.Approvals),
		"execute_after":   req.ExecuteAfter.UTC().Format(time.RFC3339),
	}
	if req.CancelReason != "" {
		payload["reason"] = req.CancelReason
	}
	return s.publish(event, payload)
}

func (s *Service) PublishOperationEvent(event string, op domain.Operation) error {
	payload := map[string]interface{}{
		"event":           event,
		"hash":            op.Hash,
		"user_op_hash":    op.UserOpHash,
		"account_address": op.AccountAddress,
		"to":              op.To,
		"value":           op.Value,
		"status":          op.Status,
		"bundler":         op.BundlerID,
		"paymaster":       op.PaymasterID,
	}
	if op.SessionID != "" {
		payload["session_id"] = op.SessionID
	}
	if op.RetryOf != "" {
		payload["retry_of"] = op.RetryOf
	}
	if op.FailureReason != "" {
		payload["reason"] = op.FailureReason
	}
	return s.publish(event, payload)
}

// Go runs publish in background. Failures are only logged.
func (s *Service) Go(event string, publish func() error) {
	if s.pubsub == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := publish(); err != nil {
			log.WithError(err).WithField("event", event).Warn(
				"failed to publish event",
			)
		}
	}()
}

// Close waits for the pending publications before closing the pubsub.
func (s *Service) Close() {
	if s.pubsub == nil {
		return
	}
	s.pending.Wait()
	if err := s.pubsub.Close(); err != nil {
		log.WithError(err).Warn("error on closing pubsub")
	}
}

func (s *Service) publish(event string, payload map[string]interface{}) error {
	if s.pubsub == nil {
		return nil
	}
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(event, string(message))
}

func targets(permissions []domain.Permission) []string {
	list := make([]string, 0, len(permissions))
	for _, p := range permissions {
		list = append(list, p.Target)
	}
	return list
}
