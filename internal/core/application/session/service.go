package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/core/application/account"
	"github.com/tdex-network/aawalletd/internal/core/application/pubsub"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	"github.com/tdex-network/aawalletd/pkg/stats"
	"github.com/tdex-network/aawalletd/pkg/validator"
)

const resultAllowed = "allowed"

// PermissionArgs ...
type PermissionArgs struct {
	Target           string   `json:"target" validate:"required"`
	AllowedFunctions []string `json:"allowed_functions" validate:"required,min=1,dive,required"`
	SpendingLimit    string   `json:"spending_limit" validate:"omitempty,numeric"`
}

// CreateArgs holds the arguments of Create. A zero ExpiresAt means the
// default time to live of the service.
type CreateArgs struct {
	AccountAddress string           `json:"account_address" validate:"required"`
	PublicKey      string           `json:"public_key"`
	Permissions    []PermissionArgs `json:"permissions" validate:"required,min=1,dive"`
	ExpiresAt      time.Time        `json:"expires_at"`
}

// Service manages the lifecycle of session keys and authorizes the calls
// made with them.
type Service struct {
	accounts    *account.Service
	pubsub      *pubsub.Service
	repoManager ports.RepoManager
	clock       ports.Clock
	ids         ports.IDGenerator
	validator   *validator.Validator

	ttl time.Duration
}

func NewService(
	accountSvc *account.Service,
	pubsubSvc *pubsub.Service,
	repoManager ports.RepoManager,
	clock ports.Clock,
	ids ports.IDGenerator,
	ttl time.Duration,
) (*Service, error) {
	if accountSvc == nil {
		return nil, fmt.Errorf("missing account service")
	}
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
	if ttl <= 0 {
		return nil, fmt.Errorf("session key ttl must be positive")
	}

	return &Service{
		accountSvc, pubsubSvc, repoManager, clock, ids, validator.New(), ttl,
	}, nil
}

// Create issues a new active session key for the account.
func (s *Service) Create(
	ctx context.Context, args CreateArgs,
) (*domain.SessionKey, error) {
	accountAddress, err := domain.NormalizeAddress(args.AccountAddress)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(args); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionKeyInvalidPermissions, err)
	}

	permissions := make([]domain.Permission, 0, len(args.Permissions))
	for _, p := range args.Permissions {
		permission, err := domain.NewPermission(
			p.Target, p.AllowedFunctions, p.SpendingLimit,
		)
		if err != nil {
			return nil, err
		}
		permissions = append(permissions, *permission)
	}

	now := s.clock.Now()
	expiresAt := args.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(s.ttl)
	}

	key, err := domain.NewSessionKey(
		s.ids.SessionKeyID(), accountAddress, args.PublicKey, permissions,
		now, expiresAt,
	)
	if err != nil {
		return nil, err
	}

	if _, err := s.accounts.Ensure(ctx, accountAddress); err != nil {
		return nil, err
	}

	if err := s.repoManager.SessionKeyRepository().AddSessionKey(
		ctx, key,
	); err != nil {
		if errors.Is(err, domain.ErrSessionKeyAlreadyExists) {
			log.WithField("session_id", key.ID).Panic(
				"session key id collision",
			)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"account":    key.AccountAddress,
		"session_id": key.ID,
		"expires_at": key.ExpiresAt.UTC().Format(time.RFC3339),
	}).Info("session key created")

	created := *key
	s.pubsub.Go(pubsub.EventSessionKeyCreated, func() error {
		return s.pubsub.PublishSessionKeyEvent(pubsub.EventSessionKeyCreated, created)
	})
	return key, nil
}

// Get returns the key with the given id if it belongs to the account,
// whatever its status.
func (s *Service) Get(
	ctx context.Context, accountAddress, id string,
) (*domain.SessionKey, error) {
	key, err := s.repoManager.SessionKeyRepository().GetSessionKey(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sameAccount(key, accountAddress) {
		return nil, domain.ErrSessionKeyNotFound
	}
	return key, nil
}

// List returns the effectively active keys of the account ordered by
// creation time.
func (s *Service) List(
	ctx context.Context, accountAddress string,
) ([]domain.SessionKey, error) {
	addr, err := domain.NormalizeAddress(accountAddress)
	if err != nil {
		return nil, err
	}

	keys, err := s.repoManager.SessionKeyRepository().GetSessionKeysForAccount(
		ctx, addr,
	)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	active := make([]domain.SessionKey, 0, len(keys))
	for _, k := range keys {
		if k.IsEffectivelyActive(now) {
			active = append(active, k)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].ID < active[j].ID
		}
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active, nil
}

// Revoke permanently deactivates the key. Keys that are unknown, owned by
// another account, already revoked or expired are reported as not found.
func (s *Service) Revoke(ctx context.Context, accountAddress, id string) error {
	var revoked domain.SessionKey
	if err := s.repoManager.SessionKeyRepository().UpdateSessionKey(
		ctx, id, func(key *domain.SessionKey) (*domain.SessionKey, error) {
			if !sameAccount(key, accountAddress) {
				return nil, domain.ErrSessionKeyNotFound
			}
			if err := key.Revoke(s.clock.Now()); err != nil {
				return nil, err
			}
			revoked = *key
			return key, nil
		},
	); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"account":    revoked.AccountAddress,
		"session_id": id,
	}).Info("session key revoked")

	s.pubsub.Go(pubsub.EventSessionKeyRevoked, func() error {
		return s.pubsub.PublishSessionKeyEvent(pubsub.EventSessionKeyRevoked, revoked)
	})
	return nil
}

// Authorize decides whether the key may call function on target moving
// amount and, if so, records the spend. The check and the spend update are
// atomic, so concurrent calls can never exceed the spending limit.
func (s *Service) Authorize(
	ctx context.Context, accountAddress, id, target, function, amount string,
) error {
	value, err := domain.ParseAmount(amount)
	if err != nil {
		return domain.ErrOperationInvalidValue
	}

	err = s.repoManager.SessionKeyRepository().UpdateSessionKey(
		ctx, id, func(key *domain.SessionKey) (*domain.SessionKey, error) {
			if !sameAccount(key, accountAddress) {
				return nil, domain.ErrSessionKeyNotFound
			}
			if err := key.Charge(s.clock.Now(), target, function, value); err != nil {
				return nil, err
			}
			return key, nil
		},
	)
	observe(err)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"session_id": id,
			"target":     target,
			"function":   function,
		}).Debug("session key authorization refused")
		return err
	}
	return nil
}

// Check is like Authorize but does not record any spend.
func (s *Service) Check(
	ctx context.Context, accountAddress, id, target, function, amount string,
) error {
	value, err := domain.ParseAmount(amount)
	if err != nil {
		return domain.ErrOperationInvalidValue
	}
	key, err := s.Get(ctx, accountAddress, id)
	if err != nil {
		return err
	}
	return key.Authorize(s.clock.Now(), target, function, value)
}

// Release gives back an amount reserved by a previous Authorize.
func (s *Service) Release(
	ctx context.Context, accountAddress, id, target, amount string,
) error {
	value, err := domain.ParseAmount(amount)
	if err != nil {
		return domain.ErrOperationInvalidValue
	}
	if value.IsZero() {
		return nil
	}

	return s.repoManager.SessionKeyRepository().UpdateSessionKey(
		ctx, id, func(key *domain.SessionKey) (*domain.SessionKey, error) {
			if !sameAccount(key, accountAddress) {
				return nil, domain.ErrSessionKeyNotFound
			}
			key.Release(target, value)
			return key, nil
		},
	)
}

func sameAccount(key *domain.SessionKey, accountAddress string) bool {
	addr, err := domain.NormalizeAddress(accountAddress)
	if err != nil {
		return false
	}
	return key.AccountAddress == addr
}

func observe(err error) {
	if err == nil {
		stats.ObserveAuthorization(resultAllowed)
		return
	}
	var denied *domain.DeniedError
	if errors.As(err, &denied) {
		stats.ObserveAuthorization(string(denied.Reason))
	}
}
