package application_test

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

// **** Account directory ****

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) Resolve(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

// **** Chain reader ****

type mockChainReader struct {
	mock.Mock
}

func (m *mockChainReader) BalanceAt(
	ctx context.Context, address string,
) (*big.Int, error) {
	args := m.Called(ctx, address)

	var res *big.Int
	if a := args.Get(0); a != nil {
		res = a.(*big.Int)
	}
	return res, args.Error(1)
}

func (m *mockChainReader) IsDeployed(
	ctx context.Context, address string,
) (bool, error) {
	args := m.Called(ctx, address)

	var res bool
	if a := args.Get(0); a != nil {
		res = a.(bool)
	}
	return res, args.Error(1)
}

// **** Pubsub ****

type mockPubSub struct {
	mock.Mock
}

func (m *mockPubSub) Subscribe(topic, endpoint, secret string) (string, error) {
	args := m.Called(topic, endpoint, secret)

	var res string
	if a := args.Get(0); a != nil {
		res = a.(string)
	}
	return res, args.Error(1)
}

func (m *mockPubSub) Unsubscribe(topic, id string) error {
	args := m.Called(topic, id)
	return args.Error(0)
}

func (m *mockPubSub) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	args := m.Called(topic)

	var res []ports.Subscription
	if a := args.Get(0); a != nil {
		res = a.([]ports.Subscription)
	}
	return res
}

func (m *mockPubSub) Publish(topic string, message string) error {
	args := m.Called(topic, message)
	return args.Error(0)
}

func (m *mockPubSub) Close() error {
	args := m.Called()
	return args.Error(0)
}

// **** Provider source ****

type mockProviderSource struct {
	mock.Mock
}

func (m *mockProviderSource) Providers(
	ctx context.Context,
) ([]domain.ProviderConfig, error) {
	args := m.Called(ctx)

	var res []domain.ProviderConfig
	if a := args.Get(0); a != nil {
		res = a.([]domain.ProviderConfig)
	}
	return res, args.Error(1)
}

/*
 * RepoManager
 */
type flakyRepoManager struct {
	ports.RepoManager
	recoveries *flakyRecoveryRepository
}

func newFlakyRepoManager(repoManager ports.RepoManager) flakyRepoManager {
	return flakyRepoManager{
		RepoManager: repoManager,
		recoveries: &flakyRecoveryRepository{
			RecoveryRepository: repoManager.RecoveryRepository(),
			failing:            make(map[string]bool),
			attempts:           make(map[string]int),
		},
	}
}

func (m flakyRepoManager) RecoveryRepository() domain.RecoveryRepository {
	return m.recoveries
}

// flakyRecoveryRepository fails the updates of the requests marked as
// failing.
type flakyRecoveryRepository struct {
	domain.RecoveryRepository

	lock     sync.Mutex
	failing  map[string]bool
	attempts map[string]int
}

func (r *flakyRecoveryRepository) setFailing(id string, failing bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.failing[id] = failing
}

func (r *flakyRecoveryRepository) updateAttempts(id string) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.attempts[id]
}

func (r *flakyRecoveryRepository) UpdateRecoveryRequest(
	ctx context.Context, id string,
	updateFn func(req *domain.RecoveryRequest) (*domain.RecoveryRequest, error),
) error {
	r.lock.Lock()
	r.attempts[id]++
	failing := r.failing[id]
	r.lock.Unlock()

	if failing {
		return errors.New("database is locked")
	}
	return r.RecoveryRepository.UpdateRecoveryRequest(ctx, id, updateFn)
}
