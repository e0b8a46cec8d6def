package db_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/domain"
)

func TestRecoveryRepositoryImplementations(t *testing.T) {
	repositories := createRepoManagers(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Parallel()

			t.Run("testAddAndGetRecoveryRequest", func(t *testing.T) {
				t.Parallel()
				testAddAndGetRecoveryRequest(t, repo)
			})

			t.Run("testGetRecoveryRequestsByStatus", func(t *testing.T) {
				t.Parallel()
				testGetRecoveryRequestsByStatus(t, repo)
			})

			t.Run("testConcurrentApprovals", func(t *testing.T) {
				t.Parallel()
				testConcurrentApprovals(t, repo)
			})
		})
	}
}

func testAddAndGetRecoveryRequest(t *testing.T, repo repoManager) {
	ctx := context.Background()
	recoveryRepo := repo.RecoveryRepository()
	account := randomAddress()
	req := makeRandomRecoveryRequest(t, account, 2)

	_, err := recoveryRepo.GetRecoveryRequest(ctx, req.ID)
	require.ErrorIs(t, err, domain.ErrRecoveryNotFound)

	require.NoError(t, recoveryRepo.AddRecoveryRequest(ctx, req))
	err = recoveryRepo.AddRecoveryRequest(ctx, req)
	require.ErrorIs(t, err, domain.ErrRecoveryAlreadyExists)

	other := makeRandomRecoveryRequest(t, account, 1)
	require.NoError(t, recoveryRepo.AddRecoveryRequest(ctx, other))

	gotReq, err := recoveryRepo.GetRecoveryRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, req.Guardians, gotReq.Guardians)
	require.Equal(t, domain.RecoveryStatusPending, gotReq.Status)

	reqs, err := recoveryRepo.GetRecoveryRequestsForAccount(ctx, account)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
}

func testGetRecoveryRequestsByStatus(t *testing.T, repo repoManager) {
	ctx := context.Background()
	recoveryRepo := repo.RecoveryRepository()
	req := makeRandomRecoveryRequest(t, randomAddress(), 1)
	require.NoError(t, recoveryRepo.AddRecoveryRequest(ctx, req))

	err := recoveryRepo.UpdateRecoveryRequest(
		ctx, req.ID,
		func(r *domain.RecoveryRequest) (*domain.RecoveryRequest, error) {
			if err := r.Cancel(now, "test"); err != nil {
				return nil, err
			}
			return r, nil
		},
	)
	require.NoError(t, err)

	reqs, err := recoveryRepo.GetRecoveryRequestsByStatus(
		ctx, domain.RecoveryStatusCancelled,
	)
	require.NoError(t, err)
	found := false
	for _, r := range reqs {
		require.Equal(t, domain.RecoveryStatusCancelled, r.Status)
		if r.ID == req.ID {
			found = true
		}
	}
	require.True(t, found)
}

func testConcurrentApprovals(t *testing.T, repo repoManager) {
	ctx := context.Background()
	recoveryRepo := repo.RecoveryRepository()
	req := makeRandomRecoveryRequest(t, randomAddress(), 3)
	require.NoError(t, recoveryRepo.AddRecoveryRequest(ctx, req))

	wg := &sync.WaitGroup{}
	for _, guardian := range req.Guardians {
		wg.Add(1)
		go func(guardian string) {
			defer wg.Done()
			err := recoveryRepo.UpdateRecoveryRequest(
				ctx, req.ID,
				func(r *domain.RecoveryRequest) (*domain.RecoveryRequest, error) {
					if _, err := r.Approve(guardian); err != nil {
						return nil, err
					}
					return r, nil
				},
			)
			require.NoError(t, err)
		}(guardian)
	}
	wg.Wait()

	gotReq, err := recoveryRepo.GetRecoveryRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, gotReq.Approvals, 3)
	require.ElementsMatch(t, req.Guardians, gotReq.Approvals)
	require.Equal(t, domain.RecoveryStatusApproved, gotReq.Status)
}
