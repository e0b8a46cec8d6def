package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/domain"
)

func TestOperationRepositoryImplementations(t *testing.T) {
	repositories := createRepoManagers(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Parallel()

			t.Run("testAddAndGetOperation", func(t *testing.T) {
				t.Parallel()
				testAddAndGetOperation(t, repo)
			})

			t.Run("testGetOperationsByStatusAndRetries", func(t *testing.T) {
				t.Parallel()
				testGetOperationsByStatusAndRetries(t, repo)
			})
		})
	}
}

func testAddAndGetOperation(t *testing.T, repo repoManager) {
	ctx := context.Background()
	opRepo := repo.OperationRepository()
	account := randomAddress()
	op := makeRandomOperation(t, account)

	_, err := opRepo.GetOperationByHash(ctx, op.Hash)
	require.ErrorIs(t, err, domain.ErrOperationNotFound)

	require.NoError(t, opRepo.AddOperation(ctx, op))
	err = opRepo.AddOperation(ctx, op)
	require.ErrorIs(t, err, domain.ErrOperationAlreadyExists)

	gotOp, err := opRepo.GetOperationByHash(ctx, op.Hash)
	require.NoError(t, err)
	require.Equal(t, op.Hash, gotOp.Hash)
	require.Equal(t, op.UserOpHash, gotOp.UserOpHash)
	require.Equal(t, op.Value, gotOp.Value)

	later := makeRandomOperation(t, account)
	later.CreatedAt = later.CreatedAt.Add(time.Minute)
	require.NoError(t, opRepo.AddOperation(ctx, later))

	ops, err := opRepo.GetOperationsForAccount(ctx, account)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	require.Equal(t, op.Hash, ops[0].Hash)
	require.Equal(t, later.Hash, ops[1].Hash)
}

func testGetOperationsByStatusAndRetries(t *testing.T, repo repoManager) {
	ctx := context.Background()
	opRepo := repo.OperationRepository()
	op := makeRandomOperation(t, randomAddress())
	op.Status = domain.OperationStatusPending
	require.NoError(t, opRepo.AddOperation(ctx, op))

	pending, err := opRepo.GetOperationsByStatus(ctx, domain.OperationStatusPending)
	require.NoError(t, err)
	require.Contains(t, hashes(pending), op.Hash)

	err = opRepo.UpdateOperation(
		ctx, op.Hash,
		func(o *domain.Operation) (*domain.Operation, error) {
			if err := o.Fail("reverted", 100, now); err != nil {
				return nil, err
			}
			return o, nil
		},
	)
	require.NoError(t, err)

	pending, err = opRepo.GetOperationsByStatus(ctx, domain.OperationStatusPending)
	require.NoError(t, err)
	require.NotContains(t, hashes(pending), op.Hash)

	retries, err := opRepo.GetRetriesOf(ctx, op.Hash)
	require.NoError(t, err)
	require.Empty(t, retries)

	retry := makeRandomOperation(t, op.AccountAddress)
	retry.RetryOf = op.Hash
	require.NoError(t, opRepo.AddOperation(ctx, retry))

	retries, err = opRepo.GetRetriesOf(ctx, op.Hash)
	require.NoError(t, err)
	require.Len(t, retries, 1)
	require.Equal(t, retry.Hash, retries[0].Hash)
}

func hashes(ops []domain.Operation) []string {
	list := make([]string, 0, len(ops))
	for _, op := range ops {
		list = append(list, op.Hash)
	}
	return list
}
