package db_test

import (
	"crypto/rand"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	dbbadger "github.com/tdex-network/aawalletd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/aawalletd/internal/infrastructure/storage/db/inmemory"
)

type repoManager struct {
	ports.RepoManager
	Name string
}

func createRepoManagers(t *testing.T) []repoManager {
	badgerRepoManager, err := dbbadger.NewRepoManager("", log.New())
	require.NoError(t, err)
	t.Cleanup(badgerRepoManager.Close)

	return []repoManager{
		{inmemory.NewRepoManager(), "inmemory"},
		{badgerRepoManager, "badger"},
	}
}

var now = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func randomAddress() string {
	b := make([]byte, 20)
	//nolint
	rand.Read(b)
	return common.BytesToAddress(b).Hex()
}

func makeRandomAccount(t *testing.T) *domain.SmartAccount {
	account, err := domain.NewSmartAccount(randomAddress(), "user", 1, now)
	require.NoError(t, err)
	return account
}

func makeRandomSessionKey(t *testing.T, account string, offset int) *domain.SessionKey {
	perm, err := domain.NewPermission(randomAddress(), []string{"transfer"}, "100")
	require.NoError(t, err)

	createdAt := now.Add(time.Duration(offset) * time.Second)
	key, err := domain.NewSessionKey(
		fmt.Sprintf("session_%d", createdAt.UnixNano()+int64(randomIntn(1000000))),
		account, "", []domain.Permission{*perm}, createdAt, createdAt.Add(time.Hour),
	)
	require.NoError(t, err)
	return key
}

func makeRandomRecoveryRequest(t *testing.T, account string, threshold int) *domain.RecoveryRequest {
	guardians := []string{randomAddress(), randomAddress(), randomAddress()}
	req, err := domain.NewRecoveryRequest(
		randomHex(16), account, guardians, threshold, now, time.Hour, 0,
	)
	require.NoError(t, err)
	return req
}

func makeRandomOperation(t *testing.T, account string) *domain.Operation {
	call, err := domain.NewCall(account, randomAddress(), "10", "0x")
	require.NoError(t, err)
	return domain.NewOperation(
		*call, 1, 0, "bundler", "paymaster", "0x"+randomHex(32), "0x"+randomHex(32),
		domain.OperationStatusSuccess, now,
	)
}

func randomHex(len int) string {
	b := make([]byte, len)
	//nolint
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}

func randomIntn(max int) int {
	b := make([]byte, 4)
	//nolint
	rand.Read(b)
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	return n % max
}
