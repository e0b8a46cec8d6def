package directory_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/infrastructure/directory"
)

const (
	alice = "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"
	bob   = "0x1111111111111111111111111111111111111111"
)

func TestStatic(t *testing.T) {
	dir, err := directory.NewStatic(map[string]string{
		"alice": strings.ToLower(alice),
	})
	require.NoError(t, err)

	address, err := dir.Resolve(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, alice, address)

	_, err = dir.Resolve(context.Background(), "carol")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = directory.NewStatic(map[string]string{"alice": "not-an-address"})
	require.ErrorIs(t, err, domain.ErrAccountInvalidAddress)
}

func TestFromFile(t *testing.T) {
	content := `{"accounts": [
		{"user_id": "Alice", "address": "` + alice + `"},
		{"user_id": "bob", "address": "` + bob + `"}
	]}`
	path := filepath.Join(t.TempDir(), "accounts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	dir, err := directory.NewFromFile(path)
	require.NoError(t, err)

	address, err := dir.Resolve(context.Background(), "Alice")
	require.NoError(t, err)
	require.Equal(t, alice, address)

	address, err = dir.Resolve(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, bob, address)
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) Resolve(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	inner := &mockDirectory{}
	inner.On("Resolve", ctx, "alice").Return(alice, nil).Once()
	inner.On("Resolve", ctx, "carol").Return("", domain.ErrAccountNotFound).Twice()

	dir, err := directory.NewCached(inner, 10)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		address, err := dir.Resolve(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, alice, address)
	}

	for i := 0; i < 2; i++ {
		_, err := dir.Resolve(ctx, "carol")
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	}

	inner.AssertExpectations(t)
}
