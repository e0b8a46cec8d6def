package application_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/infrastructure/clock"
	"github.com/tdex-network/aawalletd/internal/infrastructure/provider"
	"github.com/tdex-network/aawalletd/internal/infrastructure/provider/simulated"
	"github.com/tdex-network/aawalletd/pkg/userop"
)

const (
	chainID = int64(31337)

	accountAddress = "0x1111111111111111111111111111111111111111"
	otherAccount   = "0x9999999999999999999999999999999999999999"
	tokenAddress   = "0x2222222222222222222222222222222222222222"
	dexAddress     = "0x4444444444444444444444444444444444444444"

	guardianA = "0x5555555555555555555555555555555555555555"
	guardianB = "0x6666666666666666666666666666666666666666"
	guardianC = "0x7777777777777777777777777777777777777777"

	// transfer(0x1111..., 1)
	transferData = "0xa9059cbb" +
		"0000000000000000000000001111111111111111111111111111111111111111" +
		"0000000000000000000000000000000000000000000000000000000000000001"
	// approve(0x4444..., 2^256-1)
	approveData = "0x095ea7b3" +
		"0000000000000000000000004444444444444444444444444444444444444444" +
		"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"

	sessionTTL    = 24 * time.Hour
	recoveryDelay = 48 * time.Hour
)

var (
	ctx       = context.Background()
	startTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
)

type testEnv struct {
	clock   *clock.Fake
	clients *provider.Clients
	app     *application.Config
}

type configOption func(cfg *application.Config)

func withPubSub(pubsub *mockPubSub) configOption {
	return func(cfg *application.Config) {
		cfg.SecurePubSub = pubsub
	}
}

func withRecoveryMaxAge(d time.Duration) configOption {
	return func(cfg *application.Config) {
		cfg.RecoveryMaxAge = d
	}
}

func withRelay(fn func(opts *application.RelayOptions)) configOption {
	return func(cfg *application.Config) {
		fn(&cfg.Relay)
	}
}

func withProviders(providers []domain.ProviderConfig) configOption {
	return func(cfg *application.Config) {
		cfg.ProviderSource = provider.NewStaticSource(providers)
	}
}

func newTestEnv(t *testing.T, opts ...configOption) *testEnv {
	t.Helper()

	fakeClock := clock.NewFake(startTime)
	clients, err := provider.NewClients(provider.Options{
		ChainID:    chainID,
		EntryPoint: common.HexToAddress(userop.DefaultEntryPoint),
	})
	require.NoError(t, err)

	cfg := &application.Config{
		DBType:          application.DBInMemory,
		ChainID:         chainID,
		SessionKeyTTL:   sessionTTL,
		RecoveryDelay:   recoveryDelay,
		Clock:           fakeClock,
		IDGenerator:     clock.NewIDGenerator(fakeClock),
		ProviderSource:  provider.NewStaticSource(provider.BuiltinProviders()),
		ProviderClients: clients,
		Relay: application.RelayOptions{
			EntryPoint:       userop.DefaultEntryPoint,
			ProviderTimeout:  time.Second,
			MaxRetries:       2,
			RetryBackoff:     time.Millisecond,
			GasBufferPercent: decimal.NewFromInt(10),
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	require.NoError(t, cfg.Validate())

	t.Cleanup(func() {
		cfg.Close()
		clients.Close()
	})

	return &testEnv{fakeClock, clients, cfg}
}

// bundler returns the simulated bundler behind the given provider id,
// building the client if not done yet.
func (e *testEnv) bundler(t *testing.T, id string) *simulated.Bundler {
	t.Helper()

	cfg, err := e.app.RegistryService().Get(id)
	require.NoError(t, err)
	_, err = e.clients.Bundler(*cfg)
	require.NoError(t, err)

	b, ok := e.clients.SimulatedBundler(id)
	require.True(t, ok)
	return b
}

func (e *testEnv) paymaster(t *testing.T, id string) *simulated.Paymaster {
	t.Helper()

	cfg, err := e.app.RegistryService().Get(id)
	require.NoError(t, err)
	_, err = e.clients.Paymaster(*cfg)
	require.NoError(t, err)

	p, ok := e.clients.SimulatedPaymaster(id)
	require.True(t, ok)
	return p
}

func (e *testEnv) createSessionKey(
	t *testing.T, permissions ...application.PermissionArgs,
) *domain.SessionKey {
	t.Helper()

	key, err := e.app.SessionKeyService().Create(
		ctx, application.CreateSessionKeyArgs{
			AccountAddress: accountAddress,
			Permissions:    permissions,
		},
	)
	require.NoError(t, err)
	return key
}

func intPtr(i int) *int {
	return &i
}

func containsAll(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
