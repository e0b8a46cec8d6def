package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	"github.com/tdex-network/aawalletd/internal/infrastructure/chain"
	"github.com/tdex-network/aawalletd/internal/infrastructure/clock"
	"github.com/tdex-network/aawalletd/internal/infrastructure/directory"
	"github.com/tdex-network/aawalletd/internal/infrastructure/provider"
	"github.com/tdex-network/aawalletd/internal/infrastructure/pubsub"
	dbbadger "github.com/tdex-network/aawalletd/internal/infrastructure/storage/db/badger"
)

const webhooksStoreName = "webhooks"

// GetProviderSource returns the source reading PROVIDERS_FILE or, if not
// set, the built-in simulated providers.
func GetProviderSource() ports.ProviderSource {
	if path := GetString(ProvidersFileKey); path != "" {
		return provider.NewFileSource(path)
	}
	return provider.NewStaticSource(provider.BuiltinProviders())
}

// GetAccountDirectory returns the cached directory loaded from
// ACCOUNTS_FILE, or nil if not set.
func GetAccountDirectory() (ports.AccountDirectory, error) {
	path := GetString(AccountsFileKey)
	if path == "" {
		return nil, nil
	}
	dir, err := directory.NewFromFile(path)
	if err != nil {
		return nil, err
	}
	return directory.NewCached(dir, GetInt(DirectoryCacheSizeKey))
}

// GetApplicationConfig builds the collaborators of the core out of the
// current configuration. The returned func releases every resource,
// including the stores opened by the application config.
func GetApplicationConfig(
	ctx context.Context,
) (*application.Config, *provider.Clients, func(), error) {
	dbType := GetString(DBTypeKey)
	var dbDir string
	if dbType == application.DBBadger {
		dbDir = filepath.Join(GetDatadir(), DbLocation)
	}

	closers := make([]func(), 0)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	chainID := GetInt64(ChainIDKey)
	clients, err := provider.NewClients(provider.Options{
		ChainID:    chainID,
		EntryPoint: common.HexToAddress(GetString(EntryPointAddressKey)),
		RateLimit:  GetInt(ProviderRateLimitKey),
	})
	if err != nil {
		return nil, nil, nil, err
	}
	closers = append(closers, clients.Close)

	accountDirectory, err := GetAccountDirectory()
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	var chainReader ports.ChainReader
	if url := GetString(ChainRPCURLKey); url != "" {
		reader, closeFn, err := chain.NewReader(ctx, url)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		chainReader = reader
		closers = append(closers, closeFn)
	}

	webhooksDb, err := dbbadger.OpenStore(dbDir, webhooksStoreName, log.New())
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("opening webhooks store: %w", err)
	}
	securePubSub, err := pubsub.NewService(
		webhooksDb, GetSeconds(WebhookTimeoutKey),
	)
	if err != nil {
		// nolint
		webhooksDb.Close()
		cleanup()
		return nil, nil, nil, err
	}

	systemClock := clock.NewSystemClock()
	appConfig := &application.Config{
		DBType:           dbType,
		DBConfig:         dbDir,
		ChainID:          chainID,
		SessionKeyTTL:    GetSeconds(SessionKeyTTLKey),
		RecoveryDelay:    GetSeconds(RecoveryDelayKey),
		RecoveryMaxAge:   GetSeconds(RecoveryMaxPendingKey),
		Relay:            GetRelayOptions(),
		Clock:            systemClock,
		IDGenerator:      clock.NewIDGenerator(systemClock),
		SecurePubSub:     securePubSub,
		ProviderSource:   GetProviderSource(),
		ProviderClients:  clients,
		AccountDirectory: accountDirectory,
		ChainReader:      chainReader,
	}
	// the application config owns the pubsub and the repositories.
	closers = append(closers, appConfig.Close)

	if err := appConfig.Validate(); err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	return appConfig, clients, cleanup, nil
}
