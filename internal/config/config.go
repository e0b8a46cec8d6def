package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/tdex-network/aawalletd/pkg/userop"
)

const (
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// ChainIDKey is the id of the chain smart accounts live on
	ChainIDKey = "CHAIN_ID"
	// EntryPointAddressKey is the address of the ERC-4337 entry point contract
	EntryPointAddressKey = "ENTRYPOINT_ADDRESS"
	// SessionKeyTTLKey is the default lifetime in seconds of a session key
	// created without an explicit expiration
	SessionKeyTTLKey = "SESSION_KEY_TTL"
	// RecoveryDelayKey is the time in seconds that must pass between the
	// initiation of a recovery request and its execution
	RecoveryDelayKey = "RECOVERY_DELAY"
	// RecoveryMaxPendingKey is the time in seconds after which a pending
	// recovery request expires, 0 disables expiration
	RecoveryMaxPendingKey = "RECOVERY_MAX_PENDING"
	// ProviderTimeoutKey is the timeout in seconds of every bundler or
	// paymaster request
	ProviderTimeoutKey = "PROVIDER_TIMEOUT"
	// ProviderMaxRetriesKey is the number of times an unavailable provider is
	// retried before failing the operation
	ProviderMaxRetriesKey = "PROVIDER_MAX_RETRIES"
	// ProviderRetryBackoffKey is the base backoff in milliseconds between
	// provider retries
	ProviderRetryBackoffKey = "PROVIDER_RETRY_BACKOFF"
	// ProviderRateLimitKey is the max number of requests per second sent to a
	// remote provider, 0 means unlimited
	ProviderRateLimitKey = "PROVIDER_RATE_LIMIT"
	// ProvidersFileKey is the path of a JSON/YAML file listing the known
	// providers. The built-in simulated providers are used if not set
	ProvidersFileKey = "PROVIDERS_FILE"
	// ProvidersRefreshIntervalKey is the interval in seconds for reloading
	// the providers file
	ProvidersRefreshIntervalKey = "PROVIDERS_REFRESH_INTERVAL"
	// GasBufferPercentKey is the safety margin added to gas estimations
	GasBufferPercentKey = "GAS_BUFFER_PERCENT"
	// RelayConfirmOnChainKey makes the relay track submitted operations
	// until the bundler reports their receipt
	RelayConfirmOnChainKey = "RELAY_CONFIRM_ON_CHAIN"
	// SyncIntervalKey is the interval in seconds for polling pending
	// operations and expiring stale recovery requests
	SyncIntervalKey = "SYNC_INTERVAL"
	// ChainRPCURLKey is the url of the node used to read account balances
	ChainRPCURLKey = "CHAIN_RPC_URL"
	// AccountsFileKey is the path of the file mapping user ids to their
	// smart account address
	AccountsFileKey = "ACCOUNTS_FILE"
	// DirectoryCacheSizeKey is the number of directory lookups kept in memory
	DirectoryCacheSizeKey = "DIRECTORY_CACHE_SIZE"
	// WebhookTimeoutKey is the timeout in seconds of webhook notifications
	WebhookTimeoutKey = "WEBHOOK_TIMEOUT"
	// MetricsPortKey is the port where prometheus metrics are served, 0
	// disables the endpoint
	MetricsPortKey = "METRICS_PORT"
	// EnableStatsKey enables the periodic logging of runtime statistics
	EnableStatsKey = "ENABLE_STATS"
	// StatsIntervalKey defines interval for printing basic runtime statistics
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation    = "db"
	StatsLocation = "stats"
)

var vip *viper.Viper
var defaultDatadir = appDataDir("aawalletd")

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("AAWALLET")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(ChainIDKey, 31337)
	vip.SetDefault(EntryPointAddressKey, userop.DefaultEntryPoint)
	vip.SetDefault(SessionKeyTTLKey, 24*60*60)
	vip.SetDefault(RecoveryDelayKey, 48*60*60)
	vip.SetDefault(RecoveryMaxPendingKey, 0)
	vip.SetDefault(ProviderTimeoutKey, 10)
	vip.SetDefault(ProviderMaxRetriesKey, 2)
	vip.SetDefault(ProviderRetryBackoffKey, 200)
	vip.SetDefault(ProviderRateLimitKey, 0)
	vip.SetDefault(ProvidersRefreshIntervalKey, 300)
	vip.SetDefault(GasBufferPercentKey, 10)
	vip.SetDefault(RelayConfirmOnChainKey, false)
	vip.SetDefault(SyncIntervalKey, 30)
	vip.SetDefault(DirectoryCacheSizeKey, 1000)
	vip.SetDefault(WebhookTimeoutKey, 15)
	vip.SetDefault(MetricsPortKey, 9100)
	vip.SetDefault(EnableStatsKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetInt64(key string) int64 {
	return vip.GetInt64(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetSeconds returns the value of a key expressed in seconds as a duration.
func GetSeconds(key string) time.Duration {
	return time.Duration(vip.GetInt64(key)) * time.Second
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetDecimal returns the value of a numeric key as a decimal. Invalid values
// are rejected by validate.
func GetDecimal(key string) decimal.Decimal {
	d, _ := decimal.NewFromString(GetString(key))
	return d
}

// GetRelayOptions ...
func GetRelayOptions() application.RelayOptions {
	return application.RelayOptions{
		EntryPoint:      GetString(EntryPointAddressKey),
		ProviderTimeout: GetSeconds(ProviderTimeoutKey),
		MaxRetries:      uint(GetInt(ProviderMaxRetriesKey)),
		RetryBackoff: time.Duration(
			GetInt64(ProviderRetryBackoffKey),
		) * time.Millisecond,
		GasBufferPercent: GetDecimal(GasBufferPercentKey),
		ConfirmOnChain:   GetBool(RelayConfirmOnChainKey),
	}
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if _, ok := application.SupportedDBType[GetString(DBTypeKey)]; !ok {
		return fmt.Errorf("unsupported %s %q", DBTypeKey, GetString(DBTypeKey))
	}

	if GetInt64(ChainIDKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", ChainIDKey)
	}

	if !common.IsHexAddress(GetString(EntryPointAddressKey)) {
		return fmt.Errorf("%s must be a valid address", EntryPointAddressKey)
	}

	for _, key := range []string{
		SessionKeyTTLKey, ProviderTimeoutKey, SyncIntervalKey,
		ProvidersRefreshIntervalKey, WebhookTimeoutKey, StatsIntervalKey,
		DirectoryCacheSizeKey,
	} {
		if GetInt64(key) <= 0 {
			return fmt.Errorf("%s must be a positive number", key)
		}
	}
	for _, key := range []string{
		RecoveryDelayKey, RecoveryMaxPendingKey, ProviderMaxRetriesKey,
		ProviderRetryBackoffKey, ProviderRateLimitKey, MetricsPortKey,
	} {
		if GetInt64(key) < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}

	gasBuffer, err := decimal.NewFromString(GetString(GasBufferPercentKey))
	if err != nil {
		return fmt.Errorf("%s must be a number", GasBufferPercentKey)
	}
	if gasBuffer.IsNegative() {
		return fmt.Errorf("%s must not be negative", GasBufferPercentKey)
	}

	for _, key := range []string{ProvidersFileKey, AccountsFileKey} {
		path := GetString(key)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s: %s", key, err)
		}
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
		return err
	}

	if GetBool(EnableStatsKey) {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, StatsLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}
