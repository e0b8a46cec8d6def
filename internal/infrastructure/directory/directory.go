// Package directory implements read-only user to smart account mappings.
package directory

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

type staticDirectory struct {
	accounts map[string]string
}

// NewStatic returns a directory serving the given user id to address map.
func NewStatic(accounts map[string]string) (ports.AccountDirectory, error) {
	normalized := make(map[string]string, len(accounts))
	for userID, address := range accounts {
		if userID == "" {
			return nil, fmt.Errorf("user id must not be empty")
		}
		addr, err := domain.NormalizeAddress(address)
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", userID, err)
		}
		normalized[userID] = addr
	}
	return &staticDirectory{normalized}, nil
}

type fileEntry struct {
	UserID  string `mapstructure:"user_id"`
	Address string `mapstructure:"address"`
}

// NewFromFile loads the directory from the "accounts" list of a JSON, YAML
// or TOML file.
func NewFromFile(path string) (ports.AccountDirectory, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading accounts file: %w", err)
	}

	entries := make([]fileEntry, 0)
	if err := v.UnmarshalKey("accounts", &entries); err != nil {
		return nil, fmt.Errorf("parsing accounts file: %w", err)
	}

	accounts := make(map[string]string, len(entries))
	for _, e := range entries {
		if _, ok := accounts[e.UserID]; ok {
			return nil, fmt.Errorf("duplicated user id %s", e.UserID)
		}
		accounts[e.UserID] = e.Address
	}

	log.Debugf("loaded %d accounts from %s", len(accounts), path)
	return NewStatic(accounts)
}

func (d *staticDirectory) Resolve(_ context.Context, userID string) (string, error) {
	address, ok := d.accounts[userID]
	if !ok {
		return "", fmt.Errorf("%w: no account for user %s", domain.ErrAccountNotFound, userID)
	}
	return address, nil
}

type cachedDirectory struct {
	directory ports.AccountDirectory
	cache     *lru.Cache
}

// NewCached wraps the given directory with an LRU cache of the given size.
// Only successful lookups are cached.
func NewCached(
	directory ports.AccountDirectory, size int,
) (ports.AccountDirectory, error) {
	if directory == nil {
		return nil, fmt.Errorf("missing directory")
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &cachedDirectory{directory, cache}, nil
}

func (d *cachedDirectory) Resolve(ctx context.Context, userID string) (string, error) {
	if address, ok := d.cache.Get(userID); ok {
		return address.(string), nil
	}

	address, err := d.directory.Resolve(ctx, userID)
	if err != nil {
		return "", err
	}
	d.cache.Add(userID, address)
	return address, nil
}
