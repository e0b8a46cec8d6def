package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	dbbadger "github.com/tdex-network/aawalletd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/aawalletd/internal/infrastructure/storage/db/inmemory"
)

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	SupportedDBType = map[string]struct{}{
		DBBadger:   {},
		DBInMemory: {},
	}
)

// Config lazily builds the services of the core. Collaborators are set by
// the caller, services are built on first access.
type Config struct {
	DBType   string
	DBConfig interface{}

	ChainID          int64
	SessionKeyTTL    time.Duration
	RecoveryDelay    time.Duration
	RecoveryMaxAge   time.Duration
	Relay            RelayOptions
	Clock            ports.Clock
	IDGenerator      ports.IDGenerator
	SecurePubSub     ports.SecurePubSub
	ProviderSource   ports.ProviderSource
	ProviderClients  ports.ProviderClients
	AccountDirectory ports.AccountDirectory
	ChainReader      ports.ChainReader

	repo     ports.RepoManager
	pubsub   PubSubService
	account  AccountService
	session  SessionKeyService
	recovery RecoveryService
	registry RegistryService
	relay    RelayService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("unsupported db type %q", c.DBType)
	}
	if c.Clock == nil {
		return fmt.Errorf("missing clock")
	}
	if c.IDGenerator == nil {
		return fmt.Errorf("missing id generator")
	}
	if c.ProviderSource == nil {
		return fmt.Errorf("missing provider source")
	}
	if c.ProviderClients == nil {
		return fmt.Errorf("missing provider clients")
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	if _, err := c.relayService(); err != nil {
		return err
	}
	if _, err := c.recoveryService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	svc, _ := c.repoManager()
	return svc
}

func (c *Config) PubSubService() PubSubService {
	svc, _ := c.pubsubService()
	return svc
}

func (c *Config) AccountService() AccountService {
	svc, _ := c.accountService()
	return svc
}

func (c *Config) SessionKeyService() SessionKeyService {
	svc, _ := c.sessionKeyService()
	return svc
}

func (c *Config) RecoveryService() RecoveryService {
	svc, _ := c.recoveryService()
	return svc
}

func (c *Config) RegistryService() RegistryService {
	svc, _ := c.registryService()
	return svc
}

func (c *Config) RelayService() RelayService {
	svc, _ := c.relayService()
	return svc
}

// Close releases the store and the pubsub.
func (c *Config) Close() {
	if c.pubsub != nil {
		c.pubsub.Close()
	} else if c.SecurePubSub != nil {
		if err := c.SecurePubSub.Close(); err != nil {
			log.WithError(err).Warn("error on closing pubsub")
		}
	}
	if c.repo != nil {
		c.repo.Close()
	}
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			datadir, _ := c.DBConfig.(string)
			repoManager, err := dbbadger.NewRepoManager(datadir, log.New())
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		case DBInMemory:
			c.repo = inmemory.NewRepoManager()
		default:
			return nil, fmt.Errorf("unsupported db type %q", c.DBType)
		}
	}
	return c.repo, nil
}

func (c *Config) pubsubService() (PubSubService, error) {
	if c.pubsub == nil {
		c.pubsub = NewPubSubService(c.SecurePubSub)
	}
	return c.pubsub, nil
}

func (c *Config) accountService() (AccountService, error) {
	if c.account == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		svc, err := NewAccountService(
			repo, c.AccountDirectory, c.ChainReader, c.Clock, c.ChainID,
		)
		if err != nil {
			return nil, err
		}
		c.account = svc
	}
	return c.account, nil
}

func (c *Config) sessionKeyService() (SessionKeyService, error) {
	if c.session == nil {
		accountSvc, err := c.accountService()
		if err != nil {
			return nil, err
		}
		pubsub, _ := c.pubsubService()
		repo, _ := c.repoManager()
		svc, err := NewSessionKeyService(
			accountSvc, pubsub, repo, c.Clock, c.IDGenerator, c.SessionKeyTTL,
		)
		if err != nil {
			return nil, err
		}
		c.session = svc
	}
	return c.session, nil
}

func (c *Config) recoveryService() (RecoveryService, error) {
	if c.recovery == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		pubsub, _ := c.pubsubService()
		svc, err := NewRecoveryService(
			pubsub, repo, c.Clock, c.IDGenerator, c.RecoveryDelay, c.RecoveryMaxAge,
		)
		if err != nil {
			return nil, err
		}
		c.recovery = svc
	}
	return c.recovery, nil
}

func (c *Config) registryService() (RegistryService, error) {
	if c.registry == nil {
		svc, err := NewRegistryService(context.Background(), c.ProviderSource)
		if err != nil {
			return nil, err
		}
		c.registry = svc
	}
	return c.registry, nil
}

func (c *Config) relayService() (RelayService, error) {
	if c.relay == nil {
		accountSvc, err := c.accountService()
		if err != nil {
			return nil, err
		}
		sessionSvc, err := c.sessionKeyService()
		if err != nil {
			return nil, err
		}
		registrySvc, err := c.registryService()
		if err != nil {
			return nil, err
		}
		pubsub, _ := c.pubsubService()
		repo, _ := c.repoManager()
		svc, err := NewRelayService(
			accountSvc, sessionSvc, registrySvc, pubsub, repo,
			c.ProviderClients, c.Clock, c.Relay,
		)
		if err != nil {
			return nil, err
		}
		c.relay = svc
	}
	return c.relay, nil
}
