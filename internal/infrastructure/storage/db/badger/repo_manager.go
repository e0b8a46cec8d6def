package dbbadger

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const (
	maxConflictRetries = 50
	conflictRetryWait  = 5 * time.Millisecond
)

type repoManager struct {
	store *badgerhold.Store

	accountRepository    domain.AccountRepository
	sessionKeyRepository domain.SessionKeyRepository
	recoveryRepository   domain.RecoveryRepository
	operationRepository  domain.OperationRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger. An empty data dir makes
// the store live in memory.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	store, err := OpenStore(baseDbDir, "wallet", logger)
	if err != nil {
		return nil, err
	}

	return &repoManager{
		store:                store,
		accountRepository:    NewAccountRepositoryImpl(store),
		sessionKeyRepository: NewSessionKeyRepositoryImpl(store),
		recoveryRepository:   NewRecoveryRepositoryImpl(store),
		operationRepository:  NewOperationRepositoryImpl(store),
	}, nil
}

func (r *repoManager) AccountRepository() domain.AccountRepository {
	return r.accountRepository
}

func (r *repoManager) SessionKeyRepository() domain.SessionKeyRepository {
	return r.sessionKeyRepository
}

func (r *repoManager) RecoveryRepository() domain.RecoveryRepository {
	return r.recoveryRepository
}

func (r *repoManager) OperationRepository() domain.OperationRepository {
	return r.operationRepository
}

func (r *repoManager) Close() {
	if err := r.store.Close(); err != nil {
		log.WithError(err).Warn("error while closing wallet db")
	}
}

// OpenStore opens (or creates) the badgerhold store with the given name
// under baseDbDir. An empty baseDbDir makes the store live in memory.
func OpenStore(
	baseDbDir, name string, logger badger.Logger,
) (*badgerhold.Store, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, name)
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", name, err)
	}
	return store, nil
}

// updateWithRetry runs fn in a read-write transaction. The transaction is
// retried if it conflicts with a concurrent one that touched the same keys.
func updateWithRetry(store *badgerhold.Store, fn func(tx *badger.Txn) error) error {
	var err error
	//nolint
	retry.Retry(
		func(_ uint) error {
			err = store.Badger().Update(fn)
			if errors.Is(err, badger.ErrConflict) {
				return err
			}
			return nil
		},
		strategy.Limit(maxConflictRetries),
		strategy.Wait(conflictRetryWait),
	)
	return err
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}()
	}

	return db, nil
}
