package badger

import (
	"context"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/marmos91/dataroom/internal/logger"
	"github.com/marmos91/dataroom/pkg/store"
)

// BadgerItemStore implements store.ItemStore using BadgerDB for persistence.
//
// This implementation provides a durable item repository backed by BadgerDB,
// a fast embedded key-value store. It is suitable for:
//   - Local deployments where the data room must survive restarts
//   - Crash recovery (WAL-based) without an external database
//
// Key Features:
//   - Secondary indices stored as prefixed keys (see keys.go)
//   - Record and index entries written in one ACID transaction
//   - Prefix scans for children, type and name lookups
//
// Thread Safety:
// BadgerDB is safe for concurrent use. The mutex (mu) only guards the db
// handle itself against concurrent Initialize / Close.
type BadgerItemStore struct {
	mu     sync.RWMutex
	db     *badger.DB
	config BadgerItemStoreConfig
}

// BadgerItemStoreConfig contains configuration for creating a BadgerDB item store.
type BadgerItemStoreConfig struct {
	// DBPath is the directory where BadgerDB will store its files
	// BadgerDB creates multiple files in this directory (value log, LSM tree, etc.)
	DBPath string `mapstructure:"db_path"`

	// InMemory runs BadgerDB without touching disk (DBPath is ignored)
	InMemory bool `mapstructure:"in_memory"`

	// SyncWrites fsyncs every commit before acknowledging it
	SyncWrites bool `mapstructure:"sync_writes"`

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 64)
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 32)
	IndexCacheSizeMB int64 `mapstructure:"index_cache_size_mb"`

	// BadgerOptions allows full customization of BadgerDB behavior
	// If nil, options are derived from the fields above
	BadgerOptions *badger.Options `mapstructure:"-"`
}

// NewBadgerItemStore creates a BadgerDB-based item store.
//
// The database is not opened until Initialize is called, so a store can be
// constructed from configuration without touching disk.
//
// Example:
//
//	s := NewBadgerItemStore(BadgerItemStoreConfig{DBPath: "/var/lib/dataroom"})
//	if err := s.Initialize(ctx); err != nil { ... }
//	defer s.Close()
func NewBadgerItemStore(config BadgerItemStoreConfig) *BadgerItemStore {
	return &BadgerItemStore{config: config}
}

// NewBadgerItemStoreWithDefaults creates a BadgerDB item store at dbPath with
// default cache sizes.
func NewBadgerItemStoreWithDefaults(dbPath string) *BadgerItemStore {
	return NewBadgerItemStore(BadgerItemStoreConfig{DBPath: dbPath})
}

// badgerOptions builds the BadgerDB options from the store configuration.
func (s *BadgerItemStore) badgerOptions() badger.Options {
	if s.config.BadgerOptions != nil {
		return *s.config.BadgerOptions
	}

	var opts badger.Options
	if s.config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(s.config.DBPath)
	}

	// PDF payloads are already compressed
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithCompression(options.None)
	opts = opts.WithSyncWrites(s.config.SyncWrites)

	blockCacheMB := s.config.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}
	indexCacheMB := s.config.IndexCacheSizeMB
	if indexCacheMB == 0 {
		indexCacheMB = 32
	}

	opts = opts.WithBlockCacheSize(blockCacheMB << 20)
	opts = opts.WithIndexCacheSize(indexCacheMB << 20)
	return opts
}

// Initialize opens the database, creating it if it doesn't exist.
//
// Indices need no separate creation step: they live in the same keyspace as
// the records. Calling Initialize on an open store is a no-op.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: ErrIOError if BadgerDB cannot be opened
func (s *BadgerItemStore) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if !s.config.InMemory && s.config.BadgerOptions == nil && s.config.DBPath == "" {
		return store.NewInvalidArgumentError("badger item store: db_path is required")
	}

	db, err := badger.Open(s.badgerOptions())
	if err != nil {
		return store.NewIOError(fmt.Sprintf("failed to open BadgerDB at %s", s.config.DBPath), err)
	}

	s.db = db
	logger.Debug("Badger item store opened at %s", s.config.DBPath)
	return nil
}

// Close closes the BadgerDB database and releases all resources.
//
// The close operation waits for pending transactions and flushes data to
// disk. The store can be initialized again afterwards.
func (s *BadgerItemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}

// Healthcheck verifies the database is open and readable.
func (s *BadgerItemStore) Healthcheck(ctx context.Context) error {
	return s.view(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(keyItem("healthcheck"))
		if err != nil && err != badger.ErrKeyNotFound {
			return store.NewIOError("healthcheck read failed", err)
		}
		return nil
	})
}

// view runs fn in a read-only transaction.
//
// The read lock is held for the whole transaction so Close cannot release
// the database underneath it.
func (s *BadgerItemStore) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return store.NewUninitializedError()
	}
	return s.db.View(fn)
}

// update runs fn in a read-write transaction that commits when fn returns nil.
func (s *BadgerItemStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return store.NewUninitializedError()
	}
	return s.db.Update(fn)
}
