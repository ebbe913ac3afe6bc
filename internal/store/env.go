// Package store owns the embedded transactional environment and the typed
// repositories built on it.
//
// One bbolt database file holds all logical tables (orders, users,
// applications) as buckets. bbolt gives the environment contract this
// system needs natively: at most one write transaction is open at a time
// across the process, readers run on consistent snapshots and never block
// the writer, and every commit is durable and atomically visible. A second
// process opening the same file blocks on the file lock until the open
// timeout expires.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Table names inside the environment.
var (
	bucketOrders       = []byte("orders")
	bucketUsers        = []byte("users")
	bucketApplications = []byte("applications")
)

// DefaultMapSize is the initial mmap size of the environment, 1 GiB.
const DefaultMapSize = 1 << 30

const dbFileName = "permithub.db"

// Env is an open storage environment. It is safe for concurrent use; write
// transactions are serialized by bbolt, reads run concurrently.
type Env struct {
	db *bolt.DB
}

// Open opens (or creates) the environment under dir, creating the directory
// if absent. mapSize is the initial mmap size in bytes; pass 0 for
// DefaultMapSize. All logical tables are created up front in one setup
// transaction so repositories never race on bucket creation.
func Open(dir string, mapSize int) (*Env, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrUnavailable, dir, err)
	}
	if mapSize <= 0 {
		mapSize = DefaultMapSize
	}

	db, err := bolt.Open(filepath.Join(dir, dbFileName), 0o600, &bolt.Options{
		Timeout:         time.Second,
		InitialMmapSize: mapSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketOrders, bucketUsers, bucketApplications} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create table %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Env{db: db}, nil
}

// Close releases the environment. In-flight transactions complete first.
func (e *Env) Close() error {
	return e.db.Close()
}

// Path returns the location of the backing database file.
func (e *Env) Path() string {
	return e.db.Path()
}

// update runs fn inside the single write transaction slot. fn returning an
// error aborts the transaction and rolls back every write made under it; a
// commit rejection surfaces as ErrTxFailed.
func (e *Env) update(fn func(tx *bolt.Tx) error) error {
	var fnErr error
	err := e.db.Update(func(tx *bolt.Tx) error {
		fnErr = fn(tx)
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return fmt.Errorf("%w: %v", ErrTxFailed, err)
}

// view runs fn inside a read-only snapshot transaction. It observes the last
// committed state as of the snapshot's start and never blocks on a
// concurrent writer's uncommitted work.
func (e *Env) view(fn func(tx *bolt.Tx) error) error {
	var fnErr error
	err := e.db.View(func(tx *bolt.Tx) error {
		fnErr = fn(tx)
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
