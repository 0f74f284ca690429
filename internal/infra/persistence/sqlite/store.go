// Package sqlite provides a SQLite-backed persistent store that snapshots
// the in-memory workspace state to a single table as JSON blobs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"canvascore/internal/infra/persistence/memory"
	"canvascore/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

type (
	// RulesEngine aliases domain.RulesEngine.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction.
	Transaction = domain.Transaction
	// Result aliases domain.Result.
	Result = domain.Result
	// Snapshot aliases the memory snapshot persisted per bucket.
	Snapshot = memory.Snapshot
)

// Store persists the in-memory state to a single SQLite table as JSON blobs.
// It snapshots the full state after every successful transaction.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore constructs a snapshotting SQLite-backed persistent store.
func NewStore(path string, engine *RulesEngine) (*Store, error) {
	if path == "" {
		path = "canvascore.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(engine), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

var sqliteBuckets = []string{
	"screens", "elements", "components", "variables",
	"tasks", "comments", "chats", "members",
	"events", "activities", "notifications",
}

func bucketTargets(snapshot *Snapshot) map[string]any {
	return map[string]any{
		"screens":       &snapshot.Screens,
		"elements":      &snapshot.Elements,
		"components":    &snapshot.Components,
		"variables":     &snapshot.Variables,
		"tasks":         &snapshot.Tasks,
		"comments":      &snapshot.Comments,
		"chats":         &snapshot.Chats,
		"members":       &snapshot.Members,
		"events":        &snapshot.Events,
		"activities":    &snapshot.Activities,
		"notifications": &snapshot.Notifications,
	}
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type raw struct {
		bucket  string
		payload []byte
	}
	var raws []raw
	for rows.Next() {
		var r raw
		if err := rows.Scan(&r.bucket, &r.payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if len(raws) == 0 {
		return nil
	}

	snapshot := Snapshot{}
	targets := bucketTargets(&snapshot)
	for _, r := range raws {
		target, ok := targets[r.bucket]
		if !ok {
			continue
		}
		if err := json.Unmarshal(r.payload, target); err != nil {
			return fmt.Errorf("decode %s: %w", r.bucket, err)
		}
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	targets := bucketTargets(&snapshot)
	for _, bucket := range sqliteBuckets {
		data, err := json.Marshal(targets[bucket])
		if err != nil {
			retErr = fmt.Errorf("encode %s: %w", bucket, err)
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

// RunInTransaction applies the provided function within a transaction, then
// snapshots state to SQLite if successful.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(); pErr != nil {
		return res, pErr
	}
	return res, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
