package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"canvascore/internal/infra/persistence/memory"
	"canvascore/pkg/domain"
)

func TestNewStoreLoadsSnapshot(t *testing.T) {
	db, conn := newStubDB()
	seed := memory.Snapshot{
		Screens: map[string]domain.Screen{
			"screen-1": {Base: domain.Base{ID: "screen-1"}, Name: "Home"},
		},
	}
	seedBuckets(t, conn, seed)

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if got := len(store.ListScreens()); got != 1 {
		t.Fatalf("expected 1 screen loaded from snapshot, got %d", got)
	}
	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
			break
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.execs)
	}
}

func TestRunInTransactionPersistsState(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateMember(domain.Member{Name: "Riley", Email: "riley@example.com"})
		return err
	}); err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	payload, ok := conn.buckets["members"]
	if !ok {
		t.Fatalf("expected members bucket persisted, got %v", bucketNames(conn))
	}
	var members map[string]domain.Member
	if err := json.Unmarshal(payload, &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 persisted member, got %d", len(members))
	}
}

func TestRunInTransactionStopsOnUserError(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	userErr := fmt.Errorf("user fail")
	if _, err := store.RunInTransaction(context.Background(), func(domain.Transaction) error { return userErr }); !errors.Is(err, userErr) {
		t.Fatalf("expected user error to propagate, got %v", err)
	}
	if len(conn.buckets) != 0 {
		t.Fatalf("expected no persistence when user fn errors, got %v", bucketNames(conn))
	}
}

func TestRunInTransactionSurfacesExecFailure(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failExec = true
	if _, err := store.RunInTransaction(context.Background(), func(domain.Transaction) error { return nil }); err == nil {
		t.Fatalf("expected persistence error when exec fails")
	}
}

func TestNewStoreOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, fmt.Errorf("open fail")
	})
	defer restore()
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil || !strings.Contains(err.Error(), "open fail") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestNewStorePingError(t *testing.T) {
	db, conn := newStubDB()
	conn.failPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestLoadSnapshotDecodeError(t *testing.T) {
	db, conn := newStubDB()
	conn.buckets["screens"] = []byte("not-json")
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil || !strings.Contains(err.Error(), "decode screens") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestStoreDBExposesHandle(t *testing.T) {
	db, _ := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.DB() == nil {
		t.Fatalf("expected DB handle")
	}
}

func seedBuckets(t *testing.T, conn *stubConn, snapshot memory.Snapshot) {
	t.Helper()
	targets := bucketTargets(&snapshot)
	for bucket, target := range targets {
		data, err := json.Marshal(target)
		if err != nil {
			t.Fatalf("encode %s: %v", bucket, err)
		}
		conn.buckets[bucket] = data
	}
}

func bucketNames(conn *stubConn) []string {
	out := make([]string, 0, len(conn.buckets))
	for name := range conn.buckets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// --- stub driver helpers ---

type stubDriver struct {
	conn *stubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

type stubConn struct {
	execs    []string
	buckets  map[string][]byte
	failExec bool
	failPing bool
}

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{buckets: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *stubConn) Ping(_ context.Context) error {
	if c.failPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

func (c *stubConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	if c.failExec {
		return nil, fmt.Errorf("exec fail")
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO STATE") {
		if len(args) != 2 {
			return nil, fmt.Errorf("expected bucket and payload args, got %d", len(args))
		}
		bucket, ok := args[0].Value.(string)
		if !ok {
			return nil, fmt.Errorf("bucket arg must be string")
		}
		payload, ok := args[1].Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("payload arg must be bytes")
		}
		c.buckets[bucket] = append([]byte(nil), payload...)
		return driver.RowsAffected(1), nil
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(strings.ToLower(query), "from state") {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	names := make([]string, 0, len(c.buckets))
	for name := range c.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]driver.Value, 0, len(names))
	for _, name := range names {
		rows = append(rows, []driver.Value{name, append([]byte(nil), c.buckets[name]...)})
	}
	return &stubRows{cols: []string{"bucket", "payload"}, rows: rows}, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
