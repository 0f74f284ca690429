// Package export writes workspace snapshots to blob storage and restores
// them. Snapshots are plain JSON so they stay inspectable with standard
// tooling.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"canvascore/internal/blob"
	"canvascore/internal/infra/persistence/memory"
)

// StateStore is the subset of the persistence layer the archiver needs.
// All canvascore persistent stores satisfy it.
type StateStore interface {
	ExportState() memory.Snapshot
	ImportState(memory.Snapshot)
}

const contentType = "application/json"

// Archiver round-trips workspace snapshots through a blob store.
type Archiver struct {
	blobs blob.Store
	nowFn func() time.Time
}

// NewArchiver builds an Archiver over the given blob store.
func NewArchiver(blobs blob.Store) *Archiver {
	return &Archiver{blobs: blobs, nowFn: func() time.Time { return time.Now().UTC() }}
}

// Save serializes the store state and writes it under a timestamped key.
// Returns the blob info of the written snapshot.
func (a *Archiver) Save(ctx context.Context, store StateStore, workspace string) (blob.Info, error) {
	if workspace == "" {
		return blob.Info{}, fmt.Errorf("save snapshot: empty workspace name")
	}
	snap := store.ExportState()
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("save snapshot: %w", err)
	}
	key := a.keyFor(workspace)
	info, err := a.blobs.Put(ctx, key, bytes.NewReader(b), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"workspace": workspace},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return info, nil
}

// Restore loads the snapshot stored under key into the store. The import
// path normalizes the snapshot, so stale projections referencing deleted
// events are dropped on the way in.
func (a *Archiver) Restore(ctx context.Context, store StateStore, key string) error {
	_, rc, err := a.blobs.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("restore snapshot %s: %w", key, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("restore snapshot %s: %w", key, err)
	}
	var snap memory.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("restore snapshot %s: %w", key, err)
	}
	store.ImportState(snap)
	return nil
}

// List returns the snapshots stored for a workspace, ordered by key. Keys
// embed an RFC3339-derived timestamp so the order is chronological.
func (a *Archiver) List(ctx context.Context, workspace string) ([]blob.Info, error) {
	return a.blobs.List(ctx, "snapshots/"+workspace+"/")
}

func (a *Archiver) keyFor(workspace string) string {
	stamp := a.nowFn().Format("20060102T150405Z")
	return fmt.Sprintf("snapshots/%s/%s.json", workspace, stamp)
}
