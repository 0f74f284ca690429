package blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory implements Store in process memory. Intended for tests.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	data        []byte
	contentType string
	metadata    map[string]string
	etag        string
	modified    time.Time
}

// NewMemory returns an empty in-memory blob store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]memoryBlob)}
}

// Driver implements Store.
func (m *Memory) Driver() Driver { return DriverMemory }

// Put implements Store.
func (m *Memory) Put(_ context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.blobs[k]; exists {
		return Info{}, fmt.Errorf("blob %s already exists", key)
	}
	sum := sha256.Sum256(data)
	b := memoryBlob{
		data:        data,
		contentType: opts.ContentType,
		metadata:    cloneMD(opts.Metadata),
		etag:        hex.EncodeToString(sum[:]),
		modified:    time.Now().UTC(),
	}
	m.blobs[k] = b
	return m.info(k, b), nil
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[k]
	if !ok {
		return Info{}, nil, fmt.Errorf("blob %s: %w", key, os.ErrNotExist)
	}
	return m.info(k, b), io.NopCloser(bytes.NewReader(append([]byte(nil), b.data...))), nil
}

// Head implements Store.
func (m *Memory) Head(_ context.Context, key string) (Info, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[k]
	if !ok {
		return Info{}, fmt.Errorf("blob %s: %w", key, os.ErrNotExist)
	}
	return m.info(k, b), nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) (bool, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[k]; !ok {
		return false, nil
	}
	delete(m.blobs, k)
	return true, nil
}

// List implements Store.
func (m *Memory) List(_ context.Context, prefix string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var infos []Info
	for k, b := range m.blobs {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			infos = append(infos, m.info(k, b))
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// PresignURL implements Store.
func (m *Memory) PresignURL(_ context.Context, key string, opts SignedURLOptions) (string, error) {
	if opts.Method != "" && strings.ToUpper(opts.Method) != "GET" {
		return "", ErrUnsupported
	}
	return (&url.URL{Scheme: "memory", Host: "blob", Path: "/" + key}).String(), nil
}

func (m *Memory) info(key string, b memoryBlob) Info {
	return Info{
		Key:          key,
		Size:         int64(len(b.data)),
		ContentType:  b.contentType,
		ETag:         b.etag,
		Metadata:     cloneMD(b.metadata),
		LastModified: b.modified,
	}
}
