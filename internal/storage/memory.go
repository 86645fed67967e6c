package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
)

type memEntry struct {
	data      []byte
	updatedAt time.Time
}

// Memory is an in-process Store. Values are copied in and out.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]memEntry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]memEntry)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.docs[key]
	if !ok {
		return nil, fmt.Errorf("storage: get %s: %w", key, apperr.ErrNotFound)
	}
	return append([]byte(nil), e.data...), nil
}

func (m *Memory) Set(_ context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = memEntry{data: append([]byte(nil), data...), updatedAt: time.Now().UTC()}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; !ok {
		return fmt.Errorf("storage: delete %s: %w", key, apperr.ErrNotFound)
	}
	delete(m.docs, key)
	return nil
}

func (m *Memory) List(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.docs))
	for k, e := range m.docs {
		out = append(out, Entry{Key: k, Checksum: checksum.Sum(e.data), UpdatedAt: e.updatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) Close() error { return nil }
