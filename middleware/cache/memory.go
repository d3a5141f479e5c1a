package cache

import (
	"context"

	"github.com/bornholm/go-blobsweep/syncx"
)

// MemoryStore keeps entries in memory until the store is dropped.
type MemoryStore[V any] struct {
	items syncx.Map[string, Entry[V]]
}

func NewMemoryStore[V any]() *MemoryStore[V] {
	return &MemoryStore[V]{}
}

func (m *MemoryStore[V]) Get(ctx context.Context, key string) (Entry[V], bool, error) {
	entry, ok := m.items.Load(key)
	return entry, ok, nil
}

func (m *MemoryStore[V]) Put(ctx context.Context, key string, entry Entry[V]) error {
	m.items.Store(key, entry)
	return nil
}

func (m *MemoryStore[V]) Invalidate(ctx context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

var _ Store[any] = &MemoryStore[any]{}
