package cache

import (
	"context"
)

// Entry is a memoized outcome. A failure is memoized by setting Err.
type Entry[V any] struct {
	Value V
	Err   error
}

type Store[V any] interface {
	Get(ctx context.Context, key string) (Entry[V], bool, error)
	Put(ctx context.Context, key string, entry Entry[V]) error
	Invalidate(ctx context.Context, key string) error
}
