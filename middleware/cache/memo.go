package cache

import (
	"context"
	"log/slog"

	"github.com/minio/minio-go/v7/pkg/singleflight"
	"github.com/pkg/errors"
)

// Memo runs a computation at most once per key. Concurrent callers for the
// same key share the in-flight computation and later callers get the
// memoized outcome.
type Memo[V any] struct {
	name        string
	store       Store[V]
	flight      *singleflight.Group[string, V]
	cacheErrors bool
	logger      *slog.Logger
}

type MemoOptionFunc func(opts *memoOptions)

type memoOptions struct {
	Name        string
	CacheErrors bool
	Logger      *slog.Logger
}

// WithCachedErrors memoizes failures too: a failed key is never recomputed.
func WithCachedErrors(enabled bool) MemoOptionFunc {
	return func(opts *memoOptions) {
		opts.CacheErrors = enabled
	}
}

func WithName(name string) MemoOptionFunc {
	return func(opts *memoOptions) {
		opts.Name = name
	}
}

func WithLogger(logger *slog.Logger) MemoOptionFunc {
	return func(opts *memoOptions) {
		opts.Logger = logger
	}
}

func NewMemo[V any](store Store[V], funcs ...MemoOptionFunc) *Memo[V] {
	opts := &memoOptions{
		Name:   "memo",
		Logger: slog.Default(),
	}
	for _, fn := range funcs {
		fn(opts)
	}

	return &Memo[V]{
		name:        opts.Name,
		store:       store,
		flight:      &singleflight.Group[string, V]{},
		cacheErrors: opts.CacheErrors,
		logger:      opts.Logger,
	}
}

func (m *Memo[V]) Do(ctx context.Context, key string, fn func(ctx context.Context) (V, error)) (V, error) {
	if entry, ok, err := m.lookup(ctx, key); err != nil {
		var zero V
		return zero, errors.WithStack(err)
	} else if ok {
		m.logger.DebugContext(ctx, "cache hit", slog.String("cache", m.name), slog.String("key", key))
		return entry.Value, entry.Err
	}

	value, err, _ := m.flight.Do(key, func() (V, error) {
		// A flight for the same key may have completed since the lookup above
		if entry, ok, err := m.lookup(ctx, key); err != nil {
			var zero V
			return zero, errors.WithStack(err)
		} else if ok {
			return entry.Value, entry.Err
		}

		m.logger.DebugContext(ctx, "cache miss", slog.String("cache", m.name), slog.String("key", key))

		value, err := fn(ctx)
		if err != nil && !m.cacheErrors {
			return value, err
		}

		if perr := m.store.Put(ctx, key, Entry[V]{Value: value, Err: err}); perr != nil {
			var zero V
			return zero, errors.WithStack(perr)
		}

		return value, err
	})

	return value, err
}

// Forget drops the memoized outcome for key.
func (m *Memo[V]) Forget(ctx context.Context, key string) error {
	if err := m.store.Invalidate(ctx, key); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (m *Memo[V]) lookup(ctx context.Context, key string) (Entry[V], bool, error) {
	entry, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return Entry[V]{}, false, errors.WithStack(err)
	}

	return entry, ok, nil
}
