package cache

import (
	"context"
	"log/slog"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
)

// Contents deduplicates whole file reads per path.
type Contents struct {
	fs   blobsweep.FileSystem
	memo *Memo[[]byte]
}

func NewContents(fs blobsweep.FileSystem, store Store[[]byte], logger *slog.Logger) *Contents {
	return &Contents{
		fs:   fs,
		memo: NewMemo(store, WithName("contents"), WithLogger(logger)),
	}
}

// Read returns the content of name. A failed read is reported as
// blobsweep.ErrReadFailed and is not memoized.
func (c *Contents) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := c.memo.Do(ctx, name, func(ctx context.Context) ([]byte, error) {
		data, err := c.fs.ReadFile(ctx, name)
		if err != nil {
			return nil, blobsweep.NewPathError(blobsweep.ErrReadFailed, name, err)
		}

		return data, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return data, nil
}

// Release drops the memoized content of name.
func (c *Contents) Release(ctx context.Context, name string) error {
	return c.memo.Forget(ctx, name)
}
