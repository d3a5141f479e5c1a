package cache

import (
	"context"
	"log/slog"
	"os"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
)

// Metadata deduplicates stat calls per path. A path that cannot be stat'ed
// while following symlinks is lstat'ed instead, so dangling links still
// resolve. Failures are memoized like results.
type Metadata struct {
	fs   blobsweep.FileSystem
	memo *Memo[os.FileInfo]
}

func NewMetadata(fs blobsweep.FileSystem, store Store[os.FileInfo], logger *slog.Logger) *Metadata {
	return &Metadata{
		fs:   fs,
		memo: NewMemo(store, WithName("metadata"), WithLogger(logger), WithCachedErrors(true)),
	}
}

// Stat returns the memoized stat result of name. It fails with
// blobsweep.ErrNotAccessible when both stat and lstat fail.
func (m *Metadata) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	info, err := m.memo.Do(ctx, name, func(ctx context.Context) (os.FileInfo, error) {
		info, statErr := m.fs.Stat(ctx, name)
		if statErr == nil {
			return info, nil
		}

		info, lstatErr := m.fs.Lstat(ctx, name)
		if lstatErr != nil {
			return nil, blobsweep.NewPathError(blobsweep.ErrNotAccessible, name, lstatErr)
		}

		return info, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return info, nil
}
