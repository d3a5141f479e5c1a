package archive

import (
	"context"
	"log/slog"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/middleware/cache"
	"github.com/pkg/errors"
)

// Submitter stores the content of single files.
type Submitter struct {
	contents *cache.Contents
	store    blobsweep.BlobStore
	logger   *slog.Logger
}

// Submit stores the content of the file at path and returns its hash.
//
// Every failure is reported as blobsweep.ErrSkipped: oversized content
// (blobsweep.ErrTooLarge), unreadable files (blobsweep.ErrReadFailed) and
// store failures alike. The cause stays reachable with errors.Is.
func (s *Submitter) Submit(ctx context.Context, path string) (blobsweep.Hash, error) {
	data, err := s.contents.Read(ctx, path)
	if err != nil {
		return "", s.skip(ctx, path, err)
	}

	// The engine memoizes the hash, the content is not needed anymore
	defer func() {
		if err := s.contents.Release(ctx, path); err != nil {
			s.logger.WarnContext(ctx, "could not release file content", slog.String("path", path), slog.Any("error", errors.WithStack(err)))
		}
	}()

	if limit := s.store.SizeLimit(); int64(len(data)) > limit {
		return "", s.skip(ctx, path, errors.Wrapf(blobsweep.ErrTooLarge, "%d bytes exceeds the %d bytes limit", len(data), limit))
	}

	hash, err := s.store.Put(ctx, data)
	if err != nil {
		return "", s.skip(ctx, path, err)
	}

	return hash, nil
}

func (s *Submitter) skip(ctx context.Context, path string, cause error) error {
	s.logger.DebugContext(ctx, "file skipped", slog.String("path", path), slog.Any("reason", cause))
	return blobsweep.NewPathError(blobsweep.ErrSkipped, path, cause)
}

func NewSubmitter(contents *cache.Contents, store blobsweep.BlobStore, logger *slog.Logger) *Submitter {
	return &Submitter{
		contents: contents,
		store:    store,
		logger:   logger,
	}
}
