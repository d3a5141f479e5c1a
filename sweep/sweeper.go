package sweep

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/archive"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Sweeper deletes a tree file by file, each file only once its content is
// archived. Failures are logged where they happen and never propagate: a
// path that could not be swept is left in place and so is every ancestor
// directory, which is then not empty.
type Sweeper struct {
	fs     blobsweep.FileSystem
	engine *archive.Engine
	logger *slog.Logger
}

// Sweep returns the content hash of path when path is a file that has been
// archived and deleted.
func (s *Sweeper) Sweep(ctx context.Context, path string) (blobsweep.Hash, bool) {
	hash, swept, err := s.sweep(ctx, path)
	if err != nil {
		s.logger.ErrorContext(ctx, "could not sweep path", slog.String("path", path), slog.Any("error", err))
		return "", false
	}

	return hash, swept
}

func (s *Sweeper) sweep(ctx context.Context, path string) (blobsweep.Hash, bool, error) {
	info, err := s.engine.Metadata().Stat(ctx, path)
	if err != nil {
		return "", false, errors.WithStack(err)
	}

	if info.IsDir() {
		link, err := s.isSymlink(ctx, path)
		if err != nil {
			return "", false, errors.WithStack(err)
		}

		if !link {
			return "", false, s.sweepDir(ctx, path)
		}
	}

	hash, err := s.engine.Archive(ctx, path)
	if err != nil {
		return "", false, errors.WithStack(err)
	}

	if err := s.fs.Remove(ctx, path); err != nil {
		return "", false, errors.Wrapf(err, "could not remove archived file '%s'", path)
	}

	s.logger.DebugContext(ctx, "file swept", slog.String("path", path), slog.String("hash", hash.String()))

	return hash, true, nil
}

func (s *Sweeper) sweepDir(ctx context.Context, path string) error {
	names, err := s.fs.ReadDir(ctx, path)
	if err != nil {
		return errors.WithStack(err)
	}

	var group errgroup.Group

	for _, name := range names {
		group.Go(func() error {
			s.Sweep(ctx, filepath.Join(path, name))
			return nil
		})
	}

	// Children never report failures
	_ = group.Wait()

	if err := s.fs.Remove(ctx, path); err != nil {
		return errors.Wrapf(err, "could not remove directory '%s'", path)
	}

	s.logger.DebugContext(ctx, "directory swept", slog.String("path", path))

	return nil
}

// isSymlink reports whether path is a link, which the sweep never follows.
func (s *Sweeper) isSymlink(ctx context.Context, path string) (bool, error) {
	info, err := s.fs.Lstat(ctx, path)
	if err != nil {
		return false, errors.WithStack(err)
	}

	return info.Mode()&os.ModeSymlink != 0, nil
}

func NewSweeper(fs blobsweep.FileSystem, engine *archive.Engine, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		fs:     fs,
		engine: engine,
		logger: logger,
	}
}
