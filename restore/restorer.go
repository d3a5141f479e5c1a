package restore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/archive"
	"github.com/pkg/errors"
)

var ErrInvalidEntry = errors.New("invalid entry")

// Restorer rebuilds archived trees on the host filesystem.
type Restorer struct {
	store  blobsweep.BlobStore
	logger *slog.Logger
}

// Restore writes the tree whose index document has the given hash into
// dest. Existing files are never overwritten.
func (r *Restorer) Restore(ctx context.Context, hash blobsweep.Hash, dest string) error {
	data, err := r.store.Get(ctx, hash)
	if err != nil {
		return errors.Wrapf(err, "could not fetch root '%s'", hash)
	}

	index, err := archive.ParseIndex(data)
	if err != nil {
		return errors.Wrapf(err, "root '%s' is not a directory", hash)
	}

	return r.restoreDir(ctx, index, dest)
}

func (r *Restorer) restoreDir(ctx context.Context, index *archive.Index, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return errors.WithStack(err)
	}

	for _, entry := range index.Entries {
		if err := validateName(entry.Name); err != nil {
			return errors.WithStack(err)
		}

		data, err := r.store.Get(ctx, entry.Hash)
		if err != nil {
			return errors.Wrapf(err, "could not fetch '%s'", entry.Name)
		}

		target := filepath.Join(dest, entry.Name)

		// A child directory is an index whose title extends the parent one
		if child, err := archive.ParseIndex(data); err == nil && child.Dir == filepath.Join(index.Dir, entry.Name) {
			if err := r.restoreDir(ctx, child, target); err != nil {
				return errors.WithStack(err)
			}

			continue
		}

		if err := writeFile(target, data); err != nil {
			return errors.WithStack(err)
		}

		r.logger.DebugContext(ctx, "file restored", slog.String("path", target), slog.String("hash", entry.Hash.String()))
	}

	return nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.Wrapf(ErrInvalidEntry, "unexpected entry name '%s'", name)
	}

	return nil
}

func writeFile(path string, data []byte) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.WithStack(err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return errors.WithStack(err)
	}

	if err := file.Close(); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func NewRestorer(store blobsweep.BlobStore, logger *slog.Logger) *Restorer {
	return &Restorer{
		store:  store,
		logger: logger,
	}
}
