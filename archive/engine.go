package archive

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/middleware/cache"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Engine computes the content hash of files and directory trees. Each path
// is archived at most once per Engine: concurrent calls share the same
// computation and later calls return the memoized hash or failure.
//
// A directory is only committed, by storing its index document, once all of
// its children have been archived.
type Engine struct {
	fs        blobsweep.FileSystem
	store     blobsweep.BlobStore
	metadata  *cache.Metadata
	submitter *Submitter
	results   *cache.Memo[blobsweep.Hash]
	logger    *slog.Logger
}

type Options struct {
	Logger *slog.Logger
}

type OptionFunc func(opts *Options)

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func NewEngine(fs blobsweep.FileSystem, store blobsweep.BlobStore, funcs ...OptionFunc) *Engine {
	opts := &Options{
		Logger: slog.Default(),
	}
	for _, fn := range funcs {
		fn(opts)
	}

	contents := cache.NewContents(fs, cache.NewMemoryStore[[]byte](), opts.Logger)

	return &Engine{
		fs:        fs,
		store:     store,
		metadata:  cache.NewMetadata(fs, cache.NewMemoryStore[os.FileInfo](), opts.Logger),
		submitter: NewSubmitter(contents, store, opts.Logger),
		results: cache.NewMemo[blobsweep.Hash](
			cache.NewMemoryStore[blobsweep.Hash](),
			cache.WithName("archive"),
			cache.WithCachedErrors(true),
			cache.WithLogger(opts.Logger),
		),
		logger: opts.Logger,
	}
}

// Metadata returns the stat cache shared by the engine.
func (e *Engine) Metadata() *cache.Metadata {
	return e.metadata
}

// Archive returns the content hash of path.
//
// It fails with blobsweep.ErrNotAccessible when path cannot be stat'ed,
// blobsweep.ErrUnsupportedEntry when path is neither a regular file nor a
// directory and blobsweep.ErrArchivalFailed when the file or any descendant
// could not be stored.
func (e *Engine) Archive(ctx context.Context, path string) (blobsweep.Hash, error) {
	hash, err := e.results.Do(ctx, path, func(ctx context.Context) (blobsweep.Hash, error) {
		return e.archive(ctx, path)
	})
	if err != nil {
		return "", errors.WithStack(err)
	}

	return hash, nil
}

func (e *Engine) archive(ctx context.Context, path string) (blobsweep.Hash, error) {
	info, err := e.metadata.Stat(ctx, path)
	if err != nil {
		return "", err
	}

	switch {
	case info.Mode().IsRegular():
		hash, err := e.submitter.Submit(ctx, path)
		if err != nil {
			return "", blobsweep.NewPathError(blobsweep.ErrArchivalFailed, path, err)
		}

		return hash, nil

	case info.IsDir():
		return e.archiveDir(ctx, path)

	default:
		return "", blobsweep.NewPathError(blobsweep.ErrUnsupportedEntry, path, errors.Errorf("unexpected file mode '%s'", info.Mode()))
	}
}

func (e *Engine) archiveDir(ctx context.Context, path string) (blobsweep.Hash, error) {
	names, err := e.fs.ReadDir(ctx, path)
	if err != nil {
		return "", blobsweep.NewPathError(blobsweep.ErrArchivalFailed, path, err)
	}

	// Slots are indexed by listing position, not by completion order
	entries := make([]Entry, len(names))
	failures := make([]error, len(names))

	var group errgroup.Group

	for i, name := range names {
		group.Go(func() error {
			hash, err := e.Archive(ctx, filepath.Join(path, name))
			if err != nil {
				failures[i] = err
				return err
			}

			entries[i] = Entry{Name: name, Hash: hash}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return "", blobsweep.NewPathError(blobsweep.ErrArchivalFailed, path, failures...)
	}

	hash, err := e.store.Put(ctx, RenderIndex(path, entries))
	if err != nil {
		return "", blobsweep.NewPathError(blobsweep.ErrArchivalFailed, path, err)
	}

	e.logger.DebugContext(ctx, "directory archived", slog.String("path", path), slog.String("hash", hash.String()), slog.Int("entries", len(entries)))

	return hash, nil
}
