package discover

import (
	"context"
	"iter"
	"log/slog"
	"path/filepath"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
)

// Walker finds directories matching a Matcher under a set of roots. Symlinks
// are never followed and matched directories are not descended into.
type Walker struct {
	fs      blobsweep.FileSystem
	matcher Matcher
	onError func(err error)
	logger  *slog.Logger
}

type Options struct {
	Logger  *slog.Logger
	OnError func(err error)
}

type OptionFunc func(opts *Options)

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithErrorHandler sets the callback receiving traversal failures. The walk
// goes on after a failure.
func WithErrorHandler(fn func(err error)) OptionFunc {
	return func(opts *Options) {
		opts.OnError = fn
	}
}

func NewWalker(fs blobsweep.FileSystem, matcher Matcher, funcs ...OptionFunc) *Walker {
	opts := &Options{
		Logger: slog.Default(),
	}
	for _, fn := range funcs {
		fn(opts)
	}

	if opts.OnError == nil {
		logger := opts.Logger
		opts.OnError = func(err error) {
			logger.Error("could not walk directory", slog.Any("error", err))
		}
	}

	return &Walker{
		fs:      fs,
		matcher: matcher,
		onError: opts.OnError,
		logger:  opts.Logger,
	}
}

// All lazily yields matching directories, root by root.
func (w *Walker) All(ctx context.Context, roots ...string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, root := range roots {
			if !w.walk(ctx, filepath.Clean(root), 0, yield) {
				return
			}
		}
	}
}

func (w *Walker) walk(ctx context.Context, path string, depth int, yield func(string) bool) bool {
	if err := ctx.Err(); err != nil {
		w.onError(errors.WithStack(err))
		return false
	}

	info, err := w.fs.Lstat(ctx, path)
	if err != nil {
		w.onError(errors.WithStack(err))
		return true
	}

	if !info.IsDir() {
		return true
	}

	candidate := Candidate{
		Path:  path,
		Name:  filepath.Base(path),
		Depth: depth,
	}

	matched, err := w.matcher.Match(candidate)
	if err != nil {
		w.onError(errors.Wrapf(err, "could not match '%s'", path))
		return true
	}

	if matched {
		w.logger.DebugContext(ctx, "directory matched", slog.String("path", path))
		return yield(path)
	}

	names, err := w.fs.ReadDir(ctx, path)
	if err != nil {
		w.onError(errors.WithStack(err))
		return true
	}

	for _, name := range names {
		if !w.walk(ctx, filepath.Join(path, name), depth+1, yield) {
			return false
		}
	}

	return true
}

// Dedupe yields each value of seq once, in first-seen order.
func Dedupe(seq iter.Seq[string]) iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})

		for v := range seq {
			if _, exists := seen[v]; exists {
				continue
			}

			seen[v] = struct{}{}

			if !yield(v) {
				return
			}
		}
	}
}
