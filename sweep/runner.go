package sweep

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/archive"
	"github.com/bornholm/go-blobsweep/discover"
	"github.com/pkg/errors"
)

// Removal selects what happens to a target once it has been archived.
type Removal string

const (
	// RemovalRecursive deletes the whole tree at once.
	RemovalRecursive Removal = "rm"
	// RemovalSweep deletes the tree file by file with a Sweeper.
	RemovalSweep Removal = "sweep"
	// RemovalNone keeps the tree.
	RemovalNone Removal = "none"
)

type Report struct {
	Targets  int
	Archived int
	Removed  int
	Failed   int
}

// Runner archives targets, prints "<hash> <path>" for each of them and
// removes them. A failing target never stops the others.
type Runner struct {
	fs      blobsweep.FileSystem
	engine  *archive.Engine
	sweeper *Sweeper
	out     io.Writer
	removal Removal
	logger  *slog.Logger
}

type Options struct {
	Removal Removal
	Logger  *slog.Logger
}

type OptionFunc func(opts *Options)

func WithRemoval(removal Removal) OptionFunc {
	return func(opts *Options) {
		opts.Removal = removal
	}
}

func WithLogger(logger *slog.Logger) OptionFunc {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func NewRunner(fs blobsweep.FileSystem, engine *archive.Engine, out io.Writer, funcs ...OptionFunc) *Runner {
	opts := &Options{
		Removal: RemovalRecursive,
		Logger:  slog.Default(),
	}
	for _, fn := range funcs {
		fn(opts)
	}

	return &Runner{
		fs:      fs,
		engine:  engine,
		sweeper: NewSweeper(fs, engine, opts.Logger),
		out:     out,
		removal: opts.Removal,
		logger:  opts.Logger,
	}
}

// Run processes each distinct target in order.
func (r *Runner) Run(ctx context.Context, targets iter.Seq[string]) Report {
	var report Report

	for target := range discover.Dedupe(targets) {
		report.Targets++

		removed, err := r.Process(ctx, target)
		if err != nil {
			report.Failed++
			r.logger.ErrorContext(ctx, "could not process target", slog.String("path", target), slog.Any("error", err))
			continue
		}

		report.Archived++

		if removed {
			report.Removed++
		}
	}

	return report
}

// Process archives a single target, prints its hash then removes it. It
// reports whether the target is gone.
func (r *Runner) Process(ctx context.Context, target string) (bool, error) {
	r.logger.InfoContext(ctx, "processing", slog.String("path", target))

	hash, err := r.engine.Archive(ctx, target)
	if err != nil {
		return false, errors.WithStack(err)
	}

	if _, err := fmt.Fprintf(r.out, "%s %s\n", hash, target); err != nil {
		return false, errors.WithStack(err)
	}

	switch r.removal {
	case RemovalNone:
		return false, nil

	case RemovalSweep:
		r.sweeper.Sweep(ctx, target)

		if _, err := r.fs.Lstat(ctx, target); err == nil {
			return false, errors.Errorf("target '%s' was archived but could not be fully swept", target)
		}

		return true, nil

	default:
		if err := r.fs.RemoveAll(ctx, target); err != nil {
			return false, errors.Wrapf(err, "could not remove target '%s'", target)
		}

		return true, nil
	}
}
