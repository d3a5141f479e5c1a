package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/bornholm/go-blobsweep/archive"
	"github.com/bornholm/go-blobsweep/discover"
	"github.com/bornholm/go-blobsweep/sweep"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewPruneCmd creates the prune subcommand, which discovers matching
// directories under the given roots, archives them and removes them.
func NewPruneCmd() *cobra.Command {
	var (
		pattern     string
		filter      string
		removal     string
		concurrency int64
		metricsFile string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "prune [ROOT...]",
		Short: "Archive and remove every node_modules directory under the given roots",
		Long: `Walk each ROOT (the working directory by default) looking for directories
whose name matches the configured pattern, archive each of them, print
"<hash> <path>" on standard output and remove it.

A target that fails to archive is logged and left in place. The other
targets are still processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			conf, rt, err := setup(ctx, func(conf *config) {
				flags := cmd.Flags()
				if flags.Changed("pattern") {
					conf.Pattern = pattern
				}
				if flags.Changed("filter") {
					conf.Filter = filter
				}
				if flags.Changed("removal") {
					conf.Removal = removal
				}
				if flags.Changed("concurrency") {
					conf.Concurrency = concurrency
				}
				if flags.Changed("metrics-file") {
					conf.MetricsFile = metricsFile
				}
				if dryRun {
					conf.Removal = string(sweep.RemovalNone)
				}
			})
			if err != nil {
				return errors.WithStack(err)
			}

			defer func() {
				if err := rt.Close(); err != nil {
					slog.ErrorContext(ctx, "could not close store", slog.Any("error", errors.WithStack(err)))
				}
			}()

			re, err := regexp.Compile(conf.Pattern)
			if err != nil {
				return errors.Wrapf(err, "invalid pattern '%s'", conf.Pattern)
			}

			matcher := discover.NamePattern(re)

			if conf.Filter != "" {
				expr, err := discover.Expr(conf.Filter)
				if err != nil {
					return errors.WithStack(err)
				}

				matcher = discover.All(matcher, expr)
			}

			roots, err := absPaths(args, ".")
			if err != nil {
				return errors.WithStack(err)
			}

			logger := slog.Default()

			walker := discover.NewWalker(
				rt.FileSystem, matcher,
				discover.WithLogger(logger),
				discover.WithErrorHandler(func(err error) {
					slog.WarnContext(ctx, "could not walk path", slog.Any("error", err))
				}),
			)

			engine := archive.NewEngine(rt.FileSystem, rt.Store, archive.WithLogger(logger))

			runner := sweep.NewRunner(
				rt.FileSystem, engine, cmd.OutOrStdout(),
				sweep.WithRemoval(sweep.Removal(conf.Removal)),
				sweep.WithLogger(logger),
			)

			report := runner.Run(ctx, walker.All(ctx, roots...))

			slog.InfoContext(ctx, "prune completed",
				slog.Int("targets", report.Targets),
				slog.Int("archived", report.Archived),
				slog.Int("removed", report.Removed),
				slog.Int("failed", report.Failed),
			)

			if conf.MetricsFile != "" {
				if err := rt.Metrics.WriteTextfile(conf.MetricsFile); err != nil {
					return errors.WithStack(err)
				}
			}

			if err := ctx.Err(); err != nil {
				return errors.WithStack(err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "regular expression matched against directory names")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "expression a candidate must also satisfy, e.g. 'depth < 4'")
	cmd.Flags().StringVarP(&removal, "removal", "r", "", "removal mode once archived (rm, sweep, none)")
	cmd.Flags().Int64VarP(&concurrency, "concurrency", "j", 0, "maximum number of concurrent I/O operations, 0 for unbounded")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file when done")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "archive and print hashes without removing anything")

	return cmd
}

func absPaths(paths []string, fallback string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{fallback}
	}

	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "could not resolve path '%s'", p)
		}

		abs = append(abs, a)
	}

	return abs, nil
}

func printHash(cmd *cobra.Command, hash fmt.Stringer, path string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", hash, path)
}
