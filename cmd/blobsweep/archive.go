package main

import (
	"log/slog"

	"github.com/bornholm/go-blobsweep/archive"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewArchiveCmd creates the archive subcommand. It stores the given paths
// without discovering or removing anything.
func NewArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive PATH...",
		Short: "Archive files or directories and print their hashes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			_, rt, err := setup(ctx, nil)
			if err != nil {
				return errors.WithStack(err)
			}

			defer func() {
				if err := rt.Close(); err != nil {
					slog.ErrorContext(ctx, "could not close store", slog.Any("error", errors.WithStack(err)))
				}
			}()

			paths, err := absPaths(args, ".")
			if err != nil {
				return errors.WithStack(err)
			}

			engine := archive.NewEngine(rt.FileSystem, rt.Store, archive.WithLogger(slog.Default()))

			failed := 0
			for _, p := range paths {
				hash, err := engine.Archive(ctx, p)
				if err != nil {
					slog.ErrorContext(ctx, "could not archive path", slog.String("path", p), slog.Any("error", err))
					failed++
					continue
				}

				printHash(cmd, hash, p)
			}

			if failed > 0 {
				return errors.Errorf("%d of %d paths could not be archived", failed, len(paths))
			}

			return nil
		},
	}

	return cmd
}
