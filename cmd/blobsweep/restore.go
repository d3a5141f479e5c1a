package main

import (
	"log/slog"
	"path/filepath"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/restore"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewRestoreCmd creates the restore subcommand, which rebuilds an archived
// directory from its index hash.
func NewRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore HASH DEST",
		Short: "Restore an archived directory into DEST",
		Long: `Rebuild the directory whose index document has the given HASH into DEST.

Existing files are never overwritten.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			hash, err := blobsweep.ParseHash(args[0])
			if err != nil {
				return errors.WithStack(err)
			}

			dest, err := filepath.Abs(args[1])
			if err != nil {
				return errors.Wrapf(err, "could not resolve path '%s'", args[1])
			}

			_, rt, err := setup(ctx, nil)
			if err != nil {
				return errors.WithStack(err)
			}

			defer func() {
				if err := rt.Close(); err != nil {
					slog.ErrorContext(ctx, "could not close store", slog.Any("error", errors.WithStack(err)))
				}
			}()

			restorer := restore.NewRestorer(rt.Store, slog.Default())

			if err := restorer.Restore(ctx, hash, dest); err != nil {
				return errors.WithStack(err)
			}

			slog.InfoContext(ctx, "directory restored", slog.String("hash", hash.String()), slog.String("dest", dest))

			return nil
		},
	}

	return cmd
}
