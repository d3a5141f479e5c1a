package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	_ "github.com/bornholm/go-blobsweep/store/all"
)

var (
	configFile = "blobsweep.json"
	logLevel   = "info"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blobsweep",
		Short: "Archive node_modules trees into a content-addressed store and remove them",
		Long: `blobsweep finds node_modules directories, archives every file they contain
into a content-addressed blob store, prints one "<hash> <path>" line per
archived directory and removes the archived trees.

Directories are archived as HTML index documents listing their children,
so any printed hash can later be restored with the restore command.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return errors.Wrapf(err, "invalid log level '%s'", logLevel)
			}

			slog.SetLogLoggerLevel(level)
			slog.SetDefault(slog.Default().With(slog.String("run", uuid.NewString())))

			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", configFile, "configuration file path")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "log level (debug, info, warn, error)")

	cmd.AddCommand(
		NewPruneCmd(),
		NewArchiveCmd(),
		NewRestoreCmd(),
	)

	return cmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		os.Exit(1)
	}
}
