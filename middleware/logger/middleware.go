package logger

import (
	"log/slog"

	"github.com/bornholm/go-blobsweep"
)

func Middleware(logger *slog.Logger) blobsweep.Middleware {
	return func(next blobsweep.FileSystem) blobsweep.FileSystem {
		return blobsweep.WithLogger(next, logger)
	}
}
