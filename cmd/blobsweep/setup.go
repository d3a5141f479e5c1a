package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/filesystem/local"
	"github.com/bornholm/go-blobsweep/metrics"
	"github.com/bornholm/go-blobsweep/middleware/limit"
	"github.com/bornholm/go-blobsweep/middleware/logger"
	"github.com/bornholm/go-blobsweep/store"
	"github.com/pkg/errors"
)

type runtime struct {
	FileSystem blobsweep.FileSystem
	Store      blobsweep.BlobStore
	Metrics    *metrics.Metrics
	closer     io.Closer
}

func (r *runtime) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer.Close()
}

// setup loads the configuration and assembles the filesystem and blob
// store middleware chains described by it.
func setup(ctx context.Context, override func(conf *config)) (*config, *runtime, error) {
	conf, err := loadConfig(ctx, configFile)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	if override != nil {
		override(conf)
	}

	if err := conf.validate(ctx); err != nil {
		return nil, nil, errors.WithStack(err)
	}

	backend, err := store.New(store.Type(conf.Store.Type), conf.storeOptions())
	if err != nil {
		return nil, nil, errors.Wrapf(err, "could not create store '%s'", conf.Store.Type)
	}

	rt := &runtime{
		Metrics: metrics.New(),
	}

	if closer, ok := backend.(io.Closer); ok {
		rt.closer = closer
	}

	log := slog.Default()

	middlewares := []blobsweep.Middleware{
		logger.Middleware(log),
		rt.Metrics.Middleware(),
	}

	var blobs blobsweep.BlobStore = blobsweep.WithStoreLogger(rt.Metrics.Store(backend), log)

	if conf.Concurrency > 0 {
		limiter := limit.NewLimiter(conf.Concurrency)
		middlewares = append(middlewares, limiter.Middleware())
		blobs = limiter.Store(blobs)
	}

	rt.FileSystem = blobsweep.Chain(local.NewFileSystem(), middlewares...)
	rt.Store = blobs

	slog.DebugContext(ctx, "runtime ready", slog.String("store", conf.Store.Type), slog.Int64("concurrency", conf.Concurrency))

	return conf, rt, nil
}
