package main

import (
	"context"
	"encoding"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bornholm/go-blobsweep/store"
	"github.com/bornholm/go-blobsweep/sweep"
	"github.com/caarlos0/env/v11"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const envPrefix = "BLOBSWEEP_"

type config struct {
	Pattern     string      `json:"pattern" env:"PATTERN" validate:"required"`
	Filter      string      `json:"filter" env:"FILTER"`
	Removal     string      `json:"removal" env:"REMOVAL" validate:"oneof=rm sweep none"`
	Concurrency int64       `json:"concurrency" env:"CONCURRENCY" validate:"gte=0"`
	MetricsFile string      `json:"metricsFile" env:"METRICS_FILE"`
	Store       storeConfig `json:"store" envPrefix:"STORE_"`
}

type storeConfig struct {
	Type    string   `json:"type" env:"TYPE,expand" validate:"required"`
	Options *rawJSON `json:"options" env:"OPTIONS,expand"`
}

type rawJSON struct {
	Value any
}

// UnmarshalJSON implements [json.Unmarshaler].
func (j *rawJSON) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &j.Value); err != nil {
		return err
	}

	return nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (j *rawJSON) UnmarshalText(text []byte) error {
	if err := json.Unmarshal(text, &j.Value); err != nil {
		return err
	}

	return nil
}

var _ encoding.TextUnmarshaler = &rawJSON{}
var _ json.Unmarshaler = &rawJSON{}

func defaultConfig() config {
	return config{
		Pattern:     `^node_modules$`,
		Removal:     string(sweep.RemovalRecursive),
		Concurrency: 64,
		Store: storeConfig{
			Type: "local",
		},
	}
}

// loadConfig layers the configuration file, when present, and the
// environment over the defaults.
func loadConfig(ctx context.Context, path string) (*config, error) {
	conf := defaultConfig()

	rawConfig, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(err, "could not read configuration file '%s'", path)
	}

	if rawConfig != nil {
		if err := json.Unmarshal(rawConfig, &conf); err != nil {
			return nil, errors.Wrapf(err, "could not parse configuration file '%s'", path)
		}
	}

	if err := env.ParseWithOptions(&conf, env.Options{Prefix: envPrefix}); err != nil {
		return nil, errors.Wrap(err, "could not parse environment variables")
	}

	if conf.Store.Type == "local" && (conf.Store.Options == nil || conf.Store.Options.Value == nil) {
		dir, err := defaultStoreDir()
		if err != nil {
			return nil, errors.WithStack(err)
		}

		conf.Store.Options = &rawJSON{Value: map[string]any{"dir": dir}}
	}

	return &conf, nil
}

func (c *config) validate(ctx context.Context) error {
	validate := validator.New()
	if err := validate.StructCtx(ctx, c); err != nil {
		return errors.Wrap(err, "could not validate config")
	}

	if !isRegistered(c.Store.Type) {
		return errors.Wrapf(store.ErrNotRegistered, "unknown store type '%s', expected one of %v", c.Store.Type, store.Registered())
	}

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.DebugContext(ctx, "configuration loaded", slog.String("config", spew.Sdump(c)))
	}

	return nil
}

func (c *config) storeOptions() any {
	if c.Store.Options == nil {
		return nil
	}

	return c.Store.Options.Value
}

func isRegistered(storeType string) bool {
	for _, t := range store.Registered() {
		if string(t) == storeType {
			return true
		}
	}

	return false
}

func defaultStoreDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "could not find user cache directory")
	}

	return filepath.Join(cacheDir, "blobsweep", "blobs"), nil
}
