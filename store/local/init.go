package local

import (
	"os"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/store"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

const Type store.Type = "local"

func init() {
	store.Register(Type, CreateStoreFromOptions)
}

type Options struct {
	store.CommonOptions `mapstructure:",squash"`

	Dir         string      `mapstructure:"dir" validate:"required"`
	Compression Compression `mapstructure:"compression" validate:"omitempty,oneof=none zstd"`
}

func CreateStoreFromOptions(options any) (blobsweep.BlobStore, error) {
	opts := Options{}

	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, errors.Wrapf(err, "could not parse '%s' store options", Type)
	}

	validate := validator.New()
	if err := validate.Struct(&opts); err != nil {
		return nil, errors.Wrap(err, "could not validate local store options")
	}

	if err := os.MkdirAll(opts.Dir, os.ModePerm|os.ModeDir); err != nil {
		return nil, errors.Wrapf(err, "could not create directory '%s'", opts.Dir)
	}

	common := opts.CommonOptions.WithDefaults()

	s, err := NewStore(opts.Dir, common.Algorithm, common.SizeLimit, opts.Compression)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return s, nil
}
