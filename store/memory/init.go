package memory

import (
	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/store"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

const Type store.Type = "memory"

func init() {
	store.Register(Type, CreateStoreFromOptions)
}

type Options struct {
	store.CommonOptions `mapstructure:",squash"`
}

func CreateStoreFromOptions(options any) (blobsweep.BlobStore, error) {
	opts := Options{}

	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, errors.Wrapf(err, "could not parse '%s' store options", Type)
	}

	validate := validator.New()
	if err := validate.Struct(&opts); err != nil {
		return nil, errors.Wrap(err, "could not validate memory store options")
	}

	common := opts.CommonOptions.WithDefaults()

	return NewStore(common.Algorithm, common.SizeLimit), nil
}
