package store

import (
	"sort"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
)

var (
	ErrNotRegistered = errors.New("not registered")
)

type Type string

type Factory func(options any) (blobsweep.BlobStore, error)

var factories = make(map[Type]Factory, 0)

func Register(storeType Type, factory Factory) {
	factories[storeType] = factory
}

func Registered() []Type {
	types := make([]Type, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func New(storeType Type, options any) (blobsweep.BlobStore, error) {
	factory, exists := factories[storeType]
	if !exists {
		return nil, errors.Wrapf(ErrNotRegistered, "no blob store associated with type '%s'", storeType)
	}

	store, err := factory(options)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return store, nil
}
