package store

import (
	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
)

// DefaultSizeLimit is the largest blob accepted when a backend does not
// configure one.
const DefaultSizeLimit int64 = 16 << 20

// CommonOptions are shared by every backend. Backends embed them with
// `mapstructure:",squash"`.
type CommonOptions struct {
	SizeLimit int64     `mapstructure:"sizeLimit" validate:"gte=0"`
	Algorithm Algorithm `mapstructure:"algorithm" validate:"omitempty,oneof=sha256 blake3"`
}

func (o CommonOptions) WithDefaults() CommonOptions {
	if o.SizeLimit == 0 {
		o.SizeLimit = DefaultSizeLimit
	}

	if o.Algorithm == "" {
		o.Algorithm = AlgorithmSHA256
	}

	return o
}

// CheckSize fails with blobsweep.ErrTooLarge when data exceeds limit.
func CheckSize(data []byte, limit int64) error {
	if int64(len(data)) > limit {
		return errors.Wrapf(blobsweep.ErrTooLarge, "blob of %d bytes exceeds the %d bytes limit", len(data), limit)
	}

	return nil
}
