package store

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

type Algorithm string

const (
	AlgorithmSHA256 Algorithm = "sha256"
	AlgorithmBLAKE3 Algorithm = "blake3"
)

var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

func (a Algorithm) Sum(data []byte) (blobsweep.Hash, error) {
	var sum [blobsweep.HashSize]byte

	switch a {
	case AlgorithmSHA256, "":
		sum = sha256.Sum256(data)
	case AlgorithmBLAKE3:
		sum = blake3.Sum256(data)
	default:
		return "", errors.Wrapf(ErrUnknownAlgorithm, "'%s'", a)
	}

	return blobsweep.Hash(hex.EncodeToString(sum[:])), nil
}
