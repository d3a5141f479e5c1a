package blobsweep

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotAccessible    = errors.New("not accessible")
	ErrReadFailed       = errors.New("read failed")
	ErrSkipped          = errors.New("skipped")
	ErrTooLarge         = errors.New("too large")
	ErrArchivalFailed   = errors.New("archival failed")
	ErrUnsupportedEntry = errors.New("unsupported entry")
	ErrInvalidHash      = errors.New("invalid hash")
	ErrNotFound         = errors.New("not found")
)

// PathError is a failure of kind Kind on Path. errors.Is matches both the
// kind and any of the causes.
type PathError struct {
	Kind   error
	Path   string
	Causes []error
}

func (e *PathError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: '%s'", e.Kind, e.Path)

	switch len(e.Causes) {
	case 0:
	case 1:
		fmt.Fprintf(&sb, ": %s", e.Causes[0])
	default:
		fmt.Fprintf(&sb, ": %s (and %d more)", e.Causes[0], len(e.Causes)-1)
	}

	return sb.String()
}

func (e *PathError) Unwrap() []error {
	errs := make([]error, 0, len(e.Causes)+1)
	errs = append(errs, e.Kind)
	return append(errs, e.Causes...)
}

func NewPathError(kind error, path string, causes ...error) *PathError {
	filtered := make([]error, 0, len(causes))
	for _, c := range causes {
		if c != nil {
			filtered = append(filtered, c)
		}
	}

	return &PathError{
		Kind:   kind,
		Path:   path,
		Causes: filtered,
	}
}
