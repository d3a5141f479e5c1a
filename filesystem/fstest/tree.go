package fstest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

// Tree describes a directory layout: a key ending with "/" is a directory,
// any other key is a file holding the value.
type Tree map[string]string

// Create writes tree under a new temporary directory and returns its path.
func Create(t testing.TB, tree Tree) string {
	t.Helper()

	root := t.TempDir()

	for name, content := range tree {
		path := filepath.Join(root, filepath.FromSlash(name))

		if strings.HasSuffix(name, "/") {
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}
	}

	return root
}
