package discover

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"testing"

	"github.com/bornholm/go-blobsweep/filesystem/fstest"
	"github.com/bornholm/go-blobsweep/filesystem/local"
	"github.com/pkg/errors"
)

func TestWalker(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{
		"app/node_modules/left-pad/index.js":                "",
		"app/node_modules/left-pad/node_modules/x/index.js": "",
		"app/src/index.js":                                  "",
		"lib/packages/core/node_modules/y/index.js":         "",
		"lib/node_modules.bak/z.js":                         "",
		"docs/node_modules":                                 "a file, not a directory",
	})

	walker := NewWalker(local.NewFileSystem(), NamePattern(regexp.MustCompile(`^node_modules$`)))

	var found []string
	for path := range walker.All(ctx, root) {
		found = append(found, path)
	}

	expected := []string{
		filepath.Join(root, "app/node_modules"),
		filepath.Join(root, "lib/packages/core/node_modules"),
	}

	if !slices.Equal(expected, found) {
		t.Errorf("expected '%v', got '%v'", expected, found)
	}
}

func TestWalkerErrors(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{
		"a/node_modules/": "",
		"b/node_modules/": "",
	})

	fs := fstest.Wrap(local.NewFileSystem())
	fs.Fail(fstest.OpReadDir, filepath.Join(root, "a"), os.ErrPermission)

	var errs []error
	walker := NewWalker(fs, NamePattern(regexp.MustCompile(`^node_modules$`)), WithErrorHandler(func(err error) {
		errs = append(errs, err)
	}))

	found := slices.Collect(walker.All(ctx, root, filepath.Join(root, "missing")))

	if e, g := []string{filepath.Join(root, "b/node_modules")}, found; !slices.Equal(e, g) {
		t.Errorf("expected '%v', got '%v'", e, g)
	}

	if e, g := 2, len(errs); e != g {
		t.Fatalf("errors: expected '%d', got '%d' (%v)", e, g, errs)
	}

	if !errors.Is(errs[0], os.ErrPermission) {
		t.Errorf("expected os.ErrPermission, got '%v'", errs[0])
	}

	if !errors.Is(errs[1], os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got '%v'", errs[1])
	}
}

func TestWalkerSymlinks(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{
		"real/node_modules/": "",
	})

	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	walker := NewWalker(local.NewFileSystem(), NamePattern(regexp.MustCompile(`^node_modules$`)))

	found := slices.Collect(walker.All(ctx, root))

	if e, g := []string{filepath.Join(root, "real/node_modules")}, found; !slices.Equal(e, g) {
		t.Errorf("expected '%v', got '%v'", e, g)
	}
}

func TestExprFilter(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{
		"node_modules/":             "",
		"vendor/deep/node_modules/": "",
		"keep/node_modules/":        "",
	})

	filter, err := Expr(`depth < 3 && !(path contains "/keep/")`)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	walker := NewWalker(local.NewFileSystem(), All(NamePattern(regexp.MustCompile(`^node_modules$`)), filter))

	found := slices.Collect(walker.All(ctx, root))

	if e, g := []string{filepath.Join(root, "node_modules")}, found; !slices.Equal(e, g) {
		t.Errorf("expected '%v', got '%v'", e, g)
	}

	if _, err := Expr(`depth +`); err == nil {
		t.Errorf("expected invalid expression to fail")
	}
}

func TestDedupe(t *testing.T) {
	seq := slices.Values([]string{"a", "b", "a", "c", "b"})

	if e, g := []string{"a", "b", "c"}, slices.Collect(Dedupe(seq)); !slices.Equal(e, g) {
		t.Errorf("expected '%v', got '%v'", e, g)
	}
}
