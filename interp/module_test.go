package interp

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// writeArchive unpacks a txtar archive's files into dir, the multi-file
// fixture convention used for LOADIN/LINK's module-loading surface.
func writeArchive(t *testing.T, dir, data string) {
	t.Helper()
	ar := txtar.Parse([]byte(data))
	for _, f := range ar.Files {
		path := filepath.Join(dir, f.Name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}
}

// TestLoadinBindsModuleByAlias exercises LOADIN's explicit-alias form: the
// loaded file runs once and the module is bound under the alias as an
// Extension value (spec.md §4.6, SUPPLEMENTED FEATURES #1).
func TestLoadinBindsModuleByAlias(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, `
-- greeter.ra --
SOUT : s-l, "module loaded\n"
`)
	vm := New(Options{Stdout: &bytes.Buffer{}, WorkDir: dir})
	root, err := vm.ParseSource(`LOADIN : "greeter.ra", g`, "test.ra")
	require.NoError(t, err)

	var out bytes.Buffer
	vm.opt.Stdout = &out
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)
	require.Equal(t, "module loaded\n", out.String())

	slot, ok := vm.scopes.findByName("g")
	require.True(t, ok)
	_, ok = slot.value.(ExtensionValue)
	require.True(t, ok, "expected g to be bound as an ExtensionValue")
}

// TestLoadinDefaultNameIsFileBasename: without an explicit alias, LOADIN
// binds the module under the file's basename (spec.md §4.6).
func TestLoadinDefaultNameIsFileBasename(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, `
-- mathlib.ra --
SOUT : s-l, "mathlib loaded\n"
`)
	vm := New(Options{Stdout: &bytes.Buffer{}, WorkDir: dir})
	root, err := vm.ParseSource(`LOADIN : "mathlib.ra"`, "test.ra")
	require.NoError(t, err)

	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)

	_, ok := vm.scopes.findByName("mathlib")
	require.True(t, ok, "expected module bound under its basename \"mathlib\"")
}

// TestLinkLoadsMultipleModules is the multi-file counterpart of LOADIN: each
// path given to LINK is parsed, run, and bound under its own basename
// (spec.md §4.6).
func TestLinkLoadsMultipleModules(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, `
-- a.ra --
SOUT : s-l, "a\n"
-- b.ra --
SOUT : s-l, "b\n"
`)
	vm := New(Options{Stdout: &bytes.Buffer{}, WorkDir: dir})
	root, err := vm.ParseSource(`LINK : "a.ra", "b.ra"`, "test.ra")
	require.NoError(t, err)

	var out bytes.Buffer
	vm.opt.Stdout = &out
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)
	require.Equal(t, "a\nb\n", out.String())

	_, ok := vm.scopes.findByName("a")
	require.True(t, ok)
	_, ok = vm.scopes.findByName("b")
	require.True(t, ok)
}

// TestLoadinCachesRepeatedPath: loading the same module path twice reuses
// the cached parse rather than re-reading the file (loader.load's cache,
// grounded on the teacher's module-cache pattern).
func TestLoadinCachesRepeatedPath(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, `
-- once.ra --
SOUT : s-l, "once\n"
`)
	vm := New(Options{Stdout: &bytes.Buffer{}, WorkDir: dir})
	root, err := vm.ParseSource(`
LOADIN : "once.ra", first
LOADIN : "once.ra", second
`, "test.ra")
	require.NoError(t, err)

	var out bytes.Buffer
	vm.opt.Stdout = &out
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)
	require.Equal(t, "once\nonce\n", out.String())
	require.Len(t, vm.loader.cache, 1)
}

// TestLoadinMissingModuleIsLinkError: a LOADIN naming a nonexistent path
// surfaces an ErrLink RVMError rather than a bare os error (spec.md §4.6).
func TestLoadinMissingModuleIsLinkError(t *testing.T) {
	dir := t.TempDir()
	vm := New(Options{Stdout: &bytes.Buffer{}, WorkDir: dir})
	root, err := vm.ParseSource(`LOADIN : "nope.ra"`, "test.ra")
	require.NoError(t, err)

	_, rerr := vm.Execute(root)
	require.Error(t, rerr)
	rverr, ok := rerr.(*RVMError)
	require.True(t, ok)
	require.Equal(t, ErrLink, rverr.Kind)
}
