package sourcedb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flanksource/hdl-checker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, content string) models.Path {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return models.StatPath(p)
}

func TestDB_PutAndRefreshParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "foo.vhd", `
entity foo is
end entity foo;
architecture rtl of foo is
begin
end architecture rtl;
`)

	db := New()
	db.PutFile(path, models.VHDL, "lib_a", nil, nil)
	changed := db.Refresh()
	require.Len(t, changed, 1)

	sf, ok := db.Get(path)
	require.True(t, ok)
	assert.Len(t, sf.DesignUnits, 2)
}

func TestDB_RefreshTwiceIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "foo.vhd", "entity foo is\nend entity foo;\n")

	db := New()
	db.PutFile(path, models.VHDL, "lib_a", nil, nil)
	db.Refresh()
	first := db.Refresh()
	second := db.Refresh()
	assert.Empty(t, first)
	assert.Empty(t, second)
}

func TestDB_ForgetFileDropsState(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "foo.vhd", "entity foo is\nend entity foo;\n")

	db := New()
	db.PutFile(path, models.VHDL, "lib_a", nil, nil)
	db.Refresh()
	db.ForgetFile(path)

	_, ok := db.Get(path)
	assert.False(t, ok)
	assert.Empty(t, db.PathsByDesignUnit("lib_a", "foo", path))
}

func TestDB_LibraryInference_Rule1(t *testing.T) {
	dir := t.TempDir()
	pkgPath := writeTempFile(t, dir, "pkg.vhd", "package p is\nend package p;\n")
	userPath := writeTempFile(t, dir, "user.vhd", `
library lib_a;
use lib_a.p.all;
entity user is
end entity user;
`)

	db := New()
	db.PutFile(pkgPath, models.VHDL, "lib_a", nil, nil)
	db.PutFile(userPath, models.VHDL, "", nil, nil)
	db.Refresh()

	assert.Equal(t, "lib_a", db.LibraryOf(userPath))
}

func TestDB_LibraryInference_UnresolvedEmitsSentinel(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "lonely.vhd", "entity lonely is\nend entity lonely;\n")

	db := New()
	db.PutFile(path, models.VHDL, "", nil, nil)
	db.Refresh()

	assert.Equal(t, models.UnresolvedLibrary, db.LibraryOf(path))
	assert.Len(t, db.UnresolvedFiles(), 1)
}

func TestDB_LibraryInference_Idempotent(t *testing.T) {
	dir := t.TempDir()
	pkgPath := writeTempFile(t, dir, "pkg.vhd", "package p is\nend package p;\n")
	userPath := writeTempFile(t, dir, "user.vhd", "library lib_a;\nuse lib_a.p.all;\nentity user is\nend entity user;\n")

	db := New()
	db.PutFile(pkgPath, models.VHDL, "lib_a", nil, nil)
	db.PutFile(userPath, models.VHDL, "", nil, nil)
	db.Refresh()
	before := db.LibraryOf(userPath)

	db.inferLibraries()
	db.inferLibraries()
	after := db.LibraryOf(userPath)

	assert.Equal(t, before, after)
}

func TestDB_LibraryInference_Rule2(t *testing.T) {
	dir := t.TempDir()
	qPath := writeTempFile(t, dir, "q.vhd", "package q is\nend package q;\n")
	topPath := writeTempFile(t, dir, "top.vhd", `
library lib_b;
use lib_b.q.all;
entity top is
end entity top;
`)

	db := New()
	db.PutFile(qPath, models.VHDL, "", nil, nil)
	db.PutFile(topPath, models.VHDL, "lib_b", nil, nil)
	db.Refresh()

	assert.Equal(t, "lib_b", db.LibraryOf(qPath))
}

func TestDB_LibraryInference_Rule2WorkReferenceResolvesToDependerLibrary(t *testing.T) {
	dir := t.TempDir()
	qPath := writeTempFile(t, dir, "q.vhd", "package q is\nend package q;\n")
	topPath := writeTempFile(t, dir, "top.vhd", `
use work.q.all;
entity top is
end entity top;
`)

	db := New()
	db.PutFile(qPath, models.VHDL, "", nil, nil)
	db.PutFile(topPath, models.VHDL, "lib_a", nil, nil)
	db.Refresh()

	assert.Equal(t, "lib_a", db.LibraryOf(qPath))
}

func TestDB_PathsByDesignUnit_WorkResolvesToRequesterLibrary(t *testing.T) {
	dir := t.TempDir()
	pkgPath := writeTempFile(t, dir, "pkg.vhd", "package p is\nend package p;\n")
	userPath := writeTempFile(t, dir, "user.vhd", "entity user is\nend entity user;\n")

	db := New()
	db.PutFile(pkgPath, models.VHDL, "lib_a", nil, nil)
	db.PutFile(userPath, models.VHDL, "lib_a", nil, nil)
	db.Refresh()

	paths := db.PathsByDesignUnit(models.WorkLibrary, "p", userPath)
	require.Len(t, paths, 1)
	assert.Equal(t, pkgPath.String(), paths[0].String())
}
