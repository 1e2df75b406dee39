package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flanksource/hdl-checker/models"
	"github.com/flanksource/hdl-checker/sourcedb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, content string) models.Path {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return models.StatPath(p)
}

func indexOf(t *testing.T, order []models.Path, p models.Path) int {
	t.Helper()
	for i, o := range order {
		if o.Equal(p) {
			return i
		}
	}
	return -1
}

func TestBuild_SingleFileNoDeps(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "top.vhd", "entity top is\nend entity top;\n")

	db := sourcedb.New()
	db.PutFile(path, models.VHDL, "lib_a", nil, nil)
	db.Refresh()

	plan := Build(db, path)
	require.Len(t, plan.Order, 1)
	assert.True(t, plan.Order[0].Equal(path))
	assert.Empty(t, plan.Unresolved)
	assert.Empty(t, plan.BrokenCycles)
}

func TestBuild_MixedLanguageOrdering(t *testing.T) {
	dir := t.TempDir()
	pkgPath := writeTempFile(t, dir, "pkg.vhd", "package p is\nend package p;\n")
	topPath := writeTempFile(t, dir, "top.vhd", `
library lib_a;
use lib_a.p.all;
entity top is
end entity top;
`)

	db := sourcedb.New()
	db.PutFile(pkgPath, models.VHDL, "lib_a", nil, nil)
	db.PutFile(topPath, models.VHDL, "lib_a", nil, nil)
	db.Refresh()

	plan := Build(db, topPath)
	require.Len(t, plan.Order, 2)

	pkgIdx := indexOf(t, plan.Order, pkgPath)
	topIdx := indexOf(t, plan.Order, topPath)
	require.NotEqual(t, -1, pkgIdx)
	require.NotEqual(t, -1, topIdx)
	assert.Less(t, pkgIdx, topIdx)
}

func TestBuild_CycleToleranceBetweenPackageAndBody(t *testing.T) {
	dir := t.TempDir()
	// A package referencing a name from its own body, and the body
	// referencing the package, forms a cycle between two files that the
	// planner must tolerate rather than fail on.
	pkgPath := writeTempFile(t, dir, "pkg.vhd", `
library lib_a;
use lib_a.body_helper.all;
package p is
end package p;
`)
	bodyPath := writeTempFile(t, dir, "pkg_body.vhd", `
library lib_a;
use lib_a.p.all;
package body p is
end package body p;
package body_helper is
end package body_helper;
`)

	db := sourcedb.New()
	db.PutFile(pkgPath, models.VHDL, "lib_a", nil, nil)
	db.PutFile(bodyPath, models.VHDL, "lib_a", nil, nil)
	db.Refresh()

	plan := Build(db, bodyPath)
	require.Len(t, plan.Order, 2)
	assert.NotPanics(t, func() { Build(db, bodyPath) })
}

func TestBuild_UnresolvedDependencyReported(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "top.vhd", `
library missing_lib;
use missing_lib.nope.all;
entity top is
end entity top;
`)

	db := sourcedb.New()
	db.PutFile(path, models.VHDL, "lib_a", nil, nil)
	db.Refresh()

	plan := Build(db, path)
	require.Len(t, plan.Unresolved, 1)
	assert.Equal(t, "missing_lib", plan.Unresolved[0].Dep.Library.String())
}

func TestBuild_AmbiguousDependencyReported(t *testing.T) {
	dir := t.TempDir()
	pkgA := writeTempFile(t, dir, "pkg_a.vhd", "package dup is\nend package dup;\n")
	pkgB := writeTempFile(t, dir, "pkg_b.vhd", "package dup is\nend package dup;\n")
	topPath := writeTempFile(t, dir, "top.vhd", `
library lib_a;
use lib_a.dup.all;
entity top is
end entity top;
`)

	db := sourcedb.New()
	db.PutFile(pkgA, models.VHDL, "lib_a", nil, nil)
	db.PutFile(pkgB, models.VHDL, "lib_a", nil, nil)
	db.PutFile(topPath, models.VHDL, "lib_a", nil, nil)
	db.Refresh()

	plan := Build(db, topPath)
	require.Len(t, plan.Ambiguous, 1)
	assert.Len(t, plan.Ambiguous[0].Candidates, 2)
	// A deterministic choice is still made, so the order remains stable
	// and complete despite the ambiguity.
	assert.Len(t, plan.Order, 2)
}

func TestBuild_EveryDependencyResolvesEarlierInOrder(t *testing.T) {
	dir := t.TempDir()
	pkgPath := writeTempFile(t, dir, "pkg.vhd", "package p is\nend package p;\n")
	midPath := writeTempFile(t, dir, "mid.vhd", `
library lib_a;
use lib_a.p.all;
entity mid is
end entity mid;
architecture rtl of mid is
begin
end architecture rtl;
`)
	topPath := writeTempFile(t, dir, "top.vhd", `
library lib_a;
entity top is
end entity top;
architecture rtl of top is
begin
  u1: entity lib_a.mid;
end architecture rtl;
`)

	db := sourcedb.New()
	db.PutFile(pkgPath, models.VHDL, "lib_a", nil, nil)
	db.PutFile(midPath, models.VHDL, "lib_a", nil, nil)
	db.PutFile(topPath, models.VHDL, "lib_a", nil, nil)
	db.Refresh()

	plan := Build(db, topPath)
	require.Empty(t, plan.BrokenCycles)

	sf, _ := db.Get(topPath)
	for _, dep := range sf.Dependencies {
		candidates := db.PathsByDesignUnit(dep.Library.String(), dep.Name.String(), topPath)
		for _, c := range candidates {
			ci := indexOf(t, plan.Order, c)
			ti := indexOf(t, plan.Order, topPath)
			if ci == -1 || ti == -1 {
				continue
			}
			assert.Less(t, ci, ti, "dependency %s must precede %s", c.String(), topPath.String())
		}
	}
}

func TestBuild_TargetIncludedWithNoDependencies(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "lonely.vhd", "entity lonely is\nend entity lonely;\n")

	db := sourcedb.New()
	db.PutFile(path, models.VHDL, "lib_a", nil, nil)
	db.Refresh()

	plan := Build(db, path)
	require.Len(t, plan.Order, 1)
	assert.True(t, plan.Order[0].Equal(path))
}
