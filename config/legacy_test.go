package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flanksource/hdl-checker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLegacy(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".hdl_checker.config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLegacy_ParsesBuilderAndSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.vhd"), []byte("entity foo is end entity;"), 0o644))

	path := writeLegacy(t, dir, `
# a comment
builder = ghdl
vhdl work foo.vhd -flag1 -flag2
`)
	cfg, err := LoadLegacy(path)
	require.NoError(t, err)
	assert.Equal(t, models.BuilderGhdl, cfg.Builder)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, filepath.Join(dir, "foo.vhd"), cfg.Sources[0].Path)
	assert.Equal(t, "work", cfg.Sources[0].Library)
	assert.Equal(t, []string{"-flag1", "-flag2"}, cfg.Sources[0].Flags)
}

func TestLoadLegacy_GlobalBuildFlags(t *testing.T) {
	dir := t.TempDir()
	path := writeLegacy(t, dir, `global_build_flags[vhdl] = -explicit -relaxed`)
	cfg, err := LoadLegacy(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"-explicit", "-relaxed"}, cfg.VHDL.Flags.Global)
}

func TestLoadLegacy_WildcardExpansion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.vhd"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.vhd"), []byte(""), 0o644))

	path := writeLegacy(t, dir, `vhdl work *.vhd`)
	cfg, err := LoadLegacy(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Sources, 2)
}

func TestLoadLegacy_TargetDirAcceptedAndIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeLegacy(t, dir, `target_dir = /old/build`)
	cfg, err := LoadLegacy(path)
	require.NoError(t, err)
	assert.Equal(t, "/old/build", cfg.TargetDir)
}

func TestLoadLegacy_UnknownDirectiveLoggedNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeLegacy(t, dir, `nonsense = value`)
	_, err := LoadLegacy(path)
	assert.NoError(t, err)
}
