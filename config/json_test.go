package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flanksource/hdl-checker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON_BareAndTupleSources(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "project.json", `{
		"sources": [ "foo.vhd", [ "bar.vhd", { "library": "lib_a", "flags": ["-x"] } ] ],
		"builder": "ghdl"
	}`)

	cfg, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, filepath.Join(dir, "foo.vhd"), cfg.Sources[0].Path)
	assert.Equal(t, filepath.Join(dir, "bar.vhd"), cfg.Sources[1].Path)
	assert.Equal(t, "lib_a", cfg.Sources[1].Library)
	assert.Equal(t, []string{"-x"}, cfg.Sources[1].Flags)
	assert.Equal(t, models.BuilderGhdl, cfg.Builder)
}

func TestLoadJSON_IncludeExpansion(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "base.json", `{ "sources": [ "a.vhd" ] }`)
	path := writeJSON(t, dir, "project.json", `{
		"include": [ "base.json" ],
		"sources": [ "b.vhd" ]
	}`)

	cfg, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, filepath.Join(dir, "a.vhd"), cfg.Sources[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.vhd"), cfg.Sources[1].Path)
}

func TestLoadJSON_IncludeCycleTolerated(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "a.json", `{ "include": [ "b.json" ], "sources": [ "a.vhd" ] }`)
	writeJSON(t, dir, "b.json", `{ "include": [ "a.json" ], "sources": [ "b.vhd" ] }`)

	cfg, err := LoadJSON(filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.Len(t, cfg.Sources, 2)
}

func TestLoadJSON_LanguageBlockOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "project.json", `{
		"vhdl": { "flags": { "single": ["-custom"] } }
	}`)

	cfg, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"-custom"}, cfg.VHDL.Flags.Single)
}

func TestLoadJSON_TargetDirAcceptedAndIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "project.json", `{ "target_dir": "/old/path" }`)

	cfg, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, "/old/path", cfg.TargetDir)
}
