package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flanksource/hdl-checker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesFileAndMigratesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "cache.db")

	c, err := Open(dbPath)
	require.NoError(t, err)
	defer c.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestSaveLoad_RoundTripsFreshFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "foo.vhd")
	require.NoError(t, os.WriteFile(srcPath, []byte("entity foo is end entity;"), 0o644))

	c, err := Open(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	sf := models.SourceFile{
		Path:    models.StatPath(srcPath),
		Kind:    models.VHDL,
		Library: models.NewVHDLIdentifier("work"),
		DesignUnits: []models.DesignUnit{
			{Name: models.NewVHDLIdentifier("foo"), Kind: models.Entity, Locations: []models.Location{{Line: 1, Column: 1}}},
		},
		MtimeAtParse: models.StatPath(srcPath),
	}

	require.NoError(t, c.Save([]models.SourceFile{sf}))

	files, units, _, err := c.Load()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, srcPath, files[0].Path)
	require.Len(t, units[srcPath], 1)
	assert.Equal(t, "foo", units[srcPath][0].Name)
}

func TestLoad_DiscardsStaleEntries(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "foo.vhd")
	require.NoError(t, os.WriteFile(srcPath, []byte("entity foo is end entity;"), 0o644))

	c, err := Open(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	sf := models.SourceFile{
		Path:         models.StatPath(srcPath),
		Kind:         models.VHDL,
		MtimeAtParse: models.StatPath(srcPath),
	}
	require.NoError(t, c.Save([]models.SourceFile{sf}))

	// Touch the file with new content so its mtime/size no longer matches.
	require.NoError(t, os.WriteFile(srcPath, []byte("entity foo is\nend entity;\n"), 0o644))

	files, _, _, err := c.Load()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestOpen_WipesOnSchemaVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cache.db")

	c, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, c.db.Create(&FileRow{Path: "/tmp/stale.vhd", Kind: "vhdl"}).Error)
	require.NoError(t, c.db.Model(&SchemaVersion{}).Where("1 = 1").Update("version", schemaVersion+1).Error)
	require.NoError(t, c.Close())

	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	var count int64
	require.NoError(t, reopened.db.Model(&FileRow{}).Count(&count).Error)
	assert.Zero(t, count)

	var sv SchemaVersion
	require.NoError(t, reopened.db.First(&sv).Error)
	assert.Equal(t, schemaVersion, sv.Version)
}
