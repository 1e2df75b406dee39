// Package cache persists the source database to a single SQLite file
// beside the project's working directory, grounded on the teacher's
// internal/cache (gorm_db.go's WAL-pragma GORM setup,
// migration_manager.go's schema-version gate).
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hdl-checker/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// schemaVersion gates the cache format. A version mismatch on load
// means "wipe and reload" (spec §4.7, invariant I5) rather than
// attempting a migration — the cache is a derived artifact, not a
// system of record.
const schemaVersion = 1

// SchemaVersion is the single-row table recording the format version
// the rest of the cache's tables were written under.
type SchemaVersion struct {
	ID      uint `gorm:"primaryKey"`
	Version int
}

// FileRow mirrors one models.SourceFile.
type FileRow struct {
	Path            string `gorm:"primaryKey"`
	Kind            string
	Library         string
	ExplicitLibrary bool
	MtimeUnixNano   int64
	Size            int64
}

// DesignUnitRow mirrors one models.DesignUnit, keyed by its owner path.
type DesignUnitRow struct {
	ID       uint   `gorm:"primaryKey"`
	Owner    string `gorm:"index"`
	Name     string
	Kind     string
	Of       string
	Line     int
	Column   int
}

// DependencyRow mirrors one models.Dependency, keyed by its owner path.
type DependencyRow struct {
	ID      uint   `gorm:"primaryKey"`
	Owner   string `gorm:"index"`
	Library string
	Name    string
	Line    int
	Column  int
}

// Cache is the on-disk mirror of a sourcedb.DB for one project.
type Cache struct {
	db *gorm.DB
}

// Open opens (creating if needed) the cache file at path, configures
// SQLite for concurrent access the way the teacher's gorm_db.go does,
// and auto-migrates the schema.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: create dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("cache: underlying sql.DB: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return nil, fmt.Errorf("cache: %s: %w", pragma, err)
		}
	}

	if err := db.AutoMigrate(&SchemaVersion{}, &FileRow{}, &DesignUnitRow{}, &DependencyRow{}); err != nil {
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}

	c := &Cache{db: db}
	if err := c.gateSchema(); err != nil {
		return nil, err
	}
	return c, nil
}

// gateSchema wipes every row if the stored schema version doesn't
// match, per spec §4.7's "on any exception during load, wipe" rule
// generalized to "on any version mismatch, wipe".
func (c *Cache) gateSchema() error {
	var sv SchemaVersion
	err := c.db.First(&sv).Error
	if err == gorm.ErrRecordNotFound {
		return c.db.Create(&SchemaVersion{Version: schemaVersion}).Error
	}
	if err != nil {
		return fmt.Errorf("cache: read schema version: %w", err)
	}
	if sv.Version == schemaVersion {
		return nil
	}

	logger.Infof("cache: schema version %d != %d, wiping cache", sv.Version, schemaVersion)
	if err := c.wipe(); err != nil {
		return err
	}
	sv.Version = schemaVersion
	return c.db.Save(&sv).Error
}

func (c *Cache) wipe() error {
	for _, model := range []interface{}{&FileRow{}, &DesignUnitRow{}, &DependencyRow{}} {
		if err := c.db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("cache: wipe: %w", err)
		}
	}
	return nil
}

// Save replaces every row with the given snapshot of source files.
// Entries whose on-disk mtime no longer matches are still written —
// the loader, not the saver, is responsible for discarding stale rows.
func (c *Cache) Save(files []models.SourceFile) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&FileRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&DesignUnitRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&DependencyRow{}).Error; err != nil {
			return err
		}

		for _, sf := range files {
			row := FileRow{
				Path:            sf.Path.String(),
				Kind:            string(sf.Kind),
				Library:         sf.Library.String(),
				ExplicitLibrary: sf.ExplicitLibrary,
				MtimeUnixNano:   sf.MtimeAtParse.Mtime().UnixNano(),
				Size:            sf.MtimeAtParse.Size(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}

			for _, du := range sf.DesignUnits {
				line, col := 0, 0
				if len(du.Locations) > 0 {
					line, col = du.Locations[0].Line, du.Locations[0].Column
				}
				if err := tx.Create(&DesignUnitRow{
					Owner: sf.Path.String(), Name: du.Name.String(), Kind: string(du.Kind),
					Of: du.Of.String(), Line: line, Column: col,
				}).Error; err != nil {
					return err
				}
			}

			for _, dep := range sf.Dependencies {
				line, col := 0, 0
				if len(dep.Locations) > 0 {
					line, col = dep.Locations[0].Line, dep.Locations[0].Column
				}
				if err := tx.Create(&DependencyRow{
					Owner: sf.Path.String(), Library: dep.Library.String(), Name: dep.Name.String(),
					Line: line, Column: col,
				}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Load reads every row whose recorded mtime/size still matches the
// file currently on disk; stale or missing files are silently skipped
// (spec §4.7 "entries whose on-disk mtime no longer matches are discarded").
func (c *Cache) Load() ([]FileRow, map[string][]DesignUnitRow, map[string][]DependencyRow, error) {
	var rows []FileRow
	if err := c.db.Find(&rows).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("cache: load files: %w", err)
	}

	var fresh []FileRow
	for _, r := range rows {
		info, err := os.Stat(r.Path)
		if err != nil || info.ModTime().UnixNano() != r.MtimeUnixNano || info.Size() != r.Size {
			continue
		}
		fresh = append(fresh, r)
	}

	units := make(map[string][]DesignUnitRow)
	deps := make(map[string][]DependencyRow)
	if len(fresh) == 0 {
		return fresh, units, deps, nil
	}

	paths := make([]string, len(fresh))
	for i, r := range fresh {
		paths[i] = r.Path
	}

	var unitRows []DesignUnitRow
	if err := c.db.Where("owner IN ?", paths).Find(&unitRows).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("cache: load design units: %w", err)
	}
	for _, u := range unitRows {
		units[u.Owner] = append(units[u.Owner], u)
	}

	var depRows []DependencyRow
	if err := c.db.Where("owner IN ?", paths).Find(&depRows).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("cache: load dependencies: %w", err)
	}
	for _, d := range depRows {
		deps[d.Owner] = append(deps[d.Owner], d)
	}

	return fresh, units, deps, nil
}

// Close flushes and releases the underlying connection.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
