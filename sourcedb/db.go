// Package sourcedb is the in-memory index mapping paths to parsed
// source, identifiers to paths, and libraries to paths. It re-parses
// stale files lazily and infers libraries for unassigned paths.
package sourcedb

import (
	"os"
	"sync"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hdl-checker/hdlparser"
	"github.com/flanksource/hdl-checker/models"
)

// DB is the project's source database. All public methods are atomic;
// concurrent queries return a consistent snapshot under a
// single-writer/multiple-reader discipline (spec §4.2, §5).
type DB struct {
	mu sync.RWMutex

	files map[string]*models.SourceFile // keyed by Path.String()

	// unitIndex maps (library, folded-name) -> set of path strings that
	// declare that design unit. Keys are pre-folded per the owning
	// identifier's case rule at insertion time.
	unitIndex map[models.DesignUnitKey]map[string]bool
}

// New returns an empty database.
func New() *DB {
	return &DB{
		files:     make(map[string]*models.SourceFile),
		unitIndex: make(map[models.DesignUnitKey]map[string]bool),
	}
}

// PutFile idempotently inserts or updates a path's configuration
// (kind, explicit library, flags). Parsed artifacts are populated by
// the next Refresh call; library inference reruns to fixed point.
func (db *DB) PutFile(path models.Path, kind models.SourceKind, library string, flagsSingle, flagsDeps []string) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := path.String()
	sf, exists := db.files[key]
	if !exists {
		sf = &models.SourceFile{Path: path, Kind: kind}
		db.files[key] = sf
	} else {
		sf.Path = path
		sf.Kind = kind
	}
	sf.FlagsSingle = flagsSingle
	sf.FlagsDependencies = flagsDeps

	if library != "" {
		sf.Library = models.NewIdentifier(library, kind)
		sf.ExplicitLibrary = true
	} else if !exists {
		sf.Library = models.Identifier{}
		sf.ExplicitLibrary = false
	}

	db.inferLibraries()
}

// ForgetFile removes a path and drops its derived state (design units,
// dependencies, index entries).
func (db *DB) ForgetFile(path models.Path) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := path.String()
	sf, ok := db.files[key]
	if !ok {
		return
	}
	db.removeFromIndex(sf)
	delete(db.files, key)
	db.inferLibraries()
}

// Get returns a copy of the current file record, or false if unknown.
func (db *DB) Get(path models.Path) (models.SourceFile, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	sf, ok := db.files[path.String()]
	if !ok {
		return models.SourceFile{}, false
	}
	return *sf, true
}

// All returns a snapshot copy of every known file.
func (db *DB) All() []models.SourceFile {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]models.SourceFile, 0, len(db.files))
	for _, sf := range db.files {
		out = append(out, *sf)
	}
	return out
}

// LibraryOf resolves the library of a path, running inference first if
// the file's library is still unassigned. Returns the unresolved
// sentinel if the path is unknown.
func (db *DB) LibraryOf(path models.Path) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	sf, ok := db.files[path.String()]
	if !ok {
		return models.UnresolvedLibrary
	}
	if sf.Library.IsZero() {
		db.inferLibraries()
	}
	if sf.Library.IsZero() {
		return models.UnresolvedLibrary
	}
	return sf.Library.String()
}

// PathsByDesignUnit returns every path that declares name in library.
// Library "work" is resolved relative to requester's own library.
func (db *DB) PathsByDesignUnit(library, name string, requester models.Path) []models.Path {
	db.mu.RLock()
	defer db.mu.RUnlock()

	lib := library
	if lib == models.WorkLibrary {
		if sf, ok := db.files[requester.String()]; ok && !sf.Library.IsZero() {
			lib = sf.Library.String()
		}
	}

	key := models.DesignUnitKey{Library: foldLibrary(lib), Name: name}
	matches := db.unitIndex[key]
	if matches == nil {
		return nil
	}
	out := make([]models.Path, 0, len(matches))
	for p := range matches {
		out = append(out, db.files[p].Path)
	}
	return out
}

// UnresolvedFiles returns every known file currently assigned the
// unresolved-library sentinel (spec §3 rule 3).
func (db *DB) UnresolvedFiles() []models.Path {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var out []models.Path
	for _, sf := range db.files {
		if !sf.Library.IsZero() && sf.Library.Key() == models.UnresolvedLibrary {
			out = append(out, sf.Path)
		}
	}
	return out
}

// Refresh re-parses any file whose on-disk mtime no longer matches
// MtimeAtParse (invariant I3), returning the set of paths that changed.
// Library inference reruns to fixed point afterward.
func (db *DB) Refresh() []models.Path {
	db.mu.Lock()
	defer db.mu.Unlock()

	var changed []models.Path
	for key, sf := range db.files {
		neverParsed := sf.MtimeAtParse.String() == ""
		if !neverParsed && !sf.MtimeAtParse.Stale() {
			continue
		}

		fresh := models.StatPath(key)
		if !fresh.Exists() {
			continue // missing-from-disk handling is the engine's concern
		}

		result := hdlparser.Parse(readFileOrEmpty(key), sf.Kind)
		db.removeFromIndex(sf)

		sf.DesignUnits = result.DesignUnits
		sf.Dependencies = result.Dependencies
		sf.Includes = result.Includes
		sf.MtimeAtParse = fresh
		sf.Path = fresh

		for i := range sf.DesignUnits {
			sf.DesignUnits[i].Owner = fresh
		}

		db.addToIndex(sf)
		changed = append(changed, fresh)
	}

	db.inferLibraries()
	return changed
}

func (db *DB) addToIndex(sf *models.SourceFile) {
	if sf.Library.IsZero() {
		return
	}
	libKey := foldLibrary(sf.Library.String())
	for _, du := range sf.DesignUnits {
		key := models.DesignUnitKey{Library: libKey, Name: du.Name.Key()}
		if db.unitIndex[key] == nil {
			db.unitIndex[key] = make(map[string]bool)
		}
		db.unitIndex[key][sf.Path.String()] = true
	}
}

func (db *DB) removeFromIndex(sf *models.SourceFile) {
	if sf.Library.IsZero() {
		return
	}
	libKey := foldLibrary(sf.Library.String())
	for _, du := range sf.DesignUnits {
		key := models.DesignUnitKey{Library: libKey, Name: du.Name.Key()}
		if set, ok := db.unitIndex[key]; ok {
			delete(set, sf.Path.String())
			if len(set) == 0 {
				delete(db.unitIndex, key)
			}
		}
	}
}

func foldLibrary(lib string) string {
	// Library names are always VHDL-style case-insensitive tokens,
	// regardless of the dialect of the file that declares them.
	return models.NewVHDLIdentifier(lib).Key()
}

func readFileOrEmpty(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debugf("sourcedb: failed to read %s: %v", path, err)
		return nil
	}
	return data
}
