package sourcedb

import "github.com/flanksource/hdl-checker/models"

// inferLibraries assigns libraries to every file lacking an explicit
// one, per spec §3's three-rule order, iterated to a fixed point.
// Callers must hold db.mu for writing.
func (db *DB) inferLibraries() {
	// Clear prior inferred assignments (not explicit ones) so a removed
	// dependency/declaration can revert a file to unresolved — inference
	// must be idempotent (I4), not merely monotonic.
	for _, sf := range db.files {
		if !sf.ExplicitLibrary {
			db.removeFromIndexIfIndexed(sf)
			sf.Library = models.Identifier{}
		}
	}

	for {
		changed := false
		for _, sf := range db.files {
			if sf.ExplicitLibrary || !sf.Library.IsZero() {
				continue
			}

			if lib, ok := db.inferByRule1(sf); ok {
				db.assignInferred(sf, lib)
				changed = true
				continue
			}
			if lib, ok := db.inferByRule2(sf); ok {
				db.assignInferred(sf, lib)
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for _, sf := range db.files {
		if sf.Library.IsZero() {
			db.assignInferred(sf, models.UnresolvedLibrary)
		}
	}
}

// inferByRule1: if another file explicitly in library L contains a
// design unit that this file depends on, assign L.
func (db *DB) inferByRule1(sf *models.SourceFile) (string, bool) {
	for _, dep := range sf.Dependencies {
		if dep.IsWork() {
			continue
		}
		for _, other := range db.files {
			if !other.ExplicitLibrary || other.Library.IsZero() {
				continue
			}
			if foldLibrary(other.Library.String()) != foldLibrary(dep.Library.String()) {
				continue
			}
			for _, du := range other.DesignUnits {
				if du.Name.Key() == dep.Name.Key() {
					return other.Library.String(), true
				}
			}
		}
	}
	return "", false
}

// inferByRule2: if any explicitly-assigned file depends on a unit this
// file declares, assign the library named in that dependency — not the
// dependent file's own library, but the one it referenced the unit by.
// A work-sentinel dependency is a self-reference, so it resolves to the
// depender's own library instead of being skipped
// (original_source/hdl_checker/database.py getLibrariesReferredByUnit).
func (db *DB) inferByRule2(sf *models.SourceFile) (string, bool) {
	for _, du := range sf.DesignUnits {
		for _, other := range db.files {
			if !other.ExplicitLibrary {
				continue
			}
			for _, dep := range other.Dependencies {
				if dep.Name.Key() != du.Name.Key() {
					continue
				}
				if dep.IsWork() {
					return other.Library.String(), true
				}
				return dep.Library.String(), true
			}
		}
	}
	return "", false
}

func (db *DB) assignInferred(sf *models.SourceFile, library string) {
	sf.Library = models.NewIdentifier(library, sf.Kind)
	if library != models.UnresolvedLibrary {
		db.addToIndex(sf)
	}
}

func (db *DB) removeFromIndexIfIndexed(sf *models.SourceFile) {
	if sf.Library.IsZero() || sf.Library.Key() == models.UnresolvedLibrary {
		return
	}
	db.removeFromIndex(sf)
}
