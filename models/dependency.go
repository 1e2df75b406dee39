package models

// Dependency is an unresolved (library, name) reference that the
// planner must resolve to a path. Library WorkLibrary means "same
// library as the declaring file".
type Dependency struct {
	Library   Identifier `json:"-"`
	Name      Identifier `json:"-"`
	Locations []Location `json:"locations"`
}

// IsWork reports whether this dependency uses the "work" sentinel library.
func (d Dependency) IsWork() bool {
	return d.Library.Key() == WorkLibrary
}
