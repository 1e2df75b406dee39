package models

// IncludeRef is a Verilog `include directive target, recorded by path
// string as written in the source (not yet resolved against an include path).
type IncludeRef struct {
	Target    string
	Locations []Location
}

// SourceFile is the in-memory record for one known path: its declared
// flags and library assignment plus the parsed artifacts from its last
// successful parse.
type SourceFile struct {
	Path Path
	Kind SourceKind

	// Library is unset (IsZero) until either explicitly configured or
	// inferred by the database. ExplicitLibrary records whether Library
	// came from configuration (true) or inference (false), since
	// inference must never overwrite an explicit assignment.
	Library         Identifier
	ExplicitLibrary bool

	FlagsSingle       []string
	FlagsDependencies []string

	DesignUnits  []DesignUnit
	Dependencies []Dependency
	Includes     []IncludeRef

	// MtimeAtParse is the invalidation key: if Path.Stale() relative to
	// this captures a different mtime, the parsed fields above must be
	// refreshed before any query relies on them (invariant I3).
	MtimeAtParse Path
}
