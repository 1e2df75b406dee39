package models

// BuilderName selects which external compiler the engine prefers, in
// the explicit preference order msim > ghdl > xvhdl > fallback (spec §4.6).
type BuilderName string

const (
	BuilderMsim     BuilderName = "msim"
	BuilderGhdl     BuilderName = "ghdl"
	BuilderXvhdl    BuilderName = "xvhdl"
	BuilderFallback BuilderName = "fallback"
)

// LanguageFlags is the per-scope flag lists a config can set for one
// HDL dialect, overriding compiler defaults for that language (spec §6).
type LanguageFlags struct {
	Single       []string `json:"single,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Global       []string `json:"global,omitempty"`
}

// LanguageBlock is the "vhdl"/"verilog"/"systemverilog" top-level key.
type LanguageBlock struct {
	Flags LanguageFlags `json:"flags"`
}

// SourceEntry is one element of the "sources" list: either a bare path
// or a [path, {library, flags}] pair.
type SourceEntry struct {
	Path    string
	Library string
	Flags   []string
}

// ProjectConfig is the parsed result of either the JSON or legacy
// configuration format (spec §6) — the shared shape both loaders
// produce so the rest of the engine never cares which format was used.
type ProjectConfig struct {
	Sources []SourceEntry

	Builder BuilderName

	VHDL          LanguageBlock
	Verilog       LanguageBlock
	SystemVerilog LanguageBlock

	// TargetDir is the deprecated legacy key; accepted and ignored
	// (spec §9 open question, resolved in DESIGN.md).
	TargetDir string

	// WorkingDir is where the engine derives its builder working
	// directory root from (spec §4.4 "per-project... derived from the
	// project file path plus a schema tag").
	WorkingDir string
}
