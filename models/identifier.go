package models

import "strings"

// SourceKind is the HDL dialect a source file is written in.
type SourceKind string

const (
	VHDL          SourceKind = "vhdl"
	Verilog       SourceKind = "verilog"
	SystemVerilog SourceKind = "systemverilog"
)

// UnresolvedLibrary is the sentinel library assigned to a file whose
// library could not be inferred (spec rule 3).
const UnresolvedLibrary = "!!hdl_checker_unresolved_library!!"

// WorkLibrary is the sentinel meaning "same library as the declaring file".
const WorkLibrary = "work"

// Identifier is a quoted HDL name. VHDL identifiers fold to lower-case
// for equality/hashing; Verilog/SystemVerilog identifiers keep case.
// Rendering always preserves the original spelling.
type Identifier struct {
	name          string
	caseSensitive bool
}

// NewIdentifier builds an Identifier for the given kind's case rules.
func NewIdentifier(name string, kind SourceKind) Identifier {
	return Identifier{name: name, caseSensitive: kind != VHDL}
}

// NewVHDLIdentifier is a convenience constructor for VHDL's case-insensitive names.
func NewVHDLIdentifier(name string) Identifier {
	return Identifier{name: name, caseSensitive: false}
}

// NewVerilogIdentifier is a convenience constructor for Verilog/SV's case-sensitive names.
func NewVerilogIdentifier(name string) Identifier {
	return Identifier{name: name, caseSensitive: true}
}

// String renders the identifier preserving its original spelling.
func (id Identifier) String() string {
	return id.name
}

// IsZero reports whether this is the empty identifier.
func (id Identifier) IsZero() bool {
	return id.name == ""
}

// key returns the canonical comparison key: folded for case-insensitive
// identifiers, verbatim otherwise.
func (id Identifier) key() string {
	if id.caseSensitive {
		return id.name
	}
	return strings.ToLower(id.name)
}

// Equal compares two identifiers. If either side is case-insensitive
// (VHDL), the comparison folds case; otherwise it is exact.
func (id Identifier) Equal(other Identifier) bool {
	if !id.caseSensitive || !other.caseSensitive {
		return strings.EqualFold(id.name, other.name)
	}
	return id.name == other.name
}

// Key returns a string suitable for use as a map key, honoring case rules.
func (id Identifier) Key() string {
	return id.key()
}
