package models

// UnitKind enumerates the design-unit kinds a parser can recognize
// across VHDL and Verilog/SystemVerilog.
type UnitKind string

const (
	Entity          UnitKind = "entity"
	Architecture    UnitKind = "architecture"
	Package         UnitKind = "package"
	PackageBody     UnitKind = "package_body"
	Context         UnitKind = "context"
	Configuration   UnitKind = "configuration"
	VerilogModule   UnitKind = "module"
	VerilogPackage  UnitKind = "verilog_package"
	VerilogInterface UnitKind = "interface"
	VerilogProgram  UnitKind = "program"
)

// Location is a 1-based line/column position within a source file.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// DesignUnit is a top-level HDL declaration a compiler treats as a
// compilation root.
type DesignUnit struct {
	Name      Identifier `json:"-"`
	Kind      UnitKind   `json:"kind"`
	Owner     Path       `json:"-"`
	Locations []Location `json:"locations"`

	// Of is the entity an architecture belongs to, the package a
	// package body belongs to, or the entity a configuration
	// configures. Zero for entity/package/context/module-like units.
	Of Identifier `json:"-"`
}

// DesignUnitKey identifies a design unit within a single library,
// independent of which file owns it — used for map lookups in the
// database's identifier index.
type DesignUnitKey struct {
	Library string
	Name    string // folded per the owning identifier's case rule
}
