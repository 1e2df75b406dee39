package hdlparser

import (
	"regexp"
	"strings"

	"github.com/flanksource/hdl-checker/models"
)

var (
	verilogModulePattern    = regexp.MustCompile(`^\s*module\s+(\w+)`)
	verilogPackagePattern   = regexp.MustCompile(`^\s*package\s+(\w+)`)
	verilogInterfacePattern = regexp.MustCompile(`^\s*interface\s+(\w+)`)
	verilogProgramPattern   = regexp.MustCompile(`^\s*program\s+(\w+)`)

	verilogImportPattern  = regexp.MustCompile(`^\s*import\s+(\w+)::`)
	verilogIncludePattern = regexp.MustCompile(`^\s*` + "`" + `include\s+"([^"]+)"`)
	// TYPE inst_name (...) or TYPE #(params) inst_name (...). Nested
	// parens inside the #(...) parameter list are not balanced; such
	// instantiations are silently skipped rather than misparsed.
	verilogInstPattern = regexp.MustCompile(`^\s*(\w+)\b\s*(?:#\s*\([^)]*\)\s*)?(\w+)\s*\(`)

	verilogKeywords = map[string]bool{
		"module": true, "endmodule": true, "package": true, "endpackage": true,
		"interface": true, "endinterface": true, "program": true, "endprogram": true,
		"input": true, "output": true, "inout": true, "wire": true, "reg": true,
		"logic": true, "assign": true, "always": true, "always_comb": true,
		"always_ff": true, "initial": true, "begin": true, "end": true,
		"if": true, "else": true, "case": true, "endcase": true, "for": true,
		"generate": true, "endgenerate": true, "parameter": true, "localparam": true,
		"function": true, "endfunction": true, "task": true, "endtask": true,
		"import": true, "export": true, "typedef": true, "struct": true, "enum": true,
		"class": true, "endclass": true, "var": true, "bit": true, "int": true,
	}
)

// ParseVerilog extracts design units and dependencies from Verilog or
// SystemVerilog source text. Identifiers preserve case.
func ParseVerilog(text []byte, kind models.SourceKind) ParseResult {
	lines := stripVerilogComments(text)

	var result ParseResult

	for _, ln := range lines {
		trimmed := strings.TrimSpace(ln.text)
		if trimmed == "" {
			continue
		}

		if m := verilogModulePattern.FindStringSubmatch(ln.text); m != nil {
			result.DesignUnits = append(result.DesignUnits, models.DesignUnit{
				Name:      models.NewVerilogIdentifier(m[1]),
				Kind:      models.VerilogModule,
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := verilogPackagePattern.FindStringSubmatch(ln.text); m != nil {
			result.DesignUnits = append(result.DesignUnits, models.DesignUnit{
				Name:      models.NewVerilogIdentifier(m[1]),
				Kind:      models.VerilogPackage,
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := verilogInterfacePattern.FindStringSubmatch(ln.text); m != nil {
			result.DesignUnits = append(result.DesignUnits, models.DesignUnit{
				Name:      models.NewVerilogIdentifier(m[1]),
				Kind:      models.VerilogInterface,
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := verilogProgramPattern.FindStringSubmatch(ln.text); m != nil {
			result.DesignUnits = append(result.DesignUnits, models.DesignUnit{
				Name:      models.NewVerilogIdentifier(m[1]),
				Kind:      models.VerilogProgram,
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := verilogIncludePattern.FindStringSubmatch(ln.text); m != nil {
			result.Includes = append(result.Includes, models.IncludeRef{
				Target:    m[1],
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := verilogImportPattern.FindStringSubmatch(ln.text); m != nil {
			result.Dependencies = append(result.Dependencies, models.Dependency{
				Library:   models.NewVerilogIdentifier(models.WorkLibrary),
				Name:      models.NewVerilogIdentifier(m[1]),
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		// Module instantiation: TYPE [#(...)] inst_name (
		if m := verilogInstPattern.FindStringSubmatch(ln.text); m != nil {
			typeName := m[1]
			if verilogKeywords[typeName] {
				continue
			}
			result.Dependencies = append(result.Dependencies, models.Dependency{
				Library:   models.NewVerilogIdentifier(models.WorkLibrary),
				Name:      models.NewVerilogIdentifier(typeName),
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, typeName)}},
			})
		}
	}

	return result
}
