package hdlparser

import (
	"regexp"
	"strings"

	"github.com/flanksource/hdl-checker/models"
)

var (
	vhdlEntityPattern  = regexp.MustCompile(`(?i)^\s*entity\s+(\w+)\s+is`)
	vhdlArchPattern    = regexp.MustCompile(`(?i)^\s*architecture\s+(\w+)\s+of\s+(\w+)\s+is`)
	vhdlPkgBodyPattern = regexp.MustCompile(`(?i)^\s*package\s+body\s+(\w+)\s+is`)
	vhdlPkgPattern     = regexp.MustCompile(`(?i)^\s*package\s+(\w+)\s+is`)
	vhdlContextPattern = regexp.MustCompile(`(?i)^\s*context\s+(\w+)\s+is`)
	vhdlConfigPattern  = regexp.MustCompile(`(?i)^\s*configuration\s+(\w+)\s+of\s+(\w+)`)

	vhdlLibraryPattern = regexp.MustCompile(`(?i)^\s*library\s+(\w+)\s*;`)
	vhdlUsePattern     = regexp.MustCompile(`(?i)^\s*use\s+(\w+)\.(\w+)\.(?:all|\w+)`)
	vhdlEntityWorkInst = regexp.MustCompile(`(?i)entity\s+work\.(\w+)`)
	vhdlLibRefPattern  = regexp.MustCompile(`(?i)\b(\w+)\.(\w+)\b`)
)

// ParseVHDL extracts design units and dependencies from VHDL source text.
func ParseVHDL(text []byte) ParseResult {
	lines := stripVHDLComments(text)

	var result ParseResult
	var knownLibs = map[string]bool{"work": true, "std": true, "ieee": true}

	for _, ln := range lines {
		trimmed := strings.TrimSpace(ln.text)
		if trimmed == "" {
			continue
		}

		if m := vhdlLibraryPattern.FindStringSubmatch(ln.text); m != nil {
			knownLibs[strings.ToLower(m[1])] = true
			continue
		}

		if m := vhdlEntityPattern.FindStringSubmatch(ln.text); m != nil {
			result.DesignUnits = append(result.DesignUnits, models.DesignUnit{
				Name:      models.NewVHDLIdentifier(m[1]),
				Kind:      models.Entity,
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := vhdlArchPattern.FindStringSubmatch(ln.text); m != nil {
			result.DesignUnits = append(result.DesignUnits, models.DesignUnit{
				Name:      models.NewVHDLIdentifier(m[1]),
				Kind:      models.Architecture,
				Of:        models.NewVHDLIdentifier(m[2]),
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := vhdlPkgBodyPattern.FindStringSubmatch(ln.text); m != nil {
			result.DesignUnits = append(result.DesignUnits, models.DesignUnit{
				Name:      models.NewVHDLIdentifier(m[1]),
				Kind:      models.PackageBody,
				Of:        models.NewVHDLIdentifier(m[1]),
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := vhdlPkgPattern.FindStringSubmatch(ln.text); m != nil {
			result.DesignUnits = append(result.DesignUnits, models.DesignUnit{
				Name:      models.NewVHDLIdentifier(m[1]),
				Kind:      models.Package,
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := vhdlContextPattern.FindStringSubmatch(ln.text); m != nil {
			result.DesignUnits = append(result.DesignUnits, models.DesignUnit{
				Name:      models.NewVHDLIdentifier(m[1]),
				Kind:      models.Context,
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := vhdlConfigPattern.FindStringSubmatch(ln.text); m != nil {
			result.DesignUnits = append(result.DesignUnits, models.DesignUnit{
				Name:      models.NewVHDLIdentifier(m[1]),
				Kind:      models.Configuration,
				Of:        models.NewVHDLIdentifier(m[2]),
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := vhdlUsePattern.FindStringSubmatch(ln.text); m != nil {
			lib := strings.ToLower(m[1])
			result.Dependencies = append(result.Dependencies, models.Dependency{
				Library:   models.NewVHDLIdentifier(lib),
				Name:      models.NewVHDLIdentifier(m[2]),
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		if m := vhdlEntityWorkInst.FindStringSubmatch(ln.text); m != nil {
			result.Dependencies = append(result.Dependencies, models.Dependency{
				Library:   models.NewVHDLIdentifier(models.WorkLibrary),
				Name:      models.NewVHDLIdentifier(m[1]),
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[1])}},
			})
			continue
		}

		// Bare LIB.ENTITY_NAME references within architecture bodies.
		for _, m := range vhdlLibRefPattern.FindAllStringSubmatch(ln.text, -1) {
			lib := strings.ToLower(m[1])
			if !knownLibs[lib] {
				continue
			}
			if lib == "std" || lib == "ieee" {
				// std/ieee references are almost always attribute or
				// type uses (std_logic, ieee.std_logic_1164), not
				// component instantiations; skip to avoid noise.
				continue
			}
			result.Dependencies = append(result.Dependencies, models.Dependency{
				Library:   models.NewVHDLIdentifier(lib),
				Name:      models.NewVHDLIdentifier(m[2]),
				Locations: []models.Location{{Line: ln.line, Column: colOf(ln.text, m[2])}},
			})
		}
	}

	return result
}

// colOf returns the 1-based column where needle first appears in line,
// or 1 if not found (never 0, so locations are always renderable).
func colOf(line, needle string) int {
	idx := strings.Index(line, needle)
	if idx < 0 {
		return 1
	}
	return idx + 1
}
