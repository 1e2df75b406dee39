package config

import "github.com/flanksource/hdl-checker/models"

// DefaultFlags returns the compiler flags a language block should use
// when no configuration overrides them, per spec §6 and the original
// hdl_checker builders' default_flags tables.
func DefaultFlags(builder models.BuilderName) map[models.SourceKind]models.LanguageFlags {
	switch builder {
	case models.BuilderMsim:
		return map[models.SourceKind]models.LanguageFlags{
			models.VHDL: {
				Single:       []string{"-check_synthesis", "-lint", "-rangecheck", "-pedanticerrors"},
				Dependencies: []string{"-defercheck", "-nocheck", "-permissive"},
				Global:       []string{"-explicit"},
			},
			models.Verilog: {
				Single:       []string{"-lint", "-hazards", "-pedanticerrors"},
				Dependencies: []string{"-permissive"},
			},
			models.SystemVerilog: {
				Single:       []string{"-lint", "-hazards", "-pedanticerrors"},
				Dependencies: []string{"-permissive"},
			},
		}
	case models.BuilderGhdl:
		return map[models.SourceKind]models.LanguageFlags{
			models.VHDL: {
				Single: []string{"--warn-runtime-error", "--warn-reserved", "--warn-unused"},
				Global: []string{"-fexplicit", "-frelaxed-rules"},
			},
			// GHDL has no Verilog/SystemVerilog support; those dialects
			// get no default flags under this builder.
		}
	case models.BuilderXvhdl:
		return map[models.SourceKind]models.LanguageFlags{}
	default:
		return map[models.SourceKind]models.LanguageFlags{}
	}
}

// ApplyDefaults fills any language block cfg leaves unset (no single,
// dependencies, or global flags configured) with builder's defaults
// for that dialect.
func ApplyDefaults(cfg *models.ProjectConfig) {
	defaults := DefaultFlags(cfg.Builder)
	fill := func(block *models.LanguageBlock, kind models.SourceKind) {
		if len(block.Flags.Single) > 0 || len(block.Flags.Dependencies) > 0 || len(block.Flags.Global) > 0 {
			return
		}
		block.Flags = defaults[kind]
	}
	fill(&cfg.VHDL, models.VHDL)
	fill(&cfg.Verilog, models.Verilog)
	fill(&cfg.SystemVerilog, models.SystemVerilog)
}
