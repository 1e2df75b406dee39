package models

import "strings"

// KindFromExt classifies a file by extension into an HDL source kind.
// Unrecognized extensions return ok=false; callers skip such files
// rather than guessing.
func KindFromExt(path string) (kind SourceKind, ok bool) {
	ext := path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		ext = strings.ToLower(path[i:])
	} else {
		return "", false
	}

	switch ext {
	case ".vhd", ".vhdl":
		return VHDL, true
	case ".v", ".vh":
		return Verilog, true
	case ".sv", ".svh":
		return SystemVerilog, true
	default:
		return "", false
	}
}
