// Package checker implements the static checks that require no
// external compiler: unused-declaration detection and FIXME/TODO/XXX
// tag extraction, grounded on the teacher's per-file AST walk in
// linters/archunit/violation_checker.go, retargeted at raw HDL source
// text since the parser (hdlparser) tracks design units and
// dependencies only, not every local declaration. Both checks are
// language-agnostic across VHDL, Verilog, and SystemVerilog (spec §2,
// "C6"), each dialect supplying its own comment and declaration
// grammar.
package checker

import (
	"regexp"
	"strings"

	"github.com/flanksource/hdl-checker/models"
)

// vhdlDeclPattern matches signal/constant/variable/shared variable/type/
// attribute declarations, capturing the declared identifier. Generic
// declarations are not matched, so unused generics are not reported.
var vhdlDeclPattern = regexp.MustCompile(
	`(?i)^\s*(signal|constant|variable|shared\s+variable|type|attribute)\s+(\w+)\s*[:,]`)

var vhdlLibraryPattern = regexp.MustCompile(`(?i)^\s*library\s+(\w+)\s*;`)

// verilogDeclPattern matches reg/wire/logic/integer/genvar/parameter/
// localparam declarations, with an optional bit-range between the
// keyword and the identifier, capturing the declared identifier.
var verilogDeclPattern = regexp.MustCompile(
	`(?i)^\s*(reg|wire|logic|integer|genvar|parameter|localparam)\s*(?:\[[^\]]*\]\s*)?(\w+)`)

var tagPattern = regexp.MustCompile(`(?i)(FIXME|TODO|XXX)\s*:?\s*(.*)`)

// Check runs every static check against text and returns their
// combined, unsorted diagnostics. Callers sort/dedup per spec §5.
func Check(path string, text []byte, kind models.SourceKind) []models.Diagnostic {
	var diags []models.Diagnostic
	diags = append(diags, checkUnusedDeclarations(path, text, kind)...)
	diags = append(diags, checkTags(path, text, kind)...)
	return diags
}

// declPatternFor returns the declaration regexp for kind's dialect.
func declPatternFor(kind models.SourceKind) *regexp.Regexp {
	if kind == models.VHDL {
		return vhdlDeclPattern
	}
	return verilogDeclPattern
}

// checkUnusedDeclarations reports design-unit-local declarations whose
// identifier never appears again in the file. Known caveat (spec
// §4.5): names shared with component/procedure/function formal
// parameters are not flagged, since this pass has no notion of scope
// beyond "appears somewhere else in the file".
func checkUnusedDeclarations(path string, text []byte, kind models.SourceKind) []models.Diagnostic {
	lines := strings.Split(string(text), "\n")
	type decl struct {
		name string
		line int
	}
	var decls []decl

	declPattern := declPatternFor(kind)
	for i, line := range lines {
		if m := declPattern.FindStringSubmatch(line); m != nil {
			decls = append(decls, decl{name: m[2], line: i + 1})
		}
		if kind == models.VHDL {
			if m := vhdlLibraryPattern.FindStringSubmatch(line); m != nil {
				decls = append(decls, decl{name: m[1], line: i + 1})
			}
		}
	}

	var diags []models.Diagnostic
	for _, d := range decls {
		if countOccurrences(lines, d.name) > 1 {
			continue
		}
		diags = append(diags, models.Diagnostic{
			Path:     path,
			Line:     d.line,
			Severity: models.Warning,
			Code:     "unused-declaration",
			Message:  "declared but never used: " + d.name,
			Source:   "checker",
		})
	}
	return diags
}

func countOccurrences(lines []string, name string) int {
	pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	count := 0
	for _, line := range lines {
		count += len(pattern.FindAllString(line, -1))
	}
	return count
}

// checkTags yields an informational diagnostic for every FIXME/TODO/XXX
// comment trailer found in the file.
func checkTags(path string, text []byte, kind models.SourceKind) []models.Diagnostic {
	var diags []models.Diagnostic
	for _, c := range extractComments(text, kind) {
		m := tagPattern.FindStringSubmatch(c.text)
		if m == nil {
			continue
		}
		diags = append(diags, models.Diagnostic{
			Path:     path,
			Line:     c.line,
			Severity: models.Note,
			Code:     strings.ToUpper(m[1]),
			Message:  strings.TrimSpace(m[2]),
			Source:   "checker",
		})
	}
	return diags
}

// commentText is one comment body (with its line-comment marker or
// block-comment delimiters stripped) and the 1-based source line it
// starts on.
type commentText struct {
	text string
	line int
}

// extractComments walks text dialect-aware: VHDL uses "--" line
// comments, Verilog/SystemVerilog use "//"; both support "/* */" block
// comments, which may span multiple lines.
func extractComments(text []byte, kind models.SourceKind) []commentText {
	lineMarker := "--"
	if kind != models.VHDL {
		lineMarker = "//"
	}

	lines := strings.Split(string(text), "\n")
	var out []commentText
	inBlock := false

	for i, line := range lines {
		lineNum := i + 1
		rest := line

		if inBlock {
			idx := strings.Index(rest, "*/")
			if idx == -1 {
				out = append(out, commentText{text: rest, line: lineNum})
				continue
			}
			out = append(out, commentText{text: rest[:idx], line: lineNum})
			rest = rest[idx+2:]
			inBlock = false
		}

		for rest != "" {
			lineIdx := strings.Index(rest, lineMarker)
			blockIdx := strings.Index(rest, "/*")

			if lineIdx == -1 && blockIdx == -1 {
				break
			}
			if blockIdx == -1 || (lineIdx != -1 && lineIdx < blockIdx) {
				out = append(out, commentText{text: rest[lineIdx+len(lineMarker):], line: lineNum})
				break
			}

			if idx := strings.Index(rest[blockIdx+2:], "*/"); idx != -1 {
				out = append(out, commentText{text: rest[blockIdx+2 : blockIdx+2+idx], line: lineNum})
				rest = rest[blockIdx+2+idx+2:]
				continue
			}
			out = append(out, commentText{text: rest[blockIdx+2:], line: lineNum})
			inBlock = true
			break
		}
	}
	return out
}
