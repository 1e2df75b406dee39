// Package hdlparser extracts design units and dependencies from HDL
// source text. Parsers are stream-of-tokens scanners, not compilers:
// they locate names and positions only, never fail on malformed input,
// and are pure functions of (text, kind) — no shared or module-level
// state, so callers may invoke them concurrently and freely re-invoke
// on re-parse.
package hdlparser

import (
	"strings"

	"github.com/flanksource/hdl-checker/models"
)

// ParseResult is what every dialect parser returns.
type ParseResult struct {
	DesignUnits  []models.DesignUnit
	Dependencies []models.Dependency
	Includes     []models.IncludeRef
}

// Parse dispatches to the parser for kind. Unknown kinds return an
// empty result rather than an error, consistent with "parsing never fails".
func Parse(text []byte, kind models.SourceKind) ParseResult {
	switch kind {
	case models.VHDL:
		return ParseVHDL(text)
	case models.Verilog, models.SystemVerilog:
		return ParseVerilog(text, kind)
	default:
		return ParseResult{}
	}
}

// sourceLine is one physical line of already comment-stripped text,
// along with its 1-based line number for position reporting.
type sourceLine struct {
	text string
	line int
}

// stripVHDLComments removes "-- ..." trailing comments from each line,
// returning the code portion with line numbers preserved. VHDL-2008's
// /* */ block comments are also stripped.
func stripVHDLComments(text []byte) []sourceLine {
	raw := stripBlockComments(string(text), "/*", "*/")
	lines := strings.Split(raw, "\n")
	out := make([]sourceLine, 0, len(lines))
	for i, l := range lines {
		if idx := strings.Index(l, "--"); idx >= 0 {
			l = l[:idx]
		}
		out = append(out, sourceLine{text: l, line: i + 1})
	}
	return out
}

// stripVerilogComments removes "// ..." and "/* ... */" comments,
// preserving line numbers. Block comments spanning multiple lines
// collapse their interior to blank lines so line numbers stay aligned.
func stripVerilogComments(text []byte) []sourceLine {
	raw := stripBlockComments(string(text), "/*", "*/")
	lines := strings.Split(raw, "\n")
	out := make([]sourceLine, 0, len(lines))
	for i, l := range lines {
		if idx := strings.Index(l, "//"); idx >= 0 {
			l = l[:idx]
		}
		out = append(out, sourceLine{text: l, line: i + 1})
	}
	return out
}

// stripBlockComments replaces the interior of open/close delimited
// block comments with spaces, preserving newlines so line numbers of
// surrounding code are unaffected.
func stripBlockComments(s, open, close string) string {
	var b strings.Builder
	b.Grow(len(s))
	for {
		start := strings.Index(s, open)
		if start < 0 {
			b.WriteString(s)
			break
		}
		relEnd := strings.Index(s[start+len(open):], close)
		if relEnd < 0 {
			// Unterminated block comment: blank out the rest, newlines kept.
			b.WriteString(s[:start])
			for _, r := range s[start:] {
				if r == '\n' {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
			}
			break
		}
		closeStart := start + len(open) + relEnd
		closeEnd := closeStart + len(close)
		b.WriteString(s[:start])
		for _, r := range s[start:closeEnd] {
			if r == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		s = s[closeEnd:]
	}
	return b.String()
}
