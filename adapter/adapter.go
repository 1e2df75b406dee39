// Package adapter defines the uniform facade over external HDL
// compilers that the engine drives, grounded on the teacher's
// linters/ per-tool packages (linters/golangci, linters/eslint, ...).
package adapter

import (
	"context"

	"github.com/flanksource/hdl-checker/models"
)

// Availability is the result of Probe.
type Availability struct {
	Available bool
	Reason    string // populated when !Available
}

// Adapter is the strategy interface one package per external tool
// implements (adapter/msim, adapter/ghdl, adapter/xvhdl,
// adapter/fallback), per spec §4.4.
type Adapter interface {
	// Name identifies the adapter for logs, config, and the engine's
	// preference ordering (msim > ghdl > xvhdl > fallback).
	Name() string

	// Probe invokes the tool's version flag and classifies availability
	// by exit code and output.
	Probe(ctx context.Context) Availability

	// CreateLibrary idempotently creates the physical library directory
	// under root for lib.
	CreateLibrary(ctx context.Context, root string, lib models.Identifier) error

	// Build compiles path into library, returning every diagnostic the
	// tool produced plus any rebuild hints. scratch=true means "also
	// emit diagnostics for this exact file"; scratch=false means "this
	// is a dependency, only surface diagnostics referencing other files".
	Build(ctx context.Context, root string, path models.Path, library models.Identifier, flags []string, scratch bool) models.BuildReport

	// ParseOutput normalizes raw tool output into diagnostics. Exposed
	// separately from Build so adapter tests can exercise the parser
	// against captured tool output without invoking a subprocess.
	ParseOutput(stdout, stderr []byte) []models.Diagnostic

	// RebuildsFrom extracts "recompile X because Y changed" hints from
	// raw tool output.
	RebuildsFrom(stdout, stderr []byte) []models.RebuildHint
}
