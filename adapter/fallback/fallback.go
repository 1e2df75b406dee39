// Package fallback implements adapter.Adapter as a no-op, so static
// checks (C6) can still run when no real compiler is available.
package fallback

import (
	"context"

	"github.com/flanksource/hdl-checker/adapter"
	"github.com/flanksource/hdl-checker/models"
)

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string { return "fallback" }

func (a *Adapter) Probe(ctx context.Context) adapter.Availability {
	return adapter.Availability{Available: true}
}

func (a *Adapter) CreateLibrary(ctx context.Context, root string, lib models.Identifier) error {
	return nil
}

func (a *Adapter) Build(ctx context.Context, root string, path models.Path, library models.Identifier, flags []string, scratch bool) models.BuildReport {
	return models.BuildReport{}
}

func (a *Adapter) ParseOutput(stdout, stderr []byte) []models.Diagnostic {
	return nil
}

func (a *Adapter) RebuildsFrom(stdout, stderr []byte) []models.RebuildHint {
	return nil
}
