package ghdl

import (
	"testing"

	"github.com/flanksource/hdl-checker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput_ErrorWithLocation(t *testing.T) {
	a := New(nil)
	out := []byte(`foo.vhd:12:3: no declaration for "bar"`)

	diags := a.ParseOutput(out, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "foo.vhd", diags[0].Path)
	assert.Equal(t, 12, diags[0].Line)
	assert.Equal(t, 3, diags[0].Column)
	assert.Equal(t, models.Error, diags[0].Severity)
}

func TestParseOutput_Warning(t *testing.T) {
	a := New(nil)
	out := []byte(`foo.vhd:5:1: warning: signal bar is never read`)

	diags := a.ParseOutput(out, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, models.Warning, diags[0].Severity)
}

func TestParseOutput_IgnoresCompilationErrorLine(t *testing.T) {
	a := New(nil)
	diags := a.ParseOutput([]byte("ghdl: compilation error\n"), nil)
	assert.Empty(t, diags)
}

func TestRebuildsFrom_ObsoletedUnit(t *testing.T) {
	a := New(nil)
	out := []byte(`entity "foo" is obsoleted by package "bar"`)

	hints := a.RebuildsFrom(out, nil)
	require.Len(t, hints, 1)
	assert.Equal(t, models.RebuildUnit, hints[0].Kind)
	assert.Equal(t, "foo", hints[0].Name)
}

func TestRebuildsFrom_ChangedFile(t *testing.T) {
	a := New(nil)
	out := []byte(`file bar.vhd has changed and must be reanalysed`)

	hints := a.RebuildsFrom(out, nil)
	require.Len(t, hints, 1)
	assert.Equal(t, models.RebuildPath, hints[0].Kind)
}
