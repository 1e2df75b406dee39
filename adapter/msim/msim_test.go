package msim

import (
	"testing"

	"github.com/flanksource/hdl-checker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput_ErrorWithLocation(t *testing.T) {
	a := New(nil)
	out := []byte(`** Error: foo.vhd(12): (vcom-1136) Unknown identifier "bar".`)

	diags := a.ParseOutput(out, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "foo.vhd", diags[0].Path)
	assert.Equal(t, 12, diags[0].Line)
	assert.Equal(t, models.Error, diags[0].Severity)
	assert.Equal(t, "vcom-1136", diags[0].Code)
}

func TestParseOutput_Warning(t *testing.T) {
	a := New(nil)
	out := []byte(`** Warning: foo.vhd(3): (vcom-1246) bar is never used.`)

	diags := a.ParseOutput(out, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, models.Warning, diags[0].Severity)
}

func TestRebuildsFrom_RecompileMessage(t *testing.T) {
	a := New(nil)
	out := []byte("Recompile lib_a.foo because lib_a.bar have changed")

	hints := a.RebuildsFrom(out, nil)
	require.Len(t, hints, 1)
	assert.Equal(t, models.RebuildUnit, hints[0].Kind)
	assert.Equal(t, "foo", hints[0].Name)
}

func TestParseOutput_IgnoresBlankLines(t *testing.T) {
	a := New(nil)
	diags := a.ParseOutput([]byte("\n\n"), nil)
	assert.Empty(t, diags)
}
