package xvhdl

import (
	"testing"

	"github.com/flanksource/hdl-checker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput_ErrorWithLocation(t *testing.T) {
	a := New(nil)
	out := []byte(`ERROR: [VRFC 10-1412] syntax error near ; [foo.vhd:8]`)

	diags := a.ParseOutput(out, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "foo.vhd", diags[0].Path)
	assert.Equal(t, 8, diags[0].Line)
	assert.Equal(t, models.Error, diags[0].Severity)
	assert.Equal(t, "VRFC 10-1412", diags[0].Code)
}

func TestParseOutput_IgnoresNonErrorWarningLines(t *testing.T) {
	a := New(nil)
	diags := a.ParseOutput([]byte("some unrelated tool chatter\n"), nil)
	assert.Empty(t, diags)
}

func TestParseOutput_IgnoresPreviousErrorsLine(t *testing.T) {
	a := New(nil)
	diags := a.ParseOutput([]byte("ERROR: [VRFC 10-1] foo ignored due to previous errors\n"), nil)
	assert.Empty(t, diags)
}

func TestRebuildsFrom_NeedsResave(t *testing.T) {
	a := New(nil)
	out := []byte(`ERROR: [VRFC 10-3033] '/work/lib_a/foo.vdb' needs to be re-saved.`)

	hints := a.RebuildsFrom(out, nil)
	require.Len(t, hints, 1)
	assert.Equal(t, models.RebuildUnit, hints[0].Kind)
	assert.Equal(t, "foo", hints[0].Name)
}
