package output

import (
	"os"
	"testing"

	"github.com/flanksource/hdl-checker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_OutputJSONToFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/report.json"

	report := &models.BuildReport{
		Diagnostics: []models.Diagnostic{
			{Path: "top.vhd", Line: 3, Column: 1, Severity: models.Error, Message: "unbound component"},
		},
	}

	m := NewManager("json")
	m.SetOutputFile(path)
	require.NoError(t, m.Output(report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "unbound component")
}

func TestManager_OutputTableNoDiagnostics(t *testing.T) {
	m := NewManager("table")
	err := m.Output(&models.BuildReport{})
	assert.NoError(t, err)
}

func TestManager_OutputTableCompact(t *testing.T) {
	m := NewManager("table")
	m.SetCompact(true)
	report := &models.BuildReport{
		Diagnostics: []models.Diagnostic{
			{Path: "a.vhd", Line: 1, Severity: models.Warning, Message: "unused signal"},
			{Path: "a.vhd", Line: 2, Severity: models.Error, Message: "missing entity"},
		},
	}
	assert.NoError(t, m.Output(report))
}
