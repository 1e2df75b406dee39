// Package output renders a build report as a terminal table or JSON,
// grounded on the teacher's output/formatter.go.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/flanksource/hdl-checker/models"
)

// Manager renders a models.BuildReport in one of a handful of formats.
type Manager struct {
	format  string
	output  string
	compact bool
}

func NewManager(format string) *Manager {
	return &Manager{format: format}
}

func (m *Manager) SetOutputFile(file string) {
	m.output = file
}

func (m *Manager) SetCompact(compact bool) {
	m.compact = compact
}

// Output renders report per m.format: JSON goes to m.output when set
// and to stdout otherwise; the table formats always print to stdout.
func (m *Manager) Output(report *models.BuildReport) error {
	switch m.format {
	case "json":
		return m.outputJSON(report)
	default:
		return m.outputTable(report)
	}
}

func (m *Manager) outputTable(report *models.BuildReport) error {
	if len(report.Diagnostics) == 0 {
		fmt.Println(color.GreenString("no diagnostics"))
		return nil
	}

	diags := append([]models.Diagnostic(nil), report.Diagnostics...)
	sort.Slice(diags, func(i, j int) bool { return diags[i].Less(diags[j]) })

	if m.compact {
		m.outputCompact(diags)
	} else {
		m.outputTree(diags)
	}

	if len(report.Hints) > 0 {
		hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		names := make([]string, 0, len(report.Hints))
		for _, h := range report.Hints {
			names = append(names, h.Name)
		}
		fmt.Println(hintStyle.Render(fmt.Sprintf("rebuild hints: %s", strings.Join(names, ", "))))
	}
	return nil
}

func (m *Manager) outputCompact(diags []models.Diagnostic) {
	fileStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	sevStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	byFile := groupByFile(diags)
	files := sortedFileKeys(byFile)

	fmt.Println(strings.Repeat("─", 80))
	for _, file := range files {
		fd := byFile[file]
		counts := make(map[models.Severity]int)
		for _, d := range fd {
			counts[d.Severity]++
		}
		var parts []string
		for _, sev := range []models.Severity{models.Fatal, models.Error, models.Warning, models.Note} {
			if n := counts[sev]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s×%d", string(sev), n))
			}
		}
		fmt.Printf("  %s %s %s\n",
			fileStyle.Render(relPath(file)),
			countStyle.Render(fmt.Sprintf("(%d)", len(fd))),
			sevStyle.Render(strings.Join(parts, ", ")))
	}
	fmt.Println(strings.Repeat("─", 80))
}

func (m *Manager) outputTree(diags []models.Diagnostic) {
	fileStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	lineStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	byFile := groupByFile(diags)
	files := sortedFileKeys(byFile)

	fmt.Println(strings.Repeat("─", 80))
	for i, file := range files {
		fd := byFile[file]
		isLast := i == len(files)-1
		branch := "├──"
		prefix := "│   "
		if isLast {
			branch = "└──"
			prefix = "    "
		}

		fmt.Printf("%s %s (%d)\n", branch, fileStyle.Render(relPath(file)), len(fd))
		for j, d := range fd {
			isLastD := j == len(fd)-1
			dbranch := "├──"
			if isLastD {
				dbranch = "└──"
			}
			msg := sevColor(d.Severity)(d.Message)
			fmt.Printf("%s%s %s %s\n", prefix, dbranch, msg,
				lineStyle.Render(fmt.Sprintf("(line %d, col %d)", d.Line, d.Column)))
		}
		if !isLast {
			fmt.Println("│")
		}
	}
	fmt.Println(strings.Repeat("─", 80))
}

func sevColor(s models.Severity) func(string, ...interface{}) string {
	switch s {
	case models.Fatal, models.Error:
		return color.RedString
	case models.Warning:
		return color.YellowString
	default:
		return color.WhiteString
	}
}

func groupByFile(diags []models.Diagnostic) map[string][]models.Diagnostic {
	byFile := make(map[string][]models.Diagnostic)
	for _, d := range diags {
		byFile[d.Path] = append(byFile[d.Path], d)
	}
	return byFile
}

func sortedFileKeys(byFile map[string][]models.Diagnostic) []string {
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func relPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "../") {
		return path
	}
	return rel
}

func (m *Manager) outputJSON(report *models.BuildReport) error {
	w := os.Stdout
	if m.output != "" {
		f, err := os.Create(m.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
