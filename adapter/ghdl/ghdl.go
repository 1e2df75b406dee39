// Package ghdl adapts the GHDL compiler to adapter.Adapter, grounded on
// the original hdl_checker GHDL builder's regex pipeline.
package ghdl

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hdl-checker/adapter"
	"github.com/flanksource/hdl-checker/models"
)

// stdoutMessageParser mirrors hdl_checker's GHDL._stdout_message_parser:
// "filename:line:col: [warning:] message".
var stdoutMessageParser = regexp.MustCompile(
	`^(?P<filename>[^:]*):(?P<line>\d+):(?P<col>\d+):\s*(?P<warning>warning:\s*)?(?P<message>.*)`)

// rebuildPattern mirrors hdl_checker's GHDL._iter_rebuild_units.
var rebuildPattern = regexp.MustCompile(
	`(?P<kind>entity|package) "(?P<unit>\w+)" is obsoleted by (?:entity|package) "\w+"` +
		`|file (?P<path>.*)\s+has changed and must be reanalysed`)

type Adapter struct {
	throttle *adapter.Throttle
}

func New(throttle *adapter.Throttle) *Adapter {
	return &Adapter{throttle: throttle}
}

func (a *Adapter) Name() string { return "ghdl" }

func (a *Adapter) Probe(ctx context.Context) adapter.Availability {
	if err := exec.CommandContext(ctx, "ghdl", "--version").Run(); err != nil {
		return adapter.Availability{Reason: fmt.Sprintf("ghdl not available: %v", err)}
	}
	return adapter.Availability{Available: true}
}

func (a *Adapter) CreateLibrary(ctx context.Context, root string, lib models.Identifier) error {
	return os.MkdirAll(root, 0o755)
}

func (a *Adapter) Build(ctx context.Context, root string, path models.Path, library models.Identifier, flags []string, scratch bool) models.BuildReport {
	args := append([]string{"-a", "-P" + root, "--work=" + library.String(), "--workdir=" + root}, flags...)
	args = append(args, path.String())

	out, err := a.throttle.Run(ctx, exec.CommandContext(ctx, "ghdl", args...))
	if err != nil {
		logger.Debugf("ghdl: analyze exited non-zero for %s: %v", path, err)
	}

	sArgs := append([]string{"-s", "-P" + root, "--work=" + library.String(), "--workdir=" + root}, flags...)
	sArgs = append(sArgs, path.String())
	sOut, err := a.throttle.Run(ctx, exec.CommandContext(ctx, "ghdl", sArgs...))
	if err != nil {
		logger.Debugf("ghdl: syntax check exited non-zero for %s: %v", path, err)
	}

	combined := append(append([]byte{}, out...), sOut...)
	return models.BuildReport{
		Diagnostics: filterScratch(a.ParseOutput(combined, nil), path, scratch),
		Hints:       a.RebuildsFrom(combined, nil),
	}
}

func filterScratch(diags []models.Diagnostic, path models.Path, scratch bool) []models.Diagnostic {
	if scratch {
		return diags
	}
	var out []models.Diagnostic
	for _, d := range diags {
		if d.Path != path.String() {
			out = append(out, d)
		}
	}
	return out
}

func (a *Adapter) ParseOutput(stdout, stderr []byte) []models.Diagnostic {
	var diags []models.Diagnostic
	for _, line := range strings.Split(string(stdout)+string(stderr), "\n") {
		if strings.TrimSpace(line) == "" || strings.Contains(line, "ghdl: compilation error") {
			continue
		}
		m := stdoutMessageParser.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		names := stdoutMessageParser.SubexpNames()
		info := map[string]string{}
		for i, n := range names {
			if n != "" && i < len(m) {
				info[n] = m[i]
			}
		}

		sev := models.Error
		if info["warning"] != "" {
			sev = models.Warning
		}
		lineNum, _ := strconv.Atoi(info["line"])
		col, _ := strconv.Atoi(info["col"])

		diags = append(diags, models.Diagnostic{
			Path:     info["filename"],
			Line:     lineNum,
			Column:   col,
			Severity: sev,
			Message:  strings.TrimSpace(info["message"]),
			Source:   "ghdl",
		})
	}
	return diags
}

func (a *Adapter) RebuildsFrom(stdout, stderr []byte) []models.RebuildHint {
	var hints []models.RebuildHint
	for _, line := range strings.Split(string(stdout)+string(stderr), "\n") {
		for _, m := range rebuildPattern.FindAllStringSubmatch(line, -1) {
			names := rebuildPattern.SubexpNames()
			info := map[string]string{}
			for i, n := range names {
				if n != "" && i < len(m) {
					info[n] = m[i]
				}
			}
			if info["path"] != "" {
				hints = append(hints, models.RebuildHint{Kind: models.RebuildPath, Name: info["path"]})
			} else if info["unit"] != "" {
				hints = append(hints, models.RebuildHint{Kind: models.RebuildUnit, Name: info["unit"]})
			}
		}
	}
	return hints
}
