// Package msim adapts ModelSim's vcom/vlog compilers to adapter.Adapter,
// grounded on the original hdl_checker MSim builder's regex pipeline and
// on the teacher's linters/golangci exec.Command+regex pattern.
package msim

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hdl-checker/adapter"
	"github.com/flanksource/hdl-checker/models"
)

// stdoutMessageScanner mirrors hdl_checker's MSim._stdout_message_scanner:
// "** E|W ...(suppressible)?: [n] filename(line): message" or a bare
// "(vcom-n)" tagged message with no location.
var stdoutMessageScanner = regexp.MustCompile(
	`^\*\*\s*(?P<severity>[WE])\w+\s*(?:\(suppressible\))?:\s*` +
		`(?:(?:\s*\[\d+\])?\s*(?P<filename>[^(]*)\((?P<line>\d+)\):|\(vcom-\d+\))?\s*(?P<message>.*)`)

var errorCodePattern = regexp.MustCompile(`((?:vcom-|vlog-)\d+)`)

// rebuildPattern mirrors hdl_checker's MSim._iter_rebuild_units.
var rebuildPattern = regexp.MustCompile(
	`Recompile\s*(?P<lib0>\w+)\.(?P<unit0>\w+)\s+because\s+.*?\s+ha(?:ve|s) changed` +
		`|^\*\* Warning:.*\(vcom-1127\)\s*Entity\s(?P<lib1>\w+)\.(?P<unit1>\w+).*`)

type Adapter struct {
	throttle *adapter.Throttle
}

func New(throttle *adapter.Throttle) *Adapter {
	return &Adapter{throttle: throttle}
}

func (a *Adapter) Name() string { return "msim" }

func (a *Adapter) Probe(ctx context.Context) adapter.Availability {
	if err := exec.CommandContext(ctx, "vcom", "-version").Run(); err != nil {
		return adapter.Availability{Reason: fmt.Sprintf("vcom not available: %v", err)}
	}
	if err := exec.CommandContext(ctx, "vlog", "-version").Run(); err != nil {
		return adapter.Availability{Reason: fmt.Sprintf("vlog not available: %v", err)}
	}
	return adapter.Availability{Available: true}
}

func (a *Adapter) CreateLibrary(ctx context.Context, root string, lib models.Identifier) error {
	dir := filepath.Join(root, lib.String())
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if _, err := a.throttle.Run(ctx, exec.CommandContext(ctx, "vlib", dir)); err != nil {
		return err
	}
	ini := filepath.Join(root, "modelsim.ini")
	cmd := exec.CommandContext(ctx, "vmap", "-modelsimini", ini, lib.String(), dir)
	_, err := a.throttle.Run(ctx, cmd)
	return err
}

func (a *Adapter) Build(ctx context.Context, root string, path models.Path, library models.Identifier, flags []string, scratch bool) models.BuildReport {
	kind, _ := models.KindFromExt(path.String())
	tool := "vlog"
	if kind == models.VHDL {
		tool = "vcom"
	}

	ini := filepath.Join(root, "modelsim.ini")
	args := []string{"-modelsimini", ini, "-quiet", "-work", filepath.Join(root, library.String())}
	if kind == models.SystemVerilog {
		args = append(args, "-sv")
	}
	args = append(args, flags...)
	args = append(args, path.String())

	out, err := a.throttle.Run(ctx, exec.CommandContext(ctx, tool, args...))
	if err != nil {
		logger.Debugf("msim: %s exited non-zero for %s: %v", tool, path, err)
	}

	return models.BuildReport{
		Diagnostics: filterScratch(a.ParseOutput(out, nil), path, scratch),
		Hints:       a.RebuildsFrom(out, nil),
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
		m := stdoutMessageScanner.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		names := stdoutMessageScanner.SubexpNames()
		info := map[string]string{}
		for i, n := range names {
			if n != "" && i < len(m) {
				info[n] = m[i]
			}
		}

		sev := models.Error
		if info["severity"] == "W" {
			sev = models.Warning
		}

		code := ""
		if cm := errorCodePattern.FindString(line); cm != "" {
			code = cm
		}

		lineNum := 0
		if n, err := strconv.Atoi(info["line"]); err == nil {
			lineNum = n
		}

		path := info["filename"]
		if path == "" {
			continue // msim's line-less diagnostics carry no file reference
		}

		diags = append(diags, models.Diagnostic{
			Path:     path,
			Line:     lineNum,
			Severity: sev,
			Code:     code,
			Message:  strings.TrimSpace(info["message"]),
			Source:   "msim",
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
			unit := firstNonEmpty(info["unit0"], info["unit1"])
			if unit != "" {
				hints = append(hints, models.RebuildHint{Kind: models.RebuildUnit, Name: unit})
			}
		}
	}
	return hints
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
