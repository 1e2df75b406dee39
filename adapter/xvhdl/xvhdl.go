// Package xvhdl adapts Xilinx's xvhdl compiler to adapter.Adapter,
// grounded on the original hdl_checker XVHDL builder's regex pipeline.
package xvhdl

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

// stdoutMessageScanner mirrors hdl_checker's XVHDL _STDOUT_MESSAGE_SCANNER:
// "E|W...: [code] message [filename:line]".
var stdoutMessageScanner = regexp.MustCompile(
	`(?i)^(?P<severity>[EW])\w+:\s*\[(?P<code>[^\]]+)\]\s*(?P<message>[^\[]+)\s*(?:\[(?P<filename>[^:]+):(?P<line>\d+)\])?`)

// rebuildPattern mirrors hdl_checker's XVHDL _ITER_REBUILD_UNITS.
var rebuildPattern = regexp.MustCompile(
	`(?i)ERROR:\s*\[[^\]]*\]\s*'?.*/(?P<library>\w+)/(?P<unit>\w+)\.vdb'?\s+needs to be re-saved.*`)

type Adapter struct {
	throttle *adapter.Throttle
}

func New(throttle *adapter.Throttle) *Adapter {
	return &Adapter{throttle: throttle}
}

func (a *Adapter) Name() string { return "xvhdl" }

func (a *Adapter) Probe(ctx context.Context) adapter.Availability {
	tmp, err := os.MkdirTemp("", "hdl-checker-xvhdl-probe-*")
	if err != nil {
		return adapter.Availability{Reason: err.Error()}
	}
	defer os.RemoveAll(tmp)

	cmd := exec.CommandContext(ctx, "xvhdl", "--nolog", "--version")
	cmd.Dir = tmp
	if err := cmd.Run(); err != nil {
		return adapter.Availability{Reason: fmt.Sprintf("xvhdl not available: %v", err)}
	}
	return adapter.Availability{Available: true}
}

func (a *Adapter) CreateLibrary(ctx context.Context, root string, lib models.Identifier) error {
	ini := filepath.Join(root, ".xvhdl.init")
	line := fmt.Sprintf("%s=%s\n", lib.String(), filepath.Join(root, lib.String()))
	if data, err := os.ReadFile(ini); err == nil && strings.Contains("\n"+string(data), "\n"+line) {
		return nil
	}
	f, err := os.OpenFile(ini, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line)
	return err
}

func (a *Adapter) Build(ctx context.Context, root string, path models.Path, library models.Identifier, flags []string, scratch bool) models.BuildReport {
	ini := filepath.Join(root, ".xvhdl.init")
	args := []string{"--nolog", "--verbose", "0", "--initfile", ini, "--work", library.String()}
	args = append(args, flags...)
	args = append(args, path.String())

	cmd := exec.CommandContext(ctx, "xvhdl", args...)
	cmd.Dir = root
	out, err := a.throttle.Run(ctx, cmd)
	if err != nil {
		logger.Debugf("xvhdl: exited non-zero for %s: %v", path, err)
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
		if strings.Contains(line, "ignored due to previous errors") || strings.Contains(line, "[VRFC 10-3032]") {
			continue
		}
		if !strings.HasPrefix(line, "ERROR") && !strings.HasPrefix(line, "WARNING") {
			continue
		}
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
		if strings.EqualFold(info["severity"], "W") {
			sev = models.Warning
		}
		lineNum, _ := strconv.Atoi(info["line"])

		diags = append(diags, models.Diagnostic{
			Path:     info["filename"],
			Line:     lineNum,
			Severity: sev,
			Code:     info["code"],
			Message:  strings.TrimSpace(info["message"]),
			Source:   "xvhdl",
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
			if info["unit"] != "" {
				hints = append(hints, models.RebuildHint{Kind: models.RebuildUnit, Name: info["unit"]})
			}
		}
	}
	return hints
}
