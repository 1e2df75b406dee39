package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hdl-checker/models"
)

// LoadLegacy parses the line-oriented legacy configuration format
// (spec §6), grounded on the teacher's .ARCHUNIT parser
// (config/archunit_parser.go): bufio.Scanner, `#`-comment stripping,
// whitespace tokenizing, one directive per line.
func LoadLegacy(path string) (models.ProjectConfig, error) {
	cfg := models.ProjectConfig{WorkingDir: filepath.Dir(absPath(path))}

	f, err := os.Open(path)
	if err != nil {
		return models.ProjectConfig{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(absPath(path))
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := applyLegacyLine(&cfg, line, dir); err != nil {
			logger.Warnf("config: line %d in %s: %v", lineNum, path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return models.ProjectConfig{}, fmt.Errorf("config: scan %s: %w", path, err)
	}
	return cfg, nil
}

func applyLegacyLine(cfg *models.ProjectConfig, line, dir string) error {
	if idx := strings.Index(line, "="); idx != -1 {
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		return applyLegacyAssignment(cfg, key, value)
	}

	fields := strings.Fields(line)
	if len(fields) < 3 {
		return fmt.Errorf("expected '<kind> <library> <path> [flags...]', got %q", line)
	}
	kind := strings.ToLower(fields[0])
	switch kind {
	case "vhdl", "verilog", "systemverilog":
	default:
		return fmt.Errorf("unknown source kind %q", fields[0])
	}
	library := fields[1]
	pattern := fields[2]
	flags := append([]string(nil), fields[3:]...)

	paths, err := expandGlob(pattern, dir)
	if err != nil {
		return fmt.Errorf("expand %q: %w", pattern, err)
	}
	for _, p := range paths {
		cfg.Sources = append(cfg.Sources, models.SourceEntry{Path: p, Library: library, Flags: flags})
	}
	return nil
}

func applyLegacyAssignment(cfg *models.ProjectConfig, key, value string) error {
	switch {
	case key == "builder":
		cfg.Builder = models.BuilderName(value)
	case key == "target_dir":
		cfg.TargetDir = value
		logger.Infof("config: target_dir is deprecated, accepted and ignored")
	case strings.HasPrefix(key, "global_build_flags[") && strings.HasSuffix(key, "]"):
		kind := key[len("global_build_flags[") : len(key)-1]
		flags := strings.Fields(value)
		block := languageBlockFor(cfg, kind)
		if block == nil {
			return fmt.Errorf("unknown language %q in global_build_flags", kind)
		}
		block.Flags.Global = append(block.Flags.Global, flags...)
	default:
		return fmt.Errorf("unrecognized directive %q", key)
	}
	return nil
}

func languageBlockFor(cfg *models.ProjectConfig, kind string) *models.LanguageBlock {
	switch strings.ToLower(kind) {
	case "vhdl":
		return &cfg.VHDL
	case "verilog":
		return &cfg.Verilog
	case "systemverilog":
		return &cfg.SystemVerilog
	default:
		return nil
	}
}

// expandGlob resolves pattern (relative to dir unless absolute) via
// POSIX glob semantics, including a bare literal path with no wildcard.
func expandGlob(pattern, dir string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		p := pattern
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		return []string{p}, nil
	}

	p := pattern
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	matches, err := doublestar.FilepathGlob(p)
	if err != nil {
		return nil, err
	}
	return matches, nil
}
