package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hdl-checker/models"
)

// jsonSourceEntry accepts both the bare-string and [path, {library,flags}]
// shapes spec §6 allows for one "sources" element.
type jsonSourceEntry struct {
	Path    string
	Library string
	Flags   []string
}

func (e *jsonSourceEntry) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		e.Path = asString
		return nil
	}

	var asTuple []json.RawMessage
	if err := json.Unmarshal(data, &asTuple); err != nil {
		return fmt.Errorf("source entry must be a string or [path, opts] pair: %w", err)
	}
	if len(asTuple) != 2 {
		return fmt.Errorf("source entry tuple must have exactly 2 elements, got %d", len(asTuple))
	}
	if err := json.Unmarshal(asTuple[0], &e.Path); err != nil {
		return fmt.Errorf("source entry path: %w", err)
	}
	var opts struct {
		Library string   `json:"library"`
		Flags   []string `json:"flags"`
	}
	if err := json.Unmarshal(asTuple[1], &opts); err != nil {
		return fmt.Errorf("source entry options: %w", err)
	}
	e.Library, e.Flags = opts.Library, opts.Flags
	return nil
}

type jsonLanguageBlock struct {
	Flags struct {
		Single       []string `json:"single"`
		Dependencies []string `json:"dependencies"`
		Global       []string `json:"global"`
	} `json:"flags"`
}

func (b jsonLanguageBlock) toModel() models.LanguageBlock {
	return models.LanguageBlock{Flags: models.LanguageFlags{
		Single: b.Flags.Single, Dependencies: b.Flags.Dependencies, Global: b.Flags.Global,
	}}
}

type jsonDocument struct {
	Sources       []jsonSourceEntry `json:"sources"`
	Include       []string          `json:"include"`
	Builder       string            `json:"builder"`
	VHDL          jsonLanguageBlock `json:"vhdl"`
	Verilog       jsonLanguageBlock `json:"verilog"`
	SystemVerilog jsonLanguageBlock `json:"systemverilog"`
	TargetDir     string            `json:"target_dir"`
}

// LoadJSON reads the JSON configuration at path, expanding its include
// list depth-first and tolerating cycles (spec §6).
func LoadJSON(path string) (models.ProjectConfig, error) {
	cfg := models.ProjectConfig{WorkingDir: filepath.Dir(absPath(path))}
	visited := map[string]bool{}
	if err := loadJSONInto(&cfg, path, visited); err != nil {
		return models.ProjectConfig{}, err
	}
	return cfg, nil
}

func loadJSONInto(cfg *models.ProjectConfig, path string, visited map[string]bool) error {
	abs := absPath(path)
	if visited[abs] {
		logger.Warnf("config: include cycle detected at %s, skipping", path)
		return nil
	}
	visited[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	for _, inc := range doc.Include {
		incPath := inc
		if !filepath.IsAbs(incPath) {
			incPath = filepath.Join(dir, incPath)
		}
		if err := loadJSONInto(cfg, incPath, visited); err != nil {
			return err
		}
	}

	for _, s := range doc.Sources {
		p := s.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		cfg.Sources = append(cfg.Sources, models.SourceEntry{Path: p, Library: s.Library, Flags: s.Flags})
	}

	if doc.Builder != "" {
		cfg.Builder = models.BuilderName(doc.Builder)
	}
	if hasFlags(doc.VHDL) {
		cfg.VHDL = doc.VHDL.toModel()
	}
	if hasFlags(doc.Verilog) {
		cfg.Verilog = doc.Verilog.toModel()
	}
	if hasFlags(doc.SystemVerilog) {
		cfg.SystemVerilog = doc.SystemVerilog.toModel()
	}
	if doc.TargetDir != "" {
		cfg.TargetDir = doc.TargetDir
		logger.Infof("config: target_dir is deprecated, accepted and ignored")
	}
	return nil
}

func hasFlags(b jsonLanguageBlock) bool {
	return len(b.Flags.Single) > 0 || len(b.Flags.Dependencies) > 0 || len(b.Flags.Global) > 0
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
