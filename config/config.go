// Package config loads a project's build configuration from either
// the JSON format or the legacy line-oriented format (spec §6),
// applying default compiler flags for any language block left unset.
package config

import "github.com/flanksource/hdl-checker/models"

// LegacyFileName is the conventional legacy config file name, mirrored
// on the teacher's ArchUnitFileName constant.
const LegacyFileName = ".hdl_checker.config"

// Load picks the JSON or legacy loader by extension (".json" is JSON,
// anything else legacy) and applies builder default flags.
func Load(path string) (models.ProjectConfig, error) {
	var cfg models.ProjectConfig
	var err error

	if isJSON(path) {
		cfg, err = LoadJSON(path)
	} else {
		cfg, err = LoadLegacy(path)
	}
	if err != nil {
		return models.ProjectConfig{}, err
	}

	ApplyDefaults(&cfg)
	return cfg, nil
}

func isJSON(path string) bool {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return path[i:] == ".json"
		case '/':
			return false
		}
	}
	return false
}
