package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hdl-checker/config"
	"github.com/flanksource/hdl-checker/engine"
	"github.com/flanksource/hdl-checker/models"
	"github.com/spf13/cobra"
)

var definitionCmd = &cobra.Command{
	Use:   "definition <path> <line> [column]",
	Short: "Resolve the declaring location of the reference at a position",
	Long: `definition loads the project configuration, parses the target file,
and prints the location(s) declaring the dependency or design-unit
reference found at the given line.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runDefinition,
}

func init() {
	rootCmd.AddCommand(definitionCmd)
}

func runDefinition(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition(args[1:])
	if err != nil {
		return err
	}

	e, err := configuredEngine(args[0])
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Shutdown(); err != nil {
			logger.Warnf("cmd: shutdown: %v", err)
		}
	}()

	locs := e.GetDefinition(args[0], pos)
	return printJSON(locs)
}

// configuredEngine discovers the project config for path, configures
// an engine against it, and returns it ready for a single query.
func configuredEngine(path string) (*engine.Engine, error) {
	cfgPath := cfgFile
	if cfgPath == "" {
		found, err := discoverConfig(filepath.Dir(path))
		if err != nil {
			return nil, err
		}
		cfgPath = found
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("cmd: load config: %w", err)
	}

	e := engine.New()
	if err := e.Configure(cfg); err != nil {
		return nil, fmt.Errorf("cmd: configure engine: %w", err)
	}
	return e, nil
}

// parsePosition parses a "<line> [column]" argument tail into a
// models.Location.
func parsePosition(args []string) (models.Location, error) {
	line, err := strconv.Atoi(args[0])
	if err != nil {
		return models.Location{}, fmt.Errorf("cmd: invalid line %q: %w", args[0], err)
	}
	column := 0
	if len(args) > 1 {
		column, err = strconv.Atoi(args[1])
		if err != nil {
			return models.Location{}, fmt.Errorf("cmd: invalid column %q: %w", args[1], err)
		}
	}
	return models.Location{Line: line, Column: column}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
