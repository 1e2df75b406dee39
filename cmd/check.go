package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hdl-checker/config"
	"github.com/flanksource/hdl-checker/models"
	"github.com/flanksource/hdl-checker/output"
	"github.com/spf13/cobra"
)

var checkFormat string

var checkCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Compile one target and print its diagnostics",
	Long: `check loads the project configuration, builds the target's dependency
chain through the configured compiler adapter, and prints the resulting
diagnostics once.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkFormat, "format", "table", "output format: table or json")
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := args[0]

	e, err := configuredEngine(target)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Shutdown(); err != nil {
			logger.Warnf("cmd: shutdown: %v", err)
		}
	}()

	diags, err := e.GetDiagnostics(target)
	if err != nil {
		return fmt.Errorf("cmd: get diagnostics: %w", err)
	}

	report := &models.BuildReport{Diagnostics: diags}
	mgr := output.NewManager(checkFormat)
	mgr.SetCompact(compact)
	if outputFile != "" {
		mgr.SetOutputFile(outputFile)
	}
	return mgr.Output(report)
}

// discoverConfig looks for a JSON project config or the legacy
// .hdl_checker.config file starting at dir.
func discoverConfig(dir string) (string, error) {
	candidates := []string{
		filepath.Join(dir, "hdl_checker.json"),
		filepath.Join(dir, config.LegacyFileName),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("no project config found in %s (expected hdl_checker.json or %s)", dir, config.LegacyFileName)
}
