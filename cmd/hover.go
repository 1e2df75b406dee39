package cmd

import (
	"fmt"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
)

var hoverCmd = &cobra.Command{
	Use:   "hover <path> <line> [column]",
	Short: "Describe the reference at a position",
	Long: `hover loads the project configuration, parses the target file, and
prints a one-line description of the dependency or design-unit
reference found at the given line: its resolved library/path, or its
planned compilation sequence.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runHover,
}

func init() {
	rootCmd.AddCommand(hoverCmd)
}

func runHover(cmd *cobra.Command, args []string) error {
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

	fmt.Println(e.GetHover(args[0], pos))
	return nil
}
