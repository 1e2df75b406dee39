// Package cmd wires the hdl-checker CLI: cobra command tree, viper
// flag/env binding, grounded on the teacher's cmd/root.go.
package cmd

import (
	"fmt"
	"os"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	outputFile  string
	compact     bool
	showVersion bool

	getVersionInfo func() (version, commit, date string, dirty bool)
)

var rootCmd = &cobra.Command{
	Use:   "hdl-checker",
	Short: "Build engine and language server backend for VHDL/Verilog/SystemVerilog",
	Long: `hdl-checker parses HDL sources, tracks their library/dependency graph,
and drives an external compiler (ModelSim, GHDL, or XVHDL) to produce
diagnostics an editor or CI pipeline can consume.`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			printVersion()
			return
		}
		cmd.Help()
	},
}

// Execute runs the command tree, exiting non-zero on failure per
// spec §6's CLI surface.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersionInfo lets main wire in build-time version metadata.
func SetVersionInfo(fn func() (string, string, string, bool)) {
	getVersionInfo = fn
}

func printVersion() {
	if getVersionInfo == nil {
		fmt.Println("hdl-checker version dev (commit: unknown, built: unknown, unknown)")
		return
	}
	version, commit, date, isDirty := getVersionInfo()
	status := "clean"
	if isDirty {
		status = "dirty"
	}
	fmt.Printf("hdl-checker version %s (commit: %s, built: %s, %s)\n", version, commit, date, status)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "project config file (JSON or legacy .hdl_checker.config)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file for JSON output (table output always goes to stdout)")
	rootCmd.PersistentFlags().BoolVarP(&compact, "compact", "c", false, "compact output showing per-file counts only")
	rootCmd.PersistentFlags().BoolVar(&showVersion, "version", false, "print version and exit")

	logger.BindFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.AutomaticEnv()
	viper.SetEnvPrefix("HDL_CHECKER")
	if err := viper.ReadInConfig(); err == nil {
		logger.Infof("cmd: using config file %s", viper.ConfigFileUsed())
	}
}
