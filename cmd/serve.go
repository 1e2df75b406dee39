package cmd

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hdl-checker/config"
	"github.com/flanksource/hdl-checker/engine"
	"github.com/spf13/cobra"
)

var (
	serveHost       string
	servePort       int
	serveLSP        bool
	serveAttachPID  int
	serveLogStream  string
	serveStdoutFile string
	serveStderrFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the build engine as a long-lived daemon",
	Long: `serve keeps one engine configured and alive, ready for a transport
(HTTP or LSP-over-stdio) to marshal editor requests onto its query
methods. The transport layer itself is out of scope for this core
(spec §1); this command proves the entrypoints are wired and reachable.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "HTTP transport bind host")
	serveCmd.Flags().IntVar(&servePort, "port", 8025, "HTTP transport bind port")
	serveCmd.Flags().BoolVar(&serveLSP, "lsp", false, "speak LSP over stdio instead of binding HTTP")
	serveCmd.Flags().IntVar(&serveAttachPID, "attach-to-pid", 0, "exit once the given PID disappears (editor lifecycle binding)")
	serveCmd.Flags().StringVar(&serveLogStream, "log-stream", "", "log mirror file (accepted, not used by this command)")
	serveCmd.Flags().StringVar(&serveStdoutFile, "stdout", "", "redirect stdout to this file")
	serveCmd.Flags().StringVar(&serveStderrFile, "stderr", "", "redirect stderr to this file")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := redirectStreams(); err != nil {
		return err
	}

	cfgPath := cfgFile
	if cfgPath == "" {
		found, err := discoverConfig(".")
		if err != nil {
			return err
		}
		cfgPath = found
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: load config: %w", err)
	}

	e := engine.New()
	if err := e.Configure(cfg); err != nil {
		return fmt.Errorf("cmd: configure engine: %w", err)
	}
	defer func() {
		if err := e.Shutdown(); err != nil {
			logger.Warnf("cmd: shutdown: %v", err)
		}
	}()

	if serveAttachPID > 0 {
		go watchAttachedProcess(serveAttachPID)
	}

	mode := fmt.Sprintf("http on %s:%d", serveHost, servePort)
	if serveLSP {
		mode = "lsp over stdio"
	}
	logger.Infof("cmd: engine configured, serving %s (transport not implemented in this core)", mode)
	return nil
}

func redirectStreams() error {
	if serveStdoutFile != "" {
		f, err := os.Create(serveStdoutFile)
		if err != nil {
			return fmt.Errorf("cmd: open --stdout file: %w", err)
		}
		os.Stdout = f
	}
	if serveStderrFile != "" {
		f, err := os.Create(serveStderrFile)
		if err != nil {
			return fmt.Errorf("cmd: open --stderr file: %w", err)
		}
		os.Stderr = f
	}
	return nil
}

// watchAttachedProcess exits the daemon once the editor process behind
// --attach-to-pid disappears, per spec §6's CLI surface.
func watchAttachedProcess(pid int) {
	proc, err := os.FindProcess(pid)
	if err != nil {
		logger.Warnf("cmd: attach-to-pid %d: %v", pid, err)
		return
	}
	for {
		time.Sleep(2 * time.Second)
		if proc.Signal(syscall.Signal(0)) != nil {
			logger.Infof("cmd: attached pid %d gone, shutting down", pid)
			os.Exit(0)
		}
	}
}
