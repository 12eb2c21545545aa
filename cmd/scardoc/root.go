package main

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"scardoc/internal/config"
	"scardoc/internal/paths"
	"scardoc/internal/slogutil"
	"scardoc/internal/version"
)

var (
	rootFlag    string
	verbosity   int
	quiet       bool
	logFileFlag string
)

// session is the per-invocation state built before any command runs.
type session struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
	logs   *slogutil.LoggerFactory
}

var state = &session{logger: slogutil.NewDiscardLogger()}

var rootCmd = &cobra.Command{
	Use:   "scardoc",
	Short: "scardoc - documentation generator for SCAR scripts",
	Long: `scardoc builds a canonical documentation document for SCAR game scripts.

Documents come from annotated source files (generate), from runtime dumps of
the game's scripting environment (dump), or from previously produced
documents, and are reconciled with merge.

Configuration is read from .scardoc/config.toml under --root and may be
overridden with SCARDOC_* environment variables or a .env file.`,
	Version:            version.Info(),
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setupSession,
	PersistentPostRunE: closeSession,
}

func init() {
	rootCmd.SetVersionTemplate("scardoc version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Project root holding .scardoc/ (default: current directory)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Also write logs to this file")
}

func setupSession(cmd *cobra.Command, args []string) error {
	root := rootFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid root %q: %w", rootFlag, err)
	}
	state.root = root

	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, cfgErr := config.LoadConfig(root)
	if cfgErr == nil {
		cfgErr = cfg.Validate()
	}
	if cfgErr != nil {
		if cmd != initCmd {
			return configFailure(cfgErr)
		}
		cfg = config.DefaultConfig()
	}
	state.cfg = cfg

	logCfg := *cfg
	logCfg.Logging.File = paths.Resolve(root, cfg.Logging.File)
	state.logs = slogutil.NewLoggerFactory(&logCfg, slogutil.Options{
		Verbosity: verbosity,
		Quiet:     quiet,
		LogFile:   logFileFlag,
	})
	logger, err := state.logs.Logger(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	state.logger = logger

	if cfgErr != nil {
		logger.Warn("Ignoring invalid configuration", "error", cfgErr)
	}
	logger.Debug("Session ready", "root", root, "command", cmd.Name())
	return nil
}

func closeSession(cmd *cobra.Command, args []string) error {
	if state.logs == nil {
		return nil
	}
	return state.logs.Close()
}
