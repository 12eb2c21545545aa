package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scardoc/internal/config"
	"scardoc/internal/errors"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize scardoc configuration",
	Long:  "Creates a .scardoc/ directory with default configuration in the project root",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := config.Path(state.root)

	if _, err := os.Stat(configPath); err == nil && !initForce {
		// Already initialized is success so scripts can run init unconditionally.
		fmt.Fprintln(out, "scardoc already initialized.")
		fmt.Fprintf(out, "Configuration at: %s\n", configPath)
		fmt.Fprintln(out, "\nRun 'scardoc init --force' to reinitialize.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(state.root); err != nil {
		return errors.NewDocError(errors.InternalError, "Failed to write config file", err)
	}
	state.logger.Info("Wrote configuration", "path", configPath)

	fmt.Fprintln(out, "scardoc initialized.")
	fmt.Fprintf(out, "Configuration at: %s\n", configPath)
	fmt.Fprintf(out, "Snapshots will be stored in: %s\n", filepath.Join(state.root, cfg.Storage.Path))
	return nil
}
