package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scardoc/internal/export"
	"scardoc/internal/output"
	"scardoc/internal/version"
)

var (
	exportOutput      string
	exportProjectRoot string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a document to other tool formats",
}

var exportSCIPCmd = &cobra.Command{
	Use:   "scip <doc>",
	Short: "Write a document as a SCIP index",
	Long: `Convert a document into a SCIP index so code-intelligence tools can show
function documentation on hover.

Examples:
  scardoc export scip scardoc.json
  scardoc export scip scardoc.json -o build/scar.scip`,
	Args: cobra.ExactArgs(1),
	RunE: runExportSCIP,
}

func init() {
	exportSCIPCmd.Flags().StringVarP(&exportOutput, "output", "o", "index.scip", "Output file, - for stdout")
	exportSCIPCmd.Flags().StringVar(&exportProjectRoot, "project-root", "", "Project root URI (default: file:// URI of --root)")
	exportCmd.AddCommand(exportSCIPCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExportSCIP(cmd *cobra.Command, args []string) error {
	doc, err := output.ReadFile(args[0])
	if err != nil {
		return err
	}

	projectRoot := exportProjectRoot
	if projectRoot == "" {
		projectRoot = "file://" + state.root
	}
	idx := export.ToSCIP(doc, export.ExportOptions{
		ProjectRoot: projectRoot,
		ToolVersion: version.Version,
	})

	if exportOutput == stdoutPath {
		return export.WriteSCIP(cmd.OutOrStdout(), idx)
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOutput, err)
	}
	if err := export.WriteSCIP(f, idx); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	state.logger.Info("Wrote SCIP index",
		"path", exportOutput,
		"documents", len(idx.Documents),
		"externalSymbols", len(idx.ExternalSymbols),
	)
	return nil
}
