package main

import (
	"time"

	"github.com/spf13/cobra"

	"scardoc/internal/dump"
)

var (
	dumpOutput         string
	dumpFormat         string
	dumpSnapshot       string
	dumpDuplicateFirst bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Import a runtime dump of the scripting environment",
	Long: `Convert a scar dump into a canonical document.

The dump is a line-oriented export from the game with [ScarDoc:Functions],
[ScarDoc:Globals] and [ScarDoc:Unknowns] sections. Unknown entries of the form
NAME=ENUM(N) are grouped into enums.

Examples:
  scardoc dump scardump.txt -o dump.json
  scardoc dump scardump.txt --snapshot game-1.4`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "Output file, - for stdout (default: output.path)")
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "", "Document format (json, yaml, toml)")
	dumpCmd.Flags().StringVar(&dumpSnapshot, "snapshot", "", "Also store the document as a snapshot with this label")
	dumpCmd.Flags().BoolVar(&dumpDuplicateFirst, "duplicate-first-enum-value", false, "Repeat the first value of each enum, as older dump tools did")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	start := time.Now()

	importer := dump.NewImporter(dump.Options{
		DuplicateFirstEnumValue: state.cfg.Dump.DuplicateFirstEnumValue || dumpDuplicateFirst,
	}, state.logger)
	result, err := importer.ImportFile(args[0])
	if err != nil {
		return err
	}

	written, err := writeDocument(cmd.OutOrStdout(), result.Document, dumpOutput, dumpFormat)
	if err != nil {
		return err
	}
	if err := storeSnapshot(cmd.ErrOrStderr(), dumpSnapshot, result.Document); err != nil {
		return err
	}

	state.logger.Info("Saved scardoc",
		"path", written,
		"functions", result.Document.FunctionCount(),
		"enums", len(result.Document.Enums),
		"globals", len(result.Document.Globals),
		"skipped", result.Skipped,
		"duration", time.Since(start).Milliseconds(),
	)
	return nil
}
