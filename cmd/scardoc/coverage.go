package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"scardoc/internal/annotation"
	"scardoc/internal/coverage"
	"scardoc/internal/output"
	"scardoc/internal/scardoc"
	"scardoc/internal/symbols"
)

var (
	coverageFormat       string
	coverageDoc          string
	coverageSnapshot     string
	coverageFailUnder    float64
	coverageIncludeLocal bool
	coverageLimit        int
)

var coverageCmd = &cobra.Command{
	Use:   "coverage <dir>",
	Short: "Report which declared functions are documented",
	Long: `Compare the functions declared in the sources under <dir> with a document.

The document is --doc, a --snapshot, or by default the document generated
from <dir> itself. Declarations are found with tree-sitter when the binary
is built with cgo, otherwise with a line scanner.

Examples:
  scardoc coverage scar/
  scardoc coverage scar/ --doc scardoc.json --format human
  scardoc coverage scar/ --fail-under 80`,
	Args: cobra.ExactArgs(1),
	RunE: runCoverage,
}

func init() {
	coverageCmd.Flags().StringVar(&coverageFormat, "format", "json", "Output format (json, human)")
	coverageCmd.Flags().StringVar(&coverageDoc, "doc", "", "Document file to check against")
	coverageCmd.Flags().StringVar(&coverageSnapshot, "snapshot", "", "Snapshot ID or prefix to check against")
	coverageCmd.Flags().Float64Var(&coverageFailUnder, "fail-under", 0, "Exit with status 2 when coverage is below this percentage")
	coverageCmd.Flags().BoolVar(&coverageIncludeLocal, "include-local", false, "Count local functions")
	coverageCmd.Flags().IntVar(&coverageLimit, "limit", 20, "Undocumented functions listed in human output")
	rootCmd.AddCommand(coverageCmd)
}

func runCoverage(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := newContext()
	defer cancel()

	files, err := annotation.CollectUnits(dir, annotation.SourceOptions{
		Extensions: state.cfg.Source.Extensions,
		Exclude:    state.cfg.Source.Exclude,
	})
	if err != nil {
		return err
	}

	doc, err := coverageDocument(dir, files)
	if err != nil {
		return err
	}

	if !symbols.IsAvailable() {
		state.logger.Debug("tree-sitter not compiled in, scanning lines")
	}
	decls, err := coverage.Collect(ctx, symbols.NewExtractor(), dir, files, state.logger)
	if err != nil {
		return err
	}

	report := coverage.Analyze(decls, doc, coverage.Options{IncludeLocal: coverageIncludeLocal})

	switch coverageFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	case "human":
		writeCoverageHuman(cmd.OutOrStdout(), report, coverageLimit)
	default:
		return fmt.Errorf("unsupported format: %s", coverageFormat)
	}

	if coverageFailUnder > 0 && report.CoveragePercent < coverageFailUnder {
		return &exitError{
			code: 2,
			err:  fmt.Errorf("coverage %.1f%% is below %.1f%%", report.CoveragePercent, coverageFailUnder),
		}
	}
	return nil
}

func coverageDocument(dir string, files []string) (*scardoc.Document, error) {
	switch {
	case coverageDoc != "":
		return output.ReadFile(coverageDoc)
	case coverageSnapshot != "":
		store, closeStore, err := openStore()
		if err != nil {
			return nil, err
		}
		defer closeStore()
		_, doc, err := store.Get(coverageSnapshot)
		return doc, err
	default:
		parser := annotation.NewParser(annotation.Options{
			MarkerPrefix: state.cfg.Source.MarkerPrefix,
			StrictArgs:   state.cfg.Parser.StrictArgs,
		}, state.logger)
		return parser.Generate(dir, files).Document, nil
	}
}

func writeCoverageHuman(w io.Writer, r *coverage.Report, limit int) {
	var b strings.Builder
	b.WriteString("Documentation Coverage\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Declared:   %d\n", r.TotalDeclared)
	fmt.Fprintf(&b, "Documented: %d\n", r.Documented)
	fmt.Fprintf(&b, "Coverage:   %.1f%%\n", r.CoveragePercent)

	if len(r.ByUnit) > 0 {
		b.WriteString("\nBy file:\n")
		for _, u := range r.ByUnit {
			fmt.Fprintf(&b, "  %6.1f%%  %3d/%-3d  %s\n", u.CoveragePercent, u.Documented, u.Declared, u.Unit)
		}
	}

	if len(r.Undocumented) > 0 {
		b.WriteString("\nUndocumented:\n")
		for i, d := range r.Undocumented {
			if limit > 0 && i == limit {
				fmt.Fprintf(&b, "  ... and %d more\n", len(r.Undocumented)-limit)
				break
			}
			fmt.Fprintf(&b, "  %s:%d  %s\n", d.Unit, d.Line, d.Name)
		}
	}

	if len(r.Orphaned) > 0 {
		b.WriteString("\nDocumented but not declared:\n")
		for _, name := range r.Orphaned {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}
	_, _ = io.WriteString(w, b.String())
}
