// Package coverage compares the functions declared in source units with the
// functions a canonical document describes.
package coverage

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"scardoc/internal/annotation"
	"scardoc/internal/scardoc"
	"scardoc/internal/symbols"
)

// Options controls Analyze.
type Options struct {
	IncludeLocal bool // count local functions as declared API
}

// UnitCoverage is the per-unit breakdown.
type UnitCoverage struct {
	Unit            string  `json:"unit"`
	Declared        int     `json:"declared"`
	Documented      int     `json:"documented"`
	CoveragePercent float64 `json:"coveragePercent"`
}

// Report is the coverage of one document against a set of declarations.
type Report struct {
	TotalDeclared   int                   `json:"totalDeclared"`
	Documented      int                   `json:"documented"`
	CoveragePercent float64               `json:"coveragePercent"`
	Undocumented    []symbols.Declaration `json:"undocumented,omitempty"`
	Orphaned        []string              `json:"orphaned,omitempty"` // documented but never declared
	ByUnit          []UnitCoverage        `json:"byUnit,omitempty"`
}

// Analyze matches declarations to documented functions by name. A name
// declared in several units counts once per declaration.
func Analyze(decls []symbols.Declaration, doc *scardoc.Document, opts Options) *Report {
	documented := make(map[string]bool)
	for _, fn := range doc.Functions() {
		documented[fn.Name] = true
	}

	report := &Report{}
	declared := make(map[string]bool)
	units := make(map[string]*UnitCoverage)

	for _, d := range decls {
		if d.Local && !opts.IncludeLocal {
			continue
		}
		declared[d.Name] = true
		report.TotalDeclared++

		u, ok := units[d.Unit]
		if !ok {
			u = &UnitCoverage{Unit: d.Unit}
			units[d.Unit] = u
		}
		u.Declared++

		if documented[d.Name] {
			report.Documented++
			u.Documented++
		} else {
			report.Undocumented = append(report.Undocumented, d)
		}
	}

	for _, fn := range doc.Functions() {
		if !declared[fn.Name] {
			report.Orphaned = append(report.Orphaned, fn.Name)
		}
	}
	slices.Sort(report.Orphaned)

	for _, u := range units {
		u.CoveragePercent = percent(u.Documented, u.Declared)
		report.ByUnit = append(report.ByUnit, *u)
	}
	slices.SortFunc(report.ByUnit, func(a, b UnitCoverage) int { return cmp.Compare(a.Unit, b.Unit) })

	report.CoveragePercent = percent(report.Documented, report.TotalDeclared)
	return report
}

func percent(n, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(n) / float64(total) * 100
}

// Collect extracts declarations from every path, naming units relative to
// root. Unreadable files are logged and skipped.
func Collect(ctx context.Context, e *symbols.Extractor, root string, paths []string, logger *slog.Logger) ([]symbols.Declaration, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var all []symbols.Declaration
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := annotation.UnitID(root, path)
		decls, err := e.ExtractFile(ctx, path, id)
		if err != nil {
			logger.Warn("Failed extracting declarations", "unit", id, "error", err)
			continue
		}
		logger.Debug("Extracted declarations", "unit", id, "count", len(decls))
		all = append(all, decls...)
	}
	return all, nil
}
