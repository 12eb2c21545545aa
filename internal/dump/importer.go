// Package dump imports the flat-text ScarDoc dump format: bare function
// names, global key=value assignments and encoded enum values, grouped under
// [ScarDoc:Functions], [ScarDoc:Globals] and [ScarDoc:Unknowns] markers.
package dump

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"scardoc/internal/annotation"
	"scardoc/internal/errors"
	"scardoc/internal/scardoc"
)

type mode int

const (
	modeUndefined mode = iota
	modeFunctions
	modeGlobals
	modeUnknowns // enum-like values; the dump calls them unknowns
)

var sectionMarkers = map[string]mode{
	"[scardoc:functions]": modeFunctions,
	"[scardoc:globals]":   modeGlobals,
	"[scardoc:unknowns]":  modeUnknowns,
}

// unknownPattern matches VALUE[...]=EnumName(3): value name, optional
// bracket group, '=', enum name, '(', digits, ')'.
var unknownPattern = regexp.MustCompile(`(\w+)(\[.*?\])?=(\w+)\((\d+)\)`)

// Options controls importer quirks.
type Options struct {
	// DuplicateFirstEnumValue reproduces older dumps in which the first value
	// seen for every enum appears twice.
	DuplicateFirstEnumValue bool
}

// Unknown is one decoded entry of the unknowns section.
type Unknown struct {
	ValueName string
	EnumName  string
	Number    string
}

// Result is the imported document plus counters.
type Result struct {
	Document *scardoc.Document
	Skipped  int // globals without '=' and unknowns not matching the pattern
}

// Importer parses dump files.
type Importer struct {
	opts   Options
	logger *slog.Logger
}

// NewImporter creates an importer. A nil logger discards output.
func NewImporter(opts Options, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{opts: opts, logger: logger}
}

// ImportFile reads and imports a dump file.
func (im *Importer) ImportFile(path string) (*Result, error) {
	lines, err := annotation.ReadLines(path)
	if err != nil {
		return nil, err
	}
	return im.Import(lines)
}

// Import parses dump lines. Content before the first section marker is an
// INVALID_DUMP_SECTION error; blank lines are ignored everywhere.
func (im *Importer) Import(lines []string) (*Result, error) {
	current := modeUndefined
	result := &Result{}

	var funcs []scardoc.FunctionDoc
	var globals []scardoc.GlobalDef
	var unknowns []Unknown

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m, ok := sectionMarkers[strings.ToLower(trimmed)]; ok {
			current = m
			continue
		}

		switch current {
		case modeFunctions:
			funcs = append(funcs, scardoc.FunctionDoc{Name: line})
		case modeGlobals:
			g, ok := ParseGlobal(line)
			if !ok {
				result.Skipped++
				continue
			}
			globals = append(globals, g)
		case modeUnknowns:
			u, ok := ParseUnknown(line)
			if !ok {
				result.Skipped++
				continue
			}
			unknowns = append(unknowns, u)
		default:
			return nil, errors.NewDocError(errors.InvalidDumpSection,
				fmt.Sprintf("line %d precedes any section marker", i+1), nil).
				WithDetails(map[string]interface{}{"line": i + 1, "content": line})
		}
	}

	result.Document = &scardoc.Document{
		Categories: scardoc.Categorize(funcs),
		Enums:      GroupEnums(unknowns, im.opts.DuplicateFirstEnumValue),
		Globals:    globals,
	}
	im.logger.Info("Imported scar dump",
		"functions", len(funcs),
		"globals", len(globals),
		"enums", len(result.Document.Enums),
		"skipped", result.Skipped,
	)
	return result, nil
}

// ParseGlobal splits a line at the first '='. Everything after it, further
// '=' included, is the value.
func ParseGlobal(line string) (scardoc.GlobalDef, bool) {
	name, value, ok := strings.Cut(line, "=")
	if !ok {
		return scardoc.GlobalDef{}, false
	}
	return scardoc.GlobalDef{Name: name, Value: scardoc.String(value)}, true
}

// ParseUnknown decodes the first VALUE[...]=EnumName(N) occurrence in line.
func ParseUnknown(line string) (Unknown, bool) {
	m := unknownPattern.FindStringSubmatch(line)
	if m == nil {
		return Unknown{}, false
	}
	return Unknown{ValueName: m[1], EnumName: m[3], Number: m[4]}, true
}

// GroupEnums collects unknowns into enum definitions, ordered by first
// appearance of each enum name with values in input order.
func GroupEnums(unknowns []Unknown, duplicateFirst bool) []scardoc.EnumDef {
	index := make(map[string]int)
	var enums []scardoc.EnumDef
	for _, u := range unknowns {
		value := scardoc.EnumValue{Name: u.ValueName, Value: scardoc.String(u.Number)}
		pos, ok := index[u.EnumName]
		if !ok {
			pos = len(enums)
			index[u.EnumName] = pos
			enums = append(enums, scardoc.EnumDef{Name: u.EnumName})
			if duplicateFirst {
				enums[pos].Values = append(enums[pos].Values, scardoc.EnumValue{Name: u.ValueName, Value: scardoc.String(u.Number)})
			}
		}
		enums[pos].Values = append(enums[pos].Values, value)
	}
	return enums
}
