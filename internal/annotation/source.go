package annotation

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"scardoc/internal/errors"
	"scardoc/internal/paths"
	"scardoc/internal/scardoc"
)

// maxLineSize bounds a single source line.
const maxLineSize = 1024 * 1024

// SourceOptions selects which files under a root are source units.
type SourceOptions struct {
	Extensions []string // e.g. ".scar"; matched case-insensitively
	Exclude    []string // directory names that are not descended into
}

// CollectUnits walks root and returns matching file paths in lexical order.
func CollectUnits(root string, opts SourceOptions) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && slices.Contains(opts.Exclude, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && hasExtension(path, opts.Extensions) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewDocError(errors.UnreadableInput,
			fmt.Sprintf("failed to walk %s", root), err)
	}
	slices.Sort(paths)
	return paths, nil
}

func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// ReadUnit reads a file into a Unit with the given identifier.
func ReadUnit(path, id string) (Unit, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return Unit{}, err
	}
	return Unit{ID: id, Lines: lines}, nil
}

// ReadLines reads a text file line by line with carriage returns stripped.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDocError(errors.UnreadableInput,
			fmt.Sprintf("file %s failed to open for reading", path), err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewDocError(errors.UnreadableInput,
			fmt.Sprintf("failed to read line of %s", path), err)
	}
	return lines, nil
}

// UnitFailure records a unit that could not be read or parsed.
type UnitFailure struct {
	Unit string `json:"unit"`
	Err  error  `json:"-"`
}

// GenerateResult is the outcome of parsing a set of units into one document.
type GenerateResult struct {
	Document    *scardoc.Document
	Units       int
	Diagnostics []Diagnostic
	Failures    []UnitFailure
}

// Generate parses every path and categorizes all extracted functions.
// Unit IDs are the paths relative to root with forward slashes. A failing
// unit is recorded and skipped without affecting its siblings.
func (p *Parser) Generate(root string, paths []string) *GenerateResult {
	result := &GenerateResult{}
	index := make(map[string]int)
	var funcs []scardoc.FunctionDoc

	for _, path := range paths {
		id := UnitID(root, path)
		unit, err := ReadUnit(path, id)
		if err == nil {
			var ur *UnitResult
			ur, err = p.ParseUnit(unit)
			if err == nil {
				result.Units++
				result.Diagnostics = append(result.Diagnostics, ur.Diagnostics...)
				if len(ur.Functions) > 0 {
					p.logger.Info("Read scar file", "unit", id, "functions", len(ur.Functions))
				} else {
					p.logger.Debug("Read scar file", "unit", id, "functions", 0)
				}
				for _, fn := range ur.Functions {
					if pos, dup := index[fn.Name]; dup {
						p.logger.Warn("Duplicate function definition",
							"function", fn.Name,
							"previous", scardoc.Deref(funcs[pos].SourceOrigin),
							"unit", id,
						)
						funcs[pos] = fn
						continue
					}
					index[fn.Name] = len(funcs)
					funcs = append(funcs, fn)
				}
				continue
			}
		}
		p.logger.Error("Failed reading scar file", "unit", id, "error", err)
		result.Failures = append(result.Failures, UnitFailure{Unit: id, Err: err})
	}

	result.Document = &scardoc.Document{Categories: scardoc.Categorize(funcs)}
	return result
}

// UnitID names path relative to root with forward slashes. A root that is
// the file itself gives its base name; paths outside root keep their full
// path.
func UnitID(root, path string) string {
	return paths.Relative(root, path)
}
