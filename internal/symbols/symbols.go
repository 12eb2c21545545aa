// Package symbols extracts named function declarations from Lua/SCAR source.
// With cgo the source is parsed by tree-sitter; without it a line scanner
// applies the same naming rule as the annotation parser.
package symbols

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"strings"

	"scardoc/internal/annotation"
)

// Declaration is one named function found in a source unit.
type Declaration struct {
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	Line   int    `json:"line"` // 1-indexed
	Local  bool   `json:"local,omitempty"`
	Source string `json:"source"` // "treesitter" or "scan"
}

const localKeyword = "local "

// ExtractFile reads path and extracts its declarations under unit id.
func (e *Extractor) ExtractFile(ctx context.Context, path, id string) ([]Declaration, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.ExtractSource(ctx, id, src)
}

// declarationName applies the annotation naming rule to a declaration's
// first line, accepting a leading "local".
func declarationName(line string) (name string, local bool, ok bool) {
	line = strings.TrimSpace(line)
	if rest, found := strings.CutPrefix(line, localKeyword); found {
		line = strings.TrimSpace(rest)
		local = true
	}
	if !strings.HasPrefix(line, "function") {
		return "", false, false
	}
	name, ok = annotation.FunctionName(line)
	return name, local, ok
}

// scanSource is the line-oriented extractor used when tree-sitter is not
// compiled in.
func scanSource(ctx context.Context, id string, src []byte) ([]Declaration, error) {
	var decls []Declaration
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		name, local, ok := declarationName(sc.Text())
		if !ok {
			continue
		}
		decls = append(decls, Declaration{Name: name, Unit: id, Line: line, Local: local, Source: "scan"})
	}
	return decls, sc.Err()
}
