// Package annotation extracts function documentation from annotated script
// sources. A doc block is a run of marker-prefixed comment lines that
// immediately precedes a function declaration; any other line in between,
// blank lines included, discards the block.
package annotation

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"scardoc/internal/errors"
	"scardoc/internal/scardoc"
)

// DefaultMarkerPrefix starts every doc-comment line.
const DefaultMarkerPrefix = "--? "

const declarationKeyword = "function"

// Directive prefixes recognised inside a doc block.
const (
	directiveShortDesc = "@shortdesc"
	directiveExtDesc   = "@extdesc"
	directiveResult    = "@result"
	directiveArgs      = "@args"
)

// Options controls line recognition and error severity.
type Options struct {
	// MarkerPrefix identifies doc-comment lines. Defaults to DefaultMarkerPrefix.
	MarkerPrefix string
	// StrictArgs rejects @args directives with empty entries or a stray ']'
	// and aborts their source unit. Otherwise such entries are kept as parsed.
	StrictArgs bool
}

// Unit is one source file's raw lines, identified by ID.
type Unit struct {
	ID    string
	Lines []string
}

// Diagnostic describes a doc block that was discarded while parsing continued.
type Diagnostic struct {
	Unit     string           `json:"unit"`
	Line     int              `json:"line"`
	Function string           `json:"function,omitempty"`
	Code     errors.ErrorCode `json:"code"`
	Message  string           `json:"message"`
}

// UnitResult holds the functions extracted from one unit.
type UnitResult struct {
	Unit        string                `json:"unit"`
	Functions   []scardoc.FunctionDoc `json:"functions"`
	Diagnostics []Diagnostic          `json:"diagnostics,omitempty"`
}

// Parser turns source units into function records.
type Parser struct {
	opts   Options
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger discards diagnostics output.
func NewParser(opts Options, logger *slog.Logger) *Parser {
	if opts.MarkerPrefix == "" {
		opts.MarkerPrefix = DefaultMarkerPrefix
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{opts: opts, logger: logger}
}

// ParseUnit scans the unit's lines and returns every documented function.
// Recoverable problems are reported as diagnostics; with StrictArgs a
// rejected @args directive aborts the unit with a MALFORMED_ARGUMENTS error.
func (p *Parser) ParseUnit(unit Unit) (*UnitResult, error) {
	result := &UnitResult{Unit: unit.ID}
	var pending []string

	for i, line := range unit.Lines {
		lineNum := i + 1

		if strings.HasPrefix(line, p.opts.MarkerPrefix) {
			pending = append(pending, strings.TrimSpace(strings.TrimPrefix(line, p.opts.MarkerPrefix)))
			continue
		}

		decl := strings.TrimSpace(line)
		if !strings.HasPrefix(decl, declarationKeyword) {
			pending = pending[:0]
			continue
		}
		if len(pending) == 0 {
			continue
		}

		fn, err := p.buildFunction(decl, pending)
		pending = pending[:0]
		if err != nil {
			diag, fatal := p.classify(unit.ID, lineNum, decl, err)
			if fatal {
				return nil, errors.NewDocError(errors.MalformedArguments,
					fmt.Sprintf("%s:%d: aborting unit", unit.ID, lineNum), err)
			}
			p.logger.Warn("Discarding doc block",
				"unit", diag.Unit,
				"line", diag.Line,
				"code", string(diag.Code),
				"error", diag.Message,
			)
			result.Diagnostics = append(result.Diagnostics, diag)
			continue
		}

		fn.SourceOrigin = scardoc.String(unit.ID)
		result.Functions = append(result.Functions, fn)
	}

	return result, nil
}

func (p *Parser) classify(unitID string, lineNum int, decl string, err error) (Diagnostic, bool) {
	diag := Diagnostic{Unit: unitID, Line: lineNum, Message: err.Error()}
	var argsErr *ArgsError
	if stderrors.As(err, &argsErr) {
		diag.Code = errors.MalformedArguments
		diag.Function, _ = FunctionName(decl)
		return diag, true
	}
	diag.Code = errors.CodeOf(err)
	if diag.Code == "" {
		diag.Code = errors.InternalError
	}
	return diag, false
}

// buildFunction interprets the directives of a doc block for one declaration.
func (p *Parser) buildFunction(decl string, block []string) (scardoc.FunctionDoc, error) {
	name, ok := FunctionName(decl)
	if !ok {
		return scardoc.FunctionDoc{}, errors.Errorf(errors.MalformedDeclaration,
			"expected function name in %q", decl)
	}

	fn := scardoc.FunctionDoc{Name: name}
	extended := false
	for _, line := range block {
		switch {
		case strings.HasPrefix(line, directiveShortDesc):
			fn.ShortDescription = scardoc.String(directiveText(line, directiveShortDesc))
			extended = false
		case strings.HasPrefix(line, directiveExtDesc):
			if text := directiveText(line, directiveExtDesc); text != "" {
				fn.ExtendedDescription = append(fn.ExtendedDescription, text)
			}
			extended = true
		case strings.HasPrefix(line, directiveResult):
			fn.ReturnType = scardoc.String(directiveText(line, directiveResult))
			extended = false
		case strings.HasPrefix(line, directiveArgs):
			text := directiveText(line, directiveArgs)
			if p.opts.StrictArgs {
				if err := CheckArgs(text); err != nil {
					return scardoc.FunctionDoc{}, err
				}
			}
			fn.Parameters = append(fn.Parameters, ParseArgs(text)...)
			extended = false
		case extended:
			fn.ExtendedDescription = append(fn.ExtendedDescription, line)
		}
	}
	return fn, nil
}

func directiveText(line, directive string) string {
	return strings.TrimSpace(line[len(directive):])
}

// FunctionName extracts the name between the first space and the first '('
// of a declaration line. Anonymous declarations such as "function(a, b)"
// have no name.
func FunctionName(decl string) (string, bool) {
	space := strings.IndexByte(decl, ' ')
	paren := strings.IndexByte(decl, '(')
	if space < 0 || paren < 0 || space+1 >= paren {
		return "", false
	}
	name := strings.TrimSpace(decl[space+1 : paren])
	if name == "" {
		return "", false
	}
	return name, true
}
