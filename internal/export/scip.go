// Package export converts documentation documents into code-index formats
// consumed by other tools.
package export

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"scardoc/internal/scardoc"
)

const (
	// GeneratedDocument holds functions that carry no source origin.
	GeneratedDocument = "scardoc.generated"

	toolName     = "scardoc"
	symbolScheme = "scardoc"
	language     = "lua"
)

// ExportOptions configures ToSCIP.
type ExportOptions struct {
	ProjectRoot string // URI written to the index metadata
	ToolVersion string
}

// ToSCIP builds a SCIP index from doc. Each source origin becomes one SCIP
// document listing its functions; enums and globals have no origin and are
// emitted as external symbols.
func ToSCIP(doc *scardoc.Document, opts ExportOptions) *scip.Index {
	idx := &scip.Index{
		Metadata: &scip.Metadata{
			Version: scip.ProtocolVersion_UnspecifiedProtocolVersion,
			ToolInfo: &scip.ToolInfo{
				Name:    toolName,
				Version: opts.ToolVersion,
			},
			ProjectRoot:          opts.ProjectRoot,
			TextDocumentEncoding: scip.TextEncoding_UTF8,
		},
	}
	if doc == nil {
		return idx
	}

	byOrigin := make(map[string]*scip.Document)
	for _, c := range doc.Categories {
		for _, fn := range c.Functions {
			origin := scardoc.Deref(fn.SourceOrigin)
			if origin == "" {
				origin = GeneratedDocument
			}
			d, ok := byOrigin[origin]
			if !ok {
				d = &scip.Document{Language: language, RelativePath: origin}
				byOrigin[origin] = d
			}
			d.Symbols = append(d.Symbols, functionSymbol(c.Name, fn))
		}
	}
	for _, d := range byOrigin {
		idx.Documents = append(idx.Documents, d)
	}
	slices.SortFunc(idx.Documents, func(a, b *scip.Document) int {
		return cmp.Compare(a.RelativePath, b.RelativePath)
	})

	for _, e := range doc.Enums {
		idx.ExternalSymbols = append(idx.ExternalSymbols, enumSymbols(e)...)
	}
	for _, g := range doc.Globals {
		idx.ExternalSymbols = append(idx.ExternalSymbols, globalSymbol(g))
	}
	return idx
}

// WriteSCIP marshals idx in the SCIP protobuf encoding.
func WriteSCIP(w io.Writer, idx *scip.Index) error {
	data, err := proto.Marshal(idx)
	if err != nil {
		return fmt.Errorf("failed to marshal SCIP index: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// SymbolID returns the SCIP symbol string for a sequence of descriptors. An
// empty package section is written as ". . .".
func SymbolID(descriptors ...string) string {
	return symbolScheme + " . . . " + strings.Join(descriptors, "")
}

func namespace(name string) string { return escapeName(name) + "/" }
func term(name string) string      { return escapeName(name) + "." }
func method(name string) string    { return escapeName(name) + "()." }

// escapeName backtick-quotes names containing characters outside the SCIP
// simple identifier set, such as the ':' of method-style declarations.
func escapeName(name string) string {
	simple := name != ""
	for _, r := range name {
		if !(r == '_' || r == '+' || r == '-' || r == '$' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			simple = false
			break
		}
	}
	if simple {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func functionSymbol(category string, fn scardoc.FunctionDoc) *scip.SymbolInformation {
	return &scip.SymbolInformation{
		Symbol:        SymbolID(namespace(category), method(fn.Name)),
		DisplayName:   fn.Name,
		Kind:          scip.SymbolInformation_Function,
		Documentation: functionDocumentation(fn),
	}
}

func functionDocumentation(fn scardoc.FunctionDoc) []string {
	names := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		names[i] = p.Name
	}
	docs := []string{fmt.Sprintf("```%s\nfunction %s(%s)\n```", language, fn.Name, strings.Join(names, ", "))}

	var b strings.Builder
	if s := scardoc.Deref(fn.ShortDescription); s != "" {
		b.WriteString(s)
	}
	for _, line := range fn.ExtendedDescription {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(line)
	}
	if len(fn.Parameters) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("**Parameters**\n")
		for _, p := range fn.Parameters {
			fmt.Fprintf(&b, "\n- `%s` (%s", p.Name, p.Type)
			if !p.Required {
				b.WriteString(", optional")
			}
			b.WriteString(")")
			if d := scardoc.Deref(p.Description); d != "" {
				b.WriteString(": " + d)
			}
		}
	}
	if rt := scardoc.Deref(fn.ReturnType); rt != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "**Returns** `%s`", rt)
		if d := scardoc.Deref(fn.ReturnDescription); d != "" {
			b.WriteString(": " + d)
		}
	}
	if ex := scardoc.Deref(fn.Example); ex != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "**Example**\n\n```%s\n%s\n```", language, ex)
	}
	if b.Len() > 0 {
		docs = append(docs, b.String())
	}
	return docs
}

func enumSymbols(e scardoc.EnumDef) []*scip.SymbolInformation {
	syms := []*scip.SymbolInformation{{
		Symbol:      SymbolID(term(e.Name)),
		DisplayName: e.Name,
		Kind:        scip.SymbolInformation_Enum,
	}}
	for _, v := range e.Values {
		info := &scip.SymbolInformation{
			Symbol:      SymbolID(namespace(e.Name), term(v.Name)),
			DisplayName: v.Name,
			Kind:        scip.SymbolInformation_EnumMember,
		}
		if v.Value != nil {
			info.Documentation = []string{fmt.Sprintf("`%s = %s`", v.Name, *v.Value)}
		}
		syms = append(syms, info)
	}
	return syms
}

func globalSymbol(g scardoc.GlobalDef) *scip.SymbolInformation {
	info := &scip.SymbolInformation{
		Symbol:      SymbolID(term(g.Name)),
		DisplayName: g.Name,
		Kind:        scip.SymbolInformation_Variable,
	}
	var parts []string
	if g.Value != nil {
		parts = append(parts, fmt.Sprintf("`%s = %s`", g.Name, *g.Value))
	}
	if t := scardoc.Deref(g.Type); t != "" {
		parts = append(parts, "Type: "+t)
	}
	if d := scardoc.Deref(g.Description); d != "" {
		parts = append(parts, d)
	}
	if len(parts) > 0 {
		info.Documentation = []string{strings.Join(parts, "\n\n")}
	}
	return info
}
