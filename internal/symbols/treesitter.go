//go:build cgo

package symbols

import (
	"context"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

// declarationTypes are the Lua grammar nodes for named function statements.
var declarationTypes = map[string]bool{
	"function_declaration":       true,
	"function_statement":         true,
	"local_function":             true,
	"local_function_declaration": true,
}

// Extractor extracts declarations using tree-sitter.
type Extractor struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewExtractor creates a new declaration extractor.
func NewExtractor() *Extractor {
	p := sitter.NewParser()
	p.SetLanguage(lua.GetLanguage())
	return &Extractor{parser: p}
}

// IsAvailable returns whether tree-sitter parsing is compiled in.
func IsAvailable() bool {
	return true
}

// ExtractSource parses src and returns its named function declarations in
// source order. Anonymous function expressions are ignored.
func (e *Extractor) ExtractSource(ctx context.Context, id string, src []byte) ([]Declaration, error) {
	e.mu.Lock()
	tree, err := e.parser.ParseCtx(ctx, nil, src)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var decls []Declaration
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if isDeclaration(node) {
			if d, ok := declaration(node, src, id); ok && !repeats(decls, d) {
				decls = append(decls, d)
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())
	return decls, nil
}

// repeats reports whether d restates the previous declaration, as happens
// when a grammar nests a named function node inside another.
func repeats(decls []Declaration, d Declaration) bool {
	if len(decls) == 0 {
		return false
	}
	last := decls[len(decls)-1]
	return last.Line == d.Line && last.Name == d.Name
}

func isDeclaration(node *sitter.Node) bool {
	t := node.Type()
	if declarationTypes[t] {
		return true
	}
	// Grammar versions differ in naming; any named function node that is not
	// a call counts.
	return strings.Contains(t, "function") && !strings.Contains(t, "call") &&
		node.ChildByFieldName("name") != nil
}

func declaration(node *sitter.Node, src []byte, id string) (Declaration, bool) {
	// Statement nodes can start at the end of the previous token, so the
	// declaration begins at the first non-space byte.
	content := node.Content(src)
	trimmed := strings.TrimLeft(content, " \t\r\n")
	row := int(node.StartPoint().Row) + strings.Count(content[:len(content)-len(trimmed)], "\n")
	firstLine, _, _ := strings.Cut(trimmed, "\n")
	lineName, local, lineOK := declarationName(firstLine)

	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = strings.TrimSpace(n.Content(src))
	}
	if name == "" {
		if !lineOK {
			return Declaration{}, false
		}
		name = lineName
	}
	if strings.HasPrefix(trimmed, localKeyword) {
		local = true
	}

	return Declaration{
		Name:   name,
		Unit:   id,
		Line:   row + 1,
		Local:  local,
		Source: "treesitter",
	}, true
}
