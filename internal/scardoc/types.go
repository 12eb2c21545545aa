// Package scardoc defines the canonical documentation model shared by the
// annotation parser, the dump importer and the reconciliation engine.
// A Document groups functions by category and carries enum and global
// definitions; categories are always derived from the function set.
package scardoc

// Parameter is a single documented function argument.
type Parameter struct {
	Name        string  `json:"name" yaml:"name" toml:"name"`
	Type        string  `json:"type" yaml:"type" toml:"type"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Required    bool    `json:"required" yaml:"required" toml:"required"`
}

// FunctionDoc is the documentation record of one script function.
// Name is the identity key within a Document.
type FunctionDoc struct {
	Name                string      `json:"name" yaml:"name" toml:"name"`
	ShortDescription    *string     `json:"short_description,omitempty" yaml:"short_description,omitempty" toml:"short_description,omitempty"`
	ExtendedDescription []string    `json:"extended_description,omitempty" yaml:"extended_description,omitempty" toml:"extended_description,omitempty"`
	Example             *string     `json:"example,omitempty" yaml:"example,omitempty" toml:"example,omitempty"`
	ReturnType          *string     `json:"return_type,omitempty" yaml:"return_type,omitempty" toml:"return_type,omitempty"`
	ReturnDescription   *string     `json:"return_description,omitempty" yaml:"return_description,omitempty" toml:"return_description,omitempty"`
	Parameters          []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty" toml:"parameters,omitempty"`
	SourceOrigin        *string     `json:"source_origin,omitempty" yaml:"source_origin,omitempty" toml:"source_origin,omitempty"`
	Groups              []string    `json:"groups,omitempty" yaml:"groups,omitempty" toml:"groups,omitempty"`
}

// Category is a derived grouping of functions sharing a name key.
type Category struct {
	Name      string        `json:"category_name" yaml:"category_name" toml:"category_name"`
	Functions []FunctionDoc `json:"category_functions" yaml:"category_functions" toml:"category_functions"`
}

// EnumValue is one member of an enum definition.
type EnumValue struct {
	Name  string  `json:"name" yaml:"name" toml:"name"`
	Value *string `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
}

// EnumDef is a named set of enum values. Value order carries no meaning.
type EnumDef struct {
	Name   string      `json:"name" yaml:"name" toml:"name"`
	Values []EnumValue `json:"values" yaml:"values" toml:"values"`
}

// GlobalDef is a documented global variable or constant.
type GlobalDef struct {
	Name        string  `json:"name" yaml:"name" toml:"name"`
	Value       *string `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Type        *string `json:"global_type,omitempty" yaml:"global_type,omitempty" toml:"global_type,omitempty"`
}

// Document is the canonical unit exchanged between parsers, the merger and
// the outside world. Empty collections are omitted on the wire.
type Document struct {
	Categories []Category  `json:"categories,omitempty" yaml:"categories,omitempty" toml:"categories,omitempty"`
	Enums      []EnumDef   `json:"enums,omitempty" yaml:"enums,omitempty" toml:"enums,omitempty"`
	Globals    []GlobalDef `json:"globals,omitempty" yaml:"globals,omitempty" toml:"globals,omitempty"`
}

// String returns a pointer to s, for populating optional fields.
func String(s string) *string {
	return &s
}

// Deref returns the pointed-to string or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Functions flattens all categories into a single slice in category order.
func (d *Document) Functions() []FunctionDoc {
	if d == nil {
		return nil
	}
	var funcs []FunctionDoc
	for _, c := range d.Categories {
		funcs = append(funcs, c.Functions...)
	}
	return funcs
}

// FunctionCount returns the number of functions across all categories.
func (d *Document) FunctionCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, c := range d.Categories {
		n += len(c.Functions)
	}
	return n
}

// IsEmpty reports whether the document holds no records at all.
func (d *Document) IsEmpty() bool {
	return d == nil || (d.FunctionCount() == 0 && len(d.Enums) == 0 && len(d.Globals) == 0)
}
