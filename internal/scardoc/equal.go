package scardoc

import "slices"

func optEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Equal compares name, type, description and required flag.
func (p Parameter) Equal(o Parameter) bool {
	return p.Name == o.Name && p.Type == o.Type &&
		optEqual(p.Description, o.Description) && p.Required == o.Required
}

// Equal reports whether every field of f matches o. Parameters are compared
// element-wise and groups as ordered sequences.
func (f *FunctionDoc) Equal(o *FunctionDoc) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Name == o.Name &&
		optEqual(f.ShortDescription, o.ShortDescription) &&
		slices.Equal(f.ExtendedDescription, o.ExtendedDescription) &&
		optEqual(f.Example, o.Example) &&
		optEqual(f.ReturnType, o.ReturnType) &&
		optEqual(f.ReturnDescription, o.ReturnDescription) &&
		optEqual(f.SourceOrigin, o.SourceOrigin) &&
		slices.Equal(f.Groups, o.Groups) &&
		slices.EqualFunc(f.Parameters, o.Parameters, Parameter.Equal)
}

// Has reports whether the enum holds a value with the same name and value.
func (e *EnumDef) Has(v EnumValue) bool {
	return slices.ContainsFunc(e.Values, func(x EnumValue) bool {
		return x.Name == v.Name && optEqual(x.Value, v.Value)
	})
}

// Equal treats values as an unordered collection: same name, same number of
// values, and every value of e present in o.
func (e *EnumDef) Equal(o *EnumDef) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Name != o.Name || len(e.Values) != len(o.Values) {
		return false
	}
	for _, v := range e.Values {
		if !o.Has(v) {
			return false
		}
	}
	return true
}

// Equal compares all four fields.
func (g *GlobalDef) Equal(o *GlobalDef) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.Name == o.Name && optEqual(g.Value, o.Value) &&
		optEqual(g.Description, o.Description) && optEqual(g.Type, o.Type)
}

func cloneOpt(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

// Clone returns a deep copy.
func (p Parameter) Clone() Parameter {
	p.Description = cloneOpt(p.Description)
	return p
}

// Clone returns a deep copy of the function record.
func (f FunctionDoc) Clone() FunctionDoc {
	c := f
	c.ShortDescription = cloneOpt(f.ShortDescription)
	c.Example = cloneOpt(f.Example)
	c.ReturnType = cloneOpt(f.ReturnType)
	c.ReturnDescription = cloneOpt(f.ReturnDescription)
	c.SourceOrigin = cloneOpt(f.SourceOrigin)
	c.ExtendedDescription = slices.Clone(f.ExtendedDescription)
	c.Groups = slices.Clone(f.Groups)
	if f.Parameters != nil {
		c.Parameters = make([]Parameter, len(f.Parameters))
		for i, p := range f.Parameters {
			c.Parameters[i] = p.Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the enum.
func (e EnumDef) Clone() EnumDef {
	c := EnumDef{Name: e.Name}
	if e.Values != nil {
		c.Values = make([]EnumValue, len(e.Values))
		for i, v := range e.Values {
			c.Values[i] = EnumValue{Name: v.Name, Value: cloneOpt(v.Value)}
		}
	}
	return c
}

// Clone returns a deep copy of the global.
func (g GlobalDef) Clone() GlobalDef {
	return GlobalDef{
		Name:        g.Name,
		Value:       cloneOpt(g.Value),
		Description: cloneOpt(g.Description),
		Type:        cloneOpt(g.Type),
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := &Document{}
	for _, cat := range d.Categories {
		nc := Category{Name: cat.Name, Functions: make([]FunctionDoc, len(cat.Functions))}
		for i, f := range cat.Functions {
			nc.Functions[i] = f.Clone()
		}
		c.Categories = append(c.Categories, nc)
	}
	for _, e := range d.Enums {
		c.Enums = append(c.Enums, e.Clone())
	}
	for _, g := range d.Globals {
		c.Globals = append(c.Globals, g.Clone())
	}
	return c
}
