package scardoc

import "encoding/json"

// Older generators wrote description_short, description_extended,
// source_file and arg_* names. Both spellings decode; the current names win
// when a record carries both.

type parameterWire struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	Required    *bool   `json:"required"`

	ArgName        *string `json:"arg_name"`
	ArgType        *string `json:"arg_type"`
	ArgDescription *string `json:"arg_description"`
	ArgRequired    *bool   `json:"arg_required"`
}

// UnmarshalJSON accepts both the current and the legacy parameter field names.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	var w parameterWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = Parameter{
		Name:        Deref(firstOpt(w.Name, w.ArgName)),
		Type:        Deref(firstOpt(w.Type, w.ArgType)),
		Description: firstOpt(w.Description, w.ArgDescription),
	}
	switch {
	case w.Required != nil:
		p.Required = *w.Required
	case w.ArgRequired != nil:
		p.Required = *w.ArgRequired
	}
	return nil
}

type functionWire struct {
	Name                string      `json:"name"`
	ShortDescription    *string     `json:"short_description"`
	ExtendedDescription []string    `json:"extended_description"`
	Example             *string     `json:"example"`
	ReturnType          *string     `json:"return_type"`
	ReturnDescription   *string     `json:"return_description"`
	Parameters          []Parameter `json:"parameters"`
	SourceOrigin        *string     `json:"source_origin"`
	Groups              []string    `json:"groups"`

	DescriptionShort    *string  `json:"description_short"`
	DescriptionExtended []string `json:"description_extended"`
	SourceFile          *string  `json:"source_file"`
}

// UnmarshalJSON accepts both the current and the legacy function field names.
func (f *FunctionDoc) UnmarshalJSON(data []byte) error {
	var w functionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ext := w.ExtendedDescription
	if ext == nil {
		ext = w.DescriptionExtended
	}
	*f = FunctionDoc{
		Name:                w.Name,
		ShortDescription:    firstOpt(w.ShortDescription, w.DescriptionShort),
		ExtendedDescription: ext,
		Example:             w.Example,
		ReturnType:          w.ReturnType,
		ReturnDescription:   w.ReturnDescription,
		Parameters:          w.Parameters,
		SourceOrigin:        firstOpt(w.SourceOrigin, w.SourceFile),
		Groups:              w.Groups,
	}
	return nil
}

func firstOpt(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}
