// Package merge reconciles canonical documents. Records are keyed by name;
// when both sides carry a record, present incoming fields win and absent
// ones fall back to the base. Categories are always rebuilt from the merged
// function set.
package merge

import (
	"log/slog"

	"scardoc/internal/scardoc"
)

// Counts tallies what happened to one kind of record during a merge.
type Counts struct {
	Introduced int `json:"introduced"`
	Merged     int `json:"merged"`
	Unchanged  int `json:"unchanged"`
}

// Stats reports per-kind merge counts.
type Stats struct {
	Functions Counts `json:"functions"`
	Enums     Counts `json:"enums"`
	Globals   Counts `json:"globals"`
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Functions.add(o.Functions)
	s.Enums.add(o.Enums)
	s.Globals.add(o.Globals)
}

func (c *Counts) add(o Counts) {
	c.Introduced += o.Introduced
	c.Merged += o.Merged
	c.Unchanged += o.Unchanged
}

// Merger merges documents. The zero value is not usable; call New.
type Merger struct {
	logger *slog.Logger
}

// New creates a Merger. A nil logger discards output.
func New(logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Merger{logger: logger}
}

// Merge reconciles incoming into base and returns a new document. Neither
// argument is modified.
func (m *Merger) Merge(base, incoming *scardoc.Document) *scardoc.Document {
	doc, _ := m.MergeWithStats(base, incoming)
	return doc
}

// MergeWithStats is Merge plus per-kind counts.
func (m *Merger) MergeWithStats(base, incoming *scardoc.Document) (*scardoc.Document, Stats) {
	base = base.Clone()
	incoming = incoming.Clone()
	if base == nil {
		base = &scardoc.Document{}
	}
	if incoming == nil {
		incoming = &scardoc.Document{}
	}

	var stats Stats
	funcs := m.mergeFunctions(base.Functions(), incoming.Functions(), &stats.Functions)
	enums := m.mergeEnums(base.Enums, incoming.Enums, &stats.Enums)
	globals := m.mergeGlobals(base.Globals, incoming.Globals, &stats.Globals)

	return &scardoc.Document{
		Categories: scardoc.Categorize(funcs),
		Enums:      enums,
		Globals:    globals,
	}, stats
}

func (m *Merger) mergeFunctions(base, incoming []scardoc.FunctionDoc, c *Counts) []scardoc.FunctionDoc {
	out, index := keyed(base, func(f scardoc.FunctionDoc) string { return f.Name })

	for _, fn := range incoming {
		pos, ok := index[fn.Name]
		if !ok {
			m.logger.Debug("Introducing function", "function", fn.Name)
			index[fn.Name] = len(out)
			out = append(out, fn)
			c.Introduced++
			continue
		}
		existing := &out[pos]
		if existing.Equal(&fn) {
			c.Unchanged++
			continue
		}
		m.logger.Debug("Merging function", "function", fn.Name)
		mergeFunction(existing, &fn)
		c.Merged++
	}
	return out
}

// mergeFunction applies the field rules in place. Groups stay with the base.
func mergeFunction(dst, in *scardoc.FunctionDoc) {
	dst.ShortDescription = coalesce(dst.ShortDescription, in.ShortDescription)
	dst.Example = coalesce(dst.Example, in.Example)
	dst.ReturnDescription = coalesce(dst.ReturnDescription, in.ReturnDescription)
	dst.ReturnType = coalesce(dst.ReturnType, in.ReturnType)
	dst.SourceOrigin = coalesce(dst.SourceOrigin, in.SourceOrigin)
	dst.ExtendedDescription = coalesceSlice(dst.ExtendedDescription, in.ExtendedDescription)
	dst.Parameters = coalesceSlice(dst.Parameters, in.Parameters)
}

func (m *Merger) mergeEnums(base, incoming []scardoc.EnumDef, c *Counts) []scardoc.EnumDef {
	out, index := keyed(base, func(e scardoc.EnumDef) string { return e.Name })

	for _, enum := range incoming {
		pos, ok := index[enum.Name]
		if !ok {
			m.logger.Debug("Introducing enum", "enum", enum.Name)
			index[enum.Name] = len(out)
			out = append(out, enum)
			c.Introduced++
			continue
		}
		existing := &out[pos]
		if existing.Equal(&enum) {
			c.Unchanged++
			continue
		}
		m.logger.Debug("Merging enum", "enum", enum.Name)
		existing.Values = coalesceSlice(existing.Values, enum.Values)
		c.Merged++
	}
	return out
}

func (m *Merger) mergeGlobals(base, incoming []scardoc.GlobalDef, c *Counts) []scardoc.GlobalDef {
	out, index := keyed(base, func(g scardoc.GlobalDef) string { return g.Name })

	for _, global := range incoming {
		pos, ok := index[global.Name]
		if !ok {
			m.logger.Debug("Introducing global", "global", global.Name)
			index[global.Name] = len(out)
			out = append(out, global)
			c.Introduced++
			continue
		}
		existing := &out[pos]
		if existing.Equal(&global) {
			c.Unchanged++
			continue
		}
		m.logger.Debug("Merging global", "global", global.Name)
		existing.Description = coalesce(existing.Description, global.Description)
		existing.Type = coalesce(existing.Type, global.Type)
		existing.Value = coalesce(existing.Value, global.Value)
		c.Merged++
	}
	return out
}

// keyed copies records into a slice and indexes them by key. A repeated key
// keeps its first position and takes the later record.
func keyed[T any](records []T, key func(T) string) ([]T, map[string]int) {
	out := make([]T, 0, len(records))
	index := make(map[string]int, len(records))
	for _, r := range records {
		k := key(r)
		if pos, ok := index[k]; ok {
			out[pos] = r
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out, index
}
