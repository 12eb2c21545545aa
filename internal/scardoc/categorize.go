package scardoc

import (
	"cmp"
	"slices"
	"strings"
)

// OtherCategory collects functions whose name yields no key and that carry no groups.
const OtherCategory = "Other"

// CategoryKey derives the category of a function: the name prefix before the
// first '_', else before the first ':', else the first group, else "Other".
func CategoryKey(f *FunctionDoc) string {
	if prefix, _, ok := strings.Cut(f.Name, "_"); ok {
		return prefix
	}
	if prefix, _, ok := strings.Cut(f.Name, ":"); ok {
		return prefix
	}
	if len(f.Groups) > 0 {
		return f.Groups[0]
	}
	return OtherCategory
}

// Categorize partitions funcs into categories. Categories are sorted by name;
// functions keep their input order inside a category. Empty categories never
// appear in the result.
func Categorize(funcs []FunctionDoc) []Category {
	index := make(map[string]int)
	var categories []Category
	for i := range funcs {
		key := CategoryKey(&funcs[i])
		pos, ok := index[key]
		if !ok {
			pos = len(categories)
			index[key] = pos
			categories = append(categories, Category{Name: key})
		}
		categories[pos].Functions = append(categories[pos].Functions, funcs[i])
	}
	slices.SortStableFunc(categories, func(a, b Category) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return categories
}

// Sort orders the document deterministically: categories, functions, enums
// and globals by name. Enum values keep their stored order.
func (d *Document) Sort() {
	if d == nil {
		return
	}
	slices.SortStableFunc(d.Categories, func(a, b Category) int {
		return cmp.Compare(a.Name, b.Name)
	})
	for i := range d.Categories {
		slices.SortStableFunc(d.Categories[i].Functions, func(a, b FunctionDoc) int {
			return cmp.Compare(a.Name, b.Name)
		})
	}
	slices.SortStableFunc(d.Enums, func(a, b EnumDef) int {
		return cmp.Compare(a.Name, b.Name)
	})
	slices.SortStableFunc(d.Globals, func(a, b GlobalDef) int {
		return cmp.Compare(a.Name, b.Name)
	})
}
