package annotation

import (
	"fmt"
	"strings"

	"scardoc/internal/scardoc"
)

// variadicToken documents a trailing variable argument list.
const variadicToken = "..."

// ArgsError reports an @args directive that parsed only through the lenient
// rules: an empty entry or a ']' with no preceding '['. Such directives are
// accepted as written unless strict checking is enabled.
type ArgsError struct {
	Text   string
	Reason string
}

func (e *ArgsError) Error() string {
	return fmt.Sprintf("failed to parse arguments directive '%s': %s", e.Text, e.Reason)
}

// ParseArgs parses the text of an @args directive into ordered parameters.
//
// Text before the first '[' is the mandatory section; the remainder, minus a
// leading comma and any trailing ']', is the optional section. Entries are
// "Type name", a bare type (named argN by a counter running across both
// sections) or "..." (name "...", type Any). Every entry yields a parameter,
// so an empty entry becomes an untyped argN. Empty text yields no parameters.
func ParseArgs(text string) []scardoc.Parameter {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	mandatory, optional, hasOptional := splitSections(text)
	counter := 0
	params := parseSection(mandatory, true, &counter)
	if hasOptional {
		params = append(params, parseSection(optional, false, &counter)...)
	}
	return params
}

// CheckArgs reports the first entry of an @args directive that ParseArgs
// would only accept leniently.
func CheckArgs(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	mandatory, optional, hasOptional := splitSections(text)
	if strings.Contains(mandatory, "]") {
		return &ArgsError{Text: text, Reason: "']' before any '['"}
	}
	sections := []string{mandatory}
	if hasOptional {
		sections = append(sections, optional)
	}
	position := 0
	for _, section := range sections {
		if strings.TrimSpace(section) == "" {
			continue
		}
		for _, raw := range strings.Split(section, ",") {
			position++
			if strings.TrimSpace(raw) == "" {
				return &ArgsError{Text: text, Reason: fmt.Sprintf("empty entry at position %d", position)}
			}
		}
	}
	return nil
}

func splitSections(text string) (mandatory, optional string, hasOptional bool) {
	idx := strings.IndexByte(text, '[')
	if idx < 0 {
		return text, "", false
	}
	mandatory = strings.TrimRight(text[:idx], " \t")
	mandatory = strings.TrimSuffix(mandatory, ",")
	optional = strings.TrimRight(text[idx+1:], "]")
	optional = strings.TrimPrefix(optional, ",")
	return mandatory, optional, true
}

func parseSection(section string, required bool, counter *int) []scardoc.Parameter {
	if strings.TrimSpace(section) == "" {
		return nil
	}

	entries := strings.Split(section, ",")
	params := make([]scardoc.Parameter, 0, len(entries))
	for _, raw := range entries {
		*counter++
		params = append(params, parseEntry(strings.TrimSpace(raw), required, *counter))
	}
	return params
}

func parseEntry(entry string, required bool, position int) scardoc.Parameter {
	if typ, name, ok := strings.Cut(entry, " "); ok {
		return scardoc.Parameter{Name: strings.TrimSpace(name), Type: typ, Required: required}
	}
	if entry == variadicToken {
		return scardoc.Parameter{Name: variadicToken, Type: "Any", Required: required}
	}
	return scardoc.Parameter{Name: fmt.Sprintf("arg%d", position), Type: entry, Required: required}
}
