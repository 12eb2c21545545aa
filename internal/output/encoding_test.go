package output

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"scardoc/internal/errors"
	"scardoc/internal/scardoc"
	"scardoc/internal/testutil"
)

func sampleDoc() *scardoc.Document {
	s := scardoc.String
	return &scardoc.Document{
		Categories: []scardoc.Category{{
			Name: "Util",
			Functions: []scardoc.FunctionDoc{{
				Name:                "Util_ScarPos",
				ShortDescription:    s("Converts <position>"),
				ExtendedDescription: []string{"line one", "line two"},
				ReturnType:          s("Position"),
				Parameters: []scardoc.Parameter{
					{Name: "xpos", Type: "Real", Required: true},
					{Name: "ypos", Type: "Real", Description: s("height")},
				},
				SourceOrigin: s("util.scar"),
			}},
		}},
		Enums: []scardoc.EnumDef{{Name: "Race", Values: []scardoc.EnumValue{{Name: "ALLIES", Value: s("0")}, {Name: "AXIS"}}}},
		Globals: []scardoc.GlobalDef{{Name: "MAX_PLAYERS", Value: s("8"), Type: s("Integer")}},
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, sampleDoc(), Options{Format: format, Indent: "  "}); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			got, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if diff := cmp.Diff(sampleDoc(), got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("document mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeJSONDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleDoc(), Options{Format: FormatJSON}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Converts <position>") {
		t.Errorf("expected raw angle brackets, got %s", buf.String())
	}
}

func TestCanonicalIsStable(t *testing.T) {
	a, err := Canonical(sampleDoc())
	if err != nil {
		t.Fatalf("Canonical failed: %v", err)
	}
	b, _ := Canonical(sampleDoc())
	if !bytes.Equal(a, b) {
		t.Error("Canonical should be byte-identical for equal documents")
	}
	if bytes.HasSuffix(a, []byte("\n")) || bytes.Contains(a, []byte("\n  ")) {
		t.Errorf("Canonical should be compact: %s", a)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"toml", FormatTOML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) = (%q, %v)", tt.in, got, err)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"doc.json":     FormatJSON,
		"doc.json.zst": FormatJSON,
		"doc.yml":      FormatYAML,
		"doc.YAML.zst": FormatYAML,
		"doc.toml":     FormatTOML,
		"doc":          FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"doc.json", "doc.json.zst", "doc.yaml.zst", "doc.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, sampleDoc(), Options{Format: FormatFromPath(path), Indent: "  "}); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if diff := cmp.Diff(sampleDoc(), got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("document mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.HasCode(err, errors.UnreadableInput) {
		t.Errorf("missing file error = %v", err)
	}

	_, err = Decode(strings.NewReader("{not json"), FormatJSON)
	if !errors.HasCode(err, errors.InvalidDocument) {
		t.Errorf("bad JSON error = %v", err)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("Util_ScarPos "), 100)
	packed := Compress(data)
	if len(packed) >= len(data) {
		t.Errorf("compressed %d bytes into %d", len(data), len(packed))
	}
	unpacked, err := Decompress(packed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(data, unpacked) {
		t.Error("round trip changed data")
	}
}

func TestEncodeJSONGolden(t *testing.T) {
	s := scardoc.String
	doc := &scardoc.Document{
		Categories: scardoc.Categorize([]scardoc.FunctionDoc{{
			Name:             "Util_Pos",
			ShortDescription: s("Returns <pos>"),
			ReturnType:       s("Position"),
			Parameters:       []scardoc.Parameter{{Name: "entity", Type: "EntityID", Required: true}},
			SourceOrigin:     s("util.scar"),
		}}),
		Enums:   []scardoc.EnumDef{{Name: "Race", Values: []scardoc.EnumValue{{Name: "RACE_A", Value: s("0")}}}},
		Globals: []scardoc.GlobalDef{{Name: "MAX", Value: s("5")}},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc, Options{Format: FormatJSON, Indent: "  "}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	testutil.CompareGolden(t, "document.json.golden", buf.Bytes())
}
