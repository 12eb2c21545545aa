// Package output encodes and decodes canonical documents as JSON, YAML or
// TOML, optionally zstd-compressed, and produces the compact canonical JSON
// used for fingerprinting.
package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"scardoc/internal/errors"
	"scardoc/internal/scardoc"
)

// Format is a document serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// CompressedExt marks zstd-compressed document files, e.g. doc.json.zst.
const CompressedExt = ".zst"

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown document format %q (want json, yaml or toml)", s)
}

// FormatFromPath infers the format from the file extension, looking through
// a trailing .zst. Unknown extensions are JSON.
func FormatFromPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, CompressedExt)))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Options controls Encode.
type Options struct {
	Format Format
	Indent string // JSON and TOML indent; YAML uses its length
}

// Encode writes doc to w. Output is byte-identical for equal documents.
func Encode(w io.Writer, doc *scardoc.Document, opts Options) error {
	if doc == nil {
		doc = &scardoc.Document{}
	}
	switch opts.Format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", opts.Indent)
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(max(len(opts.Indent), 2))
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.Indent = opts.Indent
		return enc.Encode(doc)
	}
	return fmt.Errorf("unknown document format %q", opts.Format)
}

// Decode reads a document in the given format. JSON input accepts the
// legacy field names.
func Decode(r io.Reader, format Format) (*scardoc.Document, error) {
	var doc scardoc.Document
	var err error
	switch format {
	case FormatJSON, "":
		err = json.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
		if err == io.EOF {
			err = nil
		}
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&doc)
	default:
		err = fmt.Errorf("unknown document format %q", format)
	}
	if err != nil {
		return nil, errors.NewDocError(errors.InvalidDocument,
			fmt.Sprintf("failed to decode %s document", format), err)
	}
	return &doc, nil
}

// Canonical returns the compact JSON encoding of doc.
func Canonical(doc *scardoc.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, Options{Format: FormatJSON}); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// Compress zstd-compresses b.
func Compress(b []byte) []byte {
	return encoder.EncodeAll(b, make([]byte, 0, len(b)/2))
}

// Decompress reverses Compress.
func Decompress(b []byte) ([]byte, error) {
	return decoder.DecodeAll(b, nil)
}

// WriteFile encodes doc to path, compressing when path ends in .zst.
func WriteFile(path string, doc *scardoc.Document, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var w io.Writer = f
	var zw *zstd.Encoder
	if strings.HasSuffix(path, CompressedExt) {
		zw, err = zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return err
		}
		w = zw
	}

	bw := bufio.NewWriter(w)
	err = Encode(bw, doc, opts)
	if err == nil {
		err = bw.Flush()
	}
	if zw != nil {
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadFile decodes a document file, inferring the format from its name.
func ReadFile(path string) (*scardoc.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDocError(errors.UnreadableInput,
			fmt.Sprintf("file %s failed to open for reading", path), err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, CompressedExt) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.NewDocError(errors.InvalidDocument,
				fmt.Sprintf("file %s is not zstd-compressed", path), err)
		}
		defer zr.Close()
		r = zr
	}
	return Decode(r, FormatFromPath(path))
}
