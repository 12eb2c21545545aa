//go:build !cgo

package symbols

import "context"

// Extractor extracts declarations with a line scanner when cgo is not
// available.
type Extractor struct{}

// NewExtractor creates a new declaration extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// IsAvailable returns whether tree-sitter parsing is compiled in.
func IsAvailable() bool {
	return false
}

// ExtractSource returns the named function declarations of src in source
// order.
func (e *Extractor) ExtractSource(ctx context.Context, id string, src []byte) ([]Declaration, error) {
	return scanSource(ctx, id, src)
}
