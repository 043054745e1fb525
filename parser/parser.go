// Package parser extracts plain text from source document files. The
// downstream pipeline works on flat section text, so parsers return one
// text blob plus the extraction method used.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned when no parser is registered for a format.
var ErrUnknownFormat = errors.New("parser: unknown format")

// Parsed is what a parser produces from a document file.
type Parsed struct {
	Text   string // Extracted plain text
	Method string // "text", "pdf", "xlsx", "html"
}

// Parser can parse a specific document format.
type Parser interface {
	Parse(ctx context.Context, path string) (*Parsed, error)
	SupportedFormats() []string
}

// Registry maps file extensions to parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry returns a registry with the built-in parsers registered.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	for _, p := range []Parser{&TextParser{}, &PDFParser{}, &XLSXParser{}, &HTMLParser{}} {
		for _, f := range p.SupportedFormats() {
			r.parsers[f] = p
		}
	}
	return r
}

// Register adds or replaces the parser for a format.
func (r *Registry) Register(format string, p Parser) {
	r.parsers[format] = p
}

// Get returns the parser for a format.
func (r *Registry) Get(format string) (Parser, error) {
	p, ok := r.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	return p, nil
}

// ParseFile picks a parser from the file extension and runs it.
func (r *Registry) ParseFile(ctx context.Context, path string) (*Parsed, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	p, err := r.Get(format)
	if err != nil {
		return nil, err
	}
	return p.Parse(ctx, path)
}
