// Package textextract adapts uploaded resume files into plain text. It
// is a thin interface boundary only: real OCR/PDF/DOCX parsing is out of
// scope (see Non-goals) and is represented here by stub implementations
// that exercise the upload path end to end without embedding a parsing
// stack.
package textextract

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned for file types this adapter does not
// carry a parser for.
var ErrUnsupportedFormat = errors.New("textextract: unsupported file format")

// ErrNotValidUTF8 is returned when a plain-text upload is not decodable
// as UTF-8.
var ErrNotValidUTF8 = errors.New("textextract: file content is not valid UTF-8 text")

// Extractor converts an uploaded file's raw bytes into resume text.
type Extractor interface {
	// Extract returns the plain text content of data, named filename
	// (used to select a format-specific strategy by extension).
	Extract(filename string, data []byte) (string, error)
}

// Adapter dispatches to a format-specific Extractor by file extension.
type Adapter struct {
	byExt map[string]Extractor
}

// New constructs the default Adapter: plain text/markdown are decoded
// directly; PDF/DOC/DOCX are stubbed behind StubExtractor pending a real
// parsing backend.
func New() *Adapter {
	stub := StubExtractor{}
	plain := PlainTextExtractor{}
	return &Adapter{byExt: map[string]Extractor{
		".txt":  plain,
		".md":   plain,
		".pdf":  stub,
		".doc":  stub,
		".docx": stub,
	}}
}

// Extract resolves filename's extension to a registered Extractor and
// delegates to it. Unrecognized extensions are treated as plain text,
// matching the most permissive reading of an upload with no extension.
func (a *Adapter) Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if extractor, ok := a.byExt[ext]; ok {
		return extractor.Extract(filename, data)
	}
	return PlainTextExtractor{}.Extract(filename, data)
}

// PlainTextExtractor decodes UTF-8 text files directly.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(filename string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrNotValidUTF8
	}
	return string(data), nil
}

// StubExtractor represents a format this adapter intentionally does not
// parse; a real deployment wires in a PDF/DOCX library or OCR service
// behind this same Extractor interface.
type StubExtractor struct{}

func (StubExtractor) Extract(filename string, data []byte) (string, error) {
	return "", ErrUnsupportedFormat
}
