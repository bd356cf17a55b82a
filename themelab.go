// Package themelab loads, converts and renders color themes edited in the
// theme lab.
package themelab

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jsvensson/themelab/internal/engine"
	"github.com/jsvensson/themelab/internal/exporter"
	"github.com/jsvensson/themelab/internal/importer"
	"github.com/jsvensson/themelab/internal/parser"
	"github.com/jsvensson/themelab/internal/theme"
)

// Document is a loaded theme: its colors and rules plus, for HCL sources,
// the metadata and palette the file declares.
type Document = parser.ParseResult

// Meta holds theme metadata.
type Meta = parser.Meta

// Load reads a theme file in any importable format. Only HCL documents
// carry metadata and a palette.
func Load(path string) (*Document, error) {
	f, err := importer.FormatOf(path)
	if err != nil {
		return nil, fmt.Errorf("loading theme: %w", err)
	}
	if f == importer.HCL {
		doc, err := parser.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("loading theme: %w", err)
		}
		return doc, nil
	}
	m, err := importer.File(path)
	if err != nil {
		return nil, fmt.Errorf("loading theme: %w", err)
	}
	return &Document{Model: m}, nil
}

// Save writes doc to path in the export format named by the file
// extension.
func Save(path string, doc *Document) error {
	data, err := Encode(filepath.Ext(path), doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing theme: %w", err)
	}
	return nil
}

// Encode returns doc in the named export format ("json", "css", "vsix" or
// "hcl"; a leading dot is accepted).
func Encode(format string, doc *Document) ([]byte, error) {
	f, err := exporter.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return exporter.Encode(f, exporter.Meta{Name: doc.Meta.Name, Type: doc.Meta.Type}, doc.Model)
}

// Engine renders the templates of a directory against a theme document.
type Engine = engine.Engine

// NewDocument wraps a model in a document without metadata.
func NewDocument(m theme.Model) *Document {
	return &Document{Model: m}
}
