// Package exporter writes a theme.Model as a color theme file, CSS
// variables, an installable VSIX archive or an HCL theme document.
package exporter

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jsvensson/themelab/internal/format"
	"github.com/jsvensson/themelab/internal/parser"
	"github.com/jsvensson/themelab/internal/theme"
)

// Defaults of the exported theme metadata.
const (
	DefaultName = "Design Lab Theme"
	DefaultType = "dark"
	Schema      = "vscode://schemas/color-theme"

	// VSIXThemePath is the theme file inside exported archives.
	VSIXThemePath = "extension/themes/design-lab.json"
)

// ErrUnknownFormat is returned for export formats this package cannot
// write.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export format.
type Format string

// Export formats.
const (
	FormatJSON Format = "json"
	FormatCSS  Format = "css"
	FormatVSIX Format = "vsix"
	FormatHCL  Format = "hcl"
)

// Formats lists the export formats in the order they are offered.
var Formats = []Format{FormatJSON, FormatCSS, FormatVSIX, FormatHCL}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension of the format, dot included.
func (f Format) Ext() string {
	return "." + string(f)
}

// Encode writes m in format f.
func Encode(f Format, meta Meta, m theme.Model) ([]byte, error) {
	switch f {
	case FormatJSON:
		return JSON(meta, m)
	case FormatCSS:
		return CSS(m), nil
	case FormatVSIX:
		return VSIX(meta, m)
	case FormatHCL:
		return HCL(meta, m), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Meta names the exported theme.
type Meta struct {
	Name string
	Type string // "dark", "light" or "hc"
}

func (m Meta) withDefaults() Meta {
	if m.Name == "" {
		m.Name = DefaultName
	}
	if m.Type == "" {
		m.Type = DefaultType
	}
	return m
}

// Theme is the color theme file layout.
type Theme struct {
	Schema              string              `json:"$schema"`
	Name                string              `json:"name"`
	Type                string              `json:"type"`
	Colors              map[string]string   `json:"colors"`
	TokenColors         []theme.TokenRule   `json:"tokenColors"`
	SemanticTokenColors theme.SemanticRules `json:"semanticTokenColors"`
}

// NewTheme wraps a model in the theme file layout.
func NewTheme(meta Meta, m theme.Model) Theme {
	meta = meta.withDefaults()
	m = m.Clone()
	return Theme{
		Schema:              Schema,
		Name:                meta.Name,
		Type:                meta.Type,
		Colors:              m.Colors,
		TokenColors:         m.TokenRules,
		SemanticTokenColors: m.SemanticRules,
	}
}

// JSON returns the model as an indented color theme file.
func JSON(meta Meta, m theme.Model) ([]byte, error) {
	b, err := json.MarshalIndent(NewTheme(meta, m), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding theme: %w", err)
	}
	return append(b, '\n'), nil
}

// CSS returns the workbench colors as CSS custom properties on :root, with
// the dots of each key replaced by dashes.
func CSS(m theme.Model) []byte {
	keys := make([]string, 0, len(m.Colors))
	for k := range m.Colors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  --%s: %s;\n", strings.ReplaceAll(k, ".", "-"), m.Colors[k])
	}
	b.WriteString("}")
	return []byte(b.String())
}

// manifest is the extension/package.json of exported archives.
type manifest struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"displayName"`
	Version     string            `json:"version"`
	Engines     map[string]string `json:"engines"`
	Contributes struct {
		Themes []manifestTheme `json:"themes"`
	} `json:"contributes"`
}

type manifestTheme struct {
	Label   string `json:"label"`
	UITheme string `json:"uiTheme"`
	Path    string `json:"path"`
}

// VSIX returns a minimal installable extension archive carrying the theme.
func VSIX(meta Meta, m theme.Model) ([]byte, error) {
	meta = meta.withDefaults()
	themeJSON, err := JSON(meta, m)
	if err != nil {
		return nil, err
	}

	var man manifest
	man.Name = packageName(meta.Name)
	man.DisplayName = meta.Name
	man.Version = "0.1.0"
	man.Engines = map[string]string{"vscode": "^1.88.0"}
	man.Contributes.Themes = []manifestTheme{{
		Label:   meta.Name,
		UITheme: uiTheme(meta.Type),
		Path:    "./" + strings.TrimPrefix(VSIXThemePath, "extension/"),
	}}
	manJSON, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range []struct {
		name string
		data []byte
	}{
		{"extension/package.json", manJSON},
		{VSIXThemePath, themeJSON},
	} {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.name, err)
		}
		if _, err := w.Write(f.data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// HCL returns the model as an HCL theme document.
func HCL(meta Meta, m theme.Model) []byte {
	meta = meta.withDefaults()
	return format.Encode(parser.Meta{Name: meta.Name, Type: meta.Type}, m)
}

// FileName returns the file name an export of the given extension is
// written under, e.g. "design-lab-theme.json".
func FileName(meta Meta, ext string) string {
	name := packageName(meta.withDefaults().Name)
	if name == "" {
		name = packageName(DefaultName)
	}
	return name + ext
}

func uiTheme(typ string) string {
	switch typ {
	case "light":
		return "vs"
	case "hc", "hc-black":
		return "hc-black"
	default:
		return "vs-dark"
	}
}

// packageName turns a display name into an extension package name,
// e.g. "Design Lab Theme" -> "design-lab-theme".
func packageName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
