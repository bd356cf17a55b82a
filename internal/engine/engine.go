// Package engine renders user templates against a theme document.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/jsvensson/themelab/internal/color"
	"github.com/jsvensson/themelab/internal/parser"
	"github.com/jsvensson/themelab/internal/theme"
	"github.com/jsvensson/themelab/internal/view"
)

// Engine loads and executes Go templates against a theme document.
type Engine struct {
	TemplatesDir string
	OutputDir    string
	Apps         []string // if non-empty, only render these template basenames
}

// Run loads all .tmpl files from the templates directory, executes them
// with the given theme data, and writes output files.
func (e *Engine) Run(doc *parser.ParseResult) error {
	pattern := filepath.Join(e.TemplatesDir, "*.tmpl")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("globbing templates: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no .tmpl files found in %s", e.TemplatesDir)
	}

	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data := buildTemplateData(doc)

	for _, tmplPath := range matches {
		baseName := strings.TrimSuffix(filepath.Base(tmplPath), ".tmpl")

		if !e.shouldRender(baseName) {
			continue
		}

		if err := e.renderTemplate(tmplPath, baseName, data); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) shouldRender(name string) bool {
	// If no apps are specified, render all.
	if len(e.Apps) == 0 {
		return true
	}

	return slices.Contains(e.Apps, name)
}

func (e *Engine) renderTemplate(tmplPath, outputName string, data templateData) error {
	tmpl, err := template.New(filepath.Base(tmplPath)).Funcs(data.FuncMap).ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("parsing template %s: %w", tmplPath, err)
	}

	outPath := filepath.Join(e.OutputDir, outputName)
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", outPath, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("executing template %s: %w", tmplPath, err)
	}

	return nil
}

// Token is a token rule as seen by templates.
type Token struct {
	Name       string
	Scope      string
	Selectors  []string
	Foreground color.Color
	HasColor   bool
	Style
}

// Semantic is a semantic rule as seen by templates.
type Semantic struct {
	Selector   string
	Foreground color.Color
	HasColor   bool
	Style
}

// Style is a resolved font style.
type Style struct {
	FontStyle     string
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
}

// TokenStyle is the result of the style template function.
type TokenStyle struct {
	Color    color.Color
	HasColor bool
	Style
}

// templateData is the data passed to templates.
type templateData struct {
	Meta     parser.Meta
	Palette  map[string]color.Color // dotted palette paths
	Colors   map[string]color.Color // workbench color keys
	Keys     []string               // sorted workbench color keys
	Tokens   []Token
	Semantic []Semantic
	FuncMap  template.FuncMap
}

func newStyle(fontStyle string) Style {
	return Style{
		FontStyle:     fontStyle,
		Bold:          theme.HasFontStyle(fontStyle, "bold"),
		Italic:        theme.HasFontStyle(fontStyle, "italic"),
		Underline:     theme.HasFontStyle(fontStyle, "underline"),
		Strikethrough: theme.HasFontStyle(fontStyle, "strikethrough"),
	}
}

// parseOptional parses hex, reporting false for empty or invalid values.
func parseOptional(hex string) (color.Color, bool) {
	if hex == "" {
		return color.Color{}, false
	}
	c, err := color.ParseHex(hex)
	if err != nil {
		return color.Color{}, false
	}
	return c, true
}

func buildTemplateData(doc *parser.ParseResult) templateData {
	data := templateData{
		Meta:    doc.Meta,
		Palette: map[string]color.Color{},
		Colors:  map[string]color.Color{},
	}

	if doc.Palette != nil {
		for path, hex := range doc.Palette.Flatten() {
			if c, ok := parseOptional(hex); ok {
				data.Palette[path] = c
			}
		}
	}
	for key, hex := range doc.Model.Colors {
		if c, ok := parseOptional(hex); ok {
			data.Colors[key] = c
			data.Keys = append(data.Keys, key)
		}
	}
	sort.Strings(data.Keys)

	for _, rule := range doc.Model.TokenRules {
		c, ok := parseOptional(rule.Settings.Foreground)
		data.Tokens = append(data.Tokens, Token{
			Name:       rule.Name,
			Scope:      rule.Scope.String(),
			Selectors:  rule.Scope.Selectors(),
			Foreground: c,
			HasColor:   ok,
			Style:      newStyle(rule.Settings.FontStyle),
		})
	}
	for _, sel := range doc.Model.SemanticRules.Keys() {
		v, _ := doc.Model.SemanticRules.Get(sel)
		c, ok := parseOptional(v.Foreground)
		data.Semantic = append(data.Semantic, Semantic{
			Selector:   sel,
			Foreground: c,
			HasColor:   ok,
			Style:      newStyle(v.FontStyle),
		})
	}

	model := doc.Model
	data.FuncMap = template.FuncMap{
		"hex": func(v any) (string, error) {
			c, err := resolveColor(v, data)
			return c.Hex(), err
		},
		"bhex": func(v any) (string, error) {
			c, err := resolveColor(v, data)
			return strings.TrimPrefix(c.Hex(), "#"), err
		},
		"hexa": func(v any) (string, error) {
			c, err := resolveColor(v, data)
			return c.HexAlpha(), err
		},
		"bhexa": func(v any) (string, error) {
			c, err := resolveColor(v, data)
			return strings.TrimPrefix(c.HexAlpha(), "#"), err
		},
		"rgb": func(v any) (string, error) {
			c, err := resolveColor(v, data)
			return c.RGB(), err
		},
		"rgba": func(v any) (string, error) {
			c, err := resolveColor(v, data)
			return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, alphaFraction(c.A)), err
		},
		"alpha": func(v any) (int, error) {
			c, err := resolveColor(v, data)
			return color.AlphaFromHex(c.HexAlpha()), err
		},
		"brighten": func(v any, pct float64) (color.Color, error) {
			c, err := resolveColor(v, data)
			return color.Brighten(c, pct), err
		},
		"darken": func(v any, pct float64) (color.Color, error) {
			c, err := resolveColor(v, data)
			return color.Darken(c, pct), err
		},
		"palette": func(path string) (color.Color, error) {
			return lookup(data.Palette, "palette", path)
		},
		"color": func(key string) (color.Color, error) {
			return lookup(data.Colors, "colors", key)
		},
		"style": func(scope string) TokenStyle {
			ts := view.ResolveTokenStyle(model, scope, "")
			c, ok := parseOptional(ts.Foreground)
			return TokenStyle{Color: c, HasColor: ok, Style: newStyle(ts.FontStyle)}
		},
	}
	return data
}

// resolveColor accepts a Color, a TokenStyle, a hex literal or a path:
// "palette.<path>", "colors.<key>" or a bare palette path.
func resolveColor(v any, data templateData) (color.Color, error) {
	switch v := v.(type) {
	case color.Color:
		return v, nil
	case TokenStyle:
		return v.Color, nil
	case string:
		return resolveColorPath(v, data)
	default:
		return color.Color{}, fmt.Errorf("cannot use %T as a color", v)
	}
}

// resolveColorPath resolves a dot-notation path to a Color.
func resolveColorPath(path string, data templateData) (color.Color, error) {
	if strings.HasPrefix(path, "#") {
		return color.ParseHex(path)
	}
	block, rest, ok := strings.Cut(path, ".")
	if ok {
		switch block {
		case "palette":
			return lookup(data.Palette, "palette", rest)
		case "colors":
			return lookup(data.Colors, "colors", rest)
		}
	}
	return lookup(data.Palette, "palette", path)
}

func lookup(m map[string]color.Color, block, key string) (color.Color, error) {
	c, ok := m[key]
	if !ok {
		return color.Color{}, fmt.Errorf("%s path not found: %s", block, key)
	}
	return c, nil
}

// alphaFraction formats an alpha byte as a 0-1 fraction with at least one
// decimal, e.g. "1.0" or "0.5".
func alphaFraction(a uint8) string {
	s := strconv.FormatFloat(float64(a)/255, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
