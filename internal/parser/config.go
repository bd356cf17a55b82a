// Package parser reads HCL theme documents: a palette of named colors and
// the colors, token rules and semantic rules that reference it.
package parser

import (
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/jsvensson/themelab/internal/color"
	"github.com/jsvensson/themelab/internal/theme"
	"github.com/zclconf/go-cty/cty"
)

// ParseResult holds a fully resolved theme document.
type ParseResult struct {
	Meta    Meta
	Palette *Node
	Model   theme.Model
}

// Meta holds theme metadata.
type Meta struct {
	Name   string `hcl:"name,optional"`
	Type   string `hcl:"type,optional"`
	Author string `hcl:"author,optional"`
}

// PaletteBlock wraps a single palette block for gohcl decoding.
type PaletteBlock struct {
	Entries hcl.Body `hcl:",remain"`
}

// RawConfig captures the palette block first (no EvalContext needed).
type RawConfig struct {
	Palette *PaletteBlock `hcl:"palette,block"`
	Remain  hcl.Body      `hcl:",remain"`
}

// TokenBlock is one TextMate rule. Scope is a string or a list of strings.
type TokenBlock struct {
	Name       string         `hcl:"name,optional"`
	Scope      hcl.Expression `hcl:"scope,optional"`
	Foreground hcl.Expression `hcl:"foreground,optional"`
	FontStyle  *string        `hcl:"font_style,optional"`
}

// SemanticBlock is one semantic token rule, labeled with its selector.
type SemanticBlock struct {
	Selector   string         `hcl:"selector,label"`
	Foreground hcl.Expression `hcl:"foreground,optional"`
	FontStyle  *string        `hcl:"font_style,optional"`
}

// ResolvedConfig decodes everything that may reference palette.
type ResolvedConfig struct {
	Meta     *Meta           `hcl:"meta,block"`
	Colors   hcl.Expression  `hcl:"colors,optional"`
	Tokens   []TokenBlock    `hcl:"token,block"`
	Semantic []SemanticBlock `hcl:"semantic,block"`
	Remain   hcl.Body        `hcl:",remain"` // palette, already parsed
}

// Loader handles two-pass HCL decoding with palette resolution.
type Loader struct {
	body    hcl.Body
	ctx     *hcl.EvalContext
	palette *Node
}

// NewLoader reads and parses the theme document at path.
func NewLoader(path string) (*Loader, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme file: %w", err)
	}
	return NewLoaderBytes(src, path)
}

// NewLoaderBytes parses a theme document and builds the evaluation context
// from its palette. A document without a palette gets an empty one.
func NewLoaderBytes(src []byte, filename string) (*Loader, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %s", diags.Error())
	}

	// First pass: extract palette (literal values and earlier palette entries)
	var raw RawConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("decoding palette: %s", diags.Error())
	}

	palette := &Node{Children: map[string]*Node{}}
	if raw.Palette != nil {
		paletteBody, ok := raw.Palette.Entries.(*hclsyntax.Body)
		if !ok {
			return nil, fmt.Errorf("palette block is not an hclsyntax.Body")
		}
		if err := parsePaletteBody(paletteBody, palette, palette, nil); err != nil {
			return nil, fmt.Errorf("parsing palette: %w", err)
		}
	}

	return &Loader{
		body:    file.Body,
		ctx:     buildEvalContext(palette),
		palette: palette,
	}, nil
}

// Decode decodes a value using the palette context.
func (l *Loader) Decode(target any) error {
	if diags := gohcl.DecodeBody(l.body, l.ctx, target); diags.HasErrors() {
		return fmt.Errorf("decoding: %s", diags.Error())
	}
	return nil
}

// Palette returns the parsed palette.
func (l *Loader) Palette() *Node {
	return l.palette
}

// Context returns the EvalContext for manual parsing.
func (l *Loader) Context() *hcl.EvalContext {
	return l.ctx
}

// Parse parses the HCL theme document at path.
func Parse(path string) (*ParseResult, error) {
	loader, err := NewLoader(path)
	if err != nil {
		return nil, err
	}
	return loader.resolve()
}

// ParseBytes parses an HCL theme document held in memory.
func ParseBytes(src []byte, filename string) (*ParseResult, error) {
	loader, err := NewLoaderBytes(src, filename)
	if err != nil {
		return nil, err
	}
	return loader.resolve()
}

func (l *Loader) resolve() (*ParseResult, error) {
	// Second pass: decode blocks that reference palette
	var resolved ResolvedConfig
	if err := l.Decode(&resolved); err != nil {
		return nil, err
	}

	m := theme.New()

	colors, err := decodeColorMap(resolved.Colors, l.ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing colors: %w", err)
	}
	m.Colors = colors

	for i, tb := range resolved.Tokens {
		rule, err := decodeToken(tb, l.ctx)
		if err != nil {
			return nil, fmt.Errorf("parsing token %d: %w", i+1, err)
		}
		m.TokenRules = append(m.TokenRules, rule)
	}

	for _, sb := range resolved.Semantic {
		fg, err := decodeOptionalColor(sb.Foreground, l.ctx)
		if err != nil {
			return nil, fmt.Errorf("parsing semantic %q: %w", sb.Selector, err)
		}
		fs, reset := fontStyle(sb.FontStyle)
		m.SemanticRules.Set(sb.Selector, theme.SemanticValue{Foreground: fg, FontStyle: fs, ResetFontStyle: reset})
	}

	meta := Meta{}
	if resolved.Meta != nil {
		meta = *resolved.Meta
	}

	return &ParseResult{
		Meta:    meta,
		Palette: l.palette,
		Model:   m,
	}, nil
}

// decodeColorMap evaluates the colors object. Keys are setting names and
// values colors; a missing attribute yields an empty map.
func decodeColorMap(expr hcl.Expression, ctx *hcl.EvalContext) (map[string]string, error) {
	result := make(map[string]string)
	if expr == nil {
		return result, nil
	}
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating colors: %s", diags.Error())
	}
	if val.IsNull() {
		return result, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("colors must be an object, got %s", val.Type().FriendlyName())
	}

	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		name := k.AsString()
		hex, err := colorFromValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		result[name] = hex
	}
	return result, nil
}

// fontStyle returns an optional font_style value and whether it is an
// explicit empty reset.
func fontStyle(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, *p == ""
}

func decodeToken(tb TokenBlock, ctx *hcl.EvalContext) (theme.TokenRule, error) {
	fs, reset := fontStyle(tb.FontStyle)
	rule := theme.TokenRule{
		Name:     tb.Name,
		Settings: theme.TokenSettings{FontStyle: fs, ResetFontStyle: reset},
	}

	scope, err := decodeScope(tb.Scope, ctx)
	if err != nil {
		return theme.TokenRule{}, err
	}
	rule.Scope = scope

	fg, err := decodeOptionalColor(tb.Foreground, ctx)
	if err != nil {
		return theme.TokenRule{}, err
	}
	rule.Settings.Foreground = fg
	return rule, nil
}

func decodeScope(expr hcl.Expression, ctx *hcl.EvalContext) (theme.Scope, error) {
	if expr == nil {
		return theme.Scope{}, nil
	}
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return theme.Scope{}, fmt.Errorf("evaluating scope: %s", diags.Error())
	}
	switch {
	case val.IsNull():
		return theme.Scope{}, nil
	case val.Type() == cty.String:
		return theme.StringScope(val.AsString()), nil
	case val.Type().IsTupleType() || val.Type().IsListType():
		names := make([]string, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			if v.IsNull() || v.Type() != cty.String {
				return theme.Scope{}, fmt.Errorf("scope list elements must be strings")
			}
			names = append(names, v.AsString())
		}
		return theme.ListScope(names...), nil
	default:
		return theme.Scope{}, fmt.Errorf("scope must be a string or a list of strings, got %s", val.Type().FriendlyName())
	}
}

// decodeOptionalColor evaluates a color attribute that may be absent.
func decodeOptionalColor(expr hcl.Expression, ctx *hcl.EvalContext) (string, error) {
	if expr == nil {
		return "", nil
	}
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return "", fmt.Errorf("evaluating foreground: %s", diags.Error())
	}
	if val.IsNull() {
		return "", nil
	}
	hex, err := colorFromValue(val)
	if err != nil {
		return "", fmt.Errorf("foreground: %w", err)
	}
	return hex, nil
}

// ColorValue returns the color an evaluated expression denotes.
func ColorValue(v cty.Value) (string, error) {
	return colorFromValue(v)
}

// colorFromValue accepts a hex string or a palette node that carries its own
// color. Valid strings are returned as written.
func colorFromValue(v cty.Value) (string, error) {
	if v.IsNull() || !v.IsKnown() {
		return "", fmt.Errorf("missing color value")
	}
	if v.Type().IsObjectType() {
		if !v.Type().HasAttribute(nodeColorAttr) {
			return "", fmt.Errorf("palette namespace has no color of its own")
		}
		v = v.GetAttr(nodeColorAttr)
	}
	if v.Type() != cty.String {
		return "", fmt.Errorf("expected a color string, got %s", v.Type().FriendlyName())
	}
	s := v.AsString()
	if !color.IsValidHex(s) {
		return "", fmt.Errorf("%w %q", color.ErrInvalidHex, s)
	}
	return s, nil
}

// parsePaletteBody parses a palette block body with support for:
// - Direct color attributes: key = "#hex" or a reference to an earlier entry
// - Nested blocks: key { color = ..., sub = ... }
// Entries are evaluated in source order, so only earlier entries can be
// referenced.
func parsePaletteBody(body *hclsyntax.Body, root, dest *Node, path []string) error {
	type item struct {
		pos   int
		attr  *hclsyntax.Attribute
		block *hclsyntax.Block
	}
	var items []item
	for _, attr := range body.Attributes {
		items = append(items, item{pos: attr.SrcRange.Start.Byte, attr: attr})
	}
	for _, block := range body.Blocks {
		items = append(items, item{pos: block.TypeRange.Start.Byte, block: block})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	for _, it := range items {
		if it.attr != nil {
			name := it.attr.Name
			val, diags := it.attr.Expr.Value(buildEvalContext(root))
			if diags.HasErrors() {
				return fmt.Errorf("evaluating %s: %s", joinPath(path, name), diags.Error())
			}
			hex, err := colorFromValue(val)
			if err != nil {
				return fmt.Errorf("%s: %w", joinPath(path, name), err)
			}
			if name == nodeColorAttr && len(path) > 0 {
				dest.Hex = hex
				continue
			}
			dest.child(name).Hex = hex
			continue
		}

		if len(it.block.Labels) > 0 {
			return fmt.Errorf("%s: palette blocks take no labels", joinPath(path, it.block.Type))
		}
		if err := parsePaletteBody(it.block.Body, root, dest.child(it.block.Type), append(path[:len(path):len(path)], it.block.Type)); err != nil {
			return err
		}
	}
	return nil
}
