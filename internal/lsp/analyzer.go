package lsp

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/jsvensson/themelab/internal/color"
	"github.com/jsvensson/themelab/internal/parser"
	"github.com/jsvensson/themelab/internal/theme"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/zclconf/go-cty/cty"
)

var (
	DiagError   = protocol.DiagnosticSeverityError
	DiagWarning = protocol.DiagnosticSeverityWarning
	DiagInfo    = protocol.DiagnosticSeverityInformation
)

const diagSource = "themelab"

// Attribute names of the theme document blocks.
var (
	metaAttributes     = []string{"name", "type", "author"}
	tokenAttributes    = []string{"name", "scope", "foreground", "font_style"}
	semanticAttributes = []string{"foreground", "font_style"}
)

// Taxonomy maps known workbench color keys to their descriptions.
type Taxonomy map[string]string

// NewTaxonomy indexes the items of cats.
func NewTaxonomy(cats []theme.Category) Taxonomy {
	t := Taxonomy{}
	for _, c := range cats {
		for _, it := range c.Items {
			t[it.Key] = it.Description
		}
	}
	return t
}

// AnalysisResult holds all information produced by analyzing a theme document.
type AnalysisResult struct {
	Parsed      bool // false when the document has syntax errors
	Diagnostics []protocol.Diagnostic
	Palette     *parser.Node
	Symbols     map[string]protocol.Range // "palette.base", "palette.highlight.low" -> definition range
	Colors      []ColorLocation
	Keys        []KeyLocation
	Refs        []RefLocation
}

// ColorLocation records a resolved color at a specific source position.
type ColorLocation struct {
	Range protocol.Range
	Color color.Color
	IsRef bool // true if the expression is not a plain literal
}

// KeyLocation records a workbench color key of the colors object.
type KeyLocation struct {
	Range protocol.Range
	Key   string
}

// RefLocation records one step of a palette reference. A reference such as
// palette.highlight.low yields a step for each segment, each carrying the
// path up to and including that segment.
type RefLocation struct {
	Range protocol.Range
	Path  string
}

// hclPosToLSP converts an HCL position to an LSP position.
// HCL positions are 1-based; LSP positions are 0-based.
func hclPosToLSP(pos hcl.Pos) protocol.Position {
	return protocol.Position{
		Line:      uint32(pos.Line - 1),
		Character: uint32(pos.Column - 1),
	}
}

// hclRangeToLSP converts an HCL range to an LSP range.
func hclRangeToLSP(r hcl.Range) protocol.Range {
	return protocol.Range{
		Start: hclPosToLSP(r.Start),
		End:   hclPosToLSP(r.End),
	}
}

// Analyze parses a theme document from memory and produces diagnostics, a
// symbol table and color locations. It collects every problem it can find
// rather than stopping at the first. Color keys missing from known are
// reported when known is non-empty.
func Analyze(filename, content string, known Taxonomy) *AnalysisResult {
	result := &AnalysisResult{
		Symbols: make(map[string]protocol.Range),
		Palette: &parser.Node{Children: map[string]*parser.Node{}},
	}

	file, diags := hclsyntax.ParseConfig([]byte(content), filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		for _, d := range diags {
			result.Diagnostics = append(result.Diagnostics, hclDiagToLSP(d))
		}
		// Cannot proceed with semantic analysis if syntax is broken
		return result
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		result.addError(hcl.Range{}, "internal error: parsed body is not *hclsyntax.Body")
		return result
	}
	result.Parsed = true

	var paletteBody *hclsyntax.Body
	var metaBlock *hclsyntax.Block
	var tokens, semantic []*hclsyntax.Block

	for _, block := range body.Blocks {
		switch block.Type {
		case "palette":
			if paletteBody != nil {
				result.addError(block.DefRange(), "duplicate palette block")
				continue
			}
			paletteBody = block.Body
		case "meta":
			if metaBlock != nil {
				result.addError(block.DefRange(), "duplicate meta block")
				continue
			}
			metaBlock = block
		case "token":
			tokens = append(tokens, block)
		case "semantic":
			semantic = append(semantic, block)
		default:
			result.addWarning(block.DefRange(), fmt.Sprintf("unknown block %q", block.Type))
		}
	}

	if paletteBody != nil {
		result.analyzePaletteBody(paletteBody, result.Palette, result.Palette, "palette")
	}
	ctx := parser.EvalContext(result.Palette)

	for _, attr := range sortedAttributes(body) {
		if attr.Name != "colors" {
			result.addWarning(attr.SrcRange, fmt.Sprintf("unknown attribute %q", attr.Name))
			continue
		}
		result.analyzeColors(attr, ctx, known)
	}
	if metaBlock != nil {
		result.analyzeMeta(metaBlock)
	}
	for _, b := range tokens {
		result.analyzeToken(b, ctx)
	}
	for _, b := range semantic {
		result.analyzeSemantic(b, ctx)
	}

	return result
}

// hclDiagToLSP converts an HCL diagnostic to an LSP diagnostic.
func hclDiagToLSP(d *hcl.Diagnostic) protocol.Diagnostic {
	sev := DiagError
	if d.Severity == hcl.DiagWarning {
		sev = DiagWarning
	}

	diag := protocol.Diagnostic{
		Severity: &sev,
		Message:  d.Summary,
		Source:   strPtr(diagSource),
	}

	if d.Detail != "" {
		diag.Message = d.Summary + ": " + d.Detail
	}

	if d.Subject != nil {
		diag.Range = hclRangeToLSP(*d.Subject)
	}

	return diag
}

func (r *AnalysisResult) add(rng hcl.Range, sev protocol.DiagnosticSeverity, msg string) {
	r.Diagnostics = append(r.Diagnostics, protocol.Diagnostic{
		Range:    hclRangeToLSP(rng),
		Severity: &sev,
		Source:   strPtr(diagSource),
		Message:  msg,
	})
}

func (r *AnalysisResult) addError(rng hcl.Range, msg string)   { r.add(rng, DiagError, msg) }
func (r *AnalysisResult) addWarning(rng hcl.Range, msg string) { r.add(rng, DiagWarning, msg) }
func (r *AnalysisResult) addInfo(rng hcl.Range, msg string)    { r.add(rng, DiagInfo, msg) }

func strPtr(s string) *string {
	return &s
}

// sortedAttributes returns the attributes of body in source order.
func sortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})
	return attrs
}

// paletteItem represents an attribute or block in source order.
type paletteItem struct {
	pos   int
	attr  *hclsyntax.Attribute
	block *hclsyntax.Block
}

// analyzePaletteBody walks a palette block body, collecting diagnostics and
// building the symbol table and color locations. Items are processed in
// source order so later entries can reference earlier ones.
func (r *AnalysisResult) analyzePaletteBody(body *hclsyntax.Body, root, node *parser.Node, prefix string) {
	var items []paletteItem
	for _, attr := range body.Attributes {
		items = append(items, paletteItem{pos: attr.SrcRange.Start.Byte, attr: attr})
	}
	for _, block := range body.Blocks {
		items = append(items, paletteItem{pos: block.TypeRange.Start.Byte, block: block})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	for _, item := range items {
		if item.block != nil {
			name := prefix + "." + item.block.Type
			if len(item.block.Labels) > 0 {
				r.addError(item.block.DefRange(), fmt.Sprintf("%s: palette blocks take no labels", name))
				continue
			}
			r.Symbols[name] = hclRangeToLSP(item.block.DefRange())
			child := &parser.Node{}
			if node.Children == nil {
				node.Children = make(map[string]*parser.Node)
			}
			node.Children[item.block.Type] = child
			r.analyzePaletteBody(item.block.Body, root, child, name)
			continue
		}

		attrName := item.attr.Name
		symbolName := prefix + "." + attrName
		ownColor := attrName == "color" && node != root

		// Rebuild the context so the entry sees every earlier one
		c, ok := r.analyzeColorExpr(item.attr.Expr, parser.EvalContext(root), symbolName)
		if !ok {
			continue
		}
		if ownColor {
			node.Hex = hexOf(c)
			continue
		}
		r.Symbols[symbolName] = hclRangeToLSP(item.attr.SrcRange)
		if node.Children == nil {
			node.Children = make(map[string]*parser.Node)
		}
		node.Children[attrName] = &parser.Node{Hex: hexOf(c)}
	}
}

// analyzeColors walks the colors object, recording every key and value.
func (r *AnalysisResult) analyzeColors(attr *hclsyntax.Attribute, ctx *hcl.EvalContext, known Taxonomy) {
	obj, ok := attr.Expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		val, diags := attr.Expr.Value(ctx)
		switch {
		case diags.HasErrors():
			r.addError(attr.SrcRange, fmt.Sprintf("colors: %s", diags.Error()))
		case !val.IsNull():
			r.addError(attr.SrcRange, fmt.Sprintf("colors must be an object, got %s", val.Type().FriendlyName()))
		}
		return
	}

	for _, item := range obj.Items {
		kv, diags := item.KeyExpr.Value(nil)
		if diags.HasErrors() || kv.IsNull() || kv.Type() != cty.String {
			r.addError(item.KeyExpr.Range(), "color keys must be strings")
			continue
		}
		key := kv.AsString()
		r.Keys = append(r.Keys, KeyLocation{Range: hclRangeToLSP(item.KeyExpr.Range()), Key: key})
		if len(known) > 0 {
			if _, ok := known[key]; !ok {
				r.addInfo(item.KeyExpr.Range(), fmt.Sprintf("%s is not a known workbench color", key))
			}
		}
		r.analyzeColorExpr(item.ValueExpr, ctx, "colors."+key)
	}
}

func (r *AnalysisResult) analyzeMeta(block *hclsyntax.Block) {
	for _, attr := range sortedAttributes(block.Body) {
		if !slices.Contains(metaAttributes, attr.Name) {
			r.addError(attr.SrcRange, fmt.Sprintf("unknown meta attribute %q", attr.Name))
			continue
		}
		r.analyzeString(attr, nil, "meta")
	}
	for _, b := range block.Body.Blocks {
		r.addError(b.DefRange(), fmt.Sprintf("unexpected block %q in meta", b.Type))
	}
}

func (r *AnalysisResult) analyzeToken(block *hclsyntax.Block, ctx *hcl.EvalContext) {
	if len(block.Labels) > 0 {
		r.addError(block.DefRange(), "token blocks take no labels")
	}
	for _, attr := range sortedAttributes(block.Body) {
		switch attr.Name {
		case "name":
			r.analyzeString(attr, ctx, "token")
		case "scope":
			r.analyzeScope(attr, ctx)
		case "foreground":
			r.analyzeColorExpr(attr.Expr, ctx, "token.foreground")
		case "font_style":
			r.analyzeFontStyle(attr, ctx, "token")
		default:
			r.addError(attr.SrcRange, fmt.Sprintf("unknown token attribute %q", attr.Name))
		}
	}
	for _, b := range block.Body.Blocks {
		r.addError(b.DefRange(), fmt.Sprintf("unexpected block %q in token", b.Type))
	}
}

func (r *AnalysisResult) analyzeSemantic(block *hclsyntax.Block, ctx *hcl.EvalContext) {
	if len(block.Labels) != 1 {
		r.addError(block.DefRange(), "semantic blocks take exactly one selector label")
	}
	for _, attr := range sortedAttributes(block.Body) {
		switch attr.Name {
		case "foreground":
			r.analyzeColorExpr(attr.Expr, ctx, "semantic.foreground")
		case "font_style":
			r.analyzeFontStyle(attr, ctx, "semantic")
		default:
			r.addError(attr.SrcRange, fmt.Sprintf("unknown semantic attribute %q", attr.Name))
		}
	}
	for _, b := range block.Body.Blocks {
		r.addError(b.DefRange(), fmt.Sprintf("unexpected block %q in semantic", b.Type))
	}
}

// analyzeColorExpr evaluates a color expression and records its location.
func (r *AnalysisResult) analyzeColorExpr(expr hclsyntax.Expression, ctx *hcl.EvalContext, label string) (color.Color, bool) {
	r.recordRefs(expr)
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		r.addError(expr.Range(), fmt.Sprintf("evaluating %s: %s", label, diags.Error()))
		return color.Color{}, false
	}
	hexStr, err := parser.ColorValue(val)
	if err != nil {
		r.addError(expr.Range(), fmt.Sprintf("%s: %s", label, err))
		return color.Color{}, false
	}
	c, err := color.ParseHex(hexStr)
	if err != nil {
		r.addError(expr.Range(), fmt.Sprintf("%s: %s", label, err))
		return color.Color{}, false
	}

	r.Colors = append(r.Colors, ColorLocation{
		Range: hclRangeToLSP(expr.Range()),
		Color: c,
		IsRef: isReferenceExpr(expr),
	})
	return c, true
}

// recordRefs records the palette references of expr. References are kept
// even when the expression fails to evaluate.
func (r *AnalysisResult) recordRefs(expr hclsyntax.Expression) {
	for _, trav := range expr.Variables() {
		if trav.RootName() != "palette" {
			continue
		}
		path := "palette"
		r.Refs = append(r.Refs, RefLocation{Range: hclRangeToLSP(trav[0].SourceRange()), Path: path})
		for _, step := range trav[1:] {
			attr, ok := step.(hcl.TraverseAttr)
			if !ok {
				break
			}
			path += "." + attr.Name
			// The step range starts at the dot.
			rng := attr.SrcRange
			rng.Start.Column++
			rng.Start.Byte++
			r.Refs = append(r.Refs, RefLocation{Range: hclRangeToLSP(rng), Path: path})
		}
	}
}

func (r *AnalysisResult) analyzeString(attr *hclsyntax.Attribute, ctx *hcl.EvalContext, block string) (string, bool) {
	val, diags := attr.Expr.Value(ctx)
	if diags.HasErrors() {
		r.addError(attr.SrcRange, fmt.Sprintf("%s.%s: %s", block, attr.Name, diags.Error()))
		return "", false
	}
	if val.IsNull() || val.Type() != cty.String {
		r.addError(attr.SrcRange, fmt.Sprintf("%s.%s must be a string", block, attr.Name))
		return "", false
	}
	return val.AsString(), true
}

func (r *AnalysisResult) analyzeScope(attr *hclsyntax.Attribute, ctx *hcl.EvalContext) {
	val, diags := attr.Expr.Value(ctx)
	if diags.HasErrors() {
		r.addError(attr.SrcRange, fmt.Sprintf("token.scope: %s", diags.Error()))
		return
	}
	switch {
	case val.IsNull(), val.Type() == cty.String:
	case val.Type().IsTupleType() || val.Type().IsListType():
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			if v.IsNull() || v.Type() != cty.String {
				r.addError(attr.SrcRange, "token.scope list elements must be strings")
				return
			}
		}
	default:
		r.addError(attr.SrcRange, fmt.Sprintf("token.scope must be a string or a list of strings, got %s", val.Type().FriendlyName()))
	}
}

func (r *AnalysisResult) analyzeFontStyle(attr *hclsyntax.Attribute, ctx *hcl.EvalContext, block string) {
	s, ok := r.analyzeString(attr, ctx, block)
	if !ok {
		return
	}
	for _, f := range strings.Fields(s) {
		if !slices.Contains(theme.FontStyles, f) {
			r.addWarning(attr.Expr.Range(), fmt.Sprintf("unknown font style %q", f))
		}
	}
}

// isReferenceExpr returns true if the expression is a traversal or function
// call (e.g. palette.base, darken(palette.base, 0.1)) rather than a literal.
func isReferenceExpr(expr hclsyntax.Expression) bool {
	switch expr.(type) {
	case *hclsyntax.ScopeTraversalExpr, *hclsyntax.RelativeTraversalExpr, *hclsyntax.FunctionCallExpr:
		return true
	default:
		return false
	}
}

func hexOf(c color.Color) string {
	if c.Opaque() {
		return c.Hex()
	}
	return c.HexAlpha()
}
