// Package format formats HCL theme documents and writes theme models out as
// HCL.
package format

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/jsvensson/themelab/internal/parser"
	"github.com/jsvensson/themelab/internal/theme"
	"github.com/zclconf/go-cty/cty"
)

var multipleBlankLines = regexp.MustCompile(`\n{3,}`)
var blankLineAfterOpenBrace = regexp.MustCompile(`\{\n\s*\n`)
var blankLineBeforeCloseBrace = regexp.MustCompile(`\n\s*\n(\s*\})`)

// metaOrder is the canonical attribute order of the meta block.
var metaOrder = []string{"name", "type", "author"}

// Format takes HCL source content and returns it formatted according to
// HCL canonical style rules. It uses hclwrite.Format which handles
// indentation, spacing, and newline normalization. Attributes of the meta
// block are put in canonical order.
//
// The formatter works even on partial/invalid HCL, making it suitable
// for use while the user is still typing.
func Format(content string) (string, error) {
	formatted := hclwrite.Format([]byte(content))
	// Collapse multiple consecutive blank lines into a single blank line.
	collapsed := multipleBlankLines.ReplaceAllString(string(formatted), "\n\n")
	// Remove blank lines immediately after opening braces.
	collapsed = blankLineAfterOpenBrace.ReplaceAllString(collapsed, "{\n")
	// Remove blank lines immediately before closing braces.
	collapsed = blankLineBeforeCloseBrace.ReplaceAllString(collapsed, "\n${1}")

	if reordered, ok := reorderMeta(collapsed); ok {
		collapsed = string(hclwrite.Format([]byte(reordered)))
	}
	return collapsed, nil
}

// reorderMeta sorts the attributes of a top-level multi-line meta block.
// Comment lines travel with the attribute below them; unknown attributes
// keep their relative order after the known ones.
func reorderMeta(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	start := -1
	for i, l := range lines {
		if l == "meta {" {
			start = i
			break
		}
	}
	if start < 0 {
		return content, false
	}
	end := -1
	for i := start + 1; i < len(lines); i++ {
		if lines[i] == "}" {
			end = i
			break
		}
	}
	if end < 0 {
		return content, false
	}

	type item struct {
		key   string
		lines []string
	}
	var items []item
	var pending []string
	for _, l := range lines[start+1 : end] {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			pending = append(pending, l)
			continue
		}
		key, _, ok := strings.Cut(trimmed, "=")
		if !ok {
			// Nested blocks or partial input: leave the block alone.
			return content, false
		}
		items = append(items, item{key: strings.TrimSpace(key), lines: append(pending, l)})
		pending = nil
	}
	if len(pending) > 0 {
		items = append(items, item{key: "", lines: pending})
	}

	rank := func(key string) int {
		for i, k := range metaOrder {
			if k == key {
				return i
			}
		}
		return len(metaOrder)
	}
	sorted := append([]item{}, items...)
	sort.SliceStable(sorted, func(i, j int) bool { return rank(sorted[i].key) < rank(sorted[j].key) })

	changed := false
	for i := range items {
		if items[i].key != sorted[i].key {
			changed = true
			break
		}
	}
	if !changed {
		return content, false
	}

	out := append([]string{}, lines[:start+1]...)
	for _, it := range sorted {
		out = append(out, it.lines...)
	}
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n"), true
}

// Encode writes a theme model as an HCL theme document that parser.Parse
// reads back into the same model.
func Encode(meta parser.Meta, m theme.Model) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	wrote := false
	separate := func() {
		if wrote {
			body.AppendNewline()
		}
		wrote = true
	}

	if meta != (parser.Meta{}) {
		separate()
		mb := body.AppendNewBlock("meta", nil).Body()
		setString(mb, "name", meta.Name)
		setString(mb, "type", meta.Type)
		setString(mb, "author", meta.Author)
	}

	if len(m.Colors) > 0 {
		separate()
		keys := make([]string, 0, len(m.Colors))
		for k := range m.Colors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		vals := make(map[string]cty.Value, len(keys))
		for _, k := range keys {
			vals[k] = cty.StringVal(m.Colors[k])
		}
		body.SetAttributeValue("colors", cty.ObjectVal(vals))
	}

	for _, rule := range m.TokenRules {
		separate()
		tb := body.AppendNewBlock("token", nil).Body()
		setString(tb, "name", rule.Name)
		switch {
		case rule.Scope.List:
			names := make([]cty.Value, len(rule.Scope.Names))
			for i, n := range rule.Scope.Names {
				names[i] = cty.StringVal(n)
			}
			tb.SetAttributeValue("scope", cty.TupleVal(names))
		case !rule.Scope.IsZero():
			tb.SetAttributeValue("scope", cty.StringVal(rule.Scope.String()))
		}
		setString(tb, "foreground", rule.Settings.Foreground)
		setFontStyle(tb, rule.Settings.FontStyle, rule.Settings.ResetFontStyle)
	}

	for _, sel := range m.SemanticRules.Keys() {
		v, _ := m.SemanticRules.Get(sel)
		separate()
		sb := body.AppendNewBlock("semantic", []string{sel}).Body()
		setString(sb, "foreground", v.Foreground)
		setFontStyle(sb, v.FontStyle, v.ResetFontStyle)
	}

	out, _ := Format(string(f.Bytes()))
	return []byte(out)
}

func setString(body *hclwrite.Body, name, value string) {
	if value == "" {
		return
	}
	body.SetAttributeValue(name, cty.StringVal(value))
}

// setFontStyle writes font_style when it is set, including an explicit
// empty reset.
func setFontStyle(body *hclwrite.Body, value string, reset bool) {
	if value == "" && !reset {
		return
	}
	body.SetAttributeValue("font_style", cty.StringVal(value))
}
