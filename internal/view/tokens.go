package view

import (
	"strings"

	"github.com/jsvensson/themelab/internal/theme"
)

// TokenStyle is the resolved style of a piece of source text.
type TokenStyle struct {
	Foreground string
	FontStyle  string
}

// ResolveTokenStyle resolves the style of text with the given TextMate scope
// and semantic token type. The longest rule selector that equals the scope or
// is a dotted prefix of it wins, later rules winning ties. Foreground and font
// style resolve independently, and an explicit empty font style counts as
// set. A semantic rule for the token type overrides the TextMate result for
// every property it sets.
func ResolveTokenStyle(m theme.Model, scope, semantic string) TokenStyle {
	var style TokenStyle
	fgScore, fsScore := 0, 0
	if scope != "" {
		for _, r := range m.TokenRules {
			n := matchScope(r.Scope, scope)
			if n == 0 {
				continue
			}
			if r.Settings.Foreground != "" && n >= fgScore {
				style.Foreground, fgScore = r.Settings.Foreground, n
			}
			if r.Settings.SetsFontStyle() && n >= fsScore {
				style.FontStyle, fsScore = r.Settings.FontStyle, n
			}
		}
	}

	if semantic != "" {
		if v, ok := m.SemanticRules.Get(semantic); ok {
			if v.Foreground != "" {
				style.Foreground = v.Foreground
			}
			if v.SetsFontStyle() {
				style.FontStyle = v.FontStyle
			}
		}
	}
	return style
}

// matchScope returns the length of the longest selector of s matching scope,
// or 0.
func matchScope(s theme.Scope, scope string) int {
	best := 0
	for _, sel := range s.Selectors() {
		if sel == "" {
			continue
		}
		if (sel == scope || strings.HasPrefix(scope, sel+".")) && len(sel) > best {
			best = len(sel)
		}
	}
	return best
}
