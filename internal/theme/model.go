// Package theme holds the editable theme model: workbench colors, TextMate
// token rules and semantic token rules, together with the mutations and
// merges applied to it.
package theme

import (
	"encoding/json"
	"strings"
)

// Model is the single in-memory source of truth for an editing session.
type Model struct {
	Colors        map[string]string `json:"colors"`
	TokenRules    []TokenRule       `json:"tokenColors"`
	SemanticRules SemanticRules     `json:"semanticTokens"`
}

// TokenRule maps one or more TextMate scopes to a style.
type TokenRule struct {
	Name     string        `json:"name,omitempty"`
	Scope    Scope         `json:"scope,omitzero"`
	Settings TokenSettings `json:"settings"`
}

// TokenSettings is the style part of a token rule. Empty fields are unset.
// ResetFontStyle marks an explicit empty fontStyle, which clears the styles
// a rule would otherwise inherit.
type TokenSettings struct {
	Foreground     string
	FontStyle      string
	ResetFontStyle bool
}

// SemanticValue is the style assigned to a semantic token selector.
type SemanticValue struct {
	Foreground     string
	FontStyle      string
	ResetFontStyle bool
}

// SetsFontStyle reports whether the settings set a font style, empty or not.
func (s TokenSettings) SetsFontStyle() bool {
	return s.FontStyle != "" || s.ResetFontStyle
}

// SetsFontStyle reports whether the value sets a font style, empty or not.
func (v SemanticValue) SetsFontStyle() bool {
	return v.FontStyle != "" || v.ResetFontStyle
}

// style is the wire form shared by token settings and semantic values. A
// nil FontStyle is absent; a pointer to "" is an explicit reset.
type style struct {
	Foreground string  `json:"foreground,omitempty"`
	FontStyle  *string `json:"fontStyle,omitempty"`
}

func newStyle(fg, fs string, reset bool) style {
	s := style{Foreground: fg}
	if fs != "" || reset {
		s.FontStyle = &fs
	}
	return s
}

// fontStyle returns the font style and whether it is an explicit reset.
func (s style) fontStyle() (string, bool) {
	if s.FontStyle == nil {
		return "", false
	}
	return *s.FontStyle, *s.FontStyle == ""
}

// MarshalJSON writes unset fields out and keeps an explicit empty fontStyle.
func (s TokenSettings) MarshalJSON() ([]byte, error) {
	return json.Marshal(newStyle(s.Foreground, s.FontStyle, s.ResetFontStyle))
}

// UnmarshalJSON records whether fontStyle was present but empty.
func (s *TokenSettings) UnmarshalJSON(data []byte) error {
	var w style
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	fs, reset := w.fontStyle()
	*s = TokenSettings{Foreground: w.Foreground, FontStyle: fs, ResetFontStyle: reset}
	return nil
}

// MarshalJSON writes unset fields out and keeps an explicit empty fontStyle.
func (v SemanticValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(newStyle(v.Foreground, v.FontStyle, v.ResetFontStyle))
}

// New returns an empty model with all containers allocated.
func New() Model {
	return Model{
		Colors:     map[string]string{},
		TokenRules: []TokenRule{},
	}
}

// Clone returns a deep copy of m.
func (m Model) Clone() Model {
	out := Model{
		Colors:        make(map[string]string, len(m.Colors)),
		TokenRules:    make([]TokenRule, len(m.TokenRules)),
		SemanticRules: m.SemanticRules.Clone(),
	}
	for k, v := range m.Colors {
		out.Colors[k] = v
	}
	for i, r := range m.TokenRules {
		r.Scope = r.Scope.clone()
		out.TokenRules[i] = r
	}
	return out
}

// MarshalJSON writes nil containers as empty ones so that an empty model
// always has the same serialized form.
func (m Model) MarshalJSON() ([]byte, error) {
	type plain Model
	p := plain(m)
	if p.Colors == nil {
		p.Colors = map[string]string{}
	}
	if p.TokenRules == nil {
		p.TokenRules = []TokenRule{}
	}
	return json.Marshal(p)
}

// Canonical returns the canonical JSON form of the model: color keys sorted,
// token rules in order and semantic rules in insertion order. Two models are
// equal exactly when their canonical forms are.
func (m Model) Canonical() string {
	b, err := json.Marshal(m)
	if err != nil {
		// Only strings, slices and maps of strings are involved.
		panic("theme: marshaling model: " + err.Error())
	}
	return string(b)
}

// Equal reports whether two models have the same canonical form.
func (m Model) Equal(other Model) bool {
	return m.Canonical() == other.Canonical()
}

// IsEmpty reports whether the model has no colors and no rules.
func (m Model) IsEmpty() bool {
	return len(m.Colors) == 0 && len(m.TokenRules) == 0 && m.SemanticRules.Len() == 0
}

// Scope is the scope selector of a token rule. It is either a single string
// or a list of strings and is written back in the shape it was read in.
type Scope struct {
	Names []string
	List  bool
}

// StringScope returns a single-string scope.
func StringScope(s string) Scope {
	return Scope{Names: []string{s}}
}

// ListScope returns a list scope.
func ListScope(names ...string) Scope {
	return Scope{Names: append([]string{}, names...), List: true}
}

// IsZero reports whether the scope is absent.
func (s Scope) IsZero() bool {
	return !s.List && len(s.Names) == 0
}

// Key returns the merge key of the scope: list elements trimmed and joined
// by ",", or the trimmed string.
func (s Scope) Key() string {
	if !s.List {
		if len(s.Names) == 0 {
			return ""
		}
		return strings.TrimSpace(s.Names[0])
	}
	parts := make([]string, len(s.Names))
	for i, n := range s.Names {
		parts[i] = strings.TrimSpace(n)
	}
	return strings.Join(parts, ",")
}

// String returns the scope as it is shown in an input field.
func (s Scope) String() string {
	if !s.List {
		if len(s.Names) == 0 {
			return ""
		}
		return s.Names[0]
	}
	return strings.Join(s.Names, ", ")
}

// Selectors returns the individual scope selectors, splitting comma
// separated strings.
func (s Scope) Selectors() []string {
	var out []string
	for _, n := range s.Names {
		for _, part := range strings.Split(n, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (s Scope) clone() Scope {
	if s.Names == nil {
		return s
	}
	return Scope{Names: append([]string{}, s.Names...), List: s.List}
}

// MarshalJSON writes a list scope as an array and a string scope as a string.
func (s Scope) MarshalJSON() ([]byte, error) {
	if s.List {
		names := s.Names
		if names == nil {
			names = []string{}
		}
		return json.Marshal(names)
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a string or an array of strings. Non-string array
// elements are skipped; any other value leaves the scope absent.
func (s *Scope) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = StringScope(str)
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		names := make([]string, 0, len(list))
		for _, raw := range list {
			var n string
			if json.Unmarshal(raw, &n) == nil {
				names = append(names, n)
			}
		}
		*s = Scope{Names: names, List: true}
		return nil
	}
	*s = Scope{}
	return nil
}

// UnmarshalJSON accepts either an object or a bare string, which is taken as
// the foreground color.
func (v *SemanticValue) UnmarshalJSON(data []byte) error {
	var fg string
	if err := json.Unmarshal(data, &fg); err == nil {
		*v = SemanticValue{Foreground: fg}
		return nil
	}
	var w style
	if err := json.Unmarshal(data, &w); err != nil {
		*v = SemanticValue{}
		return nil
	}
	fs, reset := w.fontStyle()
	*v = SemanticValue{Foreground: w.Foreground, FontStyle: fs, ResetFontStyle: reset}
	return nil
}
