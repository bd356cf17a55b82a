package theme

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jsvensson/themelab/internal/color"
)

// NewSemanticSelector is the selector inserted by AddSemanticRule.
const NewSemanticSelector = "entity.name.new"

// Token rule fields accepted by SetTokenRuleField.
const (
	FieldScope      = "scope"
	FieldForeground = "foreground"
	FieldFontStyle  = "fontStyle"
)

// FontStyles lists the font style flags a rule can toggle.
var FontStyles = []string{"bold", "italic", "underline", "strikethrough"}

var (
	// ErrUnknownField is returned for a token rule field other than scope,
	// foreground or fontStyle.
	ErrUnknownField = errors.New("unknown token rule field")

	// ErrUnknownFontStyle is returned when toggling a flag that is not one of
	// FontStyles.
	ErrUnknownFontStyle = errors.New("unknown font style")
)

// SetColor stores a validated, normalized color under key. Invalid input
// leaves the model untouched.
func (m *Model) SetColor(key, hex string) error {
	if !color.IsValidHex(hex) {
		return fmt.Errorf("setting %s to %q: %w", key, hex, color.ErrInvalidHex)
	}
	if m.Colors == nil {
		m.Colors = make(map[string]string)
	}
	m.Colors[key] = color.NormalizeHex(hex)
	return nil
}

// SetColorAlpha recomposes the color under key with the given alpha
// percentage. A missing color starts from black.
func (m *Model) SetColorAlpha(key string, pct float64) {
	if m.Colors == nil {
		m.Colors = make(map[string]string)
	}
	cur, ok := m.Colors[key]
	if !ok {
		cur = color.Fallback
	}
	m.Colors[key] = color.MergeHexWithAlpha(cur, pct)
}

// AddTokenRule appends an empty rule.
func (m *Model) AddTokenRule() {
	m.TokenRules = append(m.TokenRules, TokenRule{Scope: StringScope("")})
}

// RemoveTokenRule removes the rule at index i. It panics when i is out of
// range.
func (m *Model) RemoveTokenRule(i int) {
	m.mustRule(i)
	m.TokenRules = slices.Delete(m.TokenRules, i, i+1)
}

// SetTokenRuleField sets one field of the rule at index i. Foreground values
// must be valid hex colors; an empty font style unsets the field.
func (m *Model) SetTokenRuleField(i int, field, value string) error {
	m.mustRule(i)
	rule := &m.TokenRules[i]
	switch field {
	case FieldScope:
		rule.Scope = StringScope(value)
	case FieldForeground:
		if !color.IsValidHex(value) {
			return fmt.Errorf("token rule %d foreground %q: %w", i, value, color.ErrInvalidHex)
		}
		rule.Settings.Foreground = color.NormalizeHex(value)
	case FieldFontStyle:
		rule.Settings.FontStyle = strings.TrimSpace(value)
		rule.Settings.ResetFontStyle = false
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// ToggleTokenFontStyle adds or removes one font style flag on the rule at
// index i.
func (m *Model) ToggleTokenFontStyle(i int, style string, on bool) error {
	m.mustRule(i)
	fs, err := toggleFontStyle(m.TokenRules[i].Settings.FontStyle, style, on)
	if err != nil {
		return fmt.Errorf("token rule %d: %w", i, err)
	}
	m.TokenRules[i].Settings.FontStyle = fs
	m.TokenRules[i].Settings.ResetFontStyle = false
	return nil
}

// AddSemanticRule inserts NewSemanticSelector with an empty style. An
// existing rule under that selector is reset in place.
func (m *Model) AddSemanticRule() {
	m.SemanticRules.Set(NewSemanticSelector, SemanticValue{})
}

// RenameSemanticSelector moves the style stored under oldKey to newKey. The
// renamed rule is reinserted at the end; when newKey already exists its
// value is replaced and its position kept.
func (m *Model) RenameSemanticSelector(oldKey, newKey string) {
	if oldKey == newKey {
		return
	}
	v, ok := m.SemanticRules.Get(oldKey)
	if !ok {
		return
	}
	m.SemanticRules.Delete(oldKey)
	m.SemanticRules.Set(newKey, v)
}

// RemoveSemanticRule deletes a selector.
func (m *Model) RemoveSemanticRule(key string) {
	m.SemanticRules.Delete(key)
}

// SetSemanticForeground sets the foreground of an existing selector.
// Missing selectors are ignored.
func (m *Model) SetSemanticForeground(key, hex string) error {
	v, ok := m.SemanticRules.Get(key)
	if !ok {
		return nil
	}
	if !color.IsValidHex(hex) {
		return fmt.Errorf("semantic rule %s foreground %q: %w", key, hex, color.ErrInvalidHex)
	}
	v.Foreground = color.NormalizeHex(hex)
	m.SemanticRules.Set(key, v)
	return nil
}

// SetSemanticFontStyle sets the font style text of an existing selector.
func (m *Model) SetSemanticFontStyle(key, value string) {
	v, ok := m.SemanticRules.Get(key)
	if !ok {
		return
	}
	v.FontStyle = strings.TrimSpace(value)
	v.ResetFontStyle = false
	m.SemanticRules.Set(key, v)
}

// ToggleSemanticFontStyle adds or removes one font style flag on a selector.
func (m *Model) ToggleSemanticFontStyle(key, style string, on bool) error {
	v, ok := m.SemanticRules.Get(key)
	if !ok {
		return nil
	}
	fs, err := toggleFontStyle(v.FontStyle, style, on)
	if err != nil {
		return fmt.Errorf("semantic rule %s: %w", key, err)
	}
	v.FontStyle = fs
	v.ResetFontStyle = false
	m.SemanticRules.Set(key, v)
	return nil
}

// HasFontStyle reports whether a space separated style string contains flag.
func HasFontStyle(fontStyle, flag string) bool {
	return slices.Contains(strings.Fields(fontStyle), flag)
}

func (m *Model) mustRule(i int) {
	if i < 0 || i >= len(m.TokenRules) {
		panic(fmt.Sprintf("theme: token rule index %d out of range [0,%d)", i, len(m.TokenRules)))
	}
}

// toggleFontStyle returns cur with flag added or removed. Existing flags keep
// their order and new ones are appended. An empty result unsets the field.
func toggleFontStyle(cur, flag string, on bool) (string, error) {
	if !slices.Contains(FontStyles, flag) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFontStyle, flag)
	}
	set := []string{}
	for _, f := range strings.Fields(cur) {
		if !slices.Contains(set, f) {
			set = append(set, f)
		}
	}
	has := slices.Contains(set, flag)
	switch {
	case on && !has:
		set = append(set, flag)
	case !on && has:
		set = slices.DeleteFunc(set, func(f string) bool { return f == flag })
	}
	return strings.Join(set, " "), nil
}
