package protocol

import (
	"bytes"
	"encoding/json"

	"github.com/jsvensson/themelab/internal/theme"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("themelab.protocol")

// TokenColors is one of the shapes a tokenColors payload arrives in:
// RuleList or TextMateRules.
type TokenColors interface {
	Rules() []theme.TokenRule
}

// RuleList is a bare array of token rules, as found in theme files.
type RuleList []json.RawMessage

// TextMateRules is the settings shape {"textMateRules": [...]}.
type TextMateRules struct {
	TextMateRules RuleList `json:"textMateRules"`
}

// SemanticTokens is one of the shapes a semanticTokens payload arrives in:
// RuleMap or SemanticSettings.
type SemanticTokens interface {
	Rules() theme.SemanticRules
}

// RuleMap is a bare selector to style object.
type RuleMap struct {
	raw json.RawMessage
}

// SemanticSettings is the settings shape {"enabled": true, "rules": {...}}.
type SemanticSettings struct {
	Enabled *bool           `json:"enabled,omitempty"`
	RuleSet json.RawMessage `json:"rules"`
}

// Rules implements TokenColors. Elements that are not objects are skipped.
func (l RuleList) Rules() []theme.TokenRule {
	out := make([]theme.TokenRule, 0, len(l))
	for i, raw := range l {
		if !isObject(raw) {
			log.Debugf("skipping token rule %d: not an object", i)
			continue
		}
		var r theme.TokenRule
		if err := json.Unmarshal(raw, &r); err != nil {
			log.Debugf("skipping token rule %d: %s", i, err)
			continue
		}
		out = append(out, r)
	}
	return out
}

// Rules implements TokenColors.
func (t TextMateRules) Rules() []theme.TokenRule {
	return t.TextMateRules.Rules()
}

// Rules implements SemanticTokens. The "enabled" flag is not a selector and
// is skipped.
func (m RuleMap) Rules() theme.SemanticRules {
	return semanticFrom(m.raw, true)
}

// Rules implements SemanticTokens.
func (s SemanticSettings) Rules() theme.SemanticRules {
	return semanticFrom(s.RuleSet, false)
}

// ParseTokenColors picks the shape of a tokenColors payload. Unknown shapes
// yield nil.
func ParseTokenColors(raw json.RawMessage) TokenColors {
	switch {
	case isArray(raw):
		var l RuleList
		if json.Unmarshal(raw, &l) == nil {
			return l
		}
	case isObject(raw):
		var t struct {
			TextMateRules json.RawMessage `json:"textMateRules"`
		}
		if json.Unmarshal(raw, &t) == nil && isArray(t.TextMateRules) {
			var l RuleList
			if json.Unmarshal(t.TextMateRules, &l) == nil {
				return TextMateRules{TextMateRules: l}
			}
		}
	}
	return nil
}

// ParseSemanticTokens picks the shape of a semanticTokens payload. An object
// whose "rules" member is an object is the settings shape; any other object
// is a bare rule map. Non-objects yield nil.
func ParseSemanticTokens(raw json.RawMessage) SemanticTokens {
	if !isObject(raw) {
		return nil
	}
	var s SemanticSettings
	if json.Unmarshal(raw, &s) == nil && isObject(s.RuleSet) {
		return s
	}
	return RuleMap{raw: raw}
}

// DecodeModel resolves a {colors, tokenColors, semanticTokens} payload into
// a model. Missing parts default to empty and anything that is not an
// object yields an empty model.
func DecodeModel(raw json.RawMessage) theme.Model {
	m := theme.New()
	if !isObject(raw) {
		return m
	}
	var p struct {
		Colors         json.RawMessage `json:"colors"`
		TokenColors    json.RawMessage `json:"tokenColors"`
		SemanticTokens json.RawMessage `json:"semanticTokens"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Debugf("malformed theme payload: %s", err)
		return m
	}

	m.Colors = decodeColors(p.Colors)
	if tc := ParseTokenColors(p.TokenColors); tc != nil {
		m.TokenRules = tc.Rules()
	}
	if st := ParseSemanticTokens(p.SemanticTokens); st != nil {
		m.SemanticRules = st.Rules()
	}
	return m
}

func decodeColors(raw json.RawMessage) map[string]string {
	out := map[string]string{}
	if !isObject(raw) {
		return out
	}
	var vals map[string]json.RawMessage
	if json.Unmarshal(raw, &vals) != nil {
		return out
	}
	for k, v := range vals {
		var s string
		if json.Unmarshal(v, &s) != nil {
			log.Debugf("skipping color %s: not a string", k)
			continue
		}
		out[k] = s
	}
	return out
}

func semanticFrom(raw json.RawMessage, skipEnabled bool) theme.SemanticRules {
	var rules theme.SemanticRules
	if err := json.Unmarshal(raw, &rules); err != nil {
		log.Debugf("malformed semantic rules: %s", err)
		return theme.SemanticRules{}
	}
	var out theme.SemanticRules
	for _, k := range rules.Keys() {
		if skipEnabled && k == "enabled" {
			continue
		}
		v, _ := rules.Get(k)
		out.Set(k, v)
	}
	return out
}

func isObject(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '['
}
