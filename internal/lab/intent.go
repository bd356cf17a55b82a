package lab

import (
	"errors"

	"github.com/jsvensson/themelab/internal/theme"
	"github.com/jsvensson/themelab/internal/view"
)

// Intent is one user action. Model intents change the theme and go through
// history; the others only change UI state.
type Intent interface {
	isIntent()
}

// modelIntent mutates a copy of the model. A returned error leaves the live
// model untouched.
type modelIntent interface {
	Intent
	apply(m *theme.Model) error
}

// drafted intents carry user text that is kept as a draft when it is
// rejected as an invalid color.
type drafted interface {
	draft() (field, text string)
}

// errStale is returned for intents aimed at a row that no longer exists.
var errStale = errors.New("row no longer exists")

// Model intents.
type (
	SetColor struct {
		Key string
		Hex string
	}
	SetColorAlpha struct {
		Key string
		Pct float64
	}
	AddTokenRule    struct{}
	RemoveTokenRule struct {
		Index int
	}
	SetTokenField struct {
		Index int
		Field string
		Value string
	}
	ToggleTokenStyle struct {
		Index int
		Style string
		On    bool
	}
	AddSemanticRule        struct{}
	RenameSemanticSelector struct {
		Old string
		New string
	}
	RemoveSemanticRule struct {
		Selector string
	}
	SetSemanticForeground struct {
		Selector string
		Hex      string
	}
	SetSemanticFontStyle struct {
		Selector string
		Value    string
	}
	ToggleSemanticStyle struct {
		Selector string
		Style    string
		On       bool
	}
)

// History intents.
type (
	Undo struct{}
	Redo struct{}
)

// UI intents.
type (
	SelectLeftTab struct {
		Tab string
	}
	SelectDemo struct {
		Tab string
	}
	ToggleCategory struct {
		Name string
	}
	Scroll struct {
		Offset int
	}
	Search struct {
		Query string
	}
	// ToggleAdvanced flips the advanced section of a token (Panel
	// session.TabTokens) or semantic (session.TabSemantic) row.
	ToggleAdvanced struct {
		Panel string
		Index int
	}
	ToggleDescription struct {
		Key string
	}
	// Locate asks the host to highlight a preview element or colors row.
	Locate struct {
		ElementID string
	}
	// Request posts a workflow request such as protocol.RequestExportJSON.
	Request struct {
		Type string
	}
)

func (SetColor) isIntent()               {}
func (SetColorAlpha) isIntent()          {}
func (AddTokenRule) isIntent()           {}
func (RemoveTokenRule) isIntent()        {}
func (SetTokenField) isIntent()          {}
func (ToggleTokenStyle) isIntent()       {}
func (AddSemanticRule) isIntent()        {}
func (RenameSemanticSelector) isIntent() {}
func (RemoveSemanticRule) isIntent()     {}
func (SetSemanticForeground) isIntent()  {}
func (SetSemanticFontStyle) isIntent()   {}
func (ToggleSemanticStyle) isIntent()    {}
func (Undo) isIntent()                   {}
func (Redo) isIntent()                   {}
func (SelectLeftTab) isIntent()          {}
func (SelectDemo) isIntent()             {}
func (ToggleCategory) isIntent()         {}
func (Scroll) isIntent()                 {}
func (Search) isIntent()                 {}
func (ToggleAdvanced) isIntent()         {}
func (ToggleDescription) isIntent()      {}
func (Locate) isIntent()                 {}
func (Request) isIntent()                {}

func (i SetColor) apply(m *theme.Model) error { return m.SetColor(i.Key, i.Hex) }
func (i SetColor) draft() (string, string)    { return view.ColorField(i.Key), i.Hex }

func (i SetColorAlpha) apply(m *theme.Model) error {
	m.SetColorAlpha(i.Key, i.Pct)
	return nil
}

func (AddTokenRule) apply(m *theme.Model) error {
	m.AddTokenRule()
	return nil
}

func (i RemoveTokenRule) apply(m *theme.Model) error {
	if !inRange(m, i.Index) {
		return errStale
	}
	m.RemoveTokenRule(i.Index)
	return nil
}

func (i SetTokenField) apply(m *theme.Model) error {
	if !inRange(m, i.Index) {
		return errStale
	}
	return m.SetTokenRuleField(i.Index, i.Field, i.Value)
}

func (i SetTokenField) draft() (string, string) { return view.TokenField(i.Index, i.Field), i.Value }

func (i ToggleTokenStyle) apply(m *theme.Model) error {
	if !inRange(m, i.Index) {
		return errStale
	}
	return m.ToggleTokenFontStyle(i.Index, i.Style, i.On)
}

func (AddSemanticRule) apply(m *theme.Model) error {
	m.AddSemanticRule()
	return nil
}

func (i RenameSemanticSelector) apply(m *theme.Model) error {
	m.RenameSemanticSelector(i.Old, i.New)
	return nil
}

func (i RemoveSemanticRule) apply(m *theme.Model) error {
	m.RemoveSemanticRule(i.Selector)
	return nil
}

func (i SetSemanticForeground) apply(m *theme.Model) error {
	return m.SetSemanticForeground(i.Selector, i.Hex)
}

func (i SetSemanticForeground) draft() (string, string) {
	return view.SemanticField(i.Selector, theme.FieldForeground), i.Hex
}

func (i SetSemanticFontStyle) apply(m *theme.Model) error {
	m.SetSemanticFontStyle(i.Selector, i.Value)
	return nil
}

func (i ToggleSemanticStyle) apply(m *theme.Model) error {
	return m.ToggleSemanticFontStyle(i.Selector, i.Style, i.On)
}

func inRange(m *theme.Model, i int) bool {
	return i >= 0 && i < len(m.TokenRules)
}

// KeyIntent maps the history shortcuts to intents.
func KeyIntent(key string) (Intent, bool) {
	switch key {
	case "ctrl+z":
		return Undo{}, true
	case "ctrl+y", "ctrl+shift+z":
		return Redo{}, true
	}
	return nil, false
}
