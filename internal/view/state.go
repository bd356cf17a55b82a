// Package view derives the renderable document of the editor from the theme
// model, the category taxonomy and the transient UI state. Building never
// mutates its inputs.
package view

import (
	"fmt"
	"maps"
	"strings"

	"github.com/jsvensson/themelab/internal/session"
)

// State is the UI state the model does not own. The persistent part maps to
// session.UIState; the rest lives only as long as the process.
type State struct {
	LeftTab  string
	Demo     string
	Search   string
	OpenCats map[string]bool
	Scroll   int

	// Advanced flags of token and semantic rows, keyed by row index.
	TokenAdvanced    map[int]bool
	SemanticAdvanced map[int]bool

	// Expanded descriptions, keyed by color key.
	DescExpanded map[string]bool

	// Drafts holds rejected input per field id. A field with a draft is
	// shown as invalid.
	Drafts map[string]string

	// Pulse is the element currently highlighted by a locate.
	Pulse string

	Undo, Redo int
	Dirty      bool
}

// NewState returns the state used when no session was saved.
func NewState() State {
	return FromUI(session.DefaultUIState())
}

// FromUI builds a State from persisted UI state.
func FromUI(ui session.UIState) State {
	st := State{
		LeftTab:          ui.LeftTab,
		Demo:             ui.PreviewTab,
		Search:           ui.Search,
		OpenCats:         maps.Clone(ui.OpenCats),
		Scroll:           ui.LeftScroll,
		TokenAdvanced:    map[int]bool{},
		SemanticAdvanced: map[int]bool{},
		DescExpanded:     map[string]bool{},
		Drafts:           map[string]string{},
	}
	if st.OpenCats == nil {
		st.OpenCats = map[string]bool{}
	}
	if st.LeftTab == "" {
		st.LeftTab = session.TabColors
	}
	if st.Demo == "" {
		st.Demo = session.DemoEditor
	}
	return st
}

// UI returns the persistent part of the state.
func (s State) UI() session.UIState {
	open := maps.Clone(s.OpenCats)
	if open == nil {
		open = map[string]bool{}
	}
	return session.UIState{
		LeftTab:    s.LeftTab,
		PreviewTab: s.Demo,
		Search:     s.Search,
		OpenCats:   open,
		LeftScroll: s.Scroll,
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.OpenCats = maps.Clone(s.OpenCats)
	s.TokenAdvanced = maps.Clone(s.TokenAdvanced)
	s.SemanticAdvanced = maps.Clone(s.SemanticAdvanced)
	s.DescExpanded = maps.Clone(s.DescExpanded)
	s.Drafts = maps.Clone(s.Drafts)
	return s
}

// ColorRowID is the element id of the colors row for key.
func ColorRowID(key string) string {
	return "row-" + key
}

// TokenRowID is the element id of the token row at index i.
func TokenRowID(i int) string {
	return fmt.Sprintf("token-%d", i)
}

// SemanticRowID is the element id of the semantic row at index i.
func SemanticRowID(i int) string {
	return fmt.Sprintf("semantic-%d", i)
}

// ColorField, TokenField and SemanticField name the text inputs that can
// hold drafts.
func ColorField(key string) string {
	return ColorRowID(key) + "/hex"
}

func TokenField(i int, field string) string {
	return TokenRowID(i) + "/" + field
}

func SemanticField(selector, field string) string {
	return "semantic:" + selector + "/" + field
}

// KeyFromRowID returns the color key of a "row-<key>" id.
func KeyFromRowID(id string) (string, bool) {
	return strings.CutPrefix(id, "row-")
}
