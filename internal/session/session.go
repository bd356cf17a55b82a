// Package session persists the UI state and the last pushed model between
// runs of the editor.
package session

import (
	"context"
	"encoding/json"
	"maps"
	"sync"

	"github.com/jsvensson/themelab/internal/theme"
)

// Left panel tabs.
const (
	TabColors   = "colors"
	TabTokens   = "tokens"
	TabSemantic = "semantic"
)

// Preview demo tabs.
const (
	DemoEditor        = "editor"
	DemoPanels        = "panels"
	DemoProblems      = "problems"
	DemoTerminal      = "terminal"
	DemoNotifications = "notifications"
	DemoStatusBar     = "statusbar"
	DemoLists         = "lists"
)

// LeftTabs and DemoTabs list the tabs in display order.
var (
	LeftTabs = []string{TabColors, TabTokens, TabSemantic}
	DemoTabs = []string{DemoEditor, DemoPanels, DemoProblems, DemoTerminal, DemoNotifications, DemoStatusBar, DemoLists}
)

// UIState is the part of the UI that survives a reload.
type UIState struct {
	LeftTab    string          `json:"leftTab"`
	PreviewTab string          `json:"previewTab"`
	Search     string          `json:"search"`
	OpenCats   map[string]bool `json:"openCats"`
	LeftScroll int             `json:"leftScroll"`
}

// DefaultUIState is used when no prior session exists: colors tab, editor
// demo, no search, every category closed, no scroll.
func DefaultUIState() UIState {
	return UIState{
		LeftTab:    TabColors,
		PreviewTab: DemoEditor,
		OpenCats:   map[string]bool{},
	}
}

// Clone returns a copy that does not share OpenCats.
func (u UIState) Clone() UIState {
	u.OpenCats = maps.Clone(u.OpenCats)
	if u.OpenCats == nil {
		u.OpenCats = map[string]bool{}
	}
	return u
}

// UnmarshalJSON fills missing or empty fields with defaults.
func (u *UIState) UnmarshalJSON(data []byte) error {
	type plain UIState
	p := plain(DefaultUIState())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.LeftTab == "" {
		p.LeftTab = TabColors
	}
	if p.PreviewTab == "" {
		p.PreviewTab = DemoEditor
	}
	if p.OpenCats == nil {
		p.OpenCats = map[string]bool{}
	}
	if p.LeftScroll < 0 {
		p.LeftScroll = 0
	}
	*u = UIState(p)
	return nil
}

// Slot is the persisted session: the last pushed model and the UI state.
type Slot struct {
	Model theme.Model `json:"model"`
	UI    UIState     `json:"ui"`
}

// Store loads and saves the session slot.
type Store interface {
	// Load returns the saved slot. ok is false when nothing was saved yet.
	Load(ctx context.Context) (slot Slot, ok bool, err error)
	Save(ctx context.Context, slot Slot) error
	Close() error
}

// MemoryStore keeps the slot in memory as JSON, so loads observe the same
// decoding as a persistent store.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load(context.Context) (Slot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return Slot{}, false, nil
	}
	return decodeSlot(s.data)
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, slot Slot) error {
	b, err := json.Marshal(slot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = b
	s.mu.Unlock()
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func decodeSlot(data []byte) (Slot, bool, error) {
	slot := Slot{Model: theme.New(), UI: DefaultUIState()}
	if err := json.Unmarshal(data, &slot); err != nil {
		return Slot{}, false, err
	}
	if slot.Model.Colors == nil {
		slot.Model.Colors = map[string]string{}
	}
	if slot.Model.TokenRules == nil {
		slot.Model.TokenRules = []theme.TokenRule{}
	}
	return slot, true, nil
}
