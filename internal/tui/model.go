// Package tui is the terminal front end of the editor. It paints the
// document built by the core and turns key presses into intents.
package tui

import (
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jsvensson/themelab/internal/lab"
	"github.com/jsvensson/themelab/internal/protocol"
	"github.com/jsvensson/themelab/internal/session"
	"github.com/jsvensson/themelab/internal/theme"
	"github.com/jsvensson/themelab/internal/view"
)

// Core is the part of lab.Controller the front end drives.
type Core interface {
	Dispatch(in lab.Intent) error
	Document() view.Document
	Updates() <-chan struct{}
}

// updateMsg reports a change made by the core outside Dispatch.
type updateMsg struct{}

// noticeMsg is a short message from the host, shown in the footer.
type noticeMsg string

type editKind int

const (
	editNone editKind = iota
	editColor
	editAlpha
	editToken
	editSemanticForeground
	editSemanticStyle
	editRename
	editSearch
)

// edit is the field the text input is bound to.
type edit struct {
	kind  editKind
	key   string // color key or semantic selector
	index int
	field string
}

// Model is the bubbletea model of the editor.
type Model struct {
	core    Core
	keys    KeyMap
	help    help.Model
	input   textinput.Model
	notices <-chan string

	doc     view.Document
	cursor  map[string]int
	editing edit
	notice  string
	pulse   string

	width  int
	height int
}

// New returns a model driving core. Notices, when not nil, are shown in the
// footer as they arrive.
func New(core Core, notices <-chan string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256

	m := Model{
		core:    core,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		input:   ti,
		notices: notices,
		cursor:  map[string]int{},
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.core.Updates()), waitForNotice(m.notices))
}

func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return updateMsg{}
	}
}

func waitForNotice(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		text, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(text)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case updateMsg:
		m.refresh()
		return m, waitForUpdate(m.core.Updates())

	case noticeMsg:
		m.notice = string(msg)
		return m, waitForNotice(m.notices)

	case tea.KeyMsg:
		if m.editing.kind != editNone {
			return m.updateEditing(msg)
		}
		return m.updateNormal(msg)
	}

	if m.editing.kind != editNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if in, ok := lab.KeyIntent(msg.String()); ok {
		m.dispatch(in)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Escape):
		m.notice = ""
	case key.Matches(msg, m.keys.NextTab):
		m.dispatch(lab.SelectLeftTab{Tab: cycle(session.LeftTabs, m.doc.LeftTab, 1)})
	case key.Matches(msg, m.keys.PrevTab):
		m.dispatch(lab.SelectLeftTab{Tab: cycle(session.LeftTabs, m.doc.LeftTab, -1)})
	case key.Matches(msg, m.keys.NextDemo):
		m.dispatch(lab.SelectDemo{Tab: cycle(session.DemoTabs, m.doc.Demo, 1)})
	case key.Matches(msg, m.keys.PrevDemo):
		m.dispatch(lab.SelectDemo{Tab: cycle(session.DemoTabs, m.doc.Demo, -1)})
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Search):
		cmd := m.startEdit(edit{kind: editSearch}, m.doc.Search)
		return m, cmd
	case key.Matches(msg, m.keys.Import):
		m.dispatch(lab.Request{Type: protocol.RequestImport})
	case key.Matches(msg, m.keys.UseCurrent):
		m.dispatch(lab.Request{Type: protocol.RequestUseCurrent})
	case key.Matches(msg, m.keys.Blank):
		m.dispatch(lab.Request{Type: protocol.RequestStartBlank})
	case key.Matches(msg, m.keys.ExportJSON):
		m.dispatch(lab.Request{Type: protocol.RequestExportJSON})
	case key.Matches(msg, m.keys.ExportCSS):
		m.dispatch(lab.Request{Type: protocol.RequestExportCSS})
	case key.Matches(msg, m.keys.ExportVSIX):
		m.dispatch(lab.Request{Type: protocol.RequestExportVSIX})
	case key.Matches(msg, m.keys.ExportHCL):
		m.dispatch(lab.Request{Type: protocol.RequestExportHCL})
	case key.Matches(msg, m.keys.Save):
		m.dispatch(lab.Request{Type: protocol.RequestSaveTheme})
	default:
		switch m.doc.LeftTab {
		case session.TabTokens:
			return m.updateTokens(msg)
		case session.TabSemantic:
			return m.updateSemantic(msg)
		default:
			return m.updateColors(msg)
		}
	}
	return m, nil
}

func (m Model) updateColors(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	line, ok := m.currentColorLine()
	if !ok {
		return m, nil
	}
	if line.row == nil {
		if key.Matches(msg, m.keys.Enter) {
			m.dispatch(lab.ToggleCategory{Name: line.group.Name})
		}
		return m, nil
	}

	row := *line.row
	switch {
	case key.Matches(msg, m.keys.Enter):
		cmd := m.startEdit(edit{kind: editColor, key: row.Key}, row.Input.Text)
		return m, cmd
	case key.Matches(msg, m.keys.EditAlpha):
		cmd := m.startEdit(edit{kind: editAlpha, key: row.Key}, strconv.Itoa(row.Alpha))
		return m, cmd
	case key.Matches(msg, m.keys.AlphaUp):
		m.dispatch(lab.SetColorAlpha{Key: row.Key, Pct: float64(row.Alpha + 5)})
	case key.Matches(msg, m.keys.AlphaDown):
		m.dispatch(lab.SetColorAlpha{Key: row.Key, Pct: float64(row.Alpha - 5)})
	case key.Matches(msg, m.keys.Description):
		m.dispatch(lab.ToggleDescription{Key: row.Key})
	case key.Matches(msg, m.keys.Locate):
		m.dispatch(lab.Locate{ElementID: row.Demo})
	}
	return m, nil
}

func (m Model) updateTokens(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Add) {
		m.dispatch(lab.AddTokenRule{})
		m.cursor[session.TabTokens] = len(visibleTokens(m.doc)) - 1
		return m, nil
	}
	row, ok := m.currentToken()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Remove):
		m.dispatch(lab.RemoveTokenRule{Index: row.Index})
	case key.Matches(msg, m.keys.Enter):
		cmd := m.startEdit(edit{kind: editToken, index: row.Index, field: theme.FieldForeground}, row.Foreground.Text)
		return m, cmd
	case key.Matches(msg, m.keys.EditScope):
		cmd := m.startEdit(edit{kind: editToken, index: row.Index, field: theme.FieldScope}, row.Scope.Text)
		return m, cmd
	case key.Matches(msg, m.keys.EditStyle):
		cmd := m.startEdit(edit{kind: editToken, index: row.Index, field: theme.FieldFontStyle}, row.FontStyle.Text)
		return m, cmd
	case key.Matches(msg, m.keys.Advanced):
		m.dispatch(lab.ToggleAdvanced{Panel: session.TabTokens, Index: row.Index})
	default:
		if style, ok := m.styleKey(msg); ok {
			m.dispatch(lab.ToggleTokenStyle{Index: row.Index, Style: style, On: !flagOn(row.Styles, style)})
		}
	}
	return m, nil
}

func (m Model) updateSemantic(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Add) {
		m.dispatch(lab.AddSemanticRule{})
		m.cursor[session.TabSemantic] = len(visibleSemantic(m.doc)) - 1
		return m, nil
	}
	row, ok := m.currentSemantic()
	if !ok {
		return m, nil
	}
	sel := row.Selector.Text
	switch {
	case key.Matches(msg, m.keys.Remove):
		m.dispatch(lab.RemoveSemanticRule{Selector: sel})
	case key.Matches(msg, m.keys.Enter):
		cmd := m.startEdit(edit{kind: editSemanticForeground, key: sel}, row.Foreground.Text)
		return m, cmd
	case key.Matches(msg, m.keys.Rename):
		cmd := m.startEdit(edit{kind: editRename, key: sel}, sel)
		return m, cmd
	case key.Matches(msg, m.keys.EditStyle):
		cmd := m.startEdit(edit{kind: editSemanticStyle, key: sel}, row.FontStyle.Text)
		return m, cmd
	case key.Matches(msg, m.keys.Advanced):
		m.dispatch(lab.ToggleAdvanced{Panel: session.TabSemantic, Index: row.Index})
	default:
		if style, ok := m.styleKey(msg); ok {
			m.dispatch(lab.ToggleSemanticStyle{Selector: sel, Style: style, On: !flagOn(row.Styles, style)})
		}
	}
	return m, nil
}

func (m Model) styleKey(msg tea.KeyMsg) (string, bool) {
	switch {
	case key.Matches(msg, m.keys.Bold):
		return "bold", true
	case key.Matches(msg, m.keys.Italic):
		return "italic", true
	case key.Matches(msg, m.keys.Underline):
		return "underline", true
	case key.Matches(msg, m.keys.Strike):
		return "strikethrough", true
	}
	return "", false
}

func (m *Model) startEdit(e edit, value string) tea.Cmd {
	m.editing = e
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) stopEdit() {
	m.editing = edit{}
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.editing.kind == editSearch {
			m.dispatch(lab.Search{Query: ""})
		}
		m.stopEdit()
		return m, nil
	case tea.KeyEnter:
		e, value := m.editing, m.input.Value()
		m.stopEdit()
		m.commit(e, value)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.editing.kind == editSearch && m.input.Value() != m.doc.Search {
		m.dispatch(lab.Search{Query: m.input.Value()})
	}
	return m, cmd
}

// commit turns the edited text into an intent.
func (m *Model) commit(e edit, value string) {
	switch e.kind {
	case editColor:
		m.dispatch(lab.SetColor{Key: e.key, Hex: value})
	case editAlpha:
		pct, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(value, "%")), 64)
		if err != nil {
			m.notice = "alpha must be a number between 0 and 100"
			return
		}
		m.dispatch(lab.SetColorAlpha{Key: e.key, Pct: pct})
	case editToken:
		m.dispatch(lab.SetTokenField{Index: e.index, Field: e.field, Value: value})
	case editSemanticForeground:
		m.dispatch(lab.SetSemanticForeground{Selector: e.key, Hex: value})
	case editSemanticStyle:
		m.dispatch(lab.SetSemanticFontStyle{Selector: e.key, Value: value})
	case editRename:
		if value = strings.TrimSpace(value); value != "" {
			m.dispatch(lab.RenameSemanticSelector{Old: e.key, New: value})
		}
	case editSearch:
		if value != m.doc.Search {
			m.dispatch(lab.Search{Query: value})
		}
	}
}

func (m *Model) dispatch(in lab.Intent) {
	if err := m.core.Dispatch(in); err != nil {
		m.notice = err.Error()
	}
	m.refresh()
}

// refresh pulls the document and keeps the cursors in range. A locate that
// targets a colors row moves the cursor onto it.
func (m *Model) refresh() {
	m.doc = m.core.Document()
	if m.doc.Pulse != m.pulse {
		m.pulse = m.doc.Pulse
		if key, ok := view.KeyFromRowID(m.pulse); ok {
			if line, ok := m.doc.ColorLine(key); ok {
				m.cursor[session.TabColors] = line
			}
		}
	}
	for _, tab := range session.LeftTabs {
		n := m.selectable(tab)
		c := m.cursor[tab]
		if c >= n {
			c = n - 1
		}
		m.cursor[tab] = max(c, 0)
	}
}

func (m *Model) moveCursor(delta int) {
	tab := m.doc.LeftTab
	n := m.selectable(tab)
	if n == 0 {
		return
	}
	c := min(max(m.cursor[tab]+delta, 0), n-1)
	m.cursor[tab] = c

	if tab != session.TabColors {
		return
	}
	h := m.listHeight()
	switch {
	case c < m.doc.Scroll:
		m.dispatch(lab.Scroll{Offset: c})
	case c >= m.doc.Scroll+h:
		m.dispatch(lab.Scroll{Offset: c - h + 1})
	}
}

func (m Model) selectable(tab string) int {
	switch tab {
	case session.TabTokens:
		return len(visibleTokens(m.doc))
	case session.TabSemantic:
		return len(visibleSemantic(m.doc))
	default:
		return m.doc.ColorLines()
	}
}

// colorLine is one painted line of the colors panel: a group header when
// row is nil.
type colorLine struct {
	group *view.Group
	row   *view.ColorRow
}

// colorLines lists the lines in the order view.Document.ColorLine counts
// them.
func colorLines(doc view.Document) []colorLine {
	var lines []colorLine
	for i := range doc.Groups {
		g := &doc.Groups[i]
		if g.Hidden {
			continue
		}
		lines = append(lines, colorLine{group: g})
		if !g.Open {
			continue
		}
		for j := range g.Rows {
			if !g.Rows[j].Hidden {
				lines = append(lines, colorLine{group: g, row: &g.Rows[j]})
			}
		}
	}
	return lines
}

func visibleTokens(doc view.Document) []view.TokenRow {
	var rows []view.TokenRow
	for _, r := range doc.Tokens {
		if !r.Hidden {
			rows = append(rows, r)
		}
	}
	return rows
}

func visibleSemantic(doc view.Document) []view.SemanticRow {
	var rows []view.SemanticRow
	for _, r := range doc.Semantic {
		if !r.Hidden {
			rows = append(rows, r)
		}
	}
	return rows
}

func (m Model) currentColorLine() (colorLine, bool) {
	lines := colorLines(m.doc)
	c := m.cursor[session.TabColors]
	if c < 0 || c >= len(lines) {
		return colorLine{}, false
	}
	return lines[c], true
}

func (m Model) currentToken() (view.TokenRow, bool) {
	rows := visibleTokens(m.doc)
	c := m.cursor[session.TabTokens]
	if c < 0 || c >= len(rows) {
		return view.TokenRow{}, false
	}
	return rows[c], true
}

func (m Model) currentSemantic() (view.SemanticRow, bool) {
	rows := visibleSemantic(m.doc)
	c := m.cursor[session.TabSemantic]
	if c < 0 || c >= len(rows) {
		return view.SemanticRow{}, false
	}
	return rows[c], true
}

func flagOn(flags []view.StyleFlag, name string) bool {
	for _, f := range flags {
		if f.Name == name {
			return f.On
		}
	}
	return false
}

// cycle returns the tab delta steps away from cur, wrapping around.
func cycle(tabs []string, cur string, delta int) string {
	i := slices.Index(tabs, cur)
	if i < 0 {
		return tabs[0]
	}
	n := len(tabs)
	return tabs[((i+delta)%n+n)%n]
}
