package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/jsvensson/themelab/internal/session"
	"github.com/jsvensson/themelab/internal/view"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	minLeftWidth  = 40
	// chrome is the number of lines taken by the header, panel borders,
	// the detail line and the footer.
	chrome = 8
)

var (
	accentColor  = lipgloss.Color("#7D56F4")
	mutedColor   = lipgloss.Color("#777777")
	errorColor   = lipgloss.Color("#FF6B6B")
	noticeColor  = lipgloss.Color("#FECA57")
	pulseColor   = lipgloss.Color("#FECA57")
	borderColor  = lipgloss.Color("#444444")
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	activeTab    = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(accentColor)
	inactiveTab  = lipgloss.NewStyle().Foreground(mutedColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	invalidStyle = lipgloss.NewStyle().Foreground(errorColor)
	noticeStyle  = lipgloss.NewStyle().Foreground(noticeColor)
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	pulseStyle   = lipgloss.NewStyle().Reverse(true)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor)
)

var leftTitles = map[string]string{
	session.TabColors:   "Colors",
	session.TabTokens:   "Tokens",
	session.TabSemantic: "Semantic",
}

// View implements tea.Model.
func (m Model) View() string {
	width, _ := m.size()
	leftW := max(width/2, minLeftWidth)
	rightW := max(width-leftW, 20)

	left := panelStyle.Width(leftW - 2).Render(m.renderLeft(leftW - 2))
	right := m.previewPanel(rightW - 2)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		m.renderFooter(),
	)
}

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// listHeight is the number of list lines that fit in the left panel.
func (m Model) listHeight() int {
	_, h := m.size()
	return max(h-chrome, 3)
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, len(session.LeftTabs))
	for _, t := range session.LeftTabs {
		style := inactiveTab
		if t == m.doc.LeftTab {
			style = activeTab
		}
		tabs = append(tabs, style.Render(leftTitles[t]))
	}
	parts := []string{titleStyle.Render("themelab"), strings.Join(tabs, "  "), mutedStyle.Render(m.doc.Status)}
	if m.doc.Search != "" {
		parts = append(parts, mutedStyle.Render("search: "+m.doc.Search))
	}
	return strings.Join(parts, "   ")
}

func (m Model) renderFooter() string {
	if m.editing.kind != editNone {
		return editLabel(m.editing) + " " + m.input.View()
	}
	var b strings.Builder
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func editLabel(e edit) string {
	switch e.kind {
	case editColor:
		return e.key
	case editAlpha:
		return e.key + " alpha %"
	case editToken:
		return fmt.Sprintf("token %d %s", e.index+1, e.field)
	case editSemanticForeground:
		return e.key + " foreground"
	case editSemanticStyle:
		return e.key + " fontStyle"
	case editRename:
		return "rename " + e.key
	case editSearch:
		return "search"
	}
	return ""
}

func (m Model) renderLeft(width int) string {
	var lines []string
	detail := ""
	switch m.doc.LeftTab {
	case session.TabTokens:
		lines = m.tokenLines()
	case session.TabSemantic:
		lines = m.semanticLines()
	default:
		lines, detail = m.colorPanel()
	}
	if len(lines) == 0 {
		lines = []string{mutedStyle.Render("nothing to show")}
	}
	h := m.listHeight()
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	for i, l := range lines {
		lines[i] = truncate(l, width)
	}
	return strings.Join(lines, "\n") + "\n" + truncate(detail, width)
}

// colorPanel returns the visible window of the colors panel, starting at
// the document scroll offset, and the description of the selected row.
func (m Model) colorPanel() ([]string, string) {
	all := colorLines(m.doc)
	cur := m.cursor[session.TabColors]
	out := make([]string, 0, len(all))
	detail := ""
	for i, l := range all {
		selected := i == cur
		if l.row == nil {
			arrow := "▸"
			if l.group.Open {
				arrow = "▾"
			}
			out = append(out, marker(selected)+fmt.Sprintf("%s %s %s", arrow, l.group.Icon, l.group.Name))
			continue
		}
		out = append(out, marker(selected)+"  "+colorRowLine(*l.row))
		if selected {
			detail = mutedStyle.Render(l.row.Description.Text())
			if t := l.row.Description.Toggle(); t != "" {
				detail += " " + cursorStyle.Render("["+t+"]")
			}
		}
	}
	start := min(max(m.doc.Scroll, 0), len(out))
	return out[start:], detail
}

func colorRowLine(r view.ColorRow) string {
	value := r.Input.Text
	switch {
	case r.Input.Invalid:
		value = invalidStyle.Render(value + " ✗")
	case value == "":
		value = mutedStyle.Render("(default)")
	}
	line := fmt.Sprintf("%s %s %s %s %s", r.Icon, r.Key, swatch(r.Swatch, r.Value == ""), value, mutedStyle.Render(fmt.Sprintf("%d%%", r.Alpha)))
	if r.Pulse {
		line = pulseStyle.Render(line)
	}
	return line
}

func (m Model) tokenLines() []string {
	rows := visibleTokens(m.doc)
	cur := m.cursor[session.TabTokens]
	out := make([]string, 0, len(rows))
	for i, r := range rows {
		out = append(out, marker(i == cur)+fmt.Sprintf("%s  %s %s %s %s",
			r.Title, fieldText(r.Scope, "(no scope)"), swatch(r.Swatch, r.Unset), fieldText(r.Foreground, "unset"), styleFlags(r.Styles)))
		if r.Advanced {
			out = append(out, "    fontStyle: "+fieldText(r.FontStyle, "(none)"))
		}
	}
	return windowed(out, cur, m.listHeight())
}

func (m Model) semanticLines() []string {
	rows := visibleSemantic(m.doc)
	cur := m.cursor[session.TabSemantic]
	out := make([]string, 0, len(rows))
	for i, r := range rows {
		out = append(out, marker(i == cur)+fmt.Sprintf("%s %s %s %s",
			fieldText(r.Selector, "(empty)"), swatch(r.Swatch, r.Unset), fieldText(r.Foreground, "unset"), styleFlags(r.Styles)))
		if r.Advanced {
			out = append(out, "    fontStyle: "+fieldText(r.FontStyle, "(none)"))
		}
	}
	return windowed(out, cur, m.listHeight())
}

// windowed scrolls a list so that line cur stays visible.
func windowed(lines []string, cur, height int) []string {
	if len(lines) <= height || cur < height {
		return lines
	}
	return lines[cur-height+1:]
}

func (m Model) previewPanel(width int) string {
	tabs := make([]string, 0, len(session.DemoTabs))
	for _, t := range session.DemoTabs {
		style := inactiveTab
		if t == m.doc.Demo {
			style = activeTab
		}
		tabs = append(tabs, style.Render(view.DemoTitle(t)))
	}

	lines := []string{truncate(strings.Join(tabs, " "), width)}
	style := panelStyle
	if s, ok := m.doc.Surface(view.DemoID(m.doc.Demo)); ok {
		for _, l := range s.Lines {
			lines = append(lines, paintLine(l, width))
		}
		if s.Pulse {
			style = style.BorderForeground(pulseColor)
		}
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

// paintLine renders the spans of a demo line and fills the rest of the
// width with the line background.
func paintLine(l view.Line, width int) string {
	var b strings.Builder
	used := 0
	for _, s := range l.Spans {
		text := s.Text
		if used+lipgloss.Width(text) > width {
			text = truncate(text, width-used)
		}
		if text == "" {
			break
		}
		st := lipgloss.NewStyle().
			Bold(s.Bold).
			Italic(s.Italic).
			Underline(s.Underline).
			Strikethrough(s.Strike)
		if s.FG != "" {
			st = st.Foreground(lipgloss.Color(s.FG))
		}
		if bg := s.BG; bg != "" {
			st = st.Background(lipgloss.Color(bg))
		} else if l.BG != "" {
			st = st.Background(lipgloss.Color(l.BG))
		}
		b.WriteString(st.Render(text))
		used += lipgloss.Width(text)
	}
	if rest := width - used; rest > 0 {
		fill := lipgloss.NewStyle()
		if l.BG != "" {
			fill = fill.Background(lipgloss.Color(l.BG))
		}
		b.WriteString(fill.Render(strings.Repeat(" ", rest)))
	}
	return b.String()
}

func marker(selected bool) string {
	if selected {
		return cursorStyle.Render("› ")
	}
	return "  "
}

// swatch paints a color sample. Unset values show the sentinel swatch.
func swatch(hex string, unset bool) string {
	if unset {
		return mutedStyle.Render("░░")
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}

func fieldText(f view.Field, empty string) string {
	switch {
	case f.Invalid:
		return invalidStyle.Render(f.Text + " ✗")
	case f.Text == "":
		return mutedStyle.Render(empty)
	}
	return f.Text
}

func styleFlags(flags []view.StyleFlag) string {
	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		label := strings.ToUpper(f.Name[:1])
		if f.On {
			parts = append(parts, cursorStyle.Render(label))
		} else {
			parts = append(parts, mutedStyle.Render(label))
		}
	}
	return strings.Join(parts, "")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
