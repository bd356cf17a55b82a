package view

import (
	"fmt"
	"strings"

	"github.com/jsvensson/themelab/internal/color"
	"github.com/jsvensson/themelab/internal/session"
	"github.com/jsvensson/themelab/internal/theme"
)

// Surface is one preview demo.
type Surface struct {
	ID     string
	Tab    string
	Title  string
	Active bool
	Pulse  bool
	Lines  []Line
}

// Line is one painted row of a surface. BG fills the width not covered by
// spans.
type Line struct {
	BG    string
	Spans []Span
}

// Span is a run of text in one style. Colors are opaque "#RRGGBB"; an empty
// BG inherits the line's.
type Span struct {
	Text      string
	FG        string
	BG        string
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
}

// Text returns the concatenated text of the line.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

var demoTitles = map[string]string{
	session.DemoEditor:        "Editor",
	session.DemoPanels:        "Panels",
	session.DemoProblems:      "Problems",
	session.DemoTerminal:      "Terminal",
	session.DemoNotifications: "Notifications",
	session.DemoStatusBar:     "Status Bar",
	session.DemoLists:         "Lists & Tabs",
}

// DemoTitle is the tab label of a demo.
func DemoTitle(tab string) string {
	if t, ok := demoTitles[tab]; ok {
		return t
	}
	return tab
}

func buildDemos(m theme.Model, st State) []Surface {
	p := palette(m.Colors)
	builders := map[string]func() []Line{
		session.DemoEditor:        func() []Line { return editorDemo(p, m) },
		session.DemoPanels:        func() []Line { return panelsDemo(p) },
		session.DemoProblems:      func() []Line { return problemsDemo(p) },
		session.DemoTerminal:      func() []Line { return terminalDemo(p) },
		session.DemoNotifications: func() []Line { return notificationsDemo(p) },
		session.DemoStatusBar:     func() []Line { return []Line{statusBarLine(p)} },
		session.DemoLists:         func() []Line { return listsDemo(p) },
	}
	out := make([]Surface, 0, len(session.DemoTabs))
	for _, tab := range session.DemoTabs {
		id := DemoID(tab)
		out = append(out, Surface{
			ID:     id,
			Tab:    tab,
			Title:  DemoTitle(tab),
			Active: tab == st.Demo,
			Pulse:  st.Pulse != "" && st.Pulse == id,
			Lines:  builders[tab](),
		})
	}
	return out
}

// codeToken is one word of the sample source with its TextMate scope and
// semantic token type.
type codeToken struct {
	text     string
	scope    string
	semantic string
}

var sampleCode = [][]codeToken{
	{{"// Design Lab preview", "comment.line.double-slash", ""}},
	{{"import", "keyword.control.import", ""}, {" { ", "", ""}, {"render", "variable.other.readwrite.alias", "function"}, {" } ", "", ""}, {"from", "keyword.control.from", ""}, {" ", "", ""}, {`"./ui"`, "string.quoted.double", ""}, {";", "punctuation.terminator", ""}},
	{},
	{{"export", "keyword.control.export", ""}, {" ", "", ""}, {"function", "storage.type.function", ""}, {" ", "", ""}, {"demo", "entity.name.function", "function"}, {"(", "", ""}, {"count", "variable.parameter", "parameter"}, {": ", "", ""}, {"number", "support.type.primitive", "type"}, {") {", "", ""}},
	{{"  ", "", ""}, {"const", "storage.type", ""}, {" ", "", ""}, {"label", "variable.other.constant", "variable"}, {" = ", "keyword.operator", ""}, {`"Hello theme"`, "string.quoted.double", ""}, {";", "punctuation.terminator", ""}},
	{{"  ", "", ""}, {"console", "support.class.console", "variable"}, {".", "", ""}, {"log", "support.function.console", "method"}, {"(", "", ""}, {"label", "variable.other.constant", "variable"}, {", ", "", ""}, {"count", "variable.parameter", "parameter"}, {" + ", "keyword.operator", ""}, {"1", "constant.numeric", ""}, {");", "", ""}},
	{{"  ", "", ""}, {"return", "keyword.control.flow", ""}, {" ", "", ""}, {"render", "entity.name.function", "function"}, {"(", "", ""}, {"label", "variable.other.constant", "variable"}, {");", "", ""}},
	{{"}", "", ""}},
}

const (
	activeCodeLine   = 5
	selectedCodeLine = 4
)

func editorDemo(p palette, m theme.Model) []Line {
	bg := p.hex("editor.background")
	fg := p.on("editor.foreground", "editor.background")

	lines := []Line{
		{BG: p.hex("titleBar.activeBackground"), Spans: []Span{{Text: " Design Lab · Editor Preview", FG: p.on("titleBar.activeForeground", "titleBar.activeBackground")}}},
		tabStrip(p),
		{BG: bg, Spans: []Span{{Text: " src › demo.ts › demo", FG: p.on("breadcrumb.foreground", "editor.background")}}},
	}

	for i, toks := range sampleCode {
		lineBG := bg
		numFG := p.on("editorLineNumber.foreground", "editor.background")
		if i == activeCodeLine {
			lineBG = p.on("editor.lineHighlightBackground", "editor.background")
			numFG = p.on("editorLineNumber.activeForeground", "editor.background")
		}
		spans := []Span{{Text: fmt.Sprintf("%3d  ", i+1), FG: numFG}}
		for _, tok := range toks {
			span := Span{Text: tok.text, FG: fg}
			if tok.scope != "" || tok.semantic != "" {
				style := ResolveTokenStyle(m, tok.scope, tok.semantic)
				if style.Foreground != "" {
					span.FG = p.onValue(style.Foreground, fg)
				}
				applyFontStyle(&span, style.FontStyle)
			}
			if i == selectedCodeLine && strings.HasPrefix(tok.scope, "string") {
				span.BG = p.on("editor.selectionBackground", "editor.background")
			}
			spans = append(spans, span)
		}
		lines = append(lines, Line{BG: lineBG, Spans: spans})
	}

	lines = append(lines,
		Line{BG: p.hex("notifications.background"), Spans: []Span{{Text: " 🔔 Theme preview updated", FG: p.on("notifications.foreground", "notifications.background")}}},
		panelTitleLine(p),
		statusBarLine(p),
	)
	return lines
}

func tabStrip(p palette) Line {
	return Line{
		BG: p.hex("editorGroupHeader.tabsBackground"),
		Spans: []Span{
			{Text: " demo.ts ", FG: p.on("tab.activeForeground", "tab.activeBackground"), BG: p.hex("tab.activeBackground")},
			{Text: " README.md ", FG: p.on("tab.inactiveForeground", "tab.inactiveBackground"), BG: p.hex("tab.inactiveBackground")},
		},
	}
}

func panelTitleLine(p palette) Line {
	return Line{
		BG: p.hex("panel.background"),
		Spans: []Span{
			{Text: " PROBLEMS", FG: p.on("panelTitle.activeForeground", "panel.background"), Underline: true},
			{Text: "  OUTPUT  TERMINAL", FG: p.on("panelTitle.inactiveForeground", "panel.background")},
		},
	}
}

func statusBarLine(p palette) Line {
	fg := p.on("statusBar.foreground", "statusBar.background")
	return Line{
		BG: p.hex("statusBar.background"),
		Spans: []Span{
			{Text: " ⌁ WSL ", FG: p.on("statusBarItem.remoteForeground", "statusBarItem.remoteBackground"), BG: p.hex("statusBarItem.remoteBackground")},
			{Text: " main ↻  ⓧ 0  ⚠ 1    Ln 12, Col 8  UTF-8  LF  TypeScript ", FG: fg},
		},
	}
}

func panelsDemo(p palette) []Line {
	bg := p.hex("panel.background")
	return []Line{
		panelTitleLine(p),
		{BG: bg, Spans: []Span{{Text: " " + strings.Repeat("─", 40), FG: p.on("panel.border", "panel.background")}}},
		{BG: bg, Spans: []Span{{Text: " Some content inside a panel area.", FG: p.on("foreground", "panel.background")}}},
	}
}

func problemsDemo(p palette) []Line {
	bg := p.hex("panel.background")
	text := p.on("foreground", "panel.background")
	row := func(icon, key, msg string) Line {
		return Line{BG: bg, Spans: []Span{
			{Text: " " + icon + " ", FG: p.on(key, "panel.background")},
			{Text: msg, FG: text},
		}}
	}
	return []Line{
		panelTitleLine(p),
		row("ⓧ", "problemsErrorIcon.foreground", "Cannot find name 'lable'. ts(2304) [Ln 7, Col 17]"),
		row("⚠", "problemsWarningIcon.foreground", "'count' is declared but never read. ts(6133) [Ln 4, Col 22]"),
		row("ℹ", "problemsInfoIcon.foreground", "Consider a const assertion. [Ln 5, Col 9]"),
	}
}

func terminalDemo(p palette) []Line {
	bg := p.hex("terminal.background")
	on := func(key string) string { return p.on(key, "terminal.background") }
	return []Line{
		{BG: bg, Spans: []Span{{Text: " $ npm run build", FG: on("terminal.foreground")}}},
		{BG: bg, Spans: []Span{{Text: " ✔ compiled successfully in 812 ms", FG: on("terminal.ansiGreen")}}},
		{BG: bg, Spans: []Span{{Text: " ⚠ 1 unused export", FG: on("terminal.ansiYellow")}}},
		{BG: bg, Spans: []Span{{Text: " ✖ 0 errors", FG: on("terminal.ansiRed")}, {Text: "  see ", FG: on("terminal.foreground")}, {Text: "dist/", FG: on("terminal.ansiBlue")}}},
		{BG: bg, Spans: []Span{{Text: " $ ", FG: on("terminal.foreground")}, {Text: "█", FG: on("terminalCursor.foreground")}}},
	}
}

func notificationsDemo(p palette) []Line {
	bg := p.hex("notifications.background")
	return []Line{
		{BG: bg, Spans: []Span{{Text: " " + strings.Repeat("─", 36), FG: p.on("notifications.border", "notifications.background")}}},
		{BG: bg, Spans: []Span{{Text: " 🔔 Build completed successfully.", FG: p.on("notifications.foreground", "notifications.background")}}},
		{BG: bg, Spans: []Span{{Text: "    Open output", FG: p.on("notificationLink.foreground", "notifications.background"), Underline: true}}},
	}
}

func listsDemo(p palette) []Line {
	bg := p.hex("sideBar.background")
	fg := p.on("sideBar.foreground", "sideBar.background")
	return []Line{
		tabStrip(p),
		{BG: bg, Spans: []Span{{Text: " ▾ src", FG: fg}}},
		{BG: p.hex("list.activeSelectionBackground"), Spans: []Span{
			{Text: "   ", FG: fg},
			{Text: "dem", FG: p.on("list.highlightForeground", "list.activeSelectionBackground"), Bold: true},
			{Text: "o.ts", FG: p.on("list.activeSelectionForeground", "list.activeSelectionBackground")},
		}},
		{BG: p.on("list.hoverBackground", "sideBar.background"), Spans: []Span{{Text: "   ui.ts", FG: fg}}},
		{BG: p.on("list.inactiveSelectionBackground", "sideBar.background"), Spans: []Span{{Text: "   README.md", FG: fg}}},
		{BG: bg, Spans: []Span{
			{Text: "   package.json ", FG: fg},
			{Text: " 2 ", FG: p.on("badge.foreground", "badge.background"), BG: p.on("badge.background", "sideBar.background")},
		}},
	}
}

// onValue flattens a rule's foreground over the editor background, falling
// back to fallback when it does not parse.
func (p palette) onValue(v, fallback string) string {
	c, err := color.ParseHex(v)
	if err != nil {
		return fallback
	}
	return color.Composite(c, p.solid("editor.background")).Hex()
}

func applyFontStyle(s *Span, fontStyle string) {
	s.Bold = theme.HasFontStyle(fontStyle, "bold")
	s.Italic = theme.HasFontStyle(fontStyle, "italic")
	s.Underline = theme.HasFontStyle(fontStyle, "underline")
	s.Strike = theme.HasFontStyle(fontStyle, "strikethrough")
}
