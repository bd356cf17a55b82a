package view

import (
	"strings"

	"github.com/jsvensson/themelab/internal/session"
)

// DescriptionLimit is the length above which descriptions are summarized.
const DescriptionLimit = 160

type iconRule struct {
	match string
	icon  string
}

// First match wins.
var rowIcons = []iconRule{
	{"background", "🖼"},
	{"foreground", "🔤"},
	{"border", "⬛"},
	{"badge", "🏷"},
	{"error", "❌"},
	{"warning", "⚠"},
	{"info", "ℹ"},
	{"active", "⭐"},
	{"inactive", "⏸"},
	{"focus", "🎯"},
	{"selection", "🖱"},
	{"highlight", "💡"},
	{"tab", "📑"},
	{"list", "📋"},
	{"status", "📶"},
	{"panel", "🗂"},
	{"terminal", "⌨"},
	{"editor", "📝"},
	{"action", "⚡"},
	{"find", "🔍"},
	{"notification", "🔔"},
	{"problems", "🐞"},
	{"title", "🏷"},
}

const defaultRowIcon = "🎨"

var categoryIcons = []iconRule{
	{"editor", "📝"},
	{"tab", "📑"},
	{"status", "📶"},
	{"panel", "🗂"},
	{"terminal", "⌨"},
	{"problem", "🐞"},
	{"list", "📋"},
	{"side", "🧭"},
	{"activity", "🧭"},
	{"title", "🏷"},
	{"git", "🌿"},
	{"notification", "🔔"},
	{"button", "🎯"},
	{"input", "🎯"},
}

// RowIcon picks an icon for a color key from the words it contains.
func RowIcon(key string) string {
	return lookupIcon(rowIcons, key, defaultRowIcon)
}

// CategoryIcon picks an icon for a category name.
func CategoryIcon(name string) string {
	return lookupIcon(categoryIcons, name, defaultRowIcon)
}

func lookupIcon(rules []iconRule, s, fallback string) string {
	s = strings.ToLower(s)
	for _, r := range rules {
		if strings.Contains(s, r.match) {
			return r.icon
		}
	}
	return fallback
}

// DemoIDForKey maps a color key to the preview surface that shows it.
func DemoIDForKey(key string) string {
	switch {
	case strings.HasPrefix(key, "statusBar"):
		return DemoID(session.DemoStatusBar)
	case strings.HasPrefix(key, "panel"):
		return DemoID(session.DemoPanels)
	case strings.HasPrefix(key, "terminal"):
		return DemoID(session.DemoTerminal)
	case strings.HasPrefix(key, "problems"):
		return DemoID(session.DemoProblems)
	case strings.HasPrefix(key, "tab."), strings.HasPrefix(key, "editorGroupHeader"):
		return DemoID(session.DemoLists)
	default:
		return DemoID(session.DemoEditor)
	}
}

// DemoID is the element id of a demo tab.
func DemoID(tab string) string {
	return "demo-" + tab
}

// Description is a summarized item description.
type Description struct {
	Full      string
	Short     string
	Truncated bool
	Expanded  bool
}

// Text is what the row shows.
func (d Description) Text() string {
	if d.Expanded || !d.Truncated {
		return d.Full
	}
	return d.Short
}

// Toggle is the label of the More/Less control, or "" when the
// description fits.
func (d Description) Toggle() string {
	switch {
	case !d.Truncated:
		return ""
	case d.Expanded:
		return "Less"
	default:
		return "More"
	}
}

// Summarize collapses whitespace and cuts descriptions longer than
// DescriptionLimit runes.
func Summarize(s string, expanded bool) Description {
	full := strings.Join(strings.Fields(s), " ")
	d := Description{Full: full, Short: full, Expanded: expanded}
	if r := []rune(full); len(r) > DescriptionLimit {
		d.Short = string(r[:DescriptionLimit-3]) + "..."
		d.Truncated = true
	}
	return d
}
