package view

import (
	"github.com/jsvensson/themelab/internal/color"
)

// defaultColors are shown for keys the model does not set, so a blank theme
// still previews as a readable dark editor.
var defaultColors = map[string]string{
	"foreground":                        "#CCCCCC",
	"focusBorder":                       "#007FD4",
	"editor.background":                 "#1E1E1E",
	"editor.foreground":                 "#D4D4D4",
	"editor.selectionBackground":        "#264F78",
	"editor.lineHighlightBackground":    "#2A2D2E",
	"editorLineNumber.foreground":       "#858585",
	"editorLineNumber.activeForeground": "#C6C6C6",
	"editorError.foreground":            "#F14C4C",
	"editorWarning.foreground":          "#CCA700",
	"breadcrumb.foreground":             "#A9A9A9",
	"titleBar.activeBackground":         "#3C3C3C",
	"titleBar.activeForeground":         "#CCCCCC",
	"tab.activeBackground":              "#1E1E1E",
	"tab.activeForeground":              "#FFFFFF",
	"tab.inactiveBackground":            "#2D2D2D",
	"tab.inactiveForeground":            "#969696",
	"editorGroupHeader.tabsBackground":  "#252526",
	"sideBar.background":                "#252526",
	"sideBar.foreground":                "#CCCCCC",
	"panel.background":                  "#1E1E1E",
	"panel.border":                      "#80808059",
	"panelTitle.activeForeground":       "#E7E7E7",
	"panelTitle.inactiveForeground":     "#E7E7E799",
	"terminal.background":               "#1E1E1E",
	"terminal.foreground":               "#CCCCCC",
	"terminal.ansiRed":                  "#CD3131",
	"terminal.ansiGreen":                "#0DBC79",
	"terminal.ansiYellow":               "#E5E510",
	"terminal.ansiBlue":                 "#2472C8",
	"terminalCursor.foreground":         "#FFFFFF",
	"problemsErrorIcon.foreground":      "#F14C4C",
	"problemsWarningIcon.foreground":    "#CCA700",
	"problemsInfoIcon.foreground":       "#3794FF",
	"notifications.background":          "#252526",
	"notifications.foreground":          "#CCCCCC",
	"notifications.border":              "#303031",
	"notificationLink.foreground":       "#3794FF",
	"statusBar.background":              "#007ACC",
	"statusBar.foreground":              "#FFFFFF",
	"statusBarItem.remoteBackground":    "#16825D",
	"statusBarItem.remoteForeground":    "#FFFFFF",
	"list.activeSelectionBackground":    "#04395E",
	"list.activeSelectionForeground":    "#FFFFFF",
	"list.inactiveSelectionBackground":  "#37373D",
	"list.hoverBackground":              "#2A2D2E",
	"list.highlightForeground":          "#2AAAFF",
	"badge.background":                  "#4D4D4D",
	"badge.foreground":                  "#FFFFFF",
}

var black = color.Color{A: 255}

// palette resolves color keys for the demo surfaces.
type palette map[string]string

// raw returns the color for key: the model's value when it parses, else the
// default, else black.
func (p palette) raw(key string) color.Color {
	if v, ok := p[key]; ok {
		if c, err := color.ParseHex(v); err == nil {
			return c
		}
	}
	if v, ok := defaultColors[key]; ok {
		if c, err := color.ParseHex(v); err == nil {
			return c
		}
	}
	return black
}

// on returns key flattened over the surface color backdrop, as "#RRGGBB".
func (p palette) on(key, backdrop string) string {
	c := p.raw(key)
	if c.Opaque() {
		return c.Hex()
	}
	return color.Composite(c, p.solid(backdrop)).Hex()
}

// solid returns key flattened over black.
func (p palette) solid(key string) color.Color {
	return color.Composite(p.raw(key), black)
}

func (p palette) hex(key string) string {
	return p.solid(key).Hex()
}
