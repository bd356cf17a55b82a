package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the editor.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	NextDemo key.Binding
	PrevDemo key.Binding

	// Editing
	Enter       key.Binding
	EditScope   key.Binding
	EditStyle   key.Binding
	EditAlpha   key.Binding
	AlphaUp     key.Binding
	AlphaDown   key.Binding
	Add         key.Binding
	Remove      key.Binding
	Rename      key.Binding
	Bold        key.Binding
	Italic      key.Binding
	Underline   key.Binding
	Strike      key.Binding
	Advanced    key.Binding
	Description key.Binding
	Locate      key.Binding
	Undo        key.Binding
	Redo        key.Binding

	// Workflow
	Search     key.Binding
	Import     key.Binding
	UseCurrent key.Binding
	Blank      key.Binding
	ExportJSON key.Binding
	ExportCSS  key.Binding
	ExportVSIX key.Binding
	ExportHCL  key.Binding
	Save       key.Binding

	// General
	Help   key.Binding
	Escape key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous panel")),
		NextDemo: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next preview")),
		PrevDemo: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous preview")),

		Enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit color / toggle group")),
		EditScope:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "edit scope")),
		EditStyle:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "edit font style")),
		EditAlpha:   key.NewBinding(key.WithKeys("%"), key.WithHelp("%", "set alpha")),
		AlphaUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "alpha +5")),
		AlphaDown:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "alpha -5")),
		Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add rule")),
		Remove:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove rule")),
		Rename:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename selector")),
		Bold:        key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "bold")),
		Italic:      key.NewBinding(key.WithKeys("I"), key.WithHelp("I", "italic")),
		Underline:   key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "underline")),
		Strike:      key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "strikethrough")),
		Advanced:    key.NewBinding(key.WithKeys("."), key.WithHelp(".", "advanced")),
		Description: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "more/less")),
		Locate:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "locate in preview")),
		Undo:        key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Redo:        key.NewBinding(key.WithKeys("ctrl+y", "ctrl+shift+z"), key.WithHelp("ctrl+y", "redo")),

		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Import:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "import")),
		UseCurrent: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "use current")),
		Blank:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "start blank")),
		ExportJSON: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "export JSON")),
		ExportCSS:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "export CSS")),
		ExportVSIX: key.NewBinding(key.WithKeys("V"), key.WithHelp("V", "export VSIX")),
		ExportHCL:  key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "export HCL")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save theme")),

		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Escape: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Enter, k.Search, k.Undo, k.Redo, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab, k.NextDemo, k.PrevDemo, k.Search},
		{k.Enter, k.EditAlpha, k.AlphaUp, k.AlphaDown, k.Description, k.Locate},
		{k.Add, k.Remove, k.EditScope, k.EditStyle, k.Rename, k.Advanced},
		{k.Bold, k.Italic, k.Underline, k.Strike, k.Undo, k.Redo},
		{k.Import, k.UseCurrent, k.Blank, k.ExportJSON, k.ExportCSS, k.ExportVSIX, k.ExportHCL, k.Save},
		{k.Help, k.Escape, k.Quit},
	}
}
