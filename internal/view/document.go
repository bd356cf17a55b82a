package view

import (
	"fmt"
	"strings"

	"github.com/jsvensson/themelab/internal/color"
	"github.com/jsvensson/themelab/internal/theme"
)

// Document is everything a front end needs to paint one frame.
type Document struct {
	LeftTab string
	Demo    string
	Search  string
	Scroll  int
	Pulse   string

	Groups   []Group
	Tokens   []TokenRow
	Semantic []SemanticRow
	Demos    []Surface

	Status string
	Dirty  bool
}

// Group is one category of the colors panel.
type Group struct {
	Name   string
	Icon   string
	Open   bool
	Hidden bool
	Rows   []ColorRow
}

// ColorRow is one color setting.
type ColorRow struct {
	ID          string
	Key         string
	Icon        string
	Value       string
	Swatch      string
	Alpha       int
	Input       Field
	Description Description
	Demo        string
	Hidden      bool
	Pulse       bool
}

// Field is the content of a text input. Invalid fields show a draft the
// model rejected.
type Field struct {
	Text    string
	Invalid bool
}

// StyleFlag is one font style checkbox.
type StyleFlag struct {
	Name string
	On   bool
}

// TokenRow is one TextMate token rule.
type TokenRow struct {
	ID         string
	Index      int
	Title      string
	Scope      Field
	Foreground Field
	FontStyle  Field
	Swatch     string
	Unset      bool
	Styles     []StyleFlag
	Advanced   bool
	Hidden     bool
}

// SemanticRow is one semantic token rule.
type SemanticRow struct {
	ID         string
	Index      int
	Selector   Field
	Foreground Field
	FontStyle  Field
	Swatch     string
	Unset      bool
	Styles     []StyleFlag
	Advanced   bool
	Hidden     bool
}

// Build derives the document. It reads but never mutates m, cats and st.
func Build(m theme.Model, cats []theme.Category, st State) Document {
	q := strings.ToLower(strings.TrimSpace(st.Search))
	doc := Document{
		LeftTab:  st.LeftTab,
		Demo:     st.Demo,
		Search:   st.Search,
		Scroll:   st.Scroll,
		Pulse:    st.Pulse,
		Dirty:    st.Dirty,
		Status:   StatusLine(st.Dirty, st.Undo, st.Redo),
		Groups:   buildGroups(m, cats, st, q),
		Tokens:   buildTokens(m, st, q),
		Semantic: buildSemantic(m, st, q),
		Demos:    buildDemos(m, st),
	}
	return doc
}

// StatusLine renders the history indicator, e.g. "● Undo:3 Redo:0".
func StatusLine(dirty bool, undo, redo int) string {
	s := fmt.Sprintf("Undo:%d Redo:%d", undo, redo)
	if dirty {
		s = "● " + s
	}
	return s
}

func buildGroups(m theme.Model, cats []theme.Category, st State, q string) []Group {
	groups := make([]Group, 0, len(cats))
	for _, cat := range cats {
		g := Group{
			Name: cat.Name,
			Icon: CategoryIcon(cat.Name),
			Rows: make([]ColorRow, 0, len(cat.Items)),
		}
		matched := false
		for _, item := range cat.Items {
			row := buildColorRow(m, item, st)
			row.Hidden = !matches(q, row.Key, row.Description.Full, row.Value)
			if !row.Hidden {
				matched = true
			}
			g.Rows = append(g.Rows, row)
		}
		if q == "" {
			g.Open = st.OpenCats[cat.Name]
		} else {
			g.Open = matched
			g.Hidden = !matched
		}
		groups = append(groups, g)
	}
	return groups
}

func buildColorRow(m theme.Model, item theme.Item, st State) ColorRow {
	value := m.Colors[item.Key]
	row := ColorRow{
		ID:          ColorRowID(item.Key),
		Key:         item.Key,
		Icon:        RowIcon(item.Key),
		Value:       value,
		Swatch:      color.CoerceHex(value),
		Alpha:       color.AlphaFromHex(value),
		Input:       field(st, ColorField(item.Key), value),
		Description: Summarize(item.Description, st.DescExpanded[item.Key]),
		Demo:        DemoIDForKey(item.Key),
	}
	row.Pulse = st.Pulse != "" && st.Pulse == row.ID
	return row
}

func buildTokens(m theme.Model, st State, q string) []TokenRow {
	rows := make([]TokenRow, 0, len(m.TokenRules))
	for i, r := range m.TokenRules {
		title := r.Name
		if title == "" {
			title = fmt.Sprintf("Token %d", i+1)
		}
		row := TokenRow{
			ID:         TokenRowID(i),
			Index:      i,
			Title:      title,
			Scope:      field(st, TokenField(i, theme.FieldScope), r.Scope.String()),
			Foreground: field(st, TokenField(i, theme.FieldForeground), r.Settings.Foreground),
			FontStyle:  field(st, TokenField(i, theme.FieldFontStyle), r.Settings.FontStyle),
			Swatch:     color.CoerceHex(r.Settings.Foreground),
			Unset:      r.Settings.Foreground == "",
			Styles:     styleFlags(r.Settings.FontStyle),
			Advanced:   st.TokenAdvanced[i],
		}
		row.Hidden = !matches(q, title, r.Scope.String(), r.Settings.Foreground, r.Settings.FontStyle)
		rows = append(rows, row)
	}
	return rows
}

func buildSemantic(m theme.Model, st State, q string) []SemanticRow {
	keys := m.SemanticRules.Keys()
	rows := make([]SemanticRow, 0, len(keys))
	for i, sel := range keys {
		v, _ := m.SemanticRules.Get(sel)
		row := SemanticRow{
			ID:         SemanticRowID(i),
			Index:      i,
			Selector:   field(st, SemanticField(sel, "selector"), sel),
			Foreground: field(st, SemanticField(sel, theme.FieldForeground), v.Foreground),
			FontStyle:  field(st, SemanticField(sel, theme.FieldFontStyle), v.FontStyle),
			Swatch:     color.CoerceHex(v.Foreground),
			Unset:      v.Foreground == "",
			Styles:     styleFlags(v.FontStyle),
			Advanced:   st.SemanticAdvanced[i],
		}
		row.Hidden = !matches(q, sel, v.Foreground, v.FontStyle)
		rows = append(rows, row)
	}
	return rows
}

func field(st State, id, value string) Field {
	if draft, ok := st.Drafts[id]; ok {
		return Field{Text: draft, Invalid: true}
	}
	return Field{Text: value}
}

func styleFlags(fontStyle string) []StyleFlag {
	flags := make([]StyleFlag, len(theme.FontStyles))
	for i, s := range theme.FontStyles {
		flags[i] = StyleFlag{Name: s, On: theme.HasFontStyle(fontStyle, s)}
	}
	return flags
}

// matches reports whether any of texts contains the lower-cased query q.
// An empty query matches everything.
func matches(q string, texts ...string) bool {
	if q == "" {
		return true
	}
	for _, t := range texts {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Surface returns the demo surface with the given element id.
func (d Document) Surface(id string) (Surface, bool) {
	for _, s := range d.Demos {
		if s.ID == id {
			return s, true
		}
	}
	return Surface{}, false
}

// ColorLine returns the line of the colors row for key in the painted colors
// panel: one line per visible group header and one per visible row of an
// open group.
func (d Document) ColorLine(key string) (int, bool) {
	line := 0
	for _, g := range d.Groups {
		if g.Hidden {
			continue
		}
		line++
		if !g.Open {
			continue
		}
		for _, r := range g.Rows {
			if r.Hidden {
				continue
			}
			if r.Key == key {
				return line, true
			}
			line++
		}
	}
	return -1, false
}

// ColorLines is the number of lines of the painted colors panel.
func (d Document) ColorLines() int {
	n := 0
	for _, g := range d.Groups {
		if g.Hidden {
			continue
		}
		n++
		if !g.Open {
			continue
		}
		for _, r := range g.Rows {
			if !r.Hidden {
				n++
			}
		}
	}
	return n
}

// CategoryOf returns the name of the first category listing key.
func CategoryOf(cats []theme.Category, key string) (string, bool) {
	for _, c := range cats {
		for _, it := range c.Items {
			if it.Key == key {
				return c.Name, true
			}
		}
	}
	return "", false
}
