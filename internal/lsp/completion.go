package lsp

import (
	"sort"
	"strings"

	"github.com/jsvensson/themelab/internal/parser"
	"github.com/jsvensson/themelab/internal/theme"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// splitLines splits content into lines, preserving empty trailing lines.
func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

// blockContext represents the kind of block the cursor is in.
type blockContext int

const (
	contextRoot     blockContext = iota
	contextMeta                  // inside meta {}
	contextPalette               // inside palette {} or one of its groups
	contextColors                // inside colors = {}
	contextToken                 // inside token {}
	contextSemantic              // inside semantic "..." {}
)

// topLevelSnippets are the blocks and attributes of a theme document.
var topLevelSnippets = []struct {
	label, snippet string
}{
	{"meta", "meta {\n  name = \"$1\"\n  type = \"${2:dark}\"\n}"},
	{"palette", "palette {\n  $0\n}"},
	{"colors", "colors = {\n  $0\n}"},
	{"token", "token {\n  scope      = \"$1\"\n  foreground = $2\n}"},
	{"semantic", "semantic \"$1\" {\n  foreground = $2\n}"},
}

// complete produces completion items given an analysis result, document content,
// and cursor position. This is the core logic, decoupled from the LSP protocol
// handler for testability.
func complete(result *AnalysisResult, content string, pos protocol.Position, known Taxonomy) []protocol.CompletionItem {
	lines := splitLines(content)
	if int(pos.Line) >= len(lines) {
		return nil
	}

	line := lines[pos.Line]
	charPos := min(int(pos.Character), len(line))
	textBeforeCursor := line[:charPos]

	// Check for palette path completion: look for "palette." or "palette.xxx."
	if paletteItems, ok := tryPaletteCompletion(result, textBeforeCursor); ok {
		return paletteItems
	}

	ctx := determineBlockContext(lines, int(pos.Line))

	if (ctx == contextToken || ctx == contextSemantic) && inFontStyleString(textBeforeCursor) {
		return fontStyleCompletions()
	}

	// Check for value position (after "=") and offer functions and palette
	if isValuePosition(textBeforeCursor) {
		if ctx == contextRoot || ctx == contextMeta {
			return nil
		}
		return valueCompletions()
	}

	switch ctx {
	case contextRoot:
		return topLevelCompletions()
	case contextMeta:
		return attributeCompletions(lines, int(pos.Line), metaAttributes)
	case contextToken:
		return attributeCompletions(lines, int(pos.Line), tokenAttributes)
	case contextSemantic:
		return attributeCompletions(lines, int(pos.Line), semanticAttributes)
	case contextColors:
		return colorKeyCompletions(lines, int(pos.Line), known)
	}

	return nil
}

// tryPaletteCompletion checks if the text before the cursor ends with a palette
// path prefix (e.g., "palette." or "palette.highlight.") and returns completion
// items for the children at that node in the palette tree. ok is false when
// the cursor is not on a palette path.
func tryPaletteCompletion(result *AnalysisResult, textBeforeCursor string) (items []protocol.CompletionItem, ok bool) {
	idx := strings.LastIndex(textBeforeCursor, "palette.")
	if idx == -1 {
		return nil, false
	}
	pathStr := textBeforeCursor[idx+len("palette."):]
	for i := range len(pathStr) {
		if !isIdentChar(pathStr[i]) {
			return nil, false
		}
	}
	if result == nil || result.Palette == nil {
		return nil, true
	}

	// Walk the palette tree based on the path segments.
	// - "palette."              -> children of root
	// - "palette.highlight."    -> children of "highlight"
	// - "palette.high"          -> children of root (client filters partial match)
	// - "palette.highlight.lo"  -> children of "highlight" (client filters "lo")
	var segments []string
	if i := strings.LastIndex(pathStr, "."); i >= 0 {
		segments = strings.Split(pathStr[:i], ".")
	}

	node := result.Palette
	for _, seg := range segments {
		child, found := node.Children[seg]
		if !found {
			return nil, true
		}
		node = child
	}

	if len(node.Children) == 0 {
		return nil, true
	}

	return nodeChildrenToCompletionItems(node), true
}

// nodeChildrenToCompletionItems converts a node's children into completion
// items, sorted by name.
func nodeChildrenToCompletionItems(node *parser.Node) []protocol.CompletionItem {
	names := make([]string, 0, len(node.Children))
	for name := range node.Children {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]protocol.CompletionItem, 0, len(names))
	for _, name := range names {
		child := node.Children[name]
		item := protocol.CompletionItem{
			Label: name,
			Kind:  completionKindPtr(protocol.CompletionItemKindColor),
		}
		switch {
		case len(child.Children) > 0:
			item.Kind = completionKindPtr(protocol.CompletionItemKindModule)
			detail := "color group"
			if child.Hex != "" {
				detail += " " + child.Hex
			}
			item.Detail = &detail
		case child.Hex != "":
			item.Detail = strPtr(child.Hex)
		}
		items = append(items, item)
	}

	return items
}

// isValuePosition returns true if the text before the cursor indicates we are
// at a value position (after an "=" sign with nothing meaningful following it).
func isValuePosition(textBeforeCursor string) bool {
	trimmed := strings.TrimSpace(textBeforeCursor)
	eqIdx := strings.LastIndex(trimmed, "=")
	if eqIdx == -1 {
		return false
	}
	afterEq := strings.TrimSpace(trimmed[eqIdx+1:])
	return afterEq == ""
}

// inFontStyleString reports whether the cursor is inside the open string of
// a font_style attribute.
func inFontStyleString(textBeforeCursor string) bool {
	trimmed := strings.TrimSpace(textBeforeCursor)
	name, value, ok := strings.Cut(trimmed, "=")
	if !ok || strings.TrimSpace(name) != "font_style" {
		return false
	}
	value = strings.TrimSpace(value)
	return strings.HasPrefix(value, `"`) && strings.Count(value, `"`) == 1
}

// valueCompletions returns completion items for a value position, including
// function snippets and a palette reference trigger.
func valueCompletions() []protocol.CompletionItem {
	snippetFormat := protocol.InsertTextFormatSnippet

	functions := []struct {
		name, detail, snippet string
	}{
		{"brighten", "brighten(color, percentage)", "brighten(${1:color}, ${2:0.1})"},
		{"darken", "darken(color, percentage)", "darken(${1:color}, ${2:0.1})"},
		{"alpha", "alpha(color, percent)", "alpha(${1:color}, ${2:50})"},
	}

	items := make([]protocol.CompletionItem, 0, len(functions)+1)
	for _, f := range functions {
		items = append(items, protocol.CompletionItem{
			Label:            f.name,
			Kind:             completionKindPtr(protocol.CompletionItemKindFunction),
			Detail:           strPtr(f.detail),
			InsertText:       strPtr(f.snippet),
			InsertTextFormat: &snippetFormat,
		})
	}
	items = append(items, protocol.CompletionItem{
		Label:      "palette",
		Kind:       completionKindPtr(protocol.CompletionItemKindVariable),
		Detail:     strPtr("palette reference"),
		InsertText: strPtr("palette."),
	})
	return items
}

// determineBlockContext scans from the top of the file down to the cursor line
// to determine which block the cursor is in, using brace nesting.
func determineBlockContext(lines []string, cursorLine int) blockContext {
	var stack []string

	for i := 0; i <= cursorLine && i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		opens := strings.Count(line, "{")
		closes := strings.Count(line, "}")

		// Opening braces push the first word on the line
		if opens > 0 {
			parts := strings.Fields(line)
			for range opens {
				stack = append(stack, parts[0])
			}
		}
		for range closes {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) == 0 {
		return contextRoot
	}

	switch stack[0] {
	case "palette":
		return contextPalette
	case "meta":
		return contextMeta
	case "colors":
		return contextColors
	case "token":
		return contextToken
	case "semantic":
		return contextSemantic
	default:
		return contextRoot
	}
}

// attributeCompletions returns the attribute names of a block, excluding
// the ones already defined in the block surrounding the cursor.
func attributeCompletions(lines []string, cursorLine int, names []string) []protocol.CompletionItem {
	defined := findDefinedAttributes(lines, cursorLine)

	var items []protocol.CompletionItem
	for _, name := range names {
		if !defined[name] {
			items = append(items, protocol.CompletionItem{
				Label: name,
				Kind:  completionKindPtr(protocol.CompletionItemKindProperty),
			})
		}
	}
	return items
}

// colorKeyCompletions offers the workbench color keys of the taxonomy not
// yet set in the colors object, with their descriptions.
func colorKeyCompletions(lines []string, cursorLine int, known Taxonomy) []protocol.CompletionItem {
	defined := findDefinedAttributes(lines, cursorLine)

	keys := make([]string, 0, len(known))
	for k := range known {
		if !defined[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	items := make([]protocol.CompletionItem, 0, len(keys))
	for _, k := range keys {
		item := protocol.CompletionItem{
			Label:      k,
			Kind:       completionKindPtr(protocol.CompletionItemKindProperty),
			InsertText: strPtr(`"` + k + `" = `),
		}
		if desc := known[k]; desc != "" {
			item.Documentation = desc
		}
		items = append(items, item)
	}
	return items
}

// findDefinedAttributes scans the current block (from the nearest opening brace
// before cursorLine to cursorLine) and returns attribute names already defined
// (lines containing "name = ..."). Quoted names are unquoted.
func findDefinedAttributes(lines []string, cursorLine int) map[string]bool {
	defined := make(map[string]bool)

	// Scan backwards to find the opening brace of the current block
	startLine := 0
	depth := 0
	for i := cursorLine; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		depth += strings.Count(line, "}") - strings.Count(line, "{")
		if depth < 0 {
			startLine = i + 1
			break
		}
	}

	for i := startLine; i <= cursorLine && i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if eqIdx := strings.Index(line, "="); eqIdx > 0 {
			name := strings.Trim(strings.TrimSpace(line[:eqIdx]), `"`)
			if !strings.ContainsAny(name, " {") {
				defined[name] = true
			}
		}
	}

	return defined
}

// topLevelCompletions returns snippets for the top-level blocks.
func topLevelCompletions() []protocol.CompletionItem {
	snippetFormat := protocol.InsertTextFormatSnippet

	items := make([]protocol.CompletionItem, 0, len(topLevelSnippets))
	for _, s := range topLevelSnippets {
		items = append(items, protocol.CompletionItem{
			Label:            s.label,
			Kind:             completionKindPtr(protocol.CompletionItemKindSnippet),
			InsertText:       strPtr(s.snippet),
			InsertTextFormat: &snippetFormat,
		})
	}
	return items
}

// completionKindPtr returns a pointer to a CompletionItemKind.
func completionKindPtr(k protocol.CompletionItemKind) *protocol.CompletionItemKind {
	return &k
}

// fontStyleCompletions lists the font style flags.
func fontStyleCompletions() []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(theme.FontStyles))
	for _, f := range theme.FontStyles {
		items = append(items, protocol.CompletionItem{
			Label: f,
			Kind:  completionKindPtr(protocol.CompletionItemKindEnumMember),
		})
	}
	return items
}

// textDocumentCompletion is the LSP handler for textDocument/completion requests.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	return complete(doc.Result, doc.Text, params.Position, s.taxonomy), nil
}

// isIdentChar reports whether b can appear in a dotted palette path.
func isIdentChar(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '_' || b == '.'
}
