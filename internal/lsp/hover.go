package lsp

import (
	"fmt"
	"strings"

	"github.com/jsvensson/themelab/internal/color"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// posInRange returns true if pos is within the range [r.Start, r.End).
// The end position is exclusive.
func posInRange(pos protocol.Position, r protocol.Range) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character >= r.End.Character {
		return false
	}
	return true
}

// extractText extracts the source text at a given LSP range from document content.
func extractText(content string, r protocol.Range) string {
	lines := strings.Split(content, "\n")

	startLine := int(r.Start.Line)
	endLine := int(r.End.Line)

	if startLine >= len(lines) {
		return ""
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	if startLine == endLine {
		line := lines[startLine]
		startChar := int(r.Start.Character)
		endChar := int(r.End.Character)
		if startChar > len(line) {
			startChar = len(line)
		}
		if endChar > len(line) {
			endChar = len(line)
		}
		return line[startChar:endChar]
	}

	// Multi-line range
	var parts []string
	for i := startLine; i <= endLine; i++ {
		line := lines[i]
		if i == startLine {
			startChar := int(r.Start.Character)
			if startChar > len(line) {
				startChar = len(line)
			}
			parts = append(parts, line[startChar:])
		} else if i == endLine {
			endChar := int(r.End.Character)
			if endChar > len(line) {
				endChar = len(line)
			}
			parts = append(parts, line[:endChar])
		} else {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n")
}

// hover produces a Hover response for the given cursor position. Colors
// show their hex and RGB values, with the source text for references.
// Workbench color keys show their description from the taxonomy.
// Returns nil if nothing is found at the position.
func hover(result *AnalysisResult, content string, pos protocol.Position, known Taxonomy) *protocol.Hover {
	if result == nil {
		return nil
	}

	for _, cl := range result.Colors {
		if !posInRange(pos, cl.Range) {
			continue
		}

		value := fmt.Sprintf("`%s` \u00b7 `%s`", hexOf(cl.Color), cl.Color.RGB())
		if !cl.Color.Opaque() {
			value += fmt.Sprintf(" \u00b7 %d%%", color.AlphaFromHex(cl.Color.HexAlpha()))
		}
		md := value
		if cl.IsRef {
			md = fmt.Sprintf("**%s**\n\n%s", extractText(content, cl.Range), value)
		}
		return markdownHover(md, cl.Range)
	}

	for _, kl := range result.Keys {
		if !posInRange(pos, kl.Range) {
			continue
		}
		desc, ok := known[kl.Key]
		if !ok {
			return markdownHover(fmt.Sprintf("**%s**\n\nNot a known workbench color.", kl.Key), kl.Range)
		}
		md := fmt.Sprintf("**%s**", kl.Key)
		if desc != "" {
			md += "\n\n" + desc
		}
		return markdownHover(md, kl.Range)
	}

	return nil
}

func markdownHover(md string, rng protocol.Range) *protocol.Hover {
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: md,
		},
		Range: &rng,
	}
}

// textDocumentHover handles textDocument/hover requests.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	return hover(doc.Result, doc.Text, params.Position, s.taxonomy), nil
}
