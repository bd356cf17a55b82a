package lsp

import (
	"math"
	"strings"

	"github.com/jsvensson/themelab/internal/color"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// colorToLSP converts a color.Color (uint8 RGBA) to a protocol.Color (float32 0.0-1.0).
func colorToLSP(c color.Color) protocol.Color {
	return protocol.Color{
		Red:   float32(c.R) / 255.0,
		Green: float32(c.G) / 255.0,
		Blue:  float32(c.B) / 255.0,
		Alpha: float32(c.A) / 255.0,
	}
}

// colorFromLSP converts a protocol.Color back, rounding each channel.
func colorFromLSP(c protocol.Color) color.Color {
	channel := func(v float32) uint8 {
		return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
	}
	return color.Color{R: channel(c.Red), G: channel(c.Green), B: channel(c.Blue), A: channel(c.Alpha)}
}

// documentColors converts the analysis result's color locations into LSP ColorInformation items.
func documentColors(result *AnalysisResult) []protocol.ColorInformation {
	if result == nil {
		return []protocol.ColorInformation{}
	}

	infos := make([]protocol.ColorInformation, 0, len(result.Colors))
	for _, cl := range result.Colors {
		infos = append(infos, protocol.ColorInformation{
			Range: cl.Range,
			Color: colorToLSP(cl.Color),
		})
	}
	return infos
}

// colorPresentation offers a replacement for a picked color. Only quoted
// hex literals are rewritten; references and function calls are left alone.
// Translucent colors are written as #RRGGBBAA.
func colorPresentation(content string, params *protocol.ColorPresentationParams) []protocol.ColorPresentation {
	hexStr := hexOf(colorFromLSP(params.Color))

	text := extractText(content, params.Range)
	if !strings.HasPrefix(text, "\"") && !strings.HasPrefix(text, "#") {
		return []protocol.ColorPresentation{}
	}

	newText := hexStr
	if strings.HasPrefix(text, "\"") {
		newText = "\"" + hexStr + "\""
	}

	return []protocol.ColorPresentation{
		{
			Label: hexStr,
			TextEdit: &protocol.TextEdit{
				Range:   params.Range,
				NewText: newText,
			},
		},
	}
}

// textDocumentDocumentColor handles textDocument/documentColor requests.
func (s *Server) textDocumentDocumentColor(_ *glsp.Context, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	doc, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return []protocol.ColorInformation{}, nil
	}
	return documentColors(doc.Result), nil
}

// textDocumentColorPresentation handles textDocument/colorPresentation requests.
func (s *Server) textDocumentColorPresentation(_ *glsp.Context, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	doc, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return []protocol.ColorPresentation{}, nil
	}
	return colorPresentation(doc.Text, params), nil
}
