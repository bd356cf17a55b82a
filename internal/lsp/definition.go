package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// definition returns the location of the palette entry referenced at pos.
// It returns nil when pos is not on a recorded reference or the path has no
// definition.
func definition(result *AnalysisResult, uri string, pos protocol.Position) *protocol.Location {
	if result == nil {
		return nil
	}
	for _, ref := range result.Refs {
		if !posInRange(pos, ref.Range) {
			continue
		}
		rng, ok := result.Symbols[ref.Path]
		if !ok {
			return nil
		}
		return &protocol.Location{URI: protocol.DocumentUri(uri), Range: rng}
	}
	return nil
}

func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := string(params.TextDocument.URI)
	doc, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}
	if loc := definition(doc.Result, uri, params.Position); loc != nil {
		return loc, nil
	}
	return nil, nil
}
