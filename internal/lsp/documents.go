package lsp

import "sync"

// Document is an open theme document and its latest analysis.
type Document struct {
	Text   string
	Result *AnalysisResult
}

// DocumentStore holds open documents keyed by URI. Every update re-runs the
// analysis.
type DocumentStore struct {
	mu       sync.RWMutex
	docs     map[string]Document
	taxonomy Taxonomy
}

func NewDocumentStore(taxonomy Taxonomy) *DocumentStore {
	return &DocumentStore{docs: make(map[string]Document), taxonomy: taxonomy}
}

// Set stores content for uri and returns the analyzed document. While the
// text does not parse, the palette of the last good analysis is kept so
// references can still be completed.
func (s *DocumentStore) Set(uri, content string) Document {
	doc := Document{Text: content, Result: Analyze(uri, content, s.taxonomy)}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.docs[uri]; ok && !doc.Result.Parsed {
		doc.Result.Palette = prev.Result.Palette
		doc.Result.Symbols = prev.Result.Symbols
	}
	s.docs[uri] = doc
	return doc
}

func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (s *DocumentStore) Get(uri string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc, ok
}
