package lsp

import "testing"

func TestDocumentStore(t *testing.T) {
	s := NewDocumentStore(testTaxonomy)
	uri := "file:///theme.hcl"

	if _, ok := s.Get(uri); ok {
		t.Fatal("empty store should not have the document")
	}

	doc := s.Set(uri, validTheme)
	if doc.Text != validTheme {
		t.Error("Set should keep the text")
	}
	if doc.Result == nil || !doc.Result.Parsed {
		t.Fatal("Set should analyze the text")
	}

	got, ok := s.Get(uri)
	if !ok || got.Text != validTheme {
		t.Fatalf("Get() = %+v, %v", got, ok)
	}

	s.Close(uri)
	if _, ok := s.Get(uri); ok {
		t.Error("document should be gone after Close")
	}
}

func TestDocumentStoreKeepsPaletteWhileBroken(t *testing.T) {
	s := NewDocumentStore(nil)
	uri := "file:///theme.hcl"
	s.Set(uri, validTheme)

	broken := validTheme + "\ncolors2 = palette.\n"
	doc := s.Set(uri, broken)
	if doc.Result.Parsed {
		t.Fatal("broken text should not parse")
	}
	if len(doc.Result.Diagnostics) == 0 {
		t.Error("broken text should have diagnostics")
	}
	if _, ok := doc.Result.Palette.Children["base"]; !ok {
		t.Error("palette of the last good analysis should be kept")
	}
	if _, ok := doc.Result.Symbols["palette.base"]; !ok {
		t.Error("symbols of the last good analysis should be kept")
	}

	// A fresh document has nothing to fall back on
	doc = s.Set("file:///other.hcl", broken)
	if len(doc.Result.Palette.Children) != 0 {
		t.Error("a new broken document should have an empty palette")
	}
}
