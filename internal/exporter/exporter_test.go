package exporter

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jsvensson/themelab/internal/importer"
	"github.com/jsvensson/themelab/internal/parser"
	"github.com/jsvensson/themelab/internal/theme"
)

func sampleModel() theme.Model {
	m := theme.New()
	m.Colors["editor.background"] = "#1E1E1E"
	m.Colors["statusBar.background"] = "#007ACC80"
	m.TokenRules = []theme.TokenRule{
		{Scope: theme.StringScope("comment"), Settings: theme.TokenSettings{Foreground: "#6A9955", FontStyle: "italic"}},
		{Scope: theme.ListScope("keyword", "storage"), Settings: theme.TokenSettings{Foreground: "#569CD6"}},
	}
	m.SemanticRules.Set("variable.readonly", theme.SemanticValue{Foreground: "#4FC1FF"})
	return m
}

func TestJSON(t *testing.T) {
	out, err := JSON(Meta{}, sampleModel())
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var head struct {
		Schema string `json:"$schema"`
		Name   string `json:"name"`
		Type   string `json:"type"`
	}
	if err := json.Unmarshal(out, &head); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	want := struct {
		Schema string `json:"$schema"`
		Name   string `json:"name"`
		Type   string `json:"type"`
	}{Schema, DefaultName, DefaultType}
	if head != want {
		t.Errorf("header = %+v, want %+v", head, want)
	}

	got, err := importer.FromJSON(out)
	if err != nil {
		t.Fatalf("FromJSON() error: %v", err)
	}
	if !got.Equal(sampleModel()) {
		t.Errorf("round trip mismatch:\n got: %s\nwant: %s", got.Canonical(), sampleModel().Canonical())
	}
}

func TestJSONMeta(t *testing.T) {
	out, err := JSON(Meta{Name: "Mine", Type: "light"}, theme.New())
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	s := string(out)
	for _, want := range []string{`"name": "Mine"`, `"type": "light"`, `"colors": {}`, `"tokenColors": []`, `"semanticTokenColors": {}`} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}

func TestCSS(t *testing.T) {
	got := string(CSS(sampleModel()))
	want := `:root {
  --editor-background: #1E1E1E;
  --statusBar-background: #007ACC80;
}`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CSS() mismatch (-want +got):\n%s", diff)
	}
}

func TestCSSEmpty(t *testing.T) {
	if got := string(CSS(theme.New())); got != ":root {\n}" {
		t.Errorf("CSS() = %q, want empty :root block", got)
	}
}

func TestVSIX(t *testing.T) {
	out, err := VSIX(Meta{Name: "Night Owl 2"}, sampleModel())
	if err != nil {
		t.Fatalf("VSIX() error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	f, err := zr.Open("extension/package.json")
	if err != nil {
		t.Fatalf("opening manifest: %v", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	var man manifest
	if err := json.Unmarshal(raw, &man); err != nil {
		t.Fatalf("decoding manifest: %v", err)
	}
	if man.Name != "night-owl-2" {
		t.Errorf("manifest name = %q, want %q", man.Name, "night-owl-2")
	}
	if len(man.Contributes.Themes) != 1 {
		t.Fatalf("len(themes) = %d, want 1", len(man.Contributes.Themes))
	}
	want := manifestTheme{Label: "Night Owl 2", UITheme: "vs-dark", Path: "./themes/design-lab.json"}
	if man.Contributes.Themes[0] != want {
		t.Errorf("theme entry = %+v, want %+v", man.Contributes.Themes[0], want)
	}

	got, err := importer.FromVSIX(out)
	if err != nil {
		t.Fatalf("FromVSIX() error: %v", err)
	}
	if !got.Equal(sampleModel()) {
		t.Errorf("round trip mismatch:\n got: %s\nwant: %s", got.Canonical(), sampleModel().Canonical())
	}
}

func TestHCL(t *testing.T) {
	out := HCL(Meta{}, sampleModel())
	doc, err := parser.ParseBytes(out, "export.hcl")
	if err != nil {
		t.Fatalf("ParseBytes() error: %v\n%s", err, out)
	}
	if doc.Meta.Name != DefaultName || doc.Meta.Type != DefaultType {
		t.Errorf("Meta = %+v, want defaults", doc.Meta)
	}
	if !doc.Model.Equal(sampleModel()) {
		t.Errorf("round trip mismatch:\n got: %s\nwant: %s", doc.Model.Canonical(), sampleModel().Canonical())
	}
}

func TestPackageName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Design Lab Theme", "design-lab-theme"},
		{"  Spaced  Out  ", "spaced-out"},
		{"Ünïcode & Co.", "n-code-co"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := packageName(tt.in); got != tt.want {
			t.Errorf("packageName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		meta Meta
		ext  string
		want string
	}{
		{Meta{}, ".json", "design-lab-theme.json"},
		{Meta{Name: "Night Owl"}, ".vsix", "night-owl.vsix"},
		{Meta{Name: "???"}, ".css", "design-lab-theme.css"},
	}
	for _, tt := range tests {
		if got := FileName(tt.meta, tt.ext); got != tt.want {
			t.Errorf("FileName(%+v, %q) = %q, want %q", tt.meta, tt.ext, got, tt.want)
		}
	}
}

func TestUITheme(t *testing.T) {
	tests := map[string]string{"dark": "vs-dark", "light": "vs", "hc": "hc-black", "": "vs-dark"}
	for in, want := range tests {
		if got := uiTheme(in); got != want {
			t.Errorf("uiTheme(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{".CSS", FormatCSS, false},
		{"vsix", FormatVSIX, false},
		{"hcl", FormatHCL, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestEncode(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			out, err := Encode(f, Meta{}, sampleModel())
			if err != nil {
				t.Fatalf("Encode(%s) error: %v", f, err)
			}
			if len(out) == 0 {
				t.Errorf("Encode(%s) returned nothing", f)
			}
		})
	}
	if _, err := Encode("yaml", Meta{}, sampleModel()); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Encode(yaml) error = %v, want ErrUnknownFormat", err)
	}
}
