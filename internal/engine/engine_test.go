package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jsvensson/themelab/internal/parser"
	"github.com/jsvensson/themelab/internal/theme"
)

func testTheme() *parser.ParseResult {
	m := theme.New()
	m.Colors["editor.background"] = "#191724"
	m.Colors["editorCursor.foreground"] = "#EB6F92"
	m.Colors["statusBar.background"] = "#19172480"
	m.Colors["broken"] = "nope"
	m.TokenRules = []theme.TokenRule{
		{Name: "Comments", Scope: theme.StringScope("comment"), Settings: theme.TokenSettings{Foreground: "#6E6A86", FontStyle: "italic"}},
		{Scope: theme.ListScope("keyword", "storage"), Settings: theme.TokenSettings{Foreground: "#31748F", FontStyle: "bold underline"}},
		{Scope: theme.StringScope("markup.heading")},
	}
	m.SemanticRules.Set("variable.readonly", theme.SemanticValue{Foreground: "#F6C177"})

	return &parser.ParseResult{
		Meta: parser.Meta{Name: "Test Theme", Author: "Tester", Type: "dark"},
		Palette: &parser.Node{Children: map[string]*parser.Node{
			"base": {Hex: "#191724"},
			"love": {Hex: "#eb6f92"},
			"highlight": {Children: map[string]*parser.Node{
				"low":  {Hex: "#21202e"},
				"high": {Hex: "#524f67"},
			}},
		}},
		Model: m,
	}
}

func setupTemplateDir(t *testing.T, templates map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range templates {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runSingle(t *testing.T, tmpl string) string {
	t.Helper()
	tmplDir := setupTemplateDir(t, map[string]string{"test.txt.tmpl": tmpl})
	outDir := filepath.Join(t.TempDir(), "output")

	e := &Engine{
		TemplatesDir: tmplDir,
		OutputDir:    outDir,
	}
	if err := e.Run(testTheme()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(outDir, "test.txt"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	return string(content)
}

func TestRun(t *testing.T) {
	got := runSingle(t, `name={{ .Meta.Name }}
bg={{ hex (index .Colors "editor.background") }}
cursor={{ bhex (color "editorCursor.foreground") }}`)

	wantLines := []string{
		"name=Test Theme",
		"bg=#191724",
		"cursor=EB6F92",
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q, got:\n%s", want, got)
		}
	}
}

func TestRunAppFilter(t *testing.T) {
	tmplDir := setupTemplateDir(t, map[string]string{
		"app1.txt.tmpl": "app1={{ .Meta.Name }}",
		"app2.txt.tmpl": "app2={{ .Meta.Name }}",
	})
	outDir := filepath.Join(t.TempDir(), "output")

	e := &Engine{
		TemplatesDir: tmplDir,
		OutputDir:    outDir,
		Apps:         []string{"app1.txt"},
	}

	if err := e.Run(testTheme()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// app1 should exist
	if _, err := os.Stat(filepath.Join(outDir, "app1.txt")); err != nil {
		t.Error("app1.txt should exist")
	}

	// app2 should NOT exist
	if _, err := os.Stat(filepath.Join(outDir, "app2.txt")); err == nil {
		t.Error("app2.txt should not exist when filtered")
	}
}

func TestRunNoTemplates(t *testing.T) {
	tmplDir := t.TempDir() // empty directory
	outDir := filepath.Join(t.TempDir(), "output")

	e := &Engine{
		TemplatesDir: tmplDir,
		OutputDir:    outDir,
	}

	if err := e.Run(testTheme()); err == nil {
		t.Error("expected error for empty templates dir")
	}
}

func TestRunTemplateError(t *testing.T) {
	tmplDir := setupTemplateDir(t, map[string]string{
		"test.txt.tmpl": `{{ hex "palette.missing" }}`,
	})
	e := &Engine{
		TemplatesDir: tmplDir,
		OutputDir:    filepath.Join(t.TempDir(), "output"),
	}
	err := e.Run(testTheme())
	if err == nil {
		t.Fatal("expected error for an unknown palette path")
	}
	if !strings.Contains(err.Error(), "palette path not found") {
		t.Errorf("error = %v, want palette path not found", err)
	}
}

func TestRunColorKeys(t *testing.T) {
	got := runSingle(t, `{{ range .Keys }}{{ . }}={{ hexa (index $.Colors .) }}
{{ end }}`)
	want := "editor.background=#191724FF\neditorCursor.foreground=#EB6F92FF\nstatusBar.background=#19172480\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRunTokens(t *testing.T) {
	got := runSingle(t, `{{ range .Tokens }}{{ .Scope }}|{{ if .HasColor }}{{ hex .Foreground }}{{ end }}|{{ .Bold }}|{{ .Italic }}
{{ end }}`)
	want := "comment|#6E6A86|false|true\nkeyword, storage|#31748F|true|false\nmarkup.heading||false|false\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRunSemantic(t *testing.T) {
	got := runSingle(t, `{{ range .Semantic }}{{ .Selector }}={{ hex .Foreground }}{{ end }}`)
	want := "variable.readonly=#F6C177"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRunPaletteFunc(t *testing.T) {
	got := runSingle(t, `{{ palette "base" | hex }} {{ palette "highlight.low" | hex }} {{ palette "highlight.high" | bhex }}`)
	want := "#191724 #21202E 524F67"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRunStyleFunc(t *testing.T) {
	got := runSingle(t, `{{ $s := style "comment.line" }}color={{ hex $s }} italic={{ $s.Italic }} bold={{ $s.Bold }}`)
	want := "color=#6E6A86 italic=true bold=false"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
