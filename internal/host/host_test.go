package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jsvensson/themelab/internal/config"
	"github.com/jsvensson/themelab/internal/exporter"
	"github.com/jsvensson/themelab/internal/importer"
	"github.com/jsvensson/themelab/internal/protocol"
	"github.com/jsvensson/themelab/internal/theme"
)

type recorder struct {
	mu   sync.Mutex
	msgs []protocol.Message
}

func (r *recorder) Post(msg protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) only(t *testing.T) protocol.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) != 1 {
		t.Fatalf("posted %d messages, want 1", len(r.msgs))
	}
	return r.msgs[0]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func sampleModel() theme.Model {
	m := theme.New()
	m.Colors["editor.background"] = "#1E1E1E"
	m.TokenRules = []theme.TokenRule{
		{Scope: theme.ListScope("keyword", "storage"), Settings: theme.TokenSettings{Foreground: "#569CD6", FontStyle: "bold"}},
	}
	m.SemanticRules.Set("variable.readonly", theme.SemanticValue{Foreground: "#4FC1FF"})
	return m
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Preview.ApplyToWorkspace = true
	cfg.Settings.Workspace = filepath.Join(dir, ".vscode", "settings.json")
	cfg.Settings.User = filepath.Join(dir, "user", "settings.json")
	cfg.Settings.ActiveTheme = ""
	cfg.Export.Dir = filepath.Join(dir, "out")
	cfg.Categories = []theme.Category{{Name: "Editor", Items: []theme.Item{{Key: "editor.background"}}}}
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadSettingsMissing(t *testing.T) {
	m, err := ReadSettings(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("ReadSettings() error: %v", err)
	}
	if !m.IsEmpty() {
		t.Errorf("ReadSettings(missing) = %s, want empty", m.Canonical())
	}
}

func TestReadSettingsShapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `{
  // editor font
  "editor.fontSize": 14,
  "workbench.colorCustomizations": {"editor.background": "#1e1e1e"},
  "editor.tokenColorCustomizations": {
    "textMateRules": [{"scope": "comment", "settings": {"fontStyle": "italic"}}],
  },
  "editor.semanticTokenColorCustomizations": {"enabled": true, "rules": {"variable": "#ff0000"}},
}`)
	m, err := ReadSettings(path)
	if err != nil {
		t.Fatalf("ReadSettings() error: %v", err)
	}
	want := theme.New()
	want.Colors["editor.background"] = "#1e1e1e"
	want.TokenRules = []theme.TokenRule{{Scope: theme.StringScope("comment"), Settings: theme.TokenSettings{FontStyle: "italic"}}}
	want.SemanticRules.Set("variable", theme.SemanticValue{Foreground: "#ff0000"})
	if !m.Equal(want) {
		t.Errorf("ReadSettings() = %s, want %s", m.Canonical(), want.Canonical())
	}
}

func TestReadSettingsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `{"a": `)
	if _, err := ReadSettings(path); err == nil {
		t.Error("expected error for malformed settings")
	}
}

func TestWriteSettingsKeepsOtherContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `{
  // keep this comment
  "editor.fontSize": 14,
  "workbench.colorCustomizations": {"old.key": "#000000"},
}`)
	if err := WriteSettings(path, sampleModel()); err != nil {
		t.Fatalf("WriteSettings() error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	for _, want := range []string{"// keep this comment", `"editor.fontSize": 14`, `"textMateRules"`, `"enabled": true`} {
		if !strings.Contains(text, want) {
			t.Errorf("settings missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "old.key") {
		t.Errorf("old color customizations survived:\n%s", text)
	}

	got, err := ReadSettings(path)
	if err != nil {
		t.Fatalf("ReadSettings() error: %v", err)
	}
	if !got.Equal(sampleModel()) {
		t.Errorf("round trip = %s, want %s", got.Canonical(), sampleModel().Canonical())
	}
}

func TestWriteSettingsCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vscode", "settings.json")
	if err := WriteSettings(path, theme.New()); err != nil {
		t.Fatalf("WriteSettings() error: %v", err)
	}
	got, err := ReadSettings(path)
	if err != nil {
		t.Fatalf("ReadSettings() error: %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("ReadSettings() = %s, want empty", got.Canonical())
	}
}

func TestPointer(t *testing.T) {
	tests := map[string]string{
		"workbench.colorCustomizations": "/workbench.colorCustomizations",
		"a/b":                           "/a~1b",
		"a~b":                           "/a~0b",
	}
	for in, want := range tests {
		if got := pointer(in); got != want {
			t.Errorf("pointer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHandleBoot(t *testing.T) {
	cfg := testConfig(t)
	if err := WriteSettings(cfg.SettingsFile(), sampleModel()); err != nil {
		t.Fatal(err)
	}
	core := &recorder{}
	h := New(context.Background(), cfg, core, Options{})
	h.Handle(protocol.MustNew(protocol.RequestBoot, nil))

	msg := core.only(t)
	if msg.Type != protocol.Boot {
		t.Fatalf("posted %s, want %s", msg.Type, protocol.Boot)
	}
	cats, settings := protocol.DecodeBoot(msg.Payload)
	if diff := cmp.Diff(cfg.Categories, cats); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if !settings.Equal(sampleModel()) {
		t.Errorf("settings = %s, want %s", settings.Canonical(), sampleModel().Canonical())
	}
}

func TestHandleApplyPreview(t *testing.T) {
	tests := []struct {
		name      string
		workspace bool
	}{
		{"workspace", true},
		{"user", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Preview.ApplyToWorkspace = tt.workspace
			h := New(context.Background(), cfg, &recorder{}, Options{})
			h.Handle(protocol.MustNew(protocol.ApplyPreview, sampleModel()))

			got, err := ReadSettings(cfg.SettingsFile())
			if err != nil {
				t.Fatalf("ReadSettings() error: %v", err)
			}
			if !got.Equal(sampleModel()) {
				t.Errorf("settings = %s, want %s", got.Canonical(), sampleModel().Canonical())
			}
			last, ok := h.LastModel()
			if !ok || !last.Equal(sampleModel()) {
				t.Errorf("LastModel() = %s, %v", last.Canonical(), ok)
			}
		})
	}
}

func TestHandleApplyPreviewFailureIsSwallowed(t *testing.T) {
	cfg := testConfig(t)
	// A directory where the settings file should be makes the write fail.
	if err := os.MkdirAll(cfg.SettingsFile(), 0755); err != nil {
		t.Fatal(err)
	}
	var notices []string
	core := &recorder{}
	h := New(context.Background(), cfg, core, Options{Notify: func(s string) { notices = append(notices, s) }})
	h.Handle(protocol.MustNew(protocol.ApplyPreview, sampleModel()))

	if core.count() != 0 {
		t.Error("failure should not reach the core")
	}
	if len(notices) != 1 {
		t.Errorf("notices = %v, want one failure notice", notices)
	}
	if _, ok := h.LastModel(); !ok {
		t.Error("the pushed model should be kept for exports")
	}
}

func TestHandleExports(t *testing.T) {
	tests := []struct {
		typ  string
		file string
	}{
		{protocol.RequestExportJSON, "design-lab-theme.json"},
		{protocol.RequestSaveTheme, "design-lab-theme.json"},
		{protocol.RequestExportCSS, "design-lab-theme.css"},
		{protocol.RequestExportVSIX, "design-lab-theme.vsix"},
		{protocol.RequestExportHCL, "design-lab-theme.hcl"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			cfg := testConfig(t)
			var notices []string
			h := New(context.Background(), cfg, &recorder{}, Options{Notify: func(s string) { notices = append(notices, s) }})
			h.Handle(protocol.MustNew(protocol.ApplyPreview, sampleModel()))
			h.Handle(protocol.MustNew(tt.typ, nil))

			path := filepath.Join(cfg.Export.Dir, tt.file)
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("export not written: %v", err)
			}
			if len(notices) != 1 || !strings.Contains(notices[0], path) {
				t.Errorf("notices = %v, want one naming %s", notices, path)
			}
			if tt.typ == protocol.RequestExportCSS {
				return
			}
			got, err := importer.File(path)
			if err != nil {
				t.Fatalf("importing export: %v", err)
			}
			if !got.Equal(sampleModel()) {
				t.Errorf("exported model = %s, want %s", got.Canonical(), sampleModel().Canonical())
			}
		})
	}
}

func TestExportBeforePreviewUsesSettings(t *testing.T) {
	cfg := testConfig(t)
	if err := WriteSettings(cfg.SettingsFile(), sampleModel()); err != nil {
		t.Fatal(err)
	}
	h := New(context.Background(), cfg, &recorder{}, Options{})
	path, err := h.Export(exporter.FormatJSON)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	got, err := importer.File(path)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(sampleModel()) {
		t.Errorf("exported model = %s, want %s", got.Canonical(), sampleModel().Canonical())
	}
}

func TestHandleStartBlank(t *testing.T) {
	core := &recorder{}
	h := New(context.Background(), testConfig(t), core, Options{})
	h.Handle(protocol.MustNew(protocol.RequestStartBlank, nil))

	msg := core.only(t)
	if msg.Type != protocol.LoadImported {
		t.Fatalf("posted %s, want %s", msg.Type, protocol.LoadImported)
	}
	if got := string(msg.Payload); got != `{"colors":{},"tokenColors":[],"semanticTokens":{}}` {
		t.Errorf("payload = %s, want an empty model", got)
	}
}

func TestHandleLocateEcho(t *testing.T) {
	core := &recorder{}
	h := New(context.Background(), testConfig(t), core, Options{})
	h.Handle(protocol.MustNew(protocol.Locate, protocol.LocatePayload{ElementID: "row-editor.background"}))

	msg := core.only(t)
	if msg.Type != protocol.Locate || protocol.DecodeLocate(msg.Payload) != "row-editor.background" {
		t.Errorf("posted %s %s, want the locate echoed", msg.Type, msg.Payload)
	}
}

func TestHandleImport(t *testing.T) {
	dir := t.TempDir()
	themePath := filepath.Join(dir, "theme.json")
	out, err := exporter.JSON(exporter.Meta{}, sampleModel())
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, themePath, string(out))

	tests := []struct {
		name     string
		picker   Picker
		wantMsgs int
		wantErr  bool
	}{
		{"picked", PickerFunc(func(context.Context) (string, error) { return themePath, nil }), 1, false},
		{"cancelled", PickerFunc(func(context.Context) (string, error) { return "", nil }), 0, false},
		{"picker error", PickerFunc(func(context.Context) (string, error) { return "", errors.New("boom") }), 0, true},
		{"unsupported", PickerFunc(func(context.Context) (string, error) { return filepath.Join(dir, "x.txt"), nil }), 0, true},
		{"no picker", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core := &recorder{}
			var notices []string
			h := New(context.Background(), testConfig(t), core, Options{
				Picker: tt.picker,
				Notify: func(s string) { notices = append(notices, s) },
			})
			h.Handle(protocol.MustNew(protocol.RequestImport, nil))

			if core.count() != tt.wantMsgs {
				t.Fatalf("posted %d messages, want %d", core.count(), tt.wantMsgs)
			}
			if (len(notices) > 0) != tt.wantErr {
				t.Errorf("notices = %v, want error %v", notices, tt.wantErr)
			}
			if tt.wantMsgs == 0 {
				return
			}
			msg := core.only(t)
			if msg.Type != protocol.LoadImported {
				t.Fatalf("posted %s, want %s", msg.Type, protocol.LoadImported)
			}
			if got := protocol.DecodeModel(msg.Payload); !got.Equal(sampleModel()) {
				t.Errorf("imported = %s, want %s", got.Canonical(), sampleModel().Canonical())
			}
		})
	}
}

func TestCombine(t *testing.T) {
	active := theme.New()
	active.Colors["editor.background"] = "#111111"
	active.Colors["editor.foreground"] = "#EEEEEE"
	active.TokenRules = []theme.TokenRule{{Scope: theme.StringScope("comment"), Settings: theme.TokenSettings{Foreground: "#888888"}}}
	active.SemanticRules.Set("variable", theme.SemanticValue{Foreground: "#AAAAAA"})
	active.SemanticRules.Set("function", theme.SemanticValue{Foreground: "#BBBBBB"})

	settings := theme.New()
	settings.Colors["editor.background"] = "#000000"
	settings.TokenRules = []theme.TokenRule{{Scope: theme.StringScope("comment"), Settings: theme.TokenSettings{Foreground: "#FF0000"}}}
	settings.SemanticRules.Set("type", theme.SemanticValue{Foreground: "#CCCCCC"})
	settings.SemanticRules.Set("variable", theme.SemanticValue{Foreground: "#DDDDDD"})

	got := Combine(active, settings)

	want := theme.New()
	want.Colors["editor.background"] = "#000000"
	want.Colors["editor.foreground"] = "#EEEEEE"
	want.TokenRules = []theme.TokenRule{settings.TokenRules[0], active.TokenRules[0]}
	want.SemanticRules.Set("variable", theme.SemanticValue{Foreground: "#DDDDDD"})
	want.SemanticRules.Set("function", theme.SemanticValue{Foreground: "#BBBBBB"})
	want.SemanticRules.Set("type", theme.SemanticValue{Foreground: "#CCCCCC"})
	if !got.Equal(want) {
		t.Errorf("Combine() = %s\nwant %s", got.Canonical(), want.Canonical())
	}
}

func TestHandleUseCurrent(t *testing.T) {
	cfg := testConfig(t)
	active := theme.New()
	active.Colors["editor.foreground"] = "#EEEEEE"
	out, err := exporter.JSON(exporter.Meta{}, active)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Settings.ActiveTheme = filepath.Join(t.TempDir(), "active.json")
	writeFile(t, cfg.Settings.ActiveTheme, string(out))
	if err := WriteSettings(cfg.SettingsFile(), sampleModel()); err != nil {
		t.Fatal(err)
	}

	core := &recorder{}
	h := New(context.Background(), cfg, core, Options{})
	h.Handle(protocol.MustNew(protocol.RequestUseCurrent, nil))

	msg := core.only(t)
	if msg.Type != protocol.LoadCurrent {
		t.Fatalf("posted %s, want %s", msg.Type, protocol.LoadCurrent)
	}
	want := Combine(active, sampleModel())
	if got := protocol.DecodeModel(msg.Payload); !got.Equal(want) {
		t.Errorf("payload = %s, want %s", got.Canonical(), want.Canonical())
	}
}
