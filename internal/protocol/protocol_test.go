package protocol

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jsvensson/themelab/internal/theme"
)

func TestDecodeModelShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "theme file shape",
			in: `{"colors":{"editor.background":"#1e1e1e"},` +
				`"tokenColors":[{"scope":["comment"],"settings":{"fontStyle":"italic"}}],` +
				`"semanticTokens":{"variable":"#9CDCFE"}}`,
			want: `{"colors":{"editor.background":"#1e1e1e"},` +
				`"tokenColors":[{"scope":["comment"],"settings":{"fontStyle":"italic"}}],` +
				`"semanticTokens":{"variable":{"foreground":"#9CDCFE"}}}`,
		},
		{
			name: "settings shape",
			in: `{"colors":{},"tokenColors":{"textMateRules":[{"scope":"string","settings":{"foreground":"#CE9178"}}]},` +
				`"semanticTokens":{"enabled":true,"rules":{"function":{"fontStyle":"bold"}}}}`,
			want: `{"colors":{},"tokenColors":[{"scope":"string","settings":{"foreground":"#CE9178"}}],` +
				`"semanticTokens":{"function":{"fontStyle":"bold"}}}`,
		},
		{
			name: "bare rule map drops enabled",
			in:   `{"semanticTokens":{"enabled":true,"class":{"foreground":"#4EC9B0"}}}`,
			want: `{"colors":{},"tokenColors":[],"semanticTokens":{"class":{"foreground":"#4EC9B0"}}}`,
		},
		{
			name: "junk members are coerced",
			in:   `{"colors":{"a":"#FFFFFF","b":7},"tokenColors":[1,"x",{"scope":"k","settings":{}}],"semanticTokens":[]}`,
			want: `{"colors":{"a":"#FFFFFF"},"tokenColors":[{"scope":"k","settings":{}}],"semanticTokens":{}}`,
		},
		{
			name: "textMateRules that is not a list",
			in:   `{"tokenColors":{"textMateRules":"nope"}}`,
			want: `{"colors":{},"tokenColors":[],"semanticTokens":{}}`,
		},
		{name: "array payload", in: `[1,2,3]`, want: `{"colors":{},"tokenColors":[],"semanticTokens":{}}`},
		{name: "string payload", in: `"hello"`, want: `{"colors":{},"tokenColors":[],"semanticTokens":{}}`},
		{name: "null payload", in: `null`, want: `{"colors":{},"tokenColors":[],"semanticTokens":{}}`},
		{name: "empty payload", in: ``, want: `{"colors":{},"tokenColors":[],"semanticTokens":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeModel(json.RawMessage(tt.in))
			if got.Canonical() != tt.want {
				t.Errorf("DecodeModel(%s)\n got %s\nwant %s", tt.in, got.Canonical(), tt.want)
			}
		})
	}
}

func TestParseTokenColorsShape(t *testing.T) {
	if _, ok := ParseTokenColors(json.RawMessage(`[]`)).(RuleList); !ok {
		t.Error("array payload is not a RuleList")
	}
	if _, ok := ParseTokenColors(json.RawMessage(`{"textMateRules":[]}`)).(TextMateRules); !ok {
		t.Error("textMateRules payload is not TextMateRules")
	}
	if got := ParseTokenColors(json.RawMessage(`{}`)); got != nil {
		t.Errorf("ParseTokenColors({}) = %T, want nil", got)
	}
}

func TestParseSemanticTokensShape(t *testing.T) {
	if _, ok := ParseSemanticTokens(json.RawMessage(`{"enabled":false,"rules":{}}`)).(SemanticSettings); !ok {
		t.Error("settings payload is not SemanticSettings")
	}
	if _, ok := ParseSemanticTokens(json.RawMessage(`{"variable":{}}`)).(RuleMap); !ok {
		t.Error("plain map payload is not a RuleMap")
	}
	if got := ParseSemanticTokens(json.RawMessage(`[]`)); got != nil {
		t.Errorf("ParseSemanticTokens([]) = %T, want nil", got)
	}
}

func TestDecodeBoot(t *testing.T) {
	raw := json.RawMessage(`{
		"categories": [{"name": "Editor", "items": [{"key": "editor.background", "description": "Editor background."}]}],
		"settings": {"colors": {"editor.background": "#000000"}, "tokenColors": {"textMateRules": []}, "semanticTokens": {"rules": {}}}
	}`)
	cats, settings := DecodeBoot(raw)

	wantCats := []theme.Category{{Name: "Editor", Items: []theme.Item{{Key: "editor.background", Description: "Editor background."}}}}
	if diff := cmp.Diff(wantCats, cats); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if settings.Colors["editor.background"] != "#000000" {
		t.Errorf("settings colors = %v", settings.Colors)
	}

	cats, settings = DecodeBoot(json.RawMessage(`42`))
	if cats != nil || !settings.IsEmpty() {
		t.Errorf("DecodeBoot(42) = %v, %s", cats, settings.Canonical())
	}
}

func TestMessageJSON(t *testing.T) {
	m := theme.New()
	m.Colors["a"] = "#FFFFFF"
	msg := MustNew(ApplyPreview, m)

	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"APPLY_PREVIEW","payload":{"colors":{"a":"#FFFFFF"},"tokenColors":[],"semanticTokens":{}}}`
	if string(b) != want {
		t.Errorf("Marshal = %s, want %s", b, want)
	}

	b, _ = json.Marshal(MustNew(RequestBoot, nil))
	if string(b) != `{"type":"REQUEST_BOOT"}` {
		t.Errorf("Marshal(REQUEST_BOOT) = %s", b)
	}

	if got := DecodeLocate(json.RawMessage(`{"elementId":"demo-terminal"}`)); got != "demo-terminal" {
		t.Errorf("DecodeLocate = %q", got)
	}
	if got := DecodeLocate(json.RawMessage(`[]`)); got != "" {
		t.Errorf("DecodeLocate([]) = %q, want empty", got)
	}
}
