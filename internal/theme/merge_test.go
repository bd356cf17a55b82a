package theme

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeColors(t *testing.T) {
	got := MergeColors(
		map[string]string{"a": "#111111"},
		map[string]string{"a": "#222222", "b": "#333333"},
	)
	want := map[string]string{"a": "#111111", "b": "#333333"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeColors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeTokenRules(t *testing.T) {
	tests := []struct {
		name string
		base []TokenRule
		add  []TokenRule
		want []TokenRule
	}{
		{
			name: "base wins on same scope",
			base: []TokenRule{{Scope: StringScope("a.b")}},
			add: []TokenRule{
				{Scope: StringScope("a.b"), Settings: TokenSettings{Foreground: "#FFFFFF"}},
				{Scope: StringScope("c.d")},
			},
			want: []TokenRule{
				{Scope: StringScope("a.b")},
				{Scope: StringScope("c.d")},
			},
		},
		{
			name: "list and string scopes share keys",
			base: []TokenRule{{Scope: ListScope("x ", " y"), Settings: TokenSettings{FontStyle: "bold"}}},
			add: []TokenRule{
				{Scope: StringScope("x,y"), Settings: TokenSettings{FontStyle: "italic"}},
				{Scope: ListScope("z")},
			},
			want: []TokenRule{
				{Scope: ListScope("x ", " y"), Settings: TokenSettings{FontStyle: "bold"}},
				{Scope: ListScope("z")},
			},
		},
		{
			name: "duplicates within base share one slot",
			base: []TokenRule{
				{Scope: StringScope("a"), Settings: TokenSettings{Foreground: "#111111"}},
				{Scope: StringScope("b")},
				{Scope: StringScope(" a"), Settings: TokenSettings{Foreground: "#222222"}},
			},
			add: []TokenRule{{Scope: StringScope("a"), Settings: TokenSettings{Foreground: "#333333"}}},
			want: []TokenRule{
				{Scope: StringScope(" a"), Settings: TokenSettings{Foreground: "#222222"}},
				{Scope: StringScope("b")},
			},
		},
		{
			name: "new empty rules collapse",
			base: []TokenRule{{Scope: StringScope("")}, {Scope: StringScope("")}},
			want: []TokenRule{{Scope: StringScope("")}},
		},
		{
			name: "duplicates within add keep the first",
			base: nil,
			add: []TokenRule{
				{Scope: StringScope("k"), Settings: TokenSettings{Foreground: "#111111"}},
				{Scope: StringScope(" k "), Settings: TokenSettings{Foreground: "#222222"}},
			},
			want: []TokenRule{
				{Scope: StringScope("k"), Settings: TokenSettings{Foreground: "#111111"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeTokenRules(tt.base, tt.add)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MergeTokenRules mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeSemanticRules(t *testing.T) {
	var base, add SemanticRules
	base.Set("b", SemanticValue{Foreground: "#111111"})
	add.Set("a", SemanticValue{Foreground: "#222222"})
	add.Set("b", SemanticValue{Foreground: "#333333"})
	add.Set("c", SemanticValue{FontStyle: "bold"})

	got := MergeSemanticRules(base, add)
	if diff := cmp.Diff([]string{"b", "a", "c"}, got.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if v, _ := got.Get("b"); v.Foreground != "#111111" {
		t.Errorf("b foreground = %q, want base value", v.Foreground)
	}
	if base.Len() != 1 {
		t.Errorf("base mutated: len = %d", base.Len())
	}
}

func TestMergeModel(t *testing.T) {
	base := New()
	base.Colors["editor.background"] = "#000000"
	base.SemanticRules.Set("variable", SemanticValue{Foreground: "#AAAAAA"})

	add := New()
	add.Colors["editor.background"] = "#FFFFFF"
	add.Colors["editor.foreground"] = "#EEEEEE"
	add.TokenRules = []TokenRule{{Scope: StringScope("comment")}}
	add.SemanticRules.Set("variable", SemanticValue{Foreground: "#BBBBBB"})

	got := Merge(base, add)
	want := `{"colors":{"editor.background":"#000000","editor.foreground":"#EEEEEE"},` +
		`"tokenColors":[{"scope":"comment","settings":{}}],` +
		`"semanticTokens":{"variable":{"foreground":"#AAAAAA"}}}`
	if got.Canonical() != want {
		t.Errorf("Merge = %s\nwant %s", got.Canonical(), want)
	}
}
