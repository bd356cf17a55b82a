package color

import (
	"math"
	"testing"
)

func TestIsValidHex(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"#AABBCC", true},
		{"#aabbcc", true},
		{"#AABBCC80", true},
		{"  #112233  ", true},
		{"AABBCC", false},
		{"#ABC", false},
		{"#AABBCC8", false},
		{"#GGGGGG", false},
		{"", false},
		{"#AABBCCDDEE", false},
	}

	for _, tt := range tests {
		if got := IsValidHex(tt.input); got != tt.want {
			t.Errorf("IsValidHex(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeHex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#aabbcc", "#AABBCC"},
		{"aabbcc", "#AABBCC"},
		{" #ff00ff80 ", "#FF00FF80"},
		{"abc", "#ABC"},
	}

	for _, tt := range tests {
		if got := NormalizeHex(tt.input); got != tt.want {
			t.Errorf("NormalizeHex(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCoerceHex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#ABCDEF", "#ABCDEF"},
		{"#ABCDEF12", "#ABCDEF"},
		{"#abcdef", "#abcdef"},
		{"red", Fallback},
		{"", Fallback},
		{"#ABC", Fallback},
	}

	for _, tt := range tests {
		if got := CoerceHex(tt.input); got != tt.want {
			t.Errorf("CoerceHex(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAlphaFromHex(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"#33669980", 50},
		{"#336699FF", 100},
		{"#33669900", 0},
		{"#336699", 100},
		{"garbage", 100},
	}

	for _, tt := range tests {
		if got := AlphaFromHex(tt.input); got != tt.want {
			t.Errorf("AlphaFromHex(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestMergeHexWithAlpha(t *testing.T) {
	tests := []struct {
		base  string
		alpha float64
		want  string
	}{
		{"#000000", 50, "#00000080"},
		{"#abcdef", 100, "#ABCDEFFF"},
		{"#ABCDEF12", 0, "#ABCDEF00"},
		{"#ABCDEF", 150, "#ABCDEFFF"},
		{"#ABCDEF", -20, "#ABCDEF00"},
		{"nope", 50, "#00000080"},
		{"#ABCDEF", math.NaN(), "#ABCDEFFF"},
	}

	for _, tt := range tests {
		if got := MergeHexWithAlpha(tt.base, tt.alpha); got != tt.want {
			t.Errorf("MergeHexWithAlpha(%q, %v) = %q, want %q", tt.base, tt.alpha, got, tt.want)
		}
	}
}

func TestMergeThenReadAlpha(t *testing.T) {
	for pct := 0; pct <= 100; pct++ {
		merged := MergeHexWithAlpha("#123456", float64(pct))
		if !IsValidHex(merged) {
			t.Fatalf("MergeHexWithAlpha(#123456, %d) = %q, not a valid hex", pct, merged)
		}
		if got := AlphaFromHex(merged); got != pct {
			t.Errorf("AlphaFromHex(MergeHexWithAlpha(#123456, %d)) = %d", pct, got)
		}
	}
}

func TestClampPct(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{50, 50},
		{-1, 0},
		{101, 100},
		{math.NaN(), 100},
		{math.Inf(1), 100},
		{math.Inf(-1), 100},
	}

	for _, tt := range tests {
		if got := ClampPct(tt.input); got != tt.want {
			t.Errorf("ClampPct(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
