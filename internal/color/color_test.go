package color

import (
	"errors"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Color
		wantErr bool
	}{
		{"with hash", "#eb6f92", Color{235, 111, 146, 255}, false},
		{"without hash", "eb6f92", Color{235, 111, 146, 255}, false},
		{"black", "#000000", Color{0, 0, 0, 255}, false},
		{"uppercase", "#AABBCC", Color{170, 187, 204, 255}, false},
		{"with alpha", "#AABBCC80", Color{170, 187, 204, 128}, false},
		{"surrounding space", "  #ffffff ", Color{255, 255, 255, 255}, false},
		{"too short", "#fff", Color{}, true},
		{"seven digits", "#aabbccd", Color{}, true},
		{"invalid chars", "#zzzzzz", Color{}, true},
		{"empty", "", Color{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if err != nil && !errors.Is(err, ErrInvalidHex) {
				t.Errorf("ParseHex(%q) error = %v, want ErrInvalidHex", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestColorHex(t *testing.T) {
	c := Color{235, 111, 146, 128}
	if got, want := c.Hex(), "#EB6F92"; got != want {
		t.Errorf("Color.Hex() = %q, want %q", got, want)
	}
	if got, want := c.HexAlpha(), "#EB6F9280"; got != want {
		t.Errorf("Color.HexAlpha() = %q, want %q", got, want)
	}
}

func TestColorRGB(t *testing.T) {
	c := Color{235, 111, 146, 255}
	want := "rgb(235, 111, 146)"
	if got := c.RGB(); got != want {
		t.Errorf("Color.RGB() = %q, want %q", got, want)
	}
}

func TestColorHexZeroPadding(t *testing.T) {
	c := Color{0, 5, 10, 255}
	want := "#00050A"
	if got := c.Hex(); got != want {
		t.Errorf("Color.Hex() = %q, want %q", got, want)
	}
}

func TestBrighten(t *testing.T) {
	tests := []struct {
		name       string
		color      Color
		percentage float64
		want       Color
	}{
		{"brighten red by 10%", Color{255, 0, 0, 255}, 0.1, Color{255, 50, 50, 255}},
		{"brighten gray by 20%", Color{128, 128, 128, 255}, 0.2, Color{179, 179, 179, 255}},
		{"white stays white", Color{255, 255, 255, 255}, 0.5, Color{255, 255, 255, 255}},
		{"brighten black by 50%", Color{0, 0, 0, 255}, 0.5, Color{127, 127, 127, 255}},
		{"alpha is kept", Color{0, 0, 0, 64}, 0.5, Color{127, 127, 127, 64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Brighten(tt.color, tt.percentage)
			if got != tt.want {
				t.Errorf("Brighten(%v, %v) = %v, want %v", tt.color, tt.percentage, got, tt.want)
			}
		})
	}
}

func TestDarken(t *testing.T) {
	tests := []struct {
		name       string
		color      Color
		percentage float64
		want       Color
	}{
		{"darken red by 10%", Color{255, 0, 0, 255}, 0.1, Color{204, 0, 0, 255}},
		{"darken gray by 20%", Color{128, 128, 128, 255}, 0.2, Color{77, 77, 77, 255}},
		{"darken blue by 10%", Color{0, 0, 255, 255}, 0.1, Color{0, 0, 204, 255}},
		{"black stays black", Color{0, 0, 0, 255}, 0.5, Color{0, 0, 0, 255}},
		{"darken white by 50%", Color{255, 255, 255, 255}, 0.5, Color{127, 127, 127, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Darken(tt.color, tt.percentage)
			if got != tt.want {
				t.Errorf("Darken(%v, %v) = %v, want %v", tt.color, tt.percentage, got, tt.want)
			}
		})
	}
}

func TestComposite(t *testing.T) {
	white := Color{255, 255, 255, 255}
	black := Color{0, 0, 0, 255}

	tests := []struct {
		name     string
		c        Color
		backdrop Color
		want     Color
	}{
		{"opaque passes through", Color{10, 20, 30, 255}, white, Color{10, 20, 30, 255}},
		{"transparent shows backdrop", Color{10, 20, 30, 0}, white, white},
		{"half black over white", Color{0, 0, 0, 128}, white, Color{127, 127, 127, 255}},
		{"half white over black", Color{255, 255, 255, 128}, black, Color{128, 128, 128, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Composite(tt.c, tt.backdrop)
			if got != tt.want {
				t.Errorf("Composite(%v, %v) = %v, want %v", tt.c, tt.backdrop, got, tt.want)
			}
		})
	}
}
