package color

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidHex is returned when a string is not a #RRGGBB or #RRGGBBAA color.
var ErrInvalidHex = errors.New("invalid hex color")

// Color represents an RGBA color. The uint8 fields are the source of truth;
// all output formats are derived from them. A is 255 for colors parsed
// without an alpha channel.
type Color struct {
	R, G, B, A uint8
}

// ParseHex parses "#RRGGBB" or "#RRGGBBAA" (case-insensitive, leading #
// optional) into a Color.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("%w %q: must be 6 or 8 hex digits", ErrInvalidHex, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w %q: %v", ErrInvalidHex, s, err)
	}
	c := Color{R: b[0], G: b[1], B: b[2], A: 255}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

// Hex returns the opaque part of the color, e.g. "#EB6F92".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// HexAlpha returns the color with its alpha channel, e.g. "#EB6F9280".
func (c Color) HexAlpha() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// RGB returns the color as an rgb() string, e.g. "rgb(235, 111, 146)".
func (c Color) RGB() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Opaque reports whether the alpha channel is fully opaque.
func (c Color) Opaque() bool {
	return c.A == 255
}

// Composite blends c over the backdrop by c's alpha channel and returns an
// opaque color. Terminals cannot draw translucent cells, so previews of
// #RRGGBBAA values are flattened against the surface they sit on.
func Composite(c, backdrop Color) Color {
	if c.A == 255 {
		return c
	}
	top := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	bottom := colorful.Color{R: float64(backdrop.R) / 255, G: float64(backdrop.G) / 255, B: float64(backdrop.B) / 255}
	r, g, b := bottom.BlendRgb(top, float64(c.A)/255).Clamped().RGB255()
	return Color{R: r, G: g, B: b, A: 255}
}
