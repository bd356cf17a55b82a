package color

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Fallback is fed to 6-digit color controls when a value cannot be coerced.
const Fallback = "#000000"

var hexPattern = regexp.MustCompile(`(?i)^#[0-9a-f]{6}([0-9a-f]{2})?$`)

// IsValidHex reports whether s, ignoring surrounding whitespace, is a
// #RRGGBB or #RRGGBBAA color.
func IsValidHex(s string) bool {
	return hexPattern.MatchString(strings.TrimSpace(s))
}

// NormalizeHex trims s, ensures a leading # and upper-cases it. It does not
// validate the length.
func NormalizeHex(s string) string {
	v := strings.TrimSpace(s)
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	return strings.ToUpper(v)
}

// CoerceHex returns the 6-digit part of a 6 or 8 digit hex color, or
// Fallback when s is not a hex color.
func CoerceHex(s string) string {
	if !hexPattern.MatchString(s) {
		return Fallback
	}
	return "#" + s[1:7]
}

// AlphaFromHex decodes the alpha byte of an 8-digit hex color into a
// 0-100 percentage. Anything else is treated as fully opaque.
func AlphaFromHex(s string) int {
	if !hexPattern.MatchString(s) || len(s) != 9 {
		return 100
	}
	c, err := ParseHex(s)
	if err != nil {
		return 100
	}
	return int(math.Round(float64(c.A) / 255 * 100))
}

// MergeHexWithAlpha combines the 6-digit part of base6 with an alpha
// percentage and returns a normalized #RRGGBBAA value.
func MergeHexWithAlpha(base6 string, alphaPct float64) string {
	hex6 := strings.TrimPrefix(CoerceHex(base6), "#")
	a := math.Round(ClampPct(alphaPct) / 100 * 255)
	return NormalizeHex(fmt.Sprintf("#%s%02x", hex6, int(a)))
}

// ClampPct clamps n to [0, 100]. NaN and infinities map to 100.
func ClampPct(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 100
	}
	return math.Min(100, math.Max(0, n))
}
