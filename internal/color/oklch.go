package color

import "math"

// RGBToOKLCH converts an sRGB Color to OKLCH components.
// L is lightness [0, 1], chroma is colorfulness [0, ~0.37], hue is in degrees [0, 360).
func RGBToOKLCH(c Color) (l, chroma, hue float64) {
	// sRGB → linear RGB
	lr := srgbToLinear(float64(c.R) / 255.0)
	lg := srgbToLinear(float64(c.G) / 255.0)
	lb := srgbToLinear(float64(c.B) / 255.0)

	// linear RGB → OKLAB
	L, a, b := linearRGBToOKLAB(lr, lg, lb)

	// OKLAB → OKLCH
	chroma = math.Sqrt(a*a + b*b)
	hue = math.Atan2(b, a) * (180.0 / math.Pi)
	if hue < 0 {
		hue += 360.0
	}

	return L, chroma, hue
}

// ReadableOn returns black or white, whichever reads better as text on top
// of the given background. Only perceived lightness is considered.
func ReadableOn(background Color) Color {
	l, _, _ := RGBToOKLCH(background)
	if l > 0.65 {
		return Color{A: 255}
	}
	return Color{R: 255, G: 255, B: 255, A: 255}
}

// srgbToLinear converts a single sRGB component [0,1] to linear RGB.
func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// linearRGBToOKLAB converts linear RGB to OKLAB (L, a, b).
func linearRGBToOKLAB(r, g, b float64) (float64, float64, float64) {
	// M1: linear RGB → LMS
	l := 0.4122214708*r + 0.5363325363*g + 0.0514459929*b
	m := 0.2119034982*r + 0.6806995451*g + 0.1073969566*b
	s := 0.0883024619*r + 0.2817188376*g + 0.6299787005*b

	// Cube root (preserving sign)
	lp := math.Cbrt(l)
	mp := math.Cbrt(m)
	sp := math.Cbrt(s)

	// M2: LMS' → Lab
	L := 0.2104542553*lp + 0.7936177850*mp - 0.0040720468*sp
	A := 1.9779984951*lp - 2.4285922050*mp + 0.4505937099*sp
	B := 0.0259040371*lp + 0.7827717662*mp - 0.8086757660*sp

	return L, A, B
}
