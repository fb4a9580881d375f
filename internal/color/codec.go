// Package color converts Hue native HSB values into the CIE 1931 xy
// chromaticity and brightness percentage accepted by the CLIP v2 API.
package color

import "math"

// Native scale limits
const (
	MaxHue        = 65535
	MaxSaturation = 254
	MaxBrightness = 254
)

// XY is a CIE 1931 chromaticity pair rounded to 4 decimal places.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NormalizeHue maps a hue given either in degrees (0-360) or native scale
// (0-65535) to native scale. Any value <= 360 is treated as degrees.
func NormalizeHue(hue int) int {
	if hue <= 360 {
		return int(math.Round(float64(hue) / 360.0 * MaxHue))
	}
	return hue
}

// BrightnessPercent converts native brightness (0-254) to the 0-100 range.
func BrightnessPercent(bri int) float64 {
	pct := float64(bri) / MaxBrightness * 100.0
	return math.Min(100.0, math.Max(0.0, pct))
}

// HSBToXY converts native hue (0-65535), saturation (0-254) and brightness
// (0-254) into xy chromaticity. A zero denominator yields (0, 0).
func HSBToXY(hue, saturation, brightness int) XY {
	h := float64(hue) / MaxHue
	s := float64(saturation) / MaxSaturation
	v := float64(brightness) / MaxBrightness

	var r, g, b float64
	if s == 0 {
		// Achromatic: every channel takes the brightness value.
		r, g, b = v, v, v
	} else {
		h *= 6.0
		i := math.Floor(h)
		f := h - i
		p := v * (1.0 - s)
		q := v * (1.0 - s*f)
		t := v * (1.0 - s*(1.0-f))

		switch int(i) % 6 {
		case 0:
			r, g, b = v, t, p
		case 1:
			r, g, b = q, v, p
		case 2:
			r, g, b = p, v, t
		case 3:
			r, g, b = p, q, v
		case 4:
			r, g, b = t, p, v
		default:
			r, g, b = v, p, q
		}
	}

	r, g, b = linearize(r), linearize(g), linearize(b)

	// sRGB / D65
	X := r*0.4124564 + g*0.3575761 + b*0.1804375
	Y := r*0.2126729 + g*0.7151522 + b*0.0721750
	Z := r*0.0193339 + g*0.1191920 + b*0.9503041

	sum := X + Y + Z
	if sum == 0 {
		return XY{}
	}
	return XY{X: round4(X / sum), Y: round4(Y / sum)}
}

// linearize applies the inverse sRGB gamma curve.
func linearize(c float64) float64 {
	if c > 0.04045 {
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	return c / 12.92
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
