package color

import (
	"math"
	"testing"
)

func TestHSBToXY_Golden(t *testing.T) {
	tests := []struct {
		name     string
		hue      int
		sat      int
		bri      int
		expected XY
	}{
		{name: "red", hue: 0, sat: 254, bri: 254, expected: XY{X: 0.64, Y: 0.33}},
		{name: "blue_from_240_degrees", hue: NormalizeHue(240), sat: 254, bri: 200, expected: XY{X: 0.15, Y: 0.06}},
		{name: "white", hue: 0, sat: 0, bri: 254, expected: XY{X: 0.3127, Y: 0.329}},
		{name: "black", hue: 12000, sat: 0, bri: 0, expected: XY{X: 0, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HSBToXY(tt.hue, tt.sat, tt.bri)
			if got != tt.expected {
				t.Errorf("HSBToXY(%d, %d, %d) = %+v, want %+v", tt.hue, tt.sat, tt.bri, got, tt.expected)
			}
		})
	}
}

func TestHSBToXY_AchromaticIgnoresHue(t *testing.T) {
	for _, bri := range []int{1, 60, 150, 254} {
		want := HSBToXY(0, 0, bri)
		for hue := 0; hue <= MaxHue; hue += 4369 {
			if got := HSBToXY(hue, 0, bri); got != want {
				t.Errorf("HSBToXY(%d, 0, %d) = %+v, want %+v", hue, bri, got, want)
			}
		}
		if want.X != 0.3127 || want.Y != 0.329 {
			t.Errorf("achromatic point at bri=%d = %+v, want D65 white", bri, want)
		}
	}
}

func TestHSBToXY_RangeAndFinite(t *testing.T) {
	for hue := 0; hue <= MaxHue; hue += 1111 {
		for sat := 0; sat <= MaxSaturation; sat += 127 {
			for bri := 0; bri <= MaxBrightness; bri += 127 {
				xy := HSBToXY(hue, sat, bri)
				for _, v := range []float64{xy.X, xy.Y} {
					if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
						t.Fatalf("HSBToXY(%d, %d, %d) = %+v out of range", hue, sat, bri, xy)
					}
				}
			}
		}
	}
	// Top of the hue wheel wraps into the first sector.
	if got, want := HSBToXY(MaxHue, 254, 254), HSBToXY(0, 254, 254); got != want {
		t.Errorf("HSBToXY(max hue) = %+v, want %+v", got, want)
	}
}

func TestNormalizeHue(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 0},
		{180, 32768},
		{240, 43690},
		{360, 65535},
		{361, 361},
		{43690, 43690},
	}
	for _, tt := range tests {
		if got := NormalizeHue(tt.in); got != tt.want {
			t.Errorf("NormalizeHue(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBrightnessPercent(t *testing.T) {
	if got := BrightnessPercent(200); math.Abs(got-78.74) > 0.01 {
		t.Errorf("BrightnessPercent(200) = %v, want ~78.74", got)
	}
	if got := BrightnessPercent(-5); got != 0 {
		t.Errorf("BrightnessPercent(-5) = %v, want 0", got)
	}
	if got := BrightnessPercent(400); got != 100 {
		t.Errorf("BrightnessPercent(400) = %v, want 100", got)
	}
}
