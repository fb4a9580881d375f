// Package describe maps descriptive color, mood and brightness words onto
// the Hue native scale.
package describe

import "strings"

// HueSat is a native-scale hue (0-65535) and saturation (0-254) pair.
type HueSat struct {
	Hue int
	Sat int
}

// Spec is a fully resolved native color.
type Spec struct {
	Hue int
	Sat int
	Bri int
}

const (
	defaultColor   = "white"
	fallbackColor  = "warm white"
	defaultBriWord = "normal"
	fullSaturation = 254
)

// baseColors are tuned for how Hue bulbs actually render, not for pure hue angles.
var baseColors = map[string]HueSat{
	"red":          {0, 254},
	"warm red":     {2000, 230},
	"orange":       {5461, 254},
	"yellow":       {10922, 254},
	"lime":         {16384, 254},
	"green":        {21845, 254},
	"spring green": {27306, 254},
	"cyan":         {32768, 254},
	"sky blue":     {38000, 200},
	"blue":         {43690, 254},
	"purple":       {49151, 254},
	"magenta":      {52000, 254},
	"pink":         {54613, 254},
	"light pink":   {56000, 180},
	"white":        {0, 0},
	"warm white":   {7000, 100},
	"cool white":   {38000, 50},
}

// calmOverrides apply to calm moods, checked in order against the color text.
var calmOverrides = []struct {
	keyword string
	value   HueSat
}{
	{"red", HueSat{3000, 180}},
	{"orange", HueSat{5461, 200}},
	{"blue", HueSat{40000, 160}},
	{"green", HueSat{24000, 170}},
}

var brightnessLevels = map[string]int{
	"off":      0,
	"minimum":  1,
	"very dim": 25,
	"dim":      60,
	"sleepy":   40,
	"soft":     100,
	"normal":   150,
	"bright":   220,
	"full":     254,
	"max":      254,
	"maximum":  254,
}

var (
	calmMoods      = setOf("calming", "relaxing", "sleepy", "chill", "nap", "napping")
	softMoods      = setOf("calming", "relaxing", "sleepy", "soft", "chill", "nap", "napping")
	energeticMoods = setOf("energizing", "vibrant", "bright")
)

// ResolveColor maps a color description and optional mood to a hue and
// saturation. It never fails: unknown colors fall back to warm white and a
// missing color to white, which mood never alters.
func ResolveColor(colorText, moodText string) HueSat {
	colorText = normalize(colorText)
	if colorText == "" {
		return baseColors[defaultColor]
	}
	mood := normalize(moodText)

	if calmMoods[mood] {
		for _, o := range calmOverrides {
			if strings.Contains(colorText, o.keyword) {
				return o.value
			}
		}
	}

	hs, ok := baseColors[colorText]
	if !ok {
		hs = baseColors[fallbackColor]
	}

	if softMoods[mood] || energeticMoods[mood] {
		hs.Sat = fullSaturation
	}
	return hs
}

// ResolveBrightness maps a brightness word to native brightness (0-254).
// Unknown or empty input yields "normal".
func ResolveBrightness(brightnessText string) int {
	if bri, ok := brightnessLevels[normalize(brightnessText)]; ok {
		return bri
	}
	return brightnessLevels[defaultBriWord]
}

// Resolve combines ResolveColor and ResolveBrightness.
func Resolve(colorText, moodText, brightnessText string) Spec {
	hs := ResolveColor(colorText, moodText)
	return Spec{Hue: hs.Hue, Sat: hs.Sat, Bri: ResolveBrightness(brightnessText)}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
