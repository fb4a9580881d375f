// Package intent defines the closed set of structured commands the router
// can act on and decodes them from loosely typed JSON objects.
package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownIntent is returned when the intent tag is missing or unrecognized.
var ErrUnknownIntent = errors.New("unknown intent")

// Kind is the intent discriminator as it appears on the wire.
type Kind string

const (
	KindSetColor       Kind = "set_color"
	KindTriggerScene   Kind = "trigger_scene"
	KindTriggerWebhook Kind = "trigger_ifttt"
	KindTvControl      Kind = "lg_tv_control"
)

// Intent is implemented only by the types in this package.
type Intent interface {
	Kind() Kind
	sealed()
}

// SetColor changes a location's light color, either from explicit native
// HSB values or from descriptive text.
type SetColor struct {
	Location string
	Hue      *int
	Sat      *int
	Bri      *int

	ColorDescription      string
	BrightnessDescription string
	MoodDescription       string
}

// HasExplicitColor reports whether hue, sat and bri are all present.
func (s SetColor) HasExplicitColor() bool {
	return s.Hue != nil && s.Sat != nil && s.Bri != nil
}

// TriggerScene recalls a stored scene.
type TriggerScene struct {
	SceneName string
	Location  string
}

// TriggerWebhook sends an on/off/open command to an appliance through the relay.
type TriggerWebhook struct {
	Device  string
	Command string
}

// TvControl sends a raw command to the TV.
type TvControl struct {
	Command string
}

func (SetColor) Kind() Kind       { return KindSetColor }
func (TriggerScene) Kind() Kind   { return KindTriggerScene }
func (TriggerWebhook) Kind() Kind { return KindTriggerWebhook }
func (TvControl) Kind() Kind      { return KindTvControl }

func (SetColor) sealed()       {}
func (TriggerScene) sealed()   {}
func (TriggerWebhook) sealed() {}
func (TvControl) sealed()      {}

// Decode builds an Intent from a decoded JSON object. Only the intent tag is
// validated here; field requirements are enforced by the router.
func Decode(data map[string]any) (Intent, error) {
	kind := Kind(stringField(data, "intent"))

	switch kind {
	case KindSetColor:
		return SetColor{
			Location:              stringField(data, "location"),
			Hue:                   intField(data, "hue"),
			Sat:                   intField(data, "sat"),
			Bri:                   intField(data, "bri"),
			ColorDescription:      stringField(data, "color_description"),
			BrightnessDescription: stringField(data, "brightness_description"),
			MoodDescription:       stringField(data, "mood_description"),
		}, nil
	case KindTriggerScene:
		return TriggerScene{
			SceneName: stringField(data, "scene_name"),
			Location:  stringField(data, "location"),
		}, nil
	case KindTriggerWebhook:
		return TriggerWebhook{
			Device:  stringField(data, "device"),
			Command: stringField(data, "command"),
		}, nil
	case KindTvControl:
		return TvControl{Command: stringField(data, "command")}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, kind)
	}
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// intField accepts JSON numbers and numeric strings; anything else is absent.
func intField(data map[string]any, key string) *int {
	var f float64
	switch v := data[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(f)
	return &n
}
