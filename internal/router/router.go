// Package router dispatches structured intents to the lighting bridge, the
// webhook relay or the TV controller.
package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/lightcmd/internal/catalog"
	"github.com/dokzlo13/lightcmd/internal/color"
	"github.com/dokzlo13/lightcmd/internal/describe"
	"github.com/dokzlo13/lightcmd/internal/hue"
	"github.com/dokzlo13/lightcmd/internal/intent"
	"github.com/dokzlo13/lightcmd/internal/observe"
)

// Lights is the lighting bridge.
type Lights interface {
	SetGroupedLight(ctx context.Context, groupID string, update hue.GroupedLightUpdate) (map[string]any, error)
	RecallScene(ctx context.Context, sceneID string) (map[string]any, error)
}

// Relay triggers appliance webhooks.
type Relay interface {
	Trigger(ctx context.Context, device, command string) error
}

// TV sends raw TV commands.
type TV interface {
	Send(ctx context.Context, command string) error
}

// Relay devices
const (
	DeviceTV       = "tv"
	DeviceAC       = "ac"
	DeviceCurtains = "curtains"
)

// Router routes intents. It holds no mutable state and is safe for concurrent use.
type Router struct {
	catalog *catalog.Catalog
	lights  Lights
	relay   Relay
	tv      TV
	metrics *observe.Metrics
}

// New creates a router. metrics may be nil.
func New(cat *catalog.Catalog, lights Lights, relay Relay, tv TV, metrics *observe.Metrics) *Router {
	return &Router{
		catalog: cat,
		lights:  lights,
		relay:   relay,
		tv:      tv,
		metrics: metrics,
	}
}

// Route dispatches in and reports the outcome. It never panics on unknown input.
func (r *Router) Route(ctx context.Context, in intent.Intent) Outcome {
	var out Outcome
	kind := "unknown"

	switch v := in.(type) {
	case intent.SetColor:
		out = r.setColor(ctx, v)
	case intent.TriggerScene:
		out = r.triggerScene(ctx, v)
	case intent.TriggerWebhook:
		out = r.triggerWebhook(ctx, v)
	case intent.TvControl:
		out = r.tvControl(ctx, v)
	default:
		out = BadRequest("Unknown intent")
	}
	if in != nil {
		kind = string(in.Kind())
	}

	r.metrics.RecordIntent(ctx, kind, out.Status)

	ev := log.Info()
	if out.Status >= 400 {
		ev = log.Warn().Str("error", out.Error())
	}
	ev.Str("intent", kind).Int("status", out.Status).Msg("Intent routed")

	return out
}

// ResolveColor turns a SetColor intent into native HSB with saturation
// forced to maximum. ok is false when neither a complete explicit color nor a
// color description is present.
func ResolveColor(sc intent.SetColor) (spec describe.Spec, ok bool) {
	switch {
	case sc.HasExplicitColor():
		spec = describe.Spec{Hue: color.NormalizeHue(*sc.Hue), Bri: *sc.Bri}
	case sc.ColorDescription != "":
		spec = describe.Resolve(sc.ColorDescription, sc.MoodDescription, sc.BrightnessDescription)
	default:
		return describe.Spec{}, false
	}
	// Always render fully saturated color, whatever was requested.
	spec.Sat = color.MaxSaturation
	return spec, true
}

func (r *Router) setColor(ctx context.Context, sc intent.SetColor) Outcome {
	spec, ok := ResolveColor(sc)
	if strings.TrimSpace(sc.Location) == "" || !ok {
		return BadRequest("Missing required parameters: location and color_description or hue/sat/bri")
	}

	xy := color.HSBToXY(spec.Hue, spec.Sat, spec.Bri)
	brightness := color.BrightnessPercent(spec.Bri)

	groupID, err := r.catalog.ResolveLocation(sc.Location)
	if err != nil {
		return BadRequest("Invalid location")
	}

	log.Debug().
		Str("group", groupID).
		Int("hue", spec.Hue).
		Int("sat", spec.Sat).
		Int("bri", spec.Bri).
		Float64("x", xy.X).
		Float64("y", xy.Y).
		Float64("brightness", brightness).
		Msg("Setting group color")

	resp, err := r.lights.SetGroupedLight(ctx, groupID, hue.GroupedLightUpdate{
		On:      hue.On{On: true},
		Dimming: hue.Dimming{Brightness: brightness},
		Color:   hue.Color{XY: hue.XY{X: xy.X, Y: xy.Y}},
	})
	if err != nil {
		return UpstreamError(fmt.Sprintf("Failed to communicate with Hue Bridge: %v", err))
	}

	return OK(map[string]any{"status": "Hue command sent", "response": resp})
}

func (r *Router) triggerScene(ctx context.Context, ts intent.TriggerScene) Outcome {
	if strings.TrimSpace(ts.SceneName) == "" {
		return BadRequest("Missing scene_name")
	}

	sceneID, err := r.catalog.ResolveScene(ts.SceneName)
	if err != nil {
		return BadRequest(fmt.Sprintf("Unknown scene: %s", catalog.NormalizeScene(ts.SceneName)))
	}

	if _, err := r.catalog.ResolveLocation(ts.Location); err != nil {
		return BadRequest("Invalid location")
	}

	resp, err := r.lights.RecallScene(ctx, sceneID)
	if err != nil {
		return UpstreamError(fmt.Sprintf("Failed to activate scene: %v", err))
	}

	return OK(map[string]any{"status": "Scene activated", "response": resp})
}

func (r *Router) triggerWebhook(ctx context.Context, tw intent.TriggerWebhook) Outcome {
	device := strings.ToLower(strings.TrimSpace(tw.Device))
	command := strings.ToLower(strings.TrimSpace(tw.Command))

	switch device {
	case DeviceTV, DeviceAC:
		if command == "" {
			command = "on"
		}
		if command != "on" && command != "off" {
			return BadRequest("Invalid command for device control, must be 'on' or 'off'")
		}
	case DeviceCurtains:
		if command != "" && command != "open" {
			return BadRequest("Invalid command for curtains control, must be 'open'")
		}
		command = "open"
	default:
		return BadRequest("Unsupported device for trigger_ifttt")
	}

	if err := r.relay.Trigger(ctx, device, command); err != nil {
		return UpstreamError(fmt.Sprintf("Failed to send IFTTT webhook: %v", err))
	}

	return OK(map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("%s command '%s' sent to IFTTT.", strings.ToUpper(device), command),
	})
}

func (r *Router) tvControl(ctx context.Context, tc intent.TvControl) Outcome {
	if strings.TrimSpace(tc.Command) == "" {
		return BadRequest("Missing command for LG TV control")
	}

	if err := r.tv.Send(ctx, tc.Command); err != nil {
		return UpstreamError(fmt.Sprintf("Failed to send LG TV command: %v", err))
	}

	return OK(map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("LG TV command '%s' received (stub implementation).", tc.Command),
	})
}
