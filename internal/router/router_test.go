package router

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"

	"github.com/dokzlo13/lightcmd/internal/catalog"
	"github.com/dokzlo13/lightcmd/internal/hue"
	"github.com/dokzlo13/lightcmd/internal/intent"
)

type fakeLights struct {
	updates map[string]hue.GroupedLightUpdate
	scenes  []string
	err     error
}

func (f *fakeLights) SetGroupedLight(_ context.Context, groupID string, update hue.GroupedLightUpdate) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.updates == nil {
		f.updates = make(map[string]hue.GroupedLightUpdate)
	}
	f.updates[groupID] = update
	return map[string]any{"data": []any{map[string]any{"rid": groupID}}}, nil
}

func (f *fakeLights) RecallScene(_ context.Context, sceneID string) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.scenes = append(f.scenes, sceneID)
	return map[string]any{"data": []any{map[string]any{"rid": sceneID}}}, nil
}

type relayCall struct{ device, command string }

type fakeRelay struct {
	calls []relayCall
	err   error
}

func (f *fakeRelay) Trigger(_ context.Context, device, command string) error {
	f.calls = append(f.calls, relayCall{device, command})
	return f.err
}

type fakeTV struct{ commands []string }

func (f *fakeTV) Send(_ context.Context, command string) error {
	f.commands = append(f.commands, command)
	return nil
}

func testCatalog() *catalog.Catalog {
	return catalog.New(catalog.File{
		DefaultLocation: "living_room",
		Locations: []catalog.Entry{
			{Name: "living_room", ID: "group-living"},
			{Name: "bedroom", ID: "group-bedroom"},
		},
		Scenes: []catalog.Entry{
			{Name: "sunrise", ID: "scene-sunrise"},
			{Name: "read", ID: "scene-read"},
		},
	})
}

type fixture struct {
	router *Router
	lights *fakeLights
	relay  *fakeRelay
	tv     *fakeTV
}

func newFixture() *fixture {
	f := &fixture{lights: &fakeLights{}, relay: &fakeRelay{}, tv: &fakeTV{}}
	f.router = New(testCatalog(), f.lights, f.relay, f.tv, nil)
	return f
}

func intPtr(v int) *int { return &v }

func TestSetColorExplicit(t *testing.T) {
	f := newFixture()

	out := f.router.Route(context.Background(), intent.SetColor{
		Location: "bedroom",
		Hue:      intPtr(240),
		Sat:      intPtr(50),
		Bri:      intPtr(200),
	})
	if out.Status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", out.Status, out.Body)
	}
	if out.Body["status"] != "Hue command sent" {
		t.Errorf("status message = %v", out.Body["status"])
	}

	update, ok := f.lights.updates["group-bedroom"]
	if !ok {
		t.Fatalf("no update sent to group-bedroom: %v", f.lights.updates)
	}
	if !update.On.On {
		t.Error("light not turned on")
	}
	if math.Abs(update.Dimming.Brightness-78.74) > 0.01 {
		t.Errorf("brightness = %v, want ~78.74", update.Dimming.Brightness)
	}
	// 240 degrees at full saturation is pure blue.
	if update.Color.XY.X != 0.15 || update.Color.XY.Y != 0.06 {
		t.Errorf("xy = %+v, want {0.15 0.06}", update.Color.XY)
	}
}

func TestResolveColorForcesSaturation(t *testing.T) {
	spec, ok := ResolveColor(intent.SetColor{Hue: intPtr(240), Sat: intPtr(50), Bri: intPtr(200)})
	if !ok {
		t.Fatal("expected explicit color to resolve")
	}
	if spec.Sat != 254 {
		t.Errorf("sat = %d, want 254", spec.Sat)
	}
	if spec.Hue != 43690 {
		t.Errorf("hue = %d, want 43690", spec.Hue)
	}

	spec, ok = ResolveColor(intent.SetColor{ColorDescription: "red", MoodDescription: "calm"})
	if !ok {
		t.Fatal("expected descriptive color to resolve")
	}
	if spec.Sat != 254 {
		t.Errorf("descriptive sat = %d, want 254", spec.Sat)
	}

	if _, ok := ResolveColor(intent.SetColor{Hue: intPtr(240)}); ok {
		t.Error("partial explicit color without description should not resolve")
	}
}

func TestSetColorValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      intent.SetColor
		status  int
		message string
	}{
		{
			name:    "missing location",
			in:      intent.SetColor{ColorDescription: "blue"},
			status:  http.StatusBadRequest,
			message: "Missing required parameters: location and color_description or hue/sat/bri",
		},
		{
			name:    "missing color",
			in:      intent.SetColor{Location: "bedroom"},
			status:  http.StatusBadRequest,
			message: "Missing required parameters: location and color_description or hue/sat/bri",
		},
		{
			name:    "unknown location",
			in:      intent.SetColor{Location: "garage", ColorDescription: "blue"},
			status:  http.StatusBadRequest,
			message: "Invalid location",
		},
		{
			name:   "descriptive",
			in:     intent.SetColor{Location: "Living Room", ColorDescription: "warm white", BrightnessDescription: "dim"},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := newFixture().router.Route(context.Background(), tt.in)
			if out.Status != tt.status {
				t.Fatalf("status = %d, want %d (%v)", out.Status, tt.status, out.Body)
			}
			if tt.message != "" && out.Error() != tt.message {
				t.Errorf("error = %q, want %q", out.Error(), tt.message)
			}
		})
	}
}

func TestSetColorUpstreamFailure(t *testing.T) {
	f := newFixture()
	f.lights.err = errors.New("connection refused")

	out := f.router.Route(context.Background(), intent.SetColor{Location: "bedroom", ColorDescription: "blue"})
	if out.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", out.Status)
	}
	if out.Error() != "Failed to communicate with Hue Bridge: connection refused" {
		t.Errorf("error = %q", out.Error())
	}
}

func TestTriggerScene(t *testing.T) {
	tests := []struct {
		name    string
		in      intent.TriggerScene
		status  int
		message string
		scene   string
	}{
		{name: "missing name", in: intent.TriggerScene{}, status: http.StatusBadRequest, message: "Missing scene_name"},
		{name: "exact", in: intent.TriggerScene{SceneName: "Sunrise"}, status: http.StatusOK, scene: "scene-sunrise"},
		{name: "fuzzy", in: intent.TriggerScene{SceneName: "sunris", Location: "bedroom"}, status: http.StatusOK, scene: "scene-sunrise"},
		{name: "unknown", in: intent.TriggerScene{SceneName: "zzzz"}, status: http.StatusBadRequest, message: "Unknown scene: zzzz"},
		{name: "invalid location", in: intent.TriggerScene{SceneName: "read", Location: "attic"}, status: http.StatusBadRequest, message: "Invalid location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			out := f.router.Route(context.Background(), tt.in)
			if out.Status != tt.status {
				t.Fatalf("status = %d, want %d (%v)", out.Status, tt.status, out.Body)
			}
			if tt.message != "" && out.Error() != tt.message {
				t.Errorf("error = %q, want %q", out.Error(), tt.message)
			}
			if tt.scene != "" {
				if len(f.lights.scenes) != 1 || f.lights.scenes[0] != tt.scene {
					t.Errorf("recalled = %v, want [%s]", f.lights.scenes, tt.scene)
				}
				if out.Body["status"] != "Scene activated" {
					t.Errorf("status message = %v", out.Body["status"])
				}
			}
		})
	}
}

func TestTriggerWebhook(t *testing.T) {
	tests := []struct {
		name    string
		in      intent.TriggerWebhook
		status  int
		message string
		sent    *relayCall
	}{
		{name: "curtains default", in: intent.TriggerWebhook{Device: "curtains"}, status: http.StatusOK, sent: &relayCall{"curtains", "open"}},
		{name: "curtains open", in: intent.TriggerWebhook{Device: "Curtains", Command: "OPEN"}, status: http.StatusOK, sent: &relayCall{"curtains", "open"}},
		{name: "curtains close", in: intent.TriggerWebhook{Device: "curtains", Command: "close"}, status: http.StatusBadRequest, message: "Invalid command for curtains control, must be 'open'"},
		{name: "tv off", in: intent.TriggerWebhook{Device: "tv", Command: "off"}, status: http.StatusOK, sent: &relayCall{"tv", "off"}},
		{name: "ac default", in: intent.TriggerWebhook{Device: "ac"}, status: http.StatusOK, sent: &relayCall{"ac", "on"}},
		{name: "ac bad command", in: intent.TriggerWebhook{Device: "ac", Command: "cooler"}, status: http.StatusBadRequest, message: "Invalid command for device control, must be 'on' or 'off'"},
		{name: "unsupported", in: intent.TriggerWebhook{Device: "toaster", Command: "on"}, status: http.StatusBadRequest, message: "Unsupported device for trigger_ifttt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			out := f.router.Route(context.Background(), tt.in)
			if out.Status != tt.status {
				t.Fatalf("status = %d, want %d (%v)", out.Status, tt.status, out.Body)
			}
			if tt.message != "" && out.Error() != tt.message {
				t.Errorf("error = %q, want %q", out.Error(), tt.message)
			}
			if tt.sent == nil {
				if len(f.relay.calls) != 0 {
					t.Errorf("unexpected relay calls: %v", f.relay.calls)
				}
				return
			}
			if len(f.relay.calls) != 1 || f.relay.calls[0] != *tt.sent {
				t.Errorf("relay calls = %v, want [%v]", f.relay.calls, *tt.sent)
			}
		})
	}
}

func TestTriggerWebhookMessage(t *testing.T) {
	out := newFixture().router.Route(context.Background(), intent.TriggerWebhook{Device: "curtains"})
	if out.Body["message"] != "CURTAINS command 'open' sent to IFTTT." {
		t.Errorf("message = %v", out.Body["message"])
	}

	f := newFixture()
	f.relay.err = errors.New("timeout")
	out = f.router.Route(context.Background(), intent.TriggerWebhook{Device: "tv", Command: "on"})
	if out.Status != http.StatusInternalServerError || out.Error() != "Failed to send IFTTT webhook: timeout" {
		t.Errorf("outcome = %d %v", out.Status, out.Body)
	}
}

func TestTvControl(t *testing.T) {
	f := newFixture()

	out := f.router.Route(context.Background(), intent.TvControl{})
	if out.Status != http.StatusBadRequest || out.Error() != "Missing command for LG TV control" {
		t.Errorf("empty command outcome = %d %v", out.Status, out.Body)
	}

	out = f.router.Route(context.Background(), intent.TvControl{Command: "volume_up"})
	if out.Status != http.StatusOK {
		t.Fatalf("status = %d", out.Status)
	}
	if out.Body["message"] != "LG TV command 'volume_up' received (stub implementation)." {
		t.Errorf("message = %v", out.Body["message"])
	}
	if len(f.tv.commands) != 1 || f.tv.commands[0] != "volume_up" {
		t.Errorf("commands = %v", f.tv.commands)
	}
}

func TestUnknownIntent(t *testing.T) {
	out := newFixture().router.Route(context.Background(), nil)
	if out.Status != http.StatusBadRequest || out.Error() != "Unknown intent" {
		t.Errorf("outcome = %d %v", out.Status, out.Body)
	}
}
