package extract

import (
	"fmt"
	"strings"
)

// moodGuidance steers the model toward the household's lighting conventions.
const moodGuidance = `Lighting context guidelines:
- TV: dimmer lights, warm color temperature
- Napping: dim and warm, colors like orange, dark orange, or red
- Sleepy: dim and warm, similar to napping, promotes relaxation
- Concentrating/Studying: brighter, cooler white or soft blue tones
- Chill/Relaxing: soft, warm colors with moderate brightness
- Energizing/Vibrant: bright and saturated colors
- Default: warm light unless specified otherwise
- Avoid cold white lights unless explicitly requested for focus or study
- Adjust brightness and hue to match the mood description

Parsing rules:
If the user wants to turn the TV on or off, set intent: "trigger_ifttt", device: "tv", and command: "on" or "off".
If the user wants to turn the air conditioning on or off, set intent: "trigger_ifttt", device: "ac", and command: "on" or "off".
If the user wants to open the curtains, set intent: "trigger_ifttt", device: "curtains", and command: "open".
If the user wants to control the LG TV directly, set intent: "lg_tv_control" and include a "command" field with the action.
If the user wants to change room lighting, use set_color or trigger_scene.`

// SystemPrompt builds the instruction that constrains the model to the
// known scene and location catalogs.
func SystemPrompt(scenes, locations []string) string {
	var b strings.Builder
	b.WriteString("You are a smart home controller. ")
	b.WriteString("Interpret the user's natural language request and extract structured information. ")
	b.WriteString("Return the output as a JSON object only, with no explanation or extra text. ")
	b.WriteString("Determine if the request matches a known lighting scene OR describes a color. ")
	b.WriteString("If it matches a scene name, set intent to 'trigger_scene' and include 'scene_name' and 'location' fields. ")
	fmt.Fprintf(&b, "scene_name must be one of: %s. ", quoteList(scenes))
	fmt.Fprintf(&b, "location must be one of: %s. ", quoteList(locations))
	b.WriteString("If it describes a color (e.g., 'warm orange', 'deep blue'), set intent to 'set_color' and include ")
	b.WriteString("'location', 'hue' (0-360), 'sat' (0-254), and 'bri' (0-254) fields. ")
	b.WriteString("Always normalize scene names to lowercase.")
	b.WriteString("\n\n")
	b.WriteString(moodGuidance)
	return b.String()
}

// UserPrompt wraps the raw request text.
func UserPrompt(text string) string {
	return "Request: " + text
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}
