package hue

// GroupedLightUpdate is the PUT body for resource/grouped_light/{id}.
type GroupedLightUpdate struct {
	On      On      `json:"on"`
	Dimming Dimming `json:"dimming"`
	Color   Color   `json:"color"`
}

type On struct {
	On bool `json:"on"`
}

type Dimming struct {
	Brightness float64 `json:"brightness"`
}

type Color struct {
	XY XY `json:"xy"`
}

type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SceneRecall is the PUT body for resource/scene/{id}.
type SceneRecall struct {
	Recall Recall `json:"recall"`
}

type Recall struct {
	Action string `json:"action"`
}

// ResourceRef points at another resource.
type ResourceRef struct {
	RID   string `json:"rid"`
	RType string `json:"rtype"`
}

// Scene represents a Hue scene (V2 API / CLIP)
type Scene struct {
	ID       string `json:"id"`
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Group ResourceRef `json:"group"`
}

// Room represents a Hue room (V2 API / CLIP)
type Room struct {
	ID       string `json:"id"`
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Services []ResourceRef `json:"services"`
}

// GroupedLightID returns the room's grouped_light service id, if any.
func (r Room) GroupedLightID() string {
	for _, s := range r.Services {
		if s.RType == "grouped_light" {
			return s.RID
		}
	}
	return ""
}
