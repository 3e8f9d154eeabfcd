package light

import "time"

// Light represents a colour-capable luminaire addressable over MQTT.
// This matches the database schema in migrations/20260815_100000_initial_schema.up.sql.
type Light struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// Location (free-form room label, empty for unassigned lights)
	Room *string `json:"room,omitempty"`

	// ColourModes lists the colour representations the light accepts.
	// An empty list means the modes are unknown; such lights are assumed
	// colour-capable rather than rejected.
	ColourModes []ColourMode `json:"colour_modes,omitempty"`

	// Current state (runtime overlay fed by MQTT state topics)
	State          State      `json:"state"`
	StateUpdatedAt *time.Time `json:"state_updated_at,omitempty"`

	// Metadata
	Manufacturer *string `json:"manufacturer,omitempty"`
	Model        *string `json:"model,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeepCopy creates a complete independent copy of the Light.
// All map and slice fields are cloned so modifications to the copy
// do not affect the original. This is essential for cache isolation.
func (l *Light) DeepCopy() *Light {
	if l == nil {
		return nil
	}

	cpy := *l // Shallow copy of value fields

	cpy.State = deepCopyMap(l.State)

	if l.ColourModes != nil {
		cpy.ColourModes = make([]ColourMode, len(l.ColourModes))
		copy(cpy.ColourModes, l.ColourModes)
	}

	// Pointer fields (*string, *time.Time) don't need deep copy
	// because strings and time.Time are immutable in Go

	return &cpy
}

// deepCopyMap creates a deep copy of a map[string]any.
// Nested maps and slices are recursively copied.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, int, float64, etc.) are safe to copy by value
		return v
	}
}

// State holds the current light state as a JSON map, merged from the
// light's MQTT state topic.
//
// Well-known keys:
//   - "available":  bool, false while the light is offline
//   - "colour":     string, hex of the last applied colour
//   - "brightness": number, device-scale 0-255
type State map[string]any

// Available reports whether the light is reachable. A light that has never
// published state is treated as available; only an explicit
// "available": false marks it offline.
func (s State) Available() bool {
	v, ok := s["available"]
	if !ok {
		return true
	}
	available, ok := v.(bool)
	if !ok {
		return true
	}
	return available
}

// ColourMode identifies a colour representation a light accepts.
type ColourMode string

// ColourMode constants.
const (
	ModeRGB        ColourMode = "rgb"
	ModeRGBW       ColourMode = "rgbw"
	ModeRGBWW      ColourMode = "rgbww"
	ModeHS         ColourMode = "hs"
	ModeXY         ColourMode = "xy"
	ModeColourTemp ColourMode = "colour_temp"
	ModeBrightness ColourMode = "brightness"
	ModeOnOff      ColourMode = "onoff"
)

// AllColourModes returns all valid colour mode values.
func AllColourModes() []ColourMode {
	return []ColourMode{
		ModeRGB, ModeRGBW, ModeRGBWW, ModeHS, ModeXY,
		ModeColourTemp, ModeBrightness, ModeOnOff,
	}
}

// colourCapableModes are the modes that can render an arbitrary RGB colour.
// Temperature-only, brightness-only, and on/off lights cannot.
var colourCapableModes = map[ColourMode]struct{}{
	ModeRGB:   {},
	ModeRGBW:  {},
	ModeRGBWW: {},
	ModeHS:    {},
	ModeXY:    {},
}

// SupportsColour reports whether the light can render arbitrary colours.
// Lights with no declared modes are assumed capable.
func (l *Light) SupportsColour() bool {
	if len(l.ColourModes) == 0 {
		return true
	}
	for _, mode := range l.ColourModes {
		if _, ok := colourCapableModes[mode]; ok {
			return true
		}
	}
	return false
}
