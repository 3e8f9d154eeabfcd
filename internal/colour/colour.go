// Package colour provides the RGB colour type shared by the palette store,
// gradient builder, and light applier, plus the conversions the rest of the
// system needs: hex string parsing/rendering for storage and the API, and
// hue/saturation conversion for lights that take HS commands.
//
// Everything in this package is pure computation. No I/O, no state.
package colour

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Colour is an RGB colour with 8-bit channels. The zero value is black.
//
// Colours marshal to and from JSON as hex strings ("#rrggbb"), which is the
// representation used by the REST API, the palette store, and MQTT command
// payloads.
type Colour struct {
	R uint8
	G uint8
	B uint8
}

// ParseHex parses a hex colour string. Accepts "#rrggbb" or "rrggbb",
// case insensitive. Anything else is an error.
func ParseHex(s string) (Colour, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(trimmed) != 6 {
		return Colour{}, fmt.Errorf("parsing hex colour %q: want 6 hex digits", s)
	}

	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return Colour{}, fmt.Errorf("parsing hex colour %q: %w", s, err)
	}

	return Colour{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// Hex renders the colour as "#rrggbb".
func (c Colour) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c Colour) String() string {
	return c.Hex()
}

// MarshalJSON encodes the colour as its hex string.
func (c Colour) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

// UnmarshalJSON decodes a hex string into the colour.
func (c *Colour) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshalling colour: %w", err)
	}

	parsed, err := ParseHex(s)
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}

// HS converts the colour to hue and saturation for lights that take
// hue/sat commands rather than RGB. Hue is in degrees [0, 360), saturation
// in percent [0, 100]. The value component of HSV is dropped; brightness
// travels separately on the command.
func (c Colour) HS() (hue, sat float64) {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	// Achromatic: greys (black and white included) have no hue.
	if delta == 0 {
		return 0, 0
	}

	switch max {
	case r:
		hue = 60 * math.Mod((g-b)/delta, 6)
	case g:
		hue = 60 * ((b-r)/delta + 2)
	default:
		hue = 60 * ((r-g)/delta + 4)
	}
	if hue < 0 {
		hue += 360
	}

	sat = delta / max * 100
	return hue, sat
}
