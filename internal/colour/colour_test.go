package colour

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Colour
	}{
		{"lowercase with hash", "#ff8000", Colour{R: 255, G: 128, B: 0}},
		{"uppercase without hash", "FF8000", Colour{R: 255, G: 128, B: 0}},
		{"black", "#000000", Colour{}},
		{"white", "#ffffff", Colour{R: 255, G: 255, B: 255}},
		{"surrounding whitespace", "  #336699  ", Colour{R: 0x33, G: 0x66, B: 0x99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if err != nil {
				t.Fatalf("ParseHex(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseHexInvalid(t *testing.T) {
	inputs := []string{"", "#fff", "#ffff00cc", "#gggggg", "not a colour"}

	for _, input := range inputs {
		if _, err := ParseHex(input); err == nil {
			t.Errorf("ParseHex(%q) expected error, got nil", input)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := Colour{R: 18, G: 52, B: 86}
	if got := c.Hex(); got != "#123456" {
		t.Errorf("Hex() = %q, want %q", got, "#123456")
	}

	parsed, err := ParseHex(c.Hex())
	if err != nil {
		t.Fatalf("ParseHex(Hex()) error: %v", err)
	}
	if parsed != c {
		t.Errorf("round trip = %v, want %v", parsed, c)
	}
}

func TestColourJSON(t *testing.T) {
	data, err := json.Marshal([]Colour{{R: 255}, {G: 255}})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `["#ff0000","#00ff00"]` {
		t.Errorf("Marshal = %s, want [\"#ff0000\",\"#00ff00\"]", data)
	}

	var palette []Colour
	if err := json.Unmarshal([]byte(`["#0000ff","#808080"]`), &palette); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(palette) != 2 || palette[0] != (Colour{B: 255}) {
		t.Errorf("Unmarshal = %v, want [#0000ff #808080]", palette)
	}

	if err := json.Unmarshal([]byte(`"#zzz"`), &palette); err == nil {
		t.Error("Unmarshal of invalid hex expected error, got nil")
	}
}

func TestHS(t *testing.T) {
	tests := []struct {
		name    string
		colour  Colour
		wantHue float64
		wantSat float64
	}{
		{"red", Colour{R: 255}, 0, 100},
		{"green", Colour{G: 255}, 120, 100},
		{"blue", Colour{B: 255}, 240, 100},
		{"orange", Colour{R: 255, G: 128}, 30.1, 100},
		{"mid grey", Colour{R: 128, G: 128, B: 128}, 0, 0},
		{"white", Colour{R: 255, G: 255, B: 255}, 0, 0},
		{"black", Colour{}, 0, 0},
	}

	const tolerance = 0.5

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hue, sat := tt.colour.HS()
			if math.Abs(hue-tt.wantHue) > tolerance {
				t.Errorf("HS() hue = %.2f, want %.2f", hue, tt.wantHue)
			}
			if math.Abs(sat-tt.wantSat) > tolerance {
				t.Errorf("HS() sat = %.2f, want %.2f", sat, tt.wantSat)
			}
		})
	}
}
