package light

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateLight(t *testing.T) {
	room := "Kitchen"

	tests := []struct {
		name    string
		light   *Light
		wantErr error
	}{
		{"valid", &Light{Name: "Ceiling", Slug: "ceiling", Room: &room, ColourModes: []ColourMode{ModeRGB}}, nil},
		{"nil light", nil, ErrInvalidLight},
		{"empty name", &Light{Name: "  "}, ErrInvalidName},
		{"long name", &Light{Name: strings.Repeat("x", 101)}, ErrInvalidName},
		{"bad slug", &Light{Name: "Ceiling", Slug: "Not A Slug"}, ErrInvalidSlug},
		{"unknown mode", &Light{Name: "Ceiling", ColourModes: []ColourMode{"plaid"}}, ErrInvalidColourMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLight(tt.light)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateLight() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateLight() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Kitchen Ceiling", "kitchen-ceiling"},
		{"Hall_Lamp 2", "hall-lamp-2"},
		{"--Weird  Name!--", "weird-name"},
		{strings.Repeat("long name ", 10), "long-name-long-name-long-name-long-name-long-name"},
	}

	for _, tt := range tests {
		if got := GenerateSlug(tt.input); got != tt.want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSupportsColour(t *testing.T) {
	tests := []struct {
		name  string
		modes []ColourMode
		want  bool
	}{
		{"rgb", []ColourMode{ModeRGB}, true},
		{"hs only", []ColourMode{ModeHS}, true},
		{"mixed with temp", []ColourMode{ModeColourTemp, ModeXY}, true},
		{"temp only", []ColourMode{ModeColourTemp}, false},
		{"onoff only", []ColourMode{ModeOnOff}, false},
		{"no declared modes", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Light{Name: "x", ColourModes: tt.modes}
			if got := l.SupportsColour(); got != tt.want {
				t.Errorf("SupportsColour() = %v, want %v", got, tt.want)
			}
		})
	}
}
