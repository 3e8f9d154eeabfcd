package palette

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/chroma-core/internal/colour"
)

func validPalette() *Palette {
	return &Palette{
		Name:    "Ocean",
		Slug:    "ocean",
		Colours: []colour.Colour{{B: 255}, {G: 128, B: 255}},
	}
}

func TestValidatePalette(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Palette)
		wantErr error
	}{
		{"valid", func(*Palette) {}, nil},
		{"nil generated slug ok", func(p *Palette) { p.Slug = "" }, nil},
		{"empty name", func(p *Palette) { p.Name = "" }, ErrInvalidName},
		{"whitespace name", func(p *Palette) { p.Name = "   " }, ErrInvalidName},
		{"name too long", func(p *Palette) { p.Name = strings.Repeat("x", 101) }, ErrInvalidName},
		{"bad slug", func(p *Palette) { p.Slug = "Not A Slug" }, ErrInvalidSlug},
		{"description too long", func(p *Palette) { p.Description = strings.Repeat("x", 501) }, ErrInvalidPalette},
		{"no colours", func(p *Palette) { p.Colours = nil }, ErrInvalidColours},
		{"too many colours", func(p *Palette) { p.Colours = make([]colour.Colour, 17) }, ErrInvalidColours},
		{"single colour ok", func(p *Palette) { p.Colours = p.Colours[:1] }, nil},
		{"sixteen colours ok", func(p *Palette) { p.Colours = make([]colour.Colour, 16) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPalette()
			tt.mutate(p)
			err := ValidatePalette(p)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePalette() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePalette() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Warm Sunset", "warm-sunset"},
		{"neon_nights", "neon-nights"},
		{"  Fire & Ice!  ", "fire-ice"},
		{"already-a-slug", "already-a-slug"},
	}

	for _, tt := range tests {
		if got := GenerateSlug(tt.name); got != tt.want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
