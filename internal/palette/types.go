package palette

import (
	"time"

	"github.com/nerrad567/chroma-core/internal/colour"
)

// Palette is a named, ordered set of colours. Palettes are the unit the API
// applies to lights, either statically (one colour per light) or as the
// seed of a gradient animation.
// This matches the database schema in migrations/20260815_100000_initial_schema.up.sql.
type Palette struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// Description is free-form display text, empty when unset.
	Description string `json:"description,omitempty"`

	// Colours is the ordered colour list. Order matters: static applies
	// cycle through it in target order, and gradients interpolate between
	// adjacent entries.
	Colours []colour.Colour `json:"colours"`

	// SortOrder controls list position in the API; lower sorts first.
	SortOrder int `json:"sort_order"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeepCopy creates a complete independent copy of the Palette.
// The colour slice is cloned so modifications to the copy do not affect
// the original. This is essential for cache isolation.
func (p *Palette) DeepCopy() *Palette {
	if p == nil {
		return nil
	}

	cpy := *p // Shallow copy of value fields

	if p.Colours != nil {
		cpy.Colours = make([]colour.Colour, len(p.Colours))
		copy(cpy.Colours, p.Colours)
	}

	return &cpy
}
