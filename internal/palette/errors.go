package palette

import "errors"

// Domain errors for the palette package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, palette.ErrPaletteNotFound) {
//	    // handle not found case
//	}
var (
	// ErrPaletteNotFound is returned when a palette ID or slug does not exist.
	ErrPaletteNotFound = errors.New("palette: not found")

	// ErrPaletteExists is returned when creating a palette with an ID or slug that already exists.
	ErrPaletteExists = errors.New("palette: already exists")

	// ErrInvalidPalette is returned when palette validation fails.
	ErrInvalidPalette = errors.New("palette: invalid")

	// ErrInvalidName is returned when a palette name is empty or too long.
	ErrInvalidName = errors.New("palette: invalid name")

	// ErrInvalidSlug is returned when a slug format is invalid.
	ErrInvalidSlug = errors.New("palette: invalid slug")

	// ErrInvalidColours is returned when the colour list is empty or too long.
	ErrInvalidColours = errors.New("palette: invalid colours")

	// ErrNoTargets is returned when an apply operation receives no lights.
	ErrNoTargets = errors.New("palette: no targets")
)
