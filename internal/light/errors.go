package light

import "errors"

// Domain errors for the light package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, light.ErrLightNotFound) {
//	    // handle not found case
//	}
//
// The four applier errors (not found, unavailable, no colour support,
// service call failed) are all recoverable: they surface as per-target
// results and never terminate an animation loop.
var (
	// ErrLightNotFound is returned when a light ID does not exist.
	ErrLightNotFound = errors.New("light: not found")

	// ErrLightExists is returned when creating a light with an ID or slug that already exists.
	ErrLightExists = errors.New("light: already exists")

	// ErrLightUnavailable is returned when a light is known but currently offline.
	ErrLightUnavailable = errors.New("light: unavailable")

	// ErrNoColourSupport is returned when a light has no colour-capable mode.
	ErrNoColourSupport = errors.New("light: no colour support")

	// ErrServiceCallFailed is returned when the command publish to a light fails.
	ErrServiceCallFailed = errors.New("light: service call failed")

	// ErrInvalidLight is returned when light validation fails.
	ErrInvalidLight = errors.New("light: invalid")

	// ErrInvalidName is returned when a light name is empty or too long.
	ErrInvalidName = errors.New("light: invalid name")

	// ErrInvalidSlug is returned when a slug format is invalid.
	ErrInvalidSlug = errors.New("light: invalid slug")

	// ErrInvalidColourMode is returned when a colour mode is not recognised.
	ErrInvalidColourMode = errors.New("light: invalid colour mode")
)
