package light

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength = 100
	maxSlugLength = 50
	maxRoomLength = 100
	slugPattern   = `^[a-z0-9]+(?:-[a-z0-9]+)*$`

	// Size limits for the state map to prevent memory exhaustion from
	// malformed MQTT publishes.
	maxStateKeys      = 50
	maxStringValueLen = 1024
)

var slugRegex = regexp.MustCompile(slugPattern)

// validColourModes is the pre-computed set for O(1) lookups.
var validColourModes map[ColourMode]struct{}

func init() {
	validColourModes = make(map[ColourMode]struct{}, len(AllColourModes()))
	for _, m := range AllColourModes() {
		validColourModes[m] = struct{}{}
	}
}

// ValidateLight performs comprehensive validation on a light.
// Returns an error describing the first validation failure found.
func ValidateLight(l *Light) error {
	if l == nil {
		return ErrInvalidLight
	}

	if err := ValidateName(l.Name); err != nil {
		return err
	}

	// Validate slug if provided (empty slug will be generated)
	if l.Slug != "" {
		if err := ValidateSlug(l.Slug); err != nil {
			return err
		}
	}

	if l.Room != nil && len(*l.Room) > maxRoomLength {
		return fmt.Errorf("%w: room exceeds %d characters", ErrInvalidLight, maxRoomLength)
	}

	for _, mode := range l.ColourModes {
		if _, ok := validColourModes[mode]; !ok {
			return fmt.Errorf("%w: %q", ErrInvalidColourMode, mode)
		}
	}

	if len(l.State) > maxStateKeys {
		return fmt.Errorf("%w: state exceeds max keys (%d)", ErrInvalidLight, maxStateKeys)
	}
	for k, v := range l.State {
		if len(k) > maxStringValueLen {
			return fmt.Errorf("%w: state key too long", ErrInvalidLight)
		}
		if s, ok := v.(string); ok && len(s) > maxStringValueLen {
			return fmt.Errorf("%w: state value too long", ErrInvalidLight)
		}
	}

	return nil
}

// ValidateName checks if a light name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateSlug checks if a slug format is valid.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: slug cannot be empty", ErrInvalidSlug)
	}
	if len(slug) > maxSlugLength {
		return fmt.Errorf("%w: slug exceeds %d characters", ErrInvalidSlug, maxSlugLength)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("%w: slug must be lowercase alphanumeric with hyphens", ErrInvalidSlug)
	}
	return nil
}

// GenerateSlug creates a URL-safe slug from a name.
func GenerateSlug(name string) string {
	// Convert to lowercase
	slug := strings.ToLower(name)

	// Replace spaces and underscores with hyphens
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	// Remove any characters that aren't alphanumeric or hyphens
	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	slug = result.String()

	// Remove leading/trailing hyphens and collapse multiple hyphens
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	// Truncate if too long
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
		// Don't end with a hyphen
		slug = strings.TrimRight(slug, "-")
	}

	return slug
}

// GenerateID creates a new UUID for a light.
func GenerateID() string {
	return uuid.New().String()
}
