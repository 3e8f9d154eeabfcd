package palette

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength        = 100
	maxSlugLength        = 50
	maxDescriptionLength = 500
	slugPattern          = `^[a-z0-9]+(?:-[a-z0-9]+)*$`

	// MinColours and MaxColours bound the colour list. One colour is a
	// valid (if static) palette; sixteen keeps gradients from ballooning.
	MinColours = 1
	MaxColours = 16
)

var slugRegex = regexp.MustCompile(slugPattern)

// ValidatePalette performs comprehensive validation on a palette.
// Returns an error describing the first validation failure found.
func ValidatePalette(p *Palette) error {
	if p == nil {
		return ErrInvalidPalette
	}

	if err := ValidateName(p.Name); err != nil {
		return err
	}

	// Validate slug if provided (empty slug will be generated)
	if p.Slug != "" {
		if err := ValidateSlug(p.Slug); err != nil {
			return err
		}
	}

	if len(p.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidPalette, maxDescriptionLength)
	}

	if len(p.Colours) < MinColours {
		return fmt.Errorf("%w: at least %d colour required", ErrInvalidColours, MinColours)
	}
	if len(p.Colours) > MaxColours {
		return fmt.Errorf("%w: at most %d colours allowed", ErrInvalidColours, MaxColours)
	}

	return nil
}

// ValidateName checks if a palette name is valid.
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
		slug = strings.TrimRight(slug, "-")
	}

	return slug
}

// GenerateID creates a new UUID for a palette.
func GenerateID() string {
	return uuid.New().String()
}
