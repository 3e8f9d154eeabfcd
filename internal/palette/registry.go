package palette

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Logger defines the logging interface used by this package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry provides palette management with caching and thread safety.
// It wraps a Repository and adds an in-memory cache for fast lookups.
//
// The cache is populated on startup via RefreshCache() and kept in sync
// by cache-invalidating CRUD operations. Palette reads sit on the apply
// path, so lookups never touch the database once the cache is warm.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Palette // Cached palettes by ID
	cacheMu sync.RWMutex        // Protects cache
	logger  Logger
}

// NewRegistry creates a new palette registry.
// The repository is used for persistence; the registry adds caching.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Palette),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all palettes from the repository into the cache.
// This should be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	palettes, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading palettes: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	// Clear and rebuild cache with deep copies
	r.cache = make(map[string]*Palette, len(palettes))
	for i := range palettes {
		p := palettes[i]
		r.cache[p.ID] = p.DeepCopy()
	}

	r.logger.Info("palette cache refreshed", "count", len(palettes))
	return nil
}

// GetPalette retrieves a palette by ID.
// Returns ErrPaletteNotFound if the palette does not exist.
// The returned palette is a deep copy; callers can safely modify it.
func (r *Registry) GetPalette(ctx context.Context, id string) (*Palette, error) {
	// Try cache first
	r.cacheMu.RLock()
	cached, ok := r.cache[id]
	r.cacheMu.RUnlock()

	if ok {
		// Return a deep copy to prevent external mutation of cache
		return cached.DeepCopy(), nil
	}

	// Fall back to repository (might be a new palette not yet cached)
	p, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Cache for future lookups (store a deep copy)
	r.cacheMu.Lock()
	r.cache[p.ID] = p.DeepCopy()
	r.cacheMu.Unlock()

	return p, nil
}

// GetPaletteBySlug retrieves a palette by its URL-safe slug.
// The returned palette is a deep copy; callers can safely modify it.
func (r *Registry) GetPaletteBySlug(ctx context.Context, slug string) (*Palette, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	for _, p := range r.cache {
		if p.Slug == slug {
			// Return a deep copy to prevent external mutation of cache
			return p.DeepCopy(), nil
		}
	}
	return nil, ErrPaletteNotFound
}

// ListPalettes retrieves all palettes sorted by sort order, then name.
// The returned palettes are deep copies; callers can safely modify them.
func (r *Registry) ListPalettes(ctx context.Context) ([]Palette, error) {
	r.cacheMu.RLock()

	// Return from cache if populated
	if len(r.cache) > 0 {
		palettes := make([]Palette, 0, len(r.cache))
		for _, p := range r.cache {
			// Deep copy to prevent external mutation of cache
			palettes = append(palettes, *p.DeepCopy())
		}
		r.cacheMu.RUnlock()

		sort.Slice(palettes, func(i, j int) bool {
			if palettes[i].SortOrder != palettes[j].SortOrder {
				return palettes[i].SortOrder < palettes[j].SortOrder
			}
			return palettes[i].Name < palettes[j].Name
		})
		return palettes, nil
	}
	r.cacheMu.RUnlock()

	// Fall back to repository (already ordered by the query)
	return r.repo.List(ctx)
}

// CreatePalette creates a new palette.
// It validates the palette, generates ID and slug if needed, and persists it.
func (r *Registry) CreatePalette(ctx context.Context, p *Palette) error {
	// Generate ID if not provided
	if p.ID == "" {
		p.ID = GenerateID()
	}

	// Generate slug if not provided
	if p.Slug == "" {
		p.Slug = GenerateSlug(p.Name)
	}

	// Validate
	if err := ValidatePalette(p); err != nil {
		return err
	}

	// Persist
	if err := r.repo.Create(ctx, p); err != nil {
		return err
	}

	// Update cache (store a deep copy to prevent external modification)
	r.cacheMu.Lock()
	r.cache[p.ID] = p.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("palette created", "id", p.ID, "name", p.Name, "colours", len(p.Colours))
	return nil
}

// UpdatePalette updates an existing palette.
// It validates the palette and persists the changes.
func (r *Registry) UpdatePalette(ctx context.Context, p *Palette) error {
	// Regenerate slug if name changed and slug wasn't explicitly set
	existing, err := r.GetPalette(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.Name != existing.Name && p.Slug == existing.Slug {
		p.Slug = GenerateSlug(p.Name)
	}

	// Validate
	if err := ValidatePalette(p); err != nil {
		return err
	}

	// Persist
	if err := r.repo.Update(ctx, p); err != nil {
		return err
	}

	// Update cache (store a deep copy to prevent external modification)
	r.cacheMu.Lock()
	r.cache[p.ID] = p.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("palette updated", "id", p.ID, "name", p.Name)
	return nil
}

// DeletePalette removes a palette.
func (r *Registry) DeletePalette(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Update cache
	r.cacheMu.Lock()
	delete(r.cache, id)
	r.cacheMu.Unlock()

	r.logger.Info("palette deleted", "id", id)
	return nil
}

// GetPaletteCount returns the number of cached palettes.
func (r *Registry) GetPaletteCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}
