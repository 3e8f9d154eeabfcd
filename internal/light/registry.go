package light

import (
	"context"
	"fmt"
	"sync"
	"time"
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

// Registry provides light management with caching and thread safety.
// It wraps a Repository and adds an in-memory cache for fast lookups.
//
// The cache is populated on startup via RefreshCache() and kept in sync
// by cache-invalidating CRUD operations. Runtime state updates from MQTT
// flow through SetLightState, which is on the hot path for availability
// checks during animation ticks.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Light // Cached lights by ID
	cacheMu sync.RWMutex      // Protects cache
	logger  Logger
}

// NewRegistry creates a new light registry.
// The repository is used for persistence; the registry adds caching.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Light),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all lights from the repository into the cache.
// This should be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	lights, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading lights: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	// Clear and rebuild cache with deep copies
	r.cache = make(map[string]*Light, len(lights))
	for i := range lights {
		l := lights[i]
		r.cache[l.ID] = l.DeepCopy()
	}

	r.logger.Info("light cache refreshed", "count", len(lights))
	return nil
}

// GetLight retrieves a light by ID.
// Returns ErrLightNotFound if the light does not exist.
// The returned light is a deep copy; callers can safely modify it.
func (r *Registry) GetLight(ctx context.Context, id string) (*Light, error) {
	// Try cache first
	r.cacheMu.RLock()
	cached, ok := r.cache[id]
	r.cacheMu.RUnlock()

	if ok {
		// Return a deep copy to prevent external mutation of cache
		return cached.DeepCopy(), nil
	}

	// Fall back to repository (might be a new light not yet cached)
	l, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Cache for future lookups (store a deep copy)
	r.cacheMu.Lock()
	r.cache[id] = l.DeepCopy()
	r.cacheMu.Unlock()

	return l, nil
}

// GetLightBySlug retrieves a light by its URL-safe slug.
// The returned light is a deep copy; callers can safely modify it.
func (r *Registry) GetLightBySlug(ctx context.Context, slug string) (*Light, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	for _, l := range r.cache {
		if l.Slug == slug {
			// Return a deep copy to prevent external mutation of cache
			return l.DeepCopy(), nil
		}
	}
	return nil, ErrLightNotFound
}

// ListLights retrieves all lights.
// The returned lights are deep copies; callers can safely modify them.
func (r *Registry) ListLights(ctx context.Context) ([]Light, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	// Return from cache if populated
	if len(r.cache) > 0 {
		lights := make([]Light, 0, len(r.cache))
		for _, l := range r.cache {
			// Deep copy to prevent external mutation of cache
			lights = append(lights, *l.DeepCopy())
		}
		return lights, nil
	}

	// Fall back to repository
	return r.repo.List(ctx)
}

// GetLightsByRoom retrieves all lights with a specific room label.
// The returned lights are deep copies; callers can safely modify them.
func (r *Registry) GetLightsByRoom(ctx context.Context, room string) ([]Light, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	// Filter from cache if populated
	if len(r.cache) > 0 {
		var lights []Light
		for _, l := range r.cache {
			if l.Room != nil && *l.Room == room {
				// Deep copy to prevent external mutation of cache
				lights = append(lights, *l.DeepCopy())
			}
		}
		return lights, nil
	}

	return r.repo.ListByRoom(ctx, room)
}

// CreateLight creates a new light.
// It validates the light, generates ID and slug if needed, and persists it.
func (r *Registry) CreateLight(ctx context.Context, l *Light) error {
	// Generate ID if not provided
	if l.ID == "" {
		l.ID = GenerateID()
	}

	// Generate slug if not provided
	if l.Slug == "" {
		l.Slug = GenerateSlug(l.Name)
	}

	// Validate
	if err := ValidateLight(l); err != nil {
		return err
	}

	// Persist
	if err := r.repo.Create(ctx, l); err != nil {
		return err
	}

	// Update cache (store a deep copy to prevent external modification)
	r.cacheMu.Lock()
	r.cache[l.ID] = l.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("light created", "id", l.ID, "name", l.Name)
	return nil
}

// UpdateLight updates an existing light.
// It validates the light and persists the changes.
func (r *Registry) UpdateLight(ctx context.Context, l *Light) error {
	// Regenerate slug if name changed and slug wasn't explicitly set
	existing, err := r.GetLight(ctx, l.ID)
	if err != nil {
		return err
	}
	if l.Name != existing.Name && l.Slug == existing.Slug {
		l.Slug = GenerateSlug(l.Name)
	}

	// Validate
	if err := ValidateLight(l); err != nil {
		return err
	}

	// Persist
	if err := r.repo.Update(ctx, l); err != nil {
		return err
	}

	// Update cache (store a deep copy to prevent external modification)
	r.cacheMu.Lock()
	r.cache[l.ID] = l.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("light updated", "id", l.ID, "name", l.Name)
	return nil
}

// DeleteLight removes a light.
func (r *Registry) DeleteLight(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Update cache
	r.cacheMu.Lock()
	delete(r.cache, id)
	r.cacheMu.Unlock()

	r.logger.Info("light deleted", "id", id)
	return nil
}

// SetLightState merges a state update into a light.
// This is optimised for frequent updates from the MQTT state subscription.
// Keys present in state overwrite stored values; absent keys are kept, so
// partial publishes (availability only, colour only) work.
func (r *Registry) SetLightState(ctx context.Context, id string, state State) error {
	// Build the merged state, starting from the cached light if present.
	r.cacheMu.RLock()
	var merged State
	if cached, ok := r.cache[id]; ok {
		merged = deepCopyMap(cached.State)
	}
	r.cacheMu.RUnlock()

	if merged == nil {
		merged = make(State, len(state))
	}
	for k, v := range deepCopyMap(state) {
		merged[k] = v
	}

	if err := r.repo.UpdateState(ctx, id, merged); err != nil {
		return err
	}

	// Update cache using deep copy to prevent race conditions
	r.cacheMu.Lock()
	if cached, ok := r.cache[id]; ok {
		// Create a deep copy with the merged state (atomic replacement)
		updated := cached.DeepCopy()
		updated.State = deepCopyMap(merged)
		now := time.Now().UTC()
		updated.StateUpdatedAt = &now
		r.cache[id] = updated
	}
	r.cacheMu.Unlock()

	r.logger.Debug("light state updated", "id", id)
	return nil
}

// GetLightCount returns the number of cached lights.
func (r *Registry) GetLightCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

// Stats returns registry statistics for monitoring.
type Stats struct {
	TotalLights int
	Available   int
	Unavailable int
}

// GetStats returns current registry statistics.
func (r *Registry) GetStats() Stats {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	stats := Stats{TotalLights: len(r.cache)}
	for _, l := range r.cache {
		if l.State.Available() {
			stats.Available++
		} else {
			stats.Unavailable++
		}
	}
	return stats
}
