package palette

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/chroma-core/internal/colour"
)

// mockRepository is an in-memory implementation of Repository for testing.
type mockRepository struct {
	palettes map[string]*Palette
	mu       sync.RWMutex
}

func newMockRepository() *mockRepository {
	return &mockRepository{palettes: make(map[string]*Palette)}
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*Palette, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.palettes[id]
	if !ok {
		return nil, ErrPaletteNotFound
	}
	return p.DeepCopy(), nil
}

func (m *mockRepository) List(_ context.Context) ([]Palette, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	palettes := make([]Palette, 0, len(m.palettes))
	for _, p := range m.palettes {
		palettes = append(palettes, *p.DeepCopy())
	}
	return palettes, nil
}

func (m *mockRepository) Create(_ context.Context, p *Palette) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.palettes[p.ID]; ok {
		return ErrPaletteExists
	}
	// Check slug uniqueness
	for _, existing := range m.palettes {
		if existing.Slug == p.Slug {
			return ErrPaletteExists
		}
	}
	m.palettes[p.ID] = p.DeepCopy()
	return nil
}

func (m *mockRepository) Update(_ context.Context, p *Palette) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.palettes[p.ID]; !ok {
		return ErrPaletteNotFound
	}
	m.palettes[p.ID] = p.DeepCopy()
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.palettes[id]; !ok {
		return ErrPaletteNotFound
	}
	delete(m.palettes, id)
	return nil
}

// testPalette builds a palette with the given ID and colours.
func testPalette(id string, colours ...colour.Colour) *Palette {
	if len(colours) == 0 {
		colours = []colour.Colour{{R: 255}, {G: 255}}
	}
	return &Palette{
		ID:      id,
		Name:    "Palette " + id,
		Slug:    "palette-" + id,
		Colours: colours,
	}
}

// setupRegistry creates a registry backed by a mock repository with the
// given palettes pre-loaded and cached.
func setupRegistry(t *testing.T, palettes ...*Palette) (*Registry, *mockRepository) {
	t.Helper()

	repo := newMockRepository()
	for _, p := range palettes {
		repo.palettes[p.ID] = p.DeepCopy()
	}
	registry := NewRegistry(repo)
	if err := registry.RefreshCache(context.Background()); err != nil {
		t.Fatalf("RefreshCache() error: %v", err)
	}
	return registry, repo
}

func TestRegistryGetPalette(t *testing.T) {
	registry, _ := setupRegistry(t, testPalette("sunset"))
	ctx := context.Background()

	p, err := registry.GetPalette(ctx, "sunset")
	if err != nil {
		t.Fatalf("GetPalette() error: %v", err)
	}
	if p.Name != "Palette sunset" {
		t.Errorf("Name = %q, want %q", p.Name, "Palette sunset")
	}

	if _, err := registry.GetPalette(ctx, "aurora"); !errors.Is(err, ErrPaletteNotFound) {
		t.Errorf("GetPalette(unknown) = %v, want ErrPaletteNotFound", err)
	}
}

func TestRegistryDeepCopyIsolation(t *testing.T) {
	registry, _ := setupRegistry(t, testPalette("sunset", colour.Colour{R: 255}, colour.Colour{B: 255}))
	ctx := context.Background()

	first, err := registry.GetPalette(ctx, "sunset")
	if err != nil {
		t.Fatalf("GetPalette() error: %v", err)
	}

	// Mutating the returned copy must not leak into the cache.
	first.Name = "mutated"
	first.Colours[0] = colour.Colour{G: 255}

	second, err := registry.GetPalette(ctx, "sunset")
	if err != nil {
		t.Fatalf("GetPalette() error: %v", err)
	}
	if second.Name != "Palette sunset" {
		t.Errorf("cached Name = %q, want %q", second.Name, "Palette sunset")
	}
	if second.Colours[0] != (colour.Colour{R: 255}) {
		t.Errorf("cached Colours[0] = %v, want %v", second.Colours[0], colour.Colour{R: 255})
	}
}

func TestRegistryCreatePalette(t *testing.T) {
	registry, repo := setupRegistry(t)
	ctx := context.Background()

	p := &Palette{Name: "Warm Sunset", Colours: []colour.Colour{{R: 255, G: 96}}}
	if err := registry.CreatePalette(ctx, p); err != nil {
		t.Fatalf("CreatePalette() error: %v", err)
	}

	if p.ID == "" {
		t.Error("CreatePalette() did not generate an ID")
	}
	if p.Slug != "warm-sunset" {
		t.Errorf("Slug = %q, want %q", p.Slug, "warm-sunset")
	}

	repo.mu.RLock()
	_, persisted := repo.palettes[p.ID]
	repo.mu.RUnlock()
	if !persisted {
		t.Error("CreatePalette() did not persist to repository")
	}

	t.Run("empty colour list rejected", func(t *testing.T) {
		err := registry.CreatePalette(ctx, &Palette{Name: "Empty"})
		if !errors.Is(err, ErrInvalidColours) {
			t.Errorf("CreatePalette(no colours) = %v, want ErrInvalidColours", err)
		}
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		dup := &Palette{Name: "Warm Sunset", Colours: []colour.Colour{{B: 255}}}
		err := registry.CreatePalette(ctx, dup)
		if !errors.Is(err, ErrPaletteExists) {
			t.Errorf("CreatePalette(duplicate slug) = %v, want ErrPaletteExists", err)
		}
	})
}

func TestRegistryGetPaletteBySlug(t *testing.T) {
	registry, _ := setupRegistry(t, testPalette("sunset"))

	p, err := registry.GetPaletteBySlug(context.Background(), "palette-sunset")
	if err != nil {
		t.Fatalf("GetPaletteBySlug() error: %v", err)
	}
	if p.ID != "sunset" {
		t.Errorf("ID = %q, want %q", p.ID, "sunset")
	}

	if _, err := registry.GetPaletteBySlug(context.Background(), "nope"); !errors.Is(err, ErrPaletteNotFound) {
		t.Errorf("GetPaletteBySlug(unknown) = %v, want ErrPaletteNotFound", err)
	}
}

func TestRegistryListPalettesSorted(t *testing.T) {
	a := testPalette("a")
	a.Name = "Zeta"
	a.SortOrder = 1
	b := testPalette("b")
	b.Name = "Alpha"
	b.SortOrder = 2
	c := testPalette("c")
	c.Name = "Beta"
	c.SortOrder = 1

	registry, _ := setupRegistry(t, a, b, c)

	palettes, err := registry.ListPalettes(context.Background())
	if err != nil {
		t.Fatalf("ListPalettes() error: %v", err)
	}

	// sort_order ascending, name breaking ties
	want := []string{"Beta", "Zeta", "Alpha"}
	if len(palettes) != len(want) {
		t.Fatalf("ListPalettes() returned %d palettes, want %d", len(palettes), len(want))
	}
	for i, name := range want {
		if palettes[i].Name != name {
			t.Errorf("palettes[%d].Name = %q, want %q", i, palettes[i].Name, name)
		}
	}
}

func TestRegistryDeletePalette(t *testing.T) {
	registry, _ := setupRegistry(t, testPalette("sunset"))
	ctx := context.Background()

	if err := registry.DeletePalette(ctx, "sunset"); err != nil {
		t.Fatalf("DeletePalette() error: %v", err)
	}
	if _, err := registry.GetPalette(ctx, "sunset"); !errors.Is(err, ErrPaletteNotFound) {
		t.Errorf("GetPalette(deleted) = %v, want ErrPaletteNotFound", err)
	}
	if registry.GetPaletteCount() != 0 {
		t.Errorf("GetPaletteCount() = %d, want 0", registry.GetPaletteCount())
	}

	if err := registry.DeletePalette(ctx, "sunset"); !errors.Is(err, ErrPaletteNotFound) {
		t.Errorf("DeletePalette(missing) = %v, want ErrPaletteNotFound", err)
	}
}
