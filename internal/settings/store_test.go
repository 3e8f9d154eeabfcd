package settings

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nerrad567/chroma-core/internal/infrastructure/database"
)

func testDefaults() Settings {
	return Settings{
		Brightness:   100,
		Speed:        5,
		StepsBetween: 10,
		GroupMode:    GroupModeSynchronised,
		Transition:   2,
	}
}

// openTestDB creates a throwaway SQLite database with the settings table.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "settings-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	_, err = db.ExecContext(context.Background(), `
		CREATE TABLE settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			source     TEXT NOT NULL DEFAULT 'config',
			updated_at TEXT NOT NULL
		)`)
	if err != nil {
		t.Fatalf("creating settings table: %v", err)
	}
	return db.DB
}

func TestStoreLoadSeedsDefaults(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	if err := store.Load(ctx, testDefaults()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	got := store.Snapshot()
	if got != testDefaults() {
		t.Errorf("Snapshot() = %+v, want defaults %+v", got, testDefaults())
	}

	// First load must leave a fully seeded table behind.
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 5 {
		t.Errorf("settings rows = %d, want 5", count)
	}
}

func TestStoreUpdatePersistsOverrides(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	if err := store.Load(ctx, testDefaults()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	brightness := 50
	mode := GroupModeStaggered
	got, err := store.Update(ctx, Patch{Brightness: &brightness, GroupMode: &mode})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got.Brightness != 50 {
		t.Errorf("Brightness = %d, want 50", got.Brightness)
	}
	if got.GroupMode != GroupModeStaggered {
		t.Errorf("GroupMode = %q, want staggered", got.GroupMode)
	}
	// Untouched fields keep their defaults.
	if got.Speed != 5 {
		t.Errorf("Speed = %d, want 5", got.Speed)
	}

	// A fresh store on the same database must see the overrides.
	reloaded := NewStore(db)
	if err := reloaded.Load(ctx, testDefaults()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if reloaded.Snapshot().Brightness != 50 {
		t.Errorf("reloaded Brightness = %d, want 50", reloaded.Snapshot().Brightness)
	}
}

func TestStoreUpdateValidation(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	if err := store.Load(ctx, testDefaults()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	bad := 0
	if _, err := store.Update(ctx, Patch{Brightness: &bad}); !errors.Is(err, ErrInvalidSetting) {
		t.Errorf("Update(brightness 0) = %v, want ErrInvalidSetting", err)
	}

	badMode := "random"
	if _, err := store.Update(ctx, Patch{GroupMode: &badMode}); !errors.Is(err, ErrInvalidSetting) {
		t.Errorf("Update(bad group mode) = %v, want ErrInvalidSetting", err)
	}

	// Failed updates must not change the snapshot.
	if store.Snapshot() != testDefaults() {
		t.Errorf("Snapshot() = %+v changed by rejected update", store.Snapshot())
	}
}

func TestStoreApplyConfigKeepsOverrides(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	if err := store.Load(ctx, testDefaults()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	speed := 30
	if _, err := store.Update(ctx, Patch{Speed: &speed}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	// Hot reload with new config defaults.
	reloadedDefaults := testDefaults()
	reloadedDefaults.Speed = 3
	reloadedDefaults.Brightness = 80
	if err := store.ApplyConfig(ctx, reloadedDefaults); err != nil {
		t.Fatalf("ApplyConfig() error: %v", err)
	}

	got := store.Snapshot()
	if got.Speed != 30 {
		t.Errorf("Speed = %d, want override 30 kept", got.Speed)
	}
	if got.Brightness != 80 {
		t.Errorf("Brightness = %d, want refreshed 80", got.Brightness)
	}
}

func TestPatchValidate(t *testing.T) {
	intp := func(n int) *int { return &n }
	strp := func(s string) *string { return &s }

	tests := []struct {
		name    string
		patch   Patch
		wantErr bool
	}{
		{"empty", Patch{}, false},
		{"valid full", Patch{
			Brightness:   intp(75),
			Speed:        intp(10),
			StepsBetween: intp(20),
			GroupMode:    strp(GroupModeStaggered),
			Transition:   intp(0),
		}, false},
		{"brightness low", Patch{Brightness: intp(0)}, true},
		{"brightness high", Patch{Brightness: intp(101)}, true},
		{"speed high", Patch{Speed: intp(61)}, true},
		{"steps low", Patch{StepsBetween: intp(0)}, true},
		{"negative transition", Patch{Transition: intp(-1)}, true},
		{"unknown mode", Patch{GroupMode: strp("wave")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidSetting) {
				t.Errorf("Validate() = %v, want ErrInvalidSetting", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}
