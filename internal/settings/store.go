package settings

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Logger defines the logging interface used by this package.
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

// Row sources. A "config" row follows the configuration file across
// hot-reloads; an "override" row was set through the API and sticks.
const (
	sourceConfig   = "config"
	sourceOverride = "override"
)

// Store is the persistent runtime settings store. It keeps the current
// values in memory under a mutex and writes every change through to the
// settings table, so values survive restarts.
//
// Thread Safety: all public methods are safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger Logger

	mu         sync.RWMutex
	current    Settings
	overridden map[string]bool // keys explicitly set through the API
}

// NewStore creates a settings store. Call Load before first use.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:         db,
		logger:     noopLogger{},
		overridden: make(map[string]bool),
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Load populates the store from the settings table, seeding any missing
// keys from the given defaults. Rows previously written as API overrides
// keep their stored values; everything else takes the default.
//
// This should be called once on application startup.
func (s *Store) Load(ctx context.Context, defaults Settings) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value, source FROM settings`)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]string)
	overridden := make(map[string]bool)
	for rows.Next() {
		var key, value, source string
		if scanErr := rows.Scan(&key, &value, &source); scanErr != nil {
			return fmt.Errorf("scanning setting: %w", scanErr)
		}
		stored[key] = value
		if source == sourceOverride {
			overridden[key] = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = defaults
	s.overridden = overridden

	// Stored values win over defaults; unparseable rows fall back and are
	// rewritten on the next update.
	for key, value := range stored {
		if parseErr := applyValue(&s.current, key, value); parseErr != nil {
			s.logger.Warn("ignoring malformed setting", "key", key, "value", value, "error", parseErr)
			delete(s.overridden, key)
		}
	}

	// Seed rows that don't exist yet so first run leaves a fully
	// populated table behind.
	for key, value := range encodeSettings(s.current) {
		if _, ok := stored[key]; ok {
			continue
		}
		if seedErr := s.writeRow(ctx, key, value, sourceConfig); seedErr != nil {
			return seedErr
		}
	}

	s.logger.Info("settings loaded",
		"brightness", s.current.Brightness,
		"speed", s.current.Speed,
		"group_mode", s.current.GroupMode,
		"overrides", len(s.overridden),
	)
	return nil
}

// Snapshot returns the current settings.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies a partial update from the API. Every field present in the
// patch is validated, persisted as an override, and reflected in the
// returned snapshot.
func (s *Store) Update(ctx context.Context, patch Patch) (Settings, error) {
	if err := patch.Validate(); err != nil {
		return Settings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.current
	changed := make(map[string]string)

	if patch.Brightness != nil {
		updated.Brightness = *patch.Brightness
		changed[KeyBrightness] = strconv.Itoa(*patch.Brightness)
	}
	if patch.Speed != nil {
		updated.Speed = *patch.Speed
		changed[KeySpeed] = strconv.Itoa(*patch.Speed)
	}
	if patch.StepsBetween != nil {
		updated.StepsBetween = *patch.StepsBetween
		changed[KeyStepsBetween] = strconv.Itoa(*patch.StepsBetween)
	}
	if patch.GroupMode != nil {
		updated.GroupMode = *patch.GroupMode
		changed[KeyGroupMode] = *patch.GroupMode
	}
	if patch.Transition != nil {
		updated.Transition = *patch.Transition
		changed[KeyTransition] = strconv.Itoa(*patch.Transition)
	}

	for key, value := range changed {
		if err := s.writeRow(ctx, key, value, sourceOverride); err != nil {
			return Settings{}, err
		}
		s.overridden[key] = true
	}

	s.current = updated
	s.logger.Info("settings updated", "changed", len(changed))
	return updated, nil
}

// ApplyConfig refreshes the config-sourced values after a configuration
// hot-reload. Keys that were explicitly overridden through the API are
// left untouched.
func (s *Store) ApplyConfig(ctx context.Context, defaults Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	refreshed := 0
	for key, value := range encodeSettings(defaults) {
		if s.overridden[key] {
			continue
		}
		if err := applyValue(&s.current, key, value); err != nil {
			return err
		}
		if err := s.writeRow(ctx, key, value, sourceConfig); err != nil {
			return err
		}
		refreshed++
	}

	s.logger.Info("settings refreshed from config", "refreshed", refreshed, "overrides_kept", len(s.overridden))
	return nil
}

// writeRow upserts one settings row. Callers must hold s.mu.
func (s *Store) writeRow(ctx context.Context, key, value, source string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO settings (key, value, source, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value,
			source = excluded.source, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, key, value, source, now); err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// encodeSettings renders a Settings snapshot as table values.
func encodeSettings(v Settings) map[string]string {
	return map[string]string{
		KeyBrightness:   strconv.Itoa(v.Brightness),
		KeySpeed:        strconv.Itoa(v.Speed),
		KeyStepsBetween: strconv.Itoa(v.StepsBetween),
		KeyGroupMode:    v.GroupMode,
		KeyTransition:   strconv.Itoa(v.Transition),
	}
}

// applyValue parses one stored value into the settings struct.
func applyValue(v *Settings, key, value string) error {
	switch key {
	case KeyGroupMode:
		if value != GroupModeSynchronised && value != GroupModeStaggered {
			return fmt.Errorf("%w: group_mode %q", ErrInvalidSetting, value)
		}
		v.GroupMode = value
		return nil
	case KeyBrightness, KeySpeed, KeyStepsBetween, KeyTransition:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalidSetting, key, value)
		}
		switch key {
		case KeyBrightness:
			v.Brightness = n
		case KeySpeed:
			v.Speed = n
		case KeyStepsBetween:
			v.StepsBetween = n
		case KeyTransition:
			v.Transition = n
		}
		return nil
	default:
		// Unknown keys from a newer schema version are ignored.
		return nil
	}
}
