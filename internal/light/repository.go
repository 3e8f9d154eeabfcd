package light

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for light persistence.
// This abstraction allows different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a light by its unique identifier.
	// Returns ErrLightNotFound if the light does not exist.
	GetByID(ctx context.Context, id string) (*Light, error)

	// List retrieves all lights.
	List(ctx context.Context) ([]Light, error)

	// ListByRoom retrieves all lights with a specific room label.
	ListByRoom(ctx context.Context, room string) ([]Light, error)

	// Create inserts a new light.
	// Returns ErrLightExists if a light with the same ID or slug exists.
	Create(ctx context.Context, l *Light) error

	// Update modifies an existing light.
	// Returns ErrLightNotFound if the light does not exist.
	Update(ctx context.Context, l *Light) error

	// Delete removes a light by ID.
	// Returns ErrLightNotFound if the light does not exist.
	Delete(ctx context.Context, id string) error

	// UpdateState replaces the stored state of a light.
	// This is optimised for frequent updates from the MQTT subscription.
	UpdateState(ctx context.Context, id string, state State) error
}

// lightColumns is the SELECT column list for light queries.
const lightColumns = `id, name, slug, room, colour_modes, state, state_updated_at,
			manufacturer, model, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a light by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Light, error) {
	query := `SELECT ` + lightColumns + ` FROM lights WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	l, err := scanLight(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLightNotFound
		}
		return nil, fmt.Errorf("querying light by id: %w", err)
	}
	return l, nil
}

// List retrieves all lights ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Light, error) {
	query := `SELECT ` + lightColumns + ` FROM lights ORDER BY name`
	return r.queryLights(ctx, query)
}

// ListByRoom retrieves all lights with a specific room label.
func (r *SQLiteRepository) ListByRoom(ctx context.Context, room string) ([]Light, error) {
	query := `SELECT ` + lightColumns + ` FROM lights WHERE room = ? ORDER BY name`
	return r.queryLights(ctx, query, room)
}

// Create inserts a new light.
func (r *SQLiteRepository) Create(ctx context.Context, l *Light) error {
	modesJSON, err := json.Marshal(l.ColourModes)
	if err != nil {
		return fmt.Errorf("marshalling colour modes: %w", err)
	}
	stateJSON, err := marshalState(l.State)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	query := `
		INSERT INTO lights (
			id, name, slug, room, colour_modes, state, state_updated_at,
			manufacturer, model, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		l.ID,
		l.Name,
		l.Slug,
		nullableString(l.Room),
		string(modesJSON),
		stateJSON,
		nullableTime(l.StateUpdatedAt),
		nullableString(l.Manufacturer),
		nullableString(l.Model),
		l.CreatedAt.Format(time.RFC3339),
		l.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrLightExists
		}
		return fmt.Errorf("inserting light: %w", err)
	}
	return nil
}

// Update modifies an existing light.
func (r *SQLiteRepository) Update(ctx context.Context, l *Light) error {
	modesJSON, err := json.Marshal(l.ColourModes)
	if err != nil {
		return fmt.Errorf("marshalling colour modes: %w", err)
	}
	stateJSON, err := marshalState(l.State)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	l.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE lights SET
			name = ?, slug = ?, room = ?, colour_modes = ?, state = ?,
			state_updated_at = ?, manufacturer = ?, model = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		l.Name,
		l.Slug,
		nullableString(l.Room),
		string(modesJSON),
		stateJSON,
		nullableTime(l.StateUpdatedAt),
		nullableString(l.Manufacturer),
		nullableString(l.Model),
		l.UpdatedAt.Format(time.RFC3339),
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating light: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrLightNotFound
	}
	return nil
}

// Delete removes a light by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM lights WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting light: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrLightNotFound
	}
	return nil
}

// UpdateState replaces the stored state of a light.
func (r *SQLiteRepository) UpdateState(ctx context.Context, id string, state State) error {
	stateJSON, err := marshalState(state)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := `UPDATE lights SET state = ?, state_updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, stateJSON, now, id)
	if err != nil {
		return fmt.Errorf("updating light state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrLightNotFound
	}
	return nil
}

// queryLights executes a query and returns a slice of lights.
func (r *SQLiteRepository) queryLights(ctx context.Context, query string, args ...any) ([]Light, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying lights: %w", err)
	}
	defer rows.Close()

	var lights []Light
	for rows.Next() {
		l, scanErr := scanLightFromRows(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning light: %w", scanErr)
		}
		lights = append(lights, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lights: %w", err)
	}
	return lights, nil
}

// ─── Row Scanning Helpers ───────────────────────────────────────────────────

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanLight scans a single sql.Row into a Light.
func scanLight(row *sql.Row) (*Light, error) {
	return scanLightRow(row)
}

// scanLightFromRows scans a sql.Rows result into a Light.
func scanLightFromRows(rows *sql.Rows) (*Light, error) {
	return scanLightRow(rows)
}

func scanLightRow(scanner rowScanner) (*Light, error) {
	var l Light
	var room, stateJSON, stateUpdatedAt, manufacturer, model sql.NullString
	var modesJSON string
	var createdAt, updatedAt string

	err := scanner.Scan(
		&l.ID,
		&l.Name,
		&l.Slug,
		&room,
		&modesJSON,
		&stateJSON,
		&stateUpdatedAt,
		&manufacturer,
		&model,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Parse nullable strings
	if room.Valid {
		l.Room = &room.String
	}
	if manufacturer.Valid {
		l.Manufacturer = &manufacturer.String
	}
	if model.Valid {
		l.Model = &model.String
	}

	// Parse timestamps (stored as RFC3339)
	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		l.CreatedAt = t
	}
	if t, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		l.UpdatedAt = t
	}
	if stateUpdatedAt.Valid {
		if t, parseErr := time.Parse(time.RFC3339, stateUpdatedAt.String); parseErr == nil {
			l.StateUpdatedAt = &t
		}
	}

	// Unmarshal colour modes JSON
	if modesJSON != "" && modesJSON != "null" && modesJSON != "[]" {
		if jsonErr := json.Unmarshal([]byte(modesJSON), &l.ColourModes); jsonErr != nil {
			return nil, fmt.Errorf("unmarshalling colour modes: %w", jsonErr)
		}
	}

	// Unmarshal state JSON
	if stateJSON.Valid && stateJSON.String != "" && stateJSON.String != "null" {
		if jsonErr := json.Unmarshal([]byte(stateJSON.String), &l.State); jsonErr != nil {
			return nil, fmt.Errorf("unmarshalling state: %w", jsonErr)
		}
	}
	if l.State == nil {
		l.State = State{}
	}

	return &l, nil
}

// ─── SQL Helpers ────────────────────────────────────────────────────────────

func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func marshalState(state State) (sql.NullString, error) {
	if len(state) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
