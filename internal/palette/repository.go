package palette

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/chroma-core/internal/colour"
)

// Repository defines the interface for palette persistence.
// This abstraction allows different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a palette by its unique identifier.
	// Returns ErrPaletteNotFound if the palette does not exist.
	GetByID(ctx context.Context, id string) (*Palette, error)

	// List retrieves all palettes.
	List(ctx context.Context) ([]Palette, error)

	// Create inserts a new palette.
	// Returns ErrPaletteExists if a palette with the same ID or slug exists.
	Create(ctx context.Context, p *Palette) error

	// Update modifies an existing palette.
	// Returns ErrPaletteNotFound if the palette does not exist.
	Update(ctx context.Context, p *Palette) error

	// Delete removes a palette by ID.
	// Returns ErrPaletteNotFound if the palette does not exist.
	Delete(ctx context.Context, id string) error
}

// paletteColumns is the SELECT column list for palette queries.
const paletteColumns = `id, name, slug, description, colours, sort_order, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a palette by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Palette, error) {
	query := `SELECT ` + paletteColumns + ` FROM palettes WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanPaletteRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaletteNotFound
		}
		return nil, fmt.Errorf("querying palette by id: %w", err)
	}
	return p, nil
}

// List retrieves all palettes ordered by sort order, then name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Palette, error) {
	query := `SELECT ` + paletteColumns + ` FROM palettes ORDER BY sort_order, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying palettes: %w", err)
	}
	defer rows.Close()

	var palettes []Palette
	for rows.Next() {
		p, scanErr := scanPaletteRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning palette: %w", scanErr)
		}
		palettes = append(palettes, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating palettes: %w", err)
	}
	return palettes, nil
}

// Create inserts a new palette.
func (r *SQLiteRepository) Create(ctx context.Context, p *Palette) error {
	coloursJSON, err := marshalColours(p.Colours)
	if err != nil {
		return fmt.Errorf("marshalling colours: %w", err)
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `
		INSERT INTO palettes (
			id, name, slug, description, colours, sort_order, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		coloursJSON,
		p.SortOrder,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrPaletteExists
		}
		return fmt.Errorf("inserting palette: %w", err)
	}
	return nil
}

// Update modifies an existing palette.
func (r *SQLiteRepository) Update(ctx context.Context, p *Palette) error {
	coloursJSON, err := marshalColours(p.Colours)
	if err != nil {
		return fmt.Errorf("marshalling colours: %w", err)
	}

	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE palettes SET
			name = ?, slug = ?, description = ?, colours = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		coloursJSON,
		p.SortOrder,
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrPaletteExists
		}
		return fmt.Errorf("updating palette: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPaletteNotFound
	}
	return nil
}

// Delete removes a palette by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM palettes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting palette: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPaletteNotFound
	}
	return nil
}

// ─── Row Scanning Helpers ───────────────────────────────────────────────────

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaletteRow(scanner rowScanner) (*Palette, error) {
	var p Palette
	var coloursJSON string
	var createdAt, updatedAt string

	err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&coloursJSON,
		&p.SortOrder,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps (stored as RFC3339)
	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		p.CreatedAt = t
	}
	if t, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		p.UpdatedAt = t
	}

	// Unmarshal colour list JSON (array of hex strings)
	if coloursJSON != "" && coloursJSON != "null" {
		if jsonErr := json.Unmarshal([]byte(coloursJSON), &p.Colours); jsonErr != nil {
			return nil, fmt.Errorf("unmarshalling colours: %w", jsonErr)
		}
	}

	return &p, nil
}

// ─── SQL Helpers ────────────────────────────────────────────────────────────

// marshalColours encodes the colour list as a JSON array of hex strings,
// which is how the colours column stores it.
func marshalColours(colours []colour.Colour) (string, error) {
	if colours == nil {
		colours = []colour.Colour{}
	}
	data, err := json.Marshal(colours)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
