package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/hologram/internal/orbit"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when a body name is already taken.
	ErrDuplicateName = errors.New("name already exists")

	// ErrInvalidBody is returned for a body that cannot be placed in the scene.
	ErrInvalidBody = errors.New("invalid body")
)

// Body is a catalog entry. Position orders bodies in the scene, which also
// breaks focus ties.
type Body struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Distance    float64   `json:"distance"`
	Size        float64   `json:"size"`
	Speed       float64   `json:"speed"`
	Description string    `json:"description"`
	Temperature string    `json:"temperature"`
	Gravity     string    `json:"gravity"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromOrbit converts a scene body into a catalog entry.
func FromOrbit(b orbit.Body) *Body {
	return &Body{
		Name:        b.Name,
		Color:       b.Color,
		Distance:    b.Distance,
		Size:        b.Size,
		Speed:       b.Speed,
		Description: b.Description,
		Temperature: b.Temperature,
		Gravity:     b.Gravity,
	}
}

// Orbit converts the entry into the scene's body type.
func (b *Body) Orbit() orbit.Body {
	return orbit.Body{
		Name:        b.Name,
		Distance:    b.Distance,
		Size:        b.Size,
		Speed:       b.Speed,
		Color:       b.Color,
		Description: b.Description,
		Temperature: b.Temperature,
		Gravity:     b.Gravity,
	}
}

// Validate checks the fields the scene depends on.
func (b *Body) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBody)
	}
	if b.Distance < 0 {
		return fmt.Errorf("%w: distance must not be negative", ErrInvalidBody)
	}
	if b.Size < 0 {
		return fmt.Errorf("%w: size must not be negative", ErrInvalidBody)
	}
	return nil
}

// BodyRepository provides CRUD operations for catalog bodies.
type BodyRepository struct {
	db querier
}

// querier is the part of *sql.DB and *sql.Tx the repository needs.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Bodies returns the body repository for this store.
func (s *Store) Bodies() *BodyRepository {
	return &BodyRepository{db: s.db}
}

const bodyColumns = `id, name, color, distance, size, speed, description, temperature, gravity, position, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBody(row scanner) (*Body, error) {
	b := &Body{}
	err := row.Scan(&b.ID, &b.Name, &b.Color, &b.Distance, &b.Size, &b.Speed,
		&b.Description, &b.Temperature, &b.Gravity, &b.Position, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func mapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateName
	}
	return err
}

// Create appends a body to the catalog. An empty ID gets a fresh UUID.
func (r *BodyRepository) Create(b *Body) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	var next int
	if err := r.db.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM bodies`).Scan(&next); err != nil {
		return err
	}

	now := time.Now()
	b.Position = next
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO bodies (`+bodyColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Color, b.Distance, b.Size, b.Speed,
		b.Description, b.Temperature, b.Gravity, b.Position, b.CreatedAt, b.UpdatedAt,
	)
	return mapConstraint(err)
}

// GetByID retrieves a body by its ID.
func (r *BodyRepository) GetByID(id string) (*Body, error) {
	b, err := scanBody(r.db.QueryRow(`SELECT `+bodyColumns+` FROM bodies WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetByName retrieves a body by its name.
func (r *BodyRepository) GetByName(name string) (*Body, error) {
	b, err := scanBody(r.db.QueryRow(`SELECT `+bodyColumns+` FROM bodies WHERE name = ?`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// List retrieves all bodies in declaration order.
func (r *BodyRepository) List() ([]*Body, error) {
	rows, err := r.db.Query(`SELECT ` + bodyColumns + ` FROM bodies ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bodies []*Body
	for rows.Next() {
		b, err := scanBody(rows)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bodies, nil
}

// Orbits lists the catalog as scene bodies.
func (r *BodyRepository) Orbits() ([]orbit.Body, error) {
	bodies, err := r.List()
	if err != nil {
		return nil, err
	}
	out := make([]orbit.Body, len(bodies))
	for i, b := range bodies {
		out[i] = b.Orbit()
	}
	return out, nil
}

// Update updates an existing body, including its position.
func (r *BodyRepository) Update(b *Body) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE bodies SET name = ?, color = ?, distance = ?, size = ?, speed = ?,
		 description = ?, temperature = ?, gravity = ?, position = ?, updated_at = ?
		 WHERE id = ?`,
		b.Name, b.Color, b.Distance, b.Size, b.Speed,
		b.Description, b.Temperature, b.Gravity, b.Position, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a body from the catalog by its ID.
func (r *BodyRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM bodies WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
