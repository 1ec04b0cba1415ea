// Package office manages registered office locations and their scan radii.
package office

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"qrattend/internal/apierr"
)

// Location is a registered office with coordinates and allowed radius.
type Location struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters int       `json:"radius_meters"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpsertRequest is the create/update payload.
type UpsertRequest struct {
	Name         string  `json:"name" binding:"required"`
	Address      string  `json:"address" binding:"required"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius_meters"`
	IsActive     *bool   `json:"is_active"`
}

func (r UpsertRequest) validate() error {
	if r.Latitude < -90 || r.Latitude > 90 || r.Longitude < -180 || r.Longitude > 180 {
		return apierr.Invalid("latitude or longitude out of range")
	}
	if r.RadiusMeters <= 0 {
		return apierr.Invalid("radius_meters must be positive")
	}
	return nil
}

// Store persists office locations in Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const columns = "id, name, address, latitude, longitude, radius_meters, is_active, created_at, updated_at"

func scanLocation(row interface{ Scan(...any) error }) (*Location, error) {
	var l Location
	err := row.Scan(&l.ID, &l.Name, &l.Address, &l.Latitude, &l.Longitude,
		&l.RadiusMeters, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns offices, optionally only active ones.
func (s *Store) List(ctx context.Context, activeOnly bool) ([]Location, error) {
	query := "SELECT " + columns + " FROM office_locations"
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *l)
	}
	return res, rows.Err()
}

// Get returns an office by id, or nil.
func (s *Store) Get(ctx context.Context, id string) (*Location, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM office_locations WHERE id = $1", id)
	l, err := scanLocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

// Create inserts a new office.
func (s *Store) Create(ctx context.Context, l *Location) error {
	l.ID = uuid.NewString()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO office_locations (id, name, address, latitude, longitude, radius_meters, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`, l.ID, l.Name, l.Address, l.Latitude, l.Longitude, l.RadiusMeters, l.IsActive)
	return row.Scan(&l.CreatedAt, &l.UpdatedAt)
}

// Update rewrites an office; returns false when the id is unknown.
func (s *Store) Update(ctx context.Context, l *Location) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE office_locations SET
			name = $2, address = $3, latitude = $4, longitude = $5,
			radius_meters = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
	`, l.ID, l.Name, l.Address, l.Latitude, l.Longitude, l.RadiusMeters, l.IsActive)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes an office; its QR codes cascade, historical attendance
// rows keep their references.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM office_locations WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
