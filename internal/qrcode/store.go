package qrcode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SQLStore persists QR codes in Postgres.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

const columns = "q.id, q.office_location_id, q.code, q.is_active, q.expires_at, q.created_at, q.updated_at, o.name"

func scanCode(row interface{ Scan(...any) error }) (*Code, error) {
	var c Code
	var officeName sql.NullString
	err := row.Scan(&c.ID, &c.OfficeLocationID, &c.Code, &c.IsActive,
		&c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt, &officeName)
	if err != nil {
		return nil, err
	}
	c.OfficeName = officeName.String
	return &c, nil
}

const baseQuery = `
	SELECT ` + columns + `
	FROM qr_codes q
	LEFT JOIN office_locations o ON o.id = q.office_location_id
`

// List returns a page of codes matching the filters.
func (s *SQLStore) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	var conds []string
	var args []any
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if q.OfficeID != "" {
		add("q.office_location_id = $%d", q.OfficeID)
	}
	switch q.Status {
	case "active":
		conds = append(conds, "q.is_active AND q.expires_at > NOW()")
	case "inactive":
		conds = append(conds, "NOT q.is_active")
	case "expired":
		conds = append(conds, "q.expires_at <= NOW()")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM qr_codes q" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	offset := (q.Page - 1) * q.PerPage
	pageArgs := append(args, q.PerPage, offset)
	query := fmt.Sprintf("%s%s ORDER BY q.created_at DESC LIMIT $%d OFFSET $%d",
		baseQuery, where, len(args)+1, len(args)+2)

	rows, err := s.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []Code{}
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &ListResult{Codes: codes, Total: total, Page: q.Page, PerPage: q.PerPage}, nil
}

// Get returns a code by id, or nil.
func (s *SQLStore) Get(ctx context.Context, id string) (*Code, error) {
	row := s.db.QueryRowContext(ctx, baseQuery+" WHERE q.id = $1", id)
	c, err := scanCode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

const insertColumns = "id, office_location_id, code, is_active, expires_at"

// Create inserts a new code row.
func (s *SQLStore) Create(ctx context.Context, c *Code) error {
	c.ID = uuid.NewString()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO qr_codes (`+insertColumns+`)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at
	`, c.ID, c.OfficeLocationID, c.Code, c.IsActive, c.ExpiresAt)
	return row.Scan(&c.CreatedAt, &c.UpdatedAt)
}

// SetActive flips the active flag; returns false when the id is unknown.
func (s *SQLStore) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE qr_codes SET is_active = $2, updated_at = NOW() WHERE id = $1", id, active)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes a code.
func (s *SQLStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM qr_codes WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// OfficeExists reports whether an office id is known.
func (s *SQLStore) OfficeExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM office_locations WHERE id = $1)", id).Scan(&exists)
	return exists, err
}
