package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Store persists employee rows in Postgres.
type Store struct {
	db *sql.DB
}

// NewStore creates a store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const columns = `
	id, user_id, employee_id, name, email, phone, department, position,
	role, status, hire_date, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.UserID, &e.EmployeeID, &e.Name, &e.Email, &e.Phone,
		&e.Department, &e.Position, &e.Role, &e.Status, &e.HireDate,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns a filtered page of employees plus the total match count.
func (s *Store) List(ctx context.Context, q ListQuery) ([]Employee, int64, error) {
	where := ""
	args := []any{}
	add := func(clause string, val any) {
		args = append(args, val)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(clause, len(args))
	}

	if q.Search != "" {
		add("(name ILIKE '%%' || $%d || '%%' OR employee_id ILIKE '%%' || $%[1]d || '%%' OR email ILIKE '%%' || $%[1]d || '%%')", q.Search)
	}
	if q.Department != "" {
		add("department = $%d", q.Department)
	}
	if q.Status != "" {
		add("status = $%d", q.Status)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM employees%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		columns, where, len(args)+1, len(args)+2)
	args = append(args, q.PerPage, (q.Page-1)*q.PerPage)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var res []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, *e)
	}
	return res, total, rows.Err()
}

// Get returns an employee by internal id, or nil.
func (s *Store) Get(ctx context.Context, id string) (*Employee, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM employees WHERE id = $1", id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// Create inserts a new employee. Unique violations on employee_id, email,
// or user_id bubble up for the service to map.
func (s *Store) Create(ctx context.Context, e *Employee) error {
	e.ID = uuid.NewString()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO employees (id, user_id, employee_id, name, email, phone, department, position, role, status, hire_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at
	`, e.ID, e.UserID, e.EmployeeID, e.Name, e.Email, e.Phone,
		e.Department, e.Position, e.Role, e.Status, e.HireDate.Format("2006-01-02"))
	return row.Scan(&e.CreatedAt, &e.UpdatedAt)
}

// Update rewrites all mutable fields; returns false when the id is unknown.
func (s *Store) Update(ctx context.Context, e *Employee) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE employees SET
			user_id = $2, employee_id = $3, name = $4, email = $5, phone = $6,
			department = $7, position = $8, role = $9, status = $10,
			hire_date = $11, updated_at = NOW()
		WHERE id = $1
	`, e.ID, e.UserID, e.EmployeeID, e.Name, e.Email, e.Phone,
		e.Department, e.Position, e.Role, e.Status, e.HireDate.Format("2006-01-02"))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes an employee; attendance rows cascade in the schema.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RecentAttendance returns the latest attendance rows for the detail view.
func (s *Store) RecentAttendance(ctx context.Context, employeeID string, limit int) ([]AttendanceSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, status, check_in_time, check_out_time
		FROM attendances WHERE employee_id = $1
		ORDER BY date DESC LIMIT $2
	`, employeeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []AttendanceSummary
	for rows.Next() {
		var a AttendanceSummary
		if err := rows.Scan(&a.Date, &a.Status, &a.CheckInTime, &a.CheckOutTime); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
