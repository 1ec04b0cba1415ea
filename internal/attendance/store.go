package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"qrattend/internal/store"
)

// ErrDuplicateDay reports that another request created the employee's
// daily record first. Callers reload the row and retry the transition.
var ErrDuplicateDay = errors.New("attendance record already exists for day")

const dateLayout = "2006-01-02"

// Store is the persistence surface the scan and report flows depend on.
type Store interface {
	EmployeeByUserID(ctx context.Context, userID string) (*Employee, error)
	QRCodeByToken(ctx context.Context, code string) (*QRCode, error)
	OfficeByID(ctx context.Context, id string) (*OfficeLocation, error)
	ForDay(ctx context.Context, employeeID string, day time.Time) (*Attendance, error)
	Recent(ctx context.Context, employeeID string, limit int) ([]Attendance, error)
	Between(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
	SaveScan(ctx context.Context, att *Attendance, entry *LogEntry) error
}

// SQLStore persists attendance data in Postgres.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a store.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// EmployeeByUserID resolves the employee owning an authenticated identity.
func (s *SQLStore) EmployeeByUserID(ctx context.Context, userID string) (*Employee, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, status
		FROM employees WHERE user_id = $1
	`, userID)
	var e Employee
	if err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// QRCodeByToken looks up a code by exact token match.
func (s *SQLStore) QRCodeByToken(ctx context.Context, code string) (*QRCode, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, office_location_id, expires_at, is_active
		FROM qr_codes WHERE code = $1
	`, code)
	var q QRCode
	if err := row.Scan(&q.ID, &q.Code, &q.OfficeLocationID, &q.ExpiresAt, &q.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

// OfficeByID loads the office a code is bound to.
func (s *SQLStore) OfficeByID(ctx context.Context, id string) (*OfficeLocation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, latitude, longitude, radius_meters, is_active
		FROM office_locations WHERE id = $1
	`, id)
	var o OfficeLocation
	if err := row.Scan(&o.ID, &o.Name, &o.Latitude, &o.Longitude, &o.RadiusMeters, &o.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

const attendanceColumns = `
	id, employee_id, qr_code_id, office_location_id, date,
	check_in_time, check_out_time,
	check_in_latitude, check_in_longitude, check_out_latitude, check_out_longitude,
	status, notes, created_at, updated_at`

func scanAttendance(row interface{ Scan(...any) error }) (*Attendance, error) {
	var a Attendance
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.QRCodeID, &a.OfficeLocationID, &a.Date,
		&a.CheckInTime, &a.CheckOutTime,
		&a.CheckInLatitude, &a.CheckInLongitude, &a.CheckOutLatitude, &a.CheckOutLongitude,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ForDay returns the daily record for (employee, day), or nil.
func (s *SQLStore) ForDay(ctx context.Context, employeeID string, day time.Time) (*Attendance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendances WHERE employee_id = $1 AND date = $2
	`, employeeID, day.Format(dateLayout))
	a, err := scanAttendance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// Recent returns the employee's latest records, newest first.
func (s *SQLStore) Recent(ctx context.Context, employeeID string, limit int) ([]Attendance, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendances WHERE employee_id = $1
		ORDER BY date DESC LIMIT $2
	`, employeeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttendances(rows)
}

// Between returns records with from <= date < to, ordered by date.
func (s *SQLStore) Between(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendances
		WHERE employee_id = $1 AND date >= $2 AND date < $3
		ORDER BY date
	`, employeeID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttendances(rows)
}

func collectAttendances(rows *sql.Rows) ([]Attendance, error) {
	var res []Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *a)
	}
	return res, rows.Err()
}

// SaveScan persists a scan in one transaction: the daily record (created
// when its ID is empty, updated otherwise) and its audit log row. A lost
// create race surfaces as ErrDuplicateDay with nothing written.
func (s *SQLStore) SaveScan(ctx context.Context, att *Attendance, entry *LogEntry) error {
	return store.RunInTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		if att.ID == "" {
			att.ID = uuid.NewString()
			res, err := tx.ExecContext(ctx, `
				INSERT INTO attendances (
					id, employee_id, qr_code_id, office_location_id, date,
					check_in_time, check_in_latitude, check_in_longitude, status
				)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
				ON CONFLICT (employee_id, date) DO NOTHING
			`, att.ID, att.EmployeeID, att.QRCodeID, att.OfficeLocationID, att.Date.Format(dateLayout),
				att.CheckInTime, att.CheckInLatitude, att.CheckInLongitude, att.Status)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				att.ID = ""
				return ErrDuplicateDay
			}
		} else {
			if _, err := tx.ExecContext(ctx, `
				UPDATE attendances SET
					check_in_time = $2, check_out_time = $3,
					check_in_latitude = $4, check_in_longitude = $5,
					check_out_latitude = $6, check_out_longitude = $7,
					status = $8, updated_at = NOW()
				WHERE id = $1
			`, att.ID,
				att.CheckInTime, att.CheckOutTime,
				att.CheckInLatitude, att.CheckInLongitude,
				att.CheckOutLatitude, att.CheckOutLongitude,
				att.Status); err != nil {
				return err
			}
		}

		entry.ID = uuid.NewString()
		entry.AttendanceID = att.ID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_logs (
				id, attendance_id, type, logged_at, latitude, longitude, distance_meters, device_info
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, entry.ID, entry.AttendanceID, entry.Type, entry.LoggedAt,
			entry.Latitude, entry.Longitude, entry.DistanceMeters, entry.DeviceInfo)
		return err
	})
}
