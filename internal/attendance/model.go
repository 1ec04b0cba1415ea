package attendance

import (
	"math"
	"time"
)

// Status classifies a daily attendance record.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusPartial Status = "partial"
)

// Action is a scan type submitted by a client.
type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

// Valid reports whether a is a known scan action.
func (a Action) Valid() bool {
	return a == ActionCheckIn || a == ActionCheckOut
}

// Employee is the slice of the employee row the scan flow needs.
type Employee struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// OfficeLocation is a registered office with its allowed scan radius.
type OfficeLocation struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius_meters"`
	IsActive     bool    `json:"is_active"`
}

// QRCode is a location-bound scan token.
type QRCode struct {
	ID               string    `json:"id"`
	Code             string    `json:"code"`
	OfficeLocationID string    `json:"office_location_id"`
	ExpiresAt        time.Time `json:"expires_at"`
	IsActive         bool      `json:"is_active"`
}

// ValidAt reports whether the code may be scanned at the given time.
func (q *QRCode) ValidAt(now time.Time) bool {
	return q.IsActive && now.Before(q.ExpiresAt)
}

// Attendance is the single daily record per employee and calendar date.
type Attendance struct {
	ID                string     `json:"id"`
	EmployeeID        string     `json:"employee_id"`
	QRCodeID          string     `json:"qr_code_id"`
	OfficeLocationID  string     `json:"office_location_id"`
	Date              time.Time  `json:"date"`
	CheckInTime       *time.Time `json:"check_in_time"`
	CheckOutTime      *time.Time `json:"check_out_time"`
	CheckInLatitude   *float64   `json:"check_in_latitude"`
	CheckInLongitude  *float64   `json:"check_in_longitude"`
	CheckOutLatitude  *float64   `json:"check_out_latitude"`
	CheckOutLongitude *float64   `json:"check_out_longitude"`
	Status            Status     `json:"status"`
	Notes             *string    `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// WorkedDuration returns the elapsed time between check-in and check-out,
// or false while the record is incomplete.
func (a *Attendance) WorkedDuration() (time.Duration, bool) {
	if a.CheckInTime == nil || a.CheckOutTime == nil {
		return 0, false
	}
	return a.CheckOutTime.Sub(*a.CheckInTime), true
}

// WorkedHours is the truncated whole-hour accessor.
func (a *Attendance) WorkedHours() *int {
	d, ok := a.WorkedDuration()
	if !ok {
		return nil
	}
	h := int(d.Hours())
	return &h
}

// WorkedHoursExact preserves fractional hours for reporting.
func (a *Attendance) WorkedHoursExact() *float64 {
	d, ok := a.WorkedDuration()
	if !ok {
		return nil
	}
	h := d.Hours()
	return &h
}

// LogEntry is one append-only audit row per accepted scan.
type LogEntry struct {
	ID             string    `json:"id"`
	AttendanceID   string    `json:"attendance_id"`
	Type           Action    `json:"type"`
	LoggedAt       time.Time `json:"logged_at"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	DistanceMeters int       `json:"distance_meters"`
	DeviceInfo     string    `json:"device_info"`
}

// roundTenth rounds to one decimal place for report figures.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
