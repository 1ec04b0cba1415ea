package attendance

import (
	"context"
	"errors"
	"math"
	"time"

	"qrattend/internal/apierr"
	"qrattend/internal/geo"
)

// Service runs the scan workflow and the read-side views over a Store.
type Service struct {
	store    Store
	lateHour int
	now      func() time.Time
}

// NewService creates a service. lateHour is the local hour at or after
// which a check-in counts as late; now defaults to time.Now.
func NewService(store Store, lateHour int, now func() time.Time) *Service {
	if lateHour <= 0 {
		lateHour = 8
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, lateHour: lateHour, now: now}
}

// ScanRequest is the client payload for a check-in or check-out attempt.
type ScanRequest struct {
	QRCode    string  `json:"qr_code" binding:"required"`
	Type      string  `json:"type" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ScanResult is the success payload of a recorded scan.
type ScanResult struct {
	Message      string
	Attendance   *Attendance
	WorkingHours *float64
}

// RecordScan validates a scan against the QR code and office radius,
// applies the daily state transition, and persists the record together
// with its audit log entry.
func (s *Service) RecordScan(ctx context.Context, userID string, req ScanRequest, deviceInfo string) (*ScanResult, error) {
	action := Action(req.Type)
	if !action.Valid() {
		return nil, apierr.Invalid("type must be check_in or check_out")
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, apierr.Invalid("latitude or longitude out of range")
	}

	emp, err := s.store.EmployeeByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, apierr.NotFound("Employee profile not found.")
	}

	now := s.now()

	qr, err := s.store.QRCodeByToken(ctx, req.QRCode)
	if err != nil {
		return nil, err
	}
	if qr == nil || !qr.ValidAt(now) {
		return nil, apierr.Invalid("Invalid or expired QR code.")
	}

	// Office activity is deliberately not cross-checked here: deactivating
	// an office stops new QR issuance but does not retire posted codes.
	office, err := s.store.OfficeByID(ctx, qr.OfficeLocationID)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, apierr.Invalid("Invalid or expired QR code.")
	}

	distance := geo.Distance(office.Latitude, office.Longitude, req.Latitude, req.Longitude)
	if distance > float64(office.RadiusMeters) {
		return nil, apierr.Policy("You are too far from the office location.").
			WithExtra("distance", math.Round(distance)).
			WithExtra("allowed_radius", office.RadiusMeters)
	}

	day := dateOnly(now)
	att, err := s.store.ForDay(ctx, emp.ID, day)
	if err != nil {
		return nil, err
	}
	if att == nil {
		att = &Attendance{
			EmployeeID:       emp.ID,
			QRCodeID:         qr.ID,
			OfficeLocationID: office.ID,
			Date:             day,
			Status:           StatusPresent,
		}
	}

	if err := Transition(att, action, now, req.Latitude, req.Longitude, s.lateHour); err != nil {
		return nil, err
	}

	entry := &LogEntry{
		Type:           action,
		LoggedAt:       now,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		DistanceMeters: int(distance),
		DeviceInfo:     deviceInfo,
	}

	if err := s.store.SaveScan(ctx, att, entry); err != nil {
		if !errors.Is(err, ErrDuplicateDay) {
			return nil, err
		}
		// Lost the create race: another request inserted today's record
		// first. Retry the transition against the winner's row.
		att, err = s.store.ForDay(ctx, emp.ID, day)
		if err != nil {
			return nil, err
		}
		if att == nil {
			return nil, apierr.Internal("attendance record vanished after conflict")
		}
		if err := Transition(att, action, now, req.Latitude, req.Longitude, s.lateHour); err != nil {
			return nil, err
		}
		if err := s.store.SaveScan(ctx, att, entry); err != nil {
			return nil, err
		}
	}

	// Re-read so the response carries DB-assigned timestamps.
	fresh, err := s.store.ForDay(ctx, emp.ID, day)
	if err != nil {
		return nil, err
	}
	if fresh != nil {
		att = fresh
	}

	message := "Successfully checked in!"
	if action == ActionCheckOut {
		message = "Successfully checked out!"
	}

	var hours *float64
	if h := att.WorkedHoursExact(); h != nil {
		rounded := roundTenth(*h)
		hours = &rounded
	}

	return &ScanResult{Message: message, Attendance: att, WorkingHours: hours}, nil
}

// TodayView is the scanner-page payload: today's record, recent history,
// and which action is currently legal.
type TodayView struct {
	Employee    *Employee    `json:"employee"`
	Today       *Attendance  `json:"today"`
	Recent      []Attendance `json:"recent"`
	CanCheckIn  bool         `json:"can_check_in"`
	CanCheckOut bool         `json:"can_check_out"`
}

// Today assembles the scanner view for the authenticated identity.
func (s *Service) Today(ctx context.Context, userID string) (*TodayView, error) {
	emp, err := s.store.EmployeeByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, apierr.NotFound("Employee profile not found.")
	}

	today, err := s.store.ForDay(ctx, emp.ID, dateOnly(s.now()))
	if err != nil {
		return nil, err
	}
	recent, err := s.store.Recent(ctx, emp.ID, 5)
	if err != nil {
		return nil, err
	}

	state := StateOf(today)
	return &TodayView{
		Employee:    emp,
		Today:       today,
		Recent:      recent,
		CanCheckIn:  state == StateNone,
		CanCheckOut: state == StateCheckedIn,
	}, nil
}

// Statistics summarizes a reporting period.
type Statistics struct {
	TotalDays           int     `json:"total_days"`
	PresentDays         int     `json:"present_days"`
	LateDays            int     `json:"late_days"`
	AbsentDays          int     `json:"absent_days"`
	PartialDays         int     `json:"partial_days"`
	TotalWorkingHours   float64 `json:"total_working_hours"`
	AverageWorkingHours float64 `json:"average_working_hours"`
}

// ReportResult carries the period's rows and derived statistics.
type ReportResult struct {
	Period      string       `json:"period"`
	Date        string       `json:"date"`
	Attendances []Attendance `json:"attendances"`
	Statistics  Statistics   `json:"statistics"`
}

// Report returns the employee's records within the day, Monday-to-Sunday
// week, or calendar month containing the anchor date, plus statistics.
// Null worked hours count as zero in the totals.
func (s *Service) Report(ctx context.Context, userID, period, dateStr string) (*ReportResult, error) {
	emp, err := s.store.EmployeeByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, apierr.NotFound("Employee profile not found.")
	}

	if period == "" {
		period = "week"
	}
	anchor := dateOnly(s.now())
	if dateStr != "" {
		parsed, err := time.ParseInLocation(dateLayout, dateStr, anchor.Location())
		if err != nil {
			return nil, apierr.Invalid("date must be YYYY-MM-DD")
		}
		anchor = parsed
	}

	from, to, err := periodBounds(period, anchor)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Between(ctx, emp.ID, from, to)
	if err != nil {
		return nil, err
	}

	stats := Statistics{TotalDays: len(rows)}
	var totalHours float64
	for i := range rows {
		switch rows[i].Status {
		case StatusPresent:
			stats.PresentDays++
		case StatusLate:
			stats.LateDays++
		case StatusAbsent:
			stats.AbsentDays++
		case StatusPartial:
			stats.PartialDays++
		}
		if h := rows[i].WorkedHoursExact(); h != nil {
			totalHours += *h
		}
	}
	stats.TotalWorkingHours = roundTenth(totalHours)
	if stats.TotalDays > 0 {
		stats.AverageWorkingHours = roundTenth(totalHours / float64(stats.TotalDays))
	}

	return &ReportResult{
		Period:      period,
		Date:        anchor.Format(dateLayout),
		Attendances: rows,
		Statistics:  stats,
	}, nil
}

// periodBounds returns [from, to) for a period around an anchor date.
// Weeks run Monday through Sunday.
func periodBounds(period string, anchor time.Time) (time.Time, time.Time, error) {
	switch period {
	case "day":
		return anchor, anchor.AddDate(0, 0, 1), nil
	case "week":
		offset := (int(anchor.Weekday()) + 6) % 7
		start := anchor.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), nil
	case "month":
		start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		return start, start.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, apierr.Invalid("period must be day, week, or month")
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
