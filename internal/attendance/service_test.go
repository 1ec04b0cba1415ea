package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrattend/internal/apierr"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	employees map[string]*Employee       // keyed by user_id
	codes     map[string]*QRCode         // keyed by token
	offices   map[string]*OfficeLocation // keyed by id
	days      map[string]Attendance      // keyed by employee_id|date
	logs      []LogEntry
	nextID    int

	// raceRow, when set, is inserted by a simulated concurrent request the
	// first time a create is attempted, which then fails with ErrDuplicateDay.
	raceRow *Attendance
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: map[string]*Employee{},
		codes:     map[string]*QRCode{},
		offices:   map[string]*OfficeLocation{},
		days:      map[string]Attendance{},
	}
}

func dayKey(employeeID string, day time.Time) string {
	return employeeID + "|" + day.Format(dateLayout)
}

func (f *fakeStore) EmployeeByUserID(_ context.Context, userID string) (*Employee, error) {
	return f.employees[userID], nil
}

func (f *fakeStore) QRCodeByToken(_ context.Context, code string) (*QRCode, error) {
	return f.codes[code], nil
}

func (f *fakeStore) OfficeByID(_ context.Context, id string) (*OfficeLocation, error) {
	return f.offices[id], nil
}

func (f *fakeStore) ForDay(_ context.Context, employeeID string, day time.Time) (*Attendance, error) {
	if a, ok := f.days[dayKey(employeeID, day)]; ok {
		copied := a
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) Recent(_ context.Context, employeeID string, limit int) ([]Attendance, error) {
	var res []Attendance
	for _, a := range f.days {
		if a.EmployeeID == employeeID && len(res) < limit {
			res = append(res, a)
		}
	}
	return res, nil
}

func (f *fakeStore) Between(_ context.Context, employeeID string, from, to time.Time) ([]Attendance, error) {
	var res []Attendance
	for _, a := range f.days {
		if a.EmployeeID == employeeID && !a.Date.Before(from) && a.Date.Before(to) {
			res = append(res, a)
		}
	}
	return res, nil
}

func (f *fakeStore) SaveScan(_ context.Context, att *Attendance, entry *LogEntry) error {
	key := dayKey(att.EmployeeID, att.Date)
	if att.ID == "" {
		if f.raceRow != nil {
			winner := *f.raceRow
			f.days[dayKey(winner.EmployeeID, winner.Date)] = winner
			f.raceRow = nil
			return ErrDuplicateDay
		}
		if _, exists := f.days[key]; exists {
			return ErrDuplicateDay
		}
		f.nextID++
		att.ID = "att-" + time.Now().Format("150405") + "-" + string(rune('a'+f.nextID))
	}
	f.days[key] = *att
	entry.AttendanceID = att.ID
	f.logs = append(f.logs, *entry)
	return nil
}

const (
	officeLat = -6.200000
	officeLng = 106.816666
)

func newTestService(t *testing.T, clock time.Time) (*Service, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	fs.employees["user-1"] = &Employee{ID: "emp-1", UserID: "user-1", Name: "Ana", Status: "active"}
	fs.offices["office-1"] = &OfficeLocation{
		ID: "office-1", Name: "HQ",
		Latitude: officeLat, Longitude: officeLng,
		RadiusMeters: 100, IsActive: true,
	}
	fs.codes["tok-1"] = &QRCode{
		ID: "qr-1", Code: "tok-1", OfficeLocationID: "office-1",
		ExpiresAt: clock.Add(24 * time.Hour), IsActive: true,
	}
	svc := NewService(fs, 8, func() time.Time { return clock })
	return svc, fs
}

func scanReq(action string, lat, lng float64) ScanRequest {
	return ScanRequest{QRCode: "tok-1", Type: action, Latitude: lat, Longitude: lng}
}

func TestRecordScanFirstCheckIn(t *testing.T) {
	clock := time.Date(2026, 1, 5, 7, 30, 0, 0, time.UTC)
	svc, fs := newTestService(t, clock)

	res, err := svc.RecordScan(context.Background(), "user-1", scanReq("check_in", officeLat, officeLng), "test-agent")
	require.NoError(t, err)

	assert.Equal(t, "Successfully checked in!", res.Message)
	assert.Nil(t, res.WorkingHours)
	require.NotNil(t, res.Attendance.CheckInTime)
	assert.Nil(t, res.Attendance.CheckOutTime)
	assert.Equal(t, StatusPresent, res.Attendance.Status)
	assert.Equal(t, "qr-1", res.Attendance.QRCodeID)
	assert.Equal(t, "office-1", res.Attendance.OfficeLocationID)

	assert.Len(t, fs.days, 1)
	require.Len(t, fs.logs, 1)
	assert.Equal(t, ActionCheckIn, fs.logs[0].Type)
	assert.Equal(t, 0, fs.logs[0].DistanceMeters)
	assert.Equal(t, "test-agent", fs.logs[0].DeviceInfo)
	assert.Equal(t, res.Attendance.ID, fs.logs[0].AttendanceID)
}

func TestRecordScanLateCheckIn(t *testing.T) {
	clock := time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)
	svc, _ := newTestService(t, clock)

	res, err := svc.RecordScan(context.Background(), "user-1", scanReq("check_in", officeLat, officeLng), "")
	require.NoError(t, err)
	assert.Equal(t, StatusLate, res.Attendance.Status)
}

func TestRecordScanDoubleCheckIn(t *testing.T) {
	clock := time.Date(2026, 1, 5, 7, 30, 0, 0, time.UTC)
	svc, fs := newTestService(t, clock)

	_, err := svc.RecordScan(context.Background(), "user-1", scanReq("check_in", officeLat, officeLng), "")
	require.NoError(t, err)

	// Different but still in-range coordinates do not matter.
	_, err = svc.RecordScan(context.Background(), "user-1", scanReq("check_in", officeLat+0.0001, officeLng), "")
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Len(t, fs.days, 1)
	assert.Len(t, fs.logs, 1)
}

func TestRecordScanCheckOutBeforeCheckIn(t *testing.T) {
	clock := time.Date(2026, 1, 5, 17, 0, 0, 0, time.UTC)
	svc, fs := newTestService(t, clock)

	_, err := svc.RecordScan(context.Background(), "user-1", scanReq("check_out", officeLat, officeLng), "")
	assert.ErrorIs(t, err, ErrMustCheckInFirst)
	assert.Empty(t, fs.days)
	assert.Empty(t, fs.logs)
}

func TestRecordScanFullDay(t *testing.T) {
	in := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	svcIn, fs := newTestService(t, in)
	_, err := svcIn.RecordScan(context.Background(), "user-1", scanReq("check_in", officeLat, officeLng), "")
	require.NoError(t, err)

	// Same store, clock moved 8 hours ahead for the check-out.
	out := in.Add(8 * time.Hour)
	svcOut := NewService(fs, 8, func() time.Time { return out })
	res, err := svcOut.RecordScan(context.Background(), "user-1", scanReq("check_out", officeLat, officeLng), "")
	require.NoError(t, err)

	assert.Equal(t, "Successfully checked out!", res.Message)
	require.NotNil(t, res.WorkingHours)
	assert.Equal(t, 8.0, *res.WorkingHours)
	assert.Equal(t, StatusPresent, res.Attendance.Status) // unchanged by check-out
	assert.Len(t, fs.logs, 2)

	// Third scan of either kind is rejected.
	_, err = svcOut.RecordScan(context.Background(), "user-1", scanReq("check_out", officeLat, officeLng), "")
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
}

func TestRecordScanExpiredCode(t *testing.T) {
	clock := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	svc, fs := newTestService(t, clock)
	fs.codes["tok-1"].ExpiresAt = clock.Add(-time.Minute)
	fs.codes["tok-1"].IsActive = true // active flag does not rescue an expired code

	_, err := svc.RecordScan(context.Background(), "user-1", scanReq("check_in", officeLat, officeLng), "")
	require.Error(t, err)
	var api *apierr.Error
	require.True(t, errors.As(err, &api))
	assert.Equal(t, apierr.CodeInvalidArgument, api.Code)
	assert.Equal(t, "Invalid or expired QR code.", api.Message)
}

func TestRecordScanInactiveCode(t *testing.T) {
	clock := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	svc, fs := newTestService(t, clock)
	fs.codes["tok-1"].IsActive = false

	_, err := svc.RecordScan(context.Background(), "user-1", scanReq("check_in", officeLat, officeLng), "")
	require.Error(t, err)
	assert.Equal(t, "Invalid or expired QR code.", apierr.Body(err)["error"])
}

func TestRecordScanUnknownCode(t *testing.T) {
	clock := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, clock)

	req := ScanRequest{QRCode: "nope", Type: "check_in", Latitude: officeLat, Longitude: officeLng}
	_, err := svc.RecordScan(context.Background(), "user-1", req, "")
	require.Error(t, err)
	assert.Equal(t, "Invalid or expired QR code.", apierr.Body(err)["error"])
}

func TestRecordScanOutOfRange(t *testing.T) {
	clock := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	svc, fs := newTestService(t, clock)

	_, err := svc.RecordScan(context.Background(), "user-1", scanReq("check_in", -6.300000, 106.916666), "")
	require.Error(t, err)

	var api *apierr.Error
	require.True(t, errors.As(err, &api))
	assert.Equal(t, apierr.CodePolicyViolation, api.Code)
	assert.Equal(t, 100, api.Extra["allowed_radius"])
	assert.Greater(t, api.Extra["distance"].(float64), 100.0)
	assert.Empty(t, fs.days)
}

func TestRecordScanMissingEmployeeProfile(t *testing.T) {
	clock := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, clock)

	_, err := svc.RecordScan(context.Background(), "nobody", scanReq("check_in", officeLat, officeLng), "")
	require.Error(t, err)
	var api *apierr.Error
	require.True(t, errors.As(err, &api))
	assert.Equal(t, apierr.CodeNotFound, api.Code)
	assert.Equal(t, "Employee profile not found.", api.Message)
}

func TestRecordScanInvalidInput(t *testing.T) {
	clock := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, clock)

	_, err := svc.RecordScan(context.Background(), "user-1", scanReq("check_sideways", officeLat, officeLng), "")
	require.Error(t, err)
	assert.Equal(t, apierr.CodeInvalidArgument, errAs(t, err).Code)

	_, err = svc.RecordScan(context.Background(), "user-1", scanReq("check_in", 91, officeLng), "")
	require.Error(t, err)
	assert.Equal(t, apierr.CodeInvalidArgument, errAs(t, err).Code)
}

// TestRecordScanCreateRace covers losing the insert race for the daily
// record: the retry re-reads the winner's row and rejects the duplicate
// check-in against it.
func TestRecordScanCreateRace(t *testing.T) {
	clock := time.Date(2026, 1, 5, 7, 30, 0, 0, time.UTC)
	svc, fs := newTestService(t, clock)

	winnerIn := clock.Add(-time.Minute)
	fs.raceRow = &Attendance{
		ID: "att-winner", EmployeeID: "emp-1",
		QRCodeID: "qr-1", OfficeLocationID: "office-1",
		Date:        time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		CheckInTime: &winnerIn, Status: StatusPresent,
	}

	_, err := svc.RecordScan(context.Background(), "user-1", scanReq("check_in", officeLat, officeLng), "")
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Empty(t, fs.logs) // the losing request writes nothing
	assert.Len(t, fs.days, 1)
}

// A check-out against a record created by another request proceeds normally.
func TestRecordScanCheckOutAgainstExistingRecord(t *testing.T) {
	clock := time.Date(2026, 1, 5, 17, 0, 0, 0, time.UTC)
	svc, fs := newTestService(t, clock)

	winnerIn := time.Date(2026, 1, 5, 8, 30, 0, 0, time.UTC)
	winner := Attendance{
		ID: "att-winner", EmployeeID: "emp-1",
		QRCodeID: "qr-1", OfficeLocationID: "office-1",
		Date:        time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		CheckInTime: &winnerIn, Status: StatusLate,
	}
	fs.days[dayKey(winner.EmployeeID, winner.Date)] = winner

	res, err := svc.RecordScan(context.Background(), "user-1", scanReq("check_out", officeLat, officeLng), "")
	require.NoError(t, err)
	require.NotNil(t, res.WorkingHours)
	assert.Equal(t, 8.5, *res.WorkingHours)
}

func errAs(t *testing.T, err error) *apierr.Error {
	t.Helper()
	var api *apierr.Error
	require.True(t, errors.As(err, &api))
	return api
}

func TestTodayView(t *testing.T) {
	clock := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	svc, fs := newTestService(t, clock)

	view, err := svc.Today(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, view.Today)
	assert.True(t, view.CanCheckIn)
	assert.False(t, view.CanCheckOut)

	_, err = svc.RecordScan(context.Background(), "user-1", scanReq("check_in", officeLat, officeLng), "")
	require.NoError(t, err)

	view, err = svc.Today(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, view.Today)
	assert.False(t, view.CanCheckIn)
	assert.True(t, view.CanCheckOut)
	assert.Len(t, view.Recent, 1)
	_ = fs
}

func TestReportStatistics(t *testing.T) {
	clock := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC) // Wednesday
	svc, fs := newTestService(t, clock)

	seed := func(day time.Time, status Status, worked time.Duration) {
		in := day.Add(8 * time.Hour)
		a := Attendance{
			ID: "att-" + day.Format(dateLayout), EmployeeID: "emp-1",
			QRCodeID: "qr-1", OfficeLocationID: "office-1",
			Date: day, Status: status, CheckInTime: &in,
		}
		if worked > 0 {
			out := in.Add(worked)
			a.CheckOutTime = &out
		}
		fs.days[dayKey("emp-1", day)] = a
	}

	seed(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), StatusPresent, 8*time.Hour)
	seed(time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), StatusLate, 7*time.Hour+30*time.Minute)
	seed(time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), StatusPresent, 0) // still checked in
	// Outside the week; must not be counted.
	seed(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), StatusPresent, 8*time.Hour)

	res, err := svc.Report(context.Background(), "user-1", "week", "2026-01-07")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Statistics.TotalDays)
	assert.Equal(t, 2, res.Statistics.PresentDays)
	assert.Equal(t, 1, res.Statistics.LateDays)
	assert.Equal(t, 15.5, res.Statistics.TotalWorkingHours)
	assert.InDelta(t, 5.2, res.Statistics.AverageWorkingHours, 1e-9)
	assert.Len(t, res.Attendances, 3)
}

func TestReportRejectsBadInput(t *testing.T) {
	clock := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, clock)

	_, err := svc.Report(context.Background(), "user-1", "decade", "")
	require.Error(t, err)
	assert.Equal(t, apierr.CodeInvalidArgument, errAs(t, err).Code)

	_, err = svc.Report(context.Background(), "user-1", "week", "01/05/2026")
	require.Error(t, err)
	assert.Equal(t, apierr.CodeInvalidArgument, errAs(t, err).Code)
}
