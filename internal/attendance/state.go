package attendance

import (
	"time"

	"qrattend/internal/apierr"
)

// State is the per-employee-day position in the check-in lifecycle.
type State int

const (
	StateNone State = iota
	StateCheckedIn
	StateComplete
)

// StateOf derives the lifecycle state from a record; a nil record is StateNone.
func StateOf(a *Attendance) State {
	switch {
	case a == nil || a.CheckInTime == nil:
		return StateNone
	case a.CheckOutTime == nil:
		return StateCheckedIn
	default:
		return StateComplete
	}
}

var (
	ErrAlreadyCheckedIn  = apierr.Policy("Already checked in today.")
	ErrMustCheckInFirst  = apierr.Policy("Must check in first.")
	ErrAlreadyCheckedOut = apierr.Policy("Already checked out today.")
)

// Transition applies a scan action to the record at the given time, or
// rejects it when the action is illegal in the record's current state.
// Time is passed in so the logic stays deterministic under test. lateHour
// is the local hour at or after which a check-in is marked late.
func Transition(a *Attendance, action Action, now time.Time, lat, lng float64, lateHour int) error {
	state := StateOf(a)

	switch action {
	case ActionCheckIn:
		if state != StateNone {
			return ErrAlreadyCheckedIn
		}
		t := now
		a.CheckInTime = &t
		a.CheckInLatitude = &lat
		a.CheckInLongitude = &lng
		if now.Hour() >= lateHour {
			a.Status = StatusLate
		} else {
			a.Status = StatusPresent
		}
		return nil

	case ActionCheckOut:
		switch state {
		case StateNone:
			return ErrMustCheckInFirst
		case StateComplete:
			return ErrAlreadyCheckedOut
		}
		t := now
		a.CheckOutTime = &t
		a.CheckOutLatitude = &lat
		a.CheckOutLongitude = &lng
		return nil

	default:
		return apierr.Invalid("type must be check_in or check_out")
	}
}
