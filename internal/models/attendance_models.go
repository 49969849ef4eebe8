package models

import "time"

// Shift statuses. A month of shifts is always rewritten in bulk as
// "default mode + exception dates", never edited per day.
const (
	ShiftStatusWorking = "working"
	ShiftStatusOff     = "off"
)

// IsValidShiftStatus reports whether s is a recognized shift status.
func IsValidShiftStatus(s string) bool {
	return s == ShiftStatusWorking || s == ShiftStatusOff
}

// OppositeShiftStatus returns the other of the two statuses.
func OppositeShiftStatus(s string) string {
	if s == ShiftStatusWorking {
		return ShiftStatusOff
	}
	return ShiftStatusWorking
}

// Shift is one attendance row per (user, date).
type Shift struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Date      time.Time `json:"date" db:"date"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Derived time-record statuses. There is no persisted status column; status
// is always computed from the punch fields.
const (
	TimeRecordNotStarted = "not_started"
	TimeRecordWorking    = "working"
	TimeRecordOnBreak    = "on_break"
	TimeRecordCompleted  = "completed"
)

// TimeRecord is one timecard row per (user, date). One break per day.
type TimeRecord struct {
	ID           int64      `json:"id" db:"id"`
	UserID       int64      `json:"user_id" db:"user_id"`
	Date         time.Time  `json:"date" db:"date"`
	ClockIn      *time.Time `json:"clock_in,omitempty" db:"clock_in"`
	ClockOut     *time.Time `json:"clock_out,omitempty" db:"clock_out"`
	BreakStart   *time.Time `json:"break_start,omitempty" db:"break_start"`
	BreakEnd     *time.Time `json:"break_end,omitempty" db:"break_end"`
	BreakMinutes *int       `json:"break_minutes,omitempty" db:"break_minutes"`
	Notes        *string    `json:"notes,omitempty" db:"notes"`
	ModifiedBy   *int64     `json:"modified_by,omitempty" db:"modified_by"`
	ModifiedAt   *time.Time `json:"modified_at,omitempty" db:"modified_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Status derives the timecard state from the punch fields.
func (r *TimeRecord) Status() string {
	switch {
	case r.ClockIn == nil:
		return TimeRecordNotStarted
	case r.ClockOut != nil:
		return TimeRecordCompleted
	case r.BreakStart != nil && r.BreakEnd == nil:
		return TimeRecordOnBreak
	default:
		return TimeRecordWorking
	}
}
