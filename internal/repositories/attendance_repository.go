package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"venue_ops_backend/internal/models"
)

// AttendanceRepository covers shift rows and timecard rows. Shift months are
// always replaced wholesale inside a caller-owned transaction.
type AttendanceRepository interface {
	DeleteShiftsForMonth(executor SQLExecutor, userID int64, from, to time.Time) error
	InsertShift(executor SQLExecutor, shift *models.Shift) error
	ListShiftsForMonth(userID int64, from, to time.Time) ([]models.Shift, error)
	ListShiftsForDate(date time.Time) ([]models.Shift, error)

	GetTimeRecord(userID int64, date time.Time) (*models.TimeRecord, error)
	CreateTimeRecord(executor SQLExecutor, rec *models.TimeRecord) (*models.TimeRecord, error)
	UpdateTimeRecord(executor SQLExecutor, rec *models.TimeRecord) (*models.TimeRecord, error)
	ListTimeRecordsForMonth(userID int64, from, to time.Time) ([]models.TimeRecord, error)
}

type attendanceRepository struct {
	db *sql.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) DeleteShiftsForMonth(executor SQLExecutor, userID int64, from, to time.Time) error {
	if _, err := executor.Exec(`DELETE FROM shifts WHERE user_id = $1 AND date >= $2 AND date <= $3`, userID, from, to); err != nil {
		return fmt.Errorf("%w: deleting shifts for month: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *attendanceRepository) InsertShift(executor SQLExecutor, shift *models.Shift) error {
	query := `INSERT INTO shifts (user_id, date, status) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, shift.UserID, shift.Date, shift.Status).
		Scan(&shift.ID, &shift.CreatedAt, &shift.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("%w: inserting shift: %v", ErrDatabaseError, err)
	}
	return nil
}

const shiftColumns = `id, user_id, date, status, created_at, updated_at`

func (r *attendanceRepository) listShifts(query string, args ...interface{}) ([]models.Shift, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing shifts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var shifts []models.Shift
	for rows.Next() {
		var s models.Shift
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning shift: %v", ErrDatabaseError, err)
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

func (r *attendanceRepository) ListShiftsForMonth(userID int64, from, to time.Time) ([]models.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`
	return r.listShifts(query, userID, from, to)
}

func (r *attendanceRepository) ListShiftsForDate(date time.Time) ([]models.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE date = $1 ORDER BY user_id ASC`
	return r.listShifts(query, date)
}

const timeRecordColumns = `id, user_id, date, clock_in, clock_out, break_start, break_end, break_minutes, notes, modified_by, modified_at, created_at, updated_at`

func scanTimeRecord(row scanner) (*models.TimeRecord, error) {
	var rec models.TimeRecord
	var clockIn, clockOut, breakStart, breakEnd, modifiedAt sql.NullTime
	var breakMinutes sql.NullInt64
	var notes sql.NullString
	var modifiedBy sql.NullInt64

	err := row.Scan(&rec.ID, &rec.UserID, &rec.Date, &clockIn, &clockOut, &breakStart, &breakEnd,
		&breakMinutes, &notes, &modifiedBy, &modifiedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning time record: %v", ErrDatabaseError, err)
	}
	if clockIn.Valid {
		rec.ClockIn = &clockIn.Time
	}
	if clockOut.Valid {
		rec.ClockOut = &clockOut.Time
	}
	if breakStart.Valid {
		rec.BreakStart = &breakStart.Time
	}
	if breakEnd.Valid {
		rec.BreakEnd = &breakEnd.Time
	}
	if breakMinutes.Valid {
		m := int(breakMinutes.Int64)
		rec.BreakMinutes = &m
	}
	if notes.Valid {
		rec.Notes = &notes.String
	}
	if modifiedBy.Valid {
		rec.ModifiedBy = &modifiedBy.Int64
	}
	if modifiedAt.Valid {
		rec.ModifiedAt = &modifiedAt.Time
	}
	return &rec, nil
}

func (r *attendanceRepository) GetTimeRecord(userID int64, date time.Time) (*models.TimeRecord, error) {
	query := `SELECT ` + timeRecordColumns + ` FROM time_records WHERE user_id = $1 AND date = $2`
	return scanTimeRecord(r.db.QueryRow(query, userID, date))
}

func (r *attendanceRepository) CreateTimeRecord(executor SQLExecutor, rec *models.TimeRecord) (*models.TimeRecord, error) {
	query := `INSERT INTO time_records
	            (user_id, date, clock_in, clock_out, break_start, break_end, break_minutes, notes, modified_by, modified_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, rec.UserID, rec.Date, rec.ClockIn, rec.ClockOut, rec.BreakStart, rec.BreakEnd,
		rec.BreakMinutes, rec.Notes, rec.ModifiedBy, rec.ModifiedAt).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: creating time record: %v", ErrDatabaseError, err)
	}
	return rec, nil
}

func (r *attendanceRepository) UpdateTimeRecord(executor SQLExecutor, rec *models.TimeRecord) (*models.TimeRecord, error) {
	query := `UPDATE time_records
	          SET clock_in = $1, clock_out = $2, break_start = $3, break_end = $4, break_minutes = $5,
	              notes = $6, modified_by = $7, modified_at = $8, updated_at = NOW()
	          WHERE id = $9
	          RETURNING updated_at`
	err := executor.QueryRow(query, rec.ClockIn, rec.ClockOut, rec.BreakStart, rec.BreakEnd, rec.BreakMinutes,
		rec.Notes, rec.ModifiedBy, rec.ModifiedAt, rec.ID).
		Scan(&rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating time record: %v", ErrDatabaseError, err)
	}
	return rec, nil
}

func (r *attendanceRepository) ListTimeRecordsForMonth(userID int64, from, to time.Time) ([]models.TimeRecord, error) {
	query := `SELECT ` + timeRecordColumns + ` FROM time_records WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`
	rows, err := r.db.Query(query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: listing time records: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var records []models.TimeRecord
	for rows.Next() {
		rec, scanErr := scanTimeRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
