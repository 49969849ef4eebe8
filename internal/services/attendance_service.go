package services

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"time"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/repositories"
	"venue_ops_backend/pkg/utils"
)

// --- Custom Service Errors for attendance ---
var (
	ErrShiftValidation    = errors.New("shift validation error")
	ErrTimecardValidation = errors.New("timecard validation error")
	ErrAlreadyClockedIn   = errors.New("already clocked in today")
	ErrAlreadyClockedOut  = errors.New("already clocked out today")
	ErrNotClockedIn       = errors.New("not clocked in")
	ErrBreakAlreadyTaken  = errors.New("break already taken today")
	ErrNotOnBreak         = errors.New("not currently on break")
	ErrTimeRecordNotFound = errors.New("time record not found")
)

// --- Attendance DTOs ---

type MonthShiftsResponse struct {
	Month    string         `json:"month"`
	Schedule MonthSchedule  `json:"schedule"`
	Shifts   []models.Shift `json:"shifts"`
}

type UpdateTimeRecordRequest struct {
	ClockIn    *string `json:"clock_in"`
	ClockOut   *string `json:"clock_out"`
	BreakStart *string `json:"break_start"`
	BreakEnd   *string `json:"break_end"`
	Notes      *string `json:"notes"`
}

type TimecardRow struct {
	Record models.TimeRecord `json:"record"`
	Status string            `json:"status"`
}

// --- AttendanceService Interface ---
type AttendanceService interface {
	BulkUpdateMonth(userID int64, yearMonth string, schedule MonthSchedule) (*MonthShiftsResponse, error)
	GetMonthShifts(userID int64, yearMonth string) (*MonthShiftsResponse, error)
	ListShiftsForDate(date time.Time) ([]models.Shift, error)

	ClockIn(userID int64) (*models.TimeRecord, error)
	ClockOut(userID int64) (*models.TimeRecord, error)
	StartBreak(userID int64) (*models.TimeRecord, error)
	EndBreak(userID int64) (*models.TimeRecord, error)
	GetTodayRecord(userID int64) (*models.TimeRecord, error)
	GetMonthTimecard(userID int64, yearMonth string) ([]TimecardRow, error)
	EditTimeRecord(userID int64, date string, editorID int64, req UpdateTimeRecordRequest) (*models.TimeRecord, error)
	ExportMonthCSV(userID int64, yearMonth string) ([]byte, error)
}

// --- attendanceService Implementation ---
type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	authRepo       repositories.AuthRepository
	db             *sql.DB
	now            func() time.Time
}

// NewAttendanceService creates a new instance of AttendanceService.
func NewAttendanceService(ar repositories.AttendanceRepository, ur repositories.AuthRepository, db *sql.DB) AttendanceService {
	return &attendanceService{
		attendanceRepo: ar,
		authRepo:       ur,
		db:             db,
		now:            time.Now,
	}
}

func monthBounds(yearMonth string) (time.Time, time.Time, error) {
	month, err := utils.ParseYearMonth(yearMonth)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrShiftValidation, err)
	}
	from := month
	to := month.AddDate(0, 1, -1)
	return from, to, nil
}

// BulkUpdateMonth replaces the user's whole month of shifts in one
// transaction. Partial updates of a month are never written.
func (s *attendanceService) BulkUpdateMonth(userID int64, yearMonth string, schedule MonthSchedule) (*MonthShiftsResponse, error) {
	if !models.IsValidShiftStatus(schedule.DefaultStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrShiftValidation, schedule.DefaultStatus)
	}
	from, to, err := monthBounds(yearMonth)
	if err != nil {
		return nil, err
	}
	for _, d := range schedule.ExceptionDates {
		date, parseErr := utils.ParseDate(d)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrShiftValidation, parseErr)
		}
		if date.Before(from) || date.After(to) {
			return nil, fmt.Errorf("%w: exception date %s outside %s", ErrShiftValidation, d, yearMonth)
		}
	}
	if _, err := s.authRepo.GetUserByID(userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to validate user: %w", err)
	}

	expanded := ExpandMonthSchedule(from, schedule)
	dates := make([]string, 0, len(expanded))
	for d := range expanded {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.attendanceRepo.DeleteShiftsForMonth(tx, userID, from, to); err != nil {
		return nil, err
	}
	for _, d := range dates {
		date, _ := utils.ParseDate(d)
		shift := &models.Shift{UserID: userID, Date: date, Status: expanded[d]}
		if err := s.attendanceRepo.InsertShift(tx, shift); err != nil {
			return nil, fmt.Errorf("failed to insert shift for %s: %w", d, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetMonthShifts(userID, yearMonth)
}

func (s *attendanceService) GetMonthShifts(userID int64, yearMonth string) (*MonthShiftsResponse, error) {
	from, to, err := monthBounds(yearMonth)
	if err != nil {
		return nil, err
	}
	shifts, err := s.attendanceRepo.ListShiftsForMonth(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return &MonthShiftsResponse{
		Month:    yearMonth,
		Schedule: DeriveMonthSummary(shifts),
		Shifts:   shifts,
	}, nil
}

func (s *attendanceService) ListShiftsForDate(date time.Time) ([]models.Shift, error) {
	shifts, err := s.attendanceRepo.ListShiftsForDate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts for date: %w", err)
	}
	return shifts, nil
}

func (s *attendanceService) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *attendanceService) todayRecord(userID int64) (*models.TimeRecord, error) {
	rec, err := s.attendanceRepo.GetTimeRecord(userID, s.today())
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to get time record: %w", err)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return rec, nil
}

func (s *attendanceService) ClockIn(userID int64) (*models.TimeRecord, error) {
	rec, err := s.todayRecord(userID)
	if err != nil {
		return nil, err
	}
	if rec != nil && rec.ClockIn != nil {
		return nil, ErrAlreadyClockedIn
	}
	now := s.now()
	if rec == nil {
		rec = &models.TimeRecord{UserID: userID, Date: s.today(), ClockIn: &now}
		created, createErr := s.attendanceRepo.CreateTimeRecord(s.db, rec)
		if createErr != nil {
			if errors.Is(createErr, repositories.ErrDuplicateKey) {
				return nil, ErrAlreadyClockedIn
			}
			return nil, fmt.Errorf("failed to create time record: %w", createErr)
		}
		return created, nil
	}
	rec.ClockIn = &now
	updated, err := s.attendanceRepo.UpdateTimeRecord(s.db, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to update time record: %w", err)
	}
	return updated, nil
}

func (s *attendanceService) ClockOut(userID int64) (*models.TimeRecord, error) {
	rec, err := s.todayRecord(userID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.ClockIn == nil {
		return nil, ErrNotClockedIn
	}
	if rec.ClockOut != nil {
		return nil, ErrAlreadyClockedOut
	}
	now := s.now()
	// Clocking out while on break closes the break first.
	if rec.BreakStart != nil && rec.BreakEnd == nil {
		rec.BreakEnd = &now
	}
	rec.ClockOut = &now
	applyBreakMinutes(rec)
	updated, err := s.attendanceRepo.UpdateTimeRecord(s.db, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to update time record: %w", err)
	}
	return updated, nil
}

func (s *attendanceService) StartBreak(userID int64) (*models.TimeRecord, error) {
	rec, err := s.todayRecord(userID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.ClockIn == nil {
		return nil, ErrNotClockedIn
	}
	if rec.ClockOut != nil {
		return nil, ErrAlreadyClockedOut
	}
	if rec.BreakStart != nil {
		return nil, ErrBreakAlreadyTaken
	}
	now := s.now()
	rec.BreakStart = &now
	updated, err := s.attendanceRepo.UpdateTimeRecord(s.db, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to update time record: %w", err)
	}
	return updated, nil
}

func (s *attendanceService) EndBreak(userID int64) (*models.TimeRecord, error) {
	rec, err := s.todayRecord(userID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.BreakStart == nil || rec.BreakEnd != nil {
		return nil, ErrNotOnBreak
	}
	if rec.ClockOut != nil {
		return nil, ErrAlreadyClockedOut
	}
	now := s.now()
	rec.BreakEnd = &now
	applyBreakMinutes(rec)
	updated, err := s.attendanceRepo.UpdateTimeRecord(s.db, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to update time record: %w", err)
	}
	return updated, nil
}

func applyBreakMinutes(rec *models.TimeRecord) {
	if rec.BreakStart == nil || rec.BreakEnd == nil {
		return
	}
	minutes := int(rec.BreakEnd.Sub(*rec.BreakStart).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	rec.BreakMinutes = &minutes
}

func (s *attendanceService) GetTodayRecord(userID int64) (*models.TimeRecord, error) {
	rec, err := s.todayRecord(userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &models.TimeRecord{UserID: userID, Date: s.today()}, nil
	}
	return rec, nil
}

func (s *attendanceService) GetMonthTimecard(userID int64, yearMonth string) ([]TimecardRow, error) {
	from, to, err := monthBounds(yearMonth)
	if err != nil {
		return nil, err
	}
	records, err := s.attendanceRepo.ListTimeRecordsForMonth(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list time records: %w", err)
	}
	rows := make([]TimecardRow, 0, len(records))
	for i := range records {
		rows = append(rows, TimecardRow{Record: records[i], Status: records[i].Status()})
	}
	return rows, nil
}

func parsePunchTime(date time.Time, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	if *value == "" {
		return nil, nil
	}
	t, err := time.Parse("15:04", *value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid time %q", ErrTimecardValidation, *value)
	}
	punched := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	return &punched, nil
}

// EditTimeRecord lets a manager overwrite punch fields directly. Every edit
// is stamped with who made it and when.
func (s *attendanceService) EditTimeRecord(userID int64, dateStr string, editorID int64, req UpdateTimeRecordRequest) (*models.TimeRecord, error) {
	date, err := utils.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimecardValidation, err)
	}
	rec, err := s.attendanceRepo.GetTimeRecord(userID, date)
	creating := false
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to get time record: %w", err)
		}
		creating = true
		rec = &models.TimeRecord{UserID: userID, Date: date}
	}

	if req.ClockIn != nil {
		if rec.ClockIn, err = parsePunchTime(date, req.ClockIn); err != nil {
			return nil, err
		}
	}
	if req.ClockOut != nil {
		if rec.ClockOut, err = parsePunchTime(date, req.ClockOut); err != nil {
			return nil, err
		}
	}
	if req.BreakStart != nil {
		if rec.BreakStart, err = parsePunchTime(date, req.BreakStart); err != nil {
			return nil, err
		}
	}
	if req.BreakEnd != nil {
		if rec.BreakEnd, err = parsePunchTime(date, req.BreakEnd); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		rec.Notes = req.Notes
	}
	if rec.ClockIn != nil && rec.ClockOut != nil && rec.ClockOut.Before(*rec.ClockIn) {
		return nil, fmt.Errorf("%w: clock-out before clock-in", ErrTimecardValidation)
	}
	if rec.BreakEnd != nil && rec.BreakStart == nil {
		return nil, fmt.Errorf("%w: break end without break start", ErrTimecardValidation)
	}
	rec.BreakMinutes = nil
	applyBreakMinutes(rec)

	now := s.now()
	rec.ModifiedBy = &editorID
	rec.ModifiedAt = &now

	if creating {
		created, createErr := s.attendanceRepo.CreateTimeRecord(s.db, rec)
		if createErr != nil {
			return nil, fmt.Errorf("failed to create time record: %w", createErr)
		}
		return created, nil
	}
	updated, err := s.attendanceRepo.UpdateTimeRecord(s.db, rec)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTimeRecordNotFound
		}
		return nil, fmt.Errorf("failed to update time record: %w", err)
	}
	return updated, nil
}

func formatPunch(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

// ExportMonthCSV renders the user's month of timecards as CSV for payroll.
func (s *attendanceService) ExportMonthCSV(userID int64, yearMonth string) ([]byte, error) {
	user, err := s.authRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	rows, err := s.GetMonthTimecard(userID, yearMonth)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "staff", "clock_in", "clock_out", "break_minutes", "worked_minutes", "status", "notes"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		rec := row.Record
		breakMinutes := 0
		if rec.BreakMinutes != nil {
			breakMinutes = *rec.BreakMinutes
		}
		worked := ""
		if rec.ClockIn != nil && rec.ClockOut != nil {
			minutes := int(rec.ClockOut.Sub(*rec.ClockIn).Minutes()) - breakMinutes
			if minutes < 0 {
				minutes = 0
			}
			worked = utils.Int64ToStr(int64(minutes))
		}
		notes := ""
		if rec.Notes != nil {
			notes = *rec.Notes
		}
		record := []string{
			rec.Date.Format(utils.DateLayout),
			user.DisplayName,
			formatPunch(rec.ClockIn),
			formatPunch(rec.ClockOut),
			utils.Int64ToStr(int64(breakMinutes)),
			worked,
			row.Status,
			notes,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
