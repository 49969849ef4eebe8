package services

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/repositories"
)

type fakeAttendanceRepo struct {
	repositories.AttendanceRepository

	record  *models.TimeRecord
	records []models.TimeRecord

	created *models.TimeRecord
	updated *models.TimeRecord
}

func (f *fakeAttendanceRepo) GetTimeRecord(userID int64, date time.Time) (*models.TimeRecord, error) {
	if f.record == nil {
		return nil, repositories.ErrNotFound
	}
	return f.record, nil
}

func (f *fakeAttendanceRepo) CreateTimeRecord(executor repositories.SQLExecutor, rec *models.TimeRecord) (*models.TimeRecord, error) {
	rec.ID = 42
	f.created = rec
	return rec, nil
}

func (f *fakeAttendanceRepo) UpdateTimeRecord(executor repositories.SQLExecutor, rec *models.TimeRecord) (*models.TimeRecord, error) {
	f.updated = rec
	return rec, nil
}

func (f *fakeAttendanceRepo) ListTimeRecordsForMonth(userID int64, from, to time.Time) ([]models.TimeRecord, error) {
	return f.records, nil
}

type fakeAuthRepo struct {
	repositories.AuthRepository

	user *models.User
}

func (f *fakeAuthRepo) GetUserByID(id int64) (*models.User, error) {
	if f.user == nil {
		return nil, repositories.ErrNotFound
	}
	return f.user, nil
}

var attendanceTestNow = time.Date(2026, 5, 20, 14, 30, 0, 0, time.UTC)

func newAttendanceServiceForTest(ar *fakeAttendanceRepo, ur *fakeAuthRepo) *attendanceService {
	svc := NewAttendanceService(ar, ur, nil).(*attendanceService)
	svc.now = func() time.Time { return attendanceTestNow }
	return svc
}

func ts(hour, minute int) *time.Time {
	t := time.Date(2026, 5, 20, hour, minute, 0, 0, time.UTC)
	return &t
}

func TestTimeRecordStatusDerivation(t *testing.T) {
	tests := []struct {
		name string
		rec  models.TimeRecord
		want string
	}{
		{"no punches", models.TimeRecord{}, models.TimeRecordNotStarted},
		{"clocked in", models.TimeRecord{ClockIn: ts(9, 0)}, models.TimeRecordWorking},
		{"on break", models.TimeRecord{ClockIn: ts(9, 0), BreakStart: ts(12, 0)}, models.TimeRecordOnBreak},
		{"break finished", models.TimeRecord{ClockIn: ts(9, 0), BreakStart: ts(12, 0), BreakEnd: ts(12, 45)}, models.TimeRecordWorking},
		{"clocked out", models.TimeRecord{ClockIn: ts(9, 0), ClockOut: ts(18, 0)}, models.TimeRecordCompleted},
		{"clocked out skips break state", models.TimeRecord{ClockIn: ts(9, 0), BreakStart: ts(12, 0), ClockOut: ts(18, 0)}, models.TimeRecordCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Status())
		})
	}
}

func TestClockIn_CreatesRecord(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := newAttendanceServiceForTest(repo, &fakeAuthRepo{})

	rec, err := svc.ClockIn(3)
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, attendanceTestNow, *rec.ClockIn)
	assert.Equal(t, models.TimeRecordWorking, rec.Status())
}

func TestClockIn_Twice(t *testing.T) {
	repo := &fakeAttendanceRepo{record: &models.TimeRecord{UserID: 3, ClockIn: ts(9, 0)}}
	svc := newAttendanceServiceForTest(repo, &fakeAuthRepo{})

	_, err := svc.ClockIn(3)
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)
}

func TestClockOut_WithoutClockIn(t *testing.T) {
	svc := newAttendanceServiceForTest(&fakeAttendanceRepo{}, &fakeAuthRepo{})

	_, err := svc.ClockOut(3)
	assert.ErrorIs(t, err, ErrNotClockedIn)
}

func TestClockOut_ComputesBreakMinutes(t *testing.T) {
	repo := &fakeAttendanceRepo{record: &models.TimeRecord{
		UserID: 3, ClockIn: ts(9, 0), BreakStart: ts(12, 0), BreakEnd: ts(12, 45),
	}}
	svc := newAttendanceServiceForTest(repo, &fakeAuthRepo{})

	rec, err := svc.ClockOut(3)
	require.NoError(t, err)
	require.NotNil(t, rec.BreakMinutes)
	assert.Equal(t, 45, *rec.BreakMinutes)
	assert.Equal(t, models.TimeRecordCompleted, rec.Status())
}

func TestClockOut_ClosesOpenBreak(t *testing.T) {
	// Clocking out at 14:30 with a break open since 12:00 ends the break at
	// clock-out time.
	repo := &fakeAttendanceRepo{record: &models.TimeRecord{
		UserID: 3, ClockIn: ts(9, 0), BreakStart: ts(12, 0),
	}}
	svc := newAttendanceServiceForTest(repo, &fakeAuthRepo{})

	rec, err := svc.ClockOut(3)
	require.NoError(t, err)
	require.NotNil(t, rec.BreakEnd)
	assert.Equal(t, attendanceTestNow, *rec.BreakEnd)
	require.NotNil(t, rec.BreakMinutes)
	assert.Equal(t, 150, *rec.BreakMinutes)
}

func TestStartBreak_OnlyOncePerDay(t *testing.T) {
	repo := &fakeAttendanceRepo{record: &models.TimeRecord{
		UserID: 3, ClockIn: ts(9, 0), BreakStart: ts(11, 0), BreakEnd: ts(11, 30),
	}}
	svc := newAttendanceServiceForTest(repo, &fakeAuthRepo{})

	_, err := svc.StartBreak(3)
	assert.ErrorIs(t, err, ErrBreakAlreadyTaken)
}

func TestStartBreak_RequiresClockIn(t *testing.T) {
	svc := newAttendanceServiceForTest(&fakeAttendanceRepo{}, &fakeAuthRepo{})

	_, err := svc.StartBreak(3)
	assert.ErrorIs(t, err, ErrNotClockedIn)
}

func TestEndBreak_RequiresOpenBreak(t *testing.T) {
	repo := &fakeAttendanceRepo{record: &models.TimeRecord{UserID: 3, ClockIn: ts(9, 0)}}
	svc := newAttendanceServiceForTest(repo, &fakeAuthRepo{})

	_, err := svc.EndBreak(3)
	assert.ErrorIs(t, err, ErrNotOnBreak)
}

func TestEndBreak_ComputesMinutes(t *testing.T) {
	repo := &fakeAttendanceRepo{record: &models.TimeRecord{
		UserID: 3, ClockIn: ts(9, 0), BreakStart: ts(14, 0),
	}}
	svc := newAttendanceServiceForTest(repo, &fakeAuthRepo{})

	rec, err := svc.EndBreak(3)
	require.NoError(t, err)
	require.NotNil(t, rec.BreakMinutes)
	assert.Equal(t, 30, *rec.BreakMinutes)
}

func TestPunchesAfterClockOutRejected(t *testing.T) {
	repo := &fakeAttendanceRepo{record: &models.TimeRecord{
		UserID: 3, ClockIn: ts(9, 0), ClockOut: ts(13, 0),
	}}
	svc := newAttendanceServiceForTest(repo, &fakeAuthRepo{})

	_, err := svc.ClockOut(3)
	assert.ErrorIs(t, err, ErrAlreadyClockedOut)
	_, err = svc.StartBreak(3)
	assert.ErrorIs(t, err, ErrAlreadyClockedOut)
}

func TestEditTimeRecord_StampsAudit(t *testing.T) {
	clockIn := time.Date(2026, 5, 18, 9, 0, 0, 0, time.UTC)
	repo := &fakeAttendanceRepo{record: &models.TimeRecord{
		UserID: 3, Date: time.Date(2026, 5, 18, 0, 0, 0, 0, time.UTC), ClockIn: &clockIn,
	}}
	svc := newAttendanceServiceForTest(repo, &fakeAuthRepo{})

	out := "18:15"
	rec, err := svc.EditTimeRecord(3, "2026-05-18", 9, UpdateTimeRecordRequest{ClockOut: &out})
	require.NoError(t, err)
	require.NotNil(t, rec.ModifiedBy)
	assert.Equal(t, int64(9), *rec.ModifiedBy)
	assert.Equal(t, attendanceTestNow, *rec.ModifiedAt)
	assert.Equal(t, 18, rec.ClockOut.Hour())
}

func TestEditTimeRecord_RejectsClockOutBeforeClockIn(t *testing.T) {
	clockIn := time.Date(2026, 5, 18, 9, 0, 0, 0, time.UTC)
	repo := &fakeAttendanceRepo{record: &models.TimeRecord{
		UserID: 3, Date: time.Date(2026, 5, 18, 0, 0, 0, 0, time.UTC), ClockIn: &clockIn,
	}}
	svc := newAttendanceServiceForTest(repo, &fakeAuthRepo{})

	out := "08:00"
	_, err := svc.EditTimeRecord(3, "2026-05-18", 9, UpdateTimeRecordRequest{ClockOut: &out})
	assert.ErrorIs(t, err, ErrTimecardValidation)
}

func TestExportMonthCSV(t *testing.T) {
	breakMinutes := 45
	repo := &fakeAttendanceRepo{records: []models.TimeRecord{
		{
			UserID:       3,
			Date:         time.Date(2026, 5, 18, 0, 0, 0, 0, time.UTC),
			ClockIn:      ts(9, 0),
			ClockOut:     ts(18, 0),
			BreakMinutes: &breakMinutes,
		},
	}}
	ur := &fakeAuthRepo{user: &models.User{ID: 3, DisplayName: "Tanaka"}}
	svc := newAttendanceServiceForTest(repo, ur)

	data, err := svc.ExportMonthCSV(3, "2026-05")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "date,staff,clock_in,clock_out,break_minutes,worked_minutes,status,notes", lines[0])
	// 9h span minus a 45-minute break.
	assert.Equal(t, "2026-05-18,Tanaka,09:00,18:00,45,495,completed,", lines[1])
}

func TestBulkUpdateMonth_ReplacesWholeMonthInOneTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repositories.NewAttendanceRepository(db)
	svc := NewAttendanceService(repo, &fakeAuthRepo{user: &models.User{ID: 3}}, db)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shifts WHERE user_id = $1 AND date >= $2 AND date <= $3`)).
		WithArgs(int64(3), from, to).
		WillReturnResult(sqlmock.NewResult(0, 31))

	insertPattern := regexp.QuoteMeta(`INSERT INTO shifts (user_id, date, status) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`)
	listRows := sqlmock.NewRows([]string{"id", "user_id", "date", "status", "created_at", "updated_at"})
	for d := 0; d < 31; d++ {
		date := from.AddDate(0, 0, d)
		status := models.ShiftStatusWorking
		if d == 4 || d == 16 {
			status = models.ShiftStatusOff
		}
		mock.ExpectQuery(insertPattern).
			WithArgs(int64(3), date, status).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(d+1), attendanceTestNow, attendanceTestNow))
		listRows.AddRow(int64(d+1), int64(3), date, status, attendanceTestNow, attendanceTestNow)
	}
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT .+ FROM shifts WHERE user_id = \$1 AND date >= \$2 AND date <= \$3`).
		WithArgs(int64(3), from, to).
		WillReturnRows(listRows)

	resp, err := svc.BulkUpdateMonth(3, "2026-01", MonthSchedule{
		DefaultStatus:  models.ShiftStatusWorking,
		ExceptionDates: []string{"2026-01-05", "2026-01-17"},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Shifts, 31)
	assert.Equal(t, models.ShiftStatusWorking, resp.Schedule.DefaultStatus)
	assert.ElementsMatch(t, []string{"2026-01-05", "2026-01-17"}, resp.Schedule.ExceptionDates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdateMonth_RejectsOutOfMonthException(t *testing.T) {
	svc := newAttendanceServiceForTest(&fakeAttendanceRepo{}, &fakeAuthRepo{user: &models.User{ID: 3}})

	_, err := svc.BulkUpdateMonth(3, "2026-05", MonthSchedule{
		DefaultStatus:  models.ShiftStatusWorking,
		ExceptionDates: []string{"2026-06-01"},
	})
	assert.ErrorIs(t, err, ErrShiftValidation)
}

func TestBulkUpdateMonth_RejectsUnknownStatus(t *testing.T) {
	svc := newAttendanceServiceForTest(&fakeAttendanceRepo{}, &fakeAuthRepo{user: &models.User{ID: 3}})

	_, err := svc.BulkUpdateMonth(3, "2026-05", MonthSchedule{DefaultStatus: "vacation"})
	assert.ErrorIs(t, err, ErrShiftValidation)
}
