package repositories

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue_ops_backend/internal/models"
)

func setupAttendanceMock(t *testing.T) (*attendanceRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &attendanceRepository{db: db}, mock
}

func TestInsertShift(t *testing.T) {
	repo, mock := setupAttendanceMock(t)

	shift := &models.Shift{UserID: 3, Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Status: models.ShiftStatusWorking}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO shifts (user_id, date, status) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`)).
		WithArgs(shift.UserID, shift.Date, shift.Status).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), time.Now(), time.Now()))

	require.NoError(t, repo.InsertShift(repo.db, shift))
	assert.Equal(t, int64(1), shift.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteShiftsForMonth(t *testing.T) {
	repo, mock := setupAttendanceMock(t)

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shifts WHERE user_id = $1 AND date >= $2 AND date <= $3`)).
		WithArgs(int64(3), from, to).
		WillReturnResult(sqlmock.NewResult(0, 31))

	require.NoError(t, repo.DeleteShiftsForMonth(repo.db, 3, from, to))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTimeRecord_NullPunches(t *testing.T) {
	repo, mock := setupAttendanceMock(t)

	date := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "date", "clock_in", "clock_out", "break_start", "break_end",
		"break_minutes", "notes", "modified_by", "modified_at", "created_at", "updated_at"}).
		AddRow(int64(9), int64(3), date, nil, nil, nil, nil, nil, nil, nil, nil, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT .+ FROM time_records WHERE user_id = \$1 AND date = \$2`).
		WithArgs(int64(3), date).
		WillReturnRows(rows)

	rec, err := repo.GetTimeRecord(3, date)
	require.NoError(t, err)
	assert.Nil(t, rec.ClockIn)
	assert.Nil(t, rec.BreakMinutes)
	assert.Equal(t, models.TimeRecordNotStarted, rec.Status())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTimeRecord_NotFound(t *testing.T) {
	repo, mock := setupAttendanceMock(t)

	date := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM time_records`).
		WithArgs(int64(3), date).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetTimeRecord(3, date)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListShiftsForMonth(t *testing.T) {
	repo, mock := setupAttendanceMock(t)

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "date", "status", "created_at", "updated_at"}).
		AddRow(int64(1), int64(3), from, models.ShiftStatusWorking, time.Now(), time.Now()).
		AddRow(int64(2), int64(3), from.AddDate(0, 0, 1), models.ShiftStatusOff, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT .+ FROM shifts WHERE user_id = \$1 AND date >= \$2 AND date <= \$3`).
		WithArgs(int64(3), from, to).
		WillReturnRows(rows)

	shifts, err := repo.ListShiftsForMonth(3, from, to)
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, models.ShiftStatusOff, shifts[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
