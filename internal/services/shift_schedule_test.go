package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue_ops_backend/internal/models"
)

func TestMonthScheduleWireFormat(t *testing.T) {
	payload, err := json.Marshal(MonthSchedule{
		DefaultStatus:  models.ShiftStatusWorking,
		ExceptionDates: []string{"2026-01-04"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"default_mode":"working","exception_dates":["2026-01-04"]}`, string(payload))

	var schedule MonthSchedule
	require.NoError(t, json.Unmarshal([]byte(`{"default_mode":"off","exception_dates":[]}`), &schedule))
	assert.Equal(t, models.ShiftStatusOff, schedule.DefaultStatus)
}

func TestExpandMonthSchedule_FullMonth(t *testing.T) {
	month := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expanded := ExpandMonthSchedule(month, MonthSchedule{
		DefaultStatus:  models.ShiftStatusWorking,
		ExceptionDates: []string{"2026-01-04", "2026-01-11"},
	})

	require.Len(t, expanded, 31)
	assert.Equal(t, models.ShiftStatusWorking, expanded["2026-01-01"])
	assert.Equal(t, models.ShiftStatusOff, expanded["2026-01-04"])
	assert.Equal(t, models.ShiftStatusOff, expanded["2026-01-11"])
	assert.Equal(t, models.ShiftStatusWorking, expanded["2026-01-31"])
}

func TestExpandMonthSchedule_FebruaryLengths(t *testing.T) {
	leap := ExpandMonthSchedule(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), MonthSchedule{DefaultStatus: models.ShiftStatusOff})
	assert.Len(t, leap, 29)

	plain := ExpandMonthSchedule(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), MonthSchedule{DefaultStatus: models.ShiftStatusOff})
	assert.Len(t, plain, 28)
}

func TestExpandMonthSchedule_IgnoresOutOfMonthExceptions(t *testing.T) {
	month := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	expanded := ExpandMonthSchedule(month, MonthSchedule{
		DefaultStatus:  models.ShiftStatusWorking,
		ExceptionDates: []string{"2026-07-01"},
	})
	for _, status := range expanded {
		assert.Equal(t, models.ShiftStatusWorking, status)
	}
}

func shiftsFromExpanded(expanded map[string]string, userID int64) []models.Shift {
	var shifts []models.Shift
	for dateStr, status := range expanded {
		date, _ := time.Parse("2006-01-02", dateStr)
		shifts = append(shifts, models.Shift{UserID: userID, Date: date, Status: status})
	}
	return shifts
}

func TestDeriveMonthSummary_RoundTrip(t *testing.T) {
	month := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	original := MonthSchedule{
		DefaultStatus:  models.ShiftStatusWorking,
		ExceptionDates: []string{"2026-01-04", "2026-01-11", "2026-01-18"},
	}

	expanded := ExpandMonthSchedule(month, original)
	derived := DeriveMonthSummary(shiftsFromExpanded(expanded, 1))

	assert.Equal(t, original.DefaultStatus, derived.DefaultStatus)
	assert.ElementsMatch(t, original.ExceptionDates, derived.ExceptionDates)
}

func TestDeriveMonthSummary_MajorityOff(t *testing.T) {
	var shifts []models.Shift
	for d := 1; d <= 30; d++ {
		status := models.ShiftStatusOff
		if d <= 10 {
			status = models.ShiftStatusWorking
		}
		shifts = append(shifts, models.Shift{Date: time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC), Status: status})
	}
	derived := DeriveMonthSummary(shifts)
	assert.Equal(t, models.ShiftStatusOff, derived.DefaultStatus)
	assert.Len(t, derived.ExceptionDates, 10)
}

func TestDeriveMonthSummary_TieDefaultsToWorking(t *testing.T) {
	var shifts []models.Shift
	for d := 1; d <= 30; d++ {
		status := models.ShiftStatusOff
		if d <= 15 {
			status = models.ShiftStatusWorking
		}
		shifts = append(shifts, models.Shift{Date: time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC), Status: status})
	}
	derived := DeriveMonthSummary(shifts)
	assert.Equal(t, models.ShiftStatusWorking, derived.DefaultStatus)
	assert.Len(t, derived.ExceptionDates, 15)
}

func TestDeriveMonthSummary_Empty(t *testing.T) {
	derived := DeriveMonthSummary(nil)
	assert.Equal(t, models.ShiftStatusWorking, derived.DefaultStatus)
	assert.Empty(t, derived.ExceptionDates)
}
