package services

import (
	"time"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/pkg/utils"
)

// MonthSchedule is the compact form a month of shifts is edited and stored
// as: one default status plus the dates that deviate from it.
type MonthSchedule struct {
	DefaultStatus  string   `json:"default_mode"`
	ExceptionDates []string `json:"exception_dates"`
}

// ExpandMonthSchedule turns a compact schedule into one status per calendar
// day of the month. Exception dates outside the month are ignored.
func ExpandMonthSchedule(month time.Time, schedule MonthSchedule) map[string]string {
	exceptions := make(map[string]bool, len(schedule.ExceptionDates))
	for _, d := range schedule.ExceptionDates {
		exceptions[d] = true
	}

	days := utils.DaysInMonth(month)
	expanded := make(map[string]string, days)
	for day := 1; day <= days; day++ {
		date := time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC).Format(utils.DateLayout)
		status := schedule.DefaultStatus
		if exceptions[date] {
			status = models.OppositeShiftStatus(status)
		}
		expanded[date] = status
	}
	return expanded
}

// DeriveMonthSummary collapses stored shift rows back into the compact form.
// The default status is whichever appears on more days; a tie resolves to
// working so the round trip through ExpandMonthSchedule is stable.
func DeriveMonthSummary(shifts []models.Shift) MonthSchedule {
	working := 0
	for _, s := range shifts {
		if s.Status == models.ShiftStatusWorking {
			working++
		}
	}

	defaultStatus := models.ShiftStatusOff
	if working*2 >= len(shifts) {
		defaultStatus = models.ShiftStatusWorking
	}

	var exceptions []string
	for _, s := range shifts {
		if s.Status != defaultStatus {
			exceptions = append(exceptions, s.Date.Format(utils.DateLayout))
		}
	}
	return MonthSchedule{DefaultStatus: defaultStatus, ExceptionDates: exceptions}
}
