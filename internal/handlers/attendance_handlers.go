package handlers

import (
	"errors"
	"net/http"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/services"
	"venue_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AttendanceHandler holds the attendance service.
type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(as services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as}
}

// targetUserID resolves which user the request is about: managers may pass
// ?user_id=, everyone else gets their own.
func targetUserID(c *gin.Context) int64 {
	role := c.GetString("userRole")
	if role == models.RoleAdmin || role == models.RoleManager {
		if idStr := c.Query("user_id"); idStr != "" {
			id, err := utils.StrToInt64(idStr)
			if err == nil {
				return id
			}
		}
	}
	return c.GetInt64("userID")
}

func (h *AttendanceHandler) respondAttendanceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found.", ""))
	case errors.Is(err, services.ErrShiftValidation), errors.Is(err, services.ErrTimecardValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid attendance data.", err.Error()))
	case errors.Is(err, services.ErrAlreadyClockedIn):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Already clocked in today.", ""))
	case errors.Is(err, services.ErrAlreadyClockedOut):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Already clocked out today.", ""))
	case errors.Is(err, services.ErrNotClockedIn):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Not clocked in.", ""))
	case errors.Is(err, services.ErrBreakAlreadyTaken):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Break already taken today.", ""))
	case errors.Is(err, services.ErrNotOnBreak):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Not currently on break.", ""))
	case errors.Is(err, services.ErrTimeRecordNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Time record not found.", ""))
	default:
		utils.LogError(err, action+": attendance operation failed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Attendance operation failed.", "Internal error"))
	}
}

// BulkUpdateMonth replaces a user's shifts for one month.
func (h *AttendanceHandler) BulkUpdateMonth(c *gin.Context) {
	var req services.MonthSchedule
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	resp, err := h.attendanceService.BulkUpdateMonth(targetUserID(c), c.Param("month"), req)
	if err != nil {
		h.respondAttendanceError(c, err, "BulkUpdateMonth")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetMonthShifts returns a user's month of shifts in compact + expanded form.
func (h *AttendanceHandler) GetMonthShifts(c *gin.Context) {
	resp, err := h.attendanceService.GetMonthShifts(targetUserID(c), c.Param("month"))
	if err != nil {
		h.respondAttendanceError(c, err, "GetMonthShifts")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListShiftsForDate returns everyone's shift for one day. Manager view.
func (h *AttendanceHandler) ListShiftsForDate(c *gin.Context) {
	date, err := utils.ParseDate(c.Param("date"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date format.", err.Error()))
		return
	}
	shifts, err := h.attendanceService.ListShiftsForDate(date)
	if err != nil {
		h.respondAttendanceError(c, err, "ListShiftsForDate")
		return
	}
	c.JSON(http.StatusOK, shifts)
}

// ClockIn punches the authenticated user in for today.
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	rec, err := h.attendanceService.ClockIn(c.GetInt64("userID"))
	if err != nil {
		h.respondAttendanceError(c, err, "ClockIn")
		return
	}
	c.JSON(http.StatusOK, services.TimecardRow{Record: *rec, Status: rec.Status()})
}

// ClockOut punches the authenticated user out for today.
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	rec, err := h.attendanceService.ClockOut(c.GetInt64("userID"))
	if err != nil {
		h.respondAttendanceError(c, err, "ClockOut")
		return
	}
	c.JSON(http.StatusOK, services.TimecardRow{Record: *rec, Status: rec.Status()})
}

// StartBreak starts the user's break for today.
func (h *AttendanceHandler) StartBreak(c *gin.Context) {
	rec, err := h.attendanceService.StartBreak(c.GetInt64("userID"))
	if err != nil {
		h.respondAttendanceError(c, err, "StartBreak")
		return
	}
	c.JSON(http.StatusOK, services.TimecardRow{Record: *rec, Status: rec.Status()})
}

// EndBreak ends the user's break for today.
func (h *AttendanceHandler) EndBreak(c *gin.Context) {
	rec, err := h.attendanceService.EndBreak(c.GetInt64("userID"))
	if err != nil {
		h.respondAttendanceError(c, err, "EndBreak")
		return
	}
	c.JSON(http.StatusOK, services.TimecardRow{Record: *rec, Status: rec.Status()})
}

// GetToday returns the user's own timecard state for today.
func (h *AttendanceHandler) GetToday(c *gin.Context) {
	rec, err := h.attendanceService.GetTodayRecord(c.GetInt64("userID"))
	if err != nil {
		h.respondAttendanceError(c, err, "GetToday")
		return
	}
	c.JSON(http.StatusOK, services.TimecardRow{Record: *rec, Status: rec.Status()})
}

// GetMonthTimecard returns a month of timecard rows.
func (h *AttendanceHandler) GetMonthTimecard(c *gin.Context) {
	rows, err := h.attendanceService.GetMonthTimecard(targetUserID(c), c.Param("month"))
	if err != nil {
		h.respondAttendanceError(c, err, "GetMonthTimecard")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// EditTimeRecord overwrites punch fields for a user and date. Manager only.
func (h *AttendanceHandler) EditTimeRecord(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	var req services.UpdateTimeRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	rec, err := h.attendanceService.EditTimeRecord(userID, c.Param("date"), c.GetInt64("userID"), req)
	if err != nil {
		h.respondAttendanceError(c, err, "EditTimeRecord")
		return
	}
	c.JSON(http.StatusOK, services.TimecardRow{Record: *rec, Status: rec.Status()})
}

// ExportMonthCSV streams a month of timecards as CSV. Manager only.
func (h *AttendanceHandler) ExportMonthCSV(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	month := c.Param("month")
	data, err := h.attendanceService.ExportMonthCSV(userID, month)
	if err != nil {
		h.respondAttendanceError(c, err, "ExportMonthCSV")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="timecard-`+month+`.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
