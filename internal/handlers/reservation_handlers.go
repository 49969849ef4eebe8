package handlers

import (
	"errors"
	"net/http"
	"time"

	"venue_ops_backend/internal/services"
	"venue_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReservationHandler holds the reservation service.
type ReservationHandler struct {
	reservationService services.ReservationService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(rs services.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: rs}
}

func parseDateRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	var from, to *time.Time
	if fromStr := c.Query("from"); fromStr != "" {
		d, err := utils.ParseDate(fromStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid from date format.", err.Error()))
			return nil, nil, false
		}
		from = &d
	}
	if toStr := c.Query("to"); toStr != "" {
		d, err := utils.ParseDate(toStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid to date format.", err.Error()))
			return nil, nil, false
		}
		to = &d
	}
	return from, to, true
}

func statusFilter(c *gin.Context) *string {
	if status := c.Query("status"); status != "" {
		return &status
	}
	return nil
}

func (h *ReservationHandler) respondReservationError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrReservationNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Reservation not found.", ""))
	case errors.Is(err, services.ErrLinkedStayNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Linked stay reservation not found.", ""))
	case errors.Is(err, services.ErrReservationCancelled):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Reservation is cancelled.", ""))
	case errors.Is(err, services.ErrReservationValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid reservation data.", err.Error()))
	default:
		utils.LogError(err, action+": reservation operation failed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Reservation operation failed.", "Internal error"))
	}
}

// --- Stay reservations ---

func (h *ReservationHandler) CreateStay(c *gin.Context) {
	var req services.CreateStayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	stay, err := h.reservationService.CreateStay(req)
	if err != nil {
		h.respondReservationError(c, err, "CreateStay")
		return
	}
	c.JSON(http.StatusCreated, stay)
}

func (h *ReservationHandler) GetStay(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	stay, err := h.reservationService.GetStayByID(id)
	if err != nil {
		h.respondReservationError(c, err, "GetStay")
		return
	}
	c.JSON(http.StatusOK, stay)
}

func (h *ReservationHandler) ListStays(c *gin.Context) {
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}
	stays, err := h.reservationService.ListStays(from, to, statusFilter(c))
	if err != nil {
		h.respondReservationError(c, err, "ListStays")
		return
	}
	c.JSON(http.StatusOK, stays)
}

func (h *ReservationHandler) UpdateStay(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateStayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	stay, err := h.reservationService.UpdateStay(id, req)
	if err != nil {
		h.respondReservationError(c, err, "UpdateStay")
		return
	}
	c.JSON(http.StatusOK, stay)
}

func (h *ReservationHandler) CancelStay(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	stay, err := h.reservationService.CancelStay(id)
	if err != nil {
		h.respondReservationError(c, err, "CancelStay")
		return
	}
	c.JSON(http.StatusOK, stay)
}

// --- Meal reservations ---

func (h *ReservationHandler) CreateMeal(c *gin.Context) {
	var req services.CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	meal, err := h.reservationService.CreateMeal(req)
	if err != nil {
		h.respondReservationError(c, err, "CreateMeal")
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (h *ReservationHandler) GetMeal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	meal, err := h.reservationService.GetMealByID(id)
	if err != nil {
		h.respondReservationError(c, err, "GetMeal")
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *ReservationHandler) ListMeals(c *gin.Context) {
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}
	meals, err := h.reservationService.ListMeals(from, to, statusFilter(c))
	if err != nil {
		h.respondReservationError(c, err, "ListMeals")
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *ReservationHandler) UpdateMeal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	meal, err := h.reservationService.UpdateMeal(id, req)
	if err != nil {
		h.respondReservationError(c, err, "UpdateMeal")
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *ReservationHandler) CancelMeal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	meal, err := h.reservationService.CancelMeal(id)
	if err != nil {
		h.respondReservationError(c, err, "CancelMeal")
		return
	}
	c.JSON(http.StatusOK, meal)
}

// --- Stay assignments and reminders ---

func (h *ReservationHandler) CreateAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.CreateReservationAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	assignment, err := h.reservationService.CreateAssignment(id, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", ""))
		case errors.Is(err, services.ErrAssignmentExists):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Staff member already assigned to this task.", ""))
		default:
			h.respondReservationError(c, err, "CreateAssignment")
		}
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

func (h *ReservationHandler) DeleteAssignment(c *gin.Context) {
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}
	if err := h.reservationService.DeleteAssignment(assignmentID); err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Assignment not found.", ""))
		} else {
			h.respondReservationError(c, err, "DeleteAssignment")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) ListAssignments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	assignments, err := h.reservationService.ListAssignmentsByStay(id)
	if err != nil {
		h.respondReservationError(c, err, "ListAssignments")
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// MarkReminderSent flags one or both reminders as delivered.
func (h *ReservationHandler) MarkReminderSent(c *gin.Context) {
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}
	var req struct {
		DayBefore bool `json:"day_before"`
		SameDay   bool `json:"same_day"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	assignment, err := h.reservationService.MarkReminderSent(assignmentID, req.DayBefore, req.SameDay)
	if err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Assignment not found.", ""))
		} else {
			h.respondReservationError(c, err, "MarkReminderSent")
		}
		return
	}
	c.JSON(http.StatusOK, assignment)
}
