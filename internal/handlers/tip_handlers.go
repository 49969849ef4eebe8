package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"venue_ops_backend/internal/services"
	"venue_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TipHandler holds the tip service.
type TipHandler struct {
	tipService services.TipService
}

// NewTipHandler creates a new TipHandler.
func NewTipHandler(ts services.TipService) *TipHandler {
	return &TipHandler{tipService: ts}
}

// RecordTip records a confirmed on-chain tip against the ledger. Public;
// addressed by guest page token.
func (h *TipHandler) RecordTip(c *gin.Context) {
	var req services.RecordTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	var userAgent *string
	if ua := c.Request.UserAgent(); ua != "" {
		userAgent = &ua
	}

	result, err := h.tipService.RecordTip(req, c.ClientIP(), userAgent)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGuestPageInvalid):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeGuestPageInvalid, "Guest page not found or expired.", ""))
		case errors.Is(err, services.ErrStaffWalletMissing):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStaffWalletMissing, "Staff member has no wallet configured.", ""))
		case errors.Is(err, services.ErrStaffNotAssigned):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStaffNotAssigned, "Staff member is not assigned to this page.", ""))
		case errors.Is(err, services.ErrDuplicateTransaction):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeDuplicateTransaction, "Transaction already recorded or malformed.", ""))
		case errors.Is(err, services.ErrRateLimitExceeded):
			// Same envelope as the other rejections, plus the remaining
			// allowance so the guest page can render the count.
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":          utils.NewAPIError(http.StatusTooManyRequests, utils.ErrCodeRateLimitExceeded, "Tip limit reached, try again later.", ""),
				"remaining_tips": 0,
			})
			c.Abort()
		case errors.Is(err, services.ErrTipValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid tip data.", err.Error()))
		default:
			utils.LogError(err, "RecordTip: failed to record tip")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record tip.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, result)
}

// CanTip is the guest-facing pre-check the page calls before rendering the
// tip button. Always 200 with a reason code; never an error for the
// predictable cases.
func (h *TipHandler) CanTip(c *gin.Context) {
	staffID, err := strconv.ParseInt(c.Query("staff_id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid staff_id format.", err.Error()))
		return
	}

	result, err := h.tipService.CanTip(c.Param("token"), staffID, c.ClientIP())
	if err != nil {
		utils.LogError(err, "CanTip: failed to evaluate")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to check tip availability.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListTipsByStaff returns the ledger rows for one staff member. Staff view.
func (h *TipHandler) ListTipsByStaff(c *gin.Context) {
	staffID, ok := parseIDParam(c, "staffId")
	if !ok {
		return
	}
	tips, err := h.tipService.ListTipsByStaff(staffID)
	if err != nil {
		utils.LogError(err, "ListTipsByStaff: failed to list")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to list tips.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, tips)
}

// MyTips returns the authenticated staff member's own ledger rows.
func (h *TipHandler) MyTips(c *gin.Context) {
	tips, err := h.tipService.ListTipsByStaff(c.GetInt64("userID"))
	if err != nil {
		utils.LogError(err, "MyTips: failed to list")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to list tips.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, tips)
}
