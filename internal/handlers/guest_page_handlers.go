package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"venue_ops_backend/internal/services"
	"venue_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GuestPageHandler holds the guest page service.
type GuestPageHandler struct {
	guestPageService services.GuestPageService
}

// NewGuestPageHandler creates a new GuestPageHandler.
func NewGuestPageHandler(gs services.GuestPageService) *GuestPageHandler {
	return &GuestPageHandler{guestPageService: gs}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", err.Error()))
		return 0, false
	}
	return id, true
}

// CreateGuestPage creates a page for a stay and mints its URL token.
func (h *GuestPageHandler) CreateGuestPage(c *gin.Context) {
	var req services.CreateGuestPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	page, err := h.guestPageService.CreateGuestPage(req)
	if err != nil {
		if errors.Is(err, services.ErrGuestPageValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid guest page data.", err.Error()))
		} else {
			utils.LogError(err, "CreateGuestPage: failed to create page")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create guest page.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, page)
}

// GetGuestPage returns one page with staff assignments. Staff view.
func (h *GuestPageHandler) GetGuestPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, err := h.guestPageService.GetGuestPageByID(id)
	if err != nil {
		if errors.Is(err, services.ErrGuestPageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Guest page not found.", ""))
		} else {
			utils.LogError(err, "GetGuestPage: failed to load page")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to load guest page.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListGuestPages returns all pages. Staff view.
func (h *GuestPageHandler) ListGuestPages(c *gin.Context) {
	pages, err := h.guestPageService.ListGuestPages()
	if err != nil {
		utils.LogError(err, "ListGuestPages: failed to list pages")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to list guest pages.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, pages)
}

// UpdateGuestPage edits a page. Admin only.
func (h *GuestPageHandler) UpdateGuestPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateGuestPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	page, err := h.guestPageService.UpdateGuestPage(id, req)
	if err != nil {
		if errors.Is(err, services.ErrGuestPageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Guest page not found.", ""))
		} else if errors.Is(err, services.ErrGuestPageValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid guest page data.", err.Error()))
		} else {
			utils.LogError(err, "UpdateGuestPage: failed to update page")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update guest page.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, page)
}

// DeleteGuestPage removes a page. Admin only.
func (h *GuestPageHandler) DeleteGuestPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.guestPageService.DeleteGuestPage(id); err != nil {
		if errors.Is(err, services.ErrGuestPageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Guest page not found.", ""))
		} else {
			utils.LogError(err, "DeleteGuestPage: failed to delete page")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete guest page.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// PublicLookup resolves a page by its URL token. No authentication.
func (h *GuestPageHandler) PublicLookup(c *gin.Context) {
	page, err := h.guestPageService.PublicLookup(c.Param("token"))
	if err != nil {
		if errors.Is(err, services.ErrGuestPageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeGuestPageInvalid, "Guest page not found.", ""))
		} else {
			utils.LogError(err, "PublicLookup: failed to resolve token")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to load guest page.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, page)
}

// AssignStaff links a staff member to a page.
func (h *GuestPageHandler) AssignStaff(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	assignment, err := h.guestPageService.AssignStaff(id, req)
	if err != nil {
		if errors.Is(err, services.ErrGuestPageNotFound) || errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Guest page or staff member not found.", err.Error()))
		} else if errors.Is(err, services.ErrStaffAlreadyAssigned) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Staff member already assigned.", err.Error()))
		} else if errors.Is(err, services.ErrGuestPageValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid assignment.", err.Error()))
		} else {
			utils.LogError(err, "AssignStaff: failed to assign")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to assign staff.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// UnassignStaff removes a staff link from a page.
func (h *GuestPageHandler) UnassignStaff(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	staffID, ok := parseIDParam(c, "staffId")
	if !ok {
		return
	}
	if err := h.guestPageService.UnassignStaff(id, staffID); err != nil {
		if errors.Is(err, services.ErrStaffAssignmentMissing) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Assignment not found.", ""))
		} else {
			utils.LogError(err, "UnassignStaff: failed to unassign")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to unassign staff.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAssignments lists staff linked to a page.
func (h *GuestPageHandler) ListAssignments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	assignments, err := h.guestPageService.ListAssignments(id)
	if err != nil {
		if errors.Is(err, services.ErrGuestPageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Guest page not found.", ""))
		} else {
			utils.LogError(err, "ListAssignments: failed to list")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to list assignments.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// SetWallet saves the authenticated staff member's payout address.
func (h *GuestPageHandler) SetWallet(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	wallet, err := h.guestPageService.SetWallet(c.GetInt64("userID"), req.Address)
	if err != nil {
		if errors.Is(err, services.ErrWalletValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid wallet address.", ""))
		} else if errors.Is(err, services.ErrWalletAddressTaken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Wallet address already registered.", ""))
		} else {
			utils.LogError(err, "SetWallet: failed to save wallet")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to save wallet.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// GetWallet returns the authenticated staff member's payout address.
func (h *GuestPageHandler) GetWallet(c *gin.Context) {
	wallet, err := h.guestPageService.GetWallet(c.GetInt64("userID"))
	if err != nil {
		if errors.Is(err, services.ErrWalletNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Wallet not registered.", ""))
		} else {
			utils.LogError(err, "GetWallet: failed to load wallet")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to load wallet.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, wallet)
}
