package handlers

import (
	"errors"
	"net/http"

	"venue_ops_backend/internal/services"
	"venue_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler holds the availability service.
type AvailabilityHandler struct {
	availabilityService services.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(as services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: as}
}

// GetSnapshot returns the cached booking-channel availability feed.
func (h *AvailabilityHandler) GetSnapshot(c *gin.Context) {
	snapshot, err := h.availabilityService.GetSnapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrAvailabilityUnavailable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadGateway, utils.ErrCodeInternalServerError, "Availability feed is unavailable.", err.Error()))
		} else {
			utils.LogError(err, "GetSnapshot: failed to load availability")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to load availability.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Invalidate drops the cached feed so the next read refetches. Manager only.
func (h *AvailabilityHandler) Invalidate(c *gin.Context) {
	if err := h.availabilityService.Invalidate(c.Request.Context()); err != nil {
		utils.LogError(err, "Invalidate: failed to invalidate cache")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to invalidate cache.", "Internal error"))
		return
	}
	c.Status(http.StatusNoContent)
}
