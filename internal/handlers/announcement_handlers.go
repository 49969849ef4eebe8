package handlers

import (
	"errors"
	"net/http"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/services"
	"venue_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AnnouncementHandler holds the announcement service.
type AnnouncementHandler struct {
	announcementService services.AnnouncementService
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(as services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: as}
}

func (h *AnnouncementHandler) respondAnnouncementError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrAnnouncementNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Announcement not found.", ""))
	case errors.Is(err, services.ErrAnnouncementValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid announcement data.", err.Error()))
	default:
		utils.LogError(err, action+": announcement operation failed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Announcement operation failed.", "Internal error"))
	}
}

// CreateAnnouncement posts a new announcement. Manager only.
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	var req services.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	announcement, err := h.announcementService.CreateAnnouncement(c.GetInt64("userID"), req)
	if err != nil {
		h.respondAnnouncementError(c, err, "CreateAnnouncement")
		return
	}
	c.JSON(http.StatusCreated, announcement)
}

// GetAnnouncement returns one announcement.
func (h *AnnouncementHandler) GetAnnouncement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	announcement, err := h.announcementService.GetAnnouncementByID(id)
	if err != nil {
		h.respondAnnouncementError(c, err, "GetAnnouncement")
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// ListAnnouncements returns announcements. Staff see only published ones;
// managers see drafts too.
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	role := c.GetString("userRole")
	publishedOnly := role != models.RoleAdmin && role != models.RoleManager
	announcements, err := h.announcementService.ListAnnouncements(publishedOnly)
	if err != nil {
		h.respondAnnouncementError(c, err, "ListAnnouncements")
		return
	}
	c.JSON(http.StatusOK, announcements)
}

// UpdateAnnouncement edits or publishes an announcement. Manager only.
func (h *AnnouncementHandler) UpdateAnnouncement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	announcement, err := h.announcementService.UpdateAnnouncement(id, req)
	if err != nil {
		h.respondAnnouncementError(c, err, "UpdateAnnouncement")
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// DeleteAnnouncement removes an announcement. Manager only.
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.announcementService.DeleteAnnouncement(id); err != nil {
		h.respondAnnouncementError(c, err, "DeleteAnnouncement")
		return
	}
	c.Status(http.StatusNoContent)
}
