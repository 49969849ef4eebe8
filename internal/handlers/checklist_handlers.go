package handlers

import (
	"errors"
	"net/http"

	"venue_ops_backend/internal/services"
	"venue_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ChecklistHandler holds the checklist service.
type ChecklistHandler struct {
	checklistService services.ChecklistService
}

// NewChecklistHandler creates a new ChecklistHandler.
func NewChecklistHandler(cs services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklistService: cs}
}

func (h *ChecklistHandler) respondChecklistError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrTemplateNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Checklist template not found.", ""))
	case errors.Is(err, services.ErrChecklistNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Daily checklist not found.", ""))
	case errors.Is(err, services.ErrChecklistExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Checklist already exists for that template and date.", ""))
	case errors.Is(err, services.ErrChecklistItemUnknown):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Item does not belong to this checklist.", ""))
	case errors.Is(err, services.ErrTemplateInUse):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Template items cannot change while daily checklists use them.", ""))
	case errors.Is(err, services.ErrTemplateValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid checklist data.", err.Error()))
	default:
		utils.LogError(err, action+": checklist operation failed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Checklist operation failed.", "Internal error"))
	}
}

// CreateTemplate creates a checklist template with its items. Manager only.
func (h *ChecklistHandler) CreateTemplate(c *gin.Context) {
	var req services.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	template, err := h.checklistService.CreateTemplate(req)
	if err != nil {
		h.respondChecklistError(c, err, "CreateTemplate")
		return
	}
	c.JSON(http.StatusCreated, template)
}

// GetTemplate returns one template with its items.
func (h *ChecklistHandler) GetTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	template, err := h.checklistService.GetTemplateByID(id)
	if err != nil {
		h.respondChecklistError(c, err, "GetTemplate")
		return
	}
	c.JSON(http.StatusOK, template)
}

// ListTemplates returns templates; ?active=true filters to active ones.
func (h *ChecklistHandler) ListTemplates(c *gin.Context) {
	templates, err := h.checklistService.ListTemplates(c.Query("active") == "true")
	if err != nil {
		h.respondChecklistError(c, err, "ListTemplates")
		return
	}
	c.JSON(http.StatusOK, templates)
}

// UpdateTemplate edits a template. Manager only.
func (h *ChecklistHandler) UpdateTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	template, err := h.checklistService.UpdateTemplate(id, req)
	if err != nil {
		h.respondChecklistError(c, err, "UpdateTemplate")
		return
	}
	c.JSON(http.StatusOK, template)
}

// InstantiateChecklist manually materializes a daily checklist.
func (h *ChecklistHandler) InstantiateChecklist(c *gin.Context) {
	var req struct {
		TemplateID int64  `json:"template_id" binding:"required"`
		Date       string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date format.", err.Error()))
		return
	}
	checklist, err := h.checklistService.InstantiateChecklist(req.TemplateID, date, c.GetInt64("userID"))
	if err != nil {
		h.respondChecklistError(c, err, "InstantiateChecklist")
		return
	}
	c.JSON(http.StatusCreated, checklist)
}

// GetDailyChecklist returns one daily checklist with entries.
func (h *ChecklistHandler) GetDailyChecklist(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	checklist, err := h.checklistService.GetDailyChecklist(id)
	if err != nil {
		h.respondChecklistError(c, err, "GetDailyChecklist")
		return
	}
	c.JSON(http.StatusOK, checklist)
}

// ListDailyChecklists returns checklists in a date range; defaults to today.
func (h *ChecklistHandler) ListDailyChecklists(c *gin.Context) {
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}
	if from == nil || to == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Both from and to dates are required.", ""))
		return
	}
	checklists, err := h.checklistService.ListDailyChecklists(*from, *to)
	if err != nil {
		h.respondChecklistError(c, err, "ListDailyChecklists")
		return
	}
	c.JSON(http.StatusOK, checklists)
}

// ToggleEntry marks one checklist item complete or incomplete.
func (h *ChecklistHandler) ToggleEntry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	var req struct {
		Completed bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	checklist, err := h.checklistService.ToggleEntry(id, itemID, c.GetInt64("userID"), req.Completed)
	if err != nil {
		h.respondChecklistError(c, err, "ToggleEntry")
		return
	}
	c.JSON(http.StatusOK, checklist)
}
