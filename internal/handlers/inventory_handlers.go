package handlers

import (
	"errors"
	"net/http"

	"venue_ops_backend/internal/services"
	"venue_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// InventoryHandler holds the inventory service.
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

func (h *InventoryHandler) respondInventoryError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory item not found.", ""))
	case errors.Is(err, services.ErrInsufficientStock):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Adjustment would drive stock negative.", ""))
	case errors.Is(err, services.ErrInventoryValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid inventory data.", err.Error()))
	default:
		utils.LogError(err, action+": inventory operation failed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Inventory operation failed.", "Internal error"))
	}
}

// CreateItem registers a new tracked supply.
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req services.CreateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	item, err := h.inventoryService.CreateItem(req, c.GetInt64("userID"))
	if err != nil {
		h.respondInventoryError(c, err, "CreateItem")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItem returns one inventory item.
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.inventoryService.GetItemByID(id)
	if err != nil {
		h.respondInventoryError(c, err, "GetItem")
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListItems returns items; ?low_stock=true filters to reorder candidates.
func (h *InventoryHandler) ListItems(c *gin.Context) {
	items, err := h.inventoryService.ListItems(c.Query("low_stock") == "true")
	if err != nil {
		h.respondInventoryError(c, err, "ListItems")
		return
	}
	c.JSON(http.StatusOK, items)
}

// UpdateItem edits item metadata; stock only moves through adjustments.
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	item, err := h.inventoryService.UpdateItem(id, req)
	if err != nil {
		h.respondInventoryError(c, err, "UpdateItem")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item. Manager only.
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.inventoryService.DeleteItem(id); err != nil {
		h.respondInventoryError(c, err, "DeleteItem")
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock records a signed stock movement.
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	item, err := h.inventoryService.AdjustStock(id, c.GetInt64("userID"), req)
	if err != nil {
		h.respondInventoryError(c, err, "AdjustStock")
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListLogs returns the movement history for one item.
func (h *InventoryHandler) ListLogs(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	logs, err := h.inventoryService.ListLogs(id)
	if err != nil {
		h.respondInventoryError(c, err, "ListLogs")
		return
	}
	c.JSON(http.StatusOK, logs)
}
