package services

import (
	"database/sql"
	"errors"
	"fmt"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/repositories"
)

// --- Custom Service Errors for inventory ---
var (
	ErrItemNotFound        = errors.New("inventory item not found")
	ErrInventoryValidation = errors.New("inventory validation error")
	ErrInsufficientStock   = errors.New("adjustment would drive stock negative")
)

// --- Inventory DTOs ---

type CreateInventoryItemRequest struct {
	Name         string  `json:"name" binding:"required"`
	Unit         *string `json:"unit"`
	Venue        *string `json:"venue"`
	InitialStock int     `json:"initial_stock"`
	ReorderPoint int     `json:"reorder_point"`
}

type UpdateInventoryItemRequest struct {
	Name         *string `json:"name"`
	Unit         *string `json:"unit"`
	Venue        *string `json:"venue"`
	ReorderPoint *int    `json:"reorder_point"`
}

type AdjustStockRequest struct {
	QuantityChange int     `json:"quantity_change" binding:"required"`
	Type           string  `json:"type" binding:"required"`
	Note           *string `json:"note"`
}

// --- InventoryService Interface ---
type InventoryService interface {
	CreateItem(req CreateInventoryItemRequest, actorID int64) (*models.InventoryItem, error)
	GetItemByID(id int64) (*models.InventoryItem, error)
	ListItems(lowStockOnly bool) ([]models.InventoryItem, error)
	UpdateItem(id int64, req UpdateInventoryItemRequest) (*models.InventoryItem, error)
	DeleteItem(id int64) error
	AdjustStock(itemID int64, actorID int64, req AdjustStockRequest) (*models.InventoryItem, error)
	ListLogs(itemID int64) ([]models.InventoryLog, error)
}

// --- inventoryService Implementation ---
type inventoryService struct {
	inventoryRepo repositories.InventoryRepository
	db            *sql.DB
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(ir repositories.InventoryRepository, db *sql.DB) InventoryService {
	return &inventoryService{inventoryRepo: ir, db: db}
}

func (s *inventoryService) CreateItem(req CreateInventoryItemRequest, actorID int64) (*models.InventoryItem, error) {
	if req.InitialStock < 0 || req.ReorderPoint < 0 {
		return nil, fmt.Errorf("%w: stock and reorder point must be non-negative", ErrInventoryValidation)
	}
	if req.Venue != nil && !models.IsValidVenue(*req.Venue) {
		return nil, fmt.Errorf("%w: unknown venue %q", ErrInventoryValidation, *req.Venue)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	item := &models.InventoryItem{
		Name:         req.Name,
		Unit:         req.Unit,
		Venue:        req.Venue,
		CurrentStock: req.InitialStock,
		ReorderPoint: req.ReorderPoint,
	}
	created, err := s.inventoryRepo.CreateItem(tx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}
	if req.InitialStock > 0 {
		logEntry := &models.InventoryLog{
			ItemID:         created.ID,
			QuantityChange: req.InitialStock,
			Type:           models.InventoryLogRestock,
			ActorID:        actorID,
		}
		if _, err := s.inventoryRepo.CreateLog(tx, logEntry); err != nil {
			return nil, fmt.Errorf("failed to log initial stock: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

func (s *inventoryService) GetItemByID(id int64) (*models.InventoryItem, error) {
	item, err := s.inventoryRepo.GetItemByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return item, nil
}

func (s *inventoryService) ListItems(lowStockOnly bool) ([]models.InventoryItem, error) {
	items, err := s.inventoryRepo.ListItems(lowStockOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory items: %w", err)
	}
	return items, nil
}

func (s *inventoryService) UpdateItem(id int64, req UpdateInventoryItemRequest) (*models.InventoryItem, error) {
	item, err := s.GetItemByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Unit != nil {
		item.Unit = req.Unit
	}
	if req.Venue != nil {
		if !models.IsValidVenue(*req.Venue) {
			return nil, fmt.Errorf("%w: unknown venue %q", ErrInventoryValidation, *req.Venue)
		}
		item.Venue = req.Venue
	}
	if req.ReorderPoint != nil {
		if *req.ReorderPoint < 0 {
			return nil, fmt.Errorf("%w: reorder point must be non-negative", ErrInventoryValidation)
		}
		item.ReorderPoint = *req.ReorderPoint
	}
	updated, err := s.inventoryRepo.UpdateItem(s.db, item)
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return updated, nil
}

func (s *inventoryService) DeleteItem(id int64) error {
	if err := s.inventoryRepo.DeleteItem(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	return nil
}

// AdjustStock writes the log row and the balance update in one transaction,
// so the balance never drifts from the sum of the log.
func (s *inventoryService) AdjustStock(itemID int64, actorID int64, req AdjustStockRequest) (*models.InventoryItem, error) {
	if !models.IsValidInventoryLogType(req.Type) {
		return nil, fmt.Errorf("%w: unknown log type %q", ErrInventoryValidation, req.Type)
	}
	if req.QuantityChange == 0 {
		return nil, fmt.Errorf("%w: quantity change must be non-zero", ErrInventoryValidation)
	}
	if req.Type == models.InventoryLogUsage && req.QuantityChange > 0 {
		return nil, fmt.Errorf("%w: usage must decrease stock", ErrInventoryValidation)
	}
	if req.Type == models.InventoryLogRestock && req.QuantityChange < 0 {
		return nil, fmt.Errorf("%w: restock must increase stock", ErrInventoryValidation)
	}

	item, err := s.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item.CurrentStock+req.QuantityChange < 0 {
		return nil, ErrInsufficientStock
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	newBalance, err := s.inventoryRepo.AdjustBalance(tx, itemID, req.QuantityChange)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}
	if newBalance < 0 {
		// A concurrent adjustment got in first; roll back.
		return nil, ErrInsufficientStock
	}
	logEntry := &models.InventoryLog{
		ItemID:         itemID,
		QuantityChange: req.QuantityChange,
		Type:           req.Type,
		ActorID:        actorID,
		Note:           req.Note,
	}
	if _, err := s.inventoryRepo.CreateLog(tx, logEntry); err != nil {
		return nil, fmt.Errorf("failed to create inventory log: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	item.CurrentStock = newBalance
	return item, nil
}

func (s *inventoryService) ListLogs(itemID int64) ([]models.InventoryLog, error) {
	if _, err := s.GetItemByID(itemID); err != nil {
		return nil, err
	}
	logs, err := s.inventoryRepo.ListLogsByItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory logs: %w", err)
	}
	return logs, nil
}
