package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"venue_ops_backend/internal/models"
)

// InventoryRepository covers items and their append-only stock logs.
type InventoryRepository interface {
	CreateItem(executor SQLExecutor, item *models.InventoryItem) (*models.InventoryItem, error)
	GetItemByID(id int64) (*models.InventoryItem, error)
	ListItems(lowStockOnly bool) ([]models.InventoryItem, error)
	UpdateItem(executor SQLExecutor, item *models.InventoryItem) (*models.InventoryItem, error)
	DeleteItem(executor SQLExecutor, id int64) error

	// AdjustBalance applies a signed delta atomically at the row level and
	// returns the new balance. The balance-plus-log invariant is kept by the
	// service calling this and CreateLog inside one transaction.
	AdjustBalance(executor SQLExecutor, itemID int64, delta int) (int, error)
	CreateLog(executor SQLExecutor, logEntry *models.InventoryLog) (*models.InventoryLog, error)
	ListLogsByItem(itemID int64) ([]models.InventoryLog, error)
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

const inventoryItemColumns = `id, name, unit, venue, current_stock, reorder_point, created_at, updated_at`

func scanInventoryItem(row scanner) (*models.InventoryItem, error) {
	var it models.InventoryItem
	var unit, venue sql.NullString
	err := row.Scan(&it.ID, &it.Name, &unit, &venue, &it.CurrentStock, &it.ReorderPoint, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning inventory item: %v", ErrDatabaseError, err)
	}
	if unit.Valid {
		it.Unit = &unit.String
	}
	if venue.Valid {
		it.Venue = &venue.String
	}
	return &it, nil
}

func (r *inventoryRepository) CreateItem(executor SQLExecutor, item *models.InventoryItem) (*models.InventoryItem, error) {
	query := `INSERT INTO inventory_items (name, unit, venue, current_stock, reorder_point)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, item.Name, item.Unit, item.Venue, item.CurrentStock, item.ReorderPoint).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: creating inventory item: %v", ErrDatabaseError, err)
	}
	return item, nil
}

func (r *inventoryRepository) GetItemByID(id int64) (*models.InventoryItem, error) {
	return scanInventoryItem(r.db.QueryRow(`SELECT `+inventoryItemColumns+` FROM inventory_items WHERE id = $1`, id))
}

func (r *inventoryRepository) ListItems(lowStockOnly bool) ([]models.InventoryItem, error) {
	query := `SELECT ` + inventoryItemColumns + ` FROM inventory_items`
	if lowStockOnly {
		query += ` WHERE current_stock <= reorder_point`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing inventory items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		it, scanErr := scanInventoryItem(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *inventoryRepository) UpdateItem(executor SQLExecutor, item *models.InventoryItem) (*models.InventoryItem, error) {
	query := `UPDATE inventory_items
	          SET name = $1, unit = $2, venue = $3, reorder_point = $4, updated_at = NOW()
	          WHERE id = $5
	          RETURNING updated_at`
	err := executor.QueryRow(query, item.Name, item.Unit, item.Venue, item.ReorderPoint, item.ID).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating inventory item: %v", ErrDatabaseError, err)
	}
	return item, nil
}

func (r *inventoryRepository) DeleteItem(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting inventory item: %v", ErrDatabaseError, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) AdjustBalance(executor SQLExecutor, itemID int64, delta int) (int, error) {
	var newStock int
	query := `UPDATE inventory_items SET current_stock = current_stock + $1, updated_at = NOW() WHERE id = $2 RETURNING current_stock`
	err := executor.QueryRow(query, delta, itemID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: adjusting stock balance: %v", ErrDatabaseError, err)
	}
	return newStock, nil
}

func (r *inventoryRepository) CreateLog(executor SQLExecutor, logEntry *models.InventoryLog) (*models.InventoryLog, error) {
	query := `INSERT INTO inventory_logs (item_id, quantity_change, type, actor_id, note)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`
	err := executor.QueryRow(query, logEntry.ItemID, logEntry.QuantityChange, logEntry.Type, logEntry.ActorID, logEntry.Note).
		Scan(&logEntry.ID, &logEntry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: creating inventory log: %v", ErrDatabaseError, err)
	}
	return logEntry, nil
}

func (r *inventoryRepository) ListLogsByItem(itemID int64) ([]models.InventoryLog, error) {
	query := `SELECT id, item_id, quantity_change, type, actor_id, note, created_at
	          FROM inventory_logs WHERE item_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(query, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing inventory logs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var logs []models.InventoryLog
	for rows.Next() {
		var l models.InventoryLog
		var note sql.NullString
		if err := rows.Scan(&l.ID, &l.ItemID, &l.QuantityChange, &l.Type, &l.ActorID, &note, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning inventory log: %v", ErrDatabaseError, err)
		}
		if note.Valid {
			l.Note = &note.String
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
