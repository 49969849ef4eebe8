package models

import "time"

// Inventory log types. Every stock change is one signed log row; the item
// balance is always the running sum of its log rows.
const (
	InventoryLogUsage      = "usage"
	InventoryLogRestock    = "restock"
	InventoryLogAdjustment = "adjustment"
)

// IsValidInventoryLogType reports whether t is a recognized log type.
func IsValidInventoryLogType(t string) bool {
	switch t {
	case InventoryLogUsage, InventoryLogRestock, InventoryLogAdjustment:
		return true
	}
	return false
}

// InventoryItem is a tracked supply at one of the venues.
type InventoryItem struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Unit         *string   `json:"unit,omitempty" db:"unit"`
	Venue        *string   `json:"venue,omitempty" db:"venue"` // nil = shared between venues
	CurrentStock int       `json:"current_stock" db:"current_stock"`
	ReorderPoint int       `json:"reorder_point" db:"reorder_point"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NeedsReorder reports whether stock has reached the reorder point.
func (i *InventoryItem) NeedsReorder() bool {
	return i.CurrentStock <= i.ReorderPoint
}

// InventoryLog is one signed stock movement for an item.
type InventoryLog struct {
	ID             int64     `json:"id" db:"id"`
	ItemID         int64     `json:"item_id" db:"item_id"`
	QuantityChange int       `json:"quantity_change" db:"quantity_change"`
	Type           string    `json:"type" db:"type"`
	ActorID        int64     `json:"actor_id" db:"actor_id"`
	Note           *string   `json:"note,omitempty" db:"note"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
