package models

import "time"

// Supported payout networks. Tips are transferred wallet-to-wallet outside
// this system; we only record the confirmation.
const (
	TipNetworkEthereum = "ethereum"
	TipNetworkPolygon  = "polygon"
)

// IsValidTipNetwork reports whether n is a supported network identifier.
func IsValidTipNetwork(n string) bool {
	return n == TipNetworkEthereum || n == TipNetworkPolygon
}

// TipTransaction records one confirmed external transfer from a guest to a
// staff member's wallet. Rows are append-only: never updated, never deleted.
// TransactionHash is globally unique, which is the replay protection.
type TipTransaction struct {
	ID              int64     `json:"id" db:"id"`
	GuestPageID     int64     `json:"guest_page_id" db:"guest_page_id"`
	StaffID         int64     `json:"staff_id" db:"staff_id"`
	TransactionHash string    `json:"transaction_hash" db:"transaction_hash"`
	Network         string    `json:"network" db:"network"`
	TipCount        int       `json:"tip_count" db:"tip_count"`
	RequesterIP     string    `json:"-" db:"requester_ip"`
	UserAgent       *string   `json:"-" db:"user_agent"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
