package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"venue_ops_backend/internal/models"
)

// TipRepository persists the append-only tip ledger. Rows are never updated
// or deleted; the transaction_hash unique constraint is the replay guard.
type TipRepository interface {
	CreateTip(executor SQLExecutor, tip *models.TipTransaction) (*models.TipTransaction, error)
	CountTipsInWindow(ip string, staffID int64, since time.Time) (int, error)
	ListTipsByStaff(staffID int64) ([]models.TipTransaction, error)
	ListTipsByGuestPage(guestPageID int64) ([]models.TipTransaction, error)
}

type tipRepository struct {
	db *sql.DB
}

// NewTipRepository creates a new instance of TipRepository.
func NewTipRepository(db *sql.DB) TipRepository {
	return &tipRepository{db: db}
}

func (r *tipRepository) CreateTip(executor SQLExecutor, tip *models.TipTransaction) (*models.TipTransaction, error) {
	query := `INSERT INTO tip_transactions
	            (guest_page_id, staff_id, transaction_hash, network, tip_count, requester_ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at`
	err := executor.QueryRow(query,
		tip.GuestPageID, tip.StaffID, tip.TransactionHash, tip.Network, tip.TipCount, tip.RequesterIP, tip.UserAgent).
		Scan(&tip.ID, &tip.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: recording tip transaction: %v", ErrDatabaseError, err)
	}
	return tip, nil
}

// CountTipsInWindow counts recorded tips for one (requester IP, staff) pair
// since the window start. The rate limit is derived from ledger history, not
// from any stored counter.
func (r *tipRepository) CountTipsInWindow(ip string, staffID int64, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tip_transactions WHERE requester_ip = $1 AND staff_id = $2 AND created_at > $3`
	if err := r.db.QueryRow(query, ip, staffID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting tips in window: %v", ErrDatabaseError, err)
	}
	return count, nil
}

const tipColumns = `id, guest_page_id, staff_id, transaction_hash, network, tip_count, requester_ip, user_agent, created_at`

func (r *tipRepository) listTips(query string, arg interface{}) ([]models.TipTransaction, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tip transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var tips []models.TipTransaction
	for rows.Next() {
		var t models.TipTransaction
		var userAgent sql.NullString
		if err := rows.Scan(&t.ID, &t.GuestPageID, &t.StaffID, &t.TransactionHash, &t.Network, &t.TipCount, &t.RequesterIP, &userAgent, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning tip transaction: %v", ErrDatabaseError, err)
		}
		if userAgent.Valid {
			t.UserAgent = &userAgent.String
		}
		tips = append(tips, t)
	}
	return tips, rows.Err()
}

func (r *tipRepository) ListTipsByStaff(staffID int64) ([]models.TipTransaction, error) {
	query := `SELECT ` + tipColumns + ` FROM tip_transactions WHERE staff_id = $1 ORDER BY created_at DESC`
	return r.listTips(query, staffID)
}

func (r *tipRepository) ListTipsByGuestPage(guestPageID int64) ([]models.TipTransaction, error) {
	query := `SELECT ` + tipColumns + ` FROM tip_transactions WHERE guest_page_id = $1 ORDER BY created_at DESC`
	return r.listTips(query, guestPageID)
}
