package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"venue_ops_backend/internal/models"
)

// GuestPageRepository covers guest pages, their staff assignments, and staff
// payout wallets. The three live together because the tipping flow always
// touches all of them in one request.
type GuestPageRepository interface {
	CreateGuestPage(executor SQLExecutor, page *models.GuestPage) (*models.GuestPage, error)
	GetGuestPageByID(id int64) (*models.GuestPage, error)
	GetGuestPageByToken(token string) (*models.GuestPage, error)
	ListGuestPages() ([]models.GuestPage, error)
	UpdateGuestPage(executor SQLExecutor, page *models.GuestPage) (*models.GuestPage, error)
	DeleteGuestPage(executor SQLExecutor, id int64) error

	AddAssignment(executor SQLExecutor, a *models.StaffAssignment) (*models.StaffAssignment, error)
	RemoveAssignment(executor SQLExecutor, guestPageID, staffID int64) error
	ListAssignments(guestPageID int64) ([]models.StaffAssignment, error)
	IsStaffAssigned(guestPageID, staffID int64) (bool, error)

	UpsertWallet(executor SQLExecutor, staffID int64, address string) (*models.StaffWallet, error)
	GetWalletByStaffID(staffID int64) (*models.StaffWallet, error)
}

type guestPageRepository struct {
	db *sql.DB
}

// NewGuestPageRepository creates a new instance of GuestPageRepository.
func NewGuestPageRepository(db *sql.DB) GuestPageRepository {
	return &guestPageRepository{db: db}
}

const guestPageColumns = `id, token, guest_name, room_name, checkin_date, checkout_date, venue, created_at, updated_at`

func scanGuestPage(row scanner) (*models.GuestPage, error) {
	var p models.GuestPage
	var room sql.NullString
	err := row.Scan(&p.ID, &p.Token, &p.GuestName, &room, &p.CheckinDate, &p.CheckoutDate, &p.Venue, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning guest page: %v", ErrDatabaseError, err)
	}
	if room.Valid {
		p.RoomName = &room.String
	}
	return &p, nil
}

func (r *guestPageRepository) CreateGuestPage(executor SQLExecutor, page *models.GuestPage) (*models.GuestPage, error) {
	query := `INSERT INTO guest_pages (token, guest_name, room_name, checkin_date, checkout_date, venue)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, page.Token, page.GuestName, page.RoomName, page.CheckinDate, page.CheckoutDate, page.Venue).
		Scan(&page.ID, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: creating guest page: %v", ErrDatabaseError, err)
	}
	return page, nil
}

func (r *guestPageRepository) GetGuestPageByID(id int64) (*models.GuestPage, error) {
	query := `SELECT ` + guestPageColumns + ` FROM guest_pages WHERE id = $1`
	return scanGuestPage(r.db.QueryRow(query, id))
}

func (r *guestPageRepository) GetGuestPageByToken(token string) (*models.GuestPage, error) {
	query := `SELECT ` + guestPageColumns + ` FROM guest_pages WHERE token = $1`
	return scanGuestPage(r.db.QueryRow(query, token))
}

func (r *guestPageRepository) ListGuestPages() ([]models.GuestPage, error) {
	query := `SELECT ` + guestPageColumns + ` FROM guest_pages ORDER BY checkout_date DESC, id DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing guest pages: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var pages []models.GuestPage
	for rows.Next() {
		p, scanErr := scanGuestPage(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

func (r *guestPageRepository) UpdateGuestPage(executor SQLExecutor, page *models.GuestPage) (*models.GuestPage, error) {
	query := `UPDATE guest_pages
	          SET guest_name = $1, room_name = $2, checkin_date = $3, checkout_date = $4, venue = $5, updated_at = NOW()
	          WHERE id = $6
	          RETURNING updated_at`
	err := executor.QueryRow(query, page.GuestName, page.RoomName, page.CheckinDate, page.CheckoutDate, page.Venue, page.ID).
		Scan(&page.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating guest page: %v", ErrDatabaseError, err)
	}
	return page, nil
}

func (r *guestPageRepository) DeleteGuestPage(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM guest_pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting guest page: %v", ErrDatabaseError, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *guestPageRepository) AddAssignment(executor SQLExecutor, a *models.StaffAssignment) (*models.StaffAssignment, error) {
	query := `INSERT INTO staff_assignments (guest_page_id, staff_id, role_tag)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	err := executor.QueryRow(query, a.GuestPageID, a.StaffID, a.RoleTag).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: adding staff assignment: %v", ErrDatabaseError, err)
	}
	return a, nil
}

func (r *guestPageRepository) RemoveAssignment(executor SQLExecutor, guestPageID, staffID int64) error {
	res, err := executor.Exec(`DELETE FROM staff_assignments WHERE guest_page_id = $1 AND staff_id = $2`, guestPageID, staffID)
	if err != nil {
		return fmt.Errorf("%w: removing staff assignment: %v", ErrDatabaseError, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *guestPageRepository) ListAssignments(guestPageID int64) ([]models.StaffAssignment, error) {
	query := `SELECT sa.id, sa.guest_page_id, sa.staff_id, sa.role_tag, sa.created_at,
	                 u.display_name, (sw.id IS NOT NULL) AS has_wallet
	          FROM staff_assignments sa
	          JOIN users u ON u.id = sa.staff_id
	          LEFT JOIN staff_wallets sw ON sw.staff_id = sa.staff_id
	          WHERE sa.guest_page_id = $1
	          ORDER BY sa.id ASC`
	rows, err := r.db.Query(query, guestPageID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing staff assignments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var assignments []models.StaffAssignment
	for rows.Next() {
		var a models.StaffAssignment
		var roleTag, staffName sql.NullString
		if err := rows.Scan(&a.ID, &a.GuestPageID, &a.StaffID, &roleTag, &a.CreatedAt, &staffName, &a.HasWallet); err != nil {
			return nil, fmt.Errorf("%w: scanning staff assignment: %v", ErrDatabaseError, err)
		}
		if roleTag.Valid {
			a.RoleTag = &roleTag.String
		}
		if staffName.Valid {
			a.StaffName = &staffName.String
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *guestPageRepository) IsStaffAssigned(guestPageID, staffID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM staff_assignments WHERE guest_page_id = $1 AND staff_id = $2)`
	if err := r.db.QueryRow(query, guestPageID, staffID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: checking staff assignment: %v", ErrDatabaseError, err)
	}
	return exists, nil
}

func (r *guestPageRepository) UpsertWallet(executor SQLExecutor, staffID int64, address string) (*models.StaffWallet, error) {
	query := `INSERT INTO staff_wallets (staff_id, address)
	          VALUES ($1, $2)
	          ON CONFLICT (staff_id) DO UPDATE SET address = EXCLUDED.address, updated_at = NOW()
	          RETURNING id, staff_id, address, created_at, updated_at`
	var w models.StaffWallet
	err := executor.QueryRow(query, staffID, address).
		Scan(&w.ID, &w.StaffID, &w.Address, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Address is globally unique; conflict here means another staff
			// member already registered this address.
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: upserting staff wallet: %v", ErrDatabaseError, err)
	}
	return &w, nil
}

func (r *guestPageRepository) GetWalletByStaffID(staffID int64) (*models.StaffWallet, error) {
	query := `SELECT id, staff_id, address, created_at, updated_at FROM staff_wallets WHERE staff_id = $1`
	var w models.StaffWallet
	err := r.db.QueryRow(query, staffID).Scan(&w.ID, &w.StaffID, &w.Address, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: fetching staff wallet: %v", ErrDatabaseError, err)
	}
	return &w, nil
}
