package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/repositories"
	"venue_ops_backend/pkg/utils"
)

// --- Custom Service Errors for guest pages ---
var (
	ErrGuestPageNotFound      = errors.New("guest page not found")
	ErrGuestPageValidation    = errors.New("guest page validation error")
	ErrStaffAlreadyAssigned   = errors.New("staff member already assigned to this page")
	ErrStaffAssignmentMissing = errors.New("staff member is not assigned to this page")
	ErrWalletValidation       = errors.New("invalid wallet address")
	ErrWalletAddressTaken     = errors.New("wallet address already registered to another staff member")
	ErrWalletNotFound         = errors.New("wallet not registered")
)

// --- Guest Page DTOs ---

type CreateGuestPageRequest struct {
	GuestName    string  `json:"guest_name" binding:"required"`
	RoomName     *string `json:"room_name"`
	CheckinDate  string  `json:"checkin_date" binding:"required"`
	CheckoutDate string  `json:"checkout_date" binding:"required"`
	Venue        string  `json:"venue" binding:"required"`
}

type UpdateGuestPageRequest struct {
	GuestName    *string `json:"guest_name"`
	RoomName     *string `json:"room_name"`
	CheckinDate  *string `json:"checkin_date"`
	CheckoutDate *string `json:"checkout_date"`
}

type AssignStaffRequest struct {
	StaffID int64   `json:"staff_id" binding:"required"`
	RoleTag *string `json:"role_tag"`
}

// PublicGuestPage is the guest-facing projection: no internal IDs beyond what
// the tip flow needs, plus the computed expiry state.
type PublicGuestPage struct {
	Token        string                   `json:"token"`
	GuestName    string                   `json:"guest_name"`
	RoomName     *string                  `json:"room_name,omitempty"`
	CheckinDate  string                   `json:"checkin_date"`
	CheckoutDate string                   `json:"checkout_date"`
	Venue        string                   `json:"venue"`
	Expired      bool                     `json:"expired"`
	ExpiresAt    time.Time                `json:"expires_at"`
	Staff        []models.StaffAssignment `json:"staff"`
}

// --- GuestPageService Interface ---
type GuestPageService interface {
	CreateGuestPage(req CreateGuestPageRequest) (*models.GuestPage, error)
	GetGuestPageByID(id int64) (*models.GuestPage, error)
	ListGuestPages() ([]models.GuestPage, error)
	UpdateGuestPage(id int64, req UpdateGuestPageRequest) (*models.GuestPage, error)
	DeleteGuestPage(id int64) error

	PublicLookup(token string) (*PublicGuestPage, error)

	AssignStaff(pageID int64, req AssignStaffRequest) (*models.StaffAssignment, error)
	UnassignStaff(pageID, staffID int64) error
	ListAssignments(pageID int64) ([]models.StaffAssignment, error)

	SetWallet(staffID int64, address string) (*models.StaffWallet, error)
	GetWallet(staffID int64) (*models.StaffWallet, error)
}

// --- guestPageService Implementation ---
type guestPageService struct {
	guestPageRepo repositories.GuestPageRepository
	authRepo      repositories.AuthRepository
	db            *sql.DB
	pageCfg       GuestPageConfig
	now           func() time.Time
}

// NewGuestPageService creates a new instance of GuestPageService.
func NewGuestPageService(gr repositories.GuestPageRepository, ar repositories.AuthRepository, db *sql.DB, pageCfg GuestPageConfig) GuestPageService {
	return &guestPageService{
		guestPageRepo: gr,
		authRepo:      ar,
		db:            db,
		pageCfg:       pageCfg,
		now:           time.Now,
	}
}

func (s *guestPageService) CreateGuestPage(req CreateGuestPageRequest) (*models.GuestPage, error) {
	if !models.IsValidVenue(req.Venue) {
		return nil, fmt.Errorf("%w: unknown venue %q", ErrGuestPageValidation, req.Venue)
	}
	checkin, err := utils.ParseDate(req.CheckinDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGuestPageValidation, err)
	}
	checkout, err := utils.ParseDate(req.CheckoutDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGuestPageValidation, err)
	}
	if checkout.Before(checkin) {
		return nil, fmt.Errorf("%w: check-out before check-in", ErrGuestPageValidation)
	}

	page := &models.GuestPage{
		Token:        uuid.NewString(),
		GuestName:    req.GuestName,
		RoomName:     req.RoomName,
		CheckinDate:  checkin,
		CheckoutDate: checkout,
		Venue:        req.Venue,
	}
	created, err := s.guestPageRepo.CreateGuestPage(s.db, page)
	if err != nil {
		return nil, fmt.Errorf("failed to create guest page: %w", err)
	}
	return created, nil
}

func (s *guestPageService) GetGuestPageByID(id int64) (*models.GuestPage, error) {
	page, err := s.guestPageRepo.GetGuestPageByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGuestPageNotFound
		}
		return nil, fmt.Errorf("failed to get guest page: %w", err)
	}
	return page, nil
}

func (s *guestPageService) ListGuestPages() ([]models.GuestPage, error) {
	pages, err := s.guestPageRepo.ListGuestPages()
	if err != nil {
		return nil, fmt.Errorf("failed to list guest pages: %w", err)
	}
	return pages, nil
}

func (s *guestPageService) UpdateGuestPage(id int64, req UpdateGuestPageRequest) (*models.GuestPage, error) {
	page, err := s.GetGuestPageByID(id)
	if err != nil {
		return nil, err
	}
	if req.GuestName != nil {
		page.GuestName = *req.GuestName
	}
	if req.RoomName != nil {
		page.RoomName = req.RoomName
	}
	if req.CheckinDate != nil {
		checkin, parseErr := utils.ParseDate(*req.CheckinDate)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrGuestPageValidation, parseErr)
		}
		page.CheckinDate = checkin
	}
	if req.CheckoutDate != nil {
		checkout, parseErr := utils.ParseDate(*req.CheckoutDate)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrGuestPageValidation, parseErr)
		}
		page.CheckoutDate = checkout
	}
	if page.CheckoutDate.Before(page.CheckinDate) {
		return nil, fmt.Errorf("%w: check-out before check-in", ErrGuestPageValidation)
	}
	updated, err := s.guestPageRepo.UpdateGuestPage(s.db, page)
	if err != nil {
		return nil, fmt.Errorf("failed to update guest page: %w", err)
	}
	return updated, nil
}

func (s *guestPageService) DeleteGuestPage(id int64) error {
	if err := s.guestPageRepo.DeleteGuestPage(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrGuestPageNotFound
		}
		return fmt.Errorf("failed to delete guest page: %w", err)
	}
	return nil
}

// PublicLookup resolves a page by its URL token. Expired pages still resolve
// so the guest sees a farewell screen instead of a 404; the tip flow itself
// enforces expiry.
func (s *guestPageService) PublicLookup(token string) (*PublicGuestPage, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrGuestPageNotFound
	}
	page, err := s.guestPageRepo.GetGuestPageByToken(token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGuestPageNotFound
		}
		return nil, fmt.Errorf("failed to look up guest page: %w", err)
	}
	assignments, err := s.guestPageRepo.ListAssignments(page.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff assignments: %w", err)
	}
	return &PublicGuestPage{
		Token:        page.Token,
		GuestName:    page.GuestName,
		RoomName:     page.RoomName,
		CheckinDate:  page.CheckinDate.Format(utils.DateLayout),
		CheckoutDate: page.CheckoutDate.Format(utils.DateLayout),
		Venue:        page.Venue,
		Expired:      page.IsExpired(s.now(), s.pageCfg.ExpiryGrace),
		ExpiresAt:    page.ExpiresAt(s.pageCfg.ExpiryGrace),
		Staff:        assignments,
	}, nil
}

func (s *guestPageService) AssignStaff(pageID int64, req AssignStaffRequest) (*models.StaffAssignment, error) {
	if _, err := s.GetGuestPageByID(pageID); err != nil {
		return nil, err
	}
	staff, err := s.authRepo.GetUserByID(req.StaffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to validate staff member: %w", err)
	}
	if !staff.IsActive {
		return nil, fmt.Errorf("%w: staff member is inactive", ErrGuestPageValidation)
	}

	assignment := &models.StaffAssignment{
		GuestPageID: pageID,
		StaffID:     req.StaffID,
		RoleTag:     req.RoleTag,
	}
	created, err := s.guestPageRepo.AddAssignment(s.db, assignment)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrStaffAlreadyAssigned
		}
		return nil, fmt.Errorf("failed to assign staff: %w", err)
	}
	return created, nil
}

func (s *guestPageService) UnassignStaff(pageID, staffID int64) error {
	if err := s.guestPageRepo.RemoveAssignment(s.db, pageID, staffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrStaffAssignmentMissing
		}
		return fmt.Errorf("failed to unassign staff: %w", err)
	}
	return nil
}

func (s *guestPageService) ListAssignments(pageID int64) ([]models.StaffAssignment, error) {
	if _, err := s.GetGuestPageByID(pageID); err != nil {
		return nil, err
	}
	assignments, err := s.guestPageRepo.ListAssignments(pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff assignments: %w", err)
	}
	return assignments, nil
}

// SetWallet stores the staff member's payout address, normalized to
// lowercase. Setting again replaces the previous address.
func (s *guestPageService) SetWallet(staffID int64, address string) (*models.StaffWallet, error) {
	normalized := utils.NormalizeWalletAddress(address)
	if !utils.IsValidWalletAddress(normalized) {
		return nil, ErrWalletValidation
	}
	if _, err := s.authRepo.GetUserByID(staffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to validate staff member: %w", err)
	}
	wallet, err := s.guestPageRepo.UpsertWallet(s.db, staffID, normalized)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrWalletAddressTaken
		}
		return nil, fmt.Errorf("failed to save wallet: %w", err)
	}
	return wallet, nil
}

func (s *guestPageService) GetWallet(staffID int64) (*models.StaffWallet, error) {
	wallet, err := s.guestPageRepo.GetWalletByStaffID(staffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet, nil
}
