package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/repositories"
	"venue_ops_backend/pkg/utils"
)

// --- Custom Service Errors for the tip ledger ---
// Each precondition failure is a distinct error: the guest-facing page
// renders a different message per failure mode, so none of these may be
// collapsed into a generic error.
var (
	ErrGuestPageInvalid     = errors.New("guest page not found or expired")
	ErrStaffWalletMissing   = errors.New("staff member has no registered payout wallet")
	ErrStaffNotAssigned     = errors.New("staff member is not assigned to this guest page")
	ErrDuplicateTransaction = errors.New("transaction hash is malformed or already recorded")
	ErrRateLimitExceeded    = errors.New("tip rate limit exceeded for this address and staff member")
	ErrTipValidation        = errors.New("tip request validation error")
)

// CanTip reason codes, machine-readable for the guest page UI.
const (
	TipReasonOK               = "ok"
	TipReasonGuestPageExpired = "guest_page_expired"
	TipReasonNoWallet         = "no_wallet"
	TipReasonStaffNotAssigned = "staff_not_assigned"
	TipReasonRateLimit        = "rate_limit"
)

// TipRateLimitConfig bounds how many tips one requester IP may record for one
// staff member inside a sliding window. Both values are deployment
// configuration, not business constants.
type TipRateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// GuestPageConfig carries the guest-page expiry rule: pages stop accepting
// tips after the end of the check-out day plus ExpiryGrace.
type GuestPageConfig struct {
	ExpiryGrace time.Duration
}

// --- Tip DTOs ---

type RecordTipRequest struct {
	GuestPageToken  string `json:"guest_page_token" binding:"required"`
	StaffID         int64  `json:"staff_id" binding:"required"`
	TransactionHash string `json:"transaction_hash" binding:"required"`
	Network         string `json:"network" binding:"required"`
}

type RecordTipResult struct {
	TransactionID int64 `json:"transaction_id"`
	RemainingTips int   `json:"remaining_tips"`
}

type CanTipResult struct {
	CanTip        bool   `json:"can_tip"`
	RemainingTips int    `json:"remaining_tips"`
	Reason        string `json:"reason"`
}

// --- TipService Interface ---
type TipService interface {
	RecordTip(req RecordTipRequest, ip string, userAgent *string) (*RecordTipResult, error)
	CanTip(guestPageToken string, staffID int64, ip string) (*CanTipResult, error)
	ListTipsByStaff(staffID int64) ([]models.TipTransaction, error)
}

// --- tipService Implementation ---
type tipService struct {
	tipRepo       repositories.TipRepository
	guestPageRepo repositories.GuestPageRepository
	db            *sql.DB
	rateLimit     TipRateLimitConfig
	pageCfg       GuestPageConfig
	now           func() time.Time
}

// NewTipService creates a new instance of TipService.
func NewTipService(
	tr repositories.TipRepository,
	gr repositories.GuestPageRepository,
	db *sql.DB,
	rateLimit TipRateLimitConfig,
	pageCfg GuestPageConfig,
) TipService {
	return &tipService{
		tipRepo:       tr,
		guestPageRepo: gr,
		db:            db,
		rateLimit:     rateLimit,
		pageCfg:       pageCfg,
		now:           time.Now,
	}
}

// checkTipPreconditions runs precondition steps 1-3 (guest page, wallet,
// assignment). Shared by RecordTip and CanTip so the two can never disagree.
func (s *tipService) checkTipPreconditions(guestPageToken string, staffID int64) (*models.GuestPage, error) {
	page, err := s.guestPageRepo.GetGuestPageByToken(guestPageToken)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGuestPageInvalid
		}
		return nil, fmt.Errorf("failed to look up guest page: %w", err)
	}
	if page.IsExpired(s.now(), s.pageCfg.ExpiryGrace) {
		return nil, ErrGuestPageInvalid
	}

	if _, err := s.guestPageRepo.GetWalletByStaffID(staffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffWalletMissing
		}
		return nil, fmt.Errorf("failed to look up staff wallet: %w", err)
	}

	assigned, err := s.guestPageRepo.IsStaffAssigned(page.ID, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to check staff assignment: %w", err)
	}
	if !assigned {
		return nil, ErrStaffNotAssigned
	}
	return page, nil
}

// remainingInWindow computes the allowance left for one (ip, staff) pair from
// ledger history. There is no stored counter: expired tips fall out of the
// sliding window on their own.
func (s *tipService) remainingInWindow(ip string, staffID int64) (int, error) {
	since := s.now().Add(-s.rateLimit.Window)
	count, err := s.tipRepo.CountTipsInWindow(ip, staffID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count tips in window: %w", err)
	}
	remaining := s.rateLimit.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// RecordTip validates a claim that an on-chain tip happened and appends it to
// the ledger. Preconditions are checked in a fixed order; each failure mode
// surfaces its own sentinel error.
func (s *tipService) RecordTip(req RecordTipRequest, ip string, userAgent *string) (*RecordTipResult, error) {
	page, err := s.checkTipPreconditions(req.GuestPageToken, req.StaffID)
	if err != nil {
		return nil, err
	}

	if !models.IsValidTipNetwork(req.Network) {
		return nil, fmt.Errorf("%w: unknown network %q", ErrTipValidation, req.Network)
	}

	hash := utils.NormalizeTransactionHash(req.TransactionHash)
	if !utils.IsValidTransactionHash(hash) {
		return nil, ErrDuplicateTransaction
	}

	remaining, err := s.remainingInWindow(ip, req.StaffID)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return nil, ErrRateLimitExceeded
	}

	tip := &models.TipTransaction{
		GuestPageID:     page.ID,
		StaffID:         req.StaffID,
		TransactionHash: hash,
		Network:         req.Network,
		TipCount:        1,
		RequesterIP:     ip,
		UserAgent:       userAgent,
	}

	// Hash uniqueness is enforced by the storage constraint, so a concurrent
	// replay of the same hash loses the insert race instead of slipping past
	// an application-level existence check.
	created, err := s.tipRepo.CreateTip(s.db, tip)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateTransaction
		}
		return nil, fmt.Errorf("failed to record tip: %w", err)
	}

	return &RecordTipResult{TransactionID: created.ID, RemainingTips: remaining - 1}, nil
}

// CanTip is the read-only precheck the guest page calls before showing the
// tip button. It mirrors RecordTip's precondition order, minus the hash
// uniqueness step (no hash is presented yet).
func (s *tipService) CanTip(guestPageToken string, staffID int64, ip string) (*CanTipResult, error) {
	if _, err := s.checkTipPreconditions(guestPageToken, staffID); err != nil {
		switch {
		case errors.Is(err, ErrGuestPageInvalid):
			return &CanTipResult{CanTip: false, RemainingTips: 0, Reason: TipReasonGuestPageExpired}, nil
		case errors.Is(err, ErrStaffWalletMissing):
			return &CanTipResult{CanTip: false, RemainingTips: 0, Reason: TipReasonNoWallet}, nil
		case errors.Is(err, ErrStaffNotAssigned):
			return &CanTipResult{CanTip: false, RemainingTips: 0, Reason: TipReasonStaffNotAssigned}, nil
		default:
			return nil, err
		}
	}

	remaining, err := s.remainingInWindow(ip, staffID)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return &CanTipResult{CanTip: false, RemainingTips: 0, Reason: TipReasonRateLimit}, nil
	}
	return &CanTipResult{CanTip: true, RemainingTips: remaining, Reason: TipReasonOK}, nil
}

func (s *tipService) ListTipsByStaff(staffID int64) ([]models.TipTransaction, error) {
	tips, err := s.tipRepo.ListTipsByStaff(staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tips: %w", err)
	}
	return tips, nil
}
