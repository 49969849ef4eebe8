package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/repositories"
)

type fakeGuestPageRepo struct {
	repositories.GuestPageRepository

	page     *models.GuestPage
	pageErr  error
	wallet   *models.StaffWallet
	walletErr error
	assigned bool
}

func (f *fakeGuestPageRepo) GetGuestPageByToken(token string) (*models.GuestPage, error) {
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	return f.page, nil
}

func (f *fakeGuestPageRepo) GetWalletByStaffID(staffID int64) (*models.StaffWallet, error) {
	if f.walletErr != nil {
		return nil, f.walletErr
	}
	return f.wallet, nil
}

func (f *fakeGuestPageRepo) IsStaffAssigned(guestPageID, staffID int64) (bool, error) {
	return f.assigned, nil
}

type fakeTipRepo struct {
	repositories.TipRepository

	windowCount int
	created     *models.TipTransaction
	createErr   error
}

func (f *fakeTipRepo) CountTipsInWindow(ip string, staffID int64, since time.Time) (int, error) {
	return f.windowCount, nil
}

func (f *fakeTipRepo) CreateTip(executor repositories.SQLExecutor, tip *models.TipTransaction) (*models.TipTransaction, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	tip.ID = 101
	f.created = tip
	return tip, nil
}

var tipTestNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func activeGuestPage() *models.GuestPage {
	return &models.GuestPage{
		ID:           7,
		Token:        "3f1f8a8e-0000-4000-8000-000000000001",
		GuestName:    "Sato",
		CheckinDate:  time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		CheckoutDate: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Venue:        models.VenueGuesthouse,
	}
}

func newTipServiceForTest(gr *fakeGuestPageRepo, tr *fakeTipRepo) *tipService {
	svc := NewTipService(tr, gr, nil,
		TipRateLimitConfig{Limit: 3, Window: time.Hour},
		GuestPageConfig{ExpiryGrace: 12 * time.Hour},
	).(*tipService)
	svc.now = func() time.Time { return tipTestNow }
	return svc
}

func validTipRequest() RecordTipRequest {
	return RecordTipRequest{
		GuestPageToken:  "3f1f8a8e-0000-4000-8000-000000000001",
		StaffID:         5,
		TransactionHash: "0x" + repeatHex("ab", 32),
		Network:         models.TipNetworkEthereum,
	}
}

func repeatHex(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func TestRecordTip_Success(t *testing.T) {
	gr := &fakeGuestPageRepo{page: activeGuestPage(), wallet: &models.StaffWallet{StaffID: 5}, assigned: true}
	tr := &fakeTipRepo{windowCount: 1}
	svc := newTipServiceForTest(gr, tr)

	result, err := svc.RecordTip(validTipRequest(), "203.0.113.9", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(101), result.TransactionID)
	assert.Equal(t, 1, result.RemainingTips) // limit 3, one used, this one makes two
	require.NotNil(t, tr.created)
	assert.Equal(t, int64(7), tr.created.GuestPageID)
	assert.Equal(t, 1, tr.created.TipCount)
	assert.Equal(t, "203.0.113.9", tr.created.RequesterIP)
}

func TestRecordTip_UnknownPage(t *testing.T) {
	gr := &fakeGuestPageRepo{pageErr: repositories.ErrNotFound}
	svc := newTipServiceForTest(gr, &fakeTipRepo{})

	_, err := svc.RecordTip(validTipRequest(), "203.0.113.9", nil)
	assert.ErrorIs(t, err, ErrGuestPageInvalid)
}

func TestRecordTip_ExpiredPage(t *testing.T) {
	page := activeGuestPage()
	page.CheckoutDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	gr := &fakeGuestPageRepo{page: page, wallet: &models.StaffWallet{StaffID: 5}, assigned: true}
	svc := newTipServiceForTest(gr, &fakeTipRepo{})

	_, err := svc.RecordTip(validTipRequest(), "203.0.113.9", nil)
	assert.ErrorIs(t, err, ErrGuestPageInvalid)
}

func TestRecordTip_WithinExpiryGrace(t *testing.T) {
	// Check-out 2026-03-10: page expires end of day plus 12h grace, so noon
	// the same day is still inside the window.
	page := activeGuestPage()
	page.CheckoutDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	gr := &fakeGuestPageRepo{page: page, wallet: &models.StaffWallet{StaffID: 5}, assigned: true}
	svc := newTipServiceForTest(gr, &fakeTipRepo{})

	_, err := svc.RecordTip(validTipRequest(), "203.0.113.9", nil)
	assert.NoError(t, err)
}

func TestRecordTip_NoWallet(t *testing.T) {
	gr := &fakeGuestPageRepo{page: activeGuestPage(), walletErr: repositories.ErrNotFound, assigned: true}
	svc := newTipServiceForTest(gr, &fakeTipRepo{})

	_, err := svc.RecordTip(validTipRequest(), "203.0.113.9", nil)
	assert.ErrorIs(t, err, ErrStaffWalletMissing)
}

func TestRecordTip_StaffNotAssigned(t *testing.T) {
	gr := &fakeGuestPageRepo{page: activeGuestPage(), wallet: &models.StaffWallet{StaffID: 5}, assigned: false}
	svc := newTipServiceForTest(gr, &fakeTipRepo{})

	_, err := svc.RecordTip(validTipRequest(), "203.0.113.9", nil)
	assert.ErrorIs(t, err, ErrStaffNotAssigned)
}

func TestRecordTip_MalformedHashReportsDuplicate(t *testing.T) {
	gr := &fakeGuestPageRepo{page: activeGuestPage(), wallet: &models.StaffWallet{StaffID: 5}, assigned: true}
	svc := newTipServiceForTest(gr, &fakeTipRepo{})

	req := validTipRequest()
	req.TransactionHash = "0xnothex"
	_, err := svc.RecordTip(req, "203.0.113.9", nil)
	assert.ErrorIs(t, err, ErrDuplicateTransaction)
}

func TestRecordTip_DuplicateHash(t *testing.T) {
	gr := &fakeGuestPageRepo{page: activeGuestPage(), wallet: &models.StaffWallet{StaffID: 5}, assigned: true}
	tr := &fakeTipRepo{createErr: repositories.ErrDuplicateKey}
	svc := newTipServiceForTest(gr, tr)

	_, err := svc.RecordTip(validTipRequest(), "203.0.113.9", nil)
	assert.ErrorIs(t, err, ErrDuplicateTransaction)
}

func TestRecordTip_UnknownNetwork(t *testing.T) {
	gr := &fakeGuestPageRepo{page: activeGuestPage(), wallet: &models.StaffWallet{StaffID: 5}, assigned: true}
	svc := newTipServiceForTest(gr, &fakeTipRepo{})

	req := validTipRequest()
	req.Network = "solana"
	_, err := svc.RecordTip(req, "203.0.113.9", nil)
	assert.ErrorIs(t, err, ErrTipValidation)
}

func TestRecordTip_RateLimitExhausted(t *testing.T) {
	gr := &fakeGuestPageRepo{page: activeGuestPage(), wallet: &models.StaffWallet{StaffID: 5}, assigned: true}
	tr := &fakeTipRepo{windowCount: 3}
	svc := newTipServiceForTest(gr, tr)

	_, err := svc.RecordTip(validTipRequest(), "203.0.113.9", nil)
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	assert.Nil(t, tr.created, "no ledger row may be written past the limit")
}

func TestRecordTip_LastAllowedTipLeavesZero(t *testing.T) {
	gr := &fakeGuestPageRepo{page: activeGuestPage(), wallet: &models.StaffWallet{StaffID: 5}, assigned: true}
	tr := &fakeTipRepo{windowCount: 2}
	svc := newTipServiceForTest(gr, tr)

	result, err := svc.RecordTip(validTipRequest(), "203.0.113.9", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RemainingTips)
}

func TestCanTip_ReasonCodes(t *testing.T) {
	tests := []struct {
		name   string
		gr     *fakeGuestPageRepo
		count  int
		reason string
		can    bool
	}{
		{
			name:   "ok",
			gr:     &fakeGuestPageRepo{page: activeGuestPage(), wallet: &models.StaffWallet{StaffID: 5}, assigned: true},
			count:  0,
			reason: TipReasonOK,
			can:    true,
		},
		{
			name:   "expired page",
			gr:     &fakeGuestPageRepo{pageErr: repositories.ErrNotFound},
			reason: TipReasonGuestPageExpired,
		},
		{
			name:   "no wallet",
			gr:     &fakeGuestPageRepo{page: activeGuestPage(), walletErr: repositories.ErrNotFound, assigned: true},
			reason: TipReasonNoWallet,
		},
		{
			name:   "not assigned",
			gr:     &fakeGuestPageRepo{page: activeGuestPage(), wallet: &models.StaffWallet{StaffID: 5}, assigned: false},
			reason: TipReasonStaffNotAssigned,
		},
		{
			name:   "rate limited",
			gr:     &fakeGuestPageRepo{page: activeGuestPage(), wallet: &models.StaffWallet{StaffID: 5}, assigned: true},
			count:  3,
			reason: TipReasonRateLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTipServiceForTest(tt.gr, &fakeTipRepo{windowCount: tt.count})
			result, err := svc.CanTip("3f1f8a8e-0000-4000-8000-000000000001", 5, "203.0.113.9")
			require.NoError(t, err)
			assert.Equal(t, tt.can, result.CanTip)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}

func TestCanTip_RemainingCountsDown(t *testing.T) {
	gr := &fakeGuestPageRepo{page: activeGuestPage(), wallet: &models.StaffWallet{StaffID: 5}, assigned: true}
	svc := newTipServiceForTest(gr, &fakeTipRepo{windowCount: 2})

	result, err := svc.CanTip("3f1f8a8e-0000-4000-8000-000000000001", 5, "203.0.113.9")
	require.NoError(t, err)
	assert.True(t, result.CanTip)
	assert.Equal(t, 1, result.RemainingTips)
}
