package repositories

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue_ops_backend/internal/models"
)

func setupMockDB(t *testing.T) (*tipRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &tipRepository{db: db}, mock
}

func TestCreateTip(t *testing.T) {
	repo, mock := setupMockDB(t)

	hash := "0xabababababababababababababababababababababababababababababababab"
	tip := &models.TipTransaction{
		GuestPageID:     7,
		StaffID:         5,
		TransactionHash: hash,
		Network:         models.TipNetworkEthereum,
		TipCount:        1,
		RequesterIP:     "203.0.113.9",
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tip_transactions`)).
		WithArgs(tip.GuestPageID, tip.StaffID, tip.TransactionHash, tip.Network, tip.TipCount, tip.RequesterIP, tip.UserAgent).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(101), time.Now()))

	created, err := repo.CreateTip(repo.db, tip)
	require.NoError(t, err)
	assert.Equal(t, int64(101), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTip_DuplicateHash(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tip_transactions`)).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.CreateTip(repo.db, &models.TipTransaction{})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountTipsInWindow(t *testing.T) {
	repo, mock := setupMockDB(t)

	since := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM tip_transactions WHERE requester_ip = $1 AND staff_id = $2 AND created_at > $3`)).
		WithArgs("203.0.113.9", int64(5), since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountTipsInWindow("203.0.113.9", 5, since)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTipsByStaff(t *testing.T) {
	repo, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "guest_page_id", "staff_id", "transaction_hash", "network", "tip_count", "requester_ip", "user_agent", "created_at"}).
		AddRow(int64(1), int64(7), int64(5), "0xaa", "ethereum", 1, "203.0.113.9", nil, time.Now()).
		AddRow(int64(2), int64(7), int64(5), "0xbb", "polygon", 1, "203.0.113.9", nil, time.Now())

	mock.ExpectQuery(`SELECT .+ FROM tip_transactions WHERE staff_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	tips, err := repo.ListTipsByStaff(5)
	require.NoError(t, err)
	require.Len(t, tips, 2)
	assert.Equal(t, "polygon", tips[1].Network)
	assert.NoError(t, mock.ExpectationsWereMet())
}
