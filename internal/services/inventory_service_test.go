package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/repositories"
)

type fakeInventoryRepo struct {
	repositories.InventoryRepository

	item       *models.InventoryItem
	getErr     error
	newBalance int
	logs       []models.InventoryLog
}

func (f *fakeInventoryRepo) GetItemByID(id int64) (*models.InventoryItem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copied := *f.item
	return &copied, nil
}

func (f *fakeInventoryRepo) AdjustBalance(executor repositories.SQLExecutor, itemID int64, delta int) (int, error) {
	f.newBalance = f.item.CurrentStock + delta
	return f.newBalance, nil
}

func (f *fakeInventoryRepo) CreateItem(executor repositories.SQLExecutor, item *models.InventoryItem) (*models.InventoryItem, error) {
	item.ID = 11
	f.item = item
	return item, nil
}

func (f *fakeInventoryRepo) CreateLog(executor repositories.SQLExecutor, logEntry *models.InventoryLog) (*models.InventoryLog, error) {
	logEntry.ID = int64(len(f.logs) + 1)
	f.logs = append(f.logs, *logEntry)
	return logEntry, nil
}

func newInventoryServiceForTest(t *testing.T, repo *fakeInventoryRepo) (InventoryService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewInventoryService(repo, db), mock
}

func TestCreateItem_LogsInitialStock(t *testing.T) {
	repo := &fakeInventoryRepo{}
	svc, mock := newInventoryServiceForTest(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()

	created, err := svc.CreateItem(CreateInventoryItemRequest{Name: "Rice", InitialStock: 20, ReorderPoint: 5}, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, models.InventoryLogRestock, repo.logs[0].Type)
	assert.Equal(t, 20, repo.logs[0].QuantityChange)
	assert.Equal(t, int64(4), repo.logs[0].ActorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItem_ZeroStockSkipsLog(t *testing.T) {
	repo := &fakeInventoryRepo{}
	svc, mock := newInventoryServiceForTest(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.CreateItem(CreateInventoryItemRequest{Name: "Soy sauce"}, 4)
	require.NoError(t, err)
	assert.Empty(t, repo.logs)
}

func TestCreateItem_NegativeStockRejected(t *testing.T) {
	repo := &fakeInventoryRepo{}
	svc, _ := newInventoryServiceForTest(t, repo)

	_, err := svc.CreateItem(CreateInventoryItemRequest{Name: "Rice", InitialStock: -1}, 4)
	assert.ErrorIs(t, err, ErrInventoryValidation)
}

func TestAdjustStock_SignRules(t *testing.T) {
	tests := []struct {
		name    string
		logType string
		change  int
	}{
		{"usage must decrease", models.InventoryLogUsage, 5},
		{"restock must increase", models.InventoryLogRestock, -5},
		{"zero change", models.InventoryLogAdjustment, 0},
		{"unknown type", "theft", -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeInventoryRepo{item: &models.InventoryItem{ID: 1, Name: "Rice", CurrentStock: 10}}
			svc, _ := newInventoryServiceForTest(t, repo)

			_, err := svc.AdjustStock(1, 4, AdjustStockRequest{QuantityChange: tt.change, Type: tt.logType})
			assert.ErrorIs(t, err, ErrInventoryValidation)
			assert.Empty(t, repo.logs)
		})
	}
}

func TestAdjustStock_Usage(t *testing.T) {
	repo := &fakeInventoryRepo{item: &models.InventoryItem{ID: 1, Name: "Rice", CurrentStock: 10}}
	svc, mock := newInventoryServiceForTest(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()

	item, err := svc.AdjustStock(1, 4, AdjustStockRequest{QuantityChange: -3, Type: models.InventoryLogUsage})
	require.NoError(t, err)
	assert.Equal(t, 7, item.CurrentStock)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, -3, repo.logs[0].QuantityChange)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStock_InsufficientStock(t *testing.T) {
	repo := &fakeInventoryRepo{item: &models.InventoryItem{ID: 1, Name: "Rice", CurrentStock: 2}}
	svc, _ := newInventoryServiceForTest(t, repo)

	_, err := svc.AdjustStock(1, 4, AdjustStockRequest{QuantityChange: -3, Type: models.InventoryLogUsage})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, repo.logs)
}

func TestAdjustStock_UnknownItem(t *testing.T) {
	repo := &fakeInventoryRepo{getErr: repositories.ErrNotFound}
	svc, _ := newInventoryServiceForTest(t, repo)

	_, err := svc.AdjustStock(99, 4, AdjustStockRequest{QuantityChange: -1, Type: models.InventoryLogUsage})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestAdjustStock_AdjustmentMayGoEitherWay(t *testing.T) {
	repo := &fakeInventoryRepo{item: &models.InventoryItem{ID: 1, Name: "Rice", CurrentStock: 10}}
	svc, mock := newInventoryServiceForTest(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()

	item, err := svc.AdjustStock(1, 4, AdjustStockRequest{QuantityChange: 2, Type: models.InventoryLogAdjustment})
	require.NoError(t, err)
	assert.Equal(t, 12, item.CurrentStock)
}
