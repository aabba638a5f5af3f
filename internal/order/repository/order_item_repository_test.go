package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fournil/internal/domain"
	"fournil/internal/testutil"
)

// Unit Tests

func TestNewMySQLOrderItemRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLOrderItemRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestOrderItemRepository_InsertBatch_EmptyIsNoop(t *testing.T) {
	repo := NewMySQLOrderItemRepository(&sql.DB{})

	// No statement runs for an empty batch, so the nil tx is never touched.
	err := repo.InsertBatch(context.Background(), nil, nil)

	assert.NoError(t, err)
}

// Integration Tests

func insertTestItems(t *testing.T, db *sql.DB, repo *MySQLOrderItemRepository, items []domain.OrderItem) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.InsertBatch(context.Background(), tx, items))
	require.NoError(t, tx.Commit())
}

func TestOrderItemRepository_InsertBatch_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	orderRepo := NewMySQLOrderRepository(db)
	itemRepo := NewMySQLOrderItemRepository(db)

	order := insertTestOrder(t, db, orderRepo, domain.StatusPending)

	insertTestItems(t, db, itemRepo, []domain.OrderItem{
		{
			OrderID:     order.ID,
			ProductName: "Baghrir format normal",
			Quantity:    2,
			UnitPrice:   decimal.NewFromFloat(0.80),
			TotalPrice:  decimal.NewFromFloat(1.60),
		},
		{
			OrderID:     order.ID,
			ProductName: "Msemen farci",
			Options:     "poulet",
			Quantity:    1,
			UnitPrice:   decimal.NewFromFloat(2.60),
			TotalPrice:  decimal.NewFromFloat(2.60),
		},
	})

	items, err := itemRepo.ListByOrderID(context.Background(), order.ID)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Baghrir format normal", items[0].ProductName)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromFloat(0.80)))
	assert.Equal(t, "poulet", items[1].Options)
}

func TestOrderItemRepository_ListByOrderID_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	orderRepo := NewMySQLOrderRepository(db)
	itemRepo := NewMySQLOrderItemRepository(db)

	order := insertTestOrder(t, db, orderRepo, domain.StatusPending)

	items, err := itemRepo.ListByOrderID(context.Background(), order.ID)

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderItemRepository_DeleteByOrderIDTx(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	orderRepo := NewMySQLOrderRepository(db)
	itemRepo := NewMySQLOrderItemRepository(db)

	order := insertTestOrder(t, db, orderRepo, domain.StatusPending)
	insertTestItems(t, db, itemRepo, []domain.OrderItem{
		{OrderID: order.ID, ProductName: "Krichlat", Quantity: 1,
			UnitPrice: decimal.NewFromFloat(0.80), TotalPrice: decimal.NewFromFloat(0.80)},
	})

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	count, err := itemRepo.DeleteByOrderIDTx(context.Background(), tx, order.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(1), count)

	items, err := itemRepo.ListByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderItemRepository_DeleteForCompletedTx(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	orderRepo := NewMySQLOrderRepository(db)
	itemRepo := NewMySQLOrderItemRepository(db)

	completed := insertTestOrder(t, db, orderRepo, domain.StatusCompleted)
	pending := insertTestOrder(t, db, orderRepo, domain.StatusPending)

	insertTestItems(t, db, itemRepo, []domain.OrderItem{
		{OrderID: completed.ID, ProductName: "Khobz gris", Quantity: 1,
			UnitPrice: decimal.NewFromFloat(1.10), TotalPrice: decimal.NewFromFloat(1.10)},
	})
	insertTestItems(t, db, itemRepo, []domain.OrderItem{
		{OrderID: pending.ID, ProductName: "Batbout mini", Quantity: 3,
			UnitPrice: decimal.NewFromFloat(0.70), TotalPrice: decimal.NewFromFloat(2.10)},
	})

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	count, err := itemRepo.DeleteForCompletedTx(context.Background(), tx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(1), count)

	// Items of the pending order survive.
	items, err := itemRepo.ListByOrderID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
