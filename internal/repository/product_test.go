package repository

import (
	"context"
	"errors"
	"testing"
	"tienda-services/internal/client"
	"tienda-services/internal/config"
	"tienda-services/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.InitDBClient(config.Database{
		Driver:       "sqlite",
		URL:          ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, client.OrderModels...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedProduct(t *testing.T, repo ProductRepository, name string, stock int64, categories ...model.Category) *model.Product {
	t.Helper()

	product := &model.Product{
		Name:        name,
		Description: name,
		Price:       decimal.NewFromInt(10),
		Stock:       stock,
		Image:       name + ".png",
		Categories:  categories,
	}
	require.NoError(t, repo.Create(context.Background(), nil, product))
	return product
}

func TestDecrementStockOnlyWhenSufficient(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newTestDB(t))
	product := seedProduct(t, repo, "Hammer", 3)

	ok, err := repo.DecrementStock(ctx, nil, product.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, nil, product.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DecrementStock(ctx, nil, 9999, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, nil, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Stock)
}

func TestIncrementStock(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newTestDB(t))
	product := seedProduct(t, repo, "Hammer", 1)

	require.NoError(t, repo.IncrementStock(ctx, nil, product.ID, 4))
	stored, err := repo.FindByID(ctx, nil, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.Stock)

	assert.ErrorIs(t, repo.IncrementStock(ctx, nil, 9999, 1), gorm.ErrRecordNotFound)
}

func TestCreateLinksExistingCategoriesOnly(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	categories := NewCategoryRepository(db)
	products := NewProductRepository(db)

	tools := &model.Category{Name: "Tools", Description: "hand tools"}
	require.NoError(t, categories.Create(ctx, tools))

	product := seedProduct(t, products, "Hammer", 1, model.Category{ID: tools.ID, Name: "renamed?"})

	stored, err := categories.FindByID(ctx, tools.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tools", stored.Name)

	byCategory, err := products.FindByCategory(ctx, tools.ID)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, product.ID, byCategory[0].ID)
}

func TestCategoryNameIsUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &model.Category{Name: "Tools", Description: "a"}))
	err := repo.Create(ctx, &model.Category{Name: "Tools", Description: "b"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestFindManySkipsMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(newTestDB(t))

	tools := &model.Category{Name: "Tools", Description: "a"}
	require.NoError(t, repo.Create(ctx, tools))

	found, err := repo.FindMany(ctx, nil, []uint{tools.ID, 999})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, tools.ID, found[0].ID)

	none, err := repo.FindMany(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderStatusOverwriteAndLines(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newTestDB(t))

	order := &model.Order{Email: "ana@example.com", Status: model.OrderStatusDelivered}
	order.AddLine(model.NewOrderLine(1, decimal.NewFromInt(5), 2))
	require.NoError(t, repo.Create(ctx, nil, order))
	require.NotZero(t, order.Lines[0].ID)
	assert.Equal(t, order.ID, order.Lines[0].OrderID)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, model.OrderStatusNew))
	require.NoError(t, repo.UpdateStatus(ctx, order.ID, model.OrderStatusNew))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 9999, model.OrderStatusNew), gorm.ErrRecordNotFound)

	stored, err := repo.FindByID(ctx, nil, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusNew, stored.Status)
	require.Len(t, stored.Lines, 1)

	require.NoError(t, repo.Delete(ctx, nil, order.ID))
	lines, err := repo.FindLinesByOrderID(ctx, nil, order.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRecomputeTotalSumsStoredLines(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewOrderRepository(db)

	order := &model.Order{Email: "ana@example.com", Status: model.OrderStatusNew, Total: decimal.NewFromInt(1)}
	require.NoError(t, repo.Create(ctx, nil, order))

	total, err := repo.RecomputeTotal(ctx, nil, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.Zero.Equal(total), total.String())

	for _, line := range []model.OrderLine{
		model.NewOrderLine(1, decimal.NewFromInt(100), 2),
		model.NewOrderLine(2, decimal.NewFromInt(50), 1),
	} {
		line.OrderID = order.ID
		require.NoError(t, repo.CreateLine(ctx, nil, &line))
	}

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.FindByID(ctx, tx, order.ID)
		require.NoError(t, err)
		require.Len(t, locked.Lines, 2)

		total, err = repo.RecomputeTotal(ctx, tx, order.ID)
		return err
	}))
	assert.True(t, decimal.NewFromInt(250).Equal(total), total.String())

	stored, err := repo.FindByID(ctx, nil, order.ID)
	require.NoError(t, err)
	assert.True(t, model.SumSubtotals(stored.Lines).Equal(stored.Total))

	_, err = repo.RecomputeTotal(ctx, nil, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
