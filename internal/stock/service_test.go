package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}, &models.ProductVariant{}))
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, qty int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       "Shea Butter 500g",
		Slug:       "shea-butter-" + uuid.NewString(),
		PriceMinor: 4500,
		StockQty:   qty,
		Active:     true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestReduceDecrementsProductStock(t *testing.T) {
	conn := newTestDB(t)
	product := seedProduct(t, conn, 10)

	adj := NewAdjuster()
	err := adj.Reduce(context.Background(), conn, []Line{{ProductID: product.ID, Qty: 3}})
	require.NoError(t, err)

	var got models.Product
	require.NoError(t, conn.First(&got, "id = ?", product.ID).Error)
	assert.Equal(t, 7, got.StockQty)
}

func TestReduceFailsWhenInsufficient(t *testing.T) {
	conn := newTestDB(t)
	product := seedProduct(t, conn, 2)

	adj := NewAdjuster()
	err := adj.Reduce(context.Background(), conn, []Line{{ProductID: product.ID, Qty: 3}})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeOutOfStock, typed.Code())

	// the losing update must not move the counter
	var got models.Product
	require.NoError(t, conn.First(&got, "id = ?", product.ID).Error)
	assert.Equal(t, 2, got.StockQty)
}

func TestReduceTargetsVariantWhenSet(t *testing.T) {
	conn := newTestDB(t)
	product := seedProduct(t, conn, 5)

	variant := &models.ProductVariant{
		ProductID: product.ID,
		Name:      "1kg",
		StockQty:  4,
	}
	require.NoError(t, conn.Create(variant).Error)

	adj := NewAdjuster()
	err := adj.Reduce(context.Background(), conn, []Line{{ProductID: product.ID, VariantID: &variant.ID, Qty: 4}})
	require.NoError(t, err)

	var gotVariant models.ProductVariant
	require.NoError(t, conn.First(&gotVariant, "id = ?", variant.ID).Error)
	assert.Equal(t, 0, gotVariant.StockQty)

	var gotProduct models.Product
	require.NoError(t, conn.First(&gotProduct, "id = ?", product.ID).Error)
	assert.Equal(t, 5, gotProduct.StockQty, "product counter stays untouched")
}

func TestReduceRejectsNonPositiveQty(t *testing.T) {
	conn := newTestDB(t)
	product := seedProduct(t, conn, 5)

	adj := NewAdjuster()
	err := adj.Reduce(context.Background(), conn, []Line{{ProductID: product.ID, Qty: 0}})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRestockReturnsUnits(t *testing.T) {
	conn := newTestDB(t)
	product := seedProduct(t, conn, 1)

	adj := NewAdjuster()
	err := adj.Restock(context.Background(), conn, []Line{{ProductID: product.ID, Qty: 4}})
	require.NoError(t, err)

	var got models.Product
	require.NoError(t, conn.First(&got, "id = ?", product.ID).Error)
	assert.Equal(t, 5, got.StockQty)
}

func TestRestockUnknownProduct(t *testing.T) {
	conn := newTestDB(t)

	adj := NewAdjuster()
	err := adj.Restock(context.Background(), conn, []Line{{ProductID: uuid.New(), Qty: 1}})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestLinesFromOrderItems(t *testing.T) {
	variantID := uuid.New()
	items := []models.OrderItem{
		{ProductID: uuid.New(), Qty: 2},
		{ProductID: uuid.New(), VariantID: &variantID, Qty: 1},
	}

	lines := LinesFromOrderItems(items)
	require.Len(t, lines, 2)
	assert.Equal(t, items[0].ProductID, lines[0].ProductID)
	assert.Nil(t, lines[0].VariantID)
	assert.Equal(t, 2, lines[0].Qty)
	require.NotNil(t, lines[1].VariantID)
	assert.Equal(t, variantID, *lines[1].VariantID)
}
