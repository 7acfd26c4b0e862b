package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/internal/products"
	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.CartItem{},
	))
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Products: products.NewRepository(conn),
	})
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, conn *gorm.DB, price int64, sale *int64) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:           "Kente Scarf",
		Slug:           "kente-scarf-" + uuid.NewString(),
		PriceMinor:     price,
		SalePriceMinor: sale,
		StockQty:       50,
		Active:         true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func int64Ptr(v int64) *int64 { return &v }

func TestResolveUnitPrice(t *testing.T) {
	tests := []struct {
		name    string
		product models.Product
		variant *models.ProductVariant
		want    int64
	}{
		{
			name:    "product regular price",
			product: models.Product{PriceMinor: 4500},
			want:    4500,
		},
		{
			name:    "product sale price wins when lower",
			product: models.Product{PriceMinor: 4500, SalePriceMinor: int64Ptr(3900)},
			want:    3900,
		},
		{
			name:    "product sale price ignored when not lower",
			product: models.Product{PriceMinor: 4500, SalePriceMinor: int64Ptr(4500)},
			want:    4500,
		},
		{
			name:    "variant price overrides product",
			product: models.Product{PriceMinor: 4500},
			variant: &models.ProductVariant{PriceMinor: int64Ptr(5200)},
			want:    5200,
		},
		{
			name:    "variant sale price wins when lower",
			product: models.Product{PriceMinor: 4500},
			variant: &models.ProductVariant{PriceMinor: int64Ptr(5200), SalePriceMinor: int64Ptr(4800)},
			want:    4800,
		},
		{
			name:    "variant sale price ignored when not lower",
			product: models.Product{PriceMinor: 4500},
			variant: &models.ProductVariant{PriceMinor: int64Ptr(5200), SalePriceMinor: int64Ptr(5200)},
			want:    5200,
		},
		{
			name:    "variant without price falls back to product",
			product: models.Product{PriceMinor: 4500, SalePriceMinor: int64Ptr(3900)},
			variant: &models.ProductVariant{},
			want:    3900,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveUnitPrice(&tt.product, tt.variant))
		})
	}
}

func TestBuildSnapshotSumsLines(t *testing.T) {
	productA := &models.Product{PriceMinor: 1000}
	productB := &models.Product{PriceMinor: 2500, SalePriceMinor: int64Ptr(2000)}

	snapshot, err := BuildSnapshot([]models.CartItem{
		{Product: productA, Qty: 3},
		{Product: productB, Qty: 2},
	})
	require.NoError(t, err)

	require.Len(t, snapshot.Items, 2)
	assert.Equal(t, int64(1000), snapshot.Items[0].UnitPriceMinor)
	assert.Equal(t, int64(3000), snapshot.Items[0].LineTotalMinor)
	assert.Equal(t, int64(2000), snapshot.Items[1].UnitPriceMinor)
	assert.Equal(t, int64(4000), snapshot.Items[1].LineTotalMinor)
	assert.Equal(t, int64(7000), snapshot.SubtotalMinor)
}

func TestBuildSnapshotRequiresProduct(t *testing.T) {
	_, err := BuildSnapshot([]models.CartItem{{Qty: 1}})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())
}

func TestAddMergesExistingLine(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, 4500, nil)
	userID := uuid.New()

	first, err := svc.Add(context.Background(), userID, product.ID, nil, 2)
	require.NoError(t, err)

	second, err := svc.Add(context.Background(), userID, product.ID, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Qty)

	var count int64
	require.NoError(t, conn.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAddKeepsVariantLinesSeparate(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, 4500, nil)
	userID := uuid.New()

	variant := &models.ProductVariant{ProductID: product.ID, Name: "Large", StockQty: 10}
	require.NoError(t, conn.Create(variant).Error)

	_, err := svc.Add(context.Background(), userID, product.ID, nil, 1)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), userID, product.ID, &variant.ID, 1)
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestAddRejectsInactiveProduct(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, 4500, nil)
	require.NoError(t, conn.Model(product).Update("active", false).Error)

	_, err := svc.Add(context.Background(), uuid.New(), product.ID, nil, 1)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestUpdateQtyScopedToOwner(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, 4500, nil)
	owner := uuid.New()

	line, err := svc.Add(context.Background(), owner, product.ID, nil, 1)
	require.NoError(t, err)

	err = svc.UpdateQty(context.Background(), uuid.New(), line.ID, 4)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	require.NoError(t, svc.UpdateQty(context.Background(), owner, line.ID, 4))

	snapshot, err := svc.Get(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, 4, snapshot.Items[0].Item.Qty)
}

func TestClearEmptiesCart(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	product := seedProduct(t, conn, 4500, nil)
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, product.ID, nil, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), userID))

	snapshot, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Items)
	assert.Zero(t, snapshot.SubtotalMinor)
}
