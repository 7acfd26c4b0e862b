package discounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:discounts_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.DiscountCode{}))
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB, now time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo: NewRepository(conn),
		Now:  func() time.Time { return now },
	})
	require.NoError(t, err)
	return svc
}

func int64Ptr(v int64) *int64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func seedCode(t *testing.T, conn *gorm.DB, code models.DiscountCode) *models.DiscountCode {
	t.Helper()
	require.NoError(t, conn.Create(&code).Error)
	return &code
}

func requireCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, want, typed.Code())
}

func TestValidatePercentageFloorsAndCaps(t *testing.T) {
	conn := newTestDB(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, conn, now)

	// 12.5% of 9999 = 1249.875, floors to 1249
	seedCode(t, conn, models.DiscountCode{
		Code:       "SAVE12",
		Kind:       enums.DiscountKindPercentage,
		PercentBps: 1250,
		UsageLimit: 10,
		Active:     true,
	})

	v, err := svc.Validate(context.Background(), "SAVE12", 9999)
	require.NoError(t, err)
	assert.Equal(t, int64(1249), v.AmountMinor)

	seedCode(t, conn, models.DiscountCode{
		Code:             "CAPPED",
		Kind:             enums.DiscountKindPercentage,
		PercentBps:       5000,
		MaxDiscountMinor: int64Ptr(1000),
		UsageLimit:       10,
		Active:           true,
	})

	v, err = svc.Validate(context.Background(), "CAPPED", 10000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), v.AmountMinor)
}

func TestValidateFlatNeverExceedsSubtotal(t *testing.T) {
	conn := newTestDB(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, conn, now)

	seedCode(t, conn, models.DiscountCode{
		Code:        "FLAT500",
		Kind:        enums.DiscountKindFlat,
		AmountMinor: 500,
		UsageLimit:  10,
		Active:      true,
	})

	v, err := svc.Validate(context.Background(), "FLAT500", 300)
	require.NoError(t, err)
	assert.Equal(t, int64(300), v.AmountMinor)
}

func TestValidateNormalizesCode(t *testing.T) {
	conn := newTestDB(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, conn, now)

	seedCode(t, conn, models.DiscountCode{
		Code:        "WELCOME",
		Kind:        enums.DiscountKindFlat,
		AmountMinor: 200,
		UsageLimit:  10,
		Active:      true,
	})

	v, err := svc.Validate(context.Background(), "  welcome ", 1000)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME", v.Code)
}

func TestValidateRejectsInactiveStates(t *testing.T) {
	conn := newTestDB(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, conn, now)

	seedCode(t, conn, models.DiscountCode{
		Code: "OFF", Kind: enums.DiscountKindFlat, AmountMinor: 100, UsageLimit: 10, Active: false,
	})
	seedCode(t, conn, models.DiscountCode{
		Code: "SOON", Kind: enums.DiscountKindFlat, AmountMinor: 100, UsageLimit: 10, Active: true,
		StartsAt: timePtr(now.Add(time.Hour)),
	})
	seedCode(t, conn, models.DiscountCode{
		Code: "GONE", Kind: enums.DiscountKindFlat, AmountMinor: 100, UsageLimit: 10, Active: true,
		EndsAt: timePtr(now.Add(-time.Hour)),
	})
	seedCode(t, conn, models.DiscountCode{
		Code: "SPENT", Kind: enums.DiscountKindFlat, AmountMinor: 100, UsageLimit: 2, UsedCount: 2, Active: true,
	})

	for _, code := range []string{"OFF", "SOON", "GONE", "SPENT"} {
		_, err := svc.Validate(context.Background(), code, 1000)
		requireCode(t, err, pkgerrors.CodeStateConflict)
	}
}

func TestValidateEnforcesMinPurchase(t *testing.T) {
	conn := newTestDB(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, conn, now)

	seedCode(t, conn, models.DiscountCode{
		Code:             "BIGSPEND",
		Kind:             enums.DiscountKindFlat,
		AmountMinor:      500,
		MinPurchaseMinor: int64Ptr(5000),
		UsageLimit:       10,
		Active:           true,
	})

	_, err := svc.Validate(context.Background(), "BIGSPEND", 4999)
	requireCode(t, err, pkgerrors.CodeValidation)

	v, err := svc.Validate(context.Background(), "BIGSPEND", 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(500), v.AmountMinor)
}

func TestValidateUnknownCode(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn, time.Now())

	_, err := svc.Validate(context.Background(), "NOPE", 1000)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestRedeemStopsAtUsageLimit(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn, time.Now())

	row := seedCode(t, conn, models.DiscountCode{
		Code:        "ONCE",
		Kind:        enums.DiscountKindFlat,
		AmountMinor: 100,
		UsageLimit:  1,
		Active:      true,
	})

	require.NoError(t, svc.Redeem(context.Background(), conn, row.ID))

	err := svc.Redeem(context.Background(), conn, row.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	var got models.DiscountCode
	require.NoError(t, conn.First(&got, "id = ?", row.ID).Error)
	assert.Equal(t, 1, got.UsedCount)
}

func TestCreateValidatesShape(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn, time.Now())

	tests := []struct {
		name string
		code models.DiscountCode
	}{
		{"unknown kind", models.DiscountCode{Code: "X", Kind: "mystery", UsageLimit: 1}},
		{"zero usage limit", models.DiscountCode{Code: "X", Kind: enums.DiscountKindFlat, AmountMinor: 100}},
		{"bps over 10000", models.DiscountCode{Code: "X", Kind: enums.DiscountKindPercentage, PercentBps: 10001, UsageLimit: 1}},
		{"flat without amount", models.DiscountCode{Code: "X", Kind: enums.DiscountKindFlat, UsageLimit: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := tt.code
			err := svc.Create(context.Background(), &code)
			requireCode(t, err, pkgerrors.CodeValidation)
		})
	}

	valid := models.DiscountCode{
		Code:       "spring10",
		Kind:       enums.DiscountKindPercentage,
		PercentBps: 1000,
		UsageLimit: 100,
		Active:     true,
	}
	require.NoError(t, svc.Create(context.Background(), &valid))
	assert.Equal(t, "SPRING10", valid.Code)
}
