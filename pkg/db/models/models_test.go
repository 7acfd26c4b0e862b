package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// The same model definitions back the postgres schema in production and the
// sqlite databases the package tests run on, so the schema must migrate
// cleanly onto both. Column defaults that only postgres understands belong
// in the SQL migrations, not in the tags.
func TestModelsMigrateOntoSQLite(t *testing.T) {
	dsn := "file:models_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&User{},
		&Address{},
		&Product{},
		&ProductVariant{},
		&CartItem{},
		&DiscountCode{},
		&Order{},
		&OrderItem{},
		&ShippingMethod{},
		&Wallet{},
		&WalletTransaction{},
	))
}

func TestBeforeCreateAssignsIDs(t *testing.T) {
	dsn := "file:models_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&User{}, &Wallet{}))

	user := User{
		Email:        "ama@example.com",
		PasswordHash: "x",
		FirstName:    "Ama",
		LastName:     "Mensah",
	}
	require.NoError(t, conn.Create(&user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)

	wallet := Wallet{UserID: user.ID}
	require.NoError(t, conn.Create(&wallet).Error)
	assert.NotEqual(t, uuid.Nil, wallet.ID)

	preset := uuid.New()
	keep := Wallet{ID: preset, UserID: uuid.New()}
	require.NoError(t, conn.Create(&keep).Error)
	assert.Equal(t, preset, keep.ID, "explicit ids are kept")
}
