package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductVariant is a purchasable variation (size, colour) with its own
// optional pricing and stock counter.
type ProductVariant struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Name           string    `gorm:"column:name;not null"`
	PriceMinor     *int64    `gorm:"column:price_minor"`
	SalePriceMinor *int64    `gorm:"column:sale_price_minor"`
	StockQty       int       `gorm:"column:stock_qty;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
