package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product carries the catalog fields the settlement path depends on: regular
// and sale prices plus a stock counter for variant-less products. Catalog
// management itself lives outside this service.
type Product struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name           string           `gorm:"column:name;not null"`
	Slug           string           `gorm:"column:slug;not null;uniqueIndex"`
	PriceMinor     int64            `gorm:"column:price_minor;not null"`
	SalePriceMinor *int64           `gorm:"column:sale_price_minor"`
	StockQty       int              `gorm:"column:stock_qty;not null;default:0"`
	Active         bool             `gorm:"column:active;not null;default:true"`
	Variants       []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EffectivePriceMinor resolves the product-level unit price: sale price wins
// only when set and strictly below the regular price.
func (p *Product) EffectivePriceMinor() int64 {
	if p.SalePriceMinor != nil && *p.SalePriceMinor < p.PriceMinor {
		return *p.SalePriceMinor
	}
	return p.PriceMinor
}
