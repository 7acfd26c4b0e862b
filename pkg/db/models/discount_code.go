package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/pkg/enums"
)

// DiscountCode is a redeemable promotion. Percentage codes store basis points
// (1250 = 12.5%); flat codes store a minor-unit amount. UsedCount only moves
// forward; cancellations never hand a redemption back.
type DiscountCode struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code             string             `gorm:"column:code;not null;uniqueIndex"`
	Kind             enums.DiscountKind `gorm:"column:kind;type:text;not null"`
	PercentBps       int                `gorm:"column:percent_bps;not null;default:0"`
	AmountMinor      int64              `gorm:"column:amount_minor;not null;default:0"`
	MaxDiscountMinor *int64             `gorm:"column:max_discount_minor"`
	MinPurchaseMinor *int64             `gorm:"column:min_purchase_minor"`
	StartsAt         *time.Time         `gorm:"column:starts_at"`
	EndsAt           *time.Time         `gorm:"column:ends_at"`
	UsageLimit       int                `gorm:"column:usage_limit;not null"`
	UsedCount        int                `gorm:"column:used_count;not null;default:0"`
	Active           bool               `gorm:"column:active;not null;default:true"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *DiscountCode) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
