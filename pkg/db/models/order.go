package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/pkg/enums"
)

// Order is the settlement aggregate. All amounts are minor units (pesewas)
// in the settlement currency; the display total is informational only and
// never recomputed after creation.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status            enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'awaiting_payment'"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentReference  *string             `gorm:"column:payment_reference;uniqueIndex"`
	SubtotalMinor     int64               `gorm:"column:subtotal_minor;not null"`
	DiscountMinor     int64               `gorm:"column:discount_minor;not null;default:0"`
	ShippingMinor     int64               `gorm:"column:shipping_minor;not null;default:0"`
	TotalMinor        int64               `gorm:"column:total_minor;not null"`
	Currency          enums.Currency      `gorm:"column:currency;type:text;not null;default:'GHS'"`
	DisplayCurrency   *enums.Currency     `gorm:"column:display_currency;type:text"`
	DisplayTotal      *string             `gorm:"column:display_total"`
	DiscountCodeID    *uuid.UUID          `gorm:"column:discount_code_id;type:uuid"`
	ShippingMethod    string              `gorm:"column:shipping_method;not null"`
	ShippingAddressID uuid.UUID           `gorm:"column:shipping_address_id;type:uuid;not null"`
	BillingAddressID  uuid.UUID           `gorm:"column:billing_address_id;type:uuid;not null"`
	TrackingNumber    *string             `gorm:"column:tracking_number"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress   *Address            `gorm:"foreignKey:ShippingAddressID"`
	BillingAddress    *Address            `gorm:"foreignKey:BillingAddressID"`
	PaidAt            *time.Time          `gorm:"column:paid_at"`
	ShippedAt         *time.Time          `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time          `gorm:"column:delivered_at"`
	CancelledAt       *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
