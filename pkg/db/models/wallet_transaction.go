package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/pkg/enums"
)

// WalletTransaction is one append-only ledger entry. AmountMinor is signed;
// BalanceAfterMinor is the balance snapshot recorded atomically with the
// entry. Reference carries the gateway reference for top-ups and is unique
// so replayed callbacks cannot double-credit.
type WalletTransaction struct {
	ID                uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	WalletID          uuid.UUID                   `gorm:"column:wallet_id;type:uuid;not null;index"`
	Type              enums.WalletTransactionType `gorm:"column:type;type:text;not null"`
	AmountMinor       int64                       `gorm:"column:amount_minor;not null"`
	BalanceAfterMinor int64                       `gorm:"column:balance_after_minor;not null"`
	Description       string                      `gorm:"column:description;not null"`
	OrderID           *uuid.UUID                  `gorm:"column:order_id;type:uuid;index"`
	Reference         *string                     `gorm:"column:reference;uniqueIndex"`
	CreatedAt         time.Time                   `gorm:"column:created_at;autoCreateTime"`
}

func (t *WalletTransaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
