package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a shipping or billing address snapshot. Orders always create
// fresh rows, even when the payload matches an existing address.
type Address struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	FullName   string    `gorm:"column:full_name;not null"`
	Line1      string    `gorm:"column:line1;not null"`
	Line2      *string   `gorm:"column:line2"`
	City       string    `gorm:"column:city;not null"`
	Region     string    `gorm:"column:region;not null"`
	PostalCode *string   `gorm:"column:postal_code"`
	Country    string    `gorm:"column:country;not null;default:'GH'"`
	Phone      *string   `gorm:"column:phone"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (a *Address) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
