package discounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
)

// Validation is the outcome of checking a code against a cart subtotal.
type Validation struct {
	CodeID      uuid.UUID
	Code        string
	AmountMinor int64
}

// Service validates and redeems discount codes.
type Service interface {
	Validate(ctx context.Context, code string, subtotalMinor int64) (*Validation, error)
	Redeem(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Create(ctx context.Context, code *models.DiscountCode) error
}

// ServiceParams groups dependencies for the discount service.
type ServiceParams struct {
	Repo Repository
	Now  func() time.Time
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a discount service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{repo: params.Repo, now: params.Now}, nil
}

func (s *service) Validate(ctx context.Context, code string, subtotalMinor int64) (*Validation, error) {
	row, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !row.Active {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "discount code is not active")
	}
	if row.StartsAt != nil && now.Before(*row.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "discount code is not active")
	}
	if row.EndsAt != nil && now.After(*row.EndsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "discount code is not active")
	}
	if row.UsedCount >= row.UsageLimit {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "discount code is not active")
	}
	if row.MinPurchaseMinor != nil && subtotalMinor < *row.MinPurchaseMinor {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order subtotal is below the discount minimum").
			WithDetails(map[string]any{"min_purchase_minor": *row.MinPurchaseMinor})
	}

	amount := discountAmount(row, subtotalMinor)
	return &Validation{CodeID: row.ID, Code: row.Code, AmountMinor: amount}, nil
}

// discountAmount computes the discount in minor units. Percentage codes are
// stored as basis points; the result rounds down and never exceeds the
// subtotal or the configured cap.
func discountAmount(row *models.DiscountCode, subtotalMinor int64) int64 {
	var amount int64
	switch row.Kind {
	case enums.DiscountKindPercentage:
		amount = decimal.NewFromInt(subtotalMinor).
			Mul(decimal.NewFromInt(int64(row.PercentBps))).
			Div(decimal.NewFromInt(10000)).
			Floor().
			IntPart()
		if row.MaxDiscountMinor != nil && amount > *row.MaxDiscountMinor {
			amount = *row.MaxDiscountMinor
		}
	case enums.DiscountKindFlat:
		amount = row.AmountMinor
	}
	if amount > subtotalMinor {
		amount = subtotalMinor
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

func (s *service) Redeem(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	redeemed, err := s.repo.WithTx(tx).Redeem(ctx, id)
	if err != nil {
		return err
	}
	if !redeemed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "discount code is not active")
	}
	return nil
}

func (s *service) Create(ctx context.Context, code *models.DiscountCode) error {
	if !code.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown discount kind")
	}
	if code.UsageLimit <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage limit must be positive")
	}
	switch code.Kind {
	case enums.DiscountKindPercentage:
		if code.PercentBps <= 0 || code.PercentBps > 10000 {
			return pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 0 and 100")
		}
	case enums.DiscountKindFlat:
		if code.AmountMinor <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount amount must be positive")
		}
	}
	return s.repo.Create(ctx, code)
}
