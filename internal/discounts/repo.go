package discounts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
)

// Repository manages persistence for discount codes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	Create(ctx context.Context, code *models.DiscountCode) error
	// Redeem increments used_count only while redemptions remain.
	// Zero rows updated means the code was exhausted concurrently.
	Redeem(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a discount repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	var row models.DiscountCode
	err := r.db.WithContext(ctx).
		Where("code = ?", normalized).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount code not found")
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) Create(ctx context.Context, code *models.DiscountCode) error {
	code.Code = strings.ToUpper(strings.TrimSpace(code.Code))
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *repository) Redeem(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE discount_codes
		SET used_count = used_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND used_count < usage_limit
	`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
