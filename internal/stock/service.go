package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
)

// Line identifies one stock counter to adjust. VariantID takes precedence
// over ProductID when set, mirroring where the quantity was sold from.
type Line struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Qty       int
}

// Adjuster performs conditional stock updates inside a caller-owned transaction.
type Adjuster interface {
	Reduce(ctx context.Context, tx *gorm.DB, lines []Line) error
	Restock(ctx context.Context, tx *gorm.DB, lines []Line) error
}

type adjuster struct{}

// NewAdjuster exposes the default stock adjuster.
func NewAdjuster() Adjuster {
	return adjuster{}
}

// Reduce decrements each counter only when enough stock remains. Zero rows
// updated means another transaction won the remaining units.
func (adjuster) Reduce(ctx context.Context, tx *gorm.DB, lines []Line) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock adjustment")
	}
	for _, line := range lines {
		if line.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must be positive")
		}

		var res *gorm.DB
		if line.VariantID != nil {
			res = tx.WithContext(ctx).Exec(`
				UPDATE product_variants
				SET stock_qty = stock_qty - ?,
					updated_at = CURRENT_TIMESTAMP
				WHERE id = ? AND stock_qty >= ?
			`, line.Qty, *line.VariantID, line.Qty)
		} else {
			res = tx.WithContext(ctx).Exec(`
				UPDATE products
				SET stock_qty = stock_qty - ?,
					updated_at = CURRENT_TIMESTAMP
				WHERE id = ? AND stock_qty >= ?
			`, line.Qty, line.ProductID, line.Qty)
		}
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reduce stock")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
	}
	return nil
}

// Restock returns units to their counters, used by admin cancellation flows.
func (adjuster) Restock(ctx context.Context, tx *gorm.DB, lines []Line) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock adjustment")
	}
	for _, line := range lines {
		if line.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must be positive")
		}

		var res *gorm.DB
		if line.VariantID != nil {
			res = tx.WithContext(ctx).Exec(`
				UPDATE product_variants
				SET stock_qty = stock_qty + ?,
					updated_at = CURRENT_TIMESTAMP
				WHERE id = ?
			`, line.Qty, *line.VariantID)
		} else {
			res = tx.WithContext(ctx).Exec(`
				UPDATE products
				SET stock_qty = stock_qty + ?,
					updated_at = CURRENT_TIMESTAMP
				WHERE id = ?
			`, line.Qty, line.ProductID)
		}
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restock")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "stock row not found").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
	}
	return nil
}

// LinesFromOrderItems maps settled order lines back onto stock counters.
func LinesFromOrderItems(items []models.OrderItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Qty:       item.Qty,
		})
	}
	return lines
}
