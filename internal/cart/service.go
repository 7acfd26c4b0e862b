package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/internal/products"
	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
)

// Snapshot is a priced view of a user's cart.
type Snapshot struct {
	Items         []Line
	SubtotalMinor int64
}

// Line pairs a cart row with its resolved unit price.
type Line struct {
	Item           models.CartItem
	UnitPriceMinor int64
	LineTotalMinor int64
}

// Service orchestrates cart reads and mutations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*Snapshot, error)
	Add(ctx context.Context, userID uuid.UUID, productID uuid.UUID, variantID *uuid.UUID, qty int) (*models.CartItem, error)
	UpdateQty(ctx context.Context, userID, lineID uuid.UUID, qty int) error
	Remove(ctx context.Context, userID, lineID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Repo() Repository
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo     Repository
	Products products.Repository
}

type service struct {
	repo     Repository
	products products.Repository
}

// NewService builds a cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Products == nil {
		return nil, errors.New("products repo is required")
	}
	return &service{repo: params.Repo, products: params.Products}, nil
}

func (s *service) Repo() Repository {
	return s.repo
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(items)
}

// BuildSnapshot resolves unit prices for the given rows and sums the subtotal.
// Resolution has no side effects so checkout can reuse it inside a transaction.
func BuildSnapshot(items []models.CartItem) (*Snapshot, error) {
	snapshot := &Snapshot{Items: make([]Line, 0, len(items))}
	for _, item := range items {
		if item.Product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart item missing product")
		}
		unit := ResolveUnitPrice(item.Product, item.Variant)
		lineTotal := unit * int64(item.Qty)
		snapshot.Items = append(snapshot.Items, Line{
			Item:           item,
			UnitPriceMinor: unit,
			LineTotalMinor: lineTotal,
		})
		snapshot.SubtotalMinor += lineTotal
	}
	return snapshot, nil
}

// ResolveUnitPrice picks the effective unit price. A variant's sale price wins
// when set and strictly below its price, then the variant price, then the
// product's effective price.
func ResolveUnitPrice(product *models.Product, variant *models.ProductVariant) int64 {
	if variant != nil {
		if variant.PriceMinor != nil {
			if variant.SalePriceMinor != nil && *variant.SalePriceMinor < *variant.PriceMinor {
				return *variant.SalePriceMinor
			}
			return *variant.PriceMinor
		}
	}
	return product.EffectivePriceMinor()
}

func (s *service) Add(ctx context.Context, userID uuid.UUID, productID uuid.UUID, variantID *uuid.UUID, qty int) (*models.CartItem, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available")
	}
	if variantID != nil {
		if _, err := s.products.GetVariant(ctx, *variantID); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.GetLine(ctx, userID, productID, variantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.repo.UpdateQty(ctx, existing.ID, existing.Qty+qty); err != nil {
			return nil, err
		}
		existing.Qty += qty
		return existing, nil
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		VariantID: variantID,
		Qty:       qty,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) UpdateQty(ctx context.Context, userID, lineID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	line, err := s.repo.GetLineByID(ctx, userID, lineID)
	if err != nil {
		return err
	}
	return s.repo.UpdateQty(ctx, line.ID, qty)
}

func (s *service) Remove(ctx context.Context, userID, lineID uuid.UUID) error {
	line, err := s.repo.GetLineByID(ctx, userID, lineID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, line.ID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.ClearByUser(ctx, userID)
}

// ClearInTx empties the cart inside an ongoing transaction.
func ClearInTx(ctx context.Context, repo Repository, tx *gorm.DB, userID uuid.UUID) error {
	return repo.WithTx(tx).ClearByUser(ctx, userID)
}
