package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/pkg/db"
	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/pagination"
	"github.com/kwameboadi/adepa-backend/pkg/paystack"
)

// TopUpReferencePrefix marks gateway references that credit a wallet instead
// of settling an order.
const TopUpReferencePrefix = "topup_"

// GatewayInitializer is the slice of the gateway client the wallet needs.
type GatewayInitializer interface {
	Initialize(ctx context.Context, params paystack.InitializeParams) (*paystack.Authorization, error)
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TopUp is the hosted-page handle returned by InitiateTopUp.
type TopUp struct {
	AuthorizationURL string
	Reference        string
}

// Service owns the wallet balance and its append-only ledger.
type Service interface {
	// Debit charges the user's wallet inside the caller's transaction and
	// appends the matching PAYMENT ledger row.
	Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountMinor int64, orderID uuid.UUID) error
	// Credit adds funds and appends the matching ledger row. TOP_UP credits
	// carry the gateway reference and are replay-safe.
	Credit(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, amountMinor int64, kind enums.WalletTransactionType, description string, orderID *uuid.UUID, reference *string) error
	CreditUser(ctx context.Context, userID uuid.UUID, amountMinor int64, kind enums.WalletTransactionType, description string, reference *string) error
	DebitUser(ctx context.Context, userID uuid.UUID, amountMinor int64, description string) error
	RefundToOrder(ctx context.Context, orderID uuid.UUID, amountMinor int64) error
	InitiateTopUp(ctx context.Context, userID uuid.UUID, email string, amountMinor int64) (*TopUp, error)
	CreditTopUp(ctx context.Context, walletID uuid.UUID, amountMinor int64, reference string) error
	Balance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	WalletIDFromReference(ctx context.Context, metadata map[string]any) (uuid.UUID, error)
	Transactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, string, error)
	Repo() Repository
}

// ServiceParams groups dependencies for the wallet service.
type ServiceParams struct {
	Repo        Repository
	DB          TxRunner
	Gateway     GatewayInitializer
	Currency    enums.Currency
	CallbackURL string
}

type service struct {
	repo        Repository
	db          TxRunner
	gateway     GatewayInitializer
	currency    enums.Currency
	callbackURL string
}

// NewService builds a wallet service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.DB == nil {
		return nil, errors.New("db is required")
	}
	if params.Gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if !params.Currency.IsValid() {
		return nil, errors.New("currency is required")
	}
	return &service{
		repo:        params.Repo,
		db:          params.DB,
		gateway:     params.Gateway,
		currency:    params.Currency,
		callbackURL: params.CallbackURL,
	}, nil
}

func (s *service) Repo() Repository {
	return s.repo
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amountMinor int64, orderID uuid.UUID) error {
	if amountMinor <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}

	repo := s.repo.WithTx(tx)
	wallet, err := repo.GetByUserForUpdate(ctx, userID)
	if err != nil {
		return err
	}
	if wallet == nil || wallet.BalanceMinor < amountMinor {
		return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient wallet balance")
	}

	newBalance := wallet.BalanceMinor - amountMinor
	if err := repo.UpdateBalance(ctx, wallet.ID, newBalance); err != nil {
		return err
	}
	return repo.AppendTransaction(ctx, &models.WalletTransaction{
		WalletID:          wallet.ID,
		Type:              enums.WalletTransactionPayment,
		AmountMinor:       -amountMinor,
		BalanceAfterMinor: newBalance,
		Description:       fmt.Sprintf("payment for order %s", orderID),
		OrderID:           &orderID,
	})
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, amountMinor int64, kind enums.WalletTransactionType, description string, orderID *uuid.UUID, reference *string) error {
	if amountMinor <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	if !kind.IsCredit() {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction type is not a credit")
	}

	repo := s.repo.WithTx(tx)
	if reference != nil {
		seen, err := repo.ReferenceSeen(ctx, *reference)
		if err != nil {
			return err
		}
		if seen {
			return pkgerrors.New(pkgerrors.CodeConflict, "reference already credited")
		}
	}

	wallet, err := repo.GetByIDForUpdate(ctx, walletID)
	if err != nil {
		return err
	}
	if wallet == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wallet not found")
	}

	newBalance := wallet.BalanceMinor + amountMinor
	if err := repo.UpdateBalance(ctx, wallet.ID, newBalance); err != nil {
		return err
	}
	err = repo.AppendTransaction(ctx, &models.WalletTransaction{
		WalletID:          wallet.ID,
		Type:              kind,
		AmountMinor:       amountMinor,
		BalanceAfterMinor: newBalance,
		Description:       description,
		OrderID:           orderID,
		Reference:         reference,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "reference already credited")
		}
		return err
	}
	return nil
}

// CreditUser credits by user id, creating the wallet on first use. Admin
// credits go through here.
func (s *service) CreditUser(ctx context.Context, userID uuid.UUID, amountMinor int64, kind enums.WalletTransactionType, description string, reference *string) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		wallet, err := s.ensureWallet(ctx, tx, userID)
		if err != nil {
			return err
		}
		return s.Credit(ctx, tx, wallet.ID, amountMinor, kind, description, nil, reference)
	})
}

// DebitUser is the admin debit entry point, recorded as ADMIN_DEBIT.
func (s *service) DebitUser(ctx context.Context, userID uuid.UUID, amountMinor int64, description string) error {
	if amountMinor <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		wallet, err := repo.GetByUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if wallet == nil || wallet.BalanceMinor < amountMinor {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient wallet balance")
		}
		newBalance := wallet.BalanceMinor - amountMinor
		if err := repo.UpdateBalance(ctx, wallet.ID, newBalance); err != nil {
			return err
		}
		return repo.AppendTransaction(ctx, &models.WalletTransaction{
			WalletID:          wallet.ID,
			Type:              enums.WalletTransactionAdminDebit,
			AmountMinor:       -amountMinor,
			BalanceAfterMinor: newBalance,
			Description:       description,
		})
	})
}

// RefundToOrder returns a wallet payment for the given order. The original
// PAYMENT entry locates the wallet; orders paid another way have none. A
// non-positive amount refunds the original payment in full.
func (s *service) RefundToOrder(ctx context.Context, orderID uuid.UUID, amountMinor int64) error {
	payment, err := s.repo.FindPaymentByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if payment == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no wallet payment found for order")
	}
	if amountMinor <= 0 {
		amountMinor = -payment.AmountMinor
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.Credit(ctx, tx, payment.WalletID, amountMinor, enums.WalletTransactionRefund,
			fmt.Sprintf("refund for order %s", orderID), &orderID, nil)
	})
}

// InitiateTopUp creates the hosted gateway session for a wallet top-up. The
// wallet id travels in the reference and metadata so verification can route
// the credit without an order.
func (s *service) InitiateTopUp(ctx context.Context, userID uuid.UUID, email string, amountMinor int64) (*TopUp, error) {
	if amountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "top-up amount must be positive")
	}

	var wallet *models.Wallet
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		wallet, txErr = s.ensureWallet(ctx, tx, userID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	reference := fmt.Sprintf("%s%s", TopUpReferencePrefix, uuid.NewString())
	auth, err := s.gateway.Initialize(ctx, paystack.InitializeParams{
		Email:       email,
		AmountMinor: amountMinor,
		Currency:    s.currency.String(),
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Metadata: map[string]any{
			"wallet_id": wallet.ID.String(),
			"kind":      "wallet_topup",
		},
	})
	if err != nil {
		return nil, err
	}
	return &TopUp{AuthorizationURL: auth.AuthorizationURL, Reference: auth.Reference}, nil
}

// CreditTopUp applies a verified gateway top-up to the wallet.
func (s *service) CreditTopUp(ctx context.Context, walletID uuid.UUID, amountMinor int64, reference string) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.Credit(ctx, tx, walletID, amountMinor, enums.WalletTransactionTopUp,
			"wallet top-up", nil, &reference)
	})
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	wallet, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return &models.Wallet{UserID: userID, BalanceMinor: 0}, nil
	}
	return wallet, nil
}

// WalletIDFromReference extracts the wallet id a top-up was initialized with.
func (s *service) WalletIDFromReference(_ context.Context, metadata map[string]any) (uuid.UUID, error) {
	raw, ok := metadata["wallet_id"].(string)
	if !ok || raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "top-up metadata missing wallet id")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallet id in top-up metadata")
	}
	return id, nil
}

func (s *service) Transactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, string, error) {
	wallet, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if wallet == nil {
		return []models.WalletTransaction{}, "", nil
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	entries, err := s.repo.ListTransactions(ctx, wallet.ID, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, next, nil
}

func (s *service) ensureWallet(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Wallet, error) {
	repo := s.repo.WithTx(tx)
	wallet, err := repo.GetByUserForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}
	wallet, err = repo.CreateForUser(ctx, userID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return repo.GetByUserForUpdate(ctx, userID)
		}
		return nil, err
	}
	return wallet, nil
}
