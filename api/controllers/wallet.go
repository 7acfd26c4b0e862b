package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kwameboadi/adepa-backend/api/responses"
	"github.com/kwameboadi/adepa-backend/api/validators"
	userssvc "github.com/kwameboadi/adepa-backend/internal/users"
	walletsvc "github.com/kwameboadi/adepa-backend/internal/wallet"
	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
)

type topUpRequest struct {
	AmountMinor int64 `json:"amount_minor" validate:"required,gt=0"`
}

type walletResponse struct {
	ID           uuid.UUID `json:"id"`
	BalanceMinor int64     `json:"balance_minor"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type walletTransactionResponse struct {
	ID                uuid.UUID  `json:"id"`
	Type              string     `json:"type"`
	AmountMinor       int64      `json:"amount_minor"`
	BalanceAfterMinor int64      `json:"balance_after_minor"`
	Description       string     `json:"description"`
	OrderID           *uuid.UUID `json:"order_id,omitempty"`
	Reference         *string    `json:"reference,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type walletTransactionListResponse struct {
	Transactions []walletTransactionResponse `json:"transactions"`
	NextCursor   string                      `json:"next_cursor,omitempty"`
}

type topUpResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

// WalletBalance returns the caller's wallet, creating it lazily on first use.
func WalletBalance(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wallet, err := svc.Balance(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newWalletResponse(wallet))
	}
}

// WalletTransactions pages through the caller's ledger, newest first.
func WalletTransactions(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, next, err := svc.Transactions(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]walletTransactionResponse, 0, len(entries))
		for i := range entries {
			out = append(out, newWalletTransactionResponse(&entries[i]))
		}
		responses.WriteSuccess(w, walletTransactionListResponse{Transactions: out, NextCursor: next})
	}
}

// WalletTopUp opens a gateway charge that will credit the caller's wallet
// once verified.
func WalletTopUp(svc walletsvc.Service, users userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || users == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload topUpRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := users.GetByID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		topUp, err := svc.InitiateTopUp(r.Context(), userID, user.Email, payload.AmountMinor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, topUpResponse{
			AuthorizationURL: topUp.AuthorizationURL,
			Reference:        topUp.Reference,
		})
	}
}

func newWalletResponse(wallet *models.Wallet) walletResponse {
	return walletResponse{
		ID:           wallet.ID,
		BalanceMinor: wallet.BalanceMinor,
		UpdatedAt:    wallet.UpdatedAt,
	}
}

func newWalletTransactionResponse(entry *models.WalletTransaction) walletTransactionResponse {
	return walletTransactionResponse{
		ID:                entry.ID,
		Type:              string(entry.Type),
		AmountMinor:       entry.AmountMinor,
		BalanceAfterMinor: entry.BalanceAfterMinor,
		Description:       entry.Description,
		OrderID:           entry.OrderID,
		Reference:         entry.Reference,
		CreatedAt:         entry.CreatedAt,
	}
}
