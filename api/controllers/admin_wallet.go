package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kwameboadi/adepa-backend/api/responses"
	"github.com/kwameboadi/adepa-backend/api/validators"
	walletsvc "github.com/kwameboadi/adepa-backend/internal/wallet"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
)

type adminWalletAdjustRequest struct {
	AmountMinor int64  `json:"amount_minor" validate:"required,gt=0"`
	Description string `json:"description" validate:"required"`
}

type refundToOrderRequest struct {
	AmountMinor *int64 `json:"amount_minor" validate:"omitempty,gt=0"`
}

// AdminWalletCredit adds funds to a customer's wallet outside the gateway,
// for goodwill credits and manual corrections.
func AdminWalletCredit(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminWalletAdjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.CreditUser(r.Context(), userID, payload.AmountMinor, enums.WalletTransactionAdminCredit, payload.Description, nil); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "credited"})
	}
}

// AdminWalletDebit removes funds from a customer's wallet.
func AdminWalletDebit(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminWalletAdjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DebitUser(r.Context(), userID, payload.AmountMinor, payload.Description); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "debited"})
	}
}

// AdminWalletRefundOrder pushes a wallet refund against an order that was
// paid from a wallet. Without an explicit amount the original payment is
// refunded in full.
func AdminWalletRefundOrder(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload refundToOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var amount int64
		if payload.AmountMinor != nil {
			amount = *payload.AmountMinor
		}

		if err := svc.RefundToOrder(r.Context(), orderID, amount); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "refunded"})
	}
}
