package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kwameboadi/adepa-backend/api/responses"
	"github.com/kwameboadi/adepa-backend/api/validators"
	cartsvc "github.com/kwameboadi/adepa-backend/internal/cart"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Qty       int        `json:"qty" validate:"required,gt=0"`
}

type updateCartItemRequest struct {
	Qty int `json:"qty" validate:"required,gt=0"`
}

type cartResponse struct {
	Items         []cartLineResponse `json:"items"`
	SubtotalMinor int64              `json:"subtotal_minor"`
}

type cartLineResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	ProductName    string     `json:"product_name"`
	VariantName    *string    `json:"variant_name,omitempty"`
	Qty            int        `json:"qty"`
	UnitPriceMinor int64      `json:"unit_price_minor"`
	LineTotalMinor int64      `json:"line_total_minor"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CartGet returns the priced snapshot of the caller's open cart.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}

// CartAdd appends a line to the cart, merging quantity when the same
// product and variant already sit in it.
func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.Add(r.Context(), userID, payload.ProductID, payload.VariantID, payload.Qty); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(snapshot))
	}
}

// CartUpdateItem replaces the quantity on one cart line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := validators.ParsePathUUID(chi.URLParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateQty(r.Context(), userID, lineID, payload.Qty); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}

// CartRemoveItem deletes one cart line.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := validators.ParsePathUUID(chi.URLParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), userID, lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// CartClear drops every line in the caller's cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func newCartResponse(snapshot *cartsvc.Snapshot) cartResponse {
	items := make([]cartLineResponse, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		resp := cartLineResponse{
			ID:             line.Item.ID,
			ProductID:      line.Item.ProductID,
			VariantID:      line.Item.VariantID,
			Qty:            line.Item.Qty,
			UnitPriceMinor: line.UnitPriceMinor,
			LineTotalMinor: line.LineTotalMinor,
			CreatedAt:      line.Item.CreatedAt,
		}
		if line.Item.Product != nil {
			resp.ProductName = line.Item.Product.Name
		}
		if line.Item.Variant != nil {
			resp.VariantName = &line.Item.Variant.Name
		}
		items = append(items, resp)
	}
	return cartResponse{Items: items, SubtotalMinor: snapshot.SubtotalMinor}
}
