package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kwameboadi/adepa-backend/api/responses"
	"github.com/kwameboadi/adepa-backend/api/validators"
	cartsvc "github.com/kwameboadi/adepa-backend/internal/cart"
	discountsvc "github.com/kwameboadi/adepa-backend/internal/discounts"
	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
)

type previewDiscountRequest struct {
	Code string `json:"code" validate:"required"`
}

type previewDiscountResponse struct {
	Code          string `json:"code"`
	SubtotalMinor int64  `json:"subtotal_minor"`
	DiscountMinor int64  `json:"discount_minor"`
}

type createDiscountRequest struct {
	Code             string     `json:"code" validate:"required"`
	Kind             string     `json:"kind" validate:"required,oneof=percentage flat"`
	PercentBps       int        `json:"percent_bps" validate:"gte=0,lte=10000"`
	AmountMinor      int64      `json:"amount_minor" validate:"gte=0"`
	MaxDiscountMinor *int64     `json:"max_discount_minor" validate:"omitempty,gt=0"`
	MinPurchaseMinor *int64     `json:"min_purchase_minor" validate:"omitempty,gt=0"`
	StartsAt         *time.Time `json:"starts_at"`
	EndsAt           *time.Time `json:"ends_at"`
	UsageLimit       int        `json:"usage_limit" validate:"required,gt=0"`
	Active           *bool      `json:"active"`
}

type discountResponse struct {
	ID               uuid.UUID  `json:"id"`
	Code             string     `json:"code"`
	Kind             string     `json:"kind"`
	PercentBps       int        `json:"percent_bps"`
	AmountMinor      int64      `json:"amount_minor"`
	MaxDiscountMinor *int64     `json:"max_discount_minor,omitempty"`
	MinPurchaseMinor *int64     `json:"min_purchase_minor,omitempty"`
	StartsAt         *time.Time `json:"starts_at,omitempty"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	UsageLimit       int        `json:"usage_limit"`
	UsedCount        int        `json:"used_count"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"created_at"`
}

// DiscountPreview validates a code against the caller's current cart and
// quotes the amount it would shave off. Nothing is redeemed.
func DiscountPreview(discounts discountsvc.Service, cart cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload previewDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := cart.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(snapshot.Items) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
			return
		}

		validation, err := discounts.Validate(r.Context(), payload.Code, snapshot.SubtotalMinor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, previewDiscountResponse{
			Code:          validation.Code,
			SubtotalMinor: snapshot.SubtotalMinor,
			DiscountMinor: validation.AmountMinor,
		})
	}
}

// AdminDiscountCreate registers a new discount code.
func AdminDiscountCreate(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseDiscountKind(payload.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount kind"))
			return
		}

		code := &models.DiscountCode{
			Code:             payload.Code,
			Kind:             kind,
			PercentBps:       payload.PercentBps,
			AmountMinor:      payload.AmountMinor,
			MaxDiscountMinor: payload.MaxDiscountMinor,
			MinPurchaseMinor: payload.MinPurchaseMinor,
			StartsAt:         payload.StartsAt,
			EndsAt:           payload.EndsAt,
			UsageLimit:       payload.UsageLimit,
			Active:           true,
		}
		if payload.Active != nil {
			code.Active = *payload.Active
		}

		if err := svc.Create(r.Context(), code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newDiscountResponse(code))
	}
}

func newDiscountResponse(code *models.DiscountCode) discountResponse {
	return discountResponse{
		ID:               code.ID,
		Code:             code.Code,
		Kind:             string(code.Kind),
		PercentBps:       code.PercentBps,
		AmountMinor:      code.AmountMinor,
		MaxDiscountMinor: code.MaxDiscountMinor,
		MinPurchaseMinor: code.MinPurchaseMinor,
		StartsAt:         code.StartsAt,
		EndsAt:           code.EndsAt,
		UsageLimit:       code.UsageLimit,
		UsedCount:        code.UsedCount,
		Active:           code.Active,
		CreatedAt:        code.CreatedAt,
	}
}
