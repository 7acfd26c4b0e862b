package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kwameboadi/adepa-backend/api/responses"
	"github.com/kwameboadi/adepa-backend/api/validators"
	orderssvc "github.com/kwameboadi/adepa-backend/internal/orders"
	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
)

type orderResponse struct {
	ID               uuid.UUID           `json:"id"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"payment_status"`
	PaymentMethod    string              `json:"payment_method"`
	PaymentReference *string             `json:"payment_reference,omitempty"`
	SubtotalMinor    int64               `json:"subtotal_minor"`
	DiscountMinor    int64               `json:"discount_minor"`
	ShippingMinor    int64               `json:"shipping_minor"`
	TotalMinor       int64               `json:"total_minor"`
	Currency         string              `json:"currency"`
	DisplayCurrency  *string             `json:"display_currency,omitempty"`
	DisplayTotal     *string             `json:"display_total,omitempty"`
	ShippingMethod   string              `json:"shipping_method"`
	TrackingNumber   *string             `json:"tracking_number,omitempty"`
	Items            []orderItemResponse `json:"items"`
	ShippingAddress  *addressResponse    `json:"shipping_address,omitempty"`
	BillingAddress   *addressResponse    `json:"billing_address,omitempty"`
	PaidAt           *time.Time          `json:"paid_at,omitempty"`
	ShippedAt        *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

type orderItemResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	Name           string     `json:"name"`
	VariantName    *string    `json:"variant_name,omitempty"`
	Qty            int        `json:"qty"`
	UnitPriceMinor int64      `json:"unit_price_minor"`
}

type addressResponse struct {
	FullName   string  `json:"full_name"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	Region     string  `json:"region"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    string  `json:"country"`
	Phone      *string `json:"phone,omitempty"`
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// OrderList pages through the caller's orders, newest first.
func OrderList(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		orders, next, err := svc.List(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(orders, next))
	}
}

// OrderGet returns one of the caller's orders with its lines.
func OrderGet(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderCancel lets a customer cancel their own order while it is still
// cancellable.
func OrderCancel(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), orderID, userID, false); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

func newOrderListResponse(orders []models.Order, next string) orderListResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderResponse(&orders[i]))
	}
	return orderListResponse{Orders: out, NextCursor: next}
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Name:           item.Name,
			VariantName:    item.VariantName,
			Qty:            item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}

	resp := orderResponse{
		ID:               order.ID,
		Status:           string(order.Status),
		PaymentStatus:    string(order.PaymentStatus),
		PaymentMethod:    string(order.PaymentMethod),
		PaymentReference: order.PaymentReference,
		SubtotalMinor:    order.SubtotalMinor,
		DiscountMinor:    order.DiscountMinor,
		ShippingMinor:    order.ShippingMinor,
		TotalMinor:       order.TotalMinor,
		Currency:         string(order.Currency),
		DisplayTotal:     order.DisplayTotal,
		ShippingMethod:   order.ShippingMethod,
		TrackingNumber:   order.TrackingNumber,
		Items:            items,
		ShippingAddress:  newAddressResponse(order.ShippingAddress),
		BillingAddress:   newAddressResponse(order.BillingAddress),
		PaidAt:           order.PaidAt,
		ShippedAt:        order.ShippedAt,
		DeliveredAt:      order.DeliveredAt,
		CancelledAt:      order.CancelledAt,
		CreatedAt:        order.CreatedAt,
	}
	if order.DisplayCurrency != nil {
		currency := string(*order.DisplayCurrency)
		resp.DisplayCurrency = &currency
	}
	return resp
}

func newAddressResponse(address *models.Address) *addressResponse {
	if address == nil {
		return nil
	}
	return &addressResponse{
		FullName:   address.FullName,
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		Region:     address.Region,
		PostalCode: address.PostalCode,
		Country:    address.Country,
		Phone:      address.Phone,
	}
}
