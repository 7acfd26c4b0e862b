package controllers

import (
	"net/http"

	"github.com/kwameboadi/adepa-backend/api/responses"
	"github.com/kwameboadi/adepa-backend/api/validators"
	orderssvc "github.com/kwameboadi/adepa-backend/internal/orders"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
)

type checkoutRequest struct {
	PaymentMethod   string          `json:"payment_method" validate:"required"`
	ShippingMethod  string          `json:"shipping_method" validate:"required"`
	DiscountCode    string          `json:"discount_code"`
	DisplayCurrency string          `json:"display_currency"`
	ShippingAddress addressPayload  `json:"shipping_address" validate:"required"`
	BillingAddress  *addressPayload `json:"billing_address"`
}

type addressPayload struct {
	FullName   string  `json:"full_name" validate:"required"`
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2"`
	City       string  `json:"city" validate:"required"`
	Region     string  `json:"region" validate:"required"`
	PostalCode *string `json:"postal_code"`
	Country    string  `json:"country" validate:"required,len=2"`
	Phone      *string `json:"phone"`
}

type checkoutResponse struct {
	Order            orderResponse `json:"order"`
	AuthorizationURL string        `json:"authorization_url,omitempty"`
}

// Checkout converts the caller's cart into an order on the selected payment
// rail. The whole settlement runs in one transaction; on the gateway rail the
// response also carries the hosted payment page URL.
func Checkout(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Order:            newOrderResponse(result.Order),
			AuthorizationURL: result.AuthorizationURL,
		})
	}
}

func (r checkoutRequest) toInput() (orderssvc.CheckoutInput, error) {
	method, err := enums.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return orderssvc.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	input := orderssvc.CheckoutInput{
		PaymentMethod:   method,
		ShippingMethod:  r.ShippingMethod,
		DiscountCode:    r.DiscountCode,
		DisplayCurrency: r.DisplayCurrency,
		ShippingAddress: r.ShippingAddress.toInput(),
	}
	if r.BillingAddress != nil {
		billing := r.BillingAddress.toInput()
		input.BillingAddress = &billing
	}
	return input, nil
}

func (a addressPayload) toInput() orderssvc.AddressInput {
	return orderssvc.AddressInput{
		FullName:   a.FullName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		Region:     a.Region,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}
