package controllers

import (
	"net/http"
	"strings"

	"github.com/kwameboadi/adepa-backend/api/responses"
	paymentssvc "github.com/kwameboadi/adepa-backend/internal/payments"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
)

type verifyResponse struct {
	Success        bool           `json:"success"`
	TopUp          bool           `json:"top_up"`
	AlreadySettled bool           `json:"already_settled"`
	Order          *orderResponse `json:"order,omitempty"`
}

// PaymentVerify confirms a gateway charge against its reference. Safe to
// call any number of times; a settled charge comes back as already settled.
func PaymentVerify(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		reference := strings.TrimSpace(r.URL.Query().Get("reference"))
		if reference == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "reference is required"))
			return
		}

		result, err := svc.Verify(r.Context(), reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := verifyResponse{
			Success:        result.Success,
			TopUp:          result.TopUp,
			AlreadySettled: result.AlreadySettled,
		}
		if result.Order != nil {
			order := newOrderResponse(result.Order)
			resp.Order = &order
		}
		responses.WriteSuccess(w, resp)
	}
}
