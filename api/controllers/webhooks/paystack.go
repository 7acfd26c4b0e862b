package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/kwameboadi/adepa-backend/api/responses"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
	"github.com/kwameboadi/adepa-backend/pkg/paystack"
)

// PaystackWebhookService settles verified gateway events.
type PaystackWebhookService interface {
	HandleWebhook(ctx context.Context, event *paystack.WebhookEvent) error
}

type signatureValidator interface {
	ValidSignature(payload []byte, signature string) bool
}

// Paystack handles gateway charge callbacks. Anything with a valid signature
// is acknowledged with 200 so the gateway stops retrying; settlement failures
// are logged and picked up again by explicit verification.
func Paystack(svc PaystackWebhookService, gateway signatureValidator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if gateway == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature := strings.TrimSpace(r.Header.Get("X-Paystack-Signature"))
		if signature == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "signature missing"))
			return
		}
		if !gateway.ValidSignature(payload, signature) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid signature"))
			return
		}

		var event paystack.WebhookEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		if err := svc.HandleWebhook(ctx, &event); err != nil {
			if logg != nil {
				logg.Error(ctx, "webhook.handle_failed", err)
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "received"})
	}
}
