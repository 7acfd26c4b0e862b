package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/kwameboadi/adepa-backend/internal/rates"
	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
	"github.com/kwameboadi/adepa-backend/pkg/mail"
	"github.com/kwameboadi/adepa-backend/pkg/metrics"
)

// Payload carries the data a notification template can draw on.
type Payload struct {
	Order         *models.Order
	CustomerEmail string
	AmountMinor   int64
	Reference     string
}

// Notifier delivers storefront emails without blocking the settlement path.
type Notifier interface {
	// Notify dispatches asynchronously; failures are logged and counted,
	// never returned to the caller.
	Notify(ctx context.Context, event enums.NotificationEvent, payload Payload)
	// Wait blocks until in-flight deliveries finish, used in shutdown and tests.
	Wait()
}

// NotifierParams groups dependencies for the notifier.
type NotifierParams struct {
	Mail       mail.Sender
	Logger     *logger.Logger
	Metrics    *metrics.SettlementMetrics
	AdminEmail string
	StoreName  string
	Timeout    time.Duration
}

type notifier struct {
	mail       mail.Sender
	logg       *logger.Logger
	metrics    *metrics.SettlementMetrics
	adminEmail string
	storeName  string
	timeout    time.Duration
	wg         sync.WaitGroup
}

// NewNotifier builds the async notifier.
func NewNotifier(params NotifierParams) (Notifier, error) {
	if params.Mail == nil {
		return nil, errors.New("mail sender is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.AdminEmail == "" {
		return nil, errors.New("admin email is required")
	}
	if params.Timeout <= 0 {
		params.Timeout = 15 * time.Second
	}
	if params.StoreName == "" {
		params.StoreName = "Adepa"
	}
	return &notifier{
		mail:       params.Mail,
		logg:       params.Logger,
		metrics:    params.Metrics,
		adminEmail: params.AdminEmail,
		storeName:  params.StoreName,
		timeout:    params.Timeout,
	}, nil
}

func (n *notifier) Notify(ctx context.Context, event enums.NotificationEvent, payload Payload) {
	lctx := n.logg.WithFields(context.WithoutCancel(ctx), map[string]any{"event": string(event)})

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		var errs error
		for _, msg := range n.compose(event, payload) {
			if err := n.mail.Send(sendCtx, msg); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if errs != nil {
			n.metrics.IncNotificationFailure(string(event))
			n.logg.Error(lctx, "notification delivery failed", errs)
			return
		}
		n.logg.Info(lctx, "notification dispatched")
	}()
}

func (n *notifier) Wait() {
	n.wg.Wait()
}

// compose maps an event to the concrete messages for its recipients.
func (n *notifier) compose(event enums.NotificationEvent, payload Payload) []mail.Message {
	var msgs []mail.Message
	orderRef := ""
	if payload.Order != nil {
		orderRef = payload.Order.ID.String()
	}

	switch event {
	case enums.NotificationOrderConfirmation:
		msgs = append(msgs, mail.Message{
			To:      payload.CustomerEmail,
			Subject: fmt.Sprintf("%s: order %s received", n.storeName, orderRef),
			Body:    fmt.Sprintf("Thanks for your order %s. Total: %s.", orderRef, formatAmount(payload.Order)),
		})
	case enums.NotificationOrderReceived:
		msgs = append(msgs, mail.Message{
			To:      n.adminEmail,
			Subject: fmt.Sprintf("New order %s", orderRef),
			Body:    fmt.Sprintf("Order %s placed. Total: %s.", orderRef, formatAmount(payload.Order)),
		})
	case enums.NotificationPaymentReceived:
		msgs = append(msgs,
			mail.Message{
				To:      payload.CustomerEmail,
				Subject: fmt.Sprintf("%s: payment received for order %s", n.storeName, orderRef),
				Body:    fmt.Sprintf("We received your payment for order %s.", orderRef),
			},
			mail.Message{
				To:      n.adminEmail,
				Subject: fmt.Sprintf("Payment received for order %s", orderRef),
				Body:    fmt.Sprintf("Order %s is paid and ready to fulfil.", orderRef),
			},
		)
	case enums.NotificationPaymentRecorded:
		msgs = append(msgs, mail.Message{
			To:      n.adminEmail,
			Subject: fmt.Sprintf("Payment recorded for order %s", orderRef),
			Body:    fmt.Sprintf("Cash payment recorded for order %s.", orderRef),
		})
	case enums.NotificationOrderShipped:
		msgs = append(msgs, mail.Message{
			To:      payload.CustomerEmail,
			Subject: fmt.Sprintf("%s: order %s shipped", n.storeName, orderRef),
			Body:    shippedBody(payload.Order),
		})
	case enums.NotificationOrderDelivered:
		msgs = append(msgs, mail.Message{
			To:      payload.CustomerEmail,
			Subject: fmt.Sprintf("%s: order %s delivered", n.storeName, orderRef),
			Body:    fmt.Sprintf("Order %s was delivered. Enjoy!", orderRef),
		})
	case enums.NotificationOrderCancelled:
		msgs = append(msgs,
			mail.Message{
				To:      payload.CustomerEmail,
				Subject: fmt.Sprintf("%s: order %s cancelled", n.storeName, orderRef),
				Body:    fmt.Sprintf("Order %s has been cancelled.", orderRef),
			},
			mail.Message{
				To:      n.adminEmail,
				Subject: fmt.Sprintf("Order %s cancelled", orderRef),
				Body:    fmt.Sprintf("Order %s has been cancelled.", orderRef),
			},
		)
	case enums.NotificationWalletTopUp:
		msgs = append(msgs, mail.Message{
			To:      payload.CustomerEmail,
			Subject: fmt.Sprintf("%s: wallet top-up credited", n.storeName),
			Body:    fmt.Sprintf("Your wallet was credited with %s (ref %s).", rates.FormatMinor(payload.AmountMinor, enums.CurrencyGHS), payload.Reference),
		})
	}

	// drop messages without a recipient rather than calling the provider
	filtered := msgs[:0]
	for _, msg := range msgs {
		if msg.To != "" {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

func formatAmount(order *models.Order) string {
	if order == nil {
		return ""
	}
	return rates.FormatMinor(order.TotalMinor, order.Currency)
}

func shippedBody(order *models.Order) string {
	if order == nil {
		return "Your order is on its way."
	}
	if order.TrackingNumber != nil && *order.TrackingNumber != "" {
		return fmt.Sprintf("Order %s shipped. Tracking number: %s.", order.ID, *order.TrackingNumber)
	}
	return fmt.Sprintf("Order %s shipped.", order.ID)
}
