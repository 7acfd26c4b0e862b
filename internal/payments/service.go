package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/kwameboadi/adepa-backend/internal/notifications"
	"github.com/kwameboadi/adepa-backend/internal/orders"
	"github.com/kwameboadi/adepa-backend/internal/users"
	"github.com/kwameboadi/adepa-backend/internal/wallet"
	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
	"github.com/kwameboadi/adepa-backend/pkg/metrics"
	"github.com/kwameboadi/adepa-backend/pkg/paystack"
)

// amountToleranceMinor is the accepted gap between the gateway-settled amount
// and the order total. One minor unit, the integer rendering of ±0.01.
const amountToleranceMinor = int64(1)

// GatewayVerifier is the slice of the gateway client verification needs.
type GatewayVerifier interface {
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
}

// VerifyResult reports what a verification call did.
type VerifyResult struct {
	Success bool
	TopUp   bool
	// AlreadySettled is true when the order had been paid before this call.
	AlreadySettled bool
	Order          *models.Order
}

// Service settles gateway charges against orders and wallet top-ups.
type Service interface {
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
	// HandleWebhook processes a gateway callback event. Only charge.success
	// triggers verification; everything else is acknowledged and dropped.
	HandleWebhook(ctx context.Context, event *paystack.WebhookEvent) error
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Gateway  GatewayVerifier
	Orders   orders.Service
	Wallet   wallet.Service
	Users    users.Repository
	Notifier notifications.Notifier
	Metrics  *metrics.SettlementMetrics
	Logger   *logger.Logger
}

type service struct {
	gateway  GatewayVerifier
	orders   orders.Service
	wallet   wallet.Service
	users    users.Repository
	notifier notifications.Notifier
	metrics  *metrics.SettlementMetrics
	logg     *logger.Logger
}

// NewService builds the payment verification service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Gateway == nil:
		return nil, errors.New("gateway is required")
	case params.Orders == nil:
		return nil, errors.New("orders service is required")
	case params.Wallet == nil:
		return nil, errors.New("wallet service is required")
	case params.Users == nil:
		return nil, errors.New("users repo is required")
	case params.Notifier == nil:
		return nil, errors.New("notifier is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	}
	return &service{
		gateway:  params.Gateway,
		orders:   params.Orders,
		wallet:   params.Wallet,
		users:    params.Users,
		notifier: params.Notifier,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Verify confirms a gateway charge and applies it exactly once. Failed or
// mismatched charges change no state.
func (s *service) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	ctx = s.logg.WithField(ctx, "reference", reference)

	txn, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		s.metrics.IncVerification("gateway_error")
		return nil, err
	}
	if !txn.Succeeded() {
		s.metrics.IncVerification("not_successful")
		s.logg.Info(ctx, "gateway charge not successful")
		return &VerifyResult{Success: false}, nil
	}

	if strings.HasPrefix(txn.Reference, wallet.TopUpReferencePrefix) {
		return s.settleTopUp(ctx, txn)
	}
	return s.settleOrder(ctx, txn)
}

func (s *service) settleTopUp(ctx context.Context, txn *paystack.Transaction) (*VerifyResult, error) {
	walletID, err := s.wallet.WalletIDFromReference(ctx, txn.Metadata)
	if err != nil {
		s.metrics.IncVerification("topup_invalid")
		return nil, err
	}

	err = s.wallet.CreditTopUp(ctx, walletID, txn.AmountMinor, txn.Reference)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			// replayed callback, already credited
			s.metrics.IncVerification("topup_replay")
			return &VerifyResult{Success: true, TopUp: true, AlreadySettled: true}, nil
		}
		s.metrics.IncVerification("topup_error")
		return nil, err
	}

	s.metrics.IncVerification("topup_ok")
	s.notifier.Notify(ctx, enums.NotificationWalletTopUp, notifications.Payload{
		CustomerEmail: txn.Customer.Email,
		AmountMinor:   txn.AmountMinor,
		Reference:     txn.Reference,
	})
	return &VerifyResult{Success: true, TopUp: true}, nil
}

func (s *service) settleOrder(ctx context.Context, txn *paystack.Transaction) (*VerifyResult, error) {
	order, err := s.orders.Repo().GetByReference(ctx, txn.Reference)
	if err != nil {
		s.metrics.IncVerification("order_not_found")
		s.logg.Error(ctx, "no order for verified reference", err)
		return nil, err
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	diff := txn.AmountMinor - order.TotalMinor
	if diff < -amountToleranceMinor || diff > amountToleranceMinor {
		s.metrics.IncVerification("amount_mismatch")
		return nil, pkgerrors.New(pkgerrors.CodeAmountMismatch, "paid amount does not match order total").
			WithDetails(map[string]any{
				"paid_minor":  txn.AmountMinor,
				"total_minor": order.TotalMinor,
			})
	}

	settled, err := s.orders.Settle(ctx, order.ID)
	if err != nil {
		s.metrics.IncVerification("settle_error")
		return nil, err
	}
	if !settled {
		s.metrics.IncVerification("replay")
		s.logg.Info(ctx, "order already settled, ignoring duplicate verification")
		return &VerifyResult{Success: true, AlreadySettled: true, Order: order}, nil
	}

	s.metrics.IncVerification("ok")
	if user, uerr := s.users.GetByID(ctx, order.UserID); uerr == nil {
		s.notifier.Notify(ctx, enums.NotificationPaymentReceived, notifications.Payload{
			Order:         order,
			CustomerEmail: user.Email,
		})
	}
	return &VerifyResult{Success: true, Order: order}, nil
}

func (s *service) HandleWebhook(ctx context.Context, event *paystack.WebhookEvent) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "empty webhook event")
	}
	if event.Event != "charge.success" {
		s.logg.Info(s.logg.WithField(ctx, "event", event.Event), "ignoring webhook event")
		return nil
	}

	_, err := s.Verify(ctx, event.Data.Reference)
	if err != nil {
		// the webhook response stays 200; failures surface in logs and metrics
		s.logg.Error(s.logg.WithField(ctx, "reference", event.Data.Reference), "webhook verification failed", err)
	}
	return nil
}
