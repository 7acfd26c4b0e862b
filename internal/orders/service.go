package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/internal/cart"
	"github.com/kwameboadi/adepa-backend/internal/discounts"
	"github.com/kwameboadi/adepa-backend/internal/notifications"
	"github.com/kwameboadi/adepa-backend/internal/rates"
	"github.com/kwameboadi/adepa-backend/internal/stock"
	"github.com/kwameboadi/adepa-backend/internal/users"
	"github.com/kwameboadi/adepa-backend/internal/wallet"
	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
	"github.com/kwameboadi/adepa-backend/pkg/metrics"
	"github.com/kwameboadi/adepa-backend/pkg/pagination"
	"github.com/kwameboadi/adepa-backend/pkg/paystack"
)

// OrderReferencePrefix marks gateway references that settle an order.
const OrderReferencePrefix = "order_"

// AddressInput is the request shape for shipping and billing addresses.
// Orders always persist fresh address rows, never deduplicated.
type AddressInput struct {
	FullName   string
	Line1      string
	Line2      *string
	City       string
	Region     string
	PostalCode *string
	Country    string
	Phone      *string
}

// CheckoutInput drives a single checkout transaction.
type CheckoutInput struct {
	PaymentMethod   enums.PaymentMethod
	ShippingMethod  string
	DiscountCode    string
	DisplayCurrency string
	ShippingAddress AddressInput
	// BillingAddress falls back to the shipping address when nil.
	BillingAddress *AddressInput
}

// CheckoutResult is what the customer needs after checkout: the order and,
// on the gateway rail, the hosted payment page.
type CheckoutResult struct {
	Order            *models.Order
	AuthorizationURL string
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns order settlement and lifecycle transitions.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, admin bool) error
	// Settle flips the order to paid exactly once, reducing stock in the
	// same transaction. False means it was already settled.
	Settle(ctx context.Context, orderID uuid.UUID) (bool, error)

	// Admin surface.
	AdminGet(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	AdminList(ctx context.Context, params pagination.Params) ([]models.Order, string, error)
	Ship(ctx context.Context, orderID uuid.UUID, trackingNumber *string) error
	Deliver(ctx context.Context, orderID uuid.UUID) error
	ConfirmCashPayment(ctx context.Context, orderID uuid.UUID) error
	Restock(ctx context.Context, orderID uuid.UUID) error
	Purge(ctx context.Context, orderID uuid.UUID) error

	Repo() Repository
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo        Repository
	CartRepo    cart.Repository
	Discounts   discounts.Service
	Wallet      wallet.Service
	Stock       stock.Adjuster
	Users       users.Repository
	Gateway     wallet.GatewayInitializer
	Rates       rates.Service
	Notifier    notifications.Notifier
	Metrics     *metrics.SettlementMetrics
	Logger      *logger.Logger
	DB          TxRunner
	Currency    enums.Currency
	CallbackURL string
	Now         func() time.Time
}

type service struct {
	repo        Repository
	cartRepo    cart.Repository
	discounts   discounts.Service
	wallet      wallet.Service
	stock       stock.Adjuster
	users       users.Repository
	gateway     wallet.GatewayInitializer
	rates       rates.Service
	notifier    notifications.Notifier
	metrics     *metrics.SettlementMetrics
	logg        *logger.Logger
	db          TxRunner
	currency    enums.Currency
	callbackURL string
	now         func() time.Time
}

// NewService builds the order service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, errors.New("repo is required")
	case params.CartRepo == nil:
		return nil, errors.New("cart repo is required")
	case params.Discounts == nil:
		return nil, errors.New("discounts service is required")
	case params.Wallet == nil:
		return nil, errors.New("wallet service is required")
	case params.Stock == nil:
		return nil, errors.New("stock adjuster is required")
	case params.Users == nil:
		return nil, errors.New("users repo is required")
	case params.Gateway == nil:
		return nil, errors.New("gateway is required")
	case params.Notifier == nil:
		return nil, errors.New("notifier is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("db is required")
	case !params.Currency.IsValid():
		return nil, errors.New("currency is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:        params.Repo,
		cartRepo:    params.CartRepo,
		discounts:   params.Discounts,
		wallet:      params.Wallet,
		stock:       params.Stock,
		users:       params.Users,
		gateway:     params.Gateway,
		rates:       params.Rates,
		notifier:    params.Notifier,
		metrics:     params.Metrics,
		logg:        params.Logger,
		db:          params.DB,
		currency:    params.Currency,
		callbackURL: params.CallbackURL,
		now:         params.Now,
	}, nil
}

func (s *service) Repo() Repository {
	return s.repo
}

// Checkout converts the user's cart into an order in one transaction. Wallet
// orders settle (debit, stock, paid) atomically with creation; gateway and
// cash orders commit as awaiting payment, and the hosted page is initialized
// only after the commit.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error) {
	started := s.now()
	method := input.PaymentMethod
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		s.metrics.IncCheckout(method.String(), "empty_cart")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	snapshot, err := cart.BuildSnapshot(items)
	if err != nil {
		return nil, err
	}

	var validation *discounts.Validation
	if input.DiscountCode != "" {
		validation, err = s.discounts.Validate(ctx, input.DiscountCode, snapshot.SubtotalMinor)
		if err != nil {
			return nil, err
		}
	}

	shipping, err := s.repo.GetShippingMethod(ctx, input.ShippingMethod)
	if err != nil {
		return nil, err
	}

	discountMinor := int64(0)
	var discountCodeID *uuid.UUID
	if validation != nil {
		discountMinor = validation.AmountMinor
		discountCodeID = &validation.CodeID
	}
	totalMinor := snapshot.SubtotalMinor - discountMinor + shipping.CostMinor

	order := &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		Status:         enums.OrderStatusAwaitingPayment,
		PaymentStatus:  enums.PaymentStatusPending,
		PaymentMethod:  method,
		SubtotalMinor:  snapshot.SubtotalMinor,
		DiscountMinor:  discountMinor,
		ShippingMinor:  shipping.CostMinor,
		TotalMinor:     totalMinor,
		Currency:       s.currency,
		DiscountCodeID: discountCodeID,
		ShippingMethod: shipping.Name,
	}
	if method == enums.PaymentMethodGateway {
		reference := OrderReferencePrefix + order.ID.String()
		order.PaymentReference = &reference
	}
	s.applyDisplayTotal(ctx, order, input.DisplayCurrency)

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if validation != nil {
			if err := s.discounts.Redeem(ctx, tx, validation.CodeID); err != nil {
				return err
			}
		}

		shippingAddr := addressFromInput(userID, input.ShippingAddress)
		if err := repo.CreateAddress(ctx, shippingAddr); err != nil {
			return err
		}
		billingAddr := shippingAddr
		if input.BillingAddress != nil {
			billingAddr = addressFromInput(userID, *input.BillingAddress)
			if err := repo.CreateAddress(ctx, billingAddr); err != nil {
				return err
			}
		}
		order.ShippingAddressID = shippingAddr.ID
		order.BillingAddressID = billingAddr.ID

		if method == enums.PaymentMethodWallet {
			now := s.now()
			order.Status = enums.OrderStatusPaid
			order.PaymentStatus = enums.PaymentStatusPaid
			order.PaidAt = &now
		}

		order.Items = orderItemsFromSnapshot(order.ID, snapshot)
		if err := repo.Create(ctx, order); err != nil {
			return err
		}

		if method == enums.PaymentMethodWallet {
			if err := s.wallet.Debit(ctx, tx, userID, totalMinor, order.ID); err != nil {
				return err
			}
			if err := s.stock.Reduce(ctx, tx, stock.LinesFromOrderItems(order.Items)); err != nil {
				return err
			}
		}

		return s.cartRepo.WithTx(tx).ClearByUser(ctx, userID)
	})
	if err != nil {
		s.metrics.IncCheckout(method.String(), checkoutOutcome(err))
		return nil, err
	}

	result := &CheckoutResult{Order: order}

	// the order row exists from here on, so confirmations go out even when
	// the gateway session below cannot be opened
	s.notifier.Notify(ctx, enums.NotificationOrderConfirmation, notifications.Payload{
		Order:         order,
		CustomerEmail: user.Email,
	})
	s.notifier.Notify(ctx, enums.NotificationOrderReceived, notifications.Payload{Order: order})

	if method == enums.PaymentMethodGateway {
		auth, initErr := s.gateway.Initialize(ctx, paystack.InitializeParams{
			Email:       user.Email,
			AmountMinor: totalMinor,
			Currency:    s.currency.String(),
			Reference:   *order.PaymentReference,
			CallbackURL: s.callbackURL,
			Metadata:    map[string]any{"order_id": order.ID.String()},
		})
		if initErr != nil {
			// the order exists; the customer can retry payment from it
			s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "gateway initialize failed", initErr)
			s.metrics.IncCheckout(method.String(), "gateway_init_failed")
			return result, nil
		}
		result.AuthorizationURL = auth.AuthorizationURL
	}

	s.metrics.IncCheckout(method.String(), "ok")
	s.metrics.ObserveCheckoutDuration(method.String(), s.now().Sub(started))

	return result, nil
}

func (s *service) applyDisplayTotal(ctx context.Context, order *models.Order, display string) {
	if display == "" || s.rates == nil {
		return
	}
	target, err := enums.ParseCurrency(display)
	if err != nil {
		return
	}
	if target == s.currency {
		return
	}
	rate, err := s.rates.Rate(ctx, target)
	if err != nil {
		// informational only, never blocks settlement
		s.logg.Warn(s.logg.WithField(ctx, "currency", display), "display conversion unavailable")
		return
	}
	converted := rates.ConvertMinor(order.TotalMinor, rate)
	order.DisplayCurrency = &target
	order.DisplayTotal = &converted
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	return s.repo.GetByIDForUser(ctx, orderID, userID)
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}
	return paginate(rows, limit)
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *service) AdminList(ctx context.Context, params pagination.Params) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListAll(ctx, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}
	return paginate(rows, limit)
}

// Cancel rejects orders that already shipped. Cancellation never restocks or
// refunds by itself; those stay explicit admin operations.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, admin bool) error {
	var order *models.Order
	var err error
	if admin {
		order, err = s.repo.GetByID(ctx, orderID)
	} else {
		order, err = s.repo.GetByIDForUser(ctx, orderID, actorID)
	}
	if err != nil {
		return err
	}
	if !order.Status.Cancellable() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order in status %s cannot be cancelled", order.Status))
	}

	now := s.now()
	err = s.repo.UpdateStatus(ctx, order.ID, map[string]any{
		"status":       enums.OrderStatusCancelled,
		"cancelled_at": now,
	})
	if err != nil {
		return err
	}

	if user, uerr := s.users.GetByID(ctx, order.UserID); uerr == nil {
		s.notifier.Notify(ctx, enums.NotificationOrderCancelled, notifications.Payload{
			Order:         order,
			CustomerEmail: user.Email,
		})
	}
	return nil
}

func (s *service) Settle(ctx context.Context, orderID uuid.UUID) (bool, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order.Status == enums.OrderStatusCancelled {
		// a late webhook must not revive a cancelled order
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "settle skipped, order cancelled")
		return false, nil
	}

	settled := false
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		changed, txErr := s.repo.WithTx(tx).MarkPaid(ctx, order.ID, s.now())
		if txErr != nil {
			return txErr
		}
		if !changed {
			return nil
		}
		settled = true
		return s.stock.Reduce(ctx, tx, stock.LinesFromOrderItems(order.Items))
	})
	if err != nil {
		return false, err
	}
	return settled, nil
}

func (s *service) Ship(ctx context.Context, orderID uuid.UUID, trackingNumber *string) error {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != enums.OrderStatusPaid {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order in status %s cannot be shipped", order.Status))
	}

	now := s.now()
	updates := map[string]any{
		"status":     enums.OrderStatusShipped,
		"shipped_at": now,
	}
	if trackingNumber != nil {
		updates["tracking_number"] = *trackingNumber
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, updates); err != nil {
		return err
	}

	order.TrackingNumber = trackingNumber
	if user, uerr := s.users.GetByID(ctx, order.UserID); uerr == nil {
		s.notifier.Notify(ctx, enums.NotificationOrderShipped, notifications.Payload{
			Order:         order,
			CustomerEmail: user.Email,
		})
	}
	return nil
}

func (s *service) Deliver(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != enums.OrderStatusShipped {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order in status %s cannot be delivered", order.Status))
	}

	now := s.now()
	err = s.repo.UpdateStatus(ctx, order.ID, map[string]any{
		"status":       enums.OrderStatusDelivered,
		"delivered_at": now,
	})
	if err != nil {
		return err
	}

	if user, uerr := s.users.GetByID(ctx, order.UserID); uerr == nil {
		s.notifier.Notify(ctx, enums.NotificationOrderDelivered, notifications.Payload{
			Order:         order,
			CustomerEmail: user.Email,
		})
	}
	return nil
}

// ConfirmCashPayment records a cash-on-delivery payment. It rides the same
// exactly-once settle path as gateway verification.
func (s *service) ConfirmCashPayment(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.PaymentMethod != enums.PaymentMethodCashOnDelivery {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not cash on delivery")
	}

	settled, err := s.Settle(ctx, orderID)
	if err != nil {
		return err
	}
	if settled {
		s.notifier.Notify(ctx, enums.NotificationPaymentRecorded, notifications.Payload{Order: order})
	}
	return nil
}

// Restock returns a cancelled order's units to the shelf, the manual half of
// the cancellation policy.
func (s *service) Restock(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != enums.OrderStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only cancelled orders can be restocked")
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.stock.Restock(ctx, tx, stock.LinesFromOrderItems(order.Items))
	})
}

func (s *service) Purge(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, order.ID)
}

func addressFromInput(userID uuid.UUID, input AddressInput) *models.Address {
	country := input.Country
	if country == "" {
		country = "GH"
	}
	return &models.Address{
		UserID:     userID,
		FullName:   input.FullName,
		Line1:      input.Line1,
		Line2:      input.Line2,
		City:       input.City,
		Region:     input.Region,
		PostalCode: input.PostalCode,
		Country:    country,
		Phone:      input.Phone,
	}
}

func orderItemsFromSnapshot(orderID uuid.UUID, snapshot *cart.Snapshot) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		item := models.OrderItem{
			OrderID:        orderID,
			ProductID:      line.Item.ProductID,
			VariantID:      line.Item.VariantID,
			Name:           line.Item.Product.Name,
			Qty:            line.Item.Qty,
			UnitPriceMinor: line.UnitPriceMinor,
		}
		if line.Item.Variant != nil {
			name := line.Item.Variant.Name
			item.VariantName = &name
		}
		items = append(items, item)
	}
	return items
}

func checkoutOutcome(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "error"
	}
	switch typed.Code() {
	case pkgerrors.CodeInsufficientFunds:
		return "insufficient_funds"
	case pkgerrors.CodeOutOfStock:
		return "out_of_stock"
	case pkgerrors.CodeValidation:
		return "invalid"
	default:
		return "error"
	}
}

func paginate(rows []models.Order, limit int) ([]models.Order, string, error) {
	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}
