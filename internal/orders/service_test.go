package orders

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kwameboadi/adepa-backend/internal/cart"
	"github.com/kwameboadi/adepa-backend/internal/discounts"
	"github.com/kwameboadi/adepa-backend/internal/notifications"
	"github.com/kwameboadi/adepa-backend/internal/stock"
	"github.com/kwameboadi/adepa-backend/internal/users"
	"github.com/kwameboadi/adepa-backend/internal/wallet"
	"github.com/kwameboadi/adepa-backend/pkg/db/models"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
	"github.com/kwameboadi/adepa-backend/pkg/pagination"
	"github.com/kwameboadi/adepa-backend/pkg/paystack"
)

type txRunner struct {
	db *gorm.DB
}

func (r txRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type stubGateway struct {
	lastParams paystack.InitializeParams
	initErr    error
}

func (g *stubGateway) Initialize(_ context.Context, params paystack.InitializeParams) (*paystack.Authorization, error) {
	g.lastParams = params
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &paystack.Authorization{
		AuthorizationURL: "https://checkout.paystack.com/" + params.Reference,
		AccessCode:       "access_" + params.Reference,
		Reference:        params.Reference,
	}, nil
}

type stubNotifier struct {
	mu     sync.Mutex
	events []enums.NotificationEvent
}

func (n *stubNotifier) Notify(_ context.Context, event enums.NotificationEvent, _ notifications.Payload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *stubNotifier) Wait() {}

func (n *stubNotifier) seen(event enums.NotificationEvent) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

type fixture struct {
	conn     *gorm.DB
	svc      Service
	wallet   wallet.Service
	cartRepo cart.Repository
	gateway  *stubGateway
	notifier *stubNotifier
	user     *models.User
	product  *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductVariant{},
		&models.CartItem{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.DiscountCode{},
		&models.ShippingMethod{},
	))

	gateway := &stubGateway{}
	notifier := &stubNotifier{}
	runner := txRunner{db: conn}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	walletService, err := wallet.NewService(wallet.ServiceParams{
		Repo:        wallet.NewRepository(conn),
		DB:          runner,
		Gateway:     gateway,
		Currency:    enums.CurrencyGHS,
		CallbackURL: "https://shop.example.com/payments/callback",
	})
	require.NoError(t, err)

	discountService, err := discounts.NewService(discounts.ServiceParams{
		Repo: discounts.NewRepository(conn),
	})
	require.NoError(t, err)

	cartRepo := cart.NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(conn),
		CartRepo:    cartRepo,
		Discounts:   discountService,
		Wallet:      walletService,
		Stock:       stock.NewAdjuster(),
		Users:       users.NewRepository(conn),
		Gateway:     gateway,
		Notifier:    notifier,
		Logger:      logg,
		DB:          runner,
		Currency:    enums.CurrencyGHS,
		CallbackURL: "https://shop.example.com/payments/callback",
	})
	require.NoError(t, err)

	user := &models.User{
		Email:        "ama+" + uuid.NewString() + "@example.com",
		PasswordHash: "x",
		FirstName:    "Ama",
		LastName:     "Mensah",
		Role:         enums.UserRoleCustomer,
	}
	require.NoError(t, conn.Create(user).Error)

	product := &models.Product{
		Name:       "Shea Butter 500g",
		Slug:       "shea-butter-" + uuid.NewString(),
		PriceMinor: 4500,
		StockQty:   10,
		Active:     true,
	}
	require.NoError(t, conn.Create(product).Error)

	require.NoError(t, conn.Create(&models.ShippingMethod{
		Name:      "standard",
		CostMinor: 1000,
		Active:    true,
	}).Error)

	return &fixture{
		conn:     conn,
		svc:      svc,
		wallet:   walletService,
		cartRepo: cartRepo,
		gateway:  gateway,
		notifier: notifier,
		user:     user,
		product:  product,
	}
}

func (f *fixture) addToCart(t *testing.T, qty int) {
	t.Helper()
	require.NoError(t, f.conn.Create(&models.CartItem{
		UserID:    f.user.ID,
		ProductID: f.product.ID,
		Qty:       qty,
	}).Error)
}

func (f *fixture) seedWallet(t *testing.T, balance int64) {
	t.Helper()
	require.NoError(t, f.conn.Create(&models.Wallet{
		UserID:       f.user.ID,
		BalanceMinor: balance,
	}).Error)
}

func (f *fixture) productStock(t *testing.T) int {
	t.Helper()
	var got models.Product
	require.NoError(t, f.conn.First(&got, "id = ?", f.product.ID).Error)
	return got.StockQty
}

func (f *fixture) cartCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.conn.Model(&models.CartItem{}).Where("user_id = ?", f.user.ID).Count(&count).Error)
	return count
}

func shippingAddress() AddressInput {
	return AddressInput{
		FullName: "Ama Mensah",
		Line1:    "12 Ring Road",
		City:     "Accra",
		Region:   "Greater Accra",
		Country:  "GH",
	}
}

func requireCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, want, typed.Code())
}

func TestCheckoutGatewayRail(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 2)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, int64(9000), order.SubtotalMinor)
	assert.Equal(t, int64(1000), order.ShippingMinor)
	assert.Equal(t, int64(10000), order.TotalMinor)
	assert.Equal(t, enums.OrderStatusAwaitingPayment, order.Status)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	require.NotNil(t, order.PaymentReference)
	assert.Equal(t, OrderReferencePrefix+order.ID.String(), *order.PaymentReference)
	assert.NotEmpty(t, result.AuthorizationURL)

	// payment is pending, so no stock moves yet
	assert.Equal(t, 10, f.productStock(t))
	assert.Zero(t, f.cartCount(t))

	assert.Equal(t, f.user.Email, f.gateway.lastParams.Email)
	assert.Equal(t, int64(10000), f.gateway.lastParams.AmountMinor)
	assert.True(t, f.notifier.seen(enums.NotificationOrderConfirmation))
	assert.True(t, f.notifier.seen(enums.NotificationOrderReceived))
}

func TestCheckoutWalletRailSettlesAtomically(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 2)
	f.seedWallet(t, 20000)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, enums.OrderStatusPaid, order.Status)
	assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.PaidAt)
	assert.Empty(t, result.AuthorizationURL)

	walletRow, err := f.wallet.Balance(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), walletRow.BalanceMinor)
	assert.Equal(t, 8, f.productStock(t))
	assert.Zero(t, f.cartCount(t))
}

func TestCheckoutWalletInsufficientFundsLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 2)
	f.seedWallet(t, 500)

	_, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	requireCode(t, err, pkgerrors.CodeInsufficientFunds)

	var orderCount int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	var addressCount int64
	require.NoError(t, f.conn.Model(&models.Address{}).Count(&addressCount).Error)
	assert.Zero(t, addressCount)

	assert.Equal(t, 10, f.productStock(t))
	assert.EqualValues(t, 1, f.cartCount(t))
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCheckoutUnknownShippingMethod(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 1)

	_, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "teleport",
		ShippingAddress: shippingAddress(),
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCheckoutRedeemsDiscount(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 2)

	code := models.DiscountCode{
		Code:        "SAVE2000",
		Kind:        enums.DiscountKindFlat,
		AmountMinor: 2000,
		UsageLimit:  1,
		Active:      true,
	}
	require.NoError(t, f.conn.Create(&code).Error)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		DiscountCode:    "save2000",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, int64(2000), order.DiscountMinor)
	assert.Equal(t, int64(8000), order.TotalMinor)
	require.NotNil(t, order.DiscountCodeID)
	assert.Equal(t, code.ID, *order.DiscountCodeID)

	var got models.DiscountCode
	require.NoError(t, f.conn.First(&got, "id = ?", code.ID).Error)
	assert.Equal(t, 1, got.UsedCount)
}

func TestCheckoutExhaustedDiscountRollsBack(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 1)

	code := models.DiscountCode{
		Code:        "SPENT",
		Kind:        enums.DiscountKindFlat,
		AmountMinor: 500,
		UsageLimit:  1,
		UsedCount:   1,
		Active:      true,
	}
	require.NoError(t, f.conn.Create(&code).Error)

	_, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		DiscountCode:    "SPENT",
		ShippingAddress: shippingAddress(),
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)

	var orderCount int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
	assert.EqualValues(t, 1, f.cartCount(t))
}

func TestCheckoutSeparateBillingAddress(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 1)

	billing := AddressInput{
		FullName: "Kwame Boadi",
		Line1:    "4 Harbour Road",
		City:     "Tema",
		Region:   "Greater Accra",
		Country:  "GH",
	}
	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
		BillingAddress:  &billing,
	})
	require.NoError(t, err)

	order := result.Order
	assert.NotEqual(t, order.ShippingAddressID, order.BillingAddressID)

	var addressCount int64
	require.NoError(t, f.conn.Model(&models.Address{}).Count(&addressCount).Error)
	assert.EqualValues(t, 2, addressCount)
}

func TestCheckoutSurvivesGatewayInitFailure(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 1)
	f.gateway.initErr = errors.New("gateway down")

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	assert.Empty(t, result.AuthorizationURL)
	assert.Equal(t, enums.OrderStatusAwaitingPayment, result.Order.Status)

	var orderCount int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 1, orderCount)

	assert.True(t, f.notifier.seen(enums.NotificationOrderConfirmation), "confirmation goes out even when the gateway is down")
	assert.True(t, f.notifier.seen(enums.NotificationOrderReceived))
}

func TestSettleIsExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 2)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	settled, err := f.svc.Settle(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.True(t, settled)
	assert.Equal(t, 8, f.productStock(t))

	settled, err = f.svc.Settle(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.False(t, settled)
	assert.Equal(t, 8, f.productStock(t), "replay must not decrement again")

	order, err := f.svc.AdminGet(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, order.Status)
	require.NotNil(t, order.PaidAt)
}

func TestSettleSkipsCancelledOrder(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 2)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(context.Background(), result.Order.ID, f.user.ID, false))

	// a late webhook replay after cancellation
	settled, err := f.svc.Settle(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.False(t, settled)
	assert.Equal(t, 10, f.productStock(t), "cancelled orders never consume stock")

	order, err := f.svc.AdminGet(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, order.Status)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)

	// the storage-level guard holds even without the service fast path
	changed, err := NewRepository(f.conn).MarkPaid(context.Background(), result.Order.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCancelAwaitingPaymentOrder(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 1)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(context.Background(), result.Order.ID, f.user.ID, false))

	order, err := f.svc.AdminGet(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, order.Status)
	require.NotNil(t, order.CancelledAt)

	// cancellation never restocks on its own
	assert.Equal(t, 10, f.productStock(t))
	assert.True(t, f.notifier.seen(enums.NotificationOrderCancelled))
}

func TestCancelScopedToOwner(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 1)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), result.Order.ID, uuid.New(), false)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestCancelRejectedAfterShipping(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 1)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	_, err = f.svc.Settle(context.Background(), result.Order.ID)
	require.NoError(t, err)

	tracking := "GH123456"
	require.NoError(t, f.svc.Ship(context.Background(), result.Order.ID, &tracking))

	err = f.svc.Cancel(context.Background(), result.Order.ID, f.user.ID, false)
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestShipRequiresPaidOrder(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 1)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	err = f.svc.Ship(context.Background(), result.Order.ID, nil)
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestDeliverRequiresShippedOrder(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 1)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	_, err = f.svc.Settle(context.Background(), result.Order.ID)
	require.NoError(t, err)

	err = f.svc.Deliver(context.Background(), result.Order.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	require.NoError(t, f.svc.Ship(context.Background(), result.Order.ID, nil))
	require.NoError(t, f.svc.Deliver(context.Background(), result.Order.ID))

	order, err := f.svc.AdminGet(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)
}

func TestConfirmCashPaymentSettles(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 2)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodCashOnDelivery,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusAwaitingPayment, result.Order.Status)
	assert.Nil(t, result.Order.PaymentReference)

	require.NoError(t, f.svc.ConfirmCashPayment(context.Background(), result.Order.ID))
	assert.Equal(t, 8, f.productStock(t))
	assert.True(t, f.notifier.seen(enums.NotificationPaymentRecorded))

	// replay settles nothing further
	require.NoError(t, f.svc.ConfirmCashPayment(context.Background(), result.Order.ID))
	assert.Equal(t, 8, f.productStock(t))
}

func TestConfirmCashPaymentRejectsOtherRails(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 1)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	err = f.svc.ConfirmCashPayment(context.Background(), result.Order.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestRestockRequiresCancelledOrder(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 2)
	f.seedWallet(t, 20000)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodWallet,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)
	assert.Equal(t, 8, f.productStock(t))

	err = f.svc.Restock(context.Background(), result.Order.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	require.NoError(t, f.svc.Cancel(context.Background(), result.Order.ID, f.user.ID, false))
	require.NoError(t, f.svc.Restock(context.Background(), result.Order.ID))
	assert.Equal(t, 10, f.productStock(t))
}

func TestPurgeRemovesOrderAndItems(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, 1)

	result, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
		PaymentMethod:   enums.PaymentMethodGateway,
		ShippingMethod:  "standard",
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Purge(context.Background(), result.Order.ID))

	_, err = f.svc.AdminGet(context.Background(), result.Order.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	var itemCount int64
	require.NoError(t, f.conn.Model(&models.OrderItem{}).Where("order_id = ?", result.Order.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}

func TestListPaginatesOwnOrders(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		f.addToCart(t, 1)
		_, err := f.svc.Checkout(context.Background(), f.user.ID, CheckoutInput{
			PaymentMethod:   enums.PaymentMethodGateway,
			ShippingMethod:  "standard",
			ShippingAddress: shippingAddress(),
		})
		require.NoError(t, err)
	}

	rows, next, err := f.svc.List(context.Background(), f.user.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotEmpty(t, next)

	rows, next, err = f.svc.List(context.Background(), f.user.ID, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, next)

	other, _, err := f.svc.List(context.Background(), uuid.New(), pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, other)
}
