package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kwameboadi/adepa-backend/api/controllers"
	webhookcontrollers "github.com/kwameboadi/adepa-backend/api/controllers/webhooks"
	"github.com/kwameboadi/adepa-backend/api/middleware"
	cartsvc "github.com/kwameboadi/adepa-backend/internal/cart"
	discountsvc "github.com/kwameboadi/adepa-backend/internal/discounts"
	orderssvc "github.com/kwameboadi/adepa-backend/internal/orders"
	paymentssvc "github.com/kwameboadi/adepa-backend/internal/payments"
	userssvc "github.com/kwameboadi/adepa-backend/internal/users"
	walletsvc "github.com/kwameboadi/adepa-backend/internal/wallet"
	"github.com/kwameboadi/adepa-backend/pkg/config"
	"github.com/kwameboadi/adepa-backend/pkg/db"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
	"github.com/kwameboadi/adepa-backend/pkg/paystack"
	"github.com/kwameboadi/adepa-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *db.Client
	Redis     *redis.Client
	Gateway   *paystack.Client
	Users     userssvc.Service
	Cart      cartsvc.Service
	Orders    orderssvc.Service
	Wallet    walletsvc.Service
	Discounts discountsvc.Service
	Payments  paymentssvc.Service
	// Metrics serves the Prometheus scrape endpoint.
	Metrics http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/paystack", webhookcontrollers.Paystack(deps.Payments, deps.Gateway, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.Users, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg), middleware.Idempotency(deps.Redis, logg)).Post("/register", controllers.Register(deps.Users, logg))
	})

	// Verification is deliberately public. The reference is unguessable and
	// the handler settles idempotently, so the payment callback page can hit
	// it before the customer has a session again.
	r.Get("/api/v1/payments/verify", controllers.PaymentVerify(deps.Payments, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/me", controllers.Me(deps.Users, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Cart, logg))
			r.Post("/items", controllers.CartAdd(deps.Cart, logg))
			r.Patch("/items/{itemID}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.Post("/discounts/preview", controllers.DiscountPreview(deps.Discounts, deps.Cart, logg))

		r.Post("/checkout", controllers.Checkout(deps.Orders, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderID}", controllers.OrderGet(deps.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.OrderCancel(deps.Orders, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletBalance(deps.Wallet, logg))
			r.Get("/transactions", controllers.WalletTransactions(deps.Wallet, logg))
			r.Post("/topup", controllers.WalletTopUp(deps.Wallet, deps.Users, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
				r.Get("/{orderID}", controllers.AdminOrderGet(deps.Orders, logg))
				r.Post("/{orderID}/ship", controllers.AdminOrderShip(deps.Orders, logg))
				r.Post("/{orderID}/deliver", controllers.AdminOrderDeliver(deps.Orders, logg))
				r.Post("/{orderID}/cancel", controllers.AdminOrderCancel(deps.Orders, logg))
				r.Post("/{orderID}/confirm-payment", controllers.AdminOrderConfirmPayment(deps.Orders, logg))
				r.Post("/{orderID}/restock", controllers.AdminOrderRestock(deps.Orders, logg))
				r.Delete("/{orderID}", controllers.AdminOrderPurge(deps.Orders, logg))
			})

			r.Route("/wallets", func(r chi.Router) {
				r.Post("/{userID}/credit", controllers.AdminWalletCredit(deps.Wallet, logg))
				r.Post("/{userID}/debit", controllers.AdminWalletDebit(deps.Wallet, logg))
				r.Post("/orders/{orderID}/refund", controllers.AdminWalletRefundOrder(deps.Wallet, logg))
			})

			r.Post("/discounts", controllers.AdminDiscountCreate(deps.Discounts, logg))
		})
	})

	return r
}
