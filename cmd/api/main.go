package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kwameboadi/adepa-backend/api/routes"
	"github.com/kwameboadi/adepa-backend/internal/cart"
	"github.com/kwameboadi/adepa-backend/internal/discounts"
	"github.com/kwameboadi/adepa-backend/internal/notifications"
	"github.com/kwameboadi/adepa-backend/internal/orders"
	"github.com/kwameboadi/adepa-backend/internal/payments"
	"github.com/kwameboadi/adepa-backend/internal/products"
	"github.com/kwameboadi/adepa-backend/internal/rates"
	"github.com/kwameboadi/adepa-backend/internal/stock"
	"github.com/kwameboadi/adepa-backend/internal/users"
	"github.com/kwameboadi/adepa-backend/internal/wallet"
	"github.com/kwameboadi/adepa-backend/pkg/config"
	"github.com/kwameboadi/adepa-backend/pkg/db"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
	"github.com/kwameboadi/adepa-backend/pkg/mail"
	"github.com/kwameboadi/adepa-backend/pkg/metrics"
	"github.com/kwameboadi/adepa-backend/pkg/migrate"
	"github.com/kwameboadi/adepa-backend/pkg/paystack"
	"github.com/kwameboadi/adepa-backend/pkg/redis"
)

const shutdownGrace = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gateway, err := paystack.NewClient(context.Background(), cfg.Paystack, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	mailClient, err := mail.NewClient(cfg.Mail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	baseCurrency, err := enums.ParseCurrency(cfg.Shop.BaseCurrency)
	if err != nil {
		logg.Error(context.Background(), "invalid base currency", err)
		os.Exit(1)
	}

	notifier, err := notifications.NewNotifier(notifications.NotifierParams{
		Mail:       mailClient,
		Logger:     logg,
		Metrics:    settlementMetrics,
		AdminEmail: cfg.Shop.AdminEmail,
		StoreName:  cfg.Shop.StoreName,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	ratesService, err := rates.NewService(rates.ServiceParams{
		Config: cfg.Rates,
		Base:   baseCurrency,
		Cache:  redisClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create rates service", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	usersService, err := users.NewService(users.ServiceParams{
		Repo:     usersRepo,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	cartRepo := cart.NewRepository(dbClient.DB())
	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:     cartRepo,
		Products: products.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	discountService, err := discounts.NewService(discounts.ServiceParams{
		Repo: discounts.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create discount service", err)
		os.Exit(1)
	}

	walletService, err := wallet.NewService(wallet.ServiceParams{
		Repo:        wallet.NewRepository(dbClient.DB()),
		DB:          dbClient,
		Gateway:     gateway,
		Currency:    baseCurrency,
		CallbackURL: cfg.Paystack.CallbackURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:        orders.NewRepository(dbClient.DB()),
		CartRepo:    cartRepo,
		Discounts:   discountService,
		Wallet:      walletService,
		Stock:       stock.NewAdjuster(),
		Users:       usersRepo,
		Gateway:     gateway,
		Rates:       ratesService,
		Notifier:    notifier,
		Metrics:     settlementMetrics,
		Logger:      logg,
		DB:          dbClient,
		Currency:    baseCurrency,
		CallbackURL: cfg.Paystack.CallbackURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Gateway:  gateway,
		Orders:   orderService,
		Wallet:   walletService,
		Users:    usersRepo,
		Notifier: notifier,
		Metrics:  settlementMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:    cfg,
		Logger:    logg,
		DB:        dbClient,
		Redis:     redisClient,
		Gateway:   gateway,
		Users:     usersService,
		Cart:      cartService,
		Orders:    orderService,
		Wallet:    walletService,
		Discounts: discountService,
		Payments:  paymentService,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during shutdown", err)
		}
		notifier.Wait()
	}
}
