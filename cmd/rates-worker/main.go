package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kwameboadi/adepa-backend/internal/rates"
	"github.com/kwameboadi/adepa-backend/pkg/config"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
	"github.com/kwameboadi/adepa-backend/pkg/redis"
)

// rates-worker keeps the display-currency rate cache warm so checkout never
// blocks on the upstream rates API.
func main() {
	logg := logger.New(logger.Options{ServiceName: "rates-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "rates-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

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

	baseCurrency, err := enums.ParseCurrency(cfg.Shop.BaseCurrency)
	if err != nil {
		logg.Error(context.Background(), "invalid base currency", err)
		os.Exit(1)
	}

	service, err := rates.NewService(rates.ServiceParams{
		Config: cfg.Rates,
		Base:   baseCurrency,
		Cache:  redisClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create rates service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interval := cfg.Rates.RefreshInterval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": interval.String(),
	})
	logg.Info(runCtx, "starting rates worker")

	if err := service.Refresh(ctx); err != nil {
		logg.Error(runCtx, "initial rates refresh failed", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logg.Info(runCtx, "rates worker stopping")
			return
		case <-ticker.C:
			if err := service.Refresh(ctx); err != nil {
				logg.Error(runCtx, "rates refresh failed", err)
			}
		}
	}
}
