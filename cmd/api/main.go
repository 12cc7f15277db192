package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kagiso-dev/thriftbales-backend/api"
	"github.com/kagiso-dev/thriftbales-backend/api/routes"
	"github.com/kagiso-dev/thriftbales-backend/internal/auth"
	"github.com/kagiso-dev/thriftbales-backend/internal/bales"
	"github.com/kagiso-dev/thriftbales-backend/internal/categories"
	"github.com/kagiso-dev/thriftbales-backend/internal/contact"
	"github.com/kagiso-dev/thriftbales-backend/internal/marketing"
	"github.com/kagiso-dev/thriftbales-backend/internal/notify"
	"github.com/kagiso-dev/thriftbales-backend/internal/orders"
	"github.com/kagiso-dev/thriftbales-backend/internal/stock"
	"github.com/kagiso-dev/thriftbales-backend/internal/users"
	"github.com/kagiso-dev/thriftbales-backend/internal/verification"
	"github.com/kagiso-dev/thriftbales-backend/pkg/auth/session"
	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
	"github.com/kagiso-dev/thriftbales-backend/pkg/db"
	"github.com/kagiso-dev/thriftbales-backend/pkg/email"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/metrics"
	"github.com/kagiso-dev/thriftbales-backend/pkg/migrate"
	"github.com/kagiso-dev/thriftbales-backend/pkg/paystack"
	"github.com/kagiso-dev/thriftbales-backend/pkg/redis"
	"github.com/kagiso-dev/thriftbales-backend/pkg/sms"
	"github.com/kagiso-dev/thriftbales-backend/pkg/storage/bucket"
)

const shutdownGrace = 15 * time.Second

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	emailClient, err := email.NewClient(cfg.Email, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create email client", err)
		os.Exit(1)
	}
	smsClient, err := sms.NewClient(cfg.SMS, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sms client", err)
		os.Exit(1)
	}
	paystackClient, err := paystack.NewClient(cfg.Paystack, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create paystack client", err)
		os.Exit(1)
	}
	bucketClient, err := bucket.NewClient(cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create storage client", err)
		os.Exit(1)
	}

	dispatcher, err := notify.NewDispatcher(emailClient, smsClient, cfg.Notify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(
		users.NewRepository(dbClient.DB()),
		sessionManager,
		redisClient,
		cfg.JWT,
		cfg.Password,
		cfg.AuthRateLimit,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		bales.NewRepository(dbClient.DB()),
		dbClient,
		dispatcher,
		orders.NewInvoiceRenderer(),
		authService,
		cfg.Notify.StoreName,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	balesService, err := bales.NewService(bales.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create bales service", err)
		os.Exit(1)
	}

	stockService, err := stock.NewService(stock.NewRepository(dbClient.DB()), bucketClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	categoriesService, err := categories.NewService(categories.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create categories service", err)
		os.Exit(1)
	}

	marketingService, err := marketing.NewService(marketing.NewRepository(dbClient.DB()), emailClient, smsClient, cfg.Notify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create marketing service", err)
		os.Exit(1)
	}

	verificationService, err := verification.NewService(redisClient, smsClient, cfg.Verification, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create verification service", err)
		os.Exit(1)
	}

	contactService, err := contact.NewService(emailClient, cfg.Notify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	router := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		sessionManager,
		httpMetrics,
		authService,
		ordersService,
		balesService,
		stockService,
		categoriesService,
		marketingService,
		verificationService,
		contactService,
		paystackClient,
	)

	server := api.NewServer(cfg, router)

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stopCh:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
