package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bladeshop-be/internal/auth"
	"bladeshop-be/internal/checkout"
	"bladeshop-be/internal/config"
	"bladeshop-be/internal/db"
	"bladeshop-be/internal/handler"
	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/metrics"
	"bladeshop-be/internal/middleware"
	"bladeshop-be/internal/notify"
	"bladeshop-be/internal/order"
	"bladeshop-be/internal/payment"
	"bladeshop-be/internal/payment/webhook"
	"bladeshop-be/internal/product"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

// server bundles the root handler with the background parts that need a
// lifecycle.
type server struct {
	handler    http.Handler
	limiter    *middleware.RateLimiter
	dispatcher *notify.Dispatcher
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newServer(cfg, database)
	go app.limiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("HTTP server listening", zap.String("addr", srv.Addr))
		errCh <- startServerFunc(srv)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		logger.L().Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := app.dispatcher.Close(shutdownCtx); err != nil {
		logger.L().Warn("pending notifications dropped", zap.Error(err))
	}

	return serveErr
}

func newServer(cfg *config.Config, database *sql.DB) *server {
	log := logger.L()
	registry := metrics.Default

	if cfg.YKSShopID == "" || cfg.YKSSecretKey == "" {
		log.Warn("YooKassa credentials are not set; payment creation will fail")
	}
	if cfg.YKSWebhookToken == "" {
		log.Warn("YKS_WEBHOOK_TOKEN is not set; all webhooks will be rejected")
	}
	if cfg.JWTSecret == "" || cfg.AdminPasswordHash == "" {
		log.Warn("admin login is disabled")
	}

	productRepo := product.NewRepository(database)
	orderRepo := order.NewRepository(database)
	paymentRepo := payment.NewRepository(database)

	dispatcher := notify.NewDispatcher(notify.DispatcherConfig{Workers: cfg.NotifyWorker}, registry)
	mailer := notify.NewMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	})
	notifier := notify.NewNotifier(mailer, dispatcher, orderRepo, cfg.AdminEmail)

	gateway := payment.NewYooKassaGateway(payment.GatewayConfig{
		ShopID:    cfg.YKSShopID,
		SecretKey: cfg.YKSSecretKey,
		BaseURL:   cfg.YKSAPIURL,
		Timeout:   cfg.GatewayTimeout,
	}, registry)

	productSvc := product.NewService(productRepo)
	orderSvc := order.NewService(orderRepo, productRepo, notifier)
	initiator := payment.NewInitiator(gateway, paymentRepo, payment.InitiatorConfig{
		BaseURL:     cfg.BaseURL,
		SendReceipt: cfg.YKSSendReceipt,
	})
	statusSvc := payment.NewStatusService(orderRepo, paymentRepo, gateway, notifier)
	checkoutSvc := checkout.NewService(orderSvc, initiator)
	receiver := webhook.NewReceiver(paymentRepo, gateway, notifier, cfg.YKSWebhookToken, registry)

	admin := auth.NewAdmin(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.JWTSecret)

	h := handler.New(checkoutSvc, orderSvc, statusSvc, productSvc, admin, handler.Config{
		SecureCookie: cfg.AppEnv == "production",
		Metrics:      registry,
	})

	limiter := middleware.NewRateLimiter(cfg.TrustProxy)
	router := setupRouter(h, receiver, middleware.AdminAuth(admin))

	return &server{
		handler: middleware.Chain(router,
			logger.RequestIDMiddleware,
			logger.LoggingMiddleware,
			middleware.CORS(cfg.CORSOrigin),
			limiter.Middleware,
		),
		limiter:    limiter,
		dispatcher: dispatcher,
	}
}

func setupRouter(h *handler.Handler, webhookHandler http.Handler, adminAuth func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("GET /products", h.ListProducts)
	mux.HandleFunc("GET /products/{productId}", h.GetProduct)

	mux.HandleFunc("POST /checkout", h.Checkout)
	mux.HandleFunc("POST /orders/manual", h.CreateManualOrder)
	mux.HandleFunc("GET /orders/{orderId}", h.GetOrder)
	mux.HandleFunc("GET /payments/{orderId}", h.PaymentStatus)

	mux.Handle("POST /webhooks/payment-gateway/{token}", webhookHandler)

	mux.HandleFunc("POST /admin/login", h.AdminLogin)
	mux.Handle("POST /admin/orders/{orderId}/payment", adminAuth(http.HandlerFunc(h.RetryPayment)))
	mux.Handle("GET /admin/metrics", adminAuth(http.HandlerFunc(h.Metrics)))

	return mux
}
