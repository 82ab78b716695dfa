package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tanvirh/whatsapp-concierge/internal/api/router"
	"github.com/tanvirh/whatsapp-concierge/internal/channels/whatsapp"
	appconfig "github.com/tanvirh/whatsapp-concierge/internal/config"
	"github.com/tanvirh/whatsapp-concierge/internal/conversation"
	"github.com/tanvirh/whatsapp-concierge/internal/notify"
	"github.com/tanvirh/whatsapp-concierge/internal/observability/metrics"
	"github.com/tanvirh/whatsapp-concierge/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting whatsapp-concierge",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	llm, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = llm.Close() }()

	waClient := whatsapp.NewClient(cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneNumberID, logger.With("component", "whatsapp"))
	waClient.SetGraphAPIBase(cfg.GraphAPIBase)

	webhookMetrics := metrics.NewWebhookMetrics(nil)

	store := conversation.NewStore(pool)
	classifier := conversation.NewClassifier(llm, cfg.BrandName)
	summarizer := conversation.NewSummarizer(llm, cfg.BrandName)
	notifier := notify.NewService(waClient, cfg.OwnerPhone, logger.With("component", "notify"))
	service := conversation.NewService(store, classifier, summarizer, waClient, notifier, webhookMetrics, logger.With("component", "conversation"))

	webhook := whatsapp.NewWebhookHandler(cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, service, logger.With("component", "webhook"))

	r := router.New(&router.Config{
		Logger:         logger,
		Webhook:        webhook,
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
