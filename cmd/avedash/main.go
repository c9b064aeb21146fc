package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"avedash/internal/amqp"
	"avedash/internal/config"
	"avedash/internal/core"
	apphttp "avedash/internal/http"
	"avedash/internal/identity"
	"avedash/internal/notify"
	"avedash/internal/services"
	"avedash/internal/store"
	fsstore "avedash/internal/store/firestore"
	memstore "avedash/internal/store/memory"
	sqlstore "avedash/internal/store/sqlite"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store backend selection mirrors the configured deployment: the
	// managed document store in production, sqlite or memory locally.
	var docs store.Documents
	switch cfg.StoreBackend {
	case "firestore":
		fs, err := fsstore.New(ctx, fsstore.Config{
			ProjectID:       cfg.FirebaseProjectID,
			Namespace:       cfg.AppNamespace,
			CredentialsFile: cfg.FirebaseCredentials,
		})
		if err != nil {
			logger.Error("Failed to initialize Firestore backend", "error", err, "backend", cfg.StoreBackend)
			os.Exit(1)
		}
		docs = fs
	case "sqlite":
		sq, err := sqlstore.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize sqlite backend", "error", err, "backend", cfg.StoreBackend)
			os.Exit(1)
		}
		docs = sq
	default:
		docs = memstore.New()
	}
	defer docs.Close()
	logger.Info("Initialized store backend", "backend", cfg.StoreBackend, "namespace", cfg.AppNamespace)

	// Identity is display-only; session loss would simply re-establish.
	var provider identity.Provider
	if cfg.StoreBackend == "firestore" {
		provider = identity.NewFirebase(cfg.FirebaseProjectID, cfg.FirebaseCredentials, cfg.SessionToken)
	} else {
		provider = identity.Anonymous{}
	}
	session, err := provider.EstablishSession(ctx)
	if err != nil {
		logger.Error("Failed to establish session", "error", err)
		os.Exit(1)
	}
	logger.Info("Session established", "uid", session.UID, "anonymous", session.Anonymous)

	// AMQP is optional; without it ledger events are simply not exported.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event export", "error", err)
			events = nil
		} else {
			defer events.Close()
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	windowStart, windowEnd := cfg.Window()
	window := core.FiscalWindow{Start: windowStart, End: windowEnd}

	dash := services.NewDashboardService(docs, window, notify.NewBanner(cfg.BannerTTL))
	if err := dash.Start(ctx); err != nil {
		logger.Error("Failed to start dashboard service", "error", err)
		os.Exit(1)
	}
	defer dash.Stop()

	ledger := services.NewLedgerService(docs, events)
	partners := services.NewPartnerService(docs)
	budget := services.NewBudgetService(docs)

	srv := apphttp.NewServer(":"+cfg.Port, dash, ledger, partners, budget, session)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 0 // the /events stream stays open indefinitely
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting avedash server", "port", cfg.Port, "backend", cfg.StoreBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
