package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"thrive-chatbot/internal/config"
	"thrive-chatbot/internal/core"
	"thrive-chatbot/internal/db"
	"thrive-chatbot/internal/document"
	httpserver "thrive-chatbot/internal/http"
	"thrive-chatbot/internal/identity"
	"thrive-chatbot/internal/llm"
	"thrive-chatbot/internal/logging"
	"thrive-chatbot/internal/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewCollector()

	conn, dialect, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	// An unreachable store is not fatal; requests report it until it returns.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = db.Ping(pingCtx, conn)
	cancel()
	switch {
	case err != nil:
		logger.Warn("database unreachable at startup", zap.String("driver", string(dialect)), zap.Error(err))
		if cfg.Database.Migrate {
			logger.Warn("skipping schema migration")
		}
	case cfg.Database.Migrate:
		if err := db.Migrate(ctx, conn, dialect); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database connected, schema migrated", zap.String("driver", string(dialect)))
	default:
		logger.Info("database connected", zap.String("driver", string(dialect)))
	}
	repo := db.NewRepository(conn, dialect)

	client, err := llm.New(cfg.Completion)
	if err != nil {
		return err
	}
	client = llm.Instrument(client, m, cfg.Completion.Backend)

	tokens := identity.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL, logger)
	provider, err := identity.New(ctx, cfg.Identity, repo, tokens)
	if err != nil {
		return fmt.Errorf("identity provider: %w", err)
	}

	chat := core.NewChatService(client, repo, logger)
	ingestor := core.NewIngestor(document.PDFExtractor{}, client, logger, m)
	sessions := httpserver.NewSessionRegistry(cfg.SessionTTL, cfg.ChatRateLimit, cfg.ChatRateBurst)
	sessions.StartSweeper(ctx, time.Minute, logger)

	handler, err := httpserver.NewServer(provider, chat, ingestor, sessions, tokens, m, logger)
	if err != nil {
		return fmt.Errorf("construct server: %w", err)
	}
	handler.MaxUploadBytes = cfg.MaxUploadBytes
	handler.SessionTTL = cfg.SessionTTL
	handler.Dev = cfg.IsDevelopment()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.Completion.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("identity", cfg.Identity.Provider),
			zap.String("completion", cfg.Completion.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	stop()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
