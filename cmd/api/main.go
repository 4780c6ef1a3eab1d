package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/coinquest/internal/app"
	"github.com/MrJamesThe3rd/coinquest/internal/auth"
	"github.com/MrJamesThe3rd/coinquest/internal/config"
	coinHttp "github.com/MrJamesThe3rd/coinquest/internal/http"
	budgetHandler "github.com/MrJamesThe3rd/coinquest/internal/http/budget"
	categoryHandler "github.com/MrJamesThe3rd/coinquest/internal/http/category"
	dashboardHandler "github.com/MrJamesThe3rd/coinquest/internal/http/dashboard"
	exportHandler "github.com/MrJamesThe3rd/coinquest/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/coinquest/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/coinquest/internal/http/matching"
	merchantHandler "github.com/MrJamesThe3rd/coinquest/internal/http/merchant"
	"github.com/MrJamesThe3rd/coinquest/internal/http/session"
	txHandler "github.com/MrJamesThe3rd/coinquest/internal/http/transaction"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}

	if cfg.App.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var pinger session.Pinger
	if a.DB != nil {
		pinger = a.DB
	}

	var authService *auth.Service
	if cfg.AuthEnabled() {
		authService = auth.NewService(cfg.Auth.Secret, cfg.Auth.Username, cfg.Auth.PasswordHash, cfg.Auth.TokenTTL)
	} else {
		slog.Warn("authentication disabled, set AUTH_SECRET to enable it")
	}

	router := coinHttp.New(coinHttp.Handlers{
		Session:      session.NewHandler(authService, pinger),
		Transactions: txHandler.NewHandler(a.Transactions, a.Query),
		Categories:   categoryHandler.NewHandler(a.Categories),
		Merchants:    merchantHandler.NewHandler(a.Merchants),
		Budgets:      budgetHandler.NewHandler(a.Budgets, a.Query),
		Dashboard:    dashboardHandler.NewHandler(a.Query),
		Import:       importHandler.NewHandler(a.Import),
		Export:       exportHandler.NewHandler(a.Export, a.Query),
		Matching:     matchingHandler.NewHandler(a.Matching, a.Merchants),
	}, coinHttp.Options{
		Auth:           authService,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "name", cfg.App.Name, "port", cfg.App.Port, "storage", cfg.App.Storage)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
