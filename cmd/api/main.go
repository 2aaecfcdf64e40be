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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/kinship/internal/bootstrap"
	"github.com/MrJamesThe3rd/kinship/internal/config"
	kinshipHttp "github.com/MrJamesThe3rd/kinship/internal/http"
	"github.com/MrJamesThe3rd/kinship/internal/http/auth"
	campaignHandler "github.com/MrJamesThe3rd/kinship/internal/http/campaign"
	donationHandler "github.com/MrJamesThe3rd/kinship/internal/http/donation"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer ledger.Close()

	opts := kinshipHttp.Options{AllowedOrigins: cfg.Server.AllowedOrigins}
	if cfg.Auth.JWTSecret != "" {
		opts.Admin = auth.Middleware([]byte(cfg.Auth.JWTSecret))
	} else {
		slog.Warn("AUTH_JWT_SECRET not set, admin routes disabled")
	}

	var (
		donationH = donationHandler.NewHandler(ledger.Service, cfg.App.DefaultCurrency)
		campaignH = campaignHandler.NewHandler(ledger.Service)
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      kinshipHttp.New(donationH, campaignH, opts),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		slog.Info("shutting down server")

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
