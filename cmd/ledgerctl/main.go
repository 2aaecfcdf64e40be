package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/kinship/internal/bootstrap"
	"github.com/MrJamesThe3rd/kinship/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	open := func(ctx context.Context) (*bootstrap.Ledger, error) {
		return bootstrap.Open(ctx, cfg)
	}

	a := &app{cfg: cfg, open: open}
	if err := a.execute(context.Background(), newRootCmd(a)); err != nil {
		os.Exit(1)
	}
}
