// Package bootstrap wires a ledger service to the storage backend named in
// the configuration. Every binary goes through Open.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/kinship/internal/config"
	"github.com/MrJamesThe3rd/kinship/internal/database"
	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/donation/memstore"
	"github.com/MrJamesThe3rd/kinship/internal/donation/store"
)

type Ledger struct {
	Service *donation.Service
	close   func() error
}

// NewLedger pairs svc with the function that releases its store.
func NewLedger(svc *donation.Service, closeFn func() error) *Ledger {
	return &Ledger{Service: svc, close: closeFn}
}

func (l *Ledger) Close() error {
	if l.close == nil {
		return nil
	}

	return l.close()
}

func Open(ctx context.Context, cfg *config.Config) (*Ledger, error) {
	var (
		repo    donation.Repository
		closeFn func() error
	)

	switch cfg.App.Store {
	case config.StorePostgres:
		db, err := database.New(ctx, cfg.ConnectionString(), database.PoolConfig{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}

		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}

		repo = store.New(db)
		closeFn = db.Close
	default:
		repo = memstore.New()
	}

	svc := donation.NewService(repo)

	if cfg.App.Seed {
		if err := svc.Seed(ctx); err != nil {
			if closeFn != nil {
				closeFn()
			}

			return nil, fmt.Errorf("seeding ledger: %w", err)
		}
	}

	slog.Info("ledger ready", "store", cfg.App.Store, "seeded", cfg.App.Seed)

	return NewLedger(svc, closeFn), nil
}
