// Package app assembles the services shared by the API server and the TUI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/coinquest/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/coinquest/internal/budget/store"
	"github.com/MrJamesThe3rd/coinquest/internal/category"
	categoryStore "github.com/MrJamesThe3rd/coinquest/internal/category/store"
	"github.com/MrJamesThe3rd/coinquest/internal/config"
	"github.com/MrJamesThe3rd/coinquest/internal/database"
	"github.com/MrJamesThe3rd/coinquest/internal/export"
	"github.com/MrJamesThe3rd/coinquest/internal/importer"
	"github.com/MrJamesThe3rd/coinquest/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/coinquest/internal/matching/store"
	"github.com/MrJamesThe3rd/coinquest/internal/memstore"
	"github.com/MrJamesThe3rd/coinquest/internal/merchant"
	merchantStore "github.com/MrJamesThe3rd/coinquest/internal/merchant/store"
	"github.com/MrJamesThe3rd/coinquest/internal/query"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
	txStore "github.com/MrJamesThe3rd/coinquest/internal/transaction/store"
)

type repositories struct {
	categories   category.Repository
	merchants    merchant.Repository
	transactions transaction.Repository
	budgets      budget.Repository
	matching     matching.Repository
}

type App struct {
	Categories   *category.Service
	Merchants    *merchant.Service
	Transactions *transaction.Service
	Budgets      *budget.Service
	Matching     *matching.Service
	Query        *query.Service
	Import       *importer.Service
	Export       *export.Service

	// DB is nil with in-memory storage.
	DB *sql.DB
}

// New opens the configured storage, migrating Postgres, and builds every service on it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	repos, db, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return build(repos, db, loc), nil
}

func build(repos repositories, db *sql.DB, loc *time.Location) *App {
	a := &App{
		Categories:   category.NewService(repos.categories),
		Merchants:    merchant.NewService(repos.merchants),
		Transactions: transaction.NewService(repos.transactions),
		Budgets:      budget.NewService(repos.budgets),
		Matching:     matching.NewService(repos.matching),
		DB:           db,
	}

	a.Query = query.NewService(a.Transactions, a.Budgets, loc)
	a.Import = importer.NewService(a.Categories, a.Merchants, a.Matching, a.Transactions)
	a.Export = export.NewService(a.Query)

	return a
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}

	return a.DB.Close()
}

func openStorage(ctx context.Context, cfg *config.Config) (repositories, *sql.DB, error) {
	if cfg.App.Storage == config.StorageMemory {
		slog.Warn("using in-memory storage, data is lost on exit")

		store := memstore.New()

		return repositories{
			categories:   store,
			merchants:    store,
			transactions: store,
			budgets:      store,
			matching:     store,
		}, nil, nil
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return repositories{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		return repositories{}, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repositories{
		categories:   categoryStore.New(db),
		merchants:    merchantStore.New(db),
		transactions: txStore.New(db),
		budgets:      budgetStore.New(db),
		matching:     matchingStore.New(db),
	}, db, nil
}
