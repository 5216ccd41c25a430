package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/contaflow/contaflow/internal/category"
	categoryStore "github.com/contaflow/contaflow/internal/category/store"
	"github.com/contaflow/contaflow/internal/config"
	"github.com/contaflow/contaflow/internal/database"
	contaflowHttp "github.com/contaflow/contaflow/internal/http"
	entriesHandler "github.com/contaflow/contaflow/internal/http/entries"
	importHandler "github.com/contaflow/contaflow/internal/http/importcommit"
	reconciliationHandler "github.com/contaflow/contaflow/internal/http/reconciliation"
	"github.com/contaflow/contaflow/internal/importer"
	"github.com/contaflow/contaflow/internal/ledger"
	ledgerStore "github.com/contaflow/contaflow/internal/ledger/store"
	"github.com/contaflow/contaflow/internal/reconcile"
	reconcileStore "github.com/contaflow/contaflow/internal/reconcile/store"
	"github.com/contaflow/contaflow/internal/textnorm"
	"github.com/contaflow/contaflow/internal/transfer"
	transferStore "github.com/contaflow/contaflow/internal/transfer/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	norm := textnorm.Default()

	var (
		categoryService = category.NewService(categoryStore.New(db), category.NewEngine())
		ledgerService   = ledger.NewService(ledgerStore.New(db), categoryService, norm, cfg.Import.MaxCommitRows)
		importService   = importer.NewService(norm)
		matcherService  = transfer.NewService(transferStore.New(db), transfer.Policy{
			WindowDays: cfg.Matcher.WindowDays,
			MinScore:   cfg.Matcher.MinScore,
			DescBonus:  cfg.Matcher.DescBonus,
		})
		reconcileService = reconcile.NewService(reconcileStore.New(db))
	)

	var (
		importH         = importHandler.NewHandler(importService, ledgerService)
		reconciliationH = reconciliationHandler.NewHandler(matcherService, reconcileService)
		entriesH        = entriesHandler.NewHandler(ledgerService)
	)

	router := contaflowHttp.New(importH, reconciliationH, entriesH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
