package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/tiammomo/mamoji/internal/account"
	accountStore "github.com/tiammomo/mamoji/internal/account/store"
	"github.com/tiammomo/mamoji/internal/auth"
	authStore "github.com/tiammomo/mamoji/internal/auth/store"
	"github.com/tiammomo/mamoji/internal/budget"
	budgetStore "github.com/tiammomo/mamoji/internal/budget/store"
	"github.com/tiammomo/mamoji/internal/category"
	categoryStore "github.com/tiammomo/mamoji/internal/category/store"
	"github.com/tiammomo/mamoji/internal/config"
	"github.com/tiammomo/mamoji/internal/database"
	mamojiHttp "github.com/tiammomo/mamoji/internal/http"
	accountHandler "github.com/tiammomo/mamoji/internal/http/account"
	authHandler "github.com/tiammomo/mamoji/internal/http/auth"
	budgetHandler "github.com/tiammomo/mamoji/internal/http/budget"
	categoryHandler "github.com/tiammomo/mamoji/internal/http/category"
	importHandler "github.com/tiammomo/mamoji/internal/http/importcsv"
	ledgerHandler "github.com/tiammomo/mamoji/internal/http/ledger"
	refundHandler "github.com/tiammomo/mamoji/internal/http/refund"
	reportHandler "github.com/tiammomo/mamoji/internal/http/report"
	txHandler "github.com/tiammomo/mamoji/internal/http/transaction"
	"github.com/tiammomo/mamoji/internal/importer"
	"github.com/tiammomo/mamoji/internal/ledger"
	ledgerStore "github.com/tiammomo/mamoji/internal/ledger/store"
	"github.com/tiammomo/mamoji/internal/refund"
	refundStore "github.com/tiammomo/mamoji/internal/refund/store"
	"github.com/tiammomo/mamoji/internal/report"
	"github.com/tiammomo/mamoji/internal/transaction"
	txStore "github.com/tiammomo/mamoji/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		accountService  = account.NewService(accountStore.New(db))
		categoryService = category.NewService(categoryStore.New(db))
		budgetService   = budget.NewService(budgetStore.New(db))
		txService       = transaction.NewService(txStore.New(db), accountService, categoryService)
		refundService   = refund.NewService(refundStore.New(db), txService, accountService)
		ledgerService   = ledger.NewService(ledgerStore.New(db))
		reportService   = report.NewService(txService, accountService)
		importService   = importer.NewService(txService, categoryService)
		authService     = auth.NewService(authStore.New(db), auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL))
	)

	handlers := mamojiHttp.Handlers{
		Auth:         authHandler.NewHandler(authService),
		Accounts:     accountHandler.NewHandler(accountService),
		Categories:   categoryHandler.NewHandler(categoryService),
		Budgets:      budgetHandler.NewHandler(budgetService),
		Transactions: txHandler.NewHandler(txService, ledgerService),
		Refunds:      refundHandler.NewHandler(refundService),
		Ledgers:      ledgerHandler.NewHandler(ledgerService),
		Reports:      reportHandler.NewHandler(reportService),
		Import:       importHandler.NewHandler(importService),
	}

	router := mamojiHttp.New(authService, cfg.CORS.AllowedOrigins, handlers)

	addr := fmt.Sprintf(":%d", cfg.App.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "app", cfg.App.Name, "addr", addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
