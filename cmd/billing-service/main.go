package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/hireloop/billing/internal/auth"
	"github.com/hireloop/billing/internal/config"
	"github.com/hireloop/billing/internal/db"
	"github.com/hireloop/billing/internal/excel"
	httphandler "github.com/hireloop/billing/internal/http"
	"github.com/hireloop/billing/internal/http/middleware"
	"github.com/hireloop/billing/internal/logger"
	"github.com/hireloop/billing/internal/pdf"
	"github.com/hireloop/billing/internal/repository"
	"github.com/hireloop/billing/internal/service"
)

func main() {
	// Monetary fields marshal as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	profileRepo := repository.NewProfileRepository(database)
	contractRepo := repository.NewContractRepository(database)
	jobRepo := repository.NewJobRepository(database)
	reportRepo := repository.NewReportRepository(database)

	billingService := service.NewBillingService(contractRepo, jobRepo, profileRepo, pdf.NewGenerator(), cfg)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator(), cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(billingService, reportService, log)
	profileAuth := middleware.Profile(profileRepo)
	adminAuth := middleware.AdminAuth(tokenParser)
	router := httphandler.NewRouter(handler, profileAuth, adminAuth, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting billing service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
