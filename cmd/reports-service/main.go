package main

import (
	"fmt"
	"os"

	"github.com/nurpe/mineops-reports/internal/auth"
	"github.com/nurpe/mineops-reports/internal/config"
	"github.com/nurpe/mineops-reports/internal/db"
	"github.com/nurpe/mineops-reports/internal/excel"
	httphandler "github.com/nurpe/mineops-reports/internal/http"
	"github.com/nurpe/mineops-reports/internal/http/middleware"
	"github.com/nurpe/mineops-reports/internal/logger"
	"github.com/nurpe/mineops-reports/internal/pdf"
	"github.com/nurpe/mineops-reports/internal/repository"
	"github.com/nurpe/mineops-reports/internal/service"
)

func main() {
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

	reportRepo := repository.NewReportRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	historyRepo := repository.NewHistoryRepository(database)
	statsRepo := repository.NewStatsRepository(database)

	ledger := service.NewLedger(vehicleRepo)
	recorder := service.NewRecorder(historyRepo)
	pdfGenerator := pdf.NewGenerator()
	excelGenerator := excel.NewGenerator()

	reportService := service.NewReportService(reportRepo, ledger, recorder, pdfGenerator, cfg)
	statsService := service.NewStatsService(statsRepo, excelGenerator)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(reportService, statsService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting reports service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
