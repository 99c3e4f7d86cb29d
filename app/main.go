package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leadcomb/lead-comb/app/api"
	"github.com/leadcomb/lead-comb/app/cfg"
	"github.com/leadcomb/lead-comb/app/compliance"
	"github.com/leadcomb/lead-comb/app/database"
	"github.com/leadcomb/lead-comb/app/export"
	"github.com/leadcomb/lead-comb/app/scraper"
	"github.com/leadcomb/lead-comb/app/scraping"
	"github.com/leadcomb/lead-comb/app/tagging"
	"github.com/leadcomb/lead-comb/app/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Lead Comb server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	// Repositories
	contactRepo := database.NewContactRepository(db)
	tagRepo := database.NewTagRepository(db)
	complianceRepo := database.NewComplianceRepository(db)
	logRepo := database.NewScrapingLogRepository(db)
	campaignRepo := database.NewCampaignRepository(db)

	// Core components
	gate := compliance.NewGate(complianceRepo, logRepo)
	tagger := tagging.NewService(tagRepo, contactRepo)
	source := scraper.NewMockSource(time.Now().UnixNano())
	orchestrator := scraping.NewOrchestrator(source, gate, contactRepo, logRepo, tagger,
		time.Duration(appCfg.QueryInterval)*time.Millisecond)
	exporter := export.NewExporter(contactRepo)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount,
		"interval_seconds", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(campaignRepo, orchestrator)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(contactRepo, logRepo, campaignRepo, gate, tagger,
		orchestrator, exporter, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey, appCfg.BaseUrl)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "api_enabled", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Lead Comb server shutdown complete")
}
