package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/arkidots/pipeline-api/docs"
	"github.com/arkidots/pipeline-api/internal/auth"
	"github.com/arkidots/pipeline-api/internal/config"
	"github.com/arkidots/pipeline-api/internal/http/handler"
	"github.com/arkidots/pipeline-api/internal/http/middleware"
	"github.com/arkidots/pipeline-api/internal/http/router"
	"github.com/arkidots/pipeline-api/internal/jobs"
	"github.com/arkidots/pipeline-api/internal/logger"
	"github.com/arkidots/pipeline-api/internal/snapshot"
	"github.com/arkidots/pipeline-api/internal/store"
)

// @title Pipeline API
// @version 1.0
// @description Lead pipeline tracking API with staged schedules and progress views

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)

	// Load the stage template that every new lead is scheduled from
	template, err := config.LoadStageTemplate(cfg.Pipeline.TemplateFile)
	if err != nil {
		return fmt.Errorf("failed to load stage template: %w", err)
	}
	log.Info("Stage template loaded",
		zap.String("file", cfg.Pipeline.TemplateFile),
		zap.Int("stages", len(template)),
	)

	// Initialize stores
	identity := store.NewIdentityStore(cfg.Auth.BcryptCost, log)
	leads := store.NewLeadStore(&cfg.Pipeline, template, log)

	// Optional snapshot database
	var snap *snapshot.Store
	if cfg.Snapshot.Enabled {
		snap, err = snapshot.Open(cfg.Snapshot.Path, log)
		if err != nil {
			return fmt.Errorf("failed to open snapshot database: %w", err)
		}

		if cfg.Snapshot.RestoreOnStart {
			restoredLeads, selectedID, restoredUsers, err := snap.Load()
			if err != nil {
				return fmt.Errorf("failed to restore snapshot: %w", err)
			}
			leads.Restore(restoredLeads, selectedID)
			identity.Restore(restoredUsers)
			log.Info("State restored from snapshot",
				zap.Int("leads", len(restoredLeads)),
				zap.Int("users", len(restoredUsers)),
			)
		}
	}

	// Seed the initial admin account when the user catalog is empty
	created, err := identity.Bootstrap(cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}
	if created {
		log.Info("Bootstrap admin account created",
			zap.String("email", cfg.Auth.BootstrapAdminEmail),
		)
	}

	// Initialize auth
	issuer := auth.NewTokenIssuer(&cfg.Auth, cfg.App.Name)
	authMiddleware := auth.NewMiddleware(issuer, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(identity, issuer, log)
	userHandler := handler.NewUserHandler(identity, log)
	leadHandler := handler.NewLeadHandler(leads, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		leads,
		identity,
		authMiddleware,
		rateLimiter,
		authHandler,
		userHandler,
		leadHandler,
	)

	// Background jobs
	scheduler := jobs.NewScheduler(log)

	if snap != nil {
		snapshotJob := jobs.NewSnapshotJob(leads, identity, snap, log)
		if err := jobs.RegisterSnapshotJob(scheduler, snapshotJob, cfg.Snapshot.Cron); err != nil {
			return fmt.Errorf("failed to register snapshot job: %w", err)
		}
	}

	overdueJob := jobs.NewOverdueReportJob(leads, log)
	if err := jobs.RegisterOverdueReportJob(scheduler, overdueJob, jobs.DefaultOverdueReportCron); err != nil {
		return fmt.Errorf("failed to register overdue report job: %w", err)
	}

	scheduler.Start()
	log.Info("Scheduler started", zap.Strings("jobs", scheduler.JobNames()))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Final snapshot so a restart picks up where we left off
		if snap != nil {
			exportedLeads, selectedID := leads.Export()
			if err := snap.Save(exportedLeads, selectedID, identity.Export()); err != nil {
				log.Warn("Failed to write final snapshot", zap.Error(err))
			}
			if err := snap.Close(); err != nil {
				log.Warn("Error closing snapshot database", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
