package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hagglehub/negotiation-api/internal/config"
	"github.com/hagglehub/negotiation-api/internal/database"
	"github.com/hagglehub/negotiation-api/internal/extract"
	"github.com/hagglehub/negotiation-api/internal/http/handler"
	"github.com/hagglehub/negotiation-api/internal/http/middleware"
	"github.com/hagglehub/negotiation-api/internal/http/router"
	"github.com/hagglehub/negotiation-api/internal/insights"
	"github.com/hagglehub/negotiation-api/internal/jobs"
	"github.com/hagglehub/negotiation-api/internal/logger"
	"github.com/hagglehub/negotiation-api/internal/pricing"
	"github.com/hagglehub/negotiation-api/internal/repository"
	"github.com/hagglehub/negotiation-api/internal/scrape"
	"github.com/hagglehub/negotiation-api/internal/service"
	"go.uber.org/zap"
)

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

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize repositories
	vehicleRepo := repository.NewVehicleRepository(db)
	dealerRepo := repository.NewDealerRepository(db)
	dealRepo := repository.NewDealRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	zipRateRepo := repository.NewZipTaxRateRepository(db)
	insightCacheRepo := repository.NewInsightCacheRepository(db)

	// Extraction engines and outbound clients
	engine := extract.NewEngine()
	htmlParser := extract.NewHTMLExtractor(engine)
	fetcher := scrape.NewClient(&cfg.Scrape, log)
	analyzer := insights.NewClient(&cfg.Insights, log)

	resolver := pricing.NewResolver(zipRateRepo, pricing.Defaults{
		TaxRate:         cfg.Fees.DefaultTaxRate,
		RegistrationFee: cfg.Fees.DefaultRegistrationFee,
		DocFee:          cfg.Fees.DefaultDocFee,
		TitleFee:        cfg.Fees.DefaultTitleFee,
	})

	// Initialize services
	vehicleService := service.NewVehicleService(vehicleRepo, log)
	dealerService := service.NewDealerService(dealerRepo, log)
	dealService := service.NewDealService(dealRepo, vehicleRepo, dealerRepo, resolver, log, db)
	messageService := service.NewMessageService(messageRepo, dealRepo, dealerRepo, vehicleRepo, engine, log)
	listingService := service.NewListingService(vehicleRepo, dealerRepo, dealRepo, engine, htmlParser, fetcher, log)
	insightService := service.NewInsightService(insightCacheRepo, dealRepo, analyzer, &cfg.Insights, log)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	vehicleHandler := handler.NewVehicleHandler(vehicleService, log)
	dealerHandler := handler.NewDealerHandler(dealerService, log)
	dealHandler := handler.NewDealHandler(dealService, log)
	messageHandler := handler.NewMessageHandler(messageService, log)
	listingHandler := handler.NewListingHandler(listingService, log)
	insightHandler := handler.NewInsightHandler(insightService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		rateLimiter,
		vehicleHandler,
		dealerHandler,
		dealHandler,
		messageHandler,
		listingHandler,
		insightHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		sweep := jobs.NewInsightSweepJob(dealRepo, insightService, log, 10*time.Minute)
		if err := scheduler.AddJob(jobs.InsightSweepJobName, cfg.Jobs.InsightSweepSchedule, sweep.Run); err != nil {
			log.Error("Failed to register insight sweep job", zap.Error(err))
		}

		purge := jobs.NewCachePurgeJob(insightService, log, time.Minute)
		if err := scheduler.AddJob(jobs.CachePurgeJobName, cfg.Jobs.CachePurgeSchedule, purge.Run); err != nil {
			log.Error("Failed to register cache purge job", zap.Error(err))
		}

		scheduler.Start()
		log.Info("Scheduler started",
			zap.Strings("jobs", scheduler.GetJobNames()),
			zap.String("insight_sweep_cron", cfg.Jobs.InsightSweepSchedule),
			zap.String("cache_purge_cron", cfg.Jobs.CachePurgeSchedule),
		)
	} else {
		log.Info("Background jobs disabled")
	}

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

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
