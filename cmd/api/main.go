package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/dairylink/dairylink-api/docs" // Swagger docs
	"github.com/dairylink/dairylink-api/internal/config"
	"github.com/dairylink/dairylink-api/internal/database"
	"github.com/dairylink/dairylink-api/internal/handlers"
	"github.com/dairylink/dairylink-api/internal/jobs"
	"github.com/dairylink/dairylink-api/internal/middleware"
	"github.com/dairylink/dairylink-api/internal/repository"
	"github.com/dairylink/dairylink-api/internal/services"
	"github.com/dairylink/dairylink-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title DairyLink API
// @version 1.0
// @description REST API for the DairyLink Collection Payment & Credit Reconciliation Engine

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories and the transaction manager
	repos := repository.NewRepositories(db)
	txm := repository.NewTxManager(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, txm, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Staff routes (society staff and admins run the daily workflow)
			staff := protected.Group("")
			staff.Use(middleware.RequireStaff())
			{
				// Collections
				staff.GET("/collections", h.Collection.Index)
				staff.POST("/collections", h.Collection.Create)
				staff.GET("/collections/:collection_id", h.Collection.Show)
				staff.POST("/collections/:collection_id/verify", h.Collection.Verify)

				// Batch approval of a collector's daily deliveries
				staff.POST("/approvals/batch", h.Approval.BatchApprove)

				// Credits (requests are raised at the counter on a farmer's behalf)
				staff.GET("/farmers/:farmer_id/credit", h.Credit.Index)
				staff.POST("/credit", h.Credit.Create)

				// Deductions
				staff.GET("/farmers/:farmer_id/deductions", h.Deduction.Index)
				staff.POST("/deductions", h.Deduction.Create)
				staff.POST("/deductions/:deduction_id/deactivate", h.Deduction.Deactivate)
				staff.POST("/deductions/run", h.Deduction.Run)

				// Farmer payments
				staff.GET("/payments", h.Payment.Index)
				staff.GET("/payments/:payment_id", h.Payment.Show)
				staff.POST("/payments/generate", h.Payment.Generate)
				staff.POST("/payments/:payment_id/mark_paid", h.Payment.MarkPaid)

				// Collector payments
				staff.GET("/collector_payments", h.Collector.Index)
				staff.GET("/collector_payments/:collector_payment_id", h.Collector.Show)
				staff.POST("/collector_payments/compute", h.Collector.Compute)
				staff.POST("/collector_payments/:collector_payment_id/mark_paid", h.Collector.MarkPaid)

				// Exports
				staff.GET("/exports/settlements", h.Export.Settlements)
				staff.GET("/exports/farmers/:farmer_id/statement", h.Export.FarmerStatement)
			}

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// Credit approval/rejection (admin only)
				admin.POST("/credit/:credit_id/approve", h.Credit.Approve)
				admin.POST("/credit/:credit_id/reject", h.Credit.Reject)

				// Payment rollback (admin only)
				admin.POST("/payments/:payment_id/rollback", h.Payment.Rollback)

				// Audits
				admin.GET("/audits", h.Audit.Index)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Apply due deductions on the configured interval, once at startup
	interval := time.Duration(cfg.DeductionIntervalHours) * time.Hour
	worker.ScheduleEveryImmediate(interval, func(ctx context.Context) error {
		logger.Info("[Job] Applying due deductions...")
		result, err := svcs.Deduction.ApplyDueDeductions(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		logger.Info("[Job] Deduction run finished",
			"applied", result.Applied, "skipped", result.Skipped, "failed", result.Failed)
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}
