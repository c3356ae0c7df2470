package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bluecore-studio/crm-api/config"
	"github.com/bluecore-studio/crm-api/pkg/analytics"
	"github.com/bluecore-studio/crm-api/pkg/api/handlers"
	"github.com/bluecore-studio/crm-api/pkg/auth"
	"github.com/bluecore-studio/crm-api/pkg/cache"
	"github.com/bluecore-studio/crm-api/pkg/contacts"
	"github.com/bluecore-studio/crm-api/pkg/dailyreport"
	"github.com/bluecore-studio/crm-api/pkg/dataroom"
	"github.com/bluecore-studio/crm-api/pkg/database"
	"github.com/bluecore-studio/crm-api/pkg/export"
	"github.com/bluecore-studio/crm-api/pkg/followups"
	"github.com/bluecore-studio/crm-api/pkg/funding"
	"github.com/bluecore-studio/crm-api/pkg/jobs"
	"github.com/bluecore-studio/crm-api/pkg/leadnote"
	"github.com/bluecore-studio/crm-api/pkg/leads"
	"github.com/bluecore-studio/crm-api/pkg/logger"
	"github.com/bluecore-studio/crm-api/pkg/metrics"
	custommiddleware "github.com/bluecore-studio/crm-api/pkg/middleware"
	"github.com/bluecore-studio/crm-api/pkg/pipeline"
	"github.com/bluecore-studio/crm-api/pkg/storage"
	"github.com/bluecore-studio/crm-api/pkg/tags"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLog := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database
	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Printf("✅ Database ready (%s)", cfg.DatabaseURL)

	// Redis is optional: projections fall back to direct queries without it
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, caching disabled: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Upload storage backend
	var store storage.Storage
	switch cfg.StorageType {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			log.Fatalf("❌ Failed to initialize S3 storage: %v", err)
		}
		log.Printf("✅ S3 storage initialized (bucket: %s)", cfg.S3Bucket)
	default:
		store, err = storage.NewLocalStorage(cfg.StorageLocalPath)
		if err != nil {
			log.Fatalf("❌ Failed to initialize local storage: %v", err)
		}
		log.Printf("✅ Local storage initialized (%s)", cfg.StorageLocalPath)
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewRequestValidator()

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				appLog.Error("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status, "error", v.Error)
			} else {
				appLog.Info("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(prometheusMetrics.Middleware())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowCredentials: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
		},
	}))

	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("26M"))

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "Bluecore CRM API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}

		cacheStatus := "disabled"
		if redisClient != nil {
			cacheStatus = "up"
			if _, err := redisClient.Redis.Ping(c.Request().Context()).Result(); err != nil {
				cacheStatus = "down"
			}
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    cacheStatus,
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Initialize services
	authenticator := auth.NewSharedPassword(cfg.CRMPassword)
	leadService := leads.NewService(db.DB, redisClient)
	followUpService := followups.NewService(db.DB)
	contactService := contacts.NewService(db.DB, "US")
	noteService := leadnote.NewService(db.DB)
	tagService := tags.NewService(db.DB)
	fundingService := funding.NewService(db.DB, redisClient)
	pipelineService := pipeline.NewService(db.DB, redisClient)
	analyticsService := analytics.NewService(db.DB, redisClient)
	reportService := dailyreport.NewService(db.DB)
	docService := dataroom.NewService(db.DB, store)
	exportService := export.NewService(leadService, cfg.ExportDir)

	// Initialize cron manager
	var cronManager *jobs.CronManager
	if cfg.JobsEnabled {
		cronManager = jobs.NewCronManager(followUpService, pipelineService, analyticsService, log.Default())
		if err := cronManager.SetupJobs(); err != nil {
			log.Fatalf("❌ Failed to setup cron jobs: %v", err)
		}
		cronManager.Start()
		log.Printf("✅ Cron jobs started successfully")
	} else {
		log.Printf("ℹ️  Cron jobs disabled (JOBS_ENABLED=false)")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authenticator, cfg.SessionMaxAge, cfg.SecureCookies)
	leadHandler := handlers.NewLeadHandler(leadService, exportService)
	followUpHandler := handlers.NewFollowUpHandler(followUpService)
	contactHandler := handlers.NewContactHandler(contactService)
	noteHandler := handlers.NewNoteHandler(noteService)
	tagHandler := handlers.NewTagHandler(tagService)
	fundingHandler := handlers.NewFundingHandler(fundingService)
	pipelineHandler := handlers.NewPipelineHandler(pipelineService, analyticsService)
	reportHandler := handlers.NewDailyReportHandler(reportService)
	dataRoomHandler := handlers.NewDataRoomHandler(docService)

	// Authentication routes (public)
	authRoutes := e.Group("/api/crm/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/session", authHandler.Session)
	}

	// Protected CRM routes
	crm := e.Group("/api/crm")
	crm.Use(custommiddleware.Session(authenticator, cfg.LoginRedirectTo))
	{
		leadsGroup := crm.Group("/leads")
		{
			leadsGroup.GET("", leadHandler.List)
			leadsGroup.GET("/export", leadHandler.Export)
			leadsGroup.POST("", leadHandler.Create)
			leadsGroup.GET("/:id", leadHandler.Get)
			leadsGroup.PATCH("/:id", leadHandler.Update)
			leadsGroup.DELETE("/:id", leadHandler.Delete)
			leadsGroup.PATCH("/:id/stage", leadHandler.UpdateStage)

			leadsGroup.GET("/:id/activities", leadHandler.ListActivities)
			leadsGroup.POST("/:id/activities", leadHandler.CreateActivity)

			leadsGroup.GET("/:id/followups", followUpHandler.ListByLead)
			leadsGroup.POST("/:id/followups", followUpHandler.Create)

			leadsGroup.GET("/:id/contacts", contactHandler.ListByLead)
			leadsGroup.POST("/:id/contacts", contactHandler.Create)
			leadsGroup.DELETE("/:id/contacts/:contactId", contactHandler.Delete)

			leadsGroup.GET("/:id/notes", noteHandler.ListByLead)
			leadsGroup.POST("/:id/notes", noteHandler.Create)
			leadsGroup.DELETE("/:id/notes/:noteId", noteHandler.Delete)

			leadsGroup.GET("/:id/tags", tagHandler.ListByLead)
			leadsGroup.POST("/:id/tags/:tagId", tagHandler.Attach)
			leadsGroup.DELETE("/:id/tags/:tagId", tagHandler.Detach)
		}

		followUpsGroup := crm.Group("/followups")
		{
			followUpsGroup.GET("", followUpHandler.ListOpen)
			followUpsGroup.PATCH("/:id", followUpHandler.Update)
			followUpsGroup.DELETE("/:id", followUpHandler.Delete)
		}

		tagsGroup := crm.Group("/tags")
		{
			tagsGroup.GET("", tagHandler.List)
			tagsGroup.POST("", tagHandler.Create)
			tagsGroup.DELETE("/:id", tagHandler.Delete)
		}

		fundingGroup := crm.Group("/funding")
		{
			fundingGroup.GET("", fundingHandler.List)
			fundingGroup.GET("/stats", fundingHandler.Stats)
			fundingGroup.POST("", fundingHandler.Ingest)
			fundingGroup.POST("/:id/import", fundingHandler.ImportLead)
		}

		crm.GET("/pipeline", pipelineHandler.Board)
		crm.GET("/analytics", pipelineHandler.Dashboard)

		reportsGroup := crm.Group("/daily-reports")
		{
			reportsGroup.GET("", reportHandler.List)
			reportsGroup.GET("/week", reportHandler.WeekSummary)
			reportsGroup.POST("", reportHandler.Create)
			reportsGroup.PATCH("/:id", reportHandler.Update)
			reportsGroup.DELETE("/:id", reportHandler.Delete)
		}

		dataRoomGroup := crm.Group("/data-room")
		{
			dataRoomGroup.GET("", dataRoomHandler.List)
			dataRoomGroup.POST("", dataRoomHandler.Create)
			dataRoomGroup.POST("/upload", dataRoomHandler.Upload)
			dataRoomGroup.PATCH("/:id", dataRoomHandler.Update)
			dataRoomGroup.DELETE("/:id", dataRoomHandler.Delete)
		}
	}

	// Uploaded files (behind the session wall)
	if cfg.StorageType != "s3" {
		files := e.Group("/files/data-room")
		files.Use(custommiddleware.Session(authenticator, cfg.LoginRedirectTo))
		files.Static("", cfg.StorageLocalPath)
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 Bluecore CRM API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("🌍 CORS: %v", cfg.CORSAllowedOrigins)
	log.Printf("⏰ Cron jobs: Daily 2AM (reconcile follow-ups), every 10 min (warm caches)")

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	if cronManager != nil {
		cronManager.Stop()
		log.Println("✅ Cron jobs stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
