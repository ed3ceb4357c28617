// Package main is the entry point for the OceanGuard hazard server.
// It provides a REST API for coastal hazard reporting: citizen report
// submission with media and reverse-geocoded locations, a forward-only
// verification lifecycle driven by officials, social-signal analytics,
// and a real-time event stream that keeps every connected client's
// view current.
//
// With DATABASE_URL unset the server runs in demo mode: every store is
// in-memory and nothing survives a restart.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oceanguard/hazard-server/internal/analytics"
	"github.com/oceanguard/hazard-server/internal/auth"
	"github.com/oceanguard/hazard-server/internal/config"
	"github.com/oceanguard/hazard-server/internal/database"
	"github.com/oceanguard/hazard-server/internal/geocode"
	"github.com/oceanguard/hazard-server/internal/handlers"
	"github.com/oceanguard/hazard-server/internal/media"
	"github.com/oceanguard/hazard-server/internal/middleware"
	"github.com/oceanguard/hazard-server/internal/observability"
	"github.com/oceanguard/hazard-server/internal/realtime"
	"github.com/oceanguard/hazard-server/internal/reports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	sugar.Infow("Starting OceanGuard Hazard Server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"demo_mode", cfg.DemoMode(),
	)

	// Backing stores. Demo mode keeps everything in memory.
	var (
		db  *pgxpool.Pool
		rdb *redis.Client
	)
	if !cfg.DemoMode() {
		db, err = database.NewPool(cfg.DatabaseURL)
		if err != nil {
			sugar.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
	}
	if cfg.RedisURL != "" {
		rdb, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			sugar.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
	}

	metrics := observability.NewMetrics()

	// Real-time fan-out. The bridge relays signals across instances when
	// Redis is configured; otherwise notifications stay in-process.
	hub := realtime.NewHub(sugar)
	bridge := realtime.NewBridge(hub, rdb, sugar)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go bridge.Run(rootCtx)

	// Auth: credential provider, session registry, token issuer.
	var (
		userStore    auth.UserStore
		otpStore     auth.OtpStore
		sessionStore auth.SessionStore
	)
	if db != nil {
		userStore = auth.NewPostgresUserStore(db)
	} else {
		userStore = auth.NewMemoryUserStore()
	}
	if rdb != nil {
		otpStore = auth.NewRedisOtpStore(rdb, cfg.OtpTTL)
		sessionStore = auth.NewRedisSessionStore(rdb, cfg.SessionTTL)
	} else {
		otpStore = auth.NewMemoryOtpStore()
		sessionStore = auth.NewMemorySessionStore()
	}
	otpSender := &auth.LogOtpSender{Logger: sugar}
	provider := auth.NewLocalProvider(userStore, otpStore, otpSender, cfg.OtpTTL, sugar)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	authSvc := auth.NewService(provider, userStore, sessionStore, tokens, bridge, metrics, sugar)

	// Demo mode ships one account per role; registration only ever
	// creates citizens.
	if cfg.DemoMode() {
		if err := auth.SeedDemoUsers(rootCtx, userStore); err != nil {
			sugar.Fatalf("Failed to seed demo users: %v", err)
		}
		sugar.Infow("Demo accounts ready",
			"accounts", "citizen@demo.oceanguard.dev, official@demo.oceanguard.dev, analyst@demo.oceanguard.dev",
			"password", "demo-password")
	}

	// Report enrichment: reverse geocoding and media storage.
	geocoder := geocode.Geocoder(geocode.NewCachedGeocoder(
		geocode.NewClient(cfg.GeocodeBaseURL, 3*time.Second, sugar), 512))
	var uploader media.Uploader
	if cfg.CloudinaryURL != "" {
		uploader, err = media.NewCloudinaryUploader(cfg.CloudinaryURL)
		if err != nil {
			sugar.Fatalf("Failed to init media storage: %v", err)
		}
	}

	var reportStore reports.Store
	if db != nil {
		reportStore = reports.NewPostgresStore(db)
	} else {
		reportStore = reports.NewMemoryStore()
	}
	reportSvc := reports.NewService(reportStore, bridge, geocoder, uploader, metrics, sugar)

	var analyticsStore analytics.Store
	if db != nil {
		analyticsStore = analytics.NewPostgresStore(db)
	} else {
		analyticsStore = analytics.NewMemoryStore()
	}
	analyticsSvc := analytics.NewService(analyticsStore, sugar)

	// Social-signal ingestion from Kafka, when brokers are configured.
	if len(cfg.KafkaBrokers) > 0 {
		consumer := analytics.NewConsumer(cfg.KafkaBrokers, cfg.SocialTopic, cfg.SocialGroup,
			analyticsStore, bridge, metrics, sugar)
		go consumer.Run(rootCtx)
	}

	// Periodic refresh keeps the last-known-good summary warm.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SummaryRefreshSpec, func() {
		ctx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
		defer cancel()
		if err := analyticsSvc.RefreshSummary(ctx); err != nil {
			sugar.Warnw("Summary refresh failed", "error", err)
		}
	}); err != nil {
		sugar.Fatalf("Invalid summary refresh spec: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc, sugar)
	reportHandler := handlers.NewReportHandler(reportSvc, sugar)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsSvc, sugar)
	eventHandler := handlers.NewEventHandler(hub, metrics, sugar)
	userHandler := handlers.NewUserHandler(authSvc, sugar)
	healthHandler := handlers.NewHealthHandler(db, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Check)
		r.Get("/health/ready", healthHandler.Ready)

		// Authentication endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/phone/start", authHandler.StartPhone)
			r.Post("/phone/verify", authHandler.VerifyPhone)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(authSvc))
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})
		})

		// Hazard report endpoints
		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.RequireAuth(authSvc))
			r.Post("/", reportHandler.Submit)
			r.Get("/", reportHandler.List)
			r.Get("/stats", reportHandler.Stats)
			r.Put("/{id}/status", reportHandler.UpdateStatus)
			r.Get("/{id}/audit", reportHandler.Audit)
		})

		// Social-signal analytics endpoints
		r.Route("/analytics", func(r chi.Router) {
			r.Use(middleware.RequireAuth(authSvc))
			r.Get("/", analyticsHandler.Recent)
			r.Get("/summary", analyticsHandler.Summary)
		})

		// User management
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(authSvc))
			r.Get("/users", userHandler.List)
		})

		// Real-time change notifications (SSE)
		r.Get("/events", eventHandler.Stream)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Create HTTP server. WriteTimeout is generous because /api/v1/events
	// holds the response open.
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	sugar.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}
