package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/longball/internal/api"
	"github.com/jstittsworth/longball/internal/api/middleware"
	"github.com/jstittsworth/longball/internal/providers"
	"github.com/jstittsworth/longball/internal/scoring"
	"github.com/jstittsworth/longball/internal/services"
	"github.com/jstittsworth/longball/internal/websocket"
	"github.com/jstittsworth/longball/pkg/config"
	"github.com/jstittsworth/longball/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	logger := logrus.StandardLogger()
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Warnf("Redis unavailable, falling back to in-process cache: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	cacheService := services.NewCacheService(redisClient, logger)
	hub := websocket.NewHub(logger)
	go hub.Run()

	fileCache, err := services.NewFileCache(cfg.CacheDir, cfg.CacheMaxAgeDays, logger)
	if err != nil {
		logrus.Fatalf("Failed to initialize file cache: %v", err)
	}

	// Initialize data providers
	breakers := providers.NewBreakerGroup(cfg.CircuitBreakerThreshold, 60*time.Second, logger)
	limiter := providers.NewAPIRateLimiter(cfg.StatcastRateLimit)

	statsAPI := providers.NewStatsAPIClient(cfg.StatsAPIBaseURL, cfg.ExternalAPITimeout, cacheService, breakers, logger)
	statcast := providers.NewStatcastClient(cfg.StatcastBaseURL, cfg.ExternalAPITimeout, cacheService, breakers, limiter, logger)
	weather := providers.NewOpenWeatherClient(cfg.OpenWeatherAPIKey, cfg.ExternalAPITimeout, cacheService, breakers, logger)

	// Select scorer strategy
	scorer, err := scoring.NewScorer(cfg.Scorer, cfg.ModelWeightsPath, logger)
	if err != nil {
		logrus.Fatalf("Failed to initialize scorer: %v", err)
	}
	logrus.Infof("Using %s scorer", scorer.Name())

	results, err := services.NewResultsService(db, cfg.ResultsDir, logger)
	if err != nil {
		logrus.Fatalf("Failed to initialize results service: %v", err)
	}

	notifier, err := services.NewNotifier(cfg, logger)
	if err != nil {
		logrus.Fatalf("Failed to initialize notifier: %v", err)
	}

	pipeline := services.NewPipeline(cfg, db, statsAPI, statcast, weather, cacheService, fileCache, scorer, results, notifier, hub, logger)
	backtest := services.NewBacktestService(db, cfg.ResultsDir, logger)

	// Scheduled daily runs
	if cfg.EnableScheduler {
		scheduler := services.NewSchedulerService(db, pipeline, fileCache, cfg.PipelineSchedule, logger)
		if err := scheduler.Start(); err != nil {
			logrus.Errorf("Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// Realtime lineup and weather monitoring
	monitorCtx, cancelMonitor := context.WithCancel(context.Background())
	defer cancelMonitor()
	if cfg.EnableRealtime {
		monitor := services.NewRealtimeMonitor(db, statsAPI, weather, pipeline, hub, cfg.RealtimeInterval, logger)
		go monitor.Run(monitorCtx)
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"time":           time.Now().UTC(),
			"ws_connections": hub.GetConnectionCount(),
		})
	})

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, db, redisClient, cacheService, pipeline, backtest)

	// WebSocket endpoint at root level (not under /api/v1)
	router.GET("/ws", hub.HandleWebSocket)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	cancelMonitor()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
