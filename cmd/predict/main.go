package main

import (
	"context"
	"flag"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/longball/internal/providers"
	"github.com/jstittsworth/longball/internal/scoring"
	"github.com/jstittsworth/longball/internal/services"
	"github.com/jstittsworth/longball/pkg/config"
	"github.com/jstittsworth/longball/pkg/database"
)

// predict runs the pipeline once from the command line, without the
// API server. Useful for cron-driven deployments and backfills.
func main() {
	date := flag.String("date", time.Now().UTC().Format("2006-01-02"), "game date to score (YYYY-MM-DD)")
	testMode := flag.Bool("test", false, "skip alerts and broadcast")
	grade := flag.Bool("grade", false, "grade yesterday's predictions before running")
	realtime := flag.Bool("realtime", false, "keep polling for lineup and weather changes after the run")
	backtestStart := flag.String("backtest-start", "", "run a backtest from this date instead of predicting")
	backtestEnd := flag.String("backtest-end", "", "backtest end date")
	topN := flag.Int("top", 5, "top-N size for backtest precision")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if *testMode {
		cfg.TestMode = true
	}

	logger := logrus.StandardLogger()
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Warnf("Redis unavailable, falling back to in-process cache: %v", err)
	}
	defer redisClient.Close()

	// Backtest mode replays graded history and exits.
	if *backtestStart != "" {
		if *backtestEnd == "" {
			logrus.Fatal("backtest-end is required with backtest-start")
		}
		backtest := services.NewBacktestService(db, cfg.ResultsDir, logger)
		report, err := backtest.Run(*backtestStart, *backtestEnd, *topN)
		if err != nil {
			logrus.Fatalf("Backtest failed: %v", err)
		}
		logrus.WithFields(logrus.Fields{
			"dates":           report.DatesCovered,
			"graded":          report.TotalGraded,
			"hits":            report.TotalHits,
			"top_n_precision": report.TopNPrecision,
		}).Info("Backtest complete")
		for _, tm := range report.ByTier {
			logrus.Infof("%-8s predictions=%d hits=%d hit_rate=%.3f avg_score=%.3f",
				tm.Tier, tm.Predictions, tm.Hits, tm.HitRate, tm.AvgScore)
		}
		return
	}

	cacheService := services.NewCacheService(redisClient, logger)
	fileCache, err := services.NewFileCache(cfg.CacheDir, cfg.CacheMaxAgeDays, logger)
	if err != nil {
		logrus.Fatalf("Failed to initialize file cache: %v", err)
	}

	breakers := providers.NewBreakerGroup(cfg.CircuitBreakerThreshold, 60*time.Second, logger)
	limiter := providers.NewAPIRateLimiter(cfg.StatcastRateLimit)
	statsAPI := providers.NewStatsAPIClient(cfg.StatsAPIBaseURL, cfg.ExternalAPITimeout, cacheService, breakers, logger)
	statcast := providers.NewStatcastClient(cfg.StatcastBaseURL, cfg.ExternalAPITimeout, cacheService, breakers, limiter, logger)
	weather := providers.NewOpenWeatherClient(cfg.OpenWeatherAPIKey, cfg.ExternalAPITimeout, cacheService, breakers, logger)

	scorer, err := scoring.NewScorer(cfg.Scorer, cfg.ModelWeightsPath, logger)
	if err != nil {
		logrus.Fatalf("Failed to initialize scorer: %v", err)
	}

	results, err := services.NewResultsService(db, cfg.ResultsDir, logger)
	if err != nil {
		logrus.Fatalf("Failed to initialize results service: %v", err)
	}

	notifier, err := services.NewNotifier(cfg, logger)
	if err != nil {
		logrus.Fatalf("Failed to initialize notifier: %v", err)
	}

	pipeline := services.NewPipeline(cfg, db, statsAPI, statcast, weather, cacheService, fileCache, scorer, results, notifier, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if *grade {
		if err := pipeline.GradeYesterday(ctx, *date); err != nil {
			logrus.Warnf("Result grading failed: %v", err)
		}
	}

	run, err := pipeline.Run(ctx, *date)
	if err != nil {
		logrus.Fatalf("Pipeline run failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"run_id":   run.ID,
		"matchups": run.Matchups,
		"csv":      results.CSVPath(*date),
	}).Info("Pipeline run completed")

	if *realtime {
		monitor := services.NewRealtimeMonitor(db, statsAPI, weather, pipeline, nil, cfg.RealtimeInterval, logger)
		monitor.Run(context.Background())
	}
}
