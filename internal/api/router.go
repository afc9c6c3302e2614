package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/jstittsworth/longball/internal/api/handlers"
	"github.com/jstittsworth/longball/internal/services"
	"github.com/jstittsworth/longball/pkg/database"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(
	group *gin.RouterGroup,
	db *database.DB,
	redisClient *redis.Client,
	cache *services.CacheService,
	pipeline *services.Pipeline,
	backtest *services.BacktestService,
) {
	healthHandler := handlers.NewHealthHandler(db, redisClient)
	predictionsHandler := handlers.NewPredictionsHandler(db, cache)
	pipelineHandler := handlers.NewPipelineHandler(db, pipeline, backtest)

	group.GET("/health", healthHandler.GetHealth)
	group.GET("/ready", healthHandler.GetReady)

	group.GET("/predictions", predictionsHandler.GetPredictions)
	group.GET("/predictions/top", predictionsHandler.GetTopPicks)
	group.GET("/predictions/matchup/:gameId", predictionsHandler.GetMatchup)

	group.POST("/pipeline/run", pipelineHandler.RunPipeline)
	group.GET("/pipeline/runs/latest", pipelineHandler.GetLatestRun)
	group.POST("/pipeline/grade", pipelineHandler.GradeResults)
	group.POST("/backtest", pipelineHandler.RunBacktest)
}
