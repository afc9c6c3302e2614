package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/jstittsworth/longball/internal/scoring"
	"github.com/jstittsworth/longball/internal/services"
	"github.com/jstittsworth/longball/pkg/database"
	"github.com/jstittsworth/longball/pkg/utils"
)

type PredictionsHandler struct {
	db    *database.DB
	cache *services.CacheService
}

func NewPredictionsHandler(db *database.DB, cache *services.CacheService) *PredictionsHandler {
	return &PredictionsHandler{
		db:    db,
		cache: cache,
	}
}

// GetPredictions returns the scored slate for a date, newest score
// first. Defaults to today.
func (h *PredictionsHandler) GetPredictions(c *gin.Context) {
	gameDate := c.DefaultQuery("date", time.Now().UTC().Format("2006-01-02"))
	if !validDate(gameDate) {
		utils.SendValidationError(c, "Invalid date", "Expected YYYY-MM-DD")
		return
	}

	tier := c.Query("tier")
	if tier != "" && scoring.TierRank(tier) < 0 {
		utils.SendValidationError(c, "Invalid tier", "Expected Lock, Sleeper, or Risky")
		return
	}

	cacheKey := services.PredictionsCacheKey(gameDate + ":" + tier)
	var cached []models.Prediction
	if err := h.cache.GetSimple(cacheKey, &cached); err == nil {
		utils.SendSuccess(c, cached)
		return
	}

	predictions, err := models.GetPredictionsByDate(h.db, gameDate)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch predictions")
		return
	}
	if len(predictions) == 0 {
		utils.SendNotFound(c, "No predictions for "+gameDate)
		return
	}

	if tier != "" {
		filtered := predictions[:0]
		for _, p := range predictions {
			if p.Tier == tier {
				filtered = append(filtered, p)
			}
		}
		predictions = filtered
	}

	h.cache.SetSimple(cacheKey, predictions, 5*time.Minute)
	utils.SendSuccess(c, predictions)
}

// GetTopPicks returns the N highest-scored matchups for a date.
func (h *PredictionsHandler) GetTopPicks(c *gin.Context) {
	gameDate := c.DefaultQuery("date", time.Now().UTC().Format("2006-01-02"))
	if !validDate(gameDate) {
		utils.SendValidationError(c, "Invalid date", "Expected YYYY-MM-DD")
		return
	}

	n, err := strconv.Atoi(c.DefaultQuery("n", "10"))
	if err != nil || n < 1 || n > 100 {
		utils.SendValidationError(c, "Invalid pick count", "n must be between 1 and 100")
		return
	}

	predictions, err := models.GetPredictionsByDate(h.db, gameDate)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch predictions")
		return
	}
	if len(predictions) == 0 {
		utils.SendNotFound(c, "No predictions for "+gameDate)
		return
	}

	if len(predictions) > n {
		predictions = predictions[:n]
	}
	utils.SendSuccess(c, predictions)
}

// GetMatchup returns one prediction by its matchup key.
func (h *PredictionsHandler) GetMatchup(c *gin.Context) {
	gameID := c.Param("gameId")

	var prediction models.Prediction
	if err := h.db.Where("game_id = ?", gameID).First(&prediction).Error; err != nil {
		utils.SendNotFound(c, "Matchup not found")
		return
	}
	utils.SendSuccess(c, prediction)
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
