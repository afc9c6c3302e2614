package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/jstittsworth/longball/internal/services"
	"github.com/jstittsworth/longball/pkg/database"
	"github.com/jstittsworth/longball/pkg/utils"
)

type PipelineHandler struct {
	db       *database.DB
	pipeline *services.Pipeline
	backtest *services.BacktestService
}

func NewPipelineHandler(db *database.DB, pipeline *services.Pipeline, backtest *services.BacktestService) *PipelineHandler {
	return &PipelineHandler{
		db:       db,
		pipeline: pipeline,
		backtest: backtest,
	}
}

type runRequest struct {
	GameDate string `json:"game_date"`
}

// RunPipeline triggers a slate run. The run happens inline; slates are
// small enough that a synchronous response is fine.
func (h *PipelineHandler) RunPipeline(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if req.GameDate == "" {
		req.GameDate = time.Now().UTC().Format("2006-01-02")
	}
	if !validDate(req.GameDate) {
		utils.SendValidationError(c, "Invalid date", "Expected YYYY-MM-DD")
		return
	}

	run, err := h.pipeline.Run(c.Request.Context(), req.GameDate)
	if err != nil {
		utils.SendError(c, 500, utils.NewAppError(utils.ErrCodePipeline, "Pipeline run failed", err.Error()))
		return
	}
	utils.SendSuccess(c, run)
}

// GetLatestRun reports the most recent pipeline execution.
func (h *PipelineHandler) GetLatestRun(c *gin.Context) {
	run, err := models.GetLatestRun(h.db)
	if err != nil {
		utils.SendNotFound(c, "No pipeline runs recorded")
		return
	}
	utils.SendSuccess(c, run)
}

// GradeResults grades a past date against actual home runs.
func (h *PipelineHandler) GradeResults(c *gin.Context) {
	gameDate := c.Query("date")
	if !validDate(gameDate) {
		utils.SendValidationError(c, "Invalid date", "Expected YYYY-MM-DD")
		return
	}

	// GradeYesterday expects the day after the slate being graded.
	date, _ := time.Parse("2006-01-02", gameDate)
	dayAfter := date.AddDate(0, 0, 1).Format("2006-01-02")

	if err := h.pipeline.GradeYesterday(c.Request.Context(), dayAfter); err != nil {
		utils.SendError(c, 500, utils.NewAppError(utils.ErrCodePipeline, "Grading failed", err.Error()))
		return
	}
	utils.SendSuccess(c, gin.H{"graded_date": gameDate})
}

type backtestRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	TopN      int    `json:"top_n"`
}

// RunBacktest replays graded predictions over a date range.
func (h *PipelineHandler) RunBacktest(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if req.TopN == 0 {
		req.TopN = 5
	}

	report, err := h.backtest.Run(req.StartDate, req.EndDate, req.TopN)
	if err != nil {
		utils.SendError(c, 500, utils.NewAppError(utils.ErrCodePipeline, "Backtest failed", err.Error()))
		return
	}
	utils.SendSuccess(c, report)
}
