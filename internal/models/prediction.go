package models

import (
	"time"

	"github.com/jstittsworth/longball/pkg/database"
	"gorm.io/datatypes"
)

// Prediction is the persisted form of a scored matchup, kept for
// backtesting and next-day result grading.
type Prediction struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RunID    string `gorm:"size:36;index" json:"run_id"`
	GameDate string `gorm:"size:10;index" json:"game_date"`
	GameID   string `gorm:"size:120;index" json:"game_id"`

	BatterID    int    `json:"batter_id"`
	BatterName  string `gorm:"size:100" json:"batter_name"`
	PitcherID   int    `json:"pitcher_id"`
	PitcherName string `gorm:"size:100" json:"pitcher_name"`
	PitcherTeam string `gorm:"size:10" json:"pitcher_team"`
	Ballpark    string `gorm:"size:100" json:"ballpark"`
	HomeTeam    string `gorm:"size:10" json:"home_team"`

	HRScore           float64        `json:"hr_score"`
	MatchupScore      float64        `json:"matchup_score"`
	Tier              string         `gorm:"size:10;index" json:"tier"`
	PitchMatchupScore float64        `json:"pitch_matchup_score"`
	ParkFactor        float64        `json:"park_factor"`
	WindBoost         float64        `json:"wind_boost"`
	BullpenBoost      float64        `json:"bullpen_boost"`
	Suppression       float64        `json:"pitcher_hr_suppression"`
	PitchMix          datatypes.JSON `json:"pitch_mix"`

	// Graded the next day; nil until results are known.
	HitHR *bool `json:"hit_hr"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PipelineRun records one execution of the prediction pipeline.
type PipelineRun struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	GameDate   string     `gorm:"size:10;index" json:"game_date"`
	Status     string     `gorm:"size:20" json:"status"` // running, completed, failed
	Matchups   int        `json:"matchups"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

// GetPredictionsByDate fetches the scored slate for a game date,
// highest matchup score first.
func GetPredictionsByDate(db *database.DB, gameDate string) ([]Prediction, error) {
	var predictions []Prediction
	err := db.Where("game_date = ?", gameDate).
		Order("matchup_score DESC").
		Find(&predictions).Error
	return predictions, err
}

// GetLatestRun returns the most recent pipeline run, if any.
func GetLatestRun(db *database.DB) (*PipelineRun, error) {
	var run PipelineRun
	err := db.Order("started_at DESC").First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}
