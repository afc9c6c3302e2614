package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/jstittsworth/longball/pkg/database"
)

// ResultsService persists scored slates twice: per-date CSV files for
// offline analysis and database rows for the API and backtester.
type ResultsService struct {
	db     *database.DB
	dir    string
	logger *logrus.Logger
}

func NewResultsService(db *database.DB, dir string, logger *logrus.Logger) (*ResultsService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results dir: %w", err)
	}
	return &ResultsService{db: db, dir: dir, logger: logger}, nil
}

var csvHeader = []string{
	"game_date", "game_id", "batter_id", "batter_name", "pitcher_id",
	"pitcher_name", "pitcher_team", "ballpark", "home_team",
	"hr_score", "matchup_score", "tier", "pitch_matchup_score",
	"park_factor", "wind_boost", "bullpen_boost", "pitcher_hr_suppression",
}

// SaveSlate writes one run's scored matchups to the per-date CSV and
// the predictions table. The CSV is replaced wholesale so intraday
// refreshes keep a single authoritative file per date.
func (s *ResultsService) SaveSlate(runID, gameDate string, matchups []models.Matchup) error {
	if len(matchups) == 0 {
		return nil
	}

	if err := s.writeCSV(gameDate, matchups); err != nil {
		return err
	}

	rows := make([]models.Prediction, 0, len(matchups))
	for i := range matchups {
		row, err := toPrediction(runID, &matchups[i])
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"batter": matchups[i].BatterName,
				"error":  err,
			}).Warn("Skipping unpersistable prediction row")
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil
	}

	// Replace any earlier intraday run for the same date.
	if err := s.db.Where("game_date = ?", gameDate).Delete(&models.Prediction{}).Error; err != nil {
		return fmt.Errorf("failed to clear prior predictions: %w", err)
	}
	if err := s.db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to persist predictions: %w", err)
	}

	return nil
}

func (s *ResultsService) writeCSV(gameDate string, matchups []models.Matchup) error {
	path := s.CSVPath(gameDate)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write results header: %w", err)
	}

	for i := range matchups {
		m := &matchups[i]
		record := []string{
			m.GameDate, m.GameID,
			strconv.Itoa(m.BatterID), m.BatterName,
			strconv.Itoa(m.PitcherID), m.PitcherName,
			m.PitcherTeam, m.Ballpark, m.HomeTeam,
			formatScore(m.HRScore), formatScore(m.MatchupScore), m.Tier,
			formatScore(models.Deref(m.PitchMatchupScore, 0)),
			formatScore(models.Deref(m.ParkFactor, 1.0)),
			formatScore(models.Deref(m.WindBoost, 0)),
			formatScore(models.Deref(m.BullpenBoost, 0)),
			formatScore(models.Deref(m.Suppression, 0)),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write results row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// CSVPath returns the per-date results file location.
func (s *ResultsService) CSVPath(gameDate string) string {
	return filepath.Join(s.dir, fmt.Sprintf("predictions_%s.csv", gameDate))
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func toPrediction(runID string, m *models.Matchup) (models.Prediction, error) {
	var pitchMix datatypes.JSON
	if len(m.Pitcher.PitchMix) > 0 {
		raw, err := json.Marshal(m.Pitcher.PitchMix)
		if err != nil {
			return models.Prediction{}, fmt.Errorf("failed to encode pitch mix: %w", err)
		}
		pitchMix = datatypes.JSON(raw)
	}

	return models.Prediction{
		RunID:             runID,
		GameDate:          m.GameDate,
		GameID:            m.GameID,
		BatterID:          m.BatterID,
		BatterName:        m.BatterName,
		PitcherID:         m.PitcherID,
		PitcherName:       m.PitcherName,
		PitcherTeam:       m.PitcherTeam,
		Ballpark:          m.Ballpark,
		HomeTeam:          m.HomeTeam,
		HRScore:           m.HRScore,
		MatchupScore:      m.MatchupScore,
		Tier:              m.Tier,
		PitchMatchupScore: models.Deref(m.PitchMatchupScore, 0),
		ParkFactor:        models.Deref(m.ParkFactor, 1.0),
		WindBoost:         models.Deref(m.WindBoost, 0),
		BullpenBoost:      models.Deref(m.BullpenBoost, 0),
		Suppression:       models.Deref(m.Suppression, 0),
		PitchMix:          pitchMix,
	}, nil
}

// GradeDate marks which predicted batters actually homered. Called the
// day after a slate once results are final.
func (s *ResultsService) GradeDate(gameDate string, homeredBatters map[int]bool) (int, error) {
	predictions, err := models.GetPredictionsByDate(s.db, gameDate)
	if err != nil {
		return 0, fmt.Errorf("failed to load predictions for grading: %w", err)
	}

	graded := 0
	for i := range predictions {
		hit := homeredBatters[predictions[i].BatterID]
		if err := s.db.Model(&predictions[i]).Update("hit_hr", hit).Error; err != nil {
			return graded, fmt.Errorf("failed to grade prediction %d: %w", predictions[i].ID, err)
		}
		graded++
	}

	s.logger.WithFields(logrus.Fields{
		"game_date": gameDate,
		"graded":    graded,
	}).Info("Graded prediction results")

	return graded, nil
}
