package services

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/jstittsworth/longball/internal/scoring"
	"github.com/jstittsworth/longball/pkg/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	db := &database.DB{DB: gormDB}
	require.NoError(t, db.AutoMigrate(&models.Prediction{}, &models.PipelineRun{}))
	return db
}

func newTestResults(t *testing.T) (*ResultsService, *database.DB) {
	t.Helper()

	db := newTestDB(t)
	svc, err := NewResultsService(db, t.TempDir(), logrus.New())
	require.NoError(t, err)
	return svc, db
}

func scoredMatchup(batterID int, name, gameDate string, score float64) models.Matchup {
	return models.Matchup{
		LineupEntry: models.LineupEntry{
			BatterID:    batterID,
			BatterName:  name,
			PitcherID:   900,
			PitcherName: "Test Pitcher",
			PitcherTeam: "NYY",
			GameDate:    gameDate,
			GameID:      gameDate + "-CIN-NYY",
			Ballpark:    "Great American Ball Park",
			HomeTeam:    "CIN",
		},
		Pitcher: models.PitcherStats{
			PitchMix: map[string]float64{"4-Seam Fastball": 0.6, "Slider": 0.4},
		},
		ParkFactor:        models.Float64(1.15),
		WindBoost:         models.Float64(0.03),
		PitchMatchupScore: models.Float64(0.2),
		HRScore:           score,
		MatchupScore:      score,
		Tier:              scoring.ClassifyTier(score),
	}
}

func TestSaveSlateWritesCSVAndRows(t *testing.T) {
	svc, db := newTestResults(t)

	matchups := []models.Matchup{
		scoredMatchup(1, "Batter A", "2025-06-01", 0.30),
		scoredMatchup(2, "Batter B", "2025-06-01", 0.18),
	}
	require.NoError(t, svc.SaveSlate("run-1", "2025-06-01", matchups))

	f, err := os.Open(svc.CSVPath("2025-06-01"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "Batter A", records[1][3])
	assert.Equal(t, "0.3000", records[1][9])
	assert.Equal(t, scoring.TierLock, records[1][11])

	rows, err := models.GetPredictionsByDate(db, "2025-06-01")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "run-1", rows[0].RunID)
	assert.Equal(t, "Batter A", rows[0].BatterName)
	assert.NotEmpty(t, rows[0].PitchMix)
	assert.Nil(t, rows[0].HitHR)
}

func TestSaveSlateReplacesIntradayRun(t *testing.T) {
	svc, db := newTestResults(t)

	first := []models.Matchup{
		scoredMatchup(1, "Batter A", "2025-06-01", 0.30),
		scoredMatchup(2, "Batter B", "2025-06-01", 0.18),
	}
	require.NoError(t, svc.SaveSlate("run-1", "2025-06-01", first))

	second := []models.Matchup{
		scoredMatchup(3, "Batter C", "2025-06-01", 0.22),
	}
	require.NoError(t, svc.SaveSlate("run-2", "2025-06-01", second))

	rows, err := models.GetPredictionsByDate(db, "2025-06-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "run-2", rows[0].RunID)
	assert.Equal(t, "Batter C", rows[0].BatterName)
}

func TestSaveSlateEmpty(t *testing.T) {
	svc, _ := newTestResults(t)

	require.NoError(t, svc.SaveSlate("run-1", "2025-06-01", nil))
	_, err := os.Stat(svc.CSVPath("2025-06-01"))
	assert.True(t, os.IsNotExist(err))
}

func TestGradeDate(t *testing.T) {
	svc, db := newTestResults(t)

	matchups := []models.Matchup{
		scoredMatchup(1, "Batter A", "2025-06-01", 0.30),
		scoredMatchup(2, "Batter B", "2025-06-01", 0.18),
		scoredMatchup(3, "Batter C", "2025-06-01", 0.05),
	}
	require.NoError(t, svc.SaveSlate("run-1", "2025-06-01", matchups))

	graded, err := svc.GradeDate("2025-06-01", map[int]bool{1: true})
	require.NoError(t, err)
	assert.Equal(t, 3, graded)

	rows, err := models.GetPredictionsByDate(db, "2025-06-01")
	require.NoError(t, err)
	byBatter := make(map[int]models.Prediction)
	for _, row := range rows {
		byBatter[row.BatterID] = row
	}

	require.NotNil(t, byBatter[1].HitHR)
	assert.True(t, *byBatter[1].HitHR)
	require.NotNil(t, byBatter[2].HitHR)
	assert.False(t, *byBatter[2].HitHR)
	require.NotNil(t, byBatter[3].HitHR)
	assert.False(t, *byBatter[3].HitHR)
}

func TestGradeDateNoPredictions(t *testing.T) {
	svc, _ := newTestResults(t)

	graded, err := svc.GradeDate("2025-06-01", map[int]bool{1: true})
	require.NoError(t, err)
	assert.Zero(t, graded)
}
