package scoring

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/longball/internal/models"
)

func testWeights() ModelWeights {
	return ModelWeights{
		Bias: -2.0,
		Coefficients: map[string]float64{
			"iso":                    3.0,
			"barrel_rate":            2.0,
			"hr_per_9":               0.5,
			"wind_boost":             1.0,
			"park_factor":            0.3,
			"pitch_matchup_score":    1.5,
			"bullpen_boost":          0.2,
			"pitcher_hr_suppression": -0.8,
		},
	}
}

func TestModelScorerSigmoid(t *testing.T) {
	scorer := NewModelScorer(testWeights())

	m := &models.Matchup{
		Batter: models.BatterStats{
			ISO:        models.Float64(0.250),
			BarrelRate: models.Float64(0.12),
		},
		Pitcher: models.PitcherStats{
			HRPer9: models.Float64(1.2),
		},
		ParkFactor:        models.Float64(1.05),
		WindBoost:         models.Float64(0.05),
		PitchMatchupScore: models.Float64(0.2),
		BullpenBoost:      models.Float64(0.1),
		Suppression:       models.Float64(0.45),
	}

	z := -2.0 +
		3.0*0.250 + 2.0*0.12 + 0.5*1.2 + 1.0*0.05 +
		0.3*1.05 + 1.5*0.2 + 0.2*0.1 + -0.8*0.45
	expected := 1.0 / (1.0 + math.Exp(-z))

	assert.InDelta(t, expected, scorer.Score(m), 1e-9)
}

func TestModelScorerMissingFeaturesDefault(t *testing.T) {
	scorer := NewModelScorer(testWeights())

	// Park factor defaults to 1.0, everything else to 0.
	z := -2.0 + 0.3*1.0
	expected := 1.0 / (1.0 + math.Exp(-z))

	assert.InDelta(t, expected, scorer.Score(&models.Matchup{}), 1e-9)
}

func TestModelScorerClipsToMaxScore(t *testing.T) {
	weights := testWeights()
	weights.Bias = 10.0 // sigmoid saturates near 1
	scorer := NewModelScorer(weights)

	assert.Equal(t, MaxScore, scorer.Score(&models.Matchup{}))
}

func TestLoadModelScorer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.json")

	data, err := json.Marshal(testWeights())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	scorer, err := LoadModelScorer(path)
	require.NoError(t, err)
	assert.Equal(t, "model", scorer.Name())
}

func TestLoadModelScorerMissingCoefficient(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.json")

	weights := testWeights()
	delete(weights.Coefficients, "barrel_rate")
	data, err := json.Marshal(weights)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = LoadModelScorer(path)
	assert.ErrorContains(t, err, "barrel_rate")
}

func TestLoadModelScorerMissingFile(t *testing.T) {
	_, err := LoadModelScorer(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestNewScorerSelection(t *testing.T) {
	logger := logrus.New()

	rules, err := NewScorer("rules", "", logger)
	require.NoError(t, err)
	assert.Equal(t, "rules", rules.Name())

	_, err = NewScorer("bogus", "", logger)
	assert.Error(t, err)
}
