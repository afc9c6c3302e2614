package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/jstittsworth/longball/internal/models"
)

// modelFeatures is the fixed feature order the trained model expects.
var modelFeatures = []string{
	"iso",
	"barrel_rate",
	"hr_per_9",
	"wind_boost",
	"park_factor",
	"pitch_matchup_score",
	"bullpen_boost",
	"pitcher_hr_suppression",
}

// ModelWeights is the serialized form of a trained logistic model.
type ModelWeights struct {
	Bias         float64            `json:"bias"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// ModelScorer scores matchups with a trained logistic model instead of
// the fixed-coefficient blend. Weights are loaded once at construction;
// there is no filesystem probing at score time.
type ModelScorer struct {
	weights ModelWeights
}

// LoadModelScorer reads logistic weights from a JSON file.
func LoadModelScorer(path string) (*ModelScorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model weights: %w", err)
	}

	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to parse model weights: %w", err)
	}

	for _, feature := range modelFeatures {
		if _, ok := weights.Coefficients[feature]; !ok {
			return nil, fmt.Errorf("model weights missing coefficient for %q", feature)
		}
	}

	return &ModelScorer{weights: weights}, nil
}

// NewModelScorer builds a scorer from in-memory weights. Used by tests
// and by callers that already hold a trained model.
func NewModelScorer(weights ModelWeights) *ModelScorer {
	return &ModelScorer{weights: weights}
}

func (s *ModelScorer) Name() string { return "model" }

// Score computes the logistic probability over the fixed feature
// vector, clipped into the same range as the rule-based blend so tier
// thresholds stay comparable.
func (s *ModelScorer) Score(m *models.Matchup) float64 {
	features := s.featureVector(m)

	z := s.weights.Bias
	for name, value := range features {
		z += s.weights.Coefficients[name] * value
	}

	prob := 1.0 / (1.0 + math.Exp(-z))
	return clamp(prob, 0, MaxScore)
}

func (s *ModelScorer) featureVector(m *models.Matchup) map[string]float64 {
	return map[string]float64{
		"iso":                    models.Deref(m.Batter.ISO, 0),
		"barrel_rate":            models.Deref(m.Batter.BarrelRate, 0),
		"hr_per_9":               models.Deref(m.Pitcher.HRPer9, 0),
		"wind_boost":             models.Deref(m.WindBoost, 0),
		"park_factor":            models.Deref(m.ParkFactor, 1.0),
		"pitch_matchup_score":    models.Deref(m.PitchMatchupScore, 0),
		"bullpen_boost":          models.Deref(m.BullpenBoost, 0),
		"pitcher_hr_suppression": models.Deref(m.Suppression, 0),
	}
}
