// Package scoring blends per-matchup features into a home run
// likelihood score and classifies it into confidence tiers.
package scoring

import (
	"fmt"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/sirupsen/logrus"
)

// Scorer produces a home run likelihood score for a matchup. Scores
// are always within [0, MaxScore].
type Scorer interface {
	Score(m *models.Matchup) float64
	Name() string
}

// MaxScore is the upper clip bound applied to every score.
const MaxScore = 0.8

// NewScorer selects a scoring strategy by name: "rules" for the
// weighted-sum blender, "model" for the trained logistic model.
func NewScorer(strategy, weightsPath string, logger *logrus.Logger) (Scorer, error) {
	switch strategy {
	case "", "rules":
		return NewRuleScorer(), nil
	case "model":
		model, err := LoadModelScorer(weightsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load model weights: %w", err)
		}
		logger.WithField("path", weightsPath).Info("Loaded trained model weights")
		return model, nil
	default:
		return nil, fmt.Errorf("unknown scorer strategy: %q", strategy)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
