package scoring

import (
	"math"

	"github.com/jstittsworth/longball/internal/models"
)

// MatchupScore combines the HR score with context features into the
// final ranking score. Matchups carrying advanced metrics use the
// enhanced formula; the rest use the basic blend.
func MatchupScore(m *models.Matchup) float64 {
	if m.HasAdvancedMetrics() {
		return enhancedMatchupScore(m)
	}
	return basicMatchupScore(m)
}

func basicMatchupScore(m *models.Matchup) float64 {
	return m.HRScore*0.40 +
		models.Deref(m.PitchMatchupScore, 0)*0.20 +
		models.Deref(m.ParkFactor, 1.0)*0.15 +
		models.Deref(m.WindBoost, 0)*0.15 +
		models.Deref(m.BullpenBoost, 0)*0.10
}

func enhancedMatchupScore(m *models.Matchup) float64 {
	score := m.HRScore*0.35 +
		models.Deref(m.PitchMatchupScore, 0)*0.15 +
		models.Deref(m.ParkFactor, 1.0)*0.15 +
		models.Deref(m.WindBoost, 0)*0.15 +
		models.Deref(m.BullpenBoost, 0)*0.10

	if m.Batter.AvgExitVelo != nil {
		score += math.Max(0, (*m.Batter.AvgExitVelo-85)/100) * 0.02
	}
	if m.Batter.XSLG != nil {
		score += *m.Batter.XSLG * 0.03
	}
	if m.Batter.HRsLast10 != nil {
		score += math.Min(float64(*m.Batter.HRsLast10)*0.01, 0.03)
	}
	if m.PlatoonAdvantage != nil {
		score += (*m.PlatoonAdvantage - 0.5) * 0.05
	}
	if m.Pitcher.HardHitPctAllowed != nil {
		score += *m.Pitcher.HardHitPctAllowed * 0.02
	}

	return score
}
