package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jstittsworth/longball/internal/models"
)

func TestMatchupScoreBasicFormula(t *testing.T) {
	m := &models.Matchup{
		HRScore:           0.28,
		PitchMatchupScore: models.Float64(0.2),
		ParkFactor:        models.Float64(1.05),
		WindBoost:         models.Float64(0.05),
		BullpenBoost:      models.Float64(0.1),
	}

	expected := 0.28*0.40 + 0.2*0.20 + 1.05*0.15 + 0.05*0.15 + 0.1*0.10
	assert.InDelta(t, expected, MatchupScore(m), 1e-9)
}

func TestMatchupScoreEnhancedFormula(t *testing.T) {
	m := &models.Matchup{
		HRScore:           0.28,
		PitchMatchupScore: models.Float64(0.2),
		ParkFactor:        models.Float64(1.05),
		WindBoost:         models.Float64(0.05),
		BullpenBoost:      models.Float64(0.1),
		PlatoonAdvantage:  models.Float64(0.7),
		Batter: models.BatterStats{
			AvgExitVelo: models.Float64(91.0),
			XSLG:        models.Float64(0.5),
			HRsLast10:   models.Int(4),
		},
		Pitcher: models.PitcherStats{
			HardHitPctAllowed: models.Float64(0.4),
		},
	}

	expected := 0.28*0.35 + 0.2*0.15 + 1.05*0.15 + 0.05*0.15 + 0.1*0.10 +
		(91.0-85)/100*0.02 + 0.5*0.03 + 0.03 + (0.7-0.5)*0.05 + 0.4*0.02
	assert.InDelta(t, expected, MatchupScore(m), 1e-9)
}

func TestMatchupScoreFormulaSelection(t *testing.T) {
	basic := &models.Matchup{HRScore: 0.2}
	assert.False(t, basic.HasAdvancedMetrics())

	enhanced := &models.Matchup{
		HRScore: 0.2,
		Batter:  models.BatterStats{XSLG: models.Float64(0.45)},
	}
	assert.True(t, enhanced.HasAdvancedMetrics())

	// Same inputs, different formula weights on the HR score.
	assert.NotEqual(t, MatchupScore(basic), MatchupScore(enhanced))
}
