package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jstittsworth/longball/internal/models"
)

func TestSuppressionScoreDefaults(t *testing.T) {
	// Every input missing: league-average defaults apply.
	expected := (1/(1.0+0.01))*0.4 +
		(1/(7.5+0.01))*0.3 +
		(1/(35.0+0.01))*0.2 +
		(1/(4.0+0.01))*0.1

	assert.InDelta(t, expected, SuppressionScore(models.PitcherStats{}), 1e-9)
}

func TestSuppressionScoreOrdering(t *testing.T) {
	elite := models.PitcherStats{
		HRPer9:            models.Float64(0.5),
		BarrelPctAllowed:  models.Float64(0.04),
		HardHitPctAllowed: models.Float64(0.28),
		XFIP:              models.Float64(3.0),
	}
	homerProne := models.PitcherStats{
		HRPer9:            models.Float64(2.0),
		BarrelPctAllowed:  models.Float64(0.12),
		HardHitPctAllowed: models.Float64(0.45),
		XFIP:              models.Float64(5.5),
	}

	assert.Greater(t, SuppressionScore(elite), SuppressionScore(homerProne))
}

func TestTagTopSuppressors(t *testing.T) {
	matchups := make([]*models.Matchup, 10)
	for i := range matchups {
		matchups[i] = &models.Matchup{
			Suppression: models.Float64(float64(i) * 0.1),
		}
	}

	TagTopSuppressors(matchups)

	tagged := 0
	for _, m := range matchups {
		if m.SuppressionTag {
			tagged++
			assert.GreaterOrEqual(t, *m.Suppression, 0.9)
		}
	}
	assert.Equal(t, 1, tagged)
}

func TestTagTopSuppressorsNoScores(t *testing.T) {
	matchups := []*models.Matchup{{}, {}}
	TagTopSuppressors(matchups)
	for _, m := range matchups {
		assert.False(t, m.SuppressionTag)
	}
}
