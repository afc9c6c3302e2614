package scoring

import (
	"sort"

	"github.com/jstittsworth/longball/internal/models"
)

// League-average fallbacks for missing pitcher inputs.
const (
	defaultHRPer9      = 1.0
	defaultBarrelPct   = 7.5 // percent, not fraction
	defaultHardContact = 35.0
	defaultXFIP        = 4.0
)

// SuppressionScore rates how well a pitcher suppresses home runs.
// Higher is better for the pitcher, worse for the batter. Inputs are
// inverted so small HR/9 and barrel rates produce large scores.
func SuppressionScore(p models.PitcherStats) float64 {
	hr9 := models.Deref(p.HRPer9, defaultHRPer9)
	barrel := models.Deref(p.BarrelPctAllowed, defaultBarrelPct/100) * 100
	hardContact := models.Deref(p.HardHitPctAllowed, defaultHardContact/100) * 100
	xfip := models.Deref(p.XFIP, defaultXFIP)

	return (1/(hr9+0.01))*0.4 +
		(1/(barrel+0.01))*0.3 +
		(1/(hardContact+0.01))*0.2 +
		(1/(xfip+0.01))*0.1
}

// TagTopSuppressors marks matchups whose pitcher suppression score
// lands in the top decile of the slate.
func TagTopSuppressors(matchups []*models.Matchup) {
	scores := make([]float64, 0, len(matchups))
	for _, m := range matchups {
		if m.Suppression != nil {
			scores = append(scores, *m.Suppression)
		}
	}
	if len(scores) == 0 {
		return
	}

	sort.Float64s(scores)
	cutoff := scores[len(scores)*9/10]

	for _, m := range matchups {
		if m.Suppression != nil && *m.Suppression >= cutoff {
			m.SuppressionTag = true
		}
	}
}
