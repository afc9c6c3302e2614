package scoring

import (
	"math"

	"github.com/jstittsworth/longball/internal/models"
)

// Base blend coefficients. These are additive weights, not a convex
// combination; the score is clipped to [0, MaxScore] at the end.
const (
	wISO          = 0.40
	wBarrelRate   = 0.30
	wPitchMatchup = 0.10
	wBullpenBoost = 0.10
	wHRPer9       = 0.05 // subtracted

	wParkFactor = 0.10
	wWindBoost  = 0.10
	wBullpenEnv = 0.05
)

// Extreme barrel rate step bonuses.
const (
	barrelHotThreshold  = 0.12
	barrelWarmThreshold = 0.09
	barrelHotBonus      = 0.05
	barrelWarmBonus     = 0.02
)

// RuleScorer is the weighted-sum blender. Every term is gated on its
// input being populated; a matchup with no features scores zero.
type RuleScorer struct{}

func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

func (s *RuleScorer) Name() string { return "rules" }

// Score blends the available features into a scalar clipped to
// [0, MaxScore]. Missing inputs contribute nothing rather than erroring.
func (s *RuleScorer) Score(m *models.Matchup) float64 {
	score := s.baseScore(m)
	score += s.advancedTerms(m)
	score += s.pitcherTerms(m)
	score += s.environmentTerms(m)
	score *= streakMultiplier(m.Batter.Last7ISO, m.Batter.ISO)
	return clamp(score, 0, MaxScore)
}

// baseScore is the fixed-coefficient core blend.
func (s *RuleScorer) baseScore(m *models.Matchup) float64 {
	score := models.Deref(m.Batter.ISO, 0)*wISO +
		models.Deref(m.Batter.BarrelRate, 0)*wBarrelRate +
		models.Deref(m.PitchMatchupScore, 0)*wPitchMatchup +
		models.Deref(m.BullpenBoost, 0)*wBullpenBoost -
		models.Deref(m.Pitcher.HRPer9, 0)*wHRPer9

	// Step bonus for batters barreling at an elite clip.
	if m.Batter.BarrelRate != nil {
		switch {
		case *m.Batter.BarrelRate >= barrelHotThreshold:
			score += barrelHotBonus
		case *m.Batter.BarrelRate >= barrelWarmThreshold:
			score += barrelWarmBonus
		}
	}

	return score
}

// advancedTerms adds the optional batter-quality components, each
// independently gated on its input.
func (s *RuleScorer) advancedTerms(m *models.Matchup) float64 {
	var bonus float64

	if m.Batter.AvgExitVelo != nil {
		// 85 mph maps to 0, 95 mph to the 0.1 cap.
		bonus += clamp((*m.Batter.AvgExitVelo-85)/100, 0, 0.1)
	}

	if m.Batter.AvgLaunchAngle != nil {
		// Optimal launch angle is around 27.5 degrees.
		bonus += math.Max(0, 0.07-math.Abs(*m.Batter.AvgLaunchAngle-27.5)*0.01)
	}

	if m.Batter.PullPct != nil {
		bonus += *m.Batter.PullPct * 0.05
	}

	if m.Batter.FlyBallPct != nil && m.Pitcher.FlyBallPctAllowed != nil {
		// Fly-ball hitter against a fly-ball pitcher.
		bonus += math.Min(*m.Batter.FlyBallPct, *m.Pitcher.FlyBallPctAllowed) * 0.05
	}

	if m.Batter.XSLG != nil {
		bonus += *m.Batter.XSLG * 0.1
	}

	if m.Batter.HRsLast10 != nil {
		bonus += math.Min(float64(*m.Batter.HRsLast10)*0.02, 0.1)
	}

	if m.PlatoonAdvantage != nil {
		bonus += (*m.PlatoonAdvantage - 0.5) * 0.1
	}

	return bonus
}

// pitcherTerms adds contact-quality-allowed components.
func (s *RuleScorer) pitcherTerms(m *models.Matchup) float64 {
	var factor float64

	if m.Pitcher.BarrelPctAllowed != nil {
		factor += *m.Pitcher.BarrelPctAllowed * 0.15
	}

	if m.Pitcher.HardHitPctAllowed != nil {
		factor += *m.Pitcher.HardHitPctAllowed * 0.1
	}

	return factor
}

// environmentTerms adds park and weather context.
func (s *RuleScorer) environmentTerms(m *models.Matchup) float64 {
	env := models.Deref(m.ParkFactor, 1.0) * wParkFactor
	env += models.Deref(m.WindBoost, 0) * wWindBoost
	env += models.Deref(m.BullpenBoost, 0) * wBullpenEnv
	return env
}

// streakMultiplier scales the score by recent form: the ratio of
// short-window ISO to season ISO, clamped to [0.5, 2.0] and rescaled
// into a multiplier in [0.9, 1.2].
func streakMultiplier(last7ISO, seasonISO *float64) float64 {
	if last7ISO == nil || seasonISO == nil || *seasonISO <= 0 {
		return 1.0
	}
	ratio := clamp(*last7ISO / *seasonISO, 0.5, 2.0)
	return 0.9 + (ratio-0.5)/1.5*0.3
}
