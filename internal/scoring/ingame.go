package scoring

// GameState carries the live factors the in-game adjuster reacts to.
type GameState struct {
	PitchCount      int
	BullpenERA      float64
	RunDifferential int // batter's team minus opponent
	Leverage        string
	WeatherChange   string
}

// Leverage buckets.
const (
	LeverageLow    = "low"
	LeverageMedium = "medium"
	LeverageHigh   = "high"
)

// Weather change tags emitted by the realtime monitor.
const (
	WeatherWarming = "warming"
	WeatherCooling = "cooling"
	WeatherWindOut = "wind_out"
	WeatherWindIn  = "wind_in"
)

type stepTable struct {
	thresholds  []float64
	adjustments []float64
}

// lookup returns the adjustment for the highest threshold <= v.
func (t stepTable) lookup(v float64) float64 {
	adjustment := t.adjustments[0]
	for i, threshold := range t.thresholds {
		if v >= threshold {
			adjustment = t.adjustments[i]
		}
	}
	return adjustment
}

var (
	// Starter fatigue: HR likelihood climbs with pitch count.
	pitchCountSteps = stepTable{
		thresholds:  []float64{0, 25, 50, 75, 100, 125},
		adjustments: []float64{0.0, 0.0, 0.05, 0.08, 0.12, 0.15},
	}

	// Bullpen quality by ERA bucket.
	bullpenSteps = stepTable{
		thresholds:  []float64{0, 3.0, 3.5, 4.0, 4.5, 5.0},
		adjustments: []float64{-0.05, -0.03, 0.0, 0.03, 0.05, 0.08},
	}

	// Run differential changes approach: trailing teams see more
	// fastballs, blowouts bring mop-up relievers.
	runDiffSteps = stepTable{
		thresholds:  []float64{-5, -3, -1, 1, 3, 5},
		adjustments: []float64{0.03, 0.02, 0.0, -0.01, -0.02, 0.01},
	}

	leverageAdjustments = map[string]float64{
		LeverageLow:    -0.02,
		LeverageMedium: 0.0,
		LeverageHigh:   0.03,
	}

	weatherChangeAdjustments = map[string]float64{
		WeatherWarming: 0.02,
		WeatherCooling: -0.01,
		WeatherWindOut: 0.03,
		WeatherWindIn:  -0.03,
	}
)

// AdjustForGameState applies live-game deltas to a pre-game score.
// The adjusted score is kept inside (0, 1) so a tier is always
// assignable.
func AdjustForGameState(score float64, state GameState) float64 {
	adjustment := pitchCountSteps.lookup(float64(state.PitchCount))

	if state.BullpenERA > 0 {
		adjustment += bullpenSteps.lookup(state.BullpenERA)
	}

	adjustment += runDiffSteps.lookup(float64(state.RunDifferential))

	if delta, ok := leverageAdjustments[state.Leverage]; ok {
		adjustment += delta
	}

	if delta, ok := weatherChangeAdjustments[state.WeatherChange]; ok {
		adjustment += delta
	}

	return clamp(score+adjustment, 0.01, 0.99)
}
