package models

// LineupEntry is one projected or confirmed batter vs probable pitcher
// for a single game date.
type LineupEntry struct {
	BatterID    int    `json:"batter_id"`
	BatterName  string `json:"batter_name"`
	PitcherID   int    `json:"pitcher_id"`
	PitcherName string `json:"pitcher_name"`
	PitcherTeam string `json:"pitcher_team"`
	GameDate    string `json:"game_date"`
	GameID      string `json:"game_id"`
	Ballpark    string `json:"ballpark"`
	HomeTeam    string `json:"home_team"`
	Confirmed   bool   `json:"confirmed"`
}

// BatterStats holds trailing-window Statcast aggregates for a batter.
// Pointer fields are nil when the upstream data did not cover them;
// scoring terms gated on those fields contribute nothing.
type BatterStats struct {
	ISO            *float64 `json:"iso"`
	BarrelRate     *float64 `json:"barrel_rate"` // last 50 batted balls
	AvgExitVelo    *float64 `json:"avg_exit_velo"`
	AvgLaunchAngle *float64 `json:"avg_launch_angle"`
	PullPct        *float64 `json:"pull_pct"`
	FlyBallPct     *float64 `json:"fly_ball_pct"`
	XSLG           *float64 `json:"xslg"`
	XWOBA          *float64 `json:"xwoba"`
	HRsLast10      *int     `json:"hrs_last_10_games"`
	Last7ISO       *float64 `json:"last_7_iso"`
	Handedness     string   `json:"handedness"` // "L", "R", "S"
}

// PitcherStats holds trailing-window Statcast aggregates for a pitcher.
type PitcherStats struct {
	HRPer9            *float64           `json:"hr_per_9"`
	BarrelPctAllowed  *float64           `json:"barrel_pct_allowed"`
	HardHitPctAllowed *float64           `json:"hard_hit_pct_allowed"`
	FlyBallPctAllowed *float64           `json:"fb_pct_allowed"`
	XHRPer9Allowed    *float64           `json:"xhr_allowed_per_9"`
	WhiffRate         *float64           `json:"whiff_rate"`
	XFIP              *float64           `json:"xfip"`
	PitchMix          map[string]float64 `json:"pitch_mix"` // pitch code -> usage fraction
	Handedness        string             `json:"handedness"`
}

// WeatherConditions is a snapshot of ballpark weather.
type WeatherConditions struct {
	Temperature   float64 `json:"temperature"`    // Fahrenheit
	WindSpeed     float64 `json:"wind_speed"`     // mph
	WindDirection string  `json:"wind_direction"` // 16-point compass
	Conditions    string  `json:"conditions"`
	Humidity      int     `json:"humidity"`
}

// Matchup is the unit the pipeline scores: one batter against one
// pitcher for one game date, enriched step by step.
type Matchup struct {
	LineupEntry

	Batter  BatterStats  `json:"batter"`
	Pitcher PitcherStats `json:"pitcher"`

	// Context features
	ParkFactor        *float64 `json:"park_factor"`
	WindBoost         *float64 `json:"wind_boost"`
	BullpenBoost      *float64 `json:"bullpen_boost"`
	PitchMatchupScore *float64 `json:"pitch_matchup_score"`
	Suppression       *float64 `json:"pitcher_hr_suppression"`
	SuppressionTag    bool     `json:"suppression_tag"`
	PlatoonAdvantage  *float64 `json:"platoon_advantage"`

	// Derived
	HRScore      float64 `json:"hr_score"`
	MatchupScore float64 `json:"matchup_score"`
	Probability  float64 `json:"probability"`
	Tier         string  `json:"tier"`
}

// HasAdvancedMetrics reports whether any of the enhanced inputs are
// populated, which selects the enhanced matchup-score formula.
func (m *Matchup) HasAdvancedMetrics() bool {
	return m.Batter.AvgExitVelo != nil ||
		m.Batter.XSLG != nil ||
		m.PlatoonAdvantage != nil ||
		m.Pitcher.HardHitPctAllowed != nil
}

// Float64 returns a pointer to v. Convenience for optional features.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Deref returns *p, or def when p is nil.
func Deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
