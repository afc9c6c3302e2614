package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/jstittsworth/longball/internal/providers"
	"github.com/jstittsworth/longball/internal/scoring"
	"github.com/jstittsworth/longball/pkg/database"
)

// RealtimeMonitor polls for lineup and weather changes during game
// hours and keeps the day's predictions current.
type RealtimeMonitor struct {
	db        *database.DB
	statsAPI  *providers.StatsAPIClient
	weather   *providers.OpenWeatherClient
	pipeline  *Pipeline
	broadcast Broadcaster
	logger    *logrus.Logger
	interval  time.Duration

	lineupFingerprint string
	windByTeam        map[string]float64
}

func NewRealtimeMonitor(
	db *database.DB,
	statsAPI *providers.StatsAPIClient,
	weather *providers.OpenWeatherClient,
	pipeline *Pipeline,
	broadcast Broadcaster,
	interval time.Duration,
	logger *logrus.Logger,
) *RealtimeMonitor {
	return &RealtimeMonitor{
		db:         db,
		statsAPI:   statsAPI,
		weather:    weather,
		pipeline:   pipeline,
		broadcast:  broadcast,
		logger:     logger,
		interval:   interval,
		windByTeam: make(map[string]float64),
	}
}

// Run polls until the context is cancelled.
func (r *RealtimeMonitor) Run(ctx context.Context) {
	r.logger.WithField("interval", r.interval).Info("Realtime monitor started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Realtime monitor stopped")
			return
		case <-ticker.C:
			r.poll(ctx)
		}
	}
}

func (r *RealtimeMonitor) poll(ctx context.Context) {
	today := time.Now().UTC().Format("2006-01-02")

	if r.lineupsChanged(today) {
		r.logger.Info("Lineup change detected, rescoring slate")
		if _, err := r.pipeline.Run(ctx, today); err != nil {
			r.logger.Errorf("Rescore after lineup change failed: %v", err)
		}
		return
	}

	if change := r.weatherChange(ctx, today); change != "" {
		r.applyWeatherAdjustment(today, change)
	}
}

// lineupsChanged fingerprints the confirmed slate and reports when the
// set of posted matchups moves.
func (r *RealtimeMonitor) lineupsChanged(gameDate string) bool {
	lineups, err := r.statsAPI.ConfirmedLineups(gameDate)
	if err != nil {
		r.logger.Warnf("Lineup poll failed: %v", err)
		return false
	}
	if len(lineups) == 0 {
		return false
	}

	ids := make([]string, 0, len(lineups))
	for _, entry := range lineups {
		ids = append(ids, entry.GameID)
	}
	sort.Strings(ids)
	fingerprint := strings.Join(ids, "|")

	if fingerprint == r.lineupFingerprint {
		return false
	}
	first := r.lineupFingerprint == ""
	r.lineupFingerprint = fingerprint
	return !first
}

// weatherChange polls each park in today's slate and returns the
// in-game weather condition when the wind boost moves materially.
func (r *RealtimeMonitor) weatherChange(ctx context.Context, gameDate string) string {
	predictions, err := models.GetPredictionsByDate(r.db, gameDate)
	if err != nil || len(predictions) == 0 {
		return ""
	}

	teams := make(map[string]bool)
	for i := range predictions {
		if predictions[i].HomeTeam != "" {
			teams[scoring.NormalizeTeamCode(predictions[i].HomeTeam)] = true
		}
	}

	change := ""
	for team := range teams {
		conditions, err := r.weather.Conditions(ctx, team)
		if err != nil {
			continue
		}
		boost := providers.WindBoost(conditions)

		prev, seen := r.windByTeam[team]
		r.windByTeam[team] = boost
		if !seen {
			continue
		}

		delta := boost - prev
		switch {
		case delta >= 0.02:
			change = scoring.WeatherWindOut
		case delta <= -0.02:
			change = scoring.WeatherWindIn
		}
	}

	return change
}

// applyWeatherAdjustment nudges persisted probabilities through the
// in-game adjuster and pushes the updated slate to clients.
func (r *RealtimeMonitor) applyWeatherAdjustment(gameDate, change string) {
	predictions, err := models.GetPredictionsByDate(r.db, gameDate)
	if err != nil {
		r.logger.Warnf("Failed to load predictions for weather adjustment: %v", err)
		return
	}

	state := scoring.GameState{WeatherChange: change}
	matchups := make([]models.Matchup, 0, len(predictions))

	for i := range predictions {
		p := &predictions[i]
		adjusted := scoring.AdjustForGameState(p.MatchupScore, state)

		m := models.Matchup{
			LineupEntry: models.LineupEntry{
				BatterID:    p.BatterID,
				BatterName:  p.BatterName,
				PitcherID:   p.PitcherID,
				PitcherName: p.PitcherName,
				PitcherTeam: p.PitcherTeam,
				GameDate:    p.GameDate,
				GameID:      p.GameID,
				Ballpark:    p.Ballpark,
				HomeTeam:    p.HomeTeam,
			},
			HRScore:      p.HRScore,
			MatchupScore: adjusted,
			Probability:  adjusted,
			Tier:         scoring.ClassifyTier(adjusted),
		}
		matchups = append(matchups, m)
	}

	r.logger.WithFields(logrus.Fields{
		"game_date": gameDate,
		"change":    change,
	}).Info("Applied in-game weather adjustment")

	if r.broadcast != nil {
		r.broadcast.BroadcastPredictions(gameDate, matchups)
	}
}
