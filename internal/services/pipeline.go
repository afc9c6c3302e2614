package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/jstittsworth/longball/internal/providers"
	"github.com/jstittsworth/longball/internal/scoring"
	"github.com/jstittsworth/longball/pkg/config"
	"github.com/jstittsworth/longball/pkg/database"
)

// Broadcaster pushes a freshly scored slate to connected clients.
type Broadcaster interface {
	BroadcastPredictions(gameDate string, matchups []models.Matchup)
}

// Pipeline runs the daily prediction flow: lineups, stats, enrichment,
// blending, tiering, then the sinks.
type Pipeline struct {
	cfg       *config.Config
	db        *database.DB
	statsAPI  *providers.StatsAPIClient
	statcast  *providers.StatcastClient
	weather   *providers.OpenWeatherClient
	cache     *CacheService
	fileCache *FileCache
	scorer    scoring.Scorer
	results   *ResultsService
	notifier  Notifier
	broadcast Broadcaster
	logger    *logrus.Logger
}

func NewPipeline(
	cfg *config.Config,
	db *database.DB,
	statsAPI *providers.StatsAPIClient,
	statcast *providers.StatcastClient,
	weather *providers.OpenWeatherClient,
	cache *CacheService,
	fileCache *FileCache,
	scorer scoring.Scorer,
	results *ResultsService,
	notifier Notifier,
	broadcast Broadcaster,
	logger *logrus.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		db:        db,
		statsAPI:  statsAPI,
		statcast:  statcast,
		weather:   weather,
		cache:     cache,
		fileCache: fileCache,
		scorer:    scorer,
		results:   results,
		notifier:  notifier,
		broadcast: broadcast,
		logger:    logger,
	}
}

// Run scores the slate for one game date. Individual matchup failures
// are logged and defaulted; only slate-level failures abort the run.
func (p *Pipeline) Run(ctx context.Context, gameDate string) (*models.PipelineRun, error) {
	run := &models.PipelineRun{
		ID:        uuid.New().String(),
		GameDate:  gameDate,
		Status:    "running",
		StartedAt: time.Now().UTC(),
	}
	if err := p.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to record pipeline run: %w", err)
	}

	matchups, err := p.execute(ctx, gameDate, run.ID)
	finished := time.Now().UTC()
	run.FinishedAt = &finished

	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		p.db.Save(run)
		return run, err
	}

	run.Status = "completed"
	run.Matchups = len(matchups)
	if err := p.db.Save(run).Error; err != nil {
		p.logger.WithField("run_id", run.ID).Warnf("Failed to finalize run record: %v", err)
	}

	return run, nil
}

func (p *Pipeline) execute(ctx context.Context, gameDate, runID string) ([]models.Matchup, error) {
	lineups, err := p.fetchLineups(gameDate)
	if err != nil {
		return nil, err
	}
	if len(lineups) == 0 {
		return nil, fmt.Errorf("no lineups available for %s", gameDate)
	}

	p.logger.WithFields(logrus.Fields{
		"game_date": gameDate,
		"matchups":  len(lineups),
	}).Info("Scoring slate")

	startDate := p.windowStart(gameDate)
	weatherByTeam := make(map[string]*float64)

	matchups := make([]models.Matchup, 0, len(lineups))
	for _, entry := range lineups {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		m := models.Matchup{LineupEntry: entry}
		p.enrich(ctx, &m, startDate, gameDate, weatherByTeam)
		matchups = append(matchups, m)
	}

	p.score(matchups)

	if err := p.runSinks(gameDate, runID, matchups); err != nil {
		return matchups, err
	}

	return matchups, nil
}

// fetchLineups prefers confirmed batting orders and falls back to
// roster projections for games without a posted lineup.
func (p *Pipeline) fetchLineups(gameDate string) ([]models.LineupEntry, error) {
	confirmed, err := p.statsAPI.ConfirmedLineups(gameDate)
	if err != nil {
		p.logger.Warnf("Confirmed lineup fetch failed, falling back to projections: %v", err)
	}

	projected, err := p.statsAPI.ProjectedLineups(gameDate)
	if err != nil && len(confirmed) == 0 {
		return nil, fmt.Errorf("failed to fetch lineups: %w", err)
	}

	confirmedGames := make(map[string]bool)
	for _, entry := range confirmed {
		confirmedGames[entry.PitcherTeam] = true
	}

	lineups := confirmed
	for _, entry := range projected {
		if !confirmedGames[entry.PitcherTeam] {
			lineups = append(lineups, entry)
		}
	}

	return lineups, nil
}

// enrich populates one matchup's features, substituting defaults on
// per-row provider failures so a single bad fetch never sinks a slate.
func (p *Pipeline) enrich(ctx context.Context, m *models.Matchup, startDate, endDate string, weatherByTeam map[string]*float64) {
	batter, err := p.statcast.BatterStats(ctx, m.BatterID, startDate, endDate)
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"batter": m.BatterName,
			"error":  err,
		}).Warn("Batter stats unavailable")
	} else {
		m.Batter = batter
	}

	pitcher, err := p.statcast.PitcherStats(ctx, m.PitcherID, startDate, endDate)
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"pitcher": m.PitcherName,
			"error":   err,
		}).Warn("Pitcher stats unavailable")
	} else {
		m.Pitcher = pitcher
	}

	if len(m.Pitcher.PitchMix) > 0 {
		iso := p.batterISOByPitch(ctx, m.BatterID, startDate, endDate)
		m.PitchMatchupScore = models.Float64(scoring.PitchMatchupScore(m.Pitcher.PitchMix, iso))
	}

	m.Suppression = models.Float64(scoring.SuppressionScore(m.Pitcher))
	m.BullpenBoost = models.Float64(scoring.BullpenBoost(0, 0))

	if m.Batter.Handedness != "" && m.Pitcher.Handedness != "" {
		m.PlatoonAdvantage = models.Float64(
			scoring.PlatoonAdvantage(m.Batter.Handedness, m.Pitcher.Handedness))
	}

	// Schedule feeds sometimes carry full team names instead of codes.
	homeTeam := scoring.NormalizeTeamCode(m.HomeTeam)
	m.ParkFactor = models.Float64(providers.ParkFactor(homeTeam))
	m.WindBoost = p.windBoostFor(ctx, homeTeam, weatherByTeam)
}

// batterISOByPitch serves ISO-by-pitch splits through the file cache;
// the underlying fetch is the most expensive Statcast call.
func (p *Pipeline) batterISOByPitch(ctx context.Context, batterID int, startDate, endDate string) map[string]float64 {
	key := fmt.Sprintf("%d:%s:%s", batterID, startDate, endDate)

	var cached map[string]float64
	if ok, err := p.fileCache.LoadInto("batter_iso_by_pitch", key, &cached); err == nil && ok {
		return cached
	}

	iso, err := p.statcast.BatterISOByPitch(ctx, batterID, startDate, endDate)
	if err != nil {
		p.logger.WithField("batter_id", batterID).Warnf("ISO-by-pitch fetch failed: %v", err)
		return nil
	}

	if err := p.fileCache.SaveEntry("batter_iso_by_pitch", key, iso); err != nil {
		p.logger.Warnf("Failed to cache ISO-by-pitch: %v", err)
	}
	return iso
}

// windBoostFor memoizes per-team wind boosts within one run so a slate
// costs at most one weather call per park.
func (p *Pipeline) windBoostFor(ctx context.Context, homeTeam string, weatherByTeam map[string]*float64) *float64 {
	if boost, ok := weatherByTeam[homeTeam]; ok {
		return boost
	}

	conditions, err := p.weather.Conditions(ctx, homeTeam)
	if err != nil {
		p.logger.WithField("home_team", homeTeam).Warnf("Weather unavailable: %v", err)
		weatherByTeam[homeTeam] = nil
		return nil
	}

	boost := models.Float64(providers.WindBoost(conditions))
	weatherByTeam[homeTeam] = boost
	return boost
}

func (p *Pipeline) score(matchups []models.Matchup) {
	refs := make([]*models.Matchup, len(matchups))
	for i := range matchups {
		refs[i] = &matchups[i]
	}
	scoring.TagTopSuppressors(refs)

	for _, m := range refs {
		m.HRScore = p.scorer.Score(m)
		m.MatchupScore = scoring.MatchupScore(m)
		m.Probability = m.HRScore
		m.Tier = scoring.ClassifyTier(m.MatchupScore)
	}
}

func (p *Pipeline) runSinks(gameDate, runID string, matchups []models.Matchup) error {
	if err := p.results.SaveSlate(runID, gameDate, matchups); err != nil {
		return fmt.Errorf("failed to persist slate: %w", err)
	}

	// API responses for this date are stale now.
	if p.cache != nil {
		if err := p.cache.Delete(context.Background(), PredictionCacheKeys(gameDate)...); err != nil {
			p.logger.Warnf("Failed to invalidate prediction cache: %v", err)
		}
	}

	if p.cfg.TestMode {
		p.logger.Info("Test mode, skipping alerts and broadcast")
		return nil
	}

	if err := p.notifier.SendPredictions(matchups); err != nil {
		// Alerts are best-effort; the slate is already persisted.
		p.logger.Errorf("Alert delivery failed: %v", err)
	}

	if p.broadcast != nil {
		p.broadcast.BroadcastPredictions(gameDate, matchups)
	}

	return nil
}

// GradeYesterday fills in actual HR results for the previous slate.
func (p *Pipeline) GradeYesterday(ctx context.Context, today string) error {
	date, err := time.Parse("2006-01-02", today)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", today, err)
	}
	yesterday := date.AddDate(0, 0, -1).Format("2006-01-02")

	hitters, err := p.statsAPI.HomeRunHitters(yesterday)
	if err != nil {
		return fmt.Errorf("failed to fetch results for %s: %w", yesterday, err)
	}

	_, err = p.results.GradeDate(yesterday, hitters)
	return err
}

func (p *Pipeline) windowStart(gameDate string) string {
	date, err := time.Parse("2006-01-02", gameDate)
	if err != nil {
		date = time.Now().UTC()
	}
	return date.AddDate(0, 0, -p.cfg.StatsWindowDays).Format("2006-01-02")
}
