package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/jstittsworth/longball/internal/scoring"
	"github.com/jstittsworth/longball/pkg/database"
)

// TierMetrics summarizes graded predictions for one tier.
type TierMetrics struct {
	Tier        string  `json:"tier"`
	Predictions int     `json:"predictions"`
	Hits        int     `json:"hits"`
	HitRate     float64 `json:"hit_rate"`
	AvgScore    float64 `json:"avg_score"`
}

// BacktestReport is the outcome of replaying a graded date range.
type BacktestReport struct {
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	DatesCovered  int           `json:"dates_covered"`
	TotalGraded   int           `json:"total_graded"`
	TotalHits     int           `json:"total_hits"`
	ByTier        []TierMetrics `json:"by_tier"`
	TopNSize      int           `json:"top_n_size"`
	TopNPrecision float64       `json:"top_n_precision"`
}

// BacktestService replays graded predictions over a date range and
// reports how each tier performed.
type BacktestService struct {
	db     *database.DB
	dir    string
	logger *logrus.Logger
}

func NewBacktestService(db *database.DB, dir string, logger *logrus.Logger) *BacktestService {
	return &BacktestService{db: db, dir: dir, logger: logger}
}

// Run evaluates every graded prediction between the two dates
// inclusive. Ungraded rows are excluded so partial slates do not skew
// hit rates.
func (s *BacktestService) Run(startDate, endDate string, topN int) (*BacktestReport, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s precedes start date %s", endDate, startDate)
	}

	var predictions []models.Prediction
	if err := s.db.Where("game_date >= ? AND game_date <= ? AND hit_hr IS NOT NULL", startDate, endDate).
		Find(&predictions).Error; err != nil {
		return nil, fmt.Errorf("failed to load graded predictions: %w", err)
	}
	if len(predictions) == 0 {
		return nil, fmt.Errorf("no graded predictions between %s and %s", startDate, endDate)
	}

	report := &BacktestReport{
		StartDate: startDate,
		EndDate:   endDate,
		TopNSize:  topN,
	}

	dates := make(map[string]bool)
	type bucket struct {
		count int
		hits  int
		score float64
	}
	byTier := make(map[string]*bucket)

	for i := range predictions {
		p := &predictions[i]
		dates[p.GameDate] = true
		report.TotalGraded++
		hit := p.HitHR != nil && *p.HitHR
		if hit {
			report.TotalHits++
		}

		b, ok := byTier[p.Tier]
		if !ok {
			b = &bucket{}
			byTier[p.Tier] = b
		}
		b.count++
		b.score += p.MatchupScore
		if hit {
			b.hits++
		}
	}
	report.DatesCovered = len(dates)

	for _, tier := range []string{scoring.TierLock, scoring.TierSleeper, scoring.TierRisky} {
		b, ok := byTier[tier]
		if !ok {
			continue
		}
		report.ByTier = append(report.ByTier, TierMetrics{
			Tier:        tier,
			Predictions: b.count,
			Hits:        b.hits,
			HitRate:     float64(b.hits) / float64(b.count),
			AvgScore:    b.score / float64(b.count),
		})
	}

	report.TopNPrecision = topNPrecision(predictions, topN)

	if err := s.writeReport(report); err != nil {
		s.logger.Warnf("Failed to write backtest report: %v", err)
	}

	return report, nil
}

// topNPrecision measures the hit rate of each day's N highest-scored
// picks, averaged across days.
func topNPrecision(predictions []models.Prediction, topN int) float64 {
	if topN <= 0 {
		return 0
	}

	byDate := make(map[string][]models.Prediction)
	for _, p := range predictions {
		byDate[p.GameDate] = append(byDate[p.GameDate], p)
	}

	sum := 0.0
	days := 0
	for _, slate := range byDate {
		sort.Slice(slate, func(i, j int) bool {
			return slate[i].MatchupScore > slate[j].MatchupScore
		})
		n := topN
		if len(slate) < n {
			n = len(slate)
		}
		hits := 0
		for i := 0; i < n; i++ {
			if slate[i].HitHR != nil && *slate[i].HitHR {
				hits++
			}
		}
		sum += float64(hits) / float64(n)
		days++
	}

	if days == 0 {
		return 0
	}
	return sum / float64(days)
}

func (s *BacktestService) writeReport(report *BacktestReport) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(s.dir,
		fmt.Sprintf("backtest_%s_to_%s.csv", report.StartDate, report.EndDate))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"tier", "predictions", "hits", "hit_rate", "avg_score"}); err != nil {
		return err
	}
	for _, tm := range report.ByTier {
		record := []string{
			tm.Tier,
			strconv.Itoa(tm.Predictions),
			strconv.Itoa(tm.Hits),
			strconv.FormatFloat(tm.HitRate, 'f', 4, 64),
			strconv.FormatFloat(tm.AvgScore, 'f', 4, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
