package providers

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/longball/internal/models"
)

// Statcast barrel definition: 98+ mph exit velocity at a 26-30 degree
// launch angle.
const (
	barrelMinEV = 98.0
	barrelMinLA = 26.0
	barrelMaxLA = 30.0

	hardHitMinEV = 95.0

	// Window for the trailing barrel rate.
	barrelWindow = 50
)

// pitchTypeNames maps Statcast pitch codes to readable names so cached
// splits stay legible.
var pitchTypeNames = map[string]string{
	"FF": "4-Seam Fastball", "SL": "Slider", "CH": "Changeup",
	"CU": "Curveball", "SI": "Sinker", "FC": "Cutter",
	"FS": "Splitter", "KN": "Knuckleball", "FT": "2-Seam Fastball",
}

// PitchName resolves a Statcast pitch code to its readable name,
// passing unknown codes through.
func PitchName(code string) string {
	if name, ok := pitchTypeNames[code]; ok {
		return name
	}
	return code
}

// StatcastClient fetches pitch-level event data from Baseball Savant
// and aggregates it into the features the scorer consumes.
type StatcastClient struct {
	httpClient *http.Client
	baseURL    string
	cache      CacheProvider
	breaker    *BreakerGroup
	limiter    *APIRateLimiter
	logger     *logrus.Logger
}

func NewStatcastClient(baseURL string, timeout time.Duration, cache CacheProvider, breaker *BreakerGroup, limiter *APIRateLimiter, logger *logrus.Logger) *StatcastClient {
	return &StatcastClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cache:      cache,
		breaker:    breaker,
		limiter:    limiter,
		logger:     logger,
	}
}

// statcastEvent is one pitch from the event feed. Optional columns
// parse to nil rather than zero.
type statcastEvent struct {
	GameDate    string
	Events      string
	Description string
	BBType      string
	PitchType   string
	Stand       string
	PThrows     string
	Type        string
	LaunchSpeed *float64
	LaunchAngle *float64
	EstSLG      *float64
	EstWOBA     *float64
	HitLocation *int
}

func (e *statcastEvent) inPlay() bool {
	return e.Type == "X"
}

func (e *statcastEvent) isBarrel() bool {
	return e.LaunchSpeed != nil && e.LaunchAngle != nil &&
		*e.LaunchSpeed >= barrelMinEV &&
		*e.LaunchAngle >= barrelMinLA && *e.LaunchAngle <= barrelMaxLA
}

// BatterStats aggregates a batter's trailing-window events.
func (c *StatcastClient) BatterStats(ctx context.Context, batterID int, startDate, endDate string) (models.BatterStats, error) {
	cacheKey := fmt.Sprintf("statcast:batter:%d:%s:%s", batterID, startDate, endDate)
	var cached models.BatterStats
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	events, err := c.fetchEvents(ctx, "batter", batterID, startDate, endDate)
	if err != nil {
		return models.BatterStats{}, err
	}
	if len(events) == 0 {
		return models.BatterStats{}, nil
	}

	stats := aggregateBatter(events, startDate, endDate)
	c.cache.SetSimple(cacheKey, stats, 12*time.Hour)
	return stats, nil
}

// PitcherStats aggregates a pitcher's trailing-window events.
func (c *StatcastClient) PitcherStats(ctx context.Context, pitcherID int, startDate, endDate string) (models.PitcherStats, error) {
	cacheKey := fmt.Sprintf("statcast:pitcher:%d:%s:%s", pitcherID, startDate, endDate)
	var cached models.PitcherStats
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	events, err := c.fetchEvents(ctx, "pitcher", pitcherID, startDate, endDate)
	if err != nil {
		return models.PitcherStats{}, err
	}
	if len(events) == 0 {
		return models.PitcherStats{}, nil
	}

	stats := aggregatePitcher(events)
	c.cache.SetSimple(cacheKey, stats, 12*time.Hour)
	return stats, nil
}

// BatterISOByPitch computes the batter's isolated power against each
// pitch type in the window.
func (c *StatcastClient) BatterISOByPitch(ctx context.Context, batterID int, startDate, endDate string) (map[string]float64, error) {
	events, err := c.fetchEvents(ctx, "batter", batterID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	type tally struct {
		totalBases int
		atBats     int
	}
	byPitch := make(map[string]*tally)

	for _, e := range events {
		if e.Events == "" || e.PitchType == "" {
			continue
		}
		t, ok := byPitch[e.PitchType]
		if !ok {
			t = &tally{}
			byPitch[e.PitchType] = t
		}
		t.atBats++
		t.totalBases += totalBases(e.Events)
	}

	iso := make(map[string]float64, len(byPitch))
	for code, t := range byPitch {
		if t.atBats == 0 {
			continue
		}
		iso[PitchName(code)] = float64(t.totalBases) / float64(t.atBats)
	}

	return iso, nil
}

func totalBases(event string) int {
	switch event {
	case "single":
		return 1
	case "double":
		return 2
	case "triple":
		return 3
	case "home_run":
		return 4
	}
	return 0
}

func aggregateBatter(events []statcastEvent, startDate, endDate string) models.BatterStats {
	var stats models.BatterStats

	var battedBalls []statcastEvent
	for _, e := range events {
		if e.inPlay() {
			battedBalls = append(battedBalls, e)
		}
	}

	// ISO over the full window.
	if iso, ok := isoForRange(events, "", ""); ok {
		stats.ISO = models.Float64(iso)
	}

	// Short-window ISO for the streak multiplier.
	end, err := time.Parse("2006-01-02", endDate)
	if err == nil {
		weekAgo := end.AddDate(0, 0, -7).Format("2006-01-02")
		if iso, ok := isoForRange(events, weekAgo, endDate); ok {
			stats.Last7ISO = models.Float64(iso)
		}
	}

	// Barrel rate over the most recent batted balls.
	if len(battedBalls) > 0 {
		window := battedBalls
		if len(window) > barrelWindow {
			window = window[len(window)-barrelWindow:]
		}
		barrels := 0
		for _, e := range window {
			if e.isBarrel() {
				barrels++
			}
		}
		stats.BarrelRate = models.Float64(float64(barrels) / float64(len(window)))
	}

	if ev, ok := meanOf(battedBalls, func(e statcastEvent) *float64 { return e.LaunchSpeed }); ok {
		stats.AvgExitVelo = models.Float64(ev)
	}
	if la, ok := meanOf(battedBalls, func(e statcastEvent) *float64 { return e.LaunchAngle }); ok {
		stats.AvgLaunchAngle = models.Float64(la)
	}
	if xslg, ok := meanOf(battedBalls, func(e statcastEvent) *float64 { return e.EstSLG }); ok {
		stats.XSLG = models.Float64(xslg)
	}
	if xwoba, ok := meanOf(battedBalls, func(e statcastEvent) *float64 { return e.EstWOBA }); ok {
		stats.XWOBA = models.Float64(xwoba)
	}

	if len(battedBalls) > 0 {
		flyBalls := 0
		pulled := 0
		for _, e := range battedBalls {
			if e.BBType == "fly_ball" {
				flyBalls++
			}
			if isPulled(e) {
				pulled++
			}
		}
		stats.FlyBallPct = models.Float64(float64(flyBalls) / float64(len(battedBalls)))
		stats.PullPct = models.Float64(float64(pulled) / float64(len(battedBalls)))
	}

	stats.HRsLast10 = models.Int(homersInRecentGames(events, 10))
	stats.Handedness = dominantValue(events, func(e statcastEvent) string { return e.Stand })

	return stats
}

func aggregatePitcher(events []statcastEvent) models.PitcherStats {
	var stats models.PitcherStats

	var battedBalls []statcastEvent
	homers := 0
	for _, e := range events {
		if e.inPlay() {
			battedBalls = append(battedBalls, e)
		}
		if e.Events == "home_run" {
			homers++
		}
	}

	// Innings from recorded outs; zero-inning windows score no HR/9.
	innings := inningsPitched(events)
	if innings > 0 {
		stats.HRPer9 = models.Float64(float64(homers) / innings * 9)
	}

	if len(battedBalls) > 0 {
		barrels, hardHits, flyBalls, xhrPotential := 0, 0, 0, 0
		for _, e := range battedBalls {
			if e.isBarrel() {
				barrels++
			}
			if e.LaunchSpeed != nil && *e.LaunchSpeed >= hardHitMinEV {
				hardHits++
			}
			if e.BBType == "fly_ball" {
				flyBalls++
			}
			if e.LaunchSpeed != nil && e.LaunchAngle != nil &&
				*e.LaunchSpeed >= hardHitMinEV &&
				*e.LaunchAngle >= 25 && *e.LaunchAngle <= 35 {
				xhrPotential++
			}
		}
		n := float64(len(battedBalls))
		stats.BarrelPctAllowed = models.Float64(float64(barrels) / n)
		stats.HardHitPctAllowed = models.Float64(float64(hardHits) / n)
		stats.FlyBallPctAllowed = models.Float64(float64(flyBalls) / n)
		if innings > 0 {
			stats.XHRPer9Allowed = models.Float64(float64(xhrPotential) / n * (n / innings) * 9)
		}
	}

	swings, whiffs := 0, 0
	for _, e := range events {
		if isSwing(e.Description) {
			swings++
			if e.Description == "swinging_strike" {
				whiffs++
			}
		}
	}
	if swings > 0 {
		stats.WhiffRate = models.Float64(float64(whiffs) / float64(swings))
	}

	mix := make(map[string]int)
	total := 0
	for _, e := range events {
		if e.PitchType == "" {
			continue
		}
		mix[e.PitchType]++
		total++
	}
	if total > 0 {
		stats.PitchMix = make(map[string]float64, len(mix))
		for code, count := range mix {
			stats.PitchMix[PitchName(code)] = float64(count) / float64(total)
		}
	}

	stats.Handedness = dominantValue(events, func(e statcastEvent) string { return e.PThrows })

	return stats
}

// inningsPitched estimates innings from plate appearance outcomes,
// which is close enough for a trailing-window HR/9.
func inningsPitched(events []statcastEvent) float64 {
	outs := 0
	for _, e := range events {
		switch e.Events {
		case "strikeout", "field_out", "force_out", "sac_fly", "sac_bunt",
			"fielders_choice_out", "other_out":
			outs++
		case "grounded_into_double_play", "double_play", "strikeout_double_play":
			outs += 2
		case "triple_play":
			outs += 3
		}
	}
	return float64(outs) / 3.0
}

func isSwing(description string) bool {
	switch description {
	case "swinging_strike", "swinging_strike_blocked", "foul", "foul_tip", "hit_into_play":
		return true
	}
	return false
}

// isPulled checks hit location against handedness: left field for
// right-handed batters, right field for lefties.
func isPulled(e statcastEvent) bool {
	if e.HitLocation == nil {
		return false
	}
	loc := *e.HitLocation
	if e.Stand == "R" {
		return loc >= 7 && loc <= 9
	}
	if e.Stand == "L" {
		return loc >= 3 && loc <= 5
	}
	return false
}

func isoForRange(events []statcastEvent, startDate, endDate string) (float64, bool) {
	totalBasesSum := 0
	atBats := 0
	for _, e := range events {
		if e.Events == "" {
			continue
		}
		if startDate != "" && e.GameDate < startDate {
			continue
		}
		if endDate != "" && e.GameDate > endDate {
			continue
		}
		atBats++
		// ISO counts extra bases only.
		if tb := totalBases(e.Events); tb > 1 {
			totalBasesSum += tb - 1
		}
	}
	if atBats == 0 {
		return 0, false
	}
	return float64(totalBasesSum) / float64(atBats), true
}

func homersInRecentGames(events []statcastEvent, games int) int {
	dates := make(map[string]bool)
	for _, e := range events {
		if e.GameDate != "" {
			dates[e.GameDate] = true
		}
	}

	sorted := make([]string, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))
	if len(sorted) > games {
		sorted = sorted[:games]
	}

	recent := make(map[string]bool, len(sorted))
	for _, d := range sorted {
		recent[d] = true
	}

	homers := 0
	for _, e := range events {
		if e.Events == "home_run" && recent[e.GameDate] {
			homers++
		}
	}
	return homers
}

func meanOf(events []statcastEvent, pick func(statcastEvent) *float64) (float64, bool) {
	sum := 0.0
	count := 0
	for _, e := range events {
		if v := pick(e); v != nil && !math.IsNaN(*v) {
			sum += *v
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func dominantValue(events []statcastEvent, pick func(statcastEvent) string) string {
	counts := make(map[string]int)
	for _, e := range events {
		if v := pick(e); v != "" {
			counts[v]++
		}
	}
	best, bestCount := "", 0
	for v, count := range counts {
		if count > bestCount {
			best, bestCount = v, count
		}
	}
	return best
}

// fetchEvents pulls the pitch-level CSV feed for one player.
func (c *StatcastClient) fetchEvents(ctx context.Context, playerType string, playerID int, startDate, endDate string) ([]statcastEvent, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	params := url.Values{}
	params.Set("all", "true")
	params.Set("player_type", playerType)
	params.Set("game_date_gt", startDate)
	params.Set("game_date_lt", endDate)
	params.Set("type", "details")
	if playerType == "batter" {
		params.Set("batters_lookup[]", strconv.Itoa(playerID))
	} else {
		params.Set("pitchers_lookup[]", strconv.Itoa(playerID))
	}

	requestURL := fmt.Sprintf("%s/statcast_search/csv?%s", c.baseURL, params.Encode())

	result, err := c.breaker.Execute("statcast", func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("statcast returned status %d", resp.StatusCode)
		}

		return parseEventCSV(csv.NewReader(resp.Body))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statcast events for %s %d: %w", playerType, playerID, err)
	}

	return result.([]statcastEvent), nil
}

// parseEventCSV maps CSV rows into events by header name so column
// reordering upstream does not break parsing.
func parseEventCSV(reader *csv.Reader) ([]statcastEvent, error) {
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read statcast header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	var events []statcastEvent
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}

		e := statcastEvent{
			GameDate:    field(row, "game_date"),
			Events:      field(row, "events"),
			Description: field(row, "description"),
			BBType:      field(row, "bb_type"),
			PitchType:   field(row, "pitch_type"),
			Stand:       field(row, "stand"),
			PThrows:     field(row, "p_throws"),
			Type:        field(row, "type"),
			LaunchSpeed: parseFloat(field(row, "launch_speed")),
			LaunchAngle: parseFloat(field(row, "launch_angle")),
			EstSLG:      parseFloat(field(row, "estimated_slg_using_speedangle")),
			EstWOBA:     parseFloat(field(row, "estimated_woba_using_speedangle")),
			HitLocation: parseInt(field(row, "hit_location")),
		}
		events = append(events, e)
	}

	// The feed returns newest first; aggregation assumes chronological.
	sort.Slice(events, func(i, j int) bool {
		return events[i].GameDate < events[j].GameDate
	})

	return events, nil
}

func parseFloat(s string) *float64 {
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Savant emits some integer columns as floats.
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			i := int(f)
			return &i
		}
		return nil
	}
	return &v
}
