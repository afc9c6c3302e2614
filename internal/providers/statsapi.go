package providers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/longball/internal/models"
)

// StatsAPIClient reads schedules, probable pitchers, rosters, and
// live lineups from the MLB Stats API.
type StatsAPIClient struct {
	httpClient *http.Client
	baseURL    string
	cache      CacheProvider
	breaker    *BreakerGroup
	logger     *logrus.Logger
}

func NewStatsAPIClient(baseURL string, timeout time.Duration, cache CacheProvider, breaker *BreakerGroup, logger *logrus.Logger) *StatsAPIClient {
	return &StatsAPIClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cache:      cache,
		breaker:    breaker,
		logger:     logger,
	}
}

type scheduleResponse struct {
	Dates []struct {
		Games []struct {
			GamePk   int    `json:"gamePk"`
			GameDate string `json:"gameDate"`
			Status   struct {
				AbstractGameState string `json:"abstractGameState"`
			} `json:"status"`
			Venue struct {
				Name string `json:"name"`
			} `json:"venue"`
			Teams struct {
				Home scheduleTeam `json:"home"`
				Away scheduleTeam `json:"away"`
			} `json:"teams"`
		} `json:"games"`
	} `json:"dates"`
}

type scheduleTeam struct {
	Team struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
	ProbablePitcher struct {
		ID       int    `json:"id"`
		FullName string `json:"fullName"`
	} `json:"probablePitcher"`
}

type rosterResponse struct {
	Roster []struct {
		Person struct {
			ID       int    `json:"id"`
			FullName string `json:"fullName"`
		} `json:"person"`
		Position struct {
			Abbreviation string `json:"abbreviation"`
		} `json:"position"`
	} `json:"roster"`
}

type boxscoreResponse struct {
	Teams struct {
		Home boxscoreTeam `json:"home"`
		Away boxscoreTeam `json:"away"`
	} `json:"teams"`
}

type boxscoreTeam struct {
	BattingOrder []int `json:"battingOrder"`
	Players      map[string]struct {
		Person struct {
			ID       int    `json:"id"`
			FullName string `json:"fullName"`
		} `json:"person"`
		Stats struct {
			Batting struct {
				HomeRuns int `json:"homeRuns"`
			} `json:"batting"`
		} `json:"stats"`
	} `json:"players"`
}

// ConfirmedLineups returns batting orders for games whose lineups have
// been posted. Games without a posted order are skipped; callers fall
// back to ProjectedLineups for full coverage.
func (c *StatsAPIClient) ConfirmedLineups(gameDate string) ([]models.LineupEntry, error) {
	cacheKey := fmt.Sprintf("statsapi:confirmed:%s", gameDate)
	var cached []models.LineupEntry
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	schedule, err := c.fetchSchedule(gameDate)
	if err != nil {
		return nil, err
	}

	var lineups []models.LineupEntry
	for _, date := range schedule.Dates {
		for _, game := range date.Games {
			entries, err := c.confirmedForGame(game.GamePk, game.Venue.Name, gameDate,
				game.Teams.Home, game.Teams.Away)
			if err != nil {
				c.logger.Warnf("Failed to fetch boxscore for game %d: %v", game.GamePk, err)
				continue
			}
			lineups = append(lineups, entries...)
		}
	}

	if len(lineups) > 0 {
		c.cache.SetSimple(cacheKey, lineups, 30*time.Minute)
	}

	return lineups, nil
}

// ProjectedLineups builds a slate from active rosters: the first nine
// position players per team against the opposing probable pitcher.
func (c *StatsAPIClient) ProjectedLineups(gameDate string) ([]models.LineupEntry, error) {
	cacheKey := fmt.Sprintf("statsapi:projected:%s", gameDate)
	var cached []models.LineupEntry
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	schedule, err := c.fetchSchedule(gameDate)
	if err != nil {
		return nil, err
	}

	var lineups []models.LineupEntry
	for _, date := range schedule.Dates {
		for _, game := range date.Games {
			home := game.Teams.Home
			away := game.Teams.Away
			homeAbbr := teamAbbr(home)
			awayAbbr := teamAbbr(away)

			sides := []struct {
				teamID            int
				opponentAbbr      string
				opponentPitcher   string
				opponentPitcherID int
			}{
				{home.Team.ID, awayAbbr, away.ProbablePitcher.FullName, away.ProbablePitcher.ID},
				{away.Team.ID, homeAbbr, home.ProbablePitcher.FullName, home.ProbablePitcher.ID},
			}

			for _, side := range sides {
				batters, err := c.fetchPositionPlayers(side.teamID)
				if err != nil {
					c.logger.Warnf("Failed to fetch roster for team %d: %v", side.teamID, err)
					continue
				}

				for _, batter := range batters {
					lineups = append(lineups, models.LineupEntry{
						BatterID:    batter.id,
						BatterName:  batter.name,
						PitcherID:   side.opponentPitcherID,
						PitcherName: side.opponentPitcher,
						PitcherTeam: side.opponentAbbr,
						GameDate:    gameDate,
						GameID:      GameID(batter.name, side.opponentPitcher, gameDate),
						Ballpark:    game.Venue.Name,
						HomeTeam:    homeAbbr,
					})
				}
			}
		}
	}

	// Projected slates change as lineups firm up, so the cache is short.
	if len(lineups) > 0 {
		c.cache.SetSimple(cacheKey, lineups, 2*time.Hour)
	}

	return lineups, nil
}

// HomeRunHitters returns the set of batter IDs who homered on a game
// date, used to grade the previous day's predictions.
func (c *StatsAPIClient) HomeRunHitters(gameDate string) (map[int]bool, error) {
	schedule, err := c.fetchSchedule(gameDate)
	if err != nil {
		return nil, err
	}

	hitters := make(map[int]bool)
	for _, date := range schedule.Dates {
		for _, game := range date.Games {
			if game.Status.AbstractGameState != "Final" {
				continue
			}
			boxscore, err := c.fetchBoxscore(game.GamePk)
			if err != nil {
				c.logger.Warnf("Failed to fetch boxscore for game %d: %v", game.GamePk, err)
				continue
			}
			for _, team := range []boxscoreTeam{boxscore.Teams.Home, boxscore.Teams.Away} {
				for _, player := range team.Players {
					if player.Stats.Batting.HomeRuns > 0 {
						hitters[player.Person.ID] = true
					}
				}
			}
		}
	}

	return hitters, nil
}

func (c *StatsAPIClient) fetchSchedule(gameDate string) (*scheduleResponse, error) {
	url := fmt.Sprintf(
		"%s/v1/schedule?sportId=1&hydrate=probablePitcher,team,venue&startDate=%s&endDate=%s",
		c.baseURL, gameDate, gameDate,
	)

	result, err := c.breaker.Execute("statsapi", func() (interface{}, error) {
		var schedule scheduleResponse
		if err := getJSON(c.httpClient, c.logger, url, &schedule); err != nil {
			return nil, err
		}
		return &schedule, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	return result.(*scheduleResponse), nil
}

func (c *StatsAPIClient) fetchBoxscore(gamePk int) (*boxscoreResponse, error) {
	url := fmt.Sprintf("%s/v1/game/%d/boxscore", c.baseURL, gamePk)

	result, err := c.breaker.Execute("statsapi", func() (interface{}, error) {
		var boxscore boxscoreResponse
		if err := getJSON(c.httpClient, c.logger, url, &boxscore); err != nil {
			return nil, err
		}
		return &boxscore, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*boxscoreResponse), nil
}

func (c *StatsAPIClient) confirmedForGame(gamePk int, venue, gameDate string, home, away scheduleTeam) ([]models.LineupEntry, error) {
	boxscore, err := c.fetchBoxscore(gamePk)
	if err != nil {
		return nil, err
	}

	homeAbbr := teamAbbr(home)
	awayAbbr := teamAbbr(away)

	var lineups []models.LineupEntry
	sides := []struct {
		team            boxscoreTeam
		opponentAbbr    string
		opponentPitcher scheduleTeam
	}{
		{boxscore.Teams.Home, awayAbbr, away},
		{boxscore.Teams.Away, homeAbbr, home},
	}

	for _, side := range sides {
		for _, batterID := range side.team.BattingOrder {
			player, ok := side.team.Players[fmt.Sprintf("ID%d", batterID)]
			if !ok {
				continue
			}
			lineups = append(lineups, models.LineupEntry{
				BatterID:    player.Person.ID,
				BatterName:  player.Person.FullName,
				PitcherID:   side.opponentPitcher.ProbablePitcher.ID,
				PitcherName: side.opponentPitcher.ProbablePitcher.FullName,
				PitcherTeam: side.opponentAbbr,
				GameDate:    gameDate,
				GameID:      GameID(player.Person.FullName, side.opponentPitcher.ProbablePitcher.FullName, gameDate),
				Ballpark:    venue,
				HomeTeam:    homeAbbr,
				Confirmed:   true,
			})
		}
	}

	return lineups, nil
}

type rosterPlayer struct {
	id   int
	name string
}

func (c *StatsAPIClient) fetchPositionPlayers(teamID int) ([]rosterPlayer, error) {
	url := fmt.Sprintf("%s/v1/teams/%d/roster/active", c.baseURL, teamID)

	result, err := c.breaker.Execute("statsapi", func() (interface{}, error) {
		var roster rosterResponse
		if err := getJSON(c.httpClient, c.logger, url, &roster); err != nil {
			return nil, err
		}
		return &roster, nil
	})
	if err != nil {
		return nil, err
	}
	roster := result.(*rosterResponse)

	var players []rosterPlayer
	for _, entry := range roster.Roster {
		switch entry.Position.Abbreviation {
		case "P", "SP", "RP":
			continue
		}
		players = append(players, rosterPlayer{
			id:   entry.Person.ID,
			name: entry.Person.FullName,
		})
		if len(players) == 9 {
			break
		}
	}

	return players, nil
}

func teamAbbr(team scheduleTeam) string {
	if team.Team.Abbreviation != "" {
		return team.Team.Abbreviation
	}
	return team.Team.Name
}

// GameID builds a normalized key for a batter-pitcher-date matchup.
func GameID(batterName, pitcherName, gameDate string) string {
	return fmt.Sprintf("%s__vs__%s__%s",
		normalizeName(batterName), normalizeName(pitcherName), gameDate)
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " jr.", "")
	name = strings.ReplaceAll(name, ".", "")
	name = strings.ReplaceAll(name, " ", "_")

	// Fold out anything beyond ASCII so accented names compare stably.
	var b strings.Builder
	for _, r := range name {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
