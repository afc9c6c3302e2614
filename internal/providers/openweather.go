package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/longball/internal/models"
)

// OpenWeatherClient retrieves game-time conditions for a ballpark and
// derives the wind boost applied to matchup scores.
type OpenWeatherClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      CacheProvider
	breaker    *BreakerGroup
	logger     *logrus.Logger
}

type openWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Name string `json:"name"`
}

func NewOpenWeatherClient(apiKey string, timeout time.Duration, cache CacheProvider, breaker *BreakerGroup, logger *logrus.Logger) *OpenWeatherClient {
	return &OpenWeatherClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.openweathermap.org/data/2.5",
		apiKey:     apiKey,
		cache:      cache,
		breaker:    breaker,
		logger:     logger,
	}
}

// Conditions returns current conditions for a home team's park. Indoor
// parks report calm conditions without an API call.
func (c *OpenWeatherClient) Conditions(ctx context.Context, homeTeam string) (models.WeatherConditions, error) {
	loc, ok := LocationFor(homeTeam)
	if !ok {
		return models.WeatherConditions{}, fmt.Errorf("no ballpark location for team %q", homeTeam)
	}
	if loc.Indoor {
		return models.WeatherConditions{Temperature: 72, Conditions: "Dome"}, nil
	}

	cacheKey := fmt.Sprintf("weather:%s", homeTeam)
	var cached models.WeatherConditions
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	if c.apiKey == "" {
		return models.WeatherConditions{}, fmt.Errorf("openweather API key not configured")
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', 6, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "imperial")
	requestURL := fmt.Sprintf("%s/weather?%s", c.baseURL, params.Encode())

	result, err := c.breaker.Execute("openweather", func() (interface{}, error) {
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
			return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		var weatherResp openWeatherResponse
		if err := json.Unmarshal(body, &weatherResp); err != nil {
			return nil, fmt.Errorf("failed to parse weather response: %w", err)
		}
		return convertConditions(&weatherResp), nil
	})
	if err != nil {
		return models.WeatherConditions{}, fmt.Errorf("failed to fetch weather for %s: %w", homeTeam, err)
	}

	conditions := result.(models.WeatherConditions)
	c.cache.SetSimple(cacheKey, conditions, time.Hour)
	return conditions, nil
}

// WindBoost derives the signed score adjustment from conditions:
// wind blowing out adds carry, wind blowing in suppresses it, and warm
// air adds a small bonus. Result stays within [-0.1, 0.1].
func WindBoost(w models.WeatherConditions) float64 {
	boost := w.WindSpeed * windDirectionFactor(w.WindDirection) * 0.005

	// Ball carries farther in warm air.
	boost += (w.Temperature - 70.0) * 0.001

	if boost > 0.1 {
		boost = 0.1
	}
	if boost < -0.1 {
		boost = -0.1
	}
	return boost
}

// windDirectionFactor treats southerly winds as blowing out and
// northerly as blowing in. Most MLB parks face home plate roughly
// north-northeast, so this holds as a slate-wide approximation.
func windDirectionFactor(direction string) float64 {
	switch direction {
	case "S", "SSW", "SSE", "SW", "SE":
		return 1.0
	case "N", "NNW", "NNE", "NW", "NE":
		return -1.0
	}
	return 0
}

var compassDirections = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

func convertConditions(resp *openWeatherResponse) models.WeatherConditions {
	var windDir string
	if resp.Wind.Deg >= 0 && resp.Wind.Deg <= 360 {
		windDir = compassDirections[int((float64(resp.Wind.Deg)+11.25)/22.5)%16]
	}

	var conditions string
	if len(resp.Weather) > 0 {
		conditions = resp.Weather[0].Main
	}

	return models.WeatherConditions{
		Temperature:   resp.Main.Temp,
		WindSpeed:     resp.Wind.Speed,
		WindDirection: windDir,
		Conditions:    conditions,
		Humidity:      resp.Main.Humidity,
	}
}
