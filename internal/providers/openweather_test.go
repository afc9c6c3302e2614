package providers

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/longball/internal/models"
)

func TestWindBoost(t *testing.T) {
	tests := []struct {
		name     string
		w        models.WeatherConditions
		expected float64
	}{
		{
			name:     "calm at 70 degrees",
			w:        models.WeatherConditions{Temperature: 70},
			expected: 0,
		},
		{
			name:     "wind out adds carry",
			w:        models.WeatherConditions{Temperature: 70, WindSpeed: 10, WindDirection: "S"},
			expected: 0.05,
		},
		{
			name:     "wind in suppresses",
			w:        models.WeatherConditions{Temperature: 70, WindSpeed: 10, WindDirection: "N"},
			expected: -0.05,
		},
		{
			name:     "crosswind only temperature matters",
			w:        models.WeatherConditions{Temperature: 80, WindSpeed: 15, WindDirection: "W"},
			expected: 0.01,
		},
		{
			name:     "capped at positive limit",
			w:        models.WeatherConditions{Temperature: 95, WindSpeed: 25, WindDirection: "SSW"},
			expected: 0.1,
		},
		{
			name:     "capped at negative limit",
			w:        models.WeatherConditions{Temperature: 45, WindSpeed: 25, WindDirection: "NNE"},
			expected: -0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, WindBoost(tt.w), 1e-9)
		})
	}
}

func TestWindDirectionFactor(t *testing.T) {
	for _, dir := range []string{"S", "SSW", "SSE", "SW", "SE"} {
		assert.Equal(t, 1.0, windDirectionFactor(dir), dir)
	}
	for _, dir := range []string{"N", "NNW", "NNE", "NW", "NE"} {
		assert.Equal(t, -1.0, windDirectionFactor(dir), dir)
	}
	for _, dir := range []string{"E", "W", "WSW", "ENE", ""} {
		assert.Zero(t, windDirectionFactor(dir), dir)
	}
}

func TestConvertConditions(t *testing.T) {
	resp := &openWeatherResponse{}
	resp.Main.Temp = 82.4
	resp.Main.Humidity = 55
	resp.Wind.Speed = 12.5
	resp.Wind.Deg = 180
	resp.Weather = []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	}{{Main: "Clear", Description: "clear sky"}}

	w := convertConditions(resp)
	assert.InDelta(t, 82.4, w.Temperature, 1e-9)
	assert.InDelta(t, 12.5, w.WindSpeed, 1e-9)
	assert.Equal(t, "S", w.WindDirection)
	assert.Equal(t, "Clear", w.Conditions)
	assert.Equal(t, 55, w.Humidity)
}

func TestConvertConditionsCompassWrap(t *testing.T) {
	tests := []struct {
		deg      int
		expected string
	}{
		{0, "N"},
		{45, "NE"},
		{90, "E"},
		{225, "SW"},
		{350, "N"},
		{360, "N"},
	}
	for _, tt := range tests {
		resp := &openWeatherResponse{}
		resp.Wind.Deg = tt.deg
		assert.Equal(t, tt.expected, convertConditions(resp).WindDirection, "deg %d", tt.deg)
	}
}

func TestConditionsIndoorPark(t *testing.T) {
	logger := logrus.New()
	breaker := NewBreakerGroup(5, time.Minute, logger)
	// No API key configured: only an indoor park can answer.
	client := NewOpenWeatherClient("", 5*time.Second, newMemoryCache(), breaker, logger)

	w, err := client.Conditions(context.Background(), "TB")
	require.NoError(t, err)
	assert.Equal(t, "Dome", w.Conditions)
	assert.InDelta(t, 72.0, w.Temperature, 1e-9)
	assert.Zero(t, w.WindSpeed)
}

func TestConditionsUnknownTeam(t *testing.T) {
	logger := logrus.New()
	breaker := NewBreakerGroup(5, time.Minute, logger)
	client := NewOpenWeatherClient("", 5*time.Second, newMemoryCache(), breaker, logger)

	_, err := client.Conditions(context.Background(), "XXX")
	assert.Error(t, err)
}
