package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/jstittsworth/longball/internal/scoring"
	"github.com/jstittsworth/longball/pkg/config"
)

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Ohtani", "Ohtani"},
		{"O'Neil Cruz Jr.", "O'Neil Cruz Jr\\."},
		{"a-b_c*d", "a\\-b\\_c\\*d"},
		{"(1+1)=2!", "\\(1\\+1\\)\\=2\\!"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, escapeMarkdownV2(tt.input), "input %q", tt.input)
	}
}

func sampleMatchup(name string, tier string, score float64) models.Matchup {
	return models.Matchup{
		LineupEntry: models.LineupEntry{
			BatterName:  name,
			PitcherName: "Test Pitcher",
			Ballpark:    "Great American Ball Park",
		},
		HRScore:           score,
		MatchupScore:      score,
		Tier:              tier,
		PitchMatchupScore: models.Float64(0.2),
		WindBoost:         models.Float64(0.03),
		ParkFactor:        models.Float64(1.15),
	}
}

func TestTelegramNotifierGroupsByTier(t *testing.T) {
	var messages []map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		messages = append(messages, payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewTelegramNotifier("token", "chat", logrus.New())
	n.baseURL = server.URL

	matchups := []models.Matchup{
		sampleMatchup("Lock One", scoring.TierLock, 0.30),
		sampleMatchup("Lock Two", scoring.TierLock, 0.35),
		sampleMatchup("Sleeper One", scoring.TierSleeper, 0.18),
	}

	require.NoError(t, n.SendPredictions(matchups))
	require.Len(t, messages, 2)

	// Locks go first, sorted strongest first within the group.
	locks := messages[0]["text"]
	assert.Contains(t, locks, "Locks")
	assert.Less(t, strings.Index(locks, "Lock Two"), strings.Index(locks, "Lock One"))
	assert.Equal(t, "MarkdownV2", messages[0]["parse_mode"])
	assert.Equal(t, "chat", messages[0]["chat_id"])

	assert.Contains(t, messages[1]["text"], "Sleepers")
}

func TestTelegramNotifierFallbackWhenEmpty(t *testing.T) {
	var messages []map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		messages = append(messages, payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewTelegramNotifier("token", "chat", logrus.New())
	n.baseURL = server.URL

	require.NoError(t, n.SendPredictions(nil))
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0]["text"], "No strong home run picks")
}

func TestTelegramNotifierServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewTelegramNotifier("token", "chat", logrus.New())
	n.baseURL = server.URL

	err := n.SendPredictions([]models.Matchup{
		sampleMatchup("Lock One", scoring.TierLock, 0.30),
	})
	assert.Error(t, err)
}

func TestFormatTelegramEntryEscapesFields(t *testing.T) {
	m := sampleMatchup("Ronald Acuna Jr.", scoring.TierLock, 0.30)
	m.SuppressionTag = true

	entry := formatTelegramEntry(&m)
	assert.Contains(t, entry, "Ronald Acuna Jr\\.")
	assert.Contains(t, entry, "HR Score: `0.300`")
	assert.Contains(t, entry, "Wind Boost: `0.03`")
	assert.Contains(t, entry, "suppressor")
}

func TestFormatSMSBody(t *testing.T) {
	matchups := []models.Matchup{
		sampleMatchup("Lock One", scoring.TierLock, 0.30),
		sampleMatchup("Risky One", scoring.TierRisky, 0.05),
	}

	body := formatSMSBody(matchups)
	assert.Contains(t, body, "Lock One vs Test Pitcher (0.300)")
	// Risky picks never page anyone.
	assert.NotContains(t, body, "Risky One")

	assert.Equal(t, "No strong home run picks today.", formatSMSBody(nil))
}

func TestNewNotifierSelection(t *testing.T) {
	logger := logrus.New()

	n, err := NewNotifier(&config.Config{AlertProvider: "mock"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "mock", n.Name())

	// Empty provider defaults to the mock channel.
	n, err = NewNotifier(&config.Config{}, logger)
	require.NoError(t, err)
	assert.Equal(t, "mock", n.Name())

	_, err = NewNotifier(&config.Config{AlertProvider: "telegram"}, logger)
	assert.Error(t, err) // missing credentials

	n, err = NewNotifier(&config.Config{
		AlertProvider:    "telegram",
		TelegramBotToken: "token",
		TelegramChatID:   "chat",
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, "telegram", n.Name())

	_, err = NewNotifier(&config.Config{AlertProvider: "carrier-pigeon"}, logger)
	assert.Error(t, err)
}
