package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/jstittsworth/longball/internal/scoring"
	"github.com/jstittsworth/longball/pkg/config"
)

// Notifier delivers a scored slate to an alert channel.
type Notifier interface {
	SendPredictions(matchups []models.Matchup) error
	Name() string
}

// NewNotifier selects the alert channel from configuration.
func NewNotifier(cfg *config.Config, logger *logrus.Logger) (Notifier, error) {
	switch cfg.AlertProvider {
	case "telegram":
		if cfg.TelegramBotToken == "" || cfg.TelegramChatID == "" {
			return nil, fmt.Errorf("telegram notifier requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		}
		return NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, logger), nil
	case "twilio":
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
			return nil, fmt.Errorf("twilio notifier requires TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN")
		}
		return NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken,
			cfg.TwilioFromNumber, cfg.TwilioToNumbers, logger), nil
	case "mock", "":
		return NewMockNotifier(logger), nil
	}
	return nil, fmt.Errorf("unknown alert provider %q", cfg.AlertProvider)
}

// tierGroups orders the alert sections strongest first.
var tierGroups = []struct {
	tier    string
	heading string
}{
	{scoring.TierLock, "Locks 🔒"},
	{scoring.TierSleeper, "Sleepers 🌙"},
	{scoring.TierRisky, "Risky ⚠️"},
}

const noPicksMessage = "*No strong home run picks today.* Stay tuned for tomorrow's predictions. ⚾️"

// TelegramNotifier posts tier-grouped MarkdownV2 messages to a chat.
type TelegramNotifier struct {
	httpClient *http.Client
	botToken   string
	chatID     string
	baseURL    string
	logger     *logrus.Logger
}

func NewTelegramNotifier(botToken, chatID string, logger *logrus.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		botToken:   botToken,
		chatID:     chatID,
		baseURL:    "https://api.telegram.org",
		logger:     logger,
	}
}

func (n *TelegramNotifier) Name() string { return "telegram" }

// SendPredictions sends one message per non-empty tier, falling back to
// a no-picks message when every tier is empty.
func (n *TelegramNotifier) SendPredictions(matchups []models.Matchup) error {
	anySent := false
	var lastErr error

	for _, group := range tierGroups {
		members := filterTier(matchups, group.tier)
		if len(members) == 0 {
			continue
		}

		var b strings.Builder
		b.WriteString(fmt.Sprintf("*%s*\n\n", escapeMarkdownV2(group.heading)))
		parts := make([]string, 0, len(members))
		for i := range members {
			parts = append(parts, formatTelegramEntry(&members[i]))
		}
		b.WriteString(strings.Join(parts, "\n\n"))

		if err := n.sendMessage(b.String()); err != nil {
			n.logger.WithFields(logrus.Fields{
				"tier":  group.tier,
				"error": err,
			}).Error("Failed to send telegram alert")
			lastErr = err
			continue
		}
		anySent = true
	}

	if !anySent {
		if lastErr != nil {
			return lastErr
		}
		return n.sendMessage(noPicksMessage)
	}
	return nil
}

func (n *TelegramNotifier) sendMessage(text string) error {
	payload := map[string]string{
		"chat_id":    n.chatID,
		"text":       text,
		"parse_mode": "MarkdownV2",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	resp, err := n.httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to post telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}

func formatTelegramEntry(m *models.Matchup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* vs *%s*\n",
		escapeMarkdownV2(m.BatterName), escapeMarkdownV2(m.PitcherName))
	fmt.Fprintf(&b, "📍 Ballpark: %s 🏟️\n", escapeMarkdownV2(m.Ballpark))
	fmt.Fprintf(&b, "🔥 HR Score: `%.3f`\n", m.HRScore)
	fmt.Fprintf(&b, "🎯 Pitch Matchup: `%.3f`\n", models.Deref(m.PitchMatchupScore, 0))
	fmt.Fprintf(&b, "🌬️ Wind Boost: `%.2f`\n", models.Deref(m.WindBoost, 0))
	fmt.Fprintf(&b, "🏞️ Park Factor: `%.2f`\n", models.Deref(m.ParkFactor, 0))
	if m.SuppressionTag {
		fmt.Fprintf(&b, "📝 _%s_\n", escapeMarkdownV2("Elite HR suppressor on the mound"))
	}
	return strings.TrimSpace(b.String())
}

var markdownV2Escaper = regexp.MustCompile("([\\\\_*\\[\\]()~`>#+=|{}.!-])")

// escapeMarkdownV2 escapes Telegram MarkdownV2 special characters.
func escapeMarkdownV2(text string) string {
	return markdownV2Escaper.ReplaceAllString(text, "\\$1")
}

func filterTier(matchups []models.Matchup, tier string) []models.Matchup {
	var out []models.Matchup
	for i := range matchups {
		if matchups[i].Tier == tier {
			out = append(out, matchups[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HRScore > out[j].HRScore
	})
	return out
}

// TwilioNotifier texts a compact top-picks summary.
type TwilioNotifier struct {
	client     *twilio.RestClient
	fromNumber string
	toNumbers  []string
	logger     *logrus.Logger
}

func NewTwilioNotifier(accountSID, authToken, fromNumber string, toNumbers []string, logger *logrus.Logger) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioNotifier{
		client:     client,
		fromNumber: fromNumber,
		toNumbers:  toNumbers,
		logger:     logger,
	}
}

func (n *TwilioNotifier) Name() string { return "twilio" }

// SendPredictions texts the top locks and sleepers. SMS has no tier
// threading, so everything goes in one message per recipient.
func (n *TwilioNotifier) SendPredictions(matchups []models.Matchup) error {
	body := formatSMSBody(matchups)

	var lastErr error
	for _, to := range n.toNumbers {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(to)
		params.SetFrom(n.fromNumber)
		params.SetBody(body)

		if _, err := n.client.Api.CreateMessage(params); err != nil {
			n.logger.WithFields(logrus.Fields{
				"to":    to,
				"error": err,
			}).Error("Failed to send SMS alert")
			lastErr = err
		}
	}
	return lastErr
}

func formatSMSBody(matchups []models.Matchup) string {
	var lines []string
	for _, group := range tierGroups {
		members := filterTier(matchups, group.tier)
		if len(members) == 0 || group.tier == scoring.TierRisky {
			continue
		}
		lines = append(lines, group.tier+":")
		for i := range members {
			if i == 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("  %s vs %s (%.3f)",
				members[i].BatterName, members[i].PitcherName, members[i].HRScore))
		}
	}
	if len(lines) == 0 {
		return "No strong home run picks today."
	}
	return strings.Join(lines, "\n")
}

// MockNotifier logs the slate instead of sending anything. Used in
// development and test mode.
type MockNotifier struct {
	logger *logrus.Logger
}

func NewMockNotifier(logger *logrus.Logger) *MockNotifier {
	return &MockNotifier{logger: logger}
}

func (n *MockNotifier) Name() string { return "mock" }

func (n *MockNotifier) SendPredictions(matchups []models.Matchup) error {
	for _, group := range tierGroups {
		members := filterTier(matchups, group.tier)
		for i := range members {
			n.logger.WithFields(logrus.Fields{
				"tier":    group.tier,
				"batter":  members[i].BatterName,
				"pitcher": members[i].PitcherName,
				"score":   fmt.Sprintf("%.3f", members[i].HRScore),
			}).Info("Prediction alert")
		}
	}
	return nil
}
