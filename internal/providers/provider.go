// Package providers wraps the external data sources the pipeline
// reads: the MLB Stats API for schedules and rosters, Statcast for
// batted-ball data, and OpenWeather for ballpark conditions.
package providers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// CacheProvider is the read-through cache the providers consult before
// hitting the network. Satisfied by services.CacheService.
type CacheProvider interface {
	GetSimple(key string, dest interface{}) error
	SetSimple(key string, value interface{}, expiration time.Duration) error
}

// getJSON performs a GET with exponential backoff and decodes the JSON
// response into target.
func getJSON(client *http.Client, logger *logrus.Logger, url string, target interface{}) error {
	var resp *http.Response
	var err error

	for attempt := 0; attempt < 3; attempt++ {
		resp, err = client.Get(url)
		if err == nil && resp.StatusCode == http.StatusOK {
			break
		}

		if resp != nil {
			resp.Body.Close()
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
		logger.Warnf("Request failed (attempt %d), waiting %v: %v", attempt+1, waitTime, err)
		time.Sleep(waitTime)
	}

	if err != nil {
		return fmt.Errorf("request failed after retries: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(target)
}
