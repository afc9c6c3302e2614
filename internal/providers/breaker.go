package providers

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// BreakerGroup holds one circuit breaker per external service so a
// failing weather API cannot trip calls to the stats API.
type BreakerGroup struct {
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *logrus.Logger
}

func NewBreakerGroup(threshold int, timeout time.Duration, logger *logrus.Logger) *BreakerGroup {
	settings := gobreaker.Settings{
		MaxRequests: uint32(threshold),
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for _, service := range []string{"statsapi", "statcast", "openweather"} {
		s := settings
		s.Name = service
		breakers[service] = gobreaker.NewCircuitBreaker(s)
	}

	return &BreakerGroup{
		breakers: breakers,
		logger:   logger,
	}
}

// Execute wraps a call with the named service's circuit breaker.
func (bg *BreakerGroup) Execute(service string, fn func() (interface{}, error)) (interface{}, error) {
	breaker, exists := bg.breakers[service]
	if !exists {
		bg.logger.WithFields(logrus.Fields{
			"component": "circuit_breaker",
			"service":   service,
		}).Warn("No circuit breaker found for service, executing without protection")
		return fn()
	}

	return breaker.Execute(fn)
}

// State returns the current state of a service's breaker.
func (bg *BreakerGroup) State(service string) gobreaker.State {
	if breaker, exists := bg.breakers[service]; exists {
		return breaker.State()
	}
	return gobreaker.StateClosed
}
