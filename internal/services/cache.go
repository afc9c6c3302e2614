package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/longball/internal/scoring"
)

// CacheService stores JSON payloads in Redis, falling back to an
// in-process map when Redis is unreachable so provider lookups keep
// their caching during an outage. The local map is per-instance and
// only consulted when Redis errors.
type CacheService struct {
	client *redis.Client
	logger *logrus.Logger

	mu    sync.Mutex
	local map[string]localEntry
}

type localEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewCacheService(client *redis.Client, logger *logrus.Logger) *CacheService {
	return &CacheService{
		client: client,
		logger: logger,
		local:  make(map[string]localEntry),
	}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := s.client.Set(ctx, key, data, expiration).Err(); err != nil {
		s.storeLocal(key, data, expiration)
		s.logger.WithFields(logrus.Fields{
			"key":   key,
			"error": err,
		}).Debug("Redis unavailable, cached in process")
	}

	return nil
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return fmt.Errorf("key not found")
	}
	if err != nil {
		local, ok := s.loadLocal(key)
		if !ok {
			return fmt.Errorf("failed to get cache: %w", err)
		}
		data = local
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

// Delete drops keys from both Redis and the local fallback. Used to
// invalidate cached API responses after a rescore.
func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.local, key)
	}
	s.mu.Unlock()

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

func (s *CacheService) storeLocal(key string, data []byte, expiration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.local[key] = localEntry{
		data:      data,
		expiresAt: time.Now().Add(expiration),
	}
}

func (s *CacheService) loadLocal(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.local[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.local, key)
		return nil, false
	}
	return entry.data, true
}

// PredictionsCacheKey keys one API response slice; the suffix carries
// the date and any tier filter.
func PredictionsCacheKey(suffix string) string {
	return fmt.Sprintf("predictions:%s", suffix)
}

// PredictionCacheKeys lists every cached response variant for a game
// date, for invalidation after the slate is rescored.
func PredictionCacheKeys(gameDate string) []string {
	keys := []string{PredictionsCacheKey(gameDate + ":")}
	for _, tier := range []string{scoring.TierLock, scoring.TierSleeper, scoring.TierRisky} {
		keys = append(keys, PredictionsCacheKey(gameDate+":"+tier))
	}
	return keys
}

// Convenience methods without context (use background context)
func (s *CacheService) SetSimple(key string, value interface{}, expiration time.Duration) error {
	return s.Set(context.Background(), key, value, expiration)
}

func (s *CacheService) GetSimple(key string, dest interface{}) error {
	return s.Get(context.Background(), key, dest)
}
