// Package ratelimit provides a local per-key rate limiter for the webhook
// front door, built on golang.org/x/time/rate.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration
type Config struct {
	Enabled           bool
	RequestsPerSecond int
	BurstSize         int
	MaxKeys           int
	CleanupPeriod     time.Duration
}

// DefaultConfig returns sensible defaults for webhook traffic
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		RequestsPerSecond: 5,
		BurstSize:         10,
		MaxKeys:           1000,
		CleanupPeriod:     10 * time.Minute,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.RequestsPerSecond < 1 {
		return fmt.Errorf("RequestsPerSecond must be positive, got %d", c.RequestsPerSecond)
	}
	if c.BurstSize < 1 {
		return fmt.Errorf("BurstSize must be positive, got %d", c.BurstSize)
	}
	if c.MaxKeys < 1 {
		return fmt.Errorf("MaxKeys must be positive, got %d", c.MaxKeys)
	}
	if c.CleanupPeriod <= 0 {
		return fmt.Errorf("CleanupPeriod must be positive, got %v", c.CleanupPeriod)
	}
	return nil
}

// Limiter grants or denies a request for a key without blocking
type Limiter interface {
	TryAcquireForKey(key string) bool
}

// localLimiter implements per-key rate limiting using golang.org/x/time/rate
type localLimiter struct {
	mu       sync.Mutex
	config   Config
	limiters map[string]*limiterEntry

	lastCleanup time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewLocalLimiter creates a new local per-key rate limiter
func NewLocalLimiter(config Config) (Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &localLimiter{
		config:      config,
		limiters:    make(map[string]*limiterEntry),
		lastCleanup: time.Now(),
	}, nil
}

// TryAcquireForKey attempts to acquire a token for a specific key
func (rl *localLimiter) TryAcquireForKey(key string) bool {
	if !rl.config.Enabled {
		return true
	}
	return rl.getLimiterForKey(key).Allow()
}

// getLimiterForKey gets or creates a rate limiter for a specific key
func (rl *localLimiter) getLimiterForKey(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) > rl.config.CleanupPeriod {
		rl.cleanup()
	}

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &limiterEntry{
			limiter:  rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize),
			lastUsed: time.Now(),
		}
		rl.limiters[key] = entry

		if len(rl.limiters) > rl.config.MaxKeys {
			rl.cleanup()
		}
	} else {
		entry.lastUsed = time.Now()
	}

	return entry.limiter
}

// cleanup removes limiters that have not been used recently
func (rl *localLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.config.CleanupPeriod)

	for key, entry := range rl.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}

	rl.lastCleanup = time.Now()
}
