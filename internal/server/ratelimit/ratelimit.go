// Package ratelimit provides per-client request rate limiting for the API.
package ratelimit

import (
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
	CleanupInterval   time.Duration
	IdleTimeout       time.Duration
}

// LoadConfig reads rate limit settings from the environment, falling back
// to permissive defaults suitable for a single-tenant deployment.
func LoadConfig() *Config {
	cfg := &Config{
		Enabled:           true,
		RequestsPerMinute: 120,
		Burst:             30,
		CleanupInterval:   5 * time.Minute,
		IdleTimeout:       15 * time.Minute,
	}

	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		cfg.Enabled = v != "false" && v != "0"
	}
	if v := os.Getenv("RATE_LIMIT_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Burst = n
		}
	}

	return cfg
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter manages per-client token buckets.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	config  *Config
	stop    chan struct{}
}

// NewLimiter creates a rate limiter and starts its idle-client cleanup loop.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = LoadConfig()
	}

	l := &Limiter{
		clients: make(map[string]*client),
		config:  config,
		stop:    make(chan struct{}),
	}

	go l.cleanupLoop()
	return l
}

// Allow reports whether the client may make a request now.
func (l *Limiter) Allow(clientID string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	l.mu.Lock()
	c, ok := l.clients[clientID]
	if !ok {
		perSecond := rate.Limit(float64(l.config.RequestsPerMinute) / 60.0)
		c = &client{limiter: rate.NewLimiter(perSecond, l.config.Burst)}
		l.clients[clientID] = c
	}
	c.lastSeen = time.Now()
	l.mu.Unlock()

	allowed := c.limiter.Allow()
	remaining := int(c.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	info := Info{
		Allowed:   allowed,
		Limit:     l.config.Burst,
		Remaining: remaining,
		ResetTime: time.Now().Add(time.Minute),
	}
	if !allowed {
		info.RetryAfter = time.Second
	}
	return allowed, info
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	close(l.stop)
}

// cleanupLoop evicts clients that have been idle past the timeout.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-l.config.IdleTimeout)
			l.mu.Lock()
			for id, c := range l.clients {
				if c.lastSeen.Before(cutoff) {
					delete(l.clients, id)
				}
			}
			l.mu.Unlock()
		}
	}
}
