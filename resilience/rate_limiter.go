package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when a token cannot be taken.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiterConfig configures a token bucket.
type RateLimiterConfig struct {
	// Name identifies this limiter in logs.
	Name string `mapstructure:"-"`
	// Rate is the number of tokens added per second.
	Rate float64 `mapstructure:"rate"`
	// Burst is the bucket capacity.
	Burst int `mapstructure:"burst"`
	// OnLimit is called when a request is rate limited.
	OnLimit func(name string) `mapstructure:"-"`
}

// RateLimiter is a token bucket.
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = max(int(config.Rate), 1)
	}
	return &RateLimiter{
		config:   config,
		tokens:   float64(config.Burst),
		lastSeen: time.Now(),
	}
}

// Allow takes one token if available.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN takes n tokens if available.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	ok := rl.take(float64(n))
	rl.mu.Unlock()

	if !ok && rl.config.OnLimit != nil {
		rl.config.OnLimit(rl.config.Name)
	}
	return ok
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	if rl.take(1) {
		rl.mu.Unlock()
		return nil
	}
	// Reserve the token now so concurrent waiters queue behind each other.
	wait := time.Duration((1 - rl.tokens) / rl.config.Rate * float64(time.Second))
	rl.tokens--
	rl.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		rl.mu.Lock()
		rl.tokens++
		rl.mu.Unlock()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryAfter returns how long until one token is available.
func (rl *RateLimiter) RetryAfter() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	if rl.tokens >= 1 {
		return 0
	}
	return time.Duration((1 - rl.tokens) / rl.config.Rate * float64(time.Second))
}

// Tokens returns the current number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

// Idle reports how long the bucket has gone without a refill check.
func (rl *RateLimiter) Idle() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return time.Since(rl.lastSeen)
}

// Rate returns tokens per second.
func (rl *RateLimiter) Rate() float64 {
	return rl.config.Rate
}

// Burst returns the bucket capacity.
func (rl *RateLimiter) Burst() int {
	return rl.config.Burst
}

// take must be called with mu held.
func (rl *RateLimiter) take(n float64) bool {
	rl.refill()
	if rl.tokens < n {
		return false
	}
	rl.tokens -= n
	return true
}

func (rl *RateLimiter) refill() {
	now := time.Now()
	rl.tokens = min(rl.tokens+now.Sub(rl.lastSeen).Seconds()*rl.config.Rate, float64(rl.config.Burst))
	rl.lastSeen = now
}
