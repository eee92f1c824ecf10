package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/whisper-gateway/errors"
	"github.com/kbukum/whisper-gateway/resilience"
)

// RateLimitConfig configures per-client rate limiting.
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// RequestsPerMinute is the sustained rate allowed per key.
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	// Burst is the number of requests a quiet client may send at once.
	Burst int `mapstructure:"burst"`
	// TrustProxy keys clients by the first X-Forwarded-For address.
	TrustProxy bool `mapstructure:"trust_proxy"`
	// IdleTTL is how long an unused per-key limiter is kept.
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *RateLimitConfig) ApplyDefaults() {
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = 60
	}
	if c.Burst <= 0 {
		c.Burst = 10
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 10 * time.Minute
	}
}

// RateLimiter holds one token bucket per client key.
type RateLimiter struct {
	cfg      RateLimitConfig
	now      func() time.Time
	mu       sync.Mutex
	limiters map[string]*resilience.RateLimiter
	lastGC   time.Time
}

// NewRateLimiter creates a limiter. cfg defaults are applied.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	cfg.ApplyDefaults()
	return &RateLimiter{
		cfg:      cfg,
		now:      time.Now,
		limiters: make(map[string]*resilience.RateLimiter),
		lastGC:   time.Now(),
	}
}

// Middleware rejects requests over the limit with 429 RATE_LIMITED and a
// Retry-After header in whole seconds.
func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lim := rl.limiterFor(rl.key(r))
			if !lim.Allow() {
				secs := int(math.Ceil(lim.RetryAfter().Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, errors.RateLimited())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(key string) *resilience.RateLimiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now := rl.now(); now.Sub(rl.lastGC) >= rl.cfg.IdleTTL {
		for k, l := range rl.limiters {
			if l.Idle() >= rl.cfg.IdleTTL {
				delete(rl.limiters, k)
			}
		}
		rl.lastGC = now
	}

	lim, ok := rl.limiters[key]
	if !ok {
		lim = resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Name:  "client:" + key,
			Rate:  float64(rl.cfg.RequestsPerMinute) / 60,
			Burst: rl.cfg.Burst,
		})
		rl.limiters[key] = lim
	}
	return lim
}

func (rl *RateLimiter) key(r *http.Request) string {
	if rl.cfg.TrustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
