package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimitConfig sets the per-client budget for generation requests.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained rate. Zero or less disables
	// limiting.
	RequestsPerMinute int `yaml:"requestsPerMinute" json:"requestsPerMinute"`
	// Burst defaults to RequestsPerMinute.
	Burst int `yaml:"burst" json:"burst"`
	// IdleTTL is how long an idle client's bucket is kept. Defaults to 10m.
	IdleTTL time.Duration `yaml:"idleTTL" json:"idleTTL"`
	// TrustProxy takes the client address from X-Real-IP or
	// X-Forwarded-For.
	TrustProxy bool `yaml:"trustProxy" json:"trustProxy"`
}

// DefaultRateLimitConfig returns ten generations per minute per client.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 10, IdleTTL: 10 * time.Minute}
}

// RateLimiter keeps one token bucket per client IP. Buckets expire after
// IdleTTL without requests.
type RateLimiter struct {
	cfg     RateLimitConfig
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	clients *cache.Cache
}

// NewRateLimiter creates a limiter from cfg.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(cfg.RequestsPerMinute, 1)
	}
	return &RateLimiter{
		cfg:     cfg,
		limit:   rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:   burst,
		clients: cache.New(cfg.IdleTTL, cfg.IdleTTL/2),
	}
}

// Enabled reports whether requests are limited at all.
func (l *RateLimiter) Enabled() bool { return l.cfg.RequestsPerMinute > 0 }

// Clients returns the number of tracked client buckets.
func (l *RateLimiter) Clients() int { return l.clients.ItemCount() }

func (l *RateLimiter) bucket(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	var lim *rate.Limiter
	if v, ok := l.clients.Get(ip); ok {
		lim = v.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	// Refresh the expiry on every request.
	l.clients.SetDefault(ip, lim)
	return lim
}

// Middleware rejects requests over budget with 429 and a Retry-After header
// in whole seconds.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	if !l.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reservation := l.bucket(l.clientIP(r)).Reserve()
		if d := reservation.Delay(); d > 0 {
			reservation.Cancel()
			retryAfter := max(int(math.Ceil(d.Seconds())), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) clientIP(r *http.Request) string {
	if l.cfg.TrustProxy {
		if ip := r.Header.Get("X-Real-IP"); ip != "" {
			return ip
		}
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
