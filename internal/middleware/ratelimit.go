package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/userapi/userapi/internal/cache"
)

// RateLimiter checks a shared token bucket for a client.
// *cache.Cache satisfies it.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, client string, ratePerSecond, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Enabled bool
	RPS     int // sustained requests per second per client
	Burst   int
	// Limiter is the shared Redis-backed limiter. When nil, limiting
	// happens in-process with httprate.
	Limiter RateLimiter
}

// RateLimit returns middleware that rate limits requests per client IP.
// Must be applied after RealIP so RemoteAddr holds the client address.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Limiter == nil {
		return localRateLimit(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			result, err := cfg.Limiter.CheckRateLimit(r.Context(), ip, cfg.RPS, cfg.Burst)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				// Fail open
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))

			if !result.Allowed {
				logRateLimited(cfg.Logger, r, ip)
				writeRateLimited(w, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// localRateLimit approximates the token bucket with a sliding window of
// Burst requests per Burst/RPS seconds.
func localRateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	window := time.Duration(float64(time.Second) * float64(cfg.Burst) / float64(cfg.RPS))

	return httprate.Limit(cfg.Burst, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logRateLimited(cfg.Logger, r, clientIP(r))
			retryAfter := time.Second / time.Duration(cfg.RPS)
			if v := w.Header().Get("Retry-After"); v != "" {
				if secs, err := strconv.Atoi(v); err == nil {
					retryAfter = time.Duration(secs) * time.Second
				}
			}
			writeRateLimited(w, retryAfter)
		}),
	)
}

func logRateLimited(logger *slog.Logger, r *http.Request, ip string) {
	logger.Warn("rate limit exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
