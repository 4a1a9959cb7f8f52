// Package ratelimit throttles money-moving requests per user.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/internal/metrics"
	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	apphttp "github.com/chainsafe/wallet-settlement/pkg/app/http"
)

const keyPrefix = "settlement:ratelimit:"

// fixed window counter; returns the count and the window's remaining ttl in ms
var windowScript = redis.NewScript(`
local current = redis.call("incr", KEYS[1])
if current == 1 then
	redis.call("pexpire", KEYS[1], ARGV[1])
end
return {current, redis.call("pttl", KEYS[1])}
`)

// Result reports the outcome of one Allow call
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a fixed-window request counter in redis
type Limiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
}

// NewLimiter creates a Limiter allowing limit requests per window per key
func NewLimiter(client redis.UniversalClient, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window}
}

// Allow counts one request against key
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	vals, err := windowScript.Run(ctx, l.client, []string{keyPrefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if len(vals) != 2 {
		return nil, fmt.Errorf("rate limit check: unexpected reply %v", vals)
	}

	count, ttl := vals[0], time.Duration(vals[1])*time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}
	res := &Result{
		Allowed:   count <= int64(l.limit),
		Remaining: max(l.limit-int(count), 0),
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res, nil
}

// KeyFunc extracts the rate limit key from a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// Middleware rejects requests over the limit with 429 and a Retry-After header.
// Redis errors let the request through.
func Middleware(l *Limiter, keyFn KeyFunc, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				metrics.RateLimited.Inc()
				seconds := int((res.RetryAfter + time.Second - 1) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				apphttp.DefaultErrorHandler(w, r, logger, apperrors.TooManyRequestsError(nil,
					fmt.Sprintf("too many requests, retry in %ds", seconds)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
