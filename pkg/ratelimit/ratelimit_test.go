package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-settlement/pkg/pgutil"
	"github.com/chainsafe/wallet-settlement/pkg/redisutil"
)

func newRouter(l *Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware(l, func(r *http.Request) string { return r.Header.Get("X-User") }, zap.NewNop()))
	r.Post("/withdrawals/create", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

func post(h http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/withdrawals/create", nil)
	req.Header.Set("X-User", userID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLimiter_FixedWindow(t *testing.T) {
	pgutil.RequireDockerAccess(t)

	client, cleanup := redisutil.SetupTestRedis(t)
	t.Cleanup(cleanup)

	l := NewLimiter(client, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "u1")
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	res, err := l.Allow(ctx, "u1")
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if res.Allowed || res.RetryAfter <= 0 || res.RetryAfter > time.Minute {
		t.Fatalf("expected third request to be limited, got %+v", res)
	}

	other, err := l.Allow(ctx, "u2")
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !other.Allowed {
		t.Fatalf("limits must be per key")
	}
}

func TestMiddleware_RejectsWithRetryAfter(t *testing.T) {
	pgutil.RequireDockerAccess(t)

	client, cleanup := redisutil.SetupTestRedis(t)
	t.Cleanup(cleanup)

	h := newRouter(NewLimiter(client, 1, time.Minute))

	if rec := post(h, "u1"); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	rec := post(h, "u1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestMiddleware_FailsOpen(t *testing.T) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       []string{"127.0.0.1:1"},
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	h := newRouter(NewLimiter(client, 1, time.Minute))
	for i := 0; i < 3; i++ {
		if rec := post(h, "u1"); rec.Code != http.StatusCreated {
			t.Fatalf("expected request to pass when redis is down, got %d", rec.Code)
		}
	}
}

func TestMiddleware_EmptyKeySkips(t *testing.T) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{"127.0.0.1:1"}})
	t.Cleanup(func() { _ = client.Close() })

	h := newRouter(NewLimiter(client, 0, time.Minute))
	if rec := post(h, ""); rec.Code != http.StatusCreated {
		t.Fatalf("expected anonymous request to pass, got %d", rec.Code)
	}
}
