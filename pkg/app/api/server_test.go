package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	"github.com/chainsafe/wallet-settlement/pkg/auth"
	bridgemocks "github.com/chainsafe/wallet-settlement/pkg/bridge/service/mocks"
	"github.com/chainsafe/wallet-settlement/pkg/config"
	"github.com/chainsafe/wallet-settlement/pkg/redisutil"
	unlockmocks "github.com/chainsafe/wallet-settlement/pkg/unlock/service/mocks"
	webhookmocks "github.com/chainsafe/wallet-settlement/pkg/webhook/service/mocks"
	withdrawalmocks "github.com/chainsafe/wallet-settlement/pkg/withdrawal/service/mocks"
)

const testJWTSecret = "router-test-secret-that-is-long-enough"

type testServices struct {
	bridge     *bridgemocks.Service
	withdrawal *withdrawalmocks.Service
	unlock     *unlockmocks.Service
	webhook    *webhookmocks.Service
}

func newTestRouter(t *testing.T, cfg *config.APIServerConfig, rdb redis.UniversalClient) (http.Handler, *testServices) {
	t.Helper()
	mocks := &testServices{
		bridge:     bridgemocks.NewService(t),
		withdrawal: withdrawalmocks.NewService(t),
		unlock:     unlockmocks.NewService(t),
		webhook:    webhookmocks.NewService(t),
	}
	svcs := &services{
		bridge:     mocks.bridge,
		withdrawal: mocks.withdrawal,
		unlock:     mocks.unlock,
		webhook:    mocks.webhook,
	}
	validator := auth.NewJWTValidator(config.JWTConfig{Secret: testJWTSecret})
	return NewServer(cfg).setupRouter(svcs, validator, rdb, zap.NewNop()), mocks
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	claims := &auth.Claims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + token
}

func TestRouter_PublicEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, &config.APIServerConfig{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "settlement_active_monitors") {
		t.Fatal("expected settlement metrics to be exported")
	}
}

func TestRouter_APIRequiresBearer(t *testing.T) {
	router, _ := newTestRouter(t, &config.APIServerConfig{}, nil)

	for _, path := range []string{
		"/bridge/" + uuid.NewString() + "/status-enhanced",
		"/withdrawals/status/" + uuid.NewString(),
		"/wallets/" + uuid.NewString() + "/unlock-status",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusUnauthorized, rec.Code)
		}
	}
}

func TestRouter_AuthenticatedRequestReachesService(t *testing.T) {
	router, mocks := newTestRouter(t, &config.APIServerConfig{}, nil)
	userID := uuid.New()
	id := uuid.New()

	mocks.bridge.EXPECT().
		Status(mock.Anything, mock.MatchedBy(func(c *auth.AuthInfo) bool { return c.UserID == userID }), id).
		Return(nil, apperrors.ResourceNotFoundError(errors.New("missing"), "bridge transfer not found")).
		Once()

	req := httptest.NewRequest(http.MethodGet, "/bridge/"+id.String()+"/status-enhanced", nil)
	req.Header.Set("Authorization", bearer(t, userID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNotFound, rec.Code, rec.Body.String())
	}
}

func TestRouter_WebhooksBypassBearerAuth(t *testing.T) {
	router, _ := newTestRouter(t, &config.APIServerConfig{
		Webhook: config.WebhookConfig{BridgeSecret: "bridge-secret", MaxSkew: time.Minute},
	}, nil)

	// a valid bearer token is not a webhook signature
	req := httptest.NewRequest(http.MethodPost, "/webhooks/bridge", strings.NewReader(`{}`))
	req.Header.Set("Authorization", bearer(t, uuid.New()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserPostKey(t *testing.T) {
	userID := uuid.New()
	authed := func(method string) *http.Request {
		req := httptest.NewRequest(method, "/", nil)
		return req.WithContext(auth.WithAuthInfo(req.Context(), &auth.AuthInfo{UserID: userID}))
	}

	if got := userPostKey(authed(http.MethodPost)); got != userID.String() {
		t.Fatalf("expected user key, got %q", got)
	}
	if got := userPostKey(authed(http.MethodGet)); got != "" {
		t.Fatalf("reads must not be limited, got %q", got)
	}
	if got := userPostKey(httptest.NewRequest(http.MethodPost, "/", nil)); got != "" {
		t.Fatalf("anonymous requests have no key, got %q", got)
	}
}

func TestRouter_RateLimitsMoneyMovingRequests(t *testing.T) {
	rdb, cleanup := redisutil.SetupTestRedis(t)
	defer cleanup()

	router, mocks := newTestRouter(t, &config.APIServerConfig{
		RateLimit: config.RateLimitConfig{Requests: 1, Window: time.Minute},
	}, rdb)
	userID := uuid.New()
	id := uuid.New()

	mocks.bridge.EXPECT().
		Cancel(mock.Anything, mock.Anything, id).
		Return(nil, apperrors.ResourceNotFoundError(errors.New("missing"), "bridge transfer not found")).
		Once()
	mocks.bridge.EXPECT().
		Status(mock.Anything, mock.Anything, id).
		Return(nil, apperrors.ResourceNotFoundError(errors.New("missing"), "bridge transfer not found")).
		Twice()

	send := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", bearer(t, userID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(http.MethodPost, "/bridge/"+id.String()+"/cancel"); rec.Code != http.StatusNotFound {
		t.Fatalf("first POST: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	rec := send(http.MethodPost, "/bridge/"+id.String()+"/cancel")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST: expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	// status polling is never throttled
	for i := 0; i < 2; i++ {
		if rec := send(http.MethodGet, "/bridge/"+id.String()+"/status-enhanced"); rec.Code != http.StatusNotFound {
			t.Fatalf("GET %d: expected status %d, got %d", i, http.StatusNotFound, rec.Code)
		}
	}
}
