package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	apphttp "github.com/chainsafe/wallet-settlement/pkg/app/http"
	"github.com/chainsafe/wallet-settlement/pkg/auth"
	"github.com/chainsafe/wallet-settlement/pkg/unlock"
	"github.com/chainsafe/wallet-settlement/pkg/unlock/service/mocks"
)

// newUnlockTestServer mounts the routes behind a stub that authenticates as userID
func newUnlockTestServer(svc Service, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID != uuid.Nil {
				r = r.WithContext(auth.WithAuthInfo(r.Context(), &auth.AuthInfo{UserID: userID}))
			}
			next.ServeHTTP(w, r)
		})
	})
	RegisterRoutes(r, svc, zap.NewNop())
	return r
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apphttp.ErrorResponse {
	t.Helper()
	var got apphttp.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	return got
}

func TestUnlockHTTP_Success(t *testing.T) {
	userID := uuid.New()
	walletID := uuid.New()
	expires := time.Date(2026, 3, 1, 12, 15, 0, 0, time.UTC)

	svc := mocks.NewService(t)
	svc.EXPECT().
		Unlock(mock.Anything, userID, mock.MatchedBy(func(req *unlock.UnlockRequest) bool {
			return req.WalletID == walletID.String() && req.UnlockProof == "0xproof" && req.IssuedAt == 1772366400 && req.SessionDuration == 900
		})).
		Return(&unlock.UnlockResponse{
			UnlockToken: "tok",
			ExpiresAt:   expires,
			Wallet:      unlock.WalletInfo{WalletID: walletID, Chain: "ethereum"},
		}, nil).
		Once()

	body := `{"wallet_id":"` + walletID.String() + `","unlock_proof":"0xproof","issued_at":1772366400}`
	req := httptest.NewRequest(http.MethodPost, "/wallets/unlock", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	newUnlockTestServer(svc, userID).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var got unlock.UnlockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.UnlockToken != "tok" || !got.ExpiresAt.Equal(expires) || got.Wallet.WalletID != walletID {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestUnlockHTTP_ValidationErrors(t *testing.T) {
	tests := map[string]string{
		"invalid json":      `{invalid`,
		"missing wallet":    `{"unlock_proof":"0x01","issued_at":1772366400}`,
		"wallet not uuid":   `{"wallet_id":"abc","unlock_proof":"0x01","issued_at":1772366400}`,
		"missing proof":     `{"wallet_id":"` + uuid.NewString() + `","issued_at":1772366400}`,
		"missing issued_at": `{"wallet_id":"` + uuid.NewString() + `","unlock_proof":"0x01"}`,
		"negative duration": `{"wallet_id":"` + uuid.NewString() + `","unlock_proof":"0x01","issued_at":1772366400,"session_duration":-5}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			svc := mocks.NewService(t)
			req := httptest.NewRequest(http.MethodPost, "/wallets/unlock", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()
			newUnlockTestServer(svc, uuid.New()).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
			if got := decodeError(t, rec); got.Code != http.StatusBadRequest {
				t.Fatalf("expected code %d, got %d", http.StatusBadRequest, got.Code)
			}
		})
	}
}

func TestUnlockHTTP_ServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad proof", apperrors.UnAuthorizedError(ErrInvalidProof, "invalid unlock proof"), http.StatusUnauthorized},
		{"stale proof", apperrors.UnAuthorizedError(ErrStaleProof, "unlock proof expired, sign a new one"), http.StatusUnauthorized},
		{"not owned", apperrors.ForbiddenError(ErrWalletNotOwned, "wallet does not belong to caller"), http.StatusForbidden},
		{"not found", apperrors.ResourceNotFoundError(errors.New("wallet not found"), "wallet not found"), http.StatusNotFound},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := mocks.NewService(t)
			svc.EXPECT().Unlock(mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			body := `{"wallet_id":"` + uuid.NewString() + `","unlock_proof":"0x01","issued_at":1772366400}`
			req := httptest.NewRequest(http.MethodPost, "/wallets/unlock", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()
			newUnlockTestServer(svc, uuid.New()).ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
			}
			got := decodeError(t, rec)
			if tc.want == http.StatusInternalServerError && got.Message != "Internal Server Error" {
				t.Fatalf("internal error leaked: %q", got.Message)
			}
		})
	}
}

func TestUnlockHTTP_RequiresAuthentication(t *testing.T) {
	svc := mocks.NewService(t)
	body := `{"wallet_id":"` + uuid.NewString() + `","unlock_proof":"0x01","issued_at":1772366400}`
	req := httptest.NewRequest(http.MethodPost, "/wallets/unlock", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	newUnlockTestServer(svc, uuid.Nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLockHTTP(t *testing.T) {
	userID := uuid.New()
	walletID := uuid.New()
	lockedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	svc := mocks.NewService(t)
	svc.EXPECT().
		LockWallet(mock.Anything, userID, &unlock.LockRequest{WalletID: walletID.String()}).
		Return(&unlock.LockResponse{Success: true, LockedAt: lockedAt}, nil).
		Once()

	req := httptest.NewRequest(http.MethodPost, "/wallets/lock", bytes.NewBufferString(`{"wallet_id":"`+walletID.String()+`"}`))
	rec := httptest.NewRecorder()
	newUnlockTestServer(svc, userID).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got unlock.LockResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if !got.Success || !got.LockedAt.Equal(lockedAt) {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestStatusHTTP(t *testing.T) {
	userID := uuid.New()
	walletID := uuid.New()
	remaining := int64(120)

	svc := mocks.NewService(t)
	svc.EXPECT().
		Status(mock.Anything, userID, walletID).
		Return(&unlock.StatusResponse{WalletID: walletID, IsUnlocked: true, RemainingSeconds: &remaining}, nil).
		Once()

	req := httptest.NewRequest(http.MethodGet, "/wallets/"+walletID.String()+"/unlock-status", nil)
	rec := httptest.NewRecorder()
	newUnlockTestServer(svc, userID).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got unlock.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if !got.IsUnlocked || got.RemainingSeconds == nil || *got.RemainingSeconds != remaining {
		t.Fatalf("unexpected response %+v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/wallets/not-a-uuid/unlock-status", nil)
	rec = httptest.NewRecorder()
	newUnlockTestServer(svc, userID).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for bad wallet id, got %d", http.StatusBadRequest, rec.Code)
	}
}
