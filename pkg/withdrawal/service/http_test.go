package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	apphttp "github.com/chainsafe/wallet-settlement/pkg/app/http"
	"github.com/chainsafe/wallet-settlement/pkg/auth"
	"github.com/chainsafe/wallet-settlement/pkg/order"
	"github.com/chainsafe/wallet-settlement/pkg/unlock"
	"github.com/chainsafe/wallet-settlement/pkg/withdrawal"
	"github.com/chainsafe/wallet-settlement/pkg/withdrawal/service/mocks"
)

func newWithdrawalTestServer(svc Service, caller *auth.AuthInfo) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller != nil {
				r = r.WithContext(auth.WithAuthInfo(r.Context(), caller))
			}
			next.ServeHTTP(w, r)
		})
	})
	RegisterRoutes(r, svc, zap.NewNop())
	return r
}

func createBody(walletID uuid.UUID) *bytes.Buffer {
	return bytes.NewBufferString(`{
		"wallet_id": "` + walletID.String() + `",
		"chain": "ethereum",
		"from_address": "0x1111111111111111111111111111111111111111",
		"to_address": "0x2222222222222222222222222222222222222222",
		"amount": "0.1",
		"signed_tx": "0xf86c"
	}`)
}

func TestWithdrawalHTTP_Create(t *testing.T) {
	caller := &auth.AuthInfo{UserID: uuid.New()}
	walletID := uuid.New()
	id := uuid.New()

	svc := mocks.NewService(t)
	svc.EXPECT().
		Create(mock.Anything, caller, mock.MatchedBy(func(req *withdrawal.CreateRequest) bool {
			return req.WalletID == walletID.String() && req.WalletUnlockToken == "hdr"
		})).
		Return(&withdrawal.CreateResponse{WithdrawalID: id, Status: order.StatusApproved, RiskLevel: "low"}, nil).
		Once()

	req := httptest.NewRequest(http.MethodPost, "/withdrawals/create", createBody(walletID))
	req.Header.Set(unlock.TokenHeader, "hdr")
	rec := httptest.NewRecorder()
	newWithdrawalTestServer(svc, caller).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	var got withdrawal.CreateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.WithdrawalID != id || got.Status != order.StatusApproved || got.RiskLevel != "low" {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestWithdrawalHTTP_CreateValidation(t *testing.T) {
	tests := map[string]string{
		"invalid json":      `[`,
		"wallet not uuid":   `{"wallet_id":"w1","chain":"ethereum","from_address":"0x1","to_address":"0x2","amount":"1","signed_tx":"0x"}`,
		"missing signed tx": `{"wallet_id":"` + uuid.NewString() + `","chain":"ethereum","from_address":"0x1","to_address":"0x2","amount":"1"}`,
		"payout not uuid":   `{"wallet_id":"` + uuid.NewString() + `","chain":"ethereum","from_address":"0x1","to_address":"0x2","amount":"1","signed_tx":"0x","payout_account_id":"bank"}`,
	}
	for name, b := range tests {
		t.Run(name, func(t *testing.T) {
			svc := mocks.NewService(t)
			req := httptest.NewRequest(http.MethodPost, "/withdrawals/create", bytes.NewBufferString(b))
			rec := httptest.NewRecorder()
			newWithdrawalTestServer(svc, &auth.AuthInfo{UserID: uuid.New()}).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestWithdrawalHTTP_RiskRejection(t *testing.T) {
	caller := &auth.AuthInfo{UserID: uuid.New()}
	svc := mocks.NewService(t)
	svc.EXPECT().Create(mock.Anything, caller, mock.Anything).
		Return(nil, apperrors.RiskRejectedError(errors.New("limit"),
			"Daily limit of $0.00 for unverified tier exceeded (remaining $0.00)",
			"Complete KYC verification to increase your limit")).
		Once()

	req := httptest.NewRequest(http.MethodPost, "/withdrawals/create", createBody(uuid.New()))
	rec := httptest.NewRecorder()
	newWithdrawalTestServer(svc, caller).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	var got apphttp.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Suggestion == "" {
		t.Fatalf("expected suggestion in %+v", got)
	}
}

func TestWithdrawalHTTP_Status(t *testing.T) {
	caller := &auth.AuthInfo{UserID: uuid.New()}
	id := uuid.New()
	hash := "0xfeed"

	svc := mocks.NewService(t)
	svc.EXPECT().Status(mock.Anything, caller, id).
		Return(&withdrawal.StatusResponse{WithdrawalID: id, Status: order.StatusConfirmingOnchain, TxHash: &hash, Confirmations: 3}, nil).
		Once()

	req := httptest.NewRequest(http.MethodGet, "/withdrawals/status/"+id.String(), nil)
	rec := httptest.NewRecorder()
	newWithdrawalTestServer(svc, caller).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var got withdrawal.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.TxHash == nil || *got.TxHash != hash || got.Confirmations != 3 {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestWithdrawalHTTP_Cancel(t *testing.T) {
	caller := &auth.AuthInfo{UserID: uuid.New()}
	id := uuid.New()

	svc := mocks.NewService(t)
	svc.EXPECT().Cancel(mock.Anything, caller, id).
		Return(&withdrawal.StatusResponse{WithdrawalID: id, Status: order.StatusCancelled}, nil).
		Once()

	req := httptest.NewRequest(http.MethodPost, "/withdrawals/"+id.String()+"/cancel", nil)
	rec := httptest.NewRecorder()
	newWithdrawalTestServer(svc, caller).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestWithdrawalHTTP_ReviewRequiresAdmin(t *testing.T) {
	id := uuid.New()
	body := `{"decision":"approve"}`

	t.Run("user", func(t *testing.T) {
		svc := mocks.NewService(t)
		req := httptest.NewRequest(http.MethodPost, "/withdrawals/"+id.String()+"/review", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		newWithdrawalTestServer(svc, &auth.AuthInfo{UserID: uuid.New(), Role: "user"}).ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := mocks.NewService(t)
		req := httptest.NewRequest(http.MethodPost, "/withdrawals/"+id.String()+"/review", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		newWithdrawalTestServer(svc, nil).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
		}
	})

	t.Run("admin", func(t *testing.T) {
		admin := &auth.AuthInfo{UserID: uuid.New(), Role: auth.RoleAdmin}
		svc := mocks.NewService(t)
		svc.EXPECT().
			Review(mock.Anything, admin, id, &withdrawal.ReviewRequest{Decision: withdrawal.DecisionApprove}).
			Return(&withdrawal.StatusResponse{WithdrawalID: id, Status: order.StatusConfirmingOnchain}, nil).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/withdrawals/"+id.String()+"/review", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		newWithdrawalTestServer(svc, admin).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid decision", func(t *testing.T) {
		admin := &auth.AuthInfo{UserID: uuid.New(), Role: auth.RoleAdmin}
		svc := mocks.NewService(t)
		req := httptest.NewRequest(http.MethodPost, "/withdrawals/"+id.String()+"/review", bytes.NewBufferString(`{"decision":"maybe"}`))
		rec := httptest.NewRecorder()
		newWithdrawalTestServer(svc, admin).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}
