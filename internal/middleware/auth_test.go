package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"ledgerly/internal/domain"
	"ledgerly/internal/domain/models"
	"ledgerly/internal/httputil"
)

type stubVerifier struct {
	claims *models.AuthClaims
}

func (s *stubVerifier) VerifyToken(token string) (*models.AuthClaims, error) {
	if s.claims == nil || token != "good-token" {
		return nil, domain.ErrUnauthorized
	}
	return s.claims, nil
}

func (s *stubVerifier) Close() error { return nil }

func validClaims() *models.AuthClaims {
	return &models.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user_1"},
		Role:             "authenticated",
		LedgerID:         "ledger_1",
	}
}

func authedHandler(t *testing.T) (http.Handler, *string, *string) {
	t.Helper()
	var gotUser, gotLedger string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httputil.GetUserID(r)
		gotLedger = httputil.GetLedgerID(r)
		w.WriteHeader(http.StatusOK)
	})
	return Auth(&stubVerifier{claims: validClaims()})(next), &gotUser, &gotLedger
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	handler, user, ledger := authedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *user != "user_1" || *ledger != "ledger_1" {
		t.Errorf("identity not propagated: user=%q ledger=%q", *user, *ledger)
	}
}

func TestAuthAcceptsQueryToken(t *testing.T) {
	// SSE clients cannot set headers.
	handler, user, _ := authedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chats/chat_1/stream?access_token=good-token", nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || *user != "user_1" {
		t.Errorf("expected query token accepted, got %d user=%q", rec.Code, *user)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler, _, _ := authedHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chats", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	handler, _, _ := authedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
	req.Header.Set("Authorization", "Bearer forged")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthSkipsHealthCheck(t *testing.T) {
	handler, _, _ := authedHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected health check to bypass auth, got %d", rec.Code)
	}
}
