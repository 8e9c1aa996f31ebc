package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey   contextKey = "userID"
	ledgerIDKey contextKey = "ledgerID"
)

// WithIdentity adds the authenticated user and ledger to the request context
func WithIdentity(r *http.Request, userID, ledgerID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, ledgerIDKey, ledgerID)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// GetLedgerID retrieves ledgerID from context, returns empty string if not found
func GetLedgerID(r *http.Request) string {
	ledgerID, _ := r.Context().Value(ledgerIDKey).(string)
	return ledgerID
}
