package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey int

const userIDKey contextKey = iota

// WithUserID stamps the authenticated user onto the context. The auth
// middleware is the only writer.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user, uuid.Nil outside an
// authenticated route.
func UserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id
	}

	return uuid.Nil
}

// LedgerHeader names the header carrying the active shared ledger.
const LedgerHeader = "X-Ledger-Id"

// LedgerID reads the active ledger from the request header. Returns nil
// when the caller is working in their personal books.
func LedgerID(r *http.Request) (*uuid.UUID, error) {
	raw := r.Header.Get(LedgerHeader)
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}

	return &id, nil
}
