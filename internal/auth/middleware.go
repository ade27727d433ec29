package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is the HttpOnly cookie carrying the access token.
const CookieName = "token"

type contextKey string

const accountIDKey contextKey = "accountID"

// RequireAuth rejects requests without a valid token with 401 and stores the
// account id in the context otherwise.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, err := extractAccountID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
		})
	}
}

// WithAccountID returns a copy of ctx carrying accountID.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// AccountIDFromContext returns the authenticated account id, if any.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}

// extractAccountID reads the token from the cookie, falling back to an
// "Authorization: Bearer" header for non-browser clients.
func extractAccountID(r *http.Request, tokens *TokenService) (string, error) {
	var raw string
	if cookie, err := r.Cookie(CookieName); err == nil {
		raw = cookie.Value
	} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		raw = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	} else {
		return "", http.ErrNoCookie
	}
	return tokens.Validate(raw)
}
