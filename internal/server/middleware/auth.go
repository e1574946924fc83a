package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/auth"
)

const defaultUserID = "demo_user"

// Auth authenticates requests with either the static service API key or a
// session token minted by the token-exchange endpoint. Browser websocket
// clients cannot set headers, so the same credentials are also accepted as
// "key" and "token" query parameters.
func Auth(apiKey, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := presentedKey(r); key != "" {
				if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
					next.ServeHTTP(w, r.WithContext(withUser(r.Context(), requestedUser(r))))
					return
				}
			}

			if tok := presentedToken(r); tok != "" {
				claims, err := auth.ValidateToken(jwtSecret, tok)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(withUser(r.Context(), claims.UserID)))
					return
				}
			}

			http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
		})
	}
}

func withUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

func presentedKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	return r.URL.Query().Get("key")
}

func presentedToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return h[7:]
	}
	return r.URL.Query().Get("token")
}

// requestedUser resolves the acting user for API-key callers. Key holders
// are trusted services, so they may act on behalf of any account.
func requestedUser(r *http.Request) string {
	if u := r.Header.Get("X-User-ID"); u != "" {
		return u
	}
	if u := r.URL.Query().Get("user_id"); u != "" {
		return u
	}
	return defaultUserID
}
