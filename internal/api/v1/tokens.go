package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/auth"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/server/middleware"
)

type IssueTokenOutput struct {
	Body struct {
		AccessToken string `json:"access_token"` //nolint:gosec // G117: auth response DTO
		ExpiresIn   int64  `json:"expires_in"`
	}
}

// RegisterTokenRoutes exposes the token exchange. An API-key caller trades
// the shared key for a short-lived session token scoped to one user, so
// browser clients never hold the key itself.
func RegisterTokenRoutes(api huma.API, jwtSecret string, ttl time.Duration) {
	huma.Register(api, huma.Operation{
		OperationID: "issue-token",
		Method:      http.MethodPost,
		Path:        "/auth/token",
		Summary:     "Exchange the API key for a session token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*IssueTokenOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		token, err := auth.IssueToken(jwtSecret, userID, ttl)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to issue token", err)
		}

		out := &IssueTokenOutput{}
		out.Body.AccessToken = token
		out.Body.ExpiresIn = int64(ttl.Seconds())
		return out, nil
	})
}
