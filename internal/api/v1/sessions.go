package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

type SessionSummary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Running   bool      `json:"running"`
	Turns     int       `json:"turns"`
}

type ListSessionsOutput struct {
	Body struct {
		Sessions []SessionSummary `json:"sessions"`
	}
}

// RegisterSessionRoutes exposes the live session listing for supervision
// dashboards. Sessions are in-memory per instance; the listing covers this
// instance only.
func RegisterSessionRoutes(api huma.API, sessions SessionDirectory) {
	huma.Register(api, huma.Operation{
		OperationID: "list-sessions",
		Method:      http.MethodGet,
		Path:        "/sessions",
		Summary:     "List live conversation sessions",
		Tags:        []string{"Sessions"},
	}, func(_ context.Context, _ *struct{}) (*ListSessionsOutput, error) {
		live := sessions.List()

		out := &ListSessionsOutput{}
		out.Body.Sessions = make([]SessionSummary, 0, len(live))
		for _, s := range live {
			out.Body.Sessions = append(out.Body.Sessions, SessionSummary{
				ID:        s.ID,
				UserID:    s.UserID,
				CreatedAt: s.CreatedAt,
				Running:   s.Running(),
				Turns:     s.Len(),
			})
		}
		return out, nil
	})
}
