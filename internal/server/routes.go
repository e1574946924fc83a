package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/akashs101199/gcp-banking-personal-assistant/internal/api/v1"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/api/ws"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/config"
)

func registerAPIRoutes(api huma.API, cfg *config.Config, deps Dependencies) {
	v1.RegisterToolRoutes(api, deps.Registry, deps.Invoker)
	v1.RegisterSessionRoutes(api, deps.Sessions)
	v1.RegisterTokenRoutes(api, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/chat", hub.ServeChat)
	r.Get("/events/{sessionID}", hub.ServeEvents)
}
