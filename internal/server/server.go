package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/api/ws"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/assistant"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/config"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/server/middleware"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/store/redis"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/voice"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	wsHub      *ws.Hub
	cfg        *config.Config
}

// Dependencies carries the wired application components into the server.
type Dependencies struct {
	Registry     *tools.Registry
	Invoker      *tools.Invoker
	Orchestrator *assistant.Orchestrator
	Sessions     *assistant.Manager
	Transcriber  voice.Transcriber
	PubSub       *redis.PubSub
}

// New creates a Server with all routes wired. ctx bounds background
// goroutines started by middleware, such as the rate limiter cleanup.
func New(ctx context.Context, cfg *config.Config, deps Dependencies) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-User-ID", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	hub := ws.NewHub(deps.Orchestrator, deps.Sessions, deps.Transcriber, deps.PubSub, cfg.Voice.MinAudioBytes)

	s := &Server{
		router: router,
		wsHub:  hub,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// REST API. Every endpoint, including the token exchange, sits behind
	// the credential middleware; the token exchange simply requires the API
	// key rather than an existing token.
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth.APIKey, cfg.Auth.JWTSecret))
		r.Use(middleware.RateLimitByIP(ctx, 50, 100))

		apiConfig := huma.DefaultConfig("Nova Banking Assistant API", "1.0.0")
		apiConfig.Servers = []*huma.Server{
			{URL: "/api/v1"},
		}
		api := humachi.New(r, apiConfig)
		registerAPIRoutes(api, cfg, deps)
	})

	// WebSocket routes. The server write timeout stops applying after the
	// hijack; the orchestrator's turn timeout bounds long-running work.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth.APIKey, cfg.Auth.JWTSecret))
		registerWSRoutes(r, hub)
	})

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","service":"nova","time":%q}`, time.Now().UTC().Format(time.RFC3339))
	})

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
