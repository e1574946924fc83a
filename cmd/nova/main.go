package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/assistant"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/banking"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/config"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/model"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/server"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/store/postgres"
	redisstore "github.com/akashs101199/gcp-banking-personal-assistant/internal/store/redis"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/voice"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("NOVA_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("NOVA_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Apply schema migrations, then connect the pool.
	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, cfg.Database.DSN()); err != nil {
			return err
		}
	}

	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis for session event fanout.
	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	// Generative model client.
	gemini, err := model.NewGemini(ctx, cfg.Gemini)
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}

	// Speech clients. Both use application default credentials.
	transcriber, err := voice.NewGoogleTranscriber(ctx, cfg.Voice)
	if err != nil {
		return fmt.Errorf("speech client: %w", err)
	}
	defer func() { _ = transcriber.Close() }()

	synthesizer, err := voice.NewGoogleSynthesizer(ctx, cfg.Voice)
	if err != nil {
		return fmt.Errorf("tts client: %w", err)
	}
	defer func() { _ = synthesizer.Close() }()

	// Register the banking tool surface.
	registry := tools.NewRegistry()
	svc := banking.New(store.Users(), store.Transactions(), store.Offers(), store.Queries())
	if err := svc.Register(registry); err != nil {
		return fmt.Errorf("tool registration: %w", err)
	}
	registry.Seal()
	invoker := tools.NewInvoker(registry)

	orchestrator := assistant.NewOrchestrator(assistant.Options{
		Model:         gemini,
		Registry:      registry,
		Invoker:       invoker,
		TTS:           synthesizer,
		Users:         store.Users(),
		Transactions:  store.Transactions(),
		Conversations: store.Conversations(),
		Publisher:     pubsub,
		MaxToolCalls:  cfg.Assistant.MaxToolCalls,
		TurnTimeout:   cfg.Assistant.TurnTimeout,
	})
	sessions := assistant.NewManager()

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, server.Dependencies{
		Registry:     registry,
		Invoker:      invoker,
		Orchestrator: orchestrator,
		Sessions:     sessions,
		Transcriber:  transcriber,
		PubSub:       pubsub,
	})

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
