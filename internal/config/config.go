package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Server    ServerConfig
	Gemini    GeminiConfig
	Voice     VoiceConfig
	Assistant AssistantConfig
}

// DatabaseConfig holds PostgreSQL warehouse connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
	Migrate  bool
}

// RedisConfig holds Redis connection settings for session event fanout.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// AuthConfig holds the shared API key and session-token settings.
type AuthConfig struct {
	APIKey    string //nolint:gosec // G117: static API key config
	JWTSecret string //nolint:gosec // G117: JWT signing secret config
	TokenTTL  time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// GeminiConfig holds generative model settings.
type GeminiConfig struct {
	Model     string
	APIKey    string //nolint:gosec // G117: model API key config
	Project   string
	Location  string
	UseVertex bool
}

// VoiceConfig holds speech recognition and synthesis settings.
type VoiceConfig struct {
	LanguageCode  string
	VoiceName     string
	SampleRate    int
	MinAudioBytes int
}

// AssistantConfig bounds orchestration behavior per turn.
type AssistantConfig struct {
	MaxToolCalls int
	TurnTimeout  time.Duration
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production, sensitive
// values (API key, JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("NOVA_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("NOVA_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMigrate, err := getEnvBool("NOVA_DB_MIGRATE", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("NOVA_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	tokenTTL, err := getEnvDuration("NOVA_TOKEN_TTL", 1*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("NOVA_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("NOVA_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	useVertex, err := getEnvBool("NOVA_GEMINI_USE_VERTEX", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	sampleRate, err := getEnvInt("NOVA_VOICE_SAMPLE_RATE", 48000)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	minAudioBytes, err := getEnvInt("NOVA_VOICE_MIN_AUDIO_BYTES", 8192)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxToolCalls, err := getEnvInt("NOVA_MAX_TOOL_CALLS", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	turnTimeout, err := getEnvDuration("NOVA_TURN_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("NOVA_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("NOVA_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("NOVA_DB_USER", "nova"),
			Password: getEnv("NOVA_DB_PASSWORD", ""),
			DBName:   getEnv("NOVA_DB_NAME", "nova_banking"),
			SSLMode:  getEnv("NOVA_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
			Migrate:  dbMigrate,
		},
		Redis: RedisConfig{
			Addr:     getEnv("NOVA_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("NOVA_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			APIKey:    getEnv("NOVA_API_KEY", ""),
			JWTSecret: getEnv("NOVA_JWT_SECRET", ""),
			TokenTTL:  tokenTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("NOVA_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		Gemini: GeminiConfig{
			Model:     getEnv("NOVA_GEMINI_MODEL", "gemini-2.0-flash-001"),
			APIKey:    getEnv("NOVA_GEMINI_API_KEY", ""),
			Project:   getEnv("NOVA_GCP_PROJECT_ID", ""),
			Location:  getEnv("NOVA_GCP_REGION", "us-central1"),
			UseVertex: useVertex,
		},
		Voice: VoiceConfig{
			LanguageCode:  getEnv("NOVA_VOICE_LANGUAGE", "en-US"),
			VoiceName:     getEnv("NOVA_VOICE_NAME", "en-US-Journey-F"),
			SampleRate:    sampleRate,
			MinAudioBytes: minAudioBytes,
		},
		Assistant: AssistantConfig{
			MaxToolCalls: maxToolCalls,
			TurnTimeout:  turnTimeout,
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.Auth.APIKey == "" {
		return errors.New("NOVA_API_KEY is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("NOVA_JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("NOVA_JWT_SECRET must be at least 32 characters")
	}

	if c.Gemini.UseVertex && c.Gemini.Project == "" {
		return errors.New("NOVA_GCP_PROJECT_ID is required when NOVA_GEMINI_USE_VERTEX=true")
	}
	if !c.Gemini.UseVertex && c.Gemini.APIKey == "" {
		return errors.New("NOVA_GEMINI_API_KEY is required when not using Vertex AI")
	}

	if c.Database.SSLMode == "disable" {
		log.Warn().Msg("NOVA_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("NOVA_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("NOVA_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("NOVA_TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("NOVA_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("NOVA_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Assistant.MaxToolCalls < 1 {
		return fmt.Errorf("NOVA_MAX_TOOL_CALLS must be >= 1, got %d", c.Assistant.MaxToolCalls)
	}
	if c.Voice.MinAudioBytes < 1 {
		return fmt.Errorf("NOVA_VOICE_MIN_AUDIO_BYTES must be >= 1, got %d", c.Voice.MinAudioBytes)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
