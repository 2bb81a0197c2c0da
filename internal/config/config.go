package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"bavuga-nti-bavuga"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	AI       AI
	Speech   Speech
	Game     Game
	CORS     CORS
}

// Postgres captures connection info for the submission history database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds session and challenge store configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// AI configures the generation/grading backends, tried in order.
type AI struct {
	Backends    []string      `env:"AI_BACKENDS" envSeparator:"," envDefault:"gemini"`
	Model       string        `env:"AI_MODEL" envDefault:"gemini-2.0-flash"`
	APIKey      string        `env:"AI_API_KEY"`
	CallTimeout time.Duration `env:"AI_CALL_TIMEOUT" envDefault:"15s"`
}

// Speech configures the streaming STT and REST TTS providers.
type Speech struct {
	STTAPIKey   string        `env:"STT_API_KEY"`
	STTLanguage string        `env:"STT_LANGUAGE" envDefault:"rw"`
	SampleRate  int           `env:"STT_SAMPLE_RATE" envDefault:"48000"`
	TTSAPIKey   string        `env:"TTS_API_KEY"`
	TTSVoice    string        `env:"TTS_VOICE" envDefault:"default"`
	IdleTimeout time.Duration `env:"STREAM_IDLE_TIMEOUT" envDefault:"60s"`
}

// Game groups gameplay defaults.
type Game struct {
	RiddleFile   string        `env:"RIDDLE_FILE" envDefault:"riddles.json"`
	ImageDir     string        `env:"IMAGE_DIR" envDefault:"sampleimg"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	ChallengeTTL time.Duration `env:"CHALLENGE_TTL" envDefault:"10m"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
