// Package app bootstraps and runs the game API service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/challenge"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/config"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/evaluate"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/genai"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/history"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/logging"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/server"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/session"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/speech"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/stream"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Postgres, Redis, the generation chain, the
// speech providers and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	gen, err := buildGenerationChain(cfg.AI, logger)
	if err != nil {
		return nil, err
	}

	corpus, err := challenge.LoadCorpus(cfg.Game.RiddleFile)
	if err != nil {
		return nil, fmt.Errorf("load riddle corpus: %w", err)
	}
	logger.Info().Int("riddles", corpus.Len()).Str("file", cfg.Game.RiddleFile).Msg("riddle corpus loaded")

	sessions := session.NewRedisStore(redisClient, cfg.Game.SessionTTL, logger)
	challenges := challenge.NewRedisStore(redisClient, cfg.Game.ChallengeTTL)
	submissions := history.NewRepository(pool)

	registry := challenge.NewRegistry(gen, corpus, cfg.Game.ImageDir, submissions)
	orchestrator := challenge.NewOrchestrator(sessions, challenges, registry, gen, logger)
	evaluator := evaluate.NewEvaluator(sessions, challenges, gen, submissions, registry.Modes(), logger)

	var streamMgr *stream.Manager
	if cfg.Speech.STTAPIKey != "" {
		transcriber, err := speech.NewDeepgram(cfg.Speech.STTAPIKey, cfg.Speech.STTLanguage, cfg.Speech.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("create transcriber: %w", err)
		}
		streamMgr = stream.NewManager(transcriber, cfg.Speech.STTLanguage, cfg.Speech.SampleRate, cfg.Speech.IdleTimeout, logger)
	} else {
		logger.Warn().Msg("STT not configured (missing STT_API_KEY); transcription endpoint disabled")
	}

	var synth speech.Synthesizer
	if cfg.Speech.TTSAPIKey != "" {
		synth, err = speech.NewElevenLabs(cfg.Speech.TTSAPIKey, cfg.Speech.TTSVoice)
		if err != nil {
			return nil, fmt.Errorf("create synthesizer: %w", err)
		}
	} else {
		logger.Warn().Msg("TTS not configured (missing TTS_API_KEY); synthesis endpoint disabled")
	}

	handlers := server.NewHandlers(orchestrator, evaluator, sessions, submissions, streamMgr, synth, logger)
	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, handlers)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// buildGenerationChain turns the ordered backend names from config into a
// fail-over chain.
func buildGenerationChain(cfg config.AI, logger zerolog.Logger) (genai.Generator, error) {
	backends := make([]genai.Generator, 0, len(cfg.Backends))
	for _, name := range cfg.Backends {
		backend, err := genai.NewLLMBackend(name, cfg.Model, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("create %q backend: %w", name, err)
		}
		backends = append(backends, backend)
	}
	chain, err := genai.NewChain(logger, cfg.CallTimeout, backends...)
	if err != nil {
		return nil, err
	}
	return chain, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
