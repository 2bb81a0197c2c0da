// Package server wires the HTTP surface: REST endpoints for the gameplay
// loop and the WebSocket endpoint for live transcription.
package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/config"
	"github.com/Nindenkawe/Bavuga-Nti-bavuga/internal/logging"
)

// WSUpgrader handles WebSocket upgrades for the transcription endpoint.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: implement proper origin checking for production
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client, h *Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				logger.Warn().Err(err).Msg("postgres health check failed")
			}
		}
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			logger.Error().Err(err).Msg("redis health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/challenge", h.GetChallenge)
	mux.HandleFunc("POST /v1/reveal", h.Reveal)
	mux.HandleFunc("POST /v1/answer", h.Answer)
	mux.HandleFunc("GET /v1/hint", h.Hint)
	mux.HandleFunc("POST /v1/synthesize", h.Synthesize)
	mux.HandleFunc("GET /v1/score", h.Score)
	mux.HandleFunc("GET /ws/transcribe", h.Transcribe)

	// Serve challenge images referenced by image-description prompts.
	if cfg.Game.ImageDir != "" {
		prefix := "/" + strings.Trim(cfg.Game.ImageDir, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Game.ImageDir))))
	}

	handler := corsMiddleware(cfg.CORS, requestLogger(logger, mux))

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}
}

// requestLogger tags each request with an id and makes the logger available
// downstream via the request context.
func requestLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.With().
			Str("request_id", uuid.NewString()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		ctx := logging.IntoContext(r.Context(), reqLogger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// corsMiddleware applies the configured CORS policy to every route.
func corsMiddleware(cfg config.CORS, next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", headers)
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
