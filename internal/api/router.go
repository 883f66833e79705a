package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/equitylens/equitylens/internal/api/handlers"
	"github.com/equitylens/equitylens/pkg/logger"
	"github.com/equitylens/equitylens/pkg/redis"
)

// RateLimiter gates API requests per client.
type RateLimiter interface {
	Allow(ctx context.Context, cfg redis.RateLimitConfig) (bool, int, error)
}

// NewRouter creates and configures the HTTP router. limiter may be nil
// to serve without throttling.
func NewRouter(scoreHandler *handlers.ScoreHandler, limiter RateLimiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()
	if limiter != nil {
		api.Use(rateLimitMiddleware(limiter, log))
	}

	api.HandleFunc("/score/{ticker}", scoreHandler.GetScore).Methods("GET")
	api.HandleFunc("/score/{ticker}/opportunity", scoreHandler.GetOpportunity).Methods("GET")
	api.HandleFunc("/score/{ticker}/diag", scoreHandler.GetDiagnostics).Methods("GET")
	api.HandleFunc("/score/{ticker}/history", scoreHandler.GetHistory).Methods("GET")
	api.HandleFunc("/scores", scoreHandler.GetScores).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "equitylens-api",
	})
}

// rateLimitMiddleware rejects clients that exceed the per-IP request
// budget. Limiter failures let the request through.
func rateLimitMiddleware(limiter RateLimiter, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg := redis.APIRateLimit
			cfg.Key = clientIP(r)

			allowed, _, err := limiter.Allow(r.Context(), cfg)
			if err != nil {
				log.WithError(err).WithField("client", cfg.Key).Warn("Rate limit check failed")
			} else if !allowed {
				log.WithField("client", cfg.Key).Warn("Rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from the remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
