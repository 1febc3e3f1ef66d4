// Package server provides the HTTP REST API for brand voice generation and
// evaluation.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/voicelens/voicelens/internal/engine"
	"github.com/voicelens/voicelens/internal/llm"
	"github.com/voicelens/voicelens/internal/observability"
	"github.com/voicelens/voicelens/internal/server/ratelimit"
	"github.com/voicelens/voicelens/internal/types"
)

// Store is the persistence surface the server needs. *db.DB satisfies it.
type Store interface {
	engine.BrandResolver
	engine.ProfileStore
	engine.EvaluationStore

	CreateBrand(ctx context.Context, name, siteURL string) (*types.Brand, error)
	ListBrands(ctx context.Context) ([]*types.Brand, error)
	DeleteBrand(ctx context.Context, brandID uuid.UUID) error
	GetEvaluation(ctx context.Context, evalID uuid.UUID) (*types.VoiceEvaluation, error)
	ListEvaluations(ctx context.Context, brandID uuid.UUID, limit int) ([]*types.VoiceEvaluation, error)
}

// Config holds server configuration.
type Config struct {
	Port  int
	Model string // model used when a request does not name one
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	store       Store
	profiles    *engine.VoiceProfileEngine
	evaluations *engine.EvaluationEngine
	validator    *validator.Validate
	rateLimiter  *ratelimit.Limiter
	defaultModel string
}

// New creates a server around an already-connected store and model port.
func New(cfg Config, store Store, port llm.Port, events *observability.Logger) *Server {
	s := &Server{
		store:       store,
		profiles:    engine.NewVoiceProfileEngine(port, store, store, nil, events),
		evaluations: engine.NewEvaluationEngine(port, store, events),
		validator:    validator.New(),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.LoadConfig()),
		defaultModel: cfg.Model,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls a model provider
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /brands", s.handleCreateBrand)
	mux.HandleFunc("GET /brands", s.handleListBrands)
	mux.HandleFunc("GET /brands/{id}", s.handleGetBrand)
	mux.HandleFunc("DELETE /brands/{id}", s.handleDeleteBrand)

	mux.HandleFunc("POST /brands/{id}/voice-profiles", s.handleGenerateProfile)
	mux.HandleFunc("GET /brands/{id}/voice-profiles", s.handleListProfiles)
	mux.HandleFunc("GET /brands/{id}/voice-profiles/latest", s.handleLatestProfile)
	mux.HandleFunc("GET /brands/{id}/voice-profiles/{version}", s.handleProfileByVersion)

	mux.HandleFunc("POST /brands/{id}/evaluations", s.handleEvaluate)
	mux.HandleFunc("GET /brands/{id}/evaluations", s.handleListEvaluations)
	mux.HandleFunc("GET /evaluations/{id}", s.handleGetEvaluation)

	return mux
}

// Handler exposes the routed handler without middleware, for tests.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Start begins listening and blocks until an interrupt, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status, including database
// reachability when the store supports a ping.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if pinger, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(r.Context()); err != nil {
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded", "database": "unreachable",
			})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID identifies the client by IP address. X-Forwarded-For is
// only trustworthy behind a known proxy, so RemoteAddr is used directly.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
