// Package server provides the HTTP REST API for the outreach architect.
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

	"github.com/google/uuid"

	"github.com/jonathan/outreach-architect/internal/config"
	"github.com/jonathan/outreach-architect/internal/db"
	"github.com/jonathan/outreach-architect/internal/dispatch"
	"github.com/jonathan/outreach-architect/internal/enrich"
	"github.com/jonathan/outreach-architect/internal/fetch"
	"github.com/jonathan/outreach-architect/internal/generation"
	"github.com/jonathan/outreach-architect/internal/pipeline"
	"github.com/jonathan/outreach-architect/internal/quality"
	"github.com/jonathan/outreach-architect/internal/server/ratelimit"
	"github.com/jonathan/outreach-architect/internal/types"
)

// maxSyncBatch is the largest lead batch processed synchronously; anything
// bigger runs in the background.
const maxSyncBatch = 5

// Store is the persistence surface the API handlers need.
type Store interface {
	CreateLead(ctx context.Context, req *types.CreateLeadRequest) (*types.Lead, error)
	GetLead(ctx context.Context, id uuid.UUID) (*types.Lead, error)
	ListLeads(ctx context.Context, filters db.LeadFilters) ([]types.Lead, error)
	CountLeads(ctx context.Context) (int, error)
	DeleteLead(ctx context.Context, id uuid.UUID) error

	GetCampaign(ctx context.Context, id uuid.UUID) (*types.OutreachCampaign, error)
	ListCampaigns(ctx context.Context, filters db.CampaignFilters) ([]types.OutreachCampaign, error)
	MarkCampaignSent(ctx context.Context, id uuid.UUID) error
	RecordOpen(ctx context.Context, id uuid.UUID) error
	RecordClick(ctx context.Context, id uuid.UUID) error
	RecordReply(ctx context.Context, id uuid.UUID, content string) error
	GetCampaignStats(ctx context.Context) (*db.CampaignStats, error)

	CreateFollowUp(ctx context.Context, followUp *types.FollowUp) error
	ListFollowUps(ctx context.Context, campaignID uuid.UUID) ([]types.FollowUp, error)
}

// Batcher runs the outreach pipeline over a set of leads.
type Batcher interface {
	ProcessBatch(ctx context.Context, leadIDs []uuid.UUID, opts pipeline.Options) ([]types.ProcessResult, *types.BatchStats, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	batcher     Batcher
	generator   generation.Service
	sender      dispatch.Sender
	rateLimiter *ratelimit.Limiter

	database *db.DB
}

// Config holds server configuration
type Config struct {
	Port int
	App  config.Config
}

// New creates a fully wired server instance.
func New(cfg Config) (*Server, error) {
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.App.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}

	generator, err := generation.NewGeminiService(ctx, cfg.App.APIKey, cfg.App.Verbose)
	if err != nil {
		database.Close()
		return nil, err
	}

	fetcher := fetch.NewFetcher()
	enricher := enrich.NewEnricher(
		enrich.NewWebProfileSource(fetcher, cfg.App.UseBrowser, cfg.App.Verbose),
		enrich.NewWebIntelSource(fetcher, cfg.App.NewsAPIKey),
	)

	var sender dispatch.Sender = dispatch.LogSender{}
	if cfg.App.SendWebhook != "" {
		sender = dispatch.NewWebhookSender(cfg.App.SendWebhook, cfg.App.FromEmail, cfg.App.FromName)
	}

	evaluator := quality.NewEvaluator(cfg.App.QualityPassThreshold)
	processor := pipeline.NewProcessor(database, enricher, generator, evaluator, sender, cfg.App)

	s := newServer(database, processor, generator, sender)
	s.database = database
	s.httpServer.Addr = fmt.Sprintf(":%d", cfg.Port)
	return s, nil
}

// newServer wires the router around the given collaborators.
func newServer(store Store, batcher Batcher, generator generation.Service, sender dispatch.Sender) *Server {
	s := &Server{
		store:       store,
		batcher:     batcher,
		generator:   generator,
		sender:      sender,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Lead endpoints
	mux.HandleFunc("POST /leads", s.handleCreateLead)
	mux.HandleFunc("GET /leads", s.handleListLeads)
	mux.HandleFunc("GET /leads/{id}", s.handleGetLead)
	mux.HandleFunc("DELETE /leads/{id}", s.handleDeleteLead)

	// Campaign endpoints
	mux.HandleFunc("POST /campaigns", s.handleCreateCampaigns)
	mux.HandleFunc("GET /campaigns", s.handleListCampaigns)
	mux.HandleFunc("GET /campaigns/{id}", s.handleGetCampaign)
	mux.HandleFunc("POST /campaigns/{id}/send", s.handleSendCampaign)

	// Follow-up endpoints
	mux.HandleFunc("GET /campaigns/{id}/followups", s.handleListFollowUps)
	mux.HandleFunc("POST /campaigns/{id}/followups", s.handleCreateFollowUp)

	// Engagement tracking
	mux.HandleFunc("POST /campaigns/{id}/events", s.handleTrackEvent)

	// Analytics
	mux.HandleFunc("GET /analytics/stats", s.handleAnalytics)

	s.httpServer = &http.Server{
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for synchronous batch runs
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
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
	if s.generator != nil {
		_ = s.generator.Close()
	}
	if s.database != nil {
		s.database.Close()
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

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r))
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
			}
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
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

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "outreach-architect",
	})
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

// pathID parses the {id} path segment as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

// clientID extracts the client identifier from the request. For now this is
// the IP address from RemoteAddr.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
