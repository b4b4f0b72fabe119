// Package api exposes the pipeline registry and validator over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/streamhub/pipeliner/pkg/auth"
	"github.com/streamhub/pipeliner/pkg/config"
	"github.com/streamhub/pipeliner/pkg/logging"
	"github.com/streamhub/pipeliner/pkg/middleware"
	"github.com/streamhub/pipeliner/pkg/registry"
	"github.com/streamhub/pipeliner/pkg/services"
)

// Server represents the HTTP API server
type Server struct {
	config           *config.Config
	router           *mux.Router
	server           *http.Server
	pipelineRegistry registry.PipelineRegistry
	accountService   auth.AccountService
	jwtService       *services.JWTService
	logger           logging.Logger
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, pipelineRegistry registry.PipelineRegistry, accountService auth.AccountService, jwtService *services.JWTService) *Server {
	s := &Server{
		config:           cfg,
		router:           mux.NewRouter(),
		pipelineRegistry: pipelineRegistry,
		accountService:   accountService,
		jwtService:       jwtService,
		logger: logging.New(logging.Options{
			Level:    cfg.Logging.Level,
			Format:   cfg.Logging.Format,
			Output:   cfg.Logging.Output,
			FilePath: cfg.Logging.FilePath,
		}),
	}

	s.setupRoutes()
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting HTTP server", logging.F("addr", addr), logging.F("tls", s.config.Server.TLS.Enabled))

	var err error
	if s.config.Server.TLS.Enabled {
		err = s.server.ListenAndServeTLS(
			s.config.Server.TLS.CertFile,
			s.config.Server.TLS.KeyFile,
		)
	} else {
		err = s.server.ListenAndServe()
	}

	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	authMiddleware := middleware.NewAuthMiddleware(s.accountService)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Public routes (no authentication required)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/accounts", s.handleCreateAccount).Methods(http.MethodPost, http.MethodOptions)

	// Authenticated routes
	authenticated := api.PathPrefix("").Subrouter()
	authenticated.Use(authMiddleware.Authenticate)

	pipelines := authenticated.PathPrefix("/pipelines").Subrouter()
	pipelines.HandleFunc("", s.handleListPipelines).Methods(http.MethodGet, http.MethodOptions)
	pipelines.HandleFunc("", s.handleCreatePipeline).Methods(http.MethodPost, http.MethodOptions)
	pipelines.HandleFunc("/validate", s.handleValidatePipeline).Methods(http.MethodPost, http.MethodOptions)
	pipelines.HandleFunc("/{id}", s.handleGetPipeline).Methods(http.MethodGet, http.MethodOptions)
	pipelines.HandleFunc("/{id}", s.handleUpdatePipeline).Methods(http.MethodPut, http.MethodOptions)
	pipelines.HandleFunc("/{id}", s.handleDeletePipeline).Methods(http.MethodDelete, http.MethodOptions)
	pipelines.HandleFunc("/{id}/schedule", s.handlePipelineSchedule).Methods(http.MethodGet, http.MethodOptions)

	authenticated.HandleFunc("/ws/validate", s.handleValidateSocket).Methods(http.MethodGet)

	accounts := authenticated.PathPrefix("/accounts").Subrouter()
	accounts.HandleFunc("/me", s.handleGetCurrentAccount).Methods(http.MethodGet, http.MethodOptions)

	s.router.Use(middleware.CORS)
}

// orgID resolves the organization a request operates on. Pipelines are scoped
// per organization; the editor sends the selected org in a header.
func orgID(r *http.Request) string {
	if org := r.Header.Get("X-Org-ID"); org != "" {
		return org
	}
	return "default"
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
