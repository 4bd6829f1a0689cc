// Package server exposes outline extraction over HTTP and WebSocket.
package server

import (
	"net/http"

	"github.com/MeKo-Tech/docoutline/internal/layout"
	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	engine      *outline.Engine
	opener      layout.Opener
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	rateLimiter *RateLimiter
	version     string
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
	Options     outline.Options
	Password    string
	RateLimit   RateLimitConfig
	Version     string
}

// Opener returns the document opener uploads are read with.
func (c Config) Opener() layout.Opener {
	return layout.FileOpener{Password: c.Password}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewServer creates a server from config.
func NewServer(config Config) (*Server, error) {
	if err := config.Options.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		engine:      outline.New(config.Options),
		opener:      config.Opener(),
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
		version:     config.Version,
	}
	if s.maxUploadMB <= 0 {
		s.maxUploadMB = 50
	}
	if config.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(config.RateLimit)
	}
	return s, nil
}

// Close releases server resources.
func (s *Server) Close() error {
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/outline", s.corsMiddleware(s.requestIDMiddleware(s.rateLimitMiddleware(s.outlineHandler))))
	mux.HandleFunc("/v1/ws", s.outlineWebSocketHandler)
}

// Handler returns a mux with all routes installed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}
