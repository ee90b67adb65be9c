// Package server is the HTTP shell around the hub: WebSocket upgrade,
// REST endpoints for controllers, metrics, health, and the static bundle.
package server

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/Markrodriguez1105/Live-Score-Board/internal/config"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/hub"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/sheets"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/state"
)

// Server wires the HTTP routes around the core components.
type Server struct {
	cfg    *config.Config
	store  *state.Store
	hub    *hub.Handler
	sheets *sheets.Client // nil when no spreadsheet is configured
}

// New creates a server. sheetsClient may be nil; the score-fetch routes then
// respond with 503.
func New(cfg *config.Config, store *state.Store, hubHandler *hub.Handler, sheetsClient *sheets.Client) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		hub:    hubHandler,
		sheets: sheetsClient,
	}
}

// Handler builds the full route tree wrapped with CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket hub
	s.hub.RegisterRoutes(mux)

	// Controller REST surface
	s.registerAPIRoutes(mux)

	// Operational endpoints
	mux.Handle("/metrics", promhttp.Handler())
	setupHealthCheck(mux)

	// Viewer/admin bundle
	if s.cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}

// HTTPServer returns the configured HTTP/2-capable server.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.Port),
		Handler: h2c.NewHandler(s.Handler(), &http2.Server{}),
	}
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
