package hub

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Handler exposes the hub over HTTP: the WebSocket upgrade endpoint and a
// small stats endpoint.
type Handler struct {
	hub *Hub
}

// NewHandler creates an HTTP handler around a hub.
func NewHandler(h *Hub) *Handler {
	return &Handler{hub: h}
}

// HandleConnection upgrades the request to a WebSocket connection. There is
// no authentication: any connected client may observe and mutate the shared
// state.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.Upgrade(w, r); err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
		return
	}
}

// HandleStats returns the connection count and per-connection liveness.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	clients := h.hub.ConnectionStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"connections": len(clients),
		"clients":     clients,
	})
}

// RegisterRoutes registers the hub routes with an HTTP mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleConnection)
	mux.HandleFunc("/ws/stats", h.HandleStats)
}
