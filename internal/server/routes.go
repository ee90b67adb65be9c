package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Markrodriguez1105/Live-Score-Board/internal/scores"
)

// scoresResponse is the payload of GET /api/scores: a freshly extracted
// candidate list for one category. The controller attaches it to a
// SET_CATEGORY or SET_INDEX intent; the server itself never mutates state
// from this route.
type scoresResponse struct {
	Category   string                   `json:"category"`
	Candidates []scores.CandidateRecord `json:"candidates"`
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", s.handleGetState)
	mux.HandleFunc("/api/categories", s.handleGetCategories)
	mux.HandleFunc("/api/scores", s.handleGetScores)
}

// handleGetState returns the current presentation snapshot. Readers must
// clamp out-of-range indices themselves; the snapshot is served as-is.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.store.Snapshot())
}

// handleGetCategories lists the spreadsheet's sheet tabs.
func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.sheets == nil {
		http.Error(w, "No spreadsheet configured", http.StatusServiceUnavailable)
		return
	}

	categories, err := s.sheets.ListSheets(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list sheets")
		http.Error(w, "Failed to list categories", http.StatusBadGateway)
		return
	}
	writeJSON(w, categories)
}

// handleGetScores fetches the grid for one category and extracts candidate
// records from it.
func (s *Server) handleGetScores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.sheets == nil {
		http.Error(w, "No spreadsheet configured", http.StatusServiceUnavailable)
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		http.Error(w, "category is required", http.StatusBadRequest)
		return
	}

	grid, err := s.sheets.FetchGrid(r.Context(), category)
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("failed to fetch sheet")
		http.Error(w, "Failed to fetch scores", http.StatusBadGateway)
		return
	}

	writeJSON(w, scoresResponse{
		Category:   category,
		Candidates: scores.Extract(grid),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
