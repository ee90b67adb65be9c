package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Markrodriguez1105/Live-Score-Board/internal/config"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/hub"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/scores"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/sheets"
	"github.com/Markrodriguez1105/Live-Score-Board/internal/state"
)

func newTestServer(t *testing.T, sheetsClient *sheets.Client) (*httptest.Server, *state.Store) {
	t.Helper()

	cfg := &config.Config{Port: "0", Log: config.LogConfig{Level: "error"}}
	store := state.NewStore()

	h := hub.New(store, hub.DefaultConfig(), hub.NewMetrics(prometheus.NewRegistry()), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	srv := httptest.NewServer(New(cfg, store, hub.NewHandler(h), sheetsClient).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, store
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := getJSON(t, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_GetState(t *testing.T) {
	srv, store := newTestServer(t, nil)
	store.SetCategory("Talent", []scores.CandidateRecord{{Name: "CANDIDATE 1", Scores: []float64{88}, Aggregate: 88}})
	store.SetIndex(1, nil)

	var snap state.Snapshot
	resp := getJSON(t, srv.URL+"/api/state", &snap)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, "Talent", snap.Category)
	require.Len(t, snap.Candidates, 1)
}

func TestServer_GetState_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/state", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_NoSpreadsheetConfigured(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := getJSON(t, srv.URL+"/api/categories", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = getJSON(t, srv.URL+"/api/scores?category=Swimwear", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_GetScores(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v4/spreadsheets/sheet-id/values/Swimwear":
			w.Write([]byte(`{"values": [
				["Swimwear"],
				["CANDIDATE 1", "CANDIDATE 2"],
				["JUDGE 1", "80", "90"],
				["JUDGE 2", "85", "95"]
			]}`))
		case "/v4/spreadsheets/sheet-id":
			w.Write([]byte(`{"sheets": [{"properties": {"title": "Swimwear"}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer api.Close()

	client := sheets.NewClient(sheets.Config{BaseURL: api.URL, SpreadsheetID: "sheet-id"})
	srv, _ := newTestServer(t, client)

	var categories []string
	resp := getJSON(t, srv.URL+"/api/categories", &categories)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Swimwear"}, categories)

	var body struct {
		Category   string                   `json:"category"`
		Candidates []scores.CandidateRecord `json:"candidates"`
	}
	resp = getJSON(t, srv.URL+"/api/scores?category=Swimwear", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Swimwear", body.Category)
	require.Len(t, body.Candidates, 2)
	assert.Equal(t, 82.5, body.Candidates[0].Aggregate)
	assert.Equal(t, 92.5, body.Candidates[1].Aggregate)
}

func TestServer_GetScores_MissingCategory(t *testing.T) {
	client := sheets.NewClient(sheets.Config{BaseURL: "http://127.0.0.1:0", SpreadsheetID: "sheet-id"})
	srv, _ := newTestServer(t, client)

	resp := getJSON(t, srv.URL+"/api/scores", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
