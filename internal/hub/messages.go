package hub

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Markrodriguez1105/Live-Score-Board/internal/scores"
)

// Message types carried in the wire envelope.
const (
	// TypeState is the server-to-client snapshot message, sent to one
	// client on connect and to all clients after every accepted mutation.
	TypeState = "STATE"

	// Client-to-server intents.
	TypeSetIndex    = "SET_INDEX"
	TypeSetIdle     = "SET_IDLE"
	TypeSetCategory = "SET_CATEGORY"
)

// Envelope is the JSON frame exchanged in both directions: a type tag and a
// type-specific payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// IndexIntent is the decoded form of a SET_INDEX payload. The wire shape is
// either a bare integer (legacy, index only) or an object carrying the index
// and an optional replacement candidate list; both decode into this one
// struct so the ambiguity never travels past the boundary.
type IndexIntent struct {
	Index      int
	Candidates []scores.CandidateRecord // nil when the payload carried none
}

// CategoryIntent is the decoded form of a SET_CATEGORY payload.
type CategoryIntent struct {
	Category   string
	Candidates []scores.CandidateRecord
}

// decodeIndexIntent accepts both SET_INDEX wire shapes. Anything else is a
// malformed intent.
func decodeIndexIntent(data json.RawMessage) (IndexIntent, error) {
	var body struct {
		Index      *int                     `json:"index"`
		Candidates []scores.CandidateRecord `json:"candidates"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Index == nil {
			return IndexIntent{}, fmt.Errorf("missing index field")
		}
		return IndexIntent{Index: *body.Index, Candidates: body.Candidates}, nil
	}

	// Legacy shape: a bare number meaning "set index only".
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		return IndexIntent{Index: int(n)}, nil
	}

	return IndexIntent{}, fmt.Errorf("payload is neither an object nor a number")
}

// decodeCategoryIntent decodes a SET_CATEGORY payload. Non-object payloads
// are rejected.
func decodeCategoryIntent(data json.RawMessage) (CategoryIntent, error) {
	t := strings.TrimSpace(string(data))
	if t == "" || t[0] != '{' {
		return CategoryIntent{}, fmt.Errorf("payload is not an object")
	}
	var body struct {
		Category   string                   `json:"category"`
		Candidates []scores.CandidateRecord `json:"candidates"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return CategoryIntent{}, fmt.Errorf("payload is not an object: %w", err)
	}
	return CategoryIntent{Category: body.Category, Candidates: body.Candidates}, nil
}

// coerceBool applies JavaScript truthiness to a SET_IDLE payload: booleans
// pass through, numbers are truthy when non-zero, strings when non-empty,
// null is false, and any valid object or array is true.
func coerceBool(data json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return b, nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		return n != 0, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s != "", nil
	}

	t := strings.TrimSpace(string(data))
	if t == "" || t == "null" {
		return false, nil
	}
	if (t[0] == '{' || t[0] == '[') && json.Valid(data) {
		return true, nil
	}
	return false, fmt.Errorf("payload is not coercible to a boolean")
}
