package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gyaneshwarpardhi/wordgraph/internal/graph"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps graph sentinel errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, graph.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, graph.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// nodeResponse is the list rendering of a node.
type nodeResponse struct {
	ID          string      `json:"id"`
	Payload     interface{} `json:"payload,omitempty"`
	Tag         string      `json:"tag"`
	OutDegree   int         `json:"out_degree"`
	AccessCount int64       `json:"access_count"`
}

func renderNodes(s *graph.Store, nodes []*graph.Node) []nodeResponse {
	out := make([]nodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeResponse{
			ID:          n.ID(),
			Payload:     n.Payload(),
			Tag:         n.Tag(),
			OutDegree:   s.OutDegree(n),
			AccessCount: s.AccessCount(n.ID()),
		})
	}
	return out
}

type edgeResponse struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Strength float64 `json:"strength"`
}

func renderEdges(edges []*graph.Edge) []edgeResponse {
	out := make([]edgeResponse, 0, len(edges))
	for _, e := range edges {
		out = append(out, edgeResponse{Source: e.SourceID(), Target: e.TargetID(), Strength: e.Strength()})
	}
	return out
}
