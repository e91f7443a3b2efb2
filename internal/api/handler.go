package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/wordgraph/internal/codec"
	"github.com/gyaneshwarpardhi/wordgraph/internal/config"
	"github.com/gyaneshwarpardhi/wordgraph/internal/graph"
	"github.com/gyaneshwarpardhi/wordgraph/internal/ingest"
	"github.com/gyaneshwarpardhi/wordgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/wordgraph/internal/query"
)

const (
	maxBatchSize    = 100
	defaultTopLimit = 10
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	store  *graph.Store
	eng    *ingest.Engine
	loader *config.Loader
	codecs *codec.Registry
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(store *graph.Store, eng *ingest.Engine, loader *config.Loader, codecs *codec.Registry) http.Handler {
	h := &Handler{store: store, eng: eng, loader: loader, codecs: codecs, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/nodes", h.addNode)
	h.mux.HandleFunc("GET /v1/nodes", h.listNodes)
	h.mux.HandleFunc("GET /v1/nodes/{id}", h.getNode)
	h.mux.HandleFunc("DELETE /v1/nodes/{id}", h.removeNode)
	h.mux.HandleFunc("PUT /v1/nodes/{id}/tag", h.setTag)
	h.mux.HandleFunc("GET /v1/nodes/{id}/neighbors", h.neighbors)

	h.mux.HandleFunc("POST /v1/edges", h.addEdge)
	h.mux.HandleFunc("PUT /v1/edges", h.updateEdge)
	h.mux.HandleFunc("DELETE /v1/edges", h.removeEdge)
	h.mux.HandleFunc("GET /v1/edges", h.listEdges)

	h.mux.HandleFunc("GET /v1/top", h.top)
	h.mux.HandleFunc("GET /v1/traverse/{id}", h.traverse)
	h.mux.HandleFunc("GET /v1/path", h.path)
	h.mux.HandleFunc("GET /v1/components", h.components)
	h.mux.HandleFunc("POST /v1/normalize", h.normalize)
	h.mux.HandleFunc("GET /v1/stats", h.stats)

	h.mux.HandleFunc("POST /v1/documents", h.ingestDocument)
	h.mux.HandleFunc("POST /v1/documents/batch", h.ingestBatch)

	h.mux.HandleFunc("POST /v1/snapshot", h.saveSnapshot)
	h.mux.HandleFunc("GET /v1/export", h.export)

	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return false
	}
	return true
}

// queryInt reads an integer query parameter, falling back to def
// when it is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

type nodeRequest struct {
	ID      string      `json:"id"`
	Payload interface{} `json:"payload"`
	Tag     string      `json:"tag"`
}

// POST /v1/nodes: insert a node if absent. Removed ids cannot be reused.
func (h *Handler) addNode(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.AddNode(req.ID, req.Payload); err != nil {
		writeStoreError(w, err)
		return
	}
	if h.store.Removed(req.ID) {
		writeError(w, http.StatusConflict, fmt.Sprintf("node %q was removed", req.ID))
		return
	}
	if req.Tag != "" {
		n, err := h.store.GetNode(req.ID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		n.SetTag(req.Tag)
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

// GET /v1/nodes?filter=&limit=: list live nodes, optionally filtered.
func (h *Handler) listNodes(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	var f *query.Filter
	if src := r.URL.Query().Get("filter"); src != "" {
		if f, err = query.Compile(src); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	nodes, err := query.SelectNodes(h.store, f)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	total := len(nodes)
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total": total,
		"nodes": renderNodes(h.store, nodes),
	})
}

// GET /v1/nodes/{id}: full view of one node. Counts as an access.
func (h *Handler) getNode(w http.ResponseWriter, r *http.Request) {
	view, err := h.store.Describe(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DELETE /v1/nodes/{id}
func (h *Handler) removeNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.RemoveNode(id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"removed": id})
}

// PUT /v1/nodes/{id}/tag
func (h *Handler) setTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tag string `json:"tag"`
	}
	if !decode(w, r, &req) {
		return
	}
	n, err := h.store.GetNode(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	n.SetTag(req.Tag)
	writeJSON(w, http.StatusOK, map[string]string{"id": n.ID(), "tag": req.Tag})
}

// GET /v1/nodes/{id}/neighbors?direction=all|next|previous&limit=
func (h *Handler) neighbors(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hasLimit := r.URL.Query().Has("limit")

	var nbs []graph.Neighbor
	switch dir := r.URL.Query().Get("direction"); dir {
	case "", "all":
		nbs, err = h.store.Neighbors(id)
		if err == nil && hasLimit {
			if limit < 1 {
				err = fmt.Errorf("%w: limit must be at least 1, got %d", graph.ErrInvalidArgument, limit)
			} else if len(nbs) > limit {
				nbs = nbs[:limit]
			}
		}
	case "next":
		if hasLimit {
			nbs, err = h.store.TopNextNeighbors(id, limit)
		} else {
			nbs, err = h.store.NextNeighbors(id)
		}
	case "previous":
		if hasLimit {
			nbs, err = h.store.TopPreviousNeighbors(id, limit)
		} else {
			nbs, err = h.store.PreviousNeighbors(id)
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown direction %q", dir))
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if nbs == nil {
		nbs = []graph.Neighbor{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "neighbors": nbs})
}

type edgeRequest struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Strength *float64 `json:"strength"`
}

func (e edgeRequest) strength() float64 {
	if e.Strength == nil {
		return 1.0
	}
	return *e.Strength
}

// POST /v1/edges: create or overwrite source -> target.
func (h *Handler) addEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.AddEdge(req.Source, req.Target, req.strength()); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, edgeResponse{Source: req.Source, Target: req.Target, Strength: req.strength()})
}

// PUT /v1/edges: set the strength of an existing edge.
func (h *Handler) updateEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Strength == nil {
		writeError(w, http.StatusBadRequest, "strength is required")
		return
	}
	if err := h.store.UpdateEdgeStrength(req.Source, req.Target, *req.Strength); err != nil {
		writeStoreError(w, err)
		return
	}
	exists, err := h.store.EdgeExists(req.Source, req.Target)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"updated": exists})
}

// DELETE /v1/edges?source=&target=
func (h *Handler) removeEdge(w http.ResponseWriter, r *http.Request) {
	src, dst := r.URL.Query().Get("source"), r.URL.Query().Get("target")
	if err := h.store.RemoveEdge(src, dst); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"source": src, "target": dst})
}

// GET /v1/edges
func (h *Handler) listEdges(w http.ResponseWriter, r *http.Request) {
	edges := h.store.Edges()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total": len(edges),
		"edges": renderEdges(edges),
	})
}

// GET /v1/top?limit=: nodes by out-degree.
func (h *Handler) top(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultTopLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	nodes, err := h.store.TopNodes(limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"nodes": renderNodes(h.store, nodes)})
}

// GET /v1/traverse/{id}: breadth-first visit order.
func (h *Handler) traverse(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.BreadthFirst(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// GET /v1/path?from=&to=: strength-weighted shortest path.
func (h *Handler) path(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	p, err := h.store.ShortestPath(from, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	resp := map[string]interface{}{"path": p, "reachable": len(p) > 0}
	if len(p) > 0 {
		resp["cost"] = h.store.PathCost(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/components
func (h *Handler) components(w http.ResponseWriter, r *http.Request) {
	comps := h.store.ConnectedComponents()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(comps),
		"components": comps,
	})
}

// POST /v1/normalize
func (h *Handler) normalize(w http.ResponseWriter, r *http.Request) {
	before := h.store.MaxStrength()
	h.store.NormalizeEdgeStrengths()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"previous_max_strength": before,
		"max_strength":          h.store.MaxStrength(),
	})
}

// GET /v1/stats
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}

// POST /v1/documents: synchronous single-document ingestion.
func (h *Handler) ingestDocument(w http.ResponseWriter, r *http.Request) {
	var doc ingest.Document
	if !decode(w, r, &doc) {
		return
	}
	if doc.Text == "" {
		writeError(w, http.StatusBadRequest, "document text is required")
		return
	}
	doc.ReceivedAt = time.Now()

	res, err := h.eng.ProcessSync(r.Context(), &doc)
	if err != nil {
		status := http.StatusGatewayTimeout
		if errors.Is(err, ingest.ErrQueueFull) {
			status = http.StatusTooManyRequests
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /v1/documents/batch: async batch ingestion (up to 100 documents).
func (h *Handler) ingestBatch(w http.ResponseWriter, r *http.Request) {
	var docs []*ingest.Document
	if !decode(w, r, &docs) {
		return
	}
	if len(docs) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one document")
		return
	}
	if len(docs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(docs), maxBatchSize))
		return
	}

	now := time.Now()
	jobID := uuid.New().String()
	queued := 0
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		doc.ReceivedAt = now
		if h.eng.ProcessAsync(doc) {
			queued++
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":   jobID,
		"total":    len(docs),
		"queued":   queued,
		"rejected": len(docs) - queued,
	})
}

// POST /v1/snapshot: write the graph to the configured snapshot path.
func (h *Handler) saveSnapshot(w http.ResponseWriter, r *http.Request) {
	conf := h.loader.Config().Snapshot
	if conf.Path == "" {
		writeError(w, http.StatusBadRequest, "snapshot.path is not configured")
		return
	}
	c, err := h.codecs.Resolve(conf.Format, conf.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := codec.SaveStore(c, conf.Path, h.store); err != nil {
		slog.Error("snapshot failed", "path", conf.Path, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.Info("snapshot written", "path", conf.Path, "format", c.Format())
	writeJSON(w, http.StatusOK, map[string]string{"path": conf.Path, "format": c.Format()})
}

var contentTypes = map[string]string{
	"json":    "application/json",
	"json.xz": "application/x-xz",
	"csv":     "text/csv",
	"dot":     "text/vnd.graphviz",
}

// GET /v1/export?format=: stream the graph in any registered format.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	c, err := h.codecs.Get(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ct, ok := contentTypes[c.Format()]
	if !ok {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	if err := codec.Export(c, w, h.store); err != nil {
		slog.Warn("export failed mid-stream", "format", c.Format(), "err", err)
	}
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 if the ingest queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}
