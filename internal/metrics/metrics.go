package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordgraph_cache_hits_total",
		Help: "Node lookups answered by the recency cache.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordgraph_cache_misses_total",
		Help: "Node lookups that fell through to the authoritative table.",
	})

	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordgraph_cache_evictions_total",
		Help: "Least-recently-used entries evicted to respect the cache capacity.",
	})

	StoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordgraph_store_operations_total",
		Help: "Store operations, labelled by operation and result.",
	}, []string{"op", "result"})

	LiveNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wordgraph_live_nodes",
		Help: "Non-tombstoned nodes in the most recently sampled store.",
	})

	LiveEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wordgraph_live_edges",
		Help: "Edges between live nodes in the most recently sampled store.",
	})

	DocumentsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordgraph_documents_enqueued_total",
		Help: "Documents placed on the ingestion queue.",
	})

	DocumentsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordgraph_documents_ingested_total",
		Help: "Documents fully ingested, labelled by status.",
	}, []string{"status"})

	DocumentsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordgraph_documents_dropped_total",
		Help: "Documents rejected because the ingestion queue was full.",
	})

	TokensIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordgraph_tokens_ingested_total",
		Help: "Tokens turned into node/edge updates.",
	})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wordgraph_ingest_duration_ms",
		Help:    "Per-document ingestion latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wordgraph_ingest_queue_utilization_ratio",
		Help: "Current ingestion queue utilization (0–1).",
	})

	SnapshotsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordgraph_snapshots_written_total",
		Help: "Snapshot exports, labelled by format and status.",
	}, []string{"format", "status"})
)

// Result labels for StoreOps.
const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultNotFound = "not_found"
)
