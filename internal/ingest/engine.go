package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/wordgraph/internal/config"
	"github.com/gyaneshwarpardhi/wordgraph/internal/graph"
	"github.com/gyaneshwarpardhi/wordgraph/internal/metrics"
)

// ErrQueueFull is returned when a document cannot be enqueued.
var ErrQueueFull = errors.New("ingest queue full")

// Engine turns documents into graph updates: every token becomes a node
// tagged with its word class, consecutive tokens are linked by an edge that
// is reinforced each time the pair recurs, and every token of a sentence
// records that sentence's structure label.
type Engine struct {
	store     *graph.Store
	pool      *workerPool[*work]
	timeout   time.Duration
	queueCap  int
	increment atomic.Uint64 // float64 bits
}

type work struct {
	doc     *Document
	resultC chan *Result
}

// New creates an Engine over store using conf and starts its worker pool.
func New(ctx context.Context, store *graph.Store, conf config.IngestConf) *Engine {
	e := &Engine{
		store:    store,
		timeout:  time.Duration(conf.TimeoutMs) * time.Millisecond,
		queueCap: conf.QueueDepth,
	}
	e.SetIncrement(conf.EdgeIncrement)
	e.pool = newWorkerPool[*work](ctx, conf.Workers, conf.QueueDepth, func(ctx context.Context, w *work) {
		res := e.Ingest(ctx, w.doc)
		if w.resultC != nil {
			w.resultC <- res
		}
	})
	return e
}

// SetIncrement changes the strength added per repeated token pair. Used on
// config hot reload.
func (e *Engine) SetIncrement(v float64) {
	e.increment.Store(math.Float64bits(v))
}

func (e *Engine) Increment() float64 {
	return math.Float64frombits(e.increment.Load())
}

// ProcessSync ingests doc on the pool and waits for the result.
func (e *Engine) ProcessSync(ctx context.Context, doc *Document) (*Result, error) {
	prepare(doc)
	resultC := make(chan *Result, 1)
	if !e.pool.Submit(&work{doc: doc, resultC: resultC}) {
		metrics.DocumentsDropped.Inc()
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.queueCap)
	}
	metrics.DocumentsEnqueued.Inc()

	select {
	case res := <-resultC:
		return res, nil
	case <-time.After(e.timeout):
		return nil, fmt.Errorf("ingest of %s timed out after %v", doc.ID, e.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProcessAsync enqueues doc for background ingestion. Returns false if the queue is full.
func (e *Engine) ProcessAsync(doc *Document) bool {
	prepare(doc)
	if !e.pool.Submit(&work{doc: doc}) {
		metrics.DocumentsDropped.Inc()
		return false
	}
	metrics.DocumentsEnqueued.Inc()
	return true
}

// QueueUtilization returns queue used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

// Shutdown drains the pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}

func prepare(doc *Document) {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.ReceivedAt.IsZero() {
		doc.ReceivedAt = time.Now()
	}
}

// Ingest applies doc to the store on the calling goroutine.
func (e *Engine) Ingest(ctx context.Context, doc *Document) *Result {
	prepare(doc)
	start := time.Now()
	res := &Result{DocumentID: doc.ID}
	err := e.ingest(ctx, doc, res)
	res.DurationMs = time.Since(start).Milliseconds()

	status := "success"
	if err != nil {
		status = "error"
		res.Error = err.Error()
		slog.Warn("ingest failed", "document", doc.ID, "source", doc.Source, "err", err)
	}
	metrics.DocumentsIngested.WithLabelValues(status).Inc()
	metrics.TokensIngested.Add(float64(res.Tokens))
	metrics.IngestDuration.Observe(float64(res.DurationMs))
	return res
}

func (e *Engine) ingest(ctx context.Context, doc *Document, res *Result) error {
	inc := e.Increment()
	prev := ""
	var sentence []string
	for _, tok := range Tokenize(doc.Text) {
		if err := ctx.Err(); err != nil {
			return err
		}
		existed := e.store.Has(tok)
		if err := e.store.AddNode(tok, tok); err != nil {
			return err
		}
		n, err := e.store.GetNode(tok)
		if errors.Is(err, graph.ErrNotFound) {
			// Removed tokens stay out of the graph; start a new chain.
			prev = ""
			continue
		}
		if err != nil {
			return err
		}
		if !existed {
			res.NewNodes++
		}
		n.SetTag(Tag(tok))
		if prev != "" {
			if _, err := e.store.ReinforceEdge(prev, tok, inc); err != nil && !errors.Is(err, graph.ErrNotFound) {
				return err
			}
		}
		prev = tok
		res.Tokens++

		sentence = append(sentence, tok)
		if isSentenceEnd(tok) {
			e.recordStructure(sentence)
			res.Sentences++
			sentence = sentence[:0]
		}
	}
	if len(sentence) > 0 {
		e.recordStructure(sentence)
		res.Sentences++
	}
	return nil
}

func (e *Engine) recordStructure(sentence []string) {
	label := SentenceStructure(sentence)
	if label == "" {
		return
	}
	for _, tok := range sentence {
		if n, err := e.store.GetNode(tok); err == nil {
			n.AddSentenceStructure(label)
		}
	}
}
