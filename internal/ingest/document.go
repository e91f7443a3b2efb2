package ingest

import "time"

// Document is the input model for text ingestion.
type Document struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"` // file name, URL, etc.
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"-"`
}

// Result is the outcome of ingesting a single document.
type Result struct {
	DocumentID string `json:"document_id"`
	Tokens     int    `json:"tokens"`
	Sentences  int    `json:"sentences"`
	NewNodes   int    `json:"new_nodes"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}
