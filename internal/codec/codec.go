// Package codec converts graph snapshots to and from file formats.
package codec

import (
	"errors"
	"io"

	"github.com/gyaneshwarpardhi/wordgraph/internal/snapshot"
)

// ErrUnsupported is returned by codecs that only work in one direction.
var ErrUnsupported = errors.New("operation not supported by format")

// Codec is the interface every snapshot format implements.
type Codec interface {
	// Format returns the key this codec is registered under, e.g. "json".
	Format() string
	// Extensions lists file suffixes that select this codec, longest first.
	Extensions() []string
	Encode(w io.Writer, snap *snapshot.Snapshot) error
	Decode(r io.Reader) (*snapshot.Snapshot, error)
}

// Default returns a registry with every built-in format.
func Default() *Registry {
	r := NewRegistry()
	r.Register(JSON{})
	r.Register(JSONXZ{})
	r.Register(CSV{})
	r.Register(DOT{})
	return r
}
