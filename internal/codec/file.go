package codec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gyaneshwarpardhi/wordgraph/internal/graph"
	"github.com/gyaneshwarpardhi/wordgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/wordgraph/internal/snapshot"
)

// Resolve returns the codec named by format, or the one matching path when
// format is empty.
func (r *Registry) Resolve(format, path string) (Codec, error) {
	if format != "" {
		return r.Get(format)
	}
	return r.ForPath(path)
}

// SaveFile encodes snap into path with c. The write is not atomic: a crash
// mid-write leaves a truncated file.
func SaveFile(c Codec, path string, snap *snapshot.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.Encode(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// LoadFile decodes path with c.
func LoadFile(c Codec, path string) (*snapshot.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	snap, err := c.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return snap, nil
}

// Export captures s and encodes it to w.
func Export(c Codec, w io.Writer, s *graph.Store) error {
	err := c.Encode(w, snapshot.Capture(s))
	record(c, err)
	return err
}

// SaveStore captures s and writes it to path.
func SaveStore(c Codec, path string, s *graph.Store) error {
	err := SaveFile(c, path, snapshot.Capture(s))
	record(c, err)
	return err
}

// LoadStore reads path and rebuilds a store from it. Partial load errors are
// returned alongside the store.
func LoadStore(c Codec, path string, cacheCapacity int) (*graph.Store, error) {
	snap, err := LoadFile(c, path)
	if err != nil {
		return nil, err
	}
	return snapshot.Build(snap, cacheCapacity)
}

func record(c Codec, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SnapshotsWritten.WithLabelValues(c.Format(), status).Inc()
}
