package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/gyaneshwarpardhi/wordgraph/internal/snapshot"
)

// JSON writes snapshots as indented JSON.
type JSON struct{}

func (JSON) Format() string       { return "json" }
func (JSON) Extensions() []string { return []string{".json"} }

func (JSON) Encode(w io.Writer, snap *snapshot.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode json snapshot: %w", err)
	}
	return nil
}

func (JSON) Decode(r io.Reader) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode json snapshot: %w", err)
	}
	if snap.Version != "" && snap.Version != snapshot.Version {
		return nil, fmt.Errorf("decode json snapshot: unsupported version %q", snap.Version)
	}
	return &snap, nil
}

// JSONXZ is JSON wrapped in an xz stream.
type JSONXZ struct{}

func (JSONXZ) Format() string       { return "json.xz" }
func (JSONXZ) Extensions() []string { return []string{".json.xz", ".xz"} }

func (JSONXZ) Encode(w io.Writer, snap *snapshot.Snapshot) error {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("xz writer: %w", err)
	}
	if err := (JSON{}).Encode(xw, snap); err != nil {
		xw.Close()
		return err
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("xz close: %w", err)
	}
	return nil
}

func (JSONXZ) Decode(r io.Reader) (*snapshot.Snapshot, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("xz reader: %w", err)
	}
	return JSON{}.Decode(xr)
}
