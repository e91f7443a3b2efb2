package snapshot

import (
	"errors"
	"fmt"

	"github.com/gyaneshwarpardhi/wordgraph/internal/graph"
)

// Version is written into every snapshot produced by Capture.
const Version = "v1"

// Snapshot is the whole-graph interchange form: the authoritative nodes and
// edges plus the running maximum strength. Cache state is never captured.
type Snapshot struct {
	Version     string  `json:"version"`
	MaxStrength float64 `json:"max_strength"`
	Nodes       []Node  `json:"nodes"`
	Edges       []Edge  `json:"edges"`
}

type Node struct {
	ID         string         `json:"id"`
	Payload    interface{}    `json:"payload,omitempty"`
	Tag        string         `json:"tag,omitempty"`
	Structures map[string]int `json:"structures,omitempty"`
}

type Edge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Strength float64 `json:"strength"`
}

// Capture copies the live contents of s. Concurrent writers may or may not be
// reflected; the result is internally consistent only if writers are quiesced.
func Capture(s *graph.Store) *Snapshot {
	snap := &Snapshot{Version: Version, MaxStrength: s.MaxStrength()}
	for _, n := range s.Nodes() {
		sn := Node{ID: n.ID(), Payload: n.Payload(), Tag: n.Tag()}
		if st := n.SentenceStructures(); len(st) > 0 {
			sn.Structures = st
		}
		snap.Nodes = append(snap.Nodes, sn)
	}
	for _, e := range s.Edges() {
		snap.Edges = append(snap.Edges, Edge{Source: e.SourceID(), Target: e.TargetID(), Strength: e.Strength()})
	}
	return snap
}

// Build constructs a fresh store from snap, starting with an empty cache and
// zero access counts. Nodes are added first, then edges. Every rejected node
// or edge is reported in the joined error; the store is still returned with
// everything that loaded.
func Build(snap *Snapshot, cacheCapacity int) (*graph.Store, error) {
	s, err := graph.NewStore(cacheCapacity)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return s, nil
	}
	var errs []error
	for i, sn := range snap.Nodes {
		if err := s.AddNode(sn.ID, sn.Payload); err != nil {
			errs = append(errs, fmt.Errorf("nodes[%d]: %w", i, err))
			continue
		}
		n, err := s.GetNode(sn.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("nodes[%d]: %w", i, err))
			continue
		}
		n.SetTag(sn.Tag)
		for label, c := range sn.Structures {
			if err := n.SetSentenceStructureCount(label, c); err != nil {
				errs = append(errs, fmt.Errorf("nodes[%d]: %w", i, err))
			}
		}
	}
	for i, e := range snap.Edges {
		if err := s.AddEdge(e.Source, e.Target, e.Strength); err != nil {
			errs = append(errs, fmt.Errorf("edges[%d] %s -> %s: %w", i, e.Source, e.Target, err))
		}
	}
	s.RaiseMaxStrength(snap.MaxStrength)
	s.ResetAccessState()
	return s, errors.Join(errs...)
}
