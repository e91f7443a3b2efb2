package graph

import "sort"

// Neighbor is a successor of some node together with the linking strength.
type Neighbor struct {
	ID          string  `json:"id"`
	Tag         string  `json:"tag"`
	Strength    float64 `json:"strength"`
	AccessCount int64   `json:"access_count"`
}

// StructureCount is one sentence-structure label and its occurrences.
type StructureCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// NodeView is a read-only rendering of a node for display.
type NodeView struct {
	ID          string           `json:"id"`
	Payload     interface{}      `json:"payload"`
	Tag         string           `json:"tag"`
	AccessCount int64            `json:"access_count"`
	OutDegree   int              `json:"out_degree"`
	Structures  []StructureCount `json:"structures"`
	Neighbors   []Neighbor       `json:"neighbors"`
}

// Neighbors returns the live successors of id ordered by strength, strongest
// first.
func (s *Store) Neighbors(id string) ([]Neighbor, error) {
	n, err := s.GetNode(id)
	if err != nil {
		return nil, err
	}
	return s.rankedNeighbors(n, func(Neighbor) bool { return true }), nil
}

// PreviousNeighbors returns successors of id that have been resolved fewer
// times than id itself, strongest first. Access counts are heuristic, so the
// split between previous and next is too.
func (s *Store) PreviousNeighbors(id string) ([]Neighbor, error) {
	n, err := s.GetNode(id)
	if err != nil {
		return nil, err
	}
	own := s.AccessCount(id)
	return s.rankedNeighbors(n, func(nb Neighbor) bool { return nb.AccessCount < own }), nil
}

// NextNeighbors returns successors of id that have been resolved more times
// than id itself, strongest first.
func (s *Store) NextNeighbors(id string) ([]Neighbor, error) {
	n, err := s.GetNode(id)
	if err != nil {
		return nil, err
	}
	own := s.AccessCount(id)
	return s.rankedNeighbors(n, func(nb Neighbor) bool { return nb.AccessCount > own }), nil
}

func (s *Store) TopPreviousNeighbors(id string, limit int) ([]Neighbor, error) {
	if limit < 1 {
		return nil, invalidf("limit must be at least 1, got %d", limit)
	}
	out, err := s.PreviousNeighbors(id)
	return truncate(out, limit), err
}

func (s *Store) TopNextNeighbors(id string, limit int) ([]Neighbor, error) {
	if limit < 1 {
		return nil, invalidf("limit must be at least 1, got %d", limit)
	}
	out, err := s.NextNeighbors(id)
	return truncate(out, limit), err
}

func truncate(nbs []Neighbor, limit int) []Neighbor {
	if len(nbs) > limit {
		return nbs[:limit]
	}
	return nbs
}

func (s *Store) rankedNeighbors(n *Node, keep func(Neighbor) bool) []Neighbor {
	var out []Neighbor
	for _, e := range s.liveEdges(n) {
		target := s.lookup(e.targetID)
		if target == nil {
			continue
		}
		nb := Neighbor{
			ID:          e.targetID,
			Tag:         target.Tag(),
			Strength:    e.Strength(),
			AccessCount: s.AccessCount(e.targetID),
		}
		if keep(nb) {
			out = append(out, nb)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	return out
}

// Describe resolves id and renders it with its sentence structures (rarest
// first) and neighbors (strongest first).
func (s *Store) Describe(id string) (*NodeView, error) {
	n, err := s.GetNode(id)
	if err != nil {
		return nil, err
	}
	structs := n.SentenceStructures()
	counts := make([]StructureCount, 0, len(structs))
	for label, c := range structs {
		counts = append(counts, StructureCount{Label: label, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count < counts[j].Count
		}
		return counts[i].Label < counts[j].Label
	})
	nbs := s.rankedNeighbors(n, func(Neighbor) bool { return true })
	return &NodeView{
		ID:          n.ID(),
		Payload:     n.Payload(),
		Tag:         n.Tag(),
		AccessCount: s.AccessCount(id),
		OutDegree:   len(nbs),
		Structures:  counts,
		Neighbors:   nbs,
	}, nil
}
