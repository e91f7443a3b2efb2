package graph

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Node is a vertex owned by a Store. The cache and other nodes only alias it
// by pointer or id; its lifetime is the store's.
//
// payload, tag, outgoing and structures are guarded by mu. The tombstone flag
// is readable without the lock but only ever set while mu is held, so a writer
// that checks it under mu cannot race with removal.
type Node struct {
	id string

	mu         sync.RWMutex
	payload    interface{}
	tag        string
	outgoing   map[string]*Edge
	structures map[string]int

	tombstoned atomic.Bool
}

func newNode(id string, payload interface{}) *Node {
	return &Node{
		id:         id,
		payload:    payload,
		outgoing:   make(map[string]*Edge),
		structures: make(map[string]int),
	}
}

func (n *Node) ID() string { return n.id }

func (n *Node) Payload() interface{} {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.payload
}

func (n *Node) SetPayload(v interface{}) {
	n.mu.Lock()
	n.payload = v
	n.mu.Unlock()
}

func (n *Node) Tag() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.tag
}

func (n *Node) SetTag(tag string) {
	n.mu.Lock()
	n.tag = tag
	n.mu.Unlock()
}

// Tombstoned reports whether the node has been removed from its store.
func (n *Node) Tombstoned() bool { return n.tombstoned.Load() }

// AddSentenceStructure counts one more occurrence of label.
func (n *Node) AddSentenceStructure(label string) {
	if label == "" {
		return
	}
	n.mu.Lock()
	n.structures[label]++
	n.mu.Unlock()
}

// SetSentenceStructureCount overwrites the count for label. A zero count
// forgets the label.
func (n *Node) SetSentenceStructureCount(label string, count int) error {
	if label == "" {
		return invalidf("structure label must not be empty")
	}
	if count < 0 {
		return invalidf("structure %q count must not be negative, got %d", label, count)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if count == 0 {
		delete(n.structures, label)
		return nil
	}
	n.structures[label] = count
	return nil
}

// SentenceStructures returns a copy of the label counts.
func (n *Node) SentenceStructures() map[string]int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]int, len(n.structures))
	for k, v := range n.structures {
		out[k] = v
	}
	return out
}

// Edges returns a snapshot of the outgoing edges ordered by target id.
func (n *Node) Edges() []*Edge {
	n.mu.RLock()
	out := make([]*Edge, 0, len(n.outgoing))
	for _, e := range n.outgoing {
		out = append(out, e)
	}
	n.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].targetID < out[j].targetID })
	return out
}

// Edge returns the outgoing edge to target, if any.
func (n *Node) Edge(target string) (*Edge, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	e, ok := n.outgoing[target]
	return e, ok
}

// setNeighbor creates or overwrites the edge to target. It returns false when
// the node was tombstoned before the lock was taken.
func (n *Node) setNeighbor(target string, strength float64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tombstoned.Load() {
		return false
	}
	if e, ok := n.outgoing[target]; ok {
		e.setStrength(strength)
		return true
	}
	n.outgoing[target] = newEdge(n.id, target, strength)
	return true
}

// reinforceNeighbor adds delta to the edge to target, creating it when absent.
func (n *Node) reinforceNeighbor(target string, delta float64) (float64, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tombstoned.Load() {
		return 0, false
	}
	if e, ok := n.outgoing[target]; ok {
		return e.strength.Add(delta), true
	}
	n.outgoing[target] = newEdge(n.id, target, delta)
	return delta, true
}

func (n *Node) updateStrength(target string, strength float64) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	e, ok := n.outgoing[target]
	if !ok {
		return false
	}
	e.setStrength(strength)
	return true
}

func (n *Node) removeNeighbor(target string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.outgoing[target]; !ok {
		return false
	}
	delete(n.outgoing, target)
	return true
}

// tombstone marks the node removed and drops its adjacency. It returns the
// targets that were linked at the time, or ok=false if already tombstoned.
func (n *Node) tombstone() (targets []string, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tombstoned.Load() {
		return nil, false
	}
	targets = make([]string, 0, len(n.outgoing))
	for id := range n.outgoing {
		targets = append(targets, id)
	}
	n.outgoing = make(map[string]*Edge)
	n.tombstoned.Store(true)
	return targets, true
}
