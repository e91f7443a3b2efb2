package graph

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gyaneshwarpardhi/wordgraph/internal/metrics"
)

// Store is the authoritative owner of every Node. All lookups and mutations
// go through it; it refreshes the cache and counts successful resolutions.
//
// Single-node operations are atomic. Operations spanning two nodes are not:
// AddEdge resolves both endpoints and then mutates the source, so a
// concurrent RemoveNode of the target can leave an edge pointing at a
// tombstoned node. Readers treat edge targets as best-effort and the store
// prunes such edges lazily when it meets them.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	order []string // slot insertion order

	access      sync.Map // id -> *atomic.Int64
	cache       *Cache
	maxStrength atomicFloat
}

// Stats is a point-in-time summary of a store.
type Stats struct {
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	Tombstoned  int     `json:"tombstoned"`
	CacheLen    int     `json:"cache_len"`
	CacheCap    int     `json:"cache_cap"`
	MaxStrength float64 `json:"max_strength"`
}

// NewStore returns an empty store whose cache holds cacheCapacity entries.
func NewStore(cacheCapacity int) (*Store, error) {
	c, err := NewCache(cacheCapacity)
	if err != nil {
		return nil, err
	}
	s := &Store{
		nodes: make(map[string]*Node),
		cache: c,
	}
	s.maxStrength.Store(1.0)
	return s, nil
}

// AddNode inserts a node if id has no slot yet. An existing node is left
// untouched, and so is a tombstoned one: a removed id stays removed, so
// edges other nodes still hold to it can never resolve again.
func (s *Store) AddNode(id string, payload interface{}) error {
	if id == "" {
		return observe("add_node", invalidf("node id must not be empty"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[id]; !ok {
		s.order = append(s.order, id)
		s.nodes[id] = newNode(id, payload)
	}
	return observe("add_node", nil)
}

// Removed reports whether id names a tombstoned slot.
func (s *Store) Removed(id string) bool {
	s.mu.RLock()
	n := s.nodes[id]
	s.mu.RUnlock()
	return n != nil && n.Tombstoned()
}

// GetNode resolves a live node, consulting the cache first. Every success
// increments the node's access count.
func (s *Store) GetNode(id string) (*Node, error) {
	n, err := s.resolve(id)
	return n, observe("get_node", err)
}

func (s *Store) resolve(id string) (*Node, error) {
	if id == "" {
		return nil, invalidf("node id must not be empty")
	}
	n, hit := s.cache.Get(id)
	switch {
	case hit && !n.Tombstoned():
		metrics.CacheHits.Inc()
	default:
		if hit {
			// Stale alias left by a lookup that raced a removal.
			s.cache.Remove(id)
		}
		metrics.CacheMisses.Inc()
		n = s.lookup(id)
		if n == nil {
			return nil, notFound(id)
		}
		s.cache.Put(id, n)
	}
	s.counter(id).Add(1)
	return n, nil
}

// lookup reads the authoritative table without touching the cache or the
// access counters. It returns nil for absent and tombstoned ids.
func (s *Store) lookup(id string) *Node {
	s.mu.RLock()
	n := s.nodes[id]
	s.mu.RUnlock()
	if n == nil || n.Tombstoned() {
		return nil
	}
	return n
}

// Has reports whether id names a live node. It neither touches the cache nor
// counts as an access.
func (s *Store) Has(id string) bool { return s.lookup(id) != nil }

func (s *Store) counter(id string) *atomic.Int64 {
	if c, ok := s.access.Load(id); ok {
		return c.(*atomic.Int64)
	}
	c, _ := s.access.LoadOrStore(id, new(atomic.Int64))
	return c.(*atomic.Int64)
}

// AccessCount returns how many times id has been resolved by GetNode.
func (s *Store) AccessCount(id string) int64 {
	if c, ok := s.access.Load(id); ok {
		return c.(*atomic.Int64).Load()
	}
	return 0
}

// RemoveNode tombstones id, clears its adjacency, drops the back-edges its
// former successors held to it, and evicts it from the cache. Removing an
// absent or already removed id is a no-op.
func (s *Store) RemoveNode(id string) error {
	if id == "" {
		return observe("remove_node", invalidf("node id must not be empty"))
	}
	s.mu.RLock()
	n := s.nodes[id]
	s.mu.RUnlock()
	if n == nil {
		return observe("remove_node", nil)
	}
	targets, ok := n.tombstone()
	if ok {
		for _, t := range targets {
			if nb := s.lookup(t); nb != nil {
				nb.removeNeighbor(id)
			}
		}
	}
	s.cache.Remove(id)
	return observe("remove_node", nil)
}

func validateStrength(strength float64) error {
	if math.IsNaN(strength) || math.IsInf(strength, 0) || strength < 0 {
		return invalidf("strength must be a non-negative finite number, got %v", strength)
	}
	return nil
}

func validatePair(id1, id2 string) error {
	if id1 == "" || id2 == "" {
		return invalidf("node ids must not be empty")
	}
	return nil
}

// AddEdge records a directional edge id1 -> id2. Both ids are resolved
// through GetNode, so both access counts are incremented.
func (s *Store) AddEdge(id1, id2 string, strength float64) error {
	return observe("add_edge", s.addEdge(id1, id2, strength))
}

func (s *Store) addEdge(id1, id2 string, strength float64) error {
	if err := validatePair(id1, id2); err != nil {
		return err
	}
	if err := validateStrength(strength); err != nil {
		return err
	}
	src, err := s.resolve(id1)
	if err != nil {
		return err
	}
	if _, err := s.resolve(id2); err != nil {
		return err
	}
	if !src.setNeighbor(id2, strength) {
		return notFound(id1)
	}
	s.maxStrength.Max(strength)
	return nil
}

// ReinforceEdge adds delta to the strength of id1 -> id2, creating the edge
// with strength delta when it does not exist yet.
func (s *Store) ReinforceEdge(id1, id2 string, delta float64) (float64, error) {
	v, err := s.reinforceEdge(id1, id2, delta)
	return v, observe("reinforce_edge", err)
}

func (s *Store) reinforceEdge(id1, id2 string, delta float64) (float64, error) {
	if err := validatePair(id1, id2); err != nil {
		return 0, err
	}
	if err := validateStrength(delta); err != nil {
		return 0, err
	}
	src, err := s.resolve(id1)
	if err != nil {
		return 0, err
	}
	if _, err := s.resolve(id2); err != nil {
		return 0, err
	}
	v, ok := src.reinforceNeighbor(id2, delta)
	if !ok {
		return 0, notFound(id1)
	}
	s.maxStrength.Max(v)
	return v, nil
}

// UpdateEdgeStrength sets the strength of an existing edge. A missing edge
// is not an error.
func (s *Store) UpdateEdgeStrength(id1, id2 string, strength float64) error {
	return observe("update_edge", s.updateEdgeStrength(id1, id2, strength))
}

func (s *Store) updateEdgeStrength(id1, id2 string, strength float64) error {
	if err := validatePair(id1, id2); err != nil {
		return err
	}
	if err := validateStrength(strength); err != nil {
		return err
	}
	src, err := s.resolve(id1)
	if err != nil {
		return err
	}
	if _, err := s.resolve(id2); err != nil {
		return err
	}
	src.updateStrength(id2, strength)
	s.maxStrength.Max(strength)
	return nil
}

// RemoveEdge drops id1 -> id2. Only id1 has to resolve; a missing edge is
// not an error.
func (s *Store) RemoveEdge(id1, id2 string) error {
	return observe("remove_edge", s.removeEdge(id1, id2))
}

func (s *Store) removeEdge(id1, id2 string) error {
	if err := validatePair(id1, id2); err != nil {
		return err
	}
	src, err := s.resolve(id1)
	if err != nil {
		return err
	}
	src.removeNeighbor(id2)
	return nil
}

// EdgeExists reports whether id1 resolves and holds an edge to a live id2.
// An edge whose target has been removed is pruned on the way.
func (s *Store) EdgeExists(id1, id2 string) (bool, error) {
	if err := validatePair(id1, id2); err != nil {
		return false, err
	}
	src, err := s.resolve(id1)
	if err != nil {
		return false, err
	}
	if _, ok := src.Edge(id2); !ok {
		return false, nil
	}
	if s.lookup(id2) == nil {
		src.removeNeighbor(id2)
		return false, nil
	}
	return true, nil
}

// liveEdges returns n's edges whose targets are live, pruning the rest.
func (s *Store) liveEdges(n *Node) []*Edge {
	edges := n.Edges()
	out := edges[:0]
	for _, e := range edges {
		if s.lookup(e.targetID) == nil {
			n.removeNeighbor(e.targetID)
			continue
		}
		out = append(out, e)
	}
	return out
}

// OutDegree counts n's edges to live targets, pruning stale ones on the way.
func (s *Store) OutDegree(n *Node) int { return len(s.liveEdges(n)) }

// MaxStrength is the largest strength passed to AddEdge, ReinforceEdge or
// UpdateEdgeStrength since creation or the last normalization.
func (s *Store) MaxStrength() float64 { return s.maxStrength.Load() }

// RaiseMaxStrength lifts the running maximum to v if it is larger. Used when
// restoring a store from a snapshot.
func (s *Store) RaiseMaxStrength(v float64) {
	if validateStrength(v) == nil {
		s.maxStrength.Max(v)
	}
}

// NormalizeEdgeStrengths divides every edge strength by MaxStrength and
// resets the maximum to 1. It is not atomic with respect to concurrent edge
// writers; callers wanting a consistent result must quiesce them first.
func (s *Store) NormalizeEdgeStrengths() {
	max := s.maxStrength.Load()
	if max <= 0 {
		return
	}
	for _, n := range s.Nodes() {
		for _, e := range n.Edges() {
			e.setStrength(e.Strength() / max)
		}
	}
	s.maxStrength.Store(1.0)
	metrics.StoreOps.WithLabelValues("normalize", metrics.ResultOK).Inc()
}

// Nodes returns the live nodes in insertion order.
func (s *Store) Nodes() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Node, 0, len(s.order))
	for _, id := range s.order {
		if n := s.nodes[id]; !n.Tombstoned() {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns every edge between live nodes, at most one per ordered pair.
func (s *Store) Edges() []*Edge {
	type pair struct{ src, dst string }
	seen := make(map[pair]struct{})
	var out []*Edge
	for _, n := range s.Nodes() {
		for _, e := range s.liveEdges(n) {
			k := pair{e.sourceID, e.targetID}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) TotalNodes() int { return len(s.Nodes()) }
func (s *Store) TotalEdges() int { return len(s.Edges()) }

// TopNodes returns up to limit live nodes by descending out-degree. Ties keep
// insertion order.
func (s *Store) TopNodes(limit int) ([]*Node, error) {
	if limit < 1 {
		return nil, observe("top_nodes", invalidf("limit must be at least 1, got %d", limit))
	}
	nodes := s.Nodes()
	degree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		degree[n.id] = s.OutDegree(n)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return degree[nodes[i].id] > degree[nodes[j].id]
	})
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes, observe("top_nodes", nil)
}

// Stats summarizes the store and refreshes the live node/edge gauges.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	slots := len(s.nodes)
	s.mu.RUnlock()
	live := s.TotalNodes()
	st := Stats{
		Nodes:       live,
		Edges:       s.TotalEdges(),
		Tombstoned:  slots - live,
		CacheLen:    s.cache.Len(),
		CacheCap:    s.cache.Cap(),
		MaxStrength: s.MaxStrength(),
	}
	metrics.LiveNodes.Set(float64(st.Nodes))
	metrics.LiveEdges.Set(float64(st.Edges))
	return st
}

// ResetAccessState empties the cache and forgets all access counts, leaving
// the authoritative data untouched. Loaders call it so a restored store
// starts cold.
func (s *Store) ResetAccessState() {
	s.cache.Purge()
	s.access.Range(func(k, _ interface{}) bool {
		s.access.Delete(k)
		return true
	})
}

// CacheLen reports how many ids the recency cache currently aliases.
func (s *Store) CacheLen() int { return s.cache.Len() }
