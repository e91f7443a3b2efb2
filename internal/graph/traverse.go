package graph

import (
	"container/heap"
	"math"
)

// BreadthFirst returns the ids reachable from startID along outgoing edges,
// in visit order, each at most once. Neighbors of a node are visited in
// target-id order. Tombstoned targets are skipped.
func (s *Store) BreadthFirst(startID string) ([]string, error) {
	if startID == "" {
		return nil, invalidf("start id must not be empty")
	}
	start := s.lookup(startID)
	if start == nil {
		return nil, notFound(startID)
	}
	return s.reach(start, make(map[string]bool)), nil
}

// reach runs a BFS from start, marking visited ids in seen. Ids already in
// seen are neither visited nor returned.
func (s *Store) reach(start *Node, seen map[string]bool) []string {
	var order []string
	queue := []*Node{start}
	seen[start.id] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur.id)
		for _, e := range cur.Edges() {
			if seen[e.targetID] {
				continue
			}
			next := s.lookup(e.targetID)
			if next == nil {
				continue
			}
			seen[e.targetID] = true
			queue = append(queue, next)
		}
	}
	return order
}

// ShortestPath runs Dijkstra from startID using edge strength as cost and
// returns the id sequence from start to end. It returns an empty slice when
// endID is unreachable or does not resolve. Among equal-cost paths the first
// one relaxed wins.
func (s *Store) ShortestPath(startID, endID string) ([]string, error) {
	if err := validatePair(startID, endID); err != nil {
		return nil, err
	}
	if s.lookup(startID) == nil {
		return nil, notFound(startID)
	}
	if startID == endID {
		return []string{startID}, nil
	}

	dist := map[string]float64{startID: 0}
	prev := make(map[string]string)
	done := make(map[string]bool)
	frontier := &distQueue{}
	heap.Push(frontier, distItem{id: startID, dist: 0})

	for frontier.Len() > 0 {
		item := heap.Pop(frontier).(distItem)
		if done[item.id] {
			continue
		}
		done[item.id] = true
		if item.id == endID {
			break
		}
		cur := s.lookup(item.id)
		if cur == nil {
			continue
		}
		for _, e := range cur.Edges() {
			v := e.targetID
			if done[v] || s.lookup(v) == nil {
				continue
			}
			alt := item.dist + e.Strength()
			if d, ok := dist[v]; !ok || alt < d {
				dist[v] = alt
				prev[v] = item.id
				heap.Push(frontier, distItem{id: v, dist: alt})
			}
		}
	}

	if _, ok := prev[endID]; !ok {
		return []string{}, nil
	}
	var path []string
	for at := endID; ; at = prev[at] {
		path = append(path, at)
		if at == startID {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// PathCost sums the strengths along path. It returns +Inf if any hop is
// missing.
func (s *Store) PathCost(path []string) float64 {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		n := s.lookup(path[i])
		if n == nil {
			return math.Inf(1)
		}
		e, ok := n.Edge(path[i+1])
		if !ok {
			return math.Inf(1)
		}
		total += e.Strength()
	}
	return total
}

// ConnectedComponents partitions the live nodes into forward-reachability
// sets. Roots are taken in insertion order; each root's set holds the nodes
// it reaches that no earlier root reached. Because edges are directional
// these are not undirected components: with A->B and C->B, rooting at A
// yields {A,B} and then {C}.
func (s *Store) ConnectedComponents() [][]string {
	seen := make(map[string]bool)
	var comps [][]string
	for _, n := range s.Nodes() {
		if seen[n.id] {
			continue
		}
		comps = append(comps, s.reach(n, seen))
	}
	return comps
}

type distItem struct {
	id   string
	dist float64
}

// distQueue is a min-heap on tentative distance.
type distQueue []distItem

func (q distQueue) Len() int            { return len(q) }
func (q distQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q distQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x interface{}) { *q = append(*q, x.(distItem)) }
func (q *distQueue) Pop() interface{} {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
