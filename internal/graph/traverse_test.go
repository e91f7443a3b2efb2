package graph_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wordgraph/internal/graph"
)

type edgeSpec struct {
	from, to string
	strength float64
}

func buildGraph(t *testing.T, ids []string, edges []edgeSpec) *graph.Store {
	t.Helper()
	s := newStore(t, 16)
	seed(t, s, ids...)
	for _, e := range edges {
		require.NoError(t, s.AddEdge(e.from, e.to, e.strength))
	}
	return s
}

func TestBreadthFirst(t *testing.T) {
	cases := []struct {
		name  string
		ids   []string
		edges []edgeSpec
		start string
		want  []string
	}{
		{
			name:  "chain",
			ids:   []string{"A", "B", "C"},
			edges: []edgeSpec{{"A", "B", 1}, {"B", "C", 1}},
			start: "A",
			want:  []string{"A", "B", "C"},
		},
		{
			name:  "edges point one way only",
			ids:   []string{"A", "B", "C"},
			edges: []edgeSpec{{"A", "B", 1}, {"C", "B", 1}},
			start: "A",
			want:  []string{"A", "B"},
		},
		{
			name:  "level order with neighbors by id",
			ids:   []string{"A", "B", "C", "D", "E"},
			edges: []edgeSpec{{"A", "C", 1}, {"A", "B", 1}, {"B", "D", 1}, {"C", "E", 1}},
			start: "A",
			want:  []string{"A", "B", "C", "D", "E"},
		},
		{
			name:  "cycle visits once",
			ids:   []string{"A", "B"},
			edges: []edgeSpec{{"A", "B", 1}, {"B", "A", 1}},
			start: "B",
			want:  []string{"B", "A"},
		},
		{
			name:  "isolated",
			ids:   []string{"A"},
			start: "A",
			want:  []string{"A"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := buildGraph(t, tc.ids, tc.edges)
			got, err := s.BreadthFirst(tc.start)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBreadthFirstUnknownStart(t *testing.T) {
	s := newStore(t, 4)
	_, err := s.BreadthFirst("Z")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestBreadthFirstSkipsRemovedNodes(t *testing.T) {
	s := buildGraph(t, []string{"A", "B", "C"}, []edgeSpec{{"A", "B", 1}, {"B", "C", 1}})
	require.NoError(t, s.RemoveNode("B"))
	got, err := s.BreadthFirst("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got)
}

func TestBreadthFirstDoesNotCountAccesses(t *testing.T) {
	s := buildGraph(t, []string{"A", "B"}, []edgeSpec{{"A", "B", 1}})
	s.ResetAccessState()
	_, err := s.BreadthFirst("A")
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.AccessCount("A"))
	assert.Equal(t, int64(0), s.AccessCount("B"))
}

func TestShortestPath(t *testing.T) {
	cases := []struct {
		name     string
		ids      []string
		edges    []edgeSpec
		from, to string
		want     []string
	}{
		{
			name:  "two hops",
			ids:   []string{"A", "B", "C"},
			edges: []edgeSpec{{"A", "B", 1}, {"B", "C", 1}},
			from:  "A", to: "C",
			want: []string{"A", "B", "C"},
		},
		{
			name:  "cheaper detour wins",
			ids:   []string{"A", "B", "C"},
			edges: []edgeSpec{{"A", "C", 5}, {"A", "B", 1}, {"B", "C", 1}},
			from:  "A", to: "C",
			want: []string{"A", "B", "C"},
		},
		{
			name:  "direct edge wins",
			ids:   []string{"A", "B", "C"},
			edges: []edgeSpec{{"A", "C", 1}, {"A", "B", 1}, {"B", "C", 1}},
			from:  "A", to: "C",
			want: []string{"A", "C"},
		},
		{
			name: "start equals end",
			ids:  []string{"A"},
			from: "A", to: "A",
			want: []string{"A"},
		},
		{
			name:  "unreachable",
			ids:   []string{"A", "B", "C"},
			edges: []edgeSpec{{"A", "B", 1}, {"B", "C", 1}},
			from:  "A", to: "Z",
			want: []string{},
		},
		{
			name:  "against edge direction",
			ids:   []string{"A", "B"},
			edges: []edgeSpec{{"A", "B", 1}},
			from:  "B", to: "A",
			want: []string{},
		},
		{
			name:  "zero cost edges",
			ids:   []string{"A", "B", "C"},
			edges: []edgeSpec{{"A", "B", 0}, {"B", "C", 0}},
			from:  "A", to: "C",
			want: []string{"A", "B", "C"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := buildGraph(t, tc.ids, tc.edges)
			got, err := s.ShortestPath(tc.from, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestShortestPathUnknownStart(t *testing.T) {
	s := newStore(t, 4)
	seed(t, s, "A")
	_, err := s.ShortestPath("Z", "A")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestPathCost(t *testing.T) {
	s := buildGraph(t, []string{"A", "B", "C"}, []edgeSpec{{"A", "B", 0.5}, {"B", "C", 1.25}})
	assert.Equal(t, 1.75, s.PathCost([]string{"A", "B", "C"}))
	assert.Equal(t, 0.0, s.PathCost([]string{"A"}))
	assert.True(t, math.IsInf(s.PathCost([]string{"C", "A"}), 1))
}

func TestConnectedComponents(t *testing.T) {
	cases := []struct {
		name  string
		ids   []string
		edges []edgeSpec
		want  [][]string
	}{
		{
			name:  "directional split",
			ids:   []string{"A", "B", "C"},
			edges: []edgeSpec{{"A", "B", 1}, {"C", "B", 1}},
			want:  [][]string{{"A", "B"}, {"C"}},
		},
		{
			name:  "all reachable from first",
			ids:   []string{"A", "B", "C"},
			edges: []edgeSpec{{"A", "B", 1}, {"B", "C", 1}},
			want:  [][]string{{"A", "B", "C"}},
		},
		{
			name: "isolated nodes",
			ids:  []string{"A", "B"},
			want: [][]string{{"A"}, {"B"}},
		},
		{
			name: "empty",
			want: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := buildGraph(t, tc.ids, tc.edges)
			assert.Equal(t, tc.want, s.ConnectedComponents())
		})
	}
}

func TestComponentsPartitionLiveNodes(t *testing.T) {
	s := buildGraph(t,
		[]string{"A", "B", "C", "D", "E"},
		[]edgeSpec{{"B", "A", 1}, {"C", "D", 1}, {"E", "C", 1}},
	)
	require.NoError(t, s.RemoveNode("D"))

	seen := map[string]int{}
	for _, comp := range s.ConnectedComponents() {
		for _, id := range comp {
			seen[id]++
		}
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1, "E": 1}, seen)
}
