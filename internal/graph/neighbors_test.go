package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wordgraph/internal/graph"
)

func neighborIDs(nbs []graph.Neighbor) []string {
	out := make([]string, 0, len(nbs))
	for _, nb := range nbs {
		out = append(out, nb.ID)
	}
	return out
}

func TestNeighborsOrderedByStrength(t *testing.T) {
	s := buildGraph(t, []string{"A", "B", "C", "D"},
		[]edgeSpec{{"A", "B", 0.5}, {"A", "C", 2}, {"A", "D", 1}})

	nbs, err := s.Neighbors("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D", "B"}, neighborIDs(nbs))
	assert.Equal(t, 2.0, nbs[0].Strength)
}

func TestPreviousAndNextNeighbors(t *testing.T) {
	s := buildGraph(t, []string{"A", "B", "C"},
		[]edgeSpec{{"A", "B", 0.5}, {"A", "C", 2}})
	s.ResetAccessState()
	for i := 0; i < 3; i++ {
		_, err := s.GetNode("C")
		require.NoError(t, err)
	}

	prev, err := s.PreviousNeighbors("A") // A is now at 1
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, neighborIDs(prev))

	next, err := s.NextNeighbors("A") // A is now at 2
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, neighborIDs(next))
}

func TestTopNeighborsLimit(t *testing.T) {
	s := buildGraph(t, []string{"A", "B", "C", "D"},
		[]edgeSpec{{"A", "B", 3}, {"A", "C", 2}, {"A", "D", 1}})
	s.ResetAccessState()
	for _, id := range []string{"B", "C", "D"} {
		for i := 0; i < 5; i++ {
			_, _ = s.GetNode(id)
		}
	}

	next, err := s.TopNextNeighbors("A", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, neighborIDs(next))

	_, err = s.TopNextNeighbors("A", 0)
	assert.ErrorIs(t, err, graph.ErrInvalidArgument)
	_, err = s.TopPreviousNeighbors("A", -1)
	assert.ErrorIs(t, err, graph.ErrInvalidArgument)

	prev, err := s.TopPreviousNeighbors("A", 5)
	require.NoError(t, err)
	assert.Empty(t, prev)
}

func TestNeighborsUnknownNode(t *testing.T) {
	s := newStore(t, 4)
	_, err := s.Neighbors("Z")
	assert.ErrorIs(t, err, graph.ErrNotFound)
	_, err = s.Describe("Z")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestDescribe(t *testing.T) {
	s := buildGraph(t, []string{"the", "cat", "sat"},
		[]edgeSpec{{"cat", "sat", 0.02}, {"cat", "the", 0.01}})
	cat, err := s.GetNode("cat")
	require.NoError(t, err)
	cat.SetTag("Noun")
	cat.AddSentenceStructure("Subject + Verb")
	cat.AddSentenceStructure("Subject + Verb")
	cat.AddSentenceStructure("Subject")
	cat.AddSentenceStructure("")

	view, err := s.Describe("cat")
	require.NoError(t, err)
	assert.Equal(t, "cat", view.ID)
	assert.Equal(t, "cat", view.Payload)
	assert.Equal(t, "Noun", view.Tag)
	assert.Equal(t, 2, view.OutDegree)
	assert.Equal(t, []graph.StructureCount{
		{Label: "Subject", Count: 1},
		{Label: "Subject + Verb", Count: 2},
	}, view.Structures)
	assert.Equal(t, []string{"sat", "the"}, neighborIDs(view.Neighbors))
	assert.Equal(t, s.AccessCount("cat"), view.AccessCount)
}
