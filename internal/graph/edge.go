package graph

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Edge is a directional link recorded only in its source node's adjacency.
// Endpoints are held by id so nodes never reference each other directly.
type Edge struct {
	sourceID string
	targetID string
	strength atomicFloat
}

func newEdge(sourceID, targetID string, strength float64) *Edge {
	e := &Edge{sourceID: sourceID, targetID: targetID}
	e.strength.Store(strength)
	return e
}

func (e *Edge) SourceID() string { return e.sourceID }
func (e *Edge) TargetID() string { return e.targetID }

// Strength is an affinity when ranking neighbors and a cost in ShortestPath.
func (e *Edge) Strength() float64 { return e.strength.Load() }

func (e *Edge) setStrength(s float64) { e.strength.Store(s) }

func (e *Edge) String() string {
	return fmt.Sprintf("%s -> %s (%.2f)", e.sourceID, e.targetID, e.Strength())
}

// atomicFloat is a float64 cell backed by its IEEE-754 bits.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// Add adds delta and returns the new value.
func (f *atomicFloat) Add(delta float64) float64 {
	for {
		old := f.bits.Load()
		next := math.Float64frombits(old) + delta
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// Max raises the cell to v if v is larger; it never lowers it.
func (f *atomicFloat) Max(v float64) {
	for {
		old := f.bits.Load()
		if v <= math.Float64frombits(old) {
			return
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return
		}
	}
}
