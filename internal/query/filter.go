// Package query compiles node filter expressions such as
//
//	tag == "Noun" AND degree >= 2 OR id matches "^th"
//
// and evaluates them against graph nodes.
package query

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gyaneshwarpardhi/wordgraph/internal/graph"
)

// Fields a filter may reference.
const (
	FieldID          = "id"
	FieldTag         = "tag"
	FieldDegree      = "degree"
	FieldAccessCount = "access_count"
	FieldPayload     = "payload"
	FieldStructures  = "structures"
)

var knownFields = map[string]bool{
	FieldID: true, FieldTag: true, FieldDegree: true,
	FieldAccessCount: true, FieldPayload: true, FieldStructures: true,
}

// Resolver supplies field values during evaluation.
type Resolver interface {
	Resolve(path []string) (interface{}, bool)
}

// Filter is a compiled expression. It is immutable and safe for concurrent use.
type Filter struct {
	src  string
	root expr
}

// Compile parses src. Field names and regular expressions are checked here so
// that evaluation only fails on type mismatches.
func Compile(src string) (*Filter, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty filter")
	}
	root, err := parse(src)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", src, err)
	}
	return &Filter{src: src, root: root}, nil
}

func (f *Filter) String() string { return f.src }

// Match evaluates the filter against r.
func (f *Filter) Match(r Resolver) (bool, error) {
	return f.root.eval(r)
}

func checkField(path []string) error {
	if len(path) != 1 || !knownFields[path[0]] {
		return fmt.Errorf("unknown field %q", strings.Join(path, "."))
	}
	return nil
}

func (e *andExpr) eval(r Resolver) (bool, error) {
	ok, err := e.left.eval(r)
	if err != nil || !ok {
		return false, err
	}
	return e.right.eval(r)
}

func (e *orExpr) eval(r Resolver) (bool, error) {
	ok, err := e.left.eval(r)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return e.right.eval(r)
}

func (e *notExpr) eval(r Resolver) (bool, error) {
	ok, err := e.inner.eval(r)
	return !ok, err
}

func (e *cmpExpr) eval(r Resolver) (bool, error) {
	v, ok := r.Resolve(e.field)
	if !ok {
		return false, fmt.Errorf("field %q not available", strings.Join(e.field, "."))
	}
	switch e.op {
	case OpEq:
		return equal(v, e.value), nil
	case OpNeq:
		return !equal(v, e.value), nil
	case OpGt, OpGte, OpLt, OpLte:
		lf, ok := toFloat64(v)
		if !ok {
			return false, fmt.Errorf("%s %s: field is %T, not numeric", strings.Join(e.field, "."), e.op, v)
		}
		rf := e.value.(float64)
		switch e.op {
		case OpGt:
			return lf > rf, nil
		case OpGte:
			return lf >= rf, nil
		case OpLt:
			return lf < rf, nil
		default:
			return lf <= rf, nil
		}
	case OpContains:
		return strings.Contains(fmt.Sprint(v), fmt.Sprint(e.value)), nil
	case OpMatches:
		return e.re.MatchString(fmt.Sprint(v)), nil
	}
	return false, fmt.Errorf("unknown operator %q", e.op)
}

func equal(left, right interface{}) bool {
	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if lok && rok {
		return math.Abs(lf-rf) < 1e-9
	}
	if lb, ok := left.(bool); ok {
		rb, ok := right.(bool)
		return ok && lb == rb
	}
	return fmt.Sprint(left) == fmt.Sprint(right)
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// NodeResolver exposes a graph node's fields to a Filter.
type NodeResolver struct {
	Node        *graph.Node
	OutDegree   int
	AccessCount int64
}

func (n NodeResolver) Resolve(path []string) (interface{}, bool) {
	if len(path) != 1 {
		return nil, false
	}
	switch path[0] {
	case FieldID:
		return n.Node.ID(), true
	case FieldTag:
		return n.Node.Tag(), true
	case FieldDegree:
		return n.OutDegree, true
	case FieldAccessCount:
		return n.AccessCount, true
	case FieldPayload:
		p := n.Node.Payload()
		if p == nil {
			return "", true
		}
		return p, true
	case FieldStructures:
		labels := make([]string, 0)
		for l := range n.Node.SentenceStructures() {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		return strings.Join(labels, ", "), true
	}
	return nil, false
}

// SelectNodes returns the live nodes of s matching f, in insertion order.
// A nil filter matches everything.
func SelectNodes(s *graph.Store, f *Filter) ([]*graph.Node, error) {
	nodes := s.Nodes()
	if f == nil {
		return nodes, nil
	}
	out := nodes[:0]
	for _, n := range nodes {
		ok, err := f.Match(NodeResolver{Node: n, OutDegree: s.OutDegree(n), AccessCount: s.AccessCount(n.ID())})
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID(), err)
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}
