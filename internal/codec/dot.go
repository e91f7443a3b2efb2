package codec

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gyaneshwarpardhi/wordgraph/internal/snapshot"
)

// DOT renders a snapshot as a Graphviz digraph labelled with tags and
// strengths. It cannot be decoded.
type DOT struct{}

func (DOT) Format() string       { return "dot" }
func (DOT) Extensions() []string { return []string{".dot", ".gv"} }

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// dotQuote wraps s in double quotes. Non-ASCII text is written as is.
func dotQuote(s string) string { return `"` + dotEscaper.Replace(s) + `"` }

func (DOT) Encode(w io.Writer, snap *snapshot.Snapshot) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph G {")
	for _, n := range snap.Nodes {
		fmt.Fprintf(bw, "    %s [label=%s];\n", dotQuote(n.ID), dotQuote(n.Tag))
	}
	for _, e := range snap.Edges {
		fmt.Fprintf(bw, "    %s -> %s [label=\"%.2f\"];\n", dotQuote(e.Source), dotQuote(e.Target), e.Strength)
	}
	fmt.Fprintln(bw, "}")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("encode dot: %w", err)
	}
	return nil
}

func (DOT) Decode(io.Reader) (*snapshot.Snapshot, error) {
	return nil, fmt.Errorf("decode dot: %w", ErrUnsupported)
}
