package codec

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gyaneshwarpardhi/wordgraph/internal/snapshot"
)

// CSV writes a "Nodes" section (ID,Data,Tag) followed by an "Edges" section
// (SourceID,TargetID,Strength). Payloads are written with fmt and read back
// as strings; sentence structures are not carried.
type CSV struct{}

func (CSV) Format() string       { return "csv" }
func (CSV) Extensions() []string { return []string{".csv"} }

const (
	csvNodes = "Nodes"
	csvEdges = "Edges"
)

func (CSV) Encode(w io.Writer, snap *snapshot.Snapshot) error {
	cw := csv.NewWriter(w)
	rows := [][]string{{csvNodes}, {"ID", "Data", "Tag"}}
	for _, n := range snap.Nodes {
		data := ""
		if n.Payload != nil {
			data = fmt.Sprint(n.Payload)
		}
		rows = append(rows, []string{n.ID, data, n.Tag})
	}
	rows = append(rows, []string{csvEdges}, []string{"SourceID", "TargetID", "Strength"})
	for _, e := range snap.Edges {
		rows = append(rows, []string{e.Source, e.Target, strconv.FormatFloat(e.Strength, 'g', -1, 64)})
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("encode csv snapshot: %w", err)
	}
	return nil
}

func (CSV) Decode(r io.Reader) (*snapshot.Snapshot, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	snap := &snapshot.Snapshot{Version: snapshot.Version, MaxStrength: 1}

	section := ""
	skipHeader := false
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode csv snapshot: %w", err)
		}
		if len(rec) == 1 && (strings.EqualFold(rec[0], csvNodes) || strings.EqualFold(rec[0], csvEdges)) {
			section = strings.ToLower(rec[0])
			skipHeader = true
			continue
		}
		if skipHeader {
			skipHeader = false
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("decode csv snapshot: line %d: want 3 fields, got %d", line, len(rec))
		}
		switch section {
		case "nodes":
			snap.Nodes = append(snap.Nodes, snapshot.Node{ID: rec[0], Payload: rec[1], Tag: rec[2]})
		case "edges":
			s, err := strconv.ParseFloat(rec[2], 64)
			if err != nil {
				return nil, fmt.Errorf("decode csv snapshot: line %d: strength %q: %w", line, rec[2], err)
			}
			snap.Edges = append(snap.Edges, snapshot.Edge{Source: rec[0], Target: rec[1], Strength: s})
			if s > snap.MaxStrength {
				snap.MaxStrength = s
			}
		default:
			return nil, fmt.Errorf("decode csv snapshot: line %d: row outside Nodes/Edges section", line)
		}
	}
	return snap, nil
}
