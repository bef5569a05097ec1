package codepath

import "github.com/l3aro/go-codepath/pkg/ast"

// SegmentSummary is one segment of a PathSummary. Edges are indexes into
// PathSummary.Segments, so summaries of two runs over the same tree compare
// equal even though segment ids differ.
type SegmentSummary struct {
	Index     int   `json:"index" msgpack:"index"`
	Reachable bool  `json:"reachable" msgpack:"reachable"`
	Next      []int `json:"next,omitempty" msgpack:"next,omitempty"`
	AllNext   []int `json:"all_next,omitempty" msgpack:"all_next,omitempty"`
	LoopedIn  []int `json:"looped_in,omitempty" msgpack:"looped_in,omitempty"`
}

// PathSummary is a serializable snapshot of a finalized path and its
// children.
type PathSummary struct {
	Origin   Origin           `json:"origin" msgpack:"origin"`
	Kind     ast.Kind         `json:"kind" msgpack:"kind"`
	Pos      ast.Pos          `json:"pos" msgpack:"pos"`
	Segments []SegmentSummary `json:"segments" msgpack:"segments"`
	Initial  int              `json:"initial" msgpack:"initial"`
	Final    []int            `json:"final,omitempty" msgpack:"final,omitempty"`
	Returned []int            `json:"returned,omitempty" msgpack:"returned,omitempty"`
	Thrown   []int            `json:"thrown,omitempty" msgpack:"thrown,omitempty"`
	Children []PathSummary    `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Summarize snapshots p and its child paths.
func Summarize(p *Path) PathSummary {
	segments := p.Segments()
	index := make(map[*Segment]int, len(segments))
	for i, s := range segments {
		index[s] = i
	}
	indexes := func(list []*Segment) []int {
		var out []int
		for _, s := range list {
			if i, ok := index[s]; ok {
				out = append(out, i)
			}
		}
		return out
	}

	sum := PathSummary{
		Origin:   p.origin,
		Initial:  index[p.initial],
		Final:    indexes(p.final),
		Returned: indexes(p.returned),
		Thrown:   indexes(p.thrown),
	}
	if p.node != nil {
		sum.Kind = p.node.Kind
		sum.Pos = p.node.Pos
	}
	for i, s := range segments {
		sum.Segments = append(sum.Segments, SegmentSummary{
			Index:     i,
			Reachable: s.reachable,
			Next:      indexes(s.next),
			AllNext:   indexes(s.allNext),
			LoopedIn:  indexes(s.loopedPrev),
		})
	}
	for _, c := range p.children {
		sum.Children = append(sum.Children, Summarize(c))
	}
	return sum
}

// Stats counts segments of a summary tree.
type Stats struct {
	Paths       int `json:"paths" msgpack:"paths"`
	Segments    int `json:"segments" msgpack:"segments"`
	Unreachable int `json:"unreachable" msgpack:"unreachable"`
	Loops       int `json:"loops" msgpack:"loops"`
}

// Stats aggregates s and its children.
func (s PathSummary) Stats() Stats {
	st := Stats{Paths: 1, Segments: len(s.Segments)}
	for _, seg := range s.Segments {
		if !seg.Reachable {
			st.Unreachable++
		}
		st.Loops += len(seg.LoopedIn)
	}
	for _, c := range s.Children {
		cs := c.Stats()
		st.Paths += cs.Paths
		st.Segments += cs.Segments
		st.Unreachable += cs.Unreachable
		st.Loops += cs.Loops
	}
	return st
}
