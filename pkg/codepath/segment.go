package codepath

import (
	"strconv"
	"sync/atomic"
)

// pathSeq numbers paths across the whole process so that ids stay unique
// when several analyses run concurrently.
var pathSeq atomic.Uint64

func nextPathID() string {
	return "s" + strconv.FormatUint(pathSeq.Add(1), 10)
}

// arena owns every segment created for one Path. Edges are plain pointers;
// the arena is what gives segments a single owner and a creation order.
type arena struct {
	prefix   string
	seq      int
	segments []*Segment
	frozen   bool
}

func newArena(pathID string) *arena {
	return &arena{prefix: pathID + "_"}
}

func (a *arena) nextID() string {
	a.seq++
	return a.prefix + strconv.Itoa(a.seq)
}

func (a *arena) checkMutable() {
	if a.frozen {
		invariant("segment graph of a finalized path mutated")
	}
}

// newSegment registers a segment. Reachable edges are only recorded between
// two reachable segments, so an unreachable segment has no PrevSegments.
func (a *arena) newSegment(allPrev []*Segment, reachable bool) *Segment {
	a.checkMutable()
	s := &Segment{
		id:        a.nextID(),
		arena:     a,
		allPrev:   allPrev,
		reachable: reachable,
	}
	if reachable {
		s.prev = filterReachable(allPrev)
	}
	a.segments = append(a.segments, s)
	return s
}

// Segment is a maximal straight-line run of execution inside a Path.
// Segments are created and linked by the analyzer; callers only read them.
type Segment struct {
	id         string
	arena      *arena
	next       []*Segment
	prev       []*Segment
	allNext    []*Segment
	allPrev    []*Segment
	reachable  bool
	used       bool
	loopedPrev []*Segment
}

// ID returns the process-unique identifier of the segment.
func (s *Segment) ID() string { return s.id }

// Reachable reports whether live execution can reach the segment.
func (s *Segment) Reachable() bool { return s.reachable }

// NextSegments returns the reachable successors.
func (s *Segment) NextSegments() []*Segment { return s.next }

// PrevSegments returns the reachable predecessors.
func (s *Segment) PrevSegments() []*Segment { return s.prev }

// AllNextSegments returns every successor, including unreachable ones.
func (s *Segment) AllNextSegments() []*Segment { return s.allNext }

// AllPrevSegments returns every predecessor, including unreachable ones.
func (s *Segment) AllPrevSegments() []*Segment { return s.allPrev }

// IsLoopedPrevSegment reports whether prev reaches s through a loop
// back-edge.
func (s *Segment) IsLoopedPrevSegment(prev *Segment) bool {
	return containsSegment(s.loopedPrev, prev)
}

func (s *Segment) String() string { return s.id }

func newRootSegment(a *arena) *Segment {
	return a.newSegment(nil, true)
}

func newNextSegment(a *arena, allPrev []*Segment) *Segment {
	return a.newSegment(flattenUnusedSegments(allPrev), anyReachable(allPrev))
}

func newUnreachableSegment(a *arena, allPrev []*Segment) *Segment {
	s := a.newSegment(flattenUnusedSegments(allPrev), false)
	markUsed(s)
	return s
}

// newDisconnectedSegment starts a segment with no predecessors yet; the
// edges are attached later by a loop connection.
func newDisconnectedSegment(a *arena, allPrev []*Segment) *Segment {
	return a.newSegment(nil, anyReachable(allPrev))
}

// markUsed publishes s to its predecessors. Until a segment is used it is
// invisible from the rest of the graph and may be flattened away.
func markUsed(s *Segment) {
	if s.used {
		return
	}
	s.arena.checkMutable()
	s.used = true
	for _, p := range s.allPrev {
		p.allNext = append(p.allNext, s)
		if s.reachable && p.reachable {
			p.next = append(p.next, s)
		}
	}
}

func markPrevSegmentAsLooped(s, prev *Segment) {
	s.loopedPrev = append(s.loopedPrev, prev)
}

// flattenUnusedSegments replaces every unused segment by its predecessors,
// dropping duplicates while keeping order.
func flattenUnusedSegments(segments []*Segment) []*Segment {
	done := make(map[*Segment]bool, len(segments))
	out := make([]*Segment, 0, len(segments))
	for _, s := range segments {
		if done[s] {
			continue
		}
		if !s.used {
			for _, p := range s.allPrev {
				if !done[p] {
					done[p] = true
					out = append(out, p)
				}
			}
			continue
		}
		done[s] = true
		out = append(out, s)
	}
	return out
}

func anyReachable(segments []*Segment) bool {
	for _, s := range segments {
		if s.reachable {
			return true
		}
	}
	return false
}

func filterReachable(segments []*Segment) []*Segment {
	var out []*Segment
	for _, s := range segments {
		if s.reachable {
			out = append(out, s)
		}
	}
	return out
}

func containsSegment(segments []*Segment, s *Segment) bool {
	for _, x := range segments {
		if x == s {
			return true
		}
	}
	return false
}

func removeSegment(segments []*Segment, s *Segment) []*Segment {
	for i, x := range segments {
		if x == s {
			return append(segments[:i:i], segments[i+1:]...)
		}
	}
	return segments
}
