package codepath

import "fmt"

// forkContext tracks the heads of parallel branches while a construct is
// being built. Every entry of segmentsList is one branch head; each head
// holds count segments, one per parallel track. Tracks multiply inside a
// finally block, which is traversed once for the normal exit and once for
// each leaving (return/throw) exit.
type forkContext struct {
	arena        *arena
	upper        *forkContext
	count        int
	segmentsList [][]*Segment
}

func newRootForkContext(a *arena) *forkContext {
	f := &forkContext{arena: a, count: 1}
	f.add([]*Segment{newRootSegment(a)})
	return f
}

// newEmptyForkContext opens a child context. With forkLeavingPath the child
// carries twice the parent's tracks.
func newEmptyForkContext(parent *forkContext, forkLeavingPath bool) *forkContext {
	count := parent.count
	if forkLeavingPath {
		count *= 2
	}
	return &forkContext{arena: parent.arena, upper: parent, count: count}
}

func (f *forkContext) head() []*Segment {
	if len(f.segmentsList) == 0 {
		return nil
	}
	return f.segmentsList[len(f.segmentsList)-1]
}

func (f *forkContext) empty() bool {
	return len(f.segmentsList) == 0
}

func (f *forkContext) reachable() bool {
	h := f.head()
	return len(h) > 0 && anyReachable(h)
}

// makeNext joins the heads in [begin, end] into new segments. Negative
// indexes count from the end, so (-1, -1) forks off the last head and
// (0, -1) merges all of them.
func (f *forkContext) makeNext(begin, end int) []*Segment {
	return f.makeSegments(begin, end, newNextSegment)
}

func (f *forkContext) makeUnreachable(begin, end int) []*Segment {
	return f.makeSegments(begin, end, newUnreachableSegment)
}

func (f *forkContext) makeDisconnected(begin, end int) []*Segment {
	return f.makeSegments(begin, end, newDisconnectedSegment)
}

func (f *forkContext) makeSegments(begin, end int, create func(*arena, []*Segment) *Segment) []*Segment {
	n := len(f.segmentsList)
	if begin < 0 {
		begin += n
	}
	if end < 0 {
		end += n
	}
	segments := make([]*Segment, f.count)
	for i := 0; i < f.count; i++ {
		var allPrev []*Segment
		for j := begin; j <= end; j++ {
			allPrev = append(allPrev, f.segmentsList[j][i])
		}
		segments[i] = create(f.arena, allPrev)
	}
	return segments
}

// add pushes a new branch head.
func (f *forkContext) add(segments []*Segment) {
	f.checkWidth(segments)
	f.segmentsList = append(f.segmentsList, f.mergeExtraSegments(segments))
}

// replaceHead swaps the last branch head, or pushes one if there is none.
func (f *forkContext) replaceHead(segments []*Segment) {
	f.checkWidth(segments)
	merged := f.mergeExtraSegments(segments)
	if len(f.segmentsList) == 0 {
		f.segmentsList = append(f.segmentsList, merged)
		return
	}
	f.segmentsList[len(f.segmentsList)-1] = merged
}

func (f *forkContext) addAll(other *forkContext) {
	if other.count != f.count {
		invariant(fmt.Sprintf("fork context width mismatch: %d != %d", other.count, f.count))
	}
	f.segmentsList = append(f.segmentsList, other.segmentsList...)
}

func (f *forkContext) clear() {
	f.segmentsList = nil
}

func (f *forkContext) checkWidth(segments []*Segment) {
	if len(segments) < f.count {
		invariant(fmt.Sprintf("fork context expects %d segments, got %d", f.count, len(segments)))
	}
}

// mergeExtraSegments folds a head wider than count back down by pairing
// track i with track i+len/2, which is how the leaving tracks of a finally
// block rejoin their outer context.
func (f *forkContext) mergeExtraSegments(segments []*Segment) []*Segment {
	current := segments
	for len(current) > f.count {
		half := len(current) / 2
		merged := make([]*Segment, half)
		for i := 0; i < half; i++ {
			merged[i] = newNextSegment(f.arena, []*Segment{current[i], current[i+half]})
		}
		current = merged
	}
	return current
}
