package codepath

import "github.com/l3aro/go-codepath/pkg/ast"

// Origin names the construct a Path was created for.
type Origin string

const (
	OriginProgram               Origin = "program"
	OriginFunction              Origin = "function"
	OriginClassFieldInitializer Origin = "class-field-initializer"
	OriginClassStaticBlock      Origin = "class-static-block"
)

// Path is the control-flow graph of one program, function, class field
// initializer or static block.
//
// While the analyzer is inside the path's node the exit lists grow; once
// OnPathEnd has fired they are final and the whole graph is frozen.
type Path struct {
	id       string
	origin   Origin
	node     *ast.Node
	upper    *Path
	children []*Path
	arena    *arena

	initial  *Segment
	final    []*Segment
	returned []*Segment
	thrown   []*Segment

	state *state
}

func newPath(origin Origin, node *ast.Node, upper *Path, notifyLoop func(from, to *Segment), log Logger) *Path {
	id := nextPathID()
	p := &Path{
		id:     id,
		origin: origin,
		node:   node,
		upper:  upper,
		arena:  newArena(id),
	}
	p.state = newState(p, notifyLoop, log)
	return p
}

func (p *Path) ID() string { return p.id }

func (p *Path) Origin() Origin { return p.origin }

// Node returns the syntax node the path was created for.
func (p *Path) Node() *ast.Node { return p.node }

// Upper returns the enclosing path, or nil for the program path.
func (p *Path) Upper() *Path { return p.upper }

// ChildPaths returns the finished nested paths in document order.
func (p *Path) ChildPaths() []*Path { return p.children }

func (p *Path) InitialSegment() *Segment { return p.initial }

// FinalSegments returns every segment at which the path ends: explicit
// returns, throws, calls that never return, and the fall-off end.
func (p *Path) FinalSegments() []*Segment { return p.final }

func (p *Path) ReturnedSegments() []*Segment { return p.returned }

func (p *Path) ThrownSegments() []*Segment { return p.thrown }

// CurrentSegments returns the frontier while the path is being built and
// nil afterwards.
func (p *Path) CurrentSegments() []*Segment {
	if p.state == nil {
		return nil
	}
	return p.state.currentSegments
}

// Finalized reports whether the path has ended.
func (p *Path) Finalized() bool { return p.arena.frozen }

// Segments returns every segment of the path in creation order. Segments
// the builder created speculatively and never entered are omitted.
func (p *Path) Segments() []*Segment {
	out := make([]*Segment, 0, len(p.arena.segments))
	for _, s := range p.arena.segments {
		if s.used {
			out = append(out, s)
		}
	}
	return out
}

// finalize freezes the graph and hands the path to its parent.
func (p *Path) finalize() {
	p.state = nil
	p.arena.frozen = true
	if p.upper != nil {
		p.upper.children = append(p.upper.children, p)
	}
}

// TraverseOptions bounds a TraverseSegments walk.
type TraverseOptions struct {
	First *Segment // defaults to the initial segment
	Last  *Segment // successors of Last are not visited
}

// TraverseController lets a TraverseSegments callback prune the walk.
type TraverseController struct {
	skip   func()
	broken bool
}

// Skip stops the walk from descending past the current segment.
func (c *TraverseController) Skip() { c.skip() }

// Break ends the walk.
func (c *TraverseController) Break() { c.broken = true }

// TraverseSegments visits reachable segments depth-first, calling fn once
// per segment and only after all of its non-looping predecessors have been
// visited.
func (p *Path) TraverseSegments(opts TraverseOptions, fn func(*Segment, *TraverseController)) {
	start := opts.First
	if start == nil {
		start = p.initial
	}

	type frame struct {
		seg   *Segment
		index int
	}
	stack := []*frame{{seg: start}}
	visited := make(map[*Segment]bool)
	var skipped *Segment

	ctl := &TraverseController{}
	ctl.skip = func() {
		if len(stack) <= 1 {
			ctl.broken = true
			return
		}
		skipped = stack[len(stack)-2].seg
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		seg := top.seg

		if top.index == 0 {
			if visited[seg] {
				stack = stack[:len(stack)-1]
				continue
			}
			if seg != start && len(seg.prev) > 0 && !allVisited(seg, visited) {
				stack = stack[:len(stack)-1]
				continue
			}
			if skipped != nil && containsSegment(seg.prev, skipped) {
				skipped = nil
			}
			visited[seg] = true

			if skipped == nil {
				fn(seg, ctl)
				if seg == opts.Last {
					ctl.skip()
				}
				if ctl.broken {
					return
				}
			}
		}

		end := len(seg.next) - 1
		switch {
		case top.index < end:
			top.index++
			stack = append(stack, &frame{seg: seg.next[top.index-1]})
		case top.index == end:
			top.seg = seg.next[top.index]
			top.index = 0
		default:
			stack = stack[:len(stack)-1]
		}
	}
}

func allVisited(seg *Segment, visited map[*Segment]bool) bool {
	for _, p := range seg.prev {
		if !visited[p] && !seg.IsLoopedPrevSegment(p) {
			return false
		}
	}
	return true
}
