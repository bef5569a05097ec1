package codepath

import "github.com/l3aro/go-codepath/pkg/ast"

// Listener receives path and segment lifecycle events in document order.
// Segments and paths handed to a listener are read-only.
type Listener interface {
	OnPathStart(p *Path, node *ast.Node)
	OnPathEnd(p *Path, node *ast.Node)
	OnSegmentStart(s *Segment, node *ast.Node)
	OnSegmentEnd(s *Segment, node *ast.Node)
	OnUnreachableSegmentStart(s *Segment, node *ast.Node)
	OnUnreachableSegmentEnd(s *Segment, node *ast.Node)
	// OnSegmentLoop fires when a back-edge from -> to closes a loop. It only
	// fires when both segments are reachable.
	OnSegmentLoop(from, to *Segment, node *ast.Node)
}

// NodeVisitor is implemented by listeners that also want every node, after
// the analyzer has updated the current segments on enter and before it
// finishes a path on leave.
type NodeVisitor interface {
	EnterNode(node *ast.Node)
	LeaveNode(node *ast.Node)
}

// NopListener ignores every event. Embed it to implement only a few methods.
type NopListener struct{}

func (NopListener) OnPathStart(*Path, *ast.Node) {}
func (NopListener) OnPathEnd(*Path, *ast.Node) {}
func (NopListener) OnSegmentStart(*Segment, *ast.Node) {}
func (NopListener) OnSegmentEnd(*Segment, *ast.Node) {}
func (NopListener) OnUnreachableSegmentStart(*Segment, *ast.Node) {}
func (NopListener) OnUnreachableSegmentEnd(*Segment, *ast.Node) {}
func (NopListener) OnSegmentLoop(*Segment, *Segment, *ast.Node) {}

// Funcs adapts plain functions to a Listener. Nil fields are skipped.
type Funcs struct {
	PathStart               func(p *Path, node *ast.Node)
	PathEnd                 func(p *Path, node *ast.Node)
	SegmentStart            func(s *Segment, node *ast.Node)
	SegmentEnd              func(s *Segment, node *ast.Node)
	UnreachableSegmentStart func(s *Segment, node *ast.Node)
	UnreachableSegmentEnd   func(s *Segment, node *ast.Node)
	SegmentLoop             func(from, to *Segment, node *ast.Node)
}

func (f Funcs) OnPathStart(p *Path, node *ast.Node) {
	if f.PathStart != nil {
		f.PathStart(p, node)
	}
}

func (f Funcs) OnPathEnd(p *Path, node *ast.Node) {
	if f.PathEnd != nil {
		f.PathEnd(p, node)
	}
}

func (f Funcs) OnSegmentStart(s *Segment, node *ast.Node) {
	if f.SegmentStart != nil {
		f.SegmentStart(s, node)
	}
}

func (f Funcs) OnSegmentEnd(s *Segment, node *ast.Node) {
	if f.SegmentEnd != nil {
		f.SegmentEnd(s, node)
	}
}

func (f Funcs) OnUnreachableSegmentStart(s *Segment, node *ast.Node) {
	if f.UnreachableSegmentStart != nil {
		f.UnreachableSegmentStart(s, node)
	}
}

func (f Funcs) OnUnreachableSegmentEnd(s *Segment, node *ast.Node) {
	if f.UnreachableSegmentEnd != nil {
		f.UnreachableSegmentEnd(s, node)
	}
}

func (f Funcs) OnSegmentLoop(from, to *Segment, node *ast.Node) {
	if f.SegmentLoop != nil {
		f.SegmentLoop(from, to, node)
	}
}

// Multi fans every event out to its listeners in order. Node visits reach
// the members that implement NodeVisitor.
type Multi []Listener

func (m Multi) OnPathStart(p *Path, node *ast.Node) {
	for _, l := range m {
		l.OnPathStart(p, node)
	}
}

func (m Multi) OnPathEnd(p *Path, node *ast.Node) {
	for _, l := range m {
		l.OnPathEnd(p, node)
	}
}

func (m Multi) OnSegmentStart(s *Segment, node *ast.Node) {
	for _, l := range m {
		l.OnSegmentStart(s, node)
	}
}

func (m Multi) OnSegmentEnd(s *Segment, node *ast.Node) {
	for _, l := range m {
		l.OnSegmentEnd(s, node)
	}
}

func (m Multi) OnUnreachableSegmentStart(s *Segment, node *ast.Node) {
	for _, l := range m {
		l.OnUnreachableSegmentStart(s, node)
	}
}

func (m Multi) OnUnreachableSegmentEnd(s *Segment, node *ast.Node) {
	for _, l := range m {
		l.OnUnreachableSegmentEnd(s, node)
	}
}

func (m Multi) OnSegmentLoop(from, to *Segment, node *ast.Node) {
	for _, l := range m {
		l.OnSegmentLoop(from, to, node)
	}
}

func (m Multi) EnterNode(node *ast.Node) {
	for _, l := range m {
		if v, ok := l.(NodeVisitor); ok {
			v.EnterNode(node)
		}
	}
}

func (m Multi) LeaveNode(node *ast.Node) {
	for _, l := range m {
		if v, ok := l.(NodeVisitor); ok {
			v.LeaveNode(node)
		}
	}
}
