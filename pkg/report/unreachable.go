// Package report turns code paths into findings: ranges of unreachable
// statements and per-file path summaries.
package report

import (
	"github.com/l3aro/go-codepath/pkg/ast"
	"github.com/l3aro/go-codepath/pkg/codepath"
)

// Range is a run of consecutive unreachable statements.
type Range struct {
	Pos        ast.Pos  `json:"pos" msgpack:"pos"`
	Kind       ast.Kind `json:"kind" msgpack:"kind"` // kind of the first statement
	Statements int      `json:"statements" msgpack:"statements"`
}

// Unreachable is a codepath listener collecting the statements that no code
// path reaches. Nested statements of a reported statement are not reported
// again, and adjacent siblings are merged into one Range.
type Unreachable struct {
	codepath.NopListener

	paths   []*codepath.Path
	ranges  []Range
	pending *Range
	members []*ast.Node // statements merged into pending
}

func NewUnreachable() *Unreachable {
	return &Unreachable{}
}

// Ranges returns the collected ranges in document order. It is complete once
// the program path has ended.
func (u *Unreachable) Ranges() []Range {
	return u.ranges
}

func (u *Unreachable) OnPathStart(p *codepath.Path, _ *ast.Node) {
	u.paths = append(u.paths, p)
}

func (u *Unreachable) OnPathEnd(_ *codepath.Path, _ *ast.Node) {
	u.paths = u.paths[:len(u.paths)-1]
	if len(u.paths) == 0 {
		u.flush()
	}
}

func (u *Unreachable) EnterNode(n *ast.Node) {
	if len(u.paths) == 0 || !reportable(n) {
		return
	}
	current := u.paths[len(u.paths)-1].CurrentSegments()
	for _, s := range current {
		if s.Reachable() {
			return
		}
	}

	switch {
	case u.pending == nil:
		u.start(n)
	case u.covers(n):
	case follows(u.members[len(u.members)-1], n):
		u.pending.Pos.EndLine = n.Pos.EndLine
		u.pending.Pos.EndColumn = n.Pos.EndColumn
		u.pending.Pos.EndByte = n.Pos.EndByte
		u.pending.Statements++
		u.members = append(u.members, n)
	default:
		u.flush()
		u.start(n)
	}
}

func (u *Unreachable) LeaveNode(*ast.Node) {}

func (u *Unreachable) start(n *ast.Node) {
	u.pending = &Range{Pos: n.Pos, Kind: n.Kind, Statements: 1}
	u.members = []*ast.Node{n}
}

func (u *Unreachable) flush() {
	if u.pending != nil {
		u.ranges = append(u.ranges, *u.pending)
	}
	u.pending = nil
	u.members = nil
}

// covers reports whether n is nested in a statement of the pending range.
func (u *Unreachable) covers(n *ast.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, m := range u.members {
			if p == m {
				return true
			}
		}
	}
	return false
}

// reportable reports whether n is a statement worth flagging. Function
// declarations are hoisted, and so is a var declaration without
// initializers.
func reportable(n *ast.Node) bool {
	switch n.Kind {
	case ast.FunctionDeclaration, ast.EmptyStatement:
		return false
	case ast.VariableDeclaration:
		if n.Operator != "var" {
			return true
		}
		for _, d := range n.Children {
			if d.Init != nil {
				return true
			}
		}
		return false
	}
	return n.IsStatement()
}

// follows reports whether n is the sibling right after prev.
func follows(prev, n *ast.Node) bool {
	if prev == nil || prev.Parent == nil || prev.Parent != n.Parent {
		return false
	}
	siblings := prev.Parent.Children
	for i, c := range siblings {
		if c == prev {
			return i+1 < len(siblings) && siblings[i+1] == n
		}
	}
	return false
}
