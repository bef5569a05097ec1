package codepath

import (
	"errors"
	"fmt"
)

// Verify checks the structural invariants of a finalized path and of its
// child paths:
//   - the initial segment has no predecessors
//   - every edge is recorded on both of its ends, in both edge sets
//   - unreachable segments only appear in the All* edge sets
//   - final segments cover returned and thrown ones and have no successors
//   - child paths point back to p and are in document order
//
// All violations are joined into the returned error.
func Verify(p *Path) error {
	var errs []error
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("path %s: "+format, append([]interface{}{p.id}, args...)...))
	}

	if !p.Finalized() {
		fail("not finalized")
	}
	if p.initial == nil {
		fail("no initial segment")
		return errors.Join(errs...)
	}
	if len(p.initial.prev) > 0 || len(p.initial.allPrev) > 0 {
		fail("initial segment %s has predecessors", p.initial.id)
	}

	for _, s := range p.Segments() {
		if s.arena != p.arena {
			fail("segment %s belongs to another path", s.id)
		}
		for _, n := range s.next {
			if !containsSegment(n.prev, s) {
				fail("edge %s -> %s missing from prev of %s", s.id, n.id, n.id)
			}
			if !n.reachable {
				fail("unreachable segment %s in next of %s", n.id, s.id)
			}
			if n.arena != p.arena {
				fail("edge %s -> %s crosses paths", s.id, n.id)
			}
		}
		for _, q := range s.prev {
			if !containsSegment(q.next, s) {
				fail("edge %s -> %s missing from next of %s", q.id, s.id, q.id)
			}
			if !q.reachable {
				fail("unreachable segment %s in prev of %s", q.id, s.id)
			}
		}
		for _, n := range s.allNext {
			if !containsSegment(n.allPrev, s) {
				fail("edge %s -> %s missing from all-prev of %s", s.id, n.id, n.id)
			}
		}
		for _, q := range s.allPrev {
			if !containsSegment(q.allNext, s) {
				fail("edge %s -> %s missing from all-next of %s", q.id, s.id, q.id)
			}
		}
	}

	for _, s := range p.returned {
		if !containsSegment(p.final, s) {
			fail("returned segment %s not final", s.id)
		}
	}
	for _, s := range p.thrown {
		if !containsSegment(p.final, s) {
			fail("thrown segment %s not final", s.id)
		}
	}
	for _, s := range p.final {
		if len(s.next) > 0 {
			fail("final segment %s has successors", s.id)
		}
	}

	prevStart := -1
	for _, c := range p.children {
		if c.upper != p {
			fail("child path %s has a different upper", c.id)
		}
		if c.node != nil {
			if c.node.Pos.StartByte < prevStart {
				fail("child path %s out of document order", c.id)
			}
			prevStart = c.node.Pos.StartByte
		}
		if err := Verify(c); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
