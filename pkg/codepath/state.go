package codepath

import (
	"github.com/l3aro/go-codepath/pkg/ast"
)

// testValue is what is statically known about a loop test.
type testValue int

const (
	testUnknown testValue = iota
	testTrue
	testFalse
)

type choiceKind string

const (
	choiceTest     choiceKind = "test"
	choiceLoop     choiceKind = "loop"
	choiceAnd      choiceKind = "&&"
	choiceOr       choiceKind = "||"
	choiceCoalesce choiceKind = "??"
)

// choiceContext tracks the outcomes of a condition. A logical expression
// sitting in a test position hands its true/false exits up to the enclosing
// choice instead of merging them (isForkingAsResult).
type choiceContext struct {
	upper             *choiceContext
	kind              choiceKind
	isForkingAsResult bool
	trueFork          *forkContext
	falseFork         *forkContext
	nullishFork       *forkContext
	processed         bool
}

type chainContext struct {
	upper          *chainContext
	choiceContexts int
}

type switchContext struct {
	upper               *switchContext
	hasCase             bool
	defaultSegments     []*Segment
	defaultBodySegments []*Segment
	foundDefault        bool
	lastIsDefault       bool
	forks               int
}

type tryPosition int

const (
	inTry tryPosition = iota
	inCatch
	inFinally
)

type tryContext struct {
	upper        *tryContext
	position     tryPosition
	hasHandler   bool
	hasFinalizer bool
	returned     *forkContext
	thrown       *forkContext

	// breaks and continues that leave through the finally block, and where
	// each target resumes once the block is done
	jumped  *forkContext
	resumes []pendingJump
}

type pendingJump struct {
	target interface{} // *breakContext or *loopContext
	resume func(leaving []*Segment)
}

type loopContext struct {
	upper *loopContext
	kind  ast.Kind
	label string
	test  testValue
	try   *tryContext // innermost try statement around the loop

	continueDestSegments []*Segment
	brokenFork           *forkContext

	// do-while
	entrySegments []*Segment
	continueFork  *forkContext

	// for
	endOfInitSegments   []*Segment
	testSegments        []*Segment
	endOfTestSegments   []*Segment
	updateSegments      []*Segment
	endOfUpdateSegments []*Segment

	// for-in, for-of
	prevSegments      []*Segment
	leftSegments      []*Segment
	endOfLeftSegments []*Segment
}

type breakContext struct {
	upper      *breakContext
	breakable  bool
	label      string
	brokenFork *forkContext
	try        *tryContext // innermost try statement around the target
}

// state is the mutable builder for one in-progress Path. It is dropped as
// soon as the path is finalized.
type state struct {
	path       *Path
	arena      *arena
	notifyLoop func(from, to *Segment)
	log        Logger

	forkContext *forkContext
	choice      *choiceContext
	chain       *chainContext
	sw          *switchContext
	try         *tryContext
	loop        *loopContext
	brk         *breakContext

	currentSegments []*Segment
}

func newState(p *Path, notifyLoop func(from, to *Segment), log Logger) *state {
	s := &state{
		path:       p,
		arena:      p.arena,
		notifyLoop: notifyLoop,
		log:        log,
	}
	s.forkContext = newRootForkContext(p.arena)
	p.initial = s.forkContext.head()[0]
	return s
}

func (s *state) headSegments() []*Segment {
	return s.forkContext.head()
}

func (s *state) parentForkContext() *forkContext {
	return s.forkContext.upper
}

// Path-level exits.

func (s *state) addReturned(segments []*Segment) {
	p := s.path
	for _, seg := range segments {
		p.returned = append(p.returned, seg)
		if !containsSegment(p.thrown, seg) {
			p.final = appendUnique(p.final, seg)
		}
	}
}

func (s *state) addThrown(segments []*Segment) {
	p := s.path
	for _, seg := range segments {
		p.thrown = append(p.thrown, seg)
		if !containsSegment(p.returned, seg) {
			p.final = appendUnique(p.final, seg)
		}
	}
}

func (s *state) addFinal(segments []*Segment) {
	for _, seg := range segments {
		s.path.final = appendUnique(s.path.final, seg)
	}
}

func appendUnique(list []*Segment, seg *Segment) []*Segment {
	if containsSegment(list, seg) {
		return list
	}
	return append(list, seg)
}

// returnContext finds the try statement a return passes through first, or
// nil when it leaves the path directly.
func (s *state) returnContext() *tryContext {
	for c := s.try; c != nil; c = c.upper {
		if c.hasFinalizer && c.position != inFinally {
			return c
		}
	}
	return nil
}

func (s *state) throwContext() *tryContext {
	for c := s.try; c != nil; c = c.upper {
		if c.position == inTry && (c.hasHandler || c.hasFinalizer) {
			return c
		}
		if c.hasFinalizer && c.position == inCatch {
			return c
		}
	}
	return nil
}

func (s *state) returnTarget() func([]*Segment) {
	if c := s.returnContext(); c != nil {
		return c.returned.add
	}
	return s.addReturned
}

func (s *state) throwTarget() func([]*Segment) {
	if c := s.throwContext(); c != nil {
		return c.thrown.add
	}
	return s.addThrown
}

// routeJump hands the segments of a break or continue to deliver, passing
// first through every finally block between the jump and its target.
// boundary is the innermost try statement around the target.
func (s *state) routeJump(target interface{}, boundary *tryContext, segments []*Segment, deliver func([]*Segment)) {
	for c := s.try; c != nil && c != boundary; c = c.upper {
		if !c.hasFinalizer || c.position == inFinally {
			continue
		}
		c.jumped.add(segments)
		for _, j := range c.resumes {
			if j.target == target {
				return
			}
		}
		c.resumes = append(c.resumes, pendingJump{
			target: target,
			resume: func(leaving []*Segment) {
				s.routeJump(target, boundary, leaving, deliver)
			},
		})
		return
	}
	deliver(segments)
}

func (s *state) continueContext(label string) *loopContext {
	if label == "" {
		return s.loop
	}
	for c := s.loop; c != nil; c = c.upper {
		if c.label == label {
			return c
		}
	}
	return nil
}

func (s *state) breakContext(label string) *breakContext {
	for c := s.brk; c != nil; c = c.upper {
		if label != "" && c.label == label {
			return c
		}
		if label == "" && c.breakable {
			return c
		}
	}
	return nil
}

// makeLooped connects the ends of a loop body back to its head, track by
// track. Reachable edges are only added when both ends are reachable.
func (s *state) makeLooped(unflattenedFrom, unflattenedTo []*Segment) {
	from := flattenUnusedSegments(unflattenedFrom)
	to := flattenUnusedSegments(unflattenedTo)
	end := min(len(from), len(to))
	for i := 0; i < end; i++ {
		f, t := from[i], to[i]
		f.arena.checkMutable()
		if f.reachable && t.reachable {
			f.next = append(f.next, t)
			t.prev = append(t.prev, f)
		}
		f.allNext = append(f.allNext, t)
		t.allPrev = append(t.allPrev, f)
		if len(t.allPrev) >= 2 {
			markPrevSegmentAsLooped(t, f)
		}
		if s.notifyLoop != nil {
			s.notifyLoop(f, t)
		}
	}
}

// removeConnection drops the edges prev[i] -> next[i].
func removeConnection(prev, next []*Segment) {
	for i := 0; i < len(prev) && i < len(next); i++ {
		p, n := prev[i], next[i]
		p.arena.checkMutable()
		p.next = removeSegment(p.next, n)
		p.allNext = removeSegment(p.allNext, n)
		n.prev = removeSegment(n.prev, p)
		n.allPrev = removeSegment(n.allPrev, p)
	}
}

// Fork contexts.

func (s *state) pushForkContext(forkLeavingPath bool) *forkContext {
	s.forkContext = newEmptyForkContext(s.forkContext, forkLeavingPath)
	return s.forkContext
}

func (s *state) popForkContext() *forkContext {
	last := s.forkContext
	s.forkContext = last.upper
	s.forkContext.replaceHead(last.makeNext(0, -1))
	return last
}

// forkPath adds a new branch starting from the parent's head.
func (s *state) forkPath() {
	s.forkContext.add(s.parentForkContext().makeNext(-1, -1))
}

// forkBypassPath adds the parent's head itself as a branch, for the path
// that skips the construct entirely.
func (s *state) forkBypassPath() {
	s.forkContext.add(s.parentForkContext().head())
}

// Choice: if, ternary, logical operators, loop tests.

func (s *state) pushChoiceContext(kind choiceKind, isForkingAsResult bool) {
	s.choice = &choiceContext{
		upper:             s.choice,
		kind:              kind,
		isForkingAsResult: isForkingAsResult,
		trueFork:          newEmptyForkContext(s.forkContext, false),
		falseFork:         newEmptyForkContext(s.forkContext, false),
		nullishFork:       newEmptyForkContext(s.forkContext, false),
	}
}

func (s *state) popChoiceContext() *choiceContext {
	c := s.choice
	s.choice = c.upper
	fork := s.forkContext
	head := fork.head()

	switch c.kind {
	case choiceAnd, choiceOr, choiceCoalesce:
		if !c.processed {
			c.trueFork.add(head)
			c.falseFork.add(head)
			c.nullishFork.add(head)
		}
		if c.isForkingAsResult {
			parent := s.choice
			parent.trueFork.addAll(c.trueFork)
			parent.falseFork.addAll(c.falseFork)
			parent.nullishFork.addAll(c.nullishFork)
			parent.processed = true
			return c
		}
	case choiceTest:
		if !c.processed {
			// head is the end of the consequent
			c.trueFork.clear()
			c.trueFork.add(head)
		} else {
			// head is the end of the alternate
			c.falseFork.clear()
			c.falseFork.add(head)
		}
	case choiceLoop:
		// merged by popLoopContext
		return c
	default:
		invariant("unknown choice kind " + string(c.kind))
	}

	merged := c.trueFork
	merged.addAll(c.falseFork)
	fork.replaceHead(merged.makeNext(0, -1))
	return c
}

func (s *state) makeLogicalRight() {
	c := s.choice
	fork := s.forkContext

	if c.processed {
		// A nested logical expression already split the left operand.
		var prev *forkContext
		switch c.kind {
		case choiceAnd:
			prev = c.trueFork
		case choiceOr:
			prev = c.falseFork
		case choiceCoalesce:
			prev = c.nullishFork
		default:
			invariant("logical right outside a logical choice")
		}
		fork.replaceHead(prev.makeNext(0, -1))
		prev.clear()
		c.processed = false
		return
	}

	switch c.kind {
	case choiceAnd:
		c.falseFork.add(fork.head())
	case choiceOr:
		c.trueFork.add(fork.head())
	case choiceCoalesce:
		c.trueFork.add(fork.head())
		c.falseFork.add(fork.head())
	default:
		invariant("logical right outside a logical choice")
	}
	fork.replaceHead(fork.makeNext(-1, -1))
}

func (s *state) makeIfConsequent() {
	c := s.choice
	fork := s.forkContext
	if !c.processed {
		c.trueFork.add(fork.head())
		c.falseFork.add(fork.head())
		c.nullishFork.add(fork.head())
	}
	c.processed = false
	fork.replaceHead(c.trueFork.makeNext(0, -1))
}

func (s *state) makeIfAlternate() {
	c := s.choice
	fork := s.forkContext
	c.trueFork.clear()
	c.trueFork.add(fork.head())
	c.processed = true
	fork.replaceHead(c.falseFork.makeNext(0, -1))
}

// Optional chaining.

func (s *state) pushChainContext() {
	s.chain = &chainContext{upper: s.chain}
}

func (s *state) popChainContext() {
	c := s.chain
	s.chain = c.upper
	for i := c.choiceContexts; i > 0; i-- {
		s.popChoiceContext()
	}
}

func (s *state) makeOptionalNode() {
	if s.chain != nil {
		s.chain.choiceContexts++
		s.pushChoiceContext(choiceCoalesce, false)
	}
}

func (s *state) makeOptionalRight() {
	if s.chain != nil {
		s.makeLogicalRight()
	}
}

// Switch.

func (s *state) pushSwitchContext(hasCase bool, label string) {
	s.sw = &switchContext{upper: s.sw, hasCase: hasCase}
	s.pushBreakContext(true, label)
}

func (s *state) popSwitchContext() {
	c := s.sw
	s.sw = c.upper
	fork := s.forkContext
	broken := s.popBreakContext().brokenFork

	if c.forks == 0 {
		// Only a default chunk: breaks still need merging.
		if !broken.empty() {
			broken.add(fork.head())
			fork.replaceHead(broken.makeNext(0, -1))
		}
		return
	}

	lastSegments := fork.head()
	s.forkBypassPath()
	lastCaseSegments := fork.head()

	broken.add(lastSegments)

	if !c.lastIsDefault {
		if c.defaultBodySegments != nil {
			// No case matched: the dispatch falls into the default body,
			// not to where the default label sits.
			removeConnection(c.defaultSegments, c.defaultBodySegments)
			s.makeLooped(lastCaseSegments, c.defaultBodySegments)
		} else {
			broken.add(lastCaseSegments)
		}
	}

	for i := 0; i < c.forks; i++ {
		s.forkContext = s.forkContext.upper
	}
	s.forkContext.replaceHead(broken.makeNext(0, -1))
}

func (s *state) makeSwitchCaseBody(isEmpty, isDefault bool) {
	c := s.sw
	if !c.hasCase {
		return
	}

	// The parent holds the case test path and the fall-through from the
	// previous body.
	parent := s.forkContext
	fork := s.pushForkContext(false)
	fork.add(parent.makeNext(0, -1))

	if isDefault {
		c.defaultSegments = parent.head()
		if isEmpty {
			c.foundDefault = true
		} else {
			c.defaultBodySegments = fork.head()
		}
	} else if !isEmpty && c.foundDefault {
		c.foundDefault = false
		c.defaultBodySegments = fork.head()
	}

	c.lastIsDefault = isDefault
	c.forks++
}

// Try.

func (s *state) pushTryContext(hasHandler, hasFinalizer bool) {
	s.try = &tryContext{
		upper:        s.try,
		position:     inTry,
		hasHandler:   hasHandler,
		hasFinalizer: hasFinalizer,
		returned:     newEmptyForkContext(s.forkContext, false),
		thrown:       newEmptyForkContext(s.forkContext, false),
		jumped:       newEmptyForkContext(s.forkContext, false),
	}
}

func (s *state) popTryContext() {
	c := s.try
	s.try = c.upper

	if c.position == inCatch {
		s.popForkContext()
		return
	}
	// A try with neither catch nor finally only comes from recovered
	// syntax errors; nothing was forked for it.
	if c.position == inTry {
		return
	}

	returned := c.returned
	thrown := c.thrown
	if returned.empty() && thrown.empty() && c.jumped.empty() {
		return
	}

	// The finally block ran with doubled tracks: the first half is the
	// normal exit, the second half leaves the statement.
	head := s.forkContext.head()
	s.forkContext = s.forkContext.upper
	half := len(head) / 2
	normal := head[:half]
	leaving := head[half:]

	if !returned.empty() {
		s.returnTarget()(leaving)
	}
	if !thrown.empty() {
		s.throwTarget()(leaving)
	}
	for _, j := range c.resumes {
		j.resume(leaving)
	}

	s.forkContext.replaceHead(normal)
}

func (s *state) makeCatchBlock() {
	c := s.try
	fork := s.forkContext
	thrown := c.thrown

	c.position = inCatch
	c.thrown = newEmptyForkContext(fork, false)

	thrown.add(fork.head())
	thrownSegments := thrown.makeNext(0, -1)

	s.pushForkContext(false)
	s.forkBypassPath()
	s.forkContext.add(thrownSegments)
}

func (s *state) makeFinallyBlock() {
	c := s.try
	fork := s.forkContext
	returned := c.returned
	thrown := c.thrown
	headOfLeaving := fork.head()

	if c.position == inCatch {
		s.popForkContext()
		fork = s.forkContext
	}
	c.position = inFinally

	if returned.empty() && thrown.empty() && c.jumped.empty() {
		return
	}

	// One normal track plus one leaving track per existing track; the
	// leaving track merges every return, throw, break and continue that
	// passes through.
	segments := fork.makeNext(-1, -1)
	for i := 0; i < fork.count; i++ {
		prev := []*Segment{headOfLeaving[i]}
		for _, r := range returned.segmentsList {
			prev = append(prev, r[i])
		}
		for _, t := range thrown.segmentsList {
			prev = append(prev, t[i])
		}
		for _, j := range c.jumped.segmentsList {
			prev = append(prev, j[i])
		}
		segments = append(segments, newNextSegment(s.arena, prev))
	}

	s.pushForkContext(true)
	s.forkContext.add(segments)
}

// makeFirstThrowablePathInTryBlock forks the first point inside a try block
// that may throw into the catch entry.
func (s *state) makeFirstThrowablePathInTryBlock() {
	fork := s.forkContext
	if !fork.reachable() {
		return
	}
	c := s.throwContext()
	if c == nil || c.position != inTry || !c.thrown.empty() {
		return
	}
	c.thrown.add(fork.head())
	fork.replaceHead(fork.makeNext(-1, -1))
}

// Loops.

func (s *state) pushLoopContext(kind ast.Kind, label string) {
	brk := s.pushBreakContext(true, label)
	c := &loopContext{
		upper:      s.loop,
		kind:       kind,
		label:      label,
		try:        s.try,
		brokenFork: brk.brokenFork,
	}
	switch kind {
	case ast.WhileStatement, ast.ForStatement:
		s.pushChoiceContext(choiceLoop, false)
	case ast.DoWhileStatement:
		s.pushChoiceContext(choiceLoop, false)
		c.continueFork = newEmptyForkContext(s.forkContext, false)
	case ast.ForInStatement, ast.ForOfStatement:
	default:
		invariant("unknown loop kind " + string(kind))
	}
	s.loop = c
}

func (s *state) popLoopContext() {
	c := s.loop
	s.loop = c.upper
	fork := s.forkContext
	broken := s.popBreakContext().brokenFork

	switch c.kind {
	case ast.WhileStatement, ast.ForStatement:
		s.popChoiceContext()
		s.makeLooped(fork.head(), c.continueDestSegments)
	case ast.DoWhileStatement:
		choice := s.popChoiceContext()
		if !choice.processed {
			choice.trueFork.add(fork.head())
			choice.falseFork.add(fork.head())
		}
		if c.test != testTrue {
			broken.addAll(choice.falseFork)
		}
		for _, segments := range choice.trueFork.segmentsList {
			s.makeLooped(segments, c.entrySegments)
		}
	case ast.ForInStatement, ast.ForOfStatement:
		broken.add(fork.head())
		s.makeLooped(fork.head(), c.leftSegments)
	}

	if broken.empty() {
		fork.replaceHead(fork.makeUnreachable(-1, -1))
	} else {
		fork.replaceHead(broken.makeNext(0, -1))
	}
}

func (s *state) makeWhileTest(test testValue) {
	c := s.loop
	fork := s.forkContext
	testSegments := fork.makeNext(0, -1)

	c.test = test
	c.continueDestSegments = testSegments
	fork.replaceHead(testSegments)
}

func (s *state) makeWhileBody() {
	c := s.loop
	choice := s.choice
	fork := s.forkContext

	if !choice.processed {
		choice.trueFork.add(fork.head())
		choice.falseFork.add(fork.head())
	}
	if c.test != testTrue {
		c.brokenFork.addAll(choice.falseFork)
	}
	fork.replaceHead(choice.trueFork.makeNext(0, -1))
}

func (s *state) makeDoWhileBody() {
	fork := s.forkContext
	body := fork.makeNext(-1, -1)
	s.loop.entrySegments = body
	fork.replaceHead(body)
}

func (s *state) makeDoWhileTest(test testValue) {
	c := s.loop
	fork := s.forkContext
	c.test = test

	if !c.continueFork.empty() {
		c.continueFork.add(fork.head())
		fork.replaceHead(c.continueFork.makeNext(0, -1))
	}
}

func (s *state) makeForTest(test testValue) {
	c := s.loop
	fork := s.forkContext
	endOfInit := fork.head()
	testSegments := fork.makeNext(-1, -1)

	c.test = test
	c.endOfInitSegments = endOfInit
	c.testSegments = testSegments
	c.continueDestSegments = testSegments
	fork.replaceHead(testSegments)
}

func (s *state) makeForUpdate() {
	c := s.loop
	fork := s.forkContext

	if c.testSegments != nil {
		s.finalizeForTest(fork.head())
	} else {
		c.endOfInitSegments = fork.head()
	}

	update := fork.makeDisconnected(-1, -1)
	c.updateSegments = update
	c.continueDestSegments = update
	fork.replaceHead(update)
}

func (s *state) makeForBody() {
	c := s.loop
	fork := s.forkContext

	switch {
	case c.updateSegments != nil:
		c.endOfUpdateSegments = fork.head()
		if c.testSegments != nil {
			s.makeLooped(c.endOfUpdateSegments, c.testSegments)
		}
	case c.testSegments != nil:
		s.finalizeForTest(fork.head())
	default:
		c.endOfInitSegments = fork.head()
	}

	body := c.endOfTestSegments
	if body == nil {
		// No test: the body is entered from init and from update.
		prev := newEmptyForkContext(fork, false)
		prev.add(c.endOfInitSegments)
		if c.endOfUpdateSegments != nil {
			prev.add(c.endOfUpdateSegments)
		}
		body = prev.makeNext(0, -1)
	}
	if c.continueDestSegments == nil {
		c.continueDestSegments = body
	}
	fork.replaceHead(body)
}

func (s *state) finalizeForTest(head []*Segment) {
	c := s.loop
	choice := s.choice
	if !choice.processed {
		choice.trueFork.add(head)
		choice.falseFork.add(head)
		choice.nullishFork.add(head)
	}
	if c.test != testTrue {
		c.brokenFork.addAll(choice.falseFork)
	}
	c.endOfTestSegments = choice.trueFork.makeNext(0, -1)
}

func (s *state) makeForInOfLeft() {
	c := s.loop
	fork := s.forkContext
	left := fork.makeDisconnected(-1, -1)

	c.prevSegments = fork.head()
	c.leftSegments = left
	c.continueDestSegments = left
	fork.replaceHead(left)
}

func (s *state) makeForInOfRight() {
	c := s.loop
	fork := s.forkContext
	tmp := newEmptyForkContext(fork, false)
	tmp.add(c.prevSegments)
	right := tmp.makeNext(-1, -1)

	c.endOfLeftSegments = fork.head()
	fork.replaceHead(right)
}

func (s *state) makeForInOfBody() {
	c := s.loop
	fork := s.forkContext
	tmp := newEmptyForkContext(fork, false)
	tmp.add(c.endOfLeftSegments)
	body := tmp.makeNext(-1, -1)

	// right -> left
	s.makeLooped(fork.head(), c.leftSegments)

	c.brokenFork.add(fork.head())
	fork.replaceHead(body)
}

// Break targets.

func (s *state) pushBreakContext(breakable bool, label string) *breakContext {
	s.brk = &breakContext{
		upper:      s.brk,
		breakable:  breakable,
		label:      label,
		brokenFork: newEmptyForkContext(s.forkContext, false),
		try:        s.try,
	}
	return s.brk
}

func (s *state) popBreakContext() *breakContext {
	c := s.brk
	fork := s.forkContext
	s.brk = c.upper

	// A labeled non-loop statement rejoins its breaks right here.
	if !c.breakable {
		broken := c.brokenFork
		if !broken.empty() {
			broken.add(fork.head())
			fork.replaceHead(broken.makeNext(0, -1))
		}
	}
	return c
}

// Abrupt completions.

func (s *state) makeBreak(label string) {
	fork := s.forkContext
	if !fork.reachable() {
		return
	}
	if c := s.breakContext(label); c != nil {
		s.routeJump(c, c.try, fork.head(), c.brokenFork.add)
	} else {
		s.logUnresolved("break", label)
		s.returnTarget()(fork.head())
	}
	fork.replaceHead(fork.makeUnreachable(-1, -1))
}

func (s *state) makeContinue(label string) {
	fork := s.forkContext
	if !fork.reachable() {
		return
	}
	c := s.continueContext(label)
	switch {
	case c == nil:
		s.logUnresolved("continue", label)
		s.returnTarget()(fork.head())
	case c.continueDestSegments != nil:
		dest := c.continueDestSegments
		s.routeJump(c, c.try, fork.head(), func(segments []*Segment) {
			s.makeLooped(segments, dest)
			// continue in for-in/of may also end the loop
			if c.kind == ast.ForInStatement || c.kind == ast.ForOfStatement {
				c.brokenFork.add(segments)
			}
		})
	default:
		s.routeJump(c, c.try, fork.head(), c.continueFork.add)
	}
	fork.replaceHead(fork.makeUnreachable(-1, -1))
}

func (s *state) makeReturn() {
	fork := s.forkContext
	if fork.reachable() {
		s.returnTarget()(fork.head())
		fork.replaceHead(fork.makeUnreachable(-1, -1))
	}
}

func (s *state) makeThrow() {
	fork := s.forkContext
	if fork.reachable() {
		s.throwTarget()(fork.head())
		fork.replaceHead(fork.makeUnreachable(-1, -1))
	}
}

// makeTerminate ends the path at a call that never returns. Unlike return
// it does not pass through enclosing finally blocks.
func (s *state) makeTerminate() {
	fork := s.forkContext
	if fork.reachable() {
		s.addFinal(fork.head())
		fork.replaceHead(fork.makeUnreachable(-1, -1))
	}
}

// makeFinal records the fall-off end of the path.
func (s *state) makeFinal() {
	segments := s.currentSegments
	if len(segments) > 0 && segments[0].reachable {
		s.addFinal(segments)
	}
}

func (s *state) logUnresolved(stmt, label string) {
	if s.log != nil {
		s.log.Debug("unresolved jump target, routed to function exit",
			"path", s.path.id, "statement", stmt, "label", label)
	}
}
