// Package codepath builds code paths, the control-flow graphs of a program
// and of every function, class field initializer and static block in it.
//
// An Analyzer walks an ast tree once in document order. On the way it forks,
// joins and loops segments, and reports every step to a Listener:
//
//	res, err := codepath.New(codepath.Options{Listener: l}).Analyze(ctx, root)
//
// The resulting graphs are immutable once their OnPathEnd event has fired.
package codepath

import (
	"context"
	"errors"
	"fmt"

	"github.com/l3aro/go-codepath/pkg/ast"
)

// Logger is the debug sink of the analyzer. internal/log.Logger satisfies
// it.
type Logger interface {
	Debug(msg string, args ...interface{})
}

// Options configures an Analyzer.
type Options struct {
	// Listener receives the events. It may also implement NodeVisitor.
	Listener Listener

	// Logger receives debug checkpoints. Nil disables logging.
	Logger Logger

	// IsAbrupt reports whether an expression statement is guaranteed never
	// to complete, like a call to process.exit. Control after such a
	// statement is unreachable. Nil means no statement is.
	IsAbrupt func(stmt *ast.Node) bool
}

// Result holds every path built by one analysis.
type Result struct {
	Program *Path   // the root path
	Paths   []*Path // every path, in the order they started
}

// ErrInvalidRoot is returned when the tree does not start with a node that
// opens a code path.
var ErrInvalidRoot = errors.New("codepath: root must be a program or function node")

// Analyzer builds code paths. It holds no per-run state and can be shared
// between goroutines as long as the listener can.
type Analyzer struct {
	opts Options
}

// New returns an analyzer for opts.
func New(opts Options) *Analyzer {
	if opts.Listener == nil {
		opts.Listener = NopListener{}
	}
	return &Analyzer{opts: opts}
}

// Analyze walks root and builds its code paths. When ctx is cancelled the
// walk stops, no further events fire and every path built so far is
// discarded.
func (a *Analyzer) Analyze(ctx context.Context, root *ast.Node) (*Result, error) {
	if root == nil {
		return nil, ErrInvalidRoot
	}
	switch root.Kind {
	case ast.Program, ast.FunctionDeclaration, ast.FunctionExpression, ast.ArrowFunctionExpression:
	default:
		return nil, fmt.Errorf("%w: got %s", ErrInvalidRoot, root.Kind)
	}

	r := &run{
		ctx:      ctx,
		opts:     a.opts,
		listener: a.opts.Listener,
	}
	r.visitor, _ = a.opts.Listener.(NodeVisitor)

	if err := r.walk(root); err != nil {
		return nil, fmt.Errorf("analyzing code paths: %w", err)
	}
	return &Result{Program: r.paths[0], Paths: r.paths}, nil
}

// run is the traversal state of one Analyze call.
type run struct {
	ctx      context.Context
	opts     Options
	listener Listener
	visitor  NodeVisitor

	path    *Path
	current *ast.Node
	paths   []*Path
}

func (r *run) walk(n *ast.Node) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.enterNode(n)
	for _, c := range n.Children {
		if err := r.walk(c); err != nil {
			return err
		}
	}
	r.leaveNode(n)
	return nil
}

func (r *run) enterNode(n *ast.Node) {
	r.current = n
	if n.Parent != nil && r.path != nil {
		r.preprocess(n)
	}
	r.processToEnter(n)
	if r.visitor != nil {
		r.visitor.EnterNode(n)
	}
	r.current = nil
}

func (r *run) leaveNode(n *ast.Node) {
	r.current = n
	r.processToExit(n)
	if r.visitor != nil {
		r.visitor.LeaveNode(n)
	}
	r.postprocess(n)
	r.current = nil
}

func (r *run) debug(msg string, args ...interface{}) {
	if r.opts.Logger != nil {
		r.opts.Logger.Debug(msg, args...)
	}
}

// onLooped is the loop callback of every state built by this run.
func (r *run) onLooped(from, to *Segment) {
	if from.reachable && to.reachable {
		r.debug("segment loop", "from", from.id, "to", to.id)
		r.listener.OnSegmentLoop(from, to, r.current)
	}
}

// forwardCurrentToHead moves the current segments to the head of the fork
// context, ending the segments left behind and starting the new ones.
func (r *run) forwardCurrentToHead(n *ast.Node) {
	st := r.path.state
	current := st.currentSegments
	head := st.headSegments()
	end := max(len(current), len(head))

	for i := 0; i < end; i++ {
		c, h := segmentAt(current, i), segmentAt(head, i)
		if c != nil && c != h {
			r.emitSegmentEnd(c, n)
		}
	}

	st.currentSegments = head

	for i := 0; i < end; i++ {
		c, h := segmentAt(current, i), segmentAt(head, i)
		if h != nil && c != h {
			markUsed(h)
			if h.reachable {
				r.debug("segment start", "segment", h.id)
				r.listener.OnSegmentStart(h, n)
			} else {
				r.debug("unreachable segment start", "segment", h.id)
				r.listener.OnUnreachableSegmentStart(h, n)
			}
		}
	}
}

func (r *run) leaveFromCurrentSegment(n *ast.Node) {
	st := r.path.state
	for _, s := range st.currentSegments {
		r.emitSegmentEnd(s, n)
	}
	st.currentSegments = nil
}

func (r *run) emitSegmentEnd(s *Segment, n *ast.Node) {
	if s.reachable {
		r.debug("segment end", "segment", s.id)
		r.listener.OnSegmentEnd(s, n)
	} else {
		r.debug("unreachable segment end", "segment", s.id)
		r.listener.OnUnreachableSegmentEnd(s, n)
	}
}

func segmentAt(list []*Segment, i int) *Segment {
	if i < len(list) {
		return list[i]
	}
	return nil
}

// preprocess applies the forks implied by n's position in its parent.
func (r *run) preprocess(n *ast.Node) {
	st := r.path.state
	p := n.Parent

	switch p.Kind {
	case ast.CallExpression:
		// the no-argument case is handled in postprocess
		if p.Optional && len(p.Arguments) > 0 && p.Arguments[0] == n {
			st.makeOptionalRight()
		}
	case ast.MemberExpression:
		if p.Optional && p.MemberProp == n {
			st.makeOptionalRight()
		}
	case ast.LogicalExpression:
		if p.Right == n && isHandledLogicalOperator(p.Operator) {
			st.makeLogicalRight()
		}
	case ast.AssignmentExpression:
		if p.Right == n && isLogicalAssignmentOperator(p.Operator) {
			st.makeLogicalRight()
		}
	case ast.ConditionalExpression, ast.IfStatement:
		if p.Consequent == n {
			st.makeIfConsequent()
		} else if p.Alternate == n {
			st.makeIfAlternate()
		}
	case ast.SwitchCase:
		if len(p.Statements) > 0 && p.Statements[0] == n {
			st.makeSwitchCaseBody(false, p.Test == nil)
		}
	case ast.TryStatement:
		if p.Handler == n {
			st.makeCatchBlock()
		} else if p.Finalizer == n {
			st.makeFinallyBlock()
		}
	case ast.WhileStatement:
		if p.Test == n {
			st.makeWhileTest(constantTest(n))
		} else if p.Body == n {
			st.makeWhileBody()
		}
	case ast.DoWhileStatement:
		if p.Body == n {
			st.makeDoWhileBody()
		} else if p.Test == n {
			st.makeDoWhileTest(constantTest(n))
		}
	case ast.ForStatement:
		switch n {
		case p.Test:
			st.makeForTest(constantTest(n))
		case p.Update:
			st.makeForUpdate()
		case p.Body:
			st.makeForBody()
		}
	case ast.ForInStatement, ast.ForOfStatement:
		switch n {
		case p.Left:
			st.makeForInOfLeft()
		case p.Right:
			st.makeForInOfRight()
		case p.Body:
			st.makeForInOfBody()
		}
	case ast.AssignmentPattern:
		// the left side always runs; the default value is a bypassable fork
		if p.Right == n {
			st.pushForkContext(false)
			st.forkBypassPath()
			st.forkPath()
		}
	}
}

func (r *run) startPath(origin Origin, n *ast.Node) {
	if r.path != nil {
		r.forwardCurrentToHead(n)
	}
	r.path = newPath(origin, n, r.path, r.onLooped, r.opts.Logger)
	r.paths = append(r.paths, r.path)
	r.debug("path start", "path", r.path.id, "origin", string(origin), "node", string(n.Kind))
	r.listener.OnPathStart(r.path, n)
}

func (r *run) processToEnter(n *ast.Node) {
	if isPropertyDefinitionValue(n) {
		// A field initializer runs as its own function; the node itself may
		// also open a path below (a = () => {}).
		r.startPath(OriginClassFieldInitializer, n)
	}

	switch n.Kind {
	case ast.Program:
		r.startPath(OriginProgram, n)
	case ast.FunctionDeclaration, ast.FunctionExpression, ast.ArrowFunctionExpression:
		r.startPath(OriginFunction, n)
	case ast.StaticBlock:
		r.startPath(OriginClassStaticBlock, n)
	}

	if r.path == nil {
		return
	}
	st := r.path.state

	switch n.Kind {
	case ast.ChainExpression:
		st.pushChainContext()
	case ast.CallExpression, ast.MemberExpression:
		if n.Optional {
			st.makeOptionalNode()
		}
	case ast.LogicalExpression:
		if isHandledLogicalOperator(n.Operator) {
			st.pushChoiceContext(choiceKind(n.Operator), isForkingByTrueOrFalse(n))
		}
	case ast.AssignmentExpression:
		if isLogicalAssignmentOperator(n.Operator) {
			st.pushChoiceContext(choiceKind(n.Operator[:len(n.Operator)-1]), isForkingByTrueOrFalse(n))
		}
	case ast.ConditionalExpression, ast.IfStatement:
		st.pushChoiceContext(choiceTest, false)
	case ast.SwitchStatement:
		st.pushSwitchContext(hasCaseTest(n), labelOf(n))
	case ast.TryStatement:
		st.pushTryContext(n.Handler != nil, n.Finalizer != nil)
	case ast.SwitchCase:
		// Every case after the first forks like an else branch; its test
		// runs on the new path.
		if p := n.Parent; p != nil && len(p.Cases) > 0 && p.Cases[0] != n {
			st.forkPath()
		}
	case ast.WhileStatement, ast.DoWhileStatement, ast.ForStatement, ast.ForInStatement, ast.ForOfStatement:
		st.pushLoopContext(n.Kind, labelOf(n))
	case ast.LabeledStatement:
		if n.Body == nil || !n.Body.IsBreakable() {
			st.pushBreakContext(false, n.LabelName())
		}
	}

	r.forwardCurrentToHead(n)
}

func (r *run) processToExit(n *ast.Node) {
	st := r.path.state
	dontForward := false

	switch n.Kind {
	case ast.ChainExpression:
		st.popChainContext()
	case ast.IfStatement, ast.ConditionalExpression:
		st.popChoiceContext()
	case ast.LogicalExpression:
		if isHandledLogicalOperator(n.Operator) {
			st.popChoiceContext()
		}
	case ast.AssignmentExpression:
		if isLogicalAssignmentOperator(n.Operator) {
			st.popChoiceContext()
		}
	case ast.SwitchStatement:
		st.popSwitchContext()
	case ast.SwitchCase:
		// An empty case never reached its first statement.
		if len(n.Statements) == 0 {
			st.makeSwitchCaseBody(true, n.Test == nil)
		}
		if st.forkContext.reachable() {
			dontForward = true
		}
	case ast.TryStatement:
		st.popTryContext()
	case ast.BreakStatement:
		r.forwardCurrentToHead(n)
		st.makeBreak(n.LabelName())
		dontForward = true
	case ast.ContinueStatement:
		r.forwardCurrentToHead(n)
		st.makeContinue(n.LabelName())
		dontForward = true
	case ast.ReturnStatement:
		r.forwardCurrentToHead(n)
		st.makeReturn()
		dontForward = true
	case ast.ThrowStatement:
		r.forwardCurrentToHead(n)
		st.makeThrow()
		dontForward = true
	case ast.ExpressionStatement:
		if r.opts.IsAbrupt != nil && r.opts.IsAbrupt(n) {
			r.forwardCurrentToHead(n)
			st.makeTerminate()
			dontForward = true
		}
	case ast.Identifier:
		if ast.IsIdentifierReference(n) {
			st.makeFirstThrowablePathInTryBlock()
			dontForward = true
		}
	case ast.CallExpression, ast.ImportExpression, ast.MemberExpression, ast.NewExpression, ast.YieldExpression:
		st.makeFirstThrowablePathInTryBlock()
	case ast.WhileStatement, ast.DoWhileStatement, ast.ForStatement, ast.ForInStatement, ast.ForOfStatement:
		st.popLoopContext()
	case ast.AssignmentPattern:
		st.popForkContext()
	case ast.LabeledStatement:
		if n.Body == nil || !n.Body.IsBreakable() {
			st.popBreakContext()
		}
	}

	if !dontForward {
		r.forwardCurrentToHead(n)
	}
}

func (r *run) postprocess(n *ast.Node) {
	switch n.Kind {
	case ast.Program, ast.FunctionDeclaration, ast.FunctionExpression, ast.ArrowFunctionExpression, ast.StaticBlock:
		r.endPath(n)
	case ast.CallExpression:
		// the case with arguments is handled in preprocess
		if n.Optional && len(n.Arguments) == 0 {
			r.path.state.makeOptionalRight()
		}
	}

	if isPropertyDefinitionValue(n) {
		r.endPath(n)
	}
}

func (r *run) endPath(n *ast.Node) {
	p := r.path
	p.state.makeFinal()
	r.leaveFromCurrentSegment(n)
	p.finalize()
	r.debug("path end", "path", p.id,
		"segments", len(p.Segments()),
		"final", len(p.final),
		"returned", len(p.returned),
		"thrown", len(p.thrown))
	r.listener.OnPathEnd(p, n)
	r.path = p.upper
}

func isHandledLogicalOperator(op string) bool {
	return op == "&&" || op == "||" || op == "??"
}

func isLogicalAssignmentOperator(op string) bool {
	return op == "&&=" || op == "||=" || op == "??="
}

func isPropertyDefinitionValue(n *ast.Node) bool {
	p := n.Parent
	return p != nil && p.Kind == ast.PropertyDefinition && p.Value == n
}

// isForkingByTrueOrFalse reports whether a logical expression hands its
// outcomes to the enclosing choice rather than merging them itself.
func isForkingByTrueOrFalse(n *ast.Node) bool {
	p := n.Parent
	if p == nil {
		return false
	}
	switch p.Kind {
	case ast.ConditionalExpression, ast.IfStatement, ast.WhileStatement, ast.DoWhileStatement, ast.ForStatement:
		return p.Test == n
	case ast.LogicalExpression:
		return isHandledLogicalOperator(p.Operator)
	case ast.AssignmentExpression:
		return isLogicalAssignmentOperator(p.Operator)
	}
	return false
}

func hasCaseTest(sw *ast.Node) bool {
	for _, c := range sw.Cases {
		if c.Test != nil {
			return true
		}
	}
	return false
}

// labelOf returns the label directly attached to a breakable statement.
func labelOf(n *ast.Node) string {
	if p := n.Parent; p != nil && p.Kind == ast.LabeledStatement {
		return p.LabelName()
	}
	return ""
}
