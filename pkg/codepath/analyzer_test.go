package codepath

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-codepath/pkg/ast"
)

// recorder logs every event as "<event>:<kind>" so tests can check ordering.
type recorder struct {
	events      []string
	loops       []loopEvent
	unreachable []*ast.Node
	starts      []*Path
	ends        []*Path
}

type loopEvent struct {
	from, to *Segment
	node     *ast.Node
}

func (r *recorder) add(event string, n *ast.Node) {
	r.events = append(r.events, fmt.Sprintf("%s:%s", event, n.Kind))
}

func (r *recorder) OnPathStart(p *Path, n *ast.Node) {
	r.starts = append(r.starts, p)
	r.add("pathStart", n)
}

func (r *recorder) OnPathEnd(p *Path, n *ast.Node) {
	r.ends = append(r.ends, p)
	r.add("pathEnd", n)
}

func (r *recorder) OnSegmentStart(_ *Segment, n *ast.Node) { r.add("segStart", n) }
func (r *recorder) OnSegmentEnd(_ *Segment, n *ast.Node)   { r.add("segEnd", n) }

func (r *recorder) OnUnreachableSegmentStart(_ *Segment, n *ast.Node) {
	r.unreachable = append(r.unreachable, n)
	r.add("unreachableStart", n)
}

func (r *recorder) OnUnreachableSegmentEnd(_ *Segment, n *ast.Node) {
	r.add("unreachableEnd", n)
}

func (r *recorder) OnSegmentLoop(from, to *Segment, n *ast.Node) {
	r.loops = append(r.loops, loopEvent{from: from, to: to, node: n})
	r.add("loop", n)
}

func count(events []string, event string) int {
	n := 0
	for _, e := range events {
		if e == event {
			n++
		}
	}
	return n
}

func analyze(t *testing.T, root *ast.Node, opts Options) (*Result, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts.Listener = rec
	res, err := New(opts).Analyze(context.Background(), root)
	require.NoError(t, err)
	for _, p := range res.Paths {
		require.NoError(t, Verify(p), "path %s", p.ID())
	}
	return res, rec
}

func call(name string) *ast.Node {
	return ast.ExprStmt(ast.Call(ast.Ident(name)))
}

func TestIfReturnElseThrow(t *testing.T) {
	// function foo(a) { if (a) return 0; else throw new Error(); }
	fn := ast.FuncDecl("foo", []*ast.Node{ast.Ident("a")}, ast.Block(
		ast.If(ast.Ident("a"),
			ast.Return(ast.Lit("0")),
			ast.Throw(ast.NewExpr(ast.Ident("Error")))),
	))
	res, rec := analyze(t, ast.NewProgram(fn), Options{})

	require.Len(t, res.Paths, 2)
	assert.Equal(t, OriginProgram, res.Paths[0].Origin())
	assert.Equal(t, OriginFunction, res.Paths[1].Origin())
	assert.Same(t, res.Program, res.Paths[0])

	p := res.Paths[1]
	assert.Len(t, p.ReturnedSegments(), 1)
	assert.Len(t, p.ThrownSegments(), 1)
	require.Len(t, p.FinalSegments(), 2)
	for _, s := range p.FinalSegments() {
		assert.Empty(t, s.NextSegments())
	}
	assert.Equal(t, "pathStart:Program", rec.events[0])
	assert.Equal(t, "segStart:Program", rec.events[1])
	assert.Equal(t, "pathEnd:Program", rec.events[len(rec.events)-1])
}

func TestWhileLoopConnect(t *testing.T) {
	// while (a) { foo(); }
	loop := ast.While(ast.Ident("a"), ast.Block(call("foo")))
	res, rec := analyze(t, ast.NewProgram(loop), Options{})

	require.Len(t, rec.loops, 1)
	assert.Same(t, loop, rec.loops[0].node)
	assert.True(t, rec.loops[0].to.IsLoopedPrevSegment(rec.loops[0].from))

	p := res.Program
	require.Len(t, p.FinalSegments(), 1)
	assert.Empty(t, p.ReturnedSegments())
	assert.Len(t, p.Segments(), 4)
}

func TestForLoopConnect(t *testing.T) {
	// for (var i = 0; i < 10; ++i) { foo(); }
	update := ast.Update("++", ast.Ident("i"))
	loop := ast.For(
		ast.Var("var", ast.Ident("i"), ast.Lit("0")),
		ast.Binary("<", ast.Ident("i"), ast.Lit("10")),
		update,
		ast.Block(call("foo")),
	)
	_, rec := analyze(t, ast.NewProgram(loop), Options{})

	require.Len(t, rec.loops, 2)

	// update -> test, closed when the body starts
	first := rec.loops[0]
	assert.Same(t, loop.Body, first.node)
	assert.True(t, first.to.IsLoopedPrevSegment(first.from))

	// body end -> update, closed by the loop itself
	second := rec.loops[1]
	assert.Same(t, loop, second.node)
	assert.Same(t, first.from, second.to, "the second edge enters the update segment")
}

func TestThrowMakesFollowingStatementUnreachable(t *testing.T) {
	// throw 'boom'; foo();
	next := call("foo")
	prog := ast.NewProgram(ast.Throw(ast.Lit("'boom'")), next)
	res, rec := analyze(t, prog, Options{})

	require.Len(t, rec.unreachable, 1)
	assert.Same(t, next, rec.unreachable[0])
	assert.Equal(t, 1, count(rec.events, "unreachableEnd:Program"))
	assert.Len(t, res.Program.ThrownSegments(), 1)

	// the unreachable segment ends before the program path does
	n := len(rec.events)
	assert.Equal(t, "unreachableEnd:Program", rec.events[n-2])
	assert.Equal(t, "pathEnd:Program", rec.events[n-1])
}

func TestReturnMakesFollowingStatementUnreachable(t *testing.T) {
	// function foo() { return; foo(); }
	next := call("foo")
	fn := ast.FuncDecl("foo", nil, ast.Block(ast.Return(nil), next))
	_, rec := analyze(t, ast.NewProgram(fn), Options{})

	require.Len(t, rec.unreachable, 1)
	assert.Same(t, next, rec.unreachable[0])
	assert.Equal(t, 1, count(rec.events, "unreachableEnd:FunctionDeclaration"))
	assert.Equal(t, 0, count(rec.events, "unreachableEnd:Program"))
}

func TestPathPerFunction(t *testing.T) {
	// foo(); function foo() {} var foo = function() {}; var foo = () => {};
	decl := ast.FuncDecl("foo", nil, ast.Block())
	expr := ast.FuncExpr("", nil, ast.Block())
	arrow := ast.Arrow(nil, ast.Block())
	prog := ast.NewProgram(
		call("foo"),
		decl,
		ast.Var("var", ast.Ident("foo"), expr),
		ast.Var("var", ast.Ident("foo"), arrow),
	)
	res, rec := analyze(t, prog, Options{})

	assert.Len(t, rec.starts, 4)
	assert.Len(t, rec.ends, 4)
	require.Len(t, res.Paths, 4)

	children := res.Program.ChildPaths()
	require.Len(t, children, 3)
	assert.Same(t, decl, children[0].Node())
	assert.Same(t, expr, children[1].Node())
	assert.Same(t, arrow, children[2].Node())
	for _, c := range children {
		assert.Same(t, res.Program, c.Upper())
		assert.Equal(t, OriginFunction, c.Origin())
	}
}

func TestEventOrder(t *testing.T) {
	// foo(); function bar() { return; }
	prog := ast.NewProgram(call("foo"), ast.FuncDecl("bar", nil, ast.Block(ast.Return(nil))))
	_, rec := analyze(t, prog, Options{})

	assert.Equal(t, []string{
		"pathStart:Program",
		"segStart:Program",
		"pathStart:FunctionDeclaration",
		"segStart:FunctionDeclaration",
		"segEnd:BlockStatement",
		"unreachableStart:BlockStatement",
		"unreachableEnd:FunctionDeclaration",
		"pathEnd:FunctionDeclaration",
		"segEnd:Program",
		"pathEnd:Program",
	}, rec.events)
}

func TestTryCatchFinally(t *testing.T) {
	// function f() { try { a(); return 1; } catch (e) { throw e; } finally { b(); } }
	fn := ast.FuncDecl("f", nil, ast.Block(
		ast.Try(
			ast.Block(call("a"), ast.Return(ast.Lit("1"))),
			ast.Catch(ast.Ident("e"), ast.Block(ast.Throw(ast.Ident("e")))),
			ast.Block(call("b")),
		),
	))
	res, _ := analyze(t, ast.NewProgram(fn), Options{})

	p := res.Paths[1]
	require.Len(t, p.ReturnedSegments(), 1)
	require.Len(t, p.ThrownSegments(), 1)
	assert.Same(t, p.ReturnedSegments()[0], p.ThrownSegments()[0],
		"return and throw both leave through the same finally segment")
	assert.Len(t, p.FinalSegments(), 1)

	// control never falls off the end
	var unreachable int
	for _, s := range p.Segments() {
		if !s.Reachable() {
			unreachable++
		}
	}
	assert.Positive(t, unreachable)
}

func TestTryCatchRejoins(t *testing.T) {
	// try { a(); } catch (e) { b(); } c();
	after := call("c")
	prog := ast.NewProgram(
		ast.Try(ast.Block(call("a")), ast.Catch(ast.Ident("e"), ast.Block(call("b"))), nil),
		after,
	)
	res, rec := analyze(t, prog, Options{})

	assert.Empty(t, rec.unreachable)
	p := res.Program
	require.Len(t, p.FinalSegments(), 1)
	last := p.FinalSegments()[0]
	assert.Len(t, last.PrevSegments(), 2, "normal end of try and end of catch")
}

func visit(t *testing.T, prog *ast.Node) *visitor {
	t.Helper()
	var paths []*Path
	v := &visitor{}
	l := Multi{Funcs{PathStart: func(p *Path, _ *ast.Node) { paths = append(paths, p) }}, v}
	v.current = func() []*Segment { return paths[len(paths)-1].CurrentSegments() }

	res, err := New(Options{Listener: l}).Analyze(context.Background(), prog)
	require.NoError(t, err)
	for _, p := range res.Paths {
		require.NoError(t, Verify(p), "path %s", p.ID())
	}
	return v
}

func TestJumpsLeaveThroughFinally(t *testing.T) {
	g, h, i := call("g"), call("h"), call("i")

	tests := []struct {
		name        string
		prog        *ast.Node
		reachable   []*ast.Node
		unreachable []*ast.Node
	}{
		{
			// while (a) { try { break; } finally { g(); } } h();
			name: "break",
			prog: ast.NewProgram(
				ast.While(ast.Ident("a"), ast.Block(
					ast.Try(ast.Block(ast.Break("")), nil, ast.Block(g)),
				)),
				h,
			),
			reachable: []*ast.Node{g, h},
		},
		{
			// while (a) { try { continue; } finally { g(); } h(); }
			name: "continue",
			prog: ast.NewProgram(
				ast.While(ast.Ident("a"), ast.Block(
					ast.Try(ast.Block(ast.Continue("")), nil, ast.Block(g)),
					h,
				)),
			),
			reachable:   []*ast.Node{g},
			unreachable: []*ast.Node{h},
		},
		{
			// do { try { continue; } finally { g(); } h(); } while (a); i();
			name: "continue in do-while",
			prog: ast.NewProgram(
				ast.DoWhile(ast.Block(
					ast.Try(ast.Block(ast.Continue("")), nil, ast.Block(g)),
					h,
				), ast.Ident("a")),
				i,
			),
			reachable:   []*ast.Node{g, i},
			unreachable: []*ast.Node{h},
		},
		{
			// a: { try { break a; } finally { g(); } i(); } h();
			name: "labeled block",
			prog: ast.NewProgram(
				ast.Labeled("a", ast.Block(
					ast.Try(ast.Block(ast.Break("a")), nil, ast.Block(g)),
					i,
				)),
				h,
			),
			reachable:   []*ast.Node{g, h},
			unreachable: []*ast.Node{i},
		},
		{
			// while (a) { try { try { break; } finally { g(); } } finally { i(); } } h();
			name: "nested finally blocks",
			prog: ast.NewProgram(
				ast.While(ast.Ident("a"), ast.Block(
					ast.Try(ast.Block(
						ast.Try(ast.Block(ast.Break("")), nil, ast.Block(g)),
					), nil, ast.Block(i)),
				)),
				h,
			),
			reachable: []*ast.Node{g, i, h},
		},
		{
			// while (a) { try { b(); } finally { break; } } h();
			name: "break inside finally",
			prog: ast.NewProgram(
				ast.While(ast.Ident("a"), ast.Block(
					ast.Try(ast.Block(call("b")), nil, ast.Block(ast.Break(""), g)),
				)),
				h,
			),
			reachable:   []*ast.Node{h},
			unreachable: []*ast.Node{g},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := visit(t, tt.prog).reachableAt
			for _, n := range tt.reachable {
				require.Contains(t, at, n)
				assert.True(t, at[n], "%s should be reachable", n.Kind)
			}
			for _, n := range tt.unreachable {
				require.Contains(t, at, n)
				assert.False(t, at[n], "%s should be unreachable", n.Kind)
			}
		})
	}
}

func TestTryWithoutHandlerOrFinalizer(t *testing.T) {
	// function f() { try { a(); return; } b(); } c();
	// only reachable through syntax error recovery
	b, c := call("b"), call("c")
	prog := ast.NewProgram(
		ast.FuncDecl("f", nil, ast.Block(
			ast.Try(ast.Block(call("a"), ast.Return(nil)), nil, nil),
			b,
		)),
		c,
	)
	at := visit(t, prog).reachableAt

	assert.False(t, at[b])
	assert.True(t, at[c])
}

func TestFinallyNormalExitRejoins(t *testing.T) {
	// function f() { try { return; } catch (e) { return; } finally { g(); } h(); }
	g, h := call("g"), call("h")
	prog := ast.NewProgram(ast.FuncDecl("f", nil, ast.Block(
		ast.Try(
			ast.Block(ast.Return(nil)),
			ast.Catch(ast.Ident("e"), ast.Block(ast.Return(nil))),
			ast.Block(g),
		),
		h,
	)))
	v := visit(t, prog)

	assert.True(t, v.reachableAt[g])
	assert.False(t, v.reachableAt[h])

	// h() stays on the normal track of the finally block
	after := v.segmentsAt[h]
	require.Len(t, after, 1)
	require.Len(t, v.segmentsAt[g], 2, "normal and leaving tracks")
	assert.Same(t, v.segmentsAt[g][0], after[0])
	assert.NotEmpty(t, after[0].AllPrevSegments())
}

func TestLabeledBlockBreak(t *testing.T) {
	// a: { break a; foo(); } bar();
	prog := ast.NewProgram(
		ast.Labeled("a", ast.Block(ast.Break("a"), call("foo"))),
		call("bar"),
	)
	res, rec := analyze(t, prog, Options{})

	assert.Len(t, rec.unreachable, 1)
	final := res.Program.FinalSegments()
	require.Len(t, final, 1)
	assert.True(t, final[0].Reachable())
	assert.Len(t, final[0].PrevSegments(), 1)
	assert.Len(t, final[0].AllPrevSegments(), 2)
}

func TestLabeledLoopContinue(t *testing.T) {
	// outer: while (a) { while (b) { continue outer; } }
	outer := ast.While(ast.Ident("a"), ast.Block(
		ast.While(ast.Ident("b"), ast.Block(ast.Continue("outer"))),
	))
	_, rec := analyze(t, ast.NewProgram(ast.Labeled("outer", outer)), Options{})

	// continue outer, inner back-edge, outer back-edge
	var fromOuter int
	for _, l := range rec.loops {
		if l.node == outer {
			fromOuter++
		}
	}
	assert.Equal(t, 1, fromOuter)
	assert.GreaterOrEqual(t, len(rec.loops), 2)
}

func TestUnresolvedJumpsFallBackToReturn(t *testing.T) {
	tests := []struct {
		name string
		stmt *ast.Node
	}{
		{name: "break without loop", stmt: ast.Break("")},
		{name: "continue without loop", stmt: ast.Continue("")},
		{name: "break to unknown label", stmt: ast.Break("nowhere")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := ast.FuncDecl("f", nil, ast.Block(tt.stmt, call("foo")))
			res, rec := analyze(t, ast.NewProgram(fn), Options{})

			p := res.Paths[1]
			assert.Len(t, p.ReturnedSegments(), 1)
			assert.Len(t, rec.unreachable, 1)
		})
	}
}

func TestAbruptCall(t *testing.T) {
	// process.exit(1); foo();
	exit := ast.ExprStmt(ast.Call(ast.Member(ast.Ident("process"), ast.Ident("exit"), false), ast.Lit("1")))
	next := call("foo")
	prog := ast.NewProgram(exit, next)

	t.Run("configured", func(t *testing.T) {
		res, rec := analyze(t, prog, Options{IsAbrupt: NoReturnCallees("process.exit")})
		require.Len(t, rec.unreachable, 1)
		assert.Same(t, next, rec.unreachable[0])
		assert.Len(t, res.Program.FinalSegments(), 1)
		assert.Empty(t, res.Program.ReturnedSegments())
		assert.Empty(t, res.Program.ThrownSegments())
	})

	t.Run("not configured", func(t *testing.T) {
		_, rec := analyze(t, prog, Options{})
		assert.Empty(t, rec.unreachable)
	})
}

func TestSwitchDefaultInTheMiddle(t *testing.T) {
	// switch (x) { case 1: a(); break; default: b(); case 2: c(); }
	sw := ast.Switch(ast.Ident("x"),
		ast.Case(ast.Lit("1"), call("a"), ast.Break("")),
		ast.Case(nil, call("b")),
		ast.Case(ast.Lit("2"), call("c")),
	)
	res, rec := analyze(t, ast.NewProgram(sw), Options{})

	require.Len(t, rec.loops, 1, "failed case tests fall into the default body")
	assert.Same(t, sw, rec.loops[0].node)
	assert.Len(t, res.Program.FinalSegments(), 1)
}

func TestSwitchFallthrough(t *testing.T) {
	// switch (x) { case 1: case 2: a(); break; default: b(); }
	sw := ast.Switch(ast.Ident("x"),
		ast.Case(ast.Lit("1")),
		ast.Case(ast.Lit("2"), call("a"), ast.Break("")),
		ast.Case(nil, call("b")),
	)
	res, rec := analyze(t, ast.NewProgram(sw), Options{})

	assert.Empty(t, rec.loops)
	assert.Empty(t, res.Program.ReturnedSegments())
	final := res.Program.FinalSegments()
	require.Len(t, final, 1)
	assert.Len(t, final[0].PrevSegments(), 2, "break and default body")
}

func TestLogicalExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr *ast.Node
	}{
		{name: "and", expr: ast.Logical("&&", ast.Ident("a"), ast.Call(ast.Ident("b")))},
		{name: "or", expr: ast.Logical("||", ast.Ident("a"), ast.Call(ast.Ident("b")))},
		{name: "nullish", expr: ast.Logical("??", ast.Ident("a"), ast.Call(ast.Ident("b")))},
		{name: "logical assignment", expr: ast.Assign("||=", ast.Ident("a"), ast.Call(ast.Ident("b")))},
		{name: "optional member", expr: ast.Chain(ast.Member(ast.Ident("a"), ast.Ident("b"), true))},
		{name: "optional call", expr: ast.Chain(ast.OptionalCall(ast.Ident("a"), ast.Ident("b")))},
		{name: "ternary", expr: ast.Conditional(ast.Ident("a"), ast.Ident("b"), ast.Ident("c"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rec := analyze(t, ast.NewProgram(ast.ExprStmt(tt.expr)), Options{})

			assert.Empty(t, rec.unreachable)
			final := res.Program.FinalSegments()
			require.Len(t, final, 1)
			assert.Len(t, final[0].PrevSegments(), 2, "both branches rejoin")
		})
	}
}

func TestLogicalInIfTest(t *testing.T) {
	// if (a && b) c(); d();
	prog := ast.NewProgram(
		ast.If(ast.Logical("&&", ast.Ident("a"), ast.Ident("b")), call("c"), nil),
		call("d"),
	)
	res, _ := analyze(t, prog, Options{})

	final := res.Program.FinalSegments()
	require.Len(t, final, 1)
	// consequent, `a` false and `b` false
	assert.Len(t, final[0].PrevSegments(), 3)
}

func TestConstantLoopTest(t *testing.T) {
	// while (true) { foo(); } bar();
	prog := ast.NewProgram(ast.While(ast.Lit("true"), ast.Block(call("foo"))), call("bar"))
	res, rec := analyze(t, prog, Options{})

	require.Len(t, rec.unreachable, 1)
	assert.Empty(t, res.Program.FinalSegments(), "an endless loop never reaches the end")
}

func TestDoWhileContinue(t *testing.T) {
	// do { if (a) continue; foo(); } while (b);
	prog := ast.NewProgram(ast.DoWhile(
		ast.Block(ast.If(ast.Ident("a"), ast.Continue(""), nil), call("foo")),
		ast.Ident("b"),
	))
	_, rec := analyze(t, prog, Options{})

	require.Len(t, rec.loops, 1)
	assert.Empty(t, rec.unreachable)
}

func TestForOfBreakAndContinue(t *testing.T) {
	// for (const x of xs) { if (x) break; else continue; }
	loop := ast.ForOf(
		ast.Var("const", ast.Ident("x"), nil),
		ast.Ident("xs"),
		ast.Block(ast.If(ast.Ident("x"), ast.Break(""), ast.Continue(""))),
	)
	res, rec := analyze(t, ast.NewProgram(loop), Options{})

	// right -> left, continue -> left
	assert.Len(t, rec.loops, 2)
	require.Len(t, res.Program.FinalSegments(), 1)
	assert.True(t, res.Program.FinalSegments()[0].Reachable())
}

func TestDefaultParameterForks(t *testing.T) {
	// function f(a = b()) {}
	fn := ast.FuncDecl("f", []*ast.Node{ast.DefaultValue(ast.Ident("a"), ast.Call(ast.Ident("b")))}, ast.Block())
	res, _ := analyze(t, ast.NewProgram(fn), Options{})

	final := res.Paths[1].FinalSegments()
	require.Len(t, final, 1)
	assert.Len(t, final[0].PrevSegments(), 2)
}

func TestClassPaths(t *testing.T) {
	// class A { x = () => 1; static { foo(); } m() {} }
	arrow := ast.Arrow(nil, ast.Lit("1"))
	field := ast.Field(ast.Ident("x"), arrow)
	static := ast.StaticBlockOf(call("foo"))
	method := ast.FuncExpr("", nil, ast.Block())
	class := ast.Class("A", field, static, ast.Method(ast.Ident("m"), method))

	res, _ := analyze(t, ast.NewProgram(class), Options{})

	children := res.Program.ChildPaths()
	require.Len(t, children, 3)
	assert.Equal(t, OriginClassFieldInitializer, children[0].Origin())
	assert.Same(t, arrow, children[0].Node())
	assert.Equal(t, OriginClassStaticBlock, children[1].Origin())
	assert.Equal(t, OriginFunction, children[2].Origin())
	assert.Same(t, method, children[2].Node())

	nested := children[0].ChildPaths()
	require.Len(t, nested, 1)
	assert.Equal(t, OriginFunction, nested[0].Origin())
	assert.Same(t, arrow, nested[0].Node())
}

func TestNodeVisitorSeesCurrentSegments(t *testing.T) {
	// throw x; foo();
	next := call("foo")
	prog := ast.NewProgram(ast.Throw(ast.Ident("x")), next)

	var paths []*Path
	v := &visitor{}
	l := Multi{Funcs{PathStart: func(p *Path, _ *ast.Node) { paths = append(paths, p) }}, v}
	v.current = func() []*Segment { return paths[len(paths)-1].CurrentSegments() }

	_, err := New(Options{Listener: l}).Analyze(context.Background(), prog)
	require.NoError(t, err)

	require.Contains(t, v.reachableAt, next)
	assert.False(t, v.reachableAt[next])
	assert.Nil(t, paths[0].CurrentSegments(), "no frontier after the path ended")
}

type visitor struct {
	NopListener
	current     func() []*Segment
	reachableAt map[*ast.Node]bool
	segmentsAt  map[*ast.Node][]*Segment
}

func (v *visitor) EnterNode(n *ast.Node) {
	if v.reachableAt == nil {
		v.reachableAt = make(map[*ast.Node]bool)
		v.segmentsAt = make(map[*ast.Node][]*Segment)
	}
	segments := v.current()
	v.reachableAt[n] = anyReachable(segments)
	v.segmentsAt[n] = append([]*Segment(nil), segments...)
}

func (v *visitor) LeaveNode(*ast.Node) {}

func TestAnalyzeIsIdempotent(t *testing.T) {
	build := func() *ast.Node {
		return ast.NewProgram(
			ast.FuncDecl("f", []*ast.Node{ast.Ident("a")}, ast.Block(
				ast.For(nil, ast.Ident("a"), nil, ast.Block(
					ast.If(ast.Ident("b"), ast.Break(""), ast.Continue("")),
				)),
				ast.Try(ast.Block(call("g")), nil, ast.Block(call("h"))),
				ast.Return(ast.Ident("a")),
			)),
		)
	}
	tree := build()

	first, _ := analyze(t, tree, Options{})
	second, _ := analyze(t, tree, Options{})
	third, _ := analyze(t, build(), Options{})

	assert.NotEqual(t, first.Program.ID(), second.Program.ID())
	assert.Empty(t, cmp.Diff(Summarize(first.Program), Summarize(second.Program)))
	assert.Empty(t, cmp.Diff(Summarize(first.Program), Summarize(third.Program)))
}

func TestAnalyzeCancelled(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rec := &recorder{}
		res, err := New(Options{Listener: rec}).Analyze(ctx, ast.NewProgram(call("foo")))
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Nil(t, res)
		assert.Empty(t, rec.events)
	})

	t.Run("inside a function", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		rec := &recorder{}
		l := Multi{rec, Funcs{PathStart: func(p *Path, _ *ast.Node) {
			if p.Origin() == OriginFunction {
				cancel()
			}
		}}}
		prog := ast.NewProgram(ast.FuncDecl("f", nil, ast.Block(call("foo"))), call("bar"))

		res, err := New(Options{Listener: l}).Analyze(ctx, prog)
		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, res)
		assert.Len(t, rec.starts, 2)
		assert.Empty(t, rec.ends, "no path is finalized after cancellation")
	})
}

func TestAnalyzeInvalidRoot(t *testing.T) {
	_, err := New(Options{}).Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidRoot)

	_, err = New(Options{}).Analyze(context.Background(), call("foo"))
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestAnalyzeFunctionRoot(t *testing.T) {
	fn := ast.FuncExpr("", nil, ast.Block(ast.Return(nil)))
	res, _ := analyze(t, fn, Options{})

	require.Len(t, res.Paths, 1)
	assert.Equal(t, OriginFunction, res.Program.Origin())
	assert.Nil(t, res.Program.Upper())
}
