package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-codepath/pkg/ast"
	"github.com/l3aro/go-codepath/pkg/codepath"
	"github.com/l3aro/go-codepath/pkg/parser"
)

func TestUnreachableRanges(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		abrupt   []string
		want     int   // number of ranges
		sizes    []int // statements per range
		firstRow int
	}{
		{
			name:     "after return",
			src:      "function f() {\n  return 1;\n  a();\n  b();\n}\n",
			want:     1,
			sizes:    []int{2},
			firstRow: 3,
		},
		{
			name:     "nested statements are folded into their parent",
			src:      "throw e;\nif (x) { y(); }\nz();\n",
			want:     1,
			sizes:    []int{2},
			firstRow: 2,
		},
		{
			name:     "after an endless loop",
			src:      "while (true) { a(); }\nb();\n",
			want:     1,
			sizes:    []int{1},
			firstRow: 2,
		},
		{
			name:     "hoisted declarations are skipped",
			src:      "function f() {\n  return;\n  var x;\n  let y = 1;\n}\n",
			want:     1,
			sizes:    []int{1},
			firstRow: 4,
		},
		{
			name: "nested function bodies have their own paths",
			src:  "function f() { return; function g() { a(); } }",
		},
		{
			name: "all reachable",
			src:  "a(); if (b) { c(); } else { d(); }",
		},
		{
			name:     "ranges in two functions",
			src:      "function f() {\n  return;\n  a();\n}\nfunction g() {\n  throw x;\n  b();\n}\n",
			want:     2,
			sizes:    []int{1, 1},
			firstRow: 3,
		},
		{
			name:     "call that never returns",
			src:      "process.exit(1);\nafter();\n",
			abrupt:   []string{"process.exit"},
			want:     1,
			sizes:    []int{1},
			firstRow: 2,
		},
		{
			name: "finally runs after break",
			src:  "while (a) {\n  try {\n    break;\n  } finally {\n    cleanup();\n  }\n}\ndone();\n",
		},
		{
			name: "finally runs after continue",
			src:  "for (const x of xs) {\n  try {\n    continue;\n  } finally {\n    cleanup();\n  }\n}\n",
		},
		{
			name:     "after a finally entered only by break",
			src:      "while (a) {\n  try {\n    break;\n  } finally {\n    cleanup();\n  }\n  next();\n}\n",
			want:     1,
			sizes:    []int{1},
			firstRow: 7,
		},
		{
			name:     "constant false loop tests in other radixes",
			src:      "while (0x0) { a(); }\ndo { b(); } while (0b0);\nc();\n",
			want:     1,
			sizes:    []int{1},
			firstRow: 1,
		},
		{
			name:     "constant true loop test in hex",
			src:      "while (0x1) { a(); }\nb();\n",
			want:     1,
			sizes:    []int{1},
			firstRow: 2,
		},
		{
			name:     "after break in a switch case",
			src:      "switch (x) {\n  case 1:\n    break;\n    a();\n}\n",
			want:     1,
			sizes:    []int{1},
			firstRow: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Verify: true}
			if len(tt.abrupt) > 0 {
				opts.IsAbrupt = codepath.NoReturnCallees(tt.abrupt...)
			}
			rep, err := AnalyzeFile(context.Background(), "input.js", []byte(tt.src), opts)
			require.NoError(t, err)
			require.Len(t, rep.Unreachable, tt.want)
			for i, size := range tt.sizes {
				assert.Equal(t, size, rep.Unreachable[i].Statements, "range %d", i)
			}
			if tt.want > 0 {
				assert.Equal(t, tt.firstRow, rep.Unreachable[0].Pos.StartLine)
			}
		})
	}
}

func TestAnalyzeFileIncompleteTry(t *testing.T) {
	for _, src := range []string{
		"try { a(); }\nb();\n",
		"function f() {\n  try { return; }\n}\n",
	} {
		rep, err := AnalyzeFile(context.Background(), "input.js", []byte(src), Options{Verify: true})
		require.NoError(t, err, src)
		assert.Empty(t, rep.Unreachable, src)
	}
}

func TestUnreachableMergedRangeSpansStatements(t *testing.T) {
	src := "function f() {\n  return;\n  a();\n  b();\n}\n"
	rep, err := AnalyzeFile(context.Background(), "input.js", []byte(src), Options{})
	require.NoError(t, err)
	require.Len(t, rep.Unreachable, 1)

	r := rep.Unreachable[0]
	assert.Equal(t, ast.ExpressionStatement, r.Kind)
	assert.Equal(t, 3, r.Pos.StartLine)
	assert.Equal(t, 4, r.Pos.EndLine)
	assert.Equal(t, "a();\n  b();", src[r.Pos.StartByte:r.Pos.EndByte])
}

func TestUnreachableOnHandBuiltTree(t *testing.T) {
	// function f() { return; a(); { b(); } }
	call := func(name string) *ast.Node { return ast.ExprStmt(ast.Call(ast.Ident(name))) }
	root := ast.NewProgram(ast.FuncDecl("f", nil, ast.Block(
		ast.Return(nil),
		call("a"),
		ast.Block(call("b")),
	)))

	u := NewUnreachable()
	_, err := codepath.New(codepath.Options{Listener: u}).Analyze(context.Background(), root)
	require.NoError(t, err)

	ranges := u.Ranges()
	require.Len(t, ranges, 1)
	assert.Equal(t, 2, ranges[0].Statements)
}

func TestAnalyzeFile(t *testing.T) {
	src := `function f(xs: number[]): number {
  let n = 0;
  for (const x of xs) {
    n += x;
  }
  return n;
}
class C {
  y = 1;
}
`
	rep, err := AnalyzeFile(context.Background(), "src/f.ts", []byte(src), Options{Verify: true})
	require.NoError(t, err)

	assert.Equal(t, "src/f.ts", rep.Path)
	assert.Equal(t, parser.TypeScript, rep.Language)
	assert.Empty(t, rep.Unreachable)
	assert.Equal(t, 3, rep.Stats.Paths, "program, function and field initializer")
	assert.Equal(t, 1, rep.Stats.Loops)
	assert.Equal(t, codepath.OriginProgram, rep.Paths.Origin)
	require.Len(t, rep.Paths.Children, 2)
	assert.Equal(t, codepath.OriginFunction, rep.Paths.Children[0].Origin)
	assert.Equal(t, codepath.OriginClassFieldInitializer, rep.Paths.Children[1].Origin)
}

func TestAnalyzeFileUnsupported(t *testing.T) {
	_, err := AnalyzeFile(context.Background(), "main.go", []byte("package main"), Options{})
	assert.ErrorIs(t, err, parser.ErrUnsupportedLanguage)
}
