package codepath

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/l3aro/go-codepath/pkg/ast"
)

// NoReturnCallees builds an Options.IsAbrupt predicate that matches
// expression statements calling one of the given callees, written the way
// they appear in source ("exit", "process.exit"). Optional calls never
// match since they may not run at all.
func NoReturnCallees(names ...string) func(*ast.Node) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[n] = true
		}
	}
	return func(stmt *ast.Node) bool {
		if len(set) == 0 || stmt.Kind != ast.ExpressionStatement {
			return false
		}
		call := stmt.Expression
		if call == nil || call.Kind != ast.CallExpression || call.Optional {
			return false
		}
		name, ok := CalleeName(call.Callee)
		return ok && set[name]
	}
}

// CalleeName renders an identifier or a chain of non-computed member
// accesses as dotted text.
func CalleeName(n *ast.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind {
	case ast.Identifier:
		return n.Name, n.Name != ""
	case ast.ThisExpression:
		return "this", true
	case ast.MemberExpression:
		if n.Computed || n.Optional || n.MemberProp == nil {
			return "", false
		}
		obj, ok := CalleeName(n.Object)
		if !ok {
			return "", false
		}
		return obj + "." + n.MemberProp.Name, true
	}
	return "", false
}

// constantTest evaluates a loop test when it is a plain literal.
func constantTest(n *ast.Node) testValue {
	if n == nil || n.Kind != ast.Literal {
		return testUnknown
	}
	if literalTruthy(n.Raw) {
		return testTrue
	}
	return testFalse
}

// literalTruthy reports whether the literal with source text raw converts
// to true. Numeric literals may carry a radix prefix and separators.
func literalTruthy(raw string) bool {
	switch raw {
	case "false", "null", "''", `""`, "``":
		return false
	}
	num := strings.TrimPrefix(strings.ReplaceAll(raw, "_", ""), "-")
	if i, ok := new(big.Int).SetString(strings.TrimSuffix(num, "n"), 0); ok {
		return i.Sign() != 0
	}
	if f, err := strconv.ParseFloat(num, 64); err == nil {
		return f != 0
	}
	return true
}
