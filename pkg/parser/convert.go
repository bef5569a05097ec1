package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/go-codepath/pkg/ast"
)

// typeOnly lists TypeScript constructs that are erased at runtime. They are
// kept as childless ast.Other nodes so that their names never look like
// identifier references.
var typeOnly = map[string]bool{
	"type_annotation":           true,
	"type_arguments":            true,
	"type_parameters":           true,
	"type_alias_declaration":    true,
	"interface_declaration":     true,
	"function_signature":        true,
	"ambient_declaration":       true,
	"abstract_method_signature": true,
	"method_signature":          true,
	"index_signature":           true,
	"property_signature":        true,
	"predefined_type":           true,
	"type_identifier":           true,
	"implements_clause":         true,
	"accessibility_modifier":    true,
	"override_modifier":         true,
	"asserts_annotation":        true,
	"type_predicate_annotation": true,
	"opting_type_annotation":    true,
	"omitting_type_annotation":  true,
	"adding_type_annotation":    true,
	"construct_signature":       true,
	"call_signature":            true,
	"import_alias":              true,
}

type converter struct {
	src []byte
}

func position(n *sitter.Node) ast.Pos {
	start, end := n.StartPoint(), n.EndPoint()
	return ast.Pos{
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column),
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column),
		StartByte:   int(n.StartByte()),
		EndByte:     int(n.EndByte()),
	}
}

func (c *converter) at(n *sitter.Node, out *ast.Node) *ast.Node {
	out.Type = n.Type()
	out.Pos = position(n)
	return out
}

func (c *converter) nodeText(n *sitter.Node) string {
	return n.Content(c.src)
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	children := namedChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// hasChild reports whether n has a direct child, named or not, of type typ.
func hasChild(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == typ {
			return true
		}
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil &&
		a.Type() == b.Type() && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

// child converts the named child stored under field, or returns nil.
func (c *converter) child(n *sitter.Node, field string) *ast.Node {
	if n == nil {
		return nil
	}
	f := n.ChildByFieldName(field)
	if f == nil || !f.IsNamed() {
		return nil
	}
	return c.node(f)
}

func (c *converter) operator(n *sitter.Node) string {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return ""
	}
	return op.Type()
}

func (c *converter) list(nodes []*sitter.Node) []*ast.Node {
	var out []*ast.Node
	for _, n := range nodes {
		if conv := c.node(n); conv != nil {
			out = append(out, conv)
		}
	}
	return out
}

func (c *converter) statements(n *sitter.Node) []*ast.Node {
	if n == nil {
		return nil
	}
	return c.list(namedChildren(n))
}

func (c *converter) program(root *sitter.Node) *ast.Node {
	return c.at(root, ast.NewProgram(c.statements(root)...))
}

func (c *converter) node(n *sitter.Node) *ast.Node {
	if n == nil {
		return nil
	}
	typ := n.Type()
	if typeOnly[typ] {
		return c.at(n, &ast.Node{Kind: ast.Other})
	}

	switch typ {
	case "comment", "hash_bang_line":
		return nil

	case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
		return c.node(firstNamed(n))
	case "type_assertion":
		children := namedChildren(n)
		if len(children) == 0 {
			return nil
		}
		return c.node(children[len(children)-1])

	// statements

	case "expression_statement":
		return c.at(n, ast.ExprStmt(c.node(firstNamed(n))))
	case "statement_block":
		return c.at(n, ast.Block(c.statements(n)...))
	case "empty_statement":
		return c.at(n, &ast.Node{Kind: ast.EmptyStatement})
	case "debugger_statement":
		return c.at(n, &ast.Node{Kind: ast.DebuggerStatement})
	case "variable_declaration", "lexical_declaration":
		return c.declaration(n)
	case "if_statement":
		var alternate *ast.Node
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				alternate = c.node(firstNamed(alt))
			} else {
				alternate = c.node(alt)
			}
		}
		return c.at(n, ast.If(c.child(n, "condition"), c.child(n, "consequence"), alternate))
	case "switch_statement":
		return c.switchStatement(n)
	case "for_statement":
		init := c.forClause(n.ChildByFieldName("initializer"))
		test := c.forClause(n.ChildByFieldName("condition"))
		return c.at(n, ast.For(init, test, c.child(n, "increment"), c.child(n, "body")))
	case "for_in_statement", "for_of_statement":
		return c.forInOf(n)
	case "while_statement":
		return c.at(n, ast.While(c.child(n, "condition"), c.child(n, "body")))
	case "do_statement":
		return c.at(n, ast.DoWhile(c.child(n, "body"), c.child(n, "condition")))
	case "try_statement":
		return c.tryStatement(n)
	case "labeled_statement":
		label := n.ChildByFieldName("label")
		out := ast.Labeled(c.nodeText(label), c.child(n, "body"))
		out.Label.Pos = position(label)
		return c.at(n, out)
	case "break_statement", "continue_statement":
		return c.jump(n)
	case "return_statement":
		return c.at(n, ast.Return(c.node(firstNamed(n))))
	case "throw_statement":
		return c.at(n, ast.Throw(c.node(firstNamed(n))))
	case "with_statement":
		obj, body := c.child(n, "object"), c.child(n, "body")
		return c.at(n, (&ast.Node{Kind: ast.WithStatement, Object: obj, Body: body}).Append(obj, body))
	case "import_statement":
		return c.at(n, &ast.Node{Kind: ast.ImportDeclaration})
	case "export_statement":
		return c.exportStatement(n)

	// functions and classes

	case "function_declaration", "generator_function_declaration":
		return c.function(n, ast.FunctionDeclaration)
	case "function", "function_expression", "generator_function":
		return c.function(n, ast.FunctionExpression)
	case "arrow_function":
		var params []*ast.Node
		if p := n.ChildByFieldName("parameter"); p != nil {
			params = []*ast.Node{c.node(p)}
		} else {
			params = c.params(n.ChildByFieldName("parameters"))
		}
		return c.at(n, ast.Arrow(params, c.child(n, "body")))
	case "class_declaration", "abstract_class_declaration":
		return c.class(n, ast.ClassDeclaration)
	case "class":
		return c.class(n, ast.ClassExpression)

	// expressions

	case "identifier", "property_identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern", "statement_identifier",
		"private_property_identifier", "undefined":
		return c.at(n, ast.Ident(c.nodeText(n)))
	case "this":
		return c.at(n, &ast.Node{Kind: ast.ThisExpression})
	case "super":
		return c.at(n, &ast.Node{Kind: ast.Super})
	case "number", "string", "regex", "true", "false", "null":
		return c.at(n, ast.Lit(c.nodeText(n)))
	case "template_string":
		out := &ast.Node{Kind: ast.TemplateLiteral, Raw: c.nodeText(n)}
		for _, sub := range namedChildren(n) {
			if sub.Type() == "template_substitution" {
				out.Append(c.node(firstNamed(sub)))
			}
		}
		return c.at(n, out)
	case "binary_expression":
		op := c.operator(n)
		left, right := c.child(n, "left"), c.child(n, "right")
		switch op {
		case "&&", "||", "??":
			return c.at(n, ast.Logical(op, left, right))
		}
		return c.at(n, ast.Binary(op, left, right))
	case "unary_expression":
		arg := c.child(n, "argument")
		return c.at(n, (&ast.Node{Kind: ast.UnaryExpression, Operator: c.operator(n), Argument: arg}).Append(arg))
	case "update_expression":
		return c.at(n, ast.Update(c.operator(n), c.child(n, "argument")))
	case "assignment_expression":
		return c.at(n, ast.Assign("=", c.child(n, "left"), c.child(n, "right")))
	case "augmented_assignment_expression":
		return c.at(n, ast.Assign(c.operator(n), c.child(n, "left"), c.child(n, "right")))
	case "ternary_expression":
		return c.at(n, ast.Conditional(c.child(n, "condition"), c.child(n, "consequence"), c.child(n, "alternative")))
	case "sequence_expression":
		out := &ast.Node{Kind: ast.SequenceExpression}
		return c.at(n, out.Append(c.sequence(n)...))
	case "call_expression", "member_expression", "subscript_expression":
		return c.chainElement(n)
	case "new_expression":
		return c.at(n, ast.NewExpr(c.child(n, "constructor"), c.arguments(n.ChildByFieldName("arguments"))...))
	case "await_expression":
		arg := c.node(firstNamed(n))
		return c.at(n, (&ast.Node{Kind: ast.AwaitExpression, Argument: arg}).Append(arg))
	case "yield_expression":
		arg := c.node(firstNamed(n))
		return c.at(n, (&ast.Node{Kind: ast.YieldExpression, Argument: arg}).Append(arg))
	case "spread_element":
		arg := c.node(firstNamed(n))
		return c.at(n, (&ast.Node{Kind: ast.SpreadElement, Argument: arg}).Append(arg))
	case "rest_pattern":
		arg := c.node(firstNamed(n))
		return c.at(n, (&ast.Node{Kind: ast.RestElement, Argument: arg}).Append(arg))
	case "array":
		return c.at(n, ast.New(ast.ArrayExpression, c.statements(n)...))
	case "array_pattern":
		return c.at(n, ast.New(ast.ArrayPattern, c.statements(n)...))
	case "object":
		return c.at(n, ast.New(ast.ObjectExpression, c.properties(n)...))
	case "object_pattern":
		return c.at(n, ast.New(ast.ObjectPattern, c.properties(n)...))
	case "assignment_pattern":
		return c.at(n, ast.DefaultValue(c.child(n, "left"), c.child(n, "right")))
	}

	return c.other(n)
}

// other keeps an unmodelled construct (JSX, recovered syntax errors, ...)
// with its converted children, so functions nested in it still get paths.
func (c *converter) other(n *sitter.Node) *ast.Node {
	out := &ast.Node{Kind: ast.Other}
	return c.at(n, out.Append(c.statements(n)...))
}

func (c *converter) declaration(n *sitter.Node) *ast.Node {
	decl := &ast.Node{Kind: ast.VariableDeclaration}
	if first := n.Child(0); first != nil {
		decl.Operator = first.Type()
	}
	for _, d := range namedChildren(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		id, init := c.child(d, "name"), c.child(d, "value")
		declarator := (&ast.Node{Kind: ast.VariableDeclarator, ID: id, Init: init}).Append(id, init)
		decl.Append(c.at(d, declarator))
	}
	return c.at(n, decl)
}

func (c *converter) switchStatement(n *sitter.Node) *ast.Node {
	var cases []*ast.Node
	if body := n.ChildByFieldName("body"); body != nil {
		for _, sc := range namedChildren(body) {
			switch sc.Type() {
			case "switch_case":
				value := sc.ChildByFieldName("value")
				var stmts []*sitter.Node
				for _, s := range namedChildren(sc) {
					if !sameNode(s, value) {
						stmts = append(stmts, s)
					}
				}
				cases = append(cases, c.at(sc, ast.Case(c.node(value), c.list(stmts)...)))
			case "switch_default":
				cases = append(cases, c.at(sc, ast.Case(nil, c.statements(sc)...)))
			}
		}
	}
	return c.at(n, ast.Switch(c.child(n, "value"), cases...))
}

// forClause converts the initializer or condition of a for statement. The
// grammar stores them as statements; empty clauses come back nil.
func (c *converter) forClause(n *sitter.Node) *ast.Node {
	if n == nil || !n.IsNamed() {
		return nil
	}
	switch n.Type() {
	case "expression_statement":
		return c.node(firstNamed(n))
	case "empty_statement":
		return nil
	}
	return c.node(n)
}

func (c *converter) forInOf(n *sitter.Node) *ast.Node {
	op := "in"
	if o := n.ChildByFieldName("operator"); o != nil {
		op = o.Type()
	} else if n.Type() == "for_of_statement" || hasChild(n, "of") {
		op = "of"
	}

	var left *ast.Node
	leftNode := n.ChildByFieldName("left")
	kind := n.ChildByFieldName("kind")
	for i := 0; kind == nil && i < int(n.ChildCount()); i++ {
		switch tok := n.Child(i); tok.Type() {
		case "var", "let", "const":
			kind = tok
		}
	}
	if kind != nil {
		id := c.node(leftNode)
		declarator := (&ast.Node{Kind: ast.VariableDeclarator, ID: id}).Append(id)
		if leftNode != nil {
			c.at(leftNode, declarator)
		}
		left = (&ast.Node{Kind: ast.VariableDeclaration, Operator: kind.Type()}).Append(declarator)
		left.Pos = declarator.Pos
	} else {
		left = c.node(leftNode)
	}

	right, body := c.child(n, "right"), c.child(n, "body")
	if op == "of" {
		return c.at(n, ast.ForOf(left, right, body))
	}
	return c.at(n, ast.ForIn(left, right, body))
}

func (c *converter) tryStatement(n *sitter.Node) *ast.Node {
	var handler, finalizer *ast.Node
	if h := n.ChildByFieldName("handler"); h != nil {
		handler = c.at(h, ast.Catch(c.child(h, "parameter"), c.child(h, "body")))
	}
	if f := n.ChildByFieldName("finalizer"); f != nil {
		finalizer = c.child(f, "body")
	}
	return c.at(n, ast.Try(c.child(n, "body"), handler, finalizer))
}

func (c *converter) jump(n *sitter.Node) *ast.Node {
	var name string
	label := n.ChildByFieldName("label")
	if label != nil {
		name = c.nodeText(label)
	}
	var out *ast.Node
	if n.Type() == "break_statement" {
		out = ast.Break(name)
	} else {
		out = ast.Continue(name)
	}
	if out.Label != nil {
		out.Label.Pos = position(label)
	}
	return c.at(n, out)
}

func (c *converter) exportStatement(n *sitter.Node) *ast.Node {
	kind := ast.ExportNamedDeclaration
	switch {
	case hasChild(n, "default"):
		kind = ast.ExportDefaultDeclaration
	case hasChild(n, "*"):
		kind = ast.ExportAllDeclaration
	}
	out := &ast.Node{Kind: kind}
	if decl := c.child(n, "declaration"); decl != nil {
		out.Append(decl)
	} else if value := c.child(n, "value"); value != nil {
		out.Append(value)
	}
	return c.at(n, out)
}

func (c *converter) function(n *sitter.Node, kind ast.Kind) *ast.Node {
	id := c.child(n, "name")
	params := c.params(n.ChildByFieldName("parameters"))
	body := c.child(n, "body")

	out := &ast.Node{Kind: kind, ID: id, Params: params, Body: body}
	out.Append(id)
	out.Append(params...)
	return c.at(n, out.Append(body))
}

func (c *converter) params(n *sitter.Node) []*ast.Node {
	if n == nil {
		return nil
	}
	var out []*ast.Node
	for _, p := range namedChildren(n) {
		var conv *ast.Node
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			conv = c.child(p, "pattern")
			if value := c.child(p, "value"); value != nil {
				conv = c.at(p, ast.DefaultValue(conv, value))
			}
		default:
			conv = c.node(p)
		}
		if conv != nil {
			out = append(out, conv)
		}
	}
	return out
}

// name converts a declared class name, which TypeScript parses as a type
// identifier.
func (c *converter) name(n *sitter.Node) *ast.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "type_identifier" {
		return c.at(n, ast.Ident(c.nodeText(n)))
	}
	return c.node(n)
}

// propertyKey converts a property name, unwrapping [computed] keys.
func (c *converter) propertyKey(n *sitter.Node) (*ast.Node, bool) {
	if n == nil {
		return nil, false
	}
	if n.Type() == "computed_property_name" {
		return c.node(firstNamed(n)), true
	}
	return c.node(n), false
}

func (c *converter) class(n *sitter.Node, kind ast.Kind) *ast.Node {
	var members []*ast.Node
	bodyNode := n.ChildByFieldName("body")
	if bodyNode != nil {
		for _, m := range namedChildren(bodyNode) {
			if member := c.classMember(m); member != nil {
				members = append(members, member)
			}
		}
	}

	body := (&ast.Node{Kind: ast.ClassBody, Statements: members}).Append(members...)
	if bodyNode != nil {
		c.at(bodyNode, body)
	}
	id := c.name(n.ChildByFieldName("name"))
	out := &ast.Node{Kind: kind, ID: id, Body: body}
	return c.at(n, out.Append(id, body))
}

func (c *converter) classMember(m *sitter.Node) *ast.Node {
	switch m.Type() {
	case "method_definition":
		out := ast.Method(c.method(m))
		out.Computed = m.ChildByFieldName("name") != nil && m.ChildByFieldName("name").Type() == "computed_property_name"
		out.Static = hasChild(m, "static")
		return c.at(m, out)
	case "field_definition", "public_field_definition":
		keyNode := m.ChildByFieldName("property")
		if keyNode == nil {
			keyNode = m.ChildByFieldName("name")
		}
		key, computed := c.propertyKey(keyNode)
		out := ast.Field(key, c.child(m, "value"))
		out.Computed = computed
		out.Static = hasChild(m, "static")
		return c.at(m, out)
	case "class_static_block":
		body := m.ChildByFieldName("body")
		if body == nil {
			for _, child := range namedChildren(m) {
				if child.Type() == "statement_block" {
					body = child
				}
			}
		}
		return c.at(m, ast.StaticBlockOf(c.statements(body)...))
	}
	return nil
}

// method converts a method definition into its key and the
// FunctionExpression holding its parameters and body.
func (c *converter) method(m *sitter.Node) (*ast.Node, *ast.Node) {
	key, _ := c.propertyKey(m.ChildByFieldName("name"))
	params := c.params(m.ChildByFieldName("parameters"))
	body := c.child(m, "body")

	fn := &ast.Node{Kind: ast.FunctionExpression, Params: params, Body: body}
	fn.Append(params...)
	fn.Append(body)
	return key, c.at(m, fn)
}

func (c *converter) properties(n *sitter.Node) []*ast.Node {
	var out []*ast.Node
	for _, p := range namedChildren(n) {
		var prop *ast.Node
		switch p.Type() {
		case "pair", "pair_pattern":
			key, computed := c.propertyKey(p.ChildByFieldName("key"))
			value := c.child(p, "value")
			prop = (&ast.Node{Kind: ast.Property, Key: key, Value: value, Computed: computed}).Append(key, value)
		case "shorthand_property_identifier", "shorthand_property_identifier_pattern":
			key := c.node(p)
			prop = (&ast.Node{Kind: ast.Property, Key: key, Shorthand: true}).Append(key)
		case "object_assignment_pattern":
			value := c.at(p, ast.DefaultValue(c.child(p, "left"), c.child(p, "right")))
			prop = (&ast.Node{Kind: ast.Property, Value: value, Shorthand: true}).Append(value)
		case "method_definition":
			key, fn := c.method(p)
			computed := p.ChildByFieldName("name") != nil && p.ChildByFieldName("name").Type() == "computed_property_name"
			prop = (&ast.Node{Kind: ast.Property, Key: key, Value: fn, Computed: computed}).Append(key, fn)
		default:
			if conv := c.node(p); conv != nil {
				out = append(out, conv)
			}
			continue
		}
		out = append(out, c.at(p, prop))
	}
	return out
}

func (c *converter) sequence(n *sitter.Node) []*ast.Node {
	var out []*ast.Node
	for _, e := range namedChildren(n) {
		if e.Type() == "sequence_expression" {
			out = append(out, c.sequence(e)...)
			continue
		}
		if conv := c.node(e); conv != nil {
			out = append(out, conv)
		}
	}
	return out
}

func (c *converter) arguments(n *sitter.Node) []*ast.Node {
	if n == nil {
		return nil
	}
	return c.statements(n)
}

// chainElement converts a call, member or subscript expression. The
// outermost element of a chain holding an optional link is wrapped in a
// ChainExpression, which is where short-circuited evaluation rejoins.
func (c *converter) chainElement(n *sitter.Node) *ast.Node {
	var out *ast.Node
	optional := hasChild(n, "optional_chain")

	switch n.Type() {
	case "member_expression":
		out = ast.Member(c.child(n, "object"), c.child(n, "property"), optional)
	case "subscript_expression":
		out = ast.Member(c.child(n, "object"), c.child(n, "index"), optional)
		out.Computed = true
	default:
		fn := n.ChildByFieldName("function")
		args := n.ChildByFieldName("arguments")
		switch {
		case fn != nil && fn.Type() == "import":
			var source *ast.Node
			if a := c.arguments(args); len(a) > 0 {
				source = a[0]
			}
			return c.at(n, (&ast.Node{Kind: ast.ImportExpression, Source: source}).Append(source))
		case args != nil && args.Type() == "template_string":
			tag, quasi := c.node(fn), c.node(args)
			return c.at(n, (&ast.Node{Kind: ast.TaggedTemplateExpression, Callee: tag}).Append(tag, quasi))
		}
		out = ast.Call(c.node(fn), c.arguments(args)...)
		out.Optional = optional
	}
	c.at(n, out)

	if !optionalSpine(out) || continuesChain(n) {
		return out
	}
	chain := ast.Chain(out)
	chain.Type = out.Type
	chain.Pos = out.Pos
	return chain
}

func optionalSpine(n *ast.Node) bool {
	for n != nil {
		switch n.Kind {
		case ast.MemberExpression:
			if n.Optional {
				return true
			}
			n = n.Object
		case ast.CallExpression:
			if n.Optional {
				return true
			}
			n = n.Callee
		default:
			return false
		}
	}
	return false
}

// continuesChain reports whether n is the object or callee of an enclosing
// chain element. Those always start where their parent starts.
func continuesChain(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil {
		return false
	}
	switch p.Type() {
	case "member_expression", "subscript_expression", "call_expression":
		return p.StartByte() == n.StartByte()
	}
	return false
}
