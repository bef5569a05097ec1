package ast

// Constructors for building trees by hand. Each one wires Parent, Children
// and the role pointers, so a tree built from them is immediately usable by
// the analyzer. Nil arguments mean "absent".

// New returns a node of the given kind adopting children in order.
func New(kind Kind, children ...*Node) *Node {
	return (&Node{Kind: kind}).Append(children...)
}

func NewProgram(stmts ...*Node) *Node {
	n := &Node{Kind: Program, Statements: stmts}
	return n.Append(stmts...)
}

func Block(stmts ...*Node) *Node {
	n := &Node{Kind: BlockStatement, Statements: stmts}
	return n.Append(stmts...)
}

func ExprStmt(e *Node) *Node {
	return (&Node{Kind: ExpressionStatement, Expression: e}).Append(e)
}

func Ident(name string) *Node {
	return &Node{Kind: Identifier, Name: name}
}

func Lit(raw string) *Node {
	return &Node{Kind: Literal, Raw: raw}
}

// Call builds callee(args...). Call(Ident("foo")) is a bare call statement
// expression.
func Call(callee *Node, args ...*Node) *Node {
	n := &Node{Kind: CallExpression, Callee: callee, Arguments: args}
	n.Append(callee)
	return n.Append(args...)
}

// OptionalCall builds callee?.(args...).
func OptionalCall(callee *Node, args ...*Node) *Node {
	n := Call(callee, args...)
	n.Optional = true
	return n
}

func NewExpr(callee *Node, args ...*Node) *Node {
	n := &Node{Kind: NewExpression, Callee: callee, Arguments: args}
	n.Append(callee)
	return n.Append(args...)
}

// Member builds object.property, or object?.property when optional.
func Member(object, property *Node, optional bool) *Node {
	n := &Node{Kind: MemberExpression, Object: object, MemberProp: property, Optional: optional}
	return n.Append(object, property)
}

func Chain(e *Node) *Node {
	return (&Node{Kind: ChainExpression, Expression: e}).Append(e)
}

func Logical(op string, left, right *Node) *Node {
	n := &Node{Kind: LogicalExpression, Operator: op, Left: left, Right: right}
	return n.Append(left, right)
}

func Binary(op string, left, right *Node) *Node {
	n := &Node{Kind: BinaryExpression, Operator: op, Left: left, Right: right}
	return n.Append(left, right)
}

func Assign(op string, left, right *Node) *Node {
	n := &Node{Kind: AssignmentExpression, Operator: op, Left: left, Right: right}
	return n.Append(left, right)
}

func Update(op string, arg *Node) *Node {
	return (&Node{Kind: UpdateExpression, Operator: op, Argument: arg}).Append(arg)
}

func Conditional(test, consequent, alternate *Node) *Node {
	n := &Node{Kind: ConditionalExpression, Test: test, Consequent: consequent, Alternate: alternate}
	return n.Append(test, consequent, alternate)
}

func DefaultValue(left, right *Node) *Node {
	n := &Node{Kind: AssignmentPattern, Left: left, Right: right}
	return n.Append(left, right)
}

func Var(kind string, id, init *Node) *Node {
	d := (&Node{Kind: VariableDeclarator, ID: id, Init: init}).Append(id, init)
	return (&Node{Kind: VariableDeclaration, Operator: kind}).Append(d)
}

func If(test, consequent, alternate *Node) *Node {
	n := &Node{Kind: IfStatement, Test: test, Consequent: consequent, Alternate: alternate}
	return n.Append(test, consequent, alternate)
}

func While(test, body *Node) *Node {
	n := &Node{Kind: WhileStatement, Test: test, Body: body}
	return n.Append(test, body)
}

func DoWhile(body, test *Node) *Node {
	n := &Node{Kind: DoWhileStatement, Body: body, Test: test}
	return n.Append(body, test)
}

func For(init, test, update, body *Node) *Node {
	n := &Node{Kind: ForStatement, Init: init, Test: test, Update: update, Body: body}
	return n.Append(init, test, update, body)
}

func ForIn(left, right, body *Node) *Node {
	n := &Node{Kind: ForInStatement, Left: left, Right: right, Body: body}
	return n.Append(left, right, body)
}

func ForOf(left, right, body *Node) *Node {
	n := &Node{Kind: ForOfStatement, Left: left, Right: right, Body: body}
	return n.Append(left, right, body)
}

func Switch(discriminant *Node, cases ...*Node) *Node {
	n := &Node{Kind: SwitchStatement, Discriminant: discriminant, Cases: cases}
	n.Append(discriminant)
	return n.Append(cases...)
}

// Case builds `case test: stmts...`; a nil test builds `default:`.
func Case(test *Node, stmts ...*Node) *Node {
	n := &Node{Kind: SwitchCase, Test: test, Statements: stmts}
	n.Append(test)
	return n.Append(stmts...)
}

func Try(block, handler, finalizer *Node) *Node {
	n := &Node{Kind: TryStatement, Block: block, Handler: handler, Finalizer: finalizer}
	return n.Append(block, handler, finalizer)
}

func Catch(param, body *Node) *Node {
	n := &Node{Kind: CatchClause, Param: param, Body: body}
	return n.Append(param, body)
}

func Labeled(label string, body *Node) *Node {
	l := Ident(label)
	n := &Node{Kind: LabeledStatement, Label: l, Body: body}
	return n.Append(l, body)
}

func Break(label string) *Node {
	n := &Node{Kind: BreakStatement}
	if label != "" {
		n.Label = Ident(label)
		n.Append(n.Label)
	}
	return n
}

func Continue(label string) *Node {
	n := &Node{Kind: ContinueStatement}
	if label != "" {
		n.Label = Ident(label)
		n.Append(n.Label)
	}
	return n
}

func Return(arg *Node) *Node {
	return (&Node{Kind: ReturnStatement, Argument: arg}).Append(arg)
}

func Throw(arg *Node) *Node {
	return (&Node{Kind: ThrowStatement, Argument: arg}).Append(arg)
}

func FuncDecl(name string, params []*Node, body *Node) *Node {
	id := Ident(name)
	n := &Node{Kind: FunctionDeclaration, ID: id, Params: params, Body: body}
	n.Append(id)
	n.Append(params...)
	return n.Append(body)
}

// FuncExpr builds a function expression; name may be empty.
func FuncExpr(name string, params []*Node, body *Node) *Node {
	n := &Node{Kind: FunctionExpression, Params: params, Body: body}
	if name != "" {
		n.ID = Ident(name)
		n.Append(n.ID)
	}
	n.Append(params...)
	return n.Append(body)
}

// Arrow builds an arrow function; body is either a BlockStatement or an
// expression.
func Arrow(params []*Node, body *Node) *Node {
	n := &Node{Kind: ArrowFunctionExpression, Params: params, Body: body}
	n.Append(params...)
	return n.Append(body)
}

func Class(name string, members ...*Node) *Node {
	body := (&Node{Kind: ClassBody, Statements: members}).Append(members...)
	n := &Node{Kind: ClassDeclaration, Body: body}
	if name != "" {
		n.ID = Ident(name)
		n.Append(n.ID)
	}
	return n.Append(body)
}

func Field(key, value *Node) *Node {
	n := &Node{Kind: PropertyDefinition, Key: key, Value: value}
	return n.Append(key, value)
}

func StaticBlockOf(stmts ...*Node) *Node {
	n := &Node{Kind: StaticBlock, Statements: stmts}
	return n.Append(stmts...)
}

// Method builds a class method whose body is fn, a FunctionExpression.
func Method(key, fn *Node) *Node {
	n := &Node{Kind: MethodDefinition, Key: key, Value: fn}
	return n.Append(key, fn)
}
