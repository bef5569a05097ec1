// Package ast defines the syntax tree consumed by the code path analyzer.
// Nodes are ESTree-shaped: every node carries its kind, its children in
// document order, a parent back-reference, and role pointers (Test, Body,
// Consequent, ...) so that traversal code can ask "is this node the test of
// its parent" with a pointer comparison.
package ast

// Kind identifies the syntactic shape of a Node.
type Kind string

const (
	Program                 Kind = "Program"
	FunctionDeclaration     Kind = "FunctionDeclaration"
	FunctionExpression      Kind = "FunctionExpression"
	ArrowFunctionExpression Kind = "ArrowFunctionExpression"
	ClassDeclaration        Kind = "ClassDeclaration"
	ClassExpression         Kind = "ClassExpression"
	ClassBody               Kind = "ClassBody"
	MethodDefinition        Kind = "MethodDefinition"
	PropertyDefinition      Kind = "PropertyDefinition"
	StaticBlock             Kind = "StaticBlock"

	BlockStatement      Kind = "BlockStatement"
	ExpressionStatement Kind = "ExpressionStatement"
	EmptyStatement      Kind = "EmptyStatement"
	DebuggerStatement   Kind = "DebuggerStatement"
	WithStatement       Kind = "WithStatement"
	VariableDeclaration Kind = "VariableDeclaration"
	VariableDeclarator  Kind = "VariableDeclarator"
	IfStatement         Kind = "IfStatement"
	SwitchStatement     Kind = "SwitchStatement"
	SwitchCase          Kind = "SwitchCase"
	TryStatement        Kind = "TryStatement"
	CatchClause         Kind = "CatchClause"
	WhileStatement      Kind = "WhileStatement"
	DoWhileStatement    Kind = "DoWhileStatement"
	ForStatement        Kind = "ForStatement"
	ForInStatement      Kind = "ForInStatement"
	ForOfStatement      Kind = "ForOfStatement"
	LabeledStatement    Kind = "LabeledStatement"
	BreakStatement      Kind = "BreakStatement"
	ContinueStatement   Kind = "ContinueStatement"
	ReturnStatement     Kind = "ReturnStatement"
	ThrowStatement      Kind = "ThrowStatement"

	ImportDeclaration        Kind = "ImportDeclaration"
	ExportNamedDeclaration   Kind = "ExportNamedDeclaration"
	ExportDefaultDeclaration Kind = "ExportDefaultDeclaration"
	ExportAllDeclaration     Kind = "ExportAllDeclaration"

	ConditionalExpression    Kind = "ConditionalExpression"
	LogicalExpression        Kind = "LogicalExpression"
	BinaryExpression         Kind = "BinaryExpression"
	UnaryExpression          Kind = "UnaryExpression"
	UpdateExpression         Kind = "UpdateExpression"
	AssignmentExpression     Kind = "AssignmentExpression"
	AssignmentPattern        Kind = "AssignmentPattern"
	SequenceExpression       Kind = "SequenceExpression"
	CallExpression           Kind = "CallExpression"
	NewExpression            Kind = "NewExpression"
	MemberExpression         Kind = "MemberExpression"
	ChainExpression          Kind = "ChainExpression"
	ImportExpression         Kind = "ImportExpression"
	YieldExpression          Kind = "YieldExpression"
	AwaitExpression          Kind = "AwaitExpression"
	ArrayExpression          Kind = "ArrayExpression"
	ObjectExpression         Kind = "ObjectExpression"
	Property                 Kind = "Property"
	SpreadElement            Kind = "SpreadElement"
	TemplateLiteral          Kind = "TemplateLiteral"
	TaggedTemplateExpression Kind = "TaggedTemplateExpression"
	ArrayPattern             Kind = "ArrayPattern"
	ObjectPattern            Kind = "ObjectPattern"
	RestElement              Kind = "RestElement"
	ThisExpression           Kind = "ThisExpression"
	Super                    Kind = "Super"
	Identifier               Kind = "Identifier"
	Literal                  Kind = "Literal"

	// Other covers every construct with no control-flow meaning of its own
	// (JSX, type annotations, ...). Node.Type keeps the provider's name.
	Other Kind = "Other"
)

// Pos is a source range. Lines are 1-based, columns 0-based.
type Pos struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
	StartByte   int `json:"start_byte"`
	EndByte     int `json:"end_byte"`
}

// Node is one syntax tree node.
type Node struct {
	Kind     Kind
	Type     string  // provider-specific node type, informational only
	Parent   *Node   // nil for the root
	Children []*Node // every child in document order

	// Role pointers. Each, when set, also appears in Children.
	ID           *Node // declared name of functions, classes, declarators
	Test         *Node // if, conditional, while, do-while, for, switch case
	Consequent   *Node // if, conditional
	Alternate    *Node // if, conditional
	Body         *Node // functions, loops, labeled, catch, class, with
	Init         *Node // for init, declarator value
	Update       *Node // for update
	Left         *Node // binary, logical, assignment, for-in/of
	Right        *Node // binary, logical, assignment, for-in/of
	Discriminant *Node // switch
	Argument     *Node // return, throw, unary, update, spread, yield, await
	Label        *Node // labeled, break, continue
	Block        *Node // try
	Handler      *Node // try
	Finalizer    *Node // try
	Param        *Node // catch
	Callee       *Node // call, new
	Object       *Node // member
	MemberProp   *Node // member property
	Key          *Node // property, method, property definition
	Value        *Node // property, method, property definition
	Expression   *Node // expression statement, chain
	Source       *Node // import expression

	Params     []*Node // functions
	Arguments  []*Node // call, new
	Cases      []*Node // switch
	Statements []*Node // program, block, static block, class body, switch case consequent

	Operator  string // operators, and "var"/"let"/"const" for declarations
	Name      string // identifier name
	Raw       string // literal source text
	Optional  bool   // optional member/call (a?.b, f?.())
	Computed  bool   // computed member or key
	Shorthand bool   // shorthand property
	Static    bool   // static class member

	Pos Pos
}

// Append adopts children into n in document order, skipping nil entries.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// LabelName returns the label text of a labeled, break or continue
// statement, or "" if it has none.
func (n *Node) LabelName() string {
	if n == nil || n.Label == nil {
		return ""
	}
	return n.Label.Name
}

// IsFunction reports whether n starts a function scope.
func (n *Node) IsFunction() bool {
	switch n.Kind {
	case FunctionDeclaration, FunctionExpression, ArrowFunctionExpression:
		return true
	}
	return false
}

// IsLoop reports whether n is an iteration statement.
func (n *Node) IsLoop() bool {
	switch n.Kind {
	case WhileStatement, DoWhileStatement, ForStatement, ForInStatement, ForOfStatement:
		return true
	}
	return false
}

// IsBreakable reports whether an unlabeled break may target n.
func (n *Node) IsBreakable() bool {
	return n.IsLoop() || n.Kind == SwitchStatement
}

// IsIdentifierReference reports whether an Identifier node reads a binding,
// as opposed to naming a label, a declaration, or a non-computed key.
func IsIdentifierReference(n *Node) bool {
	p := n.Parent
	if p == nil {
		return true
	}
	switch p.Kind {
	case LabeledStatement, BreakStatement, ContinueStatement,
		ArrayPattern, RestElement, ImportDeclaration, CatchClause:
		return false
	case FunctionDeclaration, FunctionExpression, ArrowFunctionExpression,
		ClassDeclaration, ClassExpression, VariableDeclarator:
		return p.ID != n
	case Property, PropertyDefinition, MethodDefinition:
		return p.Key != n || p.Computed || p.Shorthand
	case AssignmentPattern:
		return p.Key != n
	}
	return true
}

// Inspect traverses the tree rooted at n in depth-first document order,
// calling f for each node. If f returns false the node's children are
// skipped.
func Inspect(n *Node, f func(*Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children {
		Inspect(c, f)
	}
}

// Walk traverses the tree rooted at n in document order, calling enter
// before a node's children and leave after them. Either may be nil.
func Walk(n *Node, enter, leave func(*Node)) {
	if n == nil {
		return
	}
	if enter != nil {
		enter(n)
	}
	for _, c := range n.Children {
		Walk(c, enter, leave)
	}
	if leave != nil {
		leave(n)
	}
}

// IsStatement reports whether n sits in statement position.
func (n *Node) IsStatement() bool {
	switch n.Kind {
	case BlockStatement, ExpressionStatement, EmptyStatement, DebuggerStatement,
		WithStatement, VariableDeclaration, IfStatement, SwitchStatement,
		TryStatement, WhileStatement, DoWhileStatement, ForStatement,
		ForInStatement, ForOfStatement, LabeledStatement, BreakStatement,
		ContinueStatement, ReturnStatement, ThrowStatement,
		FunctionDeclaration, ClassDeclaration, ImportDeclaration,
		ExportNamedDeclaration, ExportDefaultDeclaration, ExportAllDeclaration:
		return true
	}
	return false
}
