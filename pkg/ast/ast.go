package ast

type NodeType string

const (
	NodeProgram             NodeType = "Program"
	NodeVariableDeclaration NodeType = "VariableDeclaration"
	NodeFunctionDeclaration NodeType = "FunctionDeclaration"
	NodeParameter           NodeType = "Parameter"
	NodeTypeReference       NodeType = "TypeReference"
	NodeBlock               NodeType = "Block"
	NodeIfStatement         NodeType = "IfStatement"
	NodeElseIfClause        NodeType = "ElseIfClause"
	NodeWhileStatement      NodeType = "WhileStatement"
	NodeDoWhileStatement    NodeType = "DoWhileStatement"
	NodeAssignmentStatement NodeType = "AssignmentStatement"
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeIdentifier          NodeType = "Identifier"
	NodeIntegerLiteral      NodeType = "IntegerLiteral"
	NodeDoubleLiteral       NodeType = "DoubleLiteral"
	NodeBooleanLiteral      NodeType = "BooleanLiteral"
	NodeStringLiteral       NodeType = "StringLiteral"
	NodeBinaryExpression    NodeType = "BinaryExpression"
	NodeUnaryExpression     NodeType = "UnaryExpression"
	NodeCallExpression      NodeType = "CallExpression"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Declaration interface {
	Node
	declarationNode()
}

type declarationMarker struct{}

func (declarationMarker) declarationNode() {}

// Types

type TypeName string

const (
	TypeInt     TypeName = "Int"
	TypeDouble  TypeName = "Double"
	TypeBoolean TypeName = "Boolean"
	TypeString  TypeName = "String"
	TypeUnit    TypeName = "Unit"
)

type TypeReference struct {
	nodeImpl

	Name TypeName `json:"name"`
}

func NewTypeReference(name TypeName) *TypeReference {
	return &TypeReference{nodeImpl: newNodeImpl(NodeTypeReference), Name: name}
}

// Program

type Program struct {
	nodeImpl

	Declarations []Declaration `json:"declarations"`
}

func NewProgram(decls []Declaration) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Declarations: decls}
}

// Declarations

type VariableDeclaration struct {
	nodeImpl
	statementMarker
	declarationMarker

	ID          *Identifier    `json:"id"`
	TypeRef     *TypeReference `json:"typeRef"`
	Initializer Expression     `json:"initializer"`
	Mutable     bool           `json:"mutable"`
}

func NewVariableDeclaration(id *Identifier, typeRef *TypeReference, initializer Expression, mutable bool) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), ID: id, TypeRef: typeRef, Initializer: initializer, Mutable: mutable}
}

// Keyword returns the declaring keyword (`val` or `var`).
func (d *VariableDeclaration) Keyword() string {
	if d.Mutable {
		return "var"
	}
	return "val"
}

type Parameter struct {
	nodeImpl

	ID      *Identifier    `json:"id"`
	TypeRef *TypeReference `json:"typeRef"`
}

func NewParameter(id *Identifier, typeRef *TypeReference) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), ID: id, TypeRef: typeRef}
}

type FunctionDeclaration struct {
	nodeImpl
	declarationMarker

	ID         *Identifier    `json:"id"`
	Params     []*Parameter   `json:"params"`
	ReturnType *TypeReference `json:"returnType"`
	Body       *Block         `json:"body"`
}

func NewFunctionDeclaration(id *Identifier, params []*Parameter, returnType *TypeReference, body *Block) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), ID: id, Params: params, ReturnType: returnType, Body: body}
}

// Statements

type Block struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewBlock(body []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Body: body}
}

type ElseIfClause struct {
	nodeImpl

	Condition Expression `json:"condition"`
	Body      *Block     `json:"body"`
}

func NewElseIfClause(condition Expression, body *Block) *ElseIfClause {
	return &ElseIfClause{nodeImpl: newNodeImpl(NodeElseIfClause), Condition: condition, Body: body}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression      `json:"condition"`
	Then      *Block          `json:"then"`
	ElseIfs   []*ElseIfClause `json:"elseIfs,omitempty"`
	Else      *Block          `json:"else,omitempty"`
}

func NewIfStatement(condition Expression, then *Block, elseIfs []*ElseIfClause, elseBlock *Block) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Then: then, ElseIfs: elseIfs, Else: elseBlock}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      *Block     `json:"body"`
}

func NewWhileStatement(condition Expression, body *Block) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: condition, Body: body}
}

type DoWhileStatement struct {
	nodeImpl
	statementMarker

	Body      *Block     `json:"body"`
	Condition Expression `json:"condition"`
}

func NewDoWhileStatement(body *Block, condition Expression) *DoWhileStatement {
	return &DoWhileStatement{nodeImpl: newNodeImpl(NodeDoWhileStatement), Body: body, Condition: condition}
}

type AssignmentStatement struct {
	nodeImpl
	statementMarker

	Target *Identifier `json:"target"`
	Value  Expression  `json:"value"`
}

func NewAssignmentStatement(target *Identifier, value Expression) *AssignmentStatement {
	return &AssignmentStatement{nodeImpl: newNodeImpl(NodeAssignmentStatement), Target: target, Value: value}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

// Expressions

type Identifier struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type IntegerLiteral struct {
	nodeImpl
	expressionMarker

	Value int32 `json:"value"`
}

func NewIntegerLiteral(value int32) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type DoubleLiteral struct {
	nodeImpl
	expressionMarker

	Value float64 `json:"value"`
}

func NewDoubleLiteral(value float64) *DoubleLiteral {
	return &DoubleLiteral{nodeImpl: newNodeImpl(NodeDoubleLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BinaryOperator string

const (
	OpAdd          BinaryOperator = "+"
	OpSubtract     BinaryOperator = "-"
	OpMultiply     BinaryOperator = "*"
	OpDivide       BinaryOperator = "/"
	OpRemainder    BinaryOperator = "%"
	OpLess         BinaryOperator = "<"
	OpLessEqual    BinaryOperator = "<="
	OpGreater      BinaryOperator = ">"
	OpGreaterEqual BinaryOperator = ">="
	OpEqual        BinaryOperator = "=="
	OpNotEqual     BinaryOperator = "!="
	OpAnd          BinaryOperator = "&&"
	OpOr           BinaryOperator = "||"
)

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator BinaryOperator `json:"operator"`
	Left     Expression     `json:"left"`
	Right    Expression     `json:"right"`
}

func NewBinaryExpression(operator BinaryOperator, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type UnaryOperator string

const (
	UnaryNegate UnaryOperator = "-"
	UnaryNot    UnaryOperator = "!"
)

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator UnaryOperator `json:"operator"`
	Operand  Expression    `json:"operand"`
}

func NewUnaryExpression(operator UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type CallExpression struct {
	nodeImpl
	expressionMarker

	Callee    *Identifier  `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewCallExpression(callee *Identifier, args []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: args}
}
