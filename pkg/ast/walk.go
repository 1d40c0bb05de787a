package ast

// Inspect traverses the tree rooted at node in depth-first order, calling fn
// for each node. Children are skipped when fn returns false.
func Inspect(node Node, fn func(Node) bool) {
	if isNilNode(node) || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, fn)
	}
}

// Children returns the direct children of node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(n Node) {
		if !isNilNode(n) {
			out = append(out, n)
		}
	}
	switch n := node.(type) {
	case *Program:
		for _, d := range n.Declarations {
			add(d)
		}
	case *VariableDeclaration:
		add(n.ID)
		add(n.TypeRef)
		add(n.Initializer)
	case *FunctionDeclaration:
		add(n.ID)
		for _, p := range n.Params {
			add(p)
		}
		add(n.ReturnType)
		add(n.Body)
	case *Parameter:
		add(n.ID)
		add(n.TypeRef)
	case *Block:
		for _, s := range n.Body {
			add(s)
		}
	case *IfStatement:
		add(n.Condition)
		add(n.Then)
		for _, clause := range n.ElseIfs {
			add(clause)
		}
		add(n.Else)
	case *ElseIfClause:
		add(n.Condition)
		add(n.Body)
	case *WhileStatement:
		add(n.Condition)
		add(n.Body)
	case *DoWhileStatement:
		add(n.Body)
		add(n.Condition)
	case *AssignmentStatement:
		add(n.Target)
		add(n.Value)
	case *ExpressionStatement:
		add(n.Expression)
	case *ReturnStatement:
		add(n.Argument)
	case *BinaryExpression:
		add(n.Left)
		add(n.Right)
	case *UnaryExpression:
		add(n.Operand)
	case *CallExpression:
		add(n.Callee)
		for _, arg := range n.Arguments {
			add(arg)
		}
	}
	return out
}

// isNilNode guards against typed nil pointers stored in interfaces.
func isNilNode(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Program:
		return v == nil
	case *VariableDeclaration:
		return v == nil
	case *FunctionDeclaration:
		return v == nil
	case *Parameter:
		return v == nil
	case *TypeReference:
		return v == nil
	case *Block:
		return v == nil
	case *IfStatement:
		return v == nil
	case *ElseIfClause:
		return v == nil
	case *WhileStatement:
		return v == nil
	case *DoWhileStatement:
		return v == nil
	case *AssignmentStatement:
		return v == nil
	case *ExpressionStatement:
		return v == nil
	case *ReturnStatement:
		return v == nil
	case *Identifier:
		return v == nil
	case *IntegerLiteral:
		return v == nil
	case *DoubleLiteral:
		return v == nil
	case *BooleanLiteral:
		return v == nil
	case *StringLiteral:
		return v == nil
	case *BinaryExpression:
		return v == nil
	case *UnaryExpression:
		return v == nil
	case *CallExpression:
		return v == nil
	}
	return false
}
