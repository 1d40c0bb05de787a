package ast

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// ZeroSpan returns an empty span value.
func ZeroSpan() Span {
	return Span{}
}

// IsZero reports whether the span carries no position.
func (s Span) IsZero() bool {
	return s == Span{}
}

// Join returns the span covering both a and b. Zero spans are ignored.
func Join(a, b Span) Span {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	out := a
	if comparePosition(b.Start, out.Start) < 0 {
		out.Start = b.Start
	}
	if comparePosition(b.End, out.End) > 0 {
		out.End = b.End
	}
	return out
}

func comparePosition(a, b Position) int {
	switch {
	case a.Line < b.Line:
		return -1
	case a.Line > b.Line:
		return 1
	case a.Column < b.Column:
		return -1
	case a.Column > b.Column:
		return 1
	default:
		return 0
	}
}

// ClearSpans drops span metadata from every node under root so trees can be
// compared structurally.
func ClearSpans(root Node) {
	Inspect(root, func(n Node) bool {
		SetSpan(n, Span{})
		return true
	})
}
