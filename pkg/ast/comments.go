package ast

import "strings"

// Comment is a `//` or `/* */` comment kept alongside the tree so the
// printer can put it back. Text includes the delimiters.
type Comment struct {
	Text string `json:"text"`
	Span Span   `json:"span"`
}

// PrintWithComments renders node like Print and re-emits comments, which
// must be in source order. A comment is written on its own line before the
// first declaration or statement that starts after it, except that a
// single-line comment sharing the last line of the previous statement stays
// at the end of that line. Comments left over at the end of a block are
// written before its closing brace.
func PrintWithComments(node Node, comments []Comment) string {
	p := &printer{comments: comments}
	p.node(node)
	p.flushComments(Position{Line: int(^uint(0) >> 1)})
	return p.b.String()
}

// flushComments writes every pending comment that starts before pos.
func (p *printer) flushComments(pos Position) {
	for p.next < len(p.comments) && comparePosition(p.comments[p.next].Span.Start, pos) < 0 {
		c := p.comments[p.next]
		p.next++
		if p.trailing(c) {
			p.appendToLastLine(c.Text)
			continue
		}
		p.comment(c)
	}
}

// flushTrailing writes the pending comment that ends the previous node's
// last line, if it starts before pos.
func (p *printer) flushTrailing(pos Position) {
	if p.next >= len(p.comments) {
		return
	}
	c := p.comments[p.next]
	if p.trailing(c) && comparePosition(c.Span.Start, pos) < 0 {
		p.next++
		p.appendToLastLine(c.Text)
	}
}

func (p *printer) trailing(c Comment) bool {
	return p.lastLine > 0 && c.Span.Start.Line == p.lastLine && c.Span.End.Line == p.lastLine
}

func (p *printer) appendToLastLine(text string) {
	out := strings.TrimSuffix(p.b.String(), "\n")
	p.b.Reset()
	p.b.WriteString(out)
	p.b.WriteString(" " + text + "\n")
}

// comment writes a comment at the current indent. Continuation lines of a
// block comment keep their layout relative to the opening delimiter.
func (p *printer) comment(c Comment) {
	pad := strings.Repeat("  ", p.indent)
	for i, raw := range strings.Split(c.Text, "\n") {
		raw = strings.TrimRight(raw, " \t\r")
		if i > 0 {
			raw = trimIndent(raw, c.Span.Start.Column-1)
		}
		if raw == "" {
			p.b.WriteByte('\n')
			continue
		}
		p.b.WriteString(pad + raw + "\n")
	}
}

func trimIndent(s string, n int) string {
	i := 0
	for i < len(s) && i < n && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}

// endNode records the last source line of a printed node so a trailing
// comment on that line can be attached to it.
func (p *printer) endNode(node Node) {
	if line := node.Span().End.Line; line > 0 {
		p.lastLine = line
	}
}
