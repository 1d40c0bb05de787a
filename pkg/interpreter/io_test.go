package interpreter

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestInputTokensSpanLines(t *testing.T) {
	in := NewInput(strings.NewReader("  1 2\n\n\t3\r\n4"))
	var got []string
	for {
		tok, err := in.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		got = append(got, tok)
	}
	if strings.Join(got, ",") != "1,2,3,4" {
		t.Fatalf("unexpected tokens %v", got)
	}
}

func TestInputLineAfterToken(t *testing.T) {
	in := NewInput(strings.NewReader("7 rest of line\nnext\n"))
	if tok, err := in.Token(); err != nil || tok != "7" {
		t.Fatalf("token = %q, %v", tok, err)
	}
	if line, err := in.Line(); err != nil || line != " rest of line" {
		t.Fatalf("line = %q, %v", line, err)
	}
	if line, err := in.Line(); err != nil || line != "next" {
		t.Fatalf("line = %q, %v", line, err)
	}
	if _, err := in.Line(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestInputFinalLineWithoutNewline(t *testing.T) {
	in := NewInput(strings.NewReader("last"))
	if line, err := in.Line(); err != nil || line != "last" {
		t.Fatalf("line = %q, %v", line, err)
	}
	if _, err := in.Token(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestNilInputIsEmpty(t *testing.T) {
	if _, err := NewInput(nil).Token(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}
