package interpreter

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
)

// Input serves console reads: whitespace-separated tokens for numeric and
// Boolean reads, and the remainder of the current line for line reads.
type Input struct {
	r       *bufio.Reader
	rest    string
	hasLine bool
}

// NewInput wraps r. A nil reader behaves as an empty stream.
func NewInput(r io.Reader) *Input {
	if r == nil {
		r = strings.NewReader("")
	}
	return &Input{r: bufio.NewReader(r)}
}

func (in *Input) readLine() (string, error) {
	line, err := in.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// Token returns the next whitespace-delimited token, reading further lines as
// needed. It returns io.EOF when the stream holds no more tokens.
func (in *Input) Token() (string, error) {
	for {
		in.rest = strings.TrimLeftFunc(in.rest, unicode.IsSpace)
		if in.rest != "" {
			end := strings.IndexFunc(in.rest, unicode.IsSpace)
			if end < 0 {
				end = len(in.rest)
			}
			tok := in.rest[:end]
			in.rest = in.rest[end:]
			in.hasLine = true
			return tok, nil
		}
		line, err := in.readLine()
		if err != nil {
			return "", err
		}
		in.rest = line
		in.hasLine = true
	}
}

// Line returns the unread remainder of the current line, or the next full
// line when the current one is exhausted by a previous Line call.
func (in *Input) Line() (string, error) {
	if in.hasLine {
		rest := in.rest
		in.rest = ""
		in.hasLine = false
		return rest, nil
	}
	return in.readLine()
}
