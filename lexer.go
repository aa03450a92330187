package kvconf

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"
	"unicode/utf8"
)

type itemKind int

const (
	itemEmpty itemKind = iota
	itemComment
	itemValue
)

// item is one classified line.
type item struct {
	kind  itemKind
	key   string
	value string
	text  string
}

func commentByte(b byte) bool {
	return b == ';' || b == '#'
}

// classify turns one line into an item. Only the empty string is blank: a
// line of spaces has content and no '=', so it is a syntax error.
func classify(line string) (item, error) {
	if line != "" && commentByte(line[0]) {
		return item{kind: itemComment, text: line}, nil
	}
	if key, value, ok := strings.Cut(line, "="); ok {
		return item{
			kind:  itemValue,
			key:   strings.TrimSpace(key),
			value: strings.TrimSpace(value),
		}, nil
	}
	if line == "" {
		return item{kind: itemEmpty}, nil
	}
	return item{}, &SyntaxError{Kind: MissingEquals}
}

// StringLines iterates over the lines of s. Lines end at "\n" or "\r\n"; a
// terminator at the very end of s does not start another line.
func StringLines(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.Lines(s) {
			if l, ok := strings.CutSuffix(line, "\n"); ok {
				line = strings.TrimSuffix(l, "\r")
			}
			if !yield(line) {
				return
			}
		}
	}
}

var errInvalidUTF8 = errors.New("stream did not contain valid UTF-8")

// ReaderLines iterates over the lines read from r, one read per line. If r
// is already a *bufio.Reader it is used directly. The first read error is
// yielded and ends the sequence; lines that are not valid UTF-8 are reported
// as errors too.
func ReaderLines(r io.Reader) iter.Seq2[string, error] {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return func(yield func(string, error) bool) {
		for {
			line, err := br.ReadString('\n')
			if err != nil && err != io.EOF {
				yield("", err)
				return
			}
			if line == "" {
				return
			}
			if l, ok := strings.CutSuffix(line, "\n"); ok {
				line = strings.TrimSuffix(l, "\r")
			}
			if !utf8.ValidString(line) {
				yield("", errInvalidUTF8)
				return
			}
			if !yield(line, nil) || err == io.EOF {
				return
			}
		}
	}
}
