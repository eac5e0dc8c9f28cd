// Package brackets checks that round, square, triangle and curly brackets
// in a character stream are closed in proper nesting order.
//
// Every bracket glyph is structural; all other characters are ignored.
// Matching is a single forward pass over an explicit stack of open kinds,
// so nesting depth is limited by memory rather than the call stack.
package brackets

import (
	"bufio"
	"errors"
	"io"
	"iter"
)

// openStack holds the kinds of currently unmatched openers, top last.
type openStack []Kind

func (s *openStack) push(k Kind) {
	*s = append(*s, k)
}

func (s *openStack) pop() (Kind, bool) {
	n := len(*s)
	if n == 0 {
		return 0, false
	}
	k := (*s)[n-1]
	*s = (*s)[:n-1]
	return k, true
}

// matcher is the per-call state of one match.
type matcher struct {
	open openStack
}

// step consumes one character. It returns false once the stream can no
// longer be balanced.
func (m *matcher) step(r rune) bool {
	if k, ok := openers[r]; ok {
		m.open.push(k)
		return true
	}
	k, ok := closers[r]
	if !ok {
		return true
	}
	top, ok := m.open.pop()
	return ok && top == k
}

func (m *matcher) verdict() Verdict {
	if len(m.open) == 0 {
		return Valid
	}
	return Invalid
}

// Match consumes seq and returns its verdict. It stops pulling from seq at
// the first mismatch or stray closer.
func Match(seq iter.Seq[rune]) Verdict {
	var m matcher
	for r := range seq {
		if !m.step(r) {
			return Invalid
		}
	}
	return m.verdict()
}

// MatchString matches the runes of s.
func MatchString(s string) Verdict {
	return Match(func(yield func(rune) bool) {
		for _, r := range s {
			if !yield(r) {
				return
			}
		}
	})
}

// MatchBytes matches b decoded as UTF-8. Invalid encodings are inert.
func MatchBytes(b []byte) Verdict {
	return MatchString(string(b))
}

// MatchReader matches the characters read from r. A read error other than
// io.EOF is returned with an empty verdict.
func MatchReader(r io.Reader) (Verdict, error) {
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}

	var m matcher
	for {
		c, _, err := rr.ReadRune()
		if errors.Is(err, io.EOF) {
			return m.verdict(), nil
		}
		if err != nil {
			return "", err
		}
		if !m.step(c) {
			return Invalid, nil
		}
	}
}
