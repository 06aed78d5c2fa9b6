// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonh

import (
	"io"
	"unicode"
)

// A Cursor is a peekable stream of Unicode code points over a rune reader.
// It is the sole means by which the rest of the package reads input; every
// other component consumes characters only through a Cursor.
type Cursor struct {
	r io.RuneScanner

	have    bool // pending holds an unconsumed lookahead rune
	pending rune

	pos int // count of code points consumed so far
}

// NewCursor constructs a Cursor that reads code points from r.
func NewCursor(r io.RuneScanner) *Cursor { return &Cursor{r: r} }

// Pos reports the number of code points read from the cursor so far.
func (c *Cursor) Pos() int { return c.pos }

func (c *Cursor) fill() (rune, bool) {
	if c.have {
		return c.pending, true
	}
	ch, _, err := c.r.ReadRune()
	if err != nil {
		return 0, false
	}
	c.pending, c.have = ch, true
	return ch, true
}

// Peek returns the next code point without consuming it, or (0, false) at
// end of input.
func (c *Cursor) Peek() (rune, bool) { return c.fill() }

// Read consumes and returns the next code point, or (0, false) at end of
// input.
func (c *Cursor) Read() (rune, bool) {
	ch, ok := c.fill()
	if !ok {
		return 0, false
	}
	c.have = false
	c.pos++
	return ch, true
}

// ReadIf consumes and reports true if the next code point equals want;
// otherwise it reports false and leaves the input unconsumed.
func (c *Cursor) ReadIf(want rune) bool {
	ch, ok := c.Peek()
	if !ok || ch != want {
		return false
	}
	c.Read()
	return true
}

// ReadAny consumes and returns the next code point if it occurs in set,
// reporting (ch, true); otherwise it reports (0, false) and leaves the
// input unconsumed.
func (c *Cursor) ReadAny(set string) (rune, bool) {
	ch, ok := c.Peek()
	if !ok {
		return 0, false
	}
	for _, want := range set {
		if ch == want {
			c.Read()
			return ch, true
		}
	}
	return 0, false
}

// Special code points recognized throughout JSONH: the two Unicode
// newlines and the byte-order mark.
const (
	lineSeparator      = ' '
	paragraphSeparator = ' '
	byteOrderMark      = '\uFEFF'
)

// IsNewline reports whether ch is one of the newline code points recognized
// throughout JSONH: LF, CR, U+2028 (line separator), U+2029 (paragraph
// separator).
func IsNewline(ch rune) bool {
	return ch == '\n' || ch == '\r' || ch == lineSeparator || ch == paragraphSeparator
}

// IsWhitespace reports whether ch is whitespace, including the BOM
// (U+FEFF), which the source package leaves in the stream for UTF-8 input
// rather than stripping.
func IsWhitespace(ch rune) bool {
	return ch == byteOrderMark || unicode.IsSpace(ch)
}

// SkipNewline consumes a logical newline starting at the current position,
// treating a CR LF pair as a single newline, and reports whether a newline
// was consumed.
func (c *Cursor) SkipNewline() bool {
	ch, ok := c.Peek()
	if !ok || !IsNewline(ch) {
		return false
	}
	c.Read()
	if ch == '\r' {
		c.ReadIf('\n')
	}
	return true
}

// SkipWhitespace consumes whitespace code points and reports how many were
// consumed.
func (c *Cursor) SkipWhitespace() int {
	n := 0
	for {
		ch, ok := c.Peek()
		if !ok || !IsWhitespace(ch) {
			return n
		}
		c.Read()
		n++
	}
}
