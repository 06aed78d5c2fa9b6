// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape implements JSONH's backslash escape alphabet, shared by the
// tokenizer's quoted, multi-quoted, and quoteless string scanners.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unescape decodes the JSONH escape alphabet in src, returning the decoded
// text. src must not include surrounding quotes. Verbatim strings never
// call this function; backslash is a literal character in verbatim text.
//
// Recognized escapes: \\ \b \f \n \r \t \v \0 \a \e, \xHH (one byte from two
// hex digits), \uHHHH (one UTF-16 code unit from four hex digits, combined
// with an adjacent surrogate), \UHHHHHHHH (one code point from eight hex
// digits), a backslash immediately followed by a newline (the newline is
// removed; CR and CR LF both count as one), and \<anything else> (that
// literal character).
func Unescape(src mem.RO) ([]byte, error) {
	dec := make([]byte, 0, src.Len())
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(dec, src), nil
	}

	var pendingHigh rune // a decoded high surrogate awaiting its low half
	flushPending := func() {
		if pendingHigh != 0 {
			dec = utf8.AppendRune(dec, utf8.RuneError)
			pendingHigh = 0
		}
	}
	putByte := func(b byte) { flushPending(); dec = append(dec, b) }
	putRune := func(r rune) { flushPending(); dec = utf8.AppendRune(dec, r) }
	putSurrogate := func(r rune) {
		if pendingHigh != 0 {
			if utf16.IsSurrogate(r) {
				if combined := utf16.DecodeRune(pendingHigh, r); combined != utf8.RuneError {
					dec = utf8.AppendRune(dec, combined)
					pendingHigh = 0
					return
				}
			}
			flushPending()
		}
		if utf16.IsSurrogate(r) {
			// r is a (possibly high) surrogate on its own: hold it for a
			// possible low partner on the next escape.
			pendingHigh = r
			return
		}
		dec = utf8.AppendRune(dec, r)
	}

	for src.Len() != 0 {
		if i != 0 {
			flushPending()
		}
		dec = mem.Append(dec, src.SliceTo(i))

		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}
		r, n := mem.DecodeRune(src)
		if n == 0 {
			n = 1
		}
		rest := src.SliceFrom(n)

		switch r {
		case '\\':
			putByte('\\')
		case 'b':
			putByte('\b')
		case 'f':
			putByte('\f')
		case 'n':
			putByte('\n')
		case 'r':
			putByte('\r')
		case 't':
			putByte('\t')
		case 'v':
			putByte('\v')
		case '0':
			putByte(0)
		case 'a':
			putByte(0x07)
		case 'e':
			putByte(0x1B)
		case 'x':
			v, ok := parseHex(rest, 2)
			if !ok {
				return nil, fmt.Errorf("invalid \\x escape: want 2 hex digits")
			}
			putByte(byte(v))
			rest = rest.SliceFrom(2)
		case 'u':
			v, ok := parseHex(rest, 4)
			if !ok {
				return nil, fmt.Errorf("invalid \\u escape: want 4 hex digits")
			}
			putSurrogate(rune(v))
			rest = rest.SliceFrom(4)
		case 'U':
			v, ok := parseHex(rest, 8)
			if !ok {
				return nil, fmt.Errorf("invalid \\U escape: want 8 hex digits")
			}
			if v > utf8.MaxRune {
				return nil, fmt.Errorf("invalid \\U escape: code point out of range")
			}
			putRune(rune(v))
			rest = rest.SliceFrom(8)
		case '\r':
			flushPending()
			if rest.Len() != 0 {
				if r2, n2 := mem.DecodeRune(rest); r2 == '\n' {
					rest = rest.SliceFrom(n2)
				}
			}
			// newline elided, nothing emitted
		case '\n':
			flushPending()
			// newline elided, nothing emitted
		default:
			putRune(r)
		}
		src = rest

		i = mem.IndexByte(src, '\\')
		if i < 0 {
			flushPending()
			dec = mem.Append(dec, src)
			break
		}
	}
	flushPending()
	return dec, nil
}

// parseHex parses exactly n hexadecimal digits from the front of data,
// reporting the parsed value and whether data held enough valid digits.
func parseHex(data mem.RO, n int) (int64, bool) {
	if data.Len() < n {
		return 0, false
	}
	var v int64
	for i := 0; i < n; i++ {
		b := data.At(i)
		v <<= 4
		switch {
		case '0' <= b && b <= '9':
			v += int64(b - '0')
		case 'a' <= b && b <= 'f':
			v += int64(b - 'a' + 10)
		case 'A' <= b && b <= 'F':
			v += int64(b - 'A' + 10)
		default:
			return 0, false
		}
	}
	return v, true
}
