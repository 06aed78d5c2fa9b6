// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package source adapts a raw byte stream carrying one of the Unicode
// transformation formats named by Encoding into the io.RuneScanner the
// jsonh package reads from, sniffing a byte-order mark when Encoding is
// Auto.
package source

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"
)

// Encoding identifies the byte-level transformation format of a source.
type Encoding byte

const (
	// Auto sniffs a leading byte-order mark to choose among UTF-8,
	// UTF-16LE, UTF-16BE, UTF-32LE, and UTF-32BE, defaulting to UTF-8 if
	// no BOM is present.
	Auto Encoding = iota
	UTF8
	UTF16LE
	UTF16BE
	UTF32LE
	UTF32BE
)

// FromBytes returns an io.RuneScanner over b, decoded according to enc.
func FromBytes(b []byte, enc Encoding) (io.RuneScanner, error) {
	return newScanner(b, enc)
}

// FromReader drains r and returns an io.RuneScanner over its contents,
// decoded according to enc.
func FromReader(r io.Reader, enc Encoding) (io.RuneScanner, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return newScanner(b, enc)
}

func newScanner(b []byte, enc Encoding) (io.RuneScanner, error) {
	if enc == Auto {
		enc, b = sniffBOM(b)
	}
	switch enc {
	case UTF8:
		return bufio.NewReader(newByteReader(b)), nil
	case UTF16LE, UTF16BE:
		runes, err := decodeUTF16(b, enc == UTF16BE)
		if err != nil {
			return nil, err
		}
		return newRuneSliceScanner(runes), nil
	case UTF32LE, UTF32BE:
		runes, err := decodeUTF32(b, enc == UTF32BE)
		if err != nil {
			return nil, err
		}
		return newRuneSliceScanner(runes), nil
	default:
		return nil, fmt.Errorf("source: unknown encoding %d", enc)
	}
}

// sniffBOM inspects the leading bytes of b for a byte-order mark, returning
// the detected encoding and b with the BOM stripped. UTF-8 is the default
// when no BOM is recognized; a UTF-8 BOM (EF BB BF), if present, is left in
// place, matching jsonh.IsWhitespace's documented treatment of U+FEFF.
func sniffBOM(b []byte) (Encoding, []byte) {
	switch {
	case len(b) >= 4 && b[0] == 0xFF && b[1] == 0xFE && b[2] == 0x00 && b[3] == 0x00:
		return UTF32LE, b[4:]
	case len(b) >= 4 && b[0] == 0x00 && b[1] == 0x00 && b[2] == 0xFE && b[3] == 0xFF:
		return UTF32BE, b[4:]
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE:
		return UTF16LE, b[2:]
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		return UTF16BE, b[2:]
	default:
		return UTF8, b
	}
}

func newByteReader(b []byte) io.Reader { return &byteReader{b: b} }

type byteReader struct {
	b []byte
	i int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.i >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.i:])
	r.i += n
	return n, nil
}

func decodeUTF16(b []byte, bigEndian bool) ([]rune, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("source: odd UTF-16 byte length %d", len(b))
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		if bigEndian {
			units[i] = binary.BigEndian.Uint16(b[2*i:])
		} else {
			units[i] = binary.LittleEndian.Uint16(b[2*i:])
		}
	}
	return utf16.Decode(units), nil
}

func decodeUTF32(b []byte, bigEndian bool) ([]rune, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("source: UTF-32 byte length %d not a multiple of 4", len(b))
	}
	order := binary.ByteOrder(binary.LittleEndian)
	if bigEndian {
		order = binary.BigEndian
	}
	out := make([]rune, len(b)/4)
	for i := range out {
		v := order.Uint32(b[4*i:])
		if v > utf8.MaxRune {
			return nil, fmt.Errorf("source: code point %#x out of range", v)
		}
		out[i] = rune(v)
	}
	return out, nil
}

// runeSliceScanner implements io.RuneScanner over a pre-decoded []rune, for
// the fixed-width encodings where decoding the whole input up front is
// simplest.
type runeSliceScanner struct {
	runes []rune
	pos   int
	last  int // value of pos just after the last ReadRune, or -1 after an UnreadRune
}

func newRuneSliceScanner(runes []rune) *runeSliceScanner {
	return &runeSliceScanner{runes: runes, last: -1}
}

func (s *runeSliceScanner) ReadRune() (rune, int, error) {
	if s.pos >= len(s.runes) {
		return 0, 0, io.EOF
	}
	r := s.runes[s.pos]
	s.pos++
	s.last = s.pos
	return r, utf8.RuneLen(r), nil
}

func (s *runeSliceScanner) UnreadRune() error {
	if s.last != s.pos {
		return fmt.Errorf("source: UnreadRune called without a preceding ReadRune")
	}
	s.pos--
	s.last = -1
	return nil
}
