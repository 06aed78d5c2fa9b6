// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonh

import "fmt"

// ErrorKind classifies the kind of lexical or structural failure reported
// by the tokenizer, number parser, or element builder. Kind is stable
// across versions; the exact message text is not.
type ErrorKind byte

const (
	ErrUnknown ErrorKind = iota

	// ErrUnexpectedEOF: end of input inside a string, block comment,
	// container, number, or escape sequence.
	ErrUnexpectedEOF

	// ErrUnexpectedChar: a "/" not starting any comment form, an empty
	// quoteless string, or a missing ":" after a property name.
	ErrUnexpectedChar

	// ErrDepthExceeded: opening a container would cross MaxDepth.
	ErrDepthExceeded

	// ErrMalformedEscape: wrong hex-digit count in \u, \x, or \U.
	ErrMalformedEscape

	// ErrMalformedNumber: a malformed number literal. The tokenizer does not
	// report this kind: text that fails the number grammar (leading or
	// trailing "_", duplicate ".", "_" adjacent to ".", missing exponent
	// digits) is read as a quoteless string instead.
	ErrMalformedNumber

	// ErrExpectedSingleElement: trailing content after the root element
	// when ParseSingleElement is set.
	ErrExpectedSingleElement

	// ErrNestedBracelessObject: a braceless property (identifier ":" value)
	// appearing inside "[ ... ]", which is legal only at the document root.
	ErrNestedBracelessObject

	// ErrNumberConversion: the Number Parser failed to convert an
	// already-validated normalized literal.
	ErrNumberConversion
)

var errorKindStr = [...]string{
	ErrUnknown:               "unknown error",
	ErrUnexpectedEOF:         "unexpected end of input",
	ErrUnexpectedChar:        "unexpected character",
	ErrDepthExceeded:         "maximum depth exceeded",
	ErrMalformedEscape:       "malformed escape sequence",
	ErrMalformedNumber:       "malformed number",
	ErrExpectedSingleElement: "expected a single element",
	ErrNestedBracelessObject: "braceless object is not allowed here",
	ErrNumberConversion:      "number conversion error",
}

func (k ErrorKind) String() string {
	v := int(k)
	if v < 0 || v >= len(errorKindStr) {
		return errorKindStr[ErrUnknown]
	}
	return errorKindStr[v]
}

// A SyntaxError reports a lexical or structural failure at a specific
// position in the input, in terms of the Cursor's code-point counter.
type SyntaxError struct {
	Pos     int
	Kind    ErrorKind
	Message string

	err error
}

// Error satisfies the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("at offset %d: %s", e.Pos, e.Message)
}

// Unwrap supports error wrapping.
func (e *SyntaxError) Unwrap() error { return e.err }

func syntaxErrorf(pos int, kind ErrorKind, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapSyntaxError(pos int, kind ErrorKind, err error) *SyntaxError {
	return &SyntaxError{Pos: pos, Kind: kind, Message: err.Error(), err: err}
}
