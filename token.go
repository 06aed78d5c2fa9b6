// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonh

// Kind identifies the lexical class of a Token.
type Kind byte

// Constants defining the valid Kind values.
const (
	Invalid Kind = iota // invalid token

	StartObject  // "{"
	EndObject    // "}"
	StartArray   // "["
	EndArray     // "]"
	PropertyName // a decoded object key
	String       // a decoded string value
	Number       // a normalized number literal
	True         // the constant true
	False        // the constant false
	Null         // the constant null
	Comment      // a comment body
)

var kindStr = [...]string{
	Invalid:      "invalid token",
	StartObject:  `"{"`,
	EndObject:    `"}"`,
	StartArray:   `"["`,
	EndArray:     `"]"`,
	PropertyName: "property name",
	String:       "string",
	Number:       "number",
	True:         "true",
	False:        "false",
	Null:         "null",
	Comment:      "comment",
}

func (k Kind) String() string {
	v := int(k)
	if v < 0 || v >= len(kindStr) {
		return kindStr[Invalid]
	}
	return kindStr[v]
}

// A Token is a single lexical unit produced by a Tokenizer: a (kind, value)
// pair. Value holds a decoded text payload: the fully unescaped content for
// String, the normalized literal text for Number (suitable for ParseNumber),
// the decoded key for PropertyName, the raw text between delimiters for
// Comment, and the empty string otherwise.
type Token struct {
	Kind  Kind
	Value string

	// Pos is the Cursor position (code points consumed) at the start of the
	// token, useful for diagnostics.
	Pos int
}

// IsValue reports whether t is a primitive value token: String, Number,
// True, False, or Null.
func (t Token) IsValue() bool {
	switch t.Kind {
	case String, Number, True, False, Null:
		return true
	default:
		return false
	}
}
