// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonh

import "io"

// FindPropertyValue advances a fresh token stream over src until it locates
// the first top-level (depth 1) PropertyName token equal to name, without
// materializing any values along the way. It reports true if the property
// was found, false at end of input or on error.
func FindPropertyValue(src io.RuneScanner, name string, opts Options) (bool, error) {
	return findPropertyValue(NewTokenizer(NewCursor(src), opts), name)
}

// findPropertyValue scans tok, an already-constructed Tokenizer, for the
// first depth-1 PropertyName equal to name.
func findPropertyValue(tok *Tokenizer, name string) (bool, error) {
	depth := 0
	for {
		next, err := tok.Next()
		if err == io.EOF {
			return false, nil
		} else if err != nil {
			return false, err
		}
		switch next.Kind {
		case StartObject, StartArray:
			depth++
		case EndObject, EndArray:
			depth--
		case PropertyName:
			if depth == 1 && next.Value == name {
				return true, nil
			}
		}
	}
}
