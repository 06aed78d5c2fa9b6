// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jsonh implements a tokenizer, value parser, and property scanner
// for JSONH, a human-friendly superset of JSON.
//
// # Tokenizing
//
// The Tokenizer type implements a lexical scanner for JSONH. Construct one
// from a Cursor over an io.RuneScanner, or call the package-level Tokenize
// for a ready-made iterator:
//
//	for tok, err := range jsonh.Tokenize(input, jsonh.DefaultOptions()) {
//	   if err == io.EOF {
//	      break
//	   } else if err != nil {
//	      log.Fatalf("Tokenize failed: %v", err)
//	   }
//	   log.Printf("Next token: %v", tok)
//	}
//
// # Parsing
//
// ParseNode reads a single JSONH element from an io.RuneScanner and returns
// it as a Node, a closed sum type over null, bool, string, number, array,
// and object values:
//
//	n, err := jsonh.ParseNode(input, jsonh.DefaultOptions())
//	if err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// Object values preserve the last-write-wins semantics required by the
// JSONH grammar: a repeated key overwrites the prior value and moves to the
// position of the last write in iteration order. See Node and Object for
// details.
//
// # Property lookup
//
// FindPropertyValue scans a top-level object for a single property's value
// without materializing the whole document, useful for configuration files
// where only a handful of keys are of interest.
//
// # Numbers
//
// JSONH numbers admit arbitrary integer bases and fractional exponents.
// ParseNumber converts a Number token's normalized literal into an exact
// *big.Rat; ParseFloat64 narrows that to a float64 when Options.BigNumbers
// is false.
package jsonh
