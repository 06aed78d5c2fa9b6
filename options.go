// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonh

// Version selects which syntactic features of JSONH are recognized.
type Version byte

const (
	// V1 is the original JSONH syntax.
	V1 Version = iota + 1

	// V2 adds the "@" verbatim prefix, nestable block comments
	// ("/=...*...*=/"), and enlarges the set of reserved characters to
	// include "@".
	V2

	// Latest is always the newest supported version.
	Latest = V2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "V1"
	case V2:
		return "V2"
	default:
		return "unknown version"
	}
}

// Options configures the Tokenizer and Element Builder. DefaultOptions
// returns the documented defaults; in the zero value, a zero Version is
// read as Latest and a zero MaxDepth as DefaultMaxDepth.
type Options struct {
	// Version selects syntactic features. Supports reports whether the
	// current version is at least v.
	Version Version

	// ParseSingleElement requires that, after the root element, the
	// remaining input (apart from trailing comments and whitespace) is
	// empty.
	ParseSingleElement bool

	// MaxDepth is a hard limit on nested {...}/[...] containers, a guard
	// against unbounded recursion on adversarial input. Zero means use
	// DefaultOptions' value; a negative value disables the limit.
	MaxDepth int

	// IncompleteInputs, when true, treats end of input inside an open
	// container as an implicit close rather than an error.
	IncompleteInputs bool

	// BigNumbers, when true, delivers numbers as exact arbitrary-precision
	// rationals (*big.Rat) instead of evaluating them to float64.
	BigNumbers bool
}

// DefaultMaxDepth is the default value of Options.MaxDepth.
const DefaultMaxDepth = 64

// DefaultOptions returns the recognized default option values:
// Version latest, ParseSingleElement false, MaxDepth 64,
// IncompleteInputs false, BigNumbers false.
func DefaultOptions() Options {
	return Options{
		Version:  Latest,
		MaxDepth: DefaultMaxDepth,
	}
}

// Supports reports whether o's version is at least v.
func (o Options) Supports(v Version) bool { return o.Version >= v }

// maxDepth normalizes the configured depth limit, filling in the default
// when the option was left at its zero value.
func (o Options) maxDepth() int {
	if o.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// normalized returns o with its Version filled in if it was left zero.
func (o Options) normalized() Options {
	if o.Version == 0 {
		o.Version = Latest
	}
	return o
}
