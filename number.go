// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonh

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// DefaultDecimals is the default precision, in decimal places, used when
// expanding a fractional exponent (see ParseNumber).
const DefaultDecimals = 15

// ParseNumber converts a normalized JSONH number literal (as produced in a
// Number token's Value) into an exact base-10 real, represented as a
// *big.Rat. decimals controls the precision used to expand a fractional
// exponent (e.g. "1.2e3.4"); if decimals <= 0, DefaultDecimals is used.
//
// ParseNumber performs minimal syntactic validation: the tokenizer already
// guarantees the text is lexically well-formed. The only failures this
// function can report are an empty text and an unknown digit in the
// selected base.
func ParseNumber(text string, decimals int) (*big.Rat, error) {
	if decimals <= 0 {
		decimals = DefaultDecimals
	}

	s := strings.ReplaceAll(text, "_", "")
	if s == "" {
		return nil, fmt.Errorf("empty number")
	}

	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base = 16
			s = s[2:]
		case 'b', 'B':
			base = 2
			s = s[2:]
		case 'o', 'O':
			base = 8
			s = s[2:]
		}
	}

	mantissaText, exponentText, hasExponent := splitExponent(s, base)

	mantissa, err := parseFractional(mantissaText, base)
	if err != nil {
		return nil, fmt.Errorf("mantissa: %w", err)
	}

	result := mantissa
	if hasExponent {
		expNeg := false
		if exponentText != "" && (exponentText[0] == '+' || exponentText[0] == '-') {
			expNeg = exponentText[0] == '-'
			exponentText = exponentText[1:]
		}
		exponent, err := parseFractional(exponentText, 10)
		if err != nil {
			return nil, fmt.Errorf("exponent: %w", err)
		}
		if expNeg {
			exponent.Neg(exponent)
		}
		result = applyExponent(mantissa, exponent, decimals)
	}

	if neg {
		result.Neg(result)
	}
	return result, nil
}

// ParseFloat64 evaluates r as a float64. If r is too large to represent, the
// result is +Inf or -Inf, matching Options.BigNumbers == false's overflow
// behavior.
func ParseFloat64(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}

// splitExponent locates the "e"/"E" exponent marker in s, if any, and
// returns the mantissa and exponent text on either side. For base 16, "e"
// and "E" are themselves valid hex digits, so the split only happens when
// immediately followed by a literal "+" or "-" (a mandatory sign). For every
// other base, the first "e"/"E" found is always the exponent marker.
func splitExponent(s string, base int) (mantissa, exponent string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != 'e' && s[i] != 'E' {
			continue
		}
		if base == 16 {
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				return s[:i], s[i+1:], true
			}
			continue
		}
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

// parseFractional parses text, which may contain a single ".", as a
// nonnegative fractional number in the given base: whole + fraction *
// base^-(len(fraction digits)).
func parseFractional(text string, base int) (*big.Rat, error) {
	if base == 10 {
		if r, ok := new(big.Rat).SetString(text); ok {
			return r, nil
		}
	}

	whole, frac, hasDot := strings.Cut(text, ".")

	wholeInt := new(big.Int)
	if whole != "" {
		if _, ok := wholeInt.SetString(whole, base); !ok {
			return nil, fmt.Errorf("invalid digit in %q (base %d)", whole, base)
		}
	}
	result := new(big.Rat).SetInt(wholeInt)

	if hasDot && frac != "" {
		fracInt := new(big.Int)
		if _, ok := fracInt.SetString(frac, base); !ok {
			return nil, fmt.Errorf("invalid digit in %q (base %d)", frac, base)
		}
		denom := new(big.Int).Exp(big.NewInt(int64(base)), big.NewInt(int64(len(frac))), nil)
		result.Add(result, new(big.Rat).SetFrac(fracInt, denom))
	}
	return result, nil
}

// applyExponent computes mantissa * 10^exponent. When exponent is an
// integer, the result is exact. When exponent has a fractional part, 10^exponent
// is necessarily irrational in general, so it is approximated in float64 and
// rounded to decimals decimal places, which is then the precision of the
// returned value.
func applyExponent(mantissa, exponent *big.Rat, decimals int) *big.Rat {
	if exponent.IsInt() {
		e := exponent.Num().Int64()
		pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(absInt64(e)), nil)
		powRat := new(big.Rat).SetInt(pow)
		if e >= 0 {
			return new(big.Rat).Mul(mantissa, powRat)
		}
		return new(big.Rat).Quo(mantissa, powRat)
	}

	mantissaF, _ := mantissa.Float64()
	exponentF, _ := exponent.Float64()
	product := mantissaF * math.Pow(10, exponentF)

	text := strconv.FormatFloat(product, 'f', decimals, 64)
	if r, ok := new(big.Rat).SetString(text); ok {
		return r
	}
	return new(big.Rat).SetFloat64(product)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
