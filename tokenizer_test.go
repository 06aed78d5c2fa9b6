// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonh_test

import (
	"io"
	"strings"
	"testing"

	"github.com/creachadair/jsonh"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func scanKinds(t *testing.T, input string, opts jsonh.Options) []jsonh.Kind {
	t.Helper()
	tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader(input)), opts)
	var got []jsonh.Kind
	for {
		next, err := tok.Next()
		if err == io.EOF {
			return got
		} else if err != nil {
			t.Fatalf("Next failed on %#q: %v", input, err)
		}
		got = append(got, next.Kind)
	}
}

func TestTokenizerKinds(t *testing.T) {
	opts := jsonh.DefaultOptions()
	tests := []struct {
		input string
		want  []jsonh.Kind
	}{
		{"", nil},
		{"  \n\t ", nil},
		{"[true, false, null]", []jsonh.Kind{
			jsonh.StartArray, jsonh.True, jsonh.False, jsonh.Null, jsonh.EndArray,
		}},
		{"{}", []jsonh.Kind{jsonh.StartObject, jsonh.EndObject}},
		{"[]", []jsonh.Kind{jsonh.StartArray, jsonh.EndArray}},
		{`{"a": 1, "b": 2}`, []jsonh.Kind{
			jsonh.StartObject,
			jsonh.PropertyName, jsonh.Number,
			jsonh.PropertyName, jsonh.Number,
			jsonh.EndObject,
		}},
		{"[1, 2, 3,]", []jsonh.Kind{
			jsonh.StartArray, jsonh.Number, jsonh.Number, jsonh.Number, jsonh.EndArray,
		}},
		{"a: 1", []jsonh.Kind{
			jsonh.StartObject, jsonh.PropertyName, jsonh.Number, jsonh.EndObject,
		}},
		{"# comment\na: 1", []jsonh.Kind{
			jsonh.Comment, jsonh.StartObject, jsonh.PropertyName, jsonh.Number, jsonh.EndObject,
		}},
	}
	for _, test := range tests {
		got := scanKinds(t, test.input, opts)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input %#q: kinds (-want, +got):\n%s", test.input, diff)
		}
	}
}

func TestTokenizerStrings(t *testing.T) {
	opts := jsonh.DefaultOptions()
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`''`, ""},
		{`"a\nb"`, "a\nb"},
		{`hello world`, "hello world"},
		{"'''\n  hello\n  world\n  '''", "hello\nworld"},
	}
	for _, test := range tests {
		tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader(test.input)), opts)
		next, err := tok.Next()
		if err != nil {
			t.Fatalf("Next failed on %#q: %v", test.input, err)
		}
		if next.Kind != jsonh.String || next.Value != test.want {
			t.Errorf("Input %#q: got (%v, %q), want (String, %q)", test.input, next.Kind, next.Value, test.want)
		}
	}
}

func TestTokenizerNumbers(t *testing.T) {
	opts := jsonh.DefaultOptions()
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"-1", "-1"},
		{"3.14", "3.14"},
		{"0x1F", "0x1F"},
		{"0b101", "0b101"},
		{"5e+9", "5e+9"},
		{"1_000", "1_000"},
	}
	for _, test := range tests {
		tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader(test.input)), opts)
		next, err := tok.Next()
		if err != nil {
			t.Fatalf("Next failed on %#q: %v", test.input, err)
		}
		if next.Kind != jsonh.Number || next.Value != test.want {
			t.Errorf("Input %#q: got (%v, %q), want (Number, %q)", test.input, next.Kind, next.Value, test.want)
		}
	}
}

func TestTokenizerNumberDemotesToQuoteless(t *testing.T) {
	// "1.2.3" fails number grammar (two dots) and must fall back to a
	// quoteless string spanning the whole run.
	tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader("1.2.3")), jsonh.DefaultOptions())
	next, err := tok.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if next.Kind != jsonh.String || next.Value != "1.2.3" {
		t.Errorf("got (%v, %q), want (String, %q)", next.Kind, next.Value, "1.2.3")
	}
}

func TestTokenizerNestedBracelessObjectRejected(t *testing.T) {
	tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader("[a: 1]")), jsonh.DefaultOptions())
	for {
		_, err := tok.Next()
		if err == io.EOF {
			t.Fatal("got io.EOF, want a syntax error for nested braceless object")
		}
		var serr *jsonh.SyntaxError
		if err != nil {
			if !asSyntaxError(err, &serr) || serr.Kind != jsonh.ErrNestedBracelessObject {
				t.Fatalf("got error %v, want ErrNestedBracelessObject", err)
			}
			return
		}
	}
}

func asSyntaxError(err error, out **jsonh.SyntaxError) bool {
	if se, ok := err.(*jsonh.SyntaxError); ok {
		*out = se
		return true
	}
	return false
}

func TestTokenizerIncompleteInputs(t *testing.T) {
	opts := jsonh.DefaultOptions()
	opts.IncompleteInputs = true
	got := scanKinds(t, `{"a": 1`, opts)
	want := []jsonh.Kind{jsonh.StartObject, jsonh.PropertyName, jsonh.Number, jsonh.EndObject}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("IncompleteInputs: kinds (-want, +got):\n%s", diff)
	}
}

func scanTokens(t *testing.T, input string, opts jsonh.Options) []jsonh.Token {
	t.Helper()
	tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader(input)), opts)
	var got []jsonh.Token
	for {
		next, err := tok.Next()
		if err == io.EOF {
			return got
		} else if err != nil {
			t.Fatalf("Next failed on %#q: %v", input, err)
		}
		next.Pos = 0 // positions are checked separately
		got = append(got, next)
	}
}

func TestBasicObjectTokenStream(t *testing.T) {
	got := scanTokens(t, "{\n  \"a\": \"b\"\n}", jsonh.DefaultOptions())
	want := []jsonh.Token{
		{Kind: jsonh.StartObject},
		{Kind: jsonh.PropertyName, Value: "a"},
		{Kind: jsonh.String, Value: "b"},
		{Kind: jsonh.EndObject},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

func TestNestableBlockComments(t *testing.T) {
	const input = "/* */\n/=* *=/\n/==*/=**=/*==/\n/=*/==**==/*=/\n0"

	got := scanTokens(t, input, jsonh.DefaultOptions())
	want := []jsonh.Token{
		{Kind: jsonh.Comment, Value: " "},
		{Kind: jsonh.Comment, Value: " "},
		{Kind: jsonh.Comment, Value: "/=**=/"},
		{Kind: jsonh.Comment, Value: "/==**==/"},
		{Kind: jsonh.Number, Value: "0"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}

	// Under V1 the "/=" opener is not a comment form at all.
	opts := jsonh.DefaultOptions()
	opts.Version = jsonh.V1
	tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader(input)), opts)
	for {
		_, err := tok.Next()
		if err == io.EOF {
			t.Fatal("got io.EOF, want a syntax error under V1")
		}
		if err != nil {
			var serr *jsonh.SyntaxError
			if !asSyntaxError(err, &serr) || serr.Kind != jsonh.ErrUnexpectedChar {
				t.Fatalf("got error %v, want ErrUnexpectedChar", err)
			}
			return
		}
	}
}

func TestNestedBlockCommentSameCount(t *testing.T) {
	// A nested opener with the same "="-count must be closed before the
	// outer comment can end.
	got := scanTokens(t, "/=* a /=* b *=/ c *=/ 1", jsonh.DefaultOptions())
	want := []jsonh.Token{
		{Kind: jsonh.Comment, Value: " a /=* b *=/ c "},
		{Kind: jsonh.Number, Value: "1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

func TestMultiQuotedIndentStripping(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Leading whitespace-then-newline, trailing newline-then-whitespace,
		// and a two-space common indent are all stripped.
		{"\"\"\"  \n  hello world\n  \"\"\"", "hello world"},
		{"'''\n    alpha\n    beta\n    '''", "alpha\nbeta"},

		// A less-indented line keeps what it has.
		{"'''\n    alpha\n  beta\n    '''", "alpha\nbeta"},

		// No trailing newline-then-whitespace: no stripping at all.
		{"\"\"\"\n  hello world  \"\"\"", "\n  hello world  "},

		// No leading whitespace-then-newline: no stripping at all.
		{"\"\"\"hello\n  \"\"\"", "hello\n  "},

		// Partial quote runs inside the body belong to the body.
		{`"""a ""b"" c"""`, `a ""b"" c`},
	}
	for _, test := range tests {
		got := scanTokens(t, test.input, jsonh.DefaultOptions())
		want := []jsonh.Token{{Kind: jsonh.String, Value: test.want}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Input %#q: tokens (-want, +got):\n%s", test.input, diff)
		}
	}
}

func TestMaxDepth(t *testing.T) {
	const input = `{"a": {"b": {"c": 1}}}`

	opts := jsonh.DefaultOptions()
	opts.MaxDepth = 2
	tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader(input)), opts)
	var gotErr error
	for {
		_, err := tok.Next()
		if err != nil {
			gotErr = err
			break
		}
	}
	var serr *jsonh.SyntaxError
	if !asSyntaxError(gotErr, &serr) || serr.Kind != jsonh.ErrDepthExceeded {
		t.Errorf("MaxDepth=2: got error %v, want ErrDepthExceeded", gotErr)
	}

	opts.MaxDepth = 3
	scanKinds(t, input, opts) // must not fail
}

func TestNumberDemotesToQuotelessGrid(t *testing.T) {
	// Each of these resembles a number but fails the grammar, so the
	// accumulated text seeds a quoteless string instead.
	inputs := []string{
		".", "-.", "0e", "e+2", "0xe+2", "0oe+2", "0be+2", "0x0e+", "0b0e+_1",
		"1.2.3", "123z", "_100", "1_", "1_.5", "1._5", "0_x1",
	}
	for _, input := range inputs {
		got := scanTokens(t, input, jsonh.DefaultOptions())
		want := []jsonh.Token{{Kind: jsonh.String, Value: input}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Input %#q: tokens (-want, +got):\n%s", input, diff)
		}
	}
}

func TestNumberUnderscores(t *testing.T) {
	// Underscores may follow a base prefix directly, repeat between digits,
	// and appear in exponents, but never lead, trail, or touch a dot.
	inputs := []string{"0b_100", "100__000", "1_0.5_0", "1e1_0"}
	for _, input := range inputs {
		got := scanTokens(t, input, jsonh.DefaultOptions())
		want := []jsonh.Token{{Kind: jsonh.Number, Value: input}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Input %#q: tokens (-want, +got):\n%s", input, diff)
		}
	}
}

func TestNumberUpgradesToQuoteless(t *testing.T) {
	tests := []struct {
		input string
		want  jsonh.Token
	}{
		// Whitespace not crossing a newline, then a non-reserved character:
		// the number text and the gap become the prefix of a quoteless string.
		{"1 2", jsonh.Token{Kind: jsonh.String, Value: "1 2"}},
		{"12 bytes", jsonh.Token{Kind: jsonh.String, Value: "12 bytes"}},

		// A backslash also triggers the upgrade, with escape processing.
		{`1\x41`, jsonh.Token{Kind: jsonh.String, Value: "1A"}},
		{`1 \x41`, jsonh.Token{Kind: jsonh.String, Value: "1 A"}},

		// Trailing whitespace alone does not upgrade.
		{"12  ", jsonh.Token{Kind: jsonh.Number, Value: "12"}},
	}
	for _, test := range tests {
		got := scanTokens(t, test.input, jsonh.DefaultOptions())
		if diff := cmp.Diff([]jsonh.Token{test.want}, got); diff != "" {
			t.Errorf("Input %#q: tokens (-want, +got):\n%s", test.input, diff)
		}
	}
}

func TestNumberUpgradeStopsAtNewline(t *testing.T) {
	// The whitespace gap may not cross a newline, so the number stands and
	// the next line is a separate element (an error at the root, so scan
	// inside an array instead).
	got := scanTokens(t, "[1\n2]", jsonh.DefaultOptions())
	want := []jsonh.Token{
		{Kind: jsonh.StartArray},
		{Kind: jsonh.Number, Value: "1"},
		{Kind: jsonh.Number, Value: "2"},
		{Kind: jsonh.EndArray},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

func TestQuotelessEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  jsonh.Token
	}{
		{`a\,b`, jsonh.Token{Kind: jsonh.String, Value: "a,b"}},
		{`a\nb`, jsonh.Token{Kind: jsonh.String, Value: "a\nb"}},

		// An escape during collection suppresses the named-literal upgrade.
		{`nul\l`, jsonh.Token{Kind: jsonh.String, Value: "null"}},
		{`tru\e`, jsonh.Token{Kind: jsonh.String, Value: "tru\x1b"}},
	}
	for _, test := range tests {
		got := scanTokens(t, test.input, jsonh.DefaultOptions())
		if diff := cmp.Diff([]jsonh.Token{test.want}, got); diff != "" {
			t.Errorf("Input %#q: tokens (-want, +got):\n%s", test.input, diff)
		}
	}
}

func TestUnescapeEquivalence(t *testing.T) {
	for _, input := range []string{`"\U0001F47D"`, `"👽"`} {
		got := scanTokens(t, input, jsonh.DefaultOptions())
		want := []jsonh.Token{{Kind: jsonh.String, Value: "\U0001F47D"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Input %#q: tokens (-want, +got):\n%s", input, diff)
		}
	}
}

func TestMalformedEscapeRejected(t *testing.T) {
	for _, input := range []string{`"\u12"`, `"\xZ1"`, `"\U0001F4"`} {
		tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader(input)), jsonh.DefaultOptions())
		_, err := tok.Next()
		var serr *jsonh.SyntaxError
		if !asSyntaxError(err, &serr) || serr.Kind != jsonh.ErrMalformedEscape {
			t.Errorf("Input %#q: got error %v, want ErrMalformedEscape", input, err)
		}
	}
}

func TestVerbatimStrings(t *testing.T) {
	tests := []struct {
		input string
		want  jsonh.Token
	}{
		// No escape processing inside verbatim strings.
		{`@"a\nb"`, jsonh.Token{Kind: jsonh.String, Value: `a\nb`}},
		{`@'A'`, jsonh.Token{Kind: jsonh.String, Value: `A`}},

		// Named-literal upgrade is suppressed for verbatim quoteless text.
		{`@null`, jsonh.Token{Kind: jsonh.String, Value: "null"}},
		{`@true`, jsonh.Token{Kind: jsonh.String, Value: "true"}},
	}
	for _, test := range tests {
		got := scanTokens(t, test.input, jsonh.DefaultOptions())
		if diff := cmp.Diff([]jsonh.Token{test.want}, got); diff != "" {
			t.Errorf("Input %#q: tokens (-want, +got):\n%s", test.input, diff)
		}
	}

	// Under V1 "@" is not reserved, so it is ordinary quoteless text.
	opts := jsonh.DefaultOptions()
	opts.Version = jsonh.V1
	got := scanTokens(t, `@null`, opts)
	want := []jsonh.Token{{Kind: jsonh.String, Value: "@null"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("V1 @null: tokens (-want, +got):\n%s", diff)
	}
}

func TestHasToken(t *testing.T) {
	tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader("  \n\t ")), jsonh.DefaultOptions())
	if tok.HasToken() {
		t.Error("HasToken on whitespace-only input = true, want false")
	}
	tok = jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader("   x")), jsonh.DefaultOptions())
	if !tok.HasToken() {
		t.Error("HasToken = false, want true")
	}
}

func TestPropertyNameWithoutValue(t *testing.T) {
	tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader("{a:")), jsonh.DefaultOptions())
	var gotErr error
	for {
		_, err := tok.Next()
		if err != nil {
			gotErr = err
			break
		}
	}
	var serr *jsonh.SyntaxError
	if !asSyntaxError(gotErr, &serr) || serr.Kind != jsonh.ErrUnexpectedEOF {
		t.Errorf("got error %v, want ErrUnexpectedEOF", gotErr)
	}

	// Under IncompleteInputs the dangling property is tolerated and the
	// container closes implicitly.
	opts := jsonh.DefaultOptions()
	opts.IncompleteInputs = true
	got := scanKinds(t, "{a:", opts)
	want := []jsonh.Kind{jsonh.StartObject, jsonh.PropertyName, jsonh.EndObject}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("IncompleteInputs kinds (-want, +got):\n%s", diff)
	}
}

func TestTrailingInputLeftUnconsumed(t *testing.T) {
	// Without ParseSingleElement the stream ends cleanly after the root
	// element; the rest of the input stays where it is.
	got := scanTokens(t, "[1] [2]", jsonh.DefaultOptions())
	want := []jsonh.Token{
		{Kind: jsonh.StartArray},
		{Kind: jsonh.Number, Value: "1"},
		{Kind: jsonh.EndArray},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

func TestParseSingleElementTrailing(t *testing.T) {
	opts := jsonh.DefaultOptions()
	opts.ParseSingleElement = true

	// Trailing comments and whitespace are fine.
	got := scanTokens(t, "true  # done", opts)
	want := []jsonh.Token{
		{Kind: jsonh.True},
		{Kind: jsonh.Comment, Value: " done"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}

	// Any other trailing content is an error.
	tok := jsonh.NewTokenizer(jsonh.NewCursor(strings.NewReader("true\nfalse")), opts)
	var gotErr error
	for {
		_, err := tok.Next()
		if err != nil {
			gotErr = err
			break
		}
	}
	var serr *jsonh.SyntaxError
	if !asSyntaxError(gotErr, &serr) || serr.Kind != jsonh.ErrExpectedSingleElement {
		t.Errorf("got error %v, want ErrExpectedSingleElement", gotErr)
	}
}

func TestCommentAfterRootPrimitiveFollowsIt(t *testing.T) {
	// Comments buffered while checking for a braceless ":" surface after
	// the primitive they follow in the source.
	got := scanTokens(t, "1 // done", jsonh.DefaultOptions())
	want := []jsonh.Token{
		{Kind: jsonh.Number, Value: "1"},
		{Kind: jsonh.Comment, Value: " done"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

func TestBOMIsWhitespace(t *testing.T) {
	got := scanTokens(t, "\uFEFF 1", jsonh.DefaultOptions())
	want := []jsonh.Token{{Kind: jsonh.Number, Value: "1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

func TestUnicodeNewlineTerminatesQuoteless(t *testing.T) {
	// U+2028 ends a quoteless string the same way LF does.
	got := scanTokens(t, "[ab\u2028cd]", jsonh.DefaultOptions())
	want := []jsonh.Token{
		{Kind: jsonh.StartArray},
		{Kind: jsonh.String, Value: "ab"},
		{Kind: jsonh.String, Value: "cd"},
		{Kind: jsonh.EndArray},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

func TestTokenizerCommentsPreservedAroundBracelessColon(t *testing.T) {
	// The comment falls between the candidate property name and the ":"
	// that confirms a braceless root, a span scanned while still deciding
	// whether to synthesize StartObject; it surfaces ahead of the
	// synthetic StartObject it logically precedes.
	got := scanKinds(t, "a /* x */ : 1", jsonh.DefaultOptions())
	want := []jsonh.Kind{
		jsonh.Comment, jsonh.StartObject, jsonh.PropertyName, jsonh.Number, jsonh.EndObject,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("kinds (-want, +got):\n%s", diff)
	}
}
