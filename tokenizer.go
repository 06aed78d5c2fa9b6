// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsonh

import (
	"fmt"
	"io"
	"iter"
	"unicode/utf8"

	"go4.org/mem"

	"github.com/creachadair/jsonh/internal/escape"
)

// containerKind distinguishes the three frames a Tokenizer can be nested
// inside: an explicit object, an explicit array, and the synthetic object
// created for a braceless root.
type containerKind byte

const (
	inArray containerKind = iota
	inObject
	inBracelessRoot
)

// frameMode tracks what an open container is waiting for next.
type frameMode byte

const (
	modeExpectItem  frameMode = iota // array: element or "]"; object: property name or "}"
	modeExpectColon                  // object: ":" after a property name just read
	modeExpectValue                  // object: the value after ":"
)

type frame struct {
	kind containerKind
	mode frameMode
}

// A Tokenizer lazily produces the JSONH token stream for a single root
// element read from a Cursor. Next returns one token per call and io.EOF
// once the stream is exhausted; any other error is sticky, matching the
// rule that the first error terminates the stream.
type Tokenizer struct {
	cur  *Cursor
	opts Options

	stack []*frame
	depth int

	queue []Token

	rootDone bool
	err      error
}

// NewTokenizer constructs a Tokenizer that reads from cur under opts.
func NewTokenizer(cur *Cursor, opts Options) *Tokenizer {
	return &Tokenizer{cur: cur, opts: opts.normalized()}
}

// Tokenize returns an iterator over the JSONH token stream read from src.
// Iteration stops after the first error is yielded, including io.EOF for a
// clean end of input; callers that want to distinguish a clean end from a
// real failure should check the yielded error against io.EOF.
func Tokenize(src io.RuneScanner, opts Options) iter.Seq2[Token, error] {
	t := NewTokenizer(NewCursor(src), opts)
	return func(yield func(Token, error) bool) {
		for {
			tok, err := t.Next()
			if err != nil {
				yield(Token{}, err)
				return
			}
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// Next advances to the next token, or returns io.EOF when the stream is
// exhausted. Once Next reports a non-EOF error, every subsequent call
// reports the same error.
func (t *Tokenizer) Next() (Token, error) {
	if len(t.queue) == 0 && t.err == nil {
		if aerr := t.advance(); aerr != nil && aerr != io.EOF {
			t.err = aerr
		}
	}
	if len(t.queue) > 0 {
		tok := t.queue[0]
		t.queue = t.queue[1:]
		return tok, nil
	}
	if t.err != nil {
		return Token{}, t.err
	}
	return Token{}, io.EOF
}

// HasToken skips whitespace and reports whether any non-whitespace input
// remains. Comments count as remaining input.
func (t *Tokenizer) HasToken() bool {
	if len(t.queue) > 0 {
		return true
	}
	t.cur.SkipWhitespace()
	_, ok := t.cur.Peek()
	return ok
}

// ReadEndOfElements consumes trailing comments and whitespace after the
// root element, reporting an error if any other content remains. Comment
// tokens found along the way are still delivered by Next.
func (t *Tokenizer) ReadEndOfElements() error {
	ch, ok, err := t.skipToToken()
	if err != nil {
		return err
	}
	if ok {
		return syntaxErrorf(t.cur.Pos(), ErrExpectedSingleElement, "unexpected trailing content %q", ch)
	}
	return nil
}

func (t *Tokenizer) pushFrame(kind containerKind, mode frameMode) error {
	limit := t.opts.maxDepth()
	if limit >= 0 && t.depth+1 > limit {
		return syntaxErrorf(t.cur.Pos(), ErrDepthExceeded, "max depth %d exceeded", limit)
	}
	t.depth++
	t.stack = append(t.stack, &frame{kind: kind, mode: mode})
	return nil
}

func (t *Tokenizer) popFrame() {
	t.stack = t.stack[:len(t.stack)-1]
	t.depth--
	if len(t.stack) == 0 {
		t.rootDone = true
	}
}

func (t *Tokenizer) advance() error {
	if len(t.stack) == 0 {
		return t.advanceRoot()
	}
	top := t.stack[len(t.stack)-1]
	switch top.kind {
	case inArray:
		return t.advanceArray(top)
	default:
		return t.advanceObject(top)
	}
}

func (t *Tokenizer) advanceRoot() error {
	if t.rootDone {
		// With ParseSingleElement, anything beyond trailing comments and
		// whitespace is an error; otherwise the remaining input is simply
		// left unconsumed.
		if !t.opts.ParseSingleElement {
			return io.EOF
		}
		if err := t.ReadEndOfElements(); err != nil {
			return err
		}
		return io.EOF
	}

	ch, ok, err := t.skipToToken()
	if err != nil {
		return err
	}
	if !ok {
		t.rootDone = true
		return io.EOF
	}
	toks, err := t.readValue(ch, true)
	if err != nil {
		return err
	}
	t.queue = append(t.queue, toks...)
	if len(t.stack) == 0 {
		t.rootDone = true
	}
	return nil
}

func (t *Tokenizer) advanceArray(f *frame) error {
	ch, ok, err := t.skipToToken()
	if err != nil {
		return err
	}
	if !ok {
		if t.opts.IncompleteInputs {
			t.popFrame()
			t.queue = append(t.queue, Token{Kind: EndArray, Pos: t.cur.Pos()})
			return nil
		}
		return syntaxErrorf(t.cur.Pos(), ErrUnexpectedEOF, "unexpected end of input in array")
	}
	if ch == ']' {
		t.cur.Read()
		t.popFrame()
		t.queue = append(t.queue, Token{Kind: EndArray, Pos: t.cur.Pos() - 1})
		return nil
	}
	if ch == ',' {
		t.cur.Read()
		return t.advanceArray(f)
	}
	toks, err := t.readValue(ch, false)
	if err != nil {
		return err
	}
	t.queue = append(t.queue, toks...)
	return nil
}

func (t *Tokenizer) advanceObject(f *frame) error {
	switch f.mode {
	case modeExpectItem:
		ch, ok, err := t.skipToToken()
		if err != nil {
			return err
		}
		if !ok {
			return t.closeContainerAtEOF(f)
		}
		if ch == '}' {
			if f.kind == inBracelessRoot {
				return syntaxErrorf(t.cur.Pos(), ErrUnexpectedChar, "unexpected %q", ch)
			}
			t.cur.Read()
			t.popFrame()
			t.queue = append(t.queue, Token{Kind: EndObject, Pos: t.cur.Pos() - 1})
			return nil
		}
		if ch == ',' {
			t.cur.Read()
			return t.advanceObject(f)
		}
		namePos := t.cur.Pos()
		name, err := t.readPropertyNameToken(ch)
		if err != nil {
			return err
		}
		f.mode = modeExpectColon
		t.queue = append(t.queue, Token{Kind: PropertyName, Value: name, Pos: namePos})
		return nil

	case modeExpectColon:
		ch, ok, err := t.skipToToken()
		if err != nil {
			return err
		}
		if !ok {
			return t.closeContainerAtEOF(f)
		}
		if ch != ':' {
			return syntaxErrorf(t.cur.Pos(), ErrUnexpectedChar, "expected ':' after property name, got %q", ch)
		}
		t.cur.Read()
		f.mode = modeExpectValue
		return t.advanceObject(f)

	default: // modeExpectValue
		ch, ok, err := t.skipToToken()
		if err != nil {
			return err
		}
		if !ok {
			return t.closeContainerAtEOF(f)
		}
		f.mode = modeExpectItem
		toks, err := t.readValue(ch, false)
		if err != nil {
			return err
		}
		t.queue = append(t.queue, toks...)
		return nil
	}
}

// closeContainerAtEOF handles end of input while f is open. A braceless
// root terminates at EOF; a real object requires IncompleteInputs. A
// property name with no value is permitted only under IncompleteInputs.
func (t *Tokenizer) closeContainerAtEOF(f *frame) error {
	if f.mode != modeExpectItem && !t.opts.IncompleteInputs {
		return syntaxErrorf(t.cur.Pos(), ErrUnexpectedEOF, "unexpected end of input after property name")
	}
	if f.kind != inBracelessRoot && !t.opts.IncompleteInputs {
		return syntaxErrorf(t.cur.Pos(), ErrUnexpectedEOF, "unexpected end of input in object")
	}
	t.popFrame()
	t.queue = append(t.queue, Token{Kind: EndObject, Pos: t.cur.Pos()})
	return nil
}

// readValue reads one value starting at ch: a container open, or a
// primitive possibly upgraded into a braceless object when isRoot is set.
func (t *Tokenizer) readValue(ch rune, isRoot bool) ([]Token, error) {
	switch ch {
	case '{':
		pos := t.cur.Pos()
		t.cur.Read()
		if err := t.pushFrame(inObject, modeExpectItem); err != nil {
			return nil, err
		}
		return []Token{{Kind: StartObject, Pos: pos}}, nil
	case '[':
		pos := t.cur.Pos()
		t.cur.Read()
		if err := t.pushFrame(inArray, modeExpectItem); err != nil {
			return nil, err
		}
		return []Token{{Kind: StartArray, Pos: pos}}, nil
	}

	prim, err := t.readPrimitive(ch)
	if err != nil {
		return nil, err
	}
	qlen := len(t.queue)
	ch2, ok2, err2 := t.skipToToken()
	if err2 != nil {
		return nil, err2
	}
	if ok2 && ch2 == ':' {
		if !isRoot {
			return nil, syntaxErrorf(t.cur.Pos(), ErrNestedBracelessObject, "braceless object is only allowed at the document root")
		}
		t.cur.Read()
		name, err3 := primitiveName(prim)
		if err3 != nil {
			return nil, err3
		}
		if err4 := t.pushFrame(inBracelessRoot, modeExpectValue); err4 != nil {
			return nil, err4
		}
		return []Token{
			{Kind: StartObject, Pos: prim.Pos},
			{Kind: PropertyName, Value: name, Pos: prim.Pos},
		}, nil
	}
	// No ":" followed: the primitive stands alone and precedes any comments
	// buffered while looking for it.
	t.queue = append(t.queue, Token{})
	copy(t.queue[qlen+1:], t.queue[qlen:])
	t.queue[qlen] = prim
	return nil, nil
}

func primitiveName(tok Token) (string, error) {
	switch tok.Kind {
	case String, Number:
		return tok.Value, nil
	case Null:
		return "null", nil
	case True:
		return "true", nil
	case False:
		return "false", nil
	default:
		return "", fmt.Errorf("unsupported property name token kind %v", tok.Kind)
	}
}

func (t *Tokenizer) readPropertyNameToken(ch rune) (string, error) {
	tok, err := t.readPrimitive(ch)
	if err != nil {
		return "", err
	}
	return primitiveName(tok)
}

// ---- comments and whitespace ----

// skipToToken consumes whitespace and comments, enqueueing a Comment token
// for each one found, and reports the next non-whitespace, non-comment
// code point without consuming it. ok is false at end of input.
func (t *Tokenizer) skipToToken() (ch rune, ok bool, err error) {
	for {
		t.cur.SkipWhitespace()
		ch, ok = t.cur.Peek()
		if !ok {
			return 0, false, nil
		}
		if ch == '#' {
			pos := t.cur.Pos()
			t.cur.Read()
			body := t.readUntilNewlineOrEOF()
			t.queue = append(t.queue, Token{Kind: Comment, Value: string(body), Pos: pos})
			continue
		}
		if ch != '/' {
			return ch, true, nil
		}

		pos := t.cur.Pos()
		t.cur.Read()
		nxt, ok2 := t.cur.Peek()
		if !ok2 {
			return 0, false, syntaxErrorf(pos, ErrUnexpectedChar, "unexpected '/' at end of input")
		}
		switch {
		case nxt == '/':
			t.cur.Read()
			body := t.readUntilNewlineOrEOF()
			t.queue = append(t.queue, Token{Kind: Comment, Value: string(body), Pos: pos})
		case nxt == '*':
			t.cur.Read()
			tok, err := t.scanBlockComment(pos)
			if err != nil {
				return 0, false, err
			}
			t.queue = append(t.queue, tok)
		case nxt == '=' && t.opts.Supports(V2):
			tok, err := t.scanNestableBlockComment(pos)
			if err != nil {
				return 0, false, err
			}
			t.queue = append(t.queue, tok)
		default:
			return 0, false, syntaxErrorf(pos, ErrUnexpectedChar, "unexpected character after '/'")
		}
	}
}

func (t *Tokenizer) readUntilNewlineOrEOF() []byte {
	var body []byte
	for {
		ch, ok := t.cur.Peek()
		if !ok || IsNewline(ch) {
			return body
		}
		t.cur.Read()
		body = utf8.AppendRune(body, ch)
	}
}

func (t *Tokenizer) scanBlockComment(pos int) (Token, error) {
	var body []byte
	for {
		ch, ok := t.cur.Read()
		if !ok {
			return Token{}, syntaxErrorf(pos, ErrUnexpectedEOF, "unterminated block comment")
		}
		if ch == '*' {
			if t.cur.ReadIf('/') {
				return Token{Kind: Comment, Value: string(body), Pos: pos}, nil
			}
			body = append(body, '*')
			continue
		}
		body = utf8.AppendRune(body, ch)
	}
}

// scanNestableBlockComment reads a V2 "/=...*...*=/" comment. The leading
// "/" has already been consumed; the cursor is positioned at the "="-run.
func (t *Tokenizer) scanNestableBlockComment(pos int) (Token, error) {
	eqs := 0
	for t.cur.ReadIf('=') {
		eqs++
	}
	if !t.cur.ReadIf('*') {
		return Token{}, syntaxErrorf(pos, ErrUnexpectedChar, "malformed nestable comment opening")
	}
	depth := 1
	var body []byte
	for {
		ch, ok := t.cur.Read()
		if !ok {
			return Token{}, syntaxErrorf(pos, ErrUnexpectedEOF, "unterminated nestable block comment")
		}
		switch ch {
		case '*':
			n := 0
			for t.cur.ReadIf('=') {
				n++
			}
			if n == eqs && t.cur.ReadIf('/') {
				depth--
				if depth == 0 {
					return Token{Kind: Comment, Value: string(body), Pos: pos}, nil
				}
				body = append(body, '*')
				body = appendEquals(body, n)
				body = append(body, '/')
				continue
			}
			body = append(body, '*')
			body = appendEquals(body, n)
		case '/':
			n := 0
			for t.cur.ReadIf('=') {
				n++
			}
			if n > 0 && t.cur.ReadIf('*') {
				if n == eqs {
					depth++
				}
				body = append(body, '/')
				body = appendEquals(body, n)
				body = append(body, '*')
				continue
			}
			body = append(body, '/')
			body = appendEquals(body, n)
		default:
			body = utf8.AppendRune(body, ch)
		}
	}
}

func appendEquals(body []byte, n int) []byte {
	for i := 0; i < n; i++ {
		body = append(body, '=')
	}
	return body
}

// ---- reserved characters ----

func (t *Tokenizer) isReserved(ch rune) bool {
	switch ch {
	case '\\', ',', ':', '[', ']', '{', '}', '/', '#', '"', '\'':
		return true
	case '@':
		return t.opts.Supports(V2)
	default:
		return false
	}
}

// ---- primitives: strings and numbers ----

func (t *Tokenizer) readPrimitive(ch rune) (Token, error) {
	pos := t.cur.Pos()
	verbatim := false
	if ch == '@' && t.opts.Supports(V2) {
		t.cur.Read()
		nxt, ok := t.cur.Peek()
		if !ok {
			return Token{}, syntaxErrorf(pos, ErrUnexpectedEOF, "unexpected end of input after '@'")
		}
		verbatim = true
		ch = nxt
	}
	switch {
	case ch == '"' || ch == '\'':
		return t.readQuotedString(pos, ch, verbatim)
	case !verbatim && isNumberStart(ch):
		return t.readNumber(pos)
	default:
		return t.readQuotelessStringTok(pos, verbatim)
	}
}

func isNumberStart(ch rune) bool {
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+' || ch == '.'
}

// ---- quoted and multi-quoted strings ----

func (t *Tokenizer) readQuotedString(pos int, quote rune, verbatim bool) (Token, error) {
	n := 0
	for t.cur.ReadIf(quote) {
		n++
	}
	switch {
	case n == 2:
		return Token{Kind: String, Pos: pos}, nil
	case n == 1:
		return t.readSingleQuoted(pos, quote, verbatim)
	default:
		return t.readMultiQuoted(pos, quote, n, verbatim)
	}
}

func (t *Tokenizer) readSingleQuoted(pos int, quote rune, verbatim bool) (Token, error) {
	var raw []byte
	esc := false
	for {
		ch, ok := t.cur.Read()
		if !ok {
			return Token{}, syntaxErrorf(pos, ErrUnexpectedEOF, "unterminated string")
		}
		if esc {
			raw = utf8.AppendRune(raw, ch)
			esc = false
			continue
		}
		if ch == quote {
			break
		}
		if !verbatim && ch == '\\' {
			esc = true
			raw = append(raw, '\\')
			continue
		}
		raw = utf8.AppendRune(raw, ch)
	}
	return t.finishQuotedString(pos, raw, verbatim)
}

// readMultiQuoted reads the body of a heredoc-style string whose opening
// run of n identical quote characters has already been consumed.
func (t *Tokenizer) readMultiQuoted(pos int, quote rune, n int, verbatim bool) (Token, error) {
	var raw []byte
	for {
		ch, ok := t.cur.Peek()
		if !ok {
			return Token{}, syntaxErrorf(pos, ErrUnexpectedEOF, "unterminated multi-quoted string")
		}
		if ch == quote {
			run := 0
			for {
				c2, ok2 := t.cur.Peek()
				if !ok2 || c2 != quote {
					break
				}
				t.cur.Read()
				run++
			}
			if run == n {
				break
			}
			for i := 0; i < run; i++ {
				raw = utf8.AppendRune(raw, quote)
			}
			continue
		}
		t.cur.Read()
		if !verbatim && ch == '\\' {
			nxt, ok3 := t.cur.Read()
			if !ok3 {
				return Token{}, syntaxErrorf(pos, ErrUnexpectedEOF, "unterminated escape in multi-quoted string")
			}
			raw = append(raw, '\\')
			raw = utf8.AppendRune(raw, nxt)
			continue
		}
		raw = utf8.AppendRune(raw, ch)
	}
	return t.finishQuotedString(pos, stripHeredocIndent(raw), verbatim)
}

func (t *Tokenizer) finishQuotedString(pos int, raw []byte, verbatim bool) (Token, error) {
	if verbatim {
		return Token{Kind: String, Value: string(raw), Pos: pos}, nil
	}
	dec, err := escape.Unescape(mem.B(raw))
	if err != nil {
		return Token{}, wrapSyntaxError(pos, ErrMalformedEscape, err)
	}
	return Token{Kind: String, Value: string(dec), Pos: pos}, nil
}

// ---- quoteless strings ----

func (t *Tokenizer) readQuotelessStringTok(pos int, verbatim bool) (Token, error) {
	raw, escaped, err := t.scanQuotelessRunes(verbatim)
	if err != nil {
		return Token{}, wrapSyntaxError(pos, ErrUnexpectedEOF, err)
	}
	return t.finishQuoteless(pos, raw, verbatim, escaped)
}

func (t *Tokenizer) scanQuotelessRunes(verbatim bool) (raw []byte, escapedUsed bool, err error) {
	for {
		ch, ok := t.cur.Peek()
		if !ok || IsNewline(ch) {
			return raw, escapedUsed, nil
		}
		if ch == '\\' {
			t.cur.Read()
			if verbatim {
				raw = append(raw, '\\')
				continue
			}
			nxt, ok2 := t.cur.Read()
			if !ok2 {
				return raw, escapedUsed, fmt.Errorf("unterminated escape in quoteless string")
			}
			escapedUsed = true
			raw = append(raw, '\\')
			raw = utf8.AppendRune(raw, nxt)
			if nxt == '\r' && t.cur.ReadIf('\n') {
				raw = append(raw, '\n')
			}
			continue
		}
		if t.isReserved(ch) {
			return raw, escapedUsed, nil
		}
		t.cur.Read()
		raw = utf8.AppendRune(raw, ch)
	}
}

func (t *Tokenizer) finishQuoteless(pos int, raw []byte, verbatim, escapedUsed bool) (Token, error) {
	trimmed := trimJSONHSpace(raw)
	if len(trimmed) == 0 {
		return Token{}, syntaxErrorf(pos, ErrUnexpectedChar, "empty quoteless string")
	}
	if verbatim {
		return Token{Kind: String, Value: string(trimmed), Pos: pos}, nil
	}
	if !escapedUsed {
		switch string(trimmed) {
		case "null":
			return Token{Kind: Null, Pos: pos}, nil
		case "true":
			return Token{Kind: True, Pos: pos}, nil
		case "false":
			return Token{Kind: False, Pos: pos}, nil
		}
	}
	dec, err := escape.Unescape(mem.B(trimmed))
	if err != nil {
		return Token{}, wrapSyntaxError(pos, ErrMalformedEscape, err)
	}
	return Token{Kind: String, Value: string(dec), Pos: pos}, nil
}

func trimJSONHSpace(b []byte) []byte {
	start := 0
	for start < len(b) {
		r, n := utf8.DecodeRune(b[start:])
		if n <= 0 {
			n = 1
		}
		if !IsWhitespace(r) {
			break
		}
		start += n
	}
	end := len(b)
	for end > start {
		r, n := utf8.DecodeLastRune(b[start:end])
		if n <= 0 {
			n = 1
		}
		if !IsWhitespace(r) {
			break
		}
		end -= n
	}
	return b[start:end]
}

// ---- numbers ----

func (t *Tokenizer) readNumber(pos int) (Token, error) {
	var raw []byte
	for {
		ch, ok := t.cur.Peek()
		if !ok || IsWhitespace(ch) || t.isReserved(ch) {
			break
		}
		t.cur.Read()
		raw = utf8.AppendRune(raw, ch)
	}
	text := string(raw)
	if !validateNumberGrammar(text) {
		// The failed number text seeds a quoteless-string parse.
		cont, escaped, err := t.scanQuotelessRunes(false)
		if err != nil {
			return Token{}, wrapSyntaxError(pos, ErrUnexpectedEOF, err)
		}
		full := append(append([]byte{}, raw...), cont...)
		return t.finishQuoteless(pos, full, false, escaped)
	}

	// The number is valid. If it is followed, without crossing a newline,
	// by a backslash or a non-reserved character, the whole run is instead
	// a quoteless string whose prefix is the number text plus the
	// intervening whitespace.
	ch, ok := t.cur.Peek()
	if !ok || IsNewline(ch) || (t.isReserved(ch) && ch != '\\') {
		return Token{Kind: Number, Value: text, Pos: pos}, nil
	}
	var ws []byte
	for {
		c2, ok2 := t.cur.Peek()
		if !ok2 || IsNewline(c2) || !IsWhitespace(c2) {
			break
		}
		t.cur.Read()
		ws = utf8.AppendRune(ws, c2)
	}
	stop, ok3 := t.cur.Peek()
	if !ok3 || IsNewline(stop) || (t.isReserved(stop) && stop != '\\') {
		return Token{Kind: Number, Value: text, Pos: pos}, nil
	}
	cont, escaped, err := t.scanQuotelessRunes(false)
	if err != nil {
		return Token{}, wrapSyntaxError(pos, ErrUnexpectedEOF, err)
	}
	full := append(append(append([]byte{}, raw...), ws...), cont...)
	return t.finishQuoteless(pos, full, false, escaped)
}

// validateNumberGrammar reports whether raw fully matches the JSONH number
// grammar: sign? base? integer ('.' integer)? exponent?
func validateNumberGrammar(raw string) bool {
	if raw == "" {
		return false
	}
	i := 0
	n := len(raw)
	if raw[i] == '+' || raw[i] == '-' {
		i++
	}
	base := 10
	hasPrefix := false
	if i+1 < n && raw[i] == '0' {
		switch raw[i+1] {
		case 'x', 'X':
			base, hasPrefix = 16, true
		case 'b', 'B':
			base, hasPrefix = 2, true
		case 'o', 'O':
			base, hasPrefix = 8, true
		}
		if hasPrefix {
			i += 2
		}
	}

	j, ok := consumeDigitRun(raw, i, base, hasPrefix)
	if !ok {
		return false
	}
	i = j

	if i < n && raw[i] == '.' {
		i++
		j2, ok2 := consumeDigitRun(raw, i, base, false)
		if !ok2 {
			return false
		}
		i = j2
	}

	if i < n && (raw[i] == 'e' || raw[i] == 'E') {
		i++
		if i < n && (raw[i] == '+' || raw[i] == '-') {
			i++
		}
		j3, ok3 := consumeDigitRun(raw, i, 10, false)
		if !ok3 {
			return false
		}
		i = j3
		// The exponent may itself be fractional ("1.2e3.4").
		if i < n && raw[i] == '.' {
			i++
			j4, ok4 := consumeDigitRun(raw, i, 10, false)
			if !ok4 {
				return false
			}
			i = j4
		}
	}

	return i == n
}

// consumeDigitRun consumes a run of digits (with "_" separators) in base
// starting at i, stopping early, for base 16, at an "e"/"E" immediately
// followed by a mandatory exponent sign. Underscores may not lead (unless
// allowLeadingUnderscore, for directly after a base prefix) or trail.
func consumeDigitRun(s string, i int, base int, allowLeadingUnderscore bool) (int, bool) {
	n := len(s)
	sawDigit := false
	lastWasUnderscore := false
	first := true
	for i < n {
		c := s[i]
		if base == 16 && (c == 'e' || c == 'E') && i+1 < n && (s[i+1] == '+' || s[i+1] == '-') {
			break
		}
		if c == '_' {
			if first && !allowLeadingUnderscore {
				return i, false
			}
			if !sawDigit && !allowLeadingUnderscore {
				return i, false
			}
			lastWasUnderscore = true
			i++
			first = false
			continue
		}
		if !isDigitInBase(c, base) {
			break
		}
		sawDigit = true
		lastWasUnderscore = false
		i++
		first = false
	}
	if lastWasUnderscore || !sawDigit {
		return i, false
	}
	return i, true
}

func isDigitInBase(c byte, base int) bool {
	var v int
	switch {
	case c >= '0' && c <= '9':
		v = int(c - '0')
	case c >= 'a' && c <= 'z':
		v = int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		v = int(c-'A') + 10
	default:
		return false
	}
	return v < base
}

// ---- multi-quoted indentation stripping (spec 4.2.3) ----

func stripHeredocIndent(raw []byte) []byte {
	L, okL := findLeadingStrip(raw)
	N, W, okN := findTrailingStrip(raw)
	if !okL || !okN || N < L {
		return raw
	}
	return stripPerLineIndent(raw[L:N], W)
}

func findLeadingStrip(raw []byte) (end int, ok bool) {
	i := 0
	for i < len(raw) {
		r, n := utf8.DecodeRune(raw[i:])
		if n <= 0 {
			n = 1
		}
		if IsNewline(r) {
			return foldNewlineEnd(raw, i, n), true
		}
		if !IsWhitespace(r) {
			return 0, false
		}
		i += n
	}
	return 0, false
}

func findTrailingStrip(raw []byte) (start, wsLen int, ok bool) {
	lastStart, lastEnd := -1, -1
	i := 0
	for i < len(raw) {
		r, n := utf8.DecodeRune(raw[i:])
		if n <= 0 {
			n = 1
		}
		if IsNewline(r) {
			end := foldNewlineEnd(raw, i, n)
			lastStart, lastEnd = i, end
			i = end
			continue
		}
		i += n
	}
	if lastStart < 0 {
		return 0, 0, false
	}
	rest := raw[lastEnd:]
	j, w := 0, 0
	for j < len(rest) {
		r, n := utf8.DecodeRune(rest[j:])
		if n <= 0 {
			n = 1
		}
		if !IsWhitespace(r) {
			return 0, 0, false
		}
		j += n
		w++
	}
	return lastStart, w, true
}

func foldNewlineEnd(raw []byte, i, n int) int {
	end := i + n
	if raw[i] == '\r' && end < len(raw) {
		if r2, n2 := utf8.DecodeRune(raw[end:]); r2 == '\n' {
			end += n2
		}
	}
	return end
}

func stripPerLineIndent(body []byte, w int) []byte {
	var out []byte
	i, lineStart := 0, 0
	flush := func(lineEnd, nlStart, nlEnd int) {
		line := stripLeadingWS(body[lineStart:lineEnd], w)
		out = append(out, line...)
		out = append(out, body[nlStart:nlEnd]...)
	}
	for i < len(body) {
		r, n := utf8.DecodeRune(body[i:])
		if n <= 0 {
			n = 1
		}
		if IsNewline(r) {
			end := foldNewlineEnd(body, i, n)
			flush(i, i, end)
			i = end
			lineStart = i
			continue
		}
		i += n
	}
	out = append(out, stripLeadingWS(body[lineStart:], w)...)
	return out
}

func stripLeadingWS(line []byte, w int) []byte {
	n, i := 0, 0
	for i < len(line) && n < w {
		r, sz := utf8.DecodeRune(line[i:])
		if sz <= 0 {
			sz = 1
		}
		if !IsWhitespace(r) {
			break
		}
		i += sz
		n++
	}
	return line[i:]
}
