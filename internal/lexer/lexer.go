// Package lexer converts shell source text into a stream of tokens.
//
// Words are emitted as one or more fragment tokens (TEXT, VAR, CMD_SUBST)
// followed by a DELIMIT token. Quote state is tracked as a lexing mode and
// surfaces only as the Quoted flag on fragments. Command substitutions are
// not lexed here: the balanced inner span is handed to the caller, which
// lexes it again with NewRange.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/risor-io/shparse/errors"
	"github.com/risor-io/shparse/internal/token"
)

// Host values are spliced into source text as HostMarkerOpen, a decimal
// index, and HostMarkerClose. Both runes are in the Unicode private use area.
const (
	HostMarkerOpen  = '\uE000'
	HostMarkerClose = '\uE001'
)

var (
	hostOpen  = string(HostMarkerOpen)
	hostClose = string(HostMarkerClose)
)

// HostMarker returns the marker text that refers to host value idx.
func HostMarker(idx int) string {
	return hostOpen + strconv.Itoa(idx) + hostClose
}

// Error is returned by Next when the input cannot be tokenized.
type Error struct {
	Code          errors.ErrorCode
	Message       string
	Literal       string
	StartPosition token.Position
	EndPosition   token.Position
}

func (e *Error) Error() string {
	return e.Message
}

// Option is a configuration function for a Lexer.
type Option func(*Lexer)

// WithFilename sets the file name recorded in token positions.
func WithFilename(filename string) Option {
	return func(l *Lexer) {
		l.filename = filename
	}
}

// WithHostValues sets the number of entries in the host value table.
// Markers referring to an index outside the table are rejected.
func WithHostValues(n int) Option {
	return func(l *Lexer) {
		l.hostCount = n
	}
}

// WithMaxDepth limits the nesting of command substitutions scanned while
// looking for the end of a substitution. The default is DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(l *Lexer) {
		l.maxDepth = depth
	}
}

// DefaultMaxDepth is the default nesting limit for command substitutions.
const DefaultMaxDepth = 256

// Lexer holds our object-state.
type Lexer struct {
	input     string
	end       int // lexing stops at this offset
	pos       int // offset of the current byte
	line      int
	lineStart int
	filename  string
	hostCount int
	maxDepth  int

	// cmdStart is true when the next word is in command-start position,
	// where reserved words are recognized.
	cmdStart bool

	queue []token.Token
}

// New returns a Lexer for the whole input.
func New(input string, options ...Option) *Lexer {
	l := &Lexer{input: input, end: len(input), maxDepth: DefaultMaxDepth, cmdStart: true}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// NewRange returns a Lexer over input[start.Char:end]. Positions of the
// produced tokens are absolute offsets into input.
func NewRange(input string, start token.Position, end int, options ...Option) *Lexer {
	l := &Lexer{
		input:     input,
		end:       end,
		pos:       start.Char,
		line:      start.Line,
		lineStart: start.LineStart,
		filename:  start.File,
		maxDepth:  DefaultMaxDepth,
		cmdStart:  true,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Input returns the complete source text, including bytes outside this
// lexer's range.
func (l *Lexer) Input() string {
	return l.input
}

// Filename returns the name of the file being lexed.
func (l *Lexer) Filename() string {
	return l.filename
}

// Next returns the next token. After the end of input it keeps returning
// EOF tokens.
func (l *Lexer) Next() (token.Token, error) {
	for len(l.queue) == 0 {
		if err := l.fill(); err != nil {
			if lerr, ok := err.(*Error); ok {
				return token.Token{
					Type:          token.ILLEGAL,
					Literal:       lerr.Literal,
					StartPosition: lerr.StartPosition,
					EndPosition:   lerr.EndPosition,
				}, err
			}
			return token.Token{Type: token.ILLEGAL}, err
		}
	}
	tok := l.queue[0]
	l.queue = l.queue[1:]
	return tok, nil
}

// GetLineText returns the full line of source containing the token.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start < 0 || start > len(l.input) {
		return ""
	}
	end := strings.IndexByte(l.input[start:], '\n')
	if end < 0 {
		return l.input[start:]
	}
	return l.input[start : start+end]
}

func (l *Lexer) position(offset int) token.Position {
	return token.Position{
		Char:      offset,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    offset - l.lineStart,
		File:      l.filename,
	}
}

func (l *Lexer) advance() {
	if l.pos >= l.end {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.lineStart = l.pos + 1
	}
	l.pos++
}

func (l *Lexer) advanceTo(offset int) {
	for l.pos < offset {
		l.advance()
	}
}

// at reports whether the byte at the current offset plus n is c.
func (l *Lexer) at(n int, c byte) bool {
	i := l.pos + n
	return i < l.end && l.input[i] == c
}

func (l *Lexer) atHostMarker() bool {
	return l.pos+len(hostOpen) <= l.end && strings.HasPrefix(l.input[l.pos:], hostOpen)
}

// quotedHostRef reports a host marker found where only text is allowed.
func (l *Lexer) quotedHostRef() error {
	start := l.pos
	l.advanceTo(l.pos + len(hostOpen))
	return l.errorf(errors.E1003, start, hostOpen, `expected a command or assignment but got: "HostRef"`)
}

func (l *Lexer) emit(tok token.Token) {
	l.queue = append(l.queue, tok)
}

func (l *Lexer) emitOp(typ token.Type, start int, cmdStart bool) {
	startPos := l.position(start)
	lit := l.input[start:l.pos]
	l.emit(token.Token{
		Type:          typ,
		Literal:       lit,
		StartPosition: startPos,
		EndPosition:   l.position(l.pos),
		ValuePos:      startPos,
	})
	l.cmdStart = cmdStart
}

func (l *Lexer) errorf(code errors.ErrorCode, start int, lit, format string, args ...any) *Error {
	return &Error{
		Code:          code,
		Message:       fmt.Sprintf(format, args...),
		Literal:       lit,
		StartPosition: l.position(start),
		EndPosition:   l.position(l.pos),
	}
}

// errorAt builds an error for a construct that started at pos, possibly on
// an earlier line.
func (l *Lexer) errorAt(code errors.ErrorCode, pos token.Position, lit, msg string) *Error {
	return &Error{
		Code:          code,
		Message:       msg,
		Literal:       lit,
		StartPosition: pos,
		EndPosition:   pos.Advance(len(lit)),
	}
}

func (l *Lexer) skipBlanks() {
	for l.pos < l.end {
		switch l.input[l.pos] {
		case ' ', '\t', '\r':
			l.advance()
		case '\\':
			if !l.at(1, '\n') {
				return
			}
			l.advance()
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) skipComment() {
	for l.pos < l.end && l.input[l.pos] != '\n' {
		l.advance()
	}
}

func (l *Lexer) fill() error {
	for {
		l.skipBlanks()
		if l.pos >= l.end {
			pos := l.position(l.pos)
			l.emit(token.Token{Type: token.EOF, StartPosition: pos, EndPosition: pos, ValuePos: pos})
			return nil
		}
		start := l.pos
		c := l.input[l.pos]
		switch {
		case c == '#':
			l.skipComment()
			continue
		case c == '\n':
			l.advance()
			l.emitOp(token.NEWLINE, start, true)
		case c == ';':
			l.advance()
			l.emitOp(token.SEMICOLON, start, true)
		case c == '|':
			l.advance()
			if l.at(0, '|') {
				l.advance()
				l.emitOp(token.OR, start, true)
			} else {
				l.emitOp(token.PIPE, start, true)
			}
		case c == '&':
			l.advance()
			switch {
			case l.at(0, '&'):
				l.advance()
				l.emitOp(token.AND, start, true)
			case l.at(0, '>'):
				l.scanRedirectOp()
				l.emitOp(token.REDIRECT, start, false)
			default:
				l.emitOp(token.AMPERSAND, start, true)
			}
		case c == '<' || c == '>':
			l.scanRedirectOp()
			l.emitOp(token.REDIRECT, start, false)
		case isDigit(c) && (l.at(1, '>') || l.at(1, '<')):
			l.advance()
			l.scanRedirectOp()
			l.emitOp(token.REDIRECT, start, false)
		case c == '(':
			l.advance()
			l.emitOp(token.LPAREN, start, true)
		case c == ')':
			l.advance()
			l.emitOp(token.RPAREN, start, false)
		case l.atHostMarker():
			return l.lexHostRef()
		default:
			return l.lexWord()
		}
		return nil
	}
}

// scanRedirectOp consumes one of <, <<, >, >>, >&, >&N.
func (l *Lexer) scanRedirectOp() {
	switch l.input[l.pos] {
	case '<':
		l.advance()
		if l.at(0, '<') {
			l.advance()
		}
	case '>':
		l.advance()
		switch {
		case l.at(0, '>'):
			l.advance()
		case l.at(0, '&'):
			l.advance()
			if l.pos < l.end && isDigit(l.input[l.pos]) {
				l.advance()
			}
		}
	}
}

func (l *Lexer) lexHostRef() error {
	start := l.pos
	startPos := l.position(start)
	i := start + len(hostOpen)
	digits := i
	for i < l.end && isDigit(l.input[i]) {
		i++
	}
	if i == digits || !strings.HasPrefix(l.input[i:l.end], hostClose) {
		l.advanceTo(i)
		return l.errorf(errors.E1001, start, hostOpen, "Malformed host value marker")
	}
	idx, err := strconv.Atoi(l.input[digits:i])
	l.advanceTo(i + len(hostClose))
	lit := l.input[start:l.pos]
	if err != nil || idx >= l.hostCount {
		return l.errorf(errors.E1003, start, lit, "Host value index %s out of range", l.input[digits:i])
	}
	l.emit(token.Token{
		Type:          token.HOST_REF,
		Literal:       lit,
		StartPosition: startPos,
		EndPosition:   l.position(l.pos),
		ValuePos:      startPos,
		Index:         idx,
	})
	l.cmdStart = false
	return nil
}

// word accumulates the fragments of a single shell word.
type word struct {
	toks      []token.Token
	text      strings.Builder
	inText    bool
	quoted    bool
	textStart token.Position
}

func (w *word) addText(l *Lexer, s string, quoted bool, at int) {
	if w.inText && w.quoted != quoted {
		w.flush(l)
	}
	if !w.inText {
		w.inText = true
		w.quoted = quoted
		w.textStart = l.position(at)
	}
	w.text.WriteString(s)
}

func (w *word) add(l *Lexer, tok token.Token) {
	w.flush(l)
	w.toks = append(w.toks, tok)
}

func (w *word) flush(l *Lexer) {
	if !w.inText {
		return
	}
	w.toks = append(w.toks, token.Token{
		Type:          token.TEXT,
		Literal:       w.text.String(),
		Quoted:        w.quoted,
		StartPosition: w.textStart,
		EndPosition:   l.position(l.pos),
		ValuePos:      w.textStart,
	})
	w.text.Reset()
	w.inText = false
}

func isWordBreak(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ';', '|', '&', '<', '>', '(', ')':
		return true
	}
	return false
}

func (l *Lexer) lexWord() error {
	var w word
	for l.pos < l.end {
		c := l.input[l.pos]
		if isWordBreak(c) || l.atHostMarker() {
			break
		}
		var err error
		switch c {
		case '\'':
			err = l.lexSingleQuoted(&w)
		case '"':
			err = l.lexDoubleQuoted(&w)
		case '\\':
			err = l.lexEscape(&w)
		case '$':
			err = l.lexDollar(&w, false)
		case '`':
			err = l.lexBacktick(&w, false)
		default:
			w.addText(l, l.input[l.pos:l.pos+1], false, l.pos)
			l.advance()
		}
		if err != nil {
			return err
		}
	}
	w.flush(l)
	if len(w.toks) == 0 {
		// Only line continuations were consumed.
		return nil
	}
	if l.cmdStart && len(w.toks) == 1 && w.toks[0].Type == token.TEXT && !w.toks[0].Quoted {
		if kw := token.LookupKeyword(w.toks[0].Literal); kw != token.TEXT {
			tok := w.toks[0]
			tok.Type = kw
			l.emit(tok)
			l.cmdStart = kw != token.FI
			return nil
		}
	}
	for _, tok := range w.toks {
		l.emit(tok)
	}
	end := l.position(l.pos)
	l.emit(token.Token{Type: token.DELIMIT, StartPosition: end, EndPosition: end, ValuePos: end})
	l.cmdStart = false
	return nil
}

func (l *Lexer) lexEscape(w *word) error {
	start := l.pos
	l.advance()
	if l.pos >= l.end {
		w.addText(l, `\`, false, start)
		return nil
	}
	if l.input[l.pos] == '\n' {
		l.advance()
		return nil
	}
	if l.atHostMarker() {
		return l.quotedHostRef()
	}
	_, size := utf8.DecodeRuneInString(l.input[l.pos:l.end])
	w.addText(l, l.input[l.pos:l.pos+size], true, start)
	for i := 0; i < size; i++ {
		l.advance()
	}
	return nil
}

func (l *Lexer) lexSingleQuoted(w *word) error {
	open := l.pos
	openPos := l.position(open)
	l.advance()
	start := l.pos
	for l.pos < l.end && l.input[l.pos] != '\'' {
		if l.atHostMarker() {
			return l.quotedHostRef()
		}
		l.advance()
	}
	if l.pos >= l.end {
		return l.errorAt(errors.E1005, openPos, "'", "Unterminated string: missing `'`")
	}
	w.addText(l, "", true, open)
	w.text.WriteString(l.input[start:l.pos])
	l.advance()
	return nil
}

func (l *Lexer) lexDoubleQuoted(w *word) error {
	open := l.pos
	openPos := l.position(open)
	l.advance()
	// empty stays true until the string produces a fragment. Text that
	// opens the string starts at the quote.
	empty := true
	textAt := func(at int) int {
		if empty {
			empty = false
			return open
		}
		return at
	}
	for {
		if l.pos >= l.end {
			return l.errorAt(errors.E1005, openPos, `"`, "Unterminated string: missing `\"`")
		}
		c := l.input[l.pos]
		switch {
		case c == '"':
			if empty {
				w.addText(l, "", true, open)
			}
			l.advance()
			return nil
		case c == '\\':
			start := l.pos
			l.advance()
			if l.pos < l.end {
				switch n := l.input[l.pos]; n {
				case '$', '`', '"', '\\':
					w.addText(l, l.input[l.pos:l.pos+1], true, textAt(start))
					l.advance()
					continue
				case '\n':
					l.advance()
					continue
				}
			}
			w.addText(l, `\`, true, textAt(start))
		case c == '$':
			empty = false
			if err := l.lexDollar(w, true); err != nil {
				return err
			}
		case c == '`':
			empty = false
			if err := l.lexBacktick(w, true); err != nil {
				return err
			}
		case l.atHostMarker():
			return l.quotedHostRef()
		default:
			w.addText(l, l.input[l.pos:l.pos+1], true, textAt(l.pos))
			l.advance()
		}
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || isDigit(c)
}

func isSpecialParam(c byte) bool {
	return isDigit(c) || strings.IndexByte("?#@*$!-", c) >= 0
}

// IsName reports whether s is a valid shell variable name.
func IsName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNamePart(s[i]) {
			return false
		}
	}
	return true
}

// IsSpecialParam reports whether s names a special parameter like $? or $1.
func IsSpecialParam(s string) bool {
	return len(s) == 1 && isSpecialParam(s[0])
}

func (l *Lexer) lexDollar(w *word, quoted bool) error {
	start := l.pos
	startPos := l.position(start)
	switch {
	case l.at(1, '('):
		if l.at(2, '(') {
			l.advanceTo(start + 3)
			return l.errorf(errors.E1001, start, "$((", "Unexpected token: `$((`")
		}
		close, err := l.scanSubst(start+2, startPos, 1)
		if err != nil {
			return err
		}
		l.advanceTo(close + 1)
		w.add(l, token.Token{
			Type:          token.CMD_SUBST,
			Literal:       l.input[start+2 : close],
			Quoted:        quoted,
			StartPosition: startPos,
			EndPosition:   l.position(l.pos),
			ValuePos:      startPos.Advance(2),
		})
		return nil
	case l.at(1, '{'):
		i := start + 2
		for i < l.end && l.input[i] != '}' && l.input[i] != '\n' {
			i++
		}
		if i >= l.end || l.input[i] != '}' {
			return l.errorAt(errors.E1005, startPos, "${", "Unterminated parameter expansion: missing `}`")
		}
		name := l.input[start+2 : i]
		if !IsName(name) && !IsSpecialParam(name) {
			return l.errorAt(errors.E1001, startPos, "${", "Unexpected token: `${`")
		}
		l.advanceTo(i + 1)
		w.add(l, token.Token{
			Type:          token.VAR,
			Literal:       name,
			Quoted:        quoted,
			StartPosition: startPos,
			EndPosition:   l.position(l.pos),
			ValuePos:      startPos.Advance(2),
		})
		return nil
	case start+1 < l.end && isNameStart(l.input[start+1]):
		i := start + 2
		for i < l.end && isNamePart(l.input[i]) {
			i++
		}
		l.advanceTo(i)
		w.add(l, token.Token{
			Type:          token.VAR,
			Literal:       l.input[start+1 : i],
			Quoted:        quoted,
			StartPosition: startPos,
			EndPosition:   l.position(l.pos),
			ValuePos:      startPos.Advance(1),
		})
		return nil
	case start+1 < l.end && isSpecialParam(l.input[start+1]):
		l.advanceTo(start + 2)
		w.add(l, token.Token{
			Type:          token.VAR,
			Literal:       l.input[start+1 : start+2],
			Quoted:        quoted,
			StartPosition: startPos,
			EndPosition:   l.position(l.pos),
			ValuePos:      startPos.Advance(1),
		})
		return nil
	}
	// A lone dollar sign is literal text.
	w.addText(l, "$", quoted, start)
	l.advance()
	return nil
}

func (l *Lexer) lexBacktick(w *word, quoted bool) error {
	start := l.pos
	startPos := l.position(start)
	i := start + 1
	for i < l.end && l.input[i] != '`' {
		if l.input[i] == '\\' {
			i++
		}
		i++
	}
	if i >= l.end {
		return l.errorAt(errors.E1005, startPos, "`", "Unterminated command substitution: missing closing backtick")
	}
	l.advanceTo(i + 1)
	w.add(l, token.Token{
		Type:          token.CMD_SUBST,
		Literal:       l.input[start+1 : i],
		Quoted:        quoted,
		StartPosition: startPos,
		EndPosition:   l.position(l.pos),
		ValuePos:      startPos.Advance(1),
	})
	return nil
}

// scanSubst finds the ')' closing a command substitution whose body starts
// at from. Nested parentheses, quotes, comments and substitutions are
// skipped. depth counts the substitutions entered through double quotes.
func (l *Lexer) scanSubst(from int, open token.Position, depth int) (int, error) {
	unterminated := func() error {
		return l.errorAt(errors.E1005, open, "$(", "Unterminated command substitution: missing `)`")
	}
	if depth > l.maxDepth {
		return 0, l.errorAt(errors.E1006, open, "$(", "Maximum nesting depth exceeded")
	}
	parens := 1
	i := from
	for i < l.end {
		switch l.input[i] {
		case '\\':
			i += 2
		case '\'':
			j := strings.IndexByte(l.input[i+1:l.end], '\'')
			if j < 0 {
				return 0, unterminated()
			}
			i += j + 2
		case '"':
			j, err := l.skipDoubleQuoted(i+1, open, depth)
			if err != nil {
				return 0, err
			}
			if j < 0 {
				return 0, unterminated()
			}
			i = j
		case '`':
			j := strings.IndexByte(l.input[i+1:l.end], '`')
			if j < 0 {
				return 0, unterminated()
			}
			i += j + 2
		case '#':
			if i > from && !isWordBreak(l.input[i-1]) {
				i++
				continue
			}
			j := strings.IndexByte(l.input[i:l.end], '\n')
			if j < 0 {
				return 0, unterminated()
			}
			i += j
		case '(':
			parens++
			i++
		case ')':
			parens--
			if parens == 0 {
				return i, nil
			}
			i++
		default:
			i++
		}
	}
	return 0, unterminated()
}

// skipDoubleQuoted returns the offset just past the closing quote of a
// double-quoted string whose body starts at from, or -1 if the string is
// not closed.
func (l *Lexer) skipDoubleQuoted(from int, open token.Position, depth int) (int, error) {
	i := from
	for i < l.end {
		switch l.input[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1, nil
		case '$':
			if i+1 < l.end && l.input[i+1] == '(' {
				close, err := l.scanSubst(i+2, open, depth+1)
				if err != nil {
					if lerr, ok := err.(*Error); ok && lerr.Code == errors.E1006 {
						return 0, err
					}
					return -1, nil
				}
				i = close + 1
				continue
			}
			i++
		case '`':
			j := strings.IndexByte(l.input[i+1:l.end], '`')
			if j < 0 {
				return -1, nil
			}
			i += j + 2
		default:
			i++
		}
	}
	return -1, nil
}
