// Package parser builds the abstract syntax tree for a shell script.
//
// A parser is created by calling New() with a lexer as input. The parser should
// then be used only once, by calling parser.Parse() to produce the AST. Most
// callers use the package-level Parse or ParseTemplate functions instead.
//
// Parsing is fail-fast: the first problem found stops the parse and is
// returned as a single *Error.
package parser

import (
	"github.com/rs/zerolog"

	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/errors"
	"github.com/risor-io/shparse/internal/lexer"
	"github.com/risor-io/shparse/internal/token"
)

// Parse the provided input as shell source and return the AST. This is
// shorthand way to create a Lexer and Parser and then call Parse on that.
func Parse(input string, options ...Option) (*ast.Script, error) {
	// Resolve the options first so the lexer sees the filename and host
	// value count before the first token is read.
	settings := ResolveOptions(options...)
	l := lexer.New(input,
		lexer.WithFilename(settings.Filename),
		lexer.WithHostValues(settings.HostValues),
		lexer.WithMaxDepth(settings.MaxDepth))
	return New(l, options...).Parse()
}

// Settings is the effective configuration produced by a list of options.
// The logger is not included since it never affects the result of a parse.
type Settings struct {
	Filename   string
	MaxDepth   int
	HostValues int
}

// ResolveOptions applies the options to the default configuration.
func ResolveOptions(options ...Option) Settings {
	p := Parser{maxDepth: DefaultMaxDepth}
	for _, opt := range options {
		opt(&p)
	}
	return Settings{
		Filename:   p.filename,
		MaxDepth:   p.maxDepth,
		HostValues: p.hostCount,
	}
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in positions and errors.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser. If clauses and
// command substitutions each add one level. The default is DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// WithHostValues sets the size of the host value table that markers in the
// source may refer to.
func WithHostValues(n int) Option {
	return func(p *Parser) {
		p.hostCount = n
	}
}

// WithLogger sets the logger used for trace output.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 256

// Parser object
type Parser struct {
	// l is our lexer
	l *lexer.Lexer

	// curToken holds the current token from the lexer.
	curToken token.Token

	// peekToken holds the next token from the lexer.
	peekToken token.Token

	// lastEnd is the end position of the most recently consumed token.
	lastEnd token.Position

	// err is the first error encountered. Parsing stops once it is set.
	err *Error

	// lastCmdWord is the name of the most recent command, used to suggest
	// keywords when a clause is malformed.
	lastCmdWord string

	filename  string
	hostCount int
	logger    zerolog.Logger

	// Current recursion depth
	depth int

	// Maximum allowed recursion depth
	maxDepth int
}

// New returns a Parser for the script provided by the given Lexer.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{
		l:        l,
		maxDepth: DefaultMaxDepth,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.filename == "" {
		p.filename = l.Filename()
	}

	// Prime the token pump
	p.nextToken() // makes curToken=<empty>, peekToken=token[0]
	p.nextToken() // makes curToken=token[0], peekToken=token[1]
	return p
}

// Parse parses the whole input. On failure the returned error is an *Error.
func (p *Parser) Parse() (*ast.Script, error) {
	script := p.parseScript()
	if p.err != nil {
		p.logger.Debug().
			Str("file", p.filename).
			Str("code", string(p.err.Kind)).
			Int("line", p.err.StartPosition().LineNumber()).
			Int("column", p.err.StartPosition().ColumnNumber()).
			Msg(p.err.Message())
		return nil, p.err
	}
	p.logger.Trace().
		Str("file", p.filename).
		Int("depth", p.depth).
		Int("stmts", len(script.Stmts)).
		Msg("parsed script")
	return script, nil
}

func (p *Parser) nextToken() {
	if p.curToken.Type != "" && p.curToken.Type != token.EOF {
		p.lastEnd = p.curToken.EndPosition
	}
	p.curToken = p.peekToken
	if p.err != nil {
		return
	}
	tok, err := p.l.Next()
	p.peekToken = tok
	if err == nil {
		return
	}
	// Lexer errors carry their own code and message. They are reported
	// as soon as they are peeked.
	if lerr, ok := err.(*lexer.Error); ok {
		p.setError(&Error{
			Kind:          lerr.Code,
			message:       lerr.Message,
			file:          p.filename,
			startPosition: lerr.StartPosition,
			endPosition:   lerr.EndPosition,
			sourceCode:    p.l.GetLineText(tok),
		})
		return
	}
	p.setError(p.newError(UnsupportedSyntax, tok, err.Error()))
}

func (p *Parser) setError(err *Error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Parser) failed() bool {
	return p.err != nil
}

func (p *Parser) newError(kind errors.ErrorCode, tok token.Token, msg string) *Error {
	return &Error{
		Kind:          kind,
		message:       msg,
		file:          p.filename,
		startPosition: tok.StartPosition,
		endPosition:   tok.EndPosition,
		sourceCode:    p.l.GetLineText(tok),
	}
}

func (p *Parser) fail(kind errors.ErrorCode, tok token.Token, msg string) {
	p.setError(p.newError(kind, tok, msg))
}

// unexpected reports tok as an unexpected token.
func (p *Parser) unexpected(tok token.Token) {
	if tok.Type == token.EOF {
		p.fail(UnsupportedSyntax, tok, "Unexpected end of input")
		return
	}
	err := p.newError(UnsupportedSyntax, tok, "Unexpected token: `"+tok.Literal+"`")
	if token.IsKeyword(tok.Type) {
		err.hint = p.keywordHint()
	}
	p.setError(err)
}

// keywordHint suggests a keyword when the last command name looks like a
// misspelled one, as in "elsif" or "fii".
func (p *Parser) keywordHint() string {
	if p.lastCmdWord == "" {
		return ""
	}
	return errors.FormatSuggestions(errors.SuggestSimilar(p.lastCmdWord, token.Keywords()))
}

// enter increments the nesting depth and reports whether it is still within
// the configured limit.
func (p *Parser) enter(tok token.Token) bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.fail(NestingTooDeep, tok, "Maximum nesting depth exceeded")
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) eatNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

// startsWord reports whether the current token begins a shell word.
func (p *Parser) startsWord() bool {
	return token.IsWordPart(p.curToken.Type)
}
