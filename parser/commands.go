package parser

import (
	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/internal/token"
)

const hostRefMessage = `expected a command or assignment but got: "HostRef"`

type redirectSpec struct {
	flags       ast.RedirectFlags
	needsTarget bool
}

// redirects lists the supported redirection operators.
var redirects = map[string]redirectSpec{
	"<":    {ast.Stdin, true},
	">":    {ast.Stdout, true},
	"1>":   {ast.Stdout, true},
	">>":   {ast.Stdout | ast.Append, true},
	"1>>":  {ast.Stdout | ast.Append, true},
	"2>":   {ast.Stderr, true},
	"2>>":  {ast.Stderr | ast.Append, true},
	"&>":   {ast.Stdout | ast.Stderr, true},
	">&":   {ast.Stdout | ast.Stderr, true},
	"&>>":  {ast.Stdout | ast.Stderr | ast.Append, true},
	"2>&1": {ast.Stderr | ast.DuplicateOut, false},
	"1>&2": {ast.Stdout | ast.DuplicateOut, false},
	">&2":  {ast.Stdout | ast.DuplicateOut, false},
}

// parseCmdOrAssign parses a simple command. Leading NAME=value words become
// assignments; if nothing else follows, the result is an *ast.Assign.
func (p *Parser) parseCmdOrAssign() ast.Expr {
	cmd := &ast.Cmd{CmdPos: p.curToken.StartPosition}
loop:
	for !p.failed() {
		switch p.curToken.Type {
		case token.TEXT, token.VAR, token.CMD_SUBST:
			frags := p.readWord()
			if p.failed() {
				return nil
			}
			if len(cmd.NameAndArgs) == 0 {
				if a := p.assignment(frags); a != nil {
					cmd.Assigns = append(cmd.Assigns, a)
					continue
				}
				if p.failed() {
					return nil
				}
			}
			atom := p.buildAtom(frags)
			if atom == nil {
				return nil
			}
			if len(cmd.NameAndArgs) == 0 {
				p.lastCmdWord = ""
				if text, ok := atom.(*ast.Text); ok {
					p.lastCmdWord = text.Value
				}
			}
			cmd.NameAndArgs = append(cmd.NameAndArgs, atom)
		case token.REDIRECT:
			if !p.parseRedirect(cmd) {
				return nil
			}
		case token.HOST_REF:
			p.fail(UnexpectedHostValue, p.curToken, hostRefMessage)
			return nil
		case token.LPAREN:
			p.unexpected(p.curToken)
			return nil
		default:
			break loop
		}
	}
	if p.failed() {
		return nil
	}
	if len(cmd.NameAndArgs) == 0 && cmd.Redirect.IsEmpty() {
		return &ast.Assign{Assigns: cmd.Assigns}
	}
	if cmd.Assigns == nil {
		cmd.Assigns = []*ast.Assignment{}
	}
	cmd.CmdEnd = p.lastEnd
	return cmd
}

// readWord consumes the fragments of one word and its trailing DELIMIT.
func (p *Parser) readWord() []token.Token {
	var frags []token.Token
	for p.startsWord() {
		frags = append(frags, p.curToken)
		p.nextToken()
	}
	if p.curTokenIs(token.DELIMIT) {
		p.nextToken()
	}
	return frags
}

// parseRedirect parses a redirection operator and its target, if the
// operator needs one. Only one redirection per command is supported.
func (p *Parser) parseRedirect(cmd *ast.Cmd) bool {
	opTok := p.curToken
	spec, ok := redirects[opTok.Literal]
	if !ok {
		p.unexpected(opTok)
		return false
	}
	if !cmd.Redirect.IsEmpty() {
		err := p.newError(UnsupportedSyntax, opTok, "Unexpected token: `"+opTok.Literal+"`")
		err.note = "a command may have at most one redirection"
		p.setError(err)
		return false
	}
	p.nextToken()
	cmd.Redirect = spec.flags
	if !spec.needsTarget {
		return true
	}
	switch p.curToken.Type {
	case token.HOST_REF:
		cmd.RedirectFile = &ast.HostTarget{
			RefPos: p.curToken.StartPosition,
			RefEnd: p.curToken.EndPosition,
			Idx:    p.curToken.Index,
		}
		p.nextToken()
		return true
	case token.TEXT, token.VAR, token.CMD_SUBST:
		atom := p.buildAtom(p.readWord())
		if atom == nil {
			return false
		}
		cmd.RedirectFile = &ast.FileTarget{Atom: atom}
		return true
	}
	if p.failed() {
		return false
	}
	p.fail(MissingRedirectTarget, opTok, "Redirection with no file")
	return false
}
