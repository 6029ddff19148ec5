package parser

import (
	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/internal/token"
)

// clauseStops are the keywords that end a statement list inside an if clause.
var clauseStops = map[token.Type]bool{
	token.THEN: true,
	token.ELIF: true,
	token.ELSE: true,
	token.FI:   true,
}

func (p *Parser) parseScript() *ast.Script {
	if p.failed() {
		return nil
	}
	stmts := p.parseStmts(nil)
	if p.failed() {
		return nil
	}
	if !p.curTokenIs(token.EOF) {
		p.unexpected(p.curToken)
		return nil
	}
	if stmts == nil {
		stmts = []*ast.Stmt{}
	}
	return &ast.Script{Stmts: stmts}
}

// parseStmts parses statements separated by ";" or newlines until EOF or
// one of the stop tokens.
func (p *Parser) parseStmts(stops map[token.Type]bool) []*ast.Stmt {
	stmts := []*ast.Stmt{}
	for {
		for p.curTokenIs(token.SEMICOLON) || p.curTokenIs(token.NEWLINE) {
			p.nextToken()
		}
		if p.failed() {
			return nil
		}
		if p.curTokenIs(token.EOF) || stops[p.curToken.Type] {
			return stmts
		}
		stmt := p.parseStmt(stops)
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
		switch {
		case p.curTokenIs(token.SEMICOLON), p.curTokenIs(token.NEWLINE):
		case p.curTokenIs(token.EOF), stops[p.curToken.Type]:
			return stmts
		default:
			p.unexpected(p.curToken)
			return nil
		}
	}
}

// parseStmt parses one statement: expressions separated by "&".
func (p *Parser) parseStmt(stops map[token.Type]bool) *ast.Stmt {
	stmt := &ast.Stmt{}
	for {
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		stmt.Exprs = append(stmt.Exprs, expr)
		if _, ok := expr.(*ast.Async); !ok || p.endsStmt(stops) {
			return stmt
		}
	}
}

func (p *Parser) endsStmt(stops map[token.Type]bool) bool {
	switch p.curToken.Type {
	case token.SEMICOLON, token.NEWLINE, token.EOF:
		return true
	}
	return stops[p.curToken.Type]
}

// endsAsync reports whether the rightmost operand of expr runs in the
// background.
func endsAsync(expr ast.Expr) bool {
	switch x := expr.(type) {
	case *ast.Async:
		return true
	case *ast.Binary:
		return endsAsync(x.Y)
	}
	return false
}

// parseExpr parses a left-associative chain of && and || operands.
func (p *Parser) parseExpr() ast.Expr {
	left := p.parseOperand()
	if left == nil {
		return nil
	}
	for p.curTokenIs(token.AND) || p.curTokenIs(token.OR) {
		opTok := p.curToken
		if endsAsync(left) {
			p.fail(AsyncOnLeftOfBinary, opTok,
				`"&" is not allowed on the left-hand side of "`+opTok.Literal+`"`)
			return nil
		}
		op := ast.And
		if opTok.Type == token.OR {
			op = ast.Or
		}
		p.nextToken()
		p.eatNewlines()
		right := p.parseOperand()
		if right == nil {
			return nil
		}
		left = &ast.Binary{X: left, OpPos: opTok.StartPosition, Op: op, Y: right}
	}
	return left
}

// parseOperand parses a pipeline optionally followed by "&".
func (p *Parser) parseOperand() ast.Expr {
	x := p.parsePipeline()
	if x == nil {
		return nil
	}
	if !p.curTokenIs(token.AMPERSAND) {
		return x
	}
	if _, ok := x.(*ast.Assign); ok {
		p.unexpected(p.curToken)
		return nil
	}
	amp := p.curToken
	p.nextToken()
	return &ast.Async{X: x, AmpPos: amp.StartPosition}
}

func (p *Parser) parsePipeline() ast.Expr {
	first := p.parsePipelineItem()
	if first == nil || !p.curTokenIs(token.PIPE) {
		return first
	}
	items := []ast.Expr{first}
	for p.curTokenIs(token.PIPE) {
		if _, ok := items[len(items)-1].(*ast.Assign); ok {
			p.unexpected(p.curToken)
			return nil
		}
		p.nextToken()
		p.eatNewlines()
		item := p.parsePipelineItem()
		if item == nil {
			return nil
		}
		items = append(items, item)
	}
	if _, ok := items[len(items)-1].(*ast.Assign); ok {
		p.fail(UnsupportedSyntax, p.curToken, "Assignments are not allowed in a pipeline")
		return nil
	}
	return &ast.Pipeline{Items: items}
}

// parsePipelineItem parses an if clause, a simple command or an
// assignment-only statement.
func (p *Parser) parsePipelineItem() ast.Expr {
	if p.failed() {
		return nil
	}
	switch p.curToken.Type {
	case token.IF:
		return p.parseIf()
	case token.TEXT, token.VAR, token.CMD_SUBST, token.REDIRECT:
		return p.parseCmdOrAssign()
	case token.HOST_REF:
		p.fail(UnexpectedHostValue, p.curToken, hostRefMessage)
		return nil
	}
	p.unexpected(p.curToken)
	return nil
}

func (p *Parser) parseIf() ast.Expr {
	ifTok := p.curToken
	if !p.enter(ifTok) {
		return nil
	}
	defer p.leave()
	p.nextToken()

	clause := &ast.If{IfPos: ifTok.StartPosition}
	clause.Cond = p.parseStmts(clauseStops)
	if !p.expectClause(ifTok, token.THEN) {
		return nil
	}
	clause.Then = p.parseStmts(clauseStops)
	if p.failed() {
		return nil
	}
	for p.curTokenIs(token.ELIF) {
		p.nextToken()
		cond := p.parseStmts(clauseStops)
		if !p.expectClause(ifTok, token.THEN) {
			return nil
		}
		body := p.parseStmts(clauseStops)
		if p.failed() {
			return nil
		}
		clause.ElseParts = append(clause.ElseParts, cond, body)
	}
	if p.curTokenIs(token.ELSE) {
		p.nextToken()
		body := p.parseStmts(clauseStops)
		if p.failed() {
			return nil
		}
		clause.ElseParts = append(clause.ElseParts, body)
	}
	if !p.curTokenIs(token.FI) {
		p.unterminatedIf(ifTok, "fi")
		return nil
	}
	clause.FiPos = p.curToken.StartPosition
	p.nextToken()
	return clause
}

// expectClause consumes the expected keyword, or reports the if clause as
// unterminated.
func (p *Parser) expectClause(ifTok token.Token, t token.Type) bool {
	if p.failed() {
		return false
	}
	if !p.curTokenIs(t) {
		p.unterminatedIf(ifTok, string(t))
		return false
	}
	p.nextToken()
	return true
}

func (p *Parser) unterminatedIf(ifTok token.Token, missing string) {
	err := p.newError(UnterminatedCompound, ifTok, "Unterminated if clause: missing `"+missing+"`")
	err.hint = p.keywordHint()
	p.setError(err)
}
