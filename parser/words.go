package parser

import (
	"strings"

	"github.com/risor-io/shparse/ast"
	"github.com/risor-io/shparse/internal/lexer"
	"github.com/risor-io/shparse/internal/token"
)

// buildAtom turns the fragments of one word into an atom. Adjacent text
// merges, empty text is dropped when anything else remains, and a single
// fragment without expansion hints stays a simple atom.
func (p *Parser) buildAtom(frags []token.Token) ast.Atom {
	var (
		atoms     []ast.SimpleAtom
		glob      bool
		brace     bool
		openBrace bool
	)
	for _, frag := range frags {
		switch frag.Type {
		case token.TEXT:
			if !frag.Quoted {
				for i := 0; i < len(frag.Literal); i++ {
					switch frag.Literal[i] {
					case '*', '?', '[':
						glob = true
					case '{':
						openBrace = true
					case '}':
						if openBrace {
							brace = true
						}
					}
				}
			}
			if n := len(atoms); n > 0 {
				if last, ok := atoms[n-1].(*ast.Text); ok {
					last.Value += frag.Literal
					last.ValueEnd = frag.EndPosition
					continue
				}
			}
			atoms = append(atoms, &ast.Text{
				ValuePos: frag.StartPosition,
				ValueEnd: frag.EndPosition,
				Value:    frag.Literal,
			})
		case token.VAR:
			atoms = append(atoms, &ast.Var{
				Dollar: frag.StartPosition,
				VarEnd: frag.EndPosition,
				Name:   frag.Literal,
			})
		case token.CMD_SUBST:
			subst := p.parseSubst(frag)
			if subst == nil {
				return nil
			}
			atoms = append(atoms, subst)
		}
	}
	if len(atoms) > 1 {
		kept := atoms[:0]
		for _, atom := range atoms {
			if text, ok := atom.(*ast.Text); ok && text.Value == "" {
				continue
			}
			kept = append(kept, atom)
		}
		atoms = kept
	}
	switch {
	case len(atoms) == 0:
		return &ast.Text{}
	case len(atoms) == 1 && !glob && !brace:
		return atoms[0]
	}
	return &ast.Compound{Atoms: atoms, BraceExpansionHint: brace, GlobHint: glob}
}

// assignment returns the assignment a word spells, or nil if the word is
// not of the form NAME=value with an unquoted NAME=.
func (p *Parser) assignment(frags []token.Token) *ast.Assignment {
	if len(frags) == 0 {
		return nil
	}
	first := frags[0]
	if first.Type != token.TEXT || first.Quoted {
		return nil
	}
	eq := strings.IndexByte(first.Literal, '=')
	if eq < 1 || !lexer.IsName(first.Literal[:eq]) {
		return nil
	}
	label := first.Literal[:eq]
	var value []token.Token
	if rest := first.Literal[eq+1:]; rest != "" {
		valueTok := first
		valueTok.Literal = rest
		valueTok.StartPosition = first.StartPosition.Advance(eq + 1)
		valueTok.ValuePos = valueTok.StartPosition
		value = append(value, valueTok)
	}
	value = append(value, frags[1:]...)
	atom := p.buildAtom(value)
	if atom == nil {
		return nil
	}
	return &ast.Assignment{LabelPos: first.StartPosition, Label: label, Value: atom}
}

// parseSubst parses the body of a command substitution with a child parser
// over the same source text, so positions inside it stay absolute.
func (p *Parser) parseSubst(tok token.Token) *ast.CmdSubst {
	if !p.enter(tok) {
		return nil
	}
	defer p.leave()

	end := tok.ValuePos.Char + len(tok.Literal)
	l := lexer.NewRange(p.l.Input(), tok.ValuePos, end,
		lexer.WithFilename(p.filename),
		lexer.WithHostValues(p.hostCount),
		lexer.WithMaxDepth(p.maxDepth-p.depth))
	child := New(l,
		WithFilename(p.filename),
		WithHostValues(p.hostCount),
		WithMaxDepth(p.maxDepth),
		WithLogger(p.logger))
	child.depth = p.depth
	child.lastCmdWord = p.lastCmdWord

	p.logger.Trace().
		Int("depth", p.depth).
		Int("offset", tok.ValuePos.Char).
		Bool("quoted", tok.Quoted).
		Msg("parsing command substitution")

	script := child.parseScript()
	if child.err != nil {
		p.setError(child.err)
		return nil
	}
	return &ast.CmdSubst{
		Open:   tok.StartPosition,
		Close:  tok.EndPosition,
		Script: script,
		Quoted: tok.Quoted,
	}
}
