package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The JSON encoding uses snake_case tagged unions (name_and_args,
// redirect_file, jsbuf and so on); codec/schema.json describes it.

type scriptJSON struct {
	Stmts []stmtJSON `json:"stmts"`
}

type stmtJSON struct {
	Exprs []exprJSON `json:"exprs"`
}

type exprJSON struct {
	Cmd      *cmdJSON          `json:"cmd,omitempty"`
	Pipeline *pipelineJSON     `json:"pipeline,omitempty"`
	Binary   *binaryJSON       `json:"binary,omitempty"`
	Assign   *[]assignmentJSON `json:"assign,omitempty"`
	If       *ifJSON           `json:"if,omitempty"`
	Async    *exprJSON         `json:"async,omitempty"`
}

type cmdJSON struct {
	Assigns      []assignmentJSON  `json:"assigns"`
	NameAndArgs  []atomJSON        `json:"name_and_args"`
	Redirect     redirectJSON      `json:"redirect"`
	RedirectFile *redirectFileJSON `json:"redirect_file"`
}

type redirectJSON struct {
	Stdin        bool `json:"stdin"`
	Stdout       bool `json:"stdout"`
	Stderr       bool `json:"stderr"`
	Append       bool `json:"append"`
	DuplicateOut bool `json:"duplicate_out"`
	Unused       int  `json:"__unused"`
}

type redirectFileJSON struct {
	Atom  *atomJSON  `json:"atom,omitempty"`
	JSBuf *jsbufJSON `json:"jsbuf,omitempty"`
}

type jsbufJSON struct {
	Idx int `json:"idx"`
}

type pipelineJSON struct {
	Items []exprJSON `json:"items"`
}

type binaryJSON struct {
	Op    string    `json:"op"`
	Left  *exprJSON `json:"left"`
	Right *exprJSON `json:"right"`
}

type ifJSON struct {
	Cond      []stmtJSON   `json:"cond"`
	Then      []stmtJSON   `json:"then"`
	ElseParts [][]stmtJSON `json:"else_parts"`
}

type assignmentJSON struct {
	Label string   `json:"label"`
	Value atomJSON `json:"value"`
}

type atomJSON struct {
	Simple   *simpleJSON   `json:"simple,omitempty"`
	Compound *compoundJSON `json:"compound,omitempty"`
}

type simpleJSON struct {
	Text     *string       `json:"Text,omitempty"`
	Var      *string       `json:"Var,omitempty"`
	CmdSubst *cmdSubstJSON `json:"cmd_subst,omitempty"`
}

type cmdSubstJSON struct {
	Script scriptJSON `json:"script"`
	Quoted bool       `json:"quoted"`
}

type compoundJSON struct {
	Atoms              []simpleJSON `json:"atoms"`
	BraceExpansionHint bool         `json:"brace_expansion_hint"`
	GlobHint           bool         `json:"glob_hint"`
}

// MarshalJSON encodes the script as a JSON tree.
func (s *Script) MarshalJSON() ([]byte, error) {
	doc, err := encodeScript(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes a script from a JSON tree. Positions
// are not part of the encoding and are left unset.
func (s *Script) UnmarshalJSON(data []byte) error {
	var doc scriptJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	decoded, err := decodeScript(doc)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

func encodeScript(s *Script) (scriptJSON, error) {
	if s == nil {
		return scriptJSON{Stmts: []stmtJSON{}}, nil
	}
	stmts, err := encodeStmts(s.Stmts)
	return scriptJSON{Stmts: stmts}, err
}

func encodeStmts(stmts []*Stmt) ([]stmtJSON, error) {
	out := make([]stmtJSON, 0, len(stmts))
	for _, stmt := range stmts {
		exprs := make([]exprJSON, 0, len(stmt.Exprs))
		for _, expr := range stmt.Exprs {
			e, err := encodeExpr(expr)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, *e)
		}
		out = append(out, stmtJSON{Exprs: exprs})
	}
	return out, nil
}

func encodeExpr(expr Expr) (*exprJSON, error) {
	switch x := expr.(type) {
	case *Cmd:
		assigns, err := encodeAssignments(x.Assigns)
		if err != nil {
			return nil, err
		}
		args := make([]atomJSON, 0, len(x.NameAndArgs))
		for _, atom := range x.NameAndArgs {
			a, err := encodeAtom(atom)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		cmd := &cmdJSON{
			Assigns:     assigns,
			NameAndArgs: args,
			Redirect: redirectJSON{
				Stdin:        x.Redirect.Has(Stdin),
				Stdout:       x.Redirect.Has(Stdout),
				Stderr:       x.Redirect.Has(Stderr),
				Append:       x.Redirect.Has(Append),
				DuplicateOut: x.Redirect.Has(DuplicateOut),
			},
		}
		switch t := x.RedirectFile.(type) {
		case nil:
		case *FileTarget:
			a, err := encodeAtom(t.Atom)
			if err != nil {
				return nil, err
			}
			cmd.RedirectFile = &redirectFileJSON{Atom: &a}
		case *HostTarget:
			cmd.RedirectFile = &redirectFileJSON{JSBuf: &jsbufJSON{Idx: t.Idx}}
		default:
			return nil, fmt.Errorf("unknown redirect target type %T", t)
		}
		return &exprJSON{Cmd: cmd}, nil
	case *Pipeline:
		items := make([]exprJSON, 0, len(x.Items))
		for _, item := range x.Items {
			e, err := encodeExpr(item)
			if err != nil {
				return nil, err
			}
			items = append(items, *e)
		}
		return &exprJSON{Pipeline: &pipelineJSON{Items: items}}, nil
	case *Binary:
		left, err := encodeExpr(x.X)
		if err != nil {
			return nil, err
		}
		right, err := encodeExpr(x.Y)
		if err != nil {
			return nil, err
		}
		return &exprJSON{Binary: &binaryJSON{Op: x.Op.String(), Left: left, Right: right}}, nil
	case *Assign:
		assigns, err := encodeAssignments(x.Assigns)
		if err != nil {
			return nil, err
		}
		return &exprJSON{Assign: &assigns}, nil
	case *If:
		cond, err := encodeStmts(x.Cond)
		if err != nil {
			return nil, err
		}
		then, err := encodeStmts(x.Then)
		if err != nil {
			return nil, err
		}
		parts := make([][]stmtJSON, 0, len(x.ElseParts))
		for _, part := range x.ElseParts {
			p, err := encodeStmts(part)
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		}
		return &exprJSON{If: &ifJSON{Cond: cond, Then: then, ElseParts: parts}}, nil
	case *Async:
		inner, err := encodeExpr(x.X)
		if err != nil {
			return nil, err
		}
		return &exprJSON{Async: inner}, nil
	}
	return nil, fmt.Errorf("unknown expression type %T", expr)
}

func encodeAssignments(assigns []*Assignment) ([]assignmentJSON, error) {
	out := make([]assignmentJSON, 0, len(assigns))
	for _, a := range assigns {
		var value Atom = a.Value
		if value == nil {
			value = &Text{}
		}
		v, err := encodeAtom(value)
		if err != nil {
			return nil, err
		}
		out = append(out, assignmentJSON{Label: a.Label, Value: v})
	}
	return out, nil
}

func encodeAtom(atom Atom) (atomJSON, error) {
	switch a := atom.(type) {
	case *Compound:
		atoms := make([]simpleJSON, 0, len(a.Atoms))
		for _, sa := range a.Atoms {
			s, err := encodeSimple(sa)
			if err != nil {
				return atomJSON{}, err
			}
			atoms = append(atoms, s)
		}
		return atomJSON{Compound: &compoundJSON{
			Atoms:              atoms,
			BraceExpansionHint: a.BraceExpansionHint,
			GlobHint:           a.GlobHint,
		}}, nil
	case SimpleAtom:
		s, err := encodeSimple(a)
		if err != nil {
			return atomJSON{}, err
		}
		return atomJSON{Simple: &s}, nil
	}
	return atomJSON{}, fmt.Errorf("unknown atom type %T", atom)
}

func encodeSimple(atom SimpleAtom) (simpleJSON, error) {
	switch a := atom.(type) {
	case *Text:
		v := a.Value
		return simpleJSON{Text: &v}, nil
	case *Var:
		v := a.Name
		return simpleJSON{Var: &v}, nil
	case *CmdSubst:
		script, err := encodeScript(a.Script)
		if err != nil {
			return simpleJSON{}, err
		}
		return simpleJSON{CmdSubst: &cmdSubstJSON{Script: script, Quoted: a.Quoted}}, nil
	}
	return simpleJSON{}, fmt.Errorf("unknown simple atom type %T", atom)
}

func decodeScript(doc scriptJSON) (*Script, error) {
	stmts, err := decodeStmts(doc.Stmts)
	if err != nil {
		return nil, err
	}
	return &Script{Stmts: stmts}, nil
}

func decodeStmts(docs []stmtJSON) ([]*Stmt, error) {
	stmts := make([]*Stmt, 0, len(docs))
	for _, doc := range docs {
		exprs := make([]Expr, 0, len(doc.Exprs))
		for i := range doc.Exprs {
			expr, err := decodeExpr(&doc.Exprs[i])
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
		}
		stmts = append(stmts, &Stmt{Exprs: exprs})
	}
	return stmts, nil
}

func decodeExpr(doc *exprJSON) (Expr, error) {
	if doc == nil {
		return nil, fmt.Errorf("missing expression")
	}
	switch {
	case doc.Cmd != nil:
		cmd := &Cmd{}
		assigns, err := decodeAssignments(doc.Cmd.Assigns)
		if err != nil {
			return nil, err
		}
		cmd.Assigns = assigns
		for _, a := range doc.Cmd.NameAndArgs {
			atom, err := decodeAtom(a)
			if err != nil {
				return nil, err
			}
			cmd.NameAndArgs = append(cmd.NameAndArgs, atom)
		}
		r := doc.Cmd.Redirect
		for _, bit := range []struct {
			set  bool
			flag RedirectFlags
		}{
			{r.Stdin, Stdin},
			{r.Stdout, Stdout},
			{r.Stderr, Stderr},
			{r.Append, Append},
			{r.DuplicateOut, DuplicateOut},
		} {
			if bit.set {
				cmd.Redirect |= bit.flag
			}
		}
		if rf := doc.Cmd.RedirectFile; rf != nil {
			switch {
			case rf.Atom != nil:
				atom, err := decodeAtom(*rf.Atom)
				if err != nil {
					return nil, err
				}
				cmd.RedirectFile = &FileTarget{Atom: atom}
			case rf.JSBuf != nil:
				cmd.RedirectFile = &HostTarget{Idx: rf.JSBuf.Idx}
			default:
				return nil, fmt.Errorf("empty redirect target")
			}
		}
		return cmd, nil
	case doc.Pipeline != nil:
		p := &Pipeline{}
		for i := range doc.Pipeline.Items {
			item, err := decodeExpr(&doc.Pipeline.Items[i])
			if err != nil {
				return nil, err
			}
			p.Items = append(p.Items, item)
		}
		return p, nil
	case doc.Binary != nil:
		var op BinaryOp
		switch doc.Binary.Op {
		case "And":
			op = And
		case "Or":
			op = Or
		default:
			return nil, fmt.Errorf("unknown binary operator %q", doc.Binary.Op)
		}
		x, err := decodeExpr(doc.Binary.Left)
		if err != nil {
			return nil, err
		}
		y, err := decodeExpr(doc.Binary.Right)
		if err != nil {
			return nil, err
		}
		return &Binary{X: x, Op: op, Y: y}, nil
	case doc.Assign != nil:
		assigns, err := decodeAssignments(*doc.Assign)
		if err != nil {
			return nil, err
		}
		return &Assign{Assigns: assigns}, nil
	case doc.If != nil:
		cond, err := decodeStmts(doc.If.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeStmts(doc.If.Then)
		if err != nil {
			return nil, err
		}
		clause := &If{Cond: cond, Then: then}
		for _, part := range doc.If.ElseParts {
			stmts, err := decodeStmts(part)
			if err != nil {
				return nil, err
			}
			clause.ElseParts = append(clause.ElseParts, stmts)
		}
		return clause, nil
	case doc.Async != nil:
		x, err := decodeExpr(doc.Async)
		if err != nil {
			return nil, err
		}
		return &Async{X: x}, nil
	}
	return nil, fmt.Errorf("expression has no recognized variant")
}

func decodeAssignments(docs []assignmentJSON) ([]*Assignment, error) {
	out := make([]*Assignment, 0, len(docs))
	for _, doc := range docs {
		value, err := decodeAtom(doc.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, &Assignment{Label: doc.Label, Value: value})
	}
	return out, nil
}

func decodeAtom(doc atomJSON) (Atom, error) {
	switch {
	case doc.Simple != nil:
		return decodeSimple(*doc.Simple)
	case doc.Compound != nil:
		c := &Compound{
			BraceExpansionHint: doc.Compound.BraceExpansionHint,
			GlobHint:           doc.Compound.GlobHint,
		}
		for _, s := range doc.Compound.Atoms {
			atom, err := decodeSimple(s)
			if err != nil {
				return nil, err
			}
			c.Atoms = append(c.Atoms, atom)
		}
		return c, nil
	}
	return nil, fmt.Errorf("atom has no recognized variant")
}

func decodeSimple(doc simpleJSON) (SimpleAtom, error) {
	switch {
	case doc.Text != nil:
		return &Text{Value: *doc.Text}, nil
	case doc.Var != nil:
		return &Var{Name: *doc.Var}, nil
	case doc.CmdSubst != nil:
		script, err := decodeScript(doc.CmdSubst.Script)
		if err != nil {
			return nil, err
		}
		return &CmdSubst{Script: script, Quoted: doc.CmdSubst.Quoted}, nil
	}
	return nil, fmt.Errorf("simple atom has no recognized variant")
}
