package ast

import (
	"errors"
	"fmt"
)

// Validate checks that the program is a tree: every referenced ID exists and
// no node is reachable from more than one parent. Nodes allocated but never
// referenced are allowed.
func (p *Program) Validate() error {
	v := validator{
		p:     p,
		exprs: make(map[ExprID]struct{}, p.Exprs.Arena.Len()),
		stmts: make(map[StmtID]struct{}, p.Stmts.Arena.Len()),
	}
	for _, id := range p.Globals {
		if st := p.Stmts.Get(id); st != nil && st.Kind != StmtVarDecl && st.Kind != StmtVarGroup {
			v.fail(st.Pos, "global %d is a %s, want a declaration", id, st.Kind)
		}
		v.stmt(id)
	}
	for _, id := range p.Funcs {
		if st := p.Stmts.Get(id); st != nil && st.Kind != StmtFunc {
			v.fail(st.Pos, "function %d is a %s", id, st.Kind)
		}
		v.stmt(id)
	}
	return errors.Join(v.errs...)
}

type validator struct {
	p     *Program
	exprs map[ExprID]struct{}
	stmts map[StmtID]struct{}
	errs  []error
}

func (v *validator) fail(pos Pos, format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("ast: %s: %s", pos, fmt.Sprintf(format, args...)))
}

func (v *validator) optExpr(id ExprID) {
	if id.IsValid() {
		v.expr(id)
	}
}

func (v *validator) expr(id ExprID) {
	e := v.p.Exprs.Get(id)
	if e == nil {
		v.fail(Pos{}, "dangling expression %d", id)
		return
	}
	if _, seen := v.exprs[id]; seen {
		v.fail(e.Pos, "expression %d has more than one parent", id)
		return
	}
	v.exprs[id] = struct{}{}

	switch e.Kind {
	case ExprInt, ExprReal, ExprString, ExprIdent:
	case ExprVar:
		data, _ := v.p.Exprs.Var(id)
		if data.Kind == VarArray {
			if !data.Index.IsValid() {
				v.fail(e.Pos, "array reference %q has no index", data.Name)
				return
			}
			v.expr(data.Index)
		}
	case ExprCall:
		data, _ := v.p.Exprs.Call(id)
		for _, arg := range data.Args {
			v.expr(arg)
		}
	case ExprBinary:
		data, _ := v.p.Exprs.Binary(id)
		v.expr(data.Left)
		v.expr(data.Right)
	case ExprUnary:
		data, _ := v.p.Exprs.Unary(id)
		v.expr(data.Operand)
	default:
		v.fail(e.Pos, "unknown expression kind %d", e.Kind)
	}
}

func (v *validator) stmtList(ids []StmtID) {
	for _, id := range ids {
		v.stmt(id)
	}
}

func (v *validator) stmt(id StmtID) {
	s := v.p.Stmts.Get(id)
	if s == nil {
		v.fail(Pos{}, "dangling statement %d", id)
		return
	}
	if _, seen := v.stmts[id]; seen {
		v.fail(s.Pos, "statement %d has more than one parent", id)
		return
	}
	v.stmts[id] = struct{}{}

	switch s.Kind {
	case StmtVarDecl:
	case StmtVarGroup:
		data, _ := v.p.Stmts.VarGroup(id)
		v.stmtList(data.Decls)
	case StmtAssign:
		data, _ := v.p.Stmts.Assign(id)
		v.target(s.Pos, data.Target)
		v.expr(data.Value)
	case StmtExpr:
		data, _ := v.p.Stmts.ExprStmt(id)
		v.expr(data.Expr)
	case StmtFunc:
		data, _ := v.p.Stmts.Func(id)
		for _, param := range data.Params {
			if st := v.p.Stmts.Get(param); st != nil && st.Kind != StmtVarDecl {
				v.fail(st.Pos, "parameter of %q is a %s", data.Name, st.Kind)
			}
		}
		v.stmtList(data.Params)
		v.stmtList(data.Body)
	case StmtIf:
		data, _ := v.p.Stmts.If(id)
		v.expr(data.Cond)
		v.stmtList(data.Then)
		v.stmtList(data.Else)
	case StmtFor:
		data, _ := v.p.Stmts.For(id)
		v.target(s.Pos, data.Var)
		v.expr(data.Init)
		v.expr(data.Until)
		v.optExpr(data.Step)
		v.stmtList(data.Body)
	case StmtWhile:
		data, _ := v.p.Stmts.While(id)
		v.expr(data.Cond)
		v.stmtList(data.Body)
	case StmtPrint:
		data, _ := v.p.Stmts.Print(id)
		for _, arg := range data.Args {
			v.expr(arg)
		}
	case StmtRead:
		data, _ := v.p.Stmts.Read(id)
		for _, t := range data.Targets {
			v.target(s.Pos, t)
		}
	case StmtReturn:
		data, _ := v.p.Stmts.Return(id)
		v.optExpr(data.Value)
	default:
		v.fail(s.Pos, "unknown statement kind %d", s.Kind)
	}
}

func (v *validator) target(pos Pos, id ExprID) {
	if e := v.p.Exprs.Get(id); e != nil && e.Kind != ExprVar {
		v.fail(pos, "assignment target is a %s, want a variable reference", e.Kind)
	}
	v.expr(id)
}
