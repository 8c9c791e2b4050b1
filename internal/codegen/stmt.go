package codegen

import (
	"github.com/llir/llvm/ir/value"

	"lowc/internal/ast"
)

// lowerStmts lowers ids in order. Statements after the block has been
// terminated are unreachable and skipped.
func (g *generator) lowerStmts(cx fnCtx, ids []ast.StmtID) (fnCtx, error) {
	for _, id := range ids {
		if cx.terminated() {
			break
		}
		var err error
		if cx, err = g.lowerStmt(cx, id); err != nil {
			return cx, err
		}
	}
	return cx, nil
}

func (g *generator) lowerStmt(cx fnCtx, id ast.StmtID) (fnCtx, error) {
	st := g.prog.Stmts.Get(id)
	if st == nil {
		return cx, newError(UnsupportedOperation, "", ast.Pos{}, "missing statement %d", id)
	}
	switch st.Kind {
	case ast.StmtVarDecl:
		decl, _ := g.prog.Stmts.VarDecl(id)
		return cx, g.declareLocal(cx, decl, st.Pos)
	case ast.StmtVarGroup:
		group, _ := g.prog.Stmts.VarGroup(id)
		return g.lowerStmts(cx, group.Decls)
	case ast.StmtAssign:
		data, _ := g.prog.Stmts.Assign(id)
		return cx, g.lowerAssign(cx, data, st.Pos)
	case ast.StmtExpr:
		data, _ := g.prog.Stmts.ExprStmt(id)
		_, err := g.lowerExpr(cx, data.Expr)
		return cx, err
	case ast.StmtFunc:
		fn, _ := g.prog.Stmts.Func(id)
		return cx, newError(UnsupportedOperation, fn.Name, st.Pos, "nested function declaration")
	case ast.StmtIf:
		return g.lowerIf(cx, id)
	case ast.StmtFor:
		return g.lowerFor(cx, id, st.Pos)
	case ast.StmtWhile:
		return g.lowerWhile(cx, id)
	case ast.StmtPrint:
		data, _ := g.prog.Stmts.Print(id)
		return cx, g.lowerPrint(cx, data)
	case ast.StmtRead:
		// Input is not supported by the runtime contract; read lowers to nothing.
		return cx, nil
	case ast.StmtReturn:
		data, _ := g.prog.Stmts.Return(id)
		return cx, g.lowerReturn(cx, data)
	}
	return cx, newError(UnsupportedOperation, "", st.Pos, "statement kind %s", st.Kind)
}

func (g *generator) declareLocal(cx fnCtx, decl *ast.VarDeclData, pos ast.Pos) error {
	s, err := storageFor(decl, pos)
	if err != nil {
		return err
	}
	s.Ptr = cx.st.hoist(s.CellType(), decl.Name+".addr")
	cx.locals.Bind(s)
	return nil
}

// address returns the cell written by an assignment to ref.
func (g *generator) address(cx fnCtx, ref ast.ExprID) (value.Value, *Storage, error) {
	e := g.prog.Exprs.Get(ref)
	data, ok := g.prog.Exprs.Var(ref)
	if !ok {
		return nil, nil, newError(UnsupportedOperation, "", ast.Pos{}, "assignment target %d is not a variable reference", ref)
	}
	s, err := g.syms.Resolve(data.Name, cx.locals, e.Pos)
	if err != nil {
		return nil, nil, err
	}
	switch data.Kind {
	case ast.VarScalar:
		return s.Ptr, s, nil
	case ast.VarArray:
		addr, err := g.elementAddr(cx, s, data.Index, e.Pos)
		return addr, s, err
	}
	return nil, nil, newError(UndefinedVariableKind, data.Name, e.Pos, "kind %d", data.Kind)
}

func (g *generator) lowerAssign(cx fnCtx, data *ast.AssignData, pos ast.Pos) error {
	ref, _ := g.prog.Exprs.Var(data.Target)
	addr, s, err := g.address(cx, data.Target)
	if err != nil {
		return err
	}
	v, err := g.lowerExpr(cx, data.Value)
	if err != nil {
		return err
	}

	// A whole array may only be rebound when its cell is a pointer.
	if ref.Kind == ast.VarScalar && s.Kind == ast.VarArray {
		if !s.Indirect() {
			return newError(UnsupportedOperation, s.Name, pos, "assignment to a fixed-size array")
		}
		c, err := g.convert(cx, v, s.CellType(), s.Name, pos)
		if err != nil {
			return err
		}
		cx.block.NewStore(c, s.Ptr)
		return nil
	}
	c, err := g.convert(cx, v, s.Elem, s.Name, pos)
	if err != nil {
		return err
	}
	cx.block.NewStore(c, addr)
	return nil
}

func (g *generator) lowerPrint(cx fnCtx, data *ast.PrintData) error {
	for _, arg := range data.Args {
		v, err := g.lowerExpr(cx, arg)
		if err != nil {
			return err
		}
		t := v.Type()
		var tmpl string
		switch {
		case isInt(t):
			tmpl = fmtInt
			if isBool(t) {
				v = cx.block.NewZExt(v, i64)
			}
		case isReal(t):
			tmpl = fmtReal
		default:
			tmpl = fmtStr
			v = g.coerce(cx, v, i8ptr)
		}
		cx.block.NewCall(g.printf, g.format(tmpl), v)
	}
	return nil
}

func (g *generator) lowerReturn(cx fnCtx, data *ast.ReturnData) error {
	if !data.Value.IsValid() {
		cx.block.NewRet(zeroValue(cx.st.ret))
		return nil
	}
	v, err := g.lowerExpr(cx, data.Value)
	if err != nil {
		return err
	}
	pos := g.prog.Exprs.Get(data.Value).Pos
	c, err := g.convert(cx, v, cx.st.ret, "return", pos)
	if err != nil {
		return err
	}
	cx.block.NewRet(c)
	return nil
}
