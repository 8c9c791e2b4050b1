package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"lowc/internal/ast"
)

// lowerIf emits then, else and merge blocks. Each arm falls through to merge
// unless it already ended in a terminator.
func (g *generator) lowerIf(cx fnCtx, id ast.StmtID) (fnCtx, error) {
	data, _ := g.prog.Stmts.If(id)
	cond, err := g.condition(cx, data.Cond)
	if err != nil {
		return cx, err
	}
	bs := cx.st.blocks("if.then", "if.else", "if.merge")
	then, els, merge := bs[0], bs[1], bs[2]
	cx.block.NewCondBr(cond, then, els)

	for _, arm := range []struct {
		block *ir.Block
		body  []ast.StmtID
	}{{then, data.Then}, {els, data.Else}} {
		end, err := g.lowerStmts(cx.at(arm.block), arm.body)
		if err != nil {
			return cx, err
		}
		if !end.terminated() {
			end.block.NewBr(merge)
		}
	}
	return cx.at(merge), nil
}

// lowerFor emits an execute-then-test loop: the body runs once before the
// variable is stepped and compared with the bound.
func (g *generator) lowerFor(cx fnCtx, id ast.StmtID, pos ast.Pos) (fnCtx, error) {
	data, _ := g.prog.Stmts.For(id)
	addr, s, err := g.address(cx, data.Var)
	if err != nil {
		return cx, err
	}
	if ref, _ := g.prog.Exprs.Var(data.Var); ref.Kind == ast.VarScalar && s.Kind == ast.VarArray {
		return cx, newError(UnsupportedOperation, s.Name, pos, "array used as loop variable")
	}
	init, err := g.lowerExpr(cx, data.Init)
	if err != nil {
		return cx, err
	}
	start, err := g.convert(cx, init, s.Elem, s.Name, pos)
	if err != nil {
		return cx, err
	}
	cx.block.NewStore(start, addr)

	bs := cx.st.blocks("for.loop", "for.after")
	loop, after := bs[0], bs[1]
	cx.block.NewBr(loop)

	end, err := g.lowerStmts(cx.at(loop), data.Body)
	if err != nil {
		return cx, err
	}
	if !end.terminated() {
		// The element address is recomputed: the body may change the index.
		if addr, _, err = g.address(end, data.Var); err != nil {
			return cx, err
		}
		cur := end.block.NewLoad(s.Elem, addr)
		step, err := g.stepValue(end, data.Step, s.Elem, s.Name, pos)
		if err != nil {
			return cx, err
		}
		var next value.Value
		if isReal(s.Elem) {
			next = end.block.NewFAdd(cur, step)
		} else {
			next = end.block.NewAdd(cur, step)
		}
		end.block.NewStore(next, addr)

		bound, err := g.lowerExpr(end, data.Until)
		if err != nil {
			return cx, err
		}
		if !numeric(bound.Type()) {
			return cx, newError(UnsupportedOperation, s.Name, pos, "loop bound of type %s", bound.Type())
		}
		l, r := g.unify(end, next, bound, true)
		var again value.Value
		if isReal(l.Type()) {
			again = end.block.NewFCmp(enum.FPredOLE, l, r)
		} else {
			again = end.block.NewICmp(enum.IPredSLE, l, r)
		}
		end.block.NewCondBr(again, loop, after)
	}
	return cx.at(after), nil
}

func (g *generator) stepValue(cx fnCtx, step ast.ExprID, elem types.Type, name string, pos ast.Pos) (value.Value, error) {
	if !step.IsValid() {
		if isReal(elem) {
			return constant.NewFloat(types.Double, 1), nil
		}
		return constant.NewInt(types.I64, 1), nil
	}
	v, err := g.lowerExpr(cx, step)
	if err != nil {
		return nil, err
	}
	return g.convert(cx, v, elem, name, pos)
}

func (g *generator) lowerWhile(cx fnCtx, id ast.StmtID) (fnCtx, error) {
	data, _ := g.prog.Stmts.While(id)
	cond, err := g.condition(cx, data.Cond)
	if err != nil {
		return cx, err
	}
	bs := cx.st.blocks("while.loop", "while.after")
	loop, after := bs[0], bs[1]
	cx.block.NewCondBr(cond, loop, after)

	end, err := g.lowerStmts(cx.at(loop), data.Body)
	if err != nil {
		return cx, err
	}
	if !end.terminated() {
		again := cond
		if g.opts.While == WhileReevaluate {
			if again, err = g.condition(end, data.Cond); err != nil {
				return cx, err
			}
		}
		end.block.NewCondBr(again, loop, after)
	}
	return cx.at(after), nil
}
