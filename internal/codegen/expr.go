package codegen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"lowc/internal/ast"
)

func (g *generator) lowerExpr(cx fnCtx, id ast.ExprID) (value.Value, error) {
	e := g.prog.Exprs.Get(id)
	if e == nil {
		return nil, newError(UnsupportedOperation, "", ast.Pos{}, "missing expression %d", id)
	}
	switch e.Kind {
	case ast.ExprInt:
		lit, _ := g.prog.Exprs.Int(id)
		return constant.NewInt(types.I64, lit.Value), nil
	case ast.ExprReal:
		lit, _ := g.prog.Exprs.Real(id)
		return constant.NewFloat(types.Double, lit.Value), nil
	case ast.ExprString:
		lit, _ := g.prog.Exprs.StringLit(id)
		return constant.NewCharArrayFromString(lit.Value + "\x00"), nil
	case ast.ExprIdent:
		ident, _ := g.prog.Exprs.Ident(id)
		return g.loadName(cx, ident.Name, e.Pos)
	case ast.ExprVar:
		ref, _ := g.prog.Exprs.Var(id)
		switch ref.Kind {
		case ast.VarScalar:
			return g.loadName(cx, ref.Name, e.Pos)
		case ast.VarArray:
			s, err := g.syms.Resolve(ref.Name, cx.locals, e.Pos)
			if err != nil {
				return nil, err
			}
			addr, err := g.elementAddr(cx, s, ref.Index, e.Pos)
			if err != nil {
				return nil, err
			}
			return cx.block.NewLoad(s.Elem, addr), nil
		}
		return nil, newError(UndefinedVariableKind, ref.Name, e.Pos, "kind %d", ref.Kind)
	case ast.ExprCall:
		return g.lowerCall(cx, id, e.Pos)
	case ast.ExprBinary:
		return g.lowerBinary(cx, id, e.Pos)
	case ast.ExprUnary:
		return g.lowerUnary(cx, id, e.Pos)
	}
	return nil, newError(UnsupportedOperation, "", e.Pos, "expression kind %s", e.Kind)
}

// loadName reads a scalar, or yields the address of the first element when
// name is an array.
func (g *generator) loadName(cx fnCtx, name string, pos ast.Pos) (value.Value, error) {
	s, err := g.syms.Resolve(name, cx.locals, pos)
	if err != nil {
		return nil, err
	}
	if s.Kind == ast.VarArray {
		return g.decay(cx, s), nil
	}
	return cx.block.NewLoad(s.Elem, s.Ptr), nil
}

func (g *generator) decay(cx fnCtx, s *Storage) value.Value {
	if s.Indirect() {
		return cx.block.NewLoad(s.CellType(), s.Ptr)
	}
	zero := constant.NewInt(types.I64, 0)
	return cx.block.NewGetElementPtr(s.CellType(), s.Ptr, zero, zero)
}

// elementAddr computes the address of s[index].
func (g *generator) elementAddr(cx fnCtx, s *Storage, index ast.ExprID, pos ast.Pos) (value.Value, error) {
	if s.Kind != ast.VarArray {
		return nil, newError(UnsupportedOperation, s.Name, pos, "indexing a scalar")
	}
	idx, err := g.lowerExpr(cx, index)
	if err != nil {
		return nil, err
	}
	if !isInt(idx.Type()) {
		return nil, newError(NonIntegerIndex, s.Name, pos, "index has type %s", idx.Type())
	}
	if isBool(idx.Type()) {
		idx = cx.block.NewZExt(idx, types.I64)
	}
	if s.Indirect() {
		base := cx.block.NewLoad(s.CellType(), s.Ptr)
		return cx.block.NewGetElementPtr(s.Elem, base, idx), nil
	}
	return cx.block.NewGetElementPtr(s.CellType(), s.Ptr, constant.NewInt(types.I64, 0), idx), nil
}

func (g *generator) lowerCall(cx fnCtx, id ast.ExprID, pos ast.Pos) (value.Value, error) {
	call, _ := g.prog.Exprs.Call(id)
	fn, ok := g.funcs[call.Callee]
	if !ok && call.Callee == runtimePrintf {
		fn, ok = g.printf, true
	}
	if !ok {
		return nil, newError(UnknownFunction, call.Callee, pos, "")
	}
	args := make([]value.Value, 0, len(call.Args))
	for i, a := range call.Args {
		v, err := g.lowerExpr(cx, a)
		if err != nil {
			return nil, err
		}
		if i < len(fn.Params) {
			if v, err = g.convert(cx, v, fn.Params[i].Typ, call.Callee, pos); err != nil {
				return nil, err
			}
		} else {
			v = g.vararg(cx, v)
		}
		args = append(args, v)
	}
	return cx.block.NewCall(fn, args...), nil
}

// vararg applies the default promotions for a variadic argument: strings
// are passed by address and booleans as i64.
func (g *generator) vararg(cx fnCtx, v value.Value) value.Value {
	if arr, ok := v.(*constant.CharArray); ok {
		return g.stringPtr(arr)
	}
	if isBool(v.Type()) {
		return cx.block.NewZExt(v, types.I64)
	}
	return v
}
