package codegen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"lowc/internal/ast"
)

var (
	intPreds = map[ast.BinaryOp]enum.IPred{
		ast.BinaryEq: enum.IPredEQ,
		ast.BinaryNe: enum.IPredNE,
		ast.BinaryLt: enum.IPredSLT,
		ast.BinaryLe: enum.IPredSLE,
		ast.BinaryGt: enum.IPredSGT,
		ast.BinaryGe: enum.IPredSGE,
	}
	realPreds = map[ast.BinaryOp]enum.FPred{
		ast.BinaryEq: enum.FPredOEQ,
		ast.BinaryNe: enum.FPredONE,
		ast.BinaryLt: enum.FPredOLT,
		ast.BinaryLe: enum.FPredOLE,
		ast.BinaryGt: enum.FPredOGT,
		ast.BinaryGe: enum.FPredOGE,
	}
)

// coerce converts v for storage into, or passing as, a value of type to.
// Pairs without a defined conversion are returned unchanged.
func (g *generator) coerce(cx fnCtx, v value.Value, to types.Type) value.Value {
	from := v.Type()
	if from.Equal(to) {
		return v
	}
	switch {
	case isInt(to) && !isBool(to) && isBool(from):
		return cx.block.NewZExt(v, to)
	case isBool(to) && (isInt(from) || isReal(from)):
		return g.truth(cx, v)
	case isReal(to) && isBool(from):
		return cx.block.NewUIToFP(v, to)
	case isReal(to) && isInt(from):
		return cx.block.NewSIToFP(v, to)
	case isInt(to) && isReal(from):
		return cx.block.NewFPToSI(v, to)
	case isInt(to) && isInt(from) && !isBool(to):
		if from.(*types.IntType).BitSize < to.(*types.IntType).BitSize {
			return cx.block.NewSExt(v, to)
		}
		return cx.block.NewTrunc(v, to)
	}
	if arr, ok := v.(*constant.CharArray); ok && types.IsPointer(to) {
		return g.stringPtr(arr)
	}
	return v
}

// convert is coerce for values that end up in a typed slot: a store, an
// argument or a return. A value that cannot take the slot's type is an
// UnsupportedOperation attributed to name.
func (g *generator) convert(cx fnCtx, v value.Value, to types.Type, name string, pos ast.Pos) (value.Value, error) {
	c := g.coerce(cx, v, to)
	if c == nil || !c.Type().Equal(to) {
		return nil, newError(UnsupportedOperation, name, pos, "cannot use %s as %s", v.Type(), to)
	}
	return c, nil
}

// truth converts a numeric value to i1 by comparing it with zero.
func (g *generator) truth(cx fnCtx, v value.Value) value.Value {
	t := v.Type()
	switch {
	case isBool(t):
		return v
	case isInt(t):
		return cx.block.NewICmp(enum.IPredNE, v, constant.NewInt(t.(*types.IntType), 0))
	case isReal(t):
		return cx.block.NewFCmp(enum.FPredUNE, v, constant.NewFloat(t.(*types.FloatType), 0))
	}
	return nil
}

func (g *generator) condition(cx fnCtx, id ast.ExprID) (value.Value, error) {
	v, err := g.lowerExpr(cx, id)
	if err != nil {
		return nil, err
	}
	c := g.truth(cx, v)
	if c == nil {
		e := g.prog.Exprs.Get(id)
		return nil, newError(UnsupportedOperation, "", e.Pos, "condition of type %s", v.Type())
	}
	return c, nil
}

func numeric(t types.Type) bool {
	return isInt(t) || isReal(t)
}

// unify brings both operands into one family: double when either is real,
// otherwise integers, widening i1 to i64 when the widths differ or when
// widen is set.
func (g *generator) unify(cx fnCtx, l, r value.Value, widen bool) (value.Value, value.Value) {
	lt, rt := l.Type(), r.Type()
	if isReal(lt) || isReal(rt) {
		return g.coerce(cx, l, types.Double), g.coerce(cx, r, types.Double)
	}
	if widen || isBool(lt) != isBool(rt) {
		return g.coerce(cx, l, types.I64), g.coerce(cx, r, types.I64)
	}
	return l, r
}

func (g *generator) lowerBinary(cx fnCtx, id ast.ExprID, pos ast.Pos) (value.Value, error) {
	bin, _ := g.prog.Exprs.Binary(id)
	l, err := g.lowerExpr(cx, bin.Left)
	if err != nil {
		return nil, err
	}
	r, err := g.lowerExpr(cx, bin.Right)
	if err != nil {
		return nil, err
	}
	if !numeric(l.Type()) || !numeric(r.Type()) {
		return nil, newError(UnsupportedOperation, bin.Op.String(), pos, "operands of type %s and %s", l.Type(), r.Type())
	}

	logical := bin.Op == ast.BinaryAnd || bin.Op == ast.BinaryOr
	equality := bin.Op == ast.BinaryEq || bin.Op == ast.BinaryNe
	// Signed predicates read i1 true as -1, so only equality stays narrow.
	l, r = g.unify(cx, l, r, !logical && !equality)
	fp := isReal(l.Type())
	b := cx.block

	if bin.Op.IsComparison() {
		if fp {
			return b.NewFCmp(realPreds[bin.Op], l, r), nil
		}
		return b.NewICmp(intPreds[bin.Op], l, r), nil
	}

	switch bin.Op {
	case ast.BinaryAdd:
		if fp {
			return b.NewFAdd(l, r), nil
		}
		return b.NewAdd(l, r), nil
	case ast.BinarySub:
		if fp {
			return b.NewFSub(l, r), nil
		}
		return b.NewSub(l, r), nil
	case ast.BinaryMul:
		if fp {
			return b.NewFMul(l, r), nil
		}
		return b.NewMul(l, r), nil
	case ast.BinaryDiv, ast.BinaryIntDiv:
		if fp {
			return b.NewFDiv(l, r), nil
		}
		return b.NewSDiv(l, r), nil
	}

	if fp {
		return nil, newError(UnsupportedOperation, bin.Op.String(), pos, "operator on real operands")
	}
	switch bin.Op {
	case ast.BinaryMod:
		return b.NewSRem(l, r), nil
	case ast.BinaryAnd:
		return b.NewAnd(l, r), nil
	case ast.BinaryOr:
		return b.NewOr(l, r), nil
	}
	return nil, newError(UnsupportedOperation, bin.Op.String(), pos, "unknown operator")
}

func (g *generator) lowerUnary(cx fnCtx, id ast.ExprID, pos ast.Pos) (value.Value, error) {
	un, _ := g.prog.Exprs.Unary(id)
	x, err := g.lowerExpr(cx, un.Operand)
	if err != nil {
		return nil, err
	}
	t := x.Type()
	if !numeric(t) {
		return nil, newError(UnsupportedOperation, un.Op.String(), pos, "operand of type %s", t)
	}
	b := cx.block

	switch un.Op {
	case ast.UnaryNeg:
		if isReal(t) {
			return b.NewFNeg(x), nil
		}
		x = g.coerce(cx, x, types.I64)
		return b.NewSub(constant.NewInt(types.I64, 0), x), nil
	case ast.UnaryNot:
		if isReal(t) {
			return nil, newError(UnsupportedOperation, un.Op.String(), pos, "operator on real operand")
		}
		if isBool(t) {
			return b.NewXor(x, constant.True), nil
		}
		return b.NewXor(x, constant.NewInt(t.(*types.IntType), -1)), nil
	}
	return nil, newError(UnsupportedOperation, un.Op.String(), pos, "unknown operator")
}
