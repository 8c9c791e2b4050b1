package irexec

import (
	"math"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

func (vm *VM) exec(fr *Frame, inst ir.Instruction) error {
	switch in := inst.(type) {
	case *ir.InstAlloca:
		obj := newObject(in.Name(), in.ElemType)
		fr.vals[in] = Value{K: KindPtr, P: Pointer{Obj: obj}}
		return nil

	case *ir.InstLoad:
		src, err := vm.eval(fr, in.Src)
		if err != nil {
			return err
		}
		c, err := vm.cell(src)
		if err != nil {
			return err
		}
		fr.vals[in] = *c
		return nil

	case *ir.InstStore:
		v, err := vm.eval(fr, in.Src)
		if err != nil {
			return err
		}
		dst, err := vm.eval(fr, in.Dst)
		if err != nil {
			return err
		}
		c, err := vm.cell(dst)
		if err != nil {
			return err
		}
		*c = v
		return nil

	case *ir.InstGetElementPtr:
		base, err := vm.eval(fr, in.Src)
		if err != nil {
			return err
		}
		idx := make([]int64, 0, len(in.Indices))
		for _, i := range in.Indices {
			iv, err := vm.eval(fr, i)
			if err != nil {
				return err
			}
			idx = append(idx, iv.I)
		}
		fr.vals[in] = gep(in.ElemType, base, idx)
		return nil

	case *ir.InstAdd:
		return vm.intOp(fr, in, in.X, in.Y, func(x, y int64) (int64, bool) { return x + y, true })
	case *ir.InstSub:
		return vm.intOp(fr, in, in.X, in.Y, func(x, y int64) (int64, bool) { return x - y, true })
	case *ir.InstMul:
		return vm.intOp(fr, in, in.X, in.Y, func(x, y int64) (int64, bool) { return x * y, true })
	case *ir.InstSDiv:
		return vm.intOp(fr, in, in.X, in.Y, func(x, y int64) (int64, bool) {
			if y == 0 {
				return 0, false
			}
			if x == math.MinInt64 && y == -1 {
				return x, true
			}
			return x / y, true
		})
	case *ir.InstSRem:
		return vm.intOp(fr, in, in.X, in.Y, func(x, y int64) (int64, bool) {
			if y == 0 {
				return 0, false
			}
			if y == -1 {
				return 0, true
			}
			return x % y, true
		})
	case *ir.InstAnd:
		return vm.intOp(fr, in, in.X, in.Y, func(x, y int64) (int64, bool) { return x & y, true })
	case *ir.InstOr:
		return vm.intOp(fr, in, in.X, in.Y, func(x, y int64) (int64, bool) { return x | y, true })
	case *ir.InstXor:
		return vm.intOp(fr, in, in.X, in.Y, func(x, y int64) (int64, bool) { return x ^ y, true })

	case *ir.InstFAdd:
		return vm.floatOp(fr, in, in.X, in.Y, func(x, y float64) float64 { return x + y })
	case *ir.InstFSub:
		return vm.floatOp(fr, in, in.X, in.Y, func(x, y float64) float64 { return x - y })
	case *ir.InstFMul:
		return vm.floatOp(fr, in, in.X, in.Y, func(x, y float64) float64 { return x * y })
	case *ir.InstFDiv:
		return vm.floatOp(fr, in, in.X, in.Y, func(x, y float64) float64 { return x / y })
	case *ir.InstFNeg:
		x, err := vm.eval(fr, in.X)
		if err != nil {
			return err
		}
		fr.vals[in] = FloatValue(-x.F)
		return nil

	case *ir.InstICmp:
		x, err := vm.eval(fr, in.X)
		if err != nil {
			return err
		}
		y, err := vm.eval(fr, in.Y)
		if err != nil {
			return err
		}
		r, ok := icmp(in.Pred, x, y, in.X.Type())
		if !ok {
			return vm.fail(PanicUnimplemented, "icmp %s", in.Pred)
		}
		fr.vals[in] = boolValue(r)
		return nil

	case *ir.InstFCmp:
		x, err := vm.eval(fr, in.X)
		if err != nil {
			return err
		}
		y, err := vm.eval(fr, in.Y)
		if err != nil {
			return err
		}
		r, ok := fcmp(in.Pred, x.F, y.F)
		if !ok {
			return vm.fail(PanicUnimplemented, "fcmp %s", in.Pred)
		}
		fr.vals[in] = boolValue(r)
		return nil

	case *ir.InstZExt:
		x, err := vm.eval(fr, in.From)
		if err != nil {
			return err
		}
		fr.vals[in] = IntValue(zext(x.I, in.From.Type()))
		return nil
	case *ir.InstSExt:
		x, err := vm.eval(fr, in.From)
		if err != nil {
			return err
		}
		fr.vals[in] = IntValue(sext(x.I, in.From.Type()))
		return nil
	case *ir.InstTrunc:
		x, err := vm.eval(fr, in.From)
		if err != nil {
			return err
		}
		fr.vals[in] = IntValue(truncate(x.I, in.To))
		return nil
	case *ir.InstSIToFP:
		x, err := vm.eval(fr, in.From)
		if err != nil {
			return err
		}
		fr.vals[in] = FloatValue(float64(x.I))
		return nil
	case *ir.InstUIToFP:
		x, err := vm.eval(fr, in.From)
		if err != nil {
			return err
		}
		fr.vals[in] = FloatValue(float64(uint64(zext(x.I, in.From.Type()))))
		return nil
	case *ir.InstFPToSI:
		x, err := vm.eval(fr, in.From)
		if err != nil {
			return err
		}
		fr.vals[in] = IntValue(truncate(int64(x.F), in.To))
		return nil

	case *ir.InstCall:
		callee, ok := in.Callee.(*ir.Func)
		if !ok {
			return vm.fail(PanicUnimplemented, "indirect call")
		}
		args := make([]Value, 0, len(in.Args))
		for _, a := range in.Args {
			v, err := vm.eval(fr, a)
			if err != nil {
				return err
			}
			args = append(args, v)
		}
		ret, err := vm.call(callee, args)
		if err != nil {
			return err
		}
		if !types.IsVoid(in.Type()) {
			fr.vals[in] = ret
		}
		return nil
	}
	return vm.fail(PanicUnimplemented, "instruction %T", inst)
}

func (vm *VM) intOp(fr *Frame, dst value.Value, xv, yv value.Value, op func(x, y int64) (int64, bool)) error {
	x, err := vm.eval(fr, xv)
	if err != nil {
		return err
	}
	y, err := vm.eval(fr, yv)
	if err != nil {
		return err
	}
	r, ok := op(x.I, y.I)
	if !ok {
		return vm.fail(PanicDivByZero, "%s", dst.Ident())
	}
	fr.vals[dst] = IntValue(truncate(r, dst.Type()))
	return nil
}

func (vm *VM) floatOp(fr *Frame, dst value.Value, xv, yv value.Value, op func(x, y float64) float64) error {
	x, err := vm.eval(fr, xv)
	if err != nil {
		return err
	}
	y, err := vm.eval(fr, yv)
	if err != nil {
		return err
	}
	fr.vals[dst] = FloatValue(op(x.F, y.F))
	return nil
}

func boolValue(b bool) Value {
	if b {
		return IntValue(1)
	}
	return IntValue(0)
}

func zext(v int64, from types.Type) int64 {
	it, ok := from.(*types.IntType)
	if !ok || it.BitSize >= 64 || it.BitSize == 0 {
		return v
	}
	return int64(uint64(v) & (1<<it.BitSize - 1))
}

// sext reads the low bits of v as a signed value of type t.
func sext(v int64, t types.Type) int64 {
	it, ok := t.(*types.IntType)
	if !ok || it.BitSize >= 64 || it.BitSize == 0 {
		return v
	}
	shift := 64 - it.BitSize
	return v << shift >> shift
}

// icmp compares x and y as values of type t. Signed predicates see narrow
// integers sign-extended, so i1 true compares as -1.
func icmp(pred enum.IPred, x, y Value, t types.Type) (bool, bool) {
	if x.K == KindPtr || y.K == KindPtr {
		same := x.P == y.P
		switch pred {
		case enum.IPredEQ:
			return same, true
		case enum.IPredNE:
			return !same, true
		}
		return false, false
	}
	a, b := x.I, y.I
	switch pred {
	case enum.IPredEQ:
		return a == b, true
	case enum.IPredNE:
		return a != b, true
	case enum.IPredULT, enum.IPredULE, enum.IPredUGT, enum.IPredUGE:
		a, b = zext(a, t), zext(b, t)
	default:
		a, b = sext(a, t), sext(b, t)
	}
	switch pred {
	case enum.IPredSLT:
		return a < b, true
	case enum.IPredSLE:
		return a <= b, true
	case enum.IPredSGT:
		return a > b, true
	case enum.IPredSGE:
		return a >= b, true
	case enum.IPredULT:
		return uint64(a) < uint64(b), true
	case enum.IPredULE:
		return uint64(a) <= uint64(b), true
	case enum.IPredUGT:
		return uint64(a) > uint64(b), true
	case enum.IPredUGE:
		return uint64(a) >= uint64(b), true
	}
	return false, false
}

func fcmp(pred enum.FPred, a, b float64) (bool, bool) {
	uno := math.IsNaN(a) || math.IsNaN(b)
	switch pred {
	case enum.FPredOEQ:
		return !uno && a == b, true
	case enum.FPredONE:
		return !uno && a != b, true
	case enum.FPredOLT:
		return !uno && a < b, true
	case enum.FPredOLE:
		return !uno && a <= b, true
	case enum.FPredOGT:
		return !uno && a > b, true
	case enum.FPredOGE:
		return !uno && a >= b, true
	case enum.FPredUEQ:
		return uno || a == b, true
	case enum.FPredUNE:
		return uno || a != b, true
	case enum.FPredULT:
		return uno || a < b, true
	case enum.FPredULE:
		return uno || a <= b, true
	case enum.FPredUGT:
		return uno || a > b, true
	case enum.FPredUGE:
		return uno || a >= b, true
	case enum.FPredORD:
		return !uno, true
	case enum.FPredUNO:
		return uno, true
	case enum.FPredFalse:
		return false, true
	case enum.FPredTrue:
		return true, true
	}
	return false, false
}
