package irexec

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"
)

func i64(v int64) *constant.Int { return constant.NewInt(types.I64, v) }

func printfDecl(m *ir.Module) *ir.Func {
	f := m.NewFunc("printf", types.I32, ir.NewParam("", types.I8Ptr))
	f.Sig.Variadic = true
	return f
}

func strPtr(m *ir.Module, name, s string) constant.Constant {
	arr := constant.NewCharArrayFromString(s + "\x00")
	g := m.NewGlobalDef(name, arr)
	zero := constant.NewInt(types.I64, 0)
	return constant.NewGetElementPtr(arr.Typ, g, zero, zero)
}

func TestRunPrintsLoopCounter(t *testing.T) {
	m := ir.NewModule()
	printf := printfDecl(m)
	format := strPtr(m, "fmt.int", "%lld\n")

	main := m.NewFunc("main", types.I64)
	entry := main.NewBlock("entry")
	loop := main.NewBlock("loop")
	after := main.NewBlock("after")

	i := entry.NewAlloca(types.I64)
	entry.NewStore(i64(1), i)
	entry.NewBr(loop)

	cur := loop.NewLoad(types.I64, i)
	loop.NewCall(printf, format, cur)
	inc := loop.NewAdd(cur, i64(1))
	loop.NewStore(inc, i)
	loop.NewCondBr(loop.NewICmp(enum.IPredSLE, inc, i64(3)), loop, after)

	after.NewRet(after.NewLoad(types.I64, i))

	var out bytes.Buffer
	ret, err := Run(context.Background(), m, "main", Options{Stdout: &out})
	be.Err(t, err, nil)
	be.Equal(t, ret, int64(4))
	be.Equal(t, out.String(), "1\n2\n3\n")
}

func TestRunArraysAndCalls(t *testing.T) {
	m := ir.NewModule()
	printf := printfDecl(m)
	format := strPtr(m, "fmt.real", "%lf\n")

	arrTy := types.NewArray(4, types.Double)
	g := m.NewGlobalDef("xs", constant.NewZeroInitializer(arrTy))

	// double half(double) { return x / 2.0 }
	x := ir.NewParam("x", types.Double)
	half := m.NewFunc("half", types.Double, x)
	hb := half.NewBlock("entry")
	hb.NewRet(hb.NewFDiv(x, constant.NewFloat(types.Double, 2)))

	main := m.NewFunc("main", types.I64)
	b := main.NewBlock("entry")
	slot := b.NewGetElementPtr(arrTy, g, i64(0), i64(2))
	b.NewStore(b.NewSIToFP(i64(5), types.Double), slot)
	v := b.NewCall(half, b.NewLoad(types.Double, slot))
	b.NewCall(printf, format, v)
	b.NewRet(b.NewFPToSI(v, types.I64))

	var out bytes.Buffer
	ret, err := Run(context.Background(), m, "main", Options{Stdout: &out})
	be.Err(t, err, nil)
	be.Equal(t, ret, int64(2))
	be.Equal(t, out.String(), "2.500000\n")
}

func TestRunDivisionByZero(t *testing.T) {
	m := ir.NewModule()
	main := m.NewFunc("main", types.I64)
	b := main.NewBlock("entry")
	p := b.NewAlloca(types.I64)
	zero := b.NewLoad(types.I64, p)
	b.NewRet(b.NewSDiv(i64(1), zero))

	_, err := Run(context.Background(), m, "main", Options{})
	var vmErr *VMError
	be.True(t, errors.As(err, &vmErr))
	be.Equal(t, vmErr.Code, PanicDivByZero)
	be.Equal(t, vmErr.Backtrace, []string{"@main/%entry"})
}

func TestRunStepLimit(t *testing.T) {
	m := ir.NewModule()
	main := m.NewFunc("main", types.I64)
	entry := main.NewBlock("entry")
	spin := main.NewBlock("spin")
	entry.NewBr(spin)
	p := spin.NewAlloca(types.I64)
	spin.NewStore(i64(0), p)
	spin.NewBr(spin)

	_, err := Run(context.Background(), m, "main", Options{MaxSteps: 100})
	be.Err(t, err, ErrStepLimit)
}

func TestRunUnknownEntry(t *testing.T) {
	_, err := Run(context.Background(), ir.NewModule(), "main", Options{})
	be.Err(t, err, "no such function")
}

func TestSprintf(t *testing.T) {
	vm := &VM{}
	got, err := vm.sprintf("%lld|%d%%|%c|%lf", []Value{IntValue(-7), IntValue(42), IntValue('z'), FloatValue(0.25)})
	be.Err(t, err, nil)
	be.Equal(t, got, "-7|42%|z|0.250000")

	_, err = vm.sprintf("%lld %lld", []Value{IntValue(1)})
	be.Err(t, err, "missing argument 2")
}

func TestTruncate(t *testing.T) {
	be.Equal(t, truncate(255, types.I8), int64(-1))
	be.Equal(t, truncate(3, types.I1), int64(1))
	be.Equal(t, truncate(1<<40, types.I32), int64(0))
	be.Equal(t, zext(-1, types.I1), int64(1))
}

func TestICmpNarrowSigned(t *testing.T) {
	tru, fls := IntValue(1), IntValue(0)

	lt, ok := icmp(enum.IPredSLT, tru, fls, types.I1)
	be.True(t, ok)
	be.True(t, lt)

	ult, _ := icmp(enum.IPredULT, tru, fls, types.I1)
	be.True(t, !ult)

	ge, _ := icmp(enum.IPredSGE, IntValue(-1), IntValue(255), types.I8)
	be.True(t, ge)

	wide, _ := icmp(enum.IPredSLT, tru, fls, types.I64)
	be.True(t, !wide)
}
