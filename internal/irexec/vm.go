// Package irexec interprets the IR subset emitted by the code generator. It
// backs "lowc run" and lets tests observe program behaviour.
package irexec

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

const (
	DefaultMaxSteps = 10_000_000
	DefaultMaxDepth = 1 << 12
)

type Options struct {
	Stdout   io.Writer
	MaxSteps int64
	MaxDepth int
}

// VM executes the functions of one module.
type VM struct {
	M       *ir.Module
	Out     io.Writer
	Globals map[*ir.Global]*Object
	Steps   int64

	ctx      context.Context
	maxSteps int64
	maxDepth int
	stack    []*Frame
}

// Frame is one function activation.
type Frame struct {
	Func  *ir.Func
	Block *ir.Block
	vals  map[value.Value]Value
}

func New(m *ir.Module, opts Options) (*VM, error) {
	vm := &VM{
		M:        m,
		Out:      opts.Stdout,
		Globals:  make(map[*ir.Global]*Object, len(m.Globals)),
		maxSteps: opts.MaxSteps,
		maxDepth: opts.MaxDepth,
	}
	if vm.Out == nil {
		vm.Out = io.Discard
	}
	if vm.maxSteps <= 0 {
		vm.maxSteps = DefaultMaxSteps
	}
	if vm.maxDepth <= 0 {
		vm.maxDepth = DefaultMaxDepth
	}
	for _, g := range m.Globals {
		obj := newObject(g.Name(), g.ContentType)
		if g.Init != nil {
			if err := vm.initCells(obj.Cells, g.Init); err != nil {
				return nil, fmt.Errorf("global @%s: %w", g.Name(), err)
			}
		}
		vm.Globals[g] = obj
	}
	return vm, nil
}

// Run executes the function named entry with no arguments and returns its
// integer result.
func Run(ctx context.Context, m *ir.Module, entry string, opts Options) (int64, error) {
	vm, err := New(m, opts)
	if err != nil {
		return 0, err
	}
	ret, err := vm.Call(ctx, entry)
	if err != nil {
		return 0, err
	}
	return ret.I, nil
}

// Call runs the named function.
func (vm *VM) Call(ctx context.Context, name string, args ...Value) (Value, error) {
	for _, f := range vm.M.Funcs {
		if f.Name() == name {
			vm.ctx = ctx
			return vm.call(f, args)
		}
	}
	return Value{}, &VMError{Code: PanicNoFunction, Message: fmt.Sprintf("@%s", name)}
}

func (vm *VM) initCells(cells []Value, c constant.Constant) error {
	switch c := c.(type) {
	case *constant.ZeroInitializer:
		return nil
	case *constant.CharArray:
		for i, b := range c.X {
			cells[i] = IntValue(int64(b))
		}
		return nil
	case *constant.Array:
		off := 0
		for _, elem := range c.Elems {
			n := cellCount(elem.Type())
			if err := vm.initCells(cells[off:off+n], elem); err != nil {
				return err
			}
			off += n
		}
		return nil
	}
	v, err := vm.constValue(c)
	if err != nil {
		return err
	}
	cells[0] = v
	return nil
}

func (vm *VM) fail(code PanicCode, format string, args ...any) *VMError {
	e := &VMError{Code: code, Message: fmt.Sprintf(format, args...)}
	for i := len(vm.stack) - 1; i >= 0; i-- {
		fr := vm.stack[i]
		e.Backtrace = append(e.Backtrace, fmt.Sprintf("@%s/%%%s", fr.Func.Name(), fr.Block.Name()))
	}
	return e
}

func (vm *VM) call(f *ir.Func, args []Value) (Value, error) {
	if len(f.Blocks) == 0 {
		return vm.callBuiltin(f, args)
	}
	if len(vm.stack) >= vm.maxDepth {
		return Value{}, vm.fail(PanicStackOverflow, "call depth %d", len(vm.stack))
	}
	fr := &Frame{Func: f, Block: f.Blocks[0], vals: make(map[value.Value]Value)}
	for i, p := range f.Params {
		if i < len(args) {
			fr.vals[p] = args[i]
		} else {
			fr.vals[p] = appendZero(nil, p.Typ)[0]
		}
	}
	vm.stack = append(vm.stack, fr)
	defer func() { vm.stack = vm.stack[:len(vm.stack)-1] }()

	for {
		for _, inst := range fr.Block.Insts {
			if err := vm.step(); err != nil {
				return Value{}, err
			}
			if err := vm.exec(fr, inst); err != nil {
				return Value{}, err
			}
		}
		next, ret, done, err := vm.execTerminator(fr)
		if err != nil || done {
			return ret, err
		}
		fr.Block = next
	}
}

func (vm *VM) step() error {
	vm.Steps++
	if vm.Steps > vm.maxSteps {
		return vm.fail(PanicStepLimit, "more than %d steps", vm.maxSteps)
	}
	if vm.Steps&0x3ff == 0 && vm.ctx != nil {
		if err := vm.ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) execTerminator(fr *Frame) (next *ir.Block, ret Value, done bool, err error) {
	switch t := fr.Block.Term.(type) {
	case *ir.TermRet:
		if t.X == nil {
			return nil, Value{}, true, nil
		}
		ret, err = vm.eval(fr, t.X)
		return nil, ret, true, err
	case *ir.TermBr:
		return t.Succs()[0], Value{}, false, nil
	case *ir.TermCondBr:
		cond, err := vm.eval(fr, t.Cond)
		if err != nil {
			return nil, Value{}, true, err
		}
		succs := t.Succs()
		if cond.I != 0 {
			return succs[0], Value{}, false, nil
		}
		return succs[1], Value{}, false, nil
	case nil:
		return nil, Value{}, true, vm.fail(PanicUnimplemented, "block without terminator")
	}
	return nil, Value{}, true, vm.fail(PanicUnimplemented, "terminator %T", fr.Block.Term)
}

func (vm *VM) constValue(c constant.Constant) (Value, error) {
	switch c := c.(type) {
	case *constant.Int:
		return IntValue(bigInt64(c.X)), nil
	case *constant.Float:
		f, _ := c.X.Float64()
		return FloatValue(f), nil
	case *constant.Null:
		return Value{K: KindPtr}, nil
	case *ir.Global:
		return Value{K: KindPtr, P: Pointer{Obj: vm.Globals[c]}}, nil
	case *constant.ExprGetElementPtr:
		base, err := vm.constValue(c.Src)
		if err != nil {
			return Value{}, err
		}
		idx := make([]int64, 0, len(c.Indices))
		for _, i := range c.Indices {
			iv, err := vm.constValue(i)
			if err != nil {
				return Value{}, err
			}
			idx = append(idx, iv.I)
		}
		return gep(c.ElemType, base, idx), nil
	}
	return Value{}, vm.fail(PanicUnimplemented, "constant %T", c)
}

func bigInt64(x *big.Int) int64 {
	if x.IsInt64() {
		return x.Int64()
	}
	// Unsigned constants above MaxInt64 keep their bit pattern.
	return int64(x.Uint64())
}

func (vm *VM) eval(fr *Frame, v value.Value) (Value, error) {
	if c, ok := v.(constant.Constant); ok {
		return vm.constValue(c)
	}
	if r, ok := fr.vals[v]; ok {
		return r, nil
	}
	return Value{}, vm.fail(PanicUnimplemented, "value %s used before definition", v.Ident())
}

// gep offsets base following LLVM getelementptr indexing over flattened cells.
func gep(elem types.Type, base Value, idx []int64) Value {
	if len(idx) == 0 {
		return base
	}
	off := base.P.Off + int(idx[0])*cellCount(elem)
	t := elem
	for _, i := range idx[1:] {
		at, ok := t.(*types.ArrayType)
		if !ok {
			break
		}
		t = at.ElemType
		off += int(i) * cellCount(t)
	}
	return Value{K: KindPtr, P: Pointer{Obj: base.P.Obj, Off: off}}
}

func (vm *VM) cell(p Value) (*Value, error) {
	if p.K != KindPtr || p.P.Obj == nil {
		return nil, vm.fail(PanicNullDeref, "access through %s", p)
	}
	if p.P.Off < 0 || p.P.Off >= len(p.P.Obj.Cells) {
		return nil, vm.fail(PanicOutOfBounds, "%s has %d cells", p, len(p.P.Obj.Cells))
	}
	return &p.P.Obj.Cells[p.P.Off], nil
}
