package irexec

import (
	"fmt"

	"github.com/llir/llvm/ir/types"
)

type ValueKind uint8

const (
	KindInt ValueKind = iota
	KindFloat
	KindPtr
)

// Value is a first-class runtime value. Integers of every width are kept
// sign-extended in I.
type Value struct {
	K ValueKind
	I int64
	F float64
	P Pointer
}

func IntValue(v int64) Value     { return Value{K: KindInt, I: v} }
func FloatValue(v float64) Value { return Value{K: KindFloat, F: v} }

func (v Value) String() string {
	switch v.K {
	case KindFloat:
		return fmt.Sprintf("%g", v.F)
	case KindPtr:
		return v.P.String()
	}
	return fmt.Sprintf("%d", v.I)
}

// Pointer addresses one cell of an object. Aggregates are flattened so every
// scalar occupies one cell.
type Pointer struct {
	Obj *Object
	Off int
}

func (p Pointer) String() string {
	if p.Obj == nil {
		return "null"
	}
	return fmt.Sprintf("%s+%d", p.Obj.Name, p.Off)
}

type Object struct {
	Name  string
	Cells []Value
}

func newObject(name string, t types.Type) *Object {
	obj := &Object{Name: name}
	obj.Cells = appendZero(obj.Cells, t)
	return obj
}

// appendZero appends the zero cells of t.
func appendZero(cells []Value, t types.Type) []Value {
	switch t := t.(type) {
	case *types.ArrayType:
		for i := uint64(0); i < t.Len; i++ {
			cells = appendZero(cells, t.ElemType)
		}
		return cells
	case *types.FloatType:
		return append(cells, Value{K: KindFloat})
	case *types.PointerType:
		return append(cells, Value{K: KindPtr})
	}
	return append(cells, Value{K: KindInt})
}

// cellCount is the number of cells t occupies.
func cellCount(t types.Type) int {
	if at, ok := t.(*types.ArrayType); ok {
		return int(at.Len) * cellCount(at.ElemType)
	}
	return 1
}

// truncate wraps v to the width of t.
func truncate(v int64, t types.Type) int64 {
	it, ok := t.(*types.IntType)
	if !ok || it.BitSize >= 64 || it.BitSize == 0 {
		return v
	}
	shift := 64 - it.BitSize
	if it.BitSize == 1 {
		return v & 1
	}
	return v << shift >> shift
}
