package codegen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"lowc/internal/ast"
)

var (
	i64   = types.I64
	i8ptr = types.NewPointer(types.I8)
)

// typeOf maps a source type name onto its IR type.
func typeOf(name string, pos ast.Pos) (types.Type, error) {
	switch name {
	case "int":
		return types.I64, nil
	case "real":
		return types.Double, nil
	}
	return nil, newError(UnknownTypeIdentifier, name, pos, "")
}

func isBool(t types.Type) bool {
	it, ok := t.(*types.IntType)
	return ok && it.BitSize == 1
}

func isInt(t types.Type) bool {
	_, ok := t.(*types.IntType)
	return ok
}

func isReal(t types.Type) bool {
	return types.IsFloat(t)
}

// zeroValue is the zero constant of t.
func zeroValue(t types.Type) constant.Constant {
	switch t := t.(type) {
	case *types.IntType:
		return constant.NewInt(t, 0)
	case *types.FloatType:
		return constant.NewFloat(t, 0)
	case *types.PointerType:
		return constant.NewNull(t)
	}
	return constant.NewZeroInitializer(t)
}
