package codegen

import (
	"testing"

	"github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"

	"lowc/internal/ast"
)

func TestResolvePrefersLocals(t *testing.T) {
	syms := NewSymbols()
	global := &Storage{Name: "x", Elem: types.I64, Kind: ast.VarScalar}
	syms.Globals.Bind(global)

	got, err := syms.Resolve("x", nil, ast.Pos{})
	be.Err(t, err, nil)
	be.True(t, got == global)

	locals := NewTier()
	local := &Storage{Name: "x", Elem: types.Double, Kind: ast.VarScalar}
	locals.Bind(local)
	got, err = syms.Resolve("x", locals, ast.Pos{})
	be.Err(t, err, nil)
	be.True(t, got == local)

	_, err = syms.Resolve("y", locals, ast.Pos{Line: 2, Col: 3})
	be.Equal(t, KindOf(err), UndeclaredVariable)
	be.Err(t, err, `2:3: undeclared variable "y"`)
}

func TestTierRebind(t *testing.T) {
	tier := NewTier()
	tier.Bind(&Storage{Name: "a", Elem: types.I64})
	second := &Storage{Name: "a", Elem: types.Double}
	tier.Bind(second)
	got, ok := tier.Lookup("a")
	be.True(t, ok)
	be.True(t, got == second)
	be.Equal(t, tier.Len(), 1)

	var none *Tier
	_, ok = none.Lookup("a")
	be.True(t, !ok)
	be.Equal(t, none.Len(), 0)
}

func TestStorageCellType(t *testing.T) {
	tests := []struct {
		s    Storage
		want string
	}{
		{Storage{Elem: types.I64, Kind: ast.VarScalar}, "i64"},
		{Storage{Elem: types.Double, Kind: ast.VarArray, Len: 4}, "[4 x double]"},
		{Storage{Elem: types.I64, Kind: ast.VarArray}, "i64*"},
	}
	for _, tt := range tests {
		be.Equal(t, tt.s.CellType().String(), tt.want)
	}
	be.True(t, (&Storage{Kind: ast.VarArray}).Indirect())
	be.True(t, !(&Storage{Kind: ast.VarArray, Len: 1}).Indirect())
}

func TestParseWhileMode(t *testing.T) {
	m, err := ParseWhileMode("stale")
	be.Err(t, err, nil)
	be.Equal(t, m, WhileStaleCondition)
	m, err = ParseWhileMode("")
	be.Err(t, err, nil)
	be.Equal(t, m, WhileReevaluate)
	_, err = ParseWhileMode("sometimes")
	be.Err(t, err, "invalid while_condition")
}
