package codegen

import (
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"lowc/internal/ast"
)

// Storage is the memory cell a name resolves to.
type Storage struct {
	Name string
	Ptr  value.Value // alloca or global; points at CellType()
	Elem types.Type  // scalar type, or the element type of an array
	Kind ast.VarKind
	Len  int64 // array length; 0 means the cell holds a pointer to the elements
}

// Indirect reports whether the cell holds the address of external elements.
func (s *Storage) Indirect() bool {
	return s.Kind == ast.VarArray && s.Len == 0
}

func (s *Storage) CellType() types.Type {
	switch {
	case s.Kind == ast.VarScalar:
		return s.Elem
	case s.Indirect():
		return types.NewPointer(s.Elem)
	}
	return types.NewArray(uint64(s.Len), s.Elem)
}

// Tier is one level of the symbol table.
type Tier struct {
	vars map[string]*Storage
}

func NewTier() *Tier {
	return &Tier{vars: make(map[string]*Storage)}
}

// Bind registers s, replacing an earlier binding of the same name.
func (t *Tier) Bind(s *Storage) {
	t.vars[s.Name] = s
}

func (t *Tier) Lookup(name string) (*Storage, bool) {
	if t == nil {
		return nil, false
	}
	s, ok := t.vars[name]
	return s, ok
}

func (t *Tier) Len() int {
	if t == nil {
		return 0
	}
	return len(t.vars)
}

// Symbols is the two-tier name table: module globals plus the locals of the
// function being lowered, if any.
type Symbols struct {
	Globals *Tier
}

func NewSymbols() *Symbols {
	return &Symbols{Globals: NewTier()}
}

// Resolve looks name up in locals first, then in the globals. locals is nil
// outside a function.
func (s *Symbols) Resolve(name string, locals *Tier, pos ast.Pos) (*Storage, error) {
	if st, ok := locals.Lookup(name); ok {
		return st, nil
	}
	if st, ok := s.Globals.Lookup(name); ok {
		return st, nil
	}
	return nil, newError(UndeclaredVariable, name, pos, "")
}
