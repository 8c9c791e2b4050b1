package ast

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena    *Arena[Expr]
	Ints     *Arena[ExprIntData]
	Reals    *Arena[ExprRealData]
	Strings  *Arena[ExprStringData]
	Idents   *Arena[ExprIdentData]
	Vars     *Arena[ExprVarData]
	Calls    *Arena[ExprCallData]
	Binaries *Arena[ExprBinaryData]
	Unaries  *Arena[ExprUnaryData]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint as the initial capacity.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:    NewArena[Expr](capHint),
		Ints:     NewArena[ExprIntData](capHint),
		Reals:    NewArena[ExprRealData](capHint),
		Strings:  NewArena[ExprStringData](capHint),
		Idents:   NewArena[ExprIdentData](capHint),
		Vars:     NewArena[ExprVarData](capHint),
		Calls:    NewArena[ExprCallData](capHint),
		Binaries: NewArena[ExprBinaryData](capHint),
		Unaries:  NewArena[ExprUnaryData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, pos Pos, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Pos:     pos,
		Payload: PayloadID(payload),
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0, false
	}
	return uint32(expr.Payload), true
}

// NewInt creates a new integer literal.
func (e *Exprs) NewInt(pos Pos, v int64) ExprID {
	return e.new(ExprInt, pos, e.Ints.Allocate(ExprIntData{Value: v}))
}

// Int returns the integer literal data for the given expression ID.
func (e *Exprs) Int(id ExprID) (*ExprIntData, bool) {
	p, ok := e.payload(id, ExprInt)
	if !ok {
		return nil, false
	}
	return e.Ints.Get(p), true
}

// NewReal creates a new real literal.
func (e *Exprs) NewReal(pos Pos, v float64) ExprID {
	return e.new(ExprReal, pos, e.Reals.Allocate(ExprRealData{Value: v}))
}

func (e *Exprs) Real(id ExprID) (*ExprRealData, bool) {
	p, ok := e.payload(id, ExprReal)
	if !ok {
		return nil, false
	}
	return e.Reals.Get(p), true
}

// NewStringLit creates a new string literal.
func (e *Exprs) NewStringLit(pos Pos, v string) ExprID {
	return e.new(ExprString, pos, e.Strings.Allocate(ExprStringData{Value: v}))
}

func (e *Exprs) StringLit(id ExprID) (*ExprStringData, bool) {
	p, ok := e.payload(id, ExprString)
	if !ok {
		return nil, false
	}
	return e.Strings.Get(p), true
}

// NewIdent creates a new bare identifier.
func (e *Exprs) NewIdent(pos Pos, name string) ExprID {
	return e.new(ExprIdent, pos, e.Idents.Allocate(ExprIdentData{Name: name}))
}

func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	p, ok := e.payload(id, ExprIdent)
	if !ok {
		return nil, false
	}
	return e.Idents.Get(p), true
}

// NewVar creates a scalar variable reference.
func (e *Exprs) NewVar(pos Pos, name string) ExprID {
	return e.new(ExprVar, pos, e.Vars.Allocate(ExprVarData{Name: name, Kind: VarScalar}))
}

// NewIndex creates an array element reference.
func (e *Exprs) NewIndex(pos Pos, name string, index ExprID) ExprID {
	return e.new(ExprVar, pos, e.Vars.Allocate(ExprVarData{Name: name, Kind: VarArray, Index: index}))
}

func (e *Exprs) Var(id ExprID) (*ExprVarData, bool) {
	p, ok := e.payload(id, ExprVar)
	if !ok {
		return nil, false
	}
	return e.Vars.Get(p), true
}

// NewCall creates a new function call.
func (e *Exprs) NewCall(pos Pos, callee string, args []ExprID) ExprID {
	return e.new(ExprCall, pos, e.Calls.Allocate(ExprCallData{Callee: callee, Args: args}))
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	p, ok := e.payload(id, ExprCall)
	if !ok {
		return nil, false
	}
	return e.Calls.Get(p), true
}

// NewBinary creates a new binary expression.
func (e *Exprs) NewBinary(pos Pos, op BinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, pos, e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	if !ok {
		return nil, false
	}
	return e.Binaries.Get(p), true
}

// NewUnary creates a new unary expression.
func (e *Exprs) NewUnary(pos Pos, op UnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, pos, e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand}))
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	p, ok := e.payload(id, ExprUnary)
	if !ok {
		return nil, false
	}
	return e.Unaries.Get(p), true
}
