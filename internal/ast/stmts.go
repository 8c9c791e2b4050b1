package ast

// Stmts manages allocation of statements.
type Stmts struct {
	Arena     *Arena[Stmt]
	VarDecls  *Arena[VarDeclData]
	VarGroups *Arena[VarGroupData]
	Assigns   *Arena[AssignData]
	ExprStmts *Arena[ExprStmtData]
	Funcs     *Arena[FuncData]
	Ifs       *Arena[IfData]
	Fors      *Arena[ForData]
	Whiles    *Arena[WhileData]
	Prints    *Arena[PrintData]
	Reads     *Arena[ReadData]
	Returns   *Arena[ReturnData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:     NewArena[Stmt](capHint),
		VarDecls:  NewArena[VarDeclData](capHint),
		VarGroups: NewArena[VarGroupData](capHint >> 2),
		Assigns:   NewArena[AssignData](capHint),
		ExprStmts: NewArena[ExprStmtData](capHint >> 2),
		Funcs:     NewArena[FuncData](capHint >> 2),
		Ifs:       NewArena[IfData](capHint >> 2),
		Fors:      NewArena[ForData](capHint >> 2),
		Whiles:    NewArena[WhileData](capHint >> 2),
		Prints:    NewArena[PrintData](capHint >> 2),
		Reads:     NewArena[ReadData](capHint >> 2),
		Returns:   NewArena[ReturnData](capHint >> 2),
	}
}

func (s *Stmts) new(kind StmtKind, pos Pos, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Pos:     pos,
		Payload: PayloadID(payload),
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) payload(id StmtID, kind StmtKind) (uint32, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return 0, false
	}
	return uint32(st.Payload), true
}

func (s *Stmts) NewVarDecl(pos Pos, data VarDeclData) StmtID {
	return s.new(StmtVarDecl, pos, s.VarDecls.Allocate(data))
}

func (s *Stmts) VarDecl(id StmtID) (*VarDeclData, bool) {
	p, ok := s.payload(id, StmtVarDecl)
	if !ok {
		return nil, false
	}
	return s.VarDecls.Get(p), true
}

func (s *Stmts) NewVarGroup(pos Pos, decls []StmtID) StmtID {
	return s.new(StmtVarGroup, pos, s.VarGroups.Allocate(VarGroupData{Decls: decls}))
}

func (s *Stmts) VarGroup(id StmtID) (*VarGroupData, bool) {
	p, ok := s.payload(id, StmtVarGroup)
	if !ok {
		return nil, false
	}
	return s.VarGroups.Get(p), true
}

func (s *Stmts) NewAssign(pos Pos, target, value ExprID) StmtID {
	return s.new(StmtAssign, pos, s.Assigns.Allocate(AssignData{Target: target, Value: value}))
}

func (s *Stmts) Assign(id StmtID) (*AssignData, bool) {
	p, ok := s.payload(id, StmtAssign)
	if !ok {
		return nil, false
	}
	return s.Assigns.Get(p), true
}

func (s *Stmts) NewExprStmt(pos Pos, expr ExprID) StmtID {
	return s.new(StmtExpr, pos, s.ExprStmts.Allocate(ExprStmtData{Expr: expr}))
}

func (s *Stmts) ExprStmt(id StmtID) (*ExprStmtData, bool) {
	p, ok := s.payload(id, StmtExpr)
	if !ok {
		return nil, false
	}
	return s.ExprStmts.Get(p), true
}

func (s *Stmts) NewFunc(pos Pos, data FuncData) StmtID {
	return s.new(StmtFunc, pos, s.Funcs.Allocate(data))
}

func (s *Stmts) Func(id StmtID) (*FuncData, bool) {
	p, ok := s.payload(id, StmtFunc)
	if !ok {
		return nil, false
	}
	return s.Funcs.Get(p), true
}

func (s *Stmts) NewIf(pos Pos, data IfData) StmtID {
	return s.new(StmtIf, pos, s.Ifs.Allocate(data))
}

func (s *Stmts) If(id StmtID) (*IfData, bool) {
	p, ok := s.payload(id, StmtIf)
	if !ok {
		return nil, false
	}
	return s.Ifs.Get(p), true
}

func (s *Stmts) NewFor(pos Pos, data ForData) StmtID {
	return s.new(StmtFor, pos, s.Fors.Allocate(data))
}

func (s *Stmts) For(id StmtID) (*ForData, bool) {
	p, ok := s.payload(id, StmtFor)
	if !ok {
		return nil, false
	}
	return s.Fors.Get(p), true
}

func (s *Stmts) NewWhile(pos Pos, data WhileData) StmtID {
	return s.new(StmtWhile, pos, s.Whiles.Allocate(data))
}

func (s *Stmts) While(id StmtID) (*WhileData, bool) {
	p, ok := s.payload(id, StmtWhile)
	if !ok {
		return nil, false
	}
	return s.Whiles.Get(p), true
}

func (s *Stmts) NewPrint(pos Pos, args []ExprID) StmtID {
	return s.new(StmtPrint, pos, s.Prints.Allocate(PrintData{Args: args}))
}

func (s *Stmts) Print(id StmtID) (*PrintData, bool) {
	p, ok := s.payload(id, StmtPrint)
	if !ok {
		return nil, false
	}
	return s.Prints.Get(p), true
}

func (s *Stmts) NewRead(pos Pos, targets []ExprID) StmtID {
	return s.new(StmtRead, pos, s.Reads.Allocate(ReadData{Targets: targets}))
}

func (s *Stmts) Read(id StmtID) (*ReadData, bool) {
	p, ok := s.payload(id, StmtRead)
	if !ok {
		return nil, false
	}
	return s.Reads.Get(p), true
}

func (s *Stmts) NewReturn(pos Pos, value ExprID) StmtID {
	return s.new(StmtReturn, pos, s.Returns.Allocate(ReturnData{Value: value}))
}

func (s *Stmts) Return(id StmtID) (*ReturnData, bool) {
	p, ok := s.payload(id, StmtReturn)
	if !ok {
		return nil, false
	}
	return s.Returns.Get(p), true
}
