package ast

// Hints sizes the arenas of a new Program.
type Hints struct {
	Exprs uint
	Stmts uint
}

// Program is the root of a lowered compilation unit. It owns every node;
// Globals and Funcs list the top-level declarations in source order.
type Program struct {
	Exprs   *Exprs
	Stmts   *Stmts
	Globals []StmtID
	Funcs   []StmtID
}

func NewProgram(h Hints) *Program {
	return &Program{
		Exprs: NewExprs(h.Exprs),
		Stmts: NewStmts(h.Stmts),
	}
}

// AddGlobal appends a top-level declaration (StmtVarDecl or StmtVarGroup).
func (p *Program) AddGlobal(id StmtID) {
	p.Globals = append(p.Globals, id)
}

// AddFunc appends a top-level function declaration.
func (p *Program) AddFunc(id StmtID) {
	p.Funcs = append(p.Funcs, id)
}

// FuncByName returns the first function declaration named name.
func (p *Program) FuncByName(name string) (StmtID, *FuncData, bool) {
	for _, id := range p.Funcs {
		if fn, ok := p.Stmts.Func(id); ok && fn.Name == name {
			return id, fn, true
		}
	}
	return NoStmtID, nil, false
}
