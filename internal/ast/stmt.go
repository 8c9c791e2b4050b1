package ast

type StmtKind uint8

const (
	StmtVarDecl StmtKind = iota
	StmtVarGroup
	StmtAssign
	StmtExpr
	StmtFunc
	StmtIf
	StmtFor
	StmtWhile
	StmtPrint
	StmtRead
	StmtReturn
)

func (k StmtKind) String() string {
	switch k {
	case StmtVarDecl:
		return "var"
	case StmtVarGroup:
		return "vars"
	case StmtAssign:
		return "assign"
	case StmtExpr:
		return "expr"
	case StmtFunc:
		return "func"
	case StmtIf:
		return "if"
	case StmtFor:
		return "for"
	case StmtWhile:
		return "while"
	case StmtPrint:
		return "print"
	case StmtRead:
		return "read"
	case StmtReturn:
		return "return"
	}
	return "unknown"
}

type Stmt struct {
	Kind    StmtKind
	Pos     Pos
	Payload PayloadID
}

// VarDeclData declares a variable. Length is meaningful only for VarArray;
// a zero length declares a pointer to an externally provided buffer.
type VarDeclData struct {
	TypeName string
	Name     string
	Kind     VarKind
	Length   int64
}

type VarGroupData struct {
	Decls []StmtID
}

// AssignData stores Value into Target, which is always an ExprVar.
type AssignData struct {
	Target ExprID
	Value  ExprID
}

type ExprStmtData struct {
	Expr ExprID
}

// FuncData is a function declaration; Params are StmtVarDecl statements.
type FuncData struct {
	ReturnType string
	Name       string
	Params     []StmtID
	Body       []StmtID
}

type IfData struct {
	Cond ExprID
	Then []StmtID
	Else []StmtID
}

// ForData is a counted loop. Step may be NoExprID, meaning a step of one.
type ForData struct {
	Var   ExprID
	Init  ExprID
	Until ExprID
	Step  ExprID
	Body  []StmtID
}

type WhileData struct {
	Cond ExprID
	Body []StmtID
}

type PrintData struct {
	Args []ExprID
}

type ReadData struct {
	Targets []ExprID
}

// ReturnData returns Value; NoExprID returns the zero value of the result type.
type ReturnData struct {
	Value ExprID
}
