package ast

type ExprKind uint8

const (
	ExprInt ExprKind = iota
	ExprReal
	ExprString
	ExprIdent
	ExprVar
	ExprCall
	ExprBinary
	ExprUnary
)

func (k ExprKind) String() string {
	switch k {
	case ExprInt:
		return "int"
	case ExprReal:
		return "real"
	case ExprString:
		return "string"
	case ExprIdent:
		return "ident"
	case ExprVar:
		return "var"
	case ExprCall:
		return "call"
	case ExprBinary:
		return "binary"
	case ExprUnary:
		return "unary"
	}
	return "unknown"
}

type Expr struct {
	Kind    ExprKind
	Pos     Pos
	Payload PayloadID
}

// VarKind is the storage shape of a declared or referenced variable.
type VarKind uint8

const (
	VarScalar VarKind = iota
	VarArray
)

func (k VarKind) String() string {
	switch k {
	case VarScalar:
		return "scalar"
	case VarArray:
		return "array"
	}
	return "unknown"
}

type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv    // "/"
	BinaryIntDiv // "div"
	BinaryMod
	BinaryAnd
	BinaryOr
	BinaryEq
	BinaryNe
	BinaryLt
	BinaryLe
	BinaryGt
	BinaryGe
)

var binaryOpText = [...]string{
	BinaryAdd:    "+",
	BinarySub:    "-",
	BinaryMul:    "*",
	BinaryDiv:    "/",
	BinaryIntDiv: "div",
	BinaryMod:    "mod",
	BinaryAnd:    "and",
	BinaryOr:     "or",
	BinaryEq:     "==",
	BinaryNe:     "!=",
	BinaryLt:     "<",
	BinaryLe:     "<=",
	BinaryGt:     ">",
	BinaryGe:     ">=",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// IsComparison reports whether op yields a boolean.
func (op BinaryOp) IsComparison() bool {
	return op >= BinaryEq && op <= BinaryGe
}

// LookupBinaryOp maps the textual operator to its tag.
func LookupBinaryOp(text string) (BinaryOp, bool) {
	for i, s := range binaryOpText {
		if s == text {
			return BinaryOp(i), true
		}
	}
	return 0, false
}

type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "neg"
	case UnaryNot:
		return "not"
	}
	return "?"
}

type ExprIntData struct {
	Value int64
}

type ExprRealData struct {
	Value float64
}

type ExprStringData struct {
	Value string
}

type ExprIdentData struct {
	Name string
}

// ExprVarData is a variable reference. Index is set only for VarArray.
type ExprVarData struct {
	Name  string
	Kind  VarKind
	Index ExprID
}

type ExprCallData struct {
	Callee string
	Args   []ExprID
}

type ExprBinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

type ExprUnaryData struct {
	Op      UnaryOp
	Operand ExprID
}
