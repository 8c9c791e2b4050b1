package ast

import (
	"strings"
	"testing"
)

func buildCounter(t *testing.T) *Program {
	t.Helper()
	p := NewProgram(Hints{})
	p.AddGlobal(p.Stmts.NewVarDecl(Pos{Line: 1, Col: 1}, VarDeclData{TypeName: "int", Name: "x", Kind: VarScalar}))

	one := p.Exprs.NewInt(Pos{}, 1)
	three := p.Exprs.NewInt(Pos{}, 3)
	printI := p.Stmts.NewPrint(Pos{}, []ExprID{p.Exprs.NewVar(Pos{}, "i")})
	loop := p.Stmts.NewFor(Pos{}, ForData{
		Var:   p.Exprs.NewVar(Pos{}, "i"),
		Init:  one,
		Until: three,
		Body:  []StmtID{printI},
	})
	decl := p.Stmts.NewVarDecl(Pos{}, VarDeclData{TypeName: "int", Name: "i"})
	set := p.Stmts.NewAssign(Pos{}, p.Exprs.NewVar(Pos{}, "x"), p.Exprs.NewInt(Pos{}, 5))
	p.AddFunc(p.Stmts.NewFunc(Pos{}, FuncData{
		ReturnType: "int",
		Name:       "main",
		Body:       []StmtID{decl, set, loop},
	}))
	return p
}

func TestProgramValidate_Tree(t *testing.T) {
	p := buildCounter(t)
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, fn, ok := p.FuncByName("main"); !ok || len(fn.Body) != 3 {
		t.Fatalf("expected main with 3 statements, got %+v", fn)
	}
	if _, _, ok := p.FuncByName("missing"); ok {
		t.Fatalf("did not expect to find missing")
	}
}

func TestProgramValidate_SharedExpr(t *testing.T) {
	p := NewProgram(Hints{})
	shared := p.Exprs.NewInt(Pos{}, 7)
	body := []StmtID{
		p.Stmts.NewPrint(Pos{Line: 2, Col: 3}, []ExprID{shared}),
		p.Stmts.NewPrint(Pos{Line: 3, Col: 3}, []ExprID{shared}),
	}
	p.AddFunc(p.Stmts.NewFunc(Pos{}, FuncData{ReturnType: "int", Name: "main", Body: body}))

	err := p.Validate()
	if err == nil {
		t.Fatalf("expected a shared-node error")
	}
	if !strings.Contains(err.Error(), "more than one parent") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProgramValidate_Dangling(t *testing.T) {
	p := NewProgram(Hints{})
	ret := p.Stmts.NewReturn(Pos{}, ExprID(42))
	p.AddFunc(p.Stmts.NewFunc(Pos{}, FuncData{ReturnType: "int", Name: "main", Body: []StmtID{ret}}))
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "dangling expression 42") {
		t.Fatalf("expected dangling expression error, got %v", err)
	}
}

func TestProgramValidate_BadTarget(t *testing.T) {
	p := NewProgram(Hints{})
	assign := p.Stmts.NewAssign(Pos{Line: 4, Col: 1}, p.Exprs.NewInt(Pos{}, 1), p.Exprs.NewInt(Pos{}, 2))
	p.AddFunc(p.Stmts.NewFunc(Pos{}, FuncData{ReturnType: "int", Name: "main", Body: []StmtID{assign}}))
	err := p.Validate()
	if err == nil || !strings.Contains(err.Error(), "4:1") {
		t.Fatalf("expected positioned target error, got %v", err)
	}
}

func TestAccessorsRejectWrongKind(t *testing.T) {
	p := NewProgram(Hints{})
	id := p.Exprs.NewInt(Pos{}, 1)
	if _, ok := p.Exprs.Real(id); ok {
		t.Fatalf("Real accessor accepted an int literal")
	}
	if data, ok := p.Exprs.Int(id); !ok || data.Value != 1 {
		t.Fatalf("Int accessor: got %+v, %v", data, ok)
	}
	if p.Exprs.Get(NoExprID) != nil {
		t.Fatalf("Get(NoExprID) should be nil")
	}
	ret := p.Stmts.NewReturn(Pos{}, NoExprID)
	if _, ok := p.Stmts.If(ret); ok {
		t.Fatalf("If accessor accepted a return")
	}
}

func TestLookupBinaryOp(t *testing.T) {
	for _, text := range []string{"+", "-", "*", "/", "div", "mod", "and", "or", "==", "!=", "<", "<=", ">", ">="} {
		op, ok := LookupBinaryOp(text)
		if !ok {
			t.Fatalf("operator %q not found", text)
		}
		if op.String() != text {
			t.Fatalf("round trip: %q -> %q", text, op.String())
		}
	}
	if _, ok := LookupBinaryOp("**"); ok {
		t.Fatalf("unexpected operator **")
	}
	if !BinaryLe.IsComparison() || BinaryOr.IsComparison() {
		t.Fatalf("IsComparison misclassifies operators")
	}
}

func TestPosString(t *testing.T) {
	if got := (Pos{}).String(); got != "-" {
		t.Fatalf("unknown pos: %q", got)
	}
	if got := (Pos{Line: 3, Col: 9}).String(); got != "3:9" {
		t.Fatalf("pos: %q", got)
	}
}
