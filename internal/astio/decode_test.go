package astio

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"lowc/internal/ast"
	"lowc/internal/diag"
)

const counterSrc = `
(program
  (globals (var int x) (array real buf 4))
  (funcs
    (func int main ()
      (var int i)
      (assign (ref x) 5)
      (for (ref i) 1 3 1
        (print (ref i)))
      (if (< (ref x) 10) ((print "small")) ())
      (return 0))))
`

func TestDecode_Counter(t *testing.T) {
	prog, err := Decode(counterSrc)
	be.Err(t, err, nil)
	be.Equal(t, len(prog.Globals), 2)
	be.Equal(t, len(prog.Funcs), 1)

	buf, ok := prog.Stmts.VarDecl(prog.Globals[1])
	be.True(t, ok)
	be.Equal(t, buf.Kind, ast.VarArray)
	be.Equal(t, buf.Length, int64(4))
	be.Equal(t, buf.TypeName, "real")

	_, fn, ok := prog.FuncByName("main")
	be.True(t, ok)
	be.Equal(t, fn.ReturnType, "int")
	be.Equal(t, len(fn.Body), 5)

	loop, ok := prog.Stmts.For(fn.Body[2])
	be.True(t, ok)
	be.True(t, loop.Step.IsValid())
	be.Equal(t, len(loop.Body), 1)

	cond, ok := prog.Stmts.If(fn.Body[3])
	be.True(t, ok)
	be.Equal(t, len(cond.Then), 1)
	be.Equal(t, len(cond.Else), 0)
	bin, ok := prog.Exprs.Binary(cond.Cond)
	be.True(t, ok)
	be.Equal(t, bin.Op, ast.BinaryLt)
}

func TestDecode_Positions(t *testing.T) {
	prog, err := Decode("(program\n (funcs\n  (func int main () (return 7))))")
	be.Err(t, err, nil)
	st := prog.Stmts.Get(prog.Funcs[0])
	be.Equal(t, st.Pos, ast.Pos{Line: 3, Col: 3})
}

func TestDecode_ForWithoutStep(t *testing.T) {
	prog, err := Decode(`(program (funcs (func int main () (var int i) (for (ref i) 0 2 _ (print (ref i))))))`)
	be.Err(t, err, nil)
	_, fn, _ := prog.FuncByName("main")
	loop, ok := prog.Stmts.For(fn.Body[1])
	be.True(t, ok)
	be.True(t, !loop.Step.IsValid())
}

func TestDecode_NormalisesIdentifiers(t *testing.T) {
	// "é" spelled as e + combining acute and as the precomposed rune.
	src := "(program (globals (var int cafe\u0301)) (funcs (func int main () (assign (ref caf\u00e9) 1))))"
	prog, err := Decode(src)
	be.Err(t, err, nil)
	decl, _ := prog.Stmts.VarDecl(prog.Globals[0])
	_, fn, _ := prog.FuncByName("main")
	assign, _ := prog.Stmts.Assign(fn.Body[0])
	target, _ := prog.Exprs.Var(assign.Target)
	be.Equal(t, decl.Name, target.Name)
	be.Equal(t, decl.Name, "caf\u00e9")
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
		want string
	}{
		{"syntax", "(program", diag.ASTSyntax, "unclosed"},
		{"not a program", "(module)", diag.ASTBadForm, "expected (program"},
		{"bad operator", "(program (funcs (func int main () (expr (** 1 2)))))", diag.ASTUnknownOperator, `unknown operator "**"`},
		{"negative length", "(program (globals (array int a -1)))", diag.ASTBadLiteral, "non-negative"},
		{"bad target", "(program (funcs (func int main () (assign 1 2))))", diag.ASTBadForm, "expected (ref NAME)"},
		{"bad arm", "(program (funcs (func int main () (if 1 (print 1)))))", diag.ASTBadForm, "statement list"},
		{"unknown stmt", "(program (funcs (func int main () (goto x))))", diag.ASTBadForm, "expected a statement"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.src)
			be.Err(t, err, tt.want)
			var de *Error
			be.True(t, errors.As(err, &de))
			be.Equal(t, de.Code(), tt.code)
		})
	}
}

func TestRead(t *testing.T) {
	prog, err := Read(strings.NewReader("(program)"))
	be.Err(t, err, nil)
	be.Equal(t, len(prog.Funcs), 0)
}
