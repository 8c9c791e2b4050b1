package sexpr

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestParse_Atoms(t *testing.T) {
	n, err := Parse(`(print 42 -7 2.5 1e3 "hi\n" <= x)`)
	be.Err(t, err, nil)
	be.Equal(t, n.Type, NodeList)
	be.Equal(t, n.Head(), "print")

	args := n.Args()
	be.Equal(t, len(args), 7)
	be.Equal(t, args[0].Type, NodeInteger)
	be.Equal(t, args[0].Int, int64(42))
	be.Equal(t, args[1].Int, int64(-7))
	be.Equal(t, args[2].Type, NodeReal)
	be.Equal(t, args[2].Real, 2.5)
	be.Equal(t, args[3].Type, NodeReal)
	be.Equal(t, args[3].Real, 1000.0)
	be.Equal(t, args[4].Type, NodeString)
	be.Equal(t, args[4].Text, "hi\n")
	be.True(t, args[5].IsSymbol("<="))
	be.True(t, args[6].IsSymbol("x"))
}

func TestParse_OperatorSymbols(t *testing.T) {
	n, err := Parse(`(- a b)`)
	be.Err(t, err, nil)
	be.Equal(t, n.Head(), "-")
	be.Equal(t, n.String(), "(- a b)")
}

func TestParse_Positions(t *testing.T) {
	src := "; header\n(program\n  (globals (var int x)))"
	n, err := Parse(src)
	be.Err(t, err, nil)
	be.Equal(t, n.Pos, Pos{Line: 2, Col: 1})
	globals := n.Args()[0]
	be.Equal(t, globals.Pos, Pos{Line: 3, Col: 3})
	decl := globals.Args()[0]
	be.Equal(t, decl.Args()[1].Pos, Pos{Line: 3, Col: 21})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unclosed", "(a (b c)", "1:1: unclosed '('"},
		{"stray close", ")", "1:1: unexpected ')'"},
		{"unterminated string", `(print "abc`, "1:8: unterminated string"},
		{"bad escape", `"\q"`, `unknown escape \q`},
		{"empty", "  ; nothing\n", "empty input"},
		{"trailing", "(a) (b)", "1:5: expected EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			be.Err(t, err, tt.want)
		})
	}
}

func TestParseAll(t *testing.T) {
	nodes, err := ParseAll("a (b) \"c\"")
	be.Err(t, err, nil)
	be.Equal(t, len(nodes), 3)
	be.Equal(t, nodes[2].String(), `"c"`)
}
