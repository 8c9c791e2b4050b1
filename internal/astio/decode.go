// Package astio decodes the S-expression interchange form of a program into
// an *ast.Program.
package astio

import (
	"errors"
	"fmt"
	"io"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"lowc/internal/ast"
	"lowc/internal/diag"
	"lowc/internal/sexpr"
)

// Read decodes one program from r.
func Read(r io.Reader) (*ast.Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(string(data))
}

// Decode parses src and builds the program tree. The result is validated
// with (*ast.Program).Validate before it is returned.
func Decode(src string) (*ast.Program, error) {
	root, err := sexpr.Parse(src)
	if err != nil {
		var se *sexpr.Error
		if errors.As(err, &se) {
			return nil, &Error{Pos: se.Pos, Kind: diag.ASTSyntax, Msg: se.Msg}
		}
		return nil, err
	}

	d := &decoder{prog: ast.NewProgram(ast.Hints{})}
	if err := d.program(root); err != nil {
		return nil, err
	}
	if err := d.prog.Validate(); err != nil {
		return nil, &Error{Pos: root.Pos, Kind: diag.ASTInvalidTree, Msg: err.Error()}
	}
	return d.prog, nil
}

type decoder struct {
	prog *ast.Program
}

func (d *decoder) fail(n *sexpr.Node, code diag.Code, format string, args ...any) error {
	return &Error{Pos: n.Pos, Kind: code, Msg: fmt.Sprintf(format, args...)}
}

func pos(n *sexpr.Node) ast.Pos {
	line, err := safecast.Conv[uint32](n.Pos.Line)
	if err != nil {
		return ast.Pos{}
	}
	col, err := safecast.Conv[uint32](n.Pos.Col)
	if err != nil {
		return ast.Pos{Line: line}
	}
	return ast.Pos{Line: line, Col: col}
}

// name reads a symbol and normalises it to NFC.
func (d *decoder) name(n *sexpr.Node, what string) (string, error) {
	if n.Type != sexpr.NodeSymbol {
		return "", d.fail(n, diag.ASTBadForm, "expected %s name, got %s", what, n.Type)
	}
	return norm.NFC.String(n.Text), nil
}

func (d *decoder) expectList(n *sexpr.Node, head string, minArgs int) error {
	if n.Head() != head {
		return d.fail(n, diag.ASTBadForm, "expected (%s ...), got %s", head, n)
	}
	if len(n.Args()) < minArgs {
		return d.fail(n, diag.ASTBadForm, "(%s) needs at least %d operands", head, minArgs)
	}
	return nil
}

func (d *decoder) program(root *sexpr.Node) error {
	if err := d.expectList(root, "program", 0); err != nil {
		return err
	}
	for _, section := range root.Args() {
		switch section.Head() {
		case "globals":
			for _, n := range section.Args() {
				id, err := d.decl(n)
				if err != nil {
					return err
				}
				d.prog.AddGlobal(id)
			}
		case "funcs":
			for _, n := range section.Args() {
				id, err := d.function(n)
				if err != nil {
					return err
				}
				d.prog.AddFunc(id)
			}
		default:
			return d.fail(section, diag.ASTBadForm, "unknown program section %s", section)
		}
	}
	return nil
}

func isDecl(n *sexpr.Node) bool {
	switch n.Head() {
	case "var", "array", "vars":
		return true
	}
	return false
}

func (d *decoder) decl(n *sexpr.Node) (ast.StmtID, error) {
	args := n.Args()
	switch n.Head() {
	case "var":
		if len(args) != 2 {
			return ast.NoStmtID, d.fail(n, diag.ASTBadForm, "(var TYPE NAME) takes 2 operands")
		}
		typ, err := d.name(args[0], "type")
		if err != nil {
			return ast.NoStmtID, err
		}
		name, err := d.name(args[1], "variable")
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.prog.Stmts.NewVarDecl(pos(n), ast.VarDeclData{TypeName: typ, Name: name, Kind: ast.VarScalar}), nil
	case "array":
		if len(args) != 3 {
			return ast.NoStmtID, d.fail(n, diag.ASTBadForm, "(array TYPE NAME LEN) takes 3 operands")
		}
		typ, err := d.name(args[0], "type")
		if err != nil {
			return ast.NoStmtID, err
		}
		name, err := d.name(args[1], "variable")
		if err != nil {
			return ast.NoStmtID, err
		}
		if args[2].Type != sexpr.NodeInteger || args[2].Int < 0 {
			return ast.NoStmtID, d.fail(args[2], diag.ASTBadLiteral, "array length must be a non-negative integer, got %s", args[2])
		}
		return d.prog.Stmts.NewVarDecl(pos(n), ast.VarDeclData{
			TypeName: typ,
			Name:     name,
			Kind:     ast.VarArray,
			Length:   args[2].Int,
		}), nil
	case "vars":
		decls := make([]ast.StmtID, 0, len(args))
		for _, a := range args {
			id, err := d.decl(a)
			if err != nil {
				return ast.NoStmtID, err
			}
			decls = append(decls, id)
		}
		return d.prog.Stmts.NewVarGroup(pos(n), decls), nil
	}
	return ast.NoStmtID, d.fail(n, diag.ASTBadForm, "expected a declaration, got %s", n)
}

func (d *decoder) function(n *sexpr.Node) (ast.StmtID, error) {
	if err := d.expectList(n, "func", 3); err != nil {
		return ast.NoStmtID, err
	}
	args := n.Args()
	ret, err := d.name(args[0], "type")
	if err != nil {
		return ast.NoStmtID, err
	}
	name, err := d.name(args[1], "function")
	if err != nil {
		return ast.NoStmtID, err
	}
	if args[2].Type != sexpr.NodeList {
		return ast.NoStmtID, d.fail(args[2], diag.ASTBadForm, "expected parameter list, got %s", args[2])
	}
	params := make([]ast.StmtID, 0, len(args[2].Items))
	for _, p := range args[2].Items {
		if p.Head() != "var" && p.Head() != "array" {
			return ast.NoStmtID, d.fail(p, diag.ASTBadForm, "parameter must be (var ...) or (array ...), got %s", p)
		}
		id, err := d.decl(p)
		if err != nil {
			return ast.NoStmtID, err
		}
		params = append(params, id)
	}
	body, err := d.stmts(args[3:])
	if err != nil {
		return ast.NoStmtID, err
	}
	return d.prog.Stmts.NewFunc(pos(n), ast.FuncData{
		ReturnType: ret,
		Name:       name,
		Params:     params,
		Body:       body,
	}), nil
}

func (d *decoder) stmts(nodes []*sexpr.Node) ([]ast.StmtID, error) {
	out := make([]ast.StmtID, 0, len(nodes))
	for _, n := range nodes {
		id, err := d.stmt(n)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// block decodes a parenthesised statement list such as the arms of an if.
func (d *decoder) block(n *sexpr.Node) ([]ast.StmtID, error) {
	if n.Type != sexpr.NodeList || n.Head() != "" {
		return nil, d.fail(n, diag.ASTBadForm, "expected a statement list, got %s", n)
	}
	return d.stmts(n.Items)
}

func (d *decoder) stmt(n *sexpr.Node) (ast.StmtID, error) {
	if isDecl(n) {
		return d.decl(n)
	}
	args := n.Args()
	p := pos(n)
	switch n.Head() {
	case "assign":
		if len(args) != 2 {
			return ast.NoStmtID, d.fail(n, diag.ASTBadForm, "(assign REF EXPR) takes 2 operands")
		}
		target, err := d.ref(args[0])
		if err != nil {
			return ast.NoStmtID, err
		}
		value, err := d.expr(args[1])
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.prog.Stmts.NewAssign(p, target, value), nil
	case "expr":
		if len(args) != 1 {
			return ast.NoStmtID, d.fail(n, diag.ASTBadForm, "(expr EXPR) takes 1 operand")
		}
		e, err := d.expr(args[0])
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.prog.Stmts.NewExprStmt(p, e), nil
	case "if":
		if len(args) < 2 || len(args) > 3 {
			return ast.NoStmtID, d.fail(n, diag.ASTBadForm, "(if EXPR (THEN...) [(ELSE...)]) takes 2 or 3 operands")
		}
		cond, err := d.expr(args[0])
		if err != nil {
			return ast.NoStmtID, err
		}
		then, err := d.block(args[1])
		if err != nil {
			return ast.NoStmtID, err
		}
		var els []ast.StmtID
		if len(args) == 3 {
			if els, err = d.block(args[2]); err != nil {
				return ast.NoStmtID, err
			}
		}
		return d.prog.Stmts.NewIf(p, ast.IfData{Cond: cond, Then: then, Else: els}), nil
	case "for":
		if len(args) < 4 {
			return ast.NoStmtID, d.fail(n, diag.ASTBadForm, "(for REF INIT UNTIL STEP BODY...) needs at least 4 operands")
		}
		v, err := d.ref(args[0])
		if err != nil {
			return ast.NoStmtID, err
		}
		init, err := d.expr(args[1])
		if err != nil {
			return ast.NoStmtID, err
		}
		until, err := d.expr(args[2])
		if err != nil {
			return ast.NoStmtID, err
		}
		step := ast.NoExprID
		if !args[3].IsSymbol("_") {
			if step, err = d.expr(args[3]); err != nil {
				return ast.NoStmtID, err
			}
		}
		body, err := d.stmts(args[4:])
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.prog.Stmts.NewFor(p, ast.ForData{Var: v, Init: init, Until: until, Step: step, Body: body}), nil
	case "while":
		if len(args) < 1 {
			return ast.NoStmtID, d.fail(n, diag.ASTBadForm, "(while EXPR BODY...) needs a condition")
		}
		cond, err := d.expr(args[0])
		if err != nil {
			return ast.NoStmtID, err
		}
		body, err := d.stmts(args[1:])
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.prog.Stmts.NewWhile(p, ast.WhileData{Cond: cond, Body: body}), nil
	case "print":
		exprs, err := d.exprs(args)
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.prog.Stmts.NewPrint(p, exprs), nil
	case "read":
		targets := make([]ast.ExprID, 0, len(args))
		for _, a := range args {
			id, err := d.ref(a)
			if err != nil {
				return ast.NoStmtID, err
			}
			targets = append(targets, id)
		}
		return d.prog.Stmts.NewRead(p, targets), nil
	case "return":
		switch len(args) {
		case 0:
			return d.prog.Stmts.NewReturn(p, ast.NoExprID), nil
		case 1:
			v, err := d.expr(args[0])
			if err != nil {
				return ast.NoStmtID, err
			}
			return d.prog.Stmts.NewReturn(p, v), nil
		}
		return ast.NoStmtID, d.fail(n, diag.ASTBadForm, "(return [EXPR]) takes at most 1 operand")
	case "func":
		return d.function(n)
	}
	return ast.NoStmtID, d.fail(n, diag.ASTBadForm, "expected a statement, got %s", n)
}

func (d *decoder) ref(n *sexpr.Node) (ast.ExprID, error) {
	args := n.Args()
	switch n.Head() {
	case "ref":
		if len(args) != 1 {
			return ast.NoExprID, d.fail(n, diag.ASTBadForm, "(ref NAME) takes 1 operand")
		}
		name, err := d.name(args[0], "variable")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.prog.Exprs.NewVar(pos(n), name), nil
	case "index":
		if len(args) != 2 {
			return ast.NoExprID, d.fail(n, diag.ASTBadForm, "(index NAME EXPR) takes 2 operands")
		}
		name, err := d.name(args[0], "variable")
		if err != nil {
			return ast.NoExprID, err
		}
		idx, err := d.expr(args[1])
		if err != nil {
			return ast.NoExprID, err
		}
		return d.prog.Exprs.NewIndex(pos(n), name, idx), nil
	}
	return ast.NoExprID, d.fail(n, diag.ASTBadForm, "expected (ref NAME) or (index NAME EXPR), got %s", n)
}

func (d *decoder) exprs(nodes []*sexpr.Node) ([]ast.ExprID, error) {
	out := make([]ast.ExprID, 0, len(nodes))
	for _, n := range nodes {
		id, err := d.expr(n)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (d *decoder) expr(n *sexpr.Node) (ast.ExprID, error) {
	p := pos(n)
	switch n.Type {
	case sexpr.NodeInteger:
		return d.prog.Exprs.NewInt(p, n.Int), nil
	case sexpr.NodeReal:
		return d.prog.Exprs.NewReal(p, n.Real), nil
	case sexpr.NodeString:
		return d.prog.Exprs.NewStringLit(p, n.Text), nil
	case sexpr.NodeSymbol:
		return d.prog.Exprs.NewIdent(p, norm.NFC.String(n.Text)), nil
	}

	head := n.Head()
	args := n.Args()
	switch head {
	case "":
		return ast.NoExprID, d.fail(n, diag.ASTBadForm, "expected an expression, got %s", n)
	case "ref", "index":
		return d.ref(n)
	case "call":
		if len(args) < 1 {
			return ast.NoExprID, d.fail(n, diag.ASTBadForm, "(call NAME ARGS...) needs a callee")
		}
		callee, err := d.name(args[0], "function")
		if err != nil {
			return ast.NoExprID, err
		}
		callArgs, err := d.exprs(args[1:])
		if err != nil {
			return ast.NoExprID, err
		}
		return d.prog.Exprs.NewCall(p, callee, callArgs), nil
	case "neg", "not":
		if len(args) != 1 {
			return ast.NoExprID, d.fail(n, diag.ASTBadForm, "(%s EXPR) takes 1 operand", head)
		}
		operand, err := d.expr(args[0])
		if err != nil {
			return ast.NoExprID, err
		}
		op := ast.UnaryNeg
		if head == "not" {
			op = ast.UnaryNot
		}
		return d.prog.Exprs.NewUnary(p, op, operand), nil
	}

	op, ok := ast.LookupBinaryOp(head)
	if !ok {
		return ast.NoExprID, d.fail(n.Items[0], diag.ASTUnknownOperator, "unknown operator %q", head)
	}
	if len(args) != 2 {
		return ast.NoExprID, d.fail(n, diag.ASTBadForm, "(%s A B) takes 2 operands", head)
	}
	left, err := d.expr(args[0])
	if err != nil {
		return ast.NoExprID, err
	}
	right, err := d.expr(args[1])
	if err != nil {
		return ast.NoExprID, err
	}
	return d.prog.Exprs.NewBinary(p, op, left, right), nil
}
