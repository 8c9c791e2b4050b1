// Package codegen lowers an *ast.Program into an LLVM IR module.
//
// Lowering is a single top-down pass. Globals are declared first so every
// function can reference them; functions are lowered in source order and may
// call themselves or functions declared before them. A start function is
// synthesized that calls the user entry function.
package codegen

import (
	"context"
	"fmt"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"lowc/internal/ast"
	"lowc/internal/trace"
)

// runtimePrintf is the C formatting function every module declares.
const runtimePrintf = "printf"

const (
	fmtInt  = "%lld\n"
	fmtReal = "%lf\n"
	fmtStr  = "%s\n"
)

type generator struct {
	prog    *ast.Program
	opts    Options
	mod     *ir.Module
	syms    *Symbols
	funcs   map[string]*ir.Func
	printf  *ir.Func
	formats map[string]*ir.Global
	strs    map[string]*ir.Global
	names   map[string]int
}

// Assemble lowers prog into a new module. On failure no module is returned.
func Assemble(ctx context.Context, prog *ast.Program, opts Options) (*ir.Module, error) {
	g := &generator{
		prog:    prog,
		opts:    opts.withDefaults(),
		mod:     ir.NewModule(),
		syms:    NewSymbols(),
		funcs:   make(map[string]*ir.Func),
		formats: make(map[string]*ir.Global),
		strs:    make(map[string]*ir.Global),
		names:   make(map[string]int),
	}
	if err := g.assemble(ctx); err != nil {
		return nil, err
	}
	return g.mod, nil
}

func (g *generator) assemble(ctx context.Context) error {
	g.mod.SourceFilename = g.opts.SourceFilename
	g.mod.TargetTriple = g.opts.TargetTriple

	g.printf = g.mod.NewFunc(g.symbol(runtimePrintf), types.I32, ir.NewParam("format", i8ptr))
	g.printf.Sig.Variadic = true

	for _, id := range g.prog.Globals {
		if err := g.lowerGlobal(id); err != nil {
			return err
		}
	}
	for _, id := range g.prog.Funcs {
		if err := g.lowerFunc(ctx, id); err != nil {
			return err
		}
	}
	return g.synthesizeStart()
}

// symbol reserves a module-unique name derived from base.
func (g *generator) symbol(base string) string {
	n := g.names[base]
	g.names[base] = n + 1
	if n == 0 {
		return base
	}
	return base + "." + strconv.Itoa(n)
}

func (g *generator) lowerGlobal(id ast.StmtID) error {
	st := g.prog.Stmts.Get(id)
	if st == nil {
		return newError(UnsupportedOperation, "", ast.Pos{}, "missing global declaration %d", id)
	}
	switch st.Kind {
	case ast.StmtVarGroup:
		group, _ := g.prog.Stmts.VarGroup(id)
		for _, d := range group.Decls {
			if err := g.lowerGlobal(d); err != nil {
				return err
			}
		}
		return nil
	case ast.StmtVarDecl:
		decl, _ := g.prog.Stmts.VarDecl(id)
		s, err := storageFor(decl, st.Pos)
		if err != nil {
			return err
		}
		cell := s.CellType()
		gl := g.mod.NewGlobalDef(g.symbol(decl.Name), zeroValue(cell))
		gl.Linkage = enum.LinkageInternal
		s.Ptr = gl
		g.syms.Globals.Bind(s)
		return nil
	}
	return newError(UnsupportedOperation, "", st.Pos, "%s is not allowed at top level", st.Kind)
}

// storageFor validates a declaration and returns its unplaced storage.
func storageFor(decl *ast.VarDeclData, pos ast.Pos) (*Storage, error) {
	elem, err := typeOf(decl.TypeName, pos)
	if err != nil {
		return nil, err
	}
	switch decl.Kind {
	case ast.VarScalar, ast.VarArray:
	default:
		return nil, newError(UndefinedVariableKind, decl.Name, pos, "kind %d", decl.Kind)
	}
	if decl.Kind == ast.VarArray && decl.Length < 0 {
		return nil, newError(UnsupportedOperation, decl.Name, pos, "negative array length %d", decl.Length)
	}
	return &Storage{Name: decl.Name, Elem: elem, Kind: decl.Kind, Len: decl.Length}, nil
}

func (g *generator) lowerFunc(ctx context.Context, id ast.StmtID) (err error) {
	st := g.prog.Stmts.Get(id)
	decl, ok := g.prog.Stmts.Func(id)
	if !ok {
		return newError(UnsupportedOperation, "", ast.Pos{}, "top-level statement %d is not a function", id)
	}
	ret, err := typeOf(decl.ReturnType, st.Pos)
	if err != nil {
		return err
	}

	_, span := trace.Start(ctx, trace.ScopeFunction, "func:"+decl.Name)
	defer func() { span.End("", err) }()

	fs := &funcState{ret: ret, names: make(map[string]int)}
	storages := make([]*Storage, 0, len(decl.Params))
	params := make([]*ir.Param, 0, len(decl.Params))
	for _, pid := range decl.Params {
		pst := g.prog.Stmts.Get(pid)
		pdecl, ok := g.prog.Stmts.VarDecl(pid)
		if !ok {
			return newError(UnsupportedOperation, decl.Name, st.Pos, "parameter is not a declaration")
		}
		s, err := storageFor(pdecl, pst.Pos)
		if err != nil {
			return err
		}
		// Array parameters always arrive as element pointers.
		if s.Kind == ast.VarArray {
			s.Len = 0
		}
		params = append(params, ir.NewParam(fs.localName(pdecl.Name), s.CellType()))
		storages = append(storages, s)
	}

	fn := g.mod.NewFunc(g.symbol(decl.Name), ret, params...)
	fn.Linkage = enum.LinkageInternal
	g.funcs[decl.Name] = fn

	fs.fn = fn
	fs.entry = fn.NewBlock("entry")
	cx := fnCtx{st: fs, locals: NewTier(), block: fs.entry}

	for i, s := range storages {
		s.Ptr = fs.hoist(s.CellType(), s.Name+".addr")
		fs.entry.NewStore(params[i], s.Ptr)
		cx.locals.Bind(s)
	}

	if _, err = g.lowerStmts(cx, decl.Body); err != nil {
		return err
	}
	for _, b := range fn.Blocks {
		if b.Term == nil {
			b.NewRet(zeroValue(ret))
		}
	}
	span.WithExtra("blocks", strconv.Itoa(len(fn.Blocks)))
	return nil
}

func (g *generator) synthesizeStart() error {
	entry, ok := g.funcs[g.opts.Entry]
	if !ok {
		return newError(MissingEntryPoint, g.opts.Entry, ast.Pos{}, "program defines no %s function", g.opts.Entry)
	}
	start := g.mod.NewFunc(g.symbol(g.opts.Start), types.I64)
	b := start.NewBlock("entry")
	args := make([]value.Value, 0, len(entry.Params))
	for _, p := range entry.Params {
		args = append(args, zeroValue(p.Typ))
	}
	b.NewCall(entry, args...)
	b.NewRet(constant.NewInt(types.I64, 0))
	return nil
}

// format returns an i8* to the interned printf template text.
func (g *generator) format(text string) constant.Constant {
	gl, ok := g.formats[text]
	if !ok {
		name := "fmt.str"
		switch text {
		case fmtInt:
			name = "fmt.int"
		case fmtReal:
			name = "fmt.real"
		}
		gl = g.privateString(name, text)
		g.formats[text] = gl
	}
	return addrOfString(gl)
}

// stringPtr materializes a constant character array as a private global and
// returns the address of its first byte. Equal arrays share one global.
func (g *generator) stringPtr(arr *constant.CharArray) constant.Constant {
	key := string(arr.X)
	gl, ok := g.strs[key]
	if !ok {
		gl = g.mod.NewGlobalDef(g.symbol(fmt.Sprintf("str.%d", len(g.strs))), arr)
		gl.Linkage = enum.LinkagePrivate
		gl.Immutable = true
		g.strs[key] = gl
	}
	return addrOfString(gl)
}

func (g *generator) privateString(name, text string) *ir.Global {
	gl := g.mod.NewGlobalDef(g.symbol(name), constant.NewCharArrayFromString(text+"\x00"))
	gl.Linkage = enum.LinkagePrivate
	gl.Immutable = true
	return gl
}

func addrOfString(gl *ir.Global) constant.Constant {
	zero := constant.NewInt(types.I64, 0)
	return constant.NewGetElementPtr(gl.ContentType, gl, zero, zero)
}
