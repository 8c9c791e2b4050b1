package verify

import (
	"errors"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"lowc/internal/diag"
)

func codes(err error) []diag.Code {
	var out []diag.Code
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var ve *Error
			if errors.As(e, &ve) {
				out = append(out, ve.Kind)
			}
		}
	}
	return out
}

func TestModule_WellFormed(t *testing.T) {
	m := ir.NewModule()
	printf := m.NewFunc("printf", types.I32, ir.NewParam("format", types.NewPointer(types.I8)))
	printf.Sig.Variadic = true

	f := m.NewFunc("main", types.I64)
	entry := f.NewBlock("entry")
	exit := f.NewBlock("exit")
	entry.NewBr(exit)
	exit.NewRet(constant.NewInt(types.I64, 0))

	if err := Module(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestModule_Violations(t *testing.T) {
	m := ir.NewModule()

	other := m.NewFunc("other", types.I64)
	foreign := other.NewBlock("foreign")
	foreign.NewRet(constant.NewInt(types.I64, 1))

	f := m.NewFunc("main", types.I64)
	entry := f.NewBlock("entry")
	entry.NewBr(foreign)
	open := f.NewBlock("open")
	_ = open
	bad := f.NewBlock("bad")
	bad.NewRet(constant.NewFloat(types.Double, 1))

	decl := m.NewFunc("helper", types.I64)
	decl.Linkage = enum.LinkageInternal

	err := Module(m)
	if err == nil {
		t.Fatalf("expected violations")
	}
	got := codes(err)
	want := []diag.Code{diag.VfyForeignBranch, diag.VfyMissingTerminator, diag.VfyReturnMismatch, diag.VfyEmptyFunction}
	if len(got) != len(want) {
		t.Fatalf("got codes %v, want %v (%v)", got, want, err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("code %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
