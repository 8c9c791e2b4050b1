package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(8)
	b.Add(NewError(CGUnknownFunction, Location{File: "b.sx", Line: 1, Col: 1}, "foo"))
	b.Add(NewError(CGUndeclaredVariable, Location{File: "a.sx", Line: 9, Col: 2}, "y"))
	b.Add(NewError(CGUndeclaredVariable, Location{File: "a.sx", Line: 2, Col: 5}, "x"))
	b.Add(NewError(CGUndeclaredVariable, Location{File: "a.sx", Line: 2, Col: 5}, "x again"))

	b.Sort()
	b.Dedup()

	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 diagnostics after dedup, got %d", len(items))
	}
	if items[0].Primary.Line != 2 || items[1].Primary.Line != 9 || items[2].Primary.File != "b.sx" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(1)
	if !b.Add(Diagnostic{Severity: SevWarning}) {
		t.Fatalf("first add should succeed")
	}
	if b.Add(Diagnostic{Severity: SevError}) {
		t.Fatalf("second add should hit the limit")
	}
	if b.HasErrors() {
		t.Fatalf("dropped diagnostic must not count")
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		IOLoadFileError:        "IO1001",
		ASTBadForm:             "AST2002",
		CGUnsupportedOperation: "CG4007",
		VfyMissingTerminator:   "VFY5002",
		CfgInvalid:             "CFG6001",
		UnknownCode:            "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Fatalf("%d: want %s, got %s", code, want, got)
		}
	}
	if got := Code(4999).Title(); got != "Unknown error" {
		t.Fatalf("unexpected title for unregistered code: %q", got)
	}
}

type codedErr struct{ line, col uint32 }

func (e codedErr) Error() string                { return "boom" }
func (e codedErr) Code() Code                   { return CGMissingEntryPoint }
func (e codedErr) Position() (line, col uint32) { return e.line, e.col }

func TestFromError(t *testing.T) {
	d := FromError("m.sx", fmt.Errorf("lower: %w", codedErr{line: 3, col: 4}), UnknownCode)
	if d.Code != CGMissingEntryPoint || d.Primary.Line != 3 || d.Primary.Col != 4 {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
	plain := FromError("m.sx", errors.New("disk"), IOLoadFileError)
	if plain.Code != IOLoadFileError || plain.Primary.String() != "m.sx" {
		t.Fatalf("unexpected fallback diagnostic: %+v", plain)
	}
}
