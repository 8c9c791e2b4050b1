// Package verify checks structural well-formedness of emitted IR modules.
package verify

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"lowc/internal/diag"
)

// Error is one violation found in a module.
type Error struct {
	Kind  diag.Code
	Func  string
	Block string
	Msg   string
}

func (e *Error) Error() string {
	if e.Block != "" {
		return fmt.Sprintf("@%s: %%%s: %s", e.Func, e.Block, e.Msg)
	}
	return fmt.Sprintf("@%s: %s", e.Func, e.Msg)
}

func (e *Error) Code() diag.Code { return e.Kind }

// Module checks every function of m and joins all violations.
func Module(m *ir.Module) error {
	var errs []error
	for _, f := range m.Funcs {
		errs = append(errs, Func(f)...)
	}
	return errors.Join(errs...)
}

// Func returns the violations found in f. Declarations (functions without
// blocks) are only valid with external linkage.
func Func(f *ir.Func) []error {
	name := f.Name()
	if len(f.Blocks) == 0 {
		if f.Linkage == enum.LinkageInternal || f.Linkage == enum.LinkagePrivate {
			return []error{&Error{Kind: diag.VfyEmptyFunction, Func: name, Msg: "local function has no body"}}
		}
		return nil
	}

	own := make(map[*ir.Block]struct{}, len(f.Blocks))
	for _, b := range f.Blocks {
		own[b] = struct{}{}
	}

	var errs []error
	for _, b := range f.Blocks {
		blockName := b.Name()
		if b.Term == nil {
			errs = append(errs, &Error{Kind: diag.VfyMissingTerminator, Func: name, Block: blockName, Msg: "block has no terminator"})
			continue
		}
		for _, succ := range b.Term.Succs() {
			if _, ok := own[succ]; !ok {
				errs = append(errs, &Error{
					Kind:  diag.VfyForeignBranch,
					Func:  name,
					Block: blockName,
					Msg:   fmt.Sprintf("branch to %%%s outside the function", succ.Name()),
				})
			}
		}
		if ret, ok := b.Term.(*ir.TermRet); ok {
			if msg := checkRet(ret, f.Sig.RetType); msg != "" {
				errs = append(errs, &Error{Kind: diag.VfyReturnMismatch, Func: name, Block: blockName, Msg: msg})
			}
		}
	}
	return errs
}

func checkRet(ret *ir.TermRet, want types.Type) string {
	if ret.X == nil {
		if !types.IsVoid(want) {
			return fmt.Sprintf("ret void in function returning %s", want)
		}
		return ""
	}
	if got := ret.X.Type(); !got.Equal(want) {
		return fmt.Sprintf("ret %s in function returning %s", got, want)
	}
	return ""
}
