package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// funcState is shared by every fnCtx of one function.
type funcState struct {
	fn      *ir.Func
	ret     types.Type
	entry   *ir.Block
	allocas int // allocas already hoisted to the head of entry
	seq     int // suffix for control-flow block names
	names   map[string]int
}

// fnCtx is the lowering cursor. It is passed by value; statement lowering
// returns the context positioned at the block that logically follows.
type fnCtx struct {
	st     *funcState
	locals *Tier
	block  *ir.Block
}

func (cx fnCtx) at(b *ir.Block) fnCtx {
	cx.block = b
	return cx
}

func (cx fnCtx) terminated() bool {
	return cx.block.Term != nil
}

// blocks creates one block per prefix, sharing a fresh numeric suffix.
func (st *funcState) blocks(prefixes ...string) []*ir.Block {
	st.seq++
	out := make([]*ir.Block, len(prefixes))
	for i, p := range prefixes {
		out[i] = st.fn.NewBlock(fmt.Sprintf("%s.%d", p, st.seq))
	}
	return out
}

// localName returns a function-unique name derived from base.
func (st *funcState) localName(base string) string {
	n := st.names[base]
	st.names[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s.%d", base, n)
}

// hoist places a new alloca after the previously hoisted ones in entry.
func (st *funcState) hoist(elem types.Type, name string) *ir.InstAlloca {
	a := ir.NewAlloca(elem)
	a.SetName(st.localName(name))
	insts := append(st.entry.Insts, nil)
	copy(insts[st.allocas+1:], insts[st.allocas:])
	insts[st.allocas] = a
	st.entry.Insts = insts
	st.allocas++
	return a
}
