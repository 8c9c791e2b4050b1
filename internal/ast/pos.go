package ast

import "fmt"

// Pos is a 1-based line/column position in the input the tree was decoded from.
// The zero Pos means the position is unknown.
type Pos struct {
	Line uint32
	Col  uint32
}

func (p Pos) IsKnown() bool { return p.Line != 0 }

func (p Pos) String() string {
	if !p.IsKnown() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}
