package astio

import (
	"fmt"

	"lowc/internal/diag"
	"lowc/internal/sexpr"
)

// Error is a decoding failure at a position of the interchange text.
type Error struct {
	Pos  sexpr.Pos
	Kind diag.Code
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (e *Error) Code() diag.Code { return e.Kind }

func (e *Error) Position() (line, col uint32) {
	return uint32(max(e.Pos.Line, 0)), uint32(max(e.Pos.Col, 0))
}
