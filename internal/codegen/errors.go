package codegen

import (
	"errors"
	"fmt"
	"strings"

	"lowc/internal/ast"
	"lowc/internal/diag"
)

// ErrorKind classifies lowering failures. Every kind is fatal for the program.
type ErrorKind uint8

const (
	UnknownTypeIdentifier ErrorKind = iota + 1
	UndeclaredVariable
	NonIntegerIndex
	UndefinedVariableKind
	UnknownFunction
	MissingEntryPoint
	UnsupportedOperation
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownTypeIdentifier:
		return "unknown type identifier"
	case UndeclaredVariable:
		return "undeclared variable"
	case NonIntegerIndex:
		return "non-integer index"
	case UndefinedVariableKind:
		return "undefined variable kind"
	case UnknownFunction:
		return "unknown function"
	case MissingEntryPoint:
		return "missing entry point"
	case UnsupportedOperation:
		return "unsupported operation"
	}
	return "unknown error"
}

func (k ErrorKind) Code() diag.Code {
	switch k {
	case UnknownTypeIdentifier:
		return diag.CGUnknownTypeIdentifier
	case UndeclaredVariable:
		return diag.CGUndeclaredVariable
	case NonIntegerIndex:
		return diag.CGNonIntegerIndex
	case UndefinedVariableKind:
		return diag.CGUndefinedVariableKind
	case UnknownFunction:
		return diag.CGUnknownFunction
	case MissingEntryPoint:
		return diag.CGMissingEntryPoint
	case UnsupportedOperation:
		return diag.CGUnsupportedOperation
	}
	return diag.UnknownCode
}

// Error is returned by Assemble. Name is the offending identifier, if any.
type Error struct {
	Kind   ErrorKind
	Name   string
	Pos    ast.Pos
	Detail string
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Pos.IsKnown() {
		fmt.Fprintf(&sb, "%s: ", e.Pos)
	}
	sb.WriteString(e.Kind.String())
	if e.Name != "" {
		fmt.Fprintf(&sb, " %q", e.Name)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

func (e *Error) Code() diag.Code { return e.Kind.Code() }

func (e *Error) Position() (line, col uint32) { return e.Pos.Line, e.Pos.Col }

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func newError(kind ErrorKind, name string, pos ast.Pos, format string, args ...any) *Error {
	e := &Error{Kind: kind, Name: name, Pos: pos}
	if format != "" {
		e.Detail = fmt.Sprintf(format, args...)
	}
	return e
}
