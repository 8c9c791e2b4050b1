package irexec

import (
	"errors"
	"fmt"
	"strings"
)

type PanicCode uint8

const (
	PanicUnimplemented PanicCode = iota + 1
	PanicNullDeref
	PanicOutOfBounds
	PanicDivByZero
	PanicStepLimit
	PanicStackOverflow
	PanicNoFunction
)

func (c PanicCode) String() string {
	switch c {
	case PanicUnimplemented:
		return "unimplemented"
	case PanicNullDeref:
		return "null dereference"
	case PanicOutOfBounds:
		return "out of bounds"
	case PanicDivByZero:
		return "division by zero"
	case PanicStepLimit:
		return "step limit exceeded"
	case PanicStackOverflow:
		return "stack overflow"
	case PanicNoFunction:
		return "no such function"
	}
	return "unknown"
}

// ErrStepLimit matches VMErrors raised when a program runs too long.
var ErrStepLimit = errors.New("irexec: step limit exceeded")

// VMError is a runtime failure with the call stack at the point it occurred.
type VMError struct {
	Code      PanicCode
	Message   string
	Backtrace []string // innermost first, "func/block"
}

func (e *VMError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "panic %s: %s", e.Code, e.Message)
	if len(e.Backtrace) > 0 {
		fmt.Fprintf(&sb, " (in %s)", strings.Join(e.Backtrace, " <- "))
	}
	return sb.String()
}

func (e *VMError) Is(target error) bool {
	return target == ErrStepLimit && e.Code == PanicStepLimit
}
