package diag

import (
	"errors"
	"fmt"
)

// Location points at a line/column in a file. Zero Line means the whole file.
type Location struct {
	File string
	Line uint32
	Col  uint32
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Location
}

func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary Location, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// Positioned is implemented by errors that know where in the input they occurred.
type Positioned interface {
	Position() (line, col uint32)
}

// FromError converts err into an error diagnostic for file. The code and
// position are taken from err when it carries them; fallback is used otherwise.
func FromError(file string, err error, fallback Code) Diagnostic {
	code := fallback
	var coded Coded
	if errors.As(err, &coded) {
		code = coded.Code()
	}
	loc := Location{File: file}
	var positioned Positioned
	if errors.As(err, &positioned) {
		loc.Line, loc.Col = positioned.Position()
	}
	return NewError(code, loc, err.Error())
}
