package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Input and output
	IOInfo          Code = 1000
	IOLoadFileError Code = 1001
	IOWriteError    Code = 1002
	IOCacheError    Code = 1003

	// AST interchange decoding
	ASTInfo            Code = 2000
	ASTSyntax          Code = 2001
	ASTBadForm         Code = 2002
	ASTBadLiteral      Code = 2003
	ASTUnknownOperator Code = 2004
	ASTInvalidTree     Code = 2005

	// Code generation
	CGInfo                  Code = 4000
	CGUnknownTypeIdentifier Code = 4001
	CGUndeclaredVariable    Code = 4002
	CGNonIntegerIndex       Code = 4003
	CGUndefinedVariableKind Code = 4004
	CGUnknownFunction       Code = 4005
	CGMissingEntryPoint     Code = 4006
	CGUnsupportedOperation  Code = 4007

	// IR verification
	VfyInfo              Code = 5000
	VfyEmptyFunction     Code = 5001
	VfyMissingTerminator Code = 5002
	VfyForeignBranch     Code = 5003
	VfyReturnMismatch    Code = 5004

	// Configuration
	CfgInfo    Code = 6000
	CfgInvalid Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	IOInfo:                  "I/O information",
	IOLoadFileError:         "I/O load file error",
	IOWriteError:            "I/O write error",
	IOCacheError:            "Artifact cache error",
	ASTInfo:                 "AST information",
	ASTSyntax:               "Malformed S-expression",
	ASTBadForm:              "Unexpected AST form",
	ASTBadLiteral:           "Invalid literal",
	ASTUnknownOperator:      "Unknown operator",
	ASTInvalidTree:          "AST is not a tree",
	CGInfo:                  "Code generation information",
	CGUnknownTypeIdentifier: "Unknown type identifier",
	CGUndeclaredVariable:    "Undeclared variable",
	CGNonIntegerIndex:       "Array index is not an integer",
	CGUndefinedVariableKind: "Undefined variable kind",
	CGUnknownFunction:       "Unknown function",
	CGMissingEntryPoint:     "Missing entry point",
	CGUnsupportedOperation:  "Unsupported operation",
	VfyInfo:                 "Verifier information",
	VfyEmptyFunction:        "Function definition has no blocks",
	VfyMissingTerminator:    "Basic block has no terminator",
	VfyForeignBranch:        "Branch target belongs to another function",
	VfyReturnMismatch:       "Return type does not match signature",
	CfgInfo:                 "Configuration information",
	CfgInvalid:              "Invalid configuration",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("AST%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CG%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("VFY%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Coded is implemented by errors that map onto a diagnostic code.
type Coded interface {
	error
	Code() Code
}
