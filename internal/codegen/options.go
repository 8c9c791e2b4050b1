package codegen

import "fmt"

// WhileMode selects how a while loop decides to iterate again.
type WhileMode uint8

const (
	// WhileReevaluate lowers the condition again at the end of every iteration.
	WhileReevaluate WhileMode = iota
	// WhileStaleCondition branches on the value computed before the loop was
	// entered, so a loop that starts is never left through its condition.
	WhileStaleCondition
)

func (m WhileMode) String() string {
	switch m {
	case WhileReevaluate:
		return "reevaluate"
	case WhileStaleCondition:
		return "stale"
	}
	return "unknown"
}

func ParseWhileMode(s string) (WhileMode, error) {
	switch s {
	case "", "reevaluate":
		return WhileReevaluate, nil
	case "stale":
		return WhileStaleCondition, nil
	}
	return WhileReevaluate, fmt.Errorf("invalid while_condition %q (expected: reevaluate|stale)", s)
}

type Options struct {
	Entry          string // user entry function, default "main"
	Start          string // synthesized entry, default "_start"
	While          WhileMode
	TargetTriple   string
	SourceFilename string
}

func DefaultOptions() Options {
	return Options{Entry: "main", Start: "_start"}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Entry == "" {
		o.Entry = def.Entry
	}
	if o.Start == "" {
		o.Start = def.Start
	}
	return o
}
