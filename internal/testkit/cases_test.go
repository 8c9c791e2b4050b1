package testkit

import (
	"testing"
)

const sample = "# Lowering\n\n" +
	"Prose is ignored.\n\n" +
	"## Test: counter\n\n" +
	"```sx\n(program)\n```\n\n" +
	"```options\nwhile = stale\n```\n\n" +
	"```ir\ndefine i64 @main()\n  ret i64 0\n```\n\n" +
	"```output\n1\n2\n```\n\n" +
	"## Test: broken\n\n" +
	"```sx\n(program (funcs))\n```\n\n" +
	"```error\nmissing entry point\n```\n"

func TestExtractCases(t *testing.T) {
	cases, err := ExtractCases([]byte(sample))
	if err != nil {
		t.Fatalf("ExtractCases: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(cases))
	}

	c := cases[0]
	if c.Name != "counter" || c.Source != "(program)\n" {
		t.Fatalf("unexpected first case: %+v", c)
	}
	if c.Options["while"] != "stale" {
		t.Fatalf("options = %v", c.Options)
	}
	if len(c.IR) != 2 || c.IR[1] != "ret i64 0" {
		t.Fatalf("ir = %q", c.IR)
	}
	if c.Output == nil || *c.Output != "1\n2\n" {
		t.Fatalf("output = %v", c.Output)
	}
	if cases[1].Error != "missing entry point" || cases[1].Output != nil {
		t.Fatalf("unexpected second case: %+v", cases[1])
	}
	if cases[1].Line <= c.Line {
		t.Fatalf("lines not increasing: %d then %d", c.Line, cases[1].Line)
	}
}

func TestExtractCasesErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no source", "## Test: a\n\n```output\nx\n```\n"},
		{"no expectations", "## Test: a\n\n```sx\n(program)\n```\n"},
		{"unknown fence", "## Test: a\n\n```sx\n(program)\n```\n\n```wat\n```\n"},
		{"stray fence", "```sx\n(program)\n```\n"},
		{"two sources", "## Test: a\n\n```sx\n(program)\n```\n\n```sx\n(program)\n```\n"},
		{"bad option", "## Test: a\n\n```sx\n(program)\n```\n\n```options\nwhile\n```\n\n```error\nx\n```\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractCases([]byte(tt.doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
