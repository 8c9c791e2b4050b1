// Package diagfmt renders diagnostic bags for terminals and tools.
package diagfmt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lowc/internal/diag"
)

// Pretty writes one block per diagnostic:
//
//	<path>:<line>:<col>: <severity> <CODE>: <message>
//	   | source line
//	   | ^
//
// Callers are expected to Sort the bag first.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	if bag == nil {
		return
	}
	paint := func(c *color.Color, s string) string {
		if !opts.Color {
			return s
		}
		c.EnableColor()
		return c.Sprint(s)
	}
	locColor := color.New(color.Bold)
	codeColor := color.New(color.Faint)
	gutter := color.New(color.FgBlue)
	caret := color.New(color.FgGreen, color.Bold)

	for _, d := range bag.Items() {
		loc := formatPath(d.Primary.File, opts.PathMode, opts.BaseDir)
		if d.Primary.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", loc, d.Primary.Line, d.Primary.Col)
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			paint(locColor, loc),
			paint(severityColor(d.Severity), d.Severity.String()),
			paint(codeColor, d.Code.ID()),
			d.Message)

		line, ok := sourceLine(opts.Sources[d.Primary.File], d.Primary.Line)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", paint(gutter, "   |"), line)
		if d.Primary.Col > 0 {
			pad := caretOffset(line, int(d.Primary.Col))
			fmt.Fprintf(w, "%s %s%s\n", paint(gutter, "   |"), strings.Repeat(" ", pad), paint(caret, "^"))
		}
	}
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	}
	return color.New(color.FgCyan)
}

func sourceLine(src []byte, line uint32) (string, bool) {
	if len(src) == 0 || line == 0 {
		return "", false
	}
	lines := bytes.Split(src, []byte("\n"))
	if int(line) > len(lines) {
		return "", false
	}
	return strings.TrimRight(string(lines[line-1]), "\r"), true
}

// caretOffset converts a 1-based byte column into display cells, so the
// caret lines up under wide characters and tabs.
func caretOffset(line string, col int) int {
	if col-1 > len(line) {
		col = len(line) + 1
	}
	prefix := line[:col-1]
	width := 0
	for _, r := range prefix {
		if r == '\t' {
			width += 4 - width%4
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}
