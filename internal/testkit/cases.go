// Package testkit extracts lowering test cases from markdown documents.
//
// A case starts at a heading "Test: NAME" and is followed by fenced blocks:
//
//	sx      the program in S-expression form (required, once)
//	options key = value lines passed to the case runner
//	ir      lines that must each appear in the printed module
//	output  expected stdout when the module is executed
//	error   a substring of the expected lowering error
package testkit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	mdast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type FenceKind string

const (
	FenceSource  FenceKind = "sx"
	FenceOptions FenceKind = "options"
	FenceIR      FenceKind = "ir"
	FenceOutput  FenceKind = "output"
	FenceError   FenceKind = "error"
)

// Case is one extracted test.
type Case struct {
	Name    string
	Line    int
	Source  string
	Options map[string]string
	IR      []string
	Output  *string
	Error   string
}

// Expectations reports whether the case asserts anything.
func (c *Case) Expectations() int {
	n := len(c.IR)
	if c.Output != nil {
		n++
	}
	if c.Error != "" {
		n++
	}
	return n
}

// ExtractCases parses a markdown document and returns its cases in order.
func ExtractCases(doc []byte) ([]Case, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(doc))

	var (
		cases []Case
		cur   *Case
	)
	flush := func() error {
		if cur == nil {
			return nil
		}
		if cur.Source == "" {
			return fmt.Errorf("line %d: test %q has no sx fence", cur.Line, cur.Name)
		}
		if cur.Expectations() == 0 {
			return fmt.Errorf("line %d: test %q has no expectations", cur.Line, cur.Name)
		}
		cases = append(cases, *cur)
		cur = nil
		return nil
	}

	err := mdast.Walk(root, func(n mdast.Node, entering bool) (mdast.WalkStatus, error) {
		if !entering {
			return mdast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *mdast.Heading:
			title := nodeText(n, doc)
			name, ok := strings.CutPrefix(title, "Test: ")
			if !ok {
				return mdast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return mdast.WalkStop, err
			}
			cur = &Case{Name: strings.TrimSpace(name), Line: lineOf(n, doc)}

		case *mdast.FencedCodeBlock:
			lang := FenceKind(n.Language(doc))
			line := lineOf(n, doc)
			body := fenceBody(n, doc)
			if cur == nil {
				if lang != "" {
					return mdast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test", line, lang)
				}
				return mdast.WalkContinue, nil
			}
			if err := cur.add(lang, body, line); err != nil {
				return mdast.WalkStop, err
			}
		}
		return mdast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func (c *Case) add(lang FenceKind, body string, line int) error {
	switch lang {
	case FenceSource:
		if c.Source != "" {
			return fmt.Errorf("line %d: test %q has more than one sx fence", line, c.Name)
		}
		c.Source = body
	case FenceOptions:
		if c.Options == nil {
			c.Options = make(map[string]string)
		}
		for _, l := range strings.Split(body, "\n") {
			l = strings.TrimSpace(l)
			if l == "" || strings.HasPrefix(l, "#") {
				continue
			}
			k, v, ok := strings.Cut(l, "=")
			if !ok {
				return fmt.Errorf("line %d: option %q is not key = value", line, l)
			}
			c.Options[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	case FenceIR:
		for _, l := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
			if l = strings.TrimSpace(l); l != "" {
				c.IR = append(c.IR, l)
			}
		}
	case FenceOutput:
		out := body
		c.Output = &out
	case FenceError:
		c.Error = strings.TrimSpace(body)
	case "":
	default:
		return fmt.Errorf("line %d: unknown fence %q in test %q", line, lang, c.Name)
	}
	return nil
}

func nodeText(n mdast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = mdast.Walk(n, func(n mdast.Node, entering bool) (mdast.WalkStatus, error) {
		if t, ok := n.(*mdast.Text); ok && entering {
			buf.Write(t.Segment.Value(src))
		}
		return mdast.WalkContinue, nil
	})
	return buf.String()
}

func fenceBody(n *mdast.FencedCodeBlock, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}

// lineOf returns the 1-based line of n's first content line.
func lineOf(n mdast.Node, src []byte) int {
	if n.Lines().Len() == 0 {
		return 0
	}
	return bytes.Count(src[:n.Lines().At(0).Start], []byte("\n")) + 1
}
