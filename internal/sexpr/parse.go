package sexpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Error is a positioned read failure.
type Error struct {
	Pos Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Parse reads exactly one datum from input.
func Parse(input string) (*Node, error) {
	nodes, err := ParseAll(input)
	if err != nil {
		return nil, err
	}
	switch len(nodes) {
	case 0:
		return nil, &Error{Pos: Pos{Line: 1, Col: 1}, Msg: "empty input"}
	case 1:
		return nodes[0], nil
	}
	return nil, &Error{Pos: nodes[1].Pos, Msg: "expected EOF but got another datum"}
}

// ParseAll reads every top-level datum in input.
func ParseAll(input string) ([]*Node, error) {
	p := &parser{lex: newLexer(input)}
	p.next()

	var out []*Node
	for p.tok.typ != tokenEOF {
		n, err := p.datum()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) next() {
	p.tok = p.lex.next()
}

func (p *parser) fail(pos Pos, format string, args ...any) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) datum() (*Node, error) {
	tok := p.tok
	switch tok.typ {
	case tokenError:
		return nil, p.fail(tok.pos, "%s", tok.text)
	case tokenLParen:
		return p.list()
	case tokenRParen:
		return nil, p.fail(tok.pos, "unexpected ')'")
	case tokenString:
		p.next()
		return &Node{Type: NodeString, Pos: tok.pos, Text: tok.text}, nil
	case tokenAtom:
		p.next()
		return atom(tok), nil
	}
	return nil, p.fail(tok.pos, "unexpected end of input")
}

func (p *parser) list() (*Node, error) {
	open := p.tok.pos
	p.next() // consume '('

	n := &Node{Type: NodeList, Pos: open}
	for p.tok.typ != tokenRParen {
		if p.tok.typ == tokenEOF {
			return nil, p.fail(open, "unclosed '('")
		}
		item, err := p.datum()
		if err != nil {
			return nil, err
		}
		n.Items = append(n.Items, item)
	}
	p.next() // consume ')'
	return n, nil
}

// atom classifies a bare token as an integer, a real or a symbol.
func atom(tok token) *Node {
	text := tok.text
	if looksNumeric(text) {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			return &Node{Type: NodeInteger, Pos: tok.pos, Text: text, Int: v}
		}
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return &Node{Type: NodeReal, Pos: tok.pos, Text: text, Real: v}
		}
	}
	return &Node{Type: NodeSymbol, Pos: tok.pos, Text: text}
}

func looksNumeric(text string) bool {
	s := strings.TrimLeft(text, "+-")
	return s != "" && (s[0] >= '0' && s[0] <= '9' || s[0] == '.' && len(s) > 1)
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenError
	tokenLParen
	tokenRParen
	tokenString
	tokenAtom
)

type token struct {
	typ  tokenType
	text string
	pos  Pos
}

type lexer struct {
	input string
	off   int
	line  int
	col   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input, line: 1, col: 1}
}

func (l *lexer) peek() (rune, int) {
	if l.off >= len(l.input) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.input[l.off:])
}

func (l *lexer) advance() rune {
	r, size := l.peek()
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpaceAndComments() {
	for l.off < len(l.input) {
		r, _ := l.peek()
		switch {
		case r == ';':
			for l.off < len(l.input) {
				if l.advance() == '\n' {
					break
				}
			}
		case unicode.IsSpace(r):
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) next() token {
	l.skipSpaceAndComments()
	pos := Pos{Line: l.line, Col: l.col}
	if l.off >= len(l.input) {
		return token{typ: tokenEOF, pos: pos}
	}

	r, _ := l.peek()
	switch r {
	case '(':
		l.advance()
		return token{typ: tokenLParen, text: "(", pos: pos}
	case ')':
		l.advance()
		return token{typ: tokenRParen, text: ")", pos: pos}
	case '"':
		return l.str(pos)
	}

	start := l.off
	for l.off < len(l.input) {
		r, _ := l.peek()
		if r == '(' || r == ')' || r == '"' || r == ';' || unicode.IsSpace(r) {
			break
		}
		l.advance()
	}
	return token{typ: tokenAtom, text: l.input[start:l.off], pos: pos}
}

func (l *lexer) str(pos Pos) token {
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.off >= len(l.input) {
			return token{typ: tokenError, text: "unterminated string", pos: pos}
		}
		r := l.advance()
		switch r {
		case '"':
			return token{typ: tokenString, text: b.String(), pos: pos}
		case '\\':
			if l.off >= len(l.input) {
				return token{typ: tokenError, text: "unterminated string", pos: pos}
			}
			esc := l.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '"':
				b.WriteRune(esc)
			default:
				return token{typ: tokenError, text: fmt.Sprintf("unknown escape \\%c", esc), pos: pos}
			}
		default:
			b.WriteRune(r)
		}
	}
}
