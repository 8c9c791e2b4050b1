package sexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeType represents the type of a Node.
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeReal
	NodeList
)

func (t NodeType) String() string {
	switch t {
	case NodeSymbol:
		return "symbol"
	case NodeString:
		return "string"
	case NodeInteger:
		return "integer"
	case NodeReal:
		return "real"
	case NodeList:
		return "list"
	}
	return fmt.Sprintf("node(%d)", int(t))
}

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Node is one datum. Text holds the symbol name, the unescaped string value or
// the literal spelling of a number; Int and Real hold the decoded number.
type Node struct {
	Type  NodeType
	Pos   Pos
	Text  string
	Int   int64
	Real  float64
	Items []*Node
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger, NodeReal:
		return n.Text
	case NodeString:
		return strconv.Quote(n.Text)
	case NodeList:
		parts := make([]string, 0, len(n.Items))
		for _, item := range n.Items {
			parts = append(parts, item.String())
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
}

// IsSymbol reports whether n is the symbol name.
func (n *Node) IsSymbol(name string) bool {
	return n != nil && n.Type == NodeSymbol && n.Text == name
}

// Head returns the leading symbol of a list, or "" when n is not such a list.
func (n *Node) Head() string {
	if n == nil || n.Type != NodeList || len(n.Items) == 0 || n.Items[0].Type != NodeSymbol {
		return ""
	}
	return n.Items[0].Text
}

// Args returns the list items after the head.
func (n *Node) Args() []*Node {
	if n == nil || n.Type != NodeList || len(n.Items) == 0 {
		return nil
	}
	return n.Items[1:]
}
