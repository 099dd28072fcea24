package expr

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// String renders the solved expression by substituting the rendered children
// into the operator template.
func (n *OpNode) String() string {
	rendered := make([]string, len(n.Args))
	for i, c := range n.Args {
		rendered[i] = c.String()
	}
	if n.Op.Template == "" {
		return n.Op.Name + "(" + strings.Join(rendered, ", ") + ")"
	}
	out := n.Op.Template
	// Highest index first so #1 never eats the prefix of #10.
	for i := len(rendered); i >= 1; i-- {
		out = strings.ReplaceAll(out, "#"+strconv.Itoa(i), rendered[i-1])
	}
	return out
}

func (l *Leaf) String() string {
	s := strconv.FormatFloat(l.Val, 'g', -1, 64)
	if l.Val < 0 {
		return "(" + s + ")"
	}
	return s
}

func (v *VarLeaf) String() string {
	return v.Name
}

func (s *SpecialLeaf) String() string {
	return s.Name
}

// label is the single-line description used by the outline view.
func label(n Node) string {
	switch t := n.(type) {
	case *OpNode:
		return t.Op.Name
	case *VarLeaf:
		return "var " + t.Name
	case *SpecialLeaf:
		return "const " + t.Name
	default:
		return "const " + n.String()
	}
}

// Format writes an indented outline of the tree, one node per line.
func Format(w io.Writer, root Node) error {
	var err error
	Walk(root, func(n Node, level int) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", level), label(n))
		return true
	})
	return err
}
