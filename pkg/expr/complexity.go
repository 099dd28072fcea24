package expr

func (n *OpNode) NodeCount() int {
	total := 1
	for _, c := range n.Args {
		total += c.NodeCount()
	}
	return total
}
func (l *Leaf) NodeCount() int        { return 1 }
func (v *VarLeaf) NodeCount() int     { return 1 }
func (s *SpecialLeaf) NodeCount() int { return 1 }

func (n *OpNode) Depth() int {
	deepest := 0
	for _, c := range n.Args {
		if d := c.Depth(); d > deepest {
			deepest = d
		}
	}
	return 1 + deepest
}
func (l *Leaf) Depth() int        { return 1 }
func (v *VarLeaf) Depth() int     { return 1 }
func (s *SpecialLeaf) Depth() int { return 1 }

// Subnodes returns the nodes under root in pre-order. Terminals are included
// only when keepLeaves is set; root itself only when keepRoot is set.
func Subnodes(root Node, keepLeaves, keepRoot bool) []Node {
	var result []Node
	collectSubnodes(root, keepLeaves, keepRoot, &result)
	return result
}

func collectSubnodes(node Node, keepLeaves, keep bool, result *[]Node) {
	if keep && (keepLeaves || !IsTerminal(node)) {
		*result = append(*result, node)
	}
	for _, c := range node.Children() {
		collectSubnodes(c, keepLeaves, true, result)
	}
}

// Walk visits nodes depth-first, parents before children, passing each node's
// distance from root. Returning false from fn skips that node's children.
func Walk(root Node, fn func(n Node, level int) bool) {
	walk(root, 0, fn)
}

func walk(node Node, level int, fn func(Node, int) bool) {
	if !fn(node, level) {
		return
	}
	for _, c := range node.Children() {
		walk(c, level+1, fn)
	}
}
