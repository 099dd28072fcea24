package expr

func (n *OpNode) Clone() Node {
	args := make([]Node, len(n.Args))
	for i, c := range n.Args {
		args[i] = c.Clone()
	}
	return &OpNode{Op: n.Op, Args: args}
}

func (l *Leaf) Clone() Node {
	return &Leaf{Val: l.Val}
}

// Clone returns an unbound VarLeaf of the same name. Bindings are per
// evaluation pass and never travel with a copy.
func (v *VarLeaf) Clone() Node {
	return &VarLeaf{Name: v.Name}
}

func (s *SpecialLeaf) Clone() Node {
	return &SpecialLeaf{Name: s.Name, Val: s.Val}
}
