package quadtree

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes         int // total nodes in the arena
	InternalNodes int
	Leaves        int
	Records       int
	MaxDepth      int // deepest node actually present, not the ceiling
}

// Stats walks the arena and returns shape statistics.
func (t *Tree) Stats() Stats {
	s := Stats{Nodes: len(t.nodes), Records: t.size}
	for _, n := range t.nodes {
		if n.Kind == KindInternal {
			s.InternalNodes++
		} else {
			s.Leaves++
		}
		if int(n.Depth) > s.MaxDepth {
			s.MaxDepth = int(n.Depth)
		}
	}
	return s
}
