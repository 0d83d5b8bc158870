package model

// Hierarchy is the immutable node set produced by the loader, indexed so
// parent/child lookups are O(1). Nodes are stored in pre-order; a node's ID
// is its index into Nodes.
type Hierarchy struct {
	Nodes []*HierarchyNode
}

// Root returns the root node, or nil for an empty hierarchy.
func (h *Hierarchy) Root() *HierarchyNode {
	if len(h.Nodes) == 0 {
		return nil
	}
	return h.Nodes[0]
}

// Node returns the node with the given id, or nil if out of range.
func (h *Hierarchy) Node(id int) *HierarchyNode {
	if id < 0 || id >= len(h.Nodes) {
		return nil
	}
	return h.Nodes[id]
}

// Len returns the number of nodes.
func (h *Hierarchy) Len() int { return len(h.Nodes) }

// Categories returns the names of the root's direct children in ID order
// (which is the loader's sorted sibling order).
func (h *Hierarchy) Categories() []string {
	root := h.Root()
	if root == nil {
		return nil
	}
	names := make([]string, 0, len(root.ChildIDs))
	for _, id := range root.ChildIDs {
		names = append(names, h.Nodes[id].Name)
	}
	return names
}

// Depths returns every depth level present, ascending.
func (h *Hierarchy) Depths() []int {
	maxDepth := -1
	for _, n := range h.Nodes {
		if n.Depth > maxDepth {
			maxDepth = n.Depth
		}
	}
	depths := make([]int, 0, maxDepth+1)
	for d := 0; d <= maxDepth; d++ {
		depths = append(depths, d)
	}
	return depths
}

// CategoryOf returns the depth-1 ancestor of the given node, or nil for the
// root itself.
func (h *Hierarchy) CategoryOf(id int) *HierarchyNode {
	n := h.Node(id)
	for n != nil && n.Depth > 1 {
		n = h.Node(n.ParentID)
	}
	if n == nil || n.Depth != 1 {
		return nil
	}
	return n
}

// Ancestors returns the chain from the root down to the node's parent.
// The root yields an empty chain.
func (h *Hierarchy) Ancestors(id int) []*HierarchyNode {
	n := h.Node(id)
	if n == nil {
		return nil
	}
	chain := make([]*HierarchyNode, 0, n.Depth)
	for p := h.Node(n.ParentID); p != nil; p = h.Node(p.ParentID) {
		chain = append(chain, p)
	}
	// Walked child->root; callers want root->parent.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Descendants returns every node transitively under the given node, in
// pre-order. A leaf yields an empty slice.
func (h *Hierarchy) Descendants(id int) []*HierarchyNode {
	n := h.Node(id)
	if n == nil {
		return nil
	}
	var out []*HierarchyNode
	stack := make([]int, 0, len(n.ChildIDs))
	for i := len(n.ChildIDs) - 1; i >= 0; i-- {
		stack = append(stack, n.ChildIDs[i])
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c := h.Nodes[id]
		out = append(out, c)
		for i := len(c.ChildIDs) - 1; i >= 0; i-- {
			stack = append(stack, c.ChildIDs[i])
		}
	}
	return out
}

// LeafSum returns the sum of raw values over all leaves.
func (h *Hierarchy) LeafSum() float64 {
	var sum float64
	for _, n := range h.Nodes {
		if n.IsLeaf() {
			sum += n.RawValue
		}
	}
	return sum
}

// RawSum returns the sum of raw values over all nodes (internal nodes may
// carry own values too).
func (h *Hierarchy) RawSum() float64 {
	var sum float64
	for _, n := range h.Nodes {
		sum += n.RawValue
	}
	return sum
}
