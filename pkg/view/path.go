package view

import (
	"github.com/vanderheijden86/orbweave/pkg/metrics"
	"github.com/vanderheijden86/orbweave/pkg/model"
)

// TreePath is the ancestor chain and subtree of one visible node, used for
// highlight emphasis on hover.
type TreePath struct {
	Ancestors   []*model.LayoutNode // root -> parent, in order
	Descendants []*model.LayoutNode // everything transitively under the target
	All         []*model.LayoutNode // ancestors + target + descendants
}

// Empty reports whether the path holds nothing (unknown or hidden target).
func (p TreePath) Empty() bool {
	return len(p.All) == 0
}

// Contains reports whether the given id is on the path.
func (p TreePath) Contains(id int) bool {
	for _, n := range p.All {
		if n.ID == id {
			return true
		}
	}
	return false
}

// TreePath computes the tree path of the given node id against this
// snapshot. An id that is unknown or not currently visible yields an empty
// path, never an error. O(depth + subtree size).
func (s *Snapshot) TreePath(id int) TreePath {
	defer metrics.Timer(metrics.PathQuery)()

	target := s.byID[id]
	if target == nil {
		return TreePath{}
	}

	var path TreePath

	// The hidden set is downward-closed, so every ancestor of a visible
	// node is visible too.
	for _, a := range s.Hierarchy.Ancestors(id) {
		path.Ancestors = append(path.Ancestors, s.byID[a.ID])
	}

	stack := append([]int(nil), reversed(s.children[id])...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		path.Descendants = append(path.Descendants, s.byID[cur])
		stack = append(stack, reversed(s.children[cur])...)
	}

	path.All = make([]*model.LayoutNode, 0, len(path.Ancestors)+1+len(path.Descendants))
	path.All = append(path.All, path.Ancestors...)
	path.All = append(path.All, target)
	path.All = append(path.All, path.Descendants...)
	return path
}

// reversed returns a copy of ids in reverse order, for pre-order stack
// pushes.
func reversed(ids []int) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}
