// Package view maintains the filtered view of a hierarchy: which categories
// and depth levels are shown, how hidden subtree values fold onto their
// nearest visible ancestor, and which node/link objects the relaxation
// engine and renderers currently share.
//
// Recompute is a pure function of (hierarchy, visibility state). It always
// builds fresh LayoutNode objects; stale object identities never leak
// across rebuilds, so a superseded relaxation pass can only ever mutate
// discarded nodes.
package view

import (
	"github.com/vanderheijden86/orbweave/pkg/metrics"
	"github.com/vanderheijden86/orbweave/pkg/model"
)

// Point is a cached 2D position.
type Point struct {
	X, Y float64
}

// Snapshot is one consistent visible node/link subset plus the adjacency
// index for O(1) parent/child lookup. Rebuilt, never mutated in place, on
// every filter change.
type Snapshot struct {
	Hierarchy *model.Hierarchy
	State     model.VisibilityState // clone of the state this snapshot was built from

	Nodes []*model.LayoutNode // visible nodes in pre-order
	Links []model.Link        // links with both endpoints visible

	hidden   map[int]bool
	byID     map[int]*model.LayoutNode
	children map[int][]int // visible parent id -> visible child ids, ordered

	// parentPos caches each visible node's parent position, refreshed from
	// current link endpoints on every relaxation tick. Renderers use it for
	// radial bubble placement along the link.
	parentPos map[int]Point
}

// Recompute builds the visible subset for the given visibility state.
// Total over any structurally valid input: an empty visible set yields an
// empty snapshot, not an error.
func Recompute(h *model.Hierarchy, vs model.VisibilityState) *Snapshot {
	defer metrics.Timer(metrics.FilterRecompute)()

	s := &Snapshot{
		Hierarchy: h,
		State:     vs.Clone(),
		hidden:    make(map[int]bool),
		byID:      make(map[int]*model.LayoutNode),
		children:  make(map[int][]int),
		parentPos: make(map[int]Point),
	}
	if h == nil || h.Root() == nil {
		return s
	}

	s.markHidden(vs)

	// Build fresh layout nodes for the survivors, in pre-order.
	for _, n := range h.Nodes {
		if s.hidden[n.ID] {
			continue
		}
		ln := &model.LayoutNode{
			ID:           n.ID,
			Name:         n.Name,
			Depth:        n.Depth,
			DisplayValue: n.RawValue,
		}
		s.Nodes = append(s.Nodes, ln)
		s.byID[n.ID] = ln
	}

	s.foldHiddenValues()
	s.buildLinks()
	return s
}

// markHidden computes the hidden closure: subtrees under filtered-out
// categories and nodes at filtered-out depths, each transitively including
// all descendants. The root is never hideable, so both causes produce a
// downward-closed hidden set.
func (s *Snapshot) markHidden(vs model.VisibilityState) {
	h := s.Hierarchy
	root := h.Root()

	hideSubtree := func(id int) {
		if s.hidden[id] {
			return
		}
		s.hidden[id] = true
		for _, d := range h.Descendants(id) {
			s.hidden[d.ID] = true
		}
	}

	for _, catID := range root.ChildIDs {
		if !vs.CategoryVisible(h.Nodes[catID].Name) {
			hideSubtree(catID)
		}
	}
	for _, n := range h.Nodes {
		if n.Depth == 0 || s.hidden[n.ID] {
			continue
		}
		if !vs.DepthVisible(n.Depth) {
			hideSubtree(n.ID)
		}
	}
}

// foldHiddenValues surfaces each hidden node's raw value on its nearest
// visible ancestor. The hidden set is downward-closed, so walking parent
// links from a hidden node passes only through hidden nodes until the first
// visible one; every hidden value is counted exactly once.
func (s *Snapshot) foldHiddenValues() {
	// Walk in pre-order, not map order, so folded sums are reproducible.
	h := s.Hierarchy
	for _, n := range h.Nodes {
		if !s.hidden[n.ID] || n.RawValue == 0 {
			continue
		}
		p := h.Node(n.ParentID)
		for p != nil && s.hidden[p.ID] {
			p = h.Node(p.ParentID)
		}
		if p == nil {
			continue
		}
		target := s.byID[p.ID]
		target.DisplayValue += n.RawValue
		target.HasHiddenAggregation = true
	}
}

// buildLinks derives parent->child links over the visible set and the
// visible adjacency index. Endpoints are re-resolved against this
// snapshot's node objects.
func (s *Snapshot) buildLinks() {
	h := s.Hierarchy
	for _, ln := range s.Nodes {
		hn := h.Node(ln.ID)
		if hn.ParentID == model.NoParent {
			continue
		}
		parent, ok := s.byID[hn.ParentID]
		if !ok {
			continue
		}
		s.Links = append(s.Links, model.Link{
			Source: parent,
			Target: ln,
			Tier:   model.TierFor(ln.Depth),
		})
		s.children[parent.ID] = append(s.children[parent.ID], ln.ID)
	}
}

// Node returns the visible layout node with the given id, or nil.
func (s *Snapshot) Node(id int) *model.LayoutNode {
	return s.byID[id]
}

// VisibleChildren returns the visible child ids of a visible node, ordered.
func (s *Snapshot) VisibleChildren(id int) []int {
	return s.children[id]
}

// Hidden reports whether the given id is hidden in this snapshot.
func (s *Snapshot) Hidden(id int) bool {
	return s.hidden[id]
}

// HiddenCount returns how many nodes this snapshot hides.
func (s *Snapshot) HiddenCount() int {
	return len(s.hidden)
}

// DisplayTotal returns the bubble value renderers show for a visible node:
// its display value plus the display values of every visible descendant.
// Hidden subtrees are already folded into display values, so this always
// equals the node's full subtree total regardless of filter state. Unknown
// or hidden ids report 0.
func (s *Snapshot) DisplayTotal(id int) float64 {
	n := s.byID[id]
	if n == nil {
		return 0
	}
	total := n.DisplayValue
	for _, child := range s.children[id] {
		total += s.DisplayTotal(child)
	}
	return total
}

// DisplaySum returns the sum of display values over visible nodes.
func (s *Snapshot) DisplaySum() float64 {
	var sum float64
	for _, n := range s.Nodes {
		sum += n.DisplayValue
	}
	return sum
}

// AdoptPositions copies positions (and pins) from a previous snapshot for
// every node id both snapshots share, so a filter change does not reset the
// parts of the diagram that stayed visible.
func (s *Snapshot) AdoptPositions(prev *Snapshot) {
	if prev == nil {
		return
	}
	for _, n := range s.Nodes {
		if old := prev.byID[n.ID]; old != nil {
			n.X, n.Y = old.X, old.Y
			n.Pinned = old.Pinned
			n.PinX, n.PinY = old.PinX, old.PinY
			n.Radius = old.Radius
		}
	}
}

// RefreshParentPositions updates the parent-position cache from current
// link endpoints. Called on every relaxation tick.
func (s *Snapshot) RefreshParentPositions() {
	for _, l := range s.Links {
		s.parentPos[l.Target.ID] = Point{X: l.Source.X, Y: l.Source.Y}
	}
}

// ParentPosition returns the cached parent position of a visible node. The
// root (or a node whose cache entry has not been refreshed yet) reports ok
// == false.
func (s *Snapshot) ParentPosition(id int) (Point, bool) {
	p, ok := s.parentPos[id]
	return p, ok
}
