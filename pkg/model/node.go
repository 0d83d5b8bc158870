// Package model defines the core data types shared across orbweave: the
// immutable hierarchy produced by the loader, the mutable layout nodes the
// relaxation engine works on, links between them, and the visibility state
// that drives filtering.
package model

// NoParent marks a node without a parent (the root).
const NoParent = -1

// Tier classifies a link by the depth of its target.
type Tier string

const (
	// TierPrimary connects the root to its direct children (the category ring).
	TierPrimary Tier = "primary"
	// TierSecondary connects everything deeper.
	TierSecondary Tier = "secondary"
)

// NodeType is an informational tag carried through from the input document.
// It never affects loading or layout.
type NodeType string

const (
	TypeRoot     NodeType = "root"
	TypeCategory NodeType = "category"
	TypeLeaf     NodeType = "leaf"
)

// HierarchyNode is one node of the loaded tree. Immutable after load.
// IDs are assigned in pre-order during load (after sibling sorting) and are
// stable for the lifetime of the session; they are never reused.
type HierarchyNode struct {
	ID       int
	Name     string
	Type     NodeType
	RawValue float64 // own value only; 0 for internal nodes
	Total    float64 // subtree roll-up computed at load
	Depth    int     // 0 = root
	ParentID int     // NoParent for the root
	ChildIDs []int   // ordered, empty for leaves
}

// IsRoot reports whether the node is the tree root.
func (n *HierarchyNode) IsRoot() bool { return n.ParentID == NoParent }

// IsLeaf reports whether the node has no children.
func (n *HierarchyNode) IsLeaf() bool { return len(n.ChildIDs) == 0 }

// LayoutNode is the mutable position-carrying counterpart of a
// HierarchyNode. The filter engine rebuilds LayoutNodes on every recompute;
// the relaxation engine mutates X/Y of whichever set it was last given.
// Object identity is never shared across rebuilds.
type LayoutNode struct {
	ID    int
	Name  string
	Depth int

	X, Y float64

	// Pinned nodes (root, category ring) are restored to (PinX, PinY) on
	// every solver step and are excluded from relaxation movement.
	Pinned     bool
	PinX, PinY float64

	// Radius is derived from depth once and never changes. It feeds
	// collision avoidance and rendering.
	Radius float64

	// DisplayValue is the node's own raw value plus the folded-in raw
	// values of all currently hidden descendants reachable through hidden
	// nodes only. Recomputed from raw values on every filter change.
	DisplayValue float64

	// HasHiddenAggregation is true when DisplayValue includes any folded
	// value from a hidden descendant.
	HasHiddenAggregation bool
}

// Link is a parent->child edge between layout nodes. Links are derived from
// the hierarchy and rebuilt together with their endpoint nodes; Source and
// Target always point into the same snapshot's node set.
type Link struct {
	Source *LayoutNode
	Target *LayoutNode
	Tier   Tier
}

// TierFor returns the tier of a link ending at a node of the given depth.
func TierFor(targetDepth int) Tier {
	if targetDepth == 1 {
		return TierPrimary
	}
	return TierSecondary
}
