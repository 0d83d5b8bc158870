// Package layout computes the deterministic starting positions for a
// hierarchy: root at the origin, categories evenly spaced on a ring, deeper
// nodes fanned around their parent's angle from the origin. The relaxation
// engine takes over from there; only root and ring positions stay pinned.
package layout

import (
	"math"

	"github.com/vanderheijden86/orbweave/pkg/model"
)

// Config holds the geometric constants of the initial layout. All values
// are plain parameters; none of them affect which nodes exist or how they
// aggregate.
type Config struct {
	// RingRadius is the radius of the depth-1 category ring (R1).
	RingRadius float64 `yaml:"ring_radius"`

	// DepthOffsets[i] is the radial offset from parent for nodes at depth
	// i+2. The last entry repeats for deeper levels. Monotonically
	// non-increasing in the reference configuration.
	DepthOffsets []float64 `yaml:"depth_offsets"`

	// SiblingStep is the angular gap between adjacent siblings at depth >= 2
	// before the spread cap applies.
	SiblingStep float64 `yaml:"sibling_step"`

	// MaxSpread caps the total angular spread of one sibling group so dense
	// subtrees never fan past a quarter turn.
	MaxSpread float64 `yaml:"max_spread"`

	// NodeRadii[i] is the drawn/collision radius for nodes at depth i; the
	// last entry repeats for deeper levels.
	NodeRadii []float64 `yaml:"node_radii"`
}

// DefaultConfig returns the reference geometry.
func DefaultConfig() Config {
	return Config{
		RingRadius:   220,
		DepthOffsets: []float64{110, 80, 60},
		SiblingStep:  math.Pi / 10,
		MaxSpread:    math.Pi / 2,
		NodeRadii:    []float64{34, 22, 12, 8},
	}
}

// Offset returns the radial offset from parent for the given depth (>= 2).
func (c Config) Offset(depth int) float64 {
	i := depth - 2
	if i < 0 {
		i = 0
	}
	if i >= len(c.DepthOffsets) {
		i = len(c.DepthOffsets) - 1
	}
	return c.DepthOffsets[i]
}

// NodeRadius returns the static node radius for the given depth.
func (c Config) NodeRadius(depth int) float64 {
	i := depth
	if i >= len(c.NodeRadii) {
		i = len(c.NodeRadii) - 1
	}
	return c.NodeRadii[i]
}

// Position is one computed coordinate pair.
type Position struct {
	X, Y   float64
	Angle  float64 // angle from origin used for child placement
	Pinned bool
}

// Compute assigns one position per node, deterministically, with no
// randomness. Same hierarchy in, bit-identical coordinates out.
func Compute(h *model.Hierarchy, cfg Config) map[int]Position {
	positions := make(map[int]Position, h.Len())
	root := h.Root()
	if root == nil {
		return positions
	}

	positions[root.ID] = Position{X: 0, Y: 0, Pinned: true}

	// Depth 1: evenly spaced ring, first category pointing straight up.
	n := len(root.ChildIDs)
	for i, id := range root.ChildIDs {
		angle := float64(i)*2*math.Pi/float64(n) - math.Pi/2
		positions[id] = Position{
			X:      cfg.RingRadius * math.Cos(angle),
			Y:      cfg.RingRadius * math.Sin(angle),
			Angle:  angle,
			Pinned: true,
		}
		placeSubtree(h, id, cfg, positions)
	}
	return positions
}

// placeSubtree fans the children of the given node around its angle from
// the origin, then recurses.
func placeSubtree(h *model.Hierarchy, parentID int, cfg Config, positions map[int]Position) {
	parent := h.Node(parentID)
	pp := positions[parentID]

	count := len(parent.ChildIDs)
	if count == 0 {
		return
	}

	// Per-sibling step shrinks once the group would exceed the cap. A
	// single child sits exactly on the parent's angle from origin.
	step := cfg.SiblingStep
	if count > 1 {
		if max := cfg.MaxSpread / float64(count-1); step > max {
			step = max
		}
	}
	offset := cfg.Offset(parent.Depth + 1)

	for i, id := range parent.ChildIDs {
		angle := pp.Angle + (float64(i)-float64(count-1)/2)*step
		positions[id] = Position{
			X:     pp.X + offset*math.Cos(angle),
			Y:     pp.Y + offset*math.Sin(angle),
			Angle: angle,
		}
		placeSubtree(h, id, cfg, positions)
	}
}

// Apply writes positions, pins, and radii onto layout nodes. Nodes without
// a computed position are left untouched.
func Apply(nodes []*model.LayoutNode, positions map[int]Position, cfg Config) {
	for _, n := range nodes {
		p, ok := positions[n.ID]
		if !ok {
			continue
		}
		n.X, n.Y = p.X, p.Y
		n.Pinned = p.Pinned
		if p.Pinned {
			n.PinX, n.PinY = p.X, p.Y
		}
		n.Radius = cfg.NodeRadius(n.Depth)
	}
}
