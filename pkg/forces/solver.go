// Package forces relaxes node positions with an iterative spring/charge
// solver. The Relaxer owns run lifecycle (ticks, convergence, deadline,
// supersession); the Solver is the pluggable physics collaborator that
// moves positions one step at a time.
package forces

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/orbweave/pkg/model"
)

// Solver advances node positions by one step and reports the mean
// displacement per free node. The Relaxer treats small displacement as its
// convergence signal.
type Solver interface {
	Step(nodes []*model.LayoutNode, links []model.Link) float64
}

// SpringConfig holds the physics constants of the default solver.
type SpringConfig struct {
	// Rest lengths per link tier. Primary links (root to category ring)
	// are longer than secondary links.
	PrimaryLinkDistance   float64 `yaml:"primary_link_distance"`
	SecondaryLinkDistance float64 `yaml:"secondary_link_distance"`

	// SpringStrength scales the pull/push toward a link's rest length.
	SpringStrength float64 `yaml:"spring_strength"`

	// Repulsion scales the mutual charge between every node pair; the
	// force falls off with 1/distance.
	Repulsion float64 `yaml:"repulsion"`

	// CollisionMargin is added to the sum of two node radii before overlap
	// is corrected.
	CollisionMargin float64 `yaml:"collision_margin"`

	// Damping scales the accumulated force into an actual displacement.
	Damping float64 `yaml:"damping"`

	// MaxDisplacement clamps the per-step movement of a single node so one
	// hot pair cannot fling the layout apart.
	MaxDisplacement float64 `yaml:"max_displacement"`
}

// DefaultSpringConfig returns the reference physics constants.
func DefaultSpringConfig() SpringConfig {
	return SpringConfig{
		PrimaryLinkDistance:   180,
		SecondaryLinkDistance: 70,
		SpringStrength:        0.08,
		Repulsion:             300,
		CollisionMargin:       4,
		Damping:               0.85,
		MaxDisplacement:       24,
	}
}

// restLength returns the target distance for a link tier.
func (c SpringConfig) restLength(t model.Tier) float64 {
	if t == model.TierPrimary {
		return c.PrimaryLinkDistance
	}
	return c.SecondaryLinkDistance
}

// SpringSolver is the default Solver: link springs with tiered rest
// lengths, pairwise 1/d repulsion, radius-based collision correction, and
// hard pins. Deterministic: iteration order is the node slice order.
type SpringSolver struct {
	cfg SpringConfig

	// scratch force accumulator, reused across steps
	force []r2.Vec
}

// NewSpringSolver builds a solver with the given constants.
func NewSpringSolver(cfg SpringConfig) *SpringSolver {
	return &SpringSolver{cfg: cfg}
}

// Step applies one relaxation pass and returns the mean displacement over
// free (unpinned) nodes. Pinned nodes are restored to their pin regardless
// of accumulated force.
func (s *SpringSolver) Step(nodes []*model.LayoutNode, links []model.Link) float64 {
	if len(nodes) == 0 {
		return 0
	}

	if cap(s.force) < len(nodes) {
		s.force = make([]r2.Vec, len(nodes))
	}
	s.force = s.force[:len(nodes)]
	for i := range s.force {
		s.force[i] = r2.Vec{}
	}

	index := make(map[int]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}

	// Link springs toward the tier rest length.
	for _, l := range links {
		si, ok1 := index[l.Source.ID]
		ti, ok2 := index[l.Target.ID]
		if !ok1 || !ok2 {
			continue
		}
		d := r2.Vec{X: l.Target.X - l.Source.X, Y: l.Target.Y - l.Source.Y}
		dist := r2.Norm(d)
		if dist < 1e-9 {
			// Coincident endpoints get a tiny deterministic separation.
			d = r2.Vec{X: 1e-3, Y: 0}
			dist = 1e-3
		}
		stretch := dist - s.cfg.restLength(l.Tier)
		f := r2.Scale(s.cfg.SpringStrength*stretch/dist, d)
		s.force[si] = r2.Add(s.force[si], f)
		s.force[ti] = r2.Sub(s.force[ti], f)
	}

	// Pairwise repulsion, inversely related to distance, plus collision
	// correction on overlapping radii.
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			d := r2.Vec{X: b.X - a.X, Y: b.Y - a.Y}
			dist := r2.Norm(d)
			if dist < 1e-9 {
				d = r2.Vec{X: 1e-3, Y: 0}
				dist = 1e-3
			}
			push := r2.Scale(s.cfg.Repulsion/(dist*dist), d)
			s.force[i] = r2.Sub(s.force[i], push)
			s.force[j] = r2.Add(s.force[j], push)

			minDist := a.Radius + b.Radius + s.cfg.CollisionMargin
			if dist < minDist {
				correction := r2.Scale((minDist-dist)/dist/2, d)
				s.force[i] = r2.Sub(s.force[i], correction)
				s.force[j] = r2.Add(s.force[j], correction)
			}
		}
	}

	// Apply with damping and a displacement clamp; restore pins.
	var moved float64
	free := 0
	for i, n := range nodes {
		if n.Pinned {
			n.X, n.Y = n.PinX, n.PinY
			continue
		}
		disp := r2.Scale(s.cfg.Damping, s.force[i])
		if norm := r2.Norm(disp); norm > s.cfg.MaxDisplacement {
			disp = r2.Scale(s.cfg.MaxDisplacement/norm, disp)
		}
		n.X += disp.X
		n.Y += disp.Y
		moved += r2.Norm(disp)
		free++
	}
	if free == 0 {
		return 0
	}
	return moved / float64(free)
}

// Energy returns a rough layout stress number for diagnostics: the sum of
// squared link stretch. Not used for convergence.
func (s *SpringSolver) Energy(links []model.Link) float64 {
	var e float64
	for _, l := range links {
		d := math.Hypot(l.Target.X-l.Source.X, l.Target.Y-l.Source.Y)
		stretch := d - s.cfg.restLength(l.Tier)
		e += stretch * stretch
	}
	return e
}
