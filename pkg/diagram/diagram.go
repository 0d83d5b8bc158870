// Package diagram wires the loaded hierarchy, the filter engine, and the
// relaxation engine together behind the interface render adapters consume:
// commands in (filter toggles, path queries), callbacks out (ticks, settle,
// filter applied).
package diagram

import (
	"sync"

	"github.com/vanderheijden86/orbweave/pkg/debug"
	"github.com/vanderheijden86/orbweave/pkg/forces"
	"github.com/vanderheijden86/orbweave/pkg/layout"
	"github.com/vanderheijden86/orbweave/pkg/metrics"
	"github.com/vanderheijden86/orbweave/pkg/model"
	"github.com/vanderheijden86/orbweave/pkg/view"
)

// RenderAdapter is the rendering collaborator. The core pushes data through
// these callbacks and owns nothing about the rendering technology behind
// them. All callbacks may arrive from the relaxation goroutine.
type RenderAdapter interface {
	// OnLayoutTick is called on every relaxation step with current positions.
	OnLayoutTick(nodes []*model.LayoutNode, links []model.Link)
	// OnLayoutSettled is called once per run with final positions.
	OnLayoutSettled(nodes []*model.LayoutNode, reason forces.StopReason)
	// OnFilterApplied is called after every filter recompute.
	OnFilterApplied(snap *view.Snapshot)
}

// Options configures a Diagram.
type Options struct {
	Layout  layout.Config
	Spring  forces.SpringConfig
	Run     forces.RunConfig
	Adapter RenderAdapter

	// Seed optionally provides settled positions from a previous session
	// (the layout cache). Seeded free nodes start where they ended last
	// time instead of at their computed initial position.
	Seed map[int]view.Point
}

// Diagram owns the session state: the immutable hierarchy, the visibility
// state, the current snapshot, and the single active relaxation run.
type Diagram struct {
	mu sync.Mutex

	h       *model.Hierarchy
	opts    Options
	initial map[int]layout.Position
	vis     model.VisibilityState
	snap    *view.Snapshot
	relaxer *forces.Relaxer
}

// New builds a diagram for the given hierarchy. Everything starts visible.
func New(h *model.Hierarchy, opts Options) *Diagram {
	defer metrics.Timer(metrics.InitialLayout)()

	d := &Diagram{
		h:       h,
		opts:    opts,
		initial: layout.Compute(h, opts.Layout),
		vis:     model.NewVisibilityState(h.Categories(), h.Depths()),
		relaxer: forces.NewRelaxer(forces.NewSpringSolver(opts.Spring), opts.Run),
	}
	return d
}

// SetAdapter installs the render adapter. Call before Start; callbacks from
// an already-running relaxation keep the adapter they were started with.
func (d *Diagram) SetAdapter(a RenderAdapter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts.Adapter = a
}

// Start computes the first snapshot and kicks off relaxation.
func (d *Diagram) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applyFilterLocked()
}

// Stop supersedes any in-flight relaxation. Idempotent.
func (d *Diagram) Stop() {
	d.relaxer.Stop()
}

// Hierarchy returns the immutable loaded node set.
func (d *Diagram) Hierarchy() *model.Hierarchy { return d.h }

// Snapshot returns the current visible snapshot.
func (d *Diagram) Snapshot() *view.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snap
}

// Visibility returns a copy of the current filter state.
func (d *Diagram) Visibility() model.VisibilityState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vis.Clone()
}

// SetCategoryVisible toggles one first-ring category. Unknown names are a
// no-op: stale UI references can occur after a rebuild.
func (d *Diagram) SetCategoryVisible(name string, show bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.vis.Categories[name]; !ok {
		debug.Log("filter toggle ignored: %v", &model.UnknownNodeIDError{Name: name})
		return
	}
	if d.vis.Categories[name] == show {
		return
	}
	d.vis.Categories[name] = show
	d.applyFilterLocked()
}

// SetLevelVisible toggles one depth level. Depth 0 and unknown depths are
// no-ops.
func (d *Diagram) SetLevelVisible(depth int, show bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if depth == 0 {
		return
	}
	if _, ok := d.vis.Depths[depth]; !ok {
		return
	}
	if d.vis.Depths[depth] == show {
		return
	}
	d.vis.Depths[depth] = show
	d.applyFilterLocked()
}

// ShowAllCategories makes every category visible.
func (d *Diagram) ShowAllCategories() { d.setAllCategories(true) }

// HideAllCategories hides every category. The root always stays visible.
func (d *Diagram) HideAllCategories() { d.setAllCategories(false) }

// ShowAllLevels makes every depth level visible.
func (d *Diagram) ShowAllLevels() { d.setAllLevels(true) }

// HideAllLevels hides every level below the root.
func (d *Diagram) HideAllLevels() { d.setAllLevels(false) }

func (d *Diagram) setAllCategories(show bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	changed := false
	for name, cur := range d.vis.Categories {
		if cur != show {
			d.vis.Categories[name] = show
			changed = true
		}
	}
	if changed {
		d.applyFilterLocked()
	}
}

func (d *Diagram) setAllLevels(show bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	changed := false
	for depth, cur := range d.vis.Depths {
		if depth == 0 {
			continue
		}
		if cur != show {
			d.vis.Depths[depth] = show
			changed = true
		}
	}
	if changed {
		d.applyFilterLocked()
	}
}

// QueryTreePath returns the highlight path for a node id against the
// current snapshot. Hidden or unknown ids yield an empty path.
func (d *Diagram) QueryTreePath(id int) view.TreePath {
	d.mu.Lock()
	snap := d.snap
	d.mu.Unlock()
	if snap == nil {
		return view.TreePath{}
	}
	return snap.TreePath(id)
}

// applyFilterLocked rebuilds the snapshot for the current visibility state,
// seeds positions, supersedes any in-flight relaxation, and notifies the
// adapter. Caller holds d.mu.
func (d *Diagram) applyFilterLocked() {
	// Supersede the in-flight run before touching positions: Stop blocks
	// until its current step finishes, so the previous snapshot's
	// coordinates are quiescent when AdoptPositions reads them.
	d.relaxer.Stop()

	prev := d.snap
	snap := view.Recompute(d.h, d.vis)

	// Deterministic starting coordinates first, then carry over whatever
	// survived the previous snapshot, then session-cache seeds for nodes
	// seen for the first time.
	layout.Apply(snap.Nodes, d.initial, d.opts.Layout)
	if len(d.opts.Seed) > 0 {
		for _, n := range snap.Nodes {
			if n.Pinned {
				continue
			}
			if prev != nil && prev.Node(n.ID) != nil {
				continue
			}
			if p, ok := d.opts.Seed[n.ID]; ok {
				n.X, n.Y = p.X, p.Y
			}
		}
	}
	snap.AdoptPositions(prev)
	snap.RefreshParentPositions()

	d.snap = snap

	adapter := d.opts.Adapter
	if adapter != nil {
		adapter.OnFilterApplied(snap)
	}

	// Starting a new run always supersedes the previous one, so at most one
	// pass mutates positions at a time.
	d.relaxer.Start(snap.Nodes, snap.Links,
		func(nodes []*model.LayoutNode, links []model.Link) {
			snap.RefreshParentPositions()
			if adapter != nil {
				adapter.OnLayoutTick(nodes, links)
			}
		},
		func(nodes []*model.LayoutNode, reason forces.StopReason) {
			snap.RefreshParentPositions()
			if adapter != nil {
				adapter.OnLayoutSettled(nodes, reason)
			}
		})
}
