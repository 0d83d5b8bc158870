package view_test

import (
	"math"
	"testing"

	"github.com/vanderheijden86/orbweave/pkg/loader"
	"github.com/vanderheijden86/orbweave/pkg/model"
	"github.com/vanderheijden86/orbweave/pkg/view"
)

const sampleDoc = `{
	"name": "Root", "value": 0,
	"children": [
		{"name": "A", "children": [{"name": "A1", "value": 5}]},
		{"name": "B", "value": 3}
	]
}`

func mustParse(t *testing.T, doc string) *model.Hierarchy {
	t.Helper()
	h, err := loader.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return h
}

func allVisible(h *model.Hierarchy) model.VisibilityState {
	return model.NewVisibilityState(h.Categories(), h.Depths())
}

func names(nodes []*model.LayoutNode) map[string]*model.LayoutNode {
	m := make(map[string]*model.LayoutNode, len(nodes))
	for _, n := range nodes {
		m[n.Name] = n
	}
	return m
}

func TestAllVisibleRootDisplayValue(t *testing.T) {
	h := mustParse(t, sampleDoc)
	snap := view.Recompute(h, allVisible(h))

	if len(snap.Nodes) != h.Len() {
		t.Fatalf("Expected all %d nodes visible, got %d", h.Len(), len(snap.Nodes))
	}
	if snap.HiddenCount() != 0 {
		t.Errorf("Expected no hidden nodes, got %d", snap.HiddenCount())
	}

	// With nothing hidden, display values are raw values; the loader's
	// roll-up, not the filter engine, carries the total.
	byName := names(snap.Nodes)
	if byName["Root"].DisplayValue != 0 {
		t.Errorf("Root display value %v, want raw 0", byName["Root"].DisplayValue)
	}
	if byName["Root"].HasHiddenAggregation {
		t.Error("Root should not flag aggregation with nothing hidden")
	}
	if h.Root().Total != 8 {
		t.Errorf("Root total %v, want 8", h.Root().Total)
	}
}

// Scenario from the reference dataset: hiding category A folds A1's value
// onto Root, because A and A1 are both hidden and Root is the nearest
// visible ancestor.
func TestHideCategoryFoldsOntoRoot(t *testing.T) {
	h := mustParse(t, sampleDoc)
	vs := allVisible(h)
	vs.Categories["A"] = false

	snap := view.Recompute(h, vs)
	byName := names(snap.Nodes)

	if len(snap.Nodes) != 2 {
		t.Fatalf("Expected visible {Root, B}, got %d nodes", len(snap.Nodes))
	}
	if byName["Root"] == nil || byName["B"] == nil {
		t.Fatalf("Expected Root and B visible, got %v", byName)
	}
	if byName["Root"].DisplayValue != 5 {
		t.Errorf("Root display value %v, want 5 (A1 folded up)", byName["Root"].DisplayValue)
	}
	if !byName["Root"].HasHiddenAggregation {
		t.Error("Root should flag hidden aggregation")
	}
	if byName["B"].DisplayValue != 3 {
		t.Errorf("B display value %v, want 3", byName["B"].DisplayValue)
	}
	if byName["B"].HasHiddenAggregation {
		t.Error("B has nothing hidden below it")
	}

	// The rendered bubble total is conserved: the root shows the full 8
	// before and after hiding A.
	if got := snap.DisplayTotal(byName["Root"].ID); got != 8 {
		t.Errorf("Root display total %v, want 8", got)
	}
	if got := snap.DisplayTotal(byName["B"].ID); got != 3 {
		t.Errorf("B display total %v, want 3", got)
	}
}

func TestDisplayTotalMatchesSubtreeTotal(t *testing.T) {
	h := mustParse(t, sampleDoc)

	full := view.Recompute(h, allVisible(h))
	if got := full.DisplayTotal(h.Root().ID); got != 8 {
		t.Errorf("Root display total %v after load, want 8", got)
	}

	// Display totals equal the loader's roll-up for every visible node, in
	// every filter state.
	vs := allVisible(h)
	vs.Depths[2] = false
	snap := view.Recompute(h, vs)
	for _, n := range snap.Nodes {
		if got, want := snap.DisplayTotal(n.ID), h.Node(n.ID).Total; got != want {
			t.Errorf("%s: display total %v != subtree total %v", n.Name, got, want)
		}
	}
}

func TestHideDepthFoldsOntoParents(t *testing.T) {
	doc := `{"name": "r", "children": [
		{"name": "a", "children": [{"name": "a1", "value": 5}, {"name": "a2", "value": 2}]},
		{"name": "b", "children": [{"name": "b1", "value": 1}]}
	]}`
	h := mustParse(t, doc)
	vs := allVisible(h)
	vs.Depths[2] = false

	snap := view.Recompute(h, vs)
	byName := names(snap.Nodes)

	if len(snap.Nodes) != 3 {
		t.Fatalf("Expected {r, a, b} visible, got %d nodes", len(snap.Nodes))
	}
	if byName["a"].DisplayValue != 7 || !byName["a"].HasHiddenAggregation {
		t.Errorf("a: display %v aggregation %v, want 7 true",
			byName["a"].DisplayValue, byName["a"].HasHiddenAggregation)
	}
	if byName["b"].DisplayValue != 1 || !byName["b"].HasHiddenAggregation {
		t.Errorf("b: display %v aggregation %v, want 1 true",
			byName["b"].DisplayValue, byName["b"].HasHiddenAggregation)
	}

	// Re-showing the level restores original per-node values exactly.
	vs.Depths[2] = true
	restored := view.Recompute(h, vs)
	for _, n := range restored.Nodes {
		raw := h.Node(n.ID).RawValue
		if n.DisplayValue != raw {
			t.Errorf("%s: display %v differs from raw %v after re-show", n.Name, n.DisplayValue, raw)
		}
		if n.HasHiddenAggregation {
			t.Errorf("%s still flags aggregation after re-show", n.Name)
		}
	}
}

func TestPartitionInvariant(t *testing.T) {
	h := mustParse(t, sampleDoc)
	vs := allVisible(h)
	vs.Categories["A"] = false
	vs.Depths[2] = false

	snap := view.Recompute(h, vs)

	for _, n := range h.Nodes {
		visible := snap.Node(n.ID) != nil
		hidden := snap.Hidden(n.ID)
		if visible == hidden {
			t.Errorf("Node %q: visible=%v hidden=%v, want exactly one", n.Name, visible, hidden)
		}
	}
	if len(snap.Nodes)+snap.HiddenCount() != h.Len() {
		t.Errorf("visible %d + hidden %d != all %d",
			len(snap.Nodes), snap.HiddenCount(), h.Len())
	}
}

func TestAggregationConservation(t *testing.T) {
	h := mustParse(t, sampleDoc)

	states := []func(vs *model.VisibilityState){
		func(vs *model.VisibilityState) {},
		func(vs *model.VisibilityState) { vs.Categories["A"] = false },
		func(vs *model.VisibilityState) { vs.Categories["B"] = false },
		func(vs *model.VisibilityState) { vs.Depths[2] = false },
		func(vs *model.VisibilityState) { vs.Categories["A"] = false; vs.Depths[2] = false },
		func(vs *model.VisibilityState) { vs.Categories["A"] = false; vs.Categories["B"] = false },
	}

	for i, mutate := range states {
		vs := allVisible(h)
		mutate(&vs)
		snap := view.Recompute(h, vs)
		if got, want := snap.DisplaySum(), h.RawSum(); math.Abs(got-want) > 1e-12 {
			t.Errorf("State %d: display sum %v != raw sum %v", i, got, want)
		}
	}
}

func TestToggleIdempotence(t *testing.T) {
	h := mustParse(t, sampleDoc)
	vs := allVisible(h)

	before := view.Recompute(h, vs)

	vs.Categories["A"] = false
	view.Recompute(h, vs)
	vs.Categories["A"] = true
	after := view.Recompute(h, vs)

	if len(before.Nodes) != len(after.Nodes) {
		t.Fatalf("Visible set size changed: %d -> %d", len(before.Nodes), len(after.Nodes))
	}
	for i := range before.Nodes {
		b, a := before.Nodes[i], after.Nodes[i]
		if b.ID != a.ID || b.DisplayValue != a.DisplayValue || b.HasHiddenAggregation != a.HasHiddenAggregation {
			t.Errorf("Node %d changed across off/on toggle: %+v vs %+v", i, b, a)
		}
	}
}

func TestRootAlwaysVisible(t *testing.T) {
	h := mustParse(t, sampleDoc)
	vs := allVisible(h)
	for name := range vs.Categories {
		vs.Categories[name] = false
	}
	for d := range vs.Depths {
		if d != 0 {
			vs.Depths[d] = false
		}
	}

	snap := view.Recompute(h, vs)
	if len(snap.Nodes) != 1 || snap.Nodes[0].ID != h.Root().ID {
		t.Fatalf("Expected only the root visible, got %d nodes", len(snap.Nodes))
	}
	// Everything folds onto the root.
	if snap.Nodes[0].DisplayValue != h.RawSum() {
		t.Errorf("Root display %v, want full raw sum %v", snap.Nodes[0].DisplayValue, h.RawSum())
	}
	if len(snap.Links) != 0 {
		t.Errorf("Expected no links, got %d", len(snap.Links))
	}
}

func TestLinksRebuiltAgainstFreshNodes(t *testing.T) {
	h := mustParse(t, sampleDoc)
	vs := allVisible(h)

	first := view.Recompute(h, vs)
	second := view.Recompute(h, vs)

	for _, l := range second.Links {
		if l.Source != second.Node(l.Source.ID) || l.Target != second.Node(l.Target.ID) {
			t.Error("Link endpoints not resolved against own snapshot")
		}
		if l.Source == first.Node(l.Source.ID) {
			t.Error("Link reuses node identity from a previous rebuild")
		}
	}
}

func TestLinkTiers(t *testing.T) {
	h := mustParse(t, sampleDoc)
	snap := view.Recompute(h, allVisible(h))

	for _, l := range snap.Links {
		want := model.TierSecondary
		if l.Target.Depth == 1 {
			want = model.TierPrimary
		}
		if l.Tier != want {
			t.Errorf("Link to %q: tier %v, want %v", l.Target.Name, l.Tier, want)
		}
	}
}

func TestEmptyHierarchyYieldsEmptySnapshot(t *testing.T) {
	snap := view.Recompute(nil, model.VisibilityState{})
	if len(snap.Nodes) != 0 || len(snap.Links) != 0 {
		t.Error("Expected empty snapshot for nil hierarchy")
	}
	if !snap.TreePath(0).Empty() {
		t.Error("Expected empty path from empty snapshot")
	}
}

func TestParentPositionCache(t *testing.T) {
	h := mustParse(t, sampleDoc)
	snap := view.Recompute(h, allVisible(h))

	for i, n := range snap.Nodes {
		n.X, n.Y = float64(i*10), float64(i*20)
	}
	snap.RefreshParentPositions()

	byName := names(snap.Nodes)
	p, ok := snap.ParentPosition(byName["A1"].ID)
	if !ok {
		t.Fatal("Expected cached parent position for A1")
	}
	if p.X != byName["A"].X || p.Y != byName["A"].Y {
		t.Errorf("Cached parent position (%v, %v) != A's (%v, %v)", p.X, p.Y, byName["A"].X, byName["A"].Y)
	}
	if _, ok := snap.ParentPosition(byName["Root"].ID); ok {
		t.Error("Root should not have a parent position")
	}
}
