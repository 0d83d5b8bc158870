package view_test

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/orbweave/pkg/loader"
	"github.com/vanderheijden86/orbweave/pkg/model"
	"github.com/vanderheijden86/orbweave/pkg/view"
)

// genDocument draws a random hierarchy document as JSON, bounded so a
// single property check stays fast.
func genDocument(t *rapid.T) []byte {
	var nodes int
	var gen func(depth int) []byte
	gen = func(depth int) []byte {
		nodes++
		name := rapid.StringMatching(`[a-z]{1,6}`).Draw(t, "name")
		value := rapid.Float64Range(0, 100).Draw(t, "value")

		doc := []byte(`{"name":"` + name + `","value":`)
		doc = appendFloat(doc, value)

		childCount := 0
		if depth < 3 && nodes < 40 {
			childCount = rapid.IntRange(0, 4).Draw(t, "children")
		}
		if childCount > 0 {
			doc = append(doc, []byte(`,"children":[`)...)
			for i := 0; i < childCount; i++ {
				if i > 0 {
					doc = append(doc, ',')
				}
				doc = append(doc, gen(depth+1)...)
			}
			doc = append(doc, ']')
		}
		return append(doc, '}')
	}
	return gen(0)
}

func appendFloat(b []byte, f float64) []byte {
	// Two-decimal fixed point keeps the document valid JSON without
	// exponent forms.
	i := int64(f * 100)
	b = append(b, []byte(rapidItoa(i/100))...)
	b = append(b, '.')
	frac := i % 100
	if frac < 10 {
		b = append(b, '0')
	}
	return append(b, []byte(rapidItoa(frac))...)
}

func rapidItoa(i int64) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}

// genState draws a random visibility state over the hierarchy's categories
// and depths.
func genState(t *rapid.T, h *model.Hierarchy) model.VisibilityState {
	vs := model.NewVisibilityState(h.Categories(), h.Depths())
	for _, name := range vs.CategoryNames() {
		vs.Categories[name] = rapid.Bool().Draw(t, "cat_"+name)
	}
	for _, d := range vs.DepthLevels() {
		if d == 0 {
			continue
		}
		vs.Depths[d] = rapid.Bool().Draw(t, "depth")
	}
	return vs
}

func TestPropVisibleHiddenPartition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h, err := loader.Parse(genDocument(t))
		if err != nil {
			t.Fatalf("generated document failed to parse: %v", err)
		}
		snap := view.Recompute(h, genState(t, h))

		if len(snap.Nodes)+snap.HiddenCount() != h.Len() {
			t.Fatalf("partition broken: %d visible + %d hidden != %d total",
				len(snap.Nodes), snap.HiddenCount(), h.Len())
		}
		for _, n := range h.Nodes {
			if (snap.Node(n.ID) != nil) == snap.Hidden(n.ID) {
				t.Fatalf("node %d both or neither visible/hidden", n.ID)
			}
		}
		if snap.Node(h.Root().ID) == nil {
			t.Fatal("root must always be visible")
		}
	})
}

func TestPropAggregationConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h, err := loader.Parse(genDocument(t))
		if err != nil {
			t.Fatalf("generated document failed to parse: %v", err)
		}
		snap := view.Recompute(h, genState(t, h))

		// Each hidden value surfaces exactly once on a visible ancestor, so
		// the display sum over the visible set conserves the raw sum.
		if got, want := snap.DisplaySum(), h.RawSum(); math.Abs(got-want) > 1e-6 {
			t.Fatalf("display sum %v != raw sum %v", got, want)
		}
	})
}

func TestPropHiddenSetDownwardClosed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h, err := loader.Parse(genDocument(t))
		if err != nil {
			t.Fatalf("generated document failed to parse: %v", err)
		}
		snap := view.Recompute(h, genState(t, h))

		for _, n := range h.Nodes {
			if !snap.Hidden(n.ID) {
				continue
			}
			for _, d := range h.Descendants(n.ID) {
				if !snap.Hidden(d.ID) {
					t.Fatalf("hidden node %d has visible descendant %d", n.ID, d.ID)
				}
			}
		}
	})
}

func TestPropLinksConnectVisibleOnly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h, err := loader.Parse(genDocument(t))
		if err != nil {
			t.Fatalf("generated document failed to parse: %v", err)
		}
		snap := view.Recompute(h, genState(t, h))

		// Every visible non-root node is linked from its parent; every link
		// endpoint belongs to this snapshot.
		if want := len(snap.Nodes) - 1; len(snap.Links) != want {
			t.Fatalf("%d links, want %d", len(snap.Links), want)
		}
		for _, l := range snap.Links {
			if snap.Node(l.Source.ID) != l.Source || snap.Node(l.Target.ID) != l.Target {
				t.Fatal("link endpoint not owned by snapshot")
			}
		}
	})
}

func TestPropTreePathSizes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h, err := loader.Parse(genDocument(t))
		if err != nil {
			t.Fatalf("generated document failed to parse: %v", err)
		}
		snap := view.Recompute(h, model.NewVisibilityState(h.Categories(), h.Depths()))

		for _, n := range snap.Nodes {
			path := snap.TreePath(n.ID)
			if len(path.Ancestors) != n.Depth {
				t.Fatalf("node %d at depth %d has %d ancestors", n.ID, n.Depth, len(path.Ancestors))
			}
			if len(path.All) != len(path.Ancestors)+1+len(path.Descendants) {
				t.Fatal("path parts do not add up")
			}
		}
	})
}
