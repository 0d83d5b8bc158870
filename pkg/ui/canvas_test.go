package ui

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/orbweave/pkg/layout"
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

func testSnapshot(t *testing.T) *view.Snapshot {
	t.Helper()
	h, err := loader.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	snap := view.Recompute(h, model.NewVisibilityState(h.Categories(), h.Depths()))
	cfg := layout.DefaultConfig()
	layout.Apply(snap.Nodes, layout.Compute(h, cfg), cfg)
	return snap
}

func TestRenderDiagramShowsNodes(t *testing.T) {
	snap := testSnapshot(t)
	out := renderDiagram(snap, view.TreePath{}, -1, 120, 40, true)

	for _, name := range []string{"Root", "A1", "B"} {
		if !strings.Contains(out, name) {
			t.Errorf("Canvas missing node %q", name)
		}
	}
	// Subtree totals on bubbles.
	if !strings.Contains(out, "Root 8") {
		t.Error("Root should show subtree total 8")
	}
	if !strings.Contains(out, "·") {
		t.Error("Expected link dots on the canvas")
	}
}

func TestRenderDiagramHidesValuesWhenOff(t *testing.T) {
	snap := testSnapshot(t)
	out := renderDiagram(snap, view.TreePath{}, -1, 120, 40, false)
	if strings.Contains(out, "Root 8") {
		t.Error("Values rendered despite showValues=false")
	}
}

func TestRenderDiagramMarksFoldedBubbles(t *testing.T) {
	h, err := loader.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	vs := model.NewVisibilityState(h.Categories(), h.Depths())
	vs.Categories["A"] = false
	snap := view.Recompute(h, vs)
	cfg := layout.DefaultConfig()
	layout.Apply(snap.Nodes, layout.Compute(h, cfg), cfg)

	out := renderDiagram(snap, view.TreePath{}, -1, 120, 40, false)
	if !strings.Contains(out, "Root+") {
		t.Error("Folded bubble should carry a + marker")
	}
}

func TestRenderDiagramDegenerateSizes(t *testing.T) {
	snap := testSnapshot(t)
	if out := renderDiagram(snap, view.TreePath{}, -1, 2, 2, true); out != "" {
		t.Error("Expected empty output for a too-small canvas")
	}
	if out := renderDiagram(nil, view.TreePath{}, -1, 80, 24, true); out != "" {
		t.Error("Expected empty output for nil snapshot")
	}
}

func TestCanvasLineStaysOffLabels(t *testing.T) {
	c := newCanvas(20, 5)
	c.label(5, 2, "node", cellNode)
	c.line(0, 2, 19, 2)

	// The label cells keep their rune and style.
	if c.cells[2][5].r != 'n' || c.cells[2][5].style != cellNode {
		t.Error("Link drawing overwrote a label cell")
	}
	if c.cells[2][0].r != '·' {
		t.Error("Link dot missing on empty cell")
	}
}

func TestCanvasLabelTruncates(t *testing.T) {
	c := newCanvas(10, 3)
	c.label(4, 1, "longlonglong", cellNode)
	row := make([]rune, 0, 10)
	for _, cl := range c.cells[1] {
		row = append(row, cl.r)
	}
	s := string(row)
	if !strings.Contains(s, "…") {
		t.Errorf("Expected truncation ellipsis, got %q", s)
	}
}
