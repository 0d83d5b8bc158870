package loader_test

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/orbweave/pkg/loader"
	"github.com/vanderheijden86/orbweave/pkg/model"
)

const sampleDoc = `{
	"name": "Root", "type": "root", "value": 0,
	"children": [
		{"name": "A", "type": "category", "children": [
			{"name": "A1", "type": "leaf", "value": 5}
		]},
		{"name": "B", "type": "leaf", "value": 3}
	]
}`

func TestParseSampleDocument(t *testing.T) {
	h, err := loader.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if h.Len() != 4 {
		t.Fatalf("Expected 4 nodes, got %d", h.Len())
	}

	root := h.Root()
	if root.Name != "Root" || root.Depth != 0 || root.ParentID != model.NoParent {
		t.Errorf("Bad root: %+v", root)
	}
	if root.Total != 8 {
		t.Errorf("Expected root total 8, got %v", root.Total)
	}
	if h.LeafSum() != 8 {
		t.Errorf("Expected leaf sum 8, got %v", h.LeafSum())
	}
}

func TestSiblingSortByAggregatedValue(t *testing.T) {
	h, err := loader.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// A aggregates 5, B carries 3; A sorts first despite input order.
	cats := h.Categories()
	if len(cats) != 2 || cats[0] != "A" || cats[1] != "B" {
		t.Errorf("Expected categories [A B], got %v", cats)
	}
}

func TestSiblingSortTieKeepsInputOrder(t *testing.T) {
	doc := `{"name": "r", "children": [
		{"name": "x", "value": 2},
		{"name": "y", "value": 2},
		{"name": "z", "value": 2}
	]}`
	h, err := loader.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cats := h.Categories()
	if cats[0] != "x" || cats[1] != "y" || cats[2] != "z" {
		t.Errorf("Expected stable tie order [x y z], got %v", cats)
	}
}

func TestPreOrderIDs(t *testing.T) {
	h, err := loader.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// Pre-order over the sorted tree: Root, A, A1, B.
	wantNames := []string{"Root", "A", "A1", "B"}
	for i, want := range wantNames {
		n := h.Node(i)
		if n == nil || n.Name != want {
			t.Fatalf("Node %d: expected %q, got %+v", i, want, n)
		}
		if n.ID != i {
			t.Errorf("Node %q: ID %d does not match index %d", n.Name, n.ID, i)
		}
	}

	a := h.Node(1)
	if a.ParentID != 0 || a.Depth != 1 {
		t.Errorf("Bad parent/depth for A: %+v", a)
	}
	a1 := h.Node(2)
	if a1.ParentID != 1 || a1.Depth != 2 {
		t.Errorf("Bad parent/depth for A1: %+v", a1)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"null root", "null"},
		{"array root", `[{"name": "x"}]`},
		{"string root", `"hello"`},
		{"number root", `42`},
		{"children not array", `{"name": "r", "children": {"name": "x"}}`},
		{"negative value", `{"name": "r", "children": [{"name": "x", "value": -1}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loader.Parse([]byte(tc.doc))
			if err == nil {
				t.Fatalf("Expected error for %s", tc.name)
			}
			if !model.IsMalformed(err) {
				t.Errorf("Expected MalformedHierarchyError, got %T: %v", err, err)
			}
		})
	}
}

func TestParseNegativeValueNamesPath(t *testing.T) {
	doc := `{"name": "r", "children": [{"name": "bad", "value": -3}]}`
	_, err := loader.Parse([]byte(doc))
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("Expected offending path in error, got %q", err.Error())
	}
}

func TestLoadReader(t *testing.T) {
	h, err := loader.Load(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if h.Len() != 4 {
		t.Errorf("Expected 4 nodes, got %d", h.Len())
	}
}

func TestInternalOwnValueParticipatesInTotal(t *testing.T) {
	doc := `{"name": "r", "children": [
		{"name": "c", "value": 2, "children": [{"name": "l", "value": 5}]}
	]}`
	h, err := loader.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if h.Root().Total != 7 {
		t.Errorf("Expected total 7, got %v", h.Root().Total)
	}
}

func TestTypeTagIsInformationalOnly(t *testing.T) {
	// A bogus type tag must not affect loading.
	doc := `{"name": "r", "type": "banana", "children": [{"name": "x", "value": 1}]}`
	h, err := loader.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if h.Root().Type != model.NodeType("banana") {
		t.Errorf("Type tag not carried through: %v", h.Root().Type)
	}
}

func TestDeterministicLoad(t *testing.T) {
	h1, err := loader.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	h2, err := loader.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if h1.Len() != h2.Len() {
		t.Fatalf("Node counts differ: %d vs %d", h1.Len(), h2.Len())
	}
	for i := range h1.Nodes {
		a, b := h1.Nodes[i], h2.Nodes[i]
		if a.Name != b.Name || a.ID != b.ID || a.Total != b.Total || a.Depth != b.Depth {
			t.Errorf("Node %d differs between loads: %+v vs %+v", i, a, b)
		}
	}
}
