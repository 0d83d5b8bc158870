// Package loader parses a hierarchical JSON document into the flat,
// immutable node set the rest of orbweave works on.
//
// The input is a single nested object: {name, value?, type?, children?}.
// Loading performs a post-order value roll-up (every internal node's total
// equals the sum of its subtree's leaf values), sorts siblings by aggregated
// total descending (ties keep input order), and assigns IDs in pre-order
// over the sorted tree so initial angular placement follows sorted order.
//
// Structural validation mirrors the parsed edges into a gonum directed
// graph and topologically sorts it; any cycle or duplicate parentage fails
// the load with a MalformedHierarchyError.
package loader

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/orbweave/pkg/metrics"
	"github.com/vanderheijden86/orbweave/pkg/model"
)

// docNode is the wire shape of one node in the input document.
type docNode struct {
	Name     string     `json:"name"`
	Value    *float64   `json:"value"`
	Type     string     `json:"type"`
	Children *[]docNode `json:"children"`
}

// treeNode is the intermediate build tree: parsed nodes plus roll-up
// totals, before sorting and ID assignment.
type treeNode struct {
	name     string
	typ      model.NodeType
	rawValue float64
	total    float64
	order    int // input position among siblings, tie-break for sorting
	children []*treeNode
}

// LoadFile reads and parses a hierarchy document from disk.
func LoadFile(path string) (*model.Hierarchy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hierarchy document: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a hierarchy document from r.
func Load(r io.Reader) (*model.Hierarchy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read hierarchy document: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a hierarchy document.
func Parse(data []byte) (*model.Hierarchy, error) {
	defer metrics.Timer(metrics.HierarchyLoad)()

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, model.Malformed("", "document has no root")
	}
	if !strings.HasPrefix(trimmed, "{") {
		return nil, model.Malformed("", "root must be an object")
	}

	var doc docNode
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, model.Malformed("", "invalid document: %v", err)
	}

	root, err := build(&doc, doc.Name)
	if err != nil {
		return nil, err
	}

	sortSiblings(root)

	h := flatten(root)
	if err := validateShape(h); err != nil {
		return nil, err
	}
	return h, nil
}

// build converts the decoded document into the intermediate tree, checking
// values and computing subtree totals post-order.
func build(d *docNode, path string) (*treeNode, error) {
	n := &treeNode{
		name: d.Name,
		typ:  model.NodeType(d.Type),
	}
	if d.Value != nil {
		if *d.Value < 0 {
			return nil, model.Malformed(path, "negative value %v", *d.Value)
		}
		n.rawValue = *d.Value
	}

	if d.Children != nil {
		n.children = make([]*treeNode, 0, len(*d.Children))
		for i := range *d.Children {
			child := &(*d.Children)[i]
			childPath := path + "/" + child.Name
			c, err := build(child, childPath)
			if err != nil {
				return nil, err
			}
			c.order = i
			n.children = append(n.children, c)
		}
	}

	if len(n.children) == 0 {
		n.total = n.rawValue
	} else {
		// Internal totals are the sum over descendants; an own value on an
		// internal node still participates.
		n.total = n.rawValue
		for _, c := range n.children {
			n.total += c.total
		}
	}
	return n, nil
}

// sortSiblings orders every sibling group by aggregated total descending,
// keeping input order on ties. This ordering feeds initial angular
// placement directly.
func sortSiblings(n *treeNode) {
	sort.SliceStable(n.children, func(i, j int) bool {
		return n.children[i].total > n.children[j].total
	})
	for _, c := range n.children {
		sortSiblings(c)
	}
}

// flatten assigns IDs in pre-order over the sorted tree and produces the
// flat hierarchy. A node's ID equals its index in the result.
func flatten(root *treeNode) *model.Hierarchy {
	h := &model.Hierarchy{}

	var walk func(n *treeNode, depth, parentID int) int
	walk = func(n *treeNode, depth, parentID int) int {
		id := len(h.Nodes)
		hn := &model.HierarchyNode{
			ID:       id,
			Name:     n.name,
			Type:     n.typ,
			RawValue: n.rawValue,
			Total:    n.total,
			Depth:    depth,
			ParentID: parentID,
		}
		h.Nodes = append(h.Nodes, hn)
		for _, c := range n.children {
			childID := walk(c, depth+1, id)
			hn.ChildIDs = append(hn.ChildIDs, childID)
		}
		return id
	}
	walk(root, 0, model.NoParent)
	return h
}

// validateShape mirrors the parent/child edges into a directed graph and
// rejects anything that is not a single-rooted tree.
func validateShape(h *model.Hierarchy) error {
	g := simple.NewDirectedGraph()
	for _, n := range h.Nodes {
		g.AddNode(simple.Node(n.ID))
	}

	seenChild := make(map[int]bool, h.Len())
	for _, n := range h.Nodes {
		for _, childID := range n.ChildIDs {
			if seenChild[childID] {
				return model.Malformed(h.Nodes[childID].Name, "node appears under multiple parents")
			}
			seenChild[childID] = true
			g.SetEdge(g.NewEdge(g.Node(int64(n.ID)), g.Node(int64(childID))))
		}
	}

	if _, err := topo.Sort(g); err != nil {
		return model.Malformed("", "cycle detected: %v", err)
	}

	roots := 0
	for _, n := range h.Nodes {
		if n.ParentID == model.NoParent {
			roots++
		}
	}
	if roots != 1 {
		return model.Malformed("", "expected exactly one root, found %d", roots)
	}
	return nil
}
