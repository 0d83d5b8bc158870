package model

import "sort"

// VisibilityState is the explicit filter-state value object. The filter
// engine reads it on every recompute; it is mutated only by the toggle
// operations on the diagram. A nil map entry means "not present", not
// "hidden": only names/depths that exist in the hierarchy are tracked.
type VisibilityState struct {
	Categories map[string]bool // first-ring category name -> shown
	Depths     map[int]bool    // depth level -> shown
}

// NewVisibilityState returns a state with every given category and depth
// visible. Depth 0 is always present and always true.
func NewVisibilityState(categories []string, depths []int) VisibilityState {
	vs := VisibilityState{
		Categories: make(map[string]bool, len(categories)),
		Depths:     make(map[int]bool, len(depths)),
	}
	for _, c := range categories {
		vs.Categories[c] = true
	}
	for _, d := range depths {
		vs.Depths[d] = true
	}
	vs.Depths[0] = true
	return vs
}

// Clone returns a deep copy. Snapshots hold a clone so later toggles cannot
// mutate state a recompute already consumed.
func (vs VisibilityState) Clone() VisibilityState {
	cp := VisibilityState{
		Categories: make(map[string]bool, len(vs.Categories)),
		Depths:     make(map[int]bool, len(vs.Depths)),
	}
	for k, v := range vs.Categories {
		cp.Categories[k] = v
	}
	for k, v := range vs.Depths {
		cp.Depths[k] = v
	}
	return cp
}

// CategoryVisible reports whether the named category is shown. Unknown
// names report false.
func (vs VisibilityState) CategoryVisible(name string) bool {
	return vs.Categories[name]
}

// DepthVisible reports whether the given depth level is shown. Depth 0 is
// never hideable.
func (vs VisibilityState) DepthVisible(depth int) bool {
	if depth == 0 {
		return true
	}
	return vs.Depths[depth]
}

// CategoryNames returns the tracked category names in sorted order.
func (vs VisibilityState) CategoryNames() []string {
	names := make([]string, 0, len(vs.Categories))
	for name := range vs.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DepthLevels returns the tracked depth levels in ascending order.
func (vs VisibilityState) DepthLevels() []int {
	depths := make([]int, 0, len(vs.Depths))
	for d := range vs.Depths {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	return depths
}
