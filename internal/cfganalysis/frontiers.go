package cfganalysis

import (
	"sort"

	"mirage/internal/cfgmodel"
)

// DominanceFrontiers computes, for each node, the set of nodes at the
// boundary of what it dominates — Cytron et al.'s classic two-rule
// formulation, processed with nodes ordered by decreasing dominator-tree
// depth so each node's children are resolved before it needs them.
type DominanceFrontiers struct {
	frontiers map[BlockID]map[BlockID]bool
	tree      *DominatorTree
}

// NewDominanceFrontiers computes the dominance frontiers of cfg given its
// (already built) dominator tree.
func NewDominanceFrontiers(cfg *cfgmodel.Cfg, tree *DominatorTree) *DominanceFrontiers {
	nodes := tree.AllNodes()
	sort.Slice(nodes, func(i, j int) bool { return tree.Depth(nodes[i]) > tree.Depth(nodes[j]) })

	df := make(map[BlockID]map[BlockID]bool, len(nodes))
	for _, n := range nodes {
		df[n] = make(map[BlockID]bool)
	}

	for _, n := range nodes {
		// Rule 1 (DFlocal): successors not immediately dominated by n.
		for _, v := range cfg.Successors(n) {
			idomV, ok := tree.ImmediateDominator(v)
			if !ok || idomV != n {
				df[n][v] = true
			}
		}
		// Rule 2 (DFup): children's frontiers, excluding nodes n strictly
		// dominates.
		for _, c := range tree.Children(n) {
			for w := range df[c] {
				if !tree.StrictlyDominates(n, w) {
					df[n][w] = true
				}
			}
		}
	}

	return &DominanceFrontiers{frontiers: df, tree: tree}
}

// Frontier returns the dominance frontier of n, sorted.
func (d *DominanceFrontiers) Frontier(n BlockID) []BlockID {
	set := d.frontiers[n]
	out := make([]BlockID, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InFrontier reports whether v is in n's dominance frontier.
func (d *DominanceFrontiers) InFrontier(n, v BlockID) bool { return d.frontiers[n][v] }

// DominatorTree returns the dominator tree the frontiers were computed
// against.
func (d *DominanceFrontiers) DominatorTree() *DominatorTree { return d.tree }

// NodesWithFrontiers returns all nodes that have a (possibly empty)
// computed frontier, sorted.
func (d *DominanceFrontiers) NodesWithFrontiers() []BlockID {
	out := make([]BlockID, 0, len(d.frontiers))
	for n := range d.frontiers {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IteratedFrontier computes the iterated dominance frontier of a node set
// via worklist fixed point: repeatedly union in the frontier of every node
// currently in the set until nothing new is added.
func (d *DominanceFrontiers) IteratedFrontier(nodes []BlockID) []BlockID {
	result := make(map[BlockID]bool)
	worklist := append([]BlockID(nil), nodes...)
	for len(worklist) > 0 {
		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, v := range d.Frontier(n) {
			if !result[v] {
				result[v] = true
				worklist = append(worklist, v)
			}
		}
	}
	out := make([]BlockID, 0, len(result))
	for v := range result {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UnionFrontier returns the union of the frontiers of every node in nodes.
func (d *DominanceFrontiers) UnionFrontier(nodes []BlockID) []BlockID {
	result := make(map[BlockID]bool)
	for _, n := range nodes {
		for _, v := range d.Frontier(n) {
			result[v] = true
		}
	}
	out := make([]BlockID, 0, len(result))
	for v := range result {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
