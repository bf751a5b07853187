package cfganalysis

import "mirage/internal/cfgmodel"

// PostDominatorTree wraps a DominatorTree built over the reversed Cfg,
// rooted at the primary exit (the first exit block in ascending id order).
//
// Limitation (documented, not a defect — see original_source/post_dominators.rs
// and SPEC_FULL.md §9): functions with more than one exit only get complete
// post-dominance information along paths that reach the primary exit. Blocks
// that only reach a different exit have no computed immediate post-dominator.
type PostDominatorTree struct {
	inner *DominatorTree
	exit  BlockID
}

// BuildPostDominatorTree computes the post-dominator tree of cfg. Returns
// false if cfg has no exit block at all (e.g. an infinite loop with no
// return), matching the reference's "no post-dominators" case.
func BuildPostDominatorTree(cfg *cfgmodel.Cfg) (*PostDominatorTree, bool) {
	exit, ok := cfg.PrimaryExit()
	if !ok {
		return nil, false
	}
	tree := chkDominators(exit, cfg.Predecessors, cfg.Successors)
	return &PostDominatorTree{inner: tree, exit: exit}, true
}

func (p *PostDominatorTree) Root() BlockID { return p.exit }

func (p *PostDominatorTree) ImmediatePostDominator(n BlockID) (BlockID, bool) {
	return p.inner.ImmediateDominator(n)
}

func (p *PostDominatorTree) PostDominates(a, b BlockID) bool { return p.inner.Dominates(a, b) }

func (p *PostDominatorTree) StrictlyPostDominates(a, b BlockID) bool {
	return p.inner.StrictlyDominates(a, b)
}

func (p *PostDominatorTree) Children(n BlockID) []BlockID { return p.inner.Children(n) }

func (p *PostDominatorTree) PostDominators(n BlockID) []BlockID { return p.inner.Dominators(n) }

func (p *PostDominatorTree) CommonPostDominator(a, b BlockID) (BlockID, bool) {
	return p.inner.CommonDominator(a, b)
}

func (p *PostDominatorTree) Depth(n BlockID) int { return p.inner.Depth(n) }

// AsDominatorTree exposes the underlying generic tree for algorithms that
// only need tree shape (e.g. hot-path scoring's depth-based work).
func (p *PostDominatorTree) AsDominatorTree() *DominatorTree { return p.inner }
