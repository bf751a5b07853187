package cfganalysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage/internal/cfgmodel"
)

// diamond builds b0 -> {b1, b2} -> b3: entry branches, both arms rejoin at
// the single exit.
func diamond() *cfgmodel.Cfg {
	list := cfgmodel.BlockList{
		{ID: 0, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: []cfgmodel.SwitchTarget{
			{Label: "1", Block: 1}, {Label: "otherwise", Block: 2},
		}}},
		{ID: 1, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 3}},
		{ID: 2, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 3}},
		{ID: 3, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
	}
	return cfgmodel.FromBlockList("diamond", list)
}

// loopy builds b0 -> b1 -> b2 -> {b1 (back edge), b3}: a single natural
// loop with header b1 and exit b3.
func loopy() *cfgmodel.Cfg {
	list := cfgmodel.BlockList{
		{ID: 0, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 1}},
		{ID: 1, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: []cfgmodel.SwitchTarget{
			{Label: "1", Block: 2}, {Label: "otherwise", Block: 3},
		}}},
		{ID: 2, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 1}},
		{ID: 3, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
	}
	return cfgmodel.FromBlockList("loopy", list)
}

func TestBuildDominatorTree_Diamond(t *testing.T) {
	cfg := diamond()
	tree := BuildDominatorTree(cfg)

	assert.Equal(t, cfgmodel.BlockID(0), tree.Root())
	for _, n := range []cfgmodel.BlockID{0, 1, 2, 3} {
		assert.True(t, tree.Dominates(0, n), "entry must dominate b%d", n)
	}
	assert.False(t, tree.Dominates(1, 3), "b1 must not dominate the merge point b3")
	assert.False(t, tree.Dominates(2, 3), "b2 must not dominate the merge point b3")

	idom3, ok := tree.ImmediateDominator(3)
	require.True(t, ok)
	assert.Equal(t, cfgmodel.BlockID(0), idom3, "b3's immediate dominator is the branch point, not either arm")
}

func TestDominatorTree_ReflexiveAndTransitive(t *testing.T) {
	cfg := loopy()
	tree := BuildDominatorTree(cfg)
	for _, n := range cfg.Blocks() {
		assert.True(t, tree.Dominates(n, n), "dominates must be reflexive at b%d", n)
		assert.False(t, tree.StrictlyDominates(n, n), "strictly_dominates must be irreflexive at b%d", n)
	}
	// 0 dominates 1, 1 dominates 3 => 0 dominates 3 (transitivity).
	assert.True(t, tree.Dominates(0, 1))
	assert.True(t, tree.Dominates(1, 3))
	assert.True(t, tree.Dominates(0, 3))
}

func TestDominatorTree_DepthOrdering(t *testing.T) {
	cfg := diamond()
	tree := BuildDominatorTree(cfg)
	for _, n := range cfg.Blocks() {
		if tree.Dominates(0, n) {
			assert.LessOrEqual(t, tree.Depth(0), tree.Depth(n))
		}
	}
}

func TestBuildPostDominatorTree_Diamond(t *testing.T) {
	cfg := diamond()
	pd, ok := BuildPostDominatorTree(cfg)
	require.True(t, ok)
	assert.Equal(t, cfgmodel.BlockID(3), pd.Root())
	assert.True(t, pd.PostDominates(3, 0))
	assert.True(t, pd.PostDominates(3, 1))
	assert.True(t, pd.PostDominates(3, 2))
}
