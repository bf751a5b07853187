package pathenum

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mirage/internal/cfgmodel"
)

func TestEstimatePathCount_Diamond(t *testing.T) {
	cfg := diamond()
	ctx := NewEnumerationContext(cfg)
	// One branch point (b0), no loops: 2^1 * (L+1)^0 = 2, matching the two
	// real paths Enumerate finds.
	assert.Equal(t, uint64(2), EstimatePathCount(ctx, 3))
}

func TestEstimatePathCount_Loop(t *testing.T) {
	cfg := loopy()
	ctx := NewEnumerationContext(cfg)
	// b1 is both the branch point and the loop header, so it is excluded
	// from the branch count (its fan-out is already priced into the loop
	// factor): 2^0 * (3+1)^1 = 4.
	assert.Equal(t, uint64(4), EstimatePathCount(ctx, 3))
}

// chainOfBranches builds a straight-line chain of n two-way branch points,
// each immediately rejoining before the next: enough of them saturates
// 2^n well before n reaches the block-id space.
func chainOfBranches(n int) *cfgmodel.Cfg {
	var list cfgmodel.BlockList
	for i := 0; i < n; i++ {
		branch := cfgmodel.BlockID(i * 3)
		t, f, merge := branch+1, branch+2, branch+3
		list = append(list,
			cfgmodel.BlockListEntry{ID: branch, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: []cfgmodel.SwitchTarget{
				{Label: "1", Block: t}, {Label: "otherwise", Block: f},
			}}},
			cfgmodel.BlockListEntry{ID: t, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: merge}},
			cfgmodel.BlockListEntry{ID: f, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: merge}},
		)
	}
	last := cfgmodel.BlockID(n * 3)
	list = append(list, cfgmodel.BlockListEntry{ID: last, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}})
	return cfgmodel.FromBlockList("chain", list)
}

func TestEstimatePathCount_MultiWaySwitch(t *testing.T) {
	// A single match with three non-default arms (out_degree=4) contributes
	// out_degree-1=3 to the branch count, not 1: 2^3 * (L+1)^0 = 8.
	list := cfgmodel.BlockList{
		{ID: 0, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: []cfgmodel.SwitchTarget{
			{Label: "1", Block: 1}, {Label: "2", Block: 2}, {Label: "3", Block: 3}, {Label: "otherwise", Block: 4},
		}}},
		{ID: 1, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 5}},
		{ID: 2, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 5}},
		{ID: 3, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 5}},
		{ID: 4, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 5}},
		{ID: 5, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
	}
	cfg := cfgmodel.FromBlockList("switch3", list)
	ctx := NewEnumerationContext(cfg)
	assert.Equal(t, uint64(8), EstimatePathCount(ctx, 3))
}

func TestEstimatePathCount_SaturatesInsteadOfOverflowing(t *testing.T) {
	cfg := chainOfBranches(70)
	ctx := NewEnumerationContext(cfg)
	assert.Equal(t, ^uint64(0), EstimatePathCount(ctx, 0), "2^70 overflows uint64 and must saturate, not wrap")
}
