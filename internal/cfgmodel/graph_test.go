package cfgmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond builds b0 -> {b1, b2} -> b3, the canonical if/else-then-merge
// shape used across several packages' tests.
func diamond() *Cfg {
	list := BlockList{
		{ID: 0, Terminator: Terminator{Kind: TermSwitchInt, Targets: []SwitchTarget{
			{Label: "1", Block: 1}, {Label: "otherwise", Block: 2},
		}}},
		{ID: 1, Terminator: Terminator{Kind: TermGoto, GotoTarget: 3}},
		{ID: 2, Terminator: Terminator{Kind: TermGoto, GotoTarget: 3}},
		{ID: 3, Terminator: Terminator{Kind: TermReturn}},
	}
	return FromBlockList("diamond", list)
}

func TestFromBlockList_Diamond(t *testing.T) {
	cfg := diamond()
	require.Equal(t, 4, cfg.NumBlocks())
	assert.Equal(t, BlockID(0), cfg.Entry())
	assert.Equal(t, BlockKindEntry, cfg.Block(0).Kind)
	assert.Equal(t, BlockKindExit, cfg.Block(3).Kind)
	assert.ElementsMatch(t, []BlockID{3}, cfg.Exits())

	et, ok := cfg.EdgeKind(0, 1)
	require.True(t, ok)
	assert.Equal(t, EdgeTrueBranch, et)

	et, ok = cfg.EdgeKind(0, 2)
	require.True(t, ok)
	assert.Equal(t, EdgeFalseBranch, et)

	assert.True(t, cfg.IsMergePoint(3))
	assert.True(t, cfg.IsBranchPoint(0))
}

func TestFromBlockList_DropsDanglingTargets(t *testing.T) {
	list := BlockList{
		{ID: 0, Terminator: Terminator{Kind: TermGoto, GotoTarget: 99}},
	}
	cfg := FromBlockList("f", list)
	require.Equal(t, 1, cfg.NumBlocks())
	assert.Equal(t, TermUnreachable, cfg.Block(0).Terminator.Kind)
	assert.Empty(t, cfg.Successors(0))
}

func TestFromBlockList_CallDanglingTargetsCleared(t *testing.T) {
	target := BlockID(5)
	list := BlockList{
		{ID: 0, Terminator: Terminator{Kind: TermCall, CallTarget: &target}},
	}
	cfg := FromBlockList("f", list)
	require.Equal(t, 1, cfg.NumBlocks())
	assert.Equal(t, TermCall, cfg.Block(0).Terminator.Kind)
	assert.Nil(t, cfg.Block(0).Terminator.CallTarget)
}

func TestEdgeType_DotColorAndString(t *testing.T) {
	assert.Equal(t, "green", EdgeTrueBranch.DotColor())
	assert.Equal(t, "true_branch", EdgeTrueBranch.String())
	assert.Equal(t, "black", EdgeFallthrough.DotColor())
}
