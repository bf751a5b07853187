package cfganalysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage/internal/cfgmodel"
)

// matchCfg builds a four-way dispatch at b0 so ClassifyBranch must report
// PatternMatch rather than PatternIfElse.
func matchCfg() *cfgmodel.Cfg {
	list := cfgmodel.BlockList{
		{ID: 0, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: []cfgmodel.SwitchTarget{
			{Label: "0", Block: 1}, {Label: "1", Block: 2}, {Label: "2", Block: 3}, {Label: "otherwise", Block: 4},
		}}},
		{ID: 1, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 4}},
		{ID: 2, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 4}},
		{ID: 3, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 4}},
		{ID: 4, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
	}
	return cfgmodel.FromBlockList("match", list)
}

// earlyReturn builds a branch whose arms never reconverge: one returns
// immediately, the other falls through to a distinct exit.
func earlyReturn() *cfgmodel.Cfg {
	list := cfgmodel.BlockList{
		{ID: 0, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: []cfgmodel.SwitchTarget{
			{Label: "1", Block: 1}, {Label: "otherwise", Block: 2},
		}}},
		{ID: 1, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
		{ID: 2, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
	}
	return cfgmodel.FromBlockList("early_return", list)
}

func TestClassifyBranch(t *testing.T) {
	d := diamond()
	assert.Equal(t, PatternIfElse, ClassifyBranch(d, 0))
	assert.Equal(t, PatternNone, ClassifyBranch(d, 1), "a Goto terminator is not a branch")

	m := matchCfg()
	assert.Equal(t, PatternMatch, ClassifyBranch(m, 0))
}

func TestIfElseBlocksAndMatchBlocks(t *testing.T) {
	d := diamond()
	assert.Equal(t, []cfgmodel.BlockID{0}, IfElseBlocks(d))
	assert.Empty(t, MatchBlocks(d))

	m := matchCfg()
	assert.Empty(t, IfElseBlocks(m))
	assert.Equal(t, []cfgmodel.BlockID{0}, MatchBlocks(m))
}

func TestFindIfElseShapes_Diamond(t *testing.T) {
	d := diamond()
	shapes := FindIfElseShapes(d)
	require.Len(t, shapes, 1)

	s := shapes[0]
	assert.Equal(t, cfgmodel.BlockID(0), s.Branch)
	assert.Equal(t, cfgmodel.BlockID(1), s.True)
	assert.Equal(t, cfgmodel.BlockID(2), s.False)
	require.True(t, s.HasMerge)
	assert.Equal(t, cfgmodel.BlockID(3), s.Merge)
}

func TestFindIfElseShapes_NoMergeOnEarlyReturn(t *testing.T) {
	cfg := earlyReturn()
	shapes := FindIfElseShapes(cfg)
	require.Len(t, shapes, 1)
	assert.False(t, shapes[0].HasMerge)
}

func TestMergePoint_Self(t *testing.T) {
	d := diamond()
	merge, ok := MergePoint(d, 1, 1)
	require.True(t, ok)
	assert.Equal(t, cfgmodel.BlockID(1), merge)
}
