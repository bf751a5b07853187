package cfgbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage/internal/cfganalysis"
	"mirage/internal/cfgmodel"
)

// diamond builds b0 -> {b1, b2} -> b3.
func diamond() *cfgmodel.Cfg {
	list := cfgmodel.BlockList{
		{ID: 0, Statements: []string{"if cond"}, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: []cfgmodel.SwitchTarget{
			{Label: "1", Block: 1}, {Label: "otherwise", Block: 2},
		}}},
		{ID: 1, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 3}},
		{ID: 2, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 3}},
		{ID: 3, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
	}
	return Build("diamond", list)
}

func TestRoundTrip_Diamond(t *testing.T) {
	cfg := diamond()
	rows := ToStorageBlocks(42, cfg)
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Equal(t, int64(42), r.FunctionID)
	}

	back := FromStorageBlocks("diamond", rows)
	require.Equal(t, cfg.NumBlocks(), back.NumBlocks())
	for _, id := range cfg.Blocks() {
		assert.Equal(t, cfg.Block(id).Kind, back.Block(id).Kind, "block %d kind", id)
		assert.Equal(t, cfg.Block(id).Terminator.Kind, back.Block(id).Terminator.Kind, "block %d terminator", id)
		assert.ElementsMatch(t, cfg.Successors(id), back.Successors(id), "block %d successors", id)
	}
}

func TestRoundTrip_PreservesLoopEdgeClassification(t *testing.T) {
	list := cfgmodel.BlockList{
		{ID: 0, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 1}},
		{ID: 1, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: []cfgmodel.SwitchTarget{
			{Label: "1", Block: 2}, {Label: "otherwise", Block: 3},
		}}},
		{ID: 2, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 1}},
		{ID: 3, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
	}
	cfg := Build("loopy", list)
	et, ok := cfg.EdgeKind(2, 1)
	require.True(t, ok)
	require.Equal(t, cfgmodel.EdgeLoopBack, et)

	rows := ToStorageBlocks(1, cfg)
	back := FromStorageBlocks("loopy", rows)
	et, ok = back.EdgeKind(2, 1)
	require.True(t, ok)
	assert.Equal(t, cfgmodel.EdgeLoopBack, et, "loop-back classification must survive a storage round trip")

	domTree := cfganalysis.BuildDominatorTree(back)
	assert.True(t, domTree.Dominates(0, 3))
}

func TestRoundTrip_CallTerminatorWithUnwind(t *testing.T) {
	target := cfgmodel.BlockID(1)
	unwind := cfgmodel.BlockID(2)
	list := cfgmodel.BlockList{
		{ID: 0, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermCall, CallTarget: &target, CallUnwind: &unwind}},
		{ID: 1, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
		{ID: 2, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
	}
	cfg := Build("f", list)
	rows := ToStorageBlocks(1, cfg)
	back := FromStorageBlocks("f", rows)

	term := back.Block(0).Terminator
	require.Equal(t, cfgmodel.TermCall, term.Kind)
	require.NotNil(t, term.CallTarget)
	require.NotNil(t, term.CallUnwind)
	assert.Equal(t, cfgmodel.BlockID(1), *term.CallTarget)
	assert.Equal(t, cfgmodel.BlockID(2), *term.CallUnwind)
}
