package exportfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage/internal/cfgmodel"
	"mirage/internal/pathenum"
)

// diamond builds b0 -> {b1, b2} -> b3.
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

func TestCfgDOT_ContainsExpectedColorsAndLabels(t *testing.T) {
	dot := CfgDOT(diamond())
	assert.Contains(t, dot, "digraph CFG")
	assert.Contains(t, dot, "lightgreen", "the entry block must be filled lightgreen")
	assert.Contains(t, dot, "lightcoral", "an exit block must be filled lightcoral")
	assert.Contains(t, dot, "color=green", "a TrueBranch edge must be green")
	assert.Contains(t, dot, "color=red", "a FalseBranch edge must be red")
	assert.Contains(t, dot, "Block 0")
}

func TestToCfgJSON_Shape(t *testing.T) {
	out := ToCfgJSON("diamond", diamond())
	assert.Equal(t, "diamond", out.FunctionName)
	assert.Equal(t, int64(0), out.Entry)
	assert.Equal(t, []int64{3}, out.Exits)
	require.Len(t, out.Blocks, 4)
	assert.Equal(t, "entry", out.Blocks[0].Kind)
	assert.Equal(t, "switch_int", out.Blocks[0].Terminator.Kind)
	assert.Equal(t, []int64{1, 2}, out.Blocks[0].Terminator.Targets)
	require.Len(t, out.Edges, 4)
}

func TestMarshalCfgJSON_ProducesValidJSON(t *testing.T) {
	raw, err := MarshalCfgJSON("diamond", diamond())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"function_name": "diamond"`)
}

func TestSummarizePath_ShortPath(t *testing.T) {
	cfg := diamond()
	p := pathenum.Path{Blocks: []cfgmodel.BlockID{0, 1, 3}, Kind: pathenum.PathNormal, Entry: 0, Exit: 3}
	s := SummarizePath(cfg, p)
	assert.Equal(t, "entry -> b1 -> b3 (3 blocks)", s)
}

func TestSummarizePath_ErrorSuffix(t *testing.T) {
	cfg := diamond()
	p := pathenum.Path{Blocks: []cfgmodel.BlockID{0, 1, 3}, Kind: pathenum.PathError, Entry: 0, Exit: 3}
	assert.Contains(t, SummarizePath(cfg, p), "-> error")
}

func TestSummarizePath_UnreachablePrefix(t *testing.T) {
	cfg := diamond()
	p := pathenum.Path{Blocks: []cfgmodel.BlockID{0, 1, 3}, Kind: pathenum.PathUnreachable, Entry: 0, Exit: 3}
	assert.Contains(t, SummarizePath(cfg, p), "Unreachable:")
}

func TestSummarizePath_ElidesLongPaths(t *testing.T) {
	cfg := diamond()
	p := pathenum.Path{Blocks: []cfgmodel.BlockID{0, 1, 2, 3, 1, 2, 3}, Kind: pathenum.PathNormal, Entry: 0, Exit: 3}
	s := SummarizePath(cfg, p)
	assert.Contains(t, s, "...")
	assert.Contains(t, s, "(7 blocks)")
}

func TestSummarizeCfg(t *testing.T) {
	s := SummarizeCfg("diamond", diamond())
	assert.Contains(t, s, "4 blocks")
	assert.Contains(t, s, "entry=0")
	assert.Contains(t, s, "1 exits")
	assert.Contains(t, s, "0 loops")
}
