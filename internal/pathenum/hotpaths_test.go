package pathenum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage/internal/cfgmodel"
)

func TestComputeHotPaths_LoopPathScoresHigher(t *testing.T) {
	cfg := loopy()
	ctx := NewEnumerationContext(cfg)
	result := Enumerate(ctx, PathLimits{MaxLength: 100, MaxPaths: 100, LoopUnrollLimit: 3})
	require.NotEmpty(t, result.Paths)

	hot := ComputeHotPaths(ctx, result.Paths, DefaultHotpathsOptions())
	require.NotEmpty(t, hot)

	var looped, straight *HotPath
	for i := range hot {
		count := 0
		for _, b := range hot[i].Blocks {
			if b == BlockID(1) {
				count++
			}
		}
		if count > 1 && looped == nil {
			looped = &hot[i]
		}
		if count == 1 && straight == nil {
			straight = &hot[i]
		}
	}
	require.NotNil(t, looped)
	require.NotNil(t, straight)
	assert.Greater(t, looped.HotnessScore, straight.HotnessScore)
}

func TestComputeHotPaths_EmptyInput(t *testing.T) {
	cfg := diamond()
	ctx := NewEnumerationContext(cfg)
	assert.Nil(t, ComputeHotPaths(ctx, nil, DefaultHotpathsOptions()))
}

func TestComputeHotPaths_TopNTruncates(t *testing.T) {
	cfg := diamond()
	ctx := NewEnumerationContext(cfg)
	result := Enumerate(ctx, DefaultLimits)
	hot := ComputeHotPaths(ctx, result.Paths, HotpathsOptions{TopN: 1, IncludeRationale: false})
	require.Len(t, hot, 1)
	assert.Empty(t, hot[0].Rationale)
}

// fiveArmCfg builds a single entry block 0 whose SwitchInt fans out into
// five independent arms of lengths 3, 3, 3, 3, 5 (each block-count
// includes the entry block itself), every arm ending in a Return block.
// Mean arm length is 17/5=3.4; the reference truncates that to 3 before
// the early-exit comparison, so none of the length-3 arms should be
// flagged (3 < 3 is false), even though 3 < 3.4 is true.
func fiveArmCfg() *cfgmodel.Cfg {
	list := cfgmodel.BlockList{
		{ID: 0, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: []cfgmodel.SwitchTarget{
			{Label: "1", Block: 1}, {Label: "2", Block: 10}, {Label: "3", Block: 20}, {Label: "4", Block: 40},
			{Label: "otherwise", Block: 30},
		}}},
		{ID: 1, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 2}},
		{ID: 2, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
		{ID: 10, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 11}},
		{ID: 11, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
		{ID: 20, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 21}},
		{ID: 21, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
		{ID: 40, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 41}},
		{ID: 41, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
		{ID: 30, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 31}},
		{ID: 31, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 32}},
		{ID: 32, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: 33}},
		{ID: 33, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermReturn}},
	}
	return cfgmodel.FromBlockList("fiveArm", list)
}

func TestComputeHotPaths_EarlyExitUsesTruncatedAverage(t *testing.T) {
	cfg := fiveArmCfg()
	ctx := NewEnumerationContext(cfg)
	result := Enumerate(ctx, DefaultLimits)
	require.Len(t, result.Paths, 5)

	hot := ComputeHotPaths(ctx, result.Paths, HotpathsOptions{TopN: 10, IncludeRationale: true})
	require.Len(t, hot, 5)
	for _, h := range hot {
		if len(h.Blocks) == 3 {
			for _, r := range h.Rationale {
				assert.NotContains(t, r, "Early exit")
			}
		}
	}
}

func TestComputeHotPaths_RationaleIncluded(t *testing.T) {
	cfg := diamond()
	ctx := NewEnumerationContext(cfg)
	result := Enumerate(ctx, DefaultLimits)
	hot := ComputeHotPaths(ctx, result.Paths, DefaultHotpathsOptions())
	for _, h := range hot {
		assert.NotEmpty(t, h.Rationale)
	}
}
