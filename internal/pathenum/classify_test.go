package pathenum

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mirage/internal/cfgmodel"
)

func TestClassify_Normal(t *testing.T) {
	cfg := diamond()
	ctx := NewEnumerationContext(cfg)
	p := Path{Blocks: []BlockID{0, 1, 3}, Entry: 0, Exit: 3}
	assert.Equal(t, PathNormal, Classify(ctx, p))
}

func TestClassify_Error_OnAbort(t *testing.T) {
	list := cfgmodel.BlockList{
		{ID: 0, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermAbort}},
	}
	cfg := cfgmodel.FromBlockList("f", list)
	ctx := NewEnumerationContext(cfg)
	p := Path{Blocks: []BlockID{0}, Entry: 0, Exit: 0}
	assert.Equal(t, PathError, Classify(ctx, p))
}

func TestClassify_Degenerate_OnUnreachableTerminator(t *testing.T) {
	list := cfgmodel.BlockList{
		{ID: 0, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermUnreachable}},
	}
	cfg := cfgmodel.FromBlockList("f", list)
	ctx := NewEnumerationContext(cfg)
	p := Path{Blocks: []BlockID{0}, Entry: 0, Exit: 0}
	assert.Equal(t, PathDegenerate, Classify(ctx, p))
}

func TestClassify_PriorityErrorOverDegenerate(t *testing.T) {
	target := BlockID(1)
	list := cfgmodel.BlockList{
		{ID: 0, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermCall, CallTarget: &target, CallUnwind: &target}},
		{ID: 1, Terminator: cfgmodel.Terminator{Kind: cfgmodel.TermUnreachable}},
	}
	cfg := cfgmodel.FromBlockList("f", list)
	ctx := NewEnumerationContext(cfg)
	// The path touches both an Error-triggering block (0, a Call with
	// unwind) and a Degenerate-triggering one (1, Unreachable): Error wins.
	p := Path{Blocks: []BlockID{0, 1}, Entry: 0, Exit: 1}
	assert.Equal(t, PathError, Classify(ctx, p))
}
