package cfgmodel

import "sort"

// BlockListEntry is one block as emitted by a producer (the IR or CST/AST
// builder in internal/cfgbuild), before it has been wired into a Cfg.
type BlockListEntry struct {
	ID         BlockID
	Statements []string
	Terminator Terminator
	SourceFile string
	SourceLine int
}

// BlockList is the producer's output shape for one function: a dense,
// id-ordered sequence of blocks with typed terminators, per spec.md §4.1.
type BlockList []BlockListEntry

// FromBlockList builds a Cfg from a producer's BlockList, dropping any
// terminator reference to a block id that doesn't appear in the list (the
// producer's responsibility to avoid, per spec.md §3, but never trusted):
// a Goto or SwitchInt left with no surviving target becomes Unreachable: a
// dangling target is not a valid destination, so the block it belonged to
// is itself a dead end. A Call's target/unwind fields are simply cleared,
// since Call already models "no successor on this arm" as None.
func FromBlockList(functionID string, list BlockList) *Cfg {
	present := make(map[BlockID]bool, len(list))
	for _, e := range list {
		present[e.ID] = true
	}

	sorted := append(BlockList(nil), list...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	cfg := NewCfg(functionID)
	for _, e := range sorted {
		cfg.AddBlock(BasicBlock{
			ID:         e.ID,
			Statements: e.Statements,
			Terminator: dropDangling(e.Terminator, present),
			SourceFile: e.SourceFile,
			SourceLine: e.SourceLine,
		})
	}
	return cfg
}

func dropDangling(t Terminator, present map[BlockID]bool) Terminator {
	switch t.Kind {
	case TermGoto:
		if !present[t.GotoTarget] {
			return Terminator{Kind: TermUnreachable}
		}
	case TermSwitchInt:
		kept := make([]SwitchTarget, 0, len(t.Targets))
		for _, tgt := range t.Targets {
			if present[tgt.Block] {
				kept = append(kept, tgt)
			}
		}
		if len(kept) == 0 {
			return Terminator{Kind: TermUnreachable}
		}
		t.Targets = kept
	case TermCall:
		if t.CallTarget != nil && !present[*t.CallTarget] {
			t.CallTarget = nil
		}
		if t.CallUnwind != nil && !present[*t.CallUnwind] {
			t.CallUnwind = nil
		}
	}
	return t
}
