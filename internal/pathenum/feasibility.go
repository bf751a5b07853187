package pathenum

import "mirage/internal/cfgmodel"

// IsFeasiblePath performs Mirage's static (non-symbolic) feasibility check,
// per spec.md §4.3: no data-flow or constraint reasoning, only structural
// consistency. A path is feasible iff:
//  1. it is non-empty;
//  2. its first block has kind Entry;
//  3. every block id in the path exists in the Cfg;
//  4. every consecutive pair of blocks is connected by a real Cfg edge, and
//     never uses two different outgoing edges from the same SwitchInt block
//     (impossible by construction during DFS, but checked here since this
//     function also validates paths loaded back from the cache after a CFG
//     edit, where no such construction guarantee holds);
//  5. the last block's terminator is Return, Abort, Call with unwind=None,
//     or Call with unwind=Some and target=Some. A last block terminating in
//     Unreachable, Goto, SwitchInt, or a Call with target=None and
//     unwind=Some is a dead end and makes the path infeasible.
func IsFeasiblePath(cfg *cfgmodel.Cfg, blocks []BlockID) bool {
	if len(blocks) == 0 {
		return false
	}
	if entry := cfg.Block(blocks[0]); entry == nil || entry.Kind != cfgmodel.BlockKindEntry {
		return false
	}

	seenFrom := make(map[BlockID]BlockID, len(blocks))
	for i := 0; i+1 < len(blocks); i++ {
		from, to := blocks[i], blocks[i+1]
		if cfg.Block(from) == nil || cfg.Block(to) == nil {
			return false
		}
		if _, ok := cfg.EdgeKind(from, to); !ok {
			return false
		}
		if prior, ok := seenFrom[from]; ok && prior != to {
			return false
		}
		seenFrom[from] = to
	}

	last := cfg.Block(blocks[len(blocks)-1])
	if last == nil {
		return false
	}
	return isFeasibleExitTerminator(last.Terminator)
}

func isFeasibleExitTerminator(t cfgmodel.Terminator) bool {
	switch t.Kind {
	case cfgmodel.TermReturn, cfgmodel.TermAbort:
		return true
	case cfgmodel.TermCall:
		if t.CallUnwind == nil {
			return true
		}
		return t.CallTarget != nil
	default: // Unreachable, Goto, SwitchInt
		return false
	}
}

// IsFeasiblePathPrecomputed is IsFeasiblePath specialized for callers that
// already hold an adjacency set (e.g. bulk cache revalidation), avoiding a
// graph lookup per edge. It skips the Cfg lookups IsFeasiblePath performs
// (block existence and an Entry-kind first block), re-checking only edge
// connectivity and the last block's terminator shape.
func IsFeasiblePathPrecomputed(edges map[[2]BlockID]bool, blocks []BlockID, lastTerminator cfgmodel.Terminator) bool {
	if len(blocks) == 0 {
		return false
	}
	seenFrom := make(map[BlockID]BlockID, len(blocks))
	for i := 0; i+1 < len(blocks); i++ {
		from, to := blocks[i], blocks[i+1]
		if !edges[[2]BlockID{from, to}] {
			return false
		}
		if prior, ok := seenFrom[from]; ok && prior != to {
			return false
		}
		seenFrom[from] = to
	}
	return isFeasibleExitTerminator(lastTerminator)
}
