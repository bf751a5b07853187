package icfg

import (
	"errors"

	"mirage/internal/callgraph"
	"mirage/internal/storage"
)

// BuildIcfg stitches per-function CFGs into a single Icfg starting from
// entryFunction, per spec.md §4.5:
//  1. BFS from entryFunction, bounded by opts.MaxDepth, deduplicated by
//     function id.
//  2. Each visited function's blocks are loaded via store.GetCfgBlocks; an
//     empty result (no CFG on record) is dropped silently, leaving whatever
//     sentinel nodes/edges were already added when it was first referenced
//     as a callee.
//  3. Two sentinel nodes per function, FunctionEntry (-1) and FunctionExit
//     (-2), are created the first time the function is referenced at all
//     (as the traversal root, or as some other function's callee) so a Call
//     edge to a not-yet-visited callee is never left dangling.
//  4. One node per basic block, CallSite if its terminator is Call.
//  5. Intra-procedural edges follow each block's TerminatorTargets/Labels
//     directly (Mirage's storage schema already records them, unlike the
//     reference's positional-successor reconstruction); Return/Abort edge
//     to FunctionExit; Unreachable has no outgoing edge.
//  6. FunctionEntry connects to the first block.
//  7. Every CallSite in a function gets a Call edge to each CALLS callee's
//     FunctionEntry (and, when opts.IncludeReturnEdges, a Return edge from
//     the callee's FunctionExit back to the call site's successor block);
//     each callee is enqueued for traversal if its depth is within bound.
func BuildIcfg(store storage.Store, oracle callgraph.Oracle, entryFunction int64, opts IcfgOptions) (*Icfg, error) {
	result := newIcfg(entryFunction)

	visited := make(map[int64]bool)
	enqueued := map[int64]bool{entryFunction: true}
	depthOf := map[int64]int{entryFunction: 0}
	queue := []int64{entryFunction}

	result.getOrAddNode(entryFunction, -1, functionName(oracle, entryFunction), FunctionEntry)
	result.getOrAddNode(entryFunction, -2, functionName(oracle, entryFunction), FunctionExit)

	for len(queue) > 0 {
		fn := queue[0]
		queue = queue[1:]
		if visited[fn] {
			continue
		}
		visited[fn] = true
		depth := depthOf[fn]

		name := functionName(oracle, fn)
		entryID := result.getOrAddNode(fn, -1, name, FunctionEntry)
		exitID := result.getOrAddNode(fn, -2, name, FunctionExit)

		blocks, err := store.GetCfgBlocks(fn)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if len(blocks) == 0 {
			continue
		}

		blockNodeID := make(map[int64]int64, len(blocks))
		for _, blk := range blocks {
			nt := BasicBlock
			if blk.TerminatorKind == "call" {
				nt = CallSite
			}
			blockNodeID[blk.BlockID] = result.getOrAddNode(fn, blk.BlockID, name, nt)
		}

		result.addEdge(entryID, blockNodeID[blocks[0].BlockID], IntraProcedural, "entry", 0, 0)

		callSites := make(map[int64]int64) // blockID -> node id, for Call-terminated blocks
		for _, blk := range blocks {
			from := blockNodeID[blk.BlockID]
			switch blk.TerminatorKind {
			case "return", "abort":
				result.addEdge(from, exitID, IntraProcedural, blk.TerminatorKind, 0, 0)
			case "unreachable":
				// no outgoing edge
			default:
				for ti, tgt := range blk.TerminatorTargets {
					label := "fallthrough"
					if ti < len(blk.TerminatorLabels) {
						label = blk.TerminatorLabels[ti]
					}
					if to, ok := blockNodeID[tgt]; ok {
						result.addEdge(from, to, IntraProcedural, label, 0, 0)
					}
				}
			}
			if blk.TerminatorKind == "call" {
				callSites[blk.BlockID] = from
			}
		}

		if len(callSites) == 0 {
			continue
		}

		callees, err := oracle.Neighbours(fn, "CALLS")
		if err != nil {
			// spec.md §4.7: the offending call site contributes no
			// Call/Return edges; the rest of construction proceeds.
			callees = nil
		}

		for _, callee := range callees {
			calleeName := functionName(oracle, callee)
			calleeEntry := result.getOrAddNode(callee, -1, calleeName, FunctionEntry)
			calleeExit := result.getOrAddNode(callee, -2, calleeName, FunctionExit)

			for blockID, siteID := range callSites {
				result.addEdge(siteID, calleeEntry, Call, "call", fn, callee)
				if opts.IncludeReturnEdges {
					if succ, ok := successorBlock(blocks, blockID); ok {
						if succID, ok := blockNodeID[succ]; ok {
							result.addEdge(calleeExit, succID, Return, "return", callee, fn)
						}
					}
				}
			}

			if !enqueued[callee] && depth+1 <= opts.MaxDepth {
				enqueued[callee] = true
				depthOf[callee] = depth + 1
				queue = append(queue, callee)
			}
		}
	}

	return result, nil
}

func successorBlock(blocks []storage.CfgBlockData, blockID int64) (int64, bool) {
	for i, b := range blocks {
		if b.BlockID == blockID {
			if i+1 < len(blocks) {
				return blocks[i+1].BlockID, true
			}
			return 0, false
		}
	}
	return 0, false
}

func functionName(oracle callgraph.Oracle, fn int64) string {
	name, err := oracle.FunctionName(fn)
	if err != nil {
		return ""
	}
	return name
}
