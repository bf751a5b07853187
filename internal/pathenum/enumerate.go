package pathenum

// EnumerateResult is the outcome of a bounded enumeration.
type EnumerateResult struct {
	Paths     []Path
	Truncated bool // true if MaxLength or MaxPaths cut enumeration short
}

// Enumerate performs a bounded depth-first walk of ctx.Cfg from its entry
// block to every reachable exit, classifying each completed path. This
// follows spec.md §4.3's DFS state machine literally: a path prefix, an
// on-stack visited set (a non-header node already on the path ends that
// branch — it's a cycle in what should be an acyclic region), and a
// loop-header iteration counter that allows entering a header up to
// limits.LoopUnrollLimit times on one path before abandoning the branch. Successors are
// visited in ascending block-id order so identical CFGs yield identical,
// bit-for-bit identical path sets.
func Enumerate(ctx *EnumerationContext, limits PathLimits) EnumerateResult {
	cfg := ctx.Cfg
	var result EnumerateResult

	path := make([]BlockID, 0, 16)
	visited := make(map[BlockID]bool)
	loopCount := make(map[BlockID]int)

	var walk func(n BlockID)
	walk = func(n BlockID) {
		path = append(path, n)
		defer func() { path = path[:len(path)-1] }()

		if len(path) > limits.MaxLength {
			result.Truncated = true
			return
		}

		if cfg.IsExitBlock(n) {
			if len(result.Paths) >= limits.MaxPaths {
				result.Truncated = true
				return
			}
			blocks := append([]BlockID(nil), path...)
			p := Path{
				Blocks: blocks,
				Entry:  blocks[0],
				Exit:   blocks[len(blocks)-1],
			}
			p.Kind = Classify(ctx, p)
			p.PathID = HashBlocks(blocks)
			result.Paths = append(result.Paths, p)
			return
		}

		if len(result.Paths) >= limits.MaxPaths {
			result.Truncated = true
			return
		}

		isHeader := ctx.LoopHeaders[n]
		if visited[n] && !isHeader {
			return
		}
		if isHeader {
			if loopCount[n] >= limits.LoopUnrollLimit {
				return
			}
			loopCount[n]++
		}
		visited[n] = true

		for _, next := range cfg.Successors(n) {
			walk(next)
			if result.Truncated {
				break
			}
		}

		visited[n] = false
		if isHeader {
			loopCount[n]--
		}
	}

	if cfg.NumBlocks() > 0 {
		walk(cfg.Entry())
	}
	return result
}
