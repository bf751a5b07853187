package pathenum

import (
	"fmt"
	"math"
	"sort"

	"mirage/internal/cfganalysis"
	"mirage/internal/cfgmodel"
)

// HotPath is one scored path, with a human-readable rationale trail for
// each multiplier applied.
type HotPath struct {
	PathID        string
	Blocks        []BlockID
	HotnessScore  float64
	Rationale     []string
}

// HotpathsOptions controls how many hot paths are returned and whether the
// rationale trail is populated.
type HotpathsOptions struct {
	TopN            int
	IncludeRationale bool
}

// DefaultHotpathsOptions matches the reference's Default impl.
func DefaultHotpathsOptions() HotpathsOptions {
	return HotpathsOptions{TopN: 10, IncludeRationale: true}
}

// ComputeHotPaths scores every path by a loop-depth factor, a dominator-
// count factor, and an early-exit penalty, then returns the top N by
// descending score. The dominant-block count deliberately reproduces the
// reference implementation's literal (and somewhat degenerate) computation
// of "dominant_blocks" as the entry block's own dominator chain rather than
// the more intuitive "blocks on the path that dominate entry" — see
// DESIGN.md's Open Question decisions for why this is kept as-is.
func ComputeHotPaths(ctx *EnumerationContext, paths []Path, opts HotpathsOptions) []HotPath {
	if len(paths) == 0 {
		return nil
	}

	dominantBlocks := make(map[BlockID]bool)
	for _, d := range ctx.DomTree.Dominators(ctx.Cfg.Entry()) {
		dominantBlocks[d] = true
	}

	var totalLen int
	for _, p := range paths {
		totalLen += len(p.Blocks)
	}
	// Truncated, not rounded: matches the reference's `avg_len as usize`
	// integer cast, so a mean like 3.4 does not count length-3 paths as
	// "early exit" (3 < 3 is false, unlike the untruncated 3.0 < 3.4).
	avgLen := totalLen / len(paths)

	out := make([]HotPath, 0, len(paths))
	for _, p := range paths {
		hp := HotPath{PathID: p.PathID, Blocks: append([]BlockID(nil), p.Blocks...), HotnessScore: 1.0}

		loopDepth := computeLoopDepth(ctx.NaturalLoops, p.Blocks)
		loopFactor := math.Pow(2.0, float64(loopDepth))
		hp.HotnessScore *= loopFactor
		if opts.IncludeRationale {
			hp.Rationale = append(hp.Rationale, fmt.Sprintf("Loop depth %d (x%.1f)", loopDepth, loopFactor))
		}

		dominantCount := 0
		for _, b := range p.Blocks {
			if dominantBlocks[b] {
				dominantCount++
			}
		}
		domFactor := 1.0 + float64(dominantCount)*0.5
		hp.HotnessScore *= domFactor
		if opts.IncludeRationale {
			hp.Rationale = append(hp.Rationale, fmt.Sprintf("%d dominant blocks (x%.1f)", dominantCount, domFactor))
		}

		if len(p.Blocks) > 1 && len(p.Blocks) < avgLen {
			if exitBlock := ctx.Cfg.Block(p.Exit); exitBlock != nil && exitBlock.Terminator.Kind == cfgmodel.TermReturn {
				hp.HotnessScore *= 0.5
				if opts.IncludeRationale {
					hp.Rationale = append(hp.Rationale, "Early exit (x0.5)")
				}
			}
		}

		out = append(out, hp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].HotnessScore, out[j].HotnessScore
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		return a > b
	})

	if opts.TopN > 0 && len(out) > opts.TopN {
		out = out[:opts.TopN]
	}
	return out
}

// computeLoopDepth returns, for the block on the path most deeply nested in
// loops, how many natural loops contain it — i.e. the maximum over the
// path's blocks of the count of loops whose body contains that block.
func computeLoopDepth(loops []*cfganalysis.NaturalLoop, blocks []BlockID) int {
	best := 0
	for _, b := range blocks {
		count := 0
		for _, l := range loops {
			if l.Body[b] {
				count++
			}
		}
		if count > best {
			best = count
		}
	}
	return best
}
