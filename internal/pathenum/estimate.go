package pathenum

import (
	"math/bits"

	"mirage/internal/cfganalysis"
)

// EstimatePathCount approximates the number of distinct paths through a Cfg
// without enumerating them, as 2^B * (loopUnrollLimit+1)^L, per
// original_source/src/cfg/paths.rs::estimate_path_count: B sums
// (out_degree-1) over every non-header branch point (loop headers are
// excluded from the branch count since their fan-out is already accounted
// for by the loopUnrollLimit factor), and L is the number of distinct loop
// headers. Saturates at the machine word's maximum value instead of
// overflowing.
func EstimatePathCount(ctx *EnumerationContext, loopUnrollLimit int) uint64 {
	var branchPoints int
	for _, id := range ctx.Cfg.Blocks() {
		if ctx.LoopHeaders[id] {
			continue
		}
		if d := ctx.Cfg.OutDegree(id); d >= 2 {
			branchPoints += d - 1
		}
	}
	loops := len(cfganalysis.FindLoopHeaders(ctx.NaturalLoops))

	estimate, overflow := saturatingPow(2, branchPoints)
	if overflow {
		return ^uint64(0)
	}
	factor, overflow := saturatingPow(uint64(loopUnrollLimit+1), loops)
	if overflow {
		return ^uint64(0)
	}
	product, carry := bits.Mul64(estimate, factor)
	if carry != 0 {
		return ^uint64(0)
	}
	return product
}

// saturatingPow computes base^exp, reporting overflow instead of wrapping.
func saturatingPow(base uint64, exp int) (uint64, bool) {
	result := uint64(1)
	for i := 0; i < exp; i++ {
		hi, lo := bits.Mul64(result, base)
		if hi != 0 {
			return ^uint64(0), true
		}
		result = lo
	}
	return result, false
}
