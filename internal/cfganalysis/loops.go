package cfganalysis

import (
	"sort"

	"mirage/internal/cfgmodel"
)

// NaturalLoop is a back-edge (tail -> header, where header dominates tail)
// together with the set of blocks in its body.
type NaturalLoop struct {
	Header   BlockID
	BackEdge [2]BlockID // [tail, header]
	Body     map[BlockID]bool
}

// Contains reports whether the loop body includes n.
func (l *NaturalLoop) Contains(n BlockID) bool { return l.Body[n] }

// Size returns the number of blocks in the loop body.
func (l *NaturalLoop) Size() int { return len(l.Body) }

// NestingLevel returns the loop's nesting depth among allLoops: 1 plus the
// maximum nesting level of any loop whose body contains this loop's header,
// or 1 if no loop contains it (outermost).
func (l *NaturalLoop) NestingLevel(allLoops []*NaturalLoop) int {
	best := 0
	for _, other := range allLoops {
		if other == l {
			continue
		}
		if other.Body[l.Header] {
			if lvl := other.NestingLevel(allLoops); lvl > best {
				best = lvl
			}
		}
	}
	return best + 1
}

// DetectNaturalLoops finds every back-edge in cfg (using its dominator
// tree) and computes the corresponding loop body.
func DetectNaturalLoops(cfg *cfgmodel.Cfg, tree *DominatorTree) []*NaturalLoop {
	var loops []*NaturalLoop
	for _, tail := range cfg.Blocks() {
		for _, header := range cfg.Successors(tail) {
			if tree.Dominates(header, tail) {
				loops = append(loops, &NaturalLoop{
					Header:   header,
					BackEdge: [2]BlockID{tail, header},
					Body:     computeLoopBody(cfg, header, tail),
				})
			}
		}
	}
	return loops
}

// computeLoopBody does a reverse-BFS from tail over predecessor edges,
// stopping at header, and always includes header in the result.
func computeLoopBody(cfg *cfgmodel.Cfg, header, tail BlockID) map[BlockID]bool {
	body := map[BlockID]bool{header: true, tail: true}
	worklist := []BlockID{tail}
	for len(worklist) > 0 {
		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if n == header {
			continue
		}
		for _, p := range cfg.Predecessors(n) {
			if !body[p] {
				body[p] = true
				worklist = append(worklist, p)
			}
		}
	}
	return body
}

// UpgradeLoopEdges overwrites the EdgeType of every back-edge found by
// DetectNaturalLoops to LoopBack, and every edge leaving a loop's body to a
// block outside it to LoopExit — the second pass the data model's
// EdgeType doc comment describes: a producer emits Fallthrough/TrueBranch/
// FalseBranch for every edge up front, and this upgrades the subset loop
// analysis reclassifies once headers and bodies are known.
func UpgradeLoopEdges(cfg *cfgmodel.Cfg, loops []*NaturalLoop) {
	for _, l := range loops {
		cfg.SetEdgeKind(l.BackEdge[0], l.BackEdge[1], cfgmodel.EdgeLoopBack)
		for n := range l.Body {
			for _, succ := range cfg.Successors(n) {
				if !l.Body[succ] {
					cfg.SetEdgeKind(n, succ, cfgmodel.EdgeLoopExit)
				}
			}
		}
	}
}

// FindLoopHeaders returns the distinct loop header ids across loops, sorted.
func FindLoopHeaders(loops []*NaturalLoop) []BlockID {
	set := make(map[BlockID]bool)
	for _, l := range loops {
		set[l.Header] = true
	}
	out := make([]BlockID, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsLoopHeader reports whether n heads at least one loop.
func IsLoopHeader(loops []*NaturalLoop, n BlockID) bool {
	for _, l := range loops {
		if l.Header == n {
			return true
		}
	}
	return false
}

// LoopsContaining returns every loop whose body contains n.
func LoopsContaining(loops []*NaturalLoop, n BlockID) []*NaturalLoop {
	var out []*NaturalLoop
	for _, l := range loops {
		if l.Body[n] {
			out = append(out, l)
		}
	}
	return out
}

// FindNestedLoops returns (outer, inner) pairs where outer's body contains
// inner's header and outer != inner.
func FindNestedLoops(loops []*NaturalLoop) [][2]*NaturalLoop {
	var out [][2]*NaturalLoop
	for _, outer := range loops {
		for _, inner := range loops {
			if outer == inner {
				continue
			}
			if outer.Body[inner.Header] {
				out = append(out, [2]*NaturalLoop{outer, inner})
			}
		}
	}
	return out
}
