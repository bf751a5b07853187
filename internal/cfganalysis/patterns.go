package cfganalysis

import "mirage/internal/cfgmodel"

// PatternKind names a recognized branch shape at a block.
type PatternKind int

const (
	PatternNone PatternKind = iota
	PatternIfElse
	PatternMatch
)

// ClassifyBranch recognizes the shape of a SwitchInt terminator: a single
// concrete arm (the two-way IfElse convention, Open Question #1) or two
// arms is IfElse; three or more concrete arms is a Match (multi-way
// dispatch). Non-SwitchInt blocks are PatternNone.
func ClassifyBranch(cfg *cfgmodel.Cfg, id cfgmodel.BlockID) PatternKind {
	b := cfg.Block(id)
	if b == nil || b.Terminator.Kind != cfgmodel.TermSwitchInt {
		return PatternNone
	}
	n := len(b.Terminator.Targets)
	switch {
	case n <= 2:
		return PatternIfElse
	default:
		return PatternMatch
	}
}

// IfElseBlocks returns every block classified as IfElse, in ascending id
// order.
func IfElseBlocks(cfg *cfgmodel.Cfg) []cfgmodel.BlockID {
	var out []cfgmodel.BlockID
	for _, id := range cfg.Blocks() {
		if ClassifyBranch(cfg, id) == PatternIfElse {
			out = append(out, id)
		}
	}
	return out
}

// MatchBlocks returns every block classified as Match, in ascending id
// order.
func MatchBlocks(cfg *cfgmodel.Cfg) []cfgmodel.BlockID {
	var out []cfgmodel.BlockID
	for _, id := range cfg.Blocks() {
		if ClassifyBranch(cfg, id) == PatternMatch {
			out = append(out, id)
		}
	}
	return out
}

// IfElseShape is one recognized two-way branch: the branch block plus its
// true/false successors (ordered by EdgeType, TrueBranch first) and the
// nearest common merge point, per spec.md §4.2.
type IfElseShape struct {
	Branch BlockID
	True   BlockID
	False  BlockID
	Merge  BlockID
	HasMerge bool
}

// FindIfElseShapes recognizes every IfElse branch point and its merge
// point. The two successors are ordered by EdgeType (TrueBranch first,
// FalseBranch second; graph order if neither edge carries that
// classification). The merge point is the nearest common successor of the
// two arms — found by alternating one BFS step from each side until a node
// reachable from both is seen — and is absent for early-return patterns
// where the two arms never reconverge.
func FindIfElseShapes(cfg *cfgmodel.Cfg) []IfElseShape {
	var out []IfElseShape
	for _, id := range IfElseBlocks(cfg) {
		succs := cfg.Successors(id)
		if len(succs) != 2 {
			continue
		}
		t, f := succs[0], succs[1]
		if et, ok := cfg.EdgeKind(id, succs[1]); ok && et == cfgmodel.EdgeTrueBranch {
			t, f = succs[1], succs[0]
		}
		merge, ok := MergePoint(cfg, t, f)
		out = append(out, IfElseShape{Branch: id, True: t, False: f, Merge: merge, HasMerge: ok})
	}
	return out
}

// MergePoint finds the nearest common successor reachable from both a and
// b by breadth-first search, alternating one frontier step per side so the
// nearer convergence point wins when the two arms rejoin at different
// distances. Returns false if the two arms never reconverge.
func MergePoint(cfg *cfgmodel.Cfg, a, b BlockID) (BlockID, bool) {
	seenA := map[BlockID]bool{a: true}
	seenB := map[BlockID]bool{b: true}
	if seenB[a] {
		return a, true
	}
	if seenA[b] {
		return b, true
	}
	frontierA := []BlockID{a}
	frontierB := []BlockID{b}
	for len(frontierA) > 0 || len(frontierB) > 0 {
		var nextA []BlockID
		for _, n := range frontierA {
			for _, s := range cfg.Successors(n) {
				if seenB[s] {
					return s, true
				}
				if !seenA[s] {
					seenA[s] = true
					nextA = append(nextA, s)
				}
			}
		}
		frontierA = nextA

		var nextB []BlockID
		for _, n := range frontierB {
			for _, s := range cfg.Successors(n) {
				if seenA[s] {
					return s, true
				}
				if !seenB[s] {
					seenB[s] = true
					nextB = append(nextB, s)
				}
			}
		}
		frontierB = nextB
	}
	return 0, false
}
