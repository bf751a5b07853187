// Package pathenum implements bounded, classified path enumeration over a
// cfgmodel.Cfg: DFS enumeration with loop-iteration bounding, path
// classification, static feasibility checking, path-count estimation, and
// hot-path scoring.
package pathenum

import (
	"mirage/internal/cfganalysis"
	"mirage/internal/cfgmodel"
)

type BlockID = cfgmodel.BlockID

// PathKind classifies a completed path. Priority order when more than one
// condition applies (most severe wins): Unreachable, Error, Degenerate,
// Normal.
type PathKind int

const (
	PathNormal PathKind = iota
	PathError
	PathDegenerate
	PathUnreachable
)

func (k PathKind) String() string {
	switch k {
	case PathError:
		return "error"
	case PathDegenerate:
		return "degenerate"
	case PathUnreachable:
		return "unreachable"
	default:
		return "normal"
	}
}

// Path is one enumerated walk through a Cfg from its entry to an exit.
type Path struct {
	PathID string
	Blocks []BlockID
	Kind   PathKind
	Entry  BlockID
	Exit   BlockID
}

// PathLimits bounds DFS enumeration: a per-path block-length ceiling, a
// total-paths ceiling, and how many times one loop header may be entered
// on a single path. Three presets match spec.md §3's (max_length, max_paths,
// loop_unroll_limit) triples exactly.
type PathLimits struct {
	MaxLength       int // a path longer than this, in blocks, is abandoned
	MaxPaths        int // enumeration stops once this many paths are found
	LoopUnrollLimit int // max times a loop header may be entered on one path
}

var (
	QuickLimits    = PathLimits{MaxLength: 100, MaxPaths: 1000, LoopUnrollLimit: 2}
	DefaultLimits  = PathLimits{MaxLength: 1000, MaxPaths: 10000, LoopUnrollLimit: 3}
	ThoroughLimits = PathLimits{MaxLength: 10000, MaxPaths: 100000, LoopUnrollLimit: 5}
)

// EnumerationContext precomputes the structural analyses path enumeration
// and hot-path scoring both need, so callers that do both don't recompute
// dominator trees twice.
type EnumerationContext struct {
	Cfg           *cfgmodel.Cfg
	DomTree       *cfganalysis.DominatorTree
	NaturalLoops  []*cfganalysis.NaturalLoop
	LoopHeaders   map[BlockID]bool
	Unreachable   map[BlockID]bool
}

// NewEnumerationContext precomputes everything enumeration and scoring need
// for cfg.
func NewEnumerationContext(cfg *cfgmodel.Cfg) *EnumerationContext {
	domTree := cfganalysis.BuildDominatorTree(cfg)
	loops := cfganalysis.DetectNaturalLoops(cfg, domTree)
	headers := make(map[BlockID]bool, len(loops))
	for _, l := range loops {
		headers[l.Header] = true
	}
	unreachable := make(map[BlockID]bool)
	for _, id := range cfganalysis.Unreachable(cfg) {
		unreachable[id] = true
	}
	return &EnumerationContext{
		Cfg:          cfg,
		DomTree:      domTree,
		NaturalLoops: loops,
		LoopHeaders:  headers,
		Unreachable:  unreachable,
	}
}
