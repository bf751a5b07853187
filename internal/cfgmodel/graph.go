package cfgmodel

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// node adapts a BlockID to gonum's graph.Node.
type node int64

func (n node) ID() int64 { return int64(n) }

// cfgEdge is a gonum graph.Edge carrying an EdgeType payload.
type cfgEdge struct {
	F, T node
	Type EdgeType
}

func (e cfgEdge) From() graph.Node         { return e.F }
func (e cfgEdge) To() graph.Node           { return e.T }
func (e cfgEdge) ReversedEdge() graph.Edge { return cfgEdge{F: e.T, T: e.F, Type: e.Type} }

// Cfg is the control-flow graph for a single function: a gonum directed
// graph of block ids, with BasicBlock payloads kept alongside it (gonum
// nodes are bare ids, so payload lookups go through Block).
type Cfg struct {
	FunctionID string
	FuncHash   string // content hash of the function body, see pathcache

	g      *simple.DirectedGraph
	blocks map[BlockID]*BasicBlock
	entry  BlockID
}

// NewCfg creates an empty Cfg for the named function.
func NewCfg(functionID string) *Cfg {
	return &Cfg{
		FunctionID: functionID,
		g:          simple.NewDirectedGraph(),
		blocks:     make(map[BlockID]*BasicBlock),
	}
}

// AddBlock inserts a block and its classified outgoing edges. Blocks must be
// added in id order starting at 0; the first block added becomes Entry. Kind
// is always derived here (never trusted from the caller): the first block is
// Entry, a block whose terminator is Return/Unreachable/Abort is Exit, and
// everything else is Normal, per SPEC_FULL.md §3's three-kind BlockKind.
func (c *Cfg) AddBlock(b BasicBlock) {
	switch {
	case len(c.blocks) == 0:
		c.entry = b.ID
		b.Kind = BlockKindEntry
	case b.Terminator.Kind == TermReturn || b.Terminator.Kind == TermUnreachable || b.Terminator.Kind == TermAbort:
		b.Kind = BlockKindExit
	default:
		b.Kind = BlockKindNormal
	}
	cp := b
	c.blocks[b.ID] = &cp
	c.g.AddNode(node(b.ID))

	classified := classifyTerminator(b.Terminator)
	for _, succ := range b.Terminator.Successors() {
		et := classified[succ]
		c.g.SetEdge(cfgEdge{F: node(b.ID), T: node(succ), Type: et})
	}
}

// Block returns the block payload for id, or nil if absent.
func (c *Cfg) Block(id BlockID) *BasicBlock { return c.blocks[id] }

// Entry returns the id of the function's entry block.
func (c *Cfg) Entry() BlockID { return c.entry }

// NumBlocks returns the number of blocks in the Cfg.
func (c *Cfg) NumBlocks() int { return len(c.blocks) }

// Blocks returns all block ids in ascending order.
func (c *Cfg) Blocks() []BlockID {
	out := make([]BlockID, 0, len(c.blocks))
	for id := range c.blocks {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Successors returns the out-neighbours of id in ascending id order
// (the deterministic successor ordering path enumeration relies on).
func (c *Cfg) Successors(id BlockID) []BlockID {
	it := c.g.From(int64(id))
	var out []BlockID
	for it.Next() {
		out = append(out, BlockID(it.Node().ID()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Predecessors returns the in-neighbours of id in ascending id order.
func (c *Cfg) Predecessors(id BlockID) []BlockID {
	it := c.g.To(int64(id))
	var out []BlockID
	for it.Next() {
		out = append(out, BlockID(it.Node().ID()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EdgeKind returns the classified type of the edge from -> to, and whether
// that edge exists.
func (c *Cfg) EdgeKind(from, to BlockID) (EdgeType, bool) {
	e := c.g.Edge(int64(from), int64(to))
	if e == nil {
		return 0, false
	}
	ce, ok := e.(cfgEdge)
	if !ok {
		return 0, false
	}
	return ce.Type, true
}

// SetEdgeKind overwrites the classification of an existing edge — used by
// the loop analysis to upgrade edges to LoopBack/LoopExit once natural
// loops are known.
func (c *Cfg) SetEdgeKind(from, to BlockID, et EdgeType) {
	if c.g.Edge(int64(from), int64(to)) == nil {
		return
	}
	c.g.SetEdge(cfgEdge{F: node(from), T: node(to), Type: et})
}

// Graph exposes the underlying gonum directed graph for algorithms that
// want to operate generically (traverse, path search, etc).
func (c *Cfg) Graph() graph.Directed { return c.g }

// Exits returns the ids of all exit blocks: those whose terminator is
// Return, Unreachable, or Abort, in ascending id order, per
// original_source's find_exits.
func (c *Cfg) Exits() []BlockID {
	var out []BlockID
	for _, id := range c.Blocks() {
		b := c.blocks[id]
		switch b.Terminator.Kind {
		case TermReturn, TermUnreachable, TermAbort:
			out = append(out, id)
		}
	}
	return out
}

// PrimaryExit returns the first exit block in ascending id order, the
// "primary exit" the post-dominator tree is rooted at. Returns false if the
// Cfg has no exit block (e.g. an infinite loop with no return).
func (c *Cfg) PrimaryExit() (BlockID, bool) {
	exits := c.Exits()
	if len(exits) == 0 {
		return 0, false
	}
	return exits[0], true
}

// InDegree and OutDegree support the branch/merge-point predicates of
// SPEC_FULL.md §4.2.
func (c *Cfg) InDegree(id BlockID) int  { return c.g.To(int64(id)).Len() }
func (c *Cfg) OutDegree(id BlockID) int { return c.g.From(int64(id)).Len() }

func (c *Cfg) IsMergePoint(id BlockID) bool  { return c.InDegree(id) > 1 }
func (c *Cfg) IsBranchPoint(id BlockID) bool { return c.OutDegree(id) > 1 }

func (c *Cfg) IsExitBlock(id BlockID) bool {
	b := c.blocks[id]
	if b == nil {
		return false
	}
	switch b.Terminator.Kind {
	case TermReturn, TermUnreachable, TermAbort:
		return true
	default:
		return false
	}
}
