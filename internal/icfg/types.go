// Package icfg stitches per-function cfgmodel.Cfgs into a single
// inter-procedural control-flow graph via a CALLS-neighbour oracle, per
// spec.md §4.5.
package icfg

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// IcfgNodeType names the structural role of one Icfg node.
type IcfgNodeType int

const (
	BasicBlock IcfgNodeType = iota
	CallSite
	FunctionEntry
	FunctionExit
)

func (t IcfgNodeType) String() string {
	switch t {
	case CallSite:
		return "call_site"
	case FunctionEntry:
		return "function_entry"
	case FunctionExit:
		return "function_exit"
	default:
		return "basic_block"
	}
}

// IcfgEdgeKind distinguishes an edge that stays within one function's CFG
// from the call/return edges that cross function boundaries.
type IcfgEdgeKind int

const (
	IntraProcedural IcfgEdgeKind = iota
	Call
	Return
)

func (k IcfgEdgeKind) String() string {
	switch k {
	case Call:
		return "call"
	case Return:
		return "return"
	default:
		return "intra"
	}
}

// IcfgNode is one node of the Icfg: either a real basic block (BasicBlock or
// CallSite) or a sentinel FunctionEntry/FunctionExit (BlockID -1 and -2
// respectively), per spec.md §3's Icfg field list.
type IcfgNode struct {
	FunctionID   int64
	FunctionName string
	BlockID      int64
	NodeType     IcfgNodeType
}

// IcfgEdge is one edge of the Icfg, exported for callers (internal/exportfmt)
// that need to enumerate edges without reaching into the gonum graph.
type IcfgEdge struct {
	From, To                 int64
	Kind                     IcfgEdgeKind
	Label                    string // intra-procedural edge type, or "call"/"return"
	FromFunction, ToFunction int64  // populated for Call/Return, 0 otherwise
}

// IcfgOptions bounds Icfg construction, per spec.md §4.5's defaults.
type IcfgOptions struct {
	MaxDepth           int
	IncludeReturnEdges bool
}

// DefaultIcfgOptions matches the reference's IcfgOptions::default().
func DefaultIcfgOptions() IcfgOptions {
	return IcfgOptions{MaxDepth: 3, IncludeReturnEdges: true}
}

type nodeKey struct{ FunctionID, BlockID int64 }

// gonumNode adapts a dense int64 node id to graph.Node.
type gonumNode int64

func (n gonumNode) ID() int64 { return int64(n) }

// gonumEdge adapts an IcfgEdge to graph.Edge.
type gonumEdge struct {
	F, T gonumNode
	IcfgEdge
}

func (e gonumEdge) From() graph.Node { return e.F }
func (e gonumEdge) To() graph.Node   { return e.T }
func (e gonumEdge) ReversedEdge() graph.Edge {
	rev := e.IcfgEdge
	rev.From, rev.To = rev.To, rev.From
	rev.FromFunction, rev.ToFunction = rev.ToFunction, rev.FromFunction
	return gonumEdge{F: e.T, T: e.F, IcfgEdge: rev}
}

// Icfg is the combined inter-procedural control-flow graph: one gonum
// directed graph whose nodes carry IcfgNode payloads, keyed by
// (function_id, block_id) so repeated references to the same block (e.g. a
// callee entry referenced by more than one call site) resolve to one node.
type Icfg struct {
	EntryFunction int64

	g      *simple.DirectedGraph
	nodes  map[int64]*IcfgNode
	byKey  map[nodeKey]int64
	nextID int64
}

func newIcfg(entryFunction int64) *Icfg {
	return &Icfg{
		EntryFunction: entryFunction,
		g:             simple.NewDirectedGraph(),
		nodes:         make(map[int64]*IcfgNode),
		byKey:         make(map[nodeKey]int64),
	}
}

// getOrAddNode returns the existing node id for (functionID, blockID),
// creating one with the given type/name if this is the first reference.
func (i *Icfg) getOrAddNode(functionID, blockID int64, name string, nt IcfgNodeType) int64 {
	key := nodeKey{functionID, blockID}
	if id, ok := i.byKey[key]; ok {
		return id
	}
	id := i.nextID
	i.nextID++
	i.byKey[key] = id
	i.nodes[id] = &IcfgNode{FunctionID: functionID, FunctionName: name, BlockID: blockID, NodeType: nt}
	i.g.AddNode(gonumNode(id))
	return id
}

func (i *Icfg) addEdge(from, to int64, kind IcfgEdgeKind, label string, fromFn, toFn int64) {
	i.g.SetEdge(gonumEdge{
		F: gonumNode(from),
		T: gonumNode(to),
		IcfgEdge: IcfgEdge{
			From: from, To: to, Kind: kind, Label: label,
			FromFunction: fromFn, ToFunction: toFn,
		},
	})
}

// Node returns the node payload for id, or nil if absent.
func (i *Icfg) Node(id int64) *IcfgNode { return i.nodes[id] }

// NodeIDs returns every node id in ascending order.
func (i *Icfg) NodeIDs() []int64 {
	out := make([]int64, 0, len(i.nodes))
	for id := range i.nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Edges returns every edge, in a deterministic (from, to) order.
func (i *Icfg) Edges() []IcfgEdge {
	var out []IcfgEdge
	it := i.g.Edges()
	for it.Next() {
		e := it.Edge().(gonumEdge)
		out = append(out, e.IcfgEdge)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].From != out[b].From {
			return out[a].From < out[b].From
		}
		return out[a].To < out[b].To
	})
	return out
}

// Graph exposes the underlying gonum directed graph for generic traversal.
func (i *Icfg) Graph() graph.Directed { return i.g }

// FunctionIDs returns the distinct function ids represented in the Icfg, in
// ascending order.
func (i *Icfg) FunctionIDs() []int64 {
	set := make(map[int64]bool)
	for _, n := range i.nodes {
		set[n.FunctionID] = true
	}
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}
