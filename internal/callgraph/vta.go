package callgraph

import (
	"fmt"
	"go/token"
	"sort"

	xcallgraph "golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/vta"
	"golang.org/x/tools/go/ssa"
)

// VTAOracle answers CALLS-neighbour queries from a real VTA-based call
// graph over loaded SSA, adapted from the teacher's callgraph.go
// (vta.CallGraph, callgraph.GraphVisitEdges, and its "ext::"+callee
// external-stub naming convention) — repurposed from emitting CPG call
// edges into answering Oracle.Neighbours.
type VTAOracle struct {
	fset *token.FileSet

	funcByID map[int64]*ssa.Function
	idByFunc map[*ssa.Function]int64
	names    map[int64]string

	neighbours map[int64][]int64 // functionID -> callee ids, CALLS edges only
	callers    map[int64][]int64 // functionID -> caller ids, the CALLS reverse
	nextStub   int64
}

// NewVTAOracle builds the VTA call graph over allFuncs (as produced by
// ssautil.AllFunctions) and indexes it by a dense function id assigned in
// ascending fn.String() order, external callees getting synthetic ids
// beyond the real function range (mirroring the teacher's "ext::" stub
// convention, generalized from a string id to an integer one).
func NewVTAOracle(fset *token.FileSet, allFuncs map[*ssa.Function]bool, isKnown func(*ssa.Function) bool) *VTAOracle {
	o := &VTAOracle{
		fset:       fset,
		funcByID:   make(map[int64]*ssa.Function),
		idByFunc:   make(map[*ssa.Function]int64),
		names:      make(map[int64]string),
		neighbours: make(map[int64][]int64),
		callers:    make(map[int64][]int64),
	}

	var ordered []*ssa.Function
	for fn := range allFuncs {
		ordered = append(ordered, fn)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].String() < ordered[j].String() })

	var next int64
	assign := func(fn *ssa.Function) int64 {
		if id, ok := o.idByFunc[fn]; ok {
			return id
		}
		id := next
		next++
		o.idByFunc[fn] = id
		o.funcByID[id] = fn
		o.names[id] = fn.String()
		return id
	}
	for _, fn := range ordered {
		assign(fn)
	}
	o.nextStub = next

	cg := vta.CallGraph(allFuncs, nil)
	cg.DeleteSyntheticNodes()

	_ = xcallgraph.GraphVisitEdges(cg, func(edge *xcallgraph.Edge) error {
		caller, callee := edge.Caller.Func, edge.Callee.Func
		if isKnown != nil && !isKnown(caller) && !isKnown(callee) {
			return nil
		}
		callerID, ok := o.idByFunc[caller]
		if !ok {
			return nil
		}
		calleeID := assign(callee)
		o.neighbours[callerID] = append(o.neighbours[callerID], calleeID)
		o.callers[calleeID] = append(o.callers[calleeID], callerID)
		return nil
	})

	for id, callees := range o.neighbours {
		sort.Slice(callees, func(i, j int) bool { return callees[i] < callees[j] })
		o.neighbours[id] = dedupSorted(callees)
		_ = id
	}
	for id, callers := range o.callers {
		sort.Slice(callers, func(i, j int) bool { return callers[i] < callers[j] })
		o.callers[id] = dedupSorted(callers)
	}

	return o
}

func dedupSorted(ids []int64) []int64 {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// FunctionID returns the id assigned to fn, if it appears in the call
// graph.
func (o *VTAOracle) FunctionID(fn *ssa.Function) (int64, bool) {
	id, ok := o.idByFunc[fn]
	return id, ok
}

func (o *VTAOracle) Neighbours(functionID int64, edgeType string) ([]int64, error) {
	switch edgeType {
	case "CALLS":
		return o.neighbours[functionID], nil
	case "CALLED_BY":
		return o.callers[functionID], nil
	default:
		return nil, fmt.Errorf("callgraph: unsupported edge type %q", edgeType)
	}
}

func (o *VTAOracle) FunctionName(functionID int64) (string, error) {
	name, ok := o.names[functionID]
	if !ok {
		return "", fmt.Errorf("callgraph: unknown function id %d", functionID)
	}
	return name, nil
}
