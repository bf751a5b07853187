// Package callgraph provides the CALLS-neighbour oracle ICFG stitching
// needs, plus a real implementation backed by golang.org/x/tools's
// VTA-based call graph builder.
package callgraph

// Oracle answers call-graph neighbour queries. ICFG construction only ever
// asks for the "CALLS" edge type, matching original_source/icfg.rs's
// NeighborQuery{edge_type: Some("CALLS")}. "CALLED_BY" is its reverse
// (who calls this function), used by blast-zone's caller-impact walk
// (SPEC_FULL.md §12).
type Oracle interface {
	Neighbours(functionID int64, edgeType string) ([]int64, error)
	FunctionName(functionID int64) (string, error)
}
