package callgraph

import "sort"

// Callers does a breadth-first walk of the "CALLED_BY" relation starting
// at functionID, bounded by maxDepth, and returns every distinct caller
// function id reached (functionID itself excluded), sorted ascending.
// This is the reverse of the "CALLS" traversal icfg.BuildIcfg performs,
// grounded on the same BFS/dedup-by-id/depth-bound shape (spec.md §4.5)
// applied to the oracle's reverse edge, per SPEC_FULL.md §12's blast-zone
// definition ("ICFG callers reachable within max_depth").
func Callers(oracle Oracle, functionID int64, maxDepth int) ([]int64, error) {
	visited := map[int64]bool{functionID: true}
	depthOf := map[int64]int{functionID: 0}
	queue := []int64{functionID}
	var out []int64

	for len(queue) > 0 {
		fn := queue[0]
		queue = queue[1:]
		depth := depthOf[fn]
		if depth >= maxDepth {
			continue
		}
		callers, err := oracle.Neighbours(fn, "CALLED_BY")
		if err != nil {
			return nil, err
		}
		for _, c := range callers {
			if visited[c] {
				continue
			}
			visited[c] = true
			depthOf[c] = depth + 1
			out = append(out, c)
			queue = append(queue, c)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
