// # internal/engine/graph/detect.go
package graph

import "screenmap/internal/shared/observability"

// CycleReport lists every simple cycle in the navigation graph as an
// ordered node list closing the loop, e.g. [A B A], plus the subset not
// covered by any allowCycles annotation. Cycles are findings, never
// errors.
type CycleReport struct {
	HasCycles  bool
	Cycles     [][]string
	Disallowed [][]string
}

// DetectCycles enumerates all simple cycles. Each cycle is discovered
// exactly once, rooted at its lexicographically smallest member: the
// search from a start node only walks nodes ordered after it, so a
// cycle seen from a later start would revisit a smaller node and is
// skipped there.
func (g *Graph) DetectCycles() CycleReport {
	var report CycleReport

	for _, start := range g.ids {
		onStack := map[string]bool{start: true}
		path := []string{start}

		var dfs func(curr string)
		dfs = func(curr string) {
			for _, next := range g.next[curr] {
				if next == start {
					cycle := make([]string, len(path)+1)
					copy(cycle, path)
					cycle[len(path)] = start
					report.Cycles = append(report.Cycles, cycle)
					continue
				}
				if next < start || onStack[next] || !g.has(next) {
					continue
				}
				onStack[next] = true
				path = append(path, next)
				dfs(next)
				path = path[:len(path)-1]
				delete(onStack, next)
			}
		}
		dfs(start)
	}

	report.HasCycles = len(report.Cycles) > 0
	for _, cycle := range report.Cycles {
		if !g.cycleAllowed(cycle) {
			report.Disallowed = append(report.Disallowed, cycle)
		}
	}

	observability.NavigationCycles.Set(float64(len(report.Cycles)))
	return report
}

// cycleAllowed reports whether any participating node opts in via
// allowCycles.
func (g *Graph) cycleAllowed(cycle []string) bool {
	for _, id := range cycle {
		if g.allow[id] {
			return true
		}
	}
	return false
}
