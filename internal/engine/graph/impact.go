// # internal/engine/graph/impact.go
package graph

import (
	"sort"

	"screenmap/internal/catalog"
)

// DefaultImpactDepth bounds the transitive blast-radius search.
const DefaultImpactDepth = 3

// TransitiveHit is one indirectly affected screen with the shortest
// witness navigation path found to a direct dependent.
type TransitiveHit struct {
	ScreenID string
	Path     []string
}

// ImpactReport answers "what breaks if this API changes". Direct and
// transitive sets are disjoint by construction.
type ImpactReport struct {
	API        string
	Direct     []string
	Transitive []TransitiveHit
	TotalCount int
}

// AnalyzeImpact finds screens affected by a change to the named
// dependency. Direct dependents match a dependsOn entry by equality or
// dotted-prefix containment in either direction; every other screen is
// searched
// breadth-first over next edges for a path of at most maxDepth edges
// into the direct set, keeping the shortest witness. Screens reachable
// only beyond the bound are deliberately not reported.
func (g *Graph) AnalyzeImpact(api string, maxDepth int) ImpactReport {
	if maxDepth <= 0 {
		maxDepth = DefaultImpactDepth
	}
	report := ImpactReport{API: api}

	directSet := make(map[string]bool)
	for _, id := range g.ids {
		for _, dep := range g.depends[id] {
			if catalog.NamesMatch(dep, api) {
				directSet[id] = true
				break
			}
		}
	}
	for id := range directSet {
		report.Direct = append(report.Direct, id)
	}
	sort.Strings(report.Direct)

	for _, id := range g.ids {
		if directSet[id] {
			continue
		}
		if path, ok := g.shortestPathInto(id, directSet, maxDepth); ok {
			report.Transitive = append(report.Transitive, TransitiveHit{
				ScreenID: id,
				Path:     path,
			})
		}
	}
	sort.Slice(report.Transitive, func(i, j int) bool {
		return report.Transitive[i].ScreenID < report.Transitive[j].ScreenID
	})

	report.TotalCount = len(report.Direct) + len(report.Transitive)
	return report
}

// shortestPathInto runs a bounded BFS from one screen over next edges,
// returning the first (hence shortest) path that reaches the target
// set. Neighbor order is sorted, so ties break deterministically.
func (g *Graph) shortestPathInto(from string, targets map[string]bool, maxDepth int) ([]string, bool) {
	type step struct {
		id    string
		depth int
	}

	queue := []step{{id: from}}
	visited := map[string]bool{from: true}
	prev := make(map[string]string)

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		if curr.depth >= maxDepth {
			continue
		}

		for _, next := range g.next[curr.id] {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = curr.id

			if targets[next] {
				path := []string{next}
				for node := next; node != from; {
					p := prev[node]
					path = append(path, p)
					node = p
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path, true
			}
			queue = append(queue, step{id: next, depth: curr.depth + 1})
		}
	}
	return nil, false
}
