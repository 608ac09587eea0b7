// # internal/engine/graph/graph.go
package graph

import (
	"sort"

	"screenmap/internal/catalog"
	"screenmap/internal/shared/observability"
)

// Graph is the directed navigation graph over finalized screens: one
// node per screen id, one edge A->B for each B in A.next. Built fresh
// per analysis and never mutated afterwards.
type Graph struct {
	ids     []string // sorted node ids
	next    map[string][]string
	allow   map[string]bool
	depends map[string][]string
}

// New builds the graph from a screen set. Edges pointing at ids with no
// screen are kept; they can never participate in a cycle since nothing
// leads out of them, but impact paths may still end there.
func New(screens []catalog.Screen) *Graph {
	g := &Graph{
		next:    make(map[string][]string, len(screens)),
		allow:   make(map[string]bool, len(screens)),
		depends: make(map[string][]string, len(screens)),
	}

	edgeCount := 0
	for _, s := range screens {
		if _, dup := g.next[s.ID]; !dup {
			g.ids = append(g.ids, s.ID)
		}
		targets := append([]string(nil), s.Next...)
		sort.Strings(targets)
		g.next[s.ID] = targets
		g.allow[s.ID] = s.AllowCycles
		g.depends[s.ID] = append([]string(nil), s.DependsOn...)
		edgeCount += len(targets)
	}
	sort.Strings(g.ids)

	observability.NavigationEdges.Set(float64(edgeCount))
	return g
}

// Screens returns the node ids in sorted order.
func (g *Graph) Screens() []string {
	return append([]string(nil), g.ids...)
}

// Next returns the sorted navigation targets of one screen.
func (g *Graph) Next(id string) []string {
	return append([]string(nil), g.next[id]...)
}

func (g *Graph) has(id string) bool {
	_, ok := g.next[id]
	return ok
}
