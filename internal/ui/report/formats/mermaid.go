// # internal/ui/report/formats/mermaid.go
package formats

import (
	"fmt"
	"sort"
	"strings"

	"screenmap/internal/catalog"
	"screenmap/internal/engine/graph"
)

// MermaidGenerator renders the navigation graph as a flowchart. Screens
// are nodes, hand-maintained next edges are arrows, and cycle edges are
// highlighted so a disallowed loop is visible at a glance.
type MermaidGenerator struct {
	catalog *catalog.Catalog
	graph   *graph.Graph
}

func NewMermaidGenerator(cat *catalog.Catalog, g *graph.Graph) *MermaidGenerator {
	return &MermaidGenerator{catalog: cat, graph: g}
}

func (m *MermaidGenerator) Generate(report graph.CycleReport) (string, error) {
	var b strings.Builder
	b.WriteString("%%{init: {'theme': 'base', 'themeVariables': {'textColor': '#000000', 'primaryTextColor': '#000000', 'lineColor': '#333333'}, 'flowchart': {'nodeSpacing': 80, 'rankSpacing': 110, 'curve': 'basis'}}}%%\n")
	b.WriteString("flowchart LR\n")

	screenByID := make(map[string]catalog.Screen, len(m.catalog.Screens))
	for _, screen := range m.catalog.Screens {
		screenByID[screen.ID] = screen
	}

	screenIDs := m.graph.Screens()
	screenSet := make(map[string]bool, len(screenIDs))
	for _, id := range screenIDs {
		screenSet[id] = true
	}

	// Next edges may reference ids the catalog never declared; those
	// become placeholder nodes so the dangling reference still shows.
	unknownSet := make(map[string]bool)
	for _, from := range screenIDs {
		for _, to := range m.graph.Next(from) {
			if !screenSet[to] {
				unknownSet[to] = true
			}
		}
	}
	unknownIDs := make([]string, 0, len(unknownSet))
	for id := range unknownSet {
		unknownIDs = append(unknownIDs, id)
	}
	sort.Strings(unknownIDs)

	allNames := append(append([]string{}, screenIDs...), unknownIDs...)
	ids := makeIDs(allNames)

	for _, id := range screenIDs {
		b.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", ids[id], escapeLabel(screenLabel(screenByID[id]))))
	}
	for _, id := range unknownIDs {
		b.WriteString(fmt.Sprintf("  %s[\"%s\\n(undeclared)\"]\n", ids[id], escapeLabel(id)))
	}

	b.WriteString("\n")
	if len(screenIDs) > 0 {
		b.WriteString("  classDef screenNode fill:#f7fbff,stroke:#4d6480,stroke-width:1px,color:#000000;\n")
		b.WriteString("  class ")
		b.WriteString(strings.Join(toIDs(screenIDs, ids), ","))
		b.WriteString(" screenNode;\n")
	}
	if len(unknownIDs) > 0 {
		b.WriteString("  classDef unknownNode fill:#efefef,stroke:#808080,stroke-dasharray:4 3,color:#000000;\n")
		b.WriteString("  class ")
		b.WriteString(strings.Join(toIDs(unknownIDs, ids), ","))
		b.WriteString(" unknownNode;\n")
	}

	disallowedScreens := cycleScreenSet(report.Disallowed)
	if len(disallowedScreens) > 0 {
		cycleNames := make([]string, 0, len(disallowedScreens))
		for _, id := range screenIDs {
			if disallowedScreens[id] {
				cycleNames = append(cycleNames, id)
			}
		}
		if len(cycleNames) > 0 {
			b.WriteString("  classDef cycleNode fill:#ffecec,stroke:#cc0000,stroke-width:2px,color:#000000;\n")
			b.WriteString("  class ")
			b.WriteString(strings.Join(toIDs(cycleNames, ids), ","))
			b.WriteString(" cycleNode;\n")
		}
	}

	disallowedEdges := cycleEdgeSet(report.Disallowed)
	allCycleEdges := cycleEdgeSet(report.Cycles)

	b.WriteString("\n")
	linkIndex := 0
	disallowedIndexes := make([]int, 0)
	allowedIndexes := make([]int, 0)
	for _, from := range screenIDs {
		for _, to := range m.graph.Next(from) {
			edgeLabel := ""
			switch {
			case disallowedEdges[from+"->"+to]:
				edgeLabel = "|CYCLE|"
				disallowedIndexes = append(disallowedIndexes, linkIndex)
			case allCycleEdges[from+"->"+to]:
				edgeLabel = "|cycle ok|"
				allowedIndexes = append(allowedIndexes, linkIndex)
			}
			b.WriteString(fmt.Sprintf("  %s -->%s %s\n", ids[from], edgeLabel, ids[to]))
			linkIndex++
		}
	}

	if len(disallowedIndexes) > 0 || len(allowedIndexes) > 0 {
		b.WriteString("\n")
	}
	if len(disallowedIndexes) > 0 {
		b.WriteString(fmt.Sprintf("  linkStyle %s stroke:#cc0000,stroke-width:3px;\n", joinInts(disallowedIndexes)))
	}
	if len(allowedIndexes) > 0 {
		b.WriteString(fmt.Sprintf("  linkStyle %s stroke:#a64d00,stroke-width:2px,stroke-dasharray:5 3;\n", joinInts(allowedIndexes)))
	}

	b.WriteString("\n")
	b.WriteString("  subgraph legend_info[\"Legend\"]\n")
	b.WriteString("    legend_nodes[\"Node line 1: screen title\\nline 2: route path\"]\n")
	b.WriteString("    legend_edges[\"Edge labels: CYCLE=disallowed navigation loop, cycle ok=loop with allowCycles set\"]\n")
	b.WriteString("  end\n")
	b.WriteString("  classDef legendNode fill:#fff8dc,stroke:#b8a24c,stroke-width:1px,color:#000000;\n")
	b.WriteString("  class legend_nodes,legend_edges legendNode;\n")

	return b.String(), nil
}
