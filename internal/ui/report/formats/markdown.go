// # internal/ui/report/formats/markdown.go
package formats

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"screenmap/internal/catalog"
	"screenmap/internal/engine/graph"
	"screenmap/internal/engine/routes"
)

// FileDiagnostics groups resolution diagnostics under the route file
// that produced them.
type FileDiagnostics struct {
	File        string
	Dialect     string
	Diagnostics []routes.Diagnostic
}

type MarkdownReportData struct {
	Catalog   *catalog.Catalog
	EdgeCount int

	Cycles           graph.CycleReport
	Diagnostics      []FileDiagnostics
	DependencyIssues []catalog.DependencyIssue
	Impact           []graph.ImpactReport
}

type MarkdownReportOptions struct {
	ProjectName         string
	ProjectRoot         string
	Version             string
	GeneratedAt         time.Time
	TableOfContents     bool
	CollapsibleSections bool
	IncludeMermaid      bool
	MermaidDiagram      string
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(data MarkdownReportData, opts MarkdownReportOptions) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}
	screens := []catalog.Screen(nil)
	if data.Catalog != nil {
		screens = data.Catalog.Screens
	}
	diagnosticCount := 0
	for _, file := range data.Diagnostics {
		diagnosticCount += len(file.Diagnostics)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Screen Catalog Report\n")
	b.WriteString("project: " + nonEmpty(opts.ProjectName, "unknown") + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(opts.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Screen Catalog Report\n\n")
	if opts.TableOfContents {
		b.WriteString("## Table of Contents\n")
		b.WriteString("- [Executive Summary](#executive-summary)\n")
		b.WriteString("- [Screens](#screens)\n")
		b.WriteString("- [Navigation Cycles](#navigation-cycles)\n")
		b.WriteString("- [Resolution Diagnostics](#resolution-diagnostics)\n")
		b.WriteString("- [Unknown Dependencies](#unknown-dependencies)\n")
		if len(data.Impact) > 0 {
			b.WriteString("- [API Impact](#api-impact)\n")
		}
		if opts.IncludeMermaid && strings.TrimSpace(opts.MermaidDiagram) != "" {
			b.WriteString("- [Navigation Diagram](#navigation-diagram)\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Executive Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Total Screens | %d |\n", len(screens)))
	b.WriteString(fmt.Sprintf("| Navigation Edges | %d |\n", data.EdgeCount))
	b.WriteString(fmt.Sprintf("| Navigation Cycles | %d |\n", len(data.Cycles.Cycles)))
	b.WriteString(fmt.Sprintf("| Disallowed Cycles | %d |\n", len(data.Cycles.Disallowed)))
	b.WriteString(fmt.Sprintf("| Resolution Diagnostics | %d |\n", diagnosticCount))
	b.WriteString(fmt.Sprintf("| Unknown Dependencies | %d |\n\n", len(data.DependencyIssues)))

	m.writeScreens(&b, screens, opts.CollapsibleSections)
	m.writeCycles(&b, data.Cycles)
	m.writeDiagnostics(&b, data.Diagnostics, opts.ProjectRoot, opts.CollapsibleSections)
	m.writeDependencyIssues(&b, data.DependencyIssues)
	m.writeImpact(&b, data.Impact)

	if opts.IncludeMermaid && strings.TrimSpace(opts.MermaidDiagram) != "" {
		b.WriteString("## Navigation Diagram\n")
		b.WriteString("```mermaid\n")
		b.WriteString(strings.TrimSpace(opts.MermaidDiagram))
		b.WriteString("\n```\n")
	}

	return b.String(), nil
}

func (m *MarkdownGenerator) writeScreens(b *strings.Builder, screens []catalog.Screen, collapsible bool) {
	b.WriteString("## Screens\n")
	if len(screens) == 0 {
		b.WriteString("No screens in catalog.\n\n")
		return
	}
	rows := make([]string, 0, len(screens))
	for _, screen := range screens {
		annotations := make([]string, 0, 3)
		if len(screen.Next) > 0 {
			annotations = append(annotations, "next:"+strings.Join(screen.Next, " "))
		}
		if len(screen.DependsOn) > 0 {
			annotations = append(annotations, "deps:"+strings.Join(screen.DependsOn, " "))
		}
		if screen.AllowCycles {
			annotations = append(annotations, "allowCycles")
		}
		rows = append(rows, fmt.Sprintf(
			"| `%s` | `%s` | %s | `%s` | %s | %s |\n",
			screen.ID,
			nonEmpty(screen.Route, "/"),
			screen.Title,
			nonEmpty(screen.Component, "-"),
			nonEmpty(screen.Dialect, "-"),
			strings.Join(annotations, "<br>"),
		))
	}
	m.writeTableWithCollapse(
		b,
		"Screen details",
		collapsible,
		len(rows) > 20,
		[]string{"| ID | Route | Title | Component | Dialect | Annotations |\n", "| --- | --- | --- | --- | --- | --- |\n"},
		rows,
	)
}

func (m *MarkdownGenerator) writeCycles(b *strings.Builder, report graph.CycleReport) {
	b.WriteString("## Navigation Cycles\n")
	if !report.HasCycles {
		b.WriteString("No navigation cycles detected.\n\n")
		return
	}
	disallowed := cycleEdgeSet(report.Disallowed)
	b.WriteString("| # | Cycle Path | Status |\n")
	b.WriteString("| --- | --- | --- |\n")
	for i, cycle := range report.Cycles {
		status := "allowed"
		if len(cycle) > 1 && disallowed[cycle[0]+"->"+cycle[1]] {
			status = "DISALLOWED"
		}
		b.WriteString(fmt.Sprintf("| %d | `%s` | %s |\n", i+1, strings.Join(cycle, " -> "), status))
	}
	b.WriteString("\n")
}

func (m *MarkdownGenerator) writeDiagnostics(b *strings.Builder, files []FileDiagnostics, projectRoot string, collapsible bool) {
	b.WriteString("## Resolution Diagnostics\n")
	total := 0
	for _, file := range files {
		total += len(file.Diagnostics)
	}
	if total == 0 {
		b.WriteString("No resolution diagnostics.\n\n")
		return
	}
	rows := make([]string, 0, total)
	for _, file := range files {
		for _, d := range file.Diagnostics {
			identifier := nonEmpty(d.Identifier, "-")
			rows = append(rows, fmt.Sprintf(
				"| `%s:%d` | %s | `%s` | %s |\n",
				relPath(projectRoot, file.File),
				d.Line,
				d.Kind,
				identifier,
				d.Message,
			))
		}
	}
	m.writeTableWithCollapse(
		b,
		"Diagnostic details",
		collapsible,
		len(rows) > 15,
		[]string{"| Location | Kind | Identifier | Message |\n", "| --- | --- | --- | --- |\n"},
		rows,
	)
}

func (m *MarkdownGenerator) writeDependencyIssues(b *strings.Builder, issues []catalog.DependencyIssue) {
	b.WriteString("## Unknown Dependencies\n")
	if len(issues) == 0 {
		b.WriteString("All declared dependencies match the API specification.\n\n")
		return
	}
	b.WriteString("| Screen | Dependency |\n")
	b.WriteString("| --- | --- |\n")
	for _, issue := range issues {
		b.WriteString(fmt.Sprintf("| `%s` | `%s` |\n", issue.ScreenID, issue.Dependency))
	}
	b.WriteString("\n")
}

func (m *MarkdownGenerator) writeImpact(b *strings.Builder, reports []graph.ImpactReport) {
	if len(reports) == 0 {
		return
	}
	b.WriteString("## API Impact\n")
	for _, report := range reports {
		b.WriteString(fmt.Sprintf("### `%s` (%d screens)\n", report.API, report.TotalCount))
		if len(report.Direct) > 0 {
			b.WriteString("Direct: `" + strings.Join(report.Direct, "`, `") + "`\n\n")
		}
		if len(report.Transitive) > 0 {
			b.WriteString("| Screen | Path to Dependency |\n")
			b.WriteString("| --- | --- |\n")
			for _, hit := range report.Transitive {
				b.WriteString(fmt.Sprintf("| `%s` | `%s` |\n", hit.ScreenID, strings.Join(hit.Path, " -> ")))
			}
			b.WriteString("\n")
		}
		if report.TotalCount == 0 {
			b.WriteString("No screens depend on this API.\n\n")
		}
	}
}

func (m *MarkdownGenerator) writeTableWithCollapse(
	b *strings.Builder,
	summary string,
	collapsible bool,
	collapse bool,
	header []string,
	rows []string,
) {
	if collapsible && collapse {
		b.WriteString("<details>\n")
		b.WriteString("<summary>")
		b.WriteString(summary)
		b.WriteString("</summary>\n\n")
	}
	for _, line := range header {
		b.WriteString(line)
	}
	for _, line := range rows {
		b.WriteString(line)
	}
	b.WriteString("\n")
	if collapsible && collapse {
		b.WriteString("</details>\n\n")
	}
}

func relPath(root, path string) string {
	root = strings.TrimSpace(root)
	path = strings.TrimSpace(path)
	if root == "" || path == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
