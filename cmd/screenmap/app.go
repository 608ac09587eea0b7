// # cmd/screenmap/app.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"screenmap/internal/catalog"
	"screenmap/internal/core/config"
	"screenmap/internal/engine/grammar"
	"screenmap/internal/engine/graph"
	"screenmap/internal/engine/parser"
	"screenmap/internal/engine/resolver"
	"screenmap/internal/engine/routes"
	"screenmap/internal/history"
	"screenmap/internal/scanner"
	"screenmap/internal/shared/observability"
	"screenmap/internal/shared/util"
	"screenmap/internal/ui/report/formats"
	"screenmap/internal/watcher"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type App struct {
	Config  *config.Config
	Parser  *parser.Parser
	Catalog *catalog.Catalog
	Graph   *graph.Graph

	store      *history.Store
	apiNames   []string
	teaProgram *tea.Program

	// scanMu serializes full rescans; the watcher callback and the
	// initial scan may otherwise overlap.
	scanMu      sync.Mutex
	diagnostics []formats.FileDiagnostics
}

func NewApp(cfg *config.Config) (*App, error) {
	p := parser.NewParser(grammar.NewLoader(), resolver.NewRouteCache(), parser.Config{
		MaxDepth:   cfg.Resolver.MaxDepth,
		Extensions: cfg.Resolver.Extensions,
	})

	app := &App{
		Config:  cfg,
		Parser:  p,
		Catalog: &catalog.Catalog{},
		Graph:   graph.New(nil),
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		app.store = store
	}

	if cfg.OpenAPI.Spec != "" {
		doc, err := catalog.LoadAPISpec(context.Background(), cfg.OpenAPI.Spec)
		if err != nil {
			return nil, err
		}
		app.apiNames = catalog.KnownAPINames(doc)
	}

	return app, nil
}

func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// Scan runs the full pipeline: discover route files, parse and flatten
// them, merge into the persisted catalog, rebuild the navigation graph
// and regenerate outputs.
func (a *App) Scan() error {
	a.scanMu.Lock()
	defer a.scanMu.Unlock()

	ctx, span := observability.Tracer.Start(context.Background(), "app.Scan")
	defer span.End()

	timer := prometheus.NewTimer(observability.AnalysisDuration.WithLabelValues("scan"))
	defer timer.ObserveDuration()
	start := time.Now()

	sc, err := scanner.New(a.Config)
	if err != nil {
		return err
	}
	targets, err := sc.Scan()
	if err != nil {
		return err
	}

	prev, err := catalog.Load(a.Config.Paths.Catalog)
	if err != nil {
		return err
	}

	flatByDialect := make(map[string][]routes.FlatRoute)
	fileDiags := make([]formats.FileDiagnostics, 0)
	for _, target := range targets {
		_, parseSpan := observability.Tracer.Start(ctx, "parser.Parse", trace.WithAttributes(
			attribute.String("dialect", string(target.Dialect)),
			attribute.String("path", target.Path),
		))
		result, err := a.Parser.Parse(target.Dialect, target.Path, nil)
		parseSpan.End()
		if err != nil {
			slog.Warn("failed to parse route file", "path", target.Path, "dialect", target.Dialect, "error", err)
			continue
		}
		flat, flattenDiags := routes.Flatten(result.Routes)
		diags := append(append([]routes.Diagnostic(nil), result.Warnings...), flattenDiags...)
		if len(diags) > 0 {
			fileDiags = append(fileDiags, formats.FileDiagnostics{
				File:        target.Path,
				Dialect:     string(target.Dialect),
				Diagnostics: diags,
			})
		}
		flatByDialect[string(target.Dialect)] = append(flatByDialect[string(target.Dialect)], flat...)
	}

	cat := catalog.MergeAll(prev, flatByDialect)
	if err := catalog.Save(a.Config.Paths.Catalog, cat); err != nil {
		return err
	}

	a.Catalog = cat
	a.Graph = graph.New(cat.Screens)
	a.diagnostics = fileDiags

	report := a.Graph.DetectCycles()
	var issues []catalog.DependencyIssue
	if len(a.apiNames) > 0 {
		issues = catalog.ValidateDependencies(cat, a.apiNames)
	}

	if err := a.GenerateOutputs(report, issues); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}

	if a.store != nil {
		if err := a.saveSnapshot(report); err != nil {
			slog.Warn("failed to save history snapshot", "error", err)
		}
	}

	a.PrintSummary(len(targets), time.Since(start), report, issues)

	if a.teaProgram != nil {
		a.teaProgram.Send(updateMsg{
			screens:         cat.Screens,
			cycles:          report.Cycles,
			disallowed:      report.Disallowed,
			issues:          issues,
			diagnosticCount: a.diagnosticCount(),
		})
	}

	return nil
}

func (a *App) edgeCount() int {
	count := 0
	for _, s := range a.Catalog.Screens {
		count += len(s.Next)
	}
	return count
}

func (a *App) diagnosticCount() int {
	count := 0
	for _, file := range a.diagnostics {
		count += len(file.Diagnostics)
	}
	return count
}

func (a *App) unresolvedSpreadCount() int {
	count := 0
	for _, file := range a.diagnostics {
		for _, d := range file.Diagnostics {
			if d.Kind == routes.DiagnosticSpread && !d.Resolved {
				count++
			}
		}
	}
	return count
}

func (a *App) saveSnapshot(report graph.CycleReport) error {
	return a.store.SaveSnapshot(history.Snapshot{
		ScreenCount:       len(a.Catalog.Screens),
		EdgeCount:         a.edgeCount(),
		CycleCount:        len(report.Cycles),
		DisallowedCount:   len(report.Disallowed),
		DiagnosticCount:   a.diagnosticCount(),
		UnresolvedSpreads: a.unresolvedSpreadCount(),
	})
}

func (a *App) GenerateOutputs(report graph.CycleReport, issues []catalog.DependencyIssue) error {
	diagram := ""
	if a.Config.Output.Mermaid != "" || a.Config.Output.Markdown != "" {
		gen := formats.NewMermaidGenerator(a.Catalog, a.Graph)
		out, err := gen.Generate(report)
		if err != nil {
			return err
		}
		diagram = out
	}

	if a.Config.Output.Mermaid != "" {
		if err := util.WriteStringWithDirs(a.Config.Output.Mermaid, diagram, 0o644); err != nil {
			return err
		}
	}

	if a.Config.Output.Markdown != "" {
		md, err := formats.NewMarkdownGenerator().Generate(
			formats.MarkdownReportData{
				Catalog:          a.Catalog,
				EdgeCount:        a.edgeCount(),
				Cycles:           report,
				Diagnostics:      a.diagnostics,
				DependencyIssues: issues,
			},
			formats.MarkdownReportOptions{
				ProjectName:         projectName(a.Config.Paths.ProjectRoot),
				ProjectRoot:         a.Config.Paths.ProjectRoot,
				Version:             VERSION,
				TableOfContents:     true,
				CollapsibleSections: true,
				IncludeMermaid:      diagram != "",
				MermaidDiagram:      diagram,
			},
		)
		if err != nil {
			return err
		}
		if err := util.WriteStringWithDirs(a.Config.Output.Markdown, md, 0o644); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) AnalyzeImpact(api string) graph.ImpactReport {
	return a.Graph.AnalyzeImpact(api, graph.DefaultImpactDepth)
}

func (a *App) Trends() (string, error) {
	if a.store == nil {
		return "", fmt.Errorf("trends require history.enabled=true in the config")
	}
	snapshots, err := a.store.Recent(20)
	if err != nil {
		return "", err
	}
	report, err := history.BuildTrendReport(snapshots)
	if err != nil {
		return "", err
	}
	return report.Render(), nil
}

// HandleChanges is the watcher callback. Changed files invalidate the
// import cache, then the whole pipeline reruns; route files are few
// enough that a full rescan beats incremental bookkeeping.
func (a *App) HandleChanges(paths []string) {
	slog.Info("detected changes", "count", len(paths))
	a.Parser.Cache().Clear()
	if err := a.Scan(); err != nil {
		slog.Error("rescan failed", "error", err)
	}
}

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(watcher.Options{
		Debounce:    a.Config.Watch.Debounce,
		RateLimit:   a.Config.Watch.RateLimit,
		Burst:       a.Config.Watch.Burst,
		ExcludeDirs: a.Config.Exclude.Dirs,
		Extensions:  a.Config.Resolver.Extensions,
	}, a.HandleChanges)
	if err != nil {
		return err
	}
	// Not closed here, it runs for the process lifetime.
	return w.Watch(a.Config.Paths.ProjectRoot)
}

func (a *App) PrintSummary(targetCount int, duration time.Duration, report graph.CycleReport, issues []catalog.DependencyIssue) {
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Scan: %d route files, %d screens in %v\n", targetCount, len(a.Catalog.Screens), duration)

	if len(report.Disallowed) > 0 {
		fmt.Printf("⚠️  FOUND %d DISALLOWED NAVIGATION CYCLES:\n", len(report.Disallowed))
		for _, c := range report.Disallowed {
			fmt.Printf("   %s\n", strings.Join(c, " -> "))
		}
	} else if report.HasCycles {
		fmt.Printf("✅ %d navigation cycles, all allowed.\n", len(report.Cycles))
	} else {
		fmt.Println("✅ No navigation cycles found.")
	}

	if count := a.diagnosticCount(); count > 0 {
		fmt.Printf("❓ %d RESOLUTION DIAGNOSTICS:\n", count)
		for _, file := range a.diagnostics {
			for _, d := range file.Diagnostics {
				fmt.Printf("   %s:%d %s\n", file.File, d.Line, d.Message)
			}
		}
	} else {
		fmt.Println("✅ All route expressions resolved.")
	}

	if len(issues) > 0 {
		fmt.Printf("🔍 %d DEPENDENCIES NOT IN API SPEC:\n", len(issues))
		for _, issue := range issues {
			fmt.Printf("   %s\n", issue.String())
		}
	} else if len(a.apiNames) > 0 {
		fmt.Println("✅ All declared dependencies match the API spec.")
	}

	fmt.Println(strings.Repeat("-", 40))
}

func (a *App) RunUI() error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.teaProgram = p

	// Push the state from the initial scan before the first frame.
	go func() {
		a.teaProgram.Send(a.currentState())
	}()

	_, err := p.Run()
	return err
}

// currentState snapshots the analysis fields under the scan lock; a
// watcher-triggered rescan may reassign them concurrently.
func (a *App) currentState() updateMsg {
	a.scanMu.Lock()
	defer a.scanMu.Unlock()

	report := a.Graph.DetectCycles()
	var issues []catalog.DependencyIssue
	if len(a.apiNames) > 0 {
		issues = catalog.ValidateDependencies(a.Catalog, a.apiNames)
	}
	return updateMsg{
		screens:         a.Catalog.Screens,
		cycles:          report.Cycles,
		disallowed:      report.Disallowed,
		issues:          issues,
		diagnosticCount: a.diagnosticCount(),
	}
}

func projectName(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}
