// # cmd/screenmap/app_test.go
package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"screenmap/internal/catalog"
	"screenmap/internal/core/config"
	"screenmap/internal/shared/observability"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const routesFixture = `
import { createBrowserRouter } from "react-router-dom";

const router = createBrowserRouter([
  { path: "/", element: <Home /> },
  { path: "/orders", element: <Orders /> },
]);
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "routes.tsx"), []byte(routesFixture), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadOrDefault("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Paths.ProjectRoot = tmpDir
	cfg.Paths.Catalog = filepath.Join(tmpDir, "screens.json")
	cfg.Output.Mermaid = filepath.Join(tmpDir, "navigation.mmd")
	cfg.Output.Markdown = filepath.Join(tmpDir, "report.md")
	cfg.History.Path = filepath.Join(tmpDir, "history.db")
	return cfg
}

func TestApp_ScanBuildsCatalog(t *testing.T) {
	cfg := testConfig(t)

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if err := app.Scan(); err != nil {
		t.Fatal(err)
	}

	cat, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Screens) != 2 {
		t.Fatalf("expected 2 screens, got %d", len(cat.Screens))
	}
	if _, ok := cat.Find("home"); !ok {
		t.Error("expected home screen in catalog")
	}
	if _, ok := cat.Find("orders"); !ok {
		t.Error("expected orders screen in catalog")
	}

	diagram, err := os.ReadFile(cfg.Output.Mermaid)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(diagram), "flowchart LR") {
		t.Error("expected mermaid flowchart output")
	}

	md, err := os.ReadFile(cfg.Output.Markdown)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(md), "| Total Screens | 2 |") {
		t.Errorf("expected screen count in markdown report, got:\n%s", string(md))
	}
}

func TestApp_ScanPreservesAnnotations(t *testing.T) {
	cfg := testConfig(t)

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if err := app.Scan(); err != nil {
		t.Fatal(err)
	}

	// Annotate by hand between scans, the way a maintainer would.
	cat, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range cat.Screens {
		if s.ID == "orders" {
			cat.Screens[i].Next = []string{"home"}
			cat.Screens[i].DependsOn = []string{"orders.list"}
		}
	}
	if err := catalog.Save(cfg.Paths.Catalog, cat); err != nil {
		t.Fatal(err)
	}

	if err := app.Scan(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		t.Fatal(err)
	}
	orders, ok := reloaded.Find("orders")
	if !ok {
		t.Fatal("orders screen missing after rescan")
	}
	if len(orders.Next) != 1 || orders.Next[0] != "home" {
		t.Errorf("next annotation lost on rescan: %v", orders.Next)
	}
	if len(orders.DependsOn) != 1 || orders.DependsOn[0] != "orders.list" {
		t.Errorf("dependsOn annotation lost on rescan: %v", orders.DependsOn)
	}

	report := app.AnalyzeImpact("orders.list")
	if len(report.Direct) != 1 || report.Direct[0] != "orders" {
		t.Errorf("expected orders as direct dependent, got %v", report.Direct)
	}
}

func TestApp_ScanEmitsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := observability.Tracer
	observability.Tracer = provider.Tracer("screenmap-test")
	defer func() { observability.Tracer = prev }()

	cfg := testConfig(t)
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if err := app.Scan(); err != nil {
		t.Fatal(err)
	}

	names := make(map[string]int)
	for _, span := range recorder.Ended() {
		names[span.Name()]++
	}
	if names["app.Scan"] != 1 {
		t.Errorf("expected one app.Scan span, got %d", names["app.Scan"])
	}
	if names["parser.Parse"] == 0 {
		t.Error("expected a parser.Parse span per route file")
	}
}

func TestApp_StateSnapshotDuringRescan(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if err := app.Scan(); err != nil {
		t.Fatal(err)
	}

	// A watcher rescan and the UI bootstrap may run at the same time;
	// the snapshot must not observe the catalog mid-swap.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.Scan(); err != nil {
			t.Errorf("rescan failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		msg := app.currentState()
		if len(msg.screens) != 2 {
			t.Errorf("snapshot saw %d screens, want 2", len(msg.screens))
		}
	}()
	wg.Wait()
}

func TestApp_TrendsRequireHistory(t *testing.T) {
	cfg := testConfig(t)

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if _, err := app.Trends(); err == nil {
		t.Fatal("expected error when history is disabled")
	}
}

func TestApp_TrendsAfterScans(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Enabled = true

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if err := app.Scan(); err != nil {
		t.Fatal(err)
	}
	if err := app.Scan(); err != nil {
		t.Fatal(err)
	}

	out, err := app.Trends()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2 runs") {
		t.Fatalf("expected two recorded runs, got: %s", out)
	}
}
