// # cmd/screenmap/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"screenmap/internal/core/config"
	"screenmap/internal/engine/graph"
	"screenmap/internal/shared/observability"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	configPath  = flag.String("config", "./screenmap.toml", "Path to config file")
	scanOnly    = flag.Bool("scan", false, "Run a single scan and exit, even when --watch is set")
	impact      = flag.String("impact", "", "Report screens affected by an API change")
	cycles      = flag.Bool("cycles", false, "Print the navigation cycle report and exit")
	watch       = flag.Bool("watch", false, "Keep running and rescan on file changes")
	ui          = flag.Bool("ui", false, "Enable terminal UI mode (implies --watch)")
	trends      = flag.Bool("trends", false, "Print catalog trends from scan history and exit")
	metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (overrides config)")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	version     = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("screenmap v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
				if err == nil {
					output = f
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if flag.NArg() > 0 {
		cfg.Paths.ProjectRoot = flag.Arg(0)
	}
	if *metricsAddr != "" {
		cfg.Observability.MetricsAddr = *metricsAddr
	}

	if cfg.Observability.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Observability.MetricsAddr, mux); err != nil {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
	}
	if cfg.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.SetupTracing(context.Background(), cfg.Observability.OTLPEndpoint)
		if err != nil {
			slog.Warn("failed to set up tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if *trends {
		out, err := app.Trends()
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Print(out)
		os.Exit(0)
	}

	if err := app.Scan(); err != nil {
		slog.Error("scan failed", "error", err)
		os.Exit(1)
	}

	if *impact != "" {
		fmt.Print(formatImpactReport(app.AnalyzeImpact(*impact)))
		os.Exit(0)
	}
	if *cycles {
		fmt.Print(formatCycleReport(app.Graph.DetectCycles()))
		os.Exit(0)
	}

	if *scanOnly || (!*watch && !*ui) {
		os.Exit(0)
	}

	if err := app.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := app.RunUI(); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
	} else {
		// Block forever
		select {}
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "screenmap", "screenmap.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "screenmap", "screenmap.log")
	}

	return "screenmap.log"
}

func formatCycleReport(report graph.CycleReport) string {
	var b strings.Builder

	b.WriteString("Navigation Cycles\n")
	b.WriteString("=================\n")
	if !report.HasCycles {
		b.WriteString("No cycles detected.\n")
		return b.String()
	}

	disallowed := make(map[string]bool, len(report.Disallowed))
	for _, c := range report.Disallowed {
		disallowed[strings.Join(c, "->")] = true
	}
	for _, c := range report.Cycles {
		status := "allowed"
		if disallowed[strings.Join(c, "->")] {
			status = "DISALLOWED"
		}
		b.WriteString(fmt.Sprintf("- %s [%s]\n", strings.Join(c, " -> "), status))
	}
	return b.String()
}

func formatImpactReport(report graph.ImpactReport) string {
	var b strings.Builder

	b.WriteString("Impact Analysis\n")
	b.WriteString("==============\n")
	b.WriteString(fmt.Sprintf("Target API: %s\n", report.API))
	b.WriteString(fmt.Sprintf("Affected screens: %d\n", report.TotalCount))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Direct dependents (%d)\n", len(report.Direct)))
	for _, id := range report.Direct {
		b.WriteString(fmt.Sprintf("- %s\n", id))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Transitive impact (%d)\n", len(report.Transitive)))
	for _, hit := range report.Transitive {
		b.WriteString(fmt.Sprintf("- %s (via %s)\n", hit.ScreenID, strings.Join(hit.Path, " -> ")))
	}

	return b.String()
}
