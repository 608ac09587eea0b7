package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "screenmap_parsing_seconds",
		Help:    "Time spent parsing one route-configuration file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"dialect"})

	ImportResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screenmap_import_resolutions_total",
		Help: "Cross-file import resolutions by outcome.",
	}, []string{"status"})

	ResolverCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screenmap_resolver_cache_hits_total",
		Help: "Import-resolution cache hits.",
	})

	ResolverCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screenmap_resolver_cache_misses_total",
		Help: "Import-resolution cache misses.",
	})

	CatalogScreens = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "screenmap_catalog_screens_total",
		Help: "Number of screens in the generated catalog.",
	})

	NavigationEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "screenmap_navigation_edges_total",
		Help: "Number of declared navigation edges in the screen graph.",
	})

	NavigationCycles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "screenmap_navigation_cycles_total",
		Help: "Number of simple cycles found in the screen graph.",
	})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screenmap_diagnostics_total",
		Help: "Analysis diagnostics emitted, by kind.",
	}, []string{"kind"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "screenmap_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screenmap_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
