// # internal/history/trends.go
package history

import (
	"fmt"
	"strings"
	"time"
)

// TrendPoint is one snapshot annotated with deltas against the
// preceding one.
type TrendPoint struct {
	Timestamp         time.Time
	ScreenCount       int
	CycleCount        int
	DisallowedCount   int
	DiagnosticCount   int
	UnresolvedSpreads int

	DeltaScreens     int
	DeltaCycles      int
	DeltaDiagnostics int
}

// TrendReport summarizes how the catalog evolved over recent runs.
type TrendReport struct {
	Since     time.Time
	Until     time.Time
	ScanCount int
	Points    []TrendPoint
}

func BuildTrendReport(snapshots []Snapshot) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			Timestamp:         current.Timestamp,
			ScreenCount:       current.ScreenCount,
			CycleCount:        current.CycleCount,
			DisallowedCount:   current.DisallowedCount,
			DiagnosticCount:   current.DiagnosticCount,
			UnresolvedSpreads: current.UnresolvedSpreads,
		}
		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaScreens = current.ScreenCount - prev.ScreenCount
			point.DeltaCycles = current.CycleCount - prev.CycleCount
			point.DeltaDiagnostics = current.DiagnosticCount - prev.DiagnosticCount
		}
		points = append(points, point)
	}

	return TrendReport{
		Since:     snapshots[0].Timestamp,
		Until:     snapshots[len(snapshots)-1].Timestamp,
		ScanCount: len(points),
		Points:    points,
	}, nil
}

// Render writes the report as aligned console lines, oldest first.
func (r TrendReport) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d runs, %s .. %s\n",
		r.ScanCount,
		r.Since.Format(time.RFC3339),
		r.Until.Format(time.RFC3339))
	for _, p := range r.Points {
		fmt.Fprintf(&b, "%s  screens=%d (%+d)  cycles=%d (%+d)  diagnostics=%d (%+d)\n",
			p.Timestamp.Format("2006-01-02 15:04:05"),
			p.ScreenCount, p.DeltaScreens,
			p.CycleCount, p.DeltaCycles,
			p.DiagnosticCount, p.DeltaDiagnostics)
	}
	return b.String()
}
