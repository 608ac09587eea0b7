// # internal/engine/graph/impact_test.go
package graph

import (
	"reflect"
	"testing"

	"screenmap/internal/catalog"
)

func impactScreens() []catalog.Screen {
	return []catalog.Screen{
		{ID: "a", DependsOn: []string{"X"}},
		{ID: "b", Next: []string{"a"}},
		{ID: "c", Next: []string{"b"}},
	}
}

func TestImpactDirectAndTransitive(t *testing.T) {
	report := New(impactScreens()).AnalyzeImpact("X", 3)

	if !reflect.DeepEqual(report.Direct, []string{"a"}) {
		t.Fatalf("direct = %v, want [a]", report.Direct)
	}
	want := []TransitiveHit{
		{ScreenID: "b", Path: []string{"b", "a"}},
		{ScreenID: "c", Path: []string{"c", "b", "a"}},
	}
	if !reflect.DeepEqual(report.Transitive, want) {
		t.Fatalf("transitive = %v, want %v", report.Transitive, want)
	}
	if report.TotalCount != 3 {
		t.Errorf("totalCount = %d, want 3", report.TotalCount)
	}
}

func TestImpactPrefixMatchingBothDirections(t *testing.T) {
	screens := []catalog.Screen{
		{ID: "detail", DependsOn: []string{"InvoiceAPI.getDetail"}},
		{ID: "list", DependsOn: []string{"InvoiceAPI"}},
		{ID: "other", DependsOn: []string{"UserAPI"}},
		// Shares a string prefix but not a dotted segment.
		{ID: "suffix", DependsOn: []string{"InvoiceAPI2"}},
	}

	byWhole := New(screens).AnalyzeImpact("InvoiceAPI", 3)
	if !reflect.DeepEqual(byWhole.Direct, []string{"detail", "list"}) {
		t.Errorf("direct for InvoiceAPI = %v", byWhole.Direct)
	}

	byOperation := New(screens).AnalyzeImpact("InvoiceAPI.getDetail", 3)
	if !reflect.DeepEqual(byOperation.Direct, []string{"detail", "list"}) {
		t.Errorf("direct for InvoiceAPI.getDetail = %v", byOperation.Direct)
	}
}

func TestImpactDepthBound(t *testing.T) {
	// Chain d->c->b->a with a direct; at maxDepth 2 only b and c fit.
	screens := []catalog.Screen{
		{ID: "a", DependsOn: []string{"X"}},
		{ID: "b", Next: []string{"a"}},
		{ID: "c", Next: []string{"b"}},
		{ID: "d", Next: []string{"c"}},
	}

	report := New(screens).AnalyzeImpact("X", 2)
	ids := transitiveIDs(report)
	if !reflect.DeepEqual(ids, []string{"b", "c"}) {
		t.Errorf("transitive at depth 2 = %v, want [b c]", ids)
	}
}

func TestImpactDepthMonotone(t *testing.T) {
	screens := []catalog.Screen{
		{ID: "a", DependsOn: []string{"X"}},
		{ID: "b", Next: []string{"a"}},
		{ID: "c", Next: []string{"b"}},
		{ID: "d", Next: []string{"c"}},
		{ID: "e", Next: []string{"d"}},
	}

	var prevIDs []string
	for depth := 1; depth <= 5; depth++ {
		report := New(screens).AnalyzeImpact("X", depth)
		ids := transitiveIDs(report)
		for _, id := range prevIDs {
			if !containsID(ids, id) {
				t.Fatalf("depth %d lost screen %q found at depth %d", depth, id, depth-1)
			}
		}
		prevIDs = ids
	}
}

func TestImpactSetsDisjoint(t *testing.T) {
	// b both depends on X and navigates into a; direct wins.
	screens := []catalog.Screen{
		{ID: "a", DependsOn: []string{"X"}},
		{ID: "b", DependsOn: []string{"X.write"}, Next: []string{"a"}},
	}

	report := New(screens).AnalyzeImpact("X", 3)
	if !reflect.DeepEqual(report.Direct, []string{"a", "b"}) {
		t.Fatalf("direct = %v", report.Direct)
	}
	if len(report.Transitive) != 0 {
		t.Errorf("direct screens must not reappear as transitive: %v", report.Transitive)
	}
}

func TestImpactShortestWitnessPath(t *testing.T) {
	// c reaches a both directly and through b; the one-edge path wins.
	screens := []catalog.Screen{
		{ID: "a", DependsOn: []string{"X"}},
		{ID: "b", Next: []string{"a"}},
		{ID: "c", Next: []string{"a", "b"}},
	}

	report := New(screens).AnalyzeImpact("X", 3)
	for _, hit := range report.Transitive {
		if hit.ScreenID == "c" {
			if !reflect.DeepEqual(hit.Path, []string{"c", "a"}) {
				t.Errorf("witness path = %v, want [c a]", hit.Path)
			}
			return
		}
	}
	t.Fatal("screen c missing from transitive set")
}

func TestImpactNoMatches(t *testing.T) {
	report := New(impactScreens()).AnalyzeImpact("UnrelatedAPI", 3)
	if report.TotalCount != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func transitiveIDs(report ImpactReport) []string {
	ids := make([]string, 0, len(report.Transitive))
	for _, hit := range report.Transitive {
		ids = append(ids, hit.ScreenID)
	}
	return ids
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
