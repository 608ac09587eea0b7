// # internal/ui/report/formats/utils.go
package formats

import (
	"fmt"
	"strings"
	"unicode"

	"screenmap/internal/catalog"
)

func screenLabel(screen catalog.Screen) string {
	title := screen.Title
	if strings.TrimSpace(title) == "" {
		title = screen.ID
	}
	route := screen.Route
	if route == "" {
		route = "/"
	}
	return fmt.Sprintf("%s\\n%s", title, route)
}

func sanitizeID(name string) string {
	if name == "" {
		return "s"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if out == "" {
		return "s"
	}
	first := rune(out[0])
	if unicode.IsDigit(first) {
		return "s_" + out
	}
	return out
}

func makeIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := sanitizeID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func toIDs(names []string, ids map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := ids[name]; ok {
			out = append(out, id)
		}
	}
	return out
}

func joinInts(v []int) string {
	if len(v) == 0 {
		return ""
	}
	parts := make([]string, 0, len(v))
	for _, n := range v {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, ",")
}

// cycleEdgeSet expands closed cycle paths ([a b a]) into their
// directed edges.
func cycleEdgeSet(cycles [][]string) map[string]bool {
	out := make(map[string]bool)
	for _, cycle := range cycles {
		for i := 0; i+1 < len(cycle); i++ {
			out[cycle[i]+"->"+cycle[i+1]] = true
		}
	}
	return out
}

func cycleScreenSet(cycles [][]string) map[string]bool {
	out := make(map[string]bool)
	for _, cycle := range cycles {
		for _, id := range cycle {
			out[id] = true
		}
	}
	return out
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
