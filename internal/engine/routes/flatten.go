// # internal/engine/routes/flatten.go
package routes

import (
	"fmt"
	"strings"
)

// FlatRoute is one navigable target with its canonical absolute path and
// derived identifiers. Immutable once produced.
type FlatRoute struct {
	FullPath    string
	ScreenID    string
	ScreenTitle string
	Component   *ComponentRef
	Depth       int
	Source      *RawRouteNode
}

// Flatten walks the raw tree depth-first in pre-order and emits flat
// routes with computed absolute paths. Pure-redirect nodes yield no
// screen but their path still anchors their children. Distinct full
// paths normalizing to the same screen id produce a general diagnostic;
// downstream merging is last-write-wins.
func Flatten(roots []*RawRouteNode) ([]FlatRoute, []Diagnostic) {
	flat := make([]FlatRoute, 0)
	var diags []Diagnostic

	var walk func(node *RawRouteNode, parentPath string, depth int)
	walk = func(node *RawRouteNode, parentPath string, depth int) {
		if node == nil {
			return
		}

		full := joinPath(parentPath, node.Path)
		if !node.IsPureRedirect() {
			flat = append(flat, FlatRoute{
				FullPath:    full,
				ScreenID:    ScreenID(full),
				ScreenTitle: ScreenTitle(full),
				Component:   node.Component,
				Depth:       depth,
				Source:      node,
			})
		}
		for _, child := range node.Children {
			walk(child, full, depth+1)
		}
	}

	for _, root := range roots {
		walk(root, "", 0)
	}

	seen := make(map[string]string, len(flat))
	for _, fr := range flat {
		if prev, ok := seen[fr.ScreenID]; ok && prev != fr.FullPath {
			diags = append(diags, Diagnostic{
				Kind:    DiagnosticGeneral,
				Message: fmt.Sprintf("screen id %q derived from both %q and %q", fr.ScreenID, prev, fr.FullPath),
			})
			continue
		}
		seen[fr.ScreenID] = fr.FullPath
	}

	return flat, diags
}

// joinPath appends a route's own segment to its parent's full path. An
// empty segment reuses the parent path unchanged (index and layout
// routes); wildcards stay literal.
func joinPath(parent, segment string) string {
	seg := strings.Trim(segment, "/")
	if seg == "" {
		if parent == "" {
			return "/"
		}
		return parent
	}
	if parent == "" || parent == "/" {
		return "/" + seg
	}
	return parent + "/" + seg
}

// ScreenID derives the dot-joined slug for a full path. It is a pure
// function of its input: dynamic segments keep their bare name,
// catch-alls become "catchall", the root path becomes "home".
func ScreenID(fullPath string) string {
	if i := strings.IndexAny(fullPath, "?#"); i >= 0 {
		fullPath = fullPath[:i]
	}

	parts := strings.Split(fullPath, "/")
	segs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if strings.Contains(part, "*") {
			segs = append(segs, "catchall")
			continue
		}
		segs = append(segs, strings.TrimPrefix(part, ":"))
	}
	if len(segs) == 0 {
		return "home"
	}
	return strings.Join(segs, ".")
}

// ScreenTitle derives a display title from the last static segment,
// skipping dynamic parameters and catch-alls. The root path titles as
// "Home".
func ScreenTitle(fullPath string) string {
	if i := strings.IndexAny(fullPath, "?#"); i >= 0 {
		fullPath = fullPath[:i]
	}

	parts := strings.Split(fullPath, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		part := parts[i]
		if part == "" || strings.HasPrefix(part, ":") || strings.Contains(part, "*") {
			continue
		}
		return titleCase(part)
	}
	return "Home"
}

func titleCase(segment string) string {
	words := strings.FieldsFunc(segment, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
