// # internal/engine/resolver/imports.go
package resolver

import (
	"fmt"
	"path/filepath"
	"strings"

	"screenmap/internal/engine/routes"
	"screenmap/internal/shared/observability"
)

// ResolveImportPath turns a module specifier plus base directory into a
// candidate absolute file path. Only relative specifiers are resolvable;
// bundler aliases and package imports return "".
func ResolveImportPath(spec, baseDir string) string {
	spec = strings.TrimSpace(spec)
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") && spec != "." && spec != ".." {
		return ""
	}
	return filepath.Clean(filepath.Join(baseDir, filepath.FromSlash(spec)))
}

// probe tries the candidate path as written, then against the ordered
// extension list, until one exists.
func (c *Context) probe(candidate string) (string, bool) {
	if filepath.Ext(candidate) != "" && c.opts.FileExists(candidate) {
		return candidate, true
	}
	for _, ext := range c.opts.Extensions {
		if withExt := candidate + ext; c.opts.FileExists(withExt) {
			return withExt, true
		}
	}
	return "", false
}

// resolveImport loads the file behind an import reference, parses it
// independently, and resolves the named export in a fresh context one
// level deeper. A nil result with ok=false means partial coverage, not
// failure: callers keep building around the gap.
func resolveImport(ctx *Context, localName string, ref ImportRef) result {
	if ctx.Depth >= ctx.opts.MaxDepth {
		observability.ImportResolutions.WithLabelValues("depth-limit").Inc()
		return unresolvable(routes.ReasonDepthLimit,
			fmt.Sprintf("import resolution depth limit (%d) reached while resolving %q", ctx.opts.MaxDepth, localName))
	}

	candidate := ResolveImportPath(ref.Source, ctx.Dir)
	if candidate == "" {
		observability.ImportResolutions.WithLabelValues("not-found").Inc()
		return unresolvable(routes.ReasonFileNotFound,
			fmt.Sprintf("could not locate source file for import %q", ref.Source))
	}

	target, ok := ctx.probe(candidate)
	if !ok {
		observability.ImportResolutions.WithLabelValues("not-found").Inc()
		return unresolvable(routes.ReasonFileNotFound,
			fmt.Sprintf("no source file found for import %q under %s", ref.Source, ctx.Dir))
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}

	if cached, hit := ctx.opts.Cache.Get(abs, ref.Name); hit {
		return resolved(cached)
	}

	content, err := ctx.opts.ReadFile(target)
	if err != nil {
		observability.ImportResolutions.WithLabelValues("unreadable").Inc()
		return unresolvable(routes.ReasonFileUnreadable,
			fmt.Sprintf("failed to read imported file %s: %v", target, err))
	}

	tree := ctx.opts.Grammars.Parse(target, content)
	if tree == nil {
		observability.ImportResolutions.WithLabelValues("unparseable").Inc()
		return unresolvable(routes.ReasonImportParseFailure,
			fmt.Sprintf("imported file %s could not be parsed", target))
	}
	defer tree.Close()

	child := ctx.child(target, content, tree.RootNode())

	value, found := child.exportedValue(ref.Name)
	if !found {
		observability.ImportResolutions.WithLabelValues("export-missing").Inc()
		return unresolvable(routes.ReasonExportNotFound,
			fmt.Sprintf("no export named %q in %s", ref.Name, target))
	}

	res := resolveExpression(child, value)
	if res.ok {
		ctx.opts.Cache.Set(abs, ref.Name, res.routes)
		observability.ImportResolutions.WithLabelValues("resolved").Inc()
	}
	return res
}
