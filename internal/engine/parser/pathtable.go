// # internal/engine/parser/pathtable.go
package parser

import (
	"fmt"
	"strings"

	"screenmap/internal/engine/resolver"
	"screenmap/internal/engine/routes"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// pathTable handles the dialect family where routes are one (optionally
// wrapped) array of route objects: React Router, Vue Router, Angular.
// The per-dialect differences are just key names and wrapper calls.
type pathTable struct {
	dialect       Dialect
	wrapperCalls  []string
	routesKey     string // property of the wrapper's options object, "" = first argument
	componentKeys []string
	lazyKeys      []string
	redirectKeys  []string
	childrenKey   string
	indexRoutes   bool
	typeHints     []string // type annotations marking a declaration as a route table
}

func newPathTable(dialect Dialect) *pathTable {
	switch dialect {
	case DialectVueRouter:
		return &pathTable{
			dialect:       dialect,
			wrapperCalls:  []string{"createRouter"},
			routesKey:     "routes",
			componentKeys: []string{"component"},
			redirectKeys:  []string{"redirect"},
			childrenKey:   "children",
			typeHints:     []string{"RouteRecordRaw"},
		}
	case DialectAngular:
		return &pathTable{
			dialect:       dialect,
			wrapperCalls:  []string{"RouterModule.forRoot", "RouterModule.forChild", "provideRouter"},
			componentKeys: []string{"component"},
			lazyKeys:      []string{"loadChildren", "loadComponent"},
			redirectKeys:  []string{"redirectTo"},
			childrenKey:   "children",
			typeHints:     []string{"Routes", "Route[]"},
		}
	default: // DialectReactRouter
		return &pathTable{
			dialect:       dialect,
			wrapperCalls:  []string{"createBrowserRouter", "createHashRouter", "createMemoryRouter", "useRoutes"},
			componentKeys: []string{"element", "Component", "component"},
			lazyKeys:      []string{"lazy"},
			childrenKey:   "children",
			indexRoutes:   true,
			typeHints:     []string{"RouteObject[]"},
		}
	}
}

func (ft *pathTable) parseObject() resolver.ObjectParser {
	return ft.parseRouteObject
}

// extract locates the route table and resolves it. Wrapper calls take
// precedence; without one, top-level route-like array declarations are
// used instead, so both `createRouter({routes})` and bare exported
// arrays work without double-counting.
func (ft *pathTable) extract(ctx *resolver.Context, program *sitter.Node) []*routes.RawRouteNode {
	var out []*routes.RawRouteNode

	tables := ft.wrapperTables(ctx, program)
	if len(tables) == 0 {
		tables = ft.declaredTables(ctx, program)
	}

	for _, table := range tables {
		resolved, ok, reason, msg := resolver.ResolveRoutesValue(ctx, table)
		if !ok {
			ctx.Sink.General(fmt.Sprintf("route table could not be resolved: %s (%s)", msg, reason), "", ctx.Line(table))
			continue
		}
		out = append(out, resolved...)
	}
	return out
}

func (ft *pathTable) wrapperTables(ctx *resolver.Context, program *sitter.Node) []*sitter.Node {
	var tables []*sitter.Node
	walkTree(program, func(n *sitter.Node) bool {
		if n.Kind() != "call_expression" {
			return true
		}
		name := callName(ctx, n)
		for _, wrapper := range ft.wrapperCalls {
			if name != wrapper {
				continue
			}
			if table := ft.wrapperArgument(ctx, n); table != nil {
				tables = append(tables, table)
			}
			return false
		}
		return true
	})
	return tables
}

func (ft *pathTable) wrapperArgument(ctx *resolver.Context, call *sitter.Node) *sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return nil
	}
	first := resolver.Unwrap(args.NamedChild(0))
	if first == nil {
		return nil
	}
	if ft.routesKey == "" {
		return first
	}
	if first.Kind() != "object" {
		return nil
	}
	for i := uint(0); i < first.NamedChildCount(); i++ {
		pair := first.NamedChild(i)
		if pair.Kind() == "pair" && pairKey(ctx, pair) == ft.routesKey {
			return pair.ChildByFieldName("value")
		}
		// `createRouter({ routes })` shorthand resolves through the
		// file's local declarations.
		if pair.Kind() == "shorthand_property_identifier" && ctx.Text(pair) == ft.routesKey {
			if initializer, ok := ctx.Locals[ft.routesKey]; ok {
				return initializer
			}
		}
	}
	return nil
}

// declaredTables finds top-level array declarations that look like route
// tables, by type annotation or by a route-like name.
func (ft *pathTable) declaredTables(ctx *resolver.Context, program *sitter.Node) []*sitter.Node {
	var tables []*sitter.Node
	seen := make(map[*sitter.Node]bool)

	add := func(name string, value *sitter.Node) {
		value = resolver.Unwrap(value)
		if value == nil || value.Kind() != "array" || seen[value] {
			return
		}
		if ft.isRouteTableName(ctx, name) {
			seen[value] = true
			tables = append(tables, value)
		}
	}

	// Walk top-level statements in document order; the context's local
	// map already holds the same initializers but loses ordering.
	for i := uint(0); i < program.NamedChildCount(); i++ {
		stmt := program.NamedChild(i)
		decl := stmt
		if stmt.Kind() == "export_statement" {
			if d := stmt.ChildByFieldName("declaration"); d != nil {
				decl = d
			}
		}
		if decl.Kind() != "lexical_declaration" && decl.Kind() != "variable_declaration" {
			continue
		}
		for j := uint(0); j < decl.NamedChildCount(); j++ {
			declarator := decl.NamedChild(j)
			if declarator.Kind() != "variable_declarator" {
				continue
			}
			name := ctx.Text(declarator.ChildByFieldName("name"))
			add(name, declarator.ChildByFieldName("value"))
		}
	}
	return tables
}

func (ft *pathTable) isRouteTableName(ctx *resolver.Context, name string) bool {
	if strings.Contains(strings.ToLower(name), "route") {
		return true
	}
	annotation := ctx.LocalTypes[name]
	for _, hint := range ft.typeHints {
		if annotation != "" && strings.Contains(annotation, strings.TrimSuffix(hint, "[]")) {
			return true
		}
	}
	return false
}

// parseRouteObject converts one route-object literal into a RawRouteNode.
// A node with neither path nor children is dropped silently; a dynamic
// path value is a diagnostic and drops the node.
func (ft *pathTable) parseRouteObject(ctx *resolver.Context, obj *sitter.Node) (*routes.RawRouteNode, bool) {
	node := &routes.RawRouteNode{Line: ctx.Line(obj)}
	var childrenValue *sitter.Node

	for i := uint(0); i < obj.NamedChildCount(); i++ {
		pair := obj.NamedChild(i)
		if pair.Kind() != "pair" {
			continue
		}
		key := pairKey(ctx, pair)
		value := pair.ChildByFieldName("value")
		if key == "" || value == nil {
			continue
		}

		switch {
		case key == "path":
			literal, ok := resolver.LiteralString(ctx, value)
			if !ok {
				ctx.Sink.General("dynamic path value cannot be statically resolved", "", ctx.Line(value))
				return nil, false
			}
			node.Path = literal
			node.HasPath = true

		case key == "index" && ft.indexRoutes:
			if strings.TrimSpace(ctx.Text(value)) == "true" {
				node.Path = ""
				node.HasPath = true
			}

		case containsKey(ft.redirectKeys, key):
			literal, ok := resolver.LiteralString(ctx, value)
			if !ok {
				ctx.Sink.General("dynamic redirect target cannot be statically resolved", "", ctx.Line(value))
				continue
			}
			node.Redirect = literal

		case containsKey(ft.lazyKeys, key):
			if ref := componentFrom(ctx, value); ref != nil {
				node.Component = ref
			}

		case containsKey(ft.componentKeys, key):
			if ref := componentFrom(ctx, value); ref != nil {
				node.Component = ref
			}

		case key == ft.childrenKey:
			childrenValue = value
		}
	}

	if childrenValue != nil {
		children, ok, reason, msg := resolver.ResolveRoutesValue(ctx, childrenValue)
		if ok {
			node.Children = children
		} else {
			ctx.Sink.General(fmt.Sprintf("children could not be resolved: %s (%s)", msg, reason), "", ctx.Line(childrenValue))
		}
	}

	if !node.HasPath && len(node.Children) == 0 {
		return nil, false
	}
	return node, true
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
