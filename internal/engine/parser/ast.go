// # internal/engine/parser/ast.go
package parser

import (
	"path/filepath"
	"strings"

	"screenmap/internal/engine/resolver"
	"screenmap/internal/engine/routes"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// walkTree visits every node depth-first. The visitor returns false to
// skip a node's children.
func walkTree(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visit)
	}
}

// callName returns the full textual callee of a call expression,
// e.g. "createRouter" or "RouterModule.forRoot".
func callName(ctx *resolver.Context, call *sitter.Node) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	return strings.TrimSpace(ctx.Text(fn))
}

// pairKey returns the property name of an object pair, unquoting string
// keys. Computed keys report "".
func pairKey(ctx *resolver.Context, pair *sitter.Node) string {
	key := pair.ChildByFieldName("key")
	if key == nil {
		return ""
	}
	switch key.Kind() {
	case "property_identifier", "identifier":
		return ctx.Text(key)
	case "string":
		return strings.Trim(ctx.Text(key), "\"'`")
	default:
		return ""
	}
}

// findDynamicImport locates the first dynamic-import call in a subtree
// and returns its literal argument. Trailing extraction chains such as
// `.then(m => m.Component)` do not affect the result.
func findDynamicImport(ctx *resolver.Context, node *sitter.Node) (string, bool) {
	var literal string
	found := false
	walkTree(node, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if n.Kind() != "call_expression" {
			return true
		}
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Kind() != "import" {
			return true
		}
		args := n.ChildByFieldName("arguments")
		if args == nil {
			return true
		}
		for i := uint(0); i < args.NamedChildCount(); i++ {
			if value, ok := resolver.LiteralString(ctx, args.NamedChild(i)); ok {
				literal = value
				found = true
				return false
			}
		}
		return true
	})
	return literal, found
}

// componentFrom resolves the component reference of a route value:
// an identifier or JSX tag goes through the file's import table, and a
// lazy-import thunk resolves to its dynamic-import literal re-based to
// the containing file's directory.
func componentFrom(ctx *resolver.Context, value *sitter.Node) *routes.ComponentRef {
	value = resolver.Unwrap(value)
	if value == nil {
		return nil
	}

	switch value.Kind() {
	case "identifier":
		return ctx.ComponentTarget(ctx.Text(value))

	case "member_expression":
		return &routes.ComponentRef{Name: ctx.Text(value)}

	case "jsx_self_closing_element":
		return jsxComponent(ctx, value)

	case "jsx_element":
		for i := uint(0); i < value.NamedChildCount(); i++ {
			if value.NamedChild(i).Kind() == "jsx_opening_element" {
				return jsxComponent(ctx, value.NamedChild(i))
			}
		}
		return nil

	default:
		if literal, ok := findDynamicImport(ctx, value); ok {
			return lazyComponent(ctx, literal)
		}
		return nil
	}
}

func jsxComponent(ctx *resolver.Context, element *sitter.Node) *routes.ComponentRef {
	name := element.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	if name.Kind() == "identifier" {
		return ctx.ComponentTarget(ctx.Text(name))
	}
	return &routes.ComponentRef{Name: ctx.Text(name)}
}

func lazyComponent(ctx *resolver.Context, literal string) *routes.ComponentRef {
	name := strings.TrimSuffix(filepath.Base(literal), filepath.Ext(literal))
	file := literal
	if resolved := resolver.ResolveImportPath(literal, ctx.Dir); resolved != "" {
		file = resolved
	}
	return &routes.ComponentRef{Name: name, File: file}
}
