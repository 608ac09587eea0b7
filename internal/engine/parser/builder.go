// # internal/engine/parser/builder.go
package parser

import (
	"fmt"
	"strings"

	"screenmap/internal/engine/resolver"
	"screenmap/internal/engine/routes"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// builderFrontEnd handles the builder-call dialect where routes are
// assembled from createRootRoute/createRoute bindings composed through
// addChildren calls. Extraction is two passes: collect bindings and
// compositions first, then assemble trees from the roots.
type builderFrontEnd struct{}

func newBuilderFrontEnd() *builderFrontEnd {
	return &builderFrontEnd{}
}

// routeBinding is one `const x = createRoute({...})` declaration.
type routeBinding struct {
	name    string
	root    bool
	options *sitter.Node // the builder's options object, may be nil
	line    int
}

func (bf *builderFrontEnd) parseObject() resolver.ObjectParser {
	return bf.parseOptions
}

func (bf *builderFrontEnd) extract(ctx *resolver.Context, program *sitter.Node) []*routes.RawRouteNode {
	bindings, order := bf.collectBindings(ctx, program)
	children := bf.collectCompositions(ctx, program, bindings)

	var out []*routes.RawRouteNode
	assembling := make(map[string]bool)
	for _, name := range order {
		binding := bindings[name]
		if !binding.root {
			continue
		}
		if node := bf.assemble(ctx, binding, bindings, children, assembling); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// collectBindings scans top-level declarations in document order for
// builder calls, keyed by the bound identifier.
func (bf *builderFrontEnd) collectBindings(ctx *resolver.Context, program *sitter.Node) (map[string]*routeBinding, []string) {
	bindings := make(map[string]*routeBinding)
	var order []string

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
			nameNode := declarator.ChildByFieldName("name")
			value := resolver.Unwrap(declarator.ChildByFieldName("value"))
			if nameNode == nil || value == nil || value.Kind() != "call_expression" {
				continue
			}
			callee := callName(ctx, value)
			// `createRoute(...)({...})` curried form: unwrap to the
			// inner builder call.
			if fn := value.ChildByFieldName("function"); fn != nil && fn.Kind() == "call_expression" {
				callee = callName(ctx, fn)
			}
			if callee != "createRoute" && callee != "createRootRoute" && callee != "createFileRoute" {
				continue
			}
			name := ctx.Text(nameNode)
			binding := &routeBinding{
				name:    name,
				root:    callee == "createRootRoute",
				options: firstObjectArgument(value),
				line:    ctx.Line(declarator),
			}
			bindings[name] = binding
			order = append(order, name)
		}
	}
	return bindings, order
}

// collectCompositions maps each bound route name to the children array
// passed to its addChildren call.
func (bf *builderFrontEnd) collectCompositions(ctx *resolver.Context, program *sitter.Node, bindings map[string]*routeBinding) map[string]*sitter.Node {
	compositions := make(map[string]*sitter.Node)
	walkTree(program, func(n *sitter.Node) bool {
		if n.Kind() != "call_expression" {
			return true
		}
		receiver, array := addChildrenCall(ctx, n)
		if receiver == "" {
			return true
		}
		if _, known := bindings[receiver]; !known {
			ctx.Sink.General(
				fmt.Sprintf("addChildren receiver %q is not a route declared in this file", receiver),
				receiver, ctx.Line(n))
			return true
		}
		if _, dup := compositions[receiver]; dup {
			ctx.Sink.General(
				fmt.Sprintf("route %q composed more than once; later addChildren wins", receiver),
				receiver, ctx.Line(n))
		}
		compositions[receiver] = array
		return true
	})
	return compositions
}

// assemble builds the tree below one binding, guarding against cyclic
// composition with an on-stack set.
func (bf *builderFrontEnd) assemble(ctx *resolver.Context, binding *routeBinding, bindings map[string]*routeBinding, compositions map[string]*sitter.Node, assembling map[string]bool) *routes.RawRouteNode {
	if assembling[binding.name] {
		ctx.Sink.General(
			fmt.Sprintf("circular route composition through %q", binding.name),
			binding.name, binding.line)
		return nil
	}
	assembling[binding.name] = true
	defer delete(assembling, binding.name)

	node := bf.nodeFromOptions(ctx, binding)
	if node == nil {
		return nil
	}

	array := compositions[binding.name]
	if array == nil {
		return node
	}
	for i := uint(0); i < array.NamedChildCount(); i++ {
		element := resolver.Unwrap(array.NamedChild(i))
		if element == nil {
			continue
		}
		switch element.Kind() {
		case "identifier":
			name := ctx.Text(element)
			child, known := bindings[name]
			if !known {
				ctx.Sink.General(
					fmt.Sprintf("child %q is not a route declared in this file", name),
					name, ctx.Line(element))
				continue
			}
			if assembled := bf.assemble(ctx, child, bindings, compositions, assembling); assembled != nil {
				node.Children = append(node.Children, assembled)
			}
		case "call_expression":
			// Inline nested composition: `child.addChildren([...])`.
			receiver, nested := addChildrenCall(ctx, element)
			child, known := bindings[receiver]
			if receiver == "" || !known {
				ctx.Sink.General("Function call results cannot be statically resolved",
					"", ctx.Line(element))
				continue
			}
			compositions[receiver] = nested
			if assembled := bf.assemble(ctx, child, bindings, compositions, assembling); assembled != nil {
				node.Children = append(node.Children, assembled)
			}
		case "spread_element":
			arg := resolver.Unwrap(element.NamedChild(0))
			ident := ""
			if arg != nil && arg.Kind() == "identifier" {
				ident = ctx.Text(arg)
			}
			resolvedChildren, ok, reason, msg := resolver.ResolveRoutesValue(ctx, arg)
			if ok {
				node.Children = append(node.Children, resolvedChildren...)
				ctx.Sink.SpreadResolved(ident, ctx.Line(element))
			} else {
				ctx.Sink.SpreadFailed(msg, ident, ctx.Line(element), reason)
			}
		case "comment":
			// ignore
		default:
			ctx.Sink.General(
				fmt.Sprintf("unsupported element of kind %q in addChildren", element.Kind()),
				"", ctx.Line(element))
		}
	}
	return node
}

// nodeFromOptions reads the builder's options object. The root builder
// takes no path, so it always yields the root node.
func (bf *builderFrontEnd) nodeFromOptions(ctx *resolver.Context, binding *routeBinding) *routes.RawRouteNode {
	node := &routes.RawRouteNode{Line: binding.line}
	if binding.root {
		node.Path = "/"
		node.HasPath = true
	}
	if binding.options == nil {
		if binding.root {
			return node
		}
		ctx.Sink.General(
			fmt.Sprintf("route %q has no options object", binding.name),
			binding.name, binding.line)
		return nil
	}

	for i := uint(0); i < binding.options.NamedChildCount(); i++ {
		pair := binding.options.NamedChild(i)
		if pair.Kind() != "pair" {
			continue
		}
		key := pairKey(ctx, pair)
		value := pair.ChildByFieldName("value")
		if value == nil {
			continue
		}
		switch key {
		case "path":
			literal, ok := resolver.LiteralString(ctx, value)
			if !ok {
				ctx.Sink.General("dynamic path value cannot be statically resolved",
					binding.name, ctx.Line(value))
				return nil
			}
			node.Path = strings.TrimPrefix(literal, "/")
			if literal == "/" {
				node.Path = ""
			}
			node.HasPath = true
		case "component":
			if ref := componentFrom(ctx, value); ref != nil {
				node.Component = ref
			}
		}
	}

	if !binding.root && !node.HasPath {
		// Pathless layout routes pass their children straight through.
		node.HasPath = true
	}
	return node
}

// parseOptions lets spread-resolved route values from other files feed
// builder trees as plain route objects.
func (bf *builderFrontEnd) parseOptions(ctx *resolver.Context, obj *sitter.Node) (*routes.RawRouteNode, bool) {
	node := &routes.RawRouteNode{Line: ctx.Line(obj)}
	for i := uint(0); i < obj.NamedChildCount(); i++ {
		pair := obj.NamedChild(i)
		if pair.Kind() != "pair" {
			continue
		}
		key := pairKey(ctx, pair)
		value := pair.ChildByFieldName("value")
		if value == nil {
			continue
		}
		switch key {
		case "path":
			literal, ok := resolver.LiteralString(ctx, value)
			if !ok {
				ctx.Sink.General("dynamic path value cannot be statically resolved", "", ctx.Line(value))
				return nil, false
			}
			node.Path = strings.TrimPrefix(literal, "/")
			node.HasPath = true
		case "component":
			if ref := componentFrom(ctx, value); ref != nil {
				node.Component = ref
			}
		case "children":
			children, ok, reason, msg := resolver.ResolveRoutesValue(ctx, value)
			if ok {
				node.Children = children
			} else {
				ctx.Sink.General(fmt.Sprintf("children could not be resolved: %s (%s)", msg, reason), "", ctx.Line(value))
			}
		}
	}
	if !node.HasPath && len(node.Children) == 0 {
		return nil, false
	}
	return node, true
}

// firstObjectArgument returns the first object-literal argument of a
// call, searching the inner call of a curried form too.
func firstObjectArgument(call *sitter.Node) *sitter.Node {
	for call != nil && call.Kind() == "call_expression" {
		if args := call.ChildByFieldName("arguments"); args != nil {
			for i := uint(0); i < args.NamedChildCount(); i++ {
				if arg := resolver.Unwrap(args.NamedChild(i)); arg != nil && arg.Kind() == "object" {
					return arg
				}
			}
		}
		call = call.ChildByFieldName("function")
	}
	return nil
}

// addChildrenCall matches `<identifier>.addChildren([ ... ])` and
// returns the receiver name and the array argument.
func addChildrenCall(ctx *resolver.Context, call *sitter.Node) (string, *sitter.Node) {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "member_expression" {
		return "", nil
	}
	property := fn.ChildByFieldName("property")
	object := fn.ChildByFieldName("object")
	if property == nil || object == nil || ctx.Text(property) != "addChildren" {
		return "", nil
	}
	if object.Kind() != "identifier" {
		return "", nil
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", nil
	}
	array := resolver.Unwrap(args.NamedChild(0))
	if array == nil || array.Kind() != "array" {
		return "", nil
	}
	return ctx.Text(object), array
}
