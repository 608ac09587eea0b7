// # internal/engine/resolver/resolver.go
package resolver

import (
	"fmt"
	"strings"

	"screenmap/internal/engine/routes"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// result carries one expression resolution outcome: a concrete route
// list, or an unresolvable marker with a fixed-vocabulary reason.
type result struct {
	routes []*routes.RawRouteNode
	ok     bool
	reason routes.FailureReason
	msg    string
}

func resolved(list []*routes.RawRouteNode) result {
	return result{routes: list, ok: true}
}

func unresolvable(reason routes.FailureReason, msg string) result {
	return result{reason: reason, msg: msg}
}

// ResolveRouteArray resolves an array literal of route declarations,
// splicing in spread elements where they can be statically determined.
// Unresolved spreads are omitted, never fatal; every spread leaves a
// diagnostic recording whether it resolved.
func ResolveRouteArray(ctx *Context, array *sitter.Node) []*routes.RawRouteNode {
	out := make([]*routes.RawRouteNode, 0, array.NamedChildCount())

	for i := uint(0); i < array.NamedChildCount(); i++ {
		element := Unwrap(array.NamedChild(i))
		if element == nil {
			continue
		}

		switch element.Kind() {
		case "spread_element":
			arg := Unwrap(element.NamedChild(0))
			ident := ""
			if arg != nil && arg.Kind() == "identifier" {
				ident = ctx.Text(arg)
			}
			res := resolveExpression(ctx, arg)
			if res.ok {
				out = append(out, res.routes...)
				ctx.Sink.SpreadResolved(ident, ctx.Line(element))
			} else {
				ctx.Sink.SpreadFailed(res.msg, ident, ctx.Line(element), res.reason)
			}
		case "object":
			if ctx.opts.ParseObject == nil {
				continue
			}
			if node, ok := ctx.opts.ParseObject(ctx, element); ok {
				out = append(out, node)
			}
		case "comment":
			// ignore
		default:
			ctx.Sink.General(
				fmt.Sprintf("unsupported element of kind %q in route array", element.Kind()),
				"", ctx.Line(element))
		}
	}

	return out
}

// ResolveRoutesValue resolves an arbitrary route-valued expression through
// the closed grammar, reporting the failure reason when it cannot.
func ResolveRoutesValue(ctx *Context, node *sitter.Node) ([]*routes.RawRouteNode, bool, routes.FailureReason, string) {
	res := resolveExpression(ctx, node)
	return res.routes, res.ok, res.reason, res.msg
}

// resolveExpression evaluates the closed grammar of statically analyzable
// expressions. Anything outside it becomes a distinguishable diagnosable
// case, never a silent guess.
func resolveExpression(ctx *Context, node *sitter.Node) result {
	node = Unwrap(node)
	if node == nil {
		return unresolvable(routes.ReasonUnsupportedExpression, "empty expression")
	}

	switch node.Kind() {
	case "array":
		return resolved(ResolveRouteArray(ctx, node))

	case "identifier":
		return resolveIdentifier(ctx, node)

	case "ternary_expression":
		// Static analysis cannot know which branch runs, so both are
		// resolved and concatenated. Over-approximation is policy here.
		consequence := resolveExpression(ctx, node.ChildByFieldName("consequence"))
		alternative := resolveExpression(ctx, node.ChildByFieldName("alternative"))
		return mergeBranches(consequence, alternative)

	case "binary_expression":
		operator := ctx.Text(node.ChildByFieldName("operator"))
		switch operator {
		case "&&":
			// The left operand is treated as a guard condition. Known
			// limitation: a route array on the left is missed.
			return resolveExpression(ctx, node.ChildByFieldName("right"))
		case "||":
			left := resolveExpression(ctx, node.ChildByFieldName("left"))
			right := resolveExpression(ctx, node.ChildByFieldName("right"))
			return mergeBranches(left, right)
		default:
			return unresolvable(routes.ReasonUnsupportedExpression,
				fmt.Sprintf("operator %q cannot be statically resolved", operator))
		}

	case "call_expression":
		return unresolvable(routes.ReasonFunctionCall,
			"Function call results cannot be statically resolved")

	default:
		return unresolvable(routes.ReasonUnsupportedExpression,
			fmt.Sprintf("expression of kind %q cannot be statically resolved", node.Kind()))
	}
}

func resolveIdentifier(ctx *Context, node *sitter.Node) result {
	name := ctx.Text(node)

	if ctx.resolving[name] {
		return unresolvable(routes.ReasonUnsupportedExpression,
			fmt.Sprintf("identifier %q refers to itself", name))
	}

	if initializer, ok := ctx.Locals[name]; ok {
		ctx.resolving[name] = true
		res := resolveExpression(ctx, initializer)
		delete(ctx.resolving, name)
		return res
	}

	if ref, ok := ctx.Imports[name]; ok {
		return resolveImport(ctx, name, ref)
	}

	msg := fmt.Sprintf("identifier %q is not defined in this file", name)
	if !strings.Contains(strings.ToLower(name), "route") {
		msg += "; imported route arrays are only tracked for names containing \"route\""
	}
	return unresolvable(routes.ReasonIdentifierNotFound, msg)
}

func mergeBranches(a, b result) result {
	if !a.ok && !b.ok {
		return a
	}
	merged := make([]*routes.RawRouteNode, 0, len(a.routes)+len(b.routes))
	merged = append(merged, a.routes...)
	merged = append(merged, b.routes...)
	return resolved(merged)
}

// Unwrap strips transparent TypeScript wrappers (assertions, satisfies,
// non-null, parentheses) so callers only ever see the inner expression.
func Unwrap(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Kind() {
		case "as_expression", "satisfies_expression", "non_null_expression", "parenthesized_expression":
			node = node.NamedChild(0)
		case "type_assertion":
			if node.NamedChildCount() == 0 {
				return node
			}
			node = node.NamedChild(node.NamedChildCount() - 1)
		default:
			return node
		}
	}
	return node
}

// LiteralString extracts the value of a string literal or a template
// literal without substitutions. Anything dynamic reports false.
func LiteralString(ctx *Context, node *sitter.Node) (string, bool) {
	node = Unwrap(node)
	if node == nil {
		return "", false
	}
	switch node.Kind() {
	case "string":
		return trimQuoted(ctx.Text(node)), true
	case "template_string":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if node.NamedChild(i).Kind() == "template_substitution" {
				return "", false
			}
		}
		return trimQuoted(ctx.Text(node)), true
	default:
		return "", false
	}
}
