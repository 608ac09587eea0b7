// # internal/engine/parser/builder_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderComposition(t *testing.T) {
	source := `
import { createRootRoute, createRoute } from "@tanstack/react-router";

const rootRoute = createRootRoute({ component: App });
const indexRoute = createRoute({ getParentRoute: () => rootRoute, path: "/", component: Home });
const postsRoute = createRoute({ getParentRoute: () => rootRoute, path: "posts", component: Posts });
const postRoute = createRoute({ getParentRoute: () => postsRoute, path: "$postId", component: Post });

export const routeTree = rootRoute.addChildren([
  indexRoute,
  postsRoute.addChildren([postRoute]),
]);
`
	result := parseFixture(t, DialectTanStack, "/app/src/routeTree.ts", source, nil)

	require.Len(t, result.Routes, 1)
	root := result.Routes[0]
	assert.Equal(t, "/", root.Path)
	require.NotNil(t, root.Component)
	assert.Equal(t, "App", root.Component.Name)

	require.Len(t, root.Children, 2)

	index := root.Children[0]
	assert.Equal(t, "", index.Path)
	assert.True(t, index.HasPath)
	require.NotNil(t, index.Component)
	assert.Equal(t, "Home", index.Component.Name)

	posts := root.Children[1]
	assert.Equal(t, "posts", posts.Path)
	require.Len(t, posts.Children, 1)
	assert.Equal(t, "$postId", posts.Children[0].Path)
}

func TestBuilderUncomposedRootStandsAlone(t *testing.T) {
	source := `
const rootRoute = createRootRoute({ component: App });
`
	result := parseFixture(t, DialectTanStack, "/app/src/routeTree.ts", source, nil)
	require.Len(t, result.Routes, 1)
	assert.Equal(t, "/", result.Routes[0].Path)
	assert.Empty(t, result.Routes[0].Children)
}

func TestBuilderCircularComposition(t *testing.T) {
	source := `
const rootRoute = createRootRoute({});
const loopRoute = createRoute({ path: "loop", component: Loop });

export const routeTree = rootRoute.addChildren([loopRoute]);
loopRoute.addChildren([rootRoute]);
`
	result := parseFixture(t, DialectTanStack, "/app/src/routeTree.ts", source, nil)

	require.Len(t, result.Routes, 1)
	root := result.Routes[0]
	require.Len(t, root.Children, 1)
	assert.Equal(t, "loop", root.Children[0].Path)
	// The cycle back to the root is cut and reported, not followed.
	assert.Empty(t, root.Children[0].Children)

	var reported bool
	for _, d := range result.Warnings {
		if d.Identifier == "rootRoute" {
			reported = true
			assert.Contains(t, d.Message, "circular route composition")
		}
	}
	assert.True(t, reported, "expected a circular-composition warning")
}

func TestBuilderDynamicPathDropsBinding(t *testing.T) {
	source := `
const rootRoute = createRootRoute({});
const liveRoute = createRoute({ path: prefix + "/live", component: Live });
const stableRoute = createRoute({ path: "stable", component: Stable });

export const routeTree = rootRoute.addChildren([liveRoute, stableRoute]);
`
	result := parseFixture(t, DialectTanStack, "/app/src/routeTree.ts", source, nil)

	require.Len(t, result.Routes, 1)
	root := result.Routes[0]
	require.Len(t, root.Children, 1)
	assert.Equal(t, "stable", root.Children[0].Path)

	require.NotEmpty(t, result.Warnings)
	var dropped bool
	for _, d := range result.Warnings {
		if d.Identifier == "liveRoute" {
			dropped = true
			assert.Contains(t, d.Message, "dynamic path value")
		}
	}
	assert.True(t, dropped)
}

func TestBuilderUnknownChildReported(t *testing.T) {
	source := `
const rootRoute = createRootRoute({});
export const routeTree = rootRoute.addChildren([importedRoute]);
`
	result := parseFixture(t, DialectTanStack, "/app/src/routeTree.ts", source, nil)

	require.Len(t, result.Routes, 1)
	assert.Empty(t, result.Routes[0].Children)
	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, "importedRoute", result.Warnings[0].Identifier)
}

func TestBuilderSpreadChildrenFromImport(t *testing.T) {
	files := map[string]string{
		"/app/src/features/routes.ts": `export const featureRoutes = [{ path: "billing", component: Billing }];`,
	}
	source := `
import { featureRoutes } from "./features/routes";

const rootRoute = createRootRoute({});
export const routeTree = rootRoute.addChildren([...featureRoutes]);
`
	result := parseFixture(t, DialectTanStack, "/app/src/routeTree.ts", source, files)

	require.Len(t, result.Routes, 1)
	root := result.Routes[0]
	require.Len(t, root.Children, 1)
	assert.Equal(t, "billing", root.Children[0].Path)
}
