// # internal/engine/parser/pathtable_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactRouterNestedTree(t *testing.T) {
	files := map[string]string{
		"/app/src/pages/Dashboard.tsx": `export default function Dashboard() {}`,
		"/app/src/admin/routes.ts":     `export const adminRoutes = [{ path: "admin", component: AdminHome }];`,
	}
	source := `
import { createBrowserRouter } from "react-router-dom";
import Dashboard from "./pages/Dashboard";
import { adminRoutes } from "./admin/routes";

export const router = createBrowserRouter([
  {
    path: "/",
    element: <Layout />,
    children: [
      { index: true, element: <Dashboard /> },
      { path: "settings", lazy: () => import("./pages/Settings") },
      ...adminRoutes,
    ],
  },
]);
`
	result := parseFixture(t, DialectReactRouter, "/app/src/routes.tsx", source, files)

	require.Len(t, result.Routes, 1)
	root := result.Routes[0]
	assert.Equal(t, "/", root.Path)
	assert.True(t, root.HasPath)
	require.NotNil(t, root.Component)
	assert.Equal(t, "Layout", root.Component.Name)

	require.Len(t, root.Children, 3)

	index := root.Children[0]
	assert.True(t, index.HasPath)
	assert.Equal(t, "", index.Path)
	require.NotNil(t, index.Component)
	assert.Equal(t, "Dashboard", index.Component.Name)
	assert.Equal(t, "/app/src/pages/Dashboard.tsx", index.Component.File)

	settings := root.Children[1]
	assert.Equal(t, "settings", settings.Path)
	require.NotNil(t, settings.Component)
	assert.Equal(t, "Settings", settings.Component.Name)
	assert.Equal(t, "/app/src/pages/Settings", settings.Component.File)

	admin := root.Children[2]
	assert.Equal(t, "admin", admin.Path)
	require.NotNil(t, admin.Component)
	assert.Equal(t, "AdminHome", admin.Component.Name)
}

func TestVueRouterShorthandRoutesOption(t *testing.T) {
	source := `
import { createRouter, createWebHistory } from "vue-router";

const routes = [
  { path: "/", component: Home },
  { path: "/old", redirect: "/new" },
  {
    path: "/users",
    component: Users,
    children: [{ path: ":id", component: UserDetail }],
  },
];

export const router = createRouter({ history: createWebHistory(), routes });
`
	result := parseFixture(t, DialectVueRouter, "/app/src/router.ts", source, nil)

	require.Len(t, result.Routes, 3)
	assert.Equal(t, "/", result.Routes[0].Path)

	redirect := result.Routes[1]
	assert.Equal(t, "/old", redirect.Path)
	assert.Equal(t, "/new", redirect.Redirect)
	assert.Nil(t, redirect.Component)
	assert.True(t, redirect.IsPureRedirect())

	users := result.Routes[2]
	require.Len(t, users.Children, 1)
	assert.Equal(t, ":id", users.Children[0].Path)
	require.NotNil(t, users.Children[0].Component)
	assert.Equal(t, "UserDetail", users.Children[0].Component.Name)
}

func TestVueRouterExplicitRoutesProperty(t *testing.T) {
	source := `
import { createRouter } from "vue-router";

export const router = createRouter({
  routes: [{ path: "/about", component: About }],
});
`
	result := parseFixture(t, DialectVueRouter, "/app/src/router.ts", source, nil)
	require.Len(t, result.Routes, 1)
	assert.Equal(t, "/about", result.Routes[0].Path)
}

func TestAngularTypedRouteTable(t *testing.T) {
	source := `
import { Routes } from "@angular/router";

export const nav: Routes = [
  { path: "", component: HomeComponent },
  { path: "legacy", redirectTo: "home" },
  { path: "reports", loadComponent: () => import("./reports/reports.component") },
];
`
	result := parseFixture(t, DialectAngular, "/app/src/app.routes.ts", source, nil)

	// "nav" carries no route-like name; the Routes annotation alone must
	// mark it as a route table.
	require.Len(t, result.Routes, 3)
	assert.Equal(t, "", result.Routes[0].Path)
	assert.True(t, result.Routes[0].HasPath)

	assert.Equal(t, "home", result.Routes[1].Redirect)
	assert.True(t, result.Routes[1].IsPureRedirect())

	reports := result.Routes[2]
	require.NotNil(t, reports.Component)
	assert.Equal(t, "reports", reports.Component.Name)
	assert.Equal(t, "/app/src/reports/reports.component", reports.Component.File)
}

func TestAngularWrapperTakesPrecedence(t *testing.T) {
	source := `
import { RouterModule, Routes } from "@angular/router";

const appRoutes: Routes = [{ path: "inbox", component: InboxComponent }];

export const routing = RouterModule.forRoot(appRoutes);
`
	result := parseFixture(t, DialectAngular, "/app/src/app.routes.ts", source, nil)

	// The declared table is consumed through the wrapper, not counted a
	// second time as a bare declaration.
	require.Len(t, result.Routes, 1)
	assert.Equal(t, "inbox", result.Routes[0].Path)
}

func TestDynamicPathDropsRoute(t *testing.T) {
	source := "export const appRoutes = [\n" +
		"  { path: basePath + \"/live\", component: Live },\n" +
		"  { path: \"stable\", component: Stable },\n" +
		"];\n"
	result := parseFixture(t, DialectReactRouter, "/app/src/routes.ts", source, nil)

	require.Len(t, result.Routes, 1)
	assert.Equal(t, "stable", result.Routes[0].Path)

	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0].Message, "dynamic path value")
}

func TestTernaryKeepsBothBranches(t *testing.T) {
	source := `
const devRoutes = [{ path: "debug", component: Debug }];
const prodRoutes = [{ path: "status", component: Status }];
export const appRoutes = [
  { path: "home", component: Home },
  ...(isDev ? devRoutes : prodRoutes),
];
`
	result := parseFixture(t, DialectReactRouter, "/app/src/routes.ts", source, nil)

	require.Len(t, result.Routes, 3)
	assert.Equal(t, "home", result.Routes[0].Path)
	assert.Equal(t, "debug", result.Routes[1].Path)
	assert.Equal(t, "status", result.Routes[2].Path)
}

func TestRouteWithoutPathOrChildrenSkipped(t *testing.T) {
	source := `
export const appRoutes = [
  { element: Boundary },
  { path: "home", component: Home },
];
`
	result := parseFixture(t, DialectReactRouter, "/app/src/routes.ts", source, nil)
	require.Len(t, result.Routes, 1)
	assert.Equal(t, "home", result.Routes[0].Path)
}
