package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path     string
		expected string
	}{
		{"", "home"},
		{"/", "home"},
		{"/dashboard", "dashboard"},
		{"/dashboard/settings", "dashboard.settings"},
		{"/posts/:postId/comments/:commentId", "posts.postId.comments.commentId"},
		{"/files/*", "files.catchall"},
		{"/docs/:lang/*", "docs.lang.catchall"},
		{"/search?q=1", "search"},
		{"/about#team", "about"},
	}

	for _, tc := range cases {
		if got := ScreenID(tc.path); got != tc.expected {
			t.Errorf("ScreenID(%q) = %q, want %q", tc.path, got, tc.expected)
		}
	}

	// Pure function: repeated calls agree, and "" and "/" coincide.
	if ScreenID("") != ScreenID("/") {
		t.Error("expected ScreenID(\"\") == ScreenID(\"/\")")
	}
}

func TestScreenTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path     string
		expected string
	}{
		{"/", "Home"},
		{"", "Home"},
		{"/user-settings", "User Settings"},
		{"/admin/audit_log", "Audit Log"},
		{"/posts/:postId", "Posts"},
		{"/:id", "Home"},
		{"/files/*", "Files"},
	}

	for _, tc := range cases {
		if got := ScreenTitle(tc.path); got != tc.expected {
			t.Errorf("ScreenTitle(%q) = %q, want %q", tc.path, got, tc.expected)
		}
	}
}

func TestFlattenDashboardWithIndexChild(t *testing.T) {
	t.Parallel()

	tree := []*RawRouteNode{
		{
			Path:    "dashboard",
			HasPath: true,
			Children: []*RawRouteNode{
				{Path: "", HasPath: true, Component: &ComponentRef{Name: "Overview"}},
				{Path: "settings", HasPath: true, Component: &ComponentRef{Name: "Settings"}},
			},
		},
	}

	flat, diags := Flatten(tree)
	require.Len(t, flat, 3)
	assert.Empty(t, diags)

	assert.Equal(t, "/dashboard", flat[0].FullPath)
	assert.Equal(t, "/dashboard", flat[1].FullPath)
	assert.Equal(t, "/dashboard/settings", flat[2].FullPath)

	assert.Equal(t, "dashboard", flat[0].ScreenID)
	assert.Equal(t, "dashboard", flat[1].ScreenID)
	assert.Equal(t, "dashboard.settings", flat[2].ScreenID)

	assert.Equal(t, 0, flat[0].Depth)
	assert.Equal(t, 1, flat[1].Depth)
	assert.Equal(t, 1, flat[2].Depth)

	// The index child is a distinct flat route, not merged into the parent.
	assert.NotSame(t, flat[0].Source, flat[1].Source)
}

func TestFlattenPreOrder(t *testing.T) {
	t.Parallel()

	tree := []*RawRouteNode{
		{
			Path:    "a",
			HasPath: true,
			Children: []*RawRouteNode{
				{Path: "b", HasPath: true, Children: []*RawRouteNode{
					{Path: "c", HasPath: true},
				}},
				{Path: "d", HasPath: true},
			},
		},
		{Path: "e", HasPath: true},
	}

	flat, _ := Flatten(tree)
	got := make([]string, 0, len(flat))
	for _, fr := range flat {
		got = append(got, fr.FullPath)
	}
	assert.Equal(t, []string{"/a", "/a/b", "/a/b/c", "/a/d", "/e"}, got)
}

func TestFlattenRedirectNodes(t *testing.T) {
	t.Parallel()

	tree := []*RawRouteNode{
		{
			Path:     "legacy",
			HasPath:  true,
			Redirect: "/new",
			Children: []*RawRouteNode{
				{Path: "detail", HasPath: true, Component: &ComponentRef{Name: "Detail"}},
			},
		},
	}

	flat, _ := Flatten(tree)
	require.Len(t, flat, 1)
	// The redirect node yields no screen, but its path still anchors the child.
	assert.Equal(t, "/legacy/detail", flat[0].FullPath)
	assert.Equal(t, 1, flat[0].Depth)
}

func TestFlattenSkipsNothingButRedirects(t *testing.T) {
	t.Parallel()

	tree := []*RawRouteNode{
		{Path: "old", HasPath: true, Redirect: "/home"},
		{Path: "home", HasPath: true, Component: &ComponentRef{Name: "Home"}},
	}

	flat, _ := Flatten(tree)
	require.Len(t, flat, 1)
	assert.Equal(t, "/home", flat[0].FullPath)
}

func TestFlattenScreenIDCollision(t *testing.T) {
	t.Parallel()

	tree := []*RawRouteNode{
		{Path: "users/settings", HasPath: true},
		{Path: "users/:settings", HasPath: true},
	}

	flat, diags := Flatten(tree)
	assert.Len(t, flat, 2)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagnosticGeneral, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "users.settings")
}

func TestFlattenRootPath(t *testing.T) {
	t.Parallel()

	tree := []*RawRouteNode{
		{Path: "/", HasPath: true, Component: &ComponentRef{Name: "App"}, Children: []*RawRouteNode{
			{Path: "about", HasPath: true},
		}},
	}

	flat, _ := Flatten(tree)
	require.Len(t, flat, 2)
	assert.Equal(t, "/", flat[0].FullPath)
	assert.Equal(t, "home", flat[0].ScreenID)
	assert.Equal(t, "Home", flat[0].ScreenTitle)
	assert.Equal(t, "/about", flat[1].FullPath)
}
