// # internal/engine/resolver/cache.go
package resolver

import (
	"screenmap/internal/engine/routes"
	"screenmap/internal/shared/observability"
)

type cacheKey struct {
	file   string
	export string
}

// RouteCache memoizes cross-file import resolutions for one run, keyed by
// (absolute file path, exported name). It is injected rather than held in
// package state so hosts and tests control its lifecycle; nothing
// populates it concurrently within one invocation, so no lock is needed.
// Long-lived hosts must Clear it when source files change.
type RouteCache struct {
	entries map[cacheKey][]*routes.RawRouteNode
}

func NewRouteCache() *RouteCache {
	return &RouteCache{entries: make(map[cacheKey][]*routes.RawRouteNode)}
}

func (c *RouteCache) Get(file, export string) ([]*routes.RawRouteNode, bool) {
	v, ok := c.entries[cacheKey{file: file, export: export}]
	if ok {
		observability.ResolverCacheHits.Inc()
	} else {
		observability.ResolverCacheMisses.Inc()
	}
	return v, ok
}

func (c *RouteCache) Set(file, export string, value []*routes.RawRouteNode) {
	c.entries[cacheKey{file: file, export: export}] = value
}

func (c *RouteCache) Len() int {
	return len(c.entries)
}

// Clear invalidates every entry. Watch mode calls this on any source change.
func (c *RouteCache) Clear() {
	c.entries = make(map[cacheKey][]*routes.RawRouteNode)
}
