// # internal/engine/parser/types.go
package parser

import (
	"fmt"

	"screenmap/internal/engine/routes"
)

// Dialect identifies one supported routing declaration style. The set is
// closed: dispatch happens over these tags, one front-end per variant.
type Dialect string

const (
	DialectReactRouter Dialect = "reactrouter"
	DialectVueRouter   Dialect = "vuerouter"
	DialectAngular     Dialect = "angular"
	DialectTanStack    Dialect = "tanstack"
)

// AllDialects returns the supported dialects in stable order.
func AllDialects() []Dialect {
	return []Dialect{DialectReactRouter, DialectVueRouter, DialectAngular, DialectTanStack}
}

// ParseDialect validates a dialect name from config or flags.
func ParseDialect(name string) (Dialect, error) {
	for _, d := range AllDialects() {
		if string(d) == name {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dialect %q", name)
}

// Result is the dialect-neutral outcome of parsing one source file.
// Warnings never abort the parse; they accumulate in source order.
type Result struct {
	Routes   []*routes.RawRouteNode
	Warnings []routes.Diagnostic
}
