// # internal/engine/parser/parser_test.go
package parser

import (
	"fmt"
	"testing"

	"screenmap/internal/core/errors"
	"screenmap/internal/engine/routes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureConfig backs the parser with an in-memory file set so tests
// never touch the real filesystem.
func fixtureConfig(files map[string]string) Config {
	return Config{
		ReadFile: func(path string) ([]byte, error) {
			if content, ok := files[path]; ok {
				return []byte(content), nil
			}
			return nil, fmt.Errorf("open %s: no such file", path)
		},
		FileExists: func(path string) bool {
			_, ok := files[path]
			return ok
		},
	}
}

func parseFixture(t *testing.T, dialect Dialect, path, source string, files map[string]string) *Result {
	t.Helper()
	p := NewParser(nil, nil, fixtureConfig(files))
	result, err := p.Parse(dialect, path, []byte(source))
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func spreadWarnings(result *Result) []routes.Diagnostic {
	var out []routes.Diagnostic
	for _, d := range result.Warnings {
		if d.Kind == routes.DiagnosticSpread {
			out = append(out, d)
		}
	}
	return out
}

func TestParseUnknownDialect(t *testing.T) {
	p := NewParser(nil, nil, Config{})
	_, err := p.Parse(Dialect("backbone"), "/app/src/routes.ts", []byte("export const appRoutes = [];"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestParseUnsupportedExtension(t *testing.T) {
	p := NewParser(nil, nil, Config{})
	_, err := p.Parse(DialectReactRouter, "/app/src/routes.txt", []byte("not javascript"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestParseMissingFile(t *testing.T) {
	p := NewParser(nil, nil, fixtureConfig(nil))
	_, err := p.Parse(DialectReactRouter, "/app/src/routes.ts", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestParseReadsFileWhenContentNil(t *testing.T) {
	files := map[string]string{
		"/app/src/routes.ts": `export const appRoutes = [{ path: "home", component: Home }];`,
	}
	p := NewParser(nil, nil, fixtureConfig(files))
	result, err := p.Parse(DialectReactRouter, "/app/src/routes.ts", nil)
	require.NoError(t, err)
	require.Len(t, result.Routes, 1)
	assert.Equal(t, "home", result.Routes[0].Path)
}

func TestImportedRoutesCachedAcrossSpreads(t *testing.T) {
	reads := make(map[string]int)
	files := map[string]string{
		"/app/src/shared/routes.ts": `export const sharedRoutes = [{ path: "shared", component: Shared }];`,
	}
	cfg := fixtureConfig(files)
	inner := cfg.ReadFile
	cfg.ReadFile = func(path string) ([]byte, error) {
		reads[path]++
		return inner(path)
	}

	source := `
import { sharedRoutes } from "./shared/routes";
export const appRoutes = [...sharedRoutes, ...sharedRoutes];
`
	p := NewParser(nil, nil, cfg)
	result, err := p.Parse(DialectReactRouter, "/app/src/routes.ts", []byte(source))
	require.NoError(t, err)

	assert.Len(t, result.Routes, 2)
	assert.Equal(t, 1, reads["/app/src/shared/routes.ts"],
		"second spread of the same export must be served from cache")
	assert.Equal(t, 1, p.Cache().Len())

	spreads := spreadWarnings(result)
	require.Len(t, spreads, 2)
	for _, d := range spreads {
		assert.True(t, d.Resolved)
		assert.Equal(t, "sharedRoutes", d.Identifier)
	}
}

func TestImportChainDepthLimit(t *testing.T) {
	files := map[string]string{
		"/app/src/one/routes.ts": `
import { levelTwoRoutes } from "./two/routes";
export const levelOneRoutes = [{ path: "one", component: One }, ...levelTwoRoutes];
`,
		"/app/src/one/two/routes.ts": `export const levelTwoRoutes = [{ path: "two", component: Two }];`,
	}
	cfg := fixtureConfig(files)
	cfg.MaxDepth = 1

	source := `
import { levelOneRoutes } from "./one/routes";
export const appRoutes = [...levelOneRoutes];
`
	p := NewParser(nil, nil, cfg)
	result, err := p.Parse(DialectReactRouter, "/app/src/routes.ts", []byte(source))
	require.NoError(t, err)

	// Level one resolves; level two is cut off by the depth limit and
	// omitted without aborting the parse.
	require.Len(t, result.Routes, 1)
	assert.Equal(t, "one", result.Routes[0].Path)

	var limited bool
	for _, d := range spreadWarnings(result) {
		if !d.Resolved {
			limited = true
			assert.Equal(t, routes.ReasonDepthLimit, d.Reason)
			assert.Equal(t, "levelTwoRoutes", d.Identifier)
		}
	}
	assert.True(t, limited, "expected a depth-limit spread warning")
}

func TestSpreadOfFunctionCall(t *testing.T) {
	source := `
export const appRoutes = [
  { path: "home", component: Home },
  ...buildRoutes(),
];
`
	result := parseFixture(t, DialectReactRouter, "/app/src/routes.ts", source, nil)

	require.Len(t, result.Routes, 1)
	assert.Equal(t, "home", result.Routes[0].Path)

	spreads := spreadWarnings(result)
	require.Len(t, spreads, 1)
	assert.False(t, spreads[0].Resolved)
	assert.Equal(t, routes.ReasonFunctionCall, spreads[0].Reason)
	assert.Equal(t, "Function call results cannot be statically resolved", spreads[0].Message)
}

func TestSpreadOfUnknownIdentifier(t *testing.T) {
	source := `export const appRoutes = [...mysteryRoutes];`
	result := parseFixture(t, DialectReactRouter, "/app/src/routes.ts", source, nil)

	assert.Empty(t, result.Routes)
	spreads := spreadWarnings(result)
	require.Len(t, spreads, 1)
	assert.False(t, spreads[0].Resolved)
	assert.Equal(t, routes.ReasonIdentifierNotFound, spreads[0].Reason)
	assert.Equal(t, "mysteryRoutes", spreads[0].Identifier)
}
