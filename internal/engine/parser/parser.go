// # internal/engine/parser/parser.go
package parser

import (
	"fmt"
	"os"

	"screenmap/internal/core/errors"
	"screenmap/internal/engine/grammar"
	"screenmap/internal/engine/resolver"
	"screenmap/internal/engine/routes"
	"screenmap/internal/shared/observability"

	"github.com/prometheus/client_golang/prometheus"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// dialectFrontEnd is the uniform capability every dialect variant
// implements: one object parser handed to the resolver, one extraction
// pass over the program.
type dialectFrontEnd interface {
	parseObject() resolver.ObjectParser
	extract(ctx *resolver.Context, program *sitter.Node) []*routes.RawRouteNode
}

// Parser dispatches source files to dialect front-ends. All value
// resolution is delegated to the resolver sharing one per-run cache.
type Parser struct {
	grammars   *grammar.Loader
	cache      *resolver.RouteCache
	maxDepth   int
	extensions []string
	readFile   func(string) ([]byte, error)
	fileExists func(string) bool
}

// Config tunes resolution behavior; zero values fall back to resolver
// defaults. ReadFile/FileExists allow pre-loaded content to bypass the
// filesystem.
type Config struct {
	MaxDepth   int
	Extensions []string
	ReadFile   func(string) ([]byte, error)
	FileExists func(string) bool
}

func NewParser(grammars *grammar.Loader, cache *resolver.RouteCache, cfg Config) *Parser {
	if grammars == nil {
		grammars = grammar.NewLoader()
	}
	if cache == nil {
		cache = resolver.NewRouteCache()
	}
	return &Parser{
		grammars:   grammars,
		cache:      cache,
		maxDepth:   cfg.MaxDepth,
		extensions: cfg.Extensions,
		readFile:   cfg.ReadFile,
		fileExists: cfg.FileExists,
	}
}

// Cache exposes the per-run import-resolution cache so hosts can
// invalidate it on source changes.
func (p *Parser) Cache() *resolver.RouteCache {
	return p.cache
}

// Parse extracts the route tree declared in one source file. content may
// be nil, in which case the file is read from disk. Only two conditions
// are fatal: unreadable source and wholly untokenizable text; every other
// anomaly is returned as a warning alongside the best achievable result.
func (p *Parser) Parse(dialect Dialect, path string, content []byte) (*Result, error) {
	timer := prometheus.NewTimer(observability.ParsingDuration.WithLabelValues(string(dialect)))
	defer timer.ObserveDuration()

	front, err := p.frontEnd(dialect)
	if err != nil {
		return nil, err
	}

	if content == nil {
		content, err = p.read(path)
		if err != nil {
			return nil, errors.AddContext(errors.AddContext(
				errors.Wrap(err, errors.CodeNotFound, "failed to read route source"),
				errors.CtxPath, path), errors.CtxOperation, "parse")
		}
	}

	if grammar.DetectLanguage(path) == "" {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, "unsupported source language"),
			errors.CtxPath, path)
	}

	tree := p.grammars.Parse(path, content)
	if tree == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeParseError, "failed to parse route source"),
			errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if untokenizable(root) {
		return nil, errors.AddContext(errors.AddContext(
			errors.New(errors.CodeParseError, "source text could not be tokenized"),
			errors.CtxPath, path), errors.CtxDialect, string(dialect))
	}

	ctx := resolver.NewFileContext(path, content, root, resolver.Options{
		MaxDepth:    p.maxDepth,
		Extensions:  p.extensions,
		Cache:       p.cache,
		Grammars:    p.grammars,
		ParseObject: front.parseObject(),
		ReadFile:    p.readFile,
		FileExists:  p.fileExists,
	})

	nodes := front.extract(ctx, root)
	for _, d := range ctx.Sink.Diagnostics {
		observability.DiagnosticsTotal.WithLabelValues(string(d.Kind)).Inc()
	}
	return &Result{Routes: nodes, Warnings: ctx.Sink.Diagnostics}, nil
}

func (p *Parser) read(path string) ([]byte, error) {
	if p.readFile != nil {
		return p.readFile(path)
	}
	return os.ReadFile(path)
}

func (p *Parser) frontEnd(dialect Dialect) (dialectFrontEnd, error) {
	switch dialect {
	case DialectReactRouter, DialectVueRouter, DialectAngular:
		return newPathTable(dialect), nil
	case DialectTanStack:
		return newBuilderFrontEnd(), nil
	default:
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, fmt.Sprintf("no front-end for dialect %q", dialect)),
			errors.CtxDialect, string(dialect))
	}
}

// untokenizable reports source where no partial structure can be
// trusted: the parser produced nothing but error nodes.
func untokenizable(root *sitter.Node) bool {
	if root == nil || root.Kind() == "ERROR" {
		return true
	}
	total := root.NamedChildCount()
	if total == 0 {
		return false
	}
	for i := uint(0); i < total; i++ {
		if root.NamedChild(i).Kind() != "ERROR" {
			return false
		}
	}
	return true
}
