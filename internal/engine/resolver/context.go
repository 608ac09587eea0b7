// # internal/engine/resolver/context.go
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"screenmap/internal/engine/grammar"
	"screenmap/internal/engine/routes"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// DefaultMaxDepth bounds cross-file import recursion. It is the sole
// circuit breaker against circular or combinatorial import graphs.
const DefaultMaxDepth = 3

// DefaultExtensions is the ordered probe list for extensionless import
// specifiers.
var DefaultExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".vue"}

// ObjectParser converts one route-object literal into a RawRouteNode.
// Each dialect front-end supplies its own; a false return means the node
// carried no usable route information and was skipped.
type ObjectParser func(ctx *Context, node *sitter.Node) (*routes.RawRouteNode, bool)

// ImportRef records where a route-like imported identifier comes from.
type ImportRef struct {
	Source string // module specifier as written
	Name   string // exported name, or "default"
}

// Options carries the run-scoped collaborators shared by every file
// context in one parse.
type Options struct {
	MaxDepth    int
	Extensions  []string
	Cache       *RouteCache
	Grammars    *grammar.Loader
	ParseObject ObjectParser
	ReadFile    func(string) ([]byte, error)
	FileExists  func(string) bool
}

// Context is the resolution state scoped to one source file: its locally
// declared initializers, its route-like imports, and the import table
// used for component references, plus the current recursion depth.
type Context struct {
	FilePath string
	Dir      string
	Source   []byte
	Depth    int

	// Locals maps every top-level declared identifier to its unparsed
	// initializer expression.
	Locals map[string]*sitter.Node
	// Imports maps route-like imported identifiers to their source. Only
	// local names containing "route" (case-insensitive) are tracked: a
	// deliberate precision/recall trade-off accepting false negatives.
	Imports map[string]ImportRef
	// ImportTable maps every imported local name to a resolved file path
	// when the import could be located, otherwise the bare specifier.
	ImportTable map[string]string
	// LocalTypes maps declared identifiers to their type annotation text,
	// when one was written.
	LocalTypes map[string]string

	exported      map[string]bool
	reExports     map[string]string
	defaultExport *sitter.Node
	resolving     map[string]bool

	opts Options
	Sink *DiagnosticSink
}

// DiagnosticSink accumulates diagnostics in source order across one parse,
// including those raised while resolving imported files.
type DiagnosticSink struct {
	Diagnostics []routes.Diagnostic
}

func (s *DiagnosticSink) General(msg, identifier string, line int) {
	s.Diagnostics = append(s.Diagnostics, routes.Diagnostic{
		Kind:       routes.DiagnosticGeneral,
		Message:    msg,
		Identifier: identifier,
		Line:       line,
	})
}

func (s *DiagnosticSink) SpreadResolved(identifier string, line int) {
	s.Diagnostics = append(s.Diagnostics, routes.Diagnostic{
		Kind:       routes.DiagnosticSpread,
		Message:    "spread resolved statically",
		Identifier: identifier,
		Line:       line,
		Resolved:   true,
	})
}

func (s *DiagnosticSink) SpreadFailed(msg, identifier string, line int, reason routes.FailureReason) {
	s.Diagnostics = append(s.Diagnostics, routes.Diagnostic{
		Kind:       routes.DiagnosticSpread,
		Message:    msg,
		Identifier: identifier,
		Line:       line,
		Resolved:   false,
		Reason:     reason,
	})
}

// NewFileContext scans a parsed program's top-level declarations and
// builds the resolution context for that file.
func NewFileContext(filePath string, source []byte, program *sitter.Node, opts Options) *Context {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Cache == nil {
		opts.Cache = NewRouteCache()
	}
	if opts.Grammars == nil {
		opts.Grammars = grammar.NewLoader()
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	if opts.FileExists == nil {
		opts.FileExists = func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && !info.IsDir()
		}
	}

	ctx := &Context{
		FilePath:    filePath,
		Dir:         filepath.Dir(filePath),
		Source:      source,
		Locals:      make(map[string]*sitter.Node),
		Imports:     make(map[string]ImportRef),
		ImportTable: make(map[string]string),
		LocalTypes:  make(map[string]string),
		exported:    make(map[string]bool),
		reExports:   make(map[string]string),
		resolving:   make(map[string]bool),
		opts:        opts,
		Sink:        &DiagnosticSink{},
	}
	ctx.scanProgram(program)
	return ctx
}

// child builds the context for an imported file at depth+1, sharing the
// run-scoped cache and diagnostic sink.
func (c *Context) child(filePath string, source []byte, program *sitter.Node) *Context {
	ctx := NewFileContext(filePath, source, program, c.opts)
	ctx.Depth = c.Depth + 1
	ctx.Sink = c.Sink
	return ctx
}

func (c *Context) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *Context) Line(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return int(node.StartPosition().Row) + 1
}

func (c *Context) scanProgram(program *sitter.Node) {
	if program == nil {
		return
	}
	for i := uint(0); i < program.NamedChildCount(); i++ {
		stmt := program.NamedChild(i)
		switch stmt.Kind() {
		case "import_statement":
			c.scanImport(stmt)
		case "lexical_declaration", "variable_declaration":
			c.scanDeclaration(stmt, false)
		case "export_statement":
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				if decl.Kind() == "lexical_declaration" || decl.Kind() == "variable_declaration" {
					c.scanDeclaration(decl, true)
				}
			}
			if value := stmt.ChildByFieldName("value"); value != nil {
				c.defaultExport = value
			}
			c.scanExportClause(stmt)
		}
	}
}

func (c *Context) scanDeclaration(decl *sitter.Node, isExport bool) {
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		declarator := decl.NamedChild(i)
		if declarator.Kind() != "variable_declarator" {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		value := declarator.ChildByFieldName("value")
		if nameNode == nil || nameNode.Kind() != "identifier" || value == nil {
			continue
		}
		name := c.Text(nameNode)
		c.Locals[name] = value
		if typeNode := declarator.ChildByFieldName("type"); typeNode != nil {
			c.LocalTypes[name] = strings.TrimSpace(strings.TrimPrefix(c.Text(typeNode), ":"))
		}
		if isExport {
			c.exported[name] = true
		}
	}
}

func (c *Context) scanImport(stmt *sitter.Node) {
	sourceNode := stmt.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	spec := trimQuoted(c.Text(sourceNode))
	if spec == "" {
		return
	}

	record := func(localName, exportedName string) {
		if localName == "" {
			return
		}
		c.ImportTable[localName] = c.locateImport(spec)
		if strings.Contains(strings.ToLower(localName), "route") {
			c.Imports[localName] = ImportRef{Source: spec, Name: exportedName}
		}
	}

	for i := uint(0); i < stmt.NamedChildCount(); i++ {
		clause := stmt.NamedChild(i)
		if clause.Kind() != "import_clause" {
			continue
		}
		for j := uint(0); j < clause.NamedChildCount(); j++ {
			part := clause.NamedChild(j)
			switch part.Kind() {
			case "identifier":
				record(c.Text(part), "default")
			case "named_imports":
				for k := uint(0); k < part.NamedChildCount(); k++ {
					specifier := part.NamedChild(k)
					if specifier.Kind() != "import_specifier" {
						continue
					}
					imported := c.Text(specifier.ChildByFieldName("name"))
					local := imported
					if alias := specifier.ChildByFieldName("alias"); alias != nil {
						local = c.Text(alias)
					}
					record(local, imported)
				}
			case "namespace_import":
				for k := uint(0); k < part.NamedChildCount(); k++ {
					if part.NamedChild(k).Kind() == "identifier" {
						c.ImportTable[c.Text(part.NamedChild(k))] = c.locateImport(spec)
					}
				}
			}
		}
	}
}

func (c *Context) scanExportClause(stmt *sitter.Node) {
	// Re-export with a source (`export { x } from "./y"`) is out of scope;
	// only local named-export lists are honored.
	if stmt.ChildByFieldName("source") != nil {
		return
	}
	for i := uint(0); i < stmt.NamedChildCount(); i++ {
		clause := stmt.NamedChild(i)
		if clause.Kind() != "export_clause" {
			continue
		}
		for j := uint(0); j < clause.NamedChildCount(); j++ {
			specifier := clause.NamedChild(j)
			if specifier.Kind() != "export_specifier" {
				continue
			}
			local := c.Text(specifier.ChildByFieldName("name"))
			exported := local
			if alias := specifier.ChildByFieldName("alias"); alias != nil {
				exported = c.Text(alias)
			}
			if local != "" {
				c.reExports[exported] = local
			}
		}
	}
}

// exportedValue returns the initializer behind an exported name:
// `export const`, a bare const re-exported through an explicit export
// list, or the default export when name is "default". Inference beyond
// these shapes is not attempted.
func (c *Context) exportedValue(name string) (*sitter.Node, bool) {
	if name == "default" {
		if c.defaultExport != nil {
			return c.defaultExport, true
		}
		return nil, false
	}
	if c.exported[name] {
		if v, ok := c.Locals[name]; ok {
			return v, true
		}
	}
	if local, ok := c.reExports[name]; ok {
		if v, ok := c.Locals[local]; ok {
			return v, true
		}
	}
	return nil, false
}

// ComponentTarget resolves an imported component identifier to a file
// path via the import table, falling back to the bare name.
func (c *Context) ComponentTarget(name string) *routes.ComponentRef {
	if name == "" {
		return nil
	}
	if target, ok := c.ImportTable[name]; ok {
		return &routes.ComponentRef{Name: name, File: target}
	}
	return &routes.ComponentRef{Name: name}
}

// locateImport turns a module specifier into a probed file path, or the
// bare specifier when it cannot be located.
func (c *Context) locateImport(spec string) string {
	candidate := ResolveImportPath(spec, c.Dir)
	if candidate == "" {
		return spec
	}
	if probed, ok := c.probe(candidate); ok {
		return probed
	}
	return candidate
}

func trimQuoted(value string) string {
	value = strings.TrimSpace(value)
	return strings.Trim(value, "\"'`")
}
