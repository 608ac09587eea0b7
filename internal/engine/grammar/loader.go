// # internal/engine/grammar/loader.go
package grammar

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Loader owns the tree-sitter grammars for the routing dialects this
// engine can read. All supported dialects are declared in JavaScript or
// TypeScript source, so only those grammars are ever loaded.
type Loader struct {
	languages map[string]*sitter.Language
}

func NewLoader() *Loader {
	return &Loader{
		languages: map[string]*sitter.Language{
			"javascript": sitter.NewLanguage(tree_sitter_javascript.Language()),
			"typescript": sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			"tsx":        sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
		},
	}
}

// Language returns the grammar for a language id, or nil.
func (l *Loader) Language(lang string) *sitter.Language {
	return l.languages[lang]
}

// DetectLanguage maps a file path to a language id, or "".
func DetectLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs":
		return "javascript"
	case ".jsx", ".tsx":
		return "tsx"
	case ".ts", ".mts", ".cts":
		return "typescript"
	default:
		return ""
	}
}

// Parse parses content with the grammar matching path. A nil tree means
// the source could not be tokenized at all.
func (l *Loader) Parse(path string, content []byte) *sitter.Tree {
	lang := DetectLanguage(path)
	grammar := l.languages[lang]
	if grammar == nil {
		return nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(grammar); err != nil {
		return nil
	}

	return parser.Parse(content, nil)
}
