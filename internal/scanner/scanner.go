// # internal/scanner/scanner.go
package scanner

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"screenmap/internal/core/config"
	"screenmap/internal/engine/parser"
	"screenmap/internal/shared/util"

	"github.com/gobwas/glob"
)

// Target is one route-configuration file discovered in the project,
// tagged with the dialect whose patterns matched it.
type Target struct {
	Path    string
	Dialect parser.Dialect
}

type dialectMatcher struct {
	dialect parser.Dialect
	globs   []glob.Glob
}

// Scanner walks the project root and matches files against per-dialect
// include globs. Exclude dir patterns match by base name the way ignore
// lists are usually written; a pattern containing a separator is
// treated as a project-relative path prefix instead, so "src/legacy"
// excludes that subtree without touching other "legacy" directories.
type Scanner struct {
	root            string
	matchers        []dialectMatcher
	excludeDirs     []glob.Glob
	excludeDirPaths []string
	excludeFiles    []glob.Glob
}

func New(cfg *config.Config) (*Scanner, error) {
	s := &Scanner{root: cfg.Paths.ProjectRoot}

	for _, dialect := range cfg.EnabledDialects() {
		dc := cfg.Dialects[string(dialect)]
		globs, err := compilePatterns(dc.Include)
		if err != nil {
			return nil, fmt.Errorf("dialects.%s: %w", dialect, err)
		}
		s.matchers = append(s.matchers, dialectMatcher{dialect: dialect, globs: globs})
	}

	baseNamePatterns := make([]string, 0, len(cfg.Exclude.Dirs))
	for _, p := range cfg.Exclude.Dirs {
		if normalized := util.NormalizePatternPath(p); strings.Contains(normalized, "/") {
			s.excludeDirPaths = append(s.excludeDirPaths, normalized)
			continue
		}
		baseNamePatterns = append(baseNamePatterns, p)
	}

	var err error
	if s.excludeDirs, err = compilePatterns(baseNamePatterns); err != nil {
		return nil, fmt.Errorf("exclude.dirs: %w", err)
	}
	if s.excludeFiles, err = compilePatterns(cfg.Exclude.Files); err != nil {
		return nil, fmt.Errorf("exclude.files: %w", err)
	}
	return s, nil
}

// Scan walks the root and returns matched targets in walk order. A file
// matching several dialects is claimed by the first one in sorted
// dialect order, so repeated scans assign it identically.
func (s *Scanner) Scan() ([]Target, error) {
	var targets []Target

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != s.root {
				for _, g := range s.excludeDirs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				for _, prefix := range s.excludeDirPaths {
					if util.HasPathPrefix(rel, prefix) {
						return filepath.SkipDir
					}
				}
			}
			return nil
		}

		for _, g := range s.excludeFiles {
			if g.Match(base) {
				return nil
			}
		}

		for _, m := range s.matchers {
			if matchAny(m.globs, rel, base) {
				targets = append(targets, Target{Path: path, Dialect: m.dialect})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("scan complete", "root", s.root, "targets", len(targets))
	return targets, nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		globs = append(globs, g)

		// `**/name` should also match `name` at the root itself.
		if rest, ok := strings.CutPrefix(p, "**/"); ok {
			if extra, err := glob.Compile(rest, '/'); err == nil {
				globs = append(globs, extra)
			}
		}
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, rel, base string) bool {
	for _, g := range globs {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}
