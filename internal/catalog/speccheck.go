// # internal/catalog/speccheck.go
package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"screenmap/internal/core/errors"

	"github.com/getkin/kin-openapi/openapi3"
)

// DependencyIssue records one dependsOn entry that matched nothing in
// the external API specification.
type DependencyIssue struct {
	ScreenID   string
	Dependency string
}

// LoadAPISpec loads and validates an OpenAPI document from disk.
func LoadAPISpec(ctx context.Context, path string) (*openapi3.T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeNotFound, "openapi spec not found"),
			errors.CtxPath, path)
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeParseError, "failed to load openapi spec"),
			errors.CtxPath, path)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeValidationError, "openapi spec failed validation"),
			errors.CtxPath, path)
	}
	return doc, nil
}

// KnownAPINames collects the vocabulary dependsOn entries may use:
// operation ids and tags, plus "tag.operationId" compounds.
func KnownAPINames(doc *openapi3.T) []string {
	set := make(map[string]bool)
	if doc.Paths != nil {
		for _, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for _, op := range item.Operations() {
				if op == nil {
					continue
				}
				id := strings.TrimSpace(op.OperationID)
				if id != "" {
					set[id] = true
				}
				for _, tag := range op.Tags {
					tag = strings.TrimSpace(tag)
					if tag == "" {
						continue
					}
					set[tag] = true
					if id != "" {
						set[tag+"."+id] = true
					}
				}
			}
		}
	}
	for _, tag := range doc.Tags {
		if tag != nil && tag.Name != "" {
			set[tag.Name] = true
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDependencies reports every screen dependency that matches no
// known API name. Matching follows the impact-analysis rule: exact
// equality or dotted-prefix containment in either direction, so a
// screen may depend on "InvoiceAPI" as a whole or on
// "InvoiceAPI.getDetail" specifically.
func ValidateDependencies(cat *Catalog, known []string) []DependencyIssue {
	var issues []DependencyIssue
	for _, screen := range cat.Screens {
		for _, dep := range screen.DependsOn {
			if !anyNameMatches(dep, known) {
				issues = append(issues, DependencyIssue{
					ScreenID:   screen.ID,
					Dependency: dep,
				})
			}
		}
	}
	return issues
}

func anyNameMatches(dep string, known []string) bool {
	for _, name := range known {
		if NamesMatch(dep, name) {
			return true
		}
	}
	return false
}

// NamesMatch reports whether two dependency names refer to the same
// API surface: equal, or one extends the other across a "." boundary.
// "InvoiceAPI" covers "InvoiceAPI.getDetail" but not "InvoiceAPI2".
func NamesMatch(a, b string) bool {
	if a == b {
		return true
	}
	return dottedPrefix(a, b) || dottedPrefix(b, a)
}

func dottedPrefix(name, prefix string) bool {
	return len(name) > len(prefix) && strings.HasPrefix(name, prefix) && name[len(prefix)] == '.'
}

func (i DependencyIssue) String() string {
	return fmt.Sprintf("screen %s depends on unknown API %q", i.ScreenID, i.Dependency)
}
