// # internal/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"screenmap/internal/core/errors"
	"screenmap/internal/engine/routes"
	"screenmap/internal/shared/observability"
	"screenmap/internal/shared/util"

	"github.com/google/uuid"
)

// Screen is one catalog entry. Route, Title, Component and Dialect are
// regenerated on every scan; Next, DependsOn and AllowCycles are
// hand-maintained annotations that merging must never clobber.
type Screen struct {
	ID          string   `json:"id"`
	Route       string   `json:"route"`
	Title       string   `json:"title"`
	Component   string   `json:"component,omitempty"`
	Dialect     string   `json:"dialect,omitempty"`
	Next        []string `json:"next,omitempty"`
	DependsOn   []string `json:"dependsOn,omitempty"`
	AllowCycles bool     `json:"allowCycles,omitempty"`
}

// Catalog is the persisted screens.json document.
type Catalog struct {
	Revision    string    `json:"revision"`
	GeneratedAt time.Time `json:"generatedAt"`
	Screens     []Screen  `json:"screens"`
}

// Load reads a catalog from disk. A missing file yields an empty
// catalog so first runs need no bootstrap step.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Catalog{}, nil
		}
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeNotFound, "failed to read screen catalog"),
			errors.CtxPath, path)
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeParseError, "screen catalog is not valid JSON"),
			errors.CtxPath, path)
	}
	return &cat, nil
}

// Save writes the catalog, creating parent directories as needed.
func Save(path string, cat *Catalog) error {
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode screen catalog")
	}
	if err := util.WriteFileWithDirs(path, append(data, '\n'), 0o644); err != nil {
		return errors.AddContext(
			errors.Wrap(err, errors.CodeInternal, "failed to write screen catalog"),
			errors.CtxPath, path)
	}
	return nil
}

// Merge folds freshly flattened routes into the previous catalog.
// Screen identity is the screen id; annotations survive regeneration,
// derived fields are overwritten. Duplicate ids within one scan are
// last-write-wins, matching the flattener's collision diagnostic.
// Screens that vanished from the source are dropped.
func Merge(prev *Catalog, flat []routes.FlatRoute, dialect string) *Catalog {
	return MergeAll(prev, map[string][]routes.FlatRoute{dialect: flat})
}

// MergeAll merges one scan covering several dialects at once. Dialects
// are folded in sorted order so duplicate ids across dialects resolve
// deterministically.
func MergeAll(prev *Catalog, flatByDialect map[string][]routes.FlatRoute) *Catalog {
	annotations := make(map[string]Screen, len(prev.Screens))
	for _, s := range prev.Screens {
		annotations[s.ID] = s
	}

	byID := make(map[string]Screen)
	order := make([]string, 0)
	for _, dialect := range util.SortedStringKeys(flatByDialect) {
		for _, fr := range flatByDialect[dialect] {
			screen := Screen{
				ID:      fr.ScreenID,
				Route:   fr.FullPath,
				Title:   fr.ScreenTitle,
				Dialect: dialect,
			}
			if fr.Component != nil {
				screen.Component = fr.Component.Name
			}
			if old, ok := annotations[fr.ScreenID]; ok {
				screen.Next = old.Next
				screen.DependsOn = old.DependsOn
				screen.AllowCycles = old.AllowCycles
			}
			if _, dup := byID[fr.ScreenID]; !dup {
				order = append(order, fr.ScreenID)
			}
			byID[fr.ScreenID] = screen
		}
	}

	screens := make([]Screen, 0, len(order))
	for _, id := range order {
		screens = append(screens, byID[id])
	}

	observability.CatalogScreens.Set(float64(len(screens)))
	return &Catalog{
		Revision:    uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Screens:     screens,
	}
}

// Find returns the screen with the given id.
func (c *Catalog) Find(id string) (Screen, bool) {
	for _, s := range c.Screens {
		if s.ID == id {
			return s, true
		}
	}
	return Screen{}, false
}

// DependencyNames returns every distinct dependsOn entry across the
// catalog, sorted.
func (c *Catalog) DependencyNames() []string {
	set := make(map[string]bool)
	for _, s := range c.Screens {
		for _, dep := range s.DependsOn {
			set[dep] = true
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
