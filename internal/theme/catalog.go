package theme

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/schema"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

// ErrEmptyCatalog is returned when a catalog would have no legacy preset to
// fall back to.
var ErrEmptyCatalog = errors.New("theme catalog has no presets")

// Entry is the listing form of a catalog theme.
type Entry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        Kind   `json:"kind"`
}

// Catalog is the read-only registry of presets and packs. It is built once at
// startup and safe for concurrent use.
type Catalog struct {
	presets     []ThemeTokenPreset
	packs       []ThemePack
	presetIndex map[string]int
	packIndex   map[string]int
}

type catalogFile struct {
	Presets []ThemeTokenPreset `yaml:"presets"`
	Packs   []ThemePack        `yaml:"packs"`
}

// LoadCatalog builds the catalog shipped with the binary.
func LoadCatalog() (*Catalog, error) {
	return LoadCatalogFS(catalogFS, "catalog")
}

// LoadCatalogFS reads every *.yaml file in dir, in name order, and builds a
// catalog from their combined presets and packs.
func LoadCatalogFS(fsys fs.FS, dir string) (*Catalog, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list catalog files: %w", err)
	}
	sort.Strings(names)

	var presets []ThemeTokenPreset
	var packs []ThemePack
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		presets = append(presets, f.Presets...)
		packs = append(packs, f.Packs...)
	}

	return NewCatalog(presets, packs)
}

// NewCatalog validates every entry and indexes it by id. Ids must be unique
// within a family; a preset and a pack may share one, in which case the preset
// shadows the pack.
func NewCatalog(presets []ThemeTokenPreset, packs []ThemePack) (*Catalog, error) {
	if len(presets) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		presets:     presets,
		packs:       packs,
		presetIndex: make(map[string]int, len(presets)),
		packIndex:   make(map[string]int, len(packs)),
	}

	report := schema.NewValidationError()
	for i, p := range presets {
		prefix := fmt.Sprintf("presets[%d]", i)
		if ve, ok := schema.AsValidationError(ValidatePreset(p)); ok {
			report.Merge(prefix, ve)
		}
		if _, dup := c.presetIndex[p.ID]; dup {
			report.Add(prefix+".id", fmt.Sprintf("duplicate preset id %q", p.ID))
			continue
		}
		c.presetIndex[p.ID] = i
	}
	for i, p := range packs {
		prefix := fmt.Sprintf("packs[%d]", i)
		if ve, ok := schema.AsValidationError(ValidatePack(p)); ok {
			report.Merge(prefix, ve)
		}
		if _, dup := c.packIndex[p.ID]; dup {
			report.Add(prefix+".id", fmt.Sprintf("duplicate pack id %q", p.ID))
			continue
		}
		c.packIndex[p.ID] = i
	}

	if err := report.Err(); err != nil {
		return nil, fmt.Errorf("invalid theme catalog: %w", err)
	}
	return c, nil
}

// Lookup finds id among the presets first and the packs second.
func (c *Catalog) Lookup(id string) (Theme, bool) {
	if i, ok := c.presetIndex[id]; ok {
		return LegacyPreset{c.presets[i]}, true
	}
	if i, ok := c.packIndex[id]; ok {
		return Pack{c.packs[i]}, true
	}
	return nil, false
}

// Preset returns the legacy preset with the given id.
func (c *Catalog) Preset(id string) (ThemeTokenPreset, bool) {
	i, ok := c.presetIndex[id]
	if !ok {
		return ThemeTokenPreset{}, false
	}
	return c.presets[i], true
}

// Pack returns the theme pack with the given id.
func (c *Catalog) Pack(id string) (ThemePack, bool) {
	i, ok := c.packIndex[id]
	if !ok {
		return ThemePack{}, false
	}
	return c.packs[i], true
}

// Default is the terminal fallback: the first legacy preset.
func (c *Catalog) Default() LegacyPreset {
	return LegacyPreset{c.presets[0]}
}

// Entries lists presets in catalog order followed by packs.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.presets)+len(c.packs))
	for _, p := range c.presets {
		out = append(out, Entry{ID: p.ID, Name: p.Name, Description: p.Description, Kind: KindPreset})
	}
	for _, p := range c.packs {
		out = append(out, Entry{ID: p.ID, Name: p.Name, Description: p.Description, Kind: KindPack})
	}
	return out
}

// Has reports whether id names any catalog theme.
func (c *Catalog) Has(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}
