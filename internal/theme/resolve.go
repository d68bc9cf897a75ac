package theme

import (
	"sort"
	"strings"
)

// Kind distinguishes the two theme families sharing the id namespace.
type Kind string

const (
	KindPreset Kind = "preset"
	KindPack   Kind = "pack"
)

// Theme is a catalog entry: either a legacy preset or a theme pack.
type Theme interface {
	ThemeID() string
	Kind() Kind
	Resolve() ResolvedTheme

	resolve() (ResolvedTheme, []VariantGap)
}

// ResolvedTheme is the document rendering consumes. Legacy presets keep their
// raw themeTokens and carry no variables; packs carry flattened variables.
type ResolvedTheme struct {
	ID                 string                    `json:"id"`
	Name               string                    `json:"name"`
	Description        string                    `json:"description"`
	ThemeTokens        *ThemeTokens              `json:"themeTokens,omitempty"`
	Variables          map[string]string         `json:"variables,omitempty"`
	IsPack             bool                      `json:"_isPack"`
	ComponentVariants  map[string]string         `json:"componentVariants,omitempty"`
	BlockStyleDefaults map[string]map[string]any `json:"blockStyleDefaults,omitempty"`
}

// LegacyPreset wraps a preset as a Theme.
type LegacyPreset struct {
	ThemeTokenPreset
}

// Pack wraps a theme pack as a Theme.
type Pack struct {
	ThemePack
}

func (p LegacyPreset) ThemeID() string { return p.ID }
func (p LegacyPreset) Kind() Kind      { return KindPreset }

// Resolve returns the preset verbatim.
func (p LegacyPreset) Resolve() ResolvedTheme {
	rt, _ := p.resolve()
	return rt
}

func (p LegacyPreset) resolve() (ResolvedTheme, []VariantGap) {
	tokens := p.ThemeTokens.clone()
	return ResolvedTheme{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ThemeTokens: &tokens,
	}, nil
}

func (p Pack) ThemeID() string { return p.ID }
func (p Pack) Kind() Kind      { return KindPack }

// Resolve flattens the pack's tokens and then lays its variant variables over
// them. A variant variable replaces a token variable with the same name.
func (p Pack) Resolve() ResolvedTheme {
	rt, _ := p.resolve()
	return rt
}

func (p Pack) resolve() (ResolvedTheme, []VariantGap) {
	vars := p.ThemeTokens.Variables()
	variantVars, gaps := ResolveVariants(p.ComponentVariants)
	for k, v := range variantVars {
		vars[k] = v
	}

	return ResolvedTheme{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Variables:          vars,
		IsPack:             true,
		ComponentVariants:  copyStrings(p.ComponentVariants),
		BlockStyleDefaults: copyBlockDefaults(p.BlockStyleDefaults),
	}, gaps
}

// CSSVariables returns the custom properties of the theme. Legacy presets are
// flattened from their tokens on demand.
func (r ResolvedTheme) CSSVariables() map[string]string {
	switch {
	case r.Variables != nil:
		return r.Variables
	case r.ThemeTokens != nil:
		return r.ThemeTokens.Variables()
	}
	return map[string]string{}
}

// CSS renders the theme as a :root rule with one declaration per line in
// name order. Values that could close the rule or open markup are dropped.
func (r ResolvedTheme) CSS() string {
	vars := r.CSSVariables()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, name := range names {
		value := vars[name]
		if value == "" || strings.ContainsAny(value, "{};<>") {
			continue
		}
		b.WriteString("  ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func copyStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyBlockDefaults(m map[string]map[string]any) map[string]map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]map[string]any, len(m))
	for block, props := range m {
		inner := make(map[string]any, len(props))
		for k, v := range props {
			inner[k] = v
		}
		out[block] = inner
	}
	return out
}
