package theme

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors returned by variant lookup.
var (
	ErrUnknownComponent = errors.New("unknown component")
	ErrUnknownVariant   = errors.New("unknown variant")
)

// Variant is one named style treatment for a component. Its variables are
// always namespaced under the component's prefix.
type Variant struct {
	Component   string            `json:"component"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Variables   map[string]string `json:"variables"`
}

// VariantGap records a componentVariants entry that could not be resolved.
type VariantGap struct {
	Component string
	Variant   string
	Err       error
}

func (g VariantGap) Error() string {
	return fmt.Sprintf("%s=%s: %v", g.Component, g.Variant, g.Err)
}

func (g VariantGap) Unwrap() error { return g.Err }

var variantCatalog = map[string]map[string]Variant{
	"button": {
		"solid": {
			Description: "Filled background, no border",
			Variables: map[string]string{
				"--btn-border-width": "0",
				"--btn-shadow":       "none",
			},
		},
		"soft-glow": {
			Description: "Soft outer glow",
			Variables: map[string]string{
				"--btn-glow": "0 0 20px cyan",
			},
		},
		"pill": {
			Description: "Fully rounded ends",
			Variables: map[string]string{
				"--btn-radius": "9999px",
			},
		},
		"outline-bold": {
			Description: "Transparent fill with a heavy outline",
			Variables: map[string]string{
				"--btn-border-width": "2px",
				"--btn-bg":           "transparent",
			},
		},
		"sharp": {
			Description: "Square corners",
			Variables: map[string]string{
				"--btn-radius": "0",
			},
		},
	},
	"card": {
		"flat": {
			Description: "No border or shadow",
			Variables: map[string]string{
				"--card-shadow": "none",
				"--card-border": "none",
			},
		},
		"bordered": {
			Description: "Hairline border, no shadow",
			Variables: map[string]string{
				"--card-shadow": "none",
				"--card-border": "1px solid var(--color-border)",
			},
		},
		"elevated": {
			Description: "Medium drop shadow",
			Variables: map[string]string{
				"--card-shadow": "var(--shadow-md)",
				"--card-border": "none",
			},
		},
		"glass": {
			Description: "Translucent frosted surface",
			Variables: map[string]string{
				"--card-bg":       "rgba(255, 255, 255, 0.08)",
				"--card-backdrop": "blur(12px)",
				"--card-border":   "1px solid rgba(255, 255, 255, 0.18)",
			},
		},
	},
	"hero": {
		"centered": {
			Description: "Centered copy over the media",
			Variables: map[string]string{
				"--hero-align":      "center",
				"--hero-text-align": "center",
			},
		},
		"split": {
			Description: "Copy and media side by side",
			Variables: map[string]string{
				"--hero-align":   "start",
				"--hero-columns": "1fr 1fr",
			},
		},
		"immersive": {
			Description: "Full-bleed media with a dark overlay",
			Variables: map[string]string{
				"--hero-min-height": "90vh",
				"--hero-overlay":    "linear-gradient(180deg, rgba(0, 0, 0, 0.1), rgba(0, 0, 0, 0.6))",
			},
		},
	},
	"nav": {
		"solid": {
			Description: "Opaque surface background",
			Variables: map[string]string{
				"--nav-bg": "var(--color-surface)",
			},
		},
		"transparent": {
			Description: "No background until scrolled",
			Variables: map[string]string{
				"--nav-bg":     "transparent",
				"--nav-border": "none",
			},
		},
		"blur": {
			Description: "Frosted translucent bar",
			Variables: map[string]string{
				"--nav-bg":       "rgba(255, 255, 255, 0.6)",
				"--nav-backdrop": "blur(10px)",
			},
		},
	},
	"input": {
		"outlined": {
			Description: "Bordered field",
			Variables: map[string]string{
				"--input-border": "1px solid var(--color-border)",
				"--input-bg":     "transparent",
			},
		},
		"filled": {
			Description: "Tinted field without border",
			Variables: map[string]string{
				"--input-border": "none",
				"--input-bg":     "var(--color-surface-alt)",
			},
		},
		"underline": {
			Description: "Bottom rule only",
			Variables: map[string]string{
				"--input-border":        "none",
				"--input-border-bottom": "1px solid var(--color-border)",
				"--input-radius":        "0",
			},
		},
	},
	"badge": {
		"pill": {
			Description: "Rounded badge",
			Variables: map[string]string{
				"--badge-radius": "9999px",
			},
		},
		"square": {
			Description: "Square badge",
			Variables: map[string]string{
				"--badge-radius": "2px",
			},
		},
	},
	"section": {
		"plain": {
			Description: "Uniform background",
			Variables: map[string]string{
				"--section-alt-bg": "var(--color-background)",
			},
		},
		"alternating": {
			Description: "Every other section uses the alternate surface",
			Variables: map[string]string{
				"--section-alt-bg": "var(--color-surface-alt)",
			},
		},
		"divided": {
			Description: "Rule between sections",
			Variables: map[string]string{
				"--section-divider": "1px solid var(--color-border)",
			},
		},
	},
}

// lookupVariant finds one {component, variant} pair in the static catalog.
// The returned variant owns a fresh copy of its variables.
func lookupVariant(component, name string) (Variant, error) {
	variants, ok := variantCatalog[component]
	if !ok {
		return Variant{}, ErrUnknownComponent
	}
	v, ok := variants[name]
	if !ok {
		return Variant{}, ErrUnknownVariant
	}

	vars := make(map[string]string, len(v.Variables))
	for k, val := range v.Variables {
		vars[k] = val
	}
	return Variant{
		Component:   component,
		Name:        name,
		Description: v.Description,
		Variables:   vars,
	}, nil
}

// ResolveVariants expands component variant selections into CSS variables.
// Entries that name an unknown component or variant are skipped and returned
// as gaps; every known entry still contributes its variables.
func ResolveVariants(selections map[string]string) (map[string]string, []VariantGap) {
	vars := make(map[string]string)
	var gaps []VariantGap

	components := make([]string, 0, len(selections))
	for c := range selections {
		components = append(components, c)
	}
	sort.Strings(components)

	for _, component := range components {
		name := selections[component]
		v, err := lookupVariant(component, name)
		if err != nil {
			gaps = append(gaps, VariantGap{Component: component, Variant: name, Err: err})
			continue
		}
		for k, val := range v.Variables {
			vars[k] = val
		}
	}

	return vars, gaps
}

// Variants lists the whole variant catalog ordered by component, then name.
func Variants() []Variant {
	var out []Variant
	for component, variants := range variantCatalog {
		for name := range variants {
			v, _ := lookupVariant(component, name)
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Component != out[j].Component {
			return out[i].Component < out[j].Component
		}
		return out[i].Name < out[j].Name
	})
	return out
}
