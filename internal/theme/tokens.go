// Package theme implements the storefront design-token vocabulary, the preset
// and theme-pack catalog, component-variant resolution, and selection of the
// active theme.
package theme

import (
	"fmt"
	"strconv"
)

// ThemeTokens is the complete visual vocabulary of a site. Every group is
// required; a themed site declares the whole set.
type ThemeTokens struct {
	Colors     Colors     `json:"colors" yaml:"colors"`
	Typography Typography `json:"typography" yaml:"typography"`
	Radius     Radius     `json:"radius" yaml:"radius"`
	Shadows    Shadows    `json:"shadows" yaml:"shadows"`
	Spacing    Spacing    `json:"spacing" yaml:"spacing"`
	Buttons    Buttons    `json:"buttons" yaml:"buttons"`
	Layout     Layout     `json:"layout" yaml:"layout"`
}

// Colors holds CSS color expressions. Values are not parsed.
type Colors struct {
	Background    string `json:"background" yaml:"background" validate:"required"`
	Surface       string `json:"surface" yaml:"surface" validate:"required"`
	SurfaceAlt    string `json:"surfaceAlt" yaml:"surfaceAlt" validate:"required"`
	Text          string `json:"text" yaml:"text" validate:"required"`
	TextMuted     string `json:"textMuted" yaml:"textMuted" validate:"required"`
	Border        string `json:"border" yaml:"border" validate:"required"`
	Primary       string `json:"primary" yaml:"primary" validate:"required"`
	PrimaryText   string `json:"primaryText" yaml:"primaryText" validate:"required"`
	Secondary     string `json:"secondary" yaml:"secondary" validate:"required"`
	SecondaryText string `json:"secondaryText" yaml:"secondaryText" validate:"required"`
	Accent        string `json:"accent" yaml:"accent" validate:"required"`
	AccentText    string `json:"accentText" yaml:"accentText" validate:"required"`
	Success       string `json:"success" yaml:"success" validate:"required"`
	Warning       string `json:"warning" yaml:"warning" validate:"required"`
	Danger        string `json:"danger" yaml:"danger" validate:"required"`
}

// Typography holds the base font settings.
type Typography struct {
	FontFamily    string  `json:"fontFamily" yaml:"fontFamily" validate:"required"`
	FontSizeScale float64 `json:"fontSizeScale" yaml:"fontSizeScale" validate:"required,min=0.5,max=2"`
	LineHeight    float64 `json:"lineHeight" yaml:"lineHeight" validate:"required,min=1,max=3"`
	LetterSpacing string  `json:"letterSpacing" yaml:"letterSpacing" validate:"required"`
}

// Radius holds named corner radii as CSS lengths.
type Radius struct {
	SM string `json:"sm" yaml:"sm" validate:"required"`
	MD string `json:"md" yaml:"md" validate:"required"`
	LG string `json:"lg" yaml:"lg" validate:"required"`
	XL string `json:"xl" yaml:"xl" validate:"required"`
}

// Shadows holds named box-shadow expressions.
type Shadows struct {
	SM string `json:"sm" yaml:"sm" validate:"required"`
	MD string `json:"md" yaml:"md" validate:"required"`
	LG string `json:"lg" yaml:"lg" validate:"required"`
}

// Spacing is a base unit in pixels and the multipliers derived from it.
type Spacing struct {
	BaseUnit float64   `json:"baseUnit" yaml:"baseUnit" validate:"required,min=1,max=16"`
	Scale    []float64 `json:"scale" yaml:"scale" validate:"required,min=1,max=12"`
}

// Buttons describes the default button treatment.
type Buttons struct {
	Radius   string `json:"radius" yaml:"radius" validate:"required,oneof=sm md lg"`
	Style    string `json:"style" yaml:"style" validate:"required,oneof=solid soft outline"`
	PaddingY string `json:"paddingY" yaml:"paddingY" validate:"required"`
	PaddingX string `json:"paddingX" yaml:"paddingX" validate:"required"`
}

// Layout holds page container settings.
type Layout struct {
	ContainerMaxWidth float64 `json:"containerMaxWidth" yaml:"containerMaxWidth" validate:"required,min=640,max=2560"`
	SectionPaddingY   string  `json:"sectionPaddingY" yaml:"sectionPaddingY" validate:"required"`
	SectionPaddingX   string  `json:"sectionPaddingX" yaml:"sectionPaddingX" validate:"required"`
}

// ThemeTokenPreset is a named token set with no variant data.
type ThemeTokenPreset struct {
	ID          string      `json:"id" yaml:"id" validate:"required"`
	Name        string      `json:"name" yaml:"name" validate:"required"`
	Description string      `json:"description" yaml:"description"`
	ThemeTokens ThemeTokens `json:"themeTokens" yaml:"themeTokens"`
}

// ThemePack is a token set plus component variant selections and per-block
// default props.
type ThemePack struct {
	ID                 string                    `json:"id" yaml:"id" validate:"required"`
	Name               string                    `json:"name" yaml:"name" validate:"required"`
	Description        string                    `json:"description" yaml:"description"`
	ThemeTokens        ThemeTokens               `json:"themeTokens" yaml:"themeTokens"`
	ComponentVariants  map[string]string         `json:"componentVariants" yaml:"componentVariants"`
	BlockStyleDefaults map[string]map[string]any `json:"blockStyleDefaults" yaml:"blockStyleDefaults"`
}

// Variables flattens the tokens into CSS custom properties.
func (t ThemeTokens) Variables() map[string]string {
	c := t.Colors
	vars := map[string]string{
		"--color-background":     c.Background,
		"--color-surface":        c.Surface,
		"--color-surface-alt":    c.SurfaceAlt,
		"--color-text":           c.Text,
		"--color-text-muted":     c.TextMuted,
		"--color-border":         c.Border,
		"--color-primary":        c.Primary,
		"--color-primary-text":   c.PrimaryText,
		"--color-secondary":      c.Secondary,
		"--color-secondary-text": c.SecondaryText,
		"--color-accent":         c.Accent,
		"--color-accent-text":    c.AccentText,
		"--color-success":        c.Success,
		"--color-warning":        c.Warning,
		"--color-danger":         c.Danger,

		"--font-family":     t.Typography.FontFamily,
		"--font-size-scale": formatNumber(t.Typography.FontSizeScale),
		"--line-height":     formatNumber(t.Typography.LineHeight),
		"--letter-spacing":  t.Typography.LetterSpacing,

		"--radius-sm": t.Radius.SM,
		"--radius-md": t.Radius.MD,
		"--radius-lg": t.Radius.LG,
		"--radius-xl": t.Radius.XL,

		"--shadow-sm": t.Shadows.SM,
		"--shadow-md": t.Shadows.MD,
		"--shadow-lg": t.Shadows.LG,

		"--space-unit": formatNumber(t.Spacing.BaseUnit) + "px",

		"--btn-radius":    "var(--radius-" + t.Buttons.Radius + ")",
		"--btn-style":     t.Buttons.Style,
		"--btn-padding-y": t.Buttons.PaddingY,
		"--btn-padding-x": t.Buttons.PaddingX,

		"--container-max-width": formatNumber(t.Layout.ContainerMaxWidth) + "px",
		"--section-padding-y":   t.Layout.SectionPaddingY,
		"--section-padding-x":   t.Layout.SectionPaddingX,
	}

	for i, step := range t.Spacing.Scale {
		vars[fmt.Sprintf("--space-%d", i+1)] = formatNumber(t.Spacing.BaseUnit*step) + "px"
	}

	return vars
}

// clone returns a copy that shares no slices with t.
func (t ThemeTokens) clone() ThemeTokens {
	out := t
	if t.Spacing.Scale != nil {
		out.Spacing.Scale = append([]float64(nil), t.Spacing.Scale...)
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
