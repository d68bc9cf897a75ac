package theme_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
)

func TestLegacyPresetResolve_Verbatim(t *testing.T) {
	cat := mustCatalog(t)
	preset, _ := cat.Preset(theme.DefaultThemeID)

	rt := theme.LegacyPreset{ThemeTokenPreset: preset}.Resolve()

	if rt.IsPack || rt.Variables != nil || rt.ComponentVariants != nil {
		t.Errorf("legacy resolve carries pack fields: %+v", rt)
	}
	if rt.ID != preset.ID || rt.Name != preset.Name || rt.Description != preset.Description {
		t.Errorf("identity = %q/%q/%q, want preset identity", rt.ID, rt.Name, rt.Description)
	}
	if rt.ThemeTokens == nil {
		t.Fatal("ThemeTokens = nil, want preset tokens")
	}
	if diff := cmp.Diff(preset.ThemeTokens, *rt.ThemeTokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}

	var doc map[string]any
	if err := json.Unmarshal(mustJSON(t, rt), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := doc["variables"]; ok {
		t.Error("legacy JSON has variables key")
	}
	if doc["_isPack"] != false {
		t.Errorf("_isPack = %v, want false", doc["_isPack"])
	}
}

func TestPackResolve_TokensPlusVariants(t *testing.T) {
	tokens := defaultTokens(t)
	pack := theme.Pack{ThemePack: theme.ThemePack{
		ID:                "pack-1",
		Name:              "Pack One",
		ThemeTokens:       tokens,
		ComponentVariants: map[string]string{"button": "soft-glow"},
		BlockStyleDefaults: map[string]map[string]any{
			"hero": {"align": "center"},
		},
	}}

	rt := pack.Resolve()

	if !rt.IsPack {
		t.Error("IsPack = false, want true")
	}
	if rt.ThemeTokens != nil {
		t.Error("pack resolve carries raw themeTokens")
	}
	if got := rt.Variables["--btn-glow"]; got != "0 0 20px cyan" {
		t.Errorf("--btn-glow = %q, want %q", got, "0 0 20px cyan")
	}
	for k, v := range tokens.Variables() {
		if rt.Variables[k] != v {
			t.Errorf("variables[%s] = %q, want token value %q", k, rt.Variables[k], v)
		}
	}
	if diff := cmp.Diff(pack.ComponentVariants, rt.ComponentVariants); diff != "" {
		t.Errorf("componentVariants mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(pack.BlockStyleDefaults, rt.BlockStyleDefaults); diff != "" {
		t.Errorf("blockStyleDefaults mismatch (-want +got):\n%s", diff)
	}
}

func TestPackResolve_VariantOverridesToken(t *testing.T) {
	tokens := defaultTokens(t)
	pack := theme.Pack{ThemePack: theme.ThemePack{
		ID:                "rounded",
		Name:              "Rounded",
		ThemeTokens:       tokens,
		ComponentVariants: map[string]string{"button": "pill"},
	}}

	if got := tokens.Variables()["--btn-radius"]; got != "var(--radius-md)" {
		t.Fatalf("token --btn-radius = %q, want var(--radius-md)", got)
	}
	if got := pack.Resolve().Variables["--btn-radius"]; got != "9999px" {
		t.Errorf("--btn-radius = %q, want variant value 9999px", got)
	}
}

func TestPackResolve_DoesNotShareMaps(t *testing.T) {
	cat := mustCatalog(t)
	pack, ok := cat.Pack("aurora-pack")
	if !ok {
		t.Fatal("aurora-pack missing")
	}

	rt := theme.Pack{ThemePack: pack}.Resolve()
	rt.ComponentVariants["button"] = "sharp"
	rt.BlockStyleDefaults["hero"]["align"] = "left"

	again, _ := cat.Pack("aurora-pack")
	if again.ComponentVariants["button"] != "soft-glow" {
		t.Errorf("catalog componentVariants mutated: %v", again.ComponentVariants)
	}
	if again.BlockStyleDefaults["hero"]["align"] != "center" {
		t.Errorf("catalog blockStyleDefaults mutated: %v", again.BlockStyleDefaults)
	}
}

func TestThemeTokensVariables(t *testing.T) {
	tokens := defaultTokens(t)
	tokens.Spacing.BaseUnit = 4
	tokens.Spacing.Scale = []float64{1, 2.5, 4}
	tokens.Layout.ContainerMaxWidth = 1280
	tokens.Buttons.Radius = "lg"

	vars := tokens.Variables()

	want := map[string]string{
		"--space-unit":          "4px",
		"--space-1":             "4px",
		"--space-2":             "10px",
		"--space-3":             "16px",
		"--container-max-width": "1280px",
		"--btn-radius":          "var(--radius-lg)",
		"--color-surface-alt":   tokens.Colors.SurfaceAlt,
		"--font-size-scale":     "1",
	}
	for k, v := range want {
		if vars[k] != v {
			t.Errorf("%s = %q, want %q", k, vars[k], v)
		}
	}
	if _, ok := vars["--space-4"]; ok {
		t.Error("--space-4 present for a three-step scale")
	}
}

func TestResolvedThemeCSS(t *testing.T) {
	rt := theme.ResolvedTheme{
		ID: "x",
		Variables: map[string]string{
			"--color-primary": "#0e7cc4",
			"--btn-glow":      "0 0 20px cyan",
			"--evil":          "red;} body{display:none",
			"--empty":         "",
		},
		IsPack: true,
	}

	want := ":root {\n  --btn-glow: 0 0 20px cyan;\n  --color-primary: #0e7cc4;\n}\n"
	if got := rt.CSS(); got != want {
		t.Errorf("CSS() =\n%s\nwant\n%s", got, want)
	}
}

func TestResolvedThemeCSS_LegacyFlattensTokens(t *testing.T) {
	cat := mustCatalog(t)
	css := cat.Default().Resolve().CSS()

	for _, decl := range []string{"--color-primary: #0e7cc4;", "--container-max-width: 1280px;", "--space-1: 4px;"} {
		if !strings.Contains(css, decl) {
			t.Errorf("CSS missing %q", decl)
		}
	}
}
