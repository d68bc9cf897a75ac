package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/auth"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/sitesettings"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
)

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func defaultPreset(t *testing.T) theme.ThemeTokenPreset {
	t.Helper()
	catalog, err := theme.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	p, ok := catalog.Preset(theme.DefaultThemeID)
	if !ok {
		t.Fatalf("catalog has no %s", theme.DefaultThemeID)
	}
	return p
}

func TestValidateCommand(t *testing.T) {
	preset := defaultPreset(t)
	presetYAML, err := yaml.Marshal(preset)
	if err != nil {
		t.Fatal(err)
	}
	tokensJSON, err := json.Marshal(preset.ThemeTokens)
	if err != nil {
		t.Fatal(err)
	}
	broken := preset.ThemeTokens
	broken.Typography.FontSizeScale = 9
	broken.Buttons.Style = "glow"
	brokenJSON, err := json.Marshal(broken)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		file     string
		data     []byte
		args     []string
		wantErr  bool
		wantOut  []string
		wantNone string
	}{
		{name: "tokens json", file: "tokens.json", data: tokensJSON, wantOut: []string{"valid tokens"}},
		{name: "preset yaml", file: "preset.yaml", data: presetYAML, args: []string{"--kind", "preset"}, wantOut: []string{"valid preset"}},
		{
			name:    "every violation listed",
			file:    "broken.json",
			data:    brokenJSON,
			wantErr: true,
			wantOut: []string{"typography.fontSizeScale", "buttons.style"},
		},
		{name: "tokens are not a preset", file: "tokens.json", data: tokensJSON, args: []string{"--kind", "preset"}, wantErr: true, wantOut: []string{" id ", " name "}},
		{name: "unknown kind", file: "tokens.json", data: tokensJSON, args: []string{"--kind", "palette"}, wantErr: true, wantNone: "valid"},
		{name: "bad yaml", file: "bad.yml", data: []byte("colors: [unclosed"), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, tc.file, tc.data)
			out, err := executeCommand(t, append([]string{"validate", path}, tc.args...)...)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v; output:\n%s", err, tc.wantErr, out)
			}
			for _, want := range tc.wantOut {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			if tc.wantNone != "" && strings.Contains(out, tc.wantNone) {
				t.Errorf("output contains %q:\n%s", tc.wantNone, out)
			}
		})
	}
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "validate", filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("validate accepted a missing file")
	}
}

func TestThemesList(t *testing.T) {
	out, err := executeCommand(t, "themes", "list")
	if err != nil {
		t.Fatalf("themes list: %v", err)
	}
	for _, id := range []string{theme.DefaultThemeID, "aurora-pack"} {
		if !strings.Contains(out, id) {
			t.Errorf("output missing %s:\n%s", id, out)
		}
	}

	out, err = executeCommand(t, "themes", "list", "--json")
	if err != nil {
		t.Fatalf("themes list --json: %v", err)
	}
	var entries []theme.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) == 0 || entries[0].ID != theme.DefaultThemeID {
		t.Errorf("entries = %+v, want the default preset first", entries)
	}
}

func TestThemesResolve(t *testing.T) {
	out, err := executeCommand(t, "themes", "resolve", "aurora-pack")
	if err != nil {
		t.Fatalf("themes resolve: %v", err)
	}
	var rt theme.ResolvedTheme
	if err := json.Unmarshal([]byte(out), &rt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rt.ID != "aurora-pack" || !rt.IsPack {
		t.Errorf("resolved %q (pack %v), want aurora-pack", rt.ID, rt.IsPack)
	}

	css, err := executeCommand(t, "themes", "resolve", "aurora-pack", "--css")
	if err != nil {
		t.Fatalf("themes resolve --css: %v", err)
	}
	if !strings.HasPrefix(css, ":root {") {
		t.Errorf("css = %q, want a :root block", css)
	}

	if _, err := executeCommand(t, "themes", "resolve", "no-such-theme"); err == nil {
		t.Error("resolve accepted an unknown id")
	}
}

func TestTokenCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	cfgPath := writeFile(t, "plunge.yaml", []byte("auth:\n  jwt_secret: cli-test-secret-0123456789\n  issuer: plunge\n"))

	out, err := executeCommand(t, "token", "--config", cfgPath, "--actor", "alice", "--name", "Alice")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	tokens, err := auth.NewTokenService([]byte("cli-test-secret-0123456789"), time.Minute, "plunge")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := tokens.ValidateAccessToken(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("issued token rejected: %v", err)
	}
	if claims.ActorID != "alice" || claims.Name != "Alice" {
		t.Errorf("claims = %+v, want alice", claims)
	}
}

func TestTokenCommand_Errors(t *testing.T) {
	t.Chdir(t.TempDir())
	weak := writeFile(t, "plunge.yaml", []byte("auth:\n  jwt_secret: short\n"))

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing actor flag", args: []string{"token", "--config", weak}},
		{name: "weak secret", args: []string{"token", "--config", weak, "--actor", "alice"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := executeCommand(t, tc.args...); err == nil {
				t.Error("token succeeded")
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "plunge ") {
		t.Errorf("version output = %q", out)
	}
}

func TestBackupAndRestoreCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "plunge.db")
	cfgPath := writeFile(t, "plunge.yaml", []byte("database:\n  path: "+dbPath+"\n"))

	db, err := openStore(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	if _, err := sitesettings.NewSQLiteRepository(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	db.Close()

	archive := filepath.Join(t.TempDir(), "out.tar.gz")
	out, err := executeCommand(t, "backup", "--config", cfgPath, "--output", archive)
	if err != nil {
		t.Fatalf("backup: %v\n%s", err, out)
	}
	if !strings.Contains(out, archive) {
		t.Errorf("backup output = %q, want the archive path", out)
	}

	// The database directory already holds plunge.db.
	if _, err := executeCommand(t, "restore", archive, "--config", cfgPath); err == nil {
		t.Error("restore overwrote the live database without --force")
	}

	target := t.TempDir()
	out, err = executeCommand(t, "restore", archive, "--target", target)
	if err != nil {
		t.Fatalf("restore: %v\n%s", err, out)
	}
	for _, name := range []string{"plunge.db", "plunge.yaml"} {
		if _, err := os.Stat(filepath.Join(target, name)); err != nil {
			t.Errorf("%s not restored: %v", name, err)
		}
	}
}
