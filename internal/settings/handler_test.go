package settings_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/auth"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/server"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/settings"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/sitesettings"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/testutil"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
)

func setupHandlerEnv(t *testing.T) (testutil.Stack, *http.ServeMux) {
	t.Helper()

	stack := testutil.NewStack(t, nil)
	handler := settings.NewHandler(stack.Selector, stack.Service, 0, nil)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return stack, mux
}

// doRequest sends body as-is when it is a string, JSON-encoded otherwise.
// A non-empty actor is placed in the request context.
func doRequest(mux http.Handler, method, path, actor string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req = req.WithContext(auth.WithActor(req.Context(), &auth.Claims{ActorID: actor}))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) server.Problem {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
	var p server.Problem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return p
}

func TestHandleListThemes(t *testing.T) {
	stack, mux := setupHandlerEnv(t)

	w := doRequest(mux, http.MethodGet, "/api/v1/settings/themes", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var got []theme.Entry
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(stack.Catalog.Entries(), got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleGetActiveTheme_Default(t *testing.T) {
	_, mux := setupHandlerEnv(t)

	w := doRequest(mux, http.MethodGet, "/api/v1/settings/themes/active", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var got theme.ResolvedTheme
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != theme.DefaultThemeID {
		t.Errorf("ID = %q, want %q", got.ID, theme.DefaultThemeID)
	}
	if got.IsPack {
		t.Error("default theme reported as a pack")
	}
}

func TestHandleGetActiveTheme_FollowsSettings(t *testing.T) {
	stack, mux := setupHandlerEnv(t)

	if _, err := stack.Service.Update(context.Background(), []byte(`{"activeThemeId":"aurora-pack"}`), "alice"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	w := doRequest(mux, http.MethodGet, "/api/v1/settings/themes/active", "", nil)
	var got theme.ResolvedTheme
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "aurora-pack" || !got.IsPack {
		t.Errorf("active = %q (pack %v), want aurora-pack as a pack", got.ID, got.IsPack)
	}
	if len(got.Variables) == 0 {
		t.Error("pack resolved without variables")
	}
}

func TestHandleGetActiveThemeCSS(t *testing.T) {
	stack, mux := setupHandlerEnv(t)

	w := doRequest(mux, http.MethodGet, "/api/v1/settings/themes/active.css", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q, want text/css", ct)
	}
	want := stack.Selector.Active(context.Background()).CSS()
	if diff := cmp.Diff(want, w.Body.String()); diff != "" {
		t.Errorf("css mismatch (-want +got):\n%s", diff)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/themes/active.css", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	mux.ServeHTTP(cached, req)
	if cached.Code != http.StatusNotModified {
		t.Errorf("conditional status = %d, want %d", cached.Code, http.StatusNotModified)
	}
	if cached.Body.Len() != 0 {
		t.Errorf("304 body = %q, want empty", cached.Body.String())
	}
}

func TestHandleGetActiveThemeCSS_ETagChangesWithTheme(t *testing.T) {
	stack, mux := setupHandlerEnv(t)

	before := doRequest(mux, http.MethodGet, "/api/v1/settings/themes/active.css", "", nil).Header().Get("ETag")
	if _, err := stack.Service.Update(context.Background(), []byte(`{"activeThemeId":"glacier-night"}`), "alice"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after := doRequest(mux, http.MethodGet, "/api/v1/settings/themes/active.css", "", nil).Header().Get("ETag")

	if before == after {
		t.Errorf("ETag unchanged after theme switch: %s", after)
	}
}

func TestHandleListVariants(t *testing.T) {
	_, mux := setupHandlerEnv(t)

	w := doRequest(mux, http.MethodGet, "/api/v1/settings/themes/variants", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var got []theme.Variant
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(theme.Variants(), got); diff != "" {
		t.Errorf("variants mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleGetTheme(t *testing.T) {
	_, mux := setupHandlerEnv(t)

	tests := []struct {
		name     string
		id       string
		wantCode int
		wantPack bool
	}{
		{name: "preset", id: "nordic-sauna", wantCode: http.StatusOK},
		{name: "pack", id: "fjord-pack", wantCode: http.StatusOK, wantPack: true},
		{name: "unknown", id: "no-such-theme", wantCode: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(mux, http.MethodGet, "/api/v1/settings/themes/"+tc.id, "", nil)
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantCode)
			}
			if tc.wantCode != http.StatusOK {
				p := decodeProblem(t, w)
				if !strings.Contains(p.Error, tc.id) {
					t.Errorf("error = %q, want it to name %q", p.Error, tc.id)
				}
				return
			}
			var got theme.ResolvedTheme
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.ID != tc.id || got.IsPack != tc.wantPack {
				t.Errorf("got %q (pack %v), want %q (pack %v)", got.ID, got.IsPack, tc.id, tc.wantPack)
			}
		})
	}
}

func TestHandleValidateTheme(t *testing.T) {
	stack, mux := setupHandlerEnv(t)

	preset, ok := stack.Catalog.Preset(theme.DefaultThemeID)
	if !ok {
		t.Fatalf("catalog has no %s", theme.DefaultThemeID)
	}
	validPreset, err := json.Marshal(preset)
	if err != nil {
		t.Fatalf("marshal preset: %v", err)
	}
	validTokens, err := json.Marshal(preset.ThemeTokens)
	if err != nil {
		t.Fatalf("marshal tokens: %v", err)
	}

	tests := []struct {
		name      string
		query     string
		body      string
		wantCode  int
		wantField string
	}{
		{name: "valid tokens by default", body: string(validTokens), wantCode: http.StatusOK},
		{name: "valid preset", query: "?kind=preset", body: string(validPreset), wantCode: http.StatusOK},
		{name: "preset without id", query: "?kind=preset", body: `{"name":"x","themeTokens":` + string(validTokens) + `}`, wantCode: http.StatusUnprocessableEntity, wantField: "id"},
		{name: "empty tokens", query: "?kind=tokens", body: `{}`, wantCode: http.StatusUnprocessableEntity, wantField: "colors.primary"},
		{name: "malformed json", body: `{"colors":`, wantCode: http.StatusUnprocessableEntity},
		{name: "unknown kind", query: "?kind=palette", body: `{}`, wantCode: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(mux, http.MethodPost, "/api/v1/settings/themes/validate"+tc.query, "", tc.body)
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d; body = %s", w.Code, tc.wantCode, w.Body.String())
			}
			if tc.wantCode == http.StatusOK {
				var got settings.ValidateResponse
				if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if !got.Valid {
					t.Error("valid = false")
				}
				return
			}
			p := decodeProblem(t, w)
			if tc.wantField != "" && len(p.Details[tc.wantField]) == 0 {
				t.Errorf("details = %v, want an entry for %q", p.Details, tc.wantField)
			}
		})
	}
}

func TestHandleGetSite(t *testing.T) {
	_, mux := setupHandlerEnv(t)

	w := doRequest(mux, http.MethodGet, "/api/v1/settings/site", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var got sitesettings.SiteSettings
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != sitesettings.SingletonID || got.ActiveThemeID != theme.DefaultThemeID {
		t.Errorf("got id %q theme %q, want %q and %q", got.ID, got.ActiveThemeID, sitesettings.SingletonID, theme.DefaultThemeID)
	}
	if got.NavPreset != nil {
		t.Errorf("navPreset = %+v, want nil on a fresh install", got.NavPreset)
	}
}

func TestHandleUpdateSite(t *testing.T) {
	_, mux := setupHandlerEnv(t)

	nav := testutil.NewNavPreset(testutil.WithLayout("centered"))
	w := doRequest(mux, http.MethodPatch, "/api/v1/settings/site", "alice", map[string]any{
		"activeThemeId": "fjord-pack",
		"navPreset":     nav,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp settings.UpdateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Settings.ActiveThemeID != "fjord-pack" {
		t.Errorf("activeThemeId = %q, want fjord-pack", resp.Settings.ActiveThemeID)
	}
	if resp.Settings.NavPreset == nil {
		t.Fatal("navPreset not saved")
	}
	if diff := cmp.Diff(nav, *resp.Settings.NavPreset); diff != "" {
		t.Errorf("navPreset mismatch (-want +got):\n%s", diff)
	}
	if resp.Settings.UpdatedBy != "alice" {
		t.Errorf("updatedBy = %q, want alice", resp.Settings.UpdatedBy)
	}

	// The next read sees the write.
	get := doRequest(mux, http.MethodGet, "/api/v1/settings/site", "", nil)
	var stored sitesettings.SiteSettings
	if err := json.NewDecoder(get.Body).Decode(&stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stored.ActiveThemeID != "fjord-pack" {
		t.Errorf("stored activeThemeId = %q, want fjord-pack", stored.ActiveThemeID)
	}
}

func TestHandleUpdateSite_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		actor      string
		body       any
		wantCode   int
		wantFields []string
	}{
		{
			name:     "no actor",
			body:     `{"activeThemeId":"fjord-pack"}`,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:       "malformed json",
			actor:      "alice",
			body:       `{"activeThemeId":`,
			wantCode:   http.StatusBadRequest,
			wantFields: []string{"body"},
		},
		{
			name:       "unknown theme",
			actor:      "alice",
			body:       `{"activeThemeId":"no-such-theme"}`,
			wantCode:   http.StatusBadRequest,
			wantFields: []string{"activeThemeId"},
		},
		{
			name:  "script href and bad layout together",
			actor: "alice",
			body: map[string]any{"navPreset": testutil.NewNavPreset(
				testutil.WithLayout("diagonal"),
				testutil.WithLinks(sitesettings.Link{Label: "x", Href: "javascript:alert(1)"}),
			)},
			wantCode:   http.StatusBadRequest,
			wantFields: []string{"navPreset.layout", "navPreset.links[0].href"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stack, mux := setupHandlerEnv(t)

			w := doRequest(mux, http.MethodPatch, "/api/v1/settings/site", tc.actor, tc.body)
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d; body = %s", w.Code, tc.wantCode, w.Body.String())
			}
			p := decodeProblem(t, w)
			if p.Error == "" {
				t.Error("problem has no error member")
			}
			for _, f := range tc.wantFields {
				if len(p.Details[f]) == 0 {
					t.Errorf("details = %v, want an entry for %q", p.Details, f)
				}
			}

			history, err := stack.Service.History(context.Background(), 10)
			if err != nil {
				t.Fatalf("History: %v", err)
			}
			if len(history) != 0 {
				t.Errorf("rejected update left %d audit entries", len(history))
			}
		})
	}
}

func TestHandleUpdateSite_BodyTooLarge(t *testing.T) {
	_, mux := setupHandlerEnv(t)

	body := `{"seoDefaults":{"titleTemplate":"%s","description":"` + strings.Repeat("a", 70<<10) + `"}}`
	w := doRequest(mux, http.MethodPatch, "/api/v1/settings/site", "alice", body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestHandleSiteHistory(t *testing.T) {
	stack, mux := setupHandlerEnv(t)
	ctx := context.Background()

	patches := []string{
		`{"activeThemeId":"glacier-night"}`,
		`{"navPreset":{"layout":"split"}}`,
		`{"activeThemeId":"aurora-pack","navPreset":null}`,
	}
	for _, p := range patches {
		if _, err := stack.Service.Update(ctx, []byte(p), "alice"); err != nil {
			t.Fatalf("Update(%s): %v", p, err)
		}
	}

	w := doRequest(mux, http.MethodGet, "/api/v1/settings/site/history", "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var got []sitesettings.AuditEntry
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(patches) {
		t.Fatalf("len = %d, want %d", len(got), len(patches))
	}
	want := []string{"activeThemeId", "navPreset"}
	if diff := cmp.Diff(want, got[0].ChangedFields); diff != "" {
		t.Errorf("newest entry fields mismatch (-want +got):\n%s", diff)
	}

	limited := doRequest(mux, http.MethodGet, "/api/v1/settings/site/history?limit=1", "alice", nil)
	var one []sitesettings.AuditEntry
	if err := json.NewDecoder(limited.Body).Decode(&one); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(one) != 1 || one[0].ID != got[0].ID {
		t.Errorf("limit=1 returned %d entries, want the newest only", len(one))
	}
}

func TestHandleSiteHistory_BadLimit(t *testing.T) {
	_, mux := setupHandlerEnv(t)

	for _, limit := range []string{"0", "-3", "ten"} {
		t.Run(limit, func(t *testing.T) {
			w := doRequest(mux, http.MethodGet, "/api/v1/settings/site/history?limit="+limit, "alice", nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if p := decodeProblem(t, w); len(p.Details["limit"]) == 0 {
				t.Errorf("details = %v, want an entry for limit", p.Details)
			}
		})
	}
}

// failingSite fails every call with err.
type failingSite struct{ err error }

func (f failingSite) Get(context.Context) (sitesettings.SiteSettings, error) {
	return sitesettings.SiteSettings{}, f.err
}

func (f failingSite) Update(context.Context, []byte, string) (sitesettings.SiteSettings, error) {
	return sitesettings.SiteSettings{}, f.err
}

func (f failingSite) History(context.Context, int) ([]sitesettings.AuditEntry, error) {
	return nil, f.err
}

func TestHandler_StorageErrorsAreOpaque(t *testing.T) {
	stack := testutil.NewStack(t, nil)
	secret := errors.New("disk I/O error at /var/lib/plunge/plunge.db")
	handler := settings.NewHandler(stack.Selector, failingSite{err: secret}, 0, nil)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/v1/settings/site", nil},
		{http.MethodPatch, "/api/v1/settings/site", `{"navPreset":null}`},
		{http.MethodGet, "/api/v1/settings/site/history", nil},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := doRequest(mux, tc.method, tc.path, "alice", tc.body)
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
			}
			if strings.Contains(w.Body.String(), "plunge.db") {
				t.Errorf("response leaks the storage error: %s", w.Body.String())
			}
		})
	}
}

func TestHandleUpdateSite_MissingActorFromService(t *testing.T) {
	stack := testutil.NewStack(t, nil)
	handler := settings.NewHandler(stack.Selector, failingSite{err: sitesettings.ErrMissingActor}, 0, nil)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	w := doRequest(mux, http.MethodPatch, "/api/v1/settings/site", "alice", `{"navPreset":null}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
