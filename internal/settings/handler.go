// Package settings provides the HTTP handlers for storefront themes and site
// settings.
package settings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/auth"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/schema"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/server"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/sitesettings"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
)

const (
	// DefaultHistoryLimit applies when ?limit is absent and no limit is configured.
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps ?limit.
	MaxHistoryLimit = 500
	maxBodyBytes    = 64 << 10
)

// Themes resolves catalog entries and the active theme.
type Themes interface {
	Active(ctx context.Context) theme.ResolvedTheme
	Lookup(id string) (theme.ResolvedTheme, bool)
	Catalog() *theme.Catalog
}

// SiteSettings reads and updates the settings singleton.
type SiteSettings interface {
	Get(ctx context.Context) (sitesettings.SiteSettings, error)
	Update(ctx context.Context, data []byte, actorID string) (sitesettings.SiteSettings, error)
	History(ctx context.Context, limit int) ([]sitesettings.AuditEntry, error)
}

// UpdateResponse wraps the saved settings.
// @Description Settings after a successful update.
type UpdateResponse struct {
	Settings sitesettings.SiteSettings `json:"settings"`
}

// ValidateResponse reports a document that passed the schema.
// @Description Result of a schema check that passed.
type ValidateResponse struct {
	Valid bool `json:"valid" example:"true"`
}

// Handler provides HTTP handlers for theme and site settings endpoints.
type Handler struct {
	themes       Themes
	site         SiteSettings
	historyLimit int
	logger       *zap.Logger
}

// NewHandler creates a settings Handler. A non-positive historyLimit means
// DefaultHistoryLimit.
func NewHandler(themes Themes, site SiteSettings, historyLimit int, logger *zap.Logger) *Handler {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if historyLimit > MaxHistoryLimit {
		historyLimit = MaxHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		themes:       themes,
		site:         site,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// RegisterRoutes registers settings routes on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Literal paths before the wildcard.
	mux.HandleFunc("GET /api/v1/settings/themes", h.handleListThemes)
	mux.HandleFunc("GET /api/v1/settings/themes/active", h.handleGetActiveTheme)
	mux.HandleFunc("GET /api/v1/settings/themes/active.css", h.handleGetActiveThemeCSS)
	mux.HandleFunc("GET /api/v1/settings/themes/variants", h.handleListVariants)
	mux.HandleFunc("POST /api/v1/settings/themes/validate", h.handleValidateTheme)
	mux.HandleFunc("GET /api/v1/settings/themes/{id}", h.handleGetTheme)

	mux.HandleFunc("GET /api/v1/settings/site", h.handleGetSite)
	mux.HandleFunc("PATCH /api/v1/settings/site", h.handleUpdateSite)
	mux.HandleFunc("GET /api/v1/settings/site/history", h.handleSiteHistory)
}

// handleListThemes lists the catalog.
//
//	@Summary		List themes
//	@Description	Presets first, then packs, each in catalog order.
//	@Tags			themes
//	@Produce		json
//	@Success		200	{array}	theme.Entry
//	@Router			/settings/themes [get]
func (h *Handler) handleListThemes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.themes.Catalog().Entries())
}

// handleGetActiveTheme returns the resolved active theme. It never fails:
// unknown ids and storage errors fall back to the default preset.
//
//	@Summary		Get active theme
//	@Description	Resolved tokens, CSS variables, variants and block defaults of the active theme.
//	@Tags			themes
//	@Produce		json
//	@Success		200	{object}	theme.ResolvedTheme
//	@Router			/settings/themes/active [get]
func (h *Handler) handleGetActiveTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.themes.Active(r.Context()))
}

// handleGetActiveThemeCSS renders the active theme as a :root block.
//
//	@Summary		Get active theme CSS
//	@Description	CSS custom properties of the active theme. Supports If-None-Match.
//	@Tags			themes
//	@Produce		text/css
//	@Success		200	{string}	string
//	@Success		304
//	@Router			/settings/themes/active.css [get]
func (h *Handler) handleGetActiveThemeCSS(w http.ResponseWriter, r *http.Request) {
	css := h.themes.Active(r.Context()).CSS()
	sum := sha256.Sum256([]byte(css))
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, css)
}

// handleListVariants lists the component variant catalog.
//
//	@Summary		List component variants
//	@Tags			themes
//	@Produce		json
//	@Success		200	{array}	theme.Variant
//	@Router			/settings/themes/variants [get]
func (h *Handler) handleListVariants(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, theme.Variants())
}

// handleGetTheme resolves one catalog entry.
//
//	@Summary		Get theme
//	@Tags			themes
//	@Produce		json
//	@Param			id	path		string	true	"Theme id"
//	@Success		200	{object}	theme.ResolvedTheme
//	@Failure		404	{object}	server.Problem
//	@Router			/settings/themes/{id} [get]
func (h *Handler) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	resolved, ok := h.themes.Lookup(id)
	if !ok {
		server.NotFound(w, fmt.Sprintf("theme %q not found", id), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

// handleValidateTheme runs the schema on a document without storing it.
//
//	@Summary		Validate a theme document
//	@Description	Checks a token set (default), a preset or a pack and reports every violation.
//	@Tags			themes
//	@Accept			json
//	@Produce		json
//	@Param			kind	query		string	false	"tokens, preset or pack"
//	@Success		200		{object}	ValidateResponse
//	@Failure		400		{object}	server.Problem
//	@Failure		422		{object}	server.Problem
//	@Router			/settings/themes/validate [post]
func (h *Handler) handleValidateTheme(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	kind := theme.DocumentKind(r.URL.Query().Get("kind"))
	err := theme.ParseDocument(kind, body)
	if errors.Is(err, theme.ErrUnknownDocumentKind) {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	if ve, ok := schema.AsValidationError(err); ok {
		server.ValidationFailed(w, http.StatusUnprocessableEntity, ve, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: true})
}

// handleGetSite returns the stored settings.
//
//	@Summary		Get site settings
//	@Tags			site
//	@Produce		json
//	@Success		200	{object}	sitesettings.SiteSettings
//	@Failure		500	{object}	server.Problem
//	@Router			/settings/site [get]
func (h *Handler) handleGetSite(w http.ResponseWriter, r *http.Request) {
	s, err := h.site.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load site settings", zap.Error(err))
		server.InternalError(w, "failed to load site settings", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleUpdateSite applies a partial update as the authenticated actor.
//
//	@Summary		Update site settings
//	@Description	Replaces the supplied fields only; null clears optional blocks. Every invalid field is reported.
//	@Tags			site
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		object	true	"Partial settings"
//	@Success		200		{object}	UpdateResponse
//	@Failure		400		{object}	server.Problem
//	@Failure		401		{object}	server.Problem
//	@Failure		413		{object}	server.Problem
//	@Failure		500		{object}	server.Problem
//	@Router			/settings/site [patch]
func (h *Handler) handleUpdateSite(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	if actor == nil {
		server.Unauthorized(w, "an authenticated actor is required", r.URL.Path)
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	saved, err := h.site.Update(r.Context(), body, actor.ActorID)
	if err != nil {
		if ve, ok := schema.AsValidationError(err); ok {
			server.ValidationFailed(w, http.StatusBadRequest, ve, r.URL.Path)
			return
		}
		if errors.Is(err, sitesettings.ErrMissingActor) {
			server.Unauthorized(w, "an authenticated actor is required", r.URL.Path)
			return
		}
		h.logger.Error("failed to update site settings",
			zap.String("actor_id", actor.ActorID),
			zap.Error(err),
		)
		server.InternalError(w, "failed to save site settings", r.URL.Path)
		return
	}

	writeJSON(w, http.StatusOK, UpdateResponse{Settings: saved})
}

// handleSiteHistory lists audit entries, newest first.
//
//	@Summary		Site settings history
//	@Tags			site
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Maximum entries (1-500)"
//	@Success		200		{array}		sitesettings.AuditEntry
//	@Failure		400		{object}	server.Problem
//	@Failure		401		{object}	server.Problem
//	@Failure		500		{object}	server.Problem
//	@Router			/settings/site/history [get]
func (h *Handler) handleSiteHistory(w http.ResponseWriter, r *http.Request) {
	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			report := schema.NewValidationError()
			report.Add("limit", "must be a positive integer")
			server.ValidationFailed(w, http.StatusBadRequest, report, r.URL.Path)
			return
		}
		limit = min(n, MaxHistoryLimit)
	}

	entries, err := h.site.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to load settings history", zap.Error(err))
		server.InternalError(w, "failed to load settings history", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// readBody reads at most maxBodyBytes, writing the problem response itself
// when it returns false.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			server.WriteProblem(w, server.Problem{
				Type:     server.ProblemTypeBadRequest,
				Title:    "Request Entity Too Large",
				Status:   http.StatusRequestEntityTooLarge,
				Detail:   fmt.Sprintf("request body exceeds %d bytes", maxBodyBytes),
				Instance: r.URL.Path,
			})
			return nil, false
		}
		server.BadRequest(w, "failed to read request body", r.URL.Path)
		return nil, false
	}
	return body, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
