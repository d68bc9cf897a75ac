package sitesettings

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/event"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/schema"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
)

// ErrMissingActor is returned by Update when no actor is given.
var ErrMissingActor = errors.New("actor id is required")

var settingsUpdatesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "plunge_settings_updates_total",
		Help: "Site settings update attempts by result.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(settingsUpdatesTotal)
}

// ThemeCatalog answers whether theme ids exist.
type ThemeCatalog interface {
	Has(id string) bool
	Preset(id string) (theme.ThemeTokenPreset, bool)
}

// Service reads and updates the site settings.
type Service struct {
	repo    Repository
	catalog ThemeCatalog
	events  event.Publisher
	logger  *zap.Logger
}

// NewService wires a service. events may be nil.
func NewService(repo Repository, catalog ThemeCatalog, events event.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, catalog: catalog, events: events, logger: logger}
}

// Get returns the settings as stored.
func (s *Service) Get(ctx context.Context) (SiteSettings, error) {
	return s.repo.Load(ctx)
}

// ActiveThemeID returns the persisted theme selection.
func (s *Service) ActiveThemeID(ctx context.Context) (string, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return "", err
	}
	return st.ActiveThemeID, nil
}

// History returns the newest audit entries first.
func (s *Service) History(ctx context.Context, limit int) ([]AuditEntry, error) {
	return s.repo.History(ctx, limit)
}

// Update validates data as a patch, persists the supplied fields for actorID
// and returns the full row. Invalid patches return a *schema.ValidationError
// and leave storage untouched.
func (s *Service) Update(ctx context.Context, data []byte, actorID string) (SiteSettings, error) {
	if actorID == "" {
		return SiteSettings{}, ErrMissingActor
	}

	patch, report := parsePatch(data)
	s.checkReferences(patch, report)
	if err := report.Err(); err != nil {
		settingsUpdatesTotal.WithLabelValues("invalid").Inc()
		return SiteSettings{}, err
	}

	previous, saved, err := s.repo.Save(ctx, patch, actorID)
	if err != nil {
		settingsUpdatesTotal.WithLabelValues("error").Inc()
		return SiteSettings{}, fmt.Errorf("save site settings: %w", err)
	}
	settingsUpdatesTotal.WithLabelValues("ok").Inc()

	changed := patch.Names()
	s.logger.Info("site settings updated",
		zap.String("actor_id", actorID),
		zap.Strings("fields", changed),
	)

	s.publish(ctx, event.TopicSettingsUpdated, event.SettingsUpdated{
		ActorID:       actorID,
		ChangedFields: changed,
		Settings:      saved,
	})
	if saved.ActiveThemeID != previous.ActiveThemeID {
		s.publish(ctx, event.TopicThemeChanged, event.ThemeChanged{
			PreviousThemeID: previous.ActiveThemeID,
			ThemeID:         saved.ActiveThemeID,
		})
	}

	return saved, nil
}

// checkReferences reports theme ids the catalog does not know.
func (s *Service) checkReferences(p Patch, report *schema.ValidationError) {
	if s.catalog == nil {
		return
	}
	if p.ActiveThemeID.Set && !p.ActiveThemeID.Null && !s.catalog.Has(p.ActiveThemeID.Value) {
		report.Add(FieldActiveThemeID, fmt.Sprintf("unknown theme %q", p.ActiveThemeID.Value))
	}
	if p.ActivePresetID.Set && !p.ActivePresetID.Null {
		if _, ok := s.catalog.Preset(p.ActivePresetID.Value); !ok {
			report.Add(FieldActivePresetID, fmt.Sprintf("unknown preset %q", p.ActivePresetID.Value))
		}
	}
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, event.Event{Topic: topic, Source: "sitesettings", Payload: payload})
	if err != nil {
		s.logger.Warn("publish settings event failed", zap.String("topic", topic), zap.Error(err))
	}
}
