package theme

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultThemeID is selected when no theme has been persisted.
const DefaultThemeID = "arctic-default"

// Resolution outcomes recorded by the selector.
const (
	outcomePreset   = "preset"
	outcomePack     = "pack"
	outcomeFallback = "fallback"
	outcomeError    = "source_error"
)

var (
	themeResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plunge_theme_resolutions_total",
			Help: "Active theme resolutions by outcome.",
		},
		[]string{"outcome"},
	)
	themeVariantGapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plunge_theme_variant_gaps_total",
			Help: "Theme pack variant selections skipped during resolution.",
		},
		[]string{"component"},
	)
)

func init() {
	prometheus.MustRegister(themeResolutionsTotal)
	prometheus.MustRegister(themeVariantGapsTotal)
}

// ActiveThemeSource reports the persisted active theme id.
type ActiveThemeSource interface {
	ActiveThemeID(ctx context.Context) (string, error)
}

// Selector picks and resolves the active theme. It never fails: unknown ids
// and unreadable settings degrade to the catalog default.
type Selector struct {
	catalog *Catalog
	source  ActiveThemeSource
	logger  *zap.Logger
}

// NewSelector creates a selector over catalog. A nil source always selects
// DefaultThemeID.
func NewSelector(catalog *Catalog, source ActiveThemeSource, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{catalog: catalog, source: source, logger: logger}
}

// Catalog returns the catalog the selector resolves against.
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

// Active resolves the persisted active theme.
func (s *Selector) Active(ctx context.Context) ResolvedTheme {
	id := DefaultThemeID
	if s.source != nil {
		stored, err := s.source.ActiveThemeID(ctx)
		if err != nil {
			s.logger.Warn("active theme lookup failed, using default theme",
				zap.Error(err),
			)
			themeResolutionsTotal.WithLabelValues(outcomeError).Inc()
			return s.catalog.Default().Resolve()
		}
		if stored != "" {
			id = stored
		}
	}
	return s.Resolve(id)
}

// Resolve resolves id: a legacy preset first, then a theme pack, then the
// catalog default.
func (s *Selector) Resolve(id string) ResolvedTheme {
	t, ok := s.catalog.Lookup(id)
	if !ok {
		s.logger.Debug("theme not in catalog, using default theme",
			zap.String("theme_id", id),
		)
		themeResolutionsTotal.WithLabelValues(outcomeFallback).Inc()
		return s.catalog.Default().Resolve()
	}

	rt, gaps := t.resolve()
	for _, gap := range gaps {
		s.logger.Debug("skipped theme variant",
			zap.String("theme_id", id),
			zap.String("component", gap.Component),
			zap.String("variant", gap.Variant),
			zap.Error(gap.Err),
		)
		themeVariantGapsTotal.WithLabelValues(gap.Component).Inc()
	}

	if t.Kind() == KindPack {
		themeResolutionsTotal.WithLabelValues(outcomePack).Inc()
	} else {
		themeResolutionsTotal.WithLabelValues(outcomePreset).Inc()
	}
	return rt
}

// Lookup resolves id only when the catalog knows it.
func (s *Selector) Lookup(id string) (ResolvedTheme, bool) {
	if !s.catalog.Has(id) {
		return ResolvedTheme{}, false
	}
	return s.Resolve(id), true
}
