// Package testutil builds in-memory stores and settings fixtures for tests.
package testutil

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/event"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/sitesettings"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/store"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
)

// NewStore opens a private in-memory database closed at test cleanup.
func NewStore(t testing.TB) *store.SQLiteStore {
	t.Helper()
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Stack is the settings service wired the way the server wires it.
type Stack struct {
	Store    *store.SQLiteStore
	Catalog  *theme.Catalog
	Bus      *event.Bus
	Repo     *sitesettings.SQLiteRepository
	Service  *sitesettings.Service
	Selector *theme.Selector
}

// NewStack builds the shipped catalog, an event bus and the settings service
// over a fresh in-memory store.
func NewStack(t testing.TB, logger *zap.Logger) Stack {
	t.Helper()
	if logger == nil {
		logger = zap.NewNop()
	}

	db := NewStore(t)
	repo, err := sitesettings.NewSQLiteRepository(context.Background(), db)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	catalog, err := theme.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	bus := event.NewBus(logger)
	svc := sitesettings.NewService(repo, catalog, bus, logger)

	return Stack{
		Store:    db,
		Catalog:  catalog,
		Bus:      bus,
		Repo:     repo,
		Service:  svc,
		Selector: theme.NewSelector(catalog, svc, logger),
	}
}

// NewNavPreset returns a valid navigation preset. Override individual fields
// with options.
func NewNavPreset(opts ...func(*sitesettings.NavPreset)) sitesettings.NavPreset {
	n := sitesettings.NavPreset{
		Layout:   "left",
		Sticky:   true,
		ShowCart: true,
		Links: []sitesettings.Link{
			{Label: "Shop", Href: "/shop"},
			{Label: "Contact", Href: "mailto:hello@powerplunge.com"},
		},
	}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

// WithLayout sets the navigation layout.
func WithLayout(layout string) func(*sitesettings.NavPreset) {
	return func(n *sitesettings.NavPreset) { n.Layout = layout }
}

// WithLinks replaces the navigation links.
func WithLinks(links ...sitesettings.Link) func(*sitesettings.NavPreset) {
	return func(n *sitesettings.NavPreset) { n.Links = links }
}
