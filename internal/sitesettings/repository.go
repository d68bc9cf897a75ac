package sitesettings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/store"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
)

// Repository persists the singleton settings row and its audit trail.
type Repository interface {
	// Load returns the row as stored.
	Load(ctx context.Context) (SiteSettings, error)
	// Save applies patch and records an audit entry for actorID atomically.
	// It returns the row as it was inside that transaction and the row written.
	Save(ctx context.Context, patch Patch, actorID string) (previous, saved SiteSettings, err error)
	// History returns up to limit audit entries, newest first.
	History(ctx context.Context, limit int) ([]AuditEntry, error)
}

// DB is the storage handle the SQLite repository needs.
type DB interface {
	DB() *sql.DB
	Tx(ctx context.Context, fn func(tx *sql.Tx) error) error
	Migrate(ctx context.Context, component string, migrations []store.Migration) error
}

// SQLiteRepository implements Repository on the shared SQLite store.
type SQLiteRepository struct {
	db  DB
	now func() time.Time
}

var _ Repository = (*SQLiteRepository)(nil)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create site_settings",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE site_settings (
						id                  TEXT PRIMARY KEY CHECK (id = 'main'),
						active_theme_id     TEXT NOT NULL,
						active_preset_id    TEXT,
						nav_preset          TEXT,
						footer_preset       TEXT,
						seo_defaults        TEXT,
						global_cta_defaults TEXT,
						updated_at          TEXT NOT NULL,
						updated_by          TEXT NOT NULL DEFAULT ''
					)
				`)
				return err
			},
		},
		{
			Version:     2,
			Description: "create site_settings_audit",
			Up: func(tx *sql.Tx) error {
				if _, err := tx.Exec(`
					CREATE TABLE site_settings_audit (
						id             TEXT PRIMARY KEY,
						actor_id       TEXT NOT NULL,
						changed_fields TEXT NOT NULL,
						created_at     TEXT NOT NULL
					)
				`); err != nil {
					return err
				}
				_, err := tx.Exec(`CREATE INDEX idx_site_settings_audit_created ON site_settings_audit (created_at)`)
				return err
			},
		},
	}
}

// NewSQLiteRepository migrates the settings tables and provisions the
// default row on first use.
func NewSQLiteRepository(ctx context.Context, db DB) (*SQLiteRepository, error) {
	if err := db.Migrate(ctx, "sitesettings", migrations()); err != nil {
		return nil, fmt.Errorf("migrate site settings: %w", err)
	}

	r := &SQLiteRepository{db: db, now: func() time.Time { return time.Now().UTC() }}

	_, err := db.DB().ExecContext(ctx,
		`INSERT INTO site_settings (id, active_theme_id, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		SingletonID, theme.DefaultThemeID, r.now().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("provision site settings: %w", err)
	}
	return r, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Load returns the settings row.
func (r *SQLiteRepository) Load(ctx context.Context) (SiteSettings, error) {
	return loadRow(ctx, r.db.DB())
}

// Save applies patch inside one transaction together with its audit entry.
func (r *SQLiteRepository) Save(ctx context.Context, patch Patch, actorID string) (previous, saved SiteSettings, err error) {
	err = r.db.Tx(ctx, func(tx *sql.Tx) error {
		current, err := loadRow(ctx, tx)
		if err != nil {
			return err
		}

		now := r.now()
		next := patch.Apply(current)
		next.UpdatedAt = now
		next.UpdatedBy = actorID

		cols, err := encodeBlocks(next)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE site_settings SET
				active_theme_id = ?,
				active_preset_id = ?,
				nav_preset = ?,
				footer_preset = ?,
				seo_defaults = ?,
				global_cta_defaults = ?,
				updated_at = ?,
				updated_by = ?
			WHERE id = ?`,
			next.ActiveThemeID, nullString(next.ActivePresetID),
			cols[0], cols[1], cols[2], cols[3],
			now.Format(timeLayout), actorID, SingletonID,
		)
		if err != nil {
			return fmt.Errorf("update site settings: %w", err)
		}

		fields, err := json.Marshal(patch.Names())
		if err != nil {
			return fmt.Errorf("encode changed fields: %w", err)
		}
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("audit id: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO site_settings_audit (id, actor_id, changed_fields, created_at) VALUES (?, ?, ?, ?)`,
			id.String(), actorID, string(fields), now.Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("insert audit entry: %w", err)
		}

		previous, saved = current, next
		return nil
	})
	if err != nil {
		return SiteSettings{}, SiteSettings{}, err
	}
	return previous, saved, nil
}

// History returns the newest audit entries first.
func (r *SQLiteRepository) History(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, actor_id, changed_fields, created_at
		FROM site_settings_audit
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var (
			e                 AuditEntry
			fields, createdAt string
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &fields, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if err := json.Unmarshal([]byte(fields), &e.ChangedFields); err != nil {
			return nil, fmt.Errorf("decode changed fields of %s: %w", e.ID, err)
		}
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse audit time of %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func loadRow(ctx context.Context, q queryer) (SiteSettings, error) {
	var (
		s                              SiteSettings
		presetID                       sql.NullString
		nav, footer, seo, cta, updated sql.NullString
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, active_theme_id, active_preset_id, nav_preset, footer_preset,
		       seo_defaults, global_cta_defaults, updated_at, updated_by
		FROM site_settings WHERE id = ?`, SingletonID,
	).Scan(&s.ID, &s.ActiveThemeID, &presetID, &nav, &footer, &seo, &cta, &updated, &s.UpdatedBy)
	if err != nil {
		return SiteSettings{}, fmt.Errorf("load site settings: %w", err)
	}

	if presetID.Valid {
		s.ActivePresetID = &presetID.String
	}
	if updated.Valid {
		if s.UpdatedAt, err = time.Parse(timeLayout, updated.String); err != nil {
			return SiteSettings{}, fmt.Errorf("parse updated_at: %w", err)
		}
	}

	if s.NavPreset, err = decodeColumn[NavPreset](nav); err != nil {
		return SiteSettings{}, fmt.Errorf("decode nav_preset: %w", err)
	}
	if s.FooterPreset, err = decodeColumn[FooterPreset](footer); err != nil {
		return SiteSettings{}, fmt.Errorf("decode footer_preset: %w", err)
	}
	if s.SEODefaults, err = decodeColumn[SEODefaults](seo); err != nil {
		return SiteSettings{}, fmt.Errorf("decode seo_defaults: %w", err)
	}
	if s.GlobalCTADefaults, err = decodeColumn[CTADefaults](cta); err != nil {
		return SiteSettings{}, fmt.Errorf("decode global_cta_defaults: %w", err)
	}
	return s, nil
}

func decodeColumn[T any](col sql.NullString) (*T, error) {
	if !col.Valid {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(col.String), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func encodeColumn[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// encodeBlocks returns the nav, footer, seo and cta columns in that order.
func encodeBlocks(s SiteSettings) ([4]sql.NullString, error) {
	var cols [4]sql.NullString
	var err error
	if cols[0], err = encodeColumn(s.NavPreset); err != nil {
		return cols, fmt.Errorf("encode nav_preset: %w", err)
	}
	if cols[1], err = encodeColumn(s.FooterPreset); err != nil {
		return cols, fmt.Errorf("encode footer_preset: %w", err)
	}
	if cols[2], err = encodeColumn(s.SEODefaults); err != nil {
		return cols, fmt.Errorf("encode seo_defaults: %w", err)
	}
	if cols[3], err = encodeColumn(s.GlobalCTADefaults); err != nil {
		return cols, fmt.Errorf("encode global_cta_defaults: %w", err)
	}
	return cols, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
