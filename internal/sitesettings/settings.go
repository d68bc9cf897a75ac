// Package sitesettings owns the singleton site settings row: the active theme
// selection and the navigation, footer, SEO and call-to-action defaults.
package sitesettings

import "time"

// SingletonID is the id of the only settings row.
const SingletonID = "main"

// SiteSettings is the persisted settings row. Nil blocks have never been set
// or were cleared.
type SiteSettings struct {
	ID                string        `json:"id"`
	ActiveThemeID     string        `json:"activeThemeId"`
	ActivePresetID    *string       `json:"activePresetId"`
	NavPreset         *NavPreset    `json:"navPreset"`
	FooterPreset      *FooterPreset `json:"footerPreset"`
	SEODefaults       *SEODefaults  `json:"seoDefaults"`
	GlobalCTADefaults *CTADefaults  `json:"globalCtaDefaults"`
	UpdatedAt         time.Time     `json:"updatedAt"`
	UpdatedBy         string        `json:"updatedBy,omitempty"`
}

// Link is a labelled navigation target.
type Link struct {
	Label string `json:"label" validate:"required,max=60"`
	Href  string `json:"href" validate:"required,href"`
}

// NavPreset configures the header navigation.
type NavPreset struct {
	Layout     string `json:"layout" validate:"required,oneof=left centered split"`
	Sticky     bool   `json:"sticky"`
	ShowSearch bool   `json:"showSearch"`
	ShowCart   bool   `json:"showCart"`
	Links      []Link `json:"links" validate:"max=12,dive"`
}

// FooterColumn is one titled group of footer links.
type FooterColumn struct {
	Title string `json:"title" validate:"required,max=60"`
	Links []Link `json:"links" validate:"max=12,dive"`
}

// FooterPreset configures the site footer.
type FooterPreset struct {
	Layout         string         `json:"layout" validate:"required,oneof=simple columns minimal"`
	Columns        []FooterColumn `json:"columns" validate:"max=6,dive"`
	Copyright      string         `json:"copyright" validate:"max=200"`
	ShowSocial     bool           `json:"showSocial"`
	ShowNewsletter bool           `json:"showNewsletter"`
}

// SEODefaults are the fallback meta tags for pages that set none.
type SEODefaults struct {
	TitleTemplate string `json:"titleTemplate" validate:"required,contains=%s,max=120"`
	Description   string `json:"description" validate:"max=320"`
	OGImage       string `json:"ogImage" validate:"omitempty,url"`
	TwitterHandle string `json:"twitterHandle" validate:"omitempty,handle"`
	Robots        string `json:"robots" validate:"omitempty,oneof=index noindex"`
}

// CTADefaults is the site-wide call to action used by blocks that declare none.
type CTADefaults struct {
	Label        string `json:"label" validate:"required,max=40"`
	Href         string `json:"href" validate:"required,href"`
	Style        string `json:"style" validate:"required,oneof=solid soft outline"`
	OpenInNewTab bool   `json:"openInNewTab"`
}

// AuditEntry records one accepted update.
type AuditEntry struct {
	ID            string    `json:"id"`
	ActorID       string    `json:"actorId"`
	ChangedFields []string  `json:"changedFields"`
	CreatedAt     time.Time `json:"createdAt"`
}
